package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"devconnector/internal/cache"
	"devconnector/internal/config"
	"devconnector/internal/metrics"
	"devconnector/internal/models"
	"devconnector/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const defaultTextMaxLength = 300

type CreatePostInput struct {
	AuthorID string
	Text     string
	Name     string
	Avatar   string
}

type AddCommentInput struct {
	AuthorID string
	Text     string
	Name     string
	Avatar   string
}

type PostService interface {
	ListAll(ctx context.Context) ([]models.Post, error)
	GetByID(ctx context.Context, postID string) (*models.Post, error)
	Create(ctx context.Context, in CreatePostInput) (*models.Post, error)
	Like(ctx context.Context, postID, userID string) (*models.Post, error)
	Unlike(ctx context.Context, postID, userID string) (*models.Post, error)
	AddComment(ctx context.Context, postID string, in AddCommentInput) (*models.Post, error)
	RemoveComment(ctx context.Context, postID, commentID string) (*models.Post, error)
	Delete(ctx context.Context, postID, requesterID string) error
}

type postService struct {
	postRepo      repository.PostRepository
	cache         cache.PostCache
	validate      *validator.Validate
	textMaxLength int
	now           func() time.Time
	newID         func() string
}

func NewPostService(postRepo repository.PostRepository, postCache cache.PostCache, cfg *config.Config) PostService {
	if postCache == nil {
		postCache = cache.NoopPostCache{}
	}

	maxLength := cfg.PostTextMaxLength
	if maxLength <= 0 {
		maxLength = defaultTextMaxLength
	}

	return &postService{
		postRepo:      postRepo,
		cache:         postCache,
		validate:      NewValidator(),
		textMaxLength: maxLength,
		now:           func() time.Time { return time.Now().UTC() },
		newID:         uuid.NewString,
	}
}

func (s *postService) ListAll(ctx context.Context) (posts []models.Post, err error) {
	defer observe("list", time.Now(), &err)

	cached, ok, err := s.cache.GetPosts(ctx)
	if err != nil {
		log.Printf("posts cache read failed: %v", err)
	}
	if ok {
		metrics.RecordCacheLookup("hit")
		return cached, nil
	}
	metrics.RecordCacheLookup("miss")

	// read the generation before the store so a concurrent mutation rejects the fill
	gen, genErr := s.cache.Generation(ctx)
	if genErr != nil {
		log.Printf("posts cache generation read failed: %v", genErr)
	}

	posts, err = s.postRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	if posts == nil {
		posts = []models.Post{}
	}

	if genErr == nil {
		if err := s.cache.SetPosts(ctx, gen, posts); err != nil {
			log.Printf("posts cache write failed: %v", err)
		}
	}

	return posts, nil
}

func (s *postService) GetByID(ctx context.Context, postID string) (post *models.Post, err error) {
	defer observe("get", time.Now(), &err)

	return s.load(ctx, postID)
}

func (s *postService) Create(ctx context.Context, in CreatePostInput) (post *models.Post, err error) {
	defer observe("create", time.Now(), &err)

	if err := s.validateText(in.Text); err != nil {
		return nil, err
	}

	post = &models.Post{
		Text:   in.Text,
		Name:   in.Name,
		Avatar: in.Avatar,
		UserID: in.AuthorID,
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	s.invalidate(ctx)
	return post, nil
}

func (s *postService) Like(ctx context.Context, postID, userID string) (post *models.Post, err error) {
	defer observe("like", time.Now(), &err)

	post, err = s.load(ctx, postID)
	if err != nil {
		return nil, err
	}

	if post.HasLike(userID) {
		return nil, ErrAlreadyLiked
	}

	if err := s.postRepo.AddLike(ctx, post.PostID, models.Like{UserID: userID}); err != nil {
		switch {
		case errors.Is(err, repository.ErrAlreadyExists):
			return nil, ErrAlreadyLiked
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to like post: %w", err)
	}

	s.invalidate(ctx)
	return s.load(ctx, postID)
}

func (s *postService) Unlike(ctx context.Context, postID, userID string) (post *models.Post, err error) {
	defer observe("unlike", time.Now(), &err)

	post, err = s.load(ctx, postID)
	if err != nil {
		return nil, err
	}

	if !post.HasLike(userID) {
		return nil, ErrNotLiked
	}

	if err := s.postRepo.RemoveLike(ctx, post.PostID, userID); err != nil {
		// the post was loaded above, so a missing row means the like went away
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotLiked
		}
		return nil, fmt.Errorf("failed to unlike post: %w", err)
	}

	s.invalidate(ctx)
	return s.load(ctx, postID)
}

func (s *postService) AddComment(ctx context.Context, postID string, in AddCommentInput) (post *models.Post, err error) {
	defer observe("add_comment", time.Now(), &err)

	if err := s.validateText(in.Text); err != nil {
		return nil, err
	}

	post, err = s.load(ctx, postID)
	if err != nil {
		return nil, err
	}

	comment := models.Comment{
		CommentID: s.newID(),
		Text:      in.Text,
		Name:      in.Name,
		Avatar:    in.Avatar,
		UserID:    in.AuthorID,
		CreatedAt: s.now(),
	}

	if err := s.postRepo.AddComment(ctx, post.PostID, comment); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}

	s.invalidate(ctx)
	return s.load(ctx, postID)
}

func (s *postService) RemoveComment(ctx context.Context, postID, commentID string) (post *models.Post, err error) {
	defer observe("remove_comment", time.Now(), &err)

	post, err = s.load(ctx, postID)
	if err != nil {
		return nil, err
	}

	if !post.HasComment(commentID) {
		return nil, ErrCommentNotFound
	}

	if err := s.postRepo.RemoveComment(ctx, post.PostID, commentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("failed to remove comment: %w", err)
	}

	s.invalidate(ctx)
	return s.load(ctx, postID)
}

func (s *postService) Delete(ctx context.Context, postID, requesterID string) (err error) {
	defer observe("delete", time.Now(), &err)

	post, err := s.load(ctx, postID)
	if err != nil {
		return err
	}

	if post.UserID != requesterID {
		return ErrNotAuthorized
	}

	if err := s.postRepo.Delete(ctx, post.PostID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPostNotFound
		}
		return fmt.Errorf("failed to delete post: %w", err)
	}

	s.invalidate(ctx)
	return nil
}

func (s *postService) load(ctx context.Context, postID string) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	return post, nil
}

func (s *postService) validateText(text string) error {
	err := s.validate.Var(text, fmt.Sprintf("required,notblank,max=%d", s.textMaxLength))
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("failed to validate text: %w", err)
	}

	fe := fieldErrs[0]
	return &ValidationError{Fields: map[string]string{"text": fieldMessage("Text", fe.Tag(), fe.Param())}}
}

func (s *postService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		log.Printf("posts cache invalidation failed: %v", err)
	}
}

func observe(operation string, start time.Time, err *error) {
	metrics.RecordPostOperation(operation, Kind(*err), time.Since(start))
}
