package repository

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"devconnector/internal/models"

	"github.com/google/uuid"
)

// MemoryPostRepository keeps posts in process memory. It backs the
// "memory" storage driver and the service tests.
type MemoryPostRepository struct {
	mu    sync.RWMutex
	posts map[string]*models.Post
	order []string // post ids in insertion order
	now   func() time.Time
}

func NewMemoryPostRepository() *MemoryPostRepository {
	return &MemoryPostRepository{
		posts: make(map[string]*models.Post),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (r *MemoryPostRepository) Create(_ context.Context, post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if post.PostID == "" {
		post.PostID = uuid.New().String()
	}
	post.CreatedAt = r.now()
	post.Likes = []models.Like{}
	post.Comments = []models.Comment{}

	r.posts[post.PostID] = post.Clone()
	r.order = append(r.order, post.PostID)
	return nil
}

func (r *MemoryPostRepository) GetByID(_ context.Context, postID string) (*models.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	post, ok := r.posts[postID]
	if !ok {
		return nil, fmt.Errorf("post %q: %w", postID, ErrNotFound)
	}

	return post.Clone(), nil
}

func (r *MemoryPostRepository) GetAll(_ context.Context) ([]models.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	posts := make([]models.Post, 0, len(r.posts))
	for i := len(r.order) - 1; i >= 0; i-- {
		posts = append(posts, *r.posts[r.order[i]].Clone())
	}

	return posts, nil
}

func (r *MemoryPostRepository) Delete(_ context.Context, postID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.posts[postID]; !ok {
		return fmt.Errorf("post %q: %w", postID, ErrNotFound)
	}

	delete(r.posts, postID)
	r.order = slices.DeleteFunc(r.order, func(id string) bool { return id == postID })
	return nil
}

func (r *MemoryPostRepository) AddLike(_ context.Context, postID string, like models.Like) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	post, ok := r.posts[postID]
	if !ok {
		return fmt.Errorf("post %q: %w", postID, ErrNotFound)
	}

	if post.HasLike(like.UserID) {
		return fmt.Errorf("like by %s on post %s: %w", like.UserID, postID, ErrAlreadyExists)
	}

	post.Likes = append([]models.Like{like}, post.Likes...)
	return nil
}

func (r *MemoryPostRepository) RemoveLike(_ context.Context, postID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	post, ok := r.posts[postID]
	if !ok {
		return fmt.Errorf("post %q: %w", postID, ErrNotFound)
	}

	for i, like := range post.Likes {
		if like.UserID == userID {
			post.Likes = append(post.Likes[:i:i], post.Likes[i+1:]...)
			return nil
		}
	}

	return fmt.Errorf("like by %s on post %s: %w", userID, postID, ErrNotFound)
}

func (r *MemoryPostRepository) AddComment(_ context.Context, postID string, comment models.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	post, ok := r.posts[postID]
	if !ok {
		return fmt.Errorf("post %q: %w", postID, ErrNotFound)
	}

	post.Comments = append([]models.Comment{comment}, post.Comments...)
	return nil
}

func (r *MemoryPostRepository) RemoveComment(_ context.Context, postID, commentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	post, ok := r.posts[postID]
	if !ok {
		return fmt.Errorf("post %q: %w", postID, ErrNotFound)
	}

	for i, comment := range post.Comments {
		if comment.CommentID == commentID {
			post.Comments = append(post.Comments[:i:i], post.Comments[i+1:]...)
			return nil
		}
	}

	return fmt.Errorf("comment %s on post %s: %w", commentID, postID, ErrNotFound)
}

type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]*models.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[string]*models.User)}
}

func (r *MemoryUserRepository) CreateUser(_ context.Context, user *models.User, password string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Email == user.Email {
			return fmt.Errorf("user with email %s: %w", user.Email, ErrAlreadyExists)
		}
	}

	if err := prepareUser(user, password); err != nil {
		return err
	}

	cp := *user
	r.users[user.UserID] = &cp
	return nil
}

func (r *MemoryUserRepository) GetUserByID(_ context.Context, userID string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[userID]
	if !ok {
		return nil, fmt.Errorf("user %q: %w", userID, ErrNotFound)
	}

	cp := *user
	return &cp, nil
}

func (r *MemoryUserRepository) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.Email == email {
			cp := *user
			return &cp, nil
		}
	}

	return nil, fmt.Errorf("user with email %s: %w", email, ErrNotFound)
}

func (r *MemoryUserRepository) VerifyPassword(ctx context.Context, email, password string) (*models.User, error) {
	user, err := r.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	return checkPassword(user, password)
}

func (r *MemoryUserRepository) UpdateAvatar(_ context.Context, userID, avatar string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[userID]
	if !ok {
		return fmt.Errorf("user %q: %w", userID, ErrNotFound)
	}

	user.Avatar = avatar
	return nil
}

func (r *MemoryUserRepository) UpdateRefreshToken(_ context.Context, userID, refreshToken string, expiryTime time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[userID]
	if !ok {
		return fmt.Errorf("user %q: %w", userID, ErrNotFound)
	}

	user.RefreshToken = refreshToken
	user.RefreshTokenExpiryTime = expiryTime
	return nil
}

func (r *MemoryUserRepository) GetUserByRefreshToken(_ context.Context, refreshToken string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	now := time.Now()
	for _, user := range r.users {
		if refreshToken != "" && user.RefreshToken == refreshToken && user.RefreshTokenExpiryTime.After(now) {
			cp := *user
			return &cp, nil
		}
	}

	return nil, fmt.Errorf("refresh token is invalid or expired: %w", ErrNotFound)
}
