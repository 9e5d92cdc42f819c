package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"devconnector/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const (
	pqForeignKeyViolation = "23503"
	pqUniqueViolation     = "23505"
)

type PostRepositoryImpl struct {
	db *sqlx.DB
}

type likeRow struct {
	PostID string `db:"post_id"`
	UserID string `db:"user_id"`
}

type commentRow struct {
	PostID string `db:"post_id"`
	models.Comment
}

func NewPostRepository(db *sqlx.DB) *PostRepositoryImpl {
	return &PostRepositoryImpl{db: db}
}

func (r *PostRepositoryImpl) Create(ctx context.Context, post *models.Post) error {
	query := `
        INSERT INTO posts
        (post_id, text, name, avatar, user_id, created_at)
        VALUES
        (:post_id, :text, :name, :avatar, :user_id, :created_at)
    `

	if post.PostID == "" {
		post.PostID = uuid.New().String()
	}
	post.CreatedAt = time.Now().UTC()
	post.Likes = []models.Like{}
	post.Comments = []models.Comment{}

	_, err := r.db.NamedExecContext(ctx, query, post)
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}

	return nil
}

func (r *PostRepositoryImpl) GetByID(ctx context.Context, postID string) (*models.Post, error) {
	if !isUUID(postID) {
		return nil, fmt.Errorf("post %q: %w", postID, ErrNotFound)
	}

	query := `
        SELECT post_id, text, name, avatar, user_id, created_at FROM posts
        WHERE post_id = $1
    `

	var post models.Post
	err := r.db.GetContext(ctx, &post, query, postID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("post %s: %w", postID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	posts := []models.Post{post}
	if err := r.attachRelations(ctx, posts); err != nil {
		return nil, err
	}

	return &posts[0], nil
}

func (r *PostRepositoryImpl) GetAll(ctx context.Context) ([]models.Post, error) {
	query := `
        SELECT post_id, text, name, avatar, user_id, created_at FROM posts
        ORDER BY created_at DESC
    `

	posts := []models.Post{}
	if err := r.db.SelectContext(ctx, &posts, query); err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	if err := r.attachRelations(ctx, posts); err != nil {
		return nil, err
	}

	return posts, nil
}

// attachRelations loads likes and comments for posts, newest first.
func (r *PostRepositoryImpl) attachRelations(ctx context.Context, posts []models.Post) error {
	if len(posts) == 0 {
		return nil
	}

	ids := make([]string, len(posts))
	index := make(map[string]int, len(posts))
	for i := range posts {
		ids[i] = posts[i].PostID
		index[posts[i].PostID] = i
		posts[i].Likes = []models.Like{}
		posts[i].Comments = []models.Comment{}
	}

	var likes []likeRow
	err := r.db.SelectContext(ctx, &likes, `
        SELECT post_id, user_id FROM post_likes
        WHERE post_id = ANY($1)
        ORDER BY seq DESC
    `, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to load likes: %w", err)
	}

	for _, like := range likes {
		if i, ok := index[like.PostID]; ok {
			posts[i].Likes = append(posts[i].Likes, models.Like{UserID: like.UserID})
		}
	}

	var comments []commentRow
	err = r.db.SelectContext(ctx, &comments, `
        SELECT post_id, comment_id, text, name, avatar, user_id, created_at FROM post_comments
        WHERE post_id = ANY($1)
        ORDER BY seq DESC
    `, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to load comments: %w", err)
	}

	for _, comment := range comments {
		if i, ok := index[comment.PostID]; ok {
			posts[i].Comments = append(posts[i].Comments, comment.Comment)
		}
	}

	return nil
}

func (r *PostRepositoryImpl) Delete(ctx context.Context, postID string) error {
	if !isUUID(postID) {
		return fmt.Errorf("post %q: %w", postID, ErrNotFound)
	}

	// likes and comments are removed by ON DELETE CASCADE
	result, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE post_id = $1`, postID)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	return checkAffected(result, fmt.Sprintf("post %s", postID))
}

func (r *PostRepositoryImpl) AddLike(ctx context.Context, postID string, like models.Like) error {
	if !isUUID(postID) {
		return fmt.Errorf("post %q: %w", postID, ErrNotFound)
	}

	query := `
        INSERT INTO post_likes (post_id, user_id)
        VALUES ($1, $2)
        ON CONFLICT (post_id, user_id) DO NOTHING
    `

	result, err := r.db.ExecContext(ctx, query, postID, like.UserID)
	if err != nil {
		if isPQCode(err, pqForeignKeyViolation) {
			return fmt.Errorf("post %s: %w", postID, ErrNotFound)
		}
		return fmt.Errorf("failed to add like: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check inserted rows: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("like by %s on post %s: %w", like.UserID, postID, ErrAlreadyExists)
	}

	return nil
}

func (r *PostRepositoryImpl) RemoveLike(ctx context.Context, postID, userID string) error {
	if !isUUID(postID) {
		return fmt.Errorf("post %q: %w", postID, ErrNotFound)
	}

	result, err := r.db.ExecContext(ctx,
		`DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`, postID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove like: %w", err)
	}

	return checkAffected(result, fmt.Sprintf("like by %s on post %s", userID, postID))
}

func (r *PostRepositoryImpl) AddComment(ctx context.Context, postID string, comment models.Comment) error {
	if !isUUID(postID) {
		return fmt.Errorf("post %q: %w", postID, ErrNotFound)
	}

	query := `
        INSERT INTO post_comments (comment_id, post_id, user_id, text, name, avatar, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `

	_, err := r.db.ExecContext(ctx, query,
		comment.CommentID, postID, comment.UserID, comment.Text, comment.Name, comment.Avatar, comment.CreatedAt)
	if err != nil {
		if isPQCode(err, pqForeignKeyViolation) {
			return fmt.Errorf("post %s: %w", postID, ErrNotFound)
		}
		return fmt.Errorf("failed to add comment: %w", err)
	}

	return nil
}

func (r *PostRepositoryImpl) RemoveComment(ctx context.Context, postID, commentID string) error {
	if !isUUID(postID) || !isUUID(commentID) {
		return fmt.Errorf("comment %q on post %q: %w", commentID, postID, ErrNotFound)
	}

	result, err := r.db.ExecContext(ctx,
		`DELETE FROM post_comments WHERE post_id = $1 AND comment_id = $2`, postID, commentID)
	if err != nil {
		return fmt.Errorf("failed to remove comment: %w", err)
	}

	return checkAffected(result, fmt.Sprintf("comment %s on post %s", commentID, postID))
}

func checkAffected(result sql.Result, what string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}

	return nil
}

func isPQCode(err error, code pq.ErrorCode) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == code
}

func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
