package repository

import (
	"context"
	"errors"
	"time"

	"devconnector/internal/database"
	"devconnector/internal/models"

	"github.com/jmoiron/sqlx"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

var (
	// ErrNotFound is returned when no row or document matched the request.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists is returned when a unique key would be violated.
	ErrAlreadyExists = errors.New("record already exists")
	// ErrInvalidPassword is returned when a password does not match the stored hash.
	ErrInvalidPassword = errors.New("invalid password")
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User, password string) error
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	VerifyPassword(ctx context.Context, email, password string) (*models.User, error)
	UpdateAvatar(ctx context.Context, userID, avatar string) error
	UpdateRefreshToken(ctx context.Context, userID, refreshToken string, expiryTime time.Time) error
	GetUserByRefreshToken(ctx context.Context, refreshToken string) (*models.User, error)
}

// PostRepository persists posts. Like and comment mutations are applied per
// field so that concurrent writers on the same post do not overwrite each other.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, postID string) (*models.Post, error)
	GetAll(ctx context.Context) ([]models.Post, error)
	Delete(ctx context.Context, postID string) error
	// AddLike returns ErrAlreadyExists when the user already likes the post.
	AddLike(ctx context.Context, postID string, like models.Like) error
	// RemoveLike returns ErrNotFound when the post has no like from userID.
	RemoveLike(ctx context.Context, postID, userID string) error
	AddComment(ctx context.Context, postID string, comment models.Comment) error
	// RemoveComment returns ErrNotFound when the comment is not on the post.
	RemoveComment(ctx context.Context, postID, commentID string) error
}

type Repository struct {
	User UserRepository
	Post PostRepository
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{
		User: NewUserRepository(db),
		Post: NewPostRepository(db),
	}
}

func NewMongoRepository(db *mongo.Database) *Repository {
	return &Repository{
		User: NewMongoUserRepository(db.Collection(database.UsersCollection)),
		Post: NewMongoPostRepository(db.Collection(database.PostsCollection)),
	}
}

func NewMemoryRepository() *Repository {
	return &Repository{
		User: NewMemoryUserRepository(),
		Post: NewMemoryPostRepository(),
	}
}
