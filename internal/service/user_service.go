package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"devconnector/internal/models"
	"devconnector/internal/repository"
	"devconnector/internal/storage"
)

var errNoStorage = errors.New("avatar storage is not configured")

type UserService interface {
	GetCurrentUser(ctx context.Context, userID string) (*models.User, error)
	UploadAvatar(ctx context.Context, userID, fileName string, file io.Reader, size int64) (*models.User, error)
}

type userService struct {
	userRepo repository.UserRepository
	storage  storage.Storage
}

func NewUserService(userRepo repository.UserRepository, storage storage.Storage) UserService {
	return &userService{
		userRepo: userRepo,
		storage:  storage,
	}
}

func (s *userService) GetCurrentUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// UploadAvatar stores the image and points the user's avatar at it. The
// stored object is removed again when the user row cannot be updated.
func (s *userService) UploadAvatar(ctx context.Context, userID, fileName string, file io.Reader, size int64) (*models.User, error) {
	if s.storage == nil {
		return nil, errNoStorage
	}

	if _, err := s.GetCurrentUser(ctx, userID); err != nil {
		return nil, err
	}

	objectName, url, err := s.storage.UploadAvatar(ctx, userID, fileName, file, size)
	if err != nil {
		return nil, fmt.Errorf("failed to upload avatar: %w", err)
	}

	if err := s.userRepo.UpdateAvatar(ctx, userID, url); err != nil {
		if delErr := s.storage.DeleteObject(ctx, objectName); delErr != nil {
			log.Printf("failed to clean up avatar %s: %v", objectName, delErr)
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update avatar: %w", err)
	}

	return s.GetCurrentUser(ctx, userID)
}
