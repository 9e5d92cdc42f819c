package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"devconnector/internal/models"
	"devconnector/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) UploadAvatar(ctx context.Context, userID, fileName string, file io.Reader, size int64) (string, string, error) {
	args := m.Called(ctx, userID, fileName, file, size)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *MockStorage) DeleteObject(ctx context.Context, objectName string) error {
	return m.Called(ctx, objectName).Error(0)
}

type failingAvatarRepo struct {
	*repository.MemoryUserRepository
}

func (failingAvatarRepo) UpdateAvatar(context.Context, string, string) error {
	return errors.New("write failed")
}

func registerUser(t *testing.T, repo repository.UserRepository) *models.User {
	t.Helper()
	user := &models.User{Name: "Ann", Email: "ann@example.com"}
	require.NoError(t, repo.CreateUser(context.Background(), user, "secret1"))
	return user
}

func TestUserService_GetCurrentUser(t *testing.T) {
	repo := repository.NewMemoryUserRepository()
	user := registerUser(t, repo)
	svc := NewUserService(repo, nil)

	got, err := svc.GetCurrentUser(context.Background(), user.UserID)
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", got.Email)

	_, err = svc.GetCurrentUser(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserService_UploadAvatar(t *testing.T) {
	ctx := context.Background()

	t.Run("stores url on user", func(t *testing.T) {
		repo := repository.NewMemoryUserRepository()
		user := registerUser(t, repo)
		storage := new(MockStorage)
		file := strings.NewReader("png-bytes")
		storage.On("UploadAvatar", mock.Anything, user.UserID, "me.png", file, int64(9)).
			Return("avatars/x.png", "http://localhost:9000/avatars/avatars/x.png", nil)

		got, err := NewUserService(repo, storage).UploadAvatar(ctx, user.UserID, "me.png", file, 9)

		require.NoError(t, err)
		assert.Equal(t, "http://localhost:9000/avatars/avatars/x.png", got.Avatar)
		storage.AssertExpectations(t)
	})

	t.Run("removes object when user update fails", func(t *testing.T) {
		mem := repository.NewMemoryUserRepository()
		user := registerUser(t, mem)
		storage := new(MockStorage)
		storage.On("UploadAvatar", mock.Anything, user.UserID, "me.png", mock.Anything, int64(3)).
			Return("avatars/x.png", "http://host/x.png", nil)
		storage.On("DeleteObject", mock.Anything, "avatars/x.png").Return(nil)

		_, err := NewUserService(failingAvatarRepo{mem}, storage).UploadAvatar(ctx, user.UserID, "me.png", strings.NewReader("abc"), 3)

		require.Error(t, err)
		assert.Equal(t, KindInternal, Kind(err))
		storage.AssertExpectations(t)
	})

	t.Run("unknown user", func(t *testing.T) {
		storage := new(MockStorage)

		_, err := NewUserService(repository.NewMemoryUserRepository(), storage).UploadAvatar(ctx, "missing", "me.png", strings.NewReader("abc"), 3)

		assert.ErrorIs(t, err, ErrUserNotFound)
		storage.AssertNotCalled(t, "UploadAvatar", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("no storage configured", func(t *testing.T) {
		_, err := NewUserService(repository.NewMemoryUserRepository(), nil).UploadAvatar(ctx, "u1", "me.png", strings.NewReader("abc"), 3)
		assert.Equal(t, KindInternal, Kind(err))
	})
}
