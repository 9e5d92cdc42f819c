package handlers

import (
	"context"
	"io"

	"devconnector/internal/models"
	"devconnector/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockPostService struct {
	mock.Mock
}

func (m *MockPostService) ListAll(ctx context.Context) ([]models.Post, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Post), args.Error(1)
}

func (m *MockPostService) GetByID(ctx context.Context, postID string) (*models.Post, error) {
	return m.post(m.Called(ctx, postID))
}

func (m *MockPostService) Create(ctx context.Context, in service.CreatePostInput) (*models.Post, error) {
	return m.post(m.Called(ctx, in))
}

func (m *MockPostService) Like(ctx context.Context, postID, userID string) (*models.Post, error) {
	return m.post(m.Called(ctx, postID, userID))
}

func (m *MockPostService) Unlike(ctx context.Context, postID, userID string) (*models.Post, error) {
	return m.post(m.Called(ctx, postID, userID))
}

func (m *MockPostService) AddComment(ctx context.Context, postID string, in service.AddCommentInput) (*models.Post, error) {
	return m.post(m.Called(ctx, postID, in))
}

func (m *MockPostService) RemoveComment(ctx context.Context, postID, commentID string) (*models.Post, error) {
	return m.post(m.Called(ctx, postID, commentID))
}

func (m *MockPostService) Delete(ctx context.Context, postID, requesterID string) error {
	return m.Called(ctx, postID, requesterID).Error(0)
}

func (m *MockPostService) post(args mock.Arguments) (*models.Post, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, in service.RegisterInput) (*models.User, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, in service.LoginInput) (*models.User, string, string, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, "", "", args.Error(3)
	}
	return args.Get(0).(*models.User), args.String(1), args.String(2), args.Error(3)
}

func (m *MockAuthService) RefreshTokens(ctx context.Context, refreshToken string) (*models.User, string, string, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, "", "", args.Error(3)
	}
	return args.Get(0).(*models.User), args.String(1), args.String(2), args.Error(3)
}

func (m *MockAuthService) ValidateToken(tokenString string) (*service.Claims, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Claims), args.Error(1)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetCurrentUser(ctx context.Context, userID string) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) UploadAvatar(ctx context.Context, userID, fileName string, file io.Reader, size int64) (*models.User, error) {
	args := m.Called(ctx, userID, fileName, file, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
