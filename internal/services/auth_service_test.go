package services

import (
	"context"
	"errors"
	"testing"

	"appraisal-api/internal/logger"
	"appraisal-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// MockUserRepository is a mock implementation of UserRepository for testing
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestLogin_Success(t *testing.T) {
	// Arrange
	mockRepo := new(MockUserRepository)
	log := logger.New("test")
	service := NewAuthService(mockRepo, log)

	ctx := context.Background()
	stored := &models.User{
		ID:       1,
		Email:    "appraiser@example.com",
		Name:     "Pat Appraiser",
		Role:     "appraiser",
		Password: hashPassword(t, "correct horse"),
	}
	mockRepo.On("FindByEmail", ctx, "appraiser@example.com").Return(stored, nil)

	// Act
	user, err := service.Login(ctx, "appraiser@example.com", "correct horse")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, stored.ID, user.ID)
	assert.Equal(t, stored.Role, user.Role)
	mockRepo.AssertExpectations(t)
}

func TestLogin_WrongPassword(t *testing.T) {
	// Arrange
	mockRepo := new(MockUserRepository)
	log := logger.New("test")
	service := NewAuthService(mockRepo, log)

	ctx := context.Background()
	stored := &models.User{
		ID:       1,
		Email:    "appraiser@example.com",
		Password: hashPassword(t, "correct horse"),
	}
	mockRepo.On("FindByEmail", ctx, "appraiser@example.com").Return(stored, nil)

	// Act
	user, err := service.Login(ctx, "appraiser@example.com", "wrong battery staple")

	// Assert
	assert.Error(t, err)
	assert.Nil(t, user)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	mockRepo.AssertExpectations(t)
}

func TestLogin_UnknownEmail(t *testing.T) {
	// Arrange
	mockRepo := new(MockUserRepository)
	log := logger.New("test")
	service := NewAuthService(mockRepo, log)

	ctx := context.Background()
	// Repository returns nil, nil when no user found
	mockRepo.On("FindByEmail", ctx, "nobody@example.com").Return(nil, nil)

	// Act
	user, err := service.Login(ctx, "nobody@example.com", "whatever")

	// Assert: same error as a wrong password so accounts cannot be probed
	assert.Error(t, err)
	assert.Nil(t, user)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	mockRepo.AssertExpectations(t)
}

func TestLogin_EmptyCredentials(t *testing.T) {
	// Arrange
	mockRepo := new(MockUserRepository)
	log := logger.New("test")
	service := NewAuthService(mockRepo, log)

	// Act
	user, err := service.Login(context.Background(), "", "")

	// Assert
	assert.Error(t, err)
	assert.Nil(t, user)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	mockRepo.AssertNotCalled(t, "FindByEmail")
}

func TestLogin_RepositoryError(t *testing.T) {
	// Arrange
	mockRepo := new(MockUserRepository)
	log := logger.New("test")
	service := NewAuthService(mockRepo, log)

	ctx := context.Background()
	dbError := errors.New("database connection failed")
	mockRepo.On("FindByEmail", ctx, "appraiser@example.com").Return(nil, dbError)

	// Act
	user, err := service.Login(ctx, "appraiser@example.com", "correct horse")

	// Assert
	assert.Error(t, err)
	assert.Nil(t, user)
	assert.ErrorIs(t, err, dbError)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
	mockRepo.AssertExpectations(t)
}
