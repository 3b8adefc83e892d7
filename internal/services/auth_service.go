package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"appraisal-api/internal/logger"
	"appraisal-api/internal/models"
	"appraisal-api/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// AuthService verifies credentials against stored bcrypt hashes. It only
// supplies a verified identity; authorization is out of scope.
type AuthService interface {
	// Login returns the user when email and password match.
	// Returns ErrInvalidCredentials for unknown emails and wrong passwords
	// alike, so callers cannot probe for accounts.
	Login(ctx context.Context, email, password string) (*models.User, error)
}

type authService struct {
	users repository.UserRepository
	log   *logger.Logger
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(users repository.UserRepository, log *logger.Logger) AuthService {
	return &authService{
		users: users,
		log:   log,
	}
}

func (s *authService) Login(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		s.log.Error("Failed to look up user", err, map[string]interface{}{
			"email": email,
		})
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		s.log.Warn("Rejected login attempt", map[string]interface{}{
			"email": email,
		})
		return nil, ErrInvalidCredentials
	}

	s.log.Info("User authenticated", map[string]interface{}{
		"user_id": user.ID,
		"role":    user.Role,
	})
	return user, nil
}
