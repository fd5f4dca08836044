package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"twitterapi/internal/auth"
	apperrors "twitterapi/internal/errors"
	"twitterapi/internal/model"
	"twitterapi/internal/repository"
)

// AuthService handles login and session revocation.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*model.User, string, error)
	Logout(ctx context.Context, userID, token string) error
	LogoutAll(ctx context.Context, userID string) error
}

type authService struct {
	users      repository.UserRepository
	jwtService *auth.JWTService
	logger     logrus.FieldLogger
}

// NewAuthService creates a new authentication service.
func NewAuthService(users repository.UserRepository, jwtService *auth.JWTService, logger logrus.FieldLogger) AuthService {
	return &authService{
		users:      users,
		jwtService: jwtService,
		logger:     logger,
	}
}

// Login verifies the credentials, issues a token and appends it to the user's
// token list.
func (s *authService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	user, err := s.verifyCredentials(ctx, email, password)
	if err != nil {
		return nil, "", err
	}

	token, err := s.jwtService.GenerateToken(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("generate token: %w", err)
	}
	if err := s.users.AddToken(ctx, user.ID, token); err != nil {
		return nil, "", fmt.Errorf("store token: %w", err)
	}
	user.Tokens = append(user.Tokens, model.SessionToken{Token: token})

	s.logger.WithField("user_id", user.ID).Info("user logged in")
	return user, token, nil
}

// Logout revokes a single token.
func (s *authService) Logout(ctx context.Context, userID, token string) error {
	return s.users.RemoveToken(ctx, userID, token)
}

// LogoutAll revokes every token of the user.
func (s *authService) LogoutAll(ctx context.Context, userID string) error {
	return s.users.RemoveAllTokens(ctx, userID)
}

func (s *authService) verifyCredentials(ctx context.Context, email, password string) (*model.User, error) {
	normalized, err := model.NewEmail(email)
	if err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, normalized.String())
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if !user.CheckPassword(strings.TrimSpace(password)) {
		return nil, apperrors.ErrInvalidCredentials
	}
	return user, nil
}
