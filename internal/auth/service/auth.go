package service

import (
	"context"
	"errors"

	"assetbook/internal/users/repository"
	"assetbook/pkg/config"
	apperrors "assetbook/pkg/errors"
	"assetbook/pkg/password"
	"assetbook/pkg/token"

	usererrors "assetbook/internal/users/errors"
)

type AuthService interface {
	Login(ctx context.Context, userName, plainPassword string) (token.AccessToken, error)
}

type authService struct {
	users repository.UserRepository
	cfg   *config.Config
}

func NewAuthService(users repository.UserRepository, cfg *config.Config) AuthService {
	return &authService{
		users: users,
		cfg:   cfg,
	}
}

// Login exchanges credentials for a signed access token. Unknown accounts
// and wrong passwords produce the same error so user names cannot be
// probed.
func (s *authService) Login(ctx context.Context, userName, plainPassword string) (token.AccessToken, error) {
	if userName == "" || plainPassword == "" {
		return token.AccessToken{}, apperrors.InvalidInput("User name and password are required")
	}

	user, err := s.users.FindByUserName(ctx, userName)
	if err != nil {
		if errors.Is(err, usererrors.ErrNotFound) {
			return token.AccessToken{}, apperrors.Unauthorized("Invalid credentials")
		}
		s.cfg.Log.Error("Failed to look up user for login", "user_name", userName, "error", err)
		return token.AccessToken{}, apperrors.Internal("Failed to process login", err)
	}

	if !password.Verify(user.PasswordHash, plainPassword) {
		s.cfg.Log.Warn("Rejected login attempt", "user_name", userName)
		return token.AccessToken{}, apperrors.Unauthorized("Invalid credentials")
	}

	accessToken, err := token.NewAccessToken(s.cfg.JWTSecret, user.ID, user.Roles, s.cfg.AccessTokenTTL)
	if err != nil {
		s.cfg.Log.Error("Failed to sign access token", "user_id", user.ID, "error", err)
		return token.AccessToken{}, apperrors.Internal("Failed to issue access token", err)
	}

	s.cfg.Log.Info("User logged in", "user_id", user.ID)
	return accessToken, nil
}
