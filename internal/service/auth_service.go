package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/user-service/internal/auth"
	"github.com/spec-kit/user-service/internal/config"
	"github.com/spec-kit/user-service/internal/repository"
	apperrors "github.com/spec-kit/user-service/pkg/util"
)

// AuthService issues access tokens. Login is the only flow: a token is
// granted when the identifier names an existing user row. Passwords are
// not checked unless enforcement is switched on in config.
type AuthService struct {
	users            repository.UserRepository
	tokenMgr         *auth.TokenManager
	enforcePasswords bool
}

// NewAuthService builds the service with the injected signing config.
func NewAuthService(cfg config.AuthConfig, users repository.UserRepository) *AuthService {
	return &AuthService{
		users:            users,
		tokenMgr:         auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL()),
		enforcePasswords: cfg.EnforcePasswords,
	}
}

// Login authenticates by identifier and returns a signed token whose
// subject is the user id. Any identifier that does not resolve to a row,
// including one that is not a numeric id at all, is unauthorized.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (string, time.Time, error) {
	userID, err := strconv.ParseInt(identifier, 10, 64)
	if err != nil {
		return "", time.Time{}, apperrors.NewUnauthorized("unknown user")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", time.Time{}, apperrors.NewUnauthorized("unknown user")
		}
		return "", time.Time{}, err
	}

	if s.enforcePasswords && user.PasswordHash != "" {
		if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
			return "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
		}
	}

	token, exp, err := s.tokenMgr.GenerateToken(user.ID)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, exp, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
