package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/techaway/backend/internal/domain"
	"github.com/techaway/backend/internal/repository"
	apperrors "github.com/techaway/backend/pkg/util"
)

// Authenticator performs credential and bearer-token verification. It is a
// plain value constructed in main and handed to whoever needs it; nothing is
// registered into a process-wide registry.
type Authenticator struct {
	users  repository.UserRepository
	tokens *TokenManager
}

// NewAuthenticator builds an authenticator.
func NewAuthenticator(users repository.UserRepository, tokens *TokenManager) *Authenticator {
	return &Authenticator{users: users, tokens: tokens}
}

// VerifyCredentials checks a username/password pair and returns the account.
func (a *Authenticator) VerifyCredentials(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := a.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, err
	}
	if err := ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	return user, nil
}

// VerifyBearerToken validates an access token and resolves its user.
func (a *Authenticator) VerifyBearerToken(ctx context.Context, token string) (*domain.User, error) {
	claims, err := a.tokens.Parse(token, PurposeAccess)
	if err != nil {
		return nil, err
	}
	user, err := a.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("user not found")
		}
		return nil, err
	}
	return user, nil
}

// TokenManager exposes the underlying token manager.
func (a *Authenticator) TokenManager() *TokenManager {
	return a.tokens
}
