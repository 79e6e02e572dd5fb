package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/techaway/backend/internal/auth"
	"github.com/techaway/backend/internal/domain"
	"github.com/techaway/backend/internal/events"
	"github.com/techaway/backend/internal/mail"
	"github.com/techaway/backend/internal/persistence"
	"github.com/techaway/backend/internal/repository"
	apperrors "github.com/techaway/backend/pkg/util"
)

// CredentialChecker is the pluggable credential-verification step used by
// Login; auth.Authenticator is the production implementation.
type CredentialChecker interface {
	VerifyCredentials(ctx context.Context, username, password string) (*domain.User, error)
}

// SignUpInput describes the signup payload.
type SignUpInput struct {
	Email    string
	Password string
	Role     domain.Role
	Name     string
	Address  string
	Phone    string
}

// AuthService coordinates signup, login and the refresh-token lifecycle.
type AuthService struct {
	users       repository.UserRepository
	refresh     repository.RefreshTokenRepository
	tx          persistence.TxManager
	tokens      *auth.TokenManager
	credentials CredentialChecker
	mailer      mail.Mailer
	dispatcher  events.Dispatcher
	logger      *zap.Logger
	bcryptCost  int
	baseURL     string
}

// AuthDependencies bundles requirements for the auth service.
type AuthDependencies struct {
	UserRepo         repository.UserRepository
	RefreshTokenRepo repository.RefreshTokenRepository
	TxManager        persistence.TxManager
	TokenManager     *auth.TokenManager
	Credentials      CredentialChecker
	Mailer           mail.Mailer
	Dispatcher       events.Dispatcher
	Logger           *zap.Logger
	BcryptCost       int
	BaseURL          string
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	cost := deps.BcryptCost
	if cost <= 0 {
		cost = 12
	}
	return &AuthService{
		users:       deps.UserRepo,
		refresh:     deps.RefreshTokenRepo,
		tx:          deps.TxManager,
		tokens:      deps.TokenManager,
		credentials: deps.Credentials,
		mailer:      deps.Mailer,
		dispatcher:  deps.Dispatcher,
		logger:      logger,
		bcryptCost:  cost,
		baseURL:     deps.BaseURL,
	}
}

// SignUp creates an unverified account and dispatches the confirmation email
// inside one transaction: the user row does not survive a failed email send.
func (s *AuthService) SignUp(ctx context.Context, input SignUpInput) (*domain.User, error) {
	if input.Role == "" {
		input.Role = domain.RoleCustomer
	}

	if _, err := s.users.GetByEmail(ctx, input.Email); err == nil {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"email": input.Email})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     input.Email,
		Email:        input.Email,
		PasswordHash: hash,
		Roles:        []domain.Role{input.Role},
		Name:         input.Name,
		Address:      input.Address,
		Phone:        input.Phone,
	}

	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.users.Create(txCtx, user); err != nil {
			return err
		}

		token, _, err := s.tokens.SignConfirm(user.ID)
		if err != nil {
			return err
		}
		confirmURL, err := s.confirmURL(token)
		if err != nil {
			return err
		}

		return s.mailer.Send(mail.Message{
			To:      user.Email,
			Subject: "Welcome to TechAway",
			HTML: fmt.Sprintf(`<h1>Welcome to TechAway</h1><p>Please confirm your email by clicking on the following link: <a href="%s">Confirm Email</a></p>`,
				confirmURL),
		})
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:    events.EventUserSignedUp,
		Payload: events.UserSignedUpPayload{UserID: user.ID, Email: user.Email},
	})
	return user, nil
}

// ConfirmEmail verifies the confirmation token and marks the user verified.
// Confirming twice with a still-valid token is a no-op.
func (s *AuthService) ConfirmEmail(ctx context.Context, token string) error {
	claims, err := s.tokens.Parse(token, auth.PurposeConfirm)
	if err != nil {
		return err
	}
	if err := s.users.MarkEmailVerified(ctx, claims.UserID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", nil)
		}
		return err
	}
	return nil
}

// Login verifies credentials, rejects unverified accounts and issues a fresh
// token triple.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, *domain.TokenPair, error) {
	user, err := s.credentials.VerifyCredentials(ctx, username, password)
	if err != nil {
		return nil, nil, err
	}
	if !user.EmailVerified {
		return nil, nil, apperrors.NewForbidden("email not verified")
	}
	pair, err := s.IssueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// IssueTokens signs the identity/access/refresh triple and persists the
// hashed refresh record.
func (s *AuthService) IssueTokens(ctx context.Context, user *domain.User) (*domain.TokenPair, error) {
	idToken, _, err := s.tokens.SignIdentity(user)
	if err != nil {
		return nil, err
	}
	accessToken, expiresAt, err := s.tokens.SignAccess(user)
	if err != nil {
		return nil, err
	}
	refreshToken, _, err := s.tokens.SignRefresh(user.ID)
	if err != nil {
		return nil, err
	}

	record := &domain.RefreshToken{
		TokenHash: auth.HashToken(refreshToken),
		UserID:    user.ID,
	}
	if err := s.refresh.Create(ctx, record); err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		IDToken:      idToken,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
	}, nil
}

// Refresh rotates a refresh token: the presented record is consumed exactly
// once and a new triple is issued. Presenting an already-consumed token is
// treated as theft and revokes every session the user holds.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.User, *domain.TokenPair, error) {
	claims, err := s.tokens.Parse(refreshToken, auth.PurposeRefresh)
	if err != nil {
		return nil, nil, err
	}

	record, err := s.refresh.GetByHash(ctx, auth.HashToken(refreshToken))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewUnauthorized("unknown refresh token")
		}
		return nil, nil, err
	}
	if record.UserID != claims.UserID {
		return nil, nil, apperrors.NewUnauthorized("refresh token subject mismatch")
	}

	if record.Invalid {
		return nil, nil, s.revokeFamily(ctx, record.UserID)
	}

	consumed, err := s.refresh.Consume(ctx, record.ID)
	if err != nil {
		return nil, nil, err
	}
	if !consumed {
		// lost the race against a concurrent redemption of the same token
		return nil, nil, s.revokeFamily(ctx, record.UserID)
	}

	user, err := s.users.GetByID(ctx, record.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewUnauthorized("user not found")
		}
		return nil, nil, err
	}

	pair, err := s.IssueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

func (s *AuthService) revokeFamily(ctx context.Context, userID string) error {
	if err := s.refresh.InvalidateAllForUser(ctx, userID); err != nil {
		return err
	}
	s.logger.Warn("refresh token replay detected; all sessions revoked", zap.String("user_id", userID))
	s.publish(ctx, events.Event{
		Type:    events.EventSessionsRevoked,
		Payload: events.SessionsRevokedPayload{UserID: userID, Reason: "refresh_token_reuse"},
	})
	return apperrors.NewReplayDetected("refresh token reused")
}

// RequestPasswordReset emails a short-lived reset token.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", nil)
		}
		return err
	}

	token, _, err := s.tokens.SignReset(user.ID)
	if err != nil {
		return err
	}
	resetURL, err := s.resetURL(token)
	if err != nil {
		return err
	}

	return s.mailer.Send(mail.Message{
		To:      user.Email,
		Subject: "TechAway Password Reset",
		HTML: fmt.Sprintf(`<h1>Password Reset</h1><p>Reset your password by clicking on the following link: <a href="%s">Reset Password</a></p>`,
			resetURL),
	})
}

// ResetPassword overwrites the password and revokes every refresh token the
// user holds; existing sessions must log in again.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	claims, err := s.tokens.Parse(token, auth.PurposeReset)
	if err != nil {
		return err
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePasswordHash(ctx, claims.UserID, hash); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", nil)
		}
		return err
	}

	if err := s.refresh.InvalidateAllForUser(ctx, claims.UserID); err != nil {
		return err
	}
	s.publish(ctx, events.Event{
		Type:    events.EventSessionsRevoked,
		Payload: events.SessionsRevokedPayload{UserID: claims.UserID, Reason: "password_reset"},
	})
	return nil
}

// Logout verifies the refresh token's owner and invalidates the whole cohort.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.tokens.Parse(refreshToken, auth.PurposeRefresh)
	if err != nil {
		return err
	}

	record, err := s.refresh.GetByHash(ctx, auth.HashToken(refreshToken))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthorized("unknown refresh token")
		}
		return err
	}
	if record.UserID != claims.UserID {
		return apperrors.NewUnauthorized("refresh token subject mismatch")
	}

	return s.refresh.InvalidateAllForUser(ctx, claims.UserID)
}

func (s *AuthService) confirmURL(token string) (string, error) {
	return s.tokenURL("/auth/confirm", token)
}

func (s *AuthService) resetURL(token string) (string, error) {
	return s.tokenURL("/auth/password/reset/confirm", token)
}

func (s *AuthService) tokenURL(path, token string) (string, error) {
	base, err := url.Parse(s.baseURL)
	if err != nil {
		return "", err
	}
	u := base.JoinPath(path)
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
