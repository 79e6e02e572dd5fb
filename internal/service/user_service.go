package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/techaway/backend/internal/auth"
	"github.com/techaway/backend/internal/domain"
	"github.com/techaway/backend/internal/repository"
	apperrors "github.com/techaway/backend/pkg/util"
)

// UserListInput captures search parameters for the account listing.
type UserListInput struct {
	Search string
	Limit  int
	Offset int
}

// UserUpdateInput carries the fields an administrator may change. Nil
// pointers leave the current value untouched; an empty Roles slice keeps the
// existing roles.
type UserUpdateInput struct {
	Name    *string
	Address *string
	Phone   *string
	Roles   []domain.Role
}

// UserService is the admin-only account management surface.
type UserService struct {
	users  repository.UserRepository
	logger *zap.Logger
}

// NewUserService builds the service.
func NewUserService(users repository.UserRepository, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{users: users, logger: logger}
}

// List searches accounts by name or email.
func (s *UserService) List(ctx context.Context, actor *domain.User, input UserListInput) ([]domain.User, error) {
	if !auth.IsAllowed(actor, auth.ActionUserManage, nil) {
		return nil, apperrors.NewForbidden("not allowed to manage users")
	}
	return s.users.Search(ctx, input.Search, input.Limit, input.Offset)
}

// Update applies profile and role changes to an account.
func (s *UserService) Update(ctx context.Context, actor *domain.User, userID string, input UserUpdateInput) (*domain.User, error) {
	if !auth.IsAllowed(actor, auth.ActionUserManage, nil) {
		return nil, apperrors.NewForbidden("not allowed to manage users")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return nil, err
	}

	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Address != nil {
		user.Address = *input.Address
	}
	if input.Phone != nil {
		user.Phone = *input.Phone
	}
	if len(input.Roles) > 0 {
		for _, role := range input.Roles {
			if !role.Valid() {
				return nil, apperrors.NewValidationError("unknown role", map[string]any{"role": role})
			}
		}
		user.Roles = input.Roles
	}

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return nil, err
	}
	s.logger.Info("user updated", zap.String("user_id", user.ID), zap.String("actor_id", actor.ID))
	return user, nil
}
