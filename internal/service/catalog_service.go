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

// CatalogService serves the public services/SLA catalog and its admin-only
// write surface.
type CatalogService struct {
	services repository.ServiceRepository
	slas     repository.SLARepository
	logger   *zap.Logger
}

// CatalogDependencies bundles requirements for the catalog service.
type CatalogDependencies struct {
	ServiceRepo repository.ServiceRepository
	SLARepo     repository.SLARepository
	Logger      *zap.Logger
}

// NewCatalogService builds the service.
func NewCatalogService(deps CatalogDependencies) *CatalogService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{
		services: deps.ServiceRepo,
		slas:     deps.SLARepo,
		logger:   logger,
	}
}

// ListServices returns catalog services, optionally filtered by a full-text
// search term.
func (s *CatalogService) ListServices(ctx context.Context, search string, limit, offset int) ([]domain.Service, error) {
	return s.services.Search(ctx, search, limit, offset)
}

// GetService loads one catalog service.
func (s *CatalogService) GetService(ctx context.Context, id string) (*domain.Service, error) {
	svc, err := s.services.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("service", map[string]any{"service_id": id})
		}
		return nil, err
	}
	return svc, nil
}

// CreateService adds a catalog entry; admin only.
func (s *CatalogService) CreateService(ctx context.Context, user *domain.User, svc *domain.Service) error {
	if !auth.IsAllowed(user, auth.ActionCatalogWrite, nil) {
		return apperrors.NewForbidden("not allowed to manage the catalog")
	}
	if err := validateService(svc); err != nil {
		return err
	}
	return s.services.Create(ctx, svc)
}

// UpdateService updates a catalog entry; admin only.
func (s *CatalogService) UpdateService(ctx context.Context, user *domain.User, svc *domain.Service) error {
	if !auth.IsAllowed(user, auth.ActionCatalogWrite, nil) {
		return apperrors.NewForbidden("not allowed to manage the catalog")
	}
	if err := validateService(svc); err != nil {
		return err
	}
	if err := s.services.Update(ctx, svc); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("service", map[string]any{"service_id": svc.ID})
		}
		return err
	}
	return nil
}

// DeleteService removes a catalog entry; admin only.
func (s *CatalogService) DeleteService(ctx context.Context, user *domain.User, id string) error {
	if !auth.IsAllowed(user, auth.ActionCatalogWrite, nil) {
		return apperrors.NewForbidden("not allowed to manage the catalog")
	}
	if err := s.services.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("service", map[string]any{"service_id": id})
		}
		return err
	}
	return nil
}

// ListSLAs returns the SLA catalog.
func (s *CatalogService) ListSLAs(ctx context.Context, limit, offset int) ([]domain.ServiceLevelAgreement, error) {
	return s.slas.List(ctx, limit, offset)
}

// GetSLA loads one SLA.
func (s *CatalogService) GetSLA(ctx context.Context, id string) (*domain.ServiceLevelAgreement, error) {
	sla, err := s.slas.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("sla", map[string]any{"sla_id": id})
		}
		return nil, err
	}
	return sla, nil
}

// CreateSLA adds an SLA; admin only.
func (s *CatalogService) CreateSLA(ctx context.Context, user *domain.User, sla *domain.ServiceLevelAgreement) error {
	if !auth.IsAllowed(user, auth.ActionCatalogWrite, nil) {
		return apperrors.NewForbidden("not allowed to manage the catalog")
	}
	return s.slas.Create(ctx, sla)
}

// UpdateSLA updates an SLA; admin only.
func (s *CatalogService) UpdateSLA(ctx context.Context, user *domain.User, sla *domain.ServiceLevelAgreement) error {
	if !auth.IsAllowed(user, auth.ActionCatalogWrite, nil) {
		return apperrors.NewForbidden("not allowed to manage the catalog")
	}
	if err := s.slas.Update(ctx, sla); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("sla", map[string]any{"sla_id": sla.ID})
		}
		return err
	}
	return nil
}

// DeleteSLA removes an SLA; admin only.
func (s *CatalogService) DeleteSLA(ctx context.Context, user *domain.User, id string) error {
	if !auth.IsAllowed(user, auth.ActionCatalogWrite, nil) {
		return apperrors.NewForbidden("not allowed to manage the catalog")
	}
	if err := s.slas.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("sla", map[string]any{"sla_id": id})
		}
		return err
	}
	return nil
}

func validateService(svc *domain.Service) error {
	if svc.Title == "" {
		return apperrors.NewValidationError("title is required", nil)
	}
	if svc.Price.IsNegative() {
		return apperrors.NewValidationError("price cannot be negative", nil)
	}
	return nil
}
