package service

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/techaway/backend/internal/auth"
	"github.com/techaway/backend/internal/domain"
	"github.com/techaway/backend/internal/repository"
	apperrors "github.com/techaway/backend/pkg/util"
)

// RevenueReport is the per-status breakdown plus the completed-order revenue.
type RevenueReport struct {
	Lines            []repository.RevenueLine
	CompletedRevenue decimal.Decimal
}

// ReportService exposes the admin-only reporting surface.
type ReportService struct {
	reports repository.ReportRepository
	logger  *zap.Logger
}

// NewReportService builds the service.
func NewReportService(reports repository.ReportRepository, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{reports: reports, logger: logger}
}

// Revenue aggregates orders by status. Only completed orders count as
// realized revenue.
func (s *ReportService) Revenue(ctx context.Context, actor *domain.User) (*RevenueReport, error) {
	if !auth.IsAllowed(actor, auth.ActionReportRead, nil) {
		return nil, apperrors.NewForbidden("not allowed to view reports")
	}

	lines, err := s.reports.RevenueByStatus(ctx)
	if err != nil {
		return nil, err
	}

	report := &RevenueReport{Lines: lines, CompletedRevenue: decimal.Zero}
	for _, line := range lines {
		if line.Status == domain.OrderStatusCompleted {
			report.CompletedRevenue = report.CompletedRevenue.Add(line.Total)
		}
	}
	return report, nil
}

// TechnicianWorkload returns per-technician ticket counts.
func (s *ReportService) TechnicianWorkload(ctx context.Context, actor *domain.User) ([]repository.TechnicianWorkload, error) {
	if !auth.IsAllowed(actor, auth.ActionReportRead, nil) {
		return nil, apperrors.NewForbidden("not allowed to view reports")
	}
	return s.reports.TechnicianWorkload(ctx)
}
