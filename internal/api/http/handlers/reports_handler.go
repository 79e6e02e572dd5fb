package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/techaway/backend/internal/api/dto"
	"github.com/techaway/backend/internal/auth"
	"github.com/techaway/backend/internal/service"
	apperrors "github.com/techaway/backend/pkg/util"
)

// ReportsHandler manages the admin reporting endpoints.
type ReportsHandler struct {
	service *service.ReportService
}

// NewReportsHandler constructs handler.
func NewReportsHandler(reportService *service.ReportService) *ReportsHandler {
	return &ReportsHandler{service: reportService}
}

// Revenue GET /reports/revenue.
func (h *ReportsHandler) Revenue(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}

	report, err := h.service.Revenue(c.Context(), principal.User)
	if err != nil {
		return err
	}

	lines := make([]dto.RevenueLineResponse, 0, len(report.Lines))
	for _, line := range report.Lines {
		lines = append(lines, dto.RevenueLineResponse{
			Status: line.Status,
			Orders: line.Orders,
			Total:  line.Total.StringFixed(2),
		})
	}
	return c.JSON(fiber.Map{"data": dto.RevenueReportResponse{
		Lines:            lines,
		CompletedRevenue: report.CompletedRevenue.StringFixed(2),
	}})
}

// Technicians GET /reports/technicians.
func (h *ReportsHandler) Technicians(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}

	workload, err := h.service.TechnicianWorkload(c.Context(), principal.User)
	if err != nil {
		return err
	}

	rows := make([]dto.TechnicianWorkloadResponse, 0, len(workload))
	for _, row := range workload {
		rows = append(rows, dto.TechnicianWorkloadResponse{
			TechnicianID: row.TechnicianID,
			Name:         row.Name,
			Email:        row.Email,
			Open:         row.Open,
			Completed:    row.Completed,
			Cancelled:    row.Cancelled,
		})
	}
	return c.JSON(fiber.Map{"data": rows})
}
