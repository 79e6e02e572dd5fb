package dto

import "github.com/techaway/backend/internal/domain"

// RevenueLineResponse is one status bucket of the revenue report.
type RevenueLineResponse struct {
	Status domain.OrderStatus `json:"status"`
	Orders int64              `json:"orders"`
	Total  string             `json:"total"`
}

// RevenueReportResponse payload.
type RevenueReportResponse struct {
	Lines            []RevenueLineResponse `json:"lines"`
	CompletedRevenue string                `json:"completed_revenue"`
}

// TechnicianWorkloadResponse is one technician's ticket counts.
type TechnicianWorkloadResponse struct {
	TechnicianID string `json:"technician_id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Open         int64  `json:"open"`
	Completed    int64  `json:"completed"`
	Cancelled    int64  `json:"cancelled"`
}
