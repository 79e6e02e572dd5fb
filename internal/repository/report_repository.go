package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/techaway/backend/internal/domain"
	"github.com/techaway/backend/internal/persistence"
)

// RevenueLine aggregates every order sharing one status.
type RevenueLine struct {
	Status domain.OrderStatus
	Orders int64
	Total  decimal.Decimal
}

// TechnicianWorkload summarizes one technician's ticket load.
type TechnicianWorkload struct {
	TechnicianID string
	Name         string
	Email        string
	Open         int64
	Completed    int64
	Cancelled    int64
}

// ReportRepository runs the read-only aggregate queries behind admin reports.
type ReportRepository interface {
	RevenueByStatus(ctx context.Context) ([]RevenueLine, error)
	TechnicianWorkload(ctx context.Context) ([]TechnicianWorkload, error)
}

type reportRepository struct {
	pool persistence.Querier
}

// NewReportRepository instantiates repository.
func NewReportRepository(pool persistence.Querier) ReportRepository {
	return &reportRepository{pool: pool}
}

func (r *reportRepository) db(ctx context.Context) persistence.Querier {
	return persistence.QuerierFrom(ctx, r.pool)
}

func (r *reportRepository) RevenueByStatus(ctx context.Context) ([]RevenueLine, error) {
	const query = `
        SELECT status, COUNT(*), COALESCE(SUM(grand_total), 0)
        FROM orders
        GROUP BY status
        ORDER BY status`
	rows, err := r.db(ctx).Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []RevenueLine
	for rows.Next() {
		var line RevenueLine
		if err := rows.Scan(&line.Status, &line.Orders, &line.Total); err != nil {
			return nil, err
		}
		result = append(result, line)
	}
	return result, rows.Err()
}

// TechnicianWorkload lists every technician, including those without any
// assigned ticket yet.
func (r *reportRepository) TechnicianWorkload(ctx context.Context) ([]TechnicianWorkload, error) {
	const query = `
        SELECT u.id, u.name, u.email,
               COUNT(t.id) FILTER (WHERE NOT t.cancelled AND t.status <> 'COMPLETE'),
               COUNT(t.id) FILTER (WHERE NOT t.cancelled AND t.status = 'COMPLETE'),
               COUNT(t.id) FILTER (WHERE t.cancelled)
        FROM users u
        LEFT JOIN tickets t ON t.assigned_to = u.id
        WHERE 'technician' = ANY(u.roles)
        GROUP BY u.id, u.name, u.email
        ORDER BY u.name ASC`
	rows, err := r.db(ctx).Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []TechnicianWorkload
	for rows.Next() {
		var row TechnicianWorkload
		if err := rows.Scan(&row.TechnicianID, &row.Name, &row.Email, &row.Open, &row.Completed, &row.Cancelled); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
