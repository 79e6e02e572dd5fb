package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/techaway/backend/internal/domain"
	"github.com/techaway/backend/internal/persistence"
)

// OrderFilter captures listing parameters for orders.
type OrderFilter struct {
	CustomerID *string
	Statuses   []domain.OrderStatus
	SortField  string
	SortDesc   bool
	Limit      int
	Offset     int
}

// OrderRepository encapsulates order persistence.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]domain.Order, int64, error)
	Complete(ctx context.Context, id, paymentIntentID string) (bool, error)
	Cancel(ctx context.Context, id string) error
}

type orderRepository struct {
	pool persistence.Querier
}

// NewOrderRepository instantiates repository.
func NewOrderRepository(pool persistence.Querier) OrderRepository {
	return &orderRepository{pool: pool}
}

func (r *orderRepository) db(ctx context.Context) persistence.Querier {
	return persistence.QuerierFrom(ctx, r.pool)
}

const orderColumns = `id, customer_id, grand_total, status, payment_intent_id, created_at, updated_at`

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	const query = `
        INSERT INTO orders (customer_id, grand_total, status)
        VALUES ($1,$2,$3)
        RETURNING id, created_at, updated_at`
	if order.Status == "" {
		order.Status = domain.OrderStatusPending
	}
	return r.db(ctx).QueryRow(ctx, query,
		order.CustomerID,
		order.GrandTotal,
		order.Status,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	var order domain.Order
	if err := r.db(ctx).QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id).Scan(
		&order.ID,
		&order.CustomerID,
		&order.GrandTotal,
		&order.Status,
		&order.PaymentIntentID,
		&order.CreatedAt,
		&order.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := r.attachTicketIDs(ctx, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

var orderSortFields = map[string]string{
	"createdAt":  "created_at",
	"updatedAt":  "updated_at",
	"grandTotal": "grand_total",
	"status":     "status",
}

func (r *orderRepository) List(ctx context.Context, filter OrderFilter) ([]domain.Order, int64, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.CustomerID != nil {
		args = append(args, *filter.CustomerID)
		clauses = append(clauses, fmt.Sprintf("customer_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}

	where := strings.Join(clauses, " AND ")

	var total int64
	if err := r.db(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sortCol, ok := orderSortFields[filter.SortField]
	if !ok {
		sortCol = "created_at"
	}
	direction := "ASC"
	if filter.SortDesc {
		direction = "DESC"
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM orders WHERE %s ORDER BY %s %s LIMIT %d OFFSET %d`,
		orderColumns, where, sortCol, direction, limit, offset)

	rows, err := r.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []domain.Order
	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(
			&order.ID,
			&order.CustomerID,
			&order.GrandTotal,
			&order.Status,
			&order.PaymentIntentID,
			&order.CreatedAt,
			&order.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		result = append(result, order)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	for i := range result {
		if err := r.attachTicketIDs(ctx, &result[i]); err != nil {
			return nil, 0, err
		}
	}
	return result, total, nil
}

// Complete flips a pending order to completed and records the payment intent
// id in one conditional update. Returns false when the order was not pending
// anymore, which is how webhook redelivery is detected.
func (r *orderRepository) Complete(ctx context.Context, id, paymentIntentID string) (bool, error) {
	const query = `
        UPDATE orders SET status='completed', payment_intent_id=$1, updated_at=NOW()
        WHERE id=$2 AND status='pending'`
	cmd, err := r.db(ctx).Exec(ctx, query, paymentIntentID, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

// Cancel sets the order cancelled. Already-cancelled orders are untouched so
// re-cancelling stays a no-op.
func (r *orderRepository) Cancel(ctx context.Context, id string) error {
	const query = `UPDATE orders SET status='cancelled', updated_at=NOW() WHERE id=$1 AND status<>'cancelled'`
	_, err := r.db(ctx).Exec(ctx, query, id)
	return err
}

func (r *orderRepository) attachTicketIDs(ctx context.Context, order *domain.Order) error {
	rows, err := r.db(ctx).Query(ctx,
		`SELECT id FROM tickets WHERE order_id=$1 ORDER BY created_at ASC`, order.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return err
		}
		order.TicketIDs = append(order.TicketIDs, id)
	}
	return rows.Err()
}
