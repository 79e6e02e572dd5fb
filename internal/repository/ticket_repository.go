package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/techaway/backend/internal/domain"
	"github.com/techaway/backend/internal/persistence"
)

// TicketFilter captures listing parameters.
type TicketFilter struct {
	CustomerID *string
	AssignedTo *string
	OrderID    *string
	Statuses   []domain.TicketStatus
	Urgencies  []domain.TicketUrgency
	Cancelled  *bool
	Limit      int
	Offset     int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	CreateBatch(ctx context.Context, tickets []*domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	GetByIDs(ctx context.Context, ids []string) ([]domain.Ticket, error)
	SetCostAndOrder(ctx context.Context, ticketID string, cost decimal.Decimal, orderID string) error
	CancelByOrder(ctx context.Context, orderID string) error
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
}

type ticketRepository struct {
	pool persistence.Querier
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool persistence.Querier) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) db(ctx context.Context) persistence.Querier {
	return persistence.QuerierFrom(ctx, r.pool)
}

const ticketColumns = `id, service_id, customer_id, assigned_to, urgency, customer_note,
               technician_note, location, status, cost, order_id, cancelled, created_at, updated_at`

// CreateBatch inserts tickets one by one so each gets its id back in input
// order; callers run it inside a transaction when atomicity matters.
func (r *ticketRepository) CreateBatch(ctx context.Context, tickets []*domain.Ticket) error {
	const query = `
        INSERT INTO tickets (service_id, customer_id, assigned_to, urgency, customer_note, technician_note, location, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	const modQuery = `INSERT INTO ticket_modifiers (ticket_id, sla_id) VALUES ($1,$2)`

	db := r.db(ctx)
	for _, ticket := range tickets {
		if err := db.QueryRow(ctx, query,
			ticket.ServiceID,
			ticket.CustomerID,
			ticket.AssignedTo,
			ticket.Urgency,
			ticket.CustomerNote,
			ticket.TechnicianNote,
			ticket.Location,
			ticket.Status,
		).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt); err != nil {
			return err
		}
		for _, slaID := range ticket.ModifierIDs {
			if _, err := db.Exec(ctx, modQuery, ticket.ID, slaID); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET assigned_to=$1, urgency=$2, customer_note=$3, technician_note=$4,
            location=$5, status=$6, cancelled=$7, updated_at=NOW()
        WHERE id=$8`
	cmd, err := r.db(ctx).Exec(ctx, query,
		ticket.AssignedTo,
		ticket.Urgency,
		ticket.CustomerNote,
		ticket.TechnicianNote,
		ticket.Location,
		ticket.Status,
		ticket.Cancelled,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := r.db(ctx).QueryRow(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id=$1`, id).Scan(
		&ticket.ID,
		&ticket.ServiceID,
		&ticket.CustomerID,
		&ticket.AssignedTo,
		&ticket.Urgency,
		&ticket.CustomerNote,
		&ticket.TechnicianNote,
		&ticket.Location,
		&ticket.Status,
		&ticket.Cost,
		&ticket.OrderID,
		&ticket.Cancelled,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := r.attachModifiers(ctx, []*domain.Ticket{&ticket}); err != nil {
		return nil, err
	}
	return &ticket, nil
}

// GetByIDs resolves tickets with their modifier ids. Unknown ids are absent
// from the result; callers compare counts when that matters.
func (r *ticketRepository) GetByIDs(ctx context.Context, ids []string) ([]domain.Ticket, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.db(ctx).Query(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets, err := scanTickets(rows)
	if err != nil {
		return nil, err
	}
	refs := make([]*domain.Ticket, len(tickets))
	for i := range tickets {
		refs[i] = &tickets[i]
	}
	if err := r.attachModifiers(ctx, refs); err != nil {
		return nil, err
	}
	return tickets, nil
}

func (r *ticketRepository) SetCostAndOrder(ctx context.Context, ticketID string, cost decimal.Decimal, orderID string) error {
	const query = `UPDATE tickets SET cost=$1, order_id=$2, updated_at=NOW() WHERE id=$3`
	cmd, err := r.db(ctx).Exec(ctx, query, cost, orderID, ticketID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// CancelByOrder soft-cancels every ticket belonging to the order. Re-running
// it is a no-op state-wise.
func (r *ticketRepository) CancelByOrder(ctx context.Context, orderID string) error {
	const query = `UPDATE tickets SET cancelled=TRUE, updated_at=NOW() WHERE order_id=$1 AND cancelled=FALSE`
	_, err := r.db(ctx).Exec(ctx, query, orderID)
	return err
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	base := `SELECT ` + ticketColumns + ` FROM tickets`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.CustomerID != nil {
		args = append(args, *filter.CustomerID)
		clauses = append(clauses, fmt.Sprintf("customer_id=$%d", len(args)))
	}
	if filter.AssignedTo != nil {
		args = append(args, *filter.AssignedTo)
		clauses = append(clauses, fmt.Sprintf("assigned_to=$%d", len(args)))
	}
	if filter.OrderID != nil {
		args = append(args, *filter.OrderID)
		clauses = append(clauses, fmt.Sprintf("order_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Urgencies) > 0 {
		placeholders := make([]string, len(filter.Urgencies))
		for i, urgency := range filter.Urgencies {
			args = append(args, urgency)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("urgency IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.Cancelled != nil {
		args = append(args, *filter.Cancelled)
		clauses = append(clauses, fmt.Sprintf("cancelled=$%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY updated_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets, err := scanTickets(rows)
	if err != nil {
		return nil, err
	}
	refs := make([]*domain.Ticket, len(tickets))
	for i := range tickets {
		refs[i] = &tickets[i]
	}
	if err := r.attachModifiers(ctx, refs); err != nil {
		return nil, err
	}
	return tickets, nil
}

func (r *ticketRepository) attachModifiers(ctx context.Context, tickets []*domain.Ticket) error {
	if len(tickets) == 0 {
		return nil
	}
	ids := make([]string, len(tickets))
	index := make(map[string]*domain.Ticket, len(tickets))
	for i, ticket := range tickets {
		ids[i] = ticket.ID
		index[ticket.ID] = ticket
	}

	rows, err := r.db(ctx).Query(ctx,
		`SELECT ticket_id, sla_id FROM ticket_modifiers WHERE ticket_id = ANY($1)`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var ticketID, slaID string
		if err := rows.Scan(&ticketID, &slaID); err != nil {
			return err
		}
		if ticket, ok := index[ticketID]; ok {
			ticket.ModifierIDs = append(ticket.ModifierIDs, slaID)
		}
	}
	return rows.Err()
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.ServiceID,
			&ticket.CustomerID,
			&ticket.AssignedTo,
			&ticket.Urgency,
			&ticket.CustomerNote,
			&ticket.TechnicianNote,
			&ticket.Location,
			&ticket.Status,
			&ticket.Cost,
			&ticket.OrderID,
			&ticket.Cancelled,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
