package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/techaway/backend/internal/auth"
	"github.com/techaway/backend/internal/domain"
	"github.com/techaway/backend/internal/events"
	"github.com/techaway/backend/internal/persistence"
	"github.com/techaway/backend/internal/repository"
	apperrors "github.com/techaway/backend/pkg/util"
)

// OrderListInput captures listing parameters from the caller.
type OrderListInput struct {
	Statuses  []domain.OrderStatus
	SortField string
	SortDesc  bool
	Limit     int
	Offset    int
}

// OrderPage is one page of orders plus the unpaged total.
type OrderPage struct {
	Orders []domain.Order
	Total  int64
}

// OrderService exposes the read/cancel surface over orders.
type OrderService struct {
	orders     repository.OrderRepository
	tickets    repository.TicketRepository
	tx         persistence.TxManager
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// OrderServiceDependencies bundles requirements for the order service.
type OrderServiceDependencies struct {
	OrderRepo  repository.OrderRepository
	TicketRepo repository.TicketRepository
	TxManager  persistence.TxManager
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewOrderService builds the service.
func NewOrderService(deps OrderServiceDependencies) *OrderService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		orders:     deps.OrderRepo,
		tickets:    deps.TicketRepo,
		tx:         deps.TxManager,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// List returns orders visible to the caller. Callers allowed to list across
// customers see everything; everyone else is scoped to their own orders.
func (s *OrderService) List(ctx context.Context, user *domain.User, input OrderListInput) (*OrderPage, error) {
	filter := repository.OrderFilter{
		Statuses:  input.Statuses,
		SortField: input.SortField,
		SortDesc:  input.SortDesc,
		Limit:     input.Limit,
		Offset:    input.Offset,
	}
	if !auth.IsAllowed(user, auth.ActionOrderList, nil) {
		filter.CustomerID = &user.ID
	}

	orders, total, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &OrderPage{Orders: orders, Total: total}, nil
}

// Get loads one order, enforcing ownership for non-admin callers.
func (s *OrderService) Get(ctx context.Context, user *domain.User, orderID string) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("order", map[string]any{"order_id": orderID})
		}
		return nil, err
	}
	if !auth.IsAllowed(user, auth.ActionOrderRead, &auth.Resource{OwnerID: order.CustomerID}) {
		return nil, apperrors.NewForbidden("not allowed to view this order")
	}
	return order, nil
}

// Cancel marks the order cancelled and soft-cancels its tickets in one
// transaction. Cancelling an already-cancelled order is a no-op; completed
// orders cannot be cancelled.
func (s *OrderService) Cancel(ctx context.Context, user *domain.User, orderID string) (*domain.Order, error) {
	order, err := s.Get(ctx, user, orderID)
	if err != nil {
		return nil, err
	}
	if !auth.IsAllowed(user, auth.ActionOrderCancel, &auth.Resource{OwnerID: order.CustomerID}) {
		return nil, apperrors.NewForbidden("not allowed to cancel this order")
	}
	if order.Status == domain.OrderStatusCancelled {
		return order, nil
	}
	if order.Status == domain.OrderStatusCompleted {
		return nil, apperrors.NewConflict("completed orders cannot be cancelled", map[string]any{"order_id": order.ID})
	}

	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.orders.Cancel(txCtx, order.ID); err != nil {
			return err
		}
		return s.tickets.CancelByOrder(txCtx, order.ID)
	})
	if err != nil {
		return nil, err
	}

	order.Status = domain.OrderStatusCancelled
	s.publish(ctx, events.Event{
		Type:    events.EventOrderCancelled,
		Payload: events.OrderCancelledPayload{OrderID: order.ID, Tickets: len(order.TicketIDs)},
	})
	return order, nil
}

func (s *OrderService) publish(ctx context.Context, event events.Event) {
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
