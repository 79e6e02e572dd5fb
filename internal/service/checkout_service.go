package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/techaway/backend/internal/domain"
	"github.com/techaway/backend/internal/events"
	"github.com/techaway/backend/internal/invoice"
	"github.com/techaway/backend/internal/mail"
	"github.com/techaway/backend/internal/payment"
	"github.com/techaway/backend/internal/persistence"
	"github.com/techaway/backend/internal/repository"
	apperrors "github.com/techaway/backend/pkg/util"
)

// CartItem is one submitted cart line.
type CartItem struct {
	ServiceID   string
	ModifierIDs []string
	Note        string
	Location    string
}

// OrderResult bundles the created order with its priced tickets.
type OrderResult struct {
	Order   *domain.Order
	Tickets []PricedTicket
}

// CheckoutResult is returned to the caller of CreatePaymentIntent.
type CheckoutResult struct {
	Order  *OrderResult
	Intent *payment.Intent
}

// ReplayCache filters already-seen webhook event ids ahead of the database's
// conditional update.
type ReplayCache interface {
	MarkEventProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error)
}

// CheckoutService runs the cart → tickets → order → payment-intent pipeline
// and the asynchronous payment-confirmation path.
type CheckoutService struct {
	tickets    repository.TicketRepository
	orders     repository.OrderRepository
	services   repository.ServiceRepository
	slas       repository.SLARepository
	users      repository.UserRepository
	tx         persistence.TxManager
	payments   payment.Provider
	mailer     mail.Mailer
	invoices   invoice.Generator
	cache      ReplayCache
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// CheckoutDependencies bundles requirements for the checkout service.
type CheckoutDependencies struct {
	TicketRepo  repository.TicketRepository
	OrderRepo   repository.OrderRepository
	ServiceRepo repository.ServiceRepository
	SLARepo     repository.SLARepository
	UserRepo    repository.UserRepository
	TxManager   persistence.TxManager
	Payments    payment.Provider
	Mailer      mail.Mailer
	Invoices    invoice.Generator
	ReplayCache ReplayCache
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// NewCheckoutService constructs the service.
func NewCheckoutService(deps CheckoutDependencies) *CheckoutService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckoutService{
		tickets:    deps.TicketRepo,
		orders:     deps.OrderRepo,
		services:   deps.ServiceRepo,
		slas:       deps.SLARepo,
		users:      deps.UserRepo,
		tx:         deps.TxManager,
		payments:   deps.Payments,
		mailer:     deps.Mailer,
		invoices:   deps.Invoices,
		cache:      deps.ReplayCache,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// CreatePaymentIntent runs the whole checkout under one transaction:
// materialize the cart, price and build the order, upsert the processor-side
// customer and open the payment intent. Any failure aborts the transaction so
// no tickets or order survive a failed attempt.
func (s *CheckoutService) CreatePaymentIntent(ctx context.Context, user *domain.User, cart []CartItem) (*CheckoutResult, error) {
	if len(cart) == 0 {
		return nil, apperrors.NewValidationError("cart is empty", nil)
	}

	var result *CheckoutResult
	err := s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		tickets, err := s.saveCartToTickets(txCtx, user, cart)
		if err != nil {
			return err
		}

		ticketIDs := make([]string, len(tickets))
		for i, ticket := range tickets {
			ticketIDs[i] = ticket.ID
		}

		orderResult, err := s.buildOrder(txCtx, user, ticketIDs)
		if err != nil {
			return err
		}

		customerID, err := s.payments.EnsureCustomer(txCtx, user)
		if err != nil {
			return err
		}
		if user.StripeCustomerID == nil || *user.StripeCustomerID != customerID {
			if err := s.users.SetStripeCustomerID(txCtx, user.ID, customerID); err != nil {
				return err
			}
			user.StripeCustomerID = &customerID
		}

		intent, err := s.payments.CreateIntent(txCtx, customerID, orderResult.Order.ID, user.Email, orderResult.Order.GrandTotal)
		if err != nil {
			return err
		}

		result = &CheckoutResult{Order: orderResult, Intent: intent}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type: events.EventOrderCreated,
		Payload: events.OrderCreatedPayload{
			OrderID:    result.Order.Order.ID,
			CustomerID: user.ID,
			GrandTotal: result.Order.Order.GrandTotal.StringFixed(2),
			Tickets:    len(result.Order.Tickets),
		},
	})
	return result, nil
}

// saveCartToTickets materializes cart lines into unpriced tickets, one per
// line, preserving input order.
func (s *CheckoutService) saveCartToTickets(ctx context.Context, user *domain.User, cart []CartItem) ([]*domain.Ticket, error) {
	tickets := make([]*domain.Ticket, len(cart))
	for i, item := range cart {
		tickets[i] = &domain.Ticket{
			ServiceID:    item.ServiceID,
			CustomerID:   user.ID,
			AssignedTo:   nil,
			ModifierIDs:  item.ModifierIDs,
			Urgency:      domain.TicketUrgencyLow,
			CustomerNote: item.Note,
			Location:     item.Location,
			Status:       domain.TicketStatusNotStarted,
		}
	}
	if err := s.tickets.CreateBatch(ctx, tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}

// buildOrder prices the batch and creates the order, back-filling each
// ticket's cost and order reference. A batch the aggregator could not fully
// price fails the checkout rather than producing a short order.
func (s *CheckoutService) buildOrder(ctx context.Context, user *domain.User, ticketIDs []string) (*OrderResult, error) {
	tickets, err := s.tickets.GetByIDs(ctx, ticketIDs)
	if err != nil {
		return nil, err
	}

	serviceIDs := make([]string, 0, len(tickets))
	modifierIDs := make([]string, 0)
	for _, ticket := range tickets {
		serviceIDs = append(serviceIDs, ticket.ServiceID)
		modifierIDs = append(modifierIDs, ticket.ModifierIDs...)
	}

	services, err := s.services.GetByIDs(ctx, serviceIDs)
	if err != nil {
		return nil, err
	}
	modifiers, err := s.slas.GetByIDs(ctx, modifierIDs)
	if err != nil {
		return nil, err
	}

	pricing := PriceTickets(tickets, services, modifiers)
	if len(pricing.Tickets) != len(ticketIDs) {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("priced %d of %d tickets", len(pricing.Tickets), len(ticketIDs)), nil)
	}

	order := &domain.Order{
		CustomerID: user.ID,
		GrandTotal: pricing.GrandTotal,
		Status:     domain.OrderStatusPending,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	for i := range pricing.Tickets {
		priced := &pricing.Tickets[i]
		if err := s.tickets.SetCostAndOrder(ctx, priced.Ticket.ID, priced.Total, order.ID); err != nil {
			return nil, err
		}
		cost := priced.Total
		priced.Ticket.Cost = &cost
		priced.Ticket.OrderID = &order.ID
		order.TicketIDs = append(order.TicketIDs, priced.Ticket.ID)
	}

	return &OrderResult{Order: order, Tickets: pricing.Tickets}, nil
}

// HandleWebhook verifies the raw payload signature and, for payment-success
// events, runs fulfillment. Redelivered events are filtered first by the
// replay cache and then by the order's conditional state transition.
func (s *CheckoutService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	confirmed, err := s.payments.VerifyWebhook(payload, signature)
	if err != nil {
		return err
	}
	if confirmed == nil {
		return nil
	}

	if s.cache != nil && confirmed.EventID != "" {
		first, err := s.cache.MarkEventProcessed(ctx, confirmed.EventID, 72*time.Hour)
		if err != nil {
			s.logger.Warn("replay cache unavailable", zap.Error(err))
		} else if !first {
			s.logger.Info("duplicate webhook event ignored", zap.String("event_id", confirmed.EventID))
			return nil
		}
	}

	return s.HandleSuccessfulPayment(ctx, confirmed)
}

// HandleSuccessfulPayment completes the order, then generates and emails the
// invoice. The tail is best-effort: once the order is completed nothing rolls
// that back.
func (s *CheckoutService) HandleSuccessfulPayment(ctx context.Context, confirmed *payment.ConfirmedPayment) error {
	completed, err := s.orders.Complete(ctx, confirmed.OrderID, confirmed.IntentID)
	if err != nil {
		return err
	}

	order, err := s.orders.GetByID(ctx, confirmed.OrderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("order", map[string]any{"order_id": confirmed.OrderID})
		}
		return err
	}

	if !completed {
		s.logger.Info("order not pending; skipping fulfillment",
			zap.String("order_id", order.ID), zap.String("status", string(order.Status)))
		return nil
	}

	s.fulfillOrder(ctx, order, confirmed.IntentID)
	return nil
}

func (s *CheckoutService) fulfillOrder(ctx context.Context, order *domain.Order, intentID string) {
	customer, err := s.users.GetByID(ctx, order.CustomerID)
	if err != nil {
		s.logger.Error("fulfillment: load customer", zap.String("order_id", order.ID), zap.Error(err))
		return
	}

	msg := mail.Message{
		To:      customer.Email,
		Subject: "Order Confirmation",
		HTML:    "<h1>Order Confirmation</h1><p>Your order has been confirmed. Please find your invoice attached.</p>",
	}

	if path, err := s.generateInvoice(ctx, order, customer); err != nil {
		s.logger.Error("fulfillment: invoice generation", zap.String("order_id", order.ID), zap.Error(err))
	} else {
		msg.AttachmentPath = path
		msg.AttachmentName = "invoice.pdf"
	}

	if err := s.mailer.Send(msg); err != nil {
		s.logger.Error("fulfillment: confirmation email", zap.String("order_id", order.ID), zap.Error(err))
	}

	s.publish(ctx, events.Event{
		Type: events.EventOrderCompleted,
		Payload: events.OrderCompletedPayload{
			OrderID:         order.ID,
			CustomerID:      order.CustomerID,
			PaymentIntentID: intentID,
		},
	})
}

func (s *CheckoutService) generateInvoice(ctx context.Context, order *domain.Order, customer *domain.User) (string, error) {
	tickets, err := s.tickets.GetByIDs(ctx, order.TicketIDs)
	if err != nil {
		return "", err
	}
	serviceIDs := make([]string, 0, len(tickets))
	for _, ticket := range tickets {
		serviceIDs = append(serviceIDs, ticket.ServiceID)
	}
	services, err := s.services.GetByIDs(ctx, serviceIDs)
	if err != nil {
		return "", err
	}

	lines := make([]invoice.Line, 0, len(tickets))
	for _, ticket := range tickets {
		line := invoice.Line{Title: ticket.ServiceID}
		if svc, ok := services[ticket.ServiceID]; ok {
			line.Title = svc.Title
		}
		if ticket.Cost != nil {
			line.Cost = *ticket.Cost
		}
		lines = append(lines, line)
	}
	return s.invoices.Generate(order, customer, lines)
}

func (s *CheckoutService) publish(ctx context.Context, event events.Event) {
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
