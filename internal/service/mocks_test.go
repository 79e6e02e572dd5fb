package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/techaway/backend/internal/domain"
	"github.com/techaway/backend/internal/invoice"
	"github.com/techaway/backend/internal/mail"
	"github.com/techaway/backend/internal/payment"
	"github.com/techaway/backend/internal/repository"
)

// fakeStore is a map-backed stand-in for Postgres shared by every fake
// repository in a test. The fake transaction manager snapshots and restores
// it so rollback semantics can be asserted without a database.
type fakeStore struct {
	users   map[string]*domain.User
	tickets map[string]*domain.Ticket
	orders  map[string]*domain.Order
	svcs    map[string]domain.Service
	slas    map[string]domain.ServiceLevelAgreement
	refresh map[string]*domain.RefreshToken
	seq     int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:   map[string]*domain.User{},
		tickets: map[string]*domain.Ticket{},
		orders:  map[string]*domain.Order{},
		svcs:    map[string]domain.Service{},
		slas:    map[string]domain.ServiceLevelAgreement{},
		refresh: map[string]*domain.RefreshToken{},
	}
}

func (s *fakeStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

func (s *fakeStore) snapshot() *fakeStore {
	clone := newFakeStore()
	clone.seq = s.seq
	for id, u := range s.users {
		copied := *u
		clone.users[id] = &copied
	}
	for id, t := range s.tickets {
		copied := *t
		copied.ModifierIDs = append([]string(nil), t.ModifierIDs...)
		clone.tickets[id] = &copied
	}
	for id, o := range s.orders {
		copied := *o
		copied.TicketIDs = append([]string(nil), o.TicketIDs...)
		clone.orders[id] = &copied
	}
	for id, svc := range s.svcs {
		clone.svcs[id] = svc
	}
	for id, sla := range s.slas {
		clone.slas[id] = sla
	}
	for id, r := range s.refresh {
		copied := *r
		clone.refresh[id] = &copied
	}
	return clone
}

func (s *fakeStore) restore(snap *fakeStore) {
	s.users = snap.users
	s.tickets = snap.tickets
	s.orders = snap.orders
	s.svcs = snap.svcs
	s.slas = snap.slas
	s.refresh = snap.refresh
	s.seq = snap.seq
}

// fakeTxManager mimics WithTransaction by snapshotting the store and rolling
// back on error.
type fakeTxManager struct {
	store *fakeStore
}

func (m *fakeTxManager) WithTransaction(ctx context.Context, fn func(context.Context) error) error {
	snap := m.store.snapshot()
	if err := fn(ctx); err != nil {
		m.store.restore(snap)
		return err
	}
	return nil
}

type fakeUserRepo struct{ store *fakeStore }

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	user.ID = r.store.nextID("user")
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	copied := *user
	r.store.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := r.store.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *user
	r.store.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := r.store.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, user := range r.store.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range r.store.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) MarkEmailVerified(_ context.Context, id string) error {
	user, ok := r.store.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.EmailVerified = true
	return nil
}

func (r *fakeUserRepo) UpdatePasswordHash(_ context.Context, id, hash string) error {
	user, ok := r.store.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.PasswordHash = hash
	return nil
}

func (r *fakeUserRepo) SetStripeCustomerID(_ context.Context, id, stripeCustomerID string) error {
	user, ok := r.store.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.StripeCustomerID = &stripeCustomerID
	return nil
}

func (r *fakeUserRepo) Search(_ context.Context, query string, limit, offset int) ([]domain.User, error) {
	var out []domain.User
	for _, user := range r.store.users {
		if query == "" || strings.Contains(user.Name, query) || strings.Contains(user.Email, query) {
			out = append(out, *user)
		}
	}
	return out, nil
}

type fakeServiceRepo struct{ store *fakeStore }

func (r *fakeServiceRepo) Create(_ context.Context, svc *domain.Service) error {
	svc.ID = r.store.nextID("svc")
	r.store.svcs[svc.ID] = *svc
	return nil
}

func (r *fakeServiceRepo) Update(_ context.Context, svc *domain.Service) error {
	if _, ok := r.store.svcs[svc.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.store.svcs[svc.ID] = *svc
	return nil
}

func (r *fakeServiceRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.store.svcs[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.store.svcs, id)
	return nil
}

func (r *fakeServiceRepo) GetByID(_ context.Context, id string) (*domain.Service, error) {
	svc, ok := r.store.svcs[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &svc, nil
}

func (r *fakeServiceRepo) GetByIDs(_ context.Context, ids []string) (map[string]domain.Service, error) {
	out := make(map[string]domain.Service)
	for _, id := range ids {
		if svc, ok := r.store.svcs[id]; ok {
			out[id] = svc
		}
	}
	return out, nil
}

func (r *fakeServiceRepo) Search(_ context.Context, search string, limit, offset int) ([]domain.Service, error) {
	var out []domain.Service
	for _, svc := range r.store.svcs {
		out = append(out, svc)
	}
	return out, nil
}

type fakeSLARepo struct{ store *fakeStore }

func (r *fakeSLARepo) Create(_ context.Context, sla *domain.ServiceLevelAgreement) error {
	sla.ID = r.store.nextID("sla")
	r.store.slas[sla.ID] = *sla
	return nil
}

func (r *fakeSLARepo) Update(_ context.Context, sla *domain.ServiceLevelAgreement) error {
	if _, ok := r.store.slas[sla.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.store.slas[sla.ID] = *sla
	return nil
}

func (r *fakeSLARepo) Delete(_ context.Context, id string) error {
	if _, ok := r.store.slas[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.store.slas, id)
	return nil
}

func (r *fakeSLARepo) GetByID(_ context.Context, id string) (*domain.ServiceLevelAgreement, error) {
	sla, ok := r.store.slas[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &sla, nil
}

func (r *fakeSLARepo) GetByIDs(_ context.Context, ids []string) (map[string]domain.ServiceLevelAgreement, error) {
	out := make(map[string]domain.ServiceLevelAgreement)
	for _, id := range ids {
		if sla, ok := r.store.slas[id]; ok {
			out[id] = sla
		}
	}
	return out, nil
}

func (r *fakeSLARepo) List(_ context.Context, limit, offset int) ([]domain.ServiceLevelAgreement, error) {
	var out []domain.ServiceLevelAgreement
	for _, sla := range r.store.slas {
		out = append(out, sla)
	}
	return out, nil
}

type fakeTicketRepo struct{ store *fakeStore }

func (r *fakeTicketRepo) CreateBatch(_ context.Context, tickets []*domain.Ticket) error {
	for _, ticket := range tickets {
		ticket.ID = r.store.nextID("ticket")
		ticket.CreatedAt = time.Now()
		ticket.UpdatedAt = ticket.CreatedAt
		copied := *ticket
		copied.ModifierIDs = append([]string(nil), ticket.ModifierIDs...)
		r.store.tickets[ticket.ID] = &copied
	}
	return nil
}

func (r *fakeTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	if _, ok := r.store.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *ticket
	r.store.tickets[ticket.ID] = &copied
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	ticket, ok := r.store.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *ticket
	return &copied, nil
}

func (r *fakeTicketRepo) GetByIDs(_ context.Context, ids []string) ([]domain.Ticket, error) {
	out := make([]domain.Ticket, 0, len(ids))
	for _, id := range ids {
		if ticket, ok := r.store.tickets[id]; ok {
			out = append(out, *ticket)
		}
	}
	return out, nil
}

func (r *fakeTicketRepo) SetCostAndOrder(_ context.Context, ticketID string, cost decimal.Decimal, orderID string) error {
	ticket, ok := r.store.tickets[ticketID]
	if !ok {
		return pgx.ErrNoRows
	}
	ticket.Cost = &cost
	ticket.OrderID = &orderID
	return nil
}

func (r *fakeTicketRepo) CancelByOrder(_ context.Context, orderID string) error {
	for _, ticket := range r.store.tickets {
		if ticket.OrderID != nil && *ticket.OrderID == orderID {
			ticket.Cancelled = true
		}
	}
	return nil
}

func (r *fakeTicketRepo) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	var out []domain.Ticket
	for _, ticket := range r.store.tickets {
		if filter.CustomerID != nil && ticket.CustomerID != *filter.CustomerID {
			continue
		}
		if filter.AssignedTo != nil && (ticket.AssignedTo == nil || *ticket.AssignedTo != *filter.AssignedTo) {
			continue
		}
		if filter.OrderID != nil && (ticket.OrderID == nil || *ticket.OrderID != *filter.OrderID) {
			continue
		}
		out = append(out, *ticket)
	}
	return out, nil
}

type fakeOrderRepo struct{ store *fakeStore }

func (r *fakeOrderRepo) Create(_ context.Context, order *domain.Order) error {
	order.ID = r.store.nextID("order")
	if order.Status == "" {
		order.Status = domain.OrderStatusPending
	}
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	copied := *order
	r.store.orders[order.ID] = &copied
	return nil
}

func (r *fakeOrderRepo) GetByID(_ context.Context, id string) (*domain.Order, error) {
	order, ok := r.store.orders[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *order
	copied.TicketIDs = nil
	for ticketID, ticket := range r.store.tickets {
		if ticket.OrderID != nil && *ticket.OrderID == id {
			copied.TicketIDs = append(copied.TicketIDs, ticketID)
		}
	}
	return &copied, nil
}

func (r *fakeOrderRepo) List(_ context.Context, filter repository.OrderFilter) ([]domain.Order, int64, error) {
	var out []domain.Order
	for _, order := range r.store.orders {
		if filter.CustomerID != nil && order.CustomerID != *filter.CustomerID {
			continue
		}
		if len(filter.Statuses) > 0 {
			matched := false
			for _, status := range filter.Statuses {
				if order.Status == status {
					matched = true
				}
			}
			if !matched {
				continue
			}
		}
		out = append(out, *order)
	}
	return out, int64(len(out)), nil
}

func (r *fakeOrderRepo) Complete(_ context.Context, id, paymentIntentID string) (bool, error) {
	order, ok := r.store.orders[id]
	if !ok {
		return false, nil
	}
	if order.Status != domain.OrderStatusPending {
		return false, nil
	}
	order.Status = domain.OrderStatusCompleted
	order.PaymentIntentID = &paymentIntentID
	return true, nil
}

func (r *fakeOrderRepo) Cancel(_ context.Context, id string) error {
	order, ok := r.store.orders[id]
	if !ok {
		return nil
	}
	if order.Status != domain.OrderStatusCancelled {
		order.Status = domain.OrderStatusCancelled
	}
	return nil
}

type fakeRefreshRepo struct{ store *fakeStore }

func (r *fakeRefreshRepo) Create(_ context.Context, token *domain.RefreshToken) error {
	token.ID = r.store.nextID("rt")
	token.CreatedAt = time.Now()
	token.UpdatedAt = token.CreatedAt
	token.DeleteAt = token.CreatedAt.AddDate(1, 0, 0)
	copied := *token
	r.store.refresh[token.ID] = &copied
	return nil
}

func (r *fakeRefreshRepo) GetByHash(_ context.Context, tokenHash string) (*domain.RefreshToken, error) {
	for _, token := range r.store.refresh {
		if token.TokenHash == tokenHash {
			copied := *token
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeRefreshRepo) Consume(_ context.Context, id string) (bool, error) {
	token, ok := r.store.refresh[id]
	if !ok || token.Invalid {
		return false, nil
	}
	token.Invalid = true
	return true, nil
}

func (r *fakeRefreshRepo) InvalidateAllForUser(_ context.Context, userID string) error {
	for _, token := range r.store.refresh {
		if token.UserID == userID {
			token.Invalid = true
		}
	}
	return nil
}

func (r *fakeRefreshRepo) PurgeExpired(_ context.Context) (int64, error) {
	var purged int64
	for id, token := range r.store.refresh {
		if !token.DeleteAt.After(time.Now()) {
			delete(r.store.refresh, id)
			purged++
		}
	}
	return purged, nil
}

// fakeReportRepo derives the report aggregates from the shared store.
type fakeReportRepo struct{ store *fakeStore }

func (r *fakeReportRepo) RevenueByStatus(_ context.Context) ([]repository.RevenueLine, error) {
	byStatus := map[domain.OrderStatus]*repository.RevenueLine{}
	for _, order := range r.store.orders {
		line, ok := byStatus[order.Status]
		if !ok {
			line = &repository.RevenueLine{Status: order.Status, Total: decimal.Zero}
			byStatus[order.Status] = line
		}
		line.Orders++
		line.Total = line.Total.Add(order.GrandTotal)
	}
	var out []repository.RevenueLine
	for _, line := range byStatus {
		out = append(out, *line)
	}
	return out, nil
}

func (r *fakeReportRepo) TechnicianWorkload(_ context.Context) ([]repository.TechnicianWorkload, error) {
	var out []repository.TechnicianWorkload
	for _, user := range r.store.users {
		if !user.HasRole(domain.RoleTechnician) {
			continue
		}
		row := repository.TechnicianWorkload{TechnicianID: user.ID, Name: user.Name, Email: user.Email}
		for _, ticket := range r.store.tickets {
			if ticket.AssignedTo == nil || *ticket.AssignedTo != user.ID {
				continue
			}
			switch {
			case ticket.Cancelled:
				row.Cancelled++
			case ticket.Status == domain.TicketStatusComplete:
				row.Completed++
			default:
				row.Open++
			}
		}
		out = append(out, row)
	}
	return out, nil
}

// fakePayments records calls and optionally fails CreateIntent.
type fakePayments struct {
	customerID      string
	intents         []*payment.Intent
	createIntentErr error
	confirmed       *payment.ConfirmedPayment
	verifyErr       error
}

func (p *fakePayments) EnsureCustomer(_ context.Context, user *domain.User) (string, error) {
	if p.customerID == "" {
		p.customerID = "cus_test"
	}
	return p.customerID, nil
}

func (p *fakePayments) CreateIntent(_ context.Context, customerID, orderID, receiptEmail string, grandTotal decimal.Decimal) (*payment.Intent, error) {
	if p.createIntentErr != nil {
		return nil, p.createIntentErr
	}
	intent := &payment.Intent{
		ID:           fmt.Sprintf("pi_%d", len(p.intents)+1),
		ClientSecret: "secret",
		Amount:       grandTotal.Round(2).Mul(decimal.NewFromInt(100)).IntPart(),
		OrderID:      orderID,
	}
	p.intents = append(p.intents, intent)
	return intent, nil
}

func (p *fakePayments) VerifyWebhook(payload []byte, signature string) (*payment.ConfirmedPayment, error) {
	if p.verifyErr != nil {
		return nil, p.verifyErr
	}
	return p.confirmed, nil
}

// fakeMailer records sent messages and optionally fails.
type fakeMailer struct {
	sent    []mail.Message
	sendErr error
}

func (m *fakeMailer) Send(msg mail.Message) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, msg)
	return nil
}

type fakeInvoices struct {
	generated int
	err       error
}

func (g *fakeInvoices) Generate(order *domain.Order, customer *domain.User, lines []invoice.Line) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	g.generated++
	return "/tmp/invoice-" + order.ID + ".pdf", nil
}

type fakeReplayCache struct {
	seen map[string]bool
	err  error
}

func (c *fakeReplayCache) MarkEventProcessed(_ context.Context, eventID string, _ time.Duration) (bool, error) {
	if c.err != nil {
		return false, c.err
	}
	if c.seen == nil {
		c.seen = map[string]bool{}
	}
	if c.seen[eventID] {
		return false, nil
	}
	c.seen[eventID] = true
	return true, nil
}

var errPaymentDown = errors.New("payment processor unavailable")
