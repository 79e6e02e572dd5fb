package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techaway/backend/internal/domain"
	apperrors "github.com/techaway/backend/pkg/util"
)

type orderFixture struct {
	store *fakeStore
	svc   *OrderService
	owner *domain.User
	other *domain.User
	admin *domain.User
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	store := newFakeStore()
	svc := NewOrderService(OrderServiceDependencies{
		OrderRepo:  &fakeOrderRepo{store: store},
		TicketRepo: &fakeTicketRepo{store: store},
		TxManager:  &fakeTxManager{store: store},
	})

	fx := &orderFixture{
		store: store,
		svc:   svc,
		owner: &domain.User{ID: "user-owner", Roles: []domain.Role{domain.RoleCustomer}},
		other: &domain.User{ID: "user-other", Roles: []domain.Role{domain.RoleCustomer}},
		admin: &domain.User{ID: "user-admin", Roles: []domain.Role{domain.RoleAdmin}},
	}
	return fx
}

func (fx *orderFixture) seedOrder(status domain.OrderStatus) *domain.Order {
	orderID := fx.store.nextID("order")
	fx.store.orders[orderID] = &domain.Order{ID: orderID, CustomerID: fx.owner.ID, Status: status, GrandTotal: dec("50")}

	ticketID := fx.store.nextID("ticket")
	fx.store.tickets[ticketID] = &domain.Ticket{
		ID: ticketID, CustomerID: fx.owner.ID, ServiceID: "svc-1",
		Status: domain.TicketStatusNotStarted, OrderID: &orderID,
	}
	return fx.store.orders[orderID]
}

func TestOrderListScopedToCustomer(t *testing.T) {
	fx := newOrderFixture(t)
	fx.seedOrder(domain.OrderStatusPending)

	page, err := fx.svc.List(context.Background(), fx.owner, OrderListInput{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)

	page, err = fx.svc.List(context.Background(), fx.other, OrderListInput{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), page.Total)

	page, err = fx.svc.List(context.Background(), fx.admin, OrderListInput{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
}

func TestOrderGetEnforcesOwnership(t *testing.T) {
	fx := newOrderFixture(t)
	order := fx.seedOrder(domain.OrderStatusPending)

	got, err := fx.svc.Get(context.Background(), fx.owner, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)
	assert.Len(t, got.TicketIDs, 1)

	_, err = fx.svc.Get(context.Background(), fx.other, order.ID)
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))

	_, err = fx.svc.Get(context.Background(), fx.admin, order.ID)
	require.NoError(t, err)

	_, err = fx.svc.Get(context.Background(), fx.owner, "order-nope")
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
}

func TestOrderCancelCancelsTickets(t *testing.T) {
	fx := newOrderFixture(t)
	order := fx.seedOrder(domain.OrderStatusPending)

	cancelled, err := fx.svc.Cancel(context.Background(), fx.owner, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, cancelled.Status)

	for _, ticket := range fx.store.tickets {
		assert.True(t, ticket.Cancelled)
	}
}

func TestOrderCancelIsIdempotent(t *testing.T) {
	fx := newOrderFixture(t)
	order := fx.seedOrder(domain.OrderStatusCancelled)

	cancelled, err := fx.svc.Cancel(context.Background(), fx.owner, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, cancelled.Status)
}

func TestOrderCancelRejectsCompleted(t *testing.T) {
	fx := newOrderFixture(t)
	order := fx.seedOrder(domain.OrderStatusCompleted)

	_, err := fx.svc.Cancel(context.Background(), fx.owner, order.ID)
	assert.True(t, apperrors.IsCode(err, "CONFLICT"))
}

func TestOrderCancelRejectsStranger(t *testing.T) {
	fx := newOrderFixture(t)
	order := fx.seedOrder(domain.OrderStatusPending)

	_, err := fx.svc.Cancel(context.Background(), fx.other, order.ID)
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
	assert.Equal(t, domain.OrderStatusPending, fx.store.orders[order.ID].Status)
}
