package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techaway/backend/internal/domain"
	"github.com/techaway/backend/internal/payment"
	apperrors "github.com/techaway/backend/pkg/util"
)

type checkoutFixture struct {
	store    *fakeStore
	payments *fakePayments
	mailer   *fakeMailer
	invoices *fakeInvoices
	cache    *fakeReplayCache
	svc      *CheckoutService
	customer *domain.User
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()
	store := newFakeStore()
	payments := &fakePayments{}
	mailer := &fakeMailer{}
	invoices := &fakeInvoices{}
	cache := &fakeReplayCache{}

	svc := NewCheckoutService(CheckoutDependencies{
		TicketRepo:  &fakeTicketRepo{store: store},
		OrderRepo:   &fakeOrderRepo{store: store},
		ServiceRepo: &fakeServiceRepo{store: store},
		SLARepo:     &fakeSLARepo{store: store},
		UserRepo:    &fakeUserRepo{store: store},
		TxManager:   &fakeTxManager{store: store},
		Payments:    payments,
		Mailer:      mailer,
		Invoices:    invoices,
		ReplayCache: cache,
	})

	customer := &domain.User{
		ID:            "user-1",
		Username:      "jess@example.com",
		Email:         "jess@example.com",
		Name:          "Jess",
		Roles:         []domain.Role{domain.RoleCustomer},
		EmailVerified: true,
	}
	store.users[customer.ID] = customer

	store.svcs["svc-1"] = domain.Service{ID: "svc-1", Title: "Laptop repair", Price: dec("100")}
	store.svcs["svc-2"] = domain.Service{ID: "svc-2", Title: "Data recovery", Price: dec("60")}
	store.slas["sla-1"] = domain.ServiceLevelAgreement{ID: "sla-1", PriceModifier: dec("0.5")}

	return &checkoutFixture{
		store:    store,
		payments: payments,
		mailer:   mailer,
		invoices: invoices,
		cache:    cache,
		svc:      svc,
		customer: customer,
	}
}

func TestCreatePaymentIntent(t *testing.T) {
	fx := newCheckoutFixture(t)

	result, err := fx.svc.CreatePaymentIntent(context.Background(), fx.customer, []CartItem{
		{ServiceID: "svc-1", ModifierIDs: []string{"sla-1"}, Note: "screen cracked"},
		{ServiceID: "svc-2"},
	})
	require.NoError(t, err)

	// 100 + 100*0.5 + 60
	assert.True(t, result.Order.Order.GrandTotal.Equal(dec("210")), "got %s", result.Order.Order.GrandTotal)
	assert.Equal(t, domain.OrderStatusPending, result.Order.Order.Status)
	require.Len(t, result.Order.Tickets, 2)
	for _, priced := range result.Order.Tickets {
		stored := fx.store.tickets[priced.Ticket.ID]
		require.NotNil(t, stored.Cost)
		require.NotNil(t, stored.OrderID)
		assert.Equal(t, result.Order.Order.ID, *stored.OrderID)
		assert.Equal(t, domain.TicketStatusNotStarted, stored.Status)
		assert.Equal(t, domain.TicketUrgencyLow, stored.Urgency)
		assert.Nil(t, stored.AssignedTo)
	}

	require.NotNil(t, result.Intent)
	assert.Equal(t, int64(21000), result.Intent.Amount)
	assert.Equal(t, result.Order.Order.ID, result.Intent.OrderID)

	stored := fx.store.users[fx.customer.ID]
	require.NotNil(t, stored.StripeCustomerID)
	assert.Equal(t, "cus_test", *stored.StripeCustomerID)
}

func TestCreatePaymentIntentEmptyCart(t *testing.T) {
	fx := newCheckoutFixture(t)

	_, err := fx.svc.CreatePaymentIntent(context.Background(), fx.customer, nil)
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
}

func TestCreatePaymentIntentRollsBackOnPaymentFailure(t *testing.T) {
	fx := newCheckoutFixture(t)
	fx.payments.createIntentErr = errPaymentDown

	_, err := fx.svc.CreatePaymentIntent(context.Background(), fx.customer, []CartItem{
		{ServiceID: "svc-1"},
	})
	require.Error(t, err)

	assert.Empty(t, fx.store.tickets, "tickets must not survive a failed checkout")
	assert.Empty(t, fx.store.orders, "order must not survive a failed checkout")
}

func TestCreatePaymentIntentUnknownServiceFails(t *testing.T) {
	fx := newCheckoutFixture(t)

	_, err := fx.svc.CreatePaymentIntent(context.Background(), fx.customer, []CartItem{
		{ServiceID: "svc-1"},
		{ServiceID: "svc-nope"},
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
	assert.Empty(t, fx.store.tickets)
	assert.Empty(t, fx.store.orders)
}

func TestHandleSuccessfulPaymentFulfillsOnce(t *testing.T) {
	fx := newCheckoutFixture(t)

	result, err := fx.svc.CreatePaymentIntent(context.Background(), fx.customer, []CartItem{
		{ServiceID: "svc-1"},
	})
	require.NoError(t, err)
	orderID := result.Order.Order.ID

	confirmed := &payment.ConfirmedPayment{IntentID: "pi_1", OrderID: orderID, EventID: "evt_1"}
	require.NoError(t, fx.svc.HandleSuccessfulPayment(context.Background(), confirmed))

	order := fx.store.orders[orderID]
	assert.Equal(t, domain.OrderStatusCompleted, order.Status)
	require.NotNil(t, order.PaymentIntentID)
	assert.Equal(t, "pi_1", *order.PaymentIntentID)
	assert.Equal(t, 1, fx.invoices.generated)
	require.Len(t, fx.mailer.sent, 1)
	assert.Equal(t, fx.customer.Email, fx.mailer.sent[0].To)
	assert.NotEmpty(t, fx.mailer.sent[0].AttachmentPath)

	// redelivery: order is no longer pending, fulfillment must not repeat
	require.NoError(t, fx.svc.HandleSuccessfulPayment(context.Background(), confirmed))
	assert.Equal(t, 1, fx.invoices.generated)
	assert.Len(t, fx.mailer.sent, 1)
}

func TestHandleSuccessfulPaymentUnknownOrder(t *testing.T) {
	fx := newCheckoutFixture(t)

	err := fx.svc.HandleSuccessfulPayment(context.Background(), &payment.ConfirmedPayment{
		IntentID: "pi_1", OrderID: "order-nope", EventID: "evt_1",
	})
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
}

func TestHandleWebhookFiltersDuplicateEvents(t *testing.T) {
	fx := newCheckoutFixture(t)

	result, err := fx.svc.CreatePaymentIntent(context.Background(), fx.customer, []CartItem{
		{ServiceID: "svc-1"},
	})
	require.NoError(t, err)

	fx.payments.confirmed = &payment.ConfirmedPayment{
		IntentID: "pi_1",
		OrderID:  result.Order.Order.ID,
		EventID:  "evt_1",
	}

	require.NoError(t, fx.svc.HandleWebhook(context.Background(), []byte("{}"), "sig"))
	require.NoError(t, fx.svc.HandleWebhook(context.Background(), []byte("{}"), "sig"))

	assert.Equal(t, 1, fx.invoices.generated)
	assert.Len(t, fx.mailer.sent, 1)
}

func TestHandleWebhookIgnoresOtherEventTypes(t *testing.T) {
	fx := newCheckoutFixture(t)
	fx.payments.confirmed = nil

	require.NoError(t, fx.svc.HandleWebhook(context.Background(), []byte("{}"), "sig"))
	assert.Empty(t, fx.mailer.sent)
}

func TestFulfillmentMailFailureDoesNotFailWebhook(t *testing.T) {
	fx := newCheckoutFixture(t)

	result, err := fx.svc.CreatePaymentIntent(context.Background(), fx.customer, []CartItem{
		{ServiceID: "svc-1"},
	})
	require.NoError(t, err)
	fx.mailer.sendErr = errPaymentDown

	err = fx.svc.HandleSuccessfulPayment(context.Background(), &payment.ConfirmedPayment{
		IntentID: "pi_1", OrderID: result.Order.Order.ID, EventID: "evt_1",
	})
	require.NoError(t, err)

	// the order still completed even though the confirmation email failed
	assert.Equal(t, domain.OrderStatusCompleted, fx.store.orders[result.Order.Order.ID].Status)
}
