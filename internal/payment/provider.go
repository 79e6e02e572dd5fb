package payment

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/techaway/backend/internal/domain"
)

// Intent is the processor's representation of an in-progress charge.
type Intent struct {
	ID           string
	ClientSecret string
	Amount       int64
	OrderID      string
}

// ConfirmedPayment is the slice of a webhook event the fulfillment path needs.
type ConfirmedPayment struct {
	IntentID string
	OrderID  string
	EventID  string
}

// Provider abstracts the external card-payment processor. Services depend on
// this interface; the Stripe implementation lives next door.
type Provider interface {
	// EnsureCustomer returns the processor-side customer id for the user,
	// creating the remote record when missing or deleted. Idempotent.
	EnsureCustomer(ctx context.Context, user *domain.User) (string, error)
	// CreateIntent opens a charge for the grand total, tagged with the order id.
	CreateIntent(ctx context.Context, customerID, orderID, receiptEmail string, grandTotal decimal.Decimal) (*Intent, error)
	// VerifyWebhook authenticates a raw webhook payload against its signature
	// header and returns the confirmed payment when the event is a
	// payment success; (nil, nil) for event types we ignore.
	VerifyWebhook(payload []byte, signature string) (*ConfirmedPayment, error)
}
