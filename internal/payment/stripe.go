package payment

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/shopspring/decimal"
	stripe "github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"

	"github.com/techaway/backend/internal/config"
	"github.com/techaway/backend/internal/domain"
	apperrors "github.com/techaway/backend/pkg/util"
)

// StripeProvider implements Provider against the Stripe API.
type StripeProvider struct {
	api           *client.API
	webhookSecret string
	currency      string
}

// NewStripeProvider builds the provider from config.
func NewStripeProvider(cfg config.StripeConfig) *StripeProvider {
	api := client.New(cfg.SecretKey, nil)
	currency := cfg.Currency
	if currency == "" {
		currency = "aud"
	}
	return &StripeProvider{
		api:           api,
		webhookSecret: cfg.WebhookSecret,
		currency:      currency,
	}
}

// EnsureCustomer re-checks the stored customer id before creating a remote
// record, covering both missing and remotely-deleted customers.
func (p *StripeProvider) EnsureCustomer(ctx context.Context, user *domain.User) (string, error) {
	if user.StripeCustomerID != nil && *user.StripeCustomerID != "" {
		existing, err := p.api.Customers.Get(*user.StripeCustomerID, &stripe.CustomerParams{
			Params: stripe.Params{Context: ctx},
		})
		if err == nil && existing != nil && !existing.Deleted {
			return existing.ID, nil
		}
		var stripeErr *stripe.Error
		if err != nil && !errors.As(err, &stripeErr) {
			return "", err
		}
		// stored id points at a missing or deleted remote record; recreate
	}

	created, err := p.api.Customers.New(&stripe.CustomerParams{
		Params: stripe.Params{
			Context:  ctx,
			Metadata: map[string]string{"userId": user.ID},
		},
		Email: stripe.String(user.Email),
		Name:  stripe.String(user.Name),
		Phone: stripe.String(user.Phone),
	})
	if err != nil {
		return "", err
	}
	return created.ID, nil
}

// CreateIntent converts the decimal grand total to minor units and opens the
// payment intent with the order id in metadata.
func (p *StripeProvider) CreateIntent(ctx context.Context, customerID, orderID, receiptEmail string, grandTotal decimal.Decimal) (*Intent, error) {
	amount := grandTotal.Round(2).Mul(decimal.NewFromInt(100)).IntPart()
	intent, err := p.api.PaymentIntents.New(&stripe.PaymentIntentParams{
		Params: stripe.Params{
			Context:  ctx,
			Metadata: map[string]string{"orderId": orderID},
		},
		Amount:       stripe.Int64(amount),
		Currency:     stripe.String(p.currency),
		Customer:     stripe.String(customerID),
		ReceiptEmail: stripe.String(receiptEmail),
	})
	if err != nil {
		return nil, err
	}
	return &Intent{
		ID:           intent.ID,
		ClientSecret: intent.ClientSecret,
		Amount:       amount,
		OrderID:      orderID,
	}, nil
}

// VerifyWebhook must receive the raw request body; a re-serialized JSON copy
// never matches the signature.
func (p *StripeProvider) VerifyWebhook(payload []byte, signature string) (*ConfirmedPayment, error) {
	event, err := webhook.ConstructEvent(payload, signature, p.webhookSecret)
	if err != nil {
		return nil, apperrors.NewUnauthorized("webhook signature verification failed")
	}

	if event.Type != "payment_intent.succeeded" {
		return nil, nil
	}

	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return nil, apperrors.NewValidationError("malformed payment intent payload", nil)
	}
	orderID := intent.Metadata["orderId"]
	if orderID == "" {
		return nil, apperrors.NewValidationError("payment intent missing order metadata", nil)
	}
	return &ConfirmedPayment{
		IntentID: intent.ID,
		OrderID:  orderID,
		EventID:  event.ID,
	}, nil
}
