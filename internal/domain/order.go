package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus enumerates payment lifecycle states for an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusCompleted OrderStatus = "completed"
)

// Order is a priced, payable bundle of tickets for one customer. The payment
// intent id is filled in once the processor confirms payment.
type Order struct {
	ID              string
	CustomerID      string
	TicketIDs       []string
	GrandTotal      decimal.Decimal
	Status          OrderStatus
	PaymentIntentID *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
