package dto

import (
	"time"

	"github.com/techaway/backend/internal/domain"
)

// OrderResponse is the public view of an order. Monetary amounts are rendered
// as fixed-point strings.
type OrderResponse struct {
	ID              string             `json:"id"`
	CustomerID      string             `json:"customer_id"`
	TicketIDs       []string           `json:"ticket_ids"`
	GrandTotal      string             `json:"grand_total"`
	Status          domain.OrderStatus `json:"status"`
	PaymentIntentID *string            `json:"payment_intent_id,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// OrderListResponse is one page of orders.
type OrderListResponse struct {
	Orders []OrderResponse `json:"orders"`
	Total  int64           `json:"total"`
}
