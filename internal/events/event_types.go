package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventOrderCreated      EventType = "order_created"
	EventOrderCompleted    EventType = "order_completed"
	EventOrderCancelled    EventType = "order_cancelled"
	EventUserSignedUp      EventType = "user_signed_up"
	EventSessionsRevoked   EventType = "sessions_revoked"
	EventTicketStatusMoved EventType = "ticket_status_moved"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// OrderCreatedPayload payload.
type OrderCreatedPayload struct {
	OrderID    string `json:"order_id"`
	CustomerID string `json:"customer_id"`
	GrandTotal string `json:"grand_total"`
	Tickets    int    `json:"tickets"`
}

// OrderCompletedPayload payload.
type OrderCompletedPayload struct {
	OrderID         string `json:"order_id"`
	CustomerID      string `json:"customer_id"`
	PaymentIntentID string `json:"payment_intent_id"`
}

// OrderCancelledPayload payload.
type OrderCancelledPayload struct {
	OrderID string `json:"order_id"`
	Tickets int    `json:"tickets"`
}

// UserSignedUpPayload payload.
type UserSignedUpPayload struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// SessionsRevokedPayload payload.
type SessionsRevokedPayload struct {
	UserID string `json:"user_id"`
	Reason string `json:"reason"`
}

// TicketStatusMovedPayload payload.
type TicketStatusMovedPayload struct {
	TicketID  string `json:"ticket_id"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
}
