package dto

// CartItemRequest is one cart line submitted at checkout.
type CartItemRequest struct {
	ServiceID   string   `json:"service_id"`
	ModifierIDs []string `json:"modifier_ids"`
	Note        string   `json:"note"`
	Location    string   `json:"location"`
}

// CheckoutRequest payload.
type CheckoutRequest struct {
	Cart []CartItemRequest `json:"cart"`
}

// CheckoutResponse returns the created order plus the processor handle the
// client needs to confirm payment.
type CheckoutResponse struct {
	Order           OrderResponse    `json:"order"`
	Tickets         []TicketResponse `json:"tickets"`
	PaymentIntentID string           `json:"payment_intent_id"`
	ClientSecret    string           `json:"client_secret"`
	Amount          int64            `json:"amount"`
}
