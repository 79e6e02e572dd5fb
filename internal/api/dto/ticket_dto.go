package dto

import (
	"time"

	"github.com/techaway/backend/internal/domain"
)

// TicketResponse is the public view of a ticket.
type TicketResponse struct {
	ID             string               `json:"id"`
	ServiceID      string               `json:"service_id"`
	CustomerID     string               `json:"customer_id"`
	AssignedTo     *string              `json:"assigned_to,omitempty"`
	ModifierIDs    []string             `json:"modifier_ids"`
	Urgency        domain.TicketUrgency `json:"urgency"`
	CustomerNote   string               `json:"customer_note,omitempty"`
	TechnicianNote string               `json:"technician_note,omitempty"`
	Location       string               `json:"location,omitempty"`
	Status         domain.TicketStatus  `json:"status"`
	Cost           *string              `json:"cost,omitempty"`
	OrderID        *string              `json:"order_id,omitempty"`
	Cancelled      bool                 `json:"cancelled"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

// UpdateTicketRequest carries the mutable ticket fields; absent fields are
// untouched.
type UpdateTicketRequest struct {
	AssignedTo     *string               `json:"assigned_to"`
	Status         *domain.TicketStatus  `json:"status"`
	Urgency        *domain.TicketUrgency `json:"urgency"`
	TechnicianNote *string               `json:"technician_note"`
	CustomerNote   *string               `json:"customer_note"`
}
