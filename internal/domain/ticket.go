package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusNotStarted      TicketStatus = "NOT_STARTED"
	TicketStatusOpen            TicketStatus = "OPEN"
	TicketStatusQueriesClient   TicketStatus = "QUERIES_CLIENT"
	TicketStatusQueriesExternal TicketStatus = "QUERIES_EXTERNAL"
	TicketStatusComplete        TicketStatus = "COMPLETE"
)

// Valid reports whether the status is one of the known lifecycle states.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusNotStarted, TicketStatusOpen, TicketStatusQueriesClient,
		TicketStatusQueriesExternal, TicketStatusComplete:
		return true
	}
	return false
}

// TicketUrgency enumerates urgency levels.
type TicketUrgency string

const (
	TicketUrgencyPlanned  TicketUrgency = "planned"
	TicketUrgencyLow      TicketUrgency = "low"
	TicketUrgencyMedium   TicketUrgency = "medium"
	TicketUrgencyHigh     TicketUrgency = "high"
	TicketUrgencyCritical TicketUrgency = "critical"
)

// Valid reports whether the urgency is a known level.
func (u TicketUrgency) Valid() bool {
	switch u {
	case TicketUrgencyPlanned, TicketUrgencyLow, TicketUrgencyMedium,
		TicketUrgencyHigh, TicketUrgencyCritical:
		return true
	}
	return false
}

// Ticket is one purchasable unit of technician work. Cost stays nil until the
// checkout pipeline prices the ticket and links it to an order.
type Ticket struct {
	ID             string
	ServiceID      string
	CustomerID     string
	AssignedTo     *string
	ModifierIDs    []string
	Urgency        TicketUrgency
	CustomerNote   string
	TechnicianNote string
	Location       string
	Status         TicketStatus
	Cost           *decimal.Decimal
	OrderID        *string
	Cancelled      bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
