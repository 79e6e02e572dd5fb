package service

import (
	"github.com/shopspring/decimal"

	"github.com/techaway/backend/internal/domain"
)

// PricedTicket pairs a ticket with its computed total.
type PricedTicket struct {
	Ticket domain.Ticket
	Total  decimal.Decimal
}

// PricingResult is the aggregate outcome for one checkout batch.
type PricingResult struct {
	Tickets    []PricedTicket
	GrandTotal decimal.Decimal
}

// PriceTickets computes ticketTotal = basePrice + Σ(basePrice × priceModifier)
// per ticket and sums the batch into a grand total. It is a pure function
// over the supplied snapshots and mutates nothing.
//
// Tickets whose service is absent from the snapshot are excluded from the
// result; callers must compare the output ticket count against their input
// before trusting the total. A modifier absent from the snapshot contributes
// zero. FixedPrice modifiers are deliberately not part of the formula.
func PriceTickets(tickets []domain.Ticket, services map[string]domain.Service, modifiers map[string]domain.ServiceLevelAgreement) PricingResult {
	result := PricingResult{GrandTotal: decimal.Zero}

	for _, ticket := range tickets {
		svc, ok := services[ticket.ServiceID]
		if !ok {
			continue
		}
		total := svc.Price
		for _, modifierID := range ticket.ModifierIDs {
			modifier, ok := modifiers[modifierID]
			if !ok {
				continue
			}
			total = total.Add(svc.Price.Mul(modifier.PriceModifier))
		}
		result.Tickets = append(result.Tickets, PricedTicket{Ticket: ticket, Total: total})
		result.GrandTotal = result.GrandTotal.Add(total)
	}
	return result
}
