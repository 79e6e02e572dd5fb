package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techaway/backend/internal/domain"
)

func dec(val string) decimal.Decimal {
	d, err := decimal.NewFromString(val)
	if err != nil {
		panic(err)
	}
	return d
}

func TestPriceTicketsBaseAndModifiers(t *testing.T) {
	services := map[string]domain.Service{
		"svc-1": {ID: "svc-1", Price: dec("100")},
	}
	modifiers := map[string]domain.ServiceLevelAgreement{
		"sla-1": {ID: "sla-1", PriceModifier: dec("0.5")},
		"sla-2": {ID: "sla-2", PriceModifier: dec("0.25")},
	}
	tickets := []domain.Ticket{
		{ID: "t-1", ServiceID: "svc-1", ModifierIDs: []string{"sla-1", "sla-2"}},
	}

	result := PriceTickets(tickets, services, modifiers)

	require.Len(t, result.Tickets, 1)
	// 100 + 100*0.5 + 100*0.25
	assert.True(t, result.Tickets[0].Total.Equal(dec("175")), "got %s", result.Tickets[0].Total)
	assert.True(t, result.GrandTotal.Equal(dec("175")))
}

func TestPriceTicketsNoModifiers(t *testing.T) {
	services := map[string]domain.Service{
		"svc-1": {ID: "svc-1", Price: dec("49.95")},
	}
	tickets := []domain.Ticket{{ID: "t-1", ServiceID: "svc-1"}}

	result := PriceTickets(tickets, services, nil)

	require.Len(t, result.Tickets, 1)
	assert.True(t, result.Tickets[0].Total.Equal(dec("49.95")))
}

func TestPriceTicketsDropsUnknownService(t *testing.T) {
	services := map[string]domain.Service{
		"svc-1": {ID: "svc-1", Price: dec("10")},
	}
	tickets := []domain.Ticket{
		{ID: "t-1", ServiceID: "svc-1"},
		{ID: "t-2", ServiceID: "svc-missing"},
	}

	result := PriceTickets(tickets, services, nil)

	require.Len(t, result.Tickets, 1)
	assert.Equal(t, "t-1", result.Tickets[0].Ticket.ID)
	assert.True(t, result.GrandTotal.Equal(dec("10")))
}

func TestPriceTicketsUnknownModifierContributesZero(t *testing.T) {
	services := map[string]domain.Service{
		"svc-1": {ID: "svc-1", Price: dec("20")},
	}
	tickets := []domain.Ticket{
		{ID: "t-1", ServiceID: "svc-1", ModifierIDs: []string{"sla-missing"}},
	}

	result := PriceTickets(tickets, services, map[string]domain.ServiceLevelAgreement{})

	require.Len(t, result.Tickets, 1)
	assert.True(t, result.Tickets[0].Total.Equal(dec("20")))
}

func TestPriceTicketsSumsBatch(t *testing.T) {
	services := map[string]domain.Service{
		"svc-1": {ID: "svc-1", Price: dec("100")},
		"svc-2": {ID: "svc-2", Price: dec("60")},
	}
	modifiers := map[string]domain.ServiceLevelAgreement{
		"sla-1": {ID: "sla-1", PriceModifier: dec("0.1")},
	}
	tickets := []domain.Ticket{
		{ID: "t-1", ServiceID: "svc-1", ModifierIDs: []string{"sla-1"}},
		{ID: "t-2", ServiceID: "svc-2"},
	}

	result := PriceTickets(tickets, services, modifiers)

	require.Len(t, result.Tickets, 2)
	assert.True(t, result.GrandTotal.Equal(dec("170")), "got %s", result.GrandTotal)
}
