package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techaway/backend/internal/domain"
	apperrors "github.com/techaway/backend/pkg/util"
)

type reportFixture struct {
	store *fakeStore
	svc   *ReportService
}

func newReportFixture(t *testing.T) *reportFixture {
	t.Helper()
	store := newFakeStore()
	return &reportFixture{
		store: store,
		svc:   NewReportService(&fakeReportRepo{store: store}, nil),
	}
}

func (fx *reportFixture) seedOrder(status domain.OrderStatus, total string) {
	id := fx.store.nextID("order")
	fx.store.orders[id] = &domain.Order{ID: id, CustomerID: "cust-1", Status: status, GrandTotal: decimal.RequireFromString(total)}
}

func adminUser() *domain.User {
	return &domain.User{ID: "admin-1", Roles: []domain.Role{domain.RoleAdmin}}
}

func TestRevenueReportCountsOnlyCompletedOrders(t *testing.T) {
	fx := newReportFixture(t)
	fx.seedOrder(domain.OrderStatusCompleted, "100.00")
	fx.seedOrder(domain.OrderStatusCompleted, "55.50")
	fx.seedOrder(domain.OrderStatusPending, "999.00")
	fx.seedOrder(domain.OrderStatusCancelled, "10.00")

	report, err := fx.svc.Revenue(context.Background(), adminUser())
	require.NoError(t, err)

	assert.Equal(t, "155.5", report.CompletedRevenue.String())
	assert.Len(t, report.Lines, 3)
}

func TestRevenueReportRequiresAdmin(t *testing.T) {
	fx := newReportFixture(t)

	_, err := fx.svc.Revenue(context.Background(), &domain.User{ID: "u-1", Roles: []domain.Role{domain.RoleCustomer}})
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))

	_, err = fx.svc.TechnicianWorkload(context.Background(), &domain.User{ID: "t-1", Roles: []domain.Role{domain.RoleTechnician}})
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
}

func TestTechnicianWorkloadBucketsByTicketState(t *testing.T) {
	fx := newReportFixture(t)
	techID := "tech-1"
	fx.store.users[techID] = &domain.User{ID: techID, Name: "Sam", Email: "sam@example.com", Roles: []domain.Role{domain.RoleTechnician}}

	seedTicket := func(status domain.TicketStatus, cancelled bool) {
		id := fx.store.nextID("ticket")
		fx.store.tickets[id] = &domain.Ticket{ID: id, AssignedTo: &techID, Status: status, Cancelled: cancelled}
	}
	seedTicket(domain.TicketStatusOpen, false)
	seedTicket(domain.TicketStatusNotStarted, false)
	seedTicket(domain.TicketStatusComplete, false)
	seedTicket(domain.TicketStatusOpen, true)

	rows, err := fx.svc.TechnicianWorkload(context.Background(), adminUser())
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, techID, rows[0].TechnicianID)
	assert.Equal(t, int64(2), rows[0].Open)
	assert.Equal(t, int64(1), rows[0].Completed)
	assert.Equal(t, int64(1), rows[0].Cancelled)
}
