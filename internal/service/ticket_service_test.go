package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techaway/backend/internal/domain"
	apperrors "github.com/techaway/backend/pkg/util"
)

type ticketFixture struct {
	store *fakeStore
	svc   *TicketService
	owner *domain.User
	tech  *domain.User
	admin *domain.User
}

func newTicketFixture(t *testing.T) *ticketFixture {
	t.Helper()
	store := newFakeStore()
	svc := NewTicketService(TicketServiceDependencies{
		TicketRepo: &fakeTicketRepo{store: store},
		UserRepo:   &fakeUserRepo{store: store},
	})

	fx := &ticketFixture{
		store: store,
		svc:   svc,
		owner: &domain.User{ID: "user-owner", Roles: []domain.Role{domain.RoleCustomer}},
		tech:  &domain.User{ID: "user-tech", Roles: []domain.Role{domain.RoleTechnician}},
		admin: &domain.User{ID: "user-admin", Roles: []domain.Role{domain.RoleAdmin}},
	}
	store.users[fx.owner.ID] = fx.owner
	store.users[fx.tech.ID] = fx.tech
	store.users[fx.admin.ID] = fx.admin
	return fx
}

func (fx *ticketFixture) seedTicket(assignedTo *string) *domain.Ticket {
	id := fx.store.nextID("ticket")
	fx.store.tickets[id] = &domain.Ticket{
		ID:         id,
		ServiceID:  "svc-1",
		CustomerID: fx.owner.ID,
		AssignedTo: assignedTo,
		Urgency:    domain.TicketUrgencyLow,
		Status:     domain.TicketStatusNotStarted,
	}
	return fx.store.tickets[id]
}

func statusPtr(s domain.TicketStatus) *domain.TicketStatus    { return &s }
func urgencyPtr(u domain.TicketUrgency) *domain.TicketUrgency { return &u }
func strPtr(s string) *string                                 { return &s }

func TestTicketListScoping(t *testing.T) {
	fx := newTicketFixture(t)
	fx.seedTicket(&fx.tech.ID)
	fx.seedTicket(nil)

	tickets, err := fx.svc.List(context.Background(), fx.owner, TicketListInput{})
	require.NoError(t, err)
	assert.Len(t, tickets, 2)

	tickets, err = fx.svc.List(context.Background(), fx.tech, TicketListInput{})
	require.NoError(t, err)
	assert.Len(t, tickets, 1)

	tickets, err = fx.svc.List(context.Background(), fx.admin, TicketListInput{})
	require.NoError(t, err)
	assert.Len(t, tickets, 2)
}

func TestTicketGetAccess(t *testing.T) {
	fx := newTicketFixture(t)
	ticket := fx.seedTicket(&fx.tech.ID)

	_, err := fx.svc.Get(context.Background(), fx.owner, ticket.ID)
	require.NoError(t, err)
	_, err = fx.svc.Get(context.Background(), fx.tech, ticket.ID)
	require.NoError(t, err)

	stranger := &domain.User{ID: "user-x", Roles: []domain.Role{domain.RoleCustomer}}
	_, err = fx.svc.Get(context.Background(), stranger, ticket.ID)
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
}

func TestAssignedTechnicianCanMoveStatus(t *testing.T) {
	fx := newTicketFixture(t)
	ticket := fx.seedTicket(&fx.tech.ID)

	updated, err := fx.svc.Update(context.Background(), fx.tech, ticket.ID, TicketUpdateInput{
		Status:         statusPtr(domain.TicketStatusOpen),
		TechnicianNote: strPtr("started diagnostics"),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusOpen, updated.Status)
	assert.Equal(t, "started diagnostics", updated.TechnicianNote)
}

func TestUnassignedTechnicianCannotMoveStatus(t *testing.T) {
	fx := newTicketFixture(t)
	ticket := fx.seedTicket(nil)

	_, err := fx.svc.Update(context.Background(), fx.tech, ticket.ID, TicketUpdateInput{
		Status: statusPtr(domain.TicketStatusOpen),
	})
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
}

func TestTechnicianCannotReassign(t *testing.T) {
	fx := newTicketFixture(t)
	ticket := fx.seedTicket(&fx.tech.ID)

	_, err := fx.svc.Update(context.Background(), fx.tech, ticket.ID, TicketUpdateInput{
		AssignedTo: &fx.tech.ID,
	})
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
}

func TestCustomerCanEditOwnNoteOnly(t *testing.T) {
	fx := newTicketFixture(t)
	ticket := fx.seedTicket(nil)

	updated, err := fx.svc.Update(context.Background(), fx.owner, ticket.ID, TicketUpdateInput{
		CustomerNote: strPtr("please call before visiting"),
	})
	require.NoError(t, err)
	assert.Equal(t, "please call before visiting", updated.CustomerNote)

	_, err = fx.svc.Update(context.Background(), fx.owner, ticket.ID, TicketUpdateInput{
		Status: statusPtr(domain.TicketStatusComplete),
	})
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
}

func TestAdminAssignValidatesAssignee(t *testing.T) {
	fx := newTicketFixture(t)
	ticket := fx.seedTicket(nil)

	updated, err := fx.svc.Update(context.Background(), fx.admin, ticket.ID, TicketUpdateInput{
		AssignedTo: &fx.tech.ID,
		Urgency:    urgencyPtr(domain.TicketUrgencyHigh),
	})
	require.NoError(t, err)
	require.NotNil(t, updated.AssignedTo)
	assert.Equal(t, fx.tech.ID, *updated.AssignedTo)
	assert.Equal(t, domain.TicketUrgencyHigh, updated.Urgency)

	// assigning to a customer account is rejected
	_, err = fx.svc.Update(context.Background(), fx.admin, ticket.ID, TicketUpdateInput{
		AssignedTo: &fx.owner.ID,
	})
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
}

func TestUpdateRejectsUnknownStatus(t *testing.T) {
	fx := newTicketFixture(t)
	ticket := fx.seedTicket(nil)

	_, err := fx.svc.Update(context.Background(), fx.admin, ticket.ID, TicketUpdateInput{
		Status: statusPtr(domain.TicketStatus("NOT_A_STATUS")),
	})
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
}

func TestUpdateRejectsCancelledTicket(t *testing.T) {
	fx := newTicketFixture(t)
	ticket := fx.seedTicket(nil)
	fx.store.tickets[ticket.ID].Cancelled = true

	_, err := fx.svc.Update(context.Background(), fx.admin, ticket.ID, TicketUpdateInput{
		Status: statusPtr(domain.TicketStatusOpen),
	})
	assert.True(t, apperrors.IsCode(err, "CONFLICT"))
}
