package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/techaway/backend/internal/domain"
)

func TestAdminAllowedEverywhere(t *testing.T) {
	admin := &domain.User{ID: "a", Roles: []domain.Role{domain.RoleAdmin}}

	for _, action := range []Action{
		ActionOrderList, ActionOrderRead, ActionOrderCancel,
		ActionTicketRead, ActionTicketAssign, ActionTicketSetStatus,
		ActionTicketSetUrgency, ActionTicketTechNote, ActionTicketCustNote,
		ActionCatalogWrite, ActionUserManage,
	} {
		assert.True(t, IsAllowed(admin, action, nil), "admin should be allowed %s", action)
	}
}

func TestCustomerOwnershipGrants(t *testing.T) {
	customer := &domain.User{ID: "c", Roles: []domain.Role{domain.RoleCustomer}}
	own := &Resource{OwnerID: "c"}
	foreign := &Resource{OwnerID: "someone-else"}

	assert.True(t, IsAllowed(customer, ActionOrderRead, own))
	assert.True(t, IsAllowed(customer, ActionOrderCancel, own))
	assert.True(t, IsAllowed(customer, ActionTicketCustNote, own))

	assert.False(t, IsAllowed(customer, ActionOrderRead, foreign))
	assert.False(t, IsAllowed(customer, ActionTicketSetStatus, own))
	assert.False(t, IsAllowed(customer, ActionCatalogWrite, own))
}

func TestTechnicianGrantsRequireAssignment(t *testing.T) {
	tech := &domain.User{ID: "t", Roles: []domain.Role{domain.RoleTechnician}}
	techID := "t"
	otherID := "other"
	assigned := &Resource{OwnerID: "c", AssigneeID: &techID}
	unassigned := &Resource{OwnerID: "c"}
	elsewhere := &Resource{OwnerID: "c", AssigneeID: &otherID}

	assert.True(t, IsAllowed(tech, ActionTicketSetStatus, assigned))
	assert.True(t, IsAllowed(tech, ActionTicketTechNote, assigned))
	assert.True(t, IsAllowed(tech, ActionTicketRead, assigned))

	assert.False(t, IsAllowed(tech, ActionTicketSetStatus, unassigned))
	assert.False(t, IsAllowed(tech, ActionTicketSetStatus, elsewhere))
	assert.False(t, IsAllowed(tech, ActionTicketAssign, assigned))
	assert.False(t, IsAllowed(tech, ActionTicketSetUrgency, assigned))
}

func TestNilUserDenied(t *testing.T) {
	assert.False(t, IsAllowed(nil, ActionOrderRead, &Resource{OwnerID: "c"}))
}

func TestMultiRoleUnion(t *testing.T) {
	both := &domain.User{ID: "u", Roles: []domain.Role{domain.RoleCustomer, domain.RoleTechnician}}
	uid := "u"

	assert.True(t, IsAllowed(both, ActionTicketSetStatus, &Resource{OwnerID: "x", AssigneeID: &uid}))
	assert.True(t, IsAllowed(both, ActionOrderCancel, &Resource{OwnerID: "u"}))
}
