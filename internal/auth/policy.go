package auth

import "github.com/techaway/backend/internal/domain"

// Action names a guarded operation.
type Action string

const (
	ActionOrderList        Action = "order:list"
	ActionOrderRead        Action = "order:read"
	ActionOrderCancel      Action = "order:cancel"
	ActionTicketRead       Action = "ticket:read"
	ActionTicketAssign     Action = "ticket:assign"
	ActionTicketSetStatus  Action = "ticket:set_status"
	ActionTicketSetUrgency Action = "ticket:set_urgency"
	ActionTicketTechNote   Action = "ticket:tech_note"
	ActionTicketCustNote   Action = "ticket:cust_note"
	ActionCatalogWrite     Action = "catalog:write"
	ActionUserManage       Action = "user:manage"
	ActionReportRead       Action = "report:read"
)

// Resource carries the ownership facts a policy decision needs.
type Resource struct {
	OwnerID    string
	AssigneeID *string
}

// rolePermissions is the single place field-level permissions live; handlers
// ask IsAllowed instead of re-checking role slices.
var rolePermissions = map[domain.Role]map[Action]bool{
	domain.RoleAdmin: {
		ActionOrderList:        true,
		ActionOrderRead:        true,
		ActionOrderCancel:      true,
		ActionTicketRead:       true,
		ActionTicketAssign:     true,
		ActionTicketSetStatus:  true,
		ActionTicketSetUrgency: true,
		ActionTicketTechNote:   true,
		ActionTicketCustNote:   true,
		ActionCatalogWrite:     true,
		ActionUserManage:       true,
		ActionReportRead:       true,
	},
	domain.RoleTechnician: {
		ActionTicketSetStatus: true,
		ActionTicketTechNote:  true,
	},
	domain.RoleCustomer: {},
}

// IsAllowed decides whether the user may perform action on resource.
// Ownership grants customers read/cancel on their own orders and tickets;
// technicians additionally act on tickets assigned to them.
func IsAllowed(user *domain.User, action Action, resource *Resource) bool {
	if user == nil {
		return false
	}
	for _, role := range user.Roles {
		if rolePermissions[role][action] {
			if role == domain.RoleTechnician {
				if resource == nil || resource.AssigneeID == nil || *resource.AssigneeID != user.ID {
					continue
				}
			}
			return true
		}
	}

	if resource != nil && resource.OwnerID == user.ID {
		switch action {
		case ActionOrderList, ActionOrderRead, ActionOrderCancel, ActionTicketRead, ActionTicketCustNote:
			return true
		}
	}
	if resource != nil && resource.AssigneeID != nil && *resource.AssigneeID == user.ID && action == ActionTicketRead {
		return true
	}
	return false
}
