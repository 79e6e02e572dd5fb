package domain

import "time"

// Role enumerates the access levels an account can hold.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleTechnician Role = "technician"
	RoleCustomer   Role = "customer"
)

// User is the domain model for every account: customers buying services,
// technicians working tickets and administrators.
type User struct {
	ID               string
	Username         string
	Email            string
	PasswordHash     string
	Roles            []Role
	Name             string
	Address          string
	Phone            string
	EmailVerified    bool
	StripeCustomerID *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTechnician, RoleCustomer:
		return true
	}
	return false
}

// HasRole reports whether the user holds the given role.
func (u *User) HasRole(role Role) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}
