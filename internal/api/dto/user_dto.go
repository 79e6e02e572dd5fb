package dto

import "github.com/techaway/backend/internal/domain"

// UpdateUserRequest carries the admin-editable account fields. Omitted
// fields stay unchanged.
type UpdateUserRequest struct {
	Name    *string       `json:"name"`
	Address *string       `json:"address"`
	Phone   *string       `json:"phone"`
	Roles   []domain.Role `json:"roles"`
}

// UserListResponse payload.
type UserListResponse struct {
	Users []UserResponse `json:"users"`
}
