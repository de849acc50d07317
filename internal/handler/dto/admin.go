package dto

import "github.com/rentdesk/rentdesk/internal/service"

// UpdateUserRequest is the body of PATCH /admin/users/{id}.
type UpdateUserRequest struct {
	Role     *string `json:"role" validate:"omitnil,oneof=landlord tenant admin"`
	Disabled *bool   `json:"disabled"`
}

// ToInput converts the request to a service input.
func (r UpdateUserRequest) ToInput() service.UpdateUserInput {
	return service.UpdateUserInput{Role: r.Role, Disabled: r.Disabled}
}
