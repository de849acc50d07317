package dto

import (
	"github.com/rentdesk/rentdesk/internal/model"
	"github.com/rentdesk/rentdesk/internal/service"
)

// TenantRequest is the body of POST, PUT and PATCH on /tenants.
type TenantRequest struct {
	LandlordID            *string `json:"landlord_id"`
	FirstName             *string `json:"first_name" validate:"omitnil,max=100"`
	LastName              *string `json:"last_name" validate:"omitnil,max=100"`
	Email                 *string `json:"email" validate:"omitnil,max=254"`
	Phone                 *string `json:"phone" validate:"omitnil,max=32"`
	EmergencyContactName  *string `json:"emergency_contact_name" validate:"omitnil,max=200"`
	EmergencyContactPhone *string `json:"emergency_contact_phone" validate:"omitnil,max=32"`
	Notes                 *string `json:"notes" validate:"omitnil,max=5000"`
}

// ToInput converts the request to a service input.
func (r TenantRequest) ToInput() service.TenantInput {
	return service.TenantInput{
		LandlordID:            r.LandlordID,
		FirstName:             r.FirstName,
		LastName:              r.LastName,
		Email:                 r.Email,
		Phone:                 r.Phone,
		EmergencyContactName:  r.EmergencyContactName,
		EmergencyContactPhone: r.EmergencyContactPhone,
		Notes:                 r.Notes,
	}
}

// TenantResponse is a tenant with its derived lease standing.
type TenantResponse struct {
	*model.Tenant
	Standing     model.TenantStanding `json:"standing"`
	CurrentLease *model.Lease         `json:"current_lease"`
	LeaseCount   int                  `json:"lease_count"`
}

// ToTenantResponse converts a tenant summary.
func ToTenantResponse(s *model.TenantSummary) TenantResponse {
	return TenantResponse{
		Tenant:       s.Tenant,
		Standing:     s.Standing(),
		CurrentLease: s.CurrentLease,
		LeaseCount:   s.LeaseCount,
	}
}
