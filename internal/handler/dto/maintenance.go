package dto

import (
	"time"

	"github.com/rentdesk/rentdesk/internal/model"
	"github.com/rentdesk/rentdesk/internal/service"
)

// CreateMaintenanceRequest is the body of POST /maintenance/requests.
type CreateMaintenanceRequest struct {
	PropertyID  string                    `json:"property_id" validate:"required"`
	Title       string                    `json:"title" validate:"required,max=200"`
	Description string                    `json:"description" validate:"required,max=5000"`
	Category    model.MaintenanceCategory `json:"category" validate:"omitempty,oneof=plumbing electrical hvac appliance structural pest general"`
	Priority    model.MaintenancePriority `json:"priority" validate:"omitempty,oneof=low medium high emergency"`
}

// ToInput converts the request to a service input.
func (r CreateMaintenanceRequest) ToInput() service.CreateMaintenanceInput {
	return service.CreateMaintenanceInput{
		PropertyID:  r.PropertyID,
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
		Priority:    r.Priority,
	}
}

// UpdateMaintenanceRequest is the body of PATCH /maintenance/requests/{id}.
type UpdateMaintenanceRequest struct {
	Title           *string                    `json:"title" validate:"omitnil,max=200"`
	Description     *string                    `json:"description" validate:"omitnil,max=5000"`
	Category        *model.MaintenanceCategory `json:"category" validate:"omitnil,oneof=plumbing electrical hvac appliance structural pest general"`
	Priority        *model.MaintenancePriority `json:"priority" validate:"omitnil,oneof=low medium high emergency"`
	AssignedTo      *string                    `json:"assigned_to" validate:"omitnil,max=200"`
	ScheduledFor    *time.Time                 `json:"scheduled_for"`
	CostCents       *int64                     `json:"cost_cents" validate:"omitnil,gte=0"`
	ResolutionNotes *string                    `json:"resolution_notes" validate:"omitnil,max=5000"`
}

// ToInput converts the request to a service input.
func (r UpdateMaintenanceRequest) ToInput() service.UpdateMaintenanceInput {
	return service.UpdateMaintenanceInput{
		Title:           r.Title,
		Description:     r.Description,
		Category:        r.Category,
		Priority:        r.Priority,
		AssignedTo:      r.AssignedTo,
		ScheduledFor:    r.ScheduledFor,
		CostCents:       r.CostCents,
		ResolutionNotes: r.ResolutionNotes,
	}
}

// MaintenanceStatusRequest is the body of POST /maintenance/requests/{id}/status.
type MaintenanceStatusRequest struct {
	Status model.MaintenanceStatus `json:"status" validate:"required,oneof=open in_progress on_hold completed cancelled"`
	Notes  string                  `json:"notes" validate:"max=5000"`
}
