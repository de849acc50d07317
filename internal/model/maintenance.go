package model

import (
	"slices"
	"time"
)

// MaintenanceStatus is the workflow state of a maintenance request.
type MaintenanceStatus string

const (
	MaintenanceStatusOpen       MaintenanceStatus = "open"
	MaintenanceStatusInProgress MaintenanceStatus = "in_progress"
	MaintenanceStatusOnHold     MaintenanceStatus = "on_hold"
	MaintenanceStatusCompleted  MaintenanceStatus = "completed"
	MaintenanceStatusCancelled  MaintenanceStatus = "cancelled"
)

var maintenanceTransitions = map[MaintenanceStatus][]MaintenanceStatus{
	MaintenanceStatusOpen:       {MaintenanceStatusInProgress, MaintenanceStatusOnHold, MaintenanceStatusCompleted, MaintenanceStatusCancelled},
	MaintenanceStatusInProgress: {MaintenanceStatusOnHold, MaintenanceStatusCompleted, MaintenanceStatusCancelled},
	MaintenanceStatusOnHold:     {MaintenanceStatusInProgress, MaintenanceStatusCancelled},
}

// IsValid checks if the status is a known value.
func (s MaintenanceStatus) IsValid() bool {
	switch s {
	case MaintenanceStatusOpen, MaintenanceStatusInProgress, MaintenanceStatusOnHold,
		MaintenanceStatusCompleted, MaintenanceStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether moving from s to next is allowed.
func (s MaintenanceStatus) CanTransitionTo(next MaintenanceStatus) bool {
	return slices.Contains(maintenanceTransitions[s], next)
}

// IsClosed reports whether the request needs no further work.
func (s MaintenanceStatus) IsClosed() bool {
	return s == MaintenanceStatusCompleted || s == MaintenanceStatusCancelled
}

// MaintenancePriority ranks how urgent a request is.
type MaintenancePriority string

const (
	PriorityLow       MaintenancePriority = "low"
	PriorityMedium    MaintenancePriority = "medium"
	PriorityHigh      MaintenancePriority = "high"
	PriorityEmergency MaintenancePriority = "emergency"
)

// Rank orders priorities, higher is more urgent.
func (p MaintenancePriority) Rank() int {
	switch p {
	case PriorityEmergency:
		return 3
	case PriorityHigh:
		return 2
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 0
	}
	return -1
}

// IsValid checks if the priority is a known value.
func (p MaintenancePriority) IsValid() bool {
	return p.Rank() >= 0
}

// MaintenanceCategory classifies the trade needed.
type MaintenanceCategory string

const (
	CategoryPlumbing   MaintenanceCategory = "plumbing"
	CategoryElectrical MaintenanceCategory = "electrical"
	CategoryHVAC       MaintenanceCategory = "hvac"
	CategoryAppliance  MaintenanceCategory = "appliance"
	CategoryStructural MaintenanceCategory = "structural"
	CategoryPest       MaintenanceCategory = "pest"
	CategoryGeneral    MaintenanceCategory = "general"
)

// IsValid checks if the category is a known value.
func (c MaintenanceCategory) IsValid() bool {
	switch c {
	case CategoryPlumbing, CategoryElectrical, CategoryHVAC, CategoryAppliance,
		CategoryStructural, CategoryPest, CategoryGeneral:
		return true
	}
	return false
}

// MaintenanceRequest is a repair or service request against a property.
type MaintenanceRequest struct {
	ID              string              `json:"id"`
	LandlordID      string              `json:"landlord_id"`
	PropertyID      string              `json:"property_id"`
	TenantID        *string             `json:"tenant_id,omitempty"`
	RequestedBy     string              `json:"requested_by"`
	Title           string              `json:"title"`
	Description     string              `json:"description"`
	Category        MaintenanceCategory `json:"category"`
	Priority        MaintenancePriority `json:"priority"`
	Status          MaintenanceStatus   `json:"status"`
	AssignedTo      string              `json:"assigned_to,omitempty"`
	ScheduledFor    *time.Time          `json:"scheduled_for,omitempty"`
	CompletedAt     *time.Time          `json:"completed_at,omitempty"`
	CostCents       *int64              `json:"cost_cents,omitempty"`
	ResolutionNotes string              `json:"resolution_notes,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}
