package model

import (
	"slices"
	"time"
)

// LeaseStatus is the lifecycle state of a lease.
type LeaseStatus string

const (
	LeaseStatusDraft      LeaseStatus = "draft"
	LeaseStatusPending    LeaseStatus = "pending"
	LeaseStatusActive     LeaseStatus = "active"
	LeaseStatusRenewed    LeaseStatus = "renewed"
	LeaseStatusTerminated LeaseStatus = "terminated"
	LeaseStatusExpired    LeaseStatus = "expired"
)

// leaseTransitions lists the allowed next states for each status.
var leaseTransitions = map[LeaseStatus][]LeaseStatus{
	LeaseStatusDraft:   {LeaseStatusPending, LeaseStatusActive, LeaseStatusTerminated},
	LeaseStatusPending: {LeaseStatusActive, LeaseStatusTerminated},
	LeaseStatusActive:  {LeaseStatusRenewed, LeaseStatusTerminated, LeaseStatusExpired},
}

// IsValid checks if the status is a known value.
func (s LeaseStatus) IsValid() bool {
	switch s {
	case LeaseStatusDraft, LeaseStatusPending, LeaseStatusActive,
		LeaseStatusRenewed, LeaseStatusTerminated, LeaseStatusExpired:
		return true
	}
	return false
}

// CanTransitionTo reports whether moving from s to next is allowed.
func (s LeaseStatus) CanTransitionTo(next LeaseStatus) bool {
	return slices.Contains(leaseTransitions[s], next)
}

// IsTerminal reports whether no further transitions are possible.
func (s LeaseStatus) IsTerminal() bool {
	return len(leaseTransitions[s]) == 0
}

// IsOpen reports whether the lease still binds the property (pending or active).
func (s LeaseStatus) IsOpen() bool {
	return s == LeaseStatusPending || s == LeaseStatusActive
}

// Lease is a rental agreement between a landlord and a tenant for a property.
type Lease struct {
	ID                string      `json:"id"`
	LandlordID        string      `json:"landlord_id"`
	PropertyID        string      `json:"property_id"`
	TenantID          string      `json:"tenant_id"`
	Status            LeaseStatus `json:"status"`
	StartDate         Date        `json:"start_date"`
	EndDate           Date        `json:"end_date"`
	RentCents         int64       `json:"rent_cents"`
	DepositCents      int64       `json:"deposit_cents"`
	PaymentDueDay     int         `json:"payment_due_day"`
	RenewedFromID     *string     `json:"renewed_from_id,omitempty"`
	RenewedToID       *string     `json:"renewed_to_id,omitempty"`
	TerminatedAt      *time.Time  `json:"terminated_at,omitempty"`
	TerminationReason string      `json:"termination_reason,omitempty"`
	Notes             string      `json:"notes,omitempty"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

// IsEditable reports whether terms may still change.
func (l *Lease) IsEditable() bool {
	return l.Status == LeaseStatusDraft || l.Status == LeaseStatusPending
}

// IsExpiredOn reports whether an active lease has run past its end date.
func (l *Lease) IsExpiredOn(day Date) bool {
	return l.Status == LeaseStatusActive && l.EndDate.Before(day)
}

// IsDueToStartOn reports whether a pending lease has reached its start date.
func (l *Lease) IsDueToStartOn(day Date) bool {
	return l.Status == LeaseStatusPending && !l.StartDate.After(day)
}

// ExpiresWithin reports whether an active lease ends within the next days.
func (l *Lease) ExpiresWithin(day Date, days int) bool {
	if l.Status != LeaseStatusActive {
		return false
	}
	return !l.EndDate.Before(day) && !l.EndDate.After(day.AddDays(days))
}

// InitialLeaseStatus chooses the status of a newly created lease.
// A draft stays a draft; otherwise the lease waits as pending while the
// property is still occupied or the term has not started yet.
func InitialLeaseStatus(asDraft, propertyHasActiveLease bool, start, today Date) LeaseStatus {
	switch {
	case asDraft:
		return LeaseStatusDraft
	case propertyHasActiveLease:
		return LeaseStatusPending
	case start.After(today):
		return LeaseStatusPending
	default:
		return LeaseStatusActive
	}
}
