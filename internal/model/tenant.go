package model

import (
	"strings"
	"time"
)

// TenantStanding groups tenants by their lease history.
type TenantStanding string

const (
	TenantStandingCurrent     TenantStanding = "current"
	TenantStandingPast        TenantStanding = "past"
	TenantStandingProspective TenantStanding = "prospective"
)

// Tenant is a renter record kept by a landlord. It may be linked to a
// tenant-role user account once the renter signs up.
type Tenant struct {
	ID                    string     `json:"id"`
	LandlordID            string     `json:"landlord_id"`
	UserID                *string    `json:"user_id,omitempty"`
	FirstName             string     `json:"first_name"`
	LastName              string     `json:"last_name"`
	Email                 string     `json:"email"`
	Phone                 string     `json:"phone,omitempty"`
	EmergencyContactName  string     `json:"emergency_contact_name,omitempty"`
	EmergencyContactPhone string     `json:"emergency_contact_phone,omitempty"`
	Notes                 string     `json:"notes,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
	DeletedAt             *time.Time `json:"-"`
}

// FullName joins first and last name.
func (t *Tenant) FullName() string {
	return strings.TrimSpace(t.FirstName + " " + t.LastName)
}

// TenantSummary is a tenant together with what its leases say about it.
type TenantSummary struct {
	Tenant       *Tenant
	CurrentLease *Lease
	LeaseCount   int
}

// Standing derives the tenant's standing from its lease history.
func (s *TenantSummary) Standing() TenantStanding {
	if s.CurrentLease == nil {
		return TenantStandingProspective
	}
	switch s.CurrentLease.Status {
	case LeaseStatusActive:
		return TenantStandingCurrent
	case LeaseStatusDraft, LeaseStatusPending:
		return TenantStandingProspective
	default:
		return TenantStandingPast
	}
}

// PickCurrentLease chooses the lease that best describes a tenant right now:
// the active lease, else a pending one, else the most recently created.
func PickCurrentLease(leases []*Lease) *Lease {
	var pending, latest *Lease
	for _, l := range leases {
		switch l.Status {
		case LeaseStatusActive:
			return l
		case LeaseStatusPending:
			if pending == nil {
				pending = l
			}
		}
		if latest == nil || l.CreatedAt.After(latest.CreatedAt) {
			latest = l
		}
	}
	if pending != nil {
		return pending
	}
	return latest
}
