package dto

import (
	"github.com/rentdesk/rentdesk/internal/model"
	"github.com/rentdesk/rentdesk/internal/service"
)

// CreateLeaseRequest is the body of POST /leases.
type CreateLeaseRequest struct {
	PropertyID    string     `json:"property_id" validate:"required"`
	TenantID      string     `json:"tenant_id" validate:"required"`
	StartDate     model.Date `json:"start_date"`
	EndDate       model.Date `json:"end_date"`
	RentCents     int64      `json:"rent_cents"`
	DepositCents  int64      `json:"deposit_cents"`
	PaymentDueDay int        `json:"payment_due_day"`
	Notes         string     `json:"notes" validate:"max=5000"`
	Draft         bool       `json:"draft"`
}

// ToInput converts the request to a service input.
func (r CreateLeaseRequest) ToInput() service.CreateLeaseInput {
	return service.CreateLeaseInput{
		PropertyID:    r.PropertyID,
		TenantID:      r.TenantID,
		StartDate:     r.StartDate,
		EndDate:       r.EndDate,
		RentCents:     r.RentCents,
		DepositCents:  r.DepositCents,
		PaymentDueDay: r.PaymentDueDay,
		Notes:         r.Notes,
		Draft:         r.Draft,
	}
}

// UpdateLeaseRequest is the body of PATCH /leases/{id}.
type UpdateLeaseRequest struct {
	StartDate     *model.Date `json:"start_date"`
	EndDate       *model.Date `json:"end_date"`
	RentCents     *int64      `json:"rent_cents"`
	DepositCents  *int64      `json:"deposit_cents"`
	PaymentDueDay *int        `json:"payment_due_day"`
	Notes         *string     `json:"notes" validate:"omitnil,max=5000"`
}

// ToInput converts the request to a service input.
func (r UpdateLeaseRequest) ToInput() service.UpdateLeaseInput {
	return service.UpdateLeaseInput{
		StartDate:     r.StartDate,
		EndDate:       r.EndDate,
		RentCents:     r.RentCents,
		DepositCents:  r.DepositCents,
		PaymentDueDay: r.PaymentDueDay,
		Notes:         r.Notes,
	}
}

// RenewLeaseRequest is the body of POST /leases/{id}/renew.
type RenewLeaseRequest struct {
	TermMonths          *int        `json:"term_months"`
	EndDate             *model.Date `json:"end_date"`
	RentCents           *int64      `json:"rent_cents"`
	RentIncreasePercent *float64    `json:"rent_increase_percent"`
	DepositCents        *int64      `json:"deposit_cents"`
	Notes               *string     `json:"notes" validate:"omitnil,max=5000"`
}

// ToInput converts the request to a service input.
func (r RenewLeaseRequest) ToInput() service.RenewLeaseInput {
	return service.RenewLeaseInput{
		TermMonths:          r.TermMonths,
		EndDate:             r.EndDate,
		RentCents:           r.RentCents,
		RentIncreasePercent: r.RentIncreasePercent,
		DepositCents:        r.DepositCents,
		Notes:               r.Notes,
	}
}

// RenewLeaseResponse shows both sides of a renewal.
type RenewLeaseResponse struct {
	Previous *model.Lease `json:"previous"`
	Lease    *model.Lease `json:"lease"`
}

// TerminateLeaseRequest is the body of POST /leases/{id}/terminate.
type TerminateLeaseRequest struct {
	Reason        string      `json:"reason" validate:"required,max=1000"`
	EffectiveDate *model.Date `json:"effective_date"`
}
