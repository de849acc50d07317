package model

import (
	"slices"
	"time"
)

// PaymentStatus is the settlement state of a payment.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusPending:   {PaymentStatusCompleted, PaymentStatusFailed},
	PaymentStatusCompleted: {PaymentStatusRefunded},
}

// IsValid checks if the status is a known value.
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

// CanTransitionTo reports whether moving from s to next is allowed.
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	return slices.Contains(paymentTransitions[s], next)
}

// PaymentMethod records how the money moved.
type PaymentMethod string

const (
	PaymentMethodACH   PaymentMethod = "ach"
	PaymentMethodCard  PaymentMethod = "card"
	PaymentMethodCheck PaymentMethod = "check"
	PaymentMethodCash  PaymentMethod = "cash"
	PaymentMethodOther PaymentMethod = "other"
)

// IsValid checks if the method is a known value.
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodACH, PaymentMethodCard, PaymentMethodCheck, PaymentMethodCash, PaymentMethodOther:
		return true
	}
	return false
}

// Payment is money received (or claimed) against a lease.
type Payment struct {
	ID          string        `json:"id"`
	LeaseID     string        `json:"lease_id"`
	LandlordID  string        `json:"landlord_id"`
	TenantID    string        `json:"tenant_id"`
	AmountCents int64         `json:"amount_cents"`
	Method      PaymentMethod `json:"method"`
	Status      PaymentStatus `json:"status"`
	DueDate     *Date         `json:"due_date,omitempty"`
	PaidAt      *time.Time    `json:"paid_at,omitempty"`
	Reference   string        `json:"reference,omitempty"`
	Notes       string        `json:"notes,omitempty"`
	RecordedBy  string        `json:"recorded_by"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// LeaseBalance is the running ledger of a lease at a given day.
type LeaseBalance struct {
	LeaseID      string `json:"lease_id"`
	AsOf         Date   `json:"as_of"`
	ChargedCents int64  `json:"charged_cents"`
	PaidCents    int64  `json:"paid_cents"`
	BalanceCents int64  `json:"balance_cents"`
	ChargesCount int    `json:"charges_count"`
	NextDueDate  *Date  `json:"next_due_date,omitempty"`
	NextDueCents int64  `json:"next_due_cents"`
}
