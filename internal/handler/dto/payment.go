package dto

import (
	"time"

	"github.com/rentdesk/rentdesk/internal/model"
	"github.com/rentdesk/rentdesk/internal/service"
)

// RecordPaymentRequest is the body of POST /payments.
type RecordPaymentRequest struct {
	LeaseID     string              `json:"lease_id" validate:"required"`
	AmountCents int64               `json:"amount_cents" validate:"gt=0"`
	Method      model.PaymentMethod `json:"method" validate:"omitempty,oneof=ach card check cash other"`
	Status      model.PaymentStatus `json:"status" validate:"omitempty,oneof=pending completed"`
	DueDate     *model.Date         `json:"due_date"`
	PaidAt      *time.Time          `json:"paid_at"`
	Reference   string              `json:"reference" validate:"max=200"`
	Notes       string              `json:"notes" validate:"max=5000"`
}

// ToInput converts the request to a service input.
func (r RecordPaymentRequest) ToInput() service.RecordPaymentInput {
	return service.RecordPaymentInput{
		LeaseID:     r.LeaseID,
		AmountCents: r.AmountCents,
		Method:      r.Method,
		Status:      r.Status,
		DueDate:     r.DueDate,
		PaidAt:      r.PaidAt,
		Reference:   r.Reference,
		Notes:       r.Notes,
	}
}

// PaymentStatusRequest is the body of POST /payments/{id}/status.
type PaymentStatusRequest struct {
	Status model.PaymentStatus `json:"status" validate:"required,oneof=pending completed failed refunded"`
	Notes  string              `json:"notes" validate:"max=5000"`
}
