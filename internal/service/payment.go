package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rentdesk/rentdesk/internal/activity"
	"github.com/rentdesk/rentdesk/internal/model"
	"github.com/rentdesk/rentdesk/internal/repository"
)

// PaymentService records rent payments.
type PaymentService struct {
	core
	leases *LeaseService
}

// RecordPaymentInput defines a payment against a lease.
type RecordPaymentInput struct {
	LeaseID     string
	AmountCents int64
	Method      model.PaymentMethod
	Status      model.PaymentStatus
	DueDate     *model.Date
	PaidAt      *time.Time
	Reference   string
	Notes       string
}

// ListPaymentsInput defines listing filters.
type ListPaymentsInput struct {
	LeaseID string
	Status  model.PaymentStatus
	Cursor  string
	Limit   int
}

// Record stores a payment. Landlords record settled payments (completed by
// default); tenants submit claims that always start pending.
func (s *PaymentService) Record(ctx context.Context, actor *model.AuthContext, input RecordPaymentInput) (*model.Payment, error) {
	if input.Method == "" {
		input.Method = model.PaymentMethodOther
	}

	var v validator
	v.check(input.LeaseID != "", "lease_id", "is required")
	v.check(input.AmountCents > 0, "amount_cents", "must be greater than zero")
	v.check(input.Method.IsValid(), "method", "is not a valid payment method")
	if err := v.err(); err != nil {
		return nil, err
	}

	lease, err := s.leases.Get(ctx, actor, input.LeaseID)
	if err != nil {
		return nil, err
	}
	if lease.Status == model.LeaseStatusDraft {
		return nil, fieldError("lease_id", "payments cannot be recorded against a draft lease")
	}

	status := model.PaymentStatusPending
	if actor.IsAdmin() || lease.LandlordID == actor.UserID {
		status = model.PaymentStatusCompleted
		if input.Status != "" {
			if input.Status != model.PaymentStatusPending && input.Status != model.PaymentStatusCompleted {
				return nil, fieldError("status", "must be pending or completed")
			}
			status = input.Status
		}
	}

	now := s.nowUTC()
	p := &model.Payment{
		ID:          newID(),
		LeaseID:     lease.ID,
		LandlordID:  lease.LandlordID,
		TenantID:    lease.TenantID,
		AmountCents: input.AmountCents,
		Method:      input.Method,
		Status:      status,
		DueDate:     input.DueDate,
		Reference:   strings.TrimSpace(input.Reference),
		Notes:       strings.TrimSpace(input.Notes),
		RecordedBy:  actor.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if status == model.PaymentStatusCompleted {
		p.PaidAt = ptr(now)
		if input.PaidAt != nil {
			p.PaidAt = ptr(input.PaidAt.UTC())
		}
	}

	if err := s.store.CreatePayment(ctx, p); err != nil {
		return nil, translate(err, "create payment")
	}

	s.metrics.IncPaymentRecorded()
	s.announce(ctx, actor, activity.PaymentRecorded, p)
	return p, nil
}

// Get returns a payment visible to the caller.
func (s *PaymentService) Get(ctx context.Context, actor *model.AuthContext, id string) (*model.Payment, error) {
	p, err := s.store.GetPayment(ctx, id)
	if err != nil {
		return nil, translate(err, "get payment")
	}
	switch {
	case actor.IsAdmin(), p.LandlordID == actor.UserID:
		return p, nil
	case actor.IsTenant():
		ids, err := s.tenantScope(ctx, actor)
		if err != nil {
			return nil, err
		}
		if slices.Contains(ids, p.TenantID) {
			return p, nil
		}
	}
	return nil, ErrPaymentNotFound
}

// List returns payments in the caller's scope, newest first.
func (s *PaymentService) List(ctx context.Context, actor *model.AuthContext, input ListPaymentsInput) (*Page[*model.Payment], error) {
	if input.Status != "" && !input.Status.IsValid() {
		return nil, fieldError("status", "is not a valid payment status")
	}

	filter := repository.PaymentFilter{LeaseID: input.LeaseID, Status: input.Status}
	switch {
	case actor.IsAdmin():
	case actor.IsLandlord():
		filter.LandlordID = actor.UserID
	case actor.IsTenant():
		ids, err := s.tenantScope(ctx, actor)
		if err != nil {
			return nil, err
		}
		filter.TenantIDs = ids
	default:
		return nil, ErrForbidden
	}

	items, next, err := s.store.ListPayments(ctx, filter, input.Cursor, clampLimit(input.Limit))
	if err != nil {
		return nil, translate(err, "list payments")
	}
	return &Page[*model.Payment]{Items: items, NextCursor: next}, nil
}

// UpdateStatus settles, fails or refunds a payment. Landlords and admins only.
func (s *PaymentService) UpdateStatus(ctx context.Context, actor *model.AuthContext, id string, status model.PaymentStatus, notes string) (*model.Payment, error) {
	if err := requireRole(actor, model.RoleLandlord); err != nil {
		return nil, err
	}
	if !status.IsValid() {
		return nil, fieldError("status", "is not a valid payment status")
	}

	p, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !p.Status.CanTransitionTo(status) {
		return nil, ErrInvalidTransition
	}

	now := s.nowUTC()
	p.Status = status
	p.UpdatedAt = now
	if status == model.PaymentStatusCompleted {
		p.PaidAt = ptr(now)
	}
	if notes = strings.TrimSpace(notes); notes != "" {
		p.Notes = notes
	}

	if err := s.store.UpdatePaymentStatus(ctx, p); err != nil {
		return nil, translate(err, "update payment")
	}
	s.announce(ctx, actor, activity.PaymentStatusChanged, p)
	return p, nil
}

func (s *PaymentService) announce(ctx context.Context, actor *model.AuthContext, event string, p *model.Payment) {
	recipients := []string{p.LandlordID}
	if u := s.tenantUserID(ctx, p.TenantID); u != "" {
		recipients = append(recipients, u)
	}
	s.publish(event, actor, "payment", p.ID, recipients, map[string]string{
		"amount": formatCents(p.AmountCents),
		"status": string(p.Status),
	})
	s.invalidate(ctx, recipients...)
}

// formatCents renders an amount as dollars, e.g. 150000 -> "$1500.00".
func formatCents(c int64) string {
	sign := ""
	if c < 0 {
		sign, c = "-", -c
	}
	return fmt.Sprintf("%s$%d.%02d", sign, c/100, c%100)
}
