package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/rentdesk/rentdesk/internal/activity"
	"github.com/rentdesk/rentdesk/internal/model"
	"github.com/rentdesk/rentdesk/internal/repository"
)

// LeaseService owns the lease lifecycle.
type LeaseService struct {
	core
}

// CreateLeaseInput defines input for creating a lease.
type CreateLeaseInput struct {
	PropertyID    string
	TenantID      string
	StartDate     model.Date
	EndDate       model.Date
	RentCents     int64
	DepositCents  int64
	PaymentDueDay int
	Notes         string
	Draft         bool
}

// UpdateLeaseInput carries editable lease terms. Nil fields are left unchanged.
type UpdateLeaseInput struct {
	StartDate     *model.Date
	EndDate       *model.Date
	RentCents     *int64
	DepositCents  *int64
	PaymentDueDay *int
	Notes         *string
}

// RenewLeaseInput defines a renewal request.
type RenewLeaseInput struct {
	TermMonths          *int
	EndDate             *model.Date
	RentCents           *int64
	RentIncreasePercent *float64
	DepositCents        *int64
	Notes               *string
}

// TerminateLeaseInput defines a termination request.
type TerminateLeaseInput struct {
	Reason        string
	EffectiveDate *model.Date
}

// ListLeasesInput defines listing filters.
type ListLeasesInput struct {
	Statuses           []model.LeaseStatus
	PropertyID         string
	TenantID           string
	ExpiringWithinDays *int
	Cursor             string
	Limit              int
}

// RenewalResult pairs the closed lease with its successor.
type RenewalResult struct {
	Previous *model.Lease
	Lease    *model.Lease
}

// SweepResult counts what a sweep changed.
type SweepResult struct {
	Expired   int
	Activated int
	Skipped   int
}

// Create adds a lease between one of the caller's properties and tenants.
func (s *LeaseService) Create(ctx context.Context, actor *model.AuthContext, input CreateLeaseInput) (*model.Lease, error) {
	if err := requireRole(actor, model.RoleLandlord); err != nil {
		return nil, err
	}
	if input.PaymentDueDay == 0 {
		input.PaymentDueDay = DefaultPaymentDueDay
	}

	var v validator
	v.check(input.PropertyID != "", "property_id", "is required")
	v.check(input.TenantID != "", "tenant_id", "is required")
	s.checkTerms(&v, input.StartDate, input.EndDate, input.RentCents, input.DepositCents, input.PaymentDueDay)
	if err := v.err(); err != nil {
		return nil, err
	}

	now := s.nowUTC()
	lease := &model.Lease{
		ID:            newID(),
		PropertyID:    input.PropertyID,
		TenantID:      input.TenantID,
		StartDate:     input.StartDate,
		EndDate:       input.EndDate,
		RentCents:     input.RentCents,
		DepositCents:  input.DepositCents,
		PaymentDueDay: input.PaymentDueDay,
		Notes:         strings.TrimSpace(input.Notes),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	var property *model.Property
	err := s.store.WithTx(ctx, func(tx Store) error {
		if err := tx.LockProperty(ctx, input.PropertyID); err != nil {
			return err
		}
		var err error
		property, err = tx.GetProperty(ctx, input.PropertyID)
		if err != nil {
			return err
		}
		if !actor.IsAdmin() && property.LandlordID != actor.UserID {
			return ErrPropertyNotFound
		}

		tenant, err := tx.GetTenant(ctx, input.TenantID)
		if err != nil {
			return err
		}
		if tenant.LandlordID != property.LandlordID {
			return fieldError("tenant_id", "must be a tenant of the property's landlord")
		}

		occupied, err := tx.HasActiveLease(ctx, property.ID, "")
		if err != nil {
			return err
		}

		lease.LandlordID = property.LandlordID
		lease.Status = model.InitialLeaseStatus(input.Draft, occupied, lease.StartDate, s.today())
		if err := tx.CreateLease(ctx, lease); err != nil {
			return err
		}
		if lease.Status == model.LeaseStatusActive {
			return tx.SetPropertyStatus(ctx, property.ID, model.PropertyStatusOccupied)
		}
		return nil
	})
	if err != nil {
		return nil, translate(err, "create lease")
	}

	s.metrics.IncLeaseEvent("created")
	s.announce(ctx, actor, activity.LeaseCreated, lease, property)
	if lease.Status == model.LeaseStatusActive {
		s.metrics.IncLeaseEvent("activated")
		s.announce(ctx, actor, activity.LeaseActivated, lease, property)
	}
	return lease, nil
}

// checkTerms validates dates and money shared by create and update.
func (s *LeaseService) checkTerms(v *validator, start, end model.Date, rent, deposit int64, dueDay int) {
	v.check(!start.IsZero(), "start_date", "is required")
	v.check(!end.IsZero(), "end_date", "is required")
	if !start.IsZero() && !end.IsZero() {
		v.check(end.After(start), "end_date", "must be after start_date")
	}
	if !end.IsZero() {
		v.check(!end.Before(s.today()), "end_date", "must not be in the past")
	}
	v.check(rent > 0, "rent_cents", "must be greater than zero")
	v.check(deposit >= 0, "deposit_cents", "must not be negative")
	v.check(dueDay >= 1 && dueDay <= maxPaymentDueDay, "payment_due_day", "must be between 1 and 28")
}

// Get returns a lease visible to the caller.
func (s *LeaseService) Get(ctx context.Context, actor *model.AuthContext, id string) (*model.Lease, error) {
	lease, err := s.store.GetLease(ctx, id)
	if err != nil {
		return nil, translate(err, "get lease")
	}
	if err := s.checkVisible(ctx, actor, lease); err != nil {
		return nil, err
	}
	return lease, nil
}

func (s *LeaseService) checkVisible(ctx context.Context, actor *model.AuthContext, lease *model.Lease) error {
	switch {
	case actor.IsAdmin(), lease.LandlordID == actor.UserID:
		return nil
	case actor.IsTenant():
		ids, err := s.tenantScope(ctx, actor)
		if err != nil {
			return err
		}
		if slices.Contains(ids, lease.TenantID) {
			return nil
		}
	}
	return ErrLeaseNotFound
}

// getManaged loads a lease the caller may change.
func (s *LeaseService) getManaged(ctx context.Context, store Store, actor *model.AuthContext, id string) (*model.Lease, error) {
	if err := requireRole(actor, model.RoleLandlord); err != nil {
		return nil, err
	}
	lease, err := store.GetLease(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && lease.LandlordID != actor.UserID {
		return nil, ErrLeaseNotFound
	}
	return lease, nil
}

// List returns leases in the caller's scope.
func (s *LeaseService) List(ctx context.Context, actor *model.AuthContext, input ListLeasesInput) (*Page[*model.Lease], error) {
	for _, st := range input.Statuses {
		if !st.IsValid() {
			return nil, fieldError("status", fmt.Sprintf("%q is not a valid lease status", st))
		}
	}

	filter := repository.LeaseFilter{
		PropertyID: input.PropertyID,
		TenantID:   input.TenantID,
		Statuses:   input.Statuses,
	}
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

	if input.ExpiringWithinDays != nil {
		days := *input.ExpiringWithinDays
		if days < 0 || days > 3650 {
			return nil, fieldError("expiring_within_days", "must be between 0 and 3650")
		}
		from, by := s.today(), s.today().AddDays(days)
		filter.Statuses = []model.LeaseStatus{model.LeaseStatusActive}
		filter.EndsFrom, filter.EndsBy = &from, &by
	}

	items, next, err := s.store.ListLeases(ctx, filter, input.Cursor, clampLimit(input.Limit))
	if err != nil {
		return nil, translate(err, "list leases")
	}
	return &Page[*model.Lease]{Items: items, NextCursor: next}, nil
}

// Update edits the terms of a draft or pending lease.
func (s *LeaseService) Update(ctx context.Context, actor *model.AuthContext, id string, input UpdateLeaseInput) (*model.Lease, error) {
	lease, err := s.getManaged(ctx, s.store, actor, id)
	if err != nil {
		return nil, translate(err, "get lease")
	}
	if !lease.IsEditable() {
		return nil, ErrLeaseNotEditable
	}

	if input.StartDate != nil {
		lease.StartDate = *input.StartDate
	}
	if input.EndDate != nil {
		lease.EndDate = *input.EndDate
	}
	if input.RentCents != nil {
		lease.RentCents = *input.RentCents
	}
	if input.DepositCents != nil {
		lease.DepositCents = *input.DepositCents
	}
	if input.PaymentDueDay != nil {
		lease.PaymentDueDay = *input.PaymentDueDay
	}
	if input.Notes != nil {
		lease.Notes = strings.TrimSpace(*input.Notes)
	}

	var v validator
	s.checkTerms(&v, lease.StartDate, lease.EndDate, lease.RentCents, lease.DepositCents, lease.PaymentDueDay)
	if err := v.err(); err != nil {
		return nil, err
	}

	lease.UpdatedAt = s.nowUTC()
	if err := s.store.UpdateLease(ctx, lease); err != nil {
		return nil, translate(err, "update lease")
	}
	s.invalidate(ctx, lease.LandlordID, s.tenantUserID(ctx, lease.TenantID))
	return lease, nil
}

// Activate moves a draft or pending lease to active.
func (s *LeaseService) Activate(ctx context.Context, actor *model.AuthContext, id string) (*model.Lease, error) {
	var lease *model.Lease
	var property *model.Property
	err := s.store.WithTx(ctx, func(tx Store) error {
		var err error
		if lease, err = s.getManaged(ctx, tx, actor, id); err != nil {
			return err
		}
		if !lease.Status.CanTransitionTo(model.LeaseStatusActive) {
			return ErrInvalidTransition
		}
		if err := tx.LockProperty(ctx, lease.PropertyID); err != nil {
			return err
		}
		property, err = s.activate(ctx, tx, lease)
		return err
	})
	if err != nil {
		return nil, translate(err, "activate lease")
	}

	s.metrics.IncLeaseEvent("activated")
	s.announce(ctx, actor, activity.LeaseActivated, lease, property)
	return lease, nil
}

// activate flips lease to active and marks its property occupied.
// The property row must already be locked.
func (s *LeaseService) activate(ctx context.Context, tx Store, lease *model.Lease) (*model.Property, error) {
	occupied, err := tx.HasActiveLease(ctx, lease.PropertyID, lease.ID)
	if err != nil {
		return nil, err
	}
	if occupied {
		return nil, ErrPropertyOccupied
	}

	lease.Status = model.LeaseStatusActive
	lease.UpdatedAt = s.nowUTC()
	if err := tx.UpdateLease(ctx, lease); err != nil {
		return nil, err
	}
	if err := tx.SetPropertyStatus(ctx, lease.PropertyID, model.PropertyStatusOccupied); err != nil {
		return nil, err
	}
	return tx.GetProperty(ctx, lease.PropertyID)
}

// Renew closes an active lease and opens its successor in one transaction.
func (s *LeaseService) Renew(ctx context.Context, actor *model.AuthContext, id string, input RenewLeaseInput) (*RenewalResult, error) {
	var old, next *model.Lease
	var property *model.Property
	err := s.store.WithTx(ctx, func(tx Store) error {
		var err error
		if old, err = s.getManaged(ctx, tx, actor, id); err != nil {
			return err
		}
		if err := tx.LockProperty(ctx, old.PropertyID); err != nil {
			return err
		}
		if !old.Status.CanTransitionTo(model.LeaseStatusRenewed) {
			return ErrInvalidTransition
		}

		terms, err := computeRenewal(old, input)
		if err != nil {
			return err
		}

		now := s.nowUTC()
		next = &model.Lease{
			ID:            newID(),
			LandlordID:    old.LandlordID,
			PropertyID:    old.PropertyID,
			TenantID:      old.TenantID,
			Status:        model.InitialLeaseStatus(false, false, terms.Start, s.today()),
			StartDate:     terms.Start,
			EndDate:       terms.End,
			RentCents:     terms.RentCents,
			DepositCents:  terms.DepositCents,
			PaymentDueDay: old.PaymentDueDay,
			RenewedFromID: ptr(old.ID),
			Notes:         old.Notes,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if input.Notes != nil {
			next.Notes = strings.TrimSpace(*input.Notes)
		}

		old.Status = model.LeaseStatusRenewed
		old.RenewedToID = ptr(next.ID)
		old.UpdatedAt = now

		if err := tx.CreateLease(ctx, next); err != nil {
			return err
		}
		if err := tx.UpdateLease(ctx, old); err != nil {
			return err
		}
		property, err = tx.GetProperty(ctx, old.PropertyID)
		return err
	})
	if err != nil {
		return nil, translate(err, "renew lease")
	}

	s.metrics.IncLeaseEvent("renewed")
	s.announce(ctx, actor, activity.LeaseRenewed, next, property)
	return &RenewalResult{Previous: old, Lease: next}, nil
}

// Terminate ends a lease early. The end date is pulled in to the effective
// date, and the property is vacated when no other active lease remains.
// Without an explicit date a lease that has not started ends on its start date.
func (s *LeaseService) Terminate(ctx context.Context, actor *model.AuthContext, id string, input TerminateLeaseInput) (*model.Lease, error) {
	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		return nil, fieldError("reason", "is required")
	}
	var lease *model.Lease
	var property *model.Property
	err := s.store.WithTx(ctx, func(tx Store) error {
		var err error
		if lease, err = s.getManaged(ctx, tx, actor, id); err != nil {
			return err
		}
		if !lease.Status.CanTransitionTo(model.LeaseStatusTerminated) {
			return ErrInvalidTransition
		}
		effective := terminationDate(s.today(), lease.StartDate, input.EffectiveDate)
		if effective.Before(lease.StartDate) {
			return fieldError("effective_date", "must not be before the lease start date")
		}
		if err := tx.LockProperty(ctx, lease.PropertyID); err != nil {
			return err
		}

		now := s.nowUTC()
		if effective.Before(lease.EndDate) {
			lease.EndDate = effective
		}
		lease.Status = model.LeaseStatusTerminated
		lease.TerminatedAt = ptr(now)
		lease.TerminationReason = reason
		lease.UpdatedAt = now
		if err := tx.UpdateLease(ctx, lease); err != nil {
			return err
		}
		property, err = s.releaseProperty(ctx, tx, lease)
		return err
	})
	if err != nil {
		return nil, translate(err, "terminate lease")
	}

	s.metrics.IncLeaseEvent("terminated")
	s.announce(ctx, actor, activity.LeaseTerminated, lease, property)
	return lease, nil
}

// releaseProperty marks an occupied property vacant once no active lease
// remains. Other property statuses are left alone.
func (s *LeaseService) releaseProperty(ctx context.Context, tx Store, lease *model.Lease) (*model.Property, error) {
	property, err := tx.GetProperty(ctx, lease.PropertyID)
	if err != nil {
		return nil, err
	}
	if property.Status != model.PropertyStatusOccupied {
		return property, nil
	}
	occupied, err := tx.HasActiveLease(ctx, lease.PropertyID, lease.ID)
	if err != nil || occupied {
		return property, err
	}
	if err := tx.SetPropertyStatus(ctx, property.ID, model.PropertyStatusVacant); err != nil {
		return nil, err
	}
	property.Status = model.PropertyStatusVacant
	return property, nil
}

// Delete removes a draft lease.
func (s *LeaseService) Delete(ctx context.Context, actor *model.AuthContext, id string) error {
	lease, err := s.getManaged(ctx, s.store, actor, id)
	if err != nil {
		return translate(err, "get lease")
	}
	if lease.Status != model.LeaseStatusDraft {
		return ErrLeaseNotDraft
	}
	if err := s.store.DeleteLease(ctx, lease.ID); err != nil {
		return translate(err, "delete lease")
	}
	s.invalidate(ctx, lease.LandlordID)
	return nil
}

// Balance returns the rent ledger of a lease as of today.
func (s *LeaseService) Balance(ctx context.Context, actor *model.AuthContext, id string) (*model.LeaseBalance, error) {
	lease, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return s.balance(ctx, lease)
}

func (s *LeaseService) balance(ctx context.Context, lease *model.Lease) (*model.LeaseBalance, error) {
	paid, err := s.store.SumCompletedPayments(ctx, lease.ID)
	if err != nil {
		return nil, translate(err, "sum payments")
	}
	return computeBalance(lease, paid, s.today()), nil
}

// Sweep expires active leases past their end date and activates pending
// leases whose start date has arrived. Each lease is handled in its own
// transaction so one failure does not block the rest.
func (s *LeaseService) Sweep(ctx context.Context) (*SweepResult, error) {
	today := s.today()
	candidates, err := s.store.ListLeasesToSweep(ctx, today)
	if err != nil {
		return nil, translate(err, "list leases to sweep")
	}

	result := &SweepResult{}
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		var lease *model.Lease
		var property *model.Property
		var event string
		err := s.store.WithTx(ctx, func(tx Store) error {
			if err := tx.LockProperty(ctx, c.PropertyID); err != nil {
				return err
			}
			var err error
			if lease, err = tx.GetLease(ctx, c.ID); err != nil {
				return err
			}

			switch {
			case lease.IsExpiredOn(today):
				lease.Status = model.LeaseStatusExpired
				lease.UpdatedAt = s.nowUTC()
				if err := tx.UpdateLease(ctx, lease); err != nil {
					return err
				}
				event = activity.LeaseExpired
				property, err = s.releaseProperty(ctx, tx, lease)
				return err
			case lease.IsDueToStartOn(today):
				property, err = s.activate(ctx, tx, lease)
				if errors.Is(err, ErrPropertyOccupied) {
					return nil
				}
				event = activity.LeaseActivated
				return err
			}
			return nil
		})
		if err != nil {
			s.logger.Error("lease sweep failed", "lease_id", c.ID, "error", err)
			result.Skipped++
			continue
		}

		switch event {
		case activity.LeaseExpired:
			result.Expired++
			s.metrics.IncLeaseEvent("expired")
		case activity.LeaseActivated:
			result.Activated++
			s.metrics.IncLeaseEvent("activated")
		default:
			result.Skipped++
			continue
		}
		s.announce(ctx, nil, event, lease, property)
	}

	s.logger.Info("lease sweep finished",
		"expired", result.Expired,
		"activated", result.Activated,
		"skipped", result.Skipped,
	)
	return result, nil
}

// announce publishes a lease event to the landlord and the tenant account
// and drops their cached dashboards.
func (s *LeaseService) announce(ctx context.Context, actor *model.AuthContext, event string, lease *model.Lease, property *model.Property) {
	tenantUser := s.tenantUserID(ctx, lease.TenantID)
	recipients := []string{lease.LandlordID}
	if tenantUser != "" {
		recipients = append(recipients, tenantUser)
	}

	attrs := map[string]string{
		"start_date": lease.StartDate.String(),
		"end_date":   lease.EndDate.String(),
		"rent_cents": strconv.FormatInt(lease.RentCents, 10),
		"property":   "the property",
	}
	if property != nil {
		attrs["property"] = property.Name
	}

	s.publish(event, actor, "lease", lease.ID, recipients, attrs)
	s.invalidate(ctx, recipients...)
}
