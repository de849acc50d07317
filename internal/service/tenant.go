package service

import (
	"context"
	"errors"

	"github.com/rentdesk/rentdesk/internal/model"
	"github.com/rentdesk/rentdesk/internal/repository"
)

// TenantService manages the renter records landlords keep.
type TenantService struct {
	core
}

// TenantInput carries tenant fields. Nil fields are left unchanged on update.
type TenantInput struct {
	LandlordID            *string
	FirstName             *string
	LastName              *string
	Email                 *string
	Phone                 *string
	EmergencyContactName  *string
	EmergencyContactPhone *string
	Notes                 *string
}

// ListTenantsInput defines listing filters.
type ListTenantsInput struct {
	Standing model.TenantStanding
	Cursor   string
	Limit    int
}

// Create adds a tenant record. When a tenant account with the same email
// already exists, the record is linked to it straight away.
func (s *TenantService) Create(ctx context.Context, actor *model.AuthContext, input TenantInput) (*model.TenantSummary, error) {
	if err := requireRole(actor, model.RoleLandlord); err != nil {
		return nil, err
	}

	landlordID := actor.UserID
	if actor.IsAdmin() {
		if input.LandlordID == nil || *input.LandlordID == "" {
			return nil, fieldError("landlord_id", "is required when created by an admin")
		}
		landlordID = *input.LandlordID
	}

	now := s.nowUTC()
	t := &model.Tenant{
		ID:         newID(),
		LandlordID: landlordID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	applyTenantInput(t, input)
	if err := validateTenant(t); err != nil {
		return nil, err
	}

	if user, err := s.store.GetUserByEmail(ctx, t.Email); err == nil && user.Role == model.RoleTenant {
		t.UserID = ptr(user.ID)
	} else if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return nil, translate(err, "look up tenant account")
	}

	if err := s.store.CreateTenant(ctx, t); err != nil {
		return nil, translate(err, "create tenant")
	}
	s.invalidate(ctx, landlordID)
	return &model.TenantSummary{Tenant: t}, nil
}

// Get returns a tenant record with its current lease.
func (s *TenantService) Get(ctx context.Context, actor *model.AuthContext, id string) (*model.TenantSummary, error) {
	t, err := s.getVisible(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	summaries, err := s.summarize(ctx, []*model.Tenant{t})
	if err != nil {
		return nil, err
	}
	return summaries[0], nil
}

func (s *TenantService) getVisible(ctx context.Context, actor *model.AuthContext, id string) (*model.Tenant, error) {
	t, err := s.store.GetTenant(ctx, id)
	if err != nil {
		return nil, translate(err, "get tenant")
	}
	switch {
	case actor.IsAdmin(), t.LandlordID == actor.UserID:
		return t, nil
	case actor.IsTenant() && t.UserID != nil && *t.UserID == actor.UserID:
		return t, nil
	}
	return nil, ErrTenantNotFound
}

func (s *TenantService) getOwned(ctx context.Context, actor *model.AuthContext, id string) (*model.Tenant, error) {
	if err := requireRole(actor, model.RoleLandlord); err != nil {
		return nil, err
	}
	t, err := s.store.GetTenant(ctx, id)
	if err != nil {
		return nil, translate(err, "get tenant")
	}
	if !actor.IsAdmin() && t.LandlordID != actor.UserID {
		return nil, ErrTenantNotFound
	}
	return t, nil
}

// List returns tenant records in the caller's scope. The standing filter is
// applied per page, so a filtered page can hold fewer than limit items.
func (s *TenantService) List(ctx context.Context, actor *model.AuthContext, input ListTenantsInput) (*Page[*model.TenantSummary], error) {
	switch input.Standing {
	case "", model.TenantStandingCurrent, model.TenantStandingPast, model.TenantStandingProspective:
	default:
		return nil, fieldError("status", "must be current, past or prospective")
	}

	var filter repository.TenantFilter
	switch {
	case actor.IsAdmin():
	case actor.IsLandlord():
		filter.LandlordID = actor.UserID
	case actor.IsTenant():
		filter.UserID = actor.UserID
	default:
		return nil, ErrForbidden
	}

	tenants, next, err := s.store.ListTenants(ctx, filter, input.Cursor, clampLimit(input.Limit))
	if err != nil {
		return nil, translate(err, "list tenants")
	}

	summaries, err := s.summarize(ctx, tenants)
	if err != nil {
		return nil, err
	}
	if input.Standing != "" {
		filtered := summaries[:0]
		for _, sum := range summaries {
			if sum.Standing() == input.Standing {
				filtered = append(filtered, sum)
			}
		}
		summaries = filtered
	}

	return &Page[*model.TenantSummary]{Items: summaries, NextCursor: next}, nil
}

// summarize attaches the current lease and lease count to each tenant.
func (s *TenantService) summarize(ctx context.Context, tenants []*model.Tenant) ([]*model.TenantSummary, error) {
	ids := make([]string, len(tenants))
	for i, t := range tenants {
		ids[i] = t.ID
	}

	leases, err := s.store.ListLeasesForTenants(ctx, ids)
	if err != nil {
		return nil, translate(err, "list tenant leases")
	}
	byTenant := make(map[string][]*model.Lease, len(tenants))
	for _, l := range leases {
		byTenant[l.TenantID] = append(byTenant[l.TenantID], l)
	}

	out := make([]*model.TenantSummary, len(tenants))
	for i, t := range tenants {
		ls := byTenant[t.ID]
		out[i] = &model.TenantSummary{
			Tenant:       t,
			CurrentLease: model.PickCurrentLease(ls),
			LeaseCount:   len(ls),
		}
	}
	return out, nil
}

// Update changes the given fields of a tenant record.
func (s *TenantService) Update(ctx context.Context, actor *model.AuthContext, id string, input TenantInput) (*model.TenantSummary, error) {
	t, err := s.getOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	input.LandlordID = nil
	previousEmail := t.Email
	applyTenantInput(t, input)
	if err := validateTenant(t); err != nil {
		return nil, err
	}
	if t.Email != previousEmail {
		t.UserID = nil
		if user, err := s.store.GetUserByEmail(ctx, t.Email); err == nil && user.Role == model.RoleTenant {
			t.UserID = ptr(user.ID)
		}
	}

	t.UpdatedAt = s.nowUTC()
	if err := s.store.UpdateTenant(ctx, t); err != nil {
		return nil, translate(err, "update tenant")
	}
	s.invalidate(ctx, t.LandlordID)
	return s.Get(ctx, actor, t.ID)
}

// Delete soft-deletes a tenant record without open leases.
func (s *TenantService) Delete(ctx context.Context, actor *model.AuthContext, id string) error {
	t, err := s.getOwned(ctx, actor, id)
	if err != nil {
		return err
	}

	open, err := s.store.HasOpenLease(ctx, "", t.ID)
	if err != nil {
		return translate(err, "check leases")
	}
	if open {
		return ErrTenantHasLease
	}

	if err := s.store.DeleteTenant(ctx, t.ID); err != nil {
		return translate(err, "delete tenant")
	}
	s.invalidate(ctx, t.LandlordID)
	return nil
}

func applyTenantInput(t *model.Tenant, in TenantInput) {
	setString(&t.FirstName, in.FirstName)
	setString(&t.LastName, in.LastName)
	setString(&t.Phone, in.Phone)
	setString(&t.EmergencyContactName, in.EmergencyContactName)
	setString(&t.EmergencyContactPhone, in.EmergencyContactPhone)
	setString(&t.Notes, in.Notes)
	if in.Email != nil {
		t.Email = model.NormalizeEmail(*in.Email)
	}
}

func validateTenant(t *model.Tenant) error {
	var v validator
	v.check(t.FirstName != "", "first_name", "is required")
	v.check(t.LastName != "", "last_name", "is required")
	v.check(isEmail(t.Email), "email", "must be a valid email address")
	return v.err()
}
