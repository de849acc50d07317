package service

import (
	"context"
	"strings"

	"github.com/rentdesk/rentdesk/internal/model"
	"github.com/rentdesk/rentdesk/internal/repository"
)

// PropertyService manages a landlord's portfolio.
type PropertyService struct {
	core
}

// PropertyInput carries property fields. Nil fields are left unchanged on update.
type PropertyInput struct {
	LandlordID   *string
	Name         *string
	AddressLine1 *string
	AddressLine2 *string
	City         *string
	State        *string
	PostalCode   *string
	PropertyType *model.PropertyType
	Bedrooms     *int
	Bathrooms    *float64
	SquareFeet   *int
	RentCents    *int64
	Status       *model.PropertyStatus
	Description  *string
	Amenities    []string
}

// ListPropertiesInput defines listing filters.
type ListPropertiesInput struct {
	Status model.PropertyStatus
	City   string
	Query  string
	Cursor string
	Limit  int
}

// Create adds a property owned by the caller. Admins may name another landlord.
func (s *PropertyService) Create(ctx context.Context, actor *model.AuthContext, input PropertyInput) (*model.Property, error) {
	if err := requireRole(actor, model.RoleLandlord); err != nil {
		return nil, err
	}

	landlordID := actor.UserID
	if actor.IsAdmin() {
		if input.LandlordID == nil || *input.LandlordID == "" {
			return nil, fieldError("landlord_id", "is required when created by an admin")
		}
		landlordID = *input.LandlordID
		owner, err := s.store.GetUserByID(ctx, landlordID)
		if err != nil || owner.Role != model.RoleLandlord {
			return nil, fieldError("landlord_id", "must reference a landlord")
		}
	}

	now := s.nowUTC()
	p := &model.Property{
		ID:           newID(),
		LandlordID:   landlordID,
		PropertyType: model.PropertyTypeApartment,
		Status:       model.PropertyStatusVacant,
		Amenities:    []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	applyPropertyInput(p, input)
	if err := validateProperty(p); err != nil {
		return nil, err
	}

	if err := s.store.CreateProperty(ctx, p); err != nil {
		return nil, translate(err, "create property")
	}
	s.invalidate(ctx, landlordID)
	return p, nil
}

// Get returns a property visible to the caller. Tenants see properties they lease.
func (s *PropertyService) Get(ctx context.Context, actor *model.AuthContext, id string) (*model.Property, error) {
	p, err := s.store.GetProperty(ctx, id)
	if err != nil {
		return nil, translate(err, "get property")
	}

	switch {
	case actor.IsAdmin(), p.LandlordID == actor.UserID:
		return p, nil
	case actor.IsTenant():
		tenantIDs, err := s.tenantScope(ctx, actor)
		if err != nil {
			return nil, err
		}
		leases, _, err := s.store.ListLeases(ctx, repository.LeaseFilter{TenantIDs: tenantIDs, PropertyID: id}, "", 1)
		if err != nil {
			return nil, translate(err, "list leases")
		}
		if len(leases) > 0 {
			return p, nil
		}
	}
	return nil, ErrPropertyNotFound
}

// getOwned loads a property the caller may change.
func (s *PropertyService) getOwned(ctx context.Context, actor *model.AuthContext, id string) (*model.Property, error) {
	p, err := s.store.GetProperty(ctx, id)
	if err != nil {
		return nil, translate(err, "get property")
	}
	if !actor.IsAdmin() && p.LandlordID != actor.UserID {
		return nil, ErrPropertyNotFound
	}
	return p, nil
}

// List returns the caller's properties, or all of them for admins.
func (s *PropertyService) List(ctx context.Context, actor *model.AuthContext, input ListPropertiesInput) (*Page[*model.Property], error) {
	if err := requireRole(actor, model.RoleLandlord); err != nil {
		return nil, err
	}
	if input.Status != "" && !input.Status.IsValid() {
		return nil, fieldError("status", "is not a valid property status")
	}

	filter := repository.PropertyFilter{
		Status: input.Status,
		City:   strings.TrimSpace(input.City),
		Query:  strings.TrimSpace(input.Query),
	}
	if !actor.IsAdmin() {
		filter.LandlordID = actor.UserID
	}

	items, next, err := s.store.ListProperties(ctx, filter, input.Cursor, clampLimit(input.Limit))
	if err != nil {
		return nil, translate(err, "list properties")
	}
	return &Page[*model.Property]{Items: items, NextCursor: next}, nil
}

// Update changes the given fields of a property.
func (s *PropertyService) Update(ctx context.Context, actor *model.AuthContext, id string, input PropertyInput) (*model.Property, error) {
	if err := requireRole(actor, model.RoleLandlord); err != nil {
		return nil, err
	}
	p, err := s.getOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	input.LandlordID = nil
	applyPropertyInput(p, input)
	if err := validateProperty(p); err != nil {
		return nil, err
	}

	p.UpdatedAt = s.nowUTC()
	if err := s.store.UpdateProperty(ctx, p); err != nil {
		return nil, translate(err, "update property")
	}
	s.invalidate(ctx, p.LandlordID)
	return p, nil
}

// Delete soft-deletes a property without open leases.
func (s *PropertyService) Delete(ctx context.Context, actor *model.AuthContext, id string) error {
	if err := requireRole(actor, model.RoleLandlord); err != nil {
		return err
	}
	p, err := s.getOwned(ctx, actor, id)
	if err != nil {
		return err
	}

	open, err := s.store.HasOpenLease(ctx, p.ID, "")
	if err != nil {
		return translate(err, "check leases")
	}
	if open {
		return ErrPropertyHasLease
	}

	if err := s.store.DeleteProperty(ctx, p.ID); err != nil {
		return translate(err, "delete property")
	}
	s.invalidate(ctx, p.LandlordID)
	return nil
}

// Leases lists the leases of a property visible to the caller.
func (s *PropertyService) Leases(ctx context.Context, actor *model.AuthContext, id, cursor string, limit int) (*Page[*model.Lease], error) {
	p, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	filter := repository.LeaseFilter{PropertyID: p.ID}
	if actor.IsTenant() {
		if filter.TenantIDs, err = s.tenantScope(ctx, actor); err != nil {
			return nil, err
		}
	}

	items, next, err := s.store.ListLeases(ctx, filter, cursor, clampLimit(limit))
	if err != nil {
		return nil, translate(err, "list leases")
	}
	return &Page[*model.Lease]{Items: items, NextCursor: next}, nil
}

func applyPropertyInput(p *model.Property, in PropertyInput) {
	setString(&p.Name, in.Name)
	setString(&p.AddressLine1, in.AddressLine1)
	setString(&p.AddressLine2, in.AddressLine2)
	setString(&p.City, in.City)
	setString(&p.State, in.State)
	setString(&p.PostalCode, in.PostalCode)
	setString(&p.Description, in.Description)
	if in.PropertyType != nil {
		p.PropertyType = *in.PropertyType
	}
	if in.Bedrooms != nil {
		p.Bedrooms = *in.Bedrooms
	}
	if in.Bathrooms != nil {
		p.Bathrooms = *in.Bathrooms
	}
	if in.SquareFeet != nil {
		p.SquareFeet = *in.SquareFeet
	}
	if in.RentCents != nil {
		p.RentCents = *in.RentCents
	}
	if in.Status != nil {
		p.Status = *in.Status
	}
	if in.Amenities != nil {
		p.Amenities = normalizeAmenities(in.Amenities)
	}
}

func validateProperty(p *model.Property) error {
	var v validator
	v.check(p.Name != "", "name", "is required")
	v.check(p.AddressLine1 != "", "address_line1", "is required")
	v.check(p.City != "", "city", "is required")
	v.check(p.State != "", "state", "is required")
	v.check(p.PostalCode != "", "postal_code", "is required")
	v.check(p.PropertyType.IsValid(), "property_type", "is not a valid property type")
	v.check(p.Status.IsValid(), "status", "is not a valid property status")
	v.check(p.RentCents >= 0, "rent_cents", "must not be negative")
	v.check(p.Bedrooms >= 0, "bedrooms", "must not be negative")
	v.check(p.Bathrooms >= 0, "bathrooms", "must not be negative")
	v.check(p.SquareFeet >= 0, "square_feet", "must not be negative")
	return v.err()
}

func normalizeAmenities(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, a := range in {
		a = strings.TrimSpace(a)
		key := strings.ToLower(a)
		if a == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, a)
	}
	return out
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}
