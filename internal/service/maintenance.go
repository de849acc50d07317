package service

import (
	"context"
	"strings"
	"time"

	"github.com/rentdesk/rentdesk/internal/activity"
	"github.com/rentdesk/rentdesk/internal/model"
	"github.com/rentdesk/rentdesk/internal/repository"
)

// MaintenanceService handles repair requests.
type MaintenanceService struct {
	core
}

// CreateMaintenanceInput defines a new request.
type CreateMaintenanceInput struct {
	PropertyID  string
	Title       string
	Description string
	Category    model.MaintenanceCategory
	Priority    model.MaintenancePriority
}

// UpdateMaintenanceInput carries editable fields. Title and description may
// be changed by the requester; the rest is for the landlord.
type UpdateMaintenanceInput struct {
	Title           *string
	Description     *string
	Category        *model.MaintenanceCategory
	Priority        *model.MaintenancePriority
	AssignedTo      *string
	ScheduledFor    *time.Time
	CostCents       *int64
	ResolutionNotes *string
}

func (in UpdateMaintenanceInput) touchesManagerFields() bool {
	return in.Category != nil || in.Priority != nil || in.AssignedTo != nil ||
		in.ScheduledFor != nil || in.CostCents != nil || in.ResolutionNotes != nil
}

// ListMaintenanceInput defines listing filters.
type ListMaintenanceInput struct {
	Status     model.MaintenanceStatus
	Priority   model.MaintenancePriority
	PropertyID string
	Cursor     string
	Limit      int
}

// Create files a request. Tenants may only file against a property they
// currently lease; landlords against their own properties.
func (s *MaintenanceService) Create(ctx context.Context, actor *model.AuthContext, input CreateMaintenanceInput) (*model.MaintenanceRequest, error) {
	if input.Category == "" {
		input.Category = model.CategoryGeneral
	}
	if input.Priority == "" {
		input.Priority = model.PriorityMedium
	}

	var v validator
	v.check(input.PropertyID != "", "property_id", "is required")
	v.check(strings.TrimSpace(input.Title) != "", "title", "is required")
	v.check(strings.TrimSpace(input.Description) != "", "description", "is required")
	v.check(input.Category.IsValid(), "category", "is not a valid category")
	v.check(input.Priority.IsValid(), "priority", "is not a valid priority")
	if err := v.err(); err != nil {
		return nil, err
	}

	property, err := s.store.GetProperty(ctx, input.PropertyID)
	if err != nil {
		return nil, translate(err, "get property")
	}

	var tenantID *string
	switch {
	case actor.IsAdmin():
	case actor.IsLandlord():
		if property.LandlordID != actor.UserID {
			return nil, ErrPropertyNotFound
		}
	case actor.IsTenant():
		ids, err := s.tenantScope(ctx, actor)
		if err != nil {
			return nil, err
		}
		leases, _, err := s.store.ListLeases(ctx, repository.LeaseFilter{
			TenantIDs:  ids,
			PropertyID: property.ID,
			Statuses:   []model.LeaseStatus{model.LeaseStatusActive},
		}, "", 1)
		if err != nil {
			return nil, translate(err, "list leases")
		}
		if len(leases) == 0 {
			return nil, ErrForbidden
		}
		tenantID = ptr(leases[0].TenantID)
	default:
		return nil, ErrForbidden
	}

	now := s.nowUTC()
	req := &model.MaintenanceRequest{
		ID:          newID(),
		LandlordID:  property.LandlordID,
		PropertyID:  property.ID,
		TenantID:    tenantID,
		RequestedBy: actor.UserID,
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Category:    input.Category,
		Priority:    input.Priority,
		Status:      model.MaintenanceStatusOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateMaintenanceRequest(ctx, req); err != nil {
		return nil, translate(err, "create maintenance request")
	}

	s.metrics.IncMaintenanceOpened()
	s.announce(ctx, actor, activity.MaintenanceCreated, req)
	return req, nil
}

// Get returns a request visible to the caller.
func (s *MaintenanceService) Get(ctx context.Context, actor *model.AuthContext, id string) (*model.MaintenanceRequest, error) {
	req, err := s.store.GetMaintenanceRequest(ctx, id)
	if err != nil {
		return nil, translate(err, "get maintenance request")
	}
	if !actor.IsAdmin() && req.LandlordID != actor.UserID && req.RequestedBy != actor.UserID {
		return nil, ErrMaintenanceNotFound
	}
	return req, nil
}

// List returns requests in the caller's scope, most urgent first.
func (s *MaintenanceService) List(ctx context.Context, actor *model.AuthContext, input ListMaintenanceInput) (*Page[*model.MaintenanceRequest], error) {
	var v validator
	v.check(input.Status == "" || input.Status.IsValid(), "status", "is not a valid status")
	v.check(input.Priority == "" || input.Priority.IsValid(), "priority", "is not a valid priority")
	if err := v.err(); err != nil {
		return nil, err
	}

	filter := repository.MaintenanceFilter{
		Status:     input.Status,
		Priority:   input.Priority,
		PropertyID: input.PropertyID,
	}
	switch {
	case actor.IsAdmin():
	case actor.IsLandlord():
		filter.LandlordID = actor.UserID
	case actor.IsTenant():
		filter.RequestedBy = actor.UserID
	default:
		return nil, ErrForbidden
	}

	items, next, err := s.store.ListMaintenanceRequests(ctx, filter, input.Cursor, clampLimit(input.Limit))
	if err != nil {
		return nil, translate(err, "list maintenance requests")
	}
	return &Page[*model.MaintenanceRequest]{Items: items, NextCursor: next}, nil
}

// Update edits a request. The landlord (or an admin) may change every field;
// the requester may only reword an open request.
func (s *MaintenanceService) Update(ctx context.Context, actor *model.AuthContext, id string, input UpdateMaintenanceInput) (*model.MaintenanceRequest, error) {
	req, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	manager := actor.IsAdmin() || req.LandlordID == actor.UserID
	if !manager {
		if input.touchesManagerFields() {
			return nil, ErrForbidden
		}
		if req.Status != model.MaintenanceStatusOpen {
			return nil, ErrInvalidTransition
		}
	}

	var v validator
	if input.Title != nil {
		v.check(strings.TrimSpace(*input.Title) != "", "title", "must not be empty")
	}
	if input.Description != nil {
		v.check(strings.TrimSpace(*input.Description) != "", "description", "must not be empty")
	}
	if input.Category != nil {
		v.check(input.Category.IsValid(), "category", "is not a valid category")
	}
	if input.Priority != nil {
		v.check(input.Priority.IsValid(), "priority", "is not a valid priority")
	}
	if input.CostCents != nil {
		v.check(*input.CostCents >= 0, "cost_cents", "must not be negative")
	}
	if err := v.err(); err != nil {
		return nil, err
	}

	setString(&req.Title, input.Title)
	setString(&req.Description, input.Description)
	setString(&req.AssignedTo, input.AssignedTo)
	setString(&req.ResolutionNotes, input.ResolutionNotes)
	if input.Category != nil {
		req.Category = *input.Category
	}
	if input.Priority != nil {
		req.Priority = *input.Priority
	}
	if input.ScheduledFor != nil {
		req.ScheduledFor = ptr(input.ScheduledFor.UTC())
	}
	if input.CostCents != nil {
		req.CostCents = ptr(*input.CostCents)
	}

	req.UpdatedAt = s.nowUTC()
	if err := s.store.UpdateMaintenanceRequest(ctx, req); err != nil {
		return nil, translate(err, "update maintenance request")
	}
	s.invalidate(ctx, req.LandlordID, req.RequestedBy)
	return req, nil
}

// UpdateStatus moves a request through its workflow. Tenants may only
// cancel their own open requests.
func (s *MaintenanceService) UpdateStatus(ctx context.Context, actor *model.AuthContext, id string, status model.MaintenanceStatus, notes string) (*model.MaintenanceRequest, error) {
	if !status.IsValid() {
		return nil, fieldError("status", "is not a valid status")
	}
	req, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	manager := actor.IsAdmin() || req.LandlordID == actor.UserID
	if !manager && (status != model.MaintenanceStatusCancelled || req.Status != model.MaintenanceStatusOpen) {
		return nil, ErrForbidden
	}
	if !req.Status.CanTransitionTo(status) {
		return nil, ErrInvalidTransition
	}

	now := s.nowUTC()
	req.Status = status
	req.UpdatedAt = now
	if status == model.MaintenanceStatusCompleted {
		req.CompletedAt = ptr(now)
	}
	if notes = strings.TrimSpace(notes); notes != "" {
		req.ResolutionNotes = notes
	}

	if err := s.store.UpdateMaintenanceRequest(ctx, req); err != nil {
		return nil, translate(err, "update maintenance request")
	}
	s.announce(ctx, actor, activity.MaintenanceStatusChanged, req)
	return req, nil
}

func (s *MaintenanceService) announce(ctx context.Context, actor *model.AuthContext, event string, req *model.MaintenanceRequest) {
	recipients := []string{req.LandlordID, req.RequestedBy}
	s.publish(event, actor, "maintenance_request", req.ID, recipients, map[string]string{
		"title":    req.Title,
		"priority": string(req.Priority),
		"status":   strings.ReplaceAll(string(req.Status), "_", " "),
	})
	s.invalidate(ctx, recipients...)
}
