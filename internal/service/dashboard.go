package service

import (
	"context"
	"errors"
	"time"

	"github.com/rentdesk/rentdesk/internal/cache"
	"github.com/rentdesk/rentdesk/internal/model"
	"github.com/rentdesk/rentdesk/internal/repository"
)

const (
	defaultExpiringWindowDays = 60
	defaultDashboardTTL       = time.Minute
)

// DashboardService builds the role-specific summary served at /dashboard.
type DashboardService struct {
	core
	leases         *LeaseService
	expiringWindow int
	ttl            time.Duration
}

func newDashboardService(c core, leases *LeaseService, windowDays int, ttl time.Duration) *DashboardService {
	if windowDays <= 0 {
		windowDays = defaultExpiringWindowDays
	}
	if ttl <= 0 {
		ttl = defaultDashboardTTL
	}
	return &DashboardService{core: c, leases: leases, expiringWindow: windowDays, ttl: ttl}
}

// Get returns the caller's dashboard, served from cache when fresh.
func (s *DashboardService) Get(ctx context.Context, actor *model.AuthContext) (*model.Dashboard, error) {
	if s.cache != nil {
		var cached model.Dashboard
		err := s.cache.GetDashboard(ctx, actor.UserID, &cached)
		switch {
		case err == nil && cached.Role == actor.Role:
			s.metrics.IncDashboardCache(true)
			return &cached, nil
		case err != nil && !errors.Is(err, cache.ErrCacheMiss):
			s.logger.Warn("dashboard cache read failed", "user_id", actor.UserID, "error", err)
		}
		s.metrics.IncDashboardCache(false)
	}

	d, err := s.build(ctx, actor)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetDashboard(ctx, actor.UserID, d, s.ttl); err != nil {
			s.logger.Warn("dashboard cache write failed", "user_id", actor.UserID, "error", err)
		}
	}
	return d, nil
}

func (s *DashboardService) build(ctx context.Context, actor *model.AuthContext) (*model.Dashboard, error) {
	d := &model.Dashboard{Role: actor.Role}
	var err error
	switch {
	case actor.IsAdmin():
		d.Admin, err = s.admin(ctx)
	case actor.IsLandlord():
		d.Landlord, err = s.landlord(ctx, actor)
	case actor.IsTenant():
		d.Tenant, err = s.tenant(ctx, actor)
	default:
		return nil, ErrForbidden
	}
	if err != nil {
		return nil, translate(err, "build dashboard")
	}
	return d, nil
}

func (s *DashboardService) landlord(ctx context.Context, actor *model.AuthContext) (*model.LandlordDashboard, error) {
	id := actor.UserID
	d := &model.LandlordDashboard{}

	var err error
	if d.PropertiesByStatus, err = s.store.CountPropertiesByStatus(ctx, id); err != nil {
		return nil, err
	}
	for _, n := range d.PropertiesByStatus {
		d.PropertyCount += n
	}
	if d.TenantCount, err = s.store.CountTenants(ctx, id); err != nil {
		return nil, err
	}

	leases, err := s.store.CountLeasesByStatus(ctx, id)
	if err != nil {
		return nil, err
	}
	d.ActiveLeases = leases[model.LeaseStatusActive]
	d.PendingLeases = leases[model.LeaseStatusPending]

	today := s.today()
	if d.ExpiringLeases, err = s.store.ListExpiringLeases(ctx, id, today, today.AddDays(s.expiringWindow)); err != nil {
		return nil, err
	}
	if d.ExpiringLeases == nil {
		d.ExpiringLeases = []*model.Lease{}
	}

	if d.OpenMaintenance, err = s.store.CountOpenMaintenanceByPriority(ctx, repository.MaintenanceFilter{LandlordID: id}); err != nil {
		return nil, err
	}
	if d.RentCollectedThisMonth, err = s.store.SumPaymentsPaidSince(ctx, id, s.monthStart()); err != nil {
		return nil, err
	}
	if d.PendingPayments, err = s.store.CountPayments(ctx, repository.PaymentFilter{LandlordID: id, Status: model.PaymentStatusPending}); err != nil {
		return nil, err
	}
	if d.UnreadMessages, err = s.store.CountUnreadMessages(ctx, id); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *DashboardService) tenant(ctx context.Context, actor *model.AuthContext) (*model.TenantDashboard, error) {
	d := &model.TenantDashboard{}

	ids, err := s.tenantScope(ctx, actor)
	if err != nil {
		return nil, err
	}
	leases, err := s.store.ListLeasesForTenants(ctx, ids)
	if err != nil {
		return nil, err
	}
	d.CurrentLease = model.PickCurrentLease(leases)
	if d.CurrentLease != nil && d.CurrentLease.Status.IsOpen() {
		if d.Balance, err = s.leases.balance(ctx, d.CurrentLease); err != nil {
			return nil, err
		}
	}

	open, err := s.store.CountOpenMaintenanceByPriority(ctx, repository.MaintenanceFilter{RequestedBy: actor.UserID})
	if err != nil {
		return nil, err
	}
	for _, n := range open {
		d.OpenMaintenance += n
	}

	if d.UnreadMessages, err = s.store.CountUnreadMessages(ctx, actor.UserID); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *DashboardService) admin(ctx context.Context) (*model.AdminDashboard, error) {
	d := &model.AdminDashboard{}

	var err error
	if d.UsersByRole, err = s.store.CountUsersByRole(ctx); err != nil {
		return nil, err
	}
	properties, err := s.store.CountPropertiesByStatus(ctx, "")
	if err != nil {
		return nil, err
	}
	for _, n := range properties {
		d.PropertyCount += n
	}
	leases, err := s.store.CountLeasesByStatus(ctx, "")
	if err != nil {
		return nil, err
	}
	d.ActiveLeases = leases[model.LeaseStatusActive]

	open, err := s.store.CountOpenMaintenanceByPriority(ctx, repository.MaintenanceFilter{})
	if err != nil {
		return nil, err
	}
	for _, n := range open {
		d.OpenMaintenance += n
	}

	if d.PaymentsThisMonth, err = s.store.SumPaymentsPaidSince(ctx, "", s.monthStart()); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *DashboardService) monthStart() time.Time {
	now := s.nowUTC()
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
}
