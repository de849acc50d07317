// Package service provides business logic for the application.
package service

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/rentdesk/rentdesk/internal/activity"
	"github.com/rentdesk/rentdesk/internal/auth"
	"github.com/rentdesk/rentdesk/internal/metrics"
	"github.com/rentdesk/rentdesk/internal/model"
)

const (
	// DefaultPageSize is used when a listing does not ask for a limit.
	DefaultPageSize = 20
	// MaxPageSize caps every listing.
	MaxPageSize = 100
)

// DashboardCache stores rendered dashboards per user.
type DashboardCache interface {
	GetDashboard(ctx context.Context, userID string, dst any) error
	SetDashboard(ctx context.Context, userID string, v any, ttl time.Duration) error
	InvalidateDashboards(ctx context.Context, userIDs ...string) error
}

// TokenRevoker records logged-out token IDs and per-user cutoffs.
type TokenRevoker interface {
	RevokeToken(ctx context.Context, tokenID string, expiresAt time.Time) error
	RevokeUserTokens(ctx context.Context, userID string, cutoff time.Time, ttl time.Duration) error
}

// EventPublisher emits activity events without blocking.
type EventPublisher interface {
	PublishAsync(event activity.Event)
}

// Deps are the collaborators shared by every service.
type Deps struct {
	Store   Store
	Cache   DashboardCache
	Tokens  TokenRevoker
	Issuer  *auth.TokenIssuer
	Hasher  *auth.Hasher
	Events  EventPublisher
	Metrics metrics.Recorder
	Logger  *slog.Logger
	Now     func() time.Time
}

// Options tune service behaviour from configuration.
type Options struct {
	ExpiringWindowDays int
	DashboardCacheTTL  time.Duration
	LoginMinDuration   time.Duration
}

// Services bundles every domain service.
type Services struct {
	Auth          *AuthService
	Properties    *PropertyService
	Tenants       *TenantService
	Leases        *LeaseService
	Maintenance   *MaintenanceService
	Messages      *MessageService
	Payments      *PaymentService
	Notifications *NotificationService
	Dashboard     *DashboardService
	Admin         *AdminService
}

// New wires all services over the same dependencies.
func New(deps Deps, opts Options) *Services {
	c := newCore(deps)
	leases := &LeaseService{core: c}
	return &Services{
		Auth:          newAuthService(c, deps.Issuer, deps.Hasher, deps.Tokens, opts.LoginMinDuration),
		Properties:    &PropertyService{core: c},
		Tenants:       &TenantService{core: c},
		Leases:        leases,
		Maintenance:   &MaintenanceService{core: c},
		Messages:      &MessageService{core: c},
		Payments:      &PaymentService{core: c, leases: leases},
		Notifications: &NotificationService{core: c},
		Dashboard:     newDashboardService(c, leases, opts.ExpiringWindowDays, opts.DashboardCacheTTL),
		Admin:         newAdminService(c, deps.Tokens, deps.Issuer),
	}
}

// core holds what every service needs.
type core struct {
	store   Store
	cache   DashboardCache
	events  EventPublisher
	metrics metrics.Recorder
	logger  *slog.Logger
	now     func() time.Time
}

func newCore(deps Deps) core {
	c := core{
		store:   deps.Store,
		cache:   deps.Cache,
		events:  deps.Events,
		metrics: deps.Metrics,
		logger:  deps.Logger,
		now:     deps.Now,
	}
	if c.metrics == nil {
		c.metrics = metrics.NewNoop()
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

func (c core) nowUTC() time.Time {
	return c.now().UTC()
}

func (c core) today() model.Date {
	return model.DateOf(c.nowUTC())
}

// publish emits an activity event; it never fails the caller.
func (c core) publish(eventType string, actor *model.AuthContext, entityType, entityID string, recipients []string, attrs map[string]string) {
	if c.events == nil {
		return
	}
	actorID := ""
	if actor != nil {
		actorID = actor.UserID
	}
	c.events.PublishAsync(activity.NewEvent(eventType, actorID, entityType, entityID, recipients, attrs))
}

// invalidate drops cached dashboards; failures are logged only.
func (c core) invalidate(ctx context.Context, userIDs ...string) {
	if c.cache == nil {
		return
	}
	if err := c.cache.InvalidateDashboards(ctx, userIDs...); err != nil {
		c.logger.Warn("failed to invalidate dashboards", "error", err)
	}
}

// tenantScope returns the tenant record IDs linked to a tenant-role caller.
// The result is never nil so it always restricts a filter.
func (c core) tenantScope(ctx context.Context, actor *model.AuthContext) ([]string, error) {
	ids, err := c.store.ListTenantIDsForUser(ctx, actor.UserID)
	if err != nil {
		return nil, translate(err, "list tenant ids")
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// tenantUserID returns the account linked to a tenant record, or "".
func (c core) tenantUserID(ctx context.Context, tenantID string) string {
	t, err := c.store.GetTenant(ctx, tenantID)
	if err != nil || t.UserID == nil {
		return ""
	}
	return *t.UserID
}

// Page is one page of a cursor-paginated listing.
type Page[T any] struct {
	Items      []T
	NextCursor string
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultPageSize
	}
	if limit > MaxPageSize {
		return MaxPageSize
	}
	return limit
}

func newID() string {
	return ulid.Make().String()
}

func ptr[T any](v T) *T {
	return &v
}

// requireRole returns ErrForbidden unless the actor holds one of roles.
// Admins pass every check.
func requireRole(actor *model.AuthContext, roles ...string) error {
	if actor == nil {
		return ErrForbidden
	}
	if actor.IsAdmin() {
		return nil
	}
	for _, r := range roles {
		if actor.Role == r {
			return nil
		}
	}
	return ErrForbidden
}
