package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rentdesk/rentdesk/internal/activity"
	"github.com/rentdesk/rentdesk/internal/auth"
	"github.com/rentdesk/rentdesk/internal/cache"
	"github.com/rentdesk/rentdesk/internal/metrics"
	"github.com/rentdesk/rentdesk/internal/model"
)

// testNow is the fixed clock for service tests: 2024-06-15 10:00 UTC.
var testNow = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

func date(s string) model.Date {
	d, err := model.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

type recordedEvents struct {
	mu     sync.Mutex
	events []activity.Event
}

func (r *recordedEvents) PublishAsync(e activity.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordedEvents) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

func (r *recordedEvents) last() activity.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return activity.Event{}
	}
	return r.events[len(r.events)-1]
}

type memoryCache struct {
	mu          sync.Mutex
	entries     map[string][]byte
	invalidated []string
}

func (c *memoryCache) GetDashboard(_ context.Context, userID string, dst any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.entries[userID]
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(data, dst)
}

func (c *memoryCache) SetDashboard(_ context.Context, userID string, v any, _ time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[userID] = data
	return nil
}

func (c *memoryCache) InvalidateDashboards(_ context.Context, userIDs ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range userIDs {
		delete(c.entries, id)
		c.invalidated = append(c.invalidated, id)
	}
	return nil
}

type revokedTokens struct {
	ids     []string
	cutoffs map[string]time.Time
	ttls    map[string]time.Duration
	err     error
}

func (r *revokedTokens) RevokeToken(_ context.Context, tokenID string, _ time.Time) error {
	r.ids = append(r.ids, tokenID)
	return nil
}

func (r *revokedTokens) RevokeUserTokens(_ context.Context, userID string, cutoff time.Time, ttl time.Duration) error {
	if r.err != nil {
		return r.err
	}
	if r.cutoffs == nil {
		r.cutoffs = map[string]time.Time{}
		r.ttls = map[string]time.Duration{}
	}
	r.cutoffs[userID] = cutoff
	r.ttls[userID] = ttl
	return nil
}

type fixture struct {
	t       *testing.T
	ctx     context.Context
	store   *fakeStore
	events  *recordedEvents
	cache   *memoryCache
	tokens  *revokedTokens
	metrics *metrics.InMemoryRecorder
	svc     *Services
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	issuer, err := auth.NewTokenIssuer(strings.Repeat("k", auth.MinSecretLength), "rentdesk-test", time.Hour)
	require.NoError(t, err)

	f := &fixture{
		t:       t,
		ctx:     context.Background(),
		store:   newFakeStore(),
		events:  &recordedEvents{},
		cache:   &memoryCache{entries: map[string][]byte{}},
		tokens:  &revokedTokens{},
		metrics: metrics.NewInMemory(),
	}
	f.svc = New(Deps{
		Store:   f.store,
		Cache:   f.cache,
		Tokens:  f.tokens,
		Issuer:  issuer,
		Hasher:  auth.NewHasher(auth.Params{Time: 1, Memory: 1024, Threads: 1}),
		Events:  f.events,
		Metrics: f.metrics,
		Now:     func() time.Time { return testNow },
	}, Options{
		ExpiringWindowDays: 30,
		DashboardCacheTTL:  time.Minute,
		LoginMinDuration:   200 * time.Millisecond,
	})
	f.svc.Auth.sleep = func(context.Context, time.Duration) {}
	return f
}

// user stores an account and returns the matching caller.
func (f *fixture) user(role, email string) *model.AuthContext {
	f.t.Helper()
	u := &model.User{
		ID:        newID(),
		Email:     email,
		FirstName: strings.ToUpper(email[:1]),
		LastName:  "Test",
		Role:      role,
		CreatedAt: testNow,
		UpdatedAt: testNow,
	}
	require.NoError(f.t, f.store.CreateUser(f.ctx, u))
	return &model.AuthContext{
		UserID:    u.ID,
		Email:     u.Email,
		Role:      role,
		TokenID:   newID(),
		ExpiresAt: testNow.Add(time.Hour),
	}
}

func (f *fixture) property(landlordID string) *model.Property {
	f.t.Helper()
	p := &model.Property{
		ID:           newID(),
		LandlordID:   landlordID,
		Name:         "Maple Court " + newID()[20:],
		AddressLine1: "12 Maple St",
		City:         "Springfield",
		State:        "IL",
		PostalCode:   "62701",
		PropertyType: model.PropertyTypeApartment,
		RentCents:    150000,
		Status:       model.PropertyStatusVacant,
		Amenities:    []string{},
		CreatedAt:    testNow,
		UpdatedAt:    testNow,
	}
	require.NoError(f.t, f.store.CreateProperty(f.ctx, p))
	return p
}

// tenant stores a tenant record, linked to userID when it is not empty.
func (f *fixture) tenant(landlordID, userID string) *model.Tenant {
	f.t.Helper()
	t := &model.Tenant{
		ID:         newID(),
		LandlordID: landlordID,
		FirstName:  "Jamie",
		LastName:   "Rivera",
		Email:      "jamie." + strings.ToLower(newID()[20:]) + "@example.com",
		CreatedAt:  testNow,
		UpdatedAt:  testNow,
	}
	if userID != "" {
		t.UserID = ptr(userID)
	}
	require.NoError(f.t, f.store.CreateTenant(f.ctx, t))
	return t
}

// lease stores a lease directly, bypassing the service rules.
func (f *fixture) lease(p *model.Property, t *model.Tenant, status model.LeaseStatus, start, end string) *model.Lease {
	f.t.Helper()
	l := &model.Lease{
		ID:            newID(),
		LandlordID:    p.LandlordID,
		PropertyID:    p.ID,
		TenantID:      t.ID,
		Status:        status,
		StartDate:     date(start),
		EndDate:       date(end),
		RentCents:     150000,
		DepositCents:  150000,
		PaymentDueDay: 1,
		CreatedAt:     testNow,
		UpdatedAt:     testNow,
	}
	require.NoError(f.t, f.store.CreateLease(f.ctx, l))
	if status == model.LeaseStatusActive {
		require.NoError(f.t, f.store.SetPropertyStatus(f.ctx, p.ID, model.PropertyStatusOccupied))
	}
	return l
}

func (f *fixture) propertyStatus(id string) model.PropertyStatus {
	f.t.Helper()
	p, err := f.store.GetProperty(f.ctx, id)
	require.NoError(f.t, err)
	return p.Status
}

// tenancy is a landlord, a linked tenant account and one property.
type tenancy struct {
	landlord   *model.AuthContext
	tenantUser *model.AuthContext
	property   *model.Property
	tenant     *model.Tenant
}

func (f *fixture) tenancy() tenancy {
	landlord := f.user(model.RoleLandlord, "landlord."+strings.ToLower(newID()[20:])+"@example.com")
	tenantUser := f.user(model.RoleTenant, "tenant."+strings.ToLower(newID()[20:])+"@example.com")
	return tenancy{
		landlord:   landlord,
		tenantUser: tenantUser,
		property:   f.property(landlord.UserID),
		tenant:     f.tenant(landlord.UserID, tenantUser.UserID),
	}
}

func requireValidationField(t *testing.T, err error, field string) {
	t.Helper()
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	require.Contains(t, ve.Fields, field)
}
