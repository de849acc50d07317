package service

import (
	"context"
	"errors"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rentdesk/rentdesk/internal/model"
	"github.com/rentdesk/rentdesk/internal/repository"
)

// fakeStore is an in-memory Store. WithTx does not roll back; tests that
// need rollback semantics run against Postgres.
type fakeStore struct {
	mu            sync.Mutex
	users         map[string]*model.User
	properties    map[string]*model.Property
	tenants       map[string]*model.Tenant
	leases        map[string]*model.Lease
	maintenance   map[string]*model.MaintenanceRequest
	threads       map[string]*model.Thread
	messages      []*model.Message
	reads         map[string]time.Time // thread_id/user_id
	payments      map[string]*model.Payment
	notifications map[string]*model.Notification
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:         map[string]*model.User{},
		properties:    map[string]*model.Property{},
		tenants:       map[string]*model.Tenant{},
		leases:        map[string]*model.Lease{},
		maintenance:   map[string]*model.MaintenanceRequest{},
		threads:       map[string]*model.Thread{},
		reads:         map[string]time.Time{},
		payments:      map[string]*model.Payment{},
		notifications: map[string]*model.Notification{},
	}
}

func clone[T any](v *T) *T {
	c := *v
	return &c
}

func limitPage[T any](items []T, limit int) ([]T, string, error) {
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, "", nil
}

func (f *fakeStore) WithTx(_ context.Context, fn func(tx Store) error) error {
	return fn(f)
}

// Users

func (f *fakeStore) CreateUser(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return repository.ErrEmailExists
		}
	}
	f.users[u.ID] = clone(u)
	return nil
}

func (f *fakeStore) GetUserByID(_ context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return clone(u), nil
}

func (f *fakeStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			return clone(u), nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeStore) UpdateUser(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[u.ID]; !ok {
		return repository.ErrUserNotFound
	}
	f.users[u.ID] = clone(u)
	return nil
}

func (f *fakeStore) UpdateUserPassword(_ context.Context, id, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (f *fakeStore) ListUsers(_ context.Context, filter repository.UserFilter, _ string, limit int) ([]*model.User, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.User
	for _, u := range f.users {
		if filter.Role == "" || u.Role == filter.Role {
			out = append(out, clone(u))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return limitPage(out, limit)
}

func (f *fakeStore) CountUsersByRole(_ context.Context) (map[string]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := map[string]int{}
	for _, u := range f.users {
		counts[u.Role]++
	}
	return counts, nil
}

// Properties

func (f *fakeStore) CreateProperty(_ context.Context, p *model.Property) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.properties[p.ID] = clone(p)
	return nil
}

func (f *fakeStore) GetProperty(_ context.Context, id string) (*model.Property, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.properties[id]
	if !ok || p.DeletedAt != nil {
		return nil, repository.ErrPropertyNotFound
	}
	return clone(p), nil
}

func (f *fakeStore) ListProperties(_ context.Context, filter repository.PropertyFilter, _ string, limit int) ([]*model.Property, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Property
	for _, p := range f.properties {
		switch {
		case p.DeletedAt != nil,
			filter.LandlordID != "" && p.LandlordID != filter.LandlordID,
			filter.Status != "" && p.Status != filter.Status,
			filter.City != "" && !strings.EqualFold(p.City, filter.City),
			filter.Query != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Query)):
			continue
		}
		out = append(out, clone(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return limitPage(out, limit)
}

func (f *fakeStore) UpdateProperty(_ context.Context, p *model.Property) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.properties[p.ID]; !ok {
		return repository.ErrPropertyNotFound
	}
	f.properties[p.ID] = clone(p)
	return nil
}

func (f *fakeStore) SetPropertyStatus(_ context.Context, id string, status model.PropertyStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.properties[id]
	if !ok {
		return repository.ErrPropertyNotFound
	}
	p.Status = status
	return nil
}

func (f *fakeStore) DeleteProperty(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.properties[id]
	if !ok || p.DeletedAt != nil {
		return repository.ErrPropertyNotFound
	}
	now := time.Now()
	p.DeletedAt = &now
	p.Status = model.PropertyStatusInactive
	return nil
}

func (f *fakeStore) CountPropertiesByStatus(_ context.Context, landlordID string) (map[model.PropertyStatus]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := map[model.PropertyStatus]int{}
	for _, p := range f.properties {
		if p.DeletedAt == nil && (landlordID == "" || p.LandlordID == landlordID) {
			counts[p.Status]++
		}
	}
	return counts, nil
}

// Tenants

func (f *fakeStore) CreateTenant(_ context.Context, t *model.Tenant) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.tenants {
		if existing.DeletedAt == nil && existing.LandlordID == t.LandlordID && strings.EqualFold(existing.Email, t.Email) {
			return repository.ErrTenantEmailExists
		}
	}
	f.tenants[t.ID] = clone(t)
	return nil
}

func (f *fakeStore) GetTenant(_ context.Context, id string) (*model.Tenant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tenants[id]
	if !ok || t.DeletedAt != nil {
		return nil, repository.ErrTenantNotFound
	}
	return clone(t), nil
}

func (f *fakeStore) ListTenants(_ context.Context, filter repository.TenantFilter, _ string, limit int) ([]*model.Tenant, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Tenant
	for _, t := range f.tenants {
		switch {
		case t.DeletedAt != nil,
			filter.LandlordID != "" && t.LandlordID != filter.LandlordID,
			filter.UserID != "" && (t.UserID == nil || *t.UserID != filter.UserID):
			continue
		}
		out = append(out, clone(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return limitPage(out, limit)
}

func (f *fakeStore) UpdateTenant(_ context.Context, t *model.Tenant) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tenants[t.ID]; !ok {
		return repository.ErrTenantNotFound
	}
	f.tenants[t.ID] = clone(t)
	return nil
}

func (f *fakeStore) DeleteTenant(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tenants[id]
	if !ok || t.DeletedAt != nil {
		return repository.ErrTenantNotFound
	}
	now := time.Now()
	t.DeletedAt = &now
	return nil
}

func (f *fakeStore) LinkTenantsToUser(_ context.Context, email, userID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, t := range f.tenants {
		if t.DeletedAt == nil && t.UserID == nil && strings.EqualFold(t.Email, email) {
			t.UserID = &userID
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) ListTenantIDsForUser(_ context.Context, userID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := []string{}
	for _, t := range f.tenants {
		if t.DeletedAt == nil && t.UserID != nil && *t.UserID == userID {
			ids = append(ids, t.ID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (f *fakeStore) CountTenants(_ context.Context, landlordID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, t := range f.tenants {
		if t.DeletedAt == nil && (landlordID == "" || t.LandlordID == landlordID) {
			n++
		}
	}
	return n, nil
}

// Leases

// errLeaseDates mirrors the leases_dates_check constraint.
var errLeaseDates = errors.New("violates check constraint leases_dates_check")

func leaseDatesValid(l *model.Lease) bool {
	return l.EndDate.After(l.StartDate) ||
		(l.Status == model.LeaseStatusTerminated && l.EndDate.Equal(l.StartDate))
}

func (f *fakeStore) CreateLease(_ context.Context, l *model.Lease) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !leaseDatesValid(l) {
		return errLeaseDates
	}
	f.leases[l.ID] = clone(l)
	return nil
}

func (f *fakeStore) GetLease(_ context.Context, id string) (*model.Lease, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.leases[id]
	if !ok {
		return nil, repository.ErrLeaseNotFound
	}
	return clone(l), nil
}

func (f *fakeStore) matchLease(l *model.Lease, filter repository.LeaseFilter) bool {
	switch {
	case filter.LandlordID != "" && l.LandlordID != filter.LandlordID,
		filter.TenantIDs != nil && !slices.Contains(filter.TenantIDs, l.TenantID),
		filter.PropertyID != "" && l.PropertyID != filter.PropertyID,
		filter.TenantID != "" && l.TenantID != filter.TenantID,
		len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, l.Status),
		filter.EndsFrom != nil && l.EndDate.Before(*filter.EndsFrom),
		filter.EndsBy != nil && l.EndDate.After(*filter.EndsBy):
		return false
	}
	return true
}

func (f *fakeStore) collectLeases(filter repository.LeaseFilter) []*model.Lease {
	var out []*model.Lease
	for _, l := range f.leases {
		if f.matchLease(l, filter) {
			out = append(out, clone(l))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (f *fakeStore) ListLeases(_ context.Context, filter repository.LeaseFilter, _ string, limit int) ([]*model.Lease, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return limitPage(f.collectLeases(filter), limit)
}

func (f *fakeStore) ListExpiringLeases(_ context.Context, landlordID string, from, by model.Date) ([]*model.Lease, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.collectLeases(repository.LeaseFilter{
		LandlordID: landlordID,
		Statuses:   []model.LeaseStatus{model.LeaseStatusActive},
		EndsFrom:   &from,
		EndsBy:     &by,
	})
	sort.Slice(out, func(i, j int) bool { return out[i].EndDate.Before(out[j].EndDate) })
	return out, nil
}

func (f *fakeStore) ListLeasesForTenants(_ context.Context, tenantIDs []string) ([]*model.Lease, error) {
	if len(tenantIDs) == 0 {
		return nil, nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.collectLeases(repository.LeaseFilter{TenantIDs: tenantIDs}), nil
}

func (f *fakeStore) ListLeasesToSweep(_ context.Context, today model.Date) ([]*model.Lease, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Lease
	for _, l := range f.leases {
		if l.IsExpiredOn(today) || l.IsDueToStartOn(today) {
			out = append(out, clone(l))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].StartDate.Before(out[j].StartDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (f *fakeStore) UpdateLease(_ context.Context, l *model.Lease) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.leases[l.ID]; !ok {
		return repository.ErrLeaseNotFound
	}
	if !leaseDatesValid(l) {
		return errLeaseDates
	}
	f.leases[l.ID] = clone(l)
	return nil
}

func (f *fakeStore) DeleteLease(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.leases[id]
	if !ok || l.Status != model.LeaseStatusDraft {
		return repository.ErrLeaseNotFound
	}
	delete(f.leases, id)
	return nil
}

func (f *fakeStore) HasActiveLease(_ context.Context, propertyID, excludeID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.leases {
		if l.PropertyID == propertyID && l.Status == model.LeaseStatusActive && l.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) HasOpenLease(_ context.Context, propertyID, tenantID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.leases {
		if !l.Status.IsOpen() {
			continue
		}
		if tenantID != "" && l.TenantID == tenantID || tenantID == "" && l.PropertyID == propertyID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) SharesLease(_ context.Context, landlordID, tenantUserID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.leases {
		t := f.tenants[l.TenantID]
		if l.LandlordID == landlordID && l.Status != model.LeaseStatusDraft && t != nil && t.UserID != nil && *t.UserID == tenantUserID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) LockProperty(_ context.Context, propertyID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.properties[propertyID]; !ok {
		return repository.ErrPropertyNotFound
	}
	return nil
}

func (f *fakeStore) CountLeasesByStatus(_ context.Context, landlordID string) (map[model.LeaseStatus]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := map[model.LeaseStatus]int{}
	for _, l := range f.leases {
		if landlordID == "" || l.LandlordID == landlordID {
			counts[l.Status]++
		}
	}
	return counts, nil
}

// Maintenance

func (f *fakeStore) CreateMaintenanceRequest(_ context.Context, m *model.MaintenanceRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.maintenance[m.ID] = clone(m)
	return nil
}

func (f *fakeStore) GetMaintenanceRequest(_ context.Context, id string) (*model.MaintenanceRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.maintenance[id]
	if !ok {
		return nil, repository.ErrMaintenanceNotFound
	}
	return clone(m), nil
}

func matchMaintenance(m *model.MaintenanceRequest, filter repository.MaintenanceFilter) bool {
	switch {
	case filter.LandlordID != "" && m.LandlordID != filter.LandlordID,
		filter.RequestedBy != "" && m.RequestedBy != filter.RequestedBy,
		filter.PropertyID != "" && m.PropertyID != filter.PropertyID,
		filter.Status != "" && m.Status != filter.Status,
		filter.Priority != "" && m.Priority != filter.Priority,
		filter.OpenOnly && m.Status.IsClosed():
		return false
	}
	return true
}

func (f *fakeStore) ListMaintenanceRequests(_ context.Context, filter repository.MaintenanceFilter, _ string, limit int) ([]*model.MaintenanceRequest, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.MaintenanceRequest
	for _, m := range f.maintenance {
		if matchMaintenance(m, filter) {
			out = append(out, clone(m))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if ri, rj := out[i].Priority.Rank(), out[j].Priority.Rank(); ri != rj {
			return ri > rj
		}
		return out[i].ID > out[j].ID
	})
	return limitPage(out, limit)
}

func (f *fakeStore) UpdateMaintenanceRequest(_ context.Context, m *model.MaintenanceRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.maintenance[m.ID]; !ok {
		return repository.ErrMaintenanceNotFound
	}
	f.maintenance[m.ID] = clone(m)
	return nil
}

func (f *fakeStore) CountOpenMaintenanceByPriority(_ context.Context, filter repository.MaintenanceFilter) (map[model.MaintenancePriority]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	filter.OpenOnly = true
	counts := map[model.MaintenancePriority]int{}
	for _, m := range f.maintenance {
		if matchMaintenance(m, filter) {
			counts[m.Priority]++
		}
	}
	return counts, nil
}

// Messages

func (f *fakeStore) CreateThread(_ context.Context, t *model.Thread) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.threads[t.ID] = clone(t)
	return nil
}

func (f *fakeStore) GetThread(_ context.Context, id string) (*model.Thread, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.threads[id]
	if !ok {
		return nil, repository.ErrThreadNotFound
	}
	return clone(t), nil
}

func (f *fakeStore) CreateMessage(_ context.Context, m *model.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.threads[m.ThreadID]
	if !ok {
		return repository.ErrThreadNotFound
	}
	f.messages = append(f.messages, clone(m))
	if m.CreatedAt.After(t.LastMessageAt) {
		t.LastMessageAt = m.CreatedAt
	}
	return nil
}

func (f *fakeStore) ListMessages(_ context.Context, threadID string) ([]*model.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Message
	for _, m := range f.messages {
		if m.ThreadID == threadID {
			out = append(out, clone(m))
		}
	}
	return out, nil
}

func (f *fakeStore) unread(threadID, userID string) int {
	lastRead := f.reads[threadID+"/"+userID]
	n := 0
	for _, m := range f.messages {
		if m.ThreadID == threadID && m.SenderID != userID && m.CreatedAt.After(lastRead) {
			n++
		}
	}
	return n
}

func (f *fakeStore) ListThreadSummaries(_ context.Context, userID, _ string, limit int) ([]*model.ThreadSummary, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.ThreadSummary
	for _, t := range f.threads {
		if !t.HasParticipant(userID) {
			continue
		}
		sum := &model.ThreadSummary{Thread: clone(t), UnreadCount: f.unread(t.ID, userID)}
		for _, m := range f.messages {
			if m.ThreadID == t.ID {
				sum.LastMessage = clone(m)
			}
		}
		out = append(out, sum)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Thread.LastMessageAt.After(out[j].Thread.LastMessageAt) })
	return limitPage(out, limit)
}

func (f *fakeStore) MarkThreadRead(_ context.Context, threadID, userID string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := threadID + "/" + userID
	if at.After(f.reads[key]) {
		f.reads[key] = at
	}
	return nil
}

func (f *fakeStore) CountUnreadMessages(_ context.Context, userID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, t := range f.threads {
		if t.HasParticipant(userID) {
			n += f.unread(t.ID, userID)
		}
	}
	return n, nil
}

// Payments

func (f *fakeStore) CreatePayment(_ context.Context, p *model.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payments[p.ID] = clone(p)
	return nil
}

func (f *fakeStore) GetPayment(_ context.Context, id string) (*model.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payments[id]
	if !ok {
		return nil, repository.ErrPaymentNotFound
	}
	return clone(p), nil
}

func matchPayment(p *model.Payment, filter repository.PaymentFilter) bool {
	switch {
	case filter.LandlordID != "" && p.LandlordID != filter.LandlordID,
		filter.TenantIDs != nil && !slices.Contains(filter.TenantIDs, p.TenantID),
		filter.LeaseID != "" && p.LeaseID != filter.LeaseID,
		filter.Status != "" && p.Status != filter.Status:
		return false
	}
	return true
}

func (f *fakeStore) ListPayments(_ context.Context, filter repository.PaymentFilter, _ string, limit int) ([]*model.Payment, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Payment
	for _, p := range f.payments {
		if matchPayment(p, filter) {
			out = append(out, clone(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return limitPage(out, limit)
}

func (f *fakeStore) UpdatePaymentStatus(_ context.Context, p *model.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.payments[p.ID]
	if !ok {
		return repository.ErrPaymentNotFound
	}
	existing.Status, existing.PaidAt, existing.Notes, existing.UpdatedAt = p.Status, p.PaidAt, p.Notes, p.UpdatedAt
	return nil
}

func (f *fakeStore) SumCompletedPayments(_ context.Context, leaseID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var total int64
	for _, p := range f.payments {
		if p.LeaseID == leaseID && p.Status == model.PaymentStatusCompleted {
			total += p.AmountCents
		}
	}
	return total, nil
}

func (f *fakeStore) SumPaymentsPaidSince(_ context.Context, landlordID string, since time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var total int64
	for _, p := range f.payments {
		if p.Status == model.PaymentStatusCompleted && p.PaidAt != nil && !p.PaidAt.Before(since) &&
			(landlordID == "" || p.LandlordID == landlordID) {
			total += p.AmountCents
		}
	}
	return total, nil
}

func (f *fakeStore) CountPayments(_ context.Context, filter repository.PaymentFilter) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, p := range f.payments {
		if matchPayment(p, filter) {
			n++
		}
	}
	return n, nil
}

// Notifications

func (f *fakeStore) ListNotifications(_ context.Context, userID string, unreadOnly bool, _ string, limit int) ([]*model.Notification, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Notification
	for _, n := range f.notifications {
		if n.UserID == userID && (!unreadOnly || n.ReadAt == nil) {
			out = append(out, clone(n))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return limitPage(out, limit)
}

func (f *fakeStore) MarkNotificationRead(_ context.Context, id, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.notifications[id]
	if !ok || n.UserID != userID {
		return repository.ErrNotificationNotFound
	}
	if n.ReadAt == nil {
		now := time.Now()
		n.ReadAt = &now
	}
	return nil
}

func (f *fakeStore) MarkAllNotificationsRead(_ context.Context, userID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	now := time.Now()
	for _, n := range f.notifications {
		if n.UserID == userID && n.ReadAt == nil {
			n.ReadAt = &now
			count++
		}
	}
	return count, nil
}

var _ Store = (*fakeStore)(nil)
