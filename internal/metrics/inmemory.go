package metrics

import (
	"maps"
	"sync"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	HTTPRequests       map[string]uint64 // "METHOD route status"
	Logins             map[string]uint64
	LeaseEvents        map[string]uint64
	MaintenanceOpened  uint64
	PaymentsRecorded   uint64
	DashboardCacheHits uint64
	DashboardCacheMiss uint64
	ActivityPublished  map[string]uint64
	ActivityProcessed  map[string]uint64
	ActivityBatches    uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	mu sync.Mutex
	s  Snapshot
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{s: Snapshot{
		HTTPRequests:      map[string]uint64{},
		Logins:            map[string]uint64{},
		LeaseEvents:       map[string]uint64{},
		ActivityPublished: map[string]uint64{},
		ActivityProcessed: map[string]uint64{},
	}}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := m.s
	out.HTTPRequests = maps.Clone(m.s.HTTPRequests)
	out.Logins = maps.Clone(m.s.Logins)
	out.LeaseEvents = maps.Clone(m.s.LeaseEvents)
	out.ActivityPublished = maps.Clone(m.s.ActivityPublished)
	out.ActivityProcessed = maps.Clone(m.s.ActivityProcessed)
	return out
}

// ObserveHTTPRequest counts a served request.
func (m *InMemoryRecorder) ObserveHTTPRequest(method, route string, status int, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s.HTTPRequests[method+" "+route+" "+statusClass(status)]++
}

// IncLogin counts a login attempt by outcome.
func (m *InMemoryRecorder) IncLogin(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s.Logins[outcome]++
}

// IncLeaseEvent counts a lease lifecycle event.
func (m *InMemoryRecorder) IncLeaseEvent(event string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s.LeaseEvents[event]++
}

// IncMaintenanceOpened counts a new maintenance request.
func (m *InMemoryRecorder) IncMaintenanceOpened() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s.MaintenanceOpened++
}

// IncPaymentRecorded counts a new payment.
func (m *InMemoryRecorder) IncPaymentRecorded() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s.PaymentsRecorded++
}

// IncDashboardCache counts dashboard cache lookups.
func (m *InMemoryRecorder) IncDashboardCache(hit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if hit {
		m.s.DashboardCacheHits++
	} else {
		m.s.DashboardCacheMiss++
	}
}

// IncActivityEventPublished counts publish attempts.
func (m *InMemoryRecorder) IncActivityEventPublished(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s.ActivityPublished[status]++
}

// IncActivityEventProcessed counts consumed events.
func (m *InMemoryRecorder) IncActivityEventProcessed(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s.ActivityProcessed[status]++
}

// ObserveActivityBatchSize counts processed batches.
func (m *InMemoryRecorder) ObserveActivityBatchSize(int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s.ActivityBatches++
}

// statusClass buckets HTTP status codes as "2xx", "4xx" and so on.
func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
