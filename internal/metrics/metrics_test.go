package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ Recorder = (*NoopRecorder)(nil)
	_ Recorder = (*InMemoryRecorder)(nil)
	_ Recorder = (*PrometheusRecorder)(nil)
)

func TestInMemoryRecorder_Snapshot(t *testing.T) {
	t.Parallel()

	m := NewInMemory()
	m.ObserveHTTPRequest("GET", "/api/v1/leases", 200, time.Millisecond)
	m.ObserveHTTPRequest("GET", "/api/v1/leases", 204, time.Millisecond)
	m.ObserveHTTPRequest("POST", "/api/v1/leases", 422, time.Millisecond)
	m.IncLogin("success")
	m.IncLeaseEvent("renewed")
	m.IncDashboardCache(true)
	m.IncDashboardCache(false)

	snap := m.Snapshot()
	assert.EqualValues(t, 2, snap.HTTPRequests["GET /api/v1/leases 2xx"])
	assert.EqualValues(t, 1, snap.HTTPRequests["POST /api/v1/leases 4xx"])
	assert.EqualValues(t, 1, snap.Logins["success"])
	assert.EqualValues(t, 1, snap.LeaseEvents["renewed"])
	assert.EqualValues(t, 1, snap.DashboardCacheHits)
	assert.EqualValues(t, 1, snap.DashboardCacheMiss)

	// Snapshot must be a copy.
	snap.Logins["success"] = 99
	assert.EqualValues(t, 1, m.Snapshot().Logins["success"])
}

func TestPrometheusRecorder_Counts(t *testing.T) {
	t.Parallel()

	p := NewPrometheus()
	p.IncLeaseEvent("created")
	p.IncLeaseEvent("created")
	p.IncPaymentRecorded()
	p.ObserveHTTPRequest("GET", "/healthz", 200, 3*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(p.leaseEvents.WithLabelValues("created")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.paymentsRecorded))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.httpRequests.WithLabelValues("GET", "/healthz", "200")))
}

func TestPrometheusRecorder_Handler(t *testing.T) {
	t.Parallel()

	p := NewPrometheus()
	p.IncLogin("invalid")

	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `rentdesk_logins_total{outcome="invalid"} 1`), body)
	assert.Contains(t, body, "go_goroutines")
}
