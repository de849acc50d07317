package handler

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// readinessTimeout bounds each dependency ping.
const readinessTimeout = 3 * time.Second

// HealthChecker is a dependency the readiness probe can ping.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthResponse is the body of both probes.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

type dependency struct {
	name    string
	checker HealthChecker
}

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	deps []dependency
}

// NewHealthHandler probes Postgres and Redis. Either may be nil, in which
// case it is reported as not configured and does not fail readiness.
func NewHealthHandler(db, cache HealthChecker) *HealthHandler {
	return &HealthHandler{deps: []dependency{
		{name: "postgres", checker: db},
		{name: "redis", checker: cache},
	}}
}

// Healthz answers as long as the process can serve HTTP.
func (h *HealthHandler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// Readyz pings every dependency in parallel and answers 503 if any fails.
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	results := make([]string, len(h.deps))
	var wg sync.WaitGroup
	for i, dep := range h.deps {
		if dep.checker == nil {
			results[i] = "not configured"
			continue
		}
		wg.Add(1)
		go func(i int, c HealthChecker) {
			defer wg.Done()
			if err := c.Ping(ctx); err != nil {
				results[i] = "error: " + err.Error()
				return
			}
			results[i] = "ok"
		}(i, dep.checker)
	}
	wg.Wait()

	resp := HealthResponse{Status: "ok", Checks: make(map[string]string, len(h.deps))}
	status := http.StatusOK
	for i, dep := range h.deps {
		resp.Checks[dep.name] = results[i]
		if dep.checker != nil && results[i] != "ok" {
			resp.Status = "unhealthy"
			status = http.StatusServiceUnavailable
		}
	}
	writeJSON(w, status, resp)
}
