package handler

import (
	"net/http"
)

// MetricsHandler exposes recorder metrics in Prometheus exposition format.
type MetricsHandler struct {
	exposition http.Handler
}

// NewMetricsHandler wraps an exposition handler such as
// metrics.PrometheusRecorder.Handler(). A nil handler disables the endpoint.
func NewMetricsHandler(exposition http.Handler) *MetricsHandler {
	return &MetricsHandler{exposition: exposition}
}

// Metrics handles GET /metrics.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.exposition == nil {
		writeError(w, http.StatusServiceUnavailable, "METRICS_DISABLED", "Metrics are disabled")
		return
	}
	h.exposition.ServeHTTP(w, r)
}
