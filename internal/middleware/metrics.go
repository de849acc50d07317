package middleware

import (
	"net/http"
	"time"

	"github.com/rentdesk/rentdesk/internal/metrics"
)

// Metrics records request count and latency per chi route pattern.
// Unmatched paths are grouped under "unmatched" to bound label cardinality.
func Metrics(recorder metrics.Recorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := wrapResponseWriter(w)

			next.ServeHTTP(wrapped, r)

			recorder.ObserveHTTPRequest(r.Method, routePattern(r), wrapped.status, time.Since(start))
		})
	}
}
