// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// HTTP metrics
	ObserveHTTPRequest(method, route string, status int, duration time.Duration)

	// Auth metrics
	IncLogin(outcome string) // outcome: "success", "invalid", "disabled", "throttled"

	// Domain metrics
	IncLeaseEvent(event string) // event: "created", "activated", "renewed", "terminated", "expired"
	IncMaintenanceOpened()
	IncPaymentRecorded()
	IncDashboardCache(hit bool)

	// Activity pipeline metrics
	IncActivityEventPublished(status string) // status: "success" or "dropped"
	IncActivityEventProcessed(status string) // status: "success", "failed", "dead_letter"
	ObserveActivityBatchSize(size int)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
