package metrics

import "time"

// NoopRecorder discards all metrics.
type NoopRecorder struct{}

// NewNoop returns a Recorder that does nothing.
func NewNoop() *NoopRecorder {
	return &NoopRecorder{}
}

func (NoopRecorder) ObserveHTTPRequest(string, string, int, time.Duration) {}
func (NoopRecorder) IncLogin(string)                                       {}
func (NoopRecorder) IncLeaseEvent(string)                                  {}
func (NoopRecorder) IncMaintenanceOpened()                                 {}
func (NoopRecorder) IncPaymentRecorded()                                   {}
func (NoopRecorder) IncDashboardCache(bool)                                {}
func (NoopRecorder) IncActivityEventPublished(string)                      {}
func (NoopRecorder) IncActivityEventProcessed(string)                      {}
func (NoopRecorder) ObserveActivityBatchSize(int)                          {}
