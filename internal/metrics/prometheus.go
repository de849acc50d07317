package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "rentdesk"

// PrometheusRecorder exports metrics through a dedicated Prometheus registry.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	logins            *prometheus.CounterVec
	leaseEvents       *prometheus.CounterVec
	maintenanceOpened prometheus.Counter
	paymentsRecorded  prometheus.Counter
	dashboardCache    *prometheus.CounterVec
	activityPublished *prometheus.CounterVec
	activityProcessed *prometheus.CounterVec
	activityBatchSize prometheus.Histogram
}

// NewPrometheus registers all collectors, plus Go runtime and process collectors.
func NewPrometheus() *PrometheusRecorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	p := &PrometheusRecorder{
		registry: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route pattern and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Login attempts by outcome.",
		}, []string{"outcome"}),
		leaseEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lease_events_total",
			Help:      "Lease lifecycle transitions.",
		}, []string{"event"}),
		maintenanceOpened: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "maintenance_requests_opened_total",
			Help:      "Maintenance requests filed.",
		}),
		paymentsRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payments_recorded_total",
			Help:      "Payments recorded or submitted.",
		}),
		dashboardCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dashboard_cache_lookups_total",
			Help:      "Dashboard cache lookups by result.",
		}, []string{"result"}),
		activityPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "activity_events_published_total",
			Help:      "Activity events written to the stream.",
		}, []string{"status"}),
		activityProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "activity_events_processed_total",
			Help:      "Activity events consumed by the notification worker.",
		}, []string{"status"}),
		activityBatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "activity_batch_size",
			Help:      "Events per consumed batch.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100},
		}),
	}

	reg.MustRegister(
		p.httpRequests,
		p.httpDuration,
		p.logins,
		p.leaseEvents,
		p.maintenanceOpened,
		p.paymentsRecorded,
		p.dashboardCache,
		p.activityPublished,
		p.activityProcessed,
		p.activityBatchSize,
	)

	return p
}

// Handler serves the registry in the Prometheus exposition format.
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}

// Registry returns the underlying registry.
func (p *PrometheusRecorder) Registry() *prometheus.Registry {
	return p.registry
}

func (p *PrometheusRecorder) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	p.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	p.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (p *PrometheusRecorder) IncLogin(outcome string) {
	p.logins.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) IncLeaseEvent(event string) {
	p.leaseEvents.WithLabelValues(event).Inc()
}

func (p *PrometheusRecorder) IncMaintenanceOpened() {
	p.maintenanceOpened.Inc()
}

func (p *PrometheusRecorder) IncPaymentRecorded() {
	p.paymentsRecorded.Inc()
}

func (p *PrometheusRecorder) IncDashboardCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	p.dashboardCache.WithLabelValues(result).Inc()
}

func (p *PrometheusRecorder) IncActivityEventPublished(status string) {
	p.activityPublished.WithLabelValues(status).Inc()
}

func (p *PrometheusRecorder) IncActivityEventProcessed(status string) {
	p.activityProcessed.WithLabelValues(status).Inc()
}

func (p *PrometheusRecorder) ObserveActivityBatchSize(size int) {
	p.activityBatchSize.Observe(float64(size))
}
