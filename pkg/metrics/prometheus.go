// Package metrics provides Prometheus metrics for the gaitway gateway.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus collectors for the gateway.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// HTTP surface
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Upstream clinical backend client
	upstreamRequests *prometheus.CounterVec
	upstreamLatency  prometheus.Histogram

	// Sessions
	sessionsActive  prometheus.Gauge
	sessionsCreated prometheus.Counter
	sessionsRevoked prometheus.Counter

	// Aggregation work
	dashboardViews         prometheus.Counter
	complianceComputations prometheus.Counter

	// Snapshot refresh pipeline
	refreshQueueSize     prometheus.Gauge
	refreshQueueCapacity prometheus.Gauge
	refreshEnqueueErrors prometheus.Counter
	refreshJobs          prometheus.Counter
	refreshErrors        prometheus.Counter
	workerCount          prometheus.Gauge

	// Snapshot cache
	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter
	cacheErrors prometheus.Counter

	// Error tracking
	errorsByComponent *prometheus.CounterVec

	// Process health
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global manager on a custom registry so default Go collectors stay out.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // singleton registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "gaitway",
		subsystem:        "gateway",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initCollectors()
	return m
}

func (m *Manager) initCollectors() {
	factory := promauto.With(m.registry)

	m.httpRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "HTTP requests served, by endpoint, method and status.",
	}, []string{"endpoint", "method", "status"})

	m.httpRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request duration in milliseconds.",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status"})

	m.upstreamRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "upstream_requests_total",
		Help:      "Requests issued to the clinical backend, by operation and outcome.",
	}, []string{"operation", "outcome"})

	m.upstreamLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "upstream_latency_ms",
		Help:      "Clinical backend round-trip latency in milliseconds.",
		Buckets:   m.histogramBuckets,
	})

	m.sessionsActive = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sessions_active",
		Help:      "Currently live patient sessions.",
	})

	m.sessionsCreated = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sessions_created_total",
		Help:      "Sessions created by successful logins.",
	})

	m.sessionsRevoked = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sessions_revoked_total",
		Help:      "Sessions destroyed by logout, expiry or upstream 401.",
	})

	m.dashboardViews = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "dashboard_views_total",
		Help:      "Aggregated dashboard views produced.",
	})

	m.complianceComputations = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "compliance_computations_total",
		Help:      "Calendar compliance computations performed.",
	})

	m.refreshQueueSize = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_queue_size",
		Help:      "Snapshot refresh jobs currently queued.",
	})

	m.refreshQueueCapacity = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_queue_capacity",
		Help:      "Configured capacity of the refresh queue.",
	})

	m.refreshEnqueueErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_enqueue_errors_total",
		Help:      "Refresh jobs dropped at enqueue time.",
	})

	m.refreshJobs = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_jobs_total",
		Help:      "Snapshot refresh jobs completed.",
	})

	m.refreshErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_errors_total",
		Help:      "Snapshot refresh jobs that failed.",
	})

	m.workerCount = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_workers",
		Help:      "Running refresh workers.",
	})

	m.cacheHits = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_hits_total",
		Help:      "Snapshot cache hits.",
	})

	m.cacheMisses = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_misses_total",
		Help:      "Snapshot cache misses.",
	})

	m.cacheErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_errors_total",
		Help:      "Snapshot cache faults (treated as misses).",
	})

	m.errorsByComponent = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_by_component_total",
		Help:      "Errors by component and kind.",
	}, []string{"component", "kind"})

	m.systemMemoryUsage = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_bytes",
		Help:      "Allocated heap bytes.",
	})

	m.systemGoroutineCount = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutines",
		Help:      "Current goroutine count.",
	})

	m.systemGCPauseTime = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_gc_pause_ms",
		Help:      "Average GC pause time in milliseconds.",
		Buckets:   m.histogramBuckets,
	})
}

// GetRegistry exposes the custom registry for the /healthz handler.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Package-level recording helpers delegating to the global manager.

func RecordHTTPRequest(endpoint, method, status string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

func RecordHTTPRequestDuration(endpoint, method, status string, ms float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, status).Observe(ms)
}

func RecordUpstreamRequest(operation, outcome string) {
	globalManager.upstreamRequests.WithLabelValues(operation, outcome).Inc()
}

func RecordUpstreamLatency(ms float64) {
	globalManager.upstreamLatency.Observe(ms)
}

func UpdateActiveSessions(n int) {
	globalManager.sessionsActive.Set(float64(n))
}

func RecordSessionCreated() {
	globalManager.sessionsCreated.Inc()
}

func RecordSessionRevoked() {
	globalManager.sessionsRevoked.Inc()
}

func RecordDashboardView() {
	globalManager.dashboardViews.Inc()
}

func RecordComplianceComputation() {
	globalManager.complianceComputations.Inc()
}

func UpdateRefreshQueueSize(n int) {
	globalManager.refreshQueueSize.Set(float64(n))
}

func UpdateRefreshQueueCapacity(n int) {
	globalManager.refreshQueueCapacity.Set(float64(n))
}

func RecordRefreshEnqueueError() {
	globalManager.refreshEnqueueErrors.Inc()
}

func RecordRefreshJob() {
	globalManager.refreshJobs.Inc()
}

func RecordRefreshError() {
	globalManager.refreshErrors.Inc()
}

func UpdateWorkerCount(n int) {
	globalManager.workerCount.Set(float64(n))
}

func RecordCacheHit() {
	globalManager.cacheHits.Inc()
}

func RecordCacheMiss() {
	globalManager.cacheMisses.Inc()
}

func RecordCacheError() {
	globalManager.cacheErrors.Inc()
}

func RecordErrorByComponent(component, kind string) {
	globalManager.errorsByComponent.WithLabelValues(component, kind).Inc()
}

func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

func UpdateSystemGoroutineCount(n int) {
	globalManager.systemGoroutineCount.Set(float64(n))
}

func RecordSystemGCPauseTime(ms float64) {
	globalManager.systemGCPauseTime.Observe(ms)
}
