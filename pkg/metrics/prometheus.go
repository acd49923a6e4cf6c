// Package metrics provides Prometheus metrics for the magicboard service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every metric the service exports.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Leaderboard
	leaderboardComputations *prometheus.CounterVec
	leaderboardLatency      prometheus.Histogram
	membersTotal            prometheus.Gauge
	memberLookups           *prometheus.CounterVec

	// Valentines
	valentinesSent        prometheus.Counter
	valentinesDuplicate   prometheus.Counter
	valentinesDelivered   prometheus.Counter
	valentineDeliveryErrs prometheus.Counter

	// Queue and workers
	queueSize     prometheus.Gauge
	queueCapacity prometheus.Gauge
	queueRejected *prometheus.CounterVec
	workerCount   prometheus.Gauge
	workerLatency prometheus.Histogram

	// Store
	storeLatency *prometheus.HistogramVec
	storeErrors  *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpErrors          *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "magicboard",
		subsystem:        "leaderboard",
		histogramBuckets: []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one block per metric
	auto := promauto.With(m.registry)
	counter := func(name, help string) prometheus.Counter {
		return auto.NewCounter(prometheus.CounterOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help})
	}
	gauge := func(name, help string) prometheus.Gauge {
		return auto.NewGauge(prometheus.GaugeOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help})
	}
	histogram := func(name, help string) prometheus.Histogram {
		return auto.NewHistogram(prometheus.HistogramOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: m.histogramBuckets})
	}
	counterVec := func(name, help string, labels ...string) *prometheus.CounterVec {
		return auto.NewCounterVec(prometheus.CounterOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help}, labels)
	}

	m.leaderboardComputations = counterVec("computations_total", "Full leaderboard recomputations by sort key", "sort")
	m.leaderboardLatency = histogram("computation_latency_milliseconds", "Latency of score, rank, filter and paginate over one snapshot")
	m.membersTotal = gauge("members", "Members in the latest snapshot")
	m.memberLookups = counterVec("member_lookups_total", "Single member card lookups by result", "result")

	m.valentinesSent = counter("valentines_sent_total", "Valentine notes accepted for delivery")
	m.valentinesDuplicate = counter("valentines_duplicate_total", "Valentine notes rejected as retries of an accepted note")
	m.valentinesDelivered = counter("valentines_delivered_total", "Valentine notes written to the store")
	m.valentineDeliveryErrs = counter("valentine_delivery_errors_total", "Valentine notes that failed to persist")

	m.queueSize = gauge("queue_size", "Notes waiting for delivery")
	m.queueCapacity = gauge("queue_capacity", "Maximum notes the delivery queue holds")
	m.queueRejected = counterVec("queue_rejected_total", "Notes the queue refused by reason", "reason")
	m.workerCount = gauge("worker_count", "Delivery workers running")
	m.workerLatency = histogram("worker_latency_milliseconds", "Time to deliver one note")

	m.storeLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_latency_milliseconds",
		Help:      "Store operation latency by operation",
		Buckets:   m.histogramBuckets,
	}, []string{"operation"})
	m.storeErrors = counterVec("store_errors_total", "Store operation failures by operation", "operation")

	m.httpRequests = counterVec("http_requests_total", "HTTP requests by endpoint, method and status", "endpoint", "method", "status_code")
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})
	m.httpErrors = counterVec("http_errors_total", "HTTP error responses by endpoint, method and type", "endpoint", "method", "error_type")

	m.systemMemoryUsage = gauge("system_memory_usage_bytes", "Heap bytes allocated")
	m.systemGoroutineCount = gauge("system_goroutine_count", "Number of goroutines")
}

// Manager methods.

func (m *Manager) RecordLeaderboardComputation(sort string, latencyMs float64) {
	m.leaderboardComputations.WithLabelValues(sort).Inc()
	m.leaderboardLatency.Observe(latencyMs)
}

func (m *Manager) UpdateMembersTotal(count int) { m.membersTotal.Set(float64(count)) }

func (m *Manager) RecordMemberLookup(result string) { m.memberLookups.WithLabelValues(result).Inc() }

func (m *Manager) RecordValentineSent()          { m.valentinesSent.Inc() }
func (m *Manager) RecordValentineDuplicate()     { m.valentinesDuplicate.Inc() }
func (m *Manager) RecordValentineDelivered()     { m.valentinesDelivered.Inc() }
func (m *Manager) RecordValentineDeliveryError() { m.valentineDeliveryErrs.Inc() }

func (m *Manager) UpdateQueueSize(size int)             { m.queueSize.Set(float64(size)) }
func (m *Manager) UpdateQueueCapacity(capacity int)     { m.queueCapacity.Set(float64(capacity)) }
func (m *Manager) RecordQueueRejected(reason string)    { m.queueRejected.WithLabelValues(reason).Inc() }
func (m *Manager) UpdateWorkerCount(count int)          { m.workerCount.Set(float64(count)) }
func (m *Manager) RecordWorkerLatency(latencyMs float64) { m.workerLatency.Observe(latencyMs) }

// RecordStoreOperation observes latency and counts a failure when err is non-nil.
func (m *Manager) RecordStoreOperation(operation string, latencyMs float64, err error) {
	m.storeLatency.WithLabelValues(operation).Observe(latencyMs)
	if err != nil {
		m.storeErrors.WithLabelValues(operation).Inc()
	}
}

func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

func (m *Manager) RecordHTTPError(endpoint, method, errorType string) {
	m.httpErrors.WithLabelValues(endpoint, method, errorType).Inc()
}

func (m *Manager) UpdateSystemMemoryUsage(bytes uint64) { m.systemMemoryUsage.Set(float64(bytes)) }
func (m *Manager) UpdateSystemGoroutineCount(count int) { m.systemGoroutineCount.Set(float64(count)) }

// Package-level helpers record on the global manager.

func RecordLeaderboardComputation(sort string, latencyMs float64) {
	globalManager.RecordLeaderboardComputation(sort, latencyMs)
}
func UpdateMembersTotal(count int)          { globalManager.UpdateMembersTotal(count) }
func RecordMemberLookup(result string)      { globalManager.RecordMemberLookup(result) }
func RecordValentineSent()                  { globalManager.RecordValentineSent() }
func RecordValentineDuplicate()             { globalManager.RecordValentineDuplicate() }
func RecordValentineDelivered()             { globalManager.RecordValentineDelivered() }
func RecordValentineDeliveryError()         { globalManager.RecordValentineDeliveryError() }
func UpdateQueueSize(size int)              { globalManager.UpdateQueueSize(size) }
func UpdateQueueCapacity(capacity int)      { globalManager.UpdateQueueCapacity(capacity) }
func RecordQueueRejected(reason string)     { globalManager.RecordQueueRejected(reason) }
func UpdateWorkerCount(count int)           { globalManager.UpdateWorkerCount(count) }
func RecordWorkerLatency(latencyMs float64) { globalManager.RecordWorkerLatency(latencyMs) }
func RecordStoreOperation(operation string, latencyMs float64, err error) {
	globalManager.RecordStoreOperation(operation, latencyMs, err)
}
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode, durationMs)
}
func RecordHTTPError(endpoint, method, errorType string) {
	globalManager.RecordHTTPError(endpoint, method, errorType)
}
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.UpdateSystemMemoryUsage(bytes) }
func UpdateSystemGoroutineCount(count int) { globalManager.UpdateSystemGoroutineCount(count) }

// GetRegistry returns the registry backing the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
