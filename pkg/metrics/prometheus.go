// Package metrics provides Prometheus metrics for the eventquote services.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the eventquote services.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Business metrics
	documentsCreated *prometheus.CounterVec
	documentsListed  *prometheus.CounterVec
	validationFails  *prometheus.CounterVec
	searchQueries    prometheus.Counter
	searchHits       prometheus.Histogram

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Document store metrics
	storeOpLatency *prometheus.HistogramVec
	storeOpErrors  *prometheus.CounterVec

	// Upstream market data metrics
	upstreamLatency *prometheus.HistogramVec
	upstreamErrors  *prometheus.CounterVec

	// Notification queue and publisher metrics
	queueCapacity      prometheus.Gauge
	queueSize          prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueueRate   prometheus.Counter
	queueDequeueRate   prometheus.Counter
	queueEnqueueErrors prometheus.Counter
	workerActiveCount  prometheus.Gauge
	publishLatency     prometheus.Histogram
	publishErrors      prometheus.Counter
	notificationsSent  prometheus.Counter

	// Error metrics
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
	errorLatency         *prometheus.HistogramVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "eventquote",
		subsystem:        "api",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// factory registers collectors with the manager's registry. A disabled
// manager still builds them, so recording stays safe, but nothing is exposed.
func (m *Manager) factory() promauto.Factory {
	if !m.enabled {
		return promauto.With(nil)
	}
	return promauto.With(m.registry)
}

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return m.factory().NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.customLabels,
	}, labels)
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return m.factory().NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.customLabels,
	}, labels)
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return m.factory().NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return m.factory().NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return m.factory().NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.customLabels,
	})
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	m.documentsCreated = m.counterVec("documents_created_total",
		"Total number of documents created per collection", "collection")
	m.documentsListed = m.counterVec("documents_listed_total",
		"Total number of documents returned by list queries per collection", "collection")
	m.validationFails = m.counterVec("validation_failures_total",
		"Total number of create requests rejected for missing fields", "collection")
	m.searchQueries = m.counter("search_queries_total",
		"Total number of symbol search queries")
	m.searchHits = m.histogram("search_hits",
		"Number of catalog entries returned per search", []float64{0, 1, 2, 4, 8})

	m.httpRequests = m.counterVec("http_requests_total",
		"Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds", "endpoint", "method", "status_code")

	m.storeOpLatency = m.histogramVec("store_operation_latency_milliseconds",
		"Document store operation latency in milliseconds", "driver", "operation")
	m.storeOpErrors = m.counterVec("store_operation_errors_total",
		"Total number of failed document store operations", "driver", "operation")

	m.upstreamLatency = m.histogramVec("upstream_latency_milliseconds",
		"Market data provider request latency in milliseconds", "provider", "operation")
	m.upstreamErrors = m.counterVec("upstream_errors_total",
		"Total number of failed market data provider requests", "provider", "operation")

	m.queueCapacity = m.gauge("notify_queue_capacity", "Maximum capacity of the notification queue")
	m.queueSize = m.gauge("notify_queue_size", "Current size of the notification queue")
	m.queueUtilization = m.gauge("notify_queue_utilization_ratio", "Notification queue utilization (0-1)")
	m.queueEnqueueRate = m.counter("notify_queue_enqueue_total", "Total number of enqueued notifications")
	m.queueDequeueRate = m.counter("notify_queue_dequeue_total", "Total number of dequeued notifications")
	m.queueEnqueueErrors = m.counter("notify_queue_enqueue_errors_total", "Total number of dropped notifications")
	m.workerActiveCount = m.gauge("notify_workers_active", "Number of active notification workers")
	m.publishLatency = m.histogram("notify_publish_latency_milliseconds",
		"Notification publish latency in milliseconds", m.histogramBuckets)
	m.publishErrors = m.counter("notify_publish_errors_total", "Total number of failed notification publishes")
	m.notificationsSent = m.counter("notify_published_total", "Total number of published notifications")

	m.errorRateByComponent = m.counterVec("errors_by_component_total",
		"Total number of errors by component", "component", "error_type")
	m.errorRateByType = m.counterVec("errors_by_type_total",
		"Total number of errors by type", "error_type", "severity")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total",
		"Total number of errors by endpoint", "endpoint", "method", "error_type")
	m.errorLatency = m.histogramVec("error_latency_milliseconds",
		"Latency of operations that resulted in errors", "component", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000})
}

// RecordDocumentCreated increments the created documents counter for a collection.
func RecordDocumentCreated(collection string) {
	globalManager.documentsCreated.WithLabelValues(collection).Inc()
}

// RecordDocumentsListed adds n to the listed documents counter for a collection.
func RecordDocumentsListed(collection string, n int) {
	globalManager.documentsListed.WithLabelValues(collection).Add(float64(n))
}

// RecordValidationFailure counts a create request rejected at the boundary.
func RecordValidationFailure(collection string) {
	globalManager.validationFails.WithLabelValues(collection).Inc()
}

// RecordSearch records a catalog search and the number of hits.
func RecordSearch(hits int) {
	globalManager.searchQueries.Inc()
	globalManager.searchHits.Observe(float64(hits))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordStoreOperation records the latency of a document store call and whether it failed.
func RecordStoreOperation(driver, operation string, latencyMs float64, failed bool) {
	globalManager.storeOpLatency.WithLabelValues(driver, operation).Observe(latencyMs)
	if failed {
		globalManager.storeOpErrors.WithLabelValues(driver, operation).Inc()
	}
}

// RecordUpstreamRequest records the latency of a market data call and whether it failed.
func RecordUpstreamRequest(provider, operation string, latencyMs float64, failed bool) {
	globalManager.upstreamLatency.WithLabelValues(provider, operation).Observe(latencyMs)
	if failed {
		globalManager.upstreamErrors.WithLabelValues(provider, operation).Inc()
	}
}

// Notification queue functions.

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueueRate.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeueRate.Inc()
}

// RecordQueueEnqueueError increments the dropped notification counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// UpdateWorkerActiveCount sets the number of active notification workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordPublish records a publish attempt.
func RecordPublish(latencyMs float64, failed bool) {
	globalManager.publishLatency.Observe(latencyMs)
	if failed {
		globalManager.publishErrors.Inc()
		return
	}
	globalManager.notificationsSent.Inc()
}

// Error metrics functions.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of an operation that resulted in an error.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// System Performance Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
