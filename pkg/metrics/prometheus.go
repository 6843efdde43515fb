// Package metrics provides Prometheus metrics for the leaderboard scanner.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the scanner.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Capture cycle metrics
	capturesStarted   prometheus.Counter
	capturesCompleted prometheus.Counter
	capturesRejected  *prometheus.CounterVec
	cycleDuration     prometheus.Histogram
	rowsTotal         *prometheus.CounterVec

	// Region and OCR metrics
	regionFailures *prometheus.CounterVec
	ocrAttempts    *prometheus.CounterVec
	ocrFallbacks   prometheus.Counter
	ocrErrors      prometheus.Counter
	ocrLatency     prometheus.Histogram

	// Buffer metrics
	dedupDropped prometheus.Counter
	bufferSize   prometheus.Gauge
	exports      *prometheus.CounterVec

	// Queue metrics
	queueSize     prometheus.Gauge
	queueCapacity prometheus.Gauge
	queueRejected prometheus.Counter

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error metrics
	errorsByComponent *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// Init rebuilds the global manager from opts on a fresh registry, which
// GetRegistry then returns. Call it at startup before anything records.
func Init(opts ...Option) *Manager {
	registry := prometheus.NewRegistry()
	m := NewManager(append([]Option{WithPrometheusRegistry(registry)}, opts...)...)
	customRegistry = registry
	globalManager = m
	return m
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "gunsmoke",
		subsystem:        "scanner",
		histogramBuckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		enabled:          true,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)

	m.capturesStarted = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("captures_started_total"),
		Help:        "Capture cycles accepted for processing",
		ConstLabels: labels,
	})

	m.capturesCompleted = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("captures_completed_total"),
		Help:        "Capture cycles that ran to completion",
		ConstLabels: labels,
	})

	m.capturesRejected = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("captures_rejected_total"),
		Help:        "Capture requests refused, by reason",
		ConstLabels: labels,
	}, []string{"reason"})

	m.cycleDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("cycle_duration_milliseconds"),
		Help:        "Wall time of a full capture cycle in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	})

	m.rowsTotal = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("rows_total"),
		Help:        "Leaderboard rows processed, by outcome",
		ConstLabels: labels,
	}, []string{"status"})

	m.regionFailures = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("region_failures_total"),
		Help:        "Screen regions that produced no pixels, by field role",
		ConstLabels: labels,
	}, []string{"field"})

	m.ocrAttempts = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("ocr_attempts_total"),
		Help:        "OCR attempts, by preprocessing mode",
		ConstLabels: labels,
	}, []string{"mode"})

	m.ocrFallbacks = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("ocr_fallbacks_total"),
		Help:        "Extractions that needed a fallback attempt",
		ConstLabels: labels,
	})

	m.ocrErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("ocr_errors_total"),
		Help:        "OCR engine or preprocessing failures",
		ConstLabels: labels,
	})

	m.ocrLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("ocr_latency_milliseconds"),
		Help:        "Latency of a single OCR engine call in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	})

	m.dedupDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("dedup_dropped_total"),
		Help:        "Batch entries dropped because the nickname was recently captured",
		ConstLabels: labels,
	})

	m.bufferSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("buffer_records"),
		Help:        "Records currently held in the capture buffer",
		ConstLabels: labels,
	})

	m.exports = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("exports_total"),
		Help:        "Export snapshots produced, by format",
		ConstLabels: labels,
	}, []string{"format"})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("queue_size"),
		Help:        "Capture jobs waiting for the worker",
		ConstLabels: labels,
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("queue_capacity"),
		Help:        "Maximum number of pending capture jobs",
		ConstLabels: labels,
	})

	m.queueRejected = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("queue_rejected_total"),
		Help:        "Capture jobs refused by the queue",
		ConstLabels: labels,
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("http_requests_total"),
		Help:        "Total number of HTTP requests by endpoint and method",
		ConstLabels: labels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("http_request_duration_milliseconds"),
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("errors_total"),
		Help:        "Errors by component and type",
		ConstLabels: labels,
	}, []string{"component", "type"})
}

// RecordCaptureStarted counts an accepted capture cycle.
func RecordCaptureStarted() {
	if globalManager.enabled {
		globalManager.capturesStarted.Inc()
	}
}

// RecordCaptureCompleted counts a finished cycle and its duration.
func RecordCaptureCompleted(durationMs float64) {
	if globalManager.enabled {
		globalManager.capturesCompleted.Inc()
		globalManager.cycleDuration.Observe(durationMs)
	}
}

// RecordCaptureRejected counts a refused capture request.
func RecordCaptureRejected(reason string) {
	if globalManager.enabled {
		globalManager.capturesRejected.WithLabelValues(reason).Inc()
	}
}

// RecordRow counts a processed row by its outcome.
func RecordRow(status string) {
	if globalManager.enabled {
		globalManager.rowsTotal.WithLabelValues(status).Inc()
	}
}

// RecordRegionFailure counts a region that produced no pixels.
func RecordRegionFailure(field string) {
	if globalManager.enabled {
		globalManager.regionFailures.WithLabelValues(field).Inc()
	}
}

// RecordOCRAttempt counts one OCR attempt and its latency.
func RecordOCRAttempt(mode string, latencyMs float64) {
	if globalManager.enabled {
		globalManager.ocrAttempts.WithLabelValues(mode).Inc()
		globalManager.ocrLatency.Observe(latencyMs)
	}
}

// RecordOCRFallback counts an extraction that went past its first attempt.
func RecordOCRFallback() {
	if globalManager.enabled {
		globalManager.ocrFallbacks.Inc()
	}
}

// RecordOCRError counts a swallowed preprocessing or engine failure.
func RecordOCRError() {
	if globalManager.enabled {
		globalManager.ocrErrors.Inc()
	}
}

// RecordDedupDropped adds n dropped batch entries.
func RecordDedupDropped(n int) {
	if globalManager.enabled && n > 0 {
		globalManager.dedupDropped.Add(float64(n))
	}
}

// UpdateBufferSize sets the buffer gauge.
func UpdateBufferSize(size int) {
	if globalManager.enabled {
		globalManager.bufferSize.Set(float64(size))
	}
}

// RecordExport counts an export snapshot.
func RecordExport(format string) {
	if globalManager.enabled {
		globalManager.exports.WithLabelValues(format).Inc()
	}
}

// UpdateQueueSize sets the pending job gauge.
func UpdateQueueSize(size int) {
	if globalManager.enabled {
		globalManager.queueSize.Set(float64(size))
	}
}

// UpdateQueueCapacity sets the queue capacity gauge.
func UpdateQueueCapacity(capacity int) {
	if globalManager.enabled {
		globalManager.queueCapacity.Set(float64(capacity))
	}
}

// RecordQueueRejected counts a job the queue refused.
func RecordQueueRejected() {
	if globalManager.enabled {
		globalManager.queueRejected.Inc()
	}
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if globalManager.enabled {
		globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	}
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if globalManager.enabled {
		globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
	}
}

// RecordErrorByComponent records errors by component and type.
func RecordErrorByComponent(component, errorType string) {
	if globalManager.enabled {
		globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
	}
}

// GetRegistry returns the custom registry for metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
