// Package metrics provides Prometheus metrics for the arena matchmaking service.
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

// defaultRiskScoreBuckets cover the 0..100 fraud risk range.
var defaultRiskScoreBuckets = []float64{0, 5, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100} //nolint:gochecknoglobals // fixed bucket layout

// Manager manages all Prometheus metrics for the arena service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	riskBuckets      []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Registry metrics
	profilesRegistered prometheus.Counter
	profilesRemoved    prometheus.Counter
	profilesTotal      prometheus.Gauge

	// Match result metrics
	resultsProcessed  prometheus.Counter
	resultsDuplicate  prometheus.Counter
	resultsFailed     prometheus.Counter
	ratingUpdates     prometheus.Counter
	ratingUpdateDelta prometheus.Histogram

	// Matchmaking query metrics
	matchQueries      prometheus.Counter
	matchQueryLatency prometheus.Histogram
	matchCandidates   prometheus.Histogram

	// Clustering metrics
	clusterRebuilds        prometheus.Counter
	clusterRebuildsSkipped prometheus.Counter
	clusterRebuildDuration prometheus.Histogram
	clusterCount           prometheus.Gauge

	// Fraud metrics
	fraudAnalyses  prometheus.Counter
	fraudRiskScore prometheus.Histogram
	fraudSignals   *prometheus.CounterVec

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Leaderboard Metrics
	leaderboardRecords       prometheus.Gauge
	leaderboardUpdateLatency prometheus.Histogram
	leaderboardQueryLatency  prometheus.Histogram

	// Queue Metrics
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueueTotal  prometheus.Counter
	queueDequeueTotal  prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Worker Metrics
	workerCount             prometheus.Gauge
	workerMessagesPerSecond prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// Error Metrics
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

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "arena",
		subsystem:        "matchmaking",
		histogramBuckets: prometheus.DefBuckets,
		riskBuckets:      defaultRiskScoreBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// name applies the optional metric prefix.
func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help,
		ConstLabels: m.customLabels, Buckets: buckets,
	})
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.profilesRegistered = m.counter("profiles_registered_total", "Total number of profile registrations (including overwrites)")
	m.profilesRemoved = m.counter("profiles_removed_total", "Total number of profiles removed")
	m.profilesTotal = m.gauge("profiles", "Current number of registered profiles")

	m.resultsProcessed = m.counter("match_results_processed_total", "Total number of match results applied to ratings")
	m.resultsDuplicate = m.counter("match_results_duplicate_total", "Total number of duplicate match results ignored")
	m.resultsFailed = m.counter("match_results_failed_total", "Total number of match results that could not be applied")
	m.ratingUpdates = m.counter("rating_updates_total", "Total number of individual player rating changes")
	m.ratingUpdateDelta = m.histogram("rating_update_delta", "Absolute Elo rating change per player per match",
		[]float64{1, 2, 4, 8, 12, 16, 20, 24, 32, 48})

	m.matchQueries = m.counter("match_queries_total", "Total number of find-matches queries")
	m.matchQueryLatency = m.histogram("match_query_latency_milliseconds", "Find-matches latency in milliseconds", m.histogramBuckets)
	m.matchCandidates = m.histogram("match_candidates", "Number of candidates returned per query",
		[]float64{0, 1, 2, 5, 10, 20, 50, 100})

	m.clusterRebuilds = m.counter("cluster_rebuilds_total", "Total number of completed cluster rebuilds")
	m.clusterRebuildsSkipped = m.counter("cluster_rebuilds_skipped_total", "Total number of rebuilds skipped for insufficient profiles")
	m.clusterRebuildDuration = m.histogram("cluster_rebuild_duration_milliseconds", "Cluster rebuild duration in milliseconds", m.histogramBuckets)
	m.clusterCount = m.gauge("cluster_count", "Number of centroids currently in use")

	m.fraudAnalyses = m.counter("fraud_analyses_total", "Total number of fraud analyses performed")
	m.fraudRiskScore = m.histogram("fraud_risk_score", "Distribution of fraud risk scores", m.riskBuckets)
	m.fraudSignals = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name("fraud_signals_total"),
		Help: "Total number of fraud signals emitted by name", ConstLabels: m.customLabels,
	}, []string{"signal"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name("http_requests_total"),
		Help: "Total number of HTTP requests by endpoint and method", ConstLabels: m.customLabels,
	}, []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name("http_request_duration_milliseconds"),
		Help: "HTTP request duration in milliseconds", ConstLabels: m.customLabels, Buckets: m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.leaderboardRecords = m.gauge("leaderboard_records", "Number of players in the rating leaderboard")
	m.leaderboardUpdateLatency = m.histogram("leaderboard_update_latency_milliseconds", "Leaderboard upsert latency in milliseconds", m.histogramBuckets)
	m.leaderboardQueryLatency = m.histogram("leaderboard_query_latency_milliseconds", "Leaderboard query latency in milliseconds", m.histogramBuckets)

	m.queueSize = m.gauge("queue_size", "Current size of the match result queue (backlog indicator)")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum queue capacity")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Queue utilization ratio (current size / capacity)")
	m.queueEnqueueTotal = m.counter("queue_enqueue_total", "Total number of messages enqueued")
	m.queueDequeueTotal = m.counter("queue_dequeue_total", "Total number of messages dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Total number of enqueue errors")

	m.workerCount = m.gauge("worker_count", "Current number of result workers")
	m.workerMessagesPerSecond = m.gauge("worker_messages_per_second", "Average results processed per second by workers")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds", "Worker processing latency in milliseconds", m.histogramBuckets)
	m.workerErrors = m.counter("worker_errors_total", "Total number of worker errors")

	m.errorRateByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name("errors_by_component_total"),
		Help: "Total number of errors by component", ConstLabels: m.customLabels,
	}, []string{"component", "error_type"})
	m.errorRateByType = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name("errors_by_type_total"),
		Help: "Total number of errors by type", ConstLabels: m.customLabels,
	}, []string{"error_type", "severity"})
	m.errorRateByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name("errors_by_endpoint_total"),
		Help: "Total number of errors by endpoint", ConstLabels: m.customLabels,
	}, []string{"endpoint", "method", "error_type"})
	m.errorLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name("error_latency_milliseconds"),
		Help: "Latency of operations that resulted in errors", ConstLabels: m.customLabels, Buckets: m.histogramBuckets,
	}, []string{"component", "error_type"})

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000})
}

// Enabled reports whether recording is switched on for the manager.
func (m *Manager) Enabled() bool { return m.enabled }

// RefreshInterval is how often gauge updaters should run.
func (m *Manager) RefreshInterval() time.Duration { return m.refreshInterval }

// RefreshInterval returns the global manager's gauge refresh interval.
func RefreshInterval() time.Duration { return globalManager.refreshInterval }

// Registry metrics.

// RecordProfileRegistered increments the registration counter.
func RecordProfileRegistered() {
	globalManager.profilesRegistered.Inc()
}

// RecordProfileRemoved increments the removal counter.
func RecordProfileRemoved() {
	globalManager.profilesRemoved.Inc()
}

// UpdateProfilesTotal sets the registered profile count.
func UpdateProfilesTotal(count int) {
	globalManager.profilesTotal.Set(float64(count))
}

// Match result metrics.

// RecordResultProcessed increments the applied match result counter.
func RecordResultProcessed() {
	globalManager.resultsProcessed.Inc()
}

// RecordResultDuplicate increments the duplicate match result counter.
func RecordResultDuplicate() {
	globalManager.resultsDuplicate.Inc()
}

// RecordResultFailed increments the failed match result counter.
func RecordResultFailed() {
	globalManager.resultsFailed.Inc()
}

// RecordRatingUpdate records one player's rating change.
func RecordRatingUpdate(delta float64) {
	if delta < 0 {
		delta = -delta
	}
	globalManager.ratingUpdates.Inc()
	globalManager.ratingUpdateDelta.Observe(delta)
}

// Matchmaking metrics.

// RecordMatchQuery records a find-matches query with its latency and result size.
func RecordMatchQuery(latencyMs float64, candidates int) {
	globalManager.matchQueries.Inc()
	globalManager.matchQueryLatency.Observe(latencyMs)
	globalManager.matchCandidates.Observe(float64(candidates))
}

// RecordClusterRebuild records a completed rebuild.
func RecordClusterRebuild(durationMs float64, clusters int) {
	globalManager.clusterRebuilds.Inc()
	globalManager.clusterRebuildDuration.Observe(durationMs)
	globalManager.clusterCount.Set(float64(clusters))
}

// RecordClusterRebuildSkipped records a rebuild skipped for lack of data.
func RecordClusterRebuildSkipped() {
	globalManager.clusterRebuildsSkipped.Inc()
}

// Fraud metrics.

// RecordFraudAnalysis records one analysis and the names of its signals.
func RecordFraudAnalysis(riskScore int, signals []string) {
	globalManager.fraudAnalyses.Inc()
	globalManager.fraudRiskScore.Observe(float64(riskScore))
	for _, s := range signals {
		globalManager.fraudSignals.WithLabelValues(s).Inc()
	}
}

// HTTP metrics.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Leaderboard metrics.

// UpdateLeaderboardRecords sets the number of ranked players.
func UpdateLeaderboardRecords(count int) {
	globalManager.leaderboardRecords.Set(float64(count))
}

// RecordLeaderboardUpdateLatency records upsert latency.
func RecordLeaderboardUpdateLatency(latencyMs float64) {
	globalManager.leaderboardUpdateLatency.Observe(latencyMs)
}

// RecordLeaderboardQueryLatency records rank/top-N latency.
func RecordLeaderboardQueryLatency(latencyMs float64) {
	globalManager.leaderboardQueryLatency.Observe(latencyMs)
}

// Queue metrics.

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueueTotal.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeueTotal.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// Worker metrics.

// UpdateWorkerCount sets the current worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// UpdateWorkerMessagesPerSecond sets the average messages processed per second.
func UpdateWorkerMessagesPerSecond(rate float64) {
	globalManager.workerMessagesPerSecond.Set(rate)
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// Error metrics.

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

// System metrics.

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
