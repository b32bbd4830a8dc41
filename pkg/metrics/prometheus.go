// Package metrics provides Prometheus metrics for the podium record tracker.
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

// Manager manages all Prometheus metrics for the podium scanner.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Feed Scan Metrics - progress of one poll over the remote feed
	pagesFetched    prometheus.Counter
	attemptsSeen    prometheus.Counter
	attemptsSkipped *prometheus.CounterVec
	scanStops       *prometheus.CounterVec
	highWaterEpoch  prometheus.Gauge

	// Partition Metrics - rank-1 filtering and cache effectiveness
	partitionsInvestigated prometheus.Counter
	rankCacheHits          prometheus.Counter
	rankCacheMisses        prometheus.Counter

	// API Client Metrics - upstream request volume and latency
	apiRequests        *prometheus.CounterVec
	apiRequestDuration *prometheus.HistogramVec
	apiRetries         prometheus.Counter

	// Record Log Metrics - journal growth and hygiene
	eventsAppended       prometheus.Counter
	timestampsBackfilled prometheus.Counter
	eventsPruned         prometheus.Counter
	journalSize          prometheus.Gauge

	// Queue Metrics - rebuild job queue performance
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueueRate   prometheus.Counter
	queueDequeueRate   prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Worker Metrics - chain rebuild performance
	workerActiveCount prometheus.Gauge
	rebuildLatency    prometheus.Histogram
	rebuildErrors     prometheus.Counter

	// Run Metrics - batch run outcomes
	runsTotal         prometheus.Counter
	lastRunDurationMs prometheus.Gauge
	lastRunUnix       prometheus.Gauge
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
		namespace:        "podium",
		subsystem:        "scanner",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	// Initialize metrics
	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	// Ensure metrics are registered on the configured registry (custom by default)
	auto := promauto.With(m.registry)

	// Feed Scan Metrics - how far each poll walked the feed
	m.pagesFetched = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "feed_pages_total",
		Help:      "Total number of feed pages fetched",
	})

	m.attemptsSeen = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "attempts_seen_total",
		Help:      "Total number of feed attempts examined",
	})

	m.attemptsSkipped = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "attempts_skipped_total",
			Help:      "Total number of attempts skipped, by reason",
		},
		[]string{"reason"},
	)

	m.scanStops = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "scan_stops_total",
			Help:      "Total number of scan terminations, by stop reason",
		},
		[]string{"reason"},
	)

	m.highWaterEpoch = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "high_water_epoch",
		Help:      "Newest verification epoch observed across all runs",
	})

	// Partition Metrics - rank-1 filtering and cache effectiveness
	m.partitionsInvestigated = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "partitions_investigated_total",
		Help:      "Total number of partitions dispatched for chain rebuild",
	})

	m.rankCacheHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rank_cache_hits_total",
		Help:      "Total number of rank-1 lookups answered from the memo cache",
	})

	m.rankCacheMisses = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rank_cache_misses_total",
		Help:      "Total number of rank-1 lookups that required a remote fetch",
	})

	// API Client Metrics - upstream request volume and latency
	m.apiRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "api_requests_total",
			Help:      "Total number of upstream API requests by endpoint and status",
		},
		[]string{"endpoint", "status_code"},
	)

	m.apiRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "api_request_duration_milliseconds",
			Help:      "Upstream API request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint"},
	)

	m.apiRetries = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "api_retries_total",
		Help:      "Total number of upstream API retries after 429/5xx responses",
	})

	// Record Log Metrics - journal growth and hygiene
	m.eventsAppended = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_appended_total",
		Help:      "Total number of record events appended to the journal",
	})

	m.timestampsBackfilled = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "timestamps_backfilled_total",
		Help:      "Total number of verification timestamps resolved via detail lookups",
	})

	m.eventsPruned = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_pruned_total",
		Help:      "Total number of record events dropped by retention pruning",
	})

	m.journalSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "journal_size",
		Help:      "Current number of record events held in the journal",
	})

	// Queue Metrics - rebuild job queue performance
	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_size",
		Help:      "Current size of the rebuild job queue (backlog indicator)",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_capacity",
		Help:      "Maximum rebuild job queue capacity",
	})

	m.queueEnqueueRate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueue_total",
		Help:      "Total number of rebuild jobs enqueued",
	})

	m.queueDequeueRate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_dequeue_total",
		Help:      "Total number of rebuild jobs dequeued",
	})

	m.queueEnqueueErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueue_errors_total",
		Help:      "Total number of enqueue failures",
	})

	// Worker Metrics - chain rebuild performance
	m.workerActiveCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_active_count",
		Help:      "Number of active rebuild workers",
	})

	m.rebuildLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rebuild_latency_milliseconds",
		Help:      "Histogram of partition chain rebuild latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.rebuildErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rebuild_errors_total",
		Help:      "Total number of partition rebuilds abandoned on error",
	})

	// Run Metrics - batch run outcomes
	m.runsTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "runs_total",
		Help:      "Total number of completed scanner runs",
	})

	m.lastRunDurationMs = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "last_run_duration_milliseconds",
		Help:      "Duration of the last completed run in milliseconds",
	})

	m.lastRunUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "last_run_unix",
		Help:      "Unix timestamp of the last completed run",
	})
}

// Feed Scan Metrics Functions.

// RecordPageFetched increments the feed pages counter.
func RecordPageFetched() {
	globalManager.pagesFetched.Inc()
}

// RecordAttemptSeen increments the attempts seen counter.
func RecordAttemptSeen() {
	globalManager.attemptsSeen.Inc()
}

// RecordAttemptSkipped increments the skipped attempts counter for a reason.
func RecordAttemptSkipped(reason string) {
	globalManager.attemptsSkipped.WithLabelValues(reason).Inc()
}

// RecordScanStop increments the scan stop counter for a reason.
func RecordScanStop(reason string) {
	globalManager.scanStops.WithLabelValues(reason).Inc()
}

// UpdateHighWaterEpoch sets the newest verification epoch observed.
func UpdateHighWaterEpoch(epoch int64) {
	globalManager.highWaterEpoch.Set(float64(epoch))
}

// Partition Metrics Functions.

// RecordPartitionInvestigated increments the investigated partitions counter.
func RecordPartitionInvestigated() {
	globalManager.partitionsInvestigated.Inc()
}

// RecordRankCacheHit increments the rank-1 cache hit counter.
func RecordRankCacheHit() {
	globalManager.rankCacheHits.Inc()
}

// RecordRankCacheMiss increments the rank-1 cache miss counter.
func RecordRankCacheMiss() {
	globalManager.rankCacheMisses.Inc()
}

// API Client Metrics Functions.

// RecordAPIRequest records an upstream API request.
func RecordAPIRequest(endpoint, statusCode string) {
	globalManager.apiRequests.WithLabelValues(endpoint, statusCode).Inc()
}

// RecordAPIRequestDuration records upstream API request duration.
func RecordAPIRequestDuration(endpoint string, durationMs float64) {
	globalManager.apiRequestDuration.WithLabelValues(endpoint).Observe(durationMs)
}

// RecordAPIRetry increments the upstream retry counter.
func RecordAPIRetry() {
	globalManager.apiRetries.Inc()
}

// Record Log Metrics Functions.

// RecordEventAppended increments the appended events counter.
func RecordEventAppended() {
	globalManager.eventsAppended.Inc()
}

// RecordTimestampBackfilled increments the backfilled timestamps counter.
func RecordTimestampBackfilled() {
	globalManager.timestampsBackfilled.Inc()
}

// RecordEventsPruned adds to the pruned events counter.
func RecordEventsPruned(count int) {
	globalManager.eventsPruned.Add(float64(count))
}

// UpdateJournalSize sets the current journal size.
func UpdateJournalSize(size int) {
	globalManager.journalSize.Set(float64(size))
}

// Queue Metrics Functions.

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueueRate.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeueRate.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// Worker Metrics Functions.

// UpdateWorkerActiveCount sets the number of active rebuild workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordRebuildLatency records partition chain rebuild latency.
func RecordRebuildLatency(latencyMs float64) {
	globalManager.rebuildLatency.Observe(latencyMs)
}

// RecordRebuildError increments the rebuild error counter.
func RecordRebuildError() {
	globalManager.rebuildErrors.Inc()
}

// Run Metrics Functions.

// RecordRunCompleted records the outcome of a finished run.
func RecordRunCompleted(durationMs float64) {
	globalManager.runsTotal.Inc()
	globalManager.lastRunDurationMs.Set(durationMs)
	globalManager.lastRunUnix.Set(float64(time.Now().Unix()))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
