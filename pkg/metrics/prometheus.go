// Package metrics provides Prometheus metrics for the artrank engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus collectors for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Ingestion
	eventsAccepted prometheus.Counter
	eventsRejected *prometheus.CounterVec
	logAppends     *prometheus.CounterVec
	journalDepth   prometheus.Gauge

	// Aggregate store
	trackedEntities   prometheus.Gauge
	compactionDropped prometheus.Counter
	snapshotCount     prometheus.Counter
	snapshotDuration  prometheus.Histogram
	snapshotLastUnix  prometheus.Gauge

	// Ranking
	rankRebuilds        prometheus.Counter
	rankRebuildDuration prometheus.Histogram

	// Flash window
	flashScans        prometheus.Counter
	flashScanDuration prometheus.Histogram
	flashSkippedLines prometheus.Counter

	// Rate limiting
	rateLimitRejections prometheus.Counter
	rateLimitKeys       prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "artrank",
		subsystem:        "engine",
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

	m.eventsAccepted = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "events_accepted_total",
		Help: "Events accepted by the ingestion boundary.",
	})
	m.eventsRejected = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "events_rejected_total",
		Help: "Events rejected by the ingestion boundary, by reason.",
	}, []string{"reason"})
	m.logAppends = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "log_appends_total",
		Help: "Event log append attempts, by outcome.",
	}, []string{"outcome"})
	m.journalDepth = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "journal_depth",
		Help: "Events waiting in the append journal.",
	})

	m.trackedEntities = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "tracked_entities",
		Help: "Entity aggregates currently held in memory.",
	})
	m.compactionDropped = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "compaction_dropped_total",
		Help: "Aggregates dropped by top-K compaction.",
	})
	m.snapshotCount = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "snapshots_total",
		Help: "Aggregate snapshots written.",
	})
	m.snapshotDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "snapshot_duration_ms",
		Help:    "Snapshot write duration in milliseconds.",
		Buckets: m.histogramBuckets,
	})
	m.snapshotLastUnix = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "snapshot_last_unix",
		Help: "Unix timestamp of the last successful snapshot.",
	})

	m.rankRebuilds = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "rank_rebuilds_total",
		Help: "Full rank index rebuilds.",
	})
	m.rankRebuildDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "rank_rebuild_duration_ms",
		Help:    "Rank index rebuild duration in milliseconds.",
		Buckets: m.histogramBuckets,
	})

	m.flashScans = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "flash_scans_total",
		Help: "Flash-window tail scans.",
	})
	m.flashScanDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "flash_scan_duration_ms",
		Help:    "Flash-window scan duration in milliseconds.",
		Buckets: m.histogramBuckets,
	})
	m.flashSkippedLines = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "flash_skipped_lines_total",
		Help: "Malformed event log lines skipped during flash scans.",
	})

	m.rateLimitRejections = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "rate_limit_rejections_total",
		Help: "Submissions rejected by the rate limiter.",
	})
	m.rateLimitKeys = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "rate_limit_keys",
		Help: "Distinct submitter keys tracked by the rate limiter.",
	})

	m.httpRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: "http",
		Name: "requests_total",
		Help: "HTTP requests by endpoint, method and status.",
	}, []string{"endpoint", "method", "status"})
	m.httpRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: "http",
		Name:    "request_duration_ms",
		Help:    "HTTP request duration in milliseconds.",
		Buckets: m.histogramBuckets,
	}, []string{"endpoint", "method"})

	m.systemMemoryUsage = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: "system",
		Name: "memory_bytes",
		Help: "Current heap allocation in bytes.",
	})
	m.systemGoroutineCount = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: "system",
		Name: "goroutines",
		Help: "Current goroutine count.",
	})
}

// GetRegistry exposes the registry backing the global manager for the
// /healthz metrics handler.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Package-level helpers recording against the global manager.

func RecordEventAccepted() { globalManager.eventsAccepted.Inc() }
func RecordEventRejected(reason string) {
	globalManager.eventsRejected.WithLabelValues(reason).Inc()
}
func RecordLogAppend(outcome string) { globalManager.logAppends.WithLabelValues(outcome).Inc() }
func UpdateJournalDepth(n int)       { globalManager.journalDepth.Set(float64(n)) }

func UpdateTrackedEntities(n int)   { globalManager.trackedEntities.Set(float64(n)) }
func RecordCompactionDropped(n int) { globalManager.compactionDropped.Add(float64(n)) }
func RecordSnapshot(durationMs float64, atUnix int64) {
	globalManager.snapshotCount.Inc()
	globalManager.snapshotDuration.Observe(durationMs)
	globalManager.snapshotLastUnix.Set(float64(atUnix))
}

func RecordRankRebuild(durationMs float64) {
	globalManager.rankRebuilds.Inc()
	globalManager.rankRebuildDuration.Observe(durationMs)
}

func RecordFlashScan(durationMs float64, skipped int) {
	globalManager.flashScans.Inc()
	globalManager.flashScanDuration.Observe(durationMs)
	globalManager.flashSkippedLines.Add(float64(skipped))
}

func RecordRateLimited()        { globalManager.rateLimitRejections.Inc() }
func UpdateRateLimitKeys(n int) { globalManager.rateLimitKeys.Set(float64(n)) }

func RecordHTTPRequest(endpoint, method, status string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}
func RecordHTTPRequestDuration(endpoint, method string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method).Observe(durationMs)
}

func UpdateSystemMemoryUsage(bytes uint64) { globalManager.systemMemoryUsage.Set(float64(bytes)) }
func UpdateSystemGoroutineCount(n int)     { globalManager.systemGoroutineCount.Set(float64(n)) }
