package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusMetrics wraps prometheus collectors for scanner metrics
type PrometheusMetrics struct {
	registry *prometheus.Registry

	// Counters
	analysesTotal  *prometheus.CounterVec
	cacheServed    prometheus.Counter
	freshAnalyses  prometheus.Counter
	filesExcluded  prometheus.Counter
	scansTotal     *prometheus.CounterVec

	// Histograms
	analysisDuration *prometheus.HistogramVec
	scanDuration     prometheus.Histogram

	// Gauges
	uptime       prometheus.GaugeFunc
	activeScans  prometheus.Gauge
	cacheOps     *prometheus.GaugeVec
	cacheEntries *prometheus.GaugeVec
	cacheHitRate *prometheus.GaugeVec
}

// Default histogram buckets for per-file analysis duration (in milliseconds)
var defaultBuckets = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000}

// Buckets for whole-scan duration (in milliseconds)
var scanBuckets = []float64{10, 50, 100, 500, 1000, 5000, 10000, 30000, 60000, 300000}

var promMetrics *PrometheusMetrics

// CacheTierStats carries one tier's lifetime counters into the gauges.
type CacheTierStats struct {
	Hits        uint64
	Misses      uint64
	Sets        uint64
	Evictions   uint64
	Expirations uint64
	Size        int
	HitRate     float64
}

// InitPrometheus initializes the Prometheus metrics subsystem
func InitPrometheus(namespace string, buckets []float64) {
	if len(buckets) == 0 {
		buckets = defaultBuckets
	}

	registry := prometheus.NewRegistry()
	// Register default Go and process collectors
	registry.MustRegister(prometheus.NewGoCollector())
	registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	pm := &PrometheusMetrics{
		registry: registry,

		analysesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "analyses_total",
				Help:      "Total number of file analyses",
			},
			[]string{"language", "status"},
		),

		cacheServed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "analyses_from_cache_total",
				Help:      "Total analyses served from the cache hierarchy",
			},
		),

		freshAnalyses: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "analyses_fresh_total",
				Help:      "Total analyses computed from file content",
			},
		),

		filesExcluded: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "files_excluded_total",
				Help:      "Total files dropped by exclusion and size filters",
			},
		),

		scansTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "scans_total",
				Help:      "Total repository scans by outcome",
			},
			[]string{"status"},
		),

		analysisDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "analysis_duration_milliseconds",
				Help:      "Duration of per-file analysis in milliseconds",
				Buckets:   buckets,
			},
			[]string{"language", "from_cache"},
		),

		scanDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "scan_duration_milliseconds",
				Help:      "Duration of whole repository scans in milliseconds",
				Buckets:   scanBuckets,
			},
		),

		activeScans: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "active_scans",
				Help:      "Number of repository scans currently running",
			},
		),

		cacheOps: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "cache_operations",
				Help:      "Lifetime cache operation counters by tier and operation",
			},
			[]string{"tier", "op"},
		),

		cacheEntries: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "cache_entries",
				Help:      "Current number of entries by cache tier",
			},
			[]string{"tier"},
		),

		cacheHitRate: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "cache_hit_rate",
				Help:      "Lifetime hit rate by cache tier",
			},
			[]string{"tier"},
		),
	}

	pm.uptime = prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "uptime_seconds",
			Help:      "Time since the scanner process started",
		},
		func() float64 {
			return time.Since(StartTime()).Seconds()
		},
	)

	registry.MustRegister(
		pm.analysesTotal,
		pm.cacheServed,
		pm.freshAnalyses,
		pm.filesExcluded,
		pm.scansTotal,
		pm.analysisDuration,
		pm.scanDuration,
		pm.uptime,
		pm.activeScans,
		pm.cacheOps,
		pm.cacheEntries,
		pm.cacheHitRate,
	)

	promMetrics = pm
}

// RecordPrometheusAnalysis records a file analysis in Prometheus collectors
func RecordPrometheusAnalysis(language string, durationMs int64, fromCache, success bool) {
	if promMetrics == nil {
		return
	}

	status := "success"
	if !success {
		status = "failed"
	}
	promMetrics.analysesTotal.WithLabelValues(language, status).Inc()

	if fromCache {
		promMetrics.cacheServed.Inc()
	} else {
		promMetrics.freshAnalyses.Inc()
	}

	cachedLabel := "false"
	if fromCache {
		cachedLabel = "true"
	}
	promMetrics.analysisDuration.WithLabelValues(language, cachedLabel).Observe(float64(durationMs))
}

// RecordPrometheusExclusions records excluded files in Prometheus
func RecordPrometheusExclusions(n int) {
	if promMetrics == nil {
		return
	}
	promMetrics.filesExcluded.Add(float64(n))
}

// RecordPrometheusScanStarted marks a scan as running
func RecordPrometheusScanStarted() {
	if promMetrics == nil {
		return
	}
	promMetrics.activeScans.Inc()
}

// RecordPrometheusScanCompleted records a finished scan
func RecordPrometheusScanCompleted(durationMs int64, success bool) {
	if promMetrics == nil {
		return
	}
	promMetrics.activeScans.Dec()
	status := "success"
	if !success {
		status = "failed"
	}
	promMetrics.scansTotal.WithLabelValues(status).Inc()
	promMetrics.scanDuration.Observe(float64(durationMs))
}

// PublishCacheStats mirrors one tier's lifetime counters into the gauges.
// Called with fresh snapshots after scans and on stats requests.
func PublishCacheStats(tier string, s CacheTierStats) {
	if promMetrics == nil {
		return
	}
	promMetrics.cacheOps.WithLabelValues(tier, "hits").Set(float64(s.Hits))
	promMetrics.cacheOps.WithLabelValues(tier, "misses").Set(float64(s.Misses))
	promMetrics.cacheOps.WithLabelValues(tier, "sets").Set(float64(s.Sets))
	promMetrics.cacheOps.WithLabelValues(tier, "evictions").Set(float64(s.Evictions))
	promMetrics.cacheOps.WithLabelValues(tier, "expirations").Set(float64(s.Expirations))
	promMetrics.cacheEntries.WithLabelValues(tier).Set(float64(s.Size))
	promMetrics.cacheHitRate.WithLabelValues(tier).Set(s.HitRate)
}

// PrometheusHandler returns an HTTP handler for Prometheus metrics scraping
func PrometheusHandler() http.Handler {
	if promMetrics == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("prometheus metrics not initialized"))
		})
	}
	return promhttp.HandlerFor(promMetrics.registry, promhttp.HandlerOpts{})
}

// PrometheusRegistry returns the prometheus registry (for custom collectors)
func PrometheusRegistry() *prometheus.Registry {
	if promMetrics == nil {
		return nil
	}
	return promMetrics.registry
}
