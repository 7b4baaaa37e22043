package metrics

import (
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics collects and exposes scanner runtime metrics
type Metrics struct {
	// Scan metrics
	ScansStarted   atomic.Int64
	ScansCompleted atomic.Int64
	ScansFailed    atomic.Int64

	// File metrics
	FilesAnalyzed atomic.Int64
	FilesCached   atomic.Int64 // analyses served from cache
	FilesFresh    atomic.Int64 // analyses computed from content
	FilesErrored  atomic.Int64
	FilesExcluded atomic.Int64

	// Per-file analysis latency (in milliseconds)
	TotalAnalysisMs atomic.Int64
	MinAnalysisMs   atomic.Int64
	MaxAnalysisMs   atomic.Int64

	// Per-language metrics
	langMetrics sync.Map // language -> *LanguageMetrics

	startTime time.Time
}

// LanguageMetrics tracks metrics for a single detected language
type LanguageMetrics struct {
	Analyses atomic.Int64
	Errors   atomic.Int64
	TotalMs  atomic.Int64
}

// Global metrics instance
var global = &Metrics{startTime: time.Now()}

func init() {
	global.MinAnalysisMs.Store(int64(^uint64(0) >> 1)) // Max int64
}

// Global returns the global metrics instance
func Global() *Metrics {
	return global
}

// StartTime returns the time when the metrics system was initialized
func StartTime() time.Time {
	return global.startTime
}

// RecordAnalysis records one file analysis result
func (m *Metrics) RecordAnalysis(language string, durationMs int64, fromCache, success bool) {
	m.FilesAnalyzed.Add(1)

	if fromCache {
		m.FilesCached.Add(1)
	} else {
		m.FilesFresh.Add(1)
	}
	if !success {
		m.FilesErrored.Add(1)
	}

	m.TotalAnalysisMs.Add(durationMs)
	updateMin(&m.MinAnalysisMs, durationMs)
	updateMax(&m.MaxAnalysisMs, durationMs)

	lm := m.getLanguageMetrics(language)
	lm.Analyses.Add(1)
	if !success {
		lm.Errors.Add(1)
	}
	lm.TotalMs.Add(durationMs)

	// Prometheus bridge
	RecordPrometheusAnalysis(language, durationMs, fromCache, success)
}

// RecordExclusions records files dropped by discovery filters
func (m *Metrics) RecordExclusions(n int) {
	if n <= 0 {
		return
	}
	m.FilesExcluded.Add(int64(n))
	RecordPrometheusExclusions(n)
}

// RecordScanStarted records the start of a repository scan
func (m *Metrics) RecordScanStarted() {
	m.ScansStarted.Add(1)
	RecordPrometheusScanStarted()
}

// RecordScanCompleted records the end of a repository scan
func (m *Metrics) RecordScanCompleted(durationMs int64, success bool) {
	if success {
		m.ScansCompleted.Add(1)
	} else {
		m.ScansFailed.Add(1)
	}
	RecordPrometheusScanCompleted(durationMs, success)
}

func (m *Metrics) getLanguageMetrics(language string) *LanguageMetrics {
	if v, ok := m.langMetrics.Load(language); ok {
		return v.(*LanguageMetrics)
	}

	lm := &LanguageMetrics{}
	actual, _ := m.langMetrics.LoadOrStore(language, lm)
	return actual.(*LanguageMetrics)
}

// Snapshot returns a point-in-time snapshot of all metrics
func (m *Metrics) Snapshot() map[string]interface{} {
	analyzed := m.FilesAnalyzed.Load()
	avgMs := float64(0)
	if analyzed > 0 {
		avgMs = float64(m.TotalAnalysisMs.Load()) / float64(analyzed)
	}

	minMs := m.MinAnalysisMs.Load()
	if minMs == int64(^uint64(0)>>1) {
		minMs = 0
	}

	return map[string]interface{}{
		"uptime_seconds": int64(time.Since(m.startTime).Seconds()),
		"scans": map[string]interface{}{
			"started":   m.ScansStarted.Load(),
			"completed": m.ScansCompleted.Load(),
			"failed":    m.ScansFailed.Load(),
		},
		"files": map[string]interface{}{
			"analyzed":   analyzed,
			"from_cache": m.FilesCached.Load(),
			"fresh":      m.FilesFresh.Load(),
			"errored":    m.FilesErrored.Load(),
			"excluded":   m.FilesExcluded.Load(),
			"cached_pct": cachedPercentage(m.FilesCached.Load(), analyzed),
		},
		"analysis_ms": map[string]interface{}{
			"avg": avgMs,
			"min": minMs,
			"max": m.MaxAnalysisMs.Load(),
		},
	}
}

// LanguageStats returns per-language metrics
func (m *Metrics) LanguageStats() map[string]interface{} {
	result := make(map[string]interface{})

	m.langMetrics.Range(func(key, value interface{}) bool {
		language := key.(string)
		lm := value.(*LanguageMetrics)

		total := lm.Analyses.Load()
		avgMs := float64(0)
		if total > 0 {
			avgMs = float64(lm.TotalMs.Load()) / float64(total)
		}

		result[language] = map[string]interface{}{
			"analyses": total,
			"errors":   lm.Errors.Load(),
			"avg_ms":   avgMs,
		}
		return true
	})

	return result
}

// JSONHandler returns an HTTP handler that exposes metrics in JSON format
func (m *Metrics) JSONHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		result := m.Snapshot()
		result["languages"] = m.LanguageStats()
		json.NewEncoder(w).Encode(result)
	})
}

// Helper functions

func updateMin(target *atomic.Int64, value int64) {
	for {
		old := target.Load()
		if value >= old {
			return
		}
		if target.CompareAndSwap(old, value) {
			return
		}
	}
}

func updateMax(target *atomic.Int64, value int64) {
	for {
		old := target.Load()
		if value <= old {
			return
		}
		if target.CompareAndSwap(old, value) {
			return
		}
	}
}

func cachedPercentage(cached, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(cached) / float64(total) * 100
}
