// Package analysis determines what each file in a repository is: its
// type, language and purpose. The TypeAnalyzer hashes file content,
// consults a cache for a previous verdict, and falls back to a heuristic
// classifier over the file's leading bytes. Analysis never fails a scan:
// an unreadable file yields a sentinel record rather than an error.
package analysis

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/o2alexanderfedin/RecreateDocsFromRepo-sub000/internal/cache"
	"github.com/o2alexanderfedin/RecreateDocsFromRepo-sub000/internal/domain"
	"github.com/o2alexanderfedin/RecreateDocsFromRepo-sub000/internal/logging"
	"github.com/o2alexanderfedin/RecreateDocsFromRepo-sub000/internal/metrics"
)

// Analyzer produces a classification record for one file.
type Analyzer interface {
	Analyze(ctx context.Context, path string) (domain.Analysis, error)
}

// Store is the slice of the cache surface the analyzer needs. Both a
// single cache.Provider and a tiered cache.Manager satisfy it.
type Store interface {
	Get(ctx context.Context, key string) (domain.Analysis, error)
	Set(ctx context.Context, key string, value domain.Analysis) error
}

// CacheStats summarizes one analyzer session's cache activity. These are
// session counts, distinct from the lifetime counters the tiers keep.
type CacheStats struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Hits    uint64 `json:"hits" yaml:"hits"`
	Misses  uint64 `json:"misses" yaml:"misses"`
	Stores  uint64 `json:"stores" yaml:"stores"`
}

// TypeAnalyzer classifies files, serving repeat content from the cache.
// Safe for concurrent use.
type TypeAnalyzer struct {
	classifier Classifier
	store      Store
	maxBytes   int64

	hits   atomic.Uint64
	misses atomic.Uint64
	stores atomic.Uint64
}

// NewTypeAnalyzer builds an analyzer. A nil classifier defaults to the
// heuristic one; a nil store disables caching entirely.
func NewTypeAnalyzer(classifier Classifier, store Store) *TypeAnalyzer {
	if classifier == nil {
		classifier = HeuristicClassifier{}
	}
	return &TypeAnalyzer{
		classifier: classifier,
		store:      store,
		maxBytes:   DefaultMaxBytes,
	}
}

// Analyze classifies the file at path. The content hash is the cache key,
// so identical files anywhere in the repository share one cached verdict.
// A file that cannot be read produces a sentinel record and a nil error;
// sentinel records are never written back to the cache.
func (a *TypeAnalyzer) Analyze(ctx context.Context, path string) (domain.Analysis, error) {
	start := time.Now()

	var key string
	if a.store != nil {
		key = CacheKey(path)
		cached, err := a.store.Get(ctx, key)
		if err == nil {
			a.hits.Add(1)
			logging.Op().Debug("analysis cache hit", "path", path)
			metrics.Global().RecordAnalysis(cached.Language, time.Since(start).Milliseconds(), true, true)
			return cached, nil
		}
		if !errors.Is(err, cache.ErrNotFound) {
			logging.Op().Warn("analysis cache read failed", "path", path, "error", err)
		}
		a.misses.Add(1)
	}

	content, err := ReadCapped(path, a.maxBytes)
	if err != nil {
		logging.Op().Warn("file analysis failed", "path", path, "error", err)
		result := domain.ErrorAnalysis(err.Error())
		metrics.Global().RecordAnalysis(result.Language, time.Since(start).Milliseconds(), false, false)
		return result, nil
	}

	result := a.classifier.Classify(path, content)

	if a.store != nil && !result.IsError() {
		if err := a.store.Set(ctx, key, result); err != nil {
			logging.Op().Warn("analysis cache write failed", "path", path, "error", err)
		} else {
			a.stores.Add(1)
			logging.Op().Debug("analysis cached", "path", path)
		}
	}

	metrics.Global().RecordAnalysis(result.Language, time.Since(start).Milliseconds(), false, !result.IsError())
	return result, nil
}

// CacheStats reports the session's hit, miss and store counts.
func (a *TypeAnalyzer) CacheStats() CacheStats {
	return CacheStats{
		Enabled: a.store != nil,
		Hits:    a.hits.Load(),
		Misses:  a.misses.Load(),
		Stores:  a.stores.Load(),
	}
}
