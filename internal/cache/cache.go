// Package cache provides tiered storage for file analysis results.
// Four tiers share one Provider contract: a bounded in-process tier, a
// durable embedded-database tier, a directory-of-JSON tier, and a Redis
// tier. A Manager stacks tiers into a read-through hierarchy where reads
// probe fast tiers first and hits propagate back toward the front.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/o2alexanderfedin/RecreateDocsFromRepo-sub000/internal/domain"
)

// ErrNotFound is returned when a key does not exist or has expired.
var ErrNotFound = errors.New("cache: key not found")

// Provider abstracts a single cache tier keyed by content hash.
// All operations are safe for concurrent use.
type Provider interface {
	// Get retrieves the record stored under key.
	// Returns ErrNotFound if the key does not exist or has expired.
	Get(ctx context.Context, key string) (domain.Analysis, error)

	// Set stores a record, overwriting any existing entry under the same
	// key and restarting its TTL.
	Set(ctx context.Context, key string, value domain.Analysis) error

	// Clear removes every entry. Lifetime counters keep their values.
	Clear(ctx context.Context) error

	// Invalidate removes the given keys and reports how many entries
	// were actually present and removed.
	Invalidate(ctx context.Context, keys []string) (int, error)

	// PreWarm bulk-loads records, typically at startup.
	PreWarm(ctx context.Context, entries map[string]domain.Analysis) error

	// Stats returns a point-in-time view of the tier's activity.
	Stats(ctx context.Context) (Stats, error)

	// Close releases all resources held by the tier.
	Close() error
}

// Stats is a snapshot of one tier's activity. Counters cover the tier's
// whole lifetime: Clear empties entries but leaves counters running.
type Stats struct {
	Hits        uint64        `json:"hits" yaml:"hits"`
	Misses      uint64        `json:"misses" yaml:"misses"`
	Sets        uint64        `json:"sets" yaml:"sets"`
	Evictions   uint64        `json:"evictions" yaml:"evictions"`
	Expirations uint64        `json:"expirations" yaml:"expirations"`
	Size        int           `json:"size" yaml:"size"`
	MaxSize     int           `json:"max_size,omitempty" yaml:"max_size,omitempty"`
	TTL         time.Duration `json:"ttl,omitempty" yaml:"ttl,omitempty"`
	HitRate     float64       `json:"hit_rate" yaml:"hit_rate"`
	Location    string        `json:"location,omitempty" yaml:"location,omitempty"`
}

// counters tracks tier activity. Tiers that persist counters (durable,
// filesystem) reload them at construction so restarts do not reset them.
type counters struct {
	hits        uint64
	misses      uint64
	sets        uint64
	evictions   uint64
	expirations uint64
}

func (c counters) snapshot() Stats {
	return Stats{
		Hits:        c.hits,
		Misses:      c.misses,
		Sets:        c.sets,
		Evictions:   c.evictions,
		Expirations: c.expirations,
		HitRate:     hitRate(c.hits, c.misses),
	}
}

func hitRate(hits, misses uint64) float64 {
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}
