package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/o2alexanderfedin/RecreateDocsFromRepo-sub000/internal/domain"
	"github.com/o2alexanderfedin/RecreateDocsFromRepo-sub000/internal/logging"
)

// Manager coordinates an ordered list of cache tiers, fastest first.
// Reads probe tiers in order and propagate hits back into every faster
// tier; writes go through to all tiers. A tier that fails is treated as
// a miss on reads and skipped on writes, so one broken backend degrades
// throughput rather than breaking lookups.
type Manager struct {
	tiers []Provider
}

// NewManager wraps the given tiers. At least one tier is required.
func NewManager(tiers []Provider) (*Manager, error) {
	if len(tiers) == 0 {
		return nil, fmt.Errorf("%w: at least one cache tier is required", ErrInvalidConfig)
	}
	return &Manager{tiers: tiers}, nil
}

// Tiers reports how many tiers the manager coordinates.
func (m *Manager) Tiers() int { return len(m.tiers) }

func (m *Manager) Get(ctx context.Context, key string) (domain.Analysis, error) {
	for i, tier := range m.tiers {
		value, err := tier.Get(ctx, key)
		if err == nil {
			m.promote(ctx, key, value, i)
			return value, nil
		}
		if !errors.Is(err, ErrNotFound) {
			logging.Op().Warn("cache tier read failed", "tier", i, "error", err)
		}
	}
	return domain.Analysis{}, ErrNotFound
}

// promote copies a value hit at tier hit into every faster tier.
// Promotion is best-effort; a failed copy never fails the lookup.
func (m *Manager) promote(ctx context.Context, key string, value domain.Analysis, hit int) {
	for i := 0; i < hit; i++ {
		if err := m.tiers[i].Set(ctx, key, value); err != nil {
			logging.Op().Warn("cache promotion failed", "tier", i, "error", err)
		}
	}
}

func (m *Manager) Set(ctx context.Context, key string, value domain.Analysis) error {
	var firstErr error
	failed := 0
	for i, tier := range m.tiers {
		if err := tier.Set(ctx, key, value); err != nil {
			logging.Op().Warn("cache tier write failed", "tier", i, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			failed++
		}
	}
	if failed == len(m.tiers) {
		return fmt.Errorf("all cache tiers rejected the write: %w", firstErr)
	}
	return nil
}

func (m *Manager) Clear(ctx context.Context) error {
	var firstErr error
	for i, tier := range m.tiers {
		if err := tier.Clear(ctx); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("clear tier %d: %w", i, err)
		}
	}
	return firstErr
}

// Invalidate removes keys from every tier and reports, per tier index,
// how many entries were actually removed there.
func (m *Manager) Invalidate(ctx context.Context, keys []string) (map[int]int, error) {
	counts := make(map[int]int, len(m.tiers))
	var firstErr error
	for i, tier := range m.tiers {
		n, err := tier.Invalidate(ctx, keys)
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("invalidate tier %d: %w", i, err)
		}
		counts[i] = n
	}
	return counts, firstErr
}

func (m *Manager) PreWarm(ctx context.Context, entries map[string]domain.Analysis) error {
	var firstErr error
	for i, tier := range m.tiers {
		if err := tier.PreWarm(ctx, entries); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("pre-warm tier %d: %w", i, err)
		}
	}
	return firstErr
}

// Stats returns per-tier snapshots keyed "cache_0", "cache_1", ... in
// probe order.
func (m *Manager) Stats(ctx context.Context) (map[string]Stats, error) {
	out := make(map[string]Stats, len(m.tiers))
	for i, tier := range m.tiers {
		s, err := tier.Stats(ctx)
		if err != nil {
			return nil, fmt.Errorf("stats for tier %d: %w", i, err)
		}
		out[fmt.Sprintf("cache_%d", i)] = s
	}
	return out, nil
}

func (m *Manager) Close() error {
	var firstErr error
	for i, tier := range m.tiers {
		if err := tier.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close tier %d: %w", i, err)
		}
	}
	return firstErr
}
