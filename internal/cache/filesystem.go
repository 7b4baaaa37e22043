package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/o2alexanderfedin/RecreateDocsFromRepo-sub000/internal/domain"
)

const statsFileName = "cache_stats.json"

// FileSystemCache stores one JSON file per key in a dedicated directory,
// plus a cache_stats.json holding the lifetime counters. Entry files can
// be inspected and copied with ordinary shell tools, which is the point
// of this tier. Expired files are removed lazily when a lookup finds them.
type FileSystemCache struct {
	mu    sync.Mutex
	dir   string
	ttl   time.Duration
	clock clockwork.Clock
	stats counters
}

type fsEntry struct {
	Key       string          `json:"key"`
	Value     domain.Analysis `json:"value"`
	CreatedAt int64           `json:"created_at"`
	ExpiresAt int64           `json:"expires_at"`
}

func (e *fsEntry) expired(now time.Time) bool {
	return e.ExpiresAt > 0 && now.Unix() >= e.ExpiresAt
}

type fsCounters struct {
	Hits        uint64 `json:"hits"`
	Misses      uint64 `json:"misses"`
	Sets        uint64 `json:"sets"`
	Evictions   uint64 `json:"evictions"`
	Expirations uint64 `json:"expirations"`
}

// NewFileSystemCache opens (or creates) the cache directory and reloads
// counters from any existing stats file. A zero ttl disables expiry.
func NewFileSystemCache(dir string, ttl time.Duration) (*FileSystemCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	c := &FileSystemCache{
		dir:   dir,
		ttl:   ttl,
		clock: clockwork.NewRealClock(),
	}
	if raw, err := os.ReadFile(filepath.Join(dir, statsFileName)); err == nil {
		var persisted fsCounters
		if err := json.Unmarshal(raw, &persisted); err == nil {
			c.stats = counters{
				hits:        persisted.Hits,
				misses:      persisted.Misses,
				sets:        persisted.Sets,
				evictions:   persisted.Evictions,
				expirations: persisted.Expirations,
			}
		}
	}
	if err := c.saveStatsLocked(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *FileSystemCache) Get(_ context.Context, key string) (domain.Analysis, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	path := c.entryPath(key)
	ent, err := readEntryFile(path)
	if err != nil || ent.Key != key {
		c.stats.misses++
		c.flushLocked()
		return domain.Analysis{}, ErrNotFound
	}
	if ent.expired(c.clock.Now()) {
		_ = os.Remove(path)
		c.stats.expirations++
		c.stats.misses++
		c.flushLocked()
		return domain.Analysis{}, ErrNotFound
	}
	c.stats.hits++
	c.flushLocked()
	return ent.Value, nil
}

func (c *FileSystemCache) Set(_ context.Context, key string, value domain.Analysis) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.clock.Now()
	ent := fsEntry{Key: key, Value: value, CreatedAt: now.Unix()}
	if c.ttl > 0 {
		ent.ExpiresAt = now.Add(c.ttl).Unix()
	}
	raw, err := json.Marshal(ent)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	if err := os.WriteFile(c.entryPath(key), raw, 0o644); err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	c.stats.sets++
	c.flushLocked()
	return nil
}

func (c *FileSystemCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	names, err := os.ReadDir(c.dir)
	if err != nil {
		return fmt.Errorf("list cache directory: %w", err)
	}
	for _, d := range names {
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") || d.Name() == statsFileName {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, d.Name())); err != nil {
			return fmt.Errorf("remove cache entry: %w", err)
		}
	}
	return nil
}

func (c *FileSystemCache) Invalidate(_ context.Context, keys []string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for _, key := range keys {
		path := c.entryPath(key)
		ent, err := readEntryFile(path)
		if err != nil || ent.Key != key {
			continue
		}
		if err := os.Remove(path); err != nil {
			return removed, fmt.Errorf("remove cache entry: %w", err)
		}
		removed++
	}
	c.flushLocked()
	return removed, nil
}

func (c *FileSystemCache) PreWarm(ctx context.Context, entries map[string]domain.Analysis) error {
	for key, value := range entries {
		if err := c.Set(ctx, key, value); err != nil {
			return err
		}
	}
	return nil
}

func (c *FileSystemCache) Stats(_ context.Context) (Stats, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	names, err := os.ReadDir(c.dir)
	if err != nil {
		return Stats{}, fmt.Errorf("list cache directory: %w", err)
	}
	size := 0
	for _, d := range names {
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".json") && d.Name() != statsFileName {
			size++
		}
	}
	s := c.stats.snapshot()
	s.Size = size
	s.TTL = c.ttl
	s.Location = c.dir
	return s, nil
}

func (c *FileSystemCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saveStatsLocked()
}

func (c *FileSystemCache) entryPath(key string) string {
	return filepath.Join(c.dir, safeFileName(key))
}

// safeFileName maps a cache key to a filesystem-safe name. Keys are
// usually hex content hashes, which pass through unchanged.
func safeFileName(key string) string {
	var b strings.Builder
	b.Grow(len(key) + len(".json"))
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	b.WriteString(".json")
	return b.String()
}

func readEntryFile(path string) (*fsEntry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var ent fsEntry
	if err := json.Unmarshal(raw, &ent); err != nil {
		return nil, err
	}
	return &ent, nil
}

func (c *FileSystemCache) saveStatsLocked() error {
	persisted := fsCounters{
		Hits:        c.stats.hits,
		Misses:      c.stats.misses,
		Sets:        c.stats.sets,
		Evictions:   c.stats.evictions,
		Expirations: c.stats.expirations,
	}
	raw, err := json.Marshal(persisted)
	if err != nil {
		return fmt.Errorf("encode cache stats: %w", err)
	}
	if err := os.WriteFile(filepath.Join(c.dir, statsFileName), raw, 0o644); err != nil {
		return fmt.Errorf("write cache stats: %w", err)
	}
	return nil
}

// flushLocked persists counters after a cache operation. A stats write
// failure never fails the operation itself.
func (c *FileSystemCache) flushLocked() {
	_ = c.saveStatsLocked()
}
