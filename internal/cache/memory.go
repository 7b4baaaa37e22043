package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/o2alexanderfedin/RecreateDocsFromRepo-sub000/internal/domain"
)

// MemoryCache is the in-process tier. Once maxSize entries are present,
// inserting a new key evicts the oldest inserted entry. Lookups never
// refresh an entry's position; overwriting an existing key re-inserts it
// at the back along with its refreshed timestamps.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]*list.Element
	order   *list.List // oldest insertion at the front
	maxSize int
	ttl     time.Duration
	clock   clockwork.Clock
	stats   counters
}

type memEntry struct {
	key       string
	value     domain.Analysis
	createdAt time.Time
	expiresAt time.Time // zero when the tier has no TTL
}

func (e *memEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// NewMemoryCache creates an in-process tier holding at most maxSize
// entries. A non-positive maxSize falls back to DefaultMaxSize; a zero
// ttl disables expiry.
func NewMemoryCache(maxSize int, ttl time.Duration) *MemoryCache {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &MemoryCache{
		entries: make(map[string]*list.Element),
		order:   list.New(),
		maxSize: maxSize,
		ttl:     ttl,
		clock:   clockwork.NewRealClock(),
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) (domain.Analysis, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.entries[key]
	if !ok {
		c.stats.misses++
		return domain.Analysis{}, ErrNotFound
	}
	ent := el.Value.(*memEntry)
	if ent.expired(c.clock.Now()) {
		c.removeLocked(el)
		c.stats.expirations++
		c.stats.misses++
		return domain.Analysis{}, ErrNotFound
	}
	c.stats.hits++
	return ent.value, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, value domain.Analysis) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.clock.Now()
	if el, ok := c.entries[key]; ok {
		ent := el.Value.(*memEntry)
		ent.value = value
		ent.createdAt = now
		ent.expiresAt = c.expiry(now)
		c.order.MoveToBack(el)
		c.stats.sets++
		return nil
	}
	if c.order.Len() >= c.maxSize {
		if oldest := c.order.Front(); oldest != nil {
			c.removeLocked(oldest)
			c.stats.evictions++
		}
	}
	ent := &memEntry{key: key, value: value, createdAt: now, expiresAt: c.expiry(now)}
	c.entries[key] = c.order.PushBack(ent)
	c.stats.sets++
	return nil
}

func (c *MemoryCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*list.Element)
	c.order.Init()
	return nil
}

func (c *MemoryCache) Invalidate(_ context.Context, keys []string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for _, key := range keys {
		if el, ok := c.entries[key]; ok {
			c.removeLocked(el)
			removed++
		}
	}
	return removed, nil
}

func (c *MemoryCache) PreWarm(ctx context.Context, entries map[string]domain.Analysis) error {
	for key, value := range entries {
		if err := c.Set(ctx, key, value); err != nil {
			return err
		}
	}
	return nil
}

func (c *MemoryCache) Stats(_ context.Context) (Stats, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats.snapshot()
	s.Size = c.order.Len()
	s.MaxSize = c.maxSize
	s.TTL = c.ttl
	s.Location = "memory"
	return s, nil
}

func (c *MemoryCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*list.Element)
	c.order.Init()
	return nil
}

func (c *MemoryCache) expiry(now time.Time) time.Time {
	if c.ttl <= 0 {
		return time.Time{}
	}
	return now.Add(c.ttl)
}

// removeLocked drops an entry from both the map and the eviction order.
// The caller holds c.mu.
func (c *MemoryCache) removeLocked(el *list.Element) {
	ent := el.Value.(*memEntry)
	delete(c.entries, ent.key)
	c.order.Remove(el)
}
