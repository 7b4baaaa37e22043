package cache

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/o2alexanderfedin/RecreateDocsFromRepo-sub000/internal/domain"
)

func record(lang string) domain.Analysis {
	return domain.Analysis{
		FileType:        domain.FileTypeCode,
		Language:        lang,
		Purpose:         "implementation",
		Characteristics: []string{"functions"},
		Confidence:      0.9,
	}
}

func TestMemoryCache_SetAndGet(t *testing.T) {
	c := NewMemoryCache(10, time.Minute)
	defer c.Close()

	ctx := context.Background()

	if err := c.Set(ctx, "key1", record("go")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, err := c.Get(ctx, "key1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Language != "go" {
		t.Fatalf("expected language 'go', got %q", got.Language)
	}
}

func TestMemoryCache_GetMissing(t *testing.T) {
	c := NewMemoryCache(10, 0)
	defer c.Close()

	_, err := c.Get(context.Background(), "nonexistent")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got: %v", err)
	}
	s, _ := c.Stats(context.Background())
	if s.Misses != 1 {
		t.Fatalf("expected 1 miss, got %d", s.Misses)
	}
}

func TestMemoryCache_TTLBoundary(t *testing.T) {
	clk := clockwork.NewFakeClock()
	c := NewMemoryCache(10, 60*time.Second)
	c.clock = clk
	defer c.Close()

	ctx := context.Background()
	if err := c.Set(ctx, "k", record("python")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	clk.Advance(59 * time.Second)
	if _, err := c.Get(ctx, "k"); err != nil {
		t.Fatalf("Get before expiry failed: %v", err)
	}

	clk.Advance(2 * time.Second)
	if _, err := c.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after expiry, got: %v", err)
	}

	s, _ := c.Stats(ctx)
	if s.Expirations != 1 {
		t.Fatalf("expected 1 expiration, got %d", s.Expirations)
	}
	if s.Hits != 1 || s.Misses != 1 {
		t.Fatalf("expected 1 hit and 1 miss, got %d/%d", s.Hits, s.Misses)
	}
	if s.Size != 0 {
		t.Fatalf("expired entry should be removed, size = %d", s.Size)
	}
}

func TestMemoryCache_FIFOEviction(t *testing.T) {
	c := NewMemoryCache(3, 0)
	defer c.Close()

	ctx := context.Background()
	for i := 1; i <= 3; i++ {
		if err := c.Set(ctx, fmt.Sprintf("k%d", i), record("go")); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	// A hit must not refresh k1's position in the eviction order.
	if _, err := c.Get(ctx, "k1"); err != nil {
		t.Fatalf("Get k1 failed: %v", err)
	}

	if err := c.Set(ctx, "k4", record("go")); err != nil {
		t.Fatalf("Set k4 failed: %v", err)
	}

	if _, err := c.Get(ctx, "k1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected k1 to be evicted, got: %v", err)
	}
	for _, k := range []string{"k2", "k3", "k4"} {
		if _, err := c.Get(ctx, k); err != nil {
			t.Fatalf("expected %s to survive eviction: %v", k, err)
		}
	}

	s, _ := c.Stats(ctx)
	if s.Evictions != 1 {
		t.Fatalf("expected exactly 1 eviction, got %d", s.Evictions)
	}
	if s.Size != 3 {
		t.Fatalf("expected size 3, got %d", s.Size)
	}
}

func TestMemoryCache_OverwriteDoesNotEvict(t *testing.T) {
	c := NewMemoryCache(2, 0)
	defer c.Close()

	ctx := context.Background()
	c.Set(ctx, "a", record("go"))
	c.Set(ctx, "b", record("go"))

	// Overwriting an existing key at capacity is not an insertion.
	if err := c.Set(ctx, "a", record("rust")); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}

	s, _ := c.Stats(ctx)
	if s.Evictions != 0 {
		t.Fatalf("overwrite should not evict, got %d evictions", s.Evictions)
	}
	got, err := c.Get(ctx, "a")
	if err != nil {
		t.Fatalf("Get after overwrite failed: %v", err)
	}
	if got.Language != "rust" {
		t.Fatalf("expected overwritten value, got %q", got.Language)
	}
}

func TestMemoryCache_OverwriteRefreshesTTL(t *testing.T) {
	clk := clockwork.NewFakeClock()
	c := NewMemoryCache(10, 60*time.Second)
	c.clock = clk
	defer c.Close()

	ctx := context.Background()
	c.Set(ctx, "k", record("go"))

	clk.Advance(50 * time.Second)
	c.Set(ctx, "k", record("go"))

	// 50s after the rewrite the original deadline has long passed.
	clk.Advance(50 * time.Second)
	if _, err := c.Get(ctx, "k"); err != nil {
		t.Fatalf("expected rewrite to restart TTL: %v", err)
	}
}

func TestMemoryCache_ClearKeepsCounters(t *testing.T) {
	c := NewMemoryCache(10, 0)
	defer c.Close()

	ctx := context.Background()
	c.Set(ctx, "a", record("go"))
	c.Get(ctx, "a")
	c.Get(ctx, "missing")

	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	s, _ := c.Stats(ctx)
	if s.Size != 0 {
		t.Fatalf("expected empty cache after clear, size = %d", s.Size)
	}
	if s.Hits != 1 || s.Misses != 1 || s.Sets != 1 {
		t.Fatalf("clear must keep lifetime counters, got %+v", s)
	}

	if _, err := c.Get(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected entries gone after clear, got: %v", err)
	}
}

func TestMemoryCache_Invalidate(t *testing.T) {
	c := NewMemoryCache(10, 0)
	defer c.Close()

	ctx := context.Background()
	c.Set(ctx, "a", record("go"))
	c.Set(ctx, "b", record("go"))

	n, err := c.Invalidate(ctx, []string{"a", "b", "missing"})
	if err != nil {
		t.Fatalf("Invalidate failed: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 removals, got %d", n)
	}
	if _, err := c.Get(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected a to be gone, got: %v", err)
	}
}

func TestMemoryCache_HitRate(t *testing.T) {
	c := NewMemoryCache(10, 0)
	defer c.Close()

	ctx := context.Background()
	c.Set(ctx, "a", record("go"))
	for i := 0; i < 3; i++ {
		if _, err := c.Get(ctx, "a"); err != nil {
			t.Fatalf("Get failed: %v", err)
		}
	}
	c.Get(ctx, "missing")

	s, _ := c.Stats(ctx)
	if s.HitRate != 0.75 {
		t.Fatalf("expected hit rate 0.75, got %v", s.HitRate)
	}
}

func TestMemoryCache_HitRateNoLookups(t *testing.T) {
	c := NewMemoryCache(10, 0)
	defer c.Close()

	s, _ := c.Stats(context.Background())
	if s.HitRate != 0 {
		t.Fatalf("expected hit rate 0 with no lookups, got %v", s.HitRate)
	}
}

func TestMemoryCache_PreWarm(t *testing.T) {
	c := NewMemoryCache(10, 0)
	defer c.Close()

	ctx := context.Background()
	if err := c.PreWarm(ctx, DefaultWarmup()); err != nil {
		t.Fatalf("PreWarm failed: %v", err)
	}

	got, err := c.Get(ctx, "python_script")
	if err != nil {
		t.Fatalf("Get after PreWarm failed: %v", err)
	}
	if got.Language != "python" {
		t.Fatalf("expected warmup record, got %+v", got)
	}
	s, _ := c.Stats(ctx)
	if s.Size != len(DefaultWarmup()) {
		t.Fatalf("expected %d warmup entries, got %d", len(DefaultWarmup()), s.Size)
	}
}
