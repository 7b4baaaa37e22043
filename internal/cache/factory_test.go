package cache

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func TestFactory_BuildsEachTierType(t *testing.T) {
	dir := t.TempDir()
	cases := []Config{
		{Type: TypeMemory, MaxSize: 10, TTL: time.Minute},
		{Type: TypeDurable, Path: filepath.Join(dir, "cache.db"), TTL: time.Minute},
		{Type: TypeFilesystem, Dir: filepath.Join(dir, "fs"), TTL: time.Minute},
	}
	for _, cfg := range cases {
		p, err := New(cfg)
		if err != nil {
			t.Fatalf("New(%s) failed: %v", cfg.Type, err)
		}
		if err := p.Set(context.Background(), "k", record("go")); err != nil {
			t.Fatalf("%s tier Set failed: %v", cfg.Type, err)
		}
		p.Close()
	}
}

func TestFactory_RejectsInvalidConfig(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{"unknown type", Config{Type: "papertape"}},
		{"empty type", Config{}},
		{"durable without path", Config{Type: TypeDurable}},
		{"filesystem without dir", Config{Type: TypeFilesystem}},
		{"redis without addr", Config{Type: TypeRedis}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(tc.cfg); !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got: %v", err)
			}
		})
	}
}

func TestNewStack_BuildsManager(t *testing.T) {
	dir := t.TempDir()
	m, err := NewStack([]Config{
		{Type: TypeMemory, MaxSize: 10},
		{Type: TypeDurable, Path: filepath.Join(dir, "cache.db")},
	})
	if err != nil {
		t.Fatalf("NewStack failed: %v", err)
	}
	defer m.Close()

	if m.Tiers() != 2 {
		t.Fatalf("expected 2 tiers, got %d", m.Tiers())
	}

	ctx := context.Background()
	if err := m.Set(ctx, "k", record("go")); err != nil {
		t.Fatalf("Set through stack failed: %v", err)
	}
	if _, err := m.Get(ctx, "k"); err != nil {
		t.Fatalf("Get through stack failed: %v", err)
	}
}

func TestNewStack_EmptyListFails(t *testing.T) {
	if _, err := NewStack(nil); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got: %v", err)
	}
}

func TestNewStack_FailureClosesBuiltTiers(t *testing.T) {
	_, err := NewStack([]Config{
		{Type: TypeMemory, MaxSize: 10},
		{Type: "papertape"},
	})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig from bad second tier, got: %v", err)
	}
}

func TestHasTier(t *testing.T) {
	cfgs := []Config{{Type: TypeMemory}, {Type: TypeRedis, Addr: "localhost:6379"}}
	if !HasTier(cfgs, TypeRedis) {
		t.Fatal("expected redis tier to be reported")
	}
	if HasTier(cfgs, TypeDurable) {
		t.Fatal("durable tier reported but not configured")
	}
	if HasTier(nil, TypeMemory) {
		t.Fatal("empty list should report no tiers")
	}
}

func TestDefaultStack(t *testing.T) {
	cfgs := DefaultStack()
	if len(cfgs) != 2 {
		t.Fatalf("expected two default tiers, got %d", len(cfgs))
	}
	if cfgs[0].Type != TypeMemory || cfgs[1].Type != TypeDurable {
		t.Fatalf("unexpected default layout: %+v", cfgs)
	}
	if cfgs[0].TTL != DefaultTTL || cfgs[0].MaxSize != DefaultMaxSize {
		t.Fatalf("unexpected default tuning: %+v", cfgs[0])
	}
}
