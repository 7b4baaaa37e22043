package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestInvalidator_RemoteSignalEvictsLocalTier(t *testing.T) {
	client := newTestRedisClient(t)
	mem := NewMemoryCache(10, 0)
	mgr, err := NewManager([]Provider{mem})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	iv := NewInvalidator(mgr, client)
	done := make(chan struct{})
	go func() {
		iv.Listen(ctx)
		close(done)
	}()
	defer func() {
		iv.Close()
		<-done
	}()

	if err := mem.Set(ctx, "stale", record("go")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// The subscription races with the first publish; keep announcing
	// until the listener applies the signal.
	deadline := time.Now().Add(3 * time.Second)
	for {
		if err := PublishInvalidation(ctx, client, "stale"); err != nil {
			t.Fatalf("publish failed: %v", err)
		}
		time.Sleep(50 * time.Millisecond)
		if _, err := mem.Get(ctx, "stale"); errors.Is(err, ErrNotFound) {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("invalidation signal never applied")
		}
	}
}

func TestInvalidator_CloseStopsListen(t *testing.T) {
	client := newTestRedisClient(t)
	mem := NewMemoryCache(10, 0)
	mgr, err := NewManager([]Provider{mem})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	iv := NewInvalidator(mgr, client)
	done := make(chan struct{})
	go func() {
		iv.Listen(context.Background())
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	if err := iv.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Listen did not stop after Close")
	}

	// A second Close is a no-op.
	if err := iv.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}
}
