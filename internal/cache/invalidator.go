package cache

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/o2alexanderfedin/RecreateDocsFromRepo-sub000/internal/logging"
)

// InvalidationChannel is the Redis Pub/Sub channel carrying cache
// invalidation signals. When one scanner instance removes entries, it
// publishes their keys here; every listening instance drops the keys
// from its local tiers instead of serving them until TTL expiry.
const InvalidationChannel = "repo-scanner:cache:invalidate"

// Target is the slice of the cache surface the listener evicts from.
// *Manager satisfies it.
type Target interface {
	Invalidate(ctx context.Context, keys []string) (map[int]int, error)
}

// Invalidator subscribes to invalidation signals and keeps a local cache
// in step with removals made by other scanner instances.
type Invalidator struct {
	local  Target
	client *redis.Client

	mu     sync.Mutex
	cancel context.CancelFunc
	closed bool
}

// NewInvalidator wraps a local cache and a Redis client. Listen must be
// called for signals to take effect.
func NewInvalidator(local Target, client *redis.Client) *Invalidator {
	return &Invalidator{local: local, client: client}
}

// Listen blocks receiving invalidation signals until the context is
// cancelled or Close is called. Each message carries one cache key.
func (iv *Invalidator) Listen(ctx context.Context) {
	subCtx, cancel := context.WithCancel(ctx)
	iv.mu.Lock()
	if iv.closed {
		iv.mu.Unlock()
		cancel()
		return
	}
	iv.cancel = cancel
	iv.mu.Unlock()

	pubsub := iv.client.Subscribe(subCtx, InvalidationChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-subCtx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if _, err := iv.local.Invalidate(subCtx, []string{msg.Payload}); err != nil {
				logging.Op().Warn("remote invalidation failed", "key", msg.Payload, "error", err)
			}
		}
	}
}

// Close stops the listener. Safe to call more than once.
func (iv *Invalidator) Close() error {
	iv.mu.Lock()
	defer iv.mu.Unlock()
	if iv.closed {
		return nil
	}
	iv.closed = true
	if iv.cancel != nil {
		iv.cancel()
	}
	return nil
}

// PublishInvalidation announces removed keys to every listening scanner
// instance, one message per key.
func PublishInvalidation(ctx context.Context, client *redis.Client, keys ...string) error {
	for _, key := range keys {
		if err := client.Publish(ctx, InvalidationChannel, key).Err(); err != nil {
			return err
		}
	}
	return nil
}
