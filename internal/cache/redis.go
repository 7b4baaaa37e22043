package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/o2alexanderfedin/RecreateDocsFromRepo-sub000/internal/domain"
)

// RedisCache implements Provider backed by Redis, suitable as a shared
// tier when several scanner instances analyze the same repositories.
// Expiry is delegated to Redis, so the expirations counter stays at zero:
// the server drops stale entries before this process can observe them.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration

	mu    sync.Mutex
	stats counters
}

// RedisConfig holds configuration for the Redis tier.
type RedisConfig struct {
	Addr      string        // server address (e.g. "localhost:6379")
	Password  string        // server password
	DB        int           // database number
	KeyPrefix string        // key prefix for namespacing
	TTL       time.Duration // per-entry TTL; zero means no expiry
}

// NewRedisClient builds a client from the tier configuration. The
// connection is lazy; a server that is down surfaces as errors on
// individual operations.
func NewRedisClient(cfg RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// NewRedisCache creates a Redis-backed tier.
func NewRedisCache(cfg RedisConfig) *RedisCache {
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "repo-scanner:analysis:"
	}
	return &RedisCache{client: NewRedisClient(cfg), prefix: prefix, ttl: cfg.TTL}
}

// NewRedisCacheFromClient creates a Redis tier using an existing client.
func NewRedisCacheFromClient(client *redis.Client, prefix string, ttl time.Duration) *RedisCache {
	if prefix == "" {
		prefix = "repo-scanner:analysis:"
	}
	return &RedisCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *RedisCache) key(k string) string {
	return c.prefix + k
}

func (c *RedisCache) Get(ctx context.Context, key string) (domain.Analysis, error) {
	raw, err := c.client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		c.count(func(s *counters) { s.misses++ })
		return domain.Analysis{}, ErrNotFound
	}
	if err != nil {
		return domain.Analysis{}, fmt.Errorf("redis get: %w", err)
	}
	var value domain.Analysis
	if err := json.Unmarshal(raw, &value); err != nil {
		return domain.Analysis{}, fmt.Errorf("decode cache entry: %w", err)
	}
	c.count(func(s *counters) { s.hits++ })
	return value, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value domain.Analysis) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	if err := c.client.Set(ctx, c.key(key), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	c.count(func(s *counters) { s.sets++ })
	return nil
}

func (c *RedisCache) Clear(ctx context.Context) error {
	keys, err := c.scanKeys(ctx)
	if err != nil {
		return err
	}
	for len(keys) > 0 {
		batch := keys
		if len(batch) > 100 {
			batch = keys[:100]
		}
		if err := c.client.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("redis del: %w", err)
		}
		keys = keys[len(batch):]
	}
	return nil
}

func (c *RedisCache) Invalidate(ctx context.Context, keys []string) (int, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = c.key(k)
	}
	n, err := c.client.Del(ctx, prefixed...).Result()
	if err != nil {
		return 0, fmt.Errorf("redis del: %w", err)
	}
	return int(n), nil
}

func (c *RedisCache) PreWarm(ctx context.Context, entries map[string]domain.Analysis) error {
	for key, value := range entries {
		if err := c.Set(ctx, key, value); err != nil {
			return err
		}
	}
	return nil
}

func (c *RedisCache) Stats(ctx context.Context) (Stats, error) {
	keys, err := c.scanKeys(ctx)
	if err != nil {
		return Stats{}, err
	}
	c.mu.Lock()
	s := c.stats.snapshot()
	c.mu.Unlock()
	s.Size = len(keys)
	s.TTL = c.ttl
	s.Location = c.client.Options().Addr
	return s, nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) scanKeys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := c.client.Scan(ctx, 0, c.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan: %w", err)
	}
	return keys, nil
}

// count mutates the process-local counters under the lock. Redis itself
// is shared; these counters describe only this process's traffic.
func (c *RedisCache) count(fn func(*counters)) {
	c.mu.Lock()
	fn(&c.stats)
	c.mu.Unlock()
}
