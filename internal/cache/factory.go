package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ErrInvalidConfig is returned when a tier configuration cannot be used.
// All construction-time validation failures wrap it.
var ErrInvalidConfig = errors.New("cache: invalid configuration")

// Tier type tags accepted by New.
const (
	TypeMemory     = "memory"
	TypeDurable    = "durable"
	TypeFilesystem = "filesystem"
	TypeRedis      = "redis"
)

const (
	// DefaultTTL is how long entries stay valid when no TTL is given.
	DefaultTTL = 24 * time.Hour
	// DefaultMaxSize bounds the in-process tier when no size is given.
	DefaultMaxSize = 1000
)

// Config selects and tunes a single cache tier.
type Config struct {
	Type      string        // "memory", "durable", "filesystem" or "redis"
	MaxSize   int           // memory: entry bound
	TTL       time.Duration // any tier: zero disables expiry
	Path      string        // durable: database file
	Dir       string        // filesystem: cache directory
	Addr      string        // redis: server address
	Password  string        // redis
	DB        int           // redis
	KeyPrefix string        // redis
}

// New builds a single tier from its configuration.
func New(cfg Config) (Provider, error) {
	switch cfg.Type {
	case TypeMemory:
		return NewMemoryCache(cfg.MaxSize, cfg.TTL), nil
	case TypeDurable:
		if cfg.Path == "" {
			return nil, fmt.Errorf("%w: durable tier requires a database path", ErrInvalidConfig)
		}
		return NewDurableCache(cfg.Path, cfg.TTL)
	case TypeFilesystem:
		if cfg.Dir == "" {
			return nil, fmt.Errorf("%w: filesystem tier requires a cache directory", ErrInvalidConfig)
		}
		return NewFileSystemCache(cfg.Dir, cfg.TTL)
	case TypeRedis:
		if cfg.Addr == "" {
			return nil, fmt.Errorf("%w: redis tier requires a server address", ErrInvalidConfig)
		}
		return NewRedisCache(RedisConfig{
			Addr:      cfg.Addr,
			Password:  cfg.Password,
			DB:        cfg.DB,
			KeyPrefix: cfg.KeyPrefix,
			TTL:       cfg.TTL,
		}), nil
	case "":
		return nil, fmt.Errorf("%w: tier type is required", ErrInvalidConfig)
	default:
		return nil, fmt.Errorf("%w: unknown tier type %q", ErrInvalidConfig, cfg.Type)
	}
}

// NewStack builds each configured tier in order and wraps them in a
// Manager. On failure, tiers already built are closed before returning.
func NewStack(cfgs []Config) (*Manager, error) {
	if len(cfgs) == 0 {
		return nil, fmt.Errorf("%w: at least one cache tier is required", ErrInvalidConfig)
	}
	tiers := make([]Provider, 0, len(cfgs))
	for i, cfg := range cfgs {
		tier, err := New(cfg)
		if err != nil {
			for _, built := range tiers {
				built.Close()
			}
			return nil, fmt.Errorf("build tier %d: %w", i, err)
		}
		tiers = append(tiers, tier)
	}
	return NewManager(tiers)
}

// HasTier reports whether any of the configurations selects the given
// tier type.
func HasTier(cfgs []Config, typ string) bool {
	for _, cfg := range cfgs {
		if cfg.Type == typ {
			return true
		}
	}
	return false
}

// DefaultCacheHome returns the per-user cache directory.
func DefaultCacheHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "repo-scanner", "cache")
	}
	return filepath.Join(home, ".repo-scanner", "cache")
}

// DefaultStack is the standard two-tier layout: a small fast in-process
// tier in front of a durable on-disk tier.
func DefaultStack() []Config {
	return []Config{
		{Type: TypeMemory, MaxSize: DefaultMaxSize, TTL: DefaultTTL},
		{Type: TypeDurable, Path: filepath.Join(DefaultCacheHome(), "cache.db"), TTL: DefaultTTL},
	}
}
