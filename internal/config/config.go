// Package config loads the process configuration: built-in defaults,
// overlaid by an optional JSON file, overlaid by REPO_SCANNER_*
// environment variables. CLI flags are applied last by the commands
// themselves.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/o2alexanderfedin/RecreateDocsFromRepo-sub000/internal/cache"
	"github.com/o2alexanderfedin/RecreateDocsFromRepo-sub000/internal/scanner"
)

// RedisConfig holds Redis connection settings, shared by every redis
// cache tier in the stack.
type RedisConfig struct {
	Addr      string `json:"addr"`
	Password  string `json:"password"`
	DB        int    `json:"db"`
	KeyPrefix string `json:"key_prefix"`
}

// TierConfig selects one cache tier. Redis tiers take their connection
// settings from the top-level redis section.
type TierConfig struct {
	Type    string `json:"type"` // memory | durable | filesystem | redis
	MaxSize int    `json:"max_size,omitempty"`
	Path    string `json:"path,omitempty"`
	Dir     string `json:"dir,omitempty"`
}

// CacheConfig holds the cache stack settings.
type CacheConfig struct {
	Enabled    bool         `json:"enabled"`
	Home       string       `json:"home"`
	TTLSeconds int          `json:"ttl_seconds"`
	Tiers      []TierConfig `json:"tiers"`
	WarmupFile string       `json:"warmup_file,omitempty"`
}

// TTL converts the configured seconds into a duration.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// ScannerConfig holds the scan settings.
type ScannerConfig struct {
	Exclusions       []string `json:"exclusions,omitempty"`
	MaxFileSize      int64    `json:"max_file_size"`
	Concurrency      int      `json:"concurrency"`
	BatchSize        int      `json:"batch_size"`
	PriorityPatterns []string `json:"priority_patterns,omitempty"`
}

// Build maps the section onto a scanner configuration. Progress wiring
// stays with the caller.
func (c ScannerConfig) Build() scanner.Config {
	return scanner.Config{
		Exclusions:       c.Exclusions,
		MaxFileSize:      c.MaxFileSize,
		Concurrency:      c.Concurrency,
		BatchSize:        c.BatchSize,
		PriorityPatterns: c.PriorityPatterns,
	}
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level     string `json:"level"`
	Format    string `json:"format"` // text | json
	AuditFile string `json:"audit_file,omitempty"`
}

// MetricsConfig holds the metrics endpoint settings. The endpoint is
// only served while a scan is running and Addr is non-empty.
type MetricsConfig struct {
	Enabled   bool   `json:"enabled"`
	Addr      string `json:"addr,omitempty"`
	Namespace string `json:"namespace"`
}

// TracingConfig holds OpenTelemetry settings.
type TracingConfig struct {
	Enabled     bool    `json:"enabled"`
	Exporter    string  `json:"exporter"`
	Endpoint    string  `json:"endpoint"`
	ServiceName string  `json:"service_name"`
	SampleRate  float64 `json:"sample_rate"`
}

// Config is the central configuration struct embedding all component
// configs.
type Config struct {
	Cache   CacheConfig   `json:"cache"`
	Scanner ScannerConfig `json:"scanner"`
	Redis   RedisConfig   `json:"redis"`
	Log     LogConfig     `json:"log"`
	Metrics MetricsConfig `json:"metrics"`
	Tracing TracingConfig `json:"tracing"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Cache: CacheConfig{
			Enabled:    true,
			Home:       cache.DefaultCacheHome(),
			TTLSeconds: int(cache.DefaultTTL / time.Second),
			Tiers: []TierConfig{
				{Type: cache.TypeMemory, MaxSize: cache.DefaultMaxSize},
				{Type: cache.TypeDurable},
			},
		},
		Scanner: ScannerConfig{
			MaxFileSize: scanner.DefaultMaxFileSize,
			Concurrency: scanner.DefaultConcurrency,
			BatchSize:   scanner.DefaultBatchSize,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled:   false,
			Namespace: "repo_scanner",
		},
		Tracing: TracingConfig{
			Enabled:     false,
			Exporter:    "otlp-http",
			Endpoint:    "localhost:4318",
			ServiceName: "repo-scanner",
			SampleRate:  1.0,
		},
	}
}

// LoadFromFile loads configuration from a JSON file on top of the
// defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromEnv applies environment variable overrides to the config.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("REPO_SCANNER_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("REPO_SCANNER_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("REPO_SCANNER_AUDIT_LOG"); v != "" {
		cfg.Log.AuditFile = v
	}
	if v := os.Getenv("REPO_SCANNER_CACHE_HOME"); v != "" {
		cfg.Cache.Home = v
	}
	if v := os.Getenv("REPO_SCANNER_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REPO_SCANNER_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("REPO_SCANNER_METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
	}
	if v := os.Getenv("REPO_SCANNER_OTLP_ENDPOINT"); v != "" {
		cfg.Tracing.Endpoint = v
	}
}

// TiersFor resolves a --cache-type selection into tier configurations.
// Empty means "as configured", "none" disables caching, "tiered" forces
// the configured stack, and a single tier tag selects just that tier.
// Unknown tags pass through so the factory can reject them.
func (c *Config) TiersFor(cacheType string) []cache.Config {
	switch cacheType {
	case "none":
		return nil
	case "tiered":
		return c.TierConfigs()
	case "":
		if !c.Cache.Enabled {
			return nil
		}
		return c.TierConfigs()
	}

	tier := TierConfig{Type: cacheType}
	for _, t := range c.Cache.Tiers {
		if t.Type == cacheType {
			tier = t
			break
		}
	}
	override := *c
	override.Cache.Tiers = []TierConfig{tier}
	return override.TierConfigs()
}

// TierConfigs maps the cache section onto factory configurations,
// filling in per-tier defaults rooted under the cache home.
func (c *Config) TierConfigs() []cache.Config {
	ttl := c.Cache.TTL()
	out := make([]cache.Config, 0, len(c.Cache.Tiers))
	for _, tier := range c.Cache.Tiers {
		tc := cache.Config{
			Type:    tier.Type,
			MaxSize: tier.MaxSize,
			TTL:     ttl,
			Path:    tier.Path,
			Dir:     tier.Dir,
		}
		switch tier.Type {
		case cache.TypeDurable:
			if tc.Path == "" {
				tc.Path = filepath.Join(c.Cache.Home, "cache.db")
			}
		case cache.TypeFilesystem:
			if tc.Dir == "" {
				tc.Dir = filepath.Join(c.Cache.Home, "entries")
			}
		case cache.TypeRedis:
			tc.Addr = c.Redis.Addr
			tc.Password = c.Redis.Password
			tc.DB = c.Redis.DB
			tc.KeyPrefix = c.Redis.KeyPrefix
		}
		out = append(out, tc)
	}
	return out
}
