package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	_ "github.com/mattn/go-sqlite3"

	"github.com/o2alexanderfedin/RecreateDocsFromRepo-sub000/internal/domain"
	"github.com/o2alexanderfedin/RecreateDocsFromRepo-sub000/internal/logging"
)

const durableSchema = `
CREATE TABLE IF NOT EXISTS entries (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	expires_at INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS counters (
	name  TEXT PRIMARY KEY,
	value INTEGER NOT NULL DEFAULT 0
);
INSERT OR IGNORE INTO counters (name, value) VALUES
	('hits', 0), ('misses', 0), ('sets', 0), ('evictions', 0), ('expirations', 0);
`

// DurableCache is the on-disk tier, backed by an embedded SQLite database.
// Entries and lifetime counters both survive process restarts. The tier has
// no size bound; expired rows are deleted lazily when a lookup finds them.
type DurableCache struct {
	db    *sql.DB
	path  string
	ttl   time.Duration
	clock clockwork.Clock
}

// NewDurableCache opens (or creates) the database at path. A zero ttl
// disables expiry.
func NewDurableCache(path string, ttl time.Duration) (*DurableCache, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}
	// SQLite allows one writer; a single connection avoids lock errors.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(durableSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize cache schema: %w", err)
	}
	return &DurableCache{
		db:    db,
		path:  path,
		ttl:   ttl,
		clock: clockwork.NewRealClock(),
	}, nil
}

func (c *DurableCache) Get(ctx context.Context, key string) (domain.Analysis, error) {
	var raw string
	var expiresAt int64
	err := c.db.QueryRowContext(ctx,
		`SELECT value, expires_at FROM entries WHERE key = ?`, key).Scan(&raw, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		c.bump(ctx, "misses", 1)
		return domain.Analysis{}, ErrNotFound
	}
	if err != nil {
		return domain.Analysis{}, fmt.Errorf("query cache entry: %w", err)
	}
	if expiresAt > 0 && c.clock.Now().Unix() >= expiresAt {
		if _, err := c.db.ExecContext(ctx, `DELETE FROM entries WHERE key = ?`, key); err != nil {
			return domain.Analysis{}, fmt.Errorf("delete expired entry: %w", err)
		}
		c.bump(ctx, "expirations", 1)
		c.bump(ctx, "misses", 1)
		return domain.Analysis{}, ErrNotFound
	}
	var value domain.Analysis
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return domain.Analysis{}, fmt.Errorf("decode cache entry: %w", err)
	}
	c.bump(ctx, "hits", 1)
	return value, nil
}

func (c *DurableCache) Set(ctx context.Context, key string, value domain.Analysis) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	now := c.clock.Now()
	var expiresAt int64
	if c.ttl > 0 {
		expiresAt = now.Add(c.ttl).Unix()
	}
	if _, err := c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO entries (key, value, created_at, expires_at) VALUES (?, ?, ?, ?)`,
		key, string(raw), now.Unix(), expiresAt); err != nil {
		return fmt.Errorf("store cache entry: %w", err)
	}
	c.bump(ctx, "sets", 1)
	return nil
}

func (c *DurableCache) Clear(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM entries`); err != nil {
		return fmt.Errorf("clear cache entries: %w", err)
	}
	return nil
}

func (c *DurableCache) Invalidate(ctx context.Context, keys []string) (int, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keys)), ",")
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}
	res, err := c.db.ExecContext(ctx,
		`DELETE FROM entries WHERE key IN (`+placeholders+`)`, args...)
	if err != nil {
		return 0, fmt.Errorf("invalidate cache entries: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("invalidate cache entries: %w", err)
	}
	return int(n), nil
}

func (c *DurableCache) PreWarm(ctx context.Context, entries map[string]domain.Analysis) error {
	for key, value := range entries {
		if err := c.Set(ctx, key, value); err != nil {
			return err
		}
	}
	return nil
}

func (c *DurableCache) Stats(ctx context.Context) (Stats, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT name, value FROM counters`)
	if err != nil {
		return Stats{}, fmt.Errorf("query cache counters: %w", err)
	}
	defer rows.Close()
	var s Stats
	for rows.Next() {
		var name string
		var value uint64
		if err := rows.Scan(&name, &value); err != nil {
			return Stats{}, fmt.Errorf("scan cache counter: %w", err)
		}
		switch name {
		case "hits":
			s.Hits = value
		case "misses":
			s.Misses = value
		case "sets":
			s.Sets = value
		case "evictions":
			s.Evictions = value
		case "expirations":
			s.Expirations = value
		}
	}
	if err := rows.Err(); err != nil {
		return Stats{}, fmt.Errorf("read cache counters: %w", err)
	}
	now := c.clock.Now().Unix()
	if err := c.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM entries WHERE expires_at = 0 OR expires_at > ?`, now).Scan(&s.Size); err != nil {
		return Stats{}, fmt.Errorf("count cache entries: %w", err)
	}
	s.TTL = c.ttl
	s.HitRate = hitRate(s.Hits, s.Misses)
	s.Location = c.path
	return s, nil
}

// Export returns every live entry. The cache-manager CLI uses it to dump
// the durable tier to a portable JSON file.
func (c *DurableCache) Export(ctx context.Context) (map[string]domain.Analysis, error) {
	now := c.clock.Now().Unix()
	rows, err := c.db.QueryContext(ctx,
		`SELECT key, value FROM entries WHERE expires_at = 0 OR expires_at > ?`, now)
	if err != nil {
		return nil, fmt.Errorf("query cache entries: %w", err)
	}
	defer rows.Close()
	out := make(map[string]domain.Analysis)
	for rows.Next() {
		var key, raw string
		if err := rows.Scan(&key, &raw); err != nil {
			return nil, fmt.Errorf("scan cache entry: %w", err)
		}
		var value domain.Analysis
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			return nil, fmt.Errorf("decode cache entry %q: %w", key, err)
		}
		out[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read cache entries: %w", err)
	}
	return out, nil
}

func (c *DurableCache) Close() error {
	return c.db.Close()
}

// bump adjusts a lifetime counter. Counter failures never fail the cache
// operation that triggered them.
func (c *DurableCache) bump(ctx context.Context, name string, delta int) {
	if _, err := c.db.ExecContext(ctx,
		`UPDATE counters SET value = value + ? WHERE name = ?`, delta, name); err != nil {
		logging.Op().Warn("cache counter update failed", "counter", name, "error", err)
	}
}
