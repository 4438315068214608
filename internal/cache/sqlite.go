package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/j-veylop/langstats-tui/internal/db"
	"github.com/j-veylop/langstats-tui/internal/logger"
)

// SQLite stores entries in the cache_entries table. It does not own the
// database handle; Close leaves it open.
type SQLite struct {
	db  *db.DB
	now func() time.Time
}

// NewSQLite creates a cache on top of an open database.
func NewSQLite(database *db.DB, opts ...Option) *SQLite {
	s := newSettings(opts)
	return &SQLite{db: database, now: s.now}
}

// Get implements Cache. An expired row is deleted and reported as a miss,
// unless a Set replaced it after it was read.
func (c *SQLite) Get(ctx context.Context, key string) (Entry, bool, error) {
	row, err := c.db.GetCacheEntry(ctx, key)
	if err != nil {
		return Entry{}, false, err
	}
	if row == nil {
		return Entry{}, false, nil
	}

	e := Entry{Value: row.Value, StoredAt: row.StoredAt, ExpiresAt: row.ExpiresAt}
	if e.IsExpired(c.now()) {
		if _, err := c.db.DeleteStaleCacheEntry(ctx, key, row.ExpiresAt); err != nil {
			logger.Warn("Failed to drop expired cache entry", "key", key, "error", err)
		}
		return Entry{}, false, nil
	}
	return e, true, nil
}

// Set implements Cache.
func (c *SQLite) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	now := c.now()
	if err := c.db.PutCacheEntry(ctx, key, value, now, now.Add(ttl)); err != nil {
		return fmt.Errorf("sqlite cache set: %w", err)
	}
	return nil
}

// Delete implements Cache.
func (c *SQLite) Delete(ctx context.Context, key string) (bool, error) {
	return c.db.DeleteCacheEntry(ctx, key)
}

// Purge implements Purger.
func (c *SQLite) Purge(ctx context.Context) (int64, error) {
	return c.db.PurgeExpiredCache(ctx, c.now())
}

// Close implements Cache.
func (c *SQLite) Close() error {
	return nil
}
