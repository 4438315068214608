package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// CacheRow is one row of cache_entries.
type CacheRow struct {
	StoredAt  time.Time
	ExpiresAt time.Time
	Key       string
	Value     []byte
}

// CacheCounts summarises the cache table for the info view.
type CacheCounts struct {
	Live    int
	Expired int
}

// GetCacheEntry returns the row stored under key. Expiry is not checked here.
func (db *DB) GetCacheEntry(ctx context.Context, key string) (*CacheRow, error) {
	query := `SELECT key, value, stored_at, expires_at FROM cache_entries WHERE key = ?`

	var row CacheRow
	var storedAt, expiresAt int64
	err := db.QueryRowContext(ctx, query, key).Scan(&row.Key, &row.Value, &storedAt, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cache entry %q: %w", key, err)
	}

	row.StoredAt = time.UnixMilli(storedAt)
	row.ExpiresAt = time.UnixMilli(expiresAt)
	return &row, nil
}

// PutCacheEntry inserts or replaces the row for key.
func (db *DB) PutCacheEntry(ctx context.Context, key string, value []byte, storedAt, expiresAt time.Time) error {
	query := `
		INSERT INTO cache_entries (key, value, stored_at, expires_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			stored_at = excluded.stored_at,
			expires_at = excluded.expires_at
	`
	if _, err := db.ExecContext(ctx, query, key, value, storedAt.UnixMilli(), expiresAt.UnixMilli()); err != nil {
		return fmt.Errorf("failed to put cache entry %q: %w", key, err)
	}
	return nil
}

// DeleteCacheEntry removes the row for key and reports whether there was one.
// Deleting a missing key is not an error.
func (db *DB) DeleteCacheEntry(ctx context.Context, key string) (bool, error) {
	res, err := db.ExecContext(ctx, `DELETE FROM cache_entries WHERE key = ?`, key)
	if err != nil {
		return false, fmt.Errorf("failed to delete cache entry %q: %w", key, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// DeleteStaleCacheEntry removes the row for key only while it still carries
// expiresAt. A row rewritten since it was read is left alone.
func (db *DB) DeleteStaleCacheEntry(ctx context.Context, key string, expiresAt time.Time) (bool, error) {
	res, err := db.ExecContext(ctx,
		`DELETE FROM cache_entries WHERE key = ? AND expires_at = ?`, key, expiresAt.UnixMilli())
	if err != nil {
		return false, fmt.Errorf("failed to delete stale cache entry %q: %w", key, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// PurgeExpiredCache removes every row whose expiry is at or before now.
func (db *DB) PurgeExpiredCache(ctx context.Context, now time.Time) (int64, error) {
	res, err := db.ExecContext(ctx, `DELETE FROM cache_entries WHERE expires_at <= ?`, now.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to purge cache: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// CountCacheEntries returns how many rows are live and expired at now.
func (db *DB) CountCacheEntries(ctx context.Context, now time.Time) (CacheCounts, error) {
	query := `
		SELECT
			COALESCE(SUM(CASE WHEN expires_at > ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN expires_at <= ? THEN 1 ELSE 0 END), 0)
		FROM cache_entries
	`
	var c CacheCounts
	ms := now.UnixMilli()
	if err := db.QueryRowContext(ctx, query, ms, ms).Scan(&c.Live, &c.Expired); err != nil {
		return CacheCounts{}, fmt.Errorf("failed to count cache entries: %w", err)
	}
	return c, nil
}
