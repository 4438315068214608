// Package cache provides the expiring key/value store that holds fetched
// language stats. Every entry carries its own expiry timestamp, checked on
// read, so no background timer is needed.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrClosed is returned by operations on a closed cache.
var ErrClosed = errors.New("cache is closed")

// Entry is a cached value together with its lifetime.
type Entry struct {
	StoredAt  time.Time `json:"storedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
	Value     []byte    `json:"value"`
}

// IsExpired reports whether the entry must no longer be served at now.
func (e Entry) IsExpired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// TTL returns the remaining lifetime at now, never negative.
func (e Entry) TTL(now time.Time) time.Duration {
	if d := e.ExpiresAt.Sub(now); d > 0 {
		return d
	}
	return 0
}

// Cache is an expiring key/value store.
//
// Get reports ok=false for missing and expired keys alike. Set replaces any
// existing value and restarts its lifetime. Delete reports whether an entry,
// live or expired, was stored under the key.
type Cache interface {
	Get(ctx context.Context, key string) (Entry, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) (bool, error)
	Close() error
}

// Purger is implemented by backends that can drop expired entries in bulk.
type Purger interface {
	Purge(ctx context.Context) (int64, error)
}

// Option configures a backend.
type Option func(*settings)

type settings struct {
	now func() time.Time
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		s.now = now
	}
}

func newSettings(opts []Option) settings {
	s := settings{now: time.Now}
	for _, o := range opts {
		o(&s)
	}
	return s
}

// Key builds the cache key for a login's language stats.
func Key(login string) string {
	if login == "" {
		return "languageStats"
	}
	return "languageStats:" + login
}
