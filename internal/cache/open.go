package cache

import (
	"context"
	"fmt"

	"github.com/j-veylop/langstats-tui/internal/config"
	"github.com/j-veylop/langstats-tui/internal/db"
)

// Open returns the backend selected by cfg.CacheBackend. The sqlite backend
// uses database, which must be open.
func Open(ctx context.Context, cfg *config.Config, database *db.DB, opts ...Option) (Cache, error) {
	switch cfg.CacheBackend {
	case config.CacheBackendMemory:
		return NewMemory(opts...), nil
	case config.CacheBackendRedis:
		return NewRedis(ctx, cfg.RedisAddr, opts...)
	case config.CacheBackendSQLite, "":
		if database == nil {
			return nil, fmt.Errorf("sqlite cache needs an open database")
		}
		return NewSQLite(database, opts...), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.CacheBackend)
	}
}
