package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis stores entries as JSON envelopes with a native key expiry. The
// envelope's own ExpiresAt is checked too, so clock skew between the client
// and the server cannot serve a stale value.
type Redis struct {
	client *redis.Client
	now    func() time.Time
	prefix string
}

// NewRedis connects to addr and verifies the connection.
func NewRedis(ctx context.Context, addr string, opts ...Option) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to reach redis at %s: %w", addr, err)
	}
	return NewRedisFromClient(client, opts...), nil
}

// NewRedisFromClient wraps an existing client.
func NewRedisFromClient(client *redis.Client, opts ...Option) *Redis {
	s := newSettings(opts)
	return &Redis{client: client, now: s.now, prefix: "langstats:"}
}

// Get implements Cache.
func (r *Redis) Get(ctx context.Context, key string) (Entry, bool, error) {
	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("redis get %q: %w", key, err)
	}

	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return Entry{}, false, fmt.Errorf("redis decode %q: %w", key, err)
	}
	if e.IsExpired(r.now()) {
		return Entry{}, false, nil
	}
	return e, true, nil
}

// Set implements Cache.
func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	now := r.now()
	data, err := json.Marshal(Entry{Value: value, StoredAt: now, ExpiresAt: now.Add(ttl)})
	if err != nil {
		return fmt.Errorf("redis encode %q: %w", key, err)
	}
	if err := r.client.Set(ctx, r.prefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

// Delete implements Cache.
func (r *Redis) Delete(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Del(ctx, r.prefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("redis del %q: %w", key, err)
	}
	return n > 0, nil
}

// Close implements Cache.
func (r *Redis) Close() error {
	return r.client.Close()
}
