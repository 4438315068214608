package cache

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-process cache. Expired entries are dropped when read.
type Memory struct {
	entries map[string]Entry
	now     func() time.Time
	mu      sync.RWMutex
	closed  bool
}

// NewMemory creates an empty in-memory cache.
func NewMemory(opts ...Option) *Memory {
	s := newSettings(opts)
	return &Memory{
		entries: make(map[string]Entry),
		now:     s.now,
	}
}

// Get implements Cache.
func (m *Memory) Get(_ context.Context, key string) (Entry, bool, error) {
	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		return Entry{}, false, ErrClosed
	}
	e, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		return Entry{}, false, nil
	}
	if e.IsExpired(m.now()) {
		m.mu.Lock()
		// Only drop it if nobody rewrote the key meanwhile.
		if cur, ok := m.entries[key]; ok && cur.ExpiresAt.Equal(e.ExpiresAt) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return Entry{}, false, nil
	}

	e.Value = append([]byte(nil), e.Value...)
	return e, true, nil
}

// Set implements Cache.
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.entries[key] = Entry{
		Value:     append([]byte(nil), value...),
		StoredAt:  now,
		ExpiresAt: now.Add(ttl),
	}
	return nil
}

// Delete implements Cache.
func (m *Memory) Delete(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return false, ErrClosed
	}
	_, ok := m.entries[key]
	delete(m.entries, key)
	return ok, nil
}

// Purge implements Purger.
func (m *Memory) Purge(_ context.Context) (int64, error) {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, ErrClosed
	}
	var n int64
	for k, e := range m.entries {
		if e.IsExpired(now) {
			delete(m.entries, k)
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored entries, expired ones included.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Close implements Cache.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.entries = nil
	return nil
}
