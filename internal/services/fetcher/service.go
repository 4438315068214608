// Package fetcher builds LanguageStats for a GitHub login: it serves a live
// cache entry when there is one and otherwise lists the login's repositories
// and merges their language breakdowns.
package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/j-veylop/langstats-tui/internal/cache"
	"github.com/j-veylop/langstats-tui/internal/logger"
	"github.com/j-veylop/langstats-tui/internal/models"
	"github.com/j-veylop/langstats-tui/internal/stats"
)

// ErrStatsUnavailable is returned when the repository listing itself fails.
// Failures of single repositories never produce it.
var ErrStatsUnavailable = errors.New("language stats unavailable")

// RepoSource is the subset of the GitHub API the fetcher depends on.
type RepoSource interface {
	ListRepos(ctx context.Context, login string, perPage int) ([]models.Repository, error)
	RepoLanguages(ctx context.Context, languagesURL string) (models.LanguageStats, error)
}

// Event represents a fetcher event.
type Event struct {
	Error    error
	Snapshot *models.Snapshot
	Login    string
	Type     EventType
}

// EventType defines the type of fetcher event.
type EventType int

const (
	// EventFetching indicates that a network fetch has started.
	EventFetching EventType = iota
	// EventStatsUpdated indicates that fresh or cached stats are available.
	EventStatsUpdated
	// EventStatsFailed indicates that the listing call failed.
	EventStatsFailed
)

// Config holds configuration for the fetcher service.
type Config struct {
	// Now replaces time.Now, mainly for tests.
	Now             func() time.Time
	PageSize        int
	CacheTTL        time.Duration
	RefreshInterval time.Duration
	MaxConcurrent   int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		PageSize:        10,
		CacheTTL:        time.Hour,
		RefreshInterval: 15 * time.Minute,
		MaxConcurrent:   4,
	}
}

// Service fetches and caches language stats.
type Service struct {
	source    RepoSource
	resolve   func(login string) RepoSource
	onFetched func(models.Snapshot)
	cache     cache.Cache
	current   map[string]models.Snapshot
	eventChan chan Event
	stopChan  chan struct{}
	kick      chan struct{}
	ctx       context.Context
	cancel    context.CancelFunc
	group     singleflight.Group
	active    string
	config    Config
	mu        sync.RWMutex
	startOnce sync.Once
	closeOnce sync.Once
}

// New creates a fetcher. It does nothing in the background until Start.
func New(source RepoSource, c cache.Cache, config Config) *Service {
	def := DefaultConfig()
	if config.PageSize <= 0 {
		config.PageSize = def.PageSize
	}
	if config.CacheTTL <= 0 {
		config.CacheTTL = def.CacheTTL
	}
	if config.RefreshInterval <= 0 {
		config.RefreshInterval = def.RefreshInterval
	}
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = def.MaxConcurrent
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		source:    source,
		cache:     c,
		current:   make(map[string]models.Snapshot),
		eventChan: make(chan Event, 100),
		stopChan:  make(chan struct{}),
		kick:      make(chan struct{}, 1),
		ctx:       ctx,
		cancel:    cancel,
		config:    config,
	}
}

// SetSourceResolver lets each login use its own RepoSource, for example a
// client carrying that profile's token. A nil result falls back to the
// default source.
func (s *Service) SetSourceResolver(fn func(login string) RepoSource) {
	s.mu.Lock()
	s.resolve = fn
	s.mu.Unlock()
}

// SetOnFetched registers fn to run after every successful network fetch,
// before the updated event is sent.
func (s *Service) SetOnFetched(fn func(models.Snapshot)) {
	s.mu.Lock()
	s.onFetched = fn
	s.mu.Unlock()
}

// Events returns the event channel.
func (s *Service) Events() <-chan Event {
	return s.eventChan
}

// Config returns the effective configuration.
func (s *Service) Config() Config {
	return s.config
}

// FetchLanguageStats returns the stats for login. A live cache entry is
// returned without any network call. Otherwise the first page of the login's
// repositories is listed, forks are skipped, and the language breakdown of
// every other repository is merged and written back to the cache.
//
// Only a failed listing is an error (wrapping ErrStatsUnavailable). A
// repository whose languages cannot be read is logged and left out.
func (s *Service) FetchLanguageStats(ctx context.Context, login string) (models.Snapshot, error) {
	if snap, ok := s.fromCache(ctx, login); ok {
		s.remember(snap)
		s.sendEvent(Event{Type: EventStatsUpdated, Login: login, Snapshot: &snap})
		return snap, nil
	}
	return s.fetchShared(ctx, login)
}

// Refresh fetches login from the network regardless of the cache and
// rewrites the cache entry.
func (s *Service) Refresh(ctx context.Context, login string) (models.Snapshot, error) {
	return s.fetchShared(ctx, login)
}

// Invalidate drops the cache entry for login and reports whether there was
// one.
func (s *Service) Invalidate(ctx context.Context, login string) (bool, error) {
	deleted, err := s.cache.Delete(ctx, cache.Key(login))
	if err != nil {
		return false, fmt.Errorf("invalidate %s: %w", login, err)
	}
	return deleted, nil
}

// Current returns the last snapshot produced for login.
func (s *Service) Current(login string) (models.Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.current[login]
	if !ok {
		return models.Snapshot{}, false
	}
	return snap.Clone(), true
}

// SetActive changes the login polled in the background and triggers an
// immediate fetch for it.
func (s *Service) SetActive(login string) {
	s.mu.Lock()
	changed := s.active != login
	s.active = login
	s.mu.Unlock()

	if changed {
		s.trigger()
	}
}

// Active returns the login polled in the background.
func (s *Service) Active() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// Start begins background polling of the active login. Each tick goes
// through the cache, so the network is only used once the entry expired.
func (s *Service) Start() {
	s.startOnce.Do(func() {
		go s.poll()
		s.trigger()
	})
}

func (s *Service) trigger() {
	select {
	case s.kick <- struct{}{}:
	default:
	}
}

func (s *Service) poll() {
	ticker := time.NewTicker(s.config.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.kick:
			s.pollOnce()
		case <-ticker.C:
			s.pollOnce()
		case <-s.stopChan:
			return
		}
	}
}

func (s *Service) pollOnce() {
	login := s.Active()
	if login == "" {
		return
	}
	if _, err := s.FetchLanguageStats(s.ctx, login); err != nil {
		logger.Error("failed to fetch language stats", "login", login, "error", err)
	}
}

// fetchShared joins concurrent fetches of the same login. The network work
// runs on the service context, so a caller that gives up only stops waiting
// and never fails the fetch for the other callers.
func (s *Service) fetchShared(ctx context.Context, login string) (models.Snapshot, error) {
	ch := s.group.DoChan(login, func() (any, error) {
		return s.fetch(s.ctx, login)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return models.Snapshot{}, res.Err
		}
		return res.Val.(models.Snapshot).Clone(), nil
	case <-ctx.Done():
		return models.Snapshot{}, fmt.Errorf("%w: %w", ErrStatsUnavailable, ctx.Err())
	}
}

func (s *Service) sourceFor(login string) RepoSource {
	s.mu.RLock()
	resolve := s.resolve
	s.mu.RUnlock()
	if resolve != nil {
		if src := resolve(login); src != nil {
			return src
		}
	}
	return s.source
}

func (s *Service) fetch(ctx context.Context, login string) (models.Snapshot, error) {
	s.sendEvent(Event{Type: EventFetching, Login: login})
	src := s.sourceFor(login)

	repos, err := src.ListRepos(ctx, login, s.config.PageSize)
	if err != nil {
		return s.fail(login, fmt.Errorf("%w: %w", ErrStatsUnavailable, err))
	}

	var (
		merged  = models.LanguageStats{}
		mu      sync.Mutex
		used    int
		forks   int
		skipped int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.MaxConcurrent)
	for _, repo := range repos {
		if repo.Fork {
			forks++
			continue
		}
		g.Go(func() error {
			langs, err := src.RepoLanguages(gctx, repo.LanguagesURL)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				skipped++
				logger.Warn("skipping repository", "login", login, "repo", repo.FullName, "error", err)
				return nil
			}
			stats.Merge(merged, langs)
			used++
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return s.fail(login, fmt.Errorf("%w: %w", ErrStatsUnavailable, err))
	}

	now := s.config.Now()
	snap := models.Snapshot{
		Login:     login,
		Stats:     merged,
		FetchedAt: now,
		ExpiresAt: now.Add(s.config.CacheTTL),
		Source:    models.SourceNetwork,
		Repos:     used,
		Forks:     forks,
		Skipped:   skipped,
	}

	s.toCache(ctx, snap)
	s.remember(snap)

	s.mu.RLock()
	onFetched := s.onFetched
	s.mu.RUnlock()
	if onFetched != nil {
		onFetched(snap.Clone())
	}

	logger.Info("fetched language stats",
		"login", login, "repos", used, "forks", forks, "skipped", skipped, "languages", len(merged))
	s.sendEvent(Event{Type: EventStatsUpdated, Login: login, Snapshot: &snap})
	return snap, nil
}

func (s *Service) fail(login string, err error) (models.Snapshot, error) {
	s.sendEvent(Event{Type: EventStatsFailed, Login: login, Error: err})
	return models.Snapshot{}, err
}

// cachedSnapshot is the serialized cache value.
type cachedSnapshot struct {
	FetchedAt time.Time            `json:"fetchedAt"`
	Stats     models.LanguageStats `json:"stats"`
	Repos     int                  `json:"repos"`
	Forks     int                  `json:"forks"`
	Skipped   int                  `json:"skipped"`
}

func (s *Service) fromCache(ctx context.Context, login string) (models.Snapshot, bool) {
	key := cache.Key(login)
	entry, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		logger.Warn("cache read failed, fetching instead", "key", key, "error", err)
		return models.Snapshot{}, false
	}
	if !ok || entry.IsExpired(s.config.Now()) {
		return models.Snapshot{}, false
	}

	var c cachedSnapshot
	if err := json.Unmarshal(entry.Value, &c); err != nil {
		logger.Warn("discarding undecodable cache entry", "key", key, "error", err)
		if _, err := s.cache.Delete(ctx, key); err != nil {
			logger.Warn("failed to delete cache entry", "key", key, "error", err)
		}
		return models.Snapshot{}, false
	}
	if c.Stats == nil {
		c.Stats = models.LanguageStats{}
	}

	return models.Snapshot{
		Login:     login,
		Stats:     c.Stats,
		FetchedAt: c.FetchedAt,
		ExpiresAt: entry.ExpiresAt,
		Source:    models.SourceCache,
		Repos:     c.Repos,
		Forks:     c.Forks,
		Skipped:   c.Skipped,
	}, true
}

func (s *Service) toCache(ctx context.Context, snap models.Snapshot) {
	data, err := json.Marshal(cachedSnapshot{
		FetchedAt: snap.FetchedAt,
		Stats:     snap.Stats,
		Repos:     snap.Repos,
		Forks:     snap.Forks,
		Skipped:   snap.Skipped,
	})
	if err != nil {
		logger.Error("failed to encode snapshot", "login", snap.Login, "error", err)
		return
	}
	if err := s.cache.Set(ctx, cache.Key(snap.Login), data, s.config.CacheTTL); err != nil {
		logger.Error("failed to write cache", "login", snap.Login, "error", err)
	}
}

func (s *Service) remember(snap models.Snapshot) {
	s.mu.Lock()
	s.current[snap.Login] = snap.Clone()
	s.mu.Unlock()
}

// sendEvent sends an event to the event channel non-blocking.
func (s *Service) sendEvent(event Event) {
	select {
	case s.eventChan <- event:
	default:
		// Channel full, drop oldest
		select {
		case <-s.eventChan:
		default:
		}
		select {
		case s.eventChan <- event:
		default:
		}
	}
}

// Close stops background polling and cancels in-flight fetches.
func (s *Service) Close() error {
	s.closeOnce.Do(func() {
		s.cancel()
		close(s.stopChan)
	})
	return nil
}

// Stats returns statistics about the fetcher.
type Stats struct {
	Active       string
	TrackedUsers int
	Languages    int
	TotalBytes   int64
}

// GetStats returns current statistics.
func (s *Service) GetStats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{Active: s.active, TrackedUsers: len(s.current)}
	if snap, ok := s.current[s.active]; ok {
		st.Languages = len(snap.Stats)
		st.TotalBytes = snap.Stats.Total()
	}
	return st
}
