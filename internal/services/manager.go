// Package services provides service orchestration for the TUI.
package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gen2brain/beeep"

	"github.com/j-veylop/langstats-tui/internal/cache"
	"github.com/j-veylop/langstats-tui/internal/config"
	"github.com/j-veylop/langstats-tui/internal/db"
	"github.com/j-veylop/langstats-tui/internal/github"
	"github.com/j-veylop/langstats-tui/internal/logger"
	"github.com/j-veylop/langstats-tui/internal/models"
	"github.com/j-veylop/langstats-tui/internal/services/fetcher"
	"github.com/j-veylop/langstats-tui/internal/services/profiles"
	"github.com/j-veylop/langstats-tui/internal/stats"
)

type (
	// FetchingEvent is emitted when a network fetch starts.
	FetchingEvent struct {
		Login string
	}

	// StatsUpdatedEvent is emitted when stats are available for a login.
	StatsUpdatedEvent struct {
		Login    string
		Snapshot models.Snapshot
	}

	// StatsFailedEvent is emitted when the repository listing failed.
	StatsFailedEvent struct {
		Error error
		Login string
	}

	// ProfilesChangedEvent is emitted when the profile list or the active
	// profile changes.
	ProfilesChangedEvent struct {
		Active   *models.Profile
		Profiles []models.Profile
	}

	// HistoryRecordedEvent is emitted after a snapshot was stored.
	HistoryRecordedEvent struct {
		Login string
	}

	// ErrorEvent is emitted when an error occurs in any service.
	ErrorEvent struct {
		Error   error
		Service string
	}

	// StatsEvent summarizes what the manager currently tracks.
	StatsEvent struct {
		ProfileCount  int
		TrackedLogins int
		Languages     int
		TotalBytes    int64
		Snapshots     int
	}
)

// ServiceEvent is the interface implemented by all service events.
type ServiceEvent interface {
	isServiceEvent()
}

func (FetchingEvent) isServiceEvent()        {}
func (StatsUpdatedEvent) isServiceEvent()    {}
func (StatsFailedEvent) isServiceEvent()     {}
func (ProfilesChangedEvent) isServiceEvent() {}
func (HistoryRecordedEvent) isServiceEvent() {}
func (ErrorEvent) isServiceEvent()           {}
func (StatsEvent) isServiceEvent()           {}

// Notifier shows a desktop notification.
type Notifier func(title, message string) error

func beeepNotify(title, message string) error {
	return beeep.Notify(title, message, "")
}

// Option configures a Manager.
type Option func(*options)

type options struct {
	source fetcher.RepoSource
	notify Notifier
	now    func() time.Time
}

// WithRepoSource replaces the GitHub client, mainly for tests.
func WithRepoSource(src fetcher.RepoSource) Option {
	return func(o *options) { o.source = src }
}

// WithNotifier replaces the desktop notifier.
func WithNotifier(n Notifier) Option {
	return func(o *options) { o.notify = n }
}

// WithClock replaces time.Now for the fetcher and the cache.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// Manager orchestrates services and event routing.
type Manager struct {
	cfg         *config.Config
	database    *db.DB
	cache       cache.Cache
	client      *github.Client
	fetcher     *fetcher.Service
	profiles    *profiles.Service
	notify      Notifier
	now         func() time.Time
	stopChan    chan struct{}
	subscribers []chan<- ServiceEvent
	mu          sync.RWMutex
	closeOnce   sync.Once
}

// NewManager opens the database, cache and profiles and wires the fetcher
// to them. Background polling only begins with Start.
func NewManager(cfg *config.Config, opts ...Option) (*Manager, error) {
	o := options{notify: beeepNotify, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	m := &Manager{
		cfg:      cfg,
		notify:   o.notify,
		now:      o.now,
		stopChan: make(chan struct{}),
	}

	var err error
	m.database, err = db.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	m.cache, err = cache.Open(context.Background(), cfg, m.database, cache.WithClock(o.now))
	if err != nil {
		_ = m.database.Close()
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}

	m.profiles, err = profiles.New(cfg.ProfilesPath, cfg.GitHubUsername)
	if err != nil {
		_ = m.cache.Close()
		_ = m.database.Close()
		return nil, fmt.Errorf("failed to load profiles: %w", err)
	}

	source := o.source
	if source == nil {
		m.client, err = github.NewClient(github.Options{
			BaseURL: cfg.GitHubAPIURL,
			Token:   cfg.GitHubToken,
			Timeout: cfg.HTTPTimeout,
		})
		if err != nil {
			_ = m.profiles.Close()
			_ = m.cache.Close()
			_ = m.database.Close()
			return nil, fmt.Errorf("failed to create github client: %w", err)
		}
		source = m.client
	}

	m.fetcher = fetcher.New(source, m.cache, fetcher.Config{
		PageSize:        cfg.RepoPageSize,
		CacheTTL:        cfg.CacheTTL,
		RefreshInterval: cfg.RefreshInterval,
		MaxConcurrent:   cfg.MaxConcurrent,
		Now:             o.now,
	})
	if m.client != nil {
		m.fetcher.SetSourceResolver(m.sourceFor)
	}
	m.fetcher.SetOnFetched(m.record)
	m.fetcher.SetActive(m.profiles.ActiveLogin())

	go m.routeEvents()

	return m, nil
}

// sourceFor returns a client carrying the profile's own token, if it has one.
func (m *Manager) sourceFor(login string) fetcher.RepoSource {
	if token := m.profiles.TokenFor(login); token != "" {
		return m.client.WithToken(token)
	}
	return nil
}

// Start begins background polling of the active profile.
func (m *Manager) Start() {
	m.fetcher.Start()
}

// routeEvents routes events from individual services to subscribers.
func (m *Manager) routeEvents() {
	for {
		select {
		case event := <-m.fetcher.Events():
			m.handleFetcherEvent(event)

		case event := <-m.profiles.Events():
			m.handleProfilesEvent(event)

		case <-m.stopChan:
			return
		}
	}
}

func (m *Manager) handleFetcherEvent(event fetcher.Event) {
	switch event.Type {
	case fetcher.EventFetching:
		m.broadcast(FetchingEvent{Login: event.Login})

	case fetcher.EventStatsUpdated:
		if event.Snapshot != nil {
			m.broadcast(StatsUpdatedEvent{Login: event.Login, Snapshot: event.Snapshot.Clone()})
		}

	case fetcher.EventStatsFailed:
		m.broadcast(StatsFailedEvent{Login: event.Login, Error: event.Error})
	}
}

func (m *Manager) handleProfilesEvent(event profiles.Event) {
	switch event.Type {
	case profiles.EventError:
		m.broadcast(ErrorEvent{Service: "profiles", Error: event.Error})
		return
	case profiles.EventActiveChanged, profiles.EventProfilesChanged:
		m.fetcher.SetActive(m.profiles.ActiveLogin())
	}

	m.broadcast(ProfilesChangedEvent{
		Profiles: m.profiles.GetProfiles(),
		Active:   m.profiles.GetActive(),
	})
}

// record stores a network snapshot and notifies about large share moves.
func (m *Manager) record(snap models.Snapshot) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	prev, err := m.database.LatestSnapshot(ctx, snap.Login)
	if err != nil {
		logger.Warn("failed to load previous snapshot", "login", snap.Login, "error", err)
	}

	if _, err := m.database.InsertSnapshot(ctx, snap); err != nil {
		logger.Error("failed to store snapshot", "login", snap.Login, "error", err)
		m.broadcast(ErrorEvent{Service: "history", Error: err})
		return
	}
	m.broadcast(HistoryRecordedEvent{Login: snap.Login})

	if prev != nil {
		m.checkNotifications(snap.Login, prev.Stats, snap.Stats)
	}
}

// ShareShifts maps each category tag whose share moved by at least threshold
// points between prev and next to its signed change.
func ShareShifts(prev, next models.LanguageStats, threshold int) map[string]int {
	if threshold <= 0 {
		return nil
	}
	before := stats.ShareMap(prev)
	after := stats.ShareMap(next)

	shifts := make(map[string]int)
	for _, tag := range stats.Tags() {
		d := after[tag] - before[tag]
		if d >= threshold || -d >= threshold {
			shifts[tag] = d
		}
	}
	return shifts
}

func (m *Manager) checkNotifications(login string, prev, next models.LanguageStats) {
	shifts := ShareShifts(prev, next, m.cfg.NotifyShift)
	if len(shifts) == 0 || m.notify == nil {
		return
	}

	tags := make([]string, 0, len(shifts))
	for tag := range shifts {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	parts := make([]string, 0, len(tags))
	for _, tag := range tags {
		title := tag
		if c, ok := stats.Lookup(tag); ok {
			title = c.Title
		}
		parts = append(parts, fmt.Sprintf("%s %+d%%", title, shifts[tag]))
	}

	title := fmt.Sprintf("Language shift: %s", login)
	if err := m.notify(title, strings.Join(parts, ", ")); err != nil {
		logger.Warn("failed to send notification", "error", err)
	}
}

// broadcast sends an event to all subscribers.
func (m *Manager) broadcast(event ServiceEvent) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sub := range m.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber channel full, skip
		}
	}
}

// Subscribe creates a channel for receiving service events.
// Returns a tea.Cmd that can be used in Bubble Tea's Init or Update.
func (m *Manager) Subscribe() (chan ServiceEvent, tea.Cmd) {
	ch := make(chan ServiceEvent, 50)

	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()

	return ch, WaitForEvent(ch)
}

// WaitForEvent returns a tea.Cmd for the next event on a channel.
func WaitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return ev
	}
}

// Unsubscribe removes a subscriber channel.
func (m *Manager) Unsubscribe(ch chan ServiceEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// ActiveLogin returns the login of the active profile.
func (m *Manager) ActiveLogin() string {
	return m.profiles.ActiveLogin()
}

// FetchLanguageStats returns stats for login, using the cache when live.
func (m *Manager) FetchLanguageStats(ctx context.Context, login string) (models.Snapshot, error) {
	return m.fetcher.FetchLanguageStats(ctx, login)
}

// Refresh refetches login from the network.
func (m *Manager) Refresh(ctx context.Context, login string) (models.Snapshot, error) {
	return m.fetcher.Refresh(ctx, login)
}

// History returns the category share history of login.
func (m *Manager) History(ctx context.Context, login string, tr models.TimeRange) (*models.HistorySummary, error) {
	if m.database == nil {
		return nil, errors.New("database not initialized")
	}
	return m.database.ShareHistory(ctx, login, tr, m.now())
}

// PurgeCache drops the cache entry of login, or every expired entry when
// login is empty. It returns the number of entries removed.
func (m *Manager) PurgeCache(ctx context.Context, login string) (int64, error) {
	if login != "" {
		deleted, err := m.fetcher.Invalidate(ctx, login)
		if err != nil || !deleted {
			return 0, err
		}
		return 1, nil
	}

	p, ok := m.cache.(cache.Purger)
	if !ok {
		return 0, nil
	}
	return p.Purge(ctx)
}

// PruneHistory deletes snapshots older than age and compacts the database.
func (m *Manager) PruneHistory(ctx context.Context, age time.Duration) (int64, error) {
	n, err := m.database.PruneSnapshots(ctx, m.now().Add(-age))
	if err != nil {
		return 0, fmt.Errorf("prune history: %w", err)
	}
	if n > 0 {
		if err := m.database.Vacuum(ctx); err != nil {
			logger.Warn("vacuum failed", "error", err)
		}
	}
	return n, nil
}

// GetStats returns aggregated statistics.
func (m *Manager) GetStats() StatsEvent {
	fs := m.fetcher.GetStats()
	ev := StatsEvent{
		ProfileCount:  len(m.profiles.GetProfiles()),
		TrackedLogins: fs.TrackedUsers,
		Languages:     fs.Languages,
		TotalBytes:    fs.TotalBytes,
	}

	if login := m.ActiveLogin(); login != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		n, err := m.database.CountSnapshots(ctx, login)
		if err != nil {
			logger.Warn("failed to count snapshots", "login", login, "error", err)
		}
		ev.Snapshots = n
	}
	return ev
}

// Config returns the configuration the manager was built with.
func (m *Manager) Config() *config.Config {
	return m.cfg
}

// Profiles returns the profiles service.
func (m *Manager) Profiles() *profiles.Service {
	return m.profiles
}

// Fetcher returns the fetcher service.
func (m *Manager) Fetcher() *fetcher.Service {
	return m.fetcher
}

// Database returns the database instance for direct access.
func (m *Manager) Database() *db.DB {
	return m.database
}

// InitialState returns the stats already known for the active profile and
// the profile list, for TUI initialization.
func (m *Manager) InitialState() (*models.Snapshot, []models.Profile) {
	var snap *models.Snapshot
	if login := m.ActiveLogin(); login != "" {
		if s, ok := m.fetcher.Current(login); ok {
			snap = &s
		}
	}
	return snap, m.profiles.GetProfiles()
}

// Close closes the manager and all its services.
func (m *Manager) Close() error {
	var errs []error
	m.closeOnce.Do(func() {
		close(m.stopChan)

		m.mu.Lock()
		for _, sub := range m.subscribers {
			close(sub)
		}
		m.subscribers = nil
		m.mu.Unlock()

		if err := m.fetcher.Close(); err != nil {
			errs = append(errs, err)
		}
		if err := m.profiles.Close(); err != nil {
			errs = append(errs, err)
		}
		if err := m.cache.Close(); err != nil {
			errs = append(errs, err)
		}
		if err := m.database.Close(); err != nil {
			errs = append(errs, err)
		}
	})
	return errors.Join(errs...)
}
