package info

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/langstats-tui/internal/app"
	"github.com/j-veylop/langstats-tui/internal/config"
	"github.com/j-veylop/langstats-tui/internal/models"
	"github.com/j-veylop/langstats-tui/internal/services"
)

func testConfig() *config.Config {
	return &config.Config{
		GitHubUsername:  "octocat",
		GitHubToken:     "ghp_abcdefgh1234",
		GitHubAPIURL:    "https://api.github.com",
		RepoPageSize:    10,
		CacheBackend:    config.CacheBackendRedis,
		CacheTTL:        time.Hour,
		RedisAddr:       "localhost:6379",
		DatabasePath:    "/tmp/langstats.db",
		ProfilesPath:    "/tmp/profiles.json",
		RefreshInterval: 15 * time.Minute,
		MaxConcurrent:   4,
		NotifyShift:     5,
	}
}

func TestNew(t *testing.T) {
	m := New(app.NewState(), &config.Config{})
	if m == nil {
		t.Fatal("New returned nil")
	}
	if m.Init() != nil {
		t.Error("Init should not return a command")
	}
}

func TestModel_Update(t *testing.T) {
	m := New(app.NewState(), &config.Config{})
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if updated == nil {
		t.Error("Update returned nil model")
	}
}

func TestModel_Scroll(t *testing.T) {
	m := New(app.NewState(), testConfig())
	m.SetSize(100, 8)
	_ = m.View()

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'G'}})
	if m.viewport.YOffset == 0 {
		t.Fatal("G should scroll to the bottom")
	}

	m.Update(app.TabSwitchMsg{Tab: app.TabInfo})
	if m.viewport.YOffset != 0 {
		t.Errorf("YOffset = %d after entering the tab, want 0", m.viewport.YOffset)
	}
}

func TestModel_ViewConfig(t *testing.T) {
	m := New(app.NewState(), testConfig())
	m.SetSize(100, 80)

	view := m.View()
	for _, want := range []string{"octocat", "********1234", "redis (localhost:6379)", "TTL 1h0m0s", "/tmp/langstats.db", "Nothing fetched yet", "(disabled)"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if strings.Contains(view, "ghp_abcdefgh1234") {
		t.Error("view must not show the raw token")
	}
}

func TestModel_ViewNilConfig(t *testing.T) {
	m := New(app.NewState(), nil)
	m.SetSize(100, 60)
	if view := m.View(); !strings.Contains(view, "Configuration not loaded") {
		t.Errorf("View() = %q", view)
	}
}

func TestModel_ViewSnapshot(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		expiresAt time.Time
		want      string
	}{
		{"Fresh", now.Add(30 * time.Minute), "from now"},
		{"Expired", now.Add(-time.Minute), "expired"},
		{"NoExpiry", time.Time{}, "never"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := app.NewState()
			state.SetSnapshot(models.Snapshot{
				FetchedAt: now.Add(-30 * time.Minute),
				ExpiresAt: tt.expiresAt,
				Stats:     models.LanguageStats{"Go": 2048, "SQL": 1024},
				Login:     "octocat",
				Source:    models.SourceCache,
				Repos:     3,
				Forks:     1,
			})
			state.SetStats(services.StatsEvent{ProfileCount: 2, TrackedLogins: 1, Snapshots: 1200})

			m := New(state, testConfig())
			m.now = func() time.Time { return now }
			m.SetSize(100, 100)

			view := m.View()
			for _, want := range []string{"@octocat", "cache", "30 minutes ago", "3 read, 1 forks", "3.1 kB", "1,200", tt.want} {
				if !strings.Contains(view, want) {
					t.Errorf("view missing %q", want)
				}
			}
		})
	}
}

func TestModel_ViewFailure(t *testing.T) {
	state := app.NewState()
	state.SetFailure(errors.New("rate limited"))

	m := New(state, testConfig())
	m.SetSize(100, 80)
	if view := m.View(); !strings.Contains(view, "Unavailable: rate limited") {
		t.Errorf("View() = %q", view)
	}
}
