// Package history provides the history tab: how the category shares of the
// active login moved over the stored snapshots.
package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/langstats-tui/internal/app"
	"github.com/j-veylop/langstats-tui/internal/models"
	"github.com/j-veylop/langstats-tui/internal/services"
	"github.com/j-veylop/langstats-tui/internal/ui/components"
	"github.com/j-veylop/langstats-tui/internal/ui/styles"
)

const loadTimeout = 10 * time.Second

var errNoServices = errors.New("services not initialized")

// keyMap defines the key bindings specific to the history tab.
type keyMap struct {
	ToggleRange key.Binding
	Up          key.Binding
	Down        key.Binding
}

// defaultKeyMap returns the default key bindings for the history tab.
func defaultKeyMap() keyMap {
	return keyMap{
		ToggleRange: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "toggle time range"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
	}
}

// historyLoadedMsg is sent when history data is loaded.
type historyLoadedMsg struct {
	summary   *models.HistorySummary
	login     string
	timeRange models.TimeRange
}

// historyErrorMsg is sent when there's an error loading history.
type historyErrorMsg struct {
	err   error
	login string
}

// Model represents the history tab state.
type Model struct {
	state    *app.State
	services *services.Manager
	spinner  components.LoadingSpinner
	keys     keyMap
	viewport viewport.Model
	width    int
	height   int

	timeRange   models.TimeRange
	summary     *models.HistorySummary
	login       string
	loading     bool
	lastRefresh time.Time
	err         error
}

// New creates a new history model.
func New(state *app.State, svc *services.Manager) *Model {
	return &Model{
		state:     state,
		services:  svc,
		spinner:   components.NewSpinner("Loading history..."),
		keys:      defaultKeyMap(),
		viewport:  viewport.New(0, 0),
		timeRange: models.TimeRange30Days,
	}
}

// Init initializes the history tab.
func (m *Model) Init() tea.Cmd {
	m.loading = true
	return tea.Batch(m.spinner.Start(), m.loadHistoryCmd())
}

// loadHistoryCmd loads the share history of the active login for the
// current time range.
func (m *Model) loadHistoryCmd() tea.Cmd {
	login := m.state.ActiveLogin()
	tr := m.timeRange
	svc := m.services

	return func() tea.Msg {
		if svc == nil {
			return historyErrorMsg{err: errNoServices, login: login}
		}
		if login == "" {
			return historyErrorMsg{err: app.ErrNoProfile}
		}

		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		summary, err := svc.History(ctx, login, tr)
		if err != nil {
			return historyErrorMsg{err: err, login: login}
		}
		return historyLoadedMsg{summary: summary, login: login, timeRange: tr}
	}
}

func (m *Model) reload() tea.Cmd {
	m.loading = true
	return tea.Batch(m.spinner.Start(), m.loadHistoryCmd())
}

// Update handles messages for the history tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.login != m.state.ActiveLogin() || msg.timeRange != m.timeRange {
			break
		}
		m.summary = msg.summary
		m.login = msg.login
		m.loading = false
		m.lastRefresh = time.Now()
		m.err = nil

	case historyErrorMsg:
		m.loading = false
		m.summary = nil
		m.login = msg.login
		m.err = msg.err
		if !errors.Is(msg.err, app.ErrNoProfile) {
			cmds = append(cmds, app.NotifyError(fmt.Sprintf("History error: %v", msg.err)))
		}

	case app.HistoryChangedMsg:
		if msg.Login == m.state.ActiveLogin() {
			cmds = append(cmds, m.reload())
		}

	case app.ProfilesLoadedMsg:
		if m.state.ActiveLogin() != m.login {
			cmds = append(cmds, m.reload())
		}

	case app.TabSwitchMsg:
		if msg.Tab == app.TabHistory && m.summary == nil && !m.loading {
			cmds = append(cmds, m.reload())
		}

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.ToggleRange) {
			m.timeRange = m.timeRange.Next()
			cmds = append(cmds, m.reload())
			break
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)

	default:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	return m, tea.Batch(cmds...)
}

// SetSize sets the available size for the history tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = max(width-styles.DocStyle.GetHorizontalFrameSize(), 0)
	m.viewport.Height = max(height-styles.DocStyle.GetVerticalFrameSize(), 0)
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{m.keys.ToggleRange}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.ToggleRange},
		{m.keys.Up, m.keys.Down},
	}
}
