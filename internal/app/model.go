// Package app implements the main Bubble Tea application with tab-based navigation.
package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/j-veylop/langstats-tui/internal/services"
	"github.com/j-veylop/langstats-tui/internal/ui/styles"
)

// TabID represents the identifier for a tab in the application.
type TabID int

const (
	// TabSkills is the ID for the skills panel tab.
	TabSkills TabID = iota
	// TabHistory is the ID for the history tab.
	TabHistory
	// TabProfiles is the ID for the profiles tab.
	TabProfiles
	// TabInfo is the ID for the info tab.
	TabInfo
)

// String returns the string representation of the TabID.
func (t TabID) String() string {
	switch t {
	case TabSkills:
		return "Skills"
	case TabHistory:
		return "History"
	case TabProfiles:
		return "Profiles"
	case TabInfo:
		return "Info"
	default:
		return "Unknown"
	}
}

// Tab defines the interface that all tabs must implement.
type Tab interface {
	// Init initializes the tab and returns any initial commands.
	Init() tea.Cmd

	// Update handles messages and returns the updated tab and any commands.
	Update(msg tea.Msg) (Tab, tea.Cmd)

	// View renders the tab content.
	View() string

	// SetSize sets the available size for the tab.
	SetSize(width, height int)

	// ShortHelp returns key bindings for the short help view.
	ShortHelp() []key.Binding

	// FullHelp returns key bindings for the full help view.
	FullHelp() [][]key.Binding
}

// InputCapturer is implemented by tabs that own the keyboard while a text
// field is focused. Global bindings are suspended while it reports true.
type InputCapturer interface {
	CapturingInput() bool
}

// KeyMap defines the keybindings for the application.
type KeyMap struct {
	Tab1      key.Binding
	Tab2      key.Binding
	Tab3      key.Binding
	Tab4      key.Binding
	NextTab   key.Binding
	PrevTab   key.Binding
	Refresh   key.Binding
	Help      key.Binding
	Quit      key.Binding
	ForceQuit key.Binding
	Up        key.Binding
	Down      key.Binding
	Escape    key.Binding
	PageUp    key.Binding
	PageDown  key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	km := KeyMap{}
	km = setTabKeys(km)
	km = setActionKeys(km)
	km = setNavigationKeys(km)
	return km
}

func setTabKeys(k KeyMap) KeyMap {
	k.Tab1 = key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "skills"))
	k.Tab2 = key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "history"))
	k.Tab3 = key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "profiles"))
	k.Tab4 = key.NewBinding(key.WithKeys("4"), key.WithHelp("4", "info"))
	k.NextTab = key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab"))
	k.PrevTab = key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev tab"))
	return k
}

func setActionKeys(k KeyMap) KeyMap {
	k.Refresh = key.NewBinding(key.WithKeys("r", "ctrl+r"), key.WithHelp("r", "refresh"))
	k.Help = key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help"))
	k.Quit = key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit"))
	k.ForceQuit = key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit"))
	return k
}

func setNavigationKeys(k KeyMap) KeyMap {
	k.Up = key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up"))
	k.Down = key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down"))
	k.Escape = key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel"))
	k.PageUp = key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "page up"))
	k.PageDown = key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("pgdn", "page down"))
	return k
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Refresh, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab1, k.Tab2, k.Tab3, k.Tab4},
		{k.NextTab, k.PrevTab},
		{k.Up, k.Down, k.PageUp, k.PageDown},
		{k.Refresh, k.Help, k.Quit},
	}
}

// Styles defines the application styles.
type Styles struct {
	// Tab bar styles
	TabBar      lipgloss.Style
	ActiveTab   lipgloss.Style
	InactiveTab lipgloss.Style
	StatusLine  lipgloss.Style

	// Notification styles
	NotificationSuccess lipgloss.Style
	NotificationError   lipgloss.Style
	NotificationWarning lipgloss.Style
	NotificationInfo    lipgloss.Style

	// Content styles
	Content lipgloss.Style
	Toast   lipgloss.Style

	Title     lipgloss.Style
	Subtle    lipgloss.Style
	Highlight lipgloss.Style
}

// DefaultStyles returns the default application styles.
func DefaultStyles() Styles {
	s := Styles{}
	s.TabBar = lipgloss.NewStyle().Padding(0, 1).BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).BorderForeground(styles.Subtle)
	s.ActiveTab = lipgloss.NewStyle().Bold(true).Foreground(styles.Highlight).Padding(0, 2)
	s.InactiveTab = lipgloss.NewStyle().Foreground(styles.Subtle).Padding(0, 2)
	s.StatusLine = lipgloss.NewStyle().Foreground(styles.Subtle).Padding(0, 2)

	s.NotificationSuccess = lipgloss.NewStyle().Foreground(styles.Success).Padding(0, 1)
	s.NotificationError = lipgloss.NewStyle().Foreground(styles.Error).Bold(true).Padding(0, 1)
	s.NotificationWarning = lipgloss.NewStyle().Foreground(styles.Warning).Padding(0, 1)
	s.NotificationInfo = lipgloss.NewStyle().Foreground(styles.Info).Padding(0, 1)

	s.Content = lipgloss.NewStyle().Padding(1, 2)
	s.Toast = styles.ToastStyle

	s.Title = lipgloss.NewStyle().Bold(true).Foreground(styles.Highlight)
	s.Subtle = lipgloss.NewStyle().Foreground(styles.Subtle)
	s.Highlight = lipgloss.NewStyle().Foreground(styles.Highlight)

	return s
}

// Model is the main application model.
type Model struct {
	// Tab management
	activeTab TabID
	tabs      []Tab
	tabNames  []string

	// Shared state
	state    *State
	services *services.Manager
	keymap   KeyMap
	styles   Styles

	spinner spinner.Model

	width  int
	height int

	showHelp       bool
	ready          bool
	profilesLoaded bool

	eventChannel chan services.ServiceEvent
}

// NewModel initializes a new application model.
func NewModel(mgr *services.Manager) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Primary)

	return &Model{
		activeTab: TabSkills,
		tabNames:  []string{"Skills", "History", "Profiles", "Info"},
		tabs:      make([]Tab, 4),
		state:     NewState(),
		services:  mgr,
		keymap:    DefaultKeyMap(),
		styles:    DefaultStyles(),
		spinner:   s,
	}
}

// SetTabs sets the tabs for the model.
func (m *Model) SetTabs(tabs []Tab) {
	m.tabs = tabs
	if m.width > 0 && m.height > 0 {
		m.updateTabSizes()
	}
}

// GetState returns the application state.
func (m *Model) GetState() *State {
	return m.state
}

// GetServices returns the service manager.
func (m *Model) GetServices() *services.Manager {
	return m.services
}

// GetActiveTab returns the currently active tab ID.
func (m *Model) GetActiveTab() TabID {
	return m.activeTab
}

// IsReady returns true if the model is ready (window size received).
func (m *Model) IsReady() bool {
	return m.ready
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	m.state.SetLoadingNotification("Loading language stats...")

	cmds := []tea.Cmd{
		m.spinner.Tick,
		defaultTickCmd(),
	}

	if m.services != nil {
		cmds = append(cmds, subscribeToServicesCmd(m.services), loadInitialData(m.services))
	}

	for _, tab := range m.tabs {
		if tab != nil {
			cmds = append(cmds, tab.Init())
		}
	}

	return tea.Batch(cmds...)
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.capturing() {
			if key.Matches(msg, m.keymap.ForceQuit) {
				return m, tea.Quit
			}
			return m, m.updateActiveTab(msg)
		}
		if cmd, handled := m.handleKeyMsg(msg); handled {
			return m, cmd
		}

	case tea.WindowSizeMsg, spinner.TickMsg:
		if cmd := m.handleTeaMsg(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}

	default:
		if appCmds := m.handleAppMsg(msg); len(appCmds) > 0 {
			cmds = append(cmds, appCmds...)
		}
	}

	if isBroadcast(msg) {
		cmds = append(cmds, m.updateAllTabs(msg)...)
	} else if cmd := m.updateActiveTab(msg); cmd != nil {
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// isBroadcast reports whether msg carries shared data every tab must see,
// not only the visible one.
func isBroadcast(msg tea.Msg) bool {
	switch msg.(type) {
	case StatsLoadedMsg, ProfilesLoadedMsg, HistoryChangedMsg, ManagerStatsMsg, TabSwitchMsg:
		return true
	}
	return false
}

func (m *Model) capturing() bool {
	if int(m.activeTab) >= len(m.tabs) || m.tabs[m.activeTab] == nil {
		return false
	}
	c, ok := m.tabs[m.activeTab].(InputCapturer)
	return ok && c.CapturingInput()
}

func (m *Model) handleTeaMsg(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.updateTabSizes()
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return cmd
	}
	return nil
}

func (m *Model) handleAppMsg(msg tea.Msg) []tea.Cmd {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case TickMsg:
		m.state.ClearExpiredNotifications()
		cmds = append(cmds, defaultTickCmd())
	case SubscriptionEventMsg:
		m.eventChannel = msg.Channel
		cmds = append(cmds, waitForServiceEventCmd(m.eventChannel))
	case ServiceEventMsg:
		if cmd := m.handleServiceEvent(msg.Event); cmd != nil {
			cmds = append(cmds, cmd)
		}
		if m.eventChannel != nil {
			cmds = append(cmds, waitForServiceEventCmd(m.eventChannel))
		}
	case StatsLoadedMsg:
		cmds = append(cmds, m.handleStatsLoaded(msg)...)
	case ProfilesLoadedMsg:
		cmds = append(cmds, m.handleProfilesLoaded(msg)...)
	case ManagerStatsMsg:
		m.state.SetStats(msg.Stats)
	case ProfileActionMsg:
		cmds = append(cmds, m.handleProfileAction(msg)...)
	case AddNotificationMsg:
		id := m.state.AddNotification(msg.Type, msg.Message, msg.Duration)
		if msg.Duration > 0 {
			cmds = append(cmds, clearNotificationCmd(id, msg.Duration))
		}
	case RemoveNotificationMsg:
		m.state.RemoveNotification(msg.ID)
	case StartLoadingMsg:
		m.state.SetLoading(msg.Resource, true)
	case StopLoadingMsg:
		m.state.SetLoading(msg.Resource, false)
		if !m.state.AnyLoading() {
			m.state.ClearLoadingNotification()
		}
	case ErrorMsg:
		text := msg.Error.Error()
		if msg.Context != "" {
			text = msg.Context + ": " + text
		}
		cmds = append(cmds, notifyErrorCmd(text))
	case RefreshMsg:
		cmds = append(cmds, m.handleRefresh()...)
	case TabSwitchMsg:
		m.activeTab = msg.Tab
		m.updateTabSizes()
	case ToggleHelpMsg:
		m.showHelp = !m.showHelp
	}
	return cmds
}

func (m *Model) handleStatsLoaded(msg StatsLoadedMsg) []tea.Cmd {
	var cmds []tea.Cmd

	// A result for a profile that is no longer active is stale.
	if active := m.state.ActiveLogin(); msg.Login != "" && active != "" && msg.Login != active {
		return nil
	}

	if msg.Error != nil {
		m.state.SetFailure(msg.Error)
		if !errors.Is(msg.Error, ErrNoProfile) {
			cmds = append(cmds, notifyErrorCmd(fmt.Sprintf("Language stats unavailable: %v", msg.Error)))
		}
	} else {
		m.state.SetSnapshot(msg.Snapshot)
		if msg.Snapshot.Skipped > 0 {
			cmds = append(cmds, notifyWarningCmd(
				fmt.Sprintf("%d repositories could not be read", msg.Snapshot.Skipped)))
		}
	}

	if !m.state.AnyLoading() {
		m.state.ClearLoadingNotification()
	}
	return cmds
}

func (m *Model) handleProfilesLoaded(msg ProfilesLoadedMsg) []tea.Cmd {
	prev := m.state.ActiveLogin()
	m.state.SetProfiles(msg.Profiles, msg.Active)

	first := !m.profilesLoaded
	m.profilesLoaded = true
	next := m.state.ActiveLogin()
	if first || prev == next || m.services == nil {
		return nil
	}

	m.state.SetLoading("stats", true)
	if next == "" {
		return []tea.Cmd{func() tea.Msg { return StatsLoadedMsg{Error: ErrNoProfile} }}
	}
	m.state.SetLoadingNotification(fmt.Sprintf("Loading %s...", next))
	return []tea.Cmd{fetchStatsCmd(m.services, next)}
}

func (m *Model) handleProfileAction(msg ProfileActionMsg) []tea.Cmd {
	if msg.Error != nil {
		return []tea.Cmd{notifyErrorCmd(fmt.Sprintf("Failed to %s %s: %v", msg.Action, msg.Login, msg.Error))}
	}

	var text string
	switch msg.Action {
	case "add":
		text = fmt.Sprintf("Added %s", msg.Login)
	case "remove":
		text = fmt.Sprintf("Removed %s", msg.Login)
	default:
		text = fmt.Sprintf("Switched to %s", msg.Login)
	}

	cmds := []tea.Cmd{notifySuccessCmd(text)}
	if m.services != nil {
		cmds = append(cmds, loadProfilesCmd(m.services))
	}
	return cmds
}

func (m *Model) handleRefresh() []tea.Cmd {
	if m.services == nil {
		return nil
	}
	login := m.state.ActiveLogin()
	if login == "" {
		return []tea.Cmd{notifyWarningCmd("Add a profile first")}
	}

	m.state.SetLoading("stats", true)
	m.state.SetLoadingNotification(fmt.Sprintf("Refreshing %s...", login))
	return []tea.Cmd{refreshStatsCmd(m.services, login)}
}

func (m *Model) updateActiveTab(msg tea.Msg) tea.Cmd {
	if int(m.activeTab) < len(m.tabs) && m.tabs[m.activeTab] != nil {
		var cmd tea.Cmd
		m.tabs[m.activeTab], cmd = m.tabs[m.activeTab].Update(msg)
		return cmd
	}
	return nil
}

func (m *Model) updateAllTabs(msg tea.Msg) []tea.Cmd {
	var cmds []tea.Cmd
	for i, tab := range m.tabs {
		if tab == nil {
			continue
		}
		var cmd tea.Cmd
		m.tabs[i], cmd = tab.Update(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return cmds
}

func (m *Model) updateTabSizes() {
	contentHeight := max(0, m.height-5)

	for _, tab := range m.tabs {
		if tab != nil {
			tab.SetSize(m.width, contentHeight)
		}
	}
}

func (m *Model) switchTab(id TabID) tea.Cmd {
	return func() tea.Msg { return TabSwitchMsg{Tab: id} }
}

// handleKeyMsg handles global keyboard input. It reports whether the key was
// consumed; unconsumed keys are passed on to the active tab.
func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keymap.Quit), key.Matches(msg, m.keymap.ForceQuit):
		return tea.Quit, true

	case key.Matches(msg, m.keymap.Help):
		m.showHelp = !m.showHelp
		return nil, true

	case key.Matches(msg, m.keymap.Escape):
		if m.showHelp {
			m.showHelp = false
			return nil, true
		}

	case key.Matches(msg, m.keymap.Tab1):
		return m.switchTab(TabSkills), true

	case key.Matches(msg, m.keymap.Tab2):
		return m.switchTab(TabHistory), true

	case key.Matches(msg, m.keymap.Tab3):
		return m.switchTab(TabProfiles), true

	case key.Matches(msg, m.keymap.Tab4):
		return m.switchTab(TabInfo), true

	case key.Matches(msg, m.keymap.NextTab):
		if m.showHelp {
			return nil, true
		}
		return m.switchTab(TabID((int(m.activeTab) + 1) % len(m.tabs))), true

	case key.Matches(msg, m.keymap.PrevTab):
		if m.showHelp {
			return nil, true
		}
		return m.switchTab(TabID((int(m.activeTab) - 1 + len(m.tabs)) % len(m.tabs))), true

	case key.Matches(msg, m.keymap.Refresh):
		return func() tea.Msg { return RefreshMsg{} }, true
	}

	return nil, false
}

func (m *Model) handleServiceEvent(event services.ServiceEvent) tea.Cmd {
	switch e := event.(type) {
	case services.FetchingEvent:
		if e.Login == m.state.ActiveLogin() {
			m.state.SetLoading("stats", true)
			m.state.SetLoadingNotification(fmt.Sprintf("Fetching %s...", e.Login))
		}

	case services.StatsUpdatedEvent:
		return func() tea.Msg {
			return StatsLoadedMsg{Login: e.Login, Snapshot: e.Snapshot}
		}

	case services.StatsFailedEvent:
		return func() tea.Msg {
			return StatsLoadedMsg{Login: e.Login, Error: e.Error}
		}

	case services.ProfilesChangedEvent:
		return func() tea.Msg {
			return ProfilesLoadedMsg{Profiles: e.Profiles, Active: e.Active}
		}

	case services.HistoryRecordedEvent:
		cmds := []tea.Cmd{func() tea.Msg { return HistoryChangedMsg(e) }}
		if m.services != nil {
			cmds = append(cmds, loadStatsCmd(m.services))
		}
		return tea.Batch(cmds...)

	case services.ErrorEvent:
		return notifyErrorCmd(fmt.Sprintf("[%s] %v", e.Service, e.Error))

	case services.StatsEvent:
		m.state.SetStats(e)
	}

	return nil
}

// View renders the application UI.
func (m *Model) View() string {
	var b strings.Builder

	if m.width > 0 {
		b.WriteString(m.renderNavbar())
		b.WriteString("\n")
	}

	if !m.ready {
		b.WriteString(m.styles.Content.Render(fmt.Sprintf("%s Loading...", m.spinner.View())))
		return b.String()
	}

	if int(m.activeTab) < len(m.tabs) && m.tabs[m.activeTab] != nil {
		b.WriteString(m.tabs[m.activeTab].View())
	} else {
		b.WriteString(m.renderPlaceholder())
	}

	mainView := b.String()

	if m.showHelp {
		mainView = m.overlayCentered(mainView, m.renderHelp())
	}

	if notifications := m.renderNotifications(); len(notifications) > 0 {
		return m.overlayToasts(mainView, notifications)
	}

	return mainView
}

func (m *Model) overlayCentered(mainView string, overlay string) string {
	mainLines := strings.Split(mainView, "\n")
	overlayLines := strings.Split(overlay, "\n")

	overlayWidth := lipgloss.Width(overlay)

	y := max((m.height-len(overlayLines))/2, 0)
	x := max((m.width-overlayWidth)/2, 0)

	for i, overlayLine := range overlayLines {
		mainY := y + i
		if mainY >= len(mainLines) {
			break
		}

		mainLine := mainLines[mainY]

		left := ansi.Truncate(mainLine, x, "")
		right := ansi.TruncateLeft(mainLine, x+overlayWidth, "")

		if lipgloss.Width(left) < x {
			left += strings.Repeat(" ", x-lipgloss.Width(left))
		}

		mainLines[mainY] = left + overlayLine + right
	}

	return strings.Join(mainLines, "\n")
}

func (m *Model) renderNavbar() string {
	var tabs []string

	for i, name := range m.tabNames {
		if TabID(i) == m.activeTab {
			tabs = append(tabs, m.styles.ActiveTab.Render(fmt.Sprintf("[%d] %s", i+1, name)))
		} else {
			tabs = append(tabs, m.styles.InactiveTab.Render(fmt.Sprintf(" %d  %s", i+1, name)))
		}
	}

	if login := m.state.ActiveLogin(); login != "" {
		tabs = append(tabs, m.styles.StatusLine.Render("@"+login))
	}

	tabBar := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)

	return m.styles.TabBar.Width(m.width).Render(tabBar)
}

func (m *Model) renderNotifications() []string {
	notifications := m.state.GetNotifications()
	if len(notifications) == 0 {
		return nil
	}

	toasts := make([]string, 0, len(notifications))
	for _, n := range notifications {
		var style lipgloss.Style
		var prefix string

		switch n.Type {
		case NotificationSuccess:
			style = m.styles.NotificationSuccess
			prefix = "[OK]"
		case NotificationError:
			style = m.styles.NotificationError
			prefix = "[ERR]"
		case NotificationWarning:
			style = m.styles.NotificationWarning
			prefix = "[WARN]"
		case NotificationInfo:
			style = m.styles.NotificationInfo
			prefix = "[INFO]"
		case NotificationLoading:
			style = m.styles.NotificationInfo
			prefix = m.spinner.View()
		}

		content := style.Render(fmt.Sprintf("%s %s", prefix, n.Message))
		toasts = append(toasts, m.styles.Toast.Render(content))
	}

	return toasts
}

func (m *Model) overlayToasts(mainView string, toasts []string) string {
	toastStack := lipgloss.JoinVertical(lipgloss.Right, toasts...)
	toastLines := strings.Split(toastStack, "\n")
	mainLines := strings.Split(mainView, "\n")

	startX := max(m.width-lipgloss.Width(toastStack)-2, 0)
	startY := 2

	for i, toastLine := range toastLines {
		lineIdx := startY + i
		if lineIdx >= len(mainLines) {
			break
		}

		mainLine := mainLines[lineIdx]
		mainLineWidth := lipgloss.Width(mainLine)

		if mainLineWidth < startX {
			mainLines[lineIdx] = mainLine + strings.Repeat(" ", startX-mainLineWidth) + toastLine
		} else {
			mainLines[lineIdx] = ansi.Truncate(mainLine, startX, "") + toastLine
		}
	}

	return strings.Join(mainLines, "\n")
}

func (m *Model) renderHelp() string {
	var lines []string

	lines = append(lines,
		m.styles.Title.Render("Keyboard Shortcuts"),
		"",
		m.styles.Highlight.Render("Navigation"),
		"  1-4        Switch tabs",
		"  Tab        Next tab",
		"  Shift+Tab  Previous tab",
		"",
		m.styles.Highlight.Render("Actions"),
		"  r          Refresh (skip cache)",
		"  ?          Toggle help",
		"  q/Ctrl+C   Quit",
		"",
	)

	if int(m.activeTab) < len(m.tabs) && m.tabs[m.activeTab] != nil {
		if tabHelp := m.tabs[m.activeTab].ShortHelp(); len(tabHelp) > 0 {
			lines = append(lines, m.styles.Highlight.Render(fmt.Sprintf("%s Tab", m.tabNames[m.activeTab])))
			for _, binding := range tabHelp {
				lines = append(lines, fmt.Sprintf("  %-10s %s", binding.Help().Key, binding.Help().Desc))
			}
		}
	}

	lines = append(lines, "", m.styles.Subtle.Render("Press ? or Esc to close"))

	return styles.HelpPanelStyle.Render(strings.Join(lines, "\n"))
}

func (m *Model) renderPlaceholder() string {
	content := fmt.Sprintf(
		"Tab %d: %s\n\n%s",
		m.activeTab+1,
		m.tabNames[m.activeTab],
		m.styles.Subtle.Render("This tab is not available."),
	)
	return m.styles.Content.Render(content)
}
