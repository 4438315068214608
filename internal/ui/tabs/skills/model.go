// Package skills provides the skills panel tab: the top languages and the
// category share cards.
package skills

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/langstats-tui/internal/app"
	"github.com/j-veylop/langstats-tui/internal/stats"
	"github.com/j-veylop/langstats-tui/internal/ui/components"
	"github.com/j-veylop/langstats-tui/internal/ui/styles"
)

const animationDuration = 600 * time.Millisecond

type animationTickMsg time.Time

func animationTickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*40, func(t time.Time) tea.Msg {
		return animationTickMsg(t)
	})
}

// keyMap defines the key bindings specific to the skills tab.
type keyMap struct {
	ShowAll key.Binding
	Up      key.Binding
	Down    key.Binding
}

// defaultKeyMap returns the default key bindings for the skills tab.
func defaultKeyMap() keyMap {
	return keyMap{
		ShowAll: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "all languages"),
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

// AnimationState eases a bar fill from StartPercent to TargetPercent.
type AnimationState struct {
	StartTime      time.Time
	CurrentPercent float64
	TargetPercent  float64
	StartPercent   float64
}

// Model represents the skills tab state.
type Model struct {
	state          *app.State
	animations     map[string]*AnimationState
	bars           map[string]components.ShareBar
	keys           keyMap
	viewport       viewport.Model
	width          int
	height         int
	animationFrame int
	showAll        bool
}

// New creates a new skills model.
func New(state *app.State) *Model {
	bars := make(map[string]components.ShareBar)
	for _, tag := range stats.Tags() {
		bars[tag] = components.NewShareBar(styles.CategoryColor(tag))
	}
	return &Model{
		state:      state,
		animations: make(map[string]*AnimationState),
		bars:       bars,
		keys:       defaultKeyMap(),
		viewport:   viewport.New(0, 0),
	}
}

// Init starts the loading animation.
func (m *Model) Init() tea.Cmd {
	return animationTickCmd()
}

// Update handles messages for the skills tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case animationTickMsg:
		if cmd := m.handleAnimationTick(time.Time(msg)); cmd != nil {
			cmds = append(cmds, cmd)
		}

	case app.StatsLoadedMsg:
		m.syncAnimationTargets(time.Now())
		cmds = append(cmds, animationTickCmd())

	case app.RefreshMsg, app.StartLoadingMsg:
		cmds = append(cmds, animationTickCmd())

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.ShowAll) {
			m.showAll = !m.showAll
			break
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleAnimationTick(now time.Time) tea.Cmd {
	m.animationFrame++
	animating := m.stepAnimations(now)

	if animating || m.state.IsStatsLoading() {
		return animationTickCmd()
	}
	return nil
}

// syncAnimationTargets points every category animation at the current
// snapshot's share.
func (m *Model) syncAnimationTargets(now time.Time) {
	snap := m.state.GetSnapshot()
	for _, tag := range stats.Tags() {
		target := 0.0
		if snap != nil {
			target = float64(stats.CategoryPercent(snap.Stats, tag))
		}

		a, ok := m.animations[tag]
		if !ok {
			m.animations[tag] = &AnimationState{StartTime: now, TargetPercent: target}
			continue
		}
		if a.TargetPercent != target {
			a.StartPercent = a.CurrentPercent
			a.TargetPercent = target
			a.StartTime = now
		}
	}
}

// stepAnimations advances every animation and reports whether any is still
// running.
func (m *Model) stepAnimations(now time.Time) bool {
	animating := false
	for _, a := range m.animations {
		elapsed := now.Sub(a.StartTime)
		if elapsed >= animationDuration {
			a.CurrentPercent = a.TargetPercent
			continue
		}
		t := float64(elapsed) / float64(animationDuration)
		eased := 1 - (1-t)*(1-t)*(1-t)
		a.CurrentPercent = a.StartPercent + (a.TargetPercent-a.StartPercent)*eased
		animating = true
	}
	return animating
}

// fill returns the animated fill of a category bar.
func (m *Model) fill(tag string, target int) float64 {
	if a, ok := m.animations[tag]; ok {
		return a.CurrentPercent
	}
	return float64(target)
}

// SetSize sets the available size for the skills tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = max(width-styles.DocStyle.GetHorizontalFrameSize(), 0)
	m.viewport.Height = max(height-styles.DocStyle.GetVerticalFrameSize(), 0)
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{m.keys.ShowAll}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.ShowAll},
		{m.keys.Up, m.keys.Down},
	}
}
