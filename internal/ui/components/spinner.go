package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/langstats-tui/internal/ui/styles"
)

// slowAfter is how long a load runs before the spinner shows the wait.
const slowAfter = 2 * time.Second

var spinnerLabelStyle = lipgloss.NewStyle().Foreground(styles.TextSecondary)

// LoadingSpinner is a spinner with a label. Once a load has run for
// slowAfter it also shows the seconds spent waiting.
type LoadingSpinner struct {
	model   spinner.Model
	label   string
	started time.Time
	now     func() time.Time
}

// NewSpinner creates a spinner with the given label.
func NewSpinner(label string) LoadingSpinner {
	s := spinner.New()
	s.Spinner = spinner.MiniDot
	s.Style = lipgloss.NewStyle().Foreground(styles.Primary)

	return LoadingSpinner{model: s, label: label, now: time.Now}
}

// Start marks the beginning of a load and returns the first tick.
func (l *LoadingSpinner) Start() tea.Cmd {
	l.started = l.now()
	return l.model.Tick
}

// Update advances the animation on tick messages.
func (l LoadingSpinner) Update(msg tea.Msg) (LoadingSpinner, tea.Cmd) {
	var cmd tea.Cmd
	l.model, cmd = l.model.Update(msg)
	return l, cmd
}

// View renders the spinner and its label.
func (l LoadingSpinner) View() string {
	out := l.model.View() + " " + spinnerLabelStyle.Render(l.label)
	if l.started.IsZero() {
		return out
	}
	if d := l.now().Sub(l.started); d >= slowAfter {
		out += spinnerLabelStyle.Render(fmt.Sprintf(" (%ds)", int(d.Seconds())))
	}
	return out
}

// RenderSpinnerCentered renders a spinner centered in a given width and height.
func RenderSpinnerCentered(s LoadingSpinner, width, height int) string {
	return styles.CenterBoth(s.View(), width, height)
}
