package components

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/langstats-tui/internal/stats"
)

func TestNewSpinner(t *testing.T) {
	s := NewSpinner("Fetching")
	if !strings.Contains(s.View(), "Fetching") {
		t.Error("View() missing label")
	}
	if s.Start() == nil {
		t.Error("Start() should return the tick command")
	}
	if _, cmd := s.Update(spinner.TickMsg{ID: s.model.ID()}); cmd == nil {
		t.Error("Update() should schedule the next tick")
	}
}

func TestLoadingSpinner_Elapsed(t *testing.T) {
	start := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		elapsed time.Duration
		want    string
	}{
		{"Fast", time.Second, ""},
		{"Slow", 5 * time.Second, "(5s)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSpinner("Loading history...")
			s.now = func() time.Time { return start }
			s.Start()
			s.now = func() time.Time { return start.Add(tt.elapsed) }

			view := s.View()
			if tt.want == "" && strings.Contains(view, "s)") {
				t.Errorf("View() = %q, want no elapsed time", view)
			}
			if tt.want != "" && !strings.Contains(view, tt.want) {
				t.Errorf("View() = %q, want %q", view, tt.want)
			}
		})
	}
}

func TestRenderSpinnerCentered(t *testing.T) {
	s := NewSpinner("Loading...")
	view := RenderSpinnerCentered(s, 30, 5)
	if !strings.Contains(view, "Loading...") {
		t.Errorf("RenderSpinnerCentered() = %q", view)
	}
	if got := lipgloss.Height(view); got != 5 {
		t.Errorf("height = %d, want 5", got)
	}
}

func TestShareBar_View(t *testing.T) {
	bar := NewShareBar(lipgloss.Color("#3178c6"))

	tests := []struct {
		name    string
		fill    float64
		percent int
		want    string
	}{
		{"Zero", 0, 0, "0%"},
		{"Half", 50, 50, "50%"},
		{"Full", 100, 100, "100%"},
		{"Animating", 12.5, 70, "70%"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := bar.View(tt.fill, tt.percent, 40)
			if !strings.Contains(view, tt.want) {
				t.Errorf("View(%v, %d) = %q, want it to contain %q", tt.fill, tt.percent, view, tt.want)
			}
		})
	}
}

func TestShareBar_ViewLoading(t *testing.T) {
	bar := NewShareBar(lipgloss.Color("#e38c00"))
	view := bar.ViewLoading(40, 7)
	if !strings.Contains(view, LoadingText) {
		t.Errorf("ViewLoading() = %q, want %q", view, LoadingText)
	}
	if strings.Contains(view, "%") {
		t.Error("loading bar must not show a percentage")
	}
}

func TestRenderGradientBar(t *testing.T) {
	tests := []struct {
		name    string
		percent float64
		width   int
		filled  int
	}{
		{"Empty", 0, 10, 0},
		{"Half", 50, 10, 5},
		{"Full", 100, 10, 10},
		{"Over", 150, 10, 10},
		{"Negative", -5, 10, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := RenderGradientBar(tt.percent, tt.width, "#000000", "#ffffff")
			if got := strings.Count(s, "█"); got != tt.filled {
				t.Errorf("filled = %d, want %d", got, tt.filled)
			}
			if got := strings.Count(s, "░"); got != tt.width-tt.filled {
				t.Errorf("empty = %d, want %d", got, tt.width-tt.filled)
			}
		})
	}

	if RenderGradientBar(50, 0, "#000000", "#ffffff") != "" {
		t.Error("zero width should render nothing")
	}
}

func TestLanguageBar(t *testing.T) {
	row := LanguageBar(stats.LanguageShare{
		Name:    "TypeScript",
		Color:   "#3178c6",
		Bytes:   1_500_000,
		Percent: 62,
	}, 80)

	for _, want := range []string{"TypeScript", "62%", "1.5 MB"} {
		if !strings.Contains(row, want) {
			t.Errorf("LanguageBar() = %q, missing %q", row, want)
		}
	}
}

func TestLanguageBar_UnknownColour(t *testing.T) {
	row := LanguageBar(stats.LanguageShare{Name: "Mystery", Bytes: 10, Percent: 100}, 60)
	if !strings.Contains(row, "Mystery") {
		t.Errorf("LanguageBar() = %q", row)
	}
}

func TestLanguageBarLoading(t *testing.T) {
	row := LanguageBarLoading(60, 3)
	if !strings.Contains(row, "Loading...") || !strings.Contains(row, LoadingText) {
		t.Errorf("LanguageBarLoading() = %q", row)
	}
}

func TestInterpolateColor(t *testing.T) {
	tests := []struct {
		t    float64
		want string
	}{
		{0, "#000000"},
		{1, "#ffffff"},
		{0.5, "#7f7f7f"},
	}
	for _, tt := range tests {
		if got := interpolateColor("#000000", "#ffffff", tt.t); got != tt.want {
			t.Errorf("interpolateColor(%v) = %q, want %q", tt.t, got, tt.want)
		}
	}

	if got := hexToRGB("nope"); got != [3]int{0, 0, 0} {
		t.Errorf("hexToRGB(invalid) = %v", got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"Go", 5, "Go"},
		{"Jupyter Notebook", 8, "Jupyter…"},
		{"abc", 1, "a"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestRenderShareChart(t *testing.T) {
	if got := RenderShareChart(nil, 40, 5, ""); !strings.Contains(got, "No data available") {
		t.Errorf("empty chart = %q", got)
	}

	chart := RenderShareChart([]Series{
		{Tag: stats.TagWeb, Label: "Web Development", Values: []float64{40, 50, 60}},
		{Tag: stats.TagDB, Label: "Databases", Values: []float64{30}},
	}, 40, 6, "Category share")
	if !strings.Contains(chart, "Category share") {
		t.Error("chart caption missing")
	}
	if !strings.Contains(chart, "Web Development") {
		t.Error("chart legend missing")
	}
}

func TestRenderShareChart_SinglePoint(t *testing.T) {
	chart := RenderShareChart([]Series{
		{Tag: stats.TagAI, Label: "AI/ML & Cloud", Values: []float64{25}},
	}, 30, 4, "")
	if chart == "" {
		t.Error("single point chart should still render")
	}
}

func TestRenderSparkline(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		width  int
		want   string
	}{
		{"Empty", nil, 10, ""},
		{"ZeroWidth", []float64{50}, 0, ""},
		{"Range", []float64{0, 100}, 10, "▁█"},
		{"Clamped", []float64{-10, 200}, 10, "▁█"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RenderSparkline(tt.values, tt.width); got != tt.want {
				t.Errorf("RenderSparkline() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderLegend(t *testing.T) {
	s := RenderLegend([]LegendItem{
		{Label: "Web", Color: lipgloss.Color("#3178c6")},
		{Label: "Databases", Color: lipgloss.Color("#e38c00")},
	})
	if !strings.Contains(s, "Web") || !strings.Contains(s, "Databases") {
		t.Errorf("RenderLegend() = %q", s)
	}
}
