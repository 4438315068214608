package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/j-veylop/langstats-tui/internal/stats"
	"github.com/j-veylop/langstats-tui/internal/ui/styles"
)

// seriesColors maps category tags to chart colours.
var seriesColors = map[string]asciigraph.AnsiColor{
	stats.TagWeb: asciigraph.DodgerBlue,
	stats.TagDB:  asciigraph.DarkOrange,
	stats.TagAI:  asciigraph.MediumPurple,
}

// Series is one named line of a chart.
type Series struct {
	Tag    string
	Label  string
	Values []float64
}

// RenderShareChart plots category shares over time on a fixed 0-100 axis.
func RenderShareChart(series []Series, width, height int, caption string) string {
	var data [][]float64
	var colors []asciigraph.AnsiColor
	var legends []string

	maxLen := 0
	for _, s := range series {
		maxLen = max(maxLen, len(s.Values))
	}
	if maxLen == 0 {
		return styles.HelpStyle.Render("No data available")
	}

	for _, s := range series {
		// Pad shorter series so every line spans the full width.
		values := make([]float64, maxLen)
		copy(values, s.Values)
		if maxLen == 1 {
			// asciigraph needs two points to draw a line.
			values = append(values, values[0])
		}
		data = append(data, values)

		c, ok := seriesColors[s.Tag]
		if !ok {
			c = asciigraph.Default
		}
		colors = append(colors, c)
		legends = append(legends, s.Label)
	}

	width = max(width, 20)
	height = max(height, 3)

	return asciigraph.PlotMany(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.LowerBound(0),
		asciigraph.UpperBound(100),
		asciigraph.Precision(0),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(colors...),
		asciigraph.SeriesLegends(legends...),
	)
}

// sparkChars are the block characters used for sparklines, low to high.
var sparkChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// RenderSparkline creates a compact inline sparkline for percentages.
func RenderSparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}

	step := max(float64(len(values))/float64(width), 1)

	var result strings.Builder
	for i := 0; i < width && int(float64(i)*step) < len(values); i++ {
		v := values[int(float64(i)*step)]
		idx := int(v / 100 * float64(len(sparkChars)-1))
		idx = min(max(idx, 0), len(sparkChars)-1)
		result.WriteRune(sparkChars[idx])
	}

	return result.String()
}

// LegendItem represents a single legend entry.
type LegendItem struct {
	Label string
	Color lipgloss.TerminalColor
}

// RenderLegend creates a chart legend.
func RenderLegend(items []LegendItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		colorBox := lipgloss.NewStyle().Foreground(item.Color).Render("■")
		parts = append(parts, fmt.Sprintf("%s %s", colorBox, item.Label))
	}
	return strings.Join(parts, "  ")
}
