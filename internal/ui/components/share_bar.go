// Package components provides reusable UI components.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/j-veylop/langstats-tui/internal/logger"
	"github.com/j-veylop/langstats-tui/internal/stats"
	"github.com/j-veylop/langstats-tui/internal/ui/styles"
)

// LoadingText replaces a percentage while stats are loading.
const LoadingText = "..."

const (
	labelWidth   = 18
	percentWidth = 5
	bytesWidth   = 9
)

// ShareBar renders a category percentage as a gradient progress bar.
type ShareBar struct {
	progress progress.Model
	to       string
}

// NewShareBar creates a bar that fades from a muted tone into accent.
func NewShareBar(accent lipgloss.Color) ShareBar {
	to := string(accent)
	from := interpolateColor("#3a3a3a", to, 0.35)
	p := progress.New(
		progress.WithGradient(from, to),
		progress.WithWidth(30),
		progress.WithoutPercentage(),
	)
	return ShareBar{progress: p, to: to}
}

// View renders the bar filled to fill percent next to the percent label.
// The two differ while the fill is animating towards its target.
func (b ShareBar) View(fill float64, percent, width int) string {
	b.progress.Width = max(width-percentWidth-1, 10)

	bar := b.progress.ViewAs(min(max(fill, 0), 100) / 100)

	percentStr := styles.GetShareStyle(percent).
		Width(percentWidth).
		Align(lipgloss.Right).
		Render(fmt.Sprintf("%d%%", percent))

	return lipgloss.JoinHorizontal(lipgloss.Center, bar, " ", percentStr)
}

// ViewLoading renders the shimmer placeholder used while loading.
func (b ShareBar) ViewLoading(width, frame int) string {
	barWidth := max(width-percentWidth-1, 10)
	percentStr := lipgloss.NewStyle().
		Width(percentWidth).
		Align(lipgloss.Right).
		Foreground(lipgloss.Color(b.to)).
		Render(LoadingText)

	return lipgloss.JoinHorizontal(lipgloss.Center,
		shimmer(barWidth, frame, lipgloss.Color(b.to)), " ", percentStr)
}

// RenderGradientBar renders just the bar part, filled from one colour to
// another.
func RenderGradientBar(percent float64, width int, fromHex, toHex string) string {
	if width < 1 {
		return ""
	}

	filled := min(max(int(float64(width)*percent/100), 0), width)

	var b strings.Builder
	for i := 0; i < width; i++ {
		if i < filled {
			t := float64(i) / float64(max(1, width-1))
			color := interpolateColor(fromHex, toHex, t)
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("█"))
		} else {
			b.WriteString(lipgloss.NewStyle().Foreground(styles.Subtle).Render("░"))
		}
	}
	return b.String()
}

// LanguageBar renders one row of the top languages list: name, a bar in the
// language's linguist colour, the percentage and the humanized byte count.
func LanguageBar(share stats.LanguageShare, width int) string {
	color := string(styles.LanguageColor(share.Color))

	barWidth := max(width-labelWidth-percentWidth-bytesWidth-4, 5)
	bar := RenderGradientBar(float64(share.Percent), barWidth, interpolateColor("#3a3a3a", color, 0.5), color)

	dot := lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("●")
	label := styles.ProgressLabelStyle.Width(labelWidth).Render(dot + " " + truncate(share.Name, labelWidth-3))

	percentStr := styles.ProgressPercentStyle.Render(fmt.Sprintf("%d%%", share.Percent))
	bytesStr := lipgloss.NewStyle().
		Foreground(styles.TextSecondary).
		Width(bytesWidth).
		Align(lipgloss.Right).
		Render(humanize.Bytes(uint64(max(share.Bytes, 0))))

	return lipgloss.JoinHorizontal(lipgloss.Center, label, bar, " ", percentStr, " ", bytesStr)
}

// LanguageBarLoading renders the placeholder row for the top languages list.
func LanguageBarLoading(width, frame int) string {
	barWidth := max(width-labelWidth-percentWidth-bytesWidth-4, 5)
	label := styles.ProgressLabelStyle.Width(labelWidth).Render(styles.HelpStyle.Render("Loading..."))
	percentStr := styles.ProgressPercentStyle.Render(LoadingText)
	return lipgloss.JoinHorizontal(lipgloss.Center, label, shimmer(barWidth, frame, styles.Primary), " ", percentStr)
}

// shimmer draws a highlight sweeping back and forth across an empty bar.
func shimmer(width, frame int, accent lipgloss.TerminalColor) string {
	const cycle = 120

	t := float64(frame%cycle) / float64(cycle)
	var p float64
	if t < 0.5 {
		p = t * 2
	} else {
		p = (1 - t) * 2
	}
	eased := p * p * (3 - 2*p)
	pos := int(eased * float64(width))

	var b strings.Builder
	for i := 0; i < width; i++ {
		dist := pos - i
		if dist < 0 {
			dist = -dist
		}
		switch {
		case dist < 3:
			b.WriteString(lipgloss.NewStyle().Foreground(accent).Render("▓"))
		case dist < 5:
			b.WriteString(lipgloss.NewStyle().Foreground(styles.TextSecondary).Render("▒"))
		default:
			b.WriteString(lipgloss.NewStyle().Foreground(styles.BgLight).Render("░"))
		}
	}
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

func interpolateColor(fromHex, toHex string, t float64) string {
	from := hexToRGB(fromHex)
	to := hexToRGB(toHex)

	r := int(float64(from[0]) + t*(float64(to[0])-float64(from[0])))
	g := int(float64(from[1]) + t*(float64(to[1])-float64(from[1])))
	b := int(float64(from[2]) + t*(float64(to[2])-float64(from[2])))

	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

func hexToRGB(hex string) [3]int {
	hex = strings.TrimPrefix(hex, "#")
	var r, g, b int
	if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b); err != nil {
		logger.Debug("failed to parse hex color", "hex", hex, "error", err)
		return [3]int{0, 0, 0}
	}
	return [3]int{r, g, b}
}
