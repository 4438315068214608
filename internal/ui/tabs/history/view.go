package history

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/j-veylop/langstats-tui/internal/app"
	"github.com/j-veylop/langstats-tui/internal/stats"
	"github.com/j-veylop/langstats-tui/internal/ui/components"
	"github.com/j-veylop/langstats-tui/internal/ui/styles"
)

// View renders the history tab.
func (m *Model) View() string {
	if m.loading && m.summary == nil {
		return components.RenderSpinnerCentered(m.spinner, m.width, m.height)
	}
	if m.err != nil {
		return m.renderError()
	}
	if !m.summary.HasData() {
		return m.renderEmpty()
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.renderShareChart(),
		m.renderTrends(),
	)
	m.viewport.SetContent(content)

	return styles.DocStyle.Render(m.viewport.View())
}

func (m *Model) cardWidth() int {
	return max(m.viewport.Width-2, 40)
}

func (m *Model) renderError() string {
	if errors.Is(m.err, app.ErrNoProfile) {
		return styles.DocStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
			styles.TitleStyle.Render("History"),
			"",
			styles.HelpStyle.Render("Add a GitHub login on the Profiles tab to record history."),
		))
	}
	return styles.DocStyle.Render(fmt.Sprintf("%s %v",
		styles.ErrorTextStyle.Render("Error:"),
		m.err,
	))
}

func (m *Model) renderEmpty() string {
	return styles.DocStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		styles.TitleStyle.Render("History"),
		"",
		styles.HelpStyle.Render(fmt.Sprintf("No snapshots recorded in the last %s.", strings.ToLower(m.timeRange.String()))),
		styles.HelpStyle.Render("A snapshot is stored every time stats are fetched from GitHub."),
		styles.HelpStyle.Render("Press t to change the time range."),
	))
}

func (m *Model) renderHeader() string {
	title := styles.TitleStyle.Render("History: @" + m.summary.Login)

	rangeStyle := lipgloss.NewStyle().
		Foreground(styles.Primary).
		Bold(true).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Primary)
	rangeIndicator := rangeStyle.Render(fmt.Sprintf("[t] %s", m.timeRange))

	header := lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", rangeIndicator)

	subtitle := styles.HelpStyle.Render(fmt.Sprintf("%d snapshots: %s → %s",
		len(m.summary.Points),
		m.summary.First.Format("Jan 2, 2006 15:04"),
		m.summary.Last.Format("Jan 2, 2006 15:04"),
	))

	return lipgloss.JoinVertical(lipgloss.Left, header, subtitle, "")
}

func (m *Model) renderShareChart() string {
	cardWidth := m.cardWidth()

	rows := []string{styles.CardTitleStyle.Render("Category share"), ""}

	var series []components.Series
	var legend []components.LegendItem
	for _, c := range stats.Categories() {
		series = append(series, components.Series{
			Tag:    c.Tag,
			Label:  c.Title,
			Values: m.summary.Series(c.Tag),
		})
		legend = append(legend, components.LegendItem{Label: c.Title, Color: styles.CategoryColor(c.Tag)})
	}

	chart := components.RenderShareChart(series, max(cardWidth-16, 30), 8,
		fmt.Sprintf("Share of total bytes (%%), %d snapshots", len(m.summary.Points)))
	for line := range strings.SplitSeq(chart, "\n") {
		rows = append(rows, "  "+line)
	}
	rows = append(rows, "", "  "+components.RenderLegend(legend))

	return styles.CardStyle.Width(cardWidth).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderTrends() string {
	cardWidth := m.cardWidth()
	sparkWidth := max(cardWidth-42, 10)

	rows := []string{styles.CardTitleStyle.Render("Trends"), ""}
	for _, c := range stats.Categories() {
		values := m.summary.Series(c.Tag)
		first, last := int(values[0]), int(values[len(values)-1])

		label := lipgloss.NewStyle().
			Foreground(styles.CategoryColor(c.Tag)).
			Width(18).
			Render(c.Title)
		spark := lipgloss.NewStyle().
			Foreground(styles.CategoryColor(c.Tag)).
			Render(components.RenderSparkline(values, sparkWidth))

		rows = append(rows, fmt.Sprintf("%s %s  %3d%% %s", label, spark, last, renderDelta(last-first)))
	}

	latest := m.summary.Points[len(m.summary.Points)-1]
	rows = append(rows, "",
		styles.HelpStyle.Render(fmt.Sprintf("Latest: %d languages, %s, top %s, fetched %s",
			latest.Languages,
			humanize.Bytes(uint64(max(latest.TotalBytes, 0))),
			orDash(latest.TopLang),
			humanize.Time(latest.FetchedAt),
		)))

	return styles.CardStyle.Width(cardWidth).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func renderDelta(d int) string {
	switch {
	case d > 0:
		return styles.SuccessTextStyle.Render(fmt.Sprintf("▲%d", d))
	case d < 0:
		return styles.ErrorTextStyle.Render(fmt.Sprintf("▼%d", -d))
	default:
		return styles.HelpStyle.Render("=")
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
