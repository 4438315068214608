package skills

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/j-veylop/langstats-tui/internal/app"
	"github.com/j-veylop/langstats-tui/internal/models"
	"github.com/j-veylop/langstats-tui/internal/stats"
	"github.com/j-veylop/langstats-tui/internal/ui/components"
	"github.com/j-veylop/langstats-tui/internal/ui/styles"
)

// View renders the skills tab.
func (m *Model) View() string {
	snap := m.state.GetSnapshot()

	var sections []string
	switch {
	case snap == nil && m.state.IsStatsLoading():
		sections = m.renderLoading()
	case snap == nil || snap.Stats.IsEmpty():
		sections = []string{m.renderEmpty(snap)}
	default:
		sections = m.renderStats(snap)
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	m.viewport.SetContent(content)

	return styles.DocStyle.Render(m.viewport.View())
}

// cardWidth leaves room for the card border inside the viewport.
func (m *Model) cardWidth() int {
	return max(m.viewport.Width-2, 40)
}

func (m *Model) renderLoading() []string {
	width := m.cardWidth()
	inner := width - 6

	rows := []string{styles.CardTitleStyle.Render("Programming"), ""}
	for range stats.TopN {
		rows = append(rows, components.LanguageBarLoading(inner, m.animationFrame))
	}
	sections := []string{
		styles.TitleStyle.Render("Skills"),
		styles.CardStyle.Width(width).Render(strings.Join(rows, "\n")),
	}

	for _, c := range stats.Categories() {
		body := lipgloss.JoinVertical(lipgloss.Left,
			styles.CardTitleStyle.Render(c.Title),
			styles.HelpStyle.Render("Loading..."),
			"",
			m.bars[c.Tag].ViewLoading(inner, m.animationFrame),
		)
		sections = append(sections, styles.CardStyle.Width(width).Render(body))
	}
	return sections
}

func (m *Model) renderEmpty(snap *models.Snapshot) string {
	var reason string
	failure := m.state.GetFailure()
	switch {
	case errors.Is(failure, app.ErrNoProfile):
		reason = "Add a GitHub login on the Profiles tab."
	case failure != nil:
		reason = "Language stats are unavailable right now."
	case snap != nil && snap.Repos == 0 && snap.Forks > 0:
		reason = fmt.Sprintf("All %d listed repositories are forks.", snap.Forks)
	default:
		reason = "No repositories with language data were found."
	}

	lines := []string{
		styles.CardTitleStyle.Render("No language data"),
		"",
		styles.HelpStyle.Render(reason),
	}
	if failure != nil && !errors.Is(failure, app.ErrNoProfile) {
		lines = append(lines, styles.ErrorTextStyle.Render(failure.Error()))
	}
	lines = append(lines, "", styles.HelpStyle.Render("Press r to retry."))

	return lipgloss.JoinVertical(lipgloss.Left,
		styles.TitleStyle.Render("Skills"),
		styles.CardStyle.Width(m.cardWidth()).Render(strings.Join(lines, "\n")),
	)
}

func (m *Model) renderStats(snap *models.Snapshot) []string {
	width := m.cardWidth()
	inner := width - 6

	sections := []string{m.renderHeader(snap)}

	n := stats.TopN
	title := "Programming"
	if m.showAll {
		n = len(snap.Stats)
		title = "Programming (all)"
	}

	rows := []string{styles.CardTitleStyle.Render(title), ""}
	for _, share := range stats.TopLanguages(snap.Stats, n) {
		rows = append(rows, components.LanguageBar(share, inner))
	}
	if other := stats.Uncategorized(snap.Stats); other > 0 {
		rows = append(rows, "", styles.HelpStyle.Render(fmt.Sprintf(
			"%d%% in languages outside the categories below",
			stats.Percent(other, snap.Stats.Total()))))
	}
	sections = append(sections, styles.CardStyle.Width(width).Render(strings.Join(rows, "\n")))

	for _, share := range stats.CategoryShares(snap.Stats) {
		body := lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.NewStyle().Bold(true).Foreground(styles.CategoryColor(share.Tag)).Render(share.Title),
			styles.CardSubtitleStyle.Render(share.Subtitle),
			"",
			m.bars[share.Tag].View(m.fill(share.Tag, share.Percent), share.Percent, inner),
		)
		sections = append(sections, styles.CardStyle.Width(width).Render(body))
	}

	return sections
}

func (m *Model) renderHeader(snap *models.Snapshot) string {
	title := styles.TitleStyle.Render("Skills: @" + snap.Login)

	parts := []string{
		fmt.Sprintf("%d repos", snap.Repos),
		humanize.Bytes(uint64(max(snap.Stats.Total(), 0))),
	}
	if snap.Forks > 0 {
		parts = append(parts, fmt.Sprintf("%d forks skipped", snap.Forks))
	}
	if snap.Skipped > 0 {
		parts = append(parts, styles.WarningTextStyle.Render(fmt.Sprintf("%d unreadable", snap.Skipped)))
	}
	if !snap.FetchedAt.IsZero() {
		parts = append(parts, fmt.Sprintf("fetched %s (%s)", humanize.Time(snap.FetchedAt), snap.Source))
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, styles.HelpStyle.Render(strings.Join(parts, " · ")), "")
}
