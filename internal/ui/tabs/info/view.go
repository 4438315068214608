package info

import (
	"fmt"
	"runtime"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/j-veylop/langstats-tui/internal/config"
	"github.com/j-veylop/langstats-tui/internal/ui/styles"
	"github.com/j-veylop/langstats-tui/internal/version"
)

// View renders the info tab.
func (m *Model) View() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		m.renderTitle(),
		m.renderConfigCard(),
		m.renderCacheCard(),
		m.renderAboutCard(),
	)
	m.viewport.SetContent(content)

	return styles.DocStyle.Render(m.viewport.View())
}

func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Info")
	subtitle := styles.HelpStyle.Render("Configuration, cache and build information")

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) cardWidth() int {
	return min(max(m.width-6, 50), 80)
}

func (m *Model) renderConfigCard() string {
	rows := []string{styles.CardTitleStyle.Render("Configuration"), ""}

	if m.config == nil {
		rows = append(rows, styles.HelpStyle.Render("Configuration not loaded"))
		return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	}

	c := m.config
	cacheBackend := c.CacheBackend
	if c.CacheBackend == config.CacheBackendRedis {
		cacheBackend += " (" + c.RedisAddr + ")"
	}
	logFile := c.LogFile
	if logFile == "" {
		logFile = "(disabled)"
	}

	rows = append(rows,
		renderRow("GitHub user", orDash(c.GitHubUsername)),
		renderRow("Token", c.MaskedToken()),
		renderRow("API", orDash(c.GitHubAPIURL)),
		renderRow("Repos per fetch", strconv.Itoa(c.RepoPageSize)),
		renderRow("Cache", fmt.Sprintf("%s, TTL %s", orDash(cacheBackend), c.CacheTTL)),
		renderRow("Refresh", c.RefreshInterval.String()),
		renderRow("Concurrency", strconv.Itoa(c.MaxConcurrent)),
		renderRow("Notify shift", fmt.Sprintf("%d points", c.NotifyShift)),
		renderRow("Database", c.DatabasePath),
		renderRow("Profiles file", c.ProfilesPath),
		renderRow("Log file", logFile),
	)

	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderCacheCard() string {
	rows := []string{styles.CardTitleStyle.Render("Language stats"), ""}

	snap := m.state.GetSnapshot()
	if snap == nil {
		status := "Nothing fetched yet"
		if err := m.state.GetFailure(); err != nil {
			status = styles.ErrorTextStyle.Render("Unavailable: " + err.Error())
		}
		rows = append(rows, renderRow("Status", status))
	} else {
		now := m.now()
		expiry := humanize.RelTime(snap.ExpiresAt, now, "ago", "from now")
		if snap.ExpiresAt.IsZero() {
			expiry = "never"
		} else if snap.IsExpired(now) {
			expiry = styles.WarningTextStyle.Render("expired " + expiry)
		}

		rows = append(rows,
			renderRow("Login", "@"+snap.Login),
			renderRow("Source", string(snap.Source)),
			renderRow("Fetched", humanize.RelTime(snap.FetchedAt, now, "ago", "from now")),
			renderRow("Expires", expiry),
			renderRow("Repositories", fmt.Sprintf("%d read, %d forks, %d skipped", snap.Repos, snap.Forks, snap.Skipped)),
			renderRow("Languages", fmt.Sprintf("%d (%s)", len(snap.Stats), humanize.Bytes(uint64(max(snap.Stats.Total(), 0))))),
		)
	}

	if s := m.state.GetStats(); s != nil {
		rows = append(rows, "",
			renderRow("Profiles", strconv.Itoa(s.ProfileCount)),
			renderRow("Cached logins", strconv.Itoa(s.TrackedLogins)),
			renderRow("Snapshots", humanize.Comma(int64(s.Snapshots))),
		)
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderAboutCard() string {
	v := version.Short()
	rows := []string{
		styles.CardTitleStyle.Render("About " + version.Name),
		"",
		renderRow("Version", v),
		renderRow("Commit", version.Commit),
		renderRow("Built", version.Date),
		renderRow("Go Version", runtime.Version()),
		renderRow("Platform", fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)),
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func renderRow(label, value string) string {
	labelStyle := lipgloss.NewStyle().
		Width(18).
		Foreground(styles.TextMuted)

	valueStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary)

	return labelStyle.Render(label+":") + " " + valueStyle.Render(value)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
