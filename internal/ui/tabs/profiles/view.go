package profiles

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/langstats-tui/internal/ui/styles"
)

var (
	buttonActiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("229")).
				Background(styles.Primary).
				Bold(true)
	buttonInactiveStyle = lipgloss.NewStyle().
				Foreground(styles.TextSecondary).
				Background(styles.BgLight)
	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(styles.Primary).
			Padding(1, 2)
)

// View renders the profiles tab.
func (m *Model) View() string {
	sections := []string{m.renderTitle()}

	switch {
	case m.adding:
		sections = append(sections, m.renderAddForm())
	case m.confirmDelete:
		sections = append(sections, m.renderDeleteConfirm(), m.renderTable())
	default:
		sections = append(sections, m.renderTable())
	}
	sections = append(sections, m.renderFooter())

	return styles.DocStyle.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Profiles")

	subtitle := fmt.Sprintf("%d profiles configured", len(m.profiles))
	if login := m.state.ActiveLogin(); login != "" {
		subtitle += " · showing " + styles.ActiveBadgeStyle.Render("@"+login)
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, styles.HelpStyle.Render(subtitle), "")
}

func (m *Model) cardWidth() int {
	return max(m.width-8, 60)
}

func (m *Model) renderTable() string {
	if len(m.profiles) == 0 {
		return m.renderEmptyState()
	}
	return styles.CardStyle.Width(m.cardWidth()).Render(m.table.View())
}

func (m *Model) renderEmptyState() string {
	content := lipgloss.JoinVertical(lipgloss.Center,
		"",
		styles.CardTitleStyle.Render("No Profiles Configured"),
		"",
		styles.HelpStyle.Render("Add a GitHub login to see its language stats."),
		"",
		lipgloss.NewStyle().Foreground(styles.Info).Render("Press 'n' to add a profile"),
		"",
	)
	return styles.CardStyle.Width(m.cardWidth()).Render(content)
}

func (m *Model) renderField(label string, field formField, view string, width int) []string {
	var l string
	inputStyle := styles.BlurredBorderStyle
	if m.focusedField == field {
		l = styles.FocusedStyle.Render("> " + label)
		inputStyle = styles.FocusedBorderStyle
	} else {
		l = styles.BlurredStyle.Render("  " + label)
	}
	return []string{l, inputStyle.Width(width).Render(view), ""}
}

func (m *Model) renderAddForm() string {
	cardWidth := min(max(m.width-10, 50), 80)
	inputWidth := cardWidth - 10

	rows := []string{styles.CardTitleStyle.Render("Add Profile"), ""}
	rows = append(rows, m.renderField("GitHub login:", fieldLogin, m.loginInput.View(), inputWidth)...)
	rows = append(rows, m.renderField("Label:", fieldLabel, m.labelInput.View(), inputWidth)...)
	rows = append(rows, m.renderField("Token:", fieldToken, m.tokenInput.View(), inputWidth)...)

	submitStyle, cancelStyle := buttonInactiveStyle, buttonInactiveStyle
	if m.focusedField == fieldSubmit {
		submitStyle = buttonActiveStyle
	}
	if m.focusedField == fieldCancel {
		cancelStyle = buttonActiveStyle
	}
	rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Center,
		submitStyle.Render(" Add Profile "),
		"  ",
		cancelStyle.Render(" Cancel "),
	))

	if m.formError != "" {
		rows = append(rows, "", styles.ErrorTextStyle.Render(m.formError))
	}

	return modalStyle.Width(cardWidth).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderDeleteConfirm() string {
	content := lipgloss.JoinVertical(lipgloss.Center,
		"",
		styles.WarningTextStyle.Bold(true).Render("Delete Profile?"),
		"",
		"Are you sure you want to delete:",
		styles.ErrorTextStyle.Render("@"+m.deleteTarget.Login),
		"",
		"Stored history for this login is kept.",
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			buttonActiveStyle.Render(" (Y)es "),
			"  ",
			buttonInactiveStyle.Render(" (N)o "),
		),
		"",
	)
	return lipgloss.PlaceHorizontal(max(m.width-6, 50), lipgloss.Center, modalStyle.Width(50).Render(content))
}

func (m *Model) renderFooter() string {
	var shortcuts []string
	switch {
	case m.adding:
		shortcuts = []string{
			styles.HelpKeyStyle.Render("Tab") + " next",
			styles.HelpKeyStyle.Render("Enter") + " submit",
			styles.HelpKeyStyle.Render("Esc") + " cancel",
		}
	case m.confirmDelete:
		shortcuts = []string{
			styles.HelpKeyStyle.Render("Y") + " confirm",
			styles.HelpKeyStyle.Render("N") + " cancel",
		}
	default:
		shortcuts = []string{
			styles.HelpKeyStyle.Render("Enter") + " activate",
			styles.HelpKeyStyle.Render("d") + " delete",
			styles.HelpKeyStyle.Render("n") + " add",
		}
	}

	return lipgloss.NewStyle().
		MarginTop(1).
		Foreground(styles.TextMuted).
		Render(strings.Join(shortcuts, styles.HelpStyle.Render(" | ")))
}
