// Package styles defines the visual styling for the application.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/langstats-tui/internal/stats"
)

// Color definitions for the langstats theme.
var (
	// Primary colors
	Primary   = lipgloss.Color("205") // Pink
	Secondary = lipgloss.Color("63")  // Purple
	Subtle    = lipgloss.Color("240") // Gray
	Highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}

	// Status colors
	Success = lipgloss.Color("42")  // Green
	Error   = lipgloss.Color("196") // Red
	Warning = lipgloss.Color("220") // Yellow
	Info    = lipgloss.Color("39")  // Blue

	// Background colors
	BgDark  = lipgloss.Color("235")
	BgLight = lipgloss.Color("237")

	// Text colors
	TextPrimary   = lipgloss.Color("252")
	TextSecondary = lipgloss.Color("245")
	TextMuted     = lipgloss.Color("240")

	// ToastStyle for floating notifications.
	ToastStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(0, 1).
			MarginBottom(1)
)

// Category accent colours, keyed by category tag.
var categoryColors = map[string]lipgloss.Color{
	stats.TagWeb: lipgloss.Color("#3178c6"),
	stats.TagDB:  lipgloss.Color("#e38c00"),
	stats.TagAI:  lipgloss.Color("#a855f7"),
}

// fallbackLanguageColor is used for languages linguist has no colour for.
const fallbackLanguageColor = "#8b8b8b"

// TitleStyle is used for main headings.
var TitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Primary).
	MarginBottom(1)

// DocStyle provides consistent document margins.
var DocStyle = lipgloss.NewStyle().
	Margin(1, 2).
	Padding(0, 1)

// CardStyle creates a bordered card container.
var CardStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Subtle).
	Padding(1, 2).
	MarginBottom(1)

// CardTitleStyle styles card headers.
var CardTitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Primary)

// CardSubtitleStyle styles the line under a card title.
var CardSubtitleStyle = lipgloss.NewStyle().
	Foreground(TextSecondary).
	Italic(true)

// FocusedStyle is used for focused input elements.
var FocusedStyle = lipgloss.NewStyle().
	Foreground(Primary).
	Bold(true)

// BlurredStyle is used for unfocused input elements.
var BlurredStyle = lipgloss.NewStyle().
	Foreground(TextMuted)

// FocusedBorderStyle creates a focused border.
var FocusedBorderStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Primary).
	Padding(0, 1)

// BlurredBorderStyle creates an unfocused border.
var BlurredBorderStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Subtle).
	Padding(0, 1)

// ProgressLabelStyle styles progress bar labels.
var ProgressLabelStyle = lipgloss.NewStyle().
	Foreground(TextPrimary).
	Width(18)

// ProgressPercentStyle styles the percentage display.
var ProgressPercentStyle = lipgloss.NewStyle().
	Foreground(TextPrimary).
	Width(5).
	Align(lipgloss.Right)

// HelpStyle is the base style for help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(TextMuted)

// HelpKeyStyle styles keyboard shortcut keys.
var HelpKeyStyle = lipgloss.NewStyle().
	Foreground(Primary).
	Bold(true)

// HelpPanelStyle creates the help overlay panel.
var HelpPanelStyle = lipgloss.NewStyle().
	Border(lipgloss.DoubleBorder()).
	BorderForeground(Primary).
	Padding(1, 3).
	Background(BgDark)

// ListItemStyle styles list items.
var ListItemStyle = lipgloss.NewStyle().
	PaddingLeft(2)

// SelectedListItemStyle styles selected list items.
var SelectedListItemStyle = lipgloss.NewStyle().
	Foreground(Primary).
	Bold(true)

// ActiveBadgeStyle marks the active profile.
var ActiveBadgeStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("229")).
	Background(Secondary).
	Padding(0, 1)

// ErrorTextStyle for error messages.
var ErrorTextStyle = lipgloss.NewStyle().
	Foreground(Error)

// SuccessTextStyle for success messages.
var SuccessTextStyle = lipgloss.NewStyle().
	Foreground(Success)

// WarningTextStyle for warning messages.
var WarningTextStyle = lipgloss.NewStyle().
	Foreground(Warning)

// ShareHighStyle for category shares of 50% or more.
var ShareHighStyle = lipgloss.NewStyle().
	Foreground(Success).
	Bold(true)

// ShareMediumStyle for category shares between 20% and 50%.
var ShareMediumStyle = lipgloss.NewStyle().
	Foreground(Warning)

// ShareLowStyle for small category shares.
var ShareLowStyle = lipgloss.NewStyle().
	Foreground(TextSecondary)

// GetShareStyle returns the style for a category percentage.
func GetShareStyle(percent int) lipgloss.Style {
	switch {
	case percent >= 50:
		return ShareHighStyle
	case percent >= 20:
		return ShareMediumStyle
	default:
		return ShareLowStyle
	}
}

// CategoryColor returns the accent colour of a category tag.
func CategoryColor(tag string) lipgloss.Color {
	if c, ok := categoryColors[tag]; ok {
		return c
	}
	return Secondary
}

// LanguageColor turns a linguist hex colour into a lipgloss colour.
func LanguageColor(hex string) lipgloss.Color {
	if len(hex) != 7 || hex[0] != '#' {
		return lipgloss.Color(fallbackLanguageColor)
	}
	return lipgloss.Color(hex)
}

// CenterBoth centers content both horizontally and vertically.
func CenterBoth(content string, width, height int) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center).
		AlignVertical(lipgloss.Center).
		Render(content)
}
