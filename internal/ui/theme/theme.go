// Package theme holds Sunny's terminal palette and shared styles.
package theme

import (
	"charm.land/lipgloss/v2"
)

// Palette: warm and sunny, readable on dark terminals.
var (
	Primary   = lipgloss.Color("#F59E0B") // Amber
	Secondary = lipgloss.Color("#14B8A6") // Teal
	Accent    = lipgloss.Color("#F97316") // Orange
	Success   = lipgloss.Color("#22C55E")
	Error     = lipgloss.Color("#F43F5E")
	Text      = lipgloss.Color("#F8FAFC")
	TextDim   = lipgloss.Color("#94A3B8")
	Border    = lipgloss.Color("#334155")
)

// Rarity colors for badges.
var (
	Common    = lipgloss.Color("#94A3B8")
	Rare      = lipgloss.Color("#3B82F6")
	Epic      = lipgloss.Color("#A855F7")
	Legendary = lipgloss.Color("#F59E0B")
)

var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	Label = lipgloss.NewStyle().
		Foreground(Secondary).
		Bold(true)
)

// Card frames one section of a report.
func Card(content string, width int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Width(width).
		Padding(0, 1).
		Render(content)
}
