// Package report renders a learner's dashboard for the terminal.
package report

import (
	"fmt"
	"image/color"
	"slices"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/sunny/internal/badges"
	"github.com/abhisek/sunny/internal/dashboard"
	"github.com/abhisek/sunny/internal/ui/components"
	"github.com/abhisek/sunny/internal/ui/theme"
)

// DefaultWidth is used when the caller passes a non-positive width.
const DefaultWidth = 64

// Render draws d as stacked cards at the given width.
func Render(d *dashboard.Dashboard, width int) string {
	if width <= 0 {
		width = DefaultWidth
	}
	inner := width - 4

	sections := []string{
		header(d),
		theme.Card(levelSection(d, inner), inner),
		theme.Card(topicSection(d, inner), inner),
		theme.Card(quizSection(d), inner),
		theme.Card(badgeSection(d), inner),
		theme.Hint.Render(fmt.Sprintf("Next up: %s", d.RecommendedTopic)),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...) + "\n"
}

func header(d *dashboard.Dashboard) string {
	title := theme.Title.Render(fmt.Sprintf("☀ %s", d.Profile.Name))
	sub := theme.Subtitle.Render(fmt.Sprintf("%s · grade %d · %d notes", d.Profile.Email, d.Profile.Grade, d.NoteCount))
	return lipgloss.JoinVertical(lipgloss.Left, title, sub)
}

func levelSection(d *dashboard.Dashboard, width int) string {
	lv := d.Level
	var b strings.Builder
	b.WriteString(theme.Label.Render(fmt.Sprintf("Level %d", lv.Level)))
	b.WriteString(theme.Body.Render(fmt.Sprintf("  %d XP  (%d/%d to next)", lv.XP, lv.XPIntoLevel, lv.XPForLevel)))
	b.WriteString("\n")
	b.WriteString(components.ProgressBar{Percent: lv.Percent / 100, ShowPercent: true, Width: width - 4, Color: theme.Primary}.View())
	b.WriteString("\n")

	streak := fmt.Sprintf("🔥 %d-day streak (best %d)", d.Streak.Current, d.Streak.Longest)
	if d.Streak.Current == 0 {
		streak = "No streak yet, learn today to start one!"
	}
	b.WriteString(theme.Body.Render(streak))
	return b.String()
}

func topicSection(d *dashboard.Dashboard, width int) string {
	lines := []string{theme.Label.Render("Topics")}
	if len(d.Topics) == 0 {
		lines = append(lines, theme.Hint.Render("No topics practiced yet."))
		return strings.Join(lines, "\n")
	}

	labelWidth := 0
	for _, t := range d.Topics {
		labelWidth = max(labelWidth, len(t.Topic))
	}
	for _, t := range d.Topics {
		label := fmt.Sprintf("%-*s", labelWidth, t.Topic)
		bar := components.ProgressBar{
			Label:       label,
			Percent:     float64(t.Mastery) / 100,
			ShowPercent: true,
			Width:       width - 4,
			Color:       masteryColor(t.Mastery),
		}
		lines = append(lines, bar.View())
	}
	return strings.Join(lines, "\n")
}

func masteryColor(m int) color.Color {
	switch {
	case m >= 80:
		return theme.Success
	case m >= 50:
		return theme.Secondary
	default:
		return theme.Accent
	}
}

func quizSection(d *dashboard.Dashboard) string {
	lines := []string{theme.Label.Render("Recent quizzes")}
	if len(d.RecentQuizzes) == 0 {
		lines = append(lines, theme.Hint.Render("No quizzes yet."))
	}
	for _, q := range d.RecentQuizzes {
		mark := "…"
		if q.CompletedAt != nil {
			mark = "✓"
		}
		lines = append(lines, theme.Body.Render(fmt.Sprintf("%s %-14s %2d/%-2d  %3.0f%%  +%d XP  %s",
			mark, q.Topic, q.Correct, q.Total, q.Accuracy*100, q.XPEarned, q.CreatedAt.Format("Jan 2"))))
	}
	return strings.Join(lines, "\n")
}

func badgeSection(d *dashboard.Dashboard) string {
	lines := []string{theme.Label.Render("Badges")}

	types := make([]string, 0, len(d.BadgeCounts))
	for t := range d.BadgeCounts {
		types = append(types, string(t))
	}
	slices.Sort(types)
	counts := make([]string, 0, len(types))
	for _, t := range types {
		counts = append(counts, fmt.Sprintf("%s ×%d", t, d.BadgeCounts[badges.Type(t)]))
	}
	if len(counts) == 0 {
		lines = append(lines, theme.Hint.Render("No badges yet."))
		return strings.Join(lines, "\n")
	}
	lines = append(lines, theme.Subtitle.Render(strings.Join(counts, "  ")))

	for _, a := range d.RecentBadges {
		name := lipgloss.NewStyle().Foreground(rarityColor(a.Rarity)).Bold(true).Render(a.Name)
		lines = append(lines, fmt.Sprintf("%s  %s", name, theme.Hint.Render(a.Reason)))
	}
	return strings.Join(lines, "\n")
}

func rarityColor(r badges.Rarity) color.Color {
	switch r {
	case badges.RarityRare:
		return theme.Rare
	case badges.RarityEpic:
		return theme.Epic
	case badges.RarityLegendary:
		return theme.Legendary
	default:
		return theme.Common
	}
}
