package components

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/calciq/internal/tui/theme"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// ColorForRemaining maps the fraction of time left to a traffic-light color.
func ColorForRemaining(frac float64) lipgloss.Color {
	t := theme.Active
	switch {
	case frac <= 0.15:
		return t.Red
	case frac <= 0.35:
		return t.Orange
	case frac <= 0.6:
		return t.Yellow
	default:
		return t.Green
	}
}

// TimeBar renders the game clock as a bar that drains as time runs out,
// followed by the remaining time. The bar saturates when bonuses push the
// clock past the level's limit.
func TimeBar(remaining, limit, width int, clock string) string {
	t := theme.Active

	frac := 0.0
	if limit > 0 {
		frac = min(1, max(0, float64(remaining)/float64(limit)))
	}
	color := ColorForRemaining(frac)

	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(max(4, width)),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	clockStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface).Bold(true)
	space := lipgloss.NewStyle().Background(t.Surface)

	return bar.ViewAs(frac) + space.Render(" ") + clockStyle.Render(clock)
}

// ProgressBar renders a plain block bar with a percentage label.
func ProgressBar(pct float64, width int) string {
	t := theme.Active
	pct = min(1, max(0, pct))
	filled := int(pct * float64(width))

	fill := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	empty := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	label := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)

	return fill.Render(strings.Repeat("█", filled)) +
		empty.Render(strings.Repeat("░", width-filled)) +
		label.Render(fmt.Sprintf(" %.0f%%", pct*100))
}
