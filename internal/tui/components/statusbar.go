package components

import (
	"strings"

	"github.com/theirongolddev/calciq/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// RenderStatusBar renders the bottom bar: key hints on the left, an optional
// notice on the right.
func RenderStatusBar(width int, hints, notice string) string {
	t := theme.Active

	left := " [?]help  [q]uit"
	if hints != "" {
		left += "  " + hints
	}
	right := ""
	if notice != "" {
		right = notice + " "
	}

	gap := max(0, width-lipgloss.Width(left)-lipgloss.Width(right))

	return lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface).
		Width(width).
		MaxWidth(width).
		Render(left + strings.Repeat(" ", gap) + right)
}
