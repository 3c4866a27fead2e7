package components

import (
	"strings"

	"github.com/theirongolddev/calciq/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Tab is one entry of the tab bar. Key is the shortcut, shown bracketed
// inside the name on inactive tabs.
type Tab struct {
	Name   string
	Key    rune
	KeyPos int
}

// Tab indexes.
const (
	TabBudget = iota
	TabGame
	TabScores
)

var Tabs = []Tab{
	{Name: "Budget", Key: 'b', KeyPos: 0},
	{Name: "Game", Key: 'g', KeyPos: 0},
	{Name: "Scores", Key: 's', KeyPos: 0},
}

// RenderTabBar renders a single row of tabs separated by one column.
func RenderTabBar(activeIdx, width int) string {
	t := theme.Active

	base := lipgloss.NewStyle().Background(t.Surface).Padding(0, 1)
	active := base.Foreground(t.AccentBright).Background(t.SurfaceHover).Bold(true)
	name := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	key := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	bracket := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	sep := lipgloss.NewStyle().Background(t.Surface).Render(" ")

	parts := make([]string, len(Tabs))
	for i, tab := range Tabs {
		if i == activeIdx {
			parts[i] = active.Render(tab.Name)
			continue
		}
		before, k, after := tab.Name[:tab.KeyPos], string(tab.Name[tab.KeyPos]), tab.Name[tab.KeyPos+1:]
		parts[i] = base.Render(name.Render(before) +
			bracket.Render("[") + key.Render(k) + bracket.Render("]") +
			name.Render(after))
	}

	return lipgloss.NewStyle().Background(t.Surface).Width(width).
		Render(strings.Join(parts, sep))
}

// TabVisualWidth is the rendered width of tab, for mouse hit testing.
func TabVisualWidth(tab Tab, active bool) int {
	w := len(tab.Name) + 2
	if !active {
		w += 2
	}
	return w
}

// TabIdxByKey returns the tab bound to key, or -1.
func TabIdxByKey(key rune) int {
	for i, tab := range Tabs {
		if tab.Key == key {
			return i
		}
	}
	return -1
}
