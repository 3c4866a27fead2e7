package components

import (
	"strings"

	"github.com/theirongolddev/calciq/internal/game"
	"github.com/theirongolddev/calciq/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// TileWidth is the rendered width of one board cell.
const TileWidth = 8

const tileBack = "?"

// RenderTile draws a single board cell. Face-down tiles show a placeholder;
// matched tiles are dimmed; the cursor cell is bracketed.
func RenderTile(tile game.Tile, faceUp, cursor bool) string {
	t := theme.Active

	style := lipgloss.NewStyle().
		Width(TileWidth - 2).
		Align(lipgloss.Center).
		Background(t.TileBack).
		Foreground(t.TextMuted)

	label := tileBack
	switch {
	case tile.Matched:
		style = style.Background(t.TileMatched).Foreground(t.TextDim)
		label = tile.Symbol
	case faceUp:
		style = style.Background(t.TileFace).Foreground(t.Background).Bold(true)
		label = tile.Symbol
	}

	left, right := " ", " "
	edge := lipgloss.NewStyle().Background(t.Background).Foreground(t.AccentBright).Bold(true)
	if cursor {
		left, right = "▸", "◂"
	}
	return edge.Render(left) + style.Render(label) + edge.Render(right)
}

// RenderBoard lays tiles out in rows of cols cells. cursor is an index
// into tiles; -1 hides it.
func RenderBoard(tiles []game.Tile, cols int, faceUp func(game.Tile) bool, cursor int) string {
	if cols <= 0 || len(tiles) == 0 {
		return ""
	}
	var rows []string
	for start := 0; start < len(tiles); start += cols {
		end := min(start+cols, len(tiles))
		cells := make([]string, 0, cols)
		for i := start; i < end; i++ {
			cells = append(cells, RenderTile(tiles[i], faceUp(tiles[i]), i == cursor))
		}
		rows = append(rows, strings.Join(cells, ""))
	}
	return strings.Join(rows, "\n")
}
