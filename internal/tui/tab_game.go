package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/calciq/internal/cli"
	"github.com/theirongolddev/calciq/internal/game"
	"github.com/theirongolddev/calciq/internal/model"
	"github.com/theirongolddev/calciq/internal/tui/components"
	"github.com/theirongolddev/calciq/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// gameState mirrors the engine for rendering.
type gameState struct {
	snap   game.Snapshot
	cursor int
	notice string
}

// onGameChanged refreshes the snapshot and re-arms the subscription.
func (a App) onGameChanged() (tea.Model, tea.Cmd) {
	a, cmd := a.syncGame()
	return a, tea.Batch(cmd, waitForGameMsg(a.gameSub))
}

// syncGame pulls a fresh snapshot. A transition into the ended state
// submits the final score.
func (a App) syncGame() (App, tea.Cmd) {
	prev := a.game.snap
	snap := a.engine.Snapshot()
	a.game.snap = snap

	if a.game.cursor >= len(snap.Tiles) || snap.Level() != prev.Level() {
		a.game.cursor = 0
	}

	var cmd tea.Cmd
	switch {
	case snap.State == game.StateEnded && prev.State != game.StateEnded:
		a.game.notice = fmt.Sprintf("%s at level %d, score %d", snap.Outcome, snap.Level(), snap.Score)
		cmd = recordScoreCmd(a.st, model.ScoreEntry{
			Score:   snap.Score,
			Level:   snap.Level(),
			Victory: snap.Outcome == game.OutcomeVictory,
		})
	case snap.State == game.StateCountdown && prev.State != game.StateCountdown:
		a.game.notice = ""
	}
	return a, cmd
}

func (a App) updateGameKeys(key string) (tea.Model, tea.Cmd) {
	// Catch an end of game that has not been delivered yet before the
	// engine state is replaced.
	a, pending := a.syncGame()

	cols := max(1, a.game.snap.Settings.Cols)
	n := len(a.game.snap.Tiles)

	switch key {
	case "h", "left":
		if a.game.cursor%cols > 0 {
			a.game.cursor--
		}
	case "l", "right":
		if a.game.cursor%cols < cols-1 && a.game.cursor+1 < n {
			a.game.cursor++
		}
	case "k", "up":
		if a.game.cursor-cols >= 0 {
			a.game.cursor -= cols
		}
	case "j", "down":
		if a.game.cursor+cols < n {
			a.game.cursor += cols
		}
	case "enter", " ":
		if a.game.cursor < n {
			a.engine.FlipTile(a.game.snap.Tiles[a.game.cursor].ID)
		}
	case "n":
		if !a.engine.Start() {
			a.game.notice = "game already running, r restarts"
		}
	case "r":
		a.engine.Restart()
		a.game.notice = "restarted"
	case "x":
		a.engine.Exit()
		a.game.notice = ""
	}
	return a, pending
}

func (a App) renderGameTab(cw int) string {
	t := theme.Active
	snap := a.game.snap
	bg := lipgloss.WithWhitespaceBackground(t.Background)

	comboColor := t.TextPrimary
	if snap.Combo > 1 {
		comboColor = t.Yellow
	}
	hud := components.MetricCardRow([]components.Metric{
		{Label: "Level", Value: fmt.Sprintf("%d / %d", snap.Level(), game.MaxLevel), Color: t.AccentBright},
		{Label: "Score", Value: cli.FormatNumber(int64(snap.Score))},
		{Label: "Combo", Value: fmt.Sprintf("x%d", snap.Combo), Color: comboColor},
		{Label: "Matches", Value: fmt.Sprintf("%d / %d", snap.Matches, snap.Settings.Pairs)},
	}, cw)

	inner := components.CardInnerWidth(cw)
	clock := cli.FormatClock(snap.TimeRemaining)
	status := components.TimeBar(snap.TimeRemaining, snap.Settings.TimeLimit, inner-8, clock)
	if snap.Settings.Pairs > 0 {
		status += "\n" + components.ProgressBar(float64(snap.Matches)/float64(snap.Settings.Pairs), inner-6)
	}
	timeCard := components.ContentCard("Time", status, cw)

	var center string
	switch snap.State {
	case game.StateCountdown:
		center = a.renderCountdown(snap.Countdown)
	case game.StateEnded:
		center = a.renderEnded(snap)
	default:
		center = a.renderBoard(snap)
	}
	center = lipgloss.PlaceHorizontal(cw, lipgloss.Center, center, bg)

	return lipgloss.JoinVertical(lipgloss.Left, hud, timeCard, center, a.renderLastResult(snap, cw))
}

func (a App) renderBoard(snap game.Snapshot) string {
	t := theme.Active

	if len(snap.Tiles) == 0 {
		muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
		return components.ContentCard("", muted.Render("Press n to start a new game"), 40)
	}

	board := components.RenderBoard(snap.Tiles, snap.Settings.Cols,
		func(tile game.Tile) bool { return snap.IsFaceUp(tile.ID) },
		a.game.cursor)

	title := fmt.Sprintf("Level %d", snap.Level())
	if snap.State == game.StateSetup {
		title = "Press n to start"
	}
	return components.ContentCard(title, board, snap.Settings.Cols*components.TileWidth+4)
}

func (a App) renderCountdown(n int) string {
	t := theme.Active
	label := "GO!"
	if n > 0 {
		label = fmt.Sprintf("%d", n)
	}
	style := lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Foreground(t.AccentBright).
		Bold(true).
		Padding(1, 6).
		Align(lipgloss.Center)
	return style.Render("Get ready\n\n" + label)
}

func (a App) renderEnded(snap game.Snapshot) string {
	t := theme.Active

	title, color := "Time's up", t.Red
	if snap.Outcome == game.OutcomeVictory {
		title, color = "Victory!", t.Green
	}

	head := lipgloss.NewStyle().Foreground(color).Background(t.Surface).Bold(true)
	body := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	hint := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var b strings.Builder
	b.WriteString(head.Render(title))
	b.WriteString("\n\n")
	b.WriteString(body.Render(fmt.Sprintf("Final score  %s", cli.FormatNumber(int64(snap.Score)))))
	b.WriteString("\n")
	b.WriteString(body.Render(fmt.Sprintf("Reached      level %d", snap.Level())))
	b.WriteString("\n\n")
	b.WriteString(hint.Render("n play again · x back to setup"))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Background(t.Surface).
		Padding(1, 4).
		Render(b.String())
}

func (a App) renderLastResult(snap game.Snapshot, cw int) string {
	t := theme.Active
	if snap.State != game.StatePlaying {
		return ""
	}
	var s string
	switch snap.LastResult {
	case game.ResultMatch:
		s = lipgloss.NewStyle().Foreground(t.Green).Background(t.Background).
			Render(fmt.Sprintf("match! +%ds", snap.LastDelta))
	case game.ResultMismatch:
		s = lipgloss.NewStyle().Foreground(t.Red).Background(t.Background).
			Render(fmt.Sprintf("no match -%ds", snap.LastDelta))
	default:
		return ""
	}
	return lipgloss.PlaceHorizontal(cw, lipgloss.Center, s, lipgloss.WithWhitespaceBackground(t.Background))
}
