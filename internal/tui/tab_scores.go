package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/calciq/internal/cli"
	"github.com/theirongolddev/calciq/internal/model"
	"github.com/theirongolddev/calciq/internal/tui/components"
	"github.com/theirongolddev/calciq/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

type scoresState struct {
	loaded bool
	top    []model.ScoreEntry
	stats  model.ScoreStats
	err    error
}

func (a App) renderScoresTab(cw int) string {
	t := theme.Active
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	switch {
	case a.st == nil:
		return components.ContentCard("Leaderboard", muted.Render("Scores are unavailable: no database."), cw)
	case a.scores.err != nil:
		warn := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)
		return components.ContentCard("Leaderboard", warn.Render("loading scores: "+a.scores.err.Error()), cw)
	case !a.scores.loaded:
		return components.ContentCard("Leaderboard", muted.Render("Loading..."), cw)
	}

	st := a.scores.stats
	stats := components.MetricCardRow([]components.Metric{
		{Label: "Games", Value: cli.FormatNumber(int64(st.Games))},
		{Label: "Victories", Value: cli.FormatNumber(int64(st.Victories)), Color: t.Green},
		{Label: "Best", Value: cli.FormatNumber(int64(st.Best)), Color: t.AccentBright},
		{Label: "Average", Value: fmt.Sprintf("%.0f", st.Average)},
		{Label: "Top level", Value: fmt.Sprintf("%d", st.MaxLevel)},
	}, cw)

	title := fmt.Sprintf("Top %d", a.cfg.Game.LeaderboardSize)
	if len(a.scores.top) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, stats,
			components.ContentCard(title, muted.Render("No games yet. Press g to play."), cw))
	}
	return lipgloss.JoinVertical(lipgloss.Left, stats,
		components.ContentCard(title, renderScoreRows(a.scores.top, time.Now()), cw))
}

func renderScoreRows(top []model.ScoreEntry, now time.Time) string {
	t := theme.Active
	head := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Bold(true)
	row := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	best := row.Foreground(t.AccentBright).Bold(true)

	lines := []string{head.Render(fmt.Sprintf("%-4s %10s %6s  %-8s %s", "#", "Score", "Level", "Result", "Played"))}
	for i, e := range top {
		result := "timeout"
		if e.Victory {
			result = "victory"
		}
		style := row
		if i == 0 {
			style = best
		}
		lines = append(lines, style.Render(fmt.Sprintf("%-4d %10s %6d  %-8s %s ago",
			i+1, cli.FormatNumber(int64(e.Score)), e.Level, result,
			cli.FormatAge(int64(now.Sub(e.PlayedAt).Seconds())))))
	}
	return strings.Join(lines, "\n")
}
