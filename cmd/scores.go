package cmd

import (
	"fmt"
	"time"

	"github.com/theirongolddev/calciq/internal/cli"
	"github.com/theirongolddev/calciq/internal/model"

	"github.com/spf13/cobra"
)

var (
	flagScoresLimit  int
	flagScoresOutput string
)

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Show the game leaderboard",
	Args:  cobra.NoArgs,
	RunE:  runScores,
}

func init() {
	scoresCmd.Flags().IntVarP(&flagScoresLimit, "limit", "n", 0, "Number of entries (default from config)")
	scoresCmd.Flags().StringVarP(&flagScoresOutput, "output", "o", outputTable, "Output format: table, json or yaml")
	rootCmd.AddCommand(scoresCmd)
}

type leaderboard struct {
	Top   []model.ScoreEntry `json:"top" yaml:"top"`
	Stats model.ScoreStats   `json:"stats" yaml:"stats"`
}

func runScores(cmd *cobra.Command, _ []string) error {
	format, err := validateOutput(flagScoresOutput)
	if err != nil {
		return err
	}
	n := flagScoresLimit
	if n <= 0 {
		n = cfg.Game.LeaderboardSize
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	top, err := st.TopScores(cmd.Context(), n)
	if err != nil {
		return fmt.Errorf("loading scores: %w", err)
	}
	stats, err := st.ScoreStats(cmd.Context())
	if err != nil {
		return fmt.Errorf("loading score stats: %w", err)
	}

	out := cmd.OutOrStdout()
	if format != outputTable {
		return writeStructured(out, format, leaderboard{Top: top, Stats: stats})
	}
	if len(top) == 0 {
		fmt.Fprintln(out, "  No games recorded yet. Play one with `calciq game`.")
		return nil
	}

	now := time.Now()
	rows := make([][]string, 0, len(top))
	for i, e := range top {
		result := "timeout"
		if e.Victory {
			result = "victory"
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			cli.FormatNumber(int64(e.Score)),
			fmt.Sprintf("%d", e.Level),
			result,
			cli.FormatAge(int64(now.Sub(e.PlayedAt).Seconds())) + " ago",
		})
	}

	fmt.Fprintln(out)
	fmt.Fprint(out, cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("Top %d", n),
		Headers: []string{"#", "Score", "Level", "Result", "Played"},
		Rows:    rows,
	}))
	fmt.Fprintf(out, "  %s games · %s victories · best %s · average %.0f · top level %d\n\n",
		cli.FormatNumber(int64(stats.Games)),
		cli.FormatNumber(int64(stats.Victories)),
		cli.FormatNumber(int64(stats.Best)),
		stats.Average,
		stats.MaxLevel)
	return nil
}
