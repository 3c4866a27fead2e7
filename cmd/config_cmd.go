package cmd

import (
	"fmt"
	"os"

	"github.com/theirongolddev/calciq/internal/cli"
	"github.com/theirongolddev/calciq/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	cur := cfg.Currency()

	fmt.Fprintf(out, "  Config file: %s\n", config.Path())
	if config.Exists() {
		fmt.Fprintln(out, "  Status: loaded")
	} else {
		fmt.Fprintln(out, "  Status: using defaults (no config file)")
	}
	fmt.Fprintf(out, "  Environment overrides use the %s_ prefix\n", config.EnvPrefix)
	fmt.Fprintln(out)

	fmt.Fprintln(out, "  [General]")
	fmt.Fprintf(out, "    Currency:  %s (%s)\n", cur.Code, cur.Symbol)
	fmt.Fprintln(out)

	fmt.Fprintln(out, "  [Budget]")
	if cfg.Budget.Income > 0 {
		fmt.Fprintf(out, "    Income:    %s\n", cli.FormatMoney(cfg.Budget.Income, cur))
	} else {
		fmt.Fprintln(out, "    Income:    not set")
	}
	if cfg.Budget.FixedRent > 0 {
		fmt.Fprintf(out, "    Rent:      %s\n", cli.FormatMoney(cfg.Budget.FixedRent, cur))
	} else {
		fmt.Fprintln(out, "    Rent:      30 percent of income")
	}
	fmt.Fprintf(out, "    Members:   %d\n", cfg.Budget.Members)
	fmt.Fprintf(out, "    Lifestyle: %s\n", cfg.Budget.Input().Lifestyle)
	if cfg.Budget.City != "" {
		fmt.Fprintf(out, "    City:      %s\n", cfg.Budget.City)
	}
	fmt.Fprintf(out, "    Formula:   %s\n", cfg.Budget.Formula)
	fmt.Fprintln(out)

	fmt.Fprintln(out, "  [Game]")
	fmt.Fprintf(out, "    Resolve delay:    %s\n", cfg.Game.ResolveDelay())
	fmt.Fprintf(out, "    Leaderboard size: %d\n", cfg.Game.LeaderboardSize)
	fmt.Fprintln(out)

	fmt.Fprintln(out, "  [Appearance]")
	fmt.Fprintf(out, "    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Fprintln(out)

	fmt.Fprintln(out, "  [Server]")
	fmt.Fprintf(out, "    Address:       %s\n", cfg.Server.Addr)
	fmt.Fprintf(out, "    Events buffer: %d\n", cfg.Server.EventsBuffer)
	fmt.Fprintln(out)

	fmt.Fprintln(out, "  [Storage]")
	fmt.Fprintf(out, "    Database: %s\n", cfg.DBPath())
	if n, ok := savedPlanCount(cmd); ok {
		fmt.Fprintf(out, "    Saved plans: %d\n", n)
	}
	fmt.Fprintf(out, "    Log file: %s\n", config.LogPath())
	fmt.Fprintln(out)

	fmt.Fprintln(out, "  Run `calciq setup` to reconfigure.")
	return nil
}

// savedPlanCount reports the number of saved plans without creating the
// database when it does not exist yet.
func savedPlanCount(cmd *cobra.Command) (int, bool) {
	if _, err := os.Stat(cfg.DBPath()); err != nil {
		return 0, false
	}
	st, err := openStore()
	if err != nil {
		return 0, false
	}
	defer st.Close()
	n, err := st.PlanCount(cmd.Context())
	if err != nil {
		return 0, false
	}
	return n, true
}
