package cmd

import (
	"errors"
	"fmt"

	"github.com/theirongolddev/calciq/internal/budget"
	"github.com/theirongolddev/calciq/internal/config"
	"github.com/theirongolddev/calciq/internal/tui"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Set budget defaults and theme",
	Args:  cobra.NoArgs,
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, _ []string) error {
	if !stdoutIsTerminal() {
		return errors.New("setup needs an interactive terminal; edit " + config.Path() + " instead")
	}

	vals := tui.NewSetupValues(cfg)
	if err := tui.NewSetupForm(vals).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Fprintln(cmd.OutOrStdout(), "  Setup cancelled, nothing saved.")
			return nil
		}
		return fmt.Errorf("setup form: %w", err)
	}

	if err := tui.ApplySetup(&cfg, *vals); err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\n  Saved to %s\n\n", config.Path())
	if p, err := budget.ComputePlan(cfg.Budget.Input()); err == nil {
		fmt.Fprint(out, renderPlan(p, cfg.Currency()))
		fmt.Fprintln(out)
	}
	return nil
}
