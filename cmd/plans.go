package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/theirongolddev/calciq/internal/cli"
	"github.com/theirongolddev/calciq/internal/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var flagPlansOutput string

var plansCmd = &cobra.Command{
	Use:   "plans",
	Short: "List saved budget plans",
	Args:  cobra.NoArgs,
	RunE:  runPlansList,
}

var plansListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved budget plans",
	Args:  cobra.NoArgs,
	RunE:  runPlansList,
}

var plansShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show a saved plan (full ID or unique prefix)",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlansShow,
}

var plansRmCmd = &cobra.Command{
	Use:     "rm ID",
	Aliases: []string{"delete"},
	Short:   "Delete a saved plan",
	Args:    cobra.ExactArgs(1),
	RunE:    runPlansRm,
}

func init() {
	plansCmd.PersistentFlags().StringVarP(&flagPlansOutput, "output", "o", outputTable, "Output format: table, json or yaml")
	plansCmd.AddCommand(plansListCmd, plansShowCmd, plansRmCmd)
	rootCmd.AddCommand(plansCmd)
}

func runPlansList(cmd *cobra.Command, _ []string) error {
	format, err := validateOutput(flagPlansOutput)
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	plans, err := st.ListPlans(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing plans: %w", err)
	}

	out := cmd.OutOrStdout()
	if format != outputTable {
		return writeStructured(out, format, plans)
	}
	if len(plans) == 0 {
		fmt.Fprintln(out, "  No saved plans. Save one with `calciq plan --save NAME`.")
		return nil
	}

	cur := cfg.Currency()
	now := time.Now()
	rows := make([][]string, 0, len(plans))
	for _, sp := range plans {
		rows = append(rows, []string{
			sp.ShortID(),
			sp.Name,
			cli.FormatMoney(sp.Plan.Income, cur),
			cli.FormatMoney(sp.Plan.TotalSave, cur),
			cli.FormatAge(int64(now.Sub(sp.CreatedAt).Seconds())) + " ago",
		})
	}
	fmt.Fprintln(out)
	fmt.Fprint(out, cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("Saved plans (%d)", len(plans)),
		Headers: []string{"ID", "Name", "Income", "Savings", "Created"},
		Rows:    rows,
	}))
	fmt.Fprintln(out)
	return nil
}

func runPlansShow(cmd *cobra.Command, args []string) error {
	format, err := validateOutput(flagPlansOutput)
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	sp, err := st.GetPlan(cmd.Context(), args[0])
	if err != nil {
		return planLookupError(args[0], err)
	}

	out := cmd.OutOrStdout()
	if format != outputTable {
		return writeStructured(out, format, sp)
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  %s  %s  saved %s\n\n", sp.ShortID(), sp.Name, sp.CreatedAt.Local().Format(time.DateTime))
	fmt.Fprint(out, renderPlan(sp.Plan, cfg.Currency()))
	fmt.Fprintln(out)
	return nil
}

func runPlansRm(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.DeletePlan(cmd.Context(), args[0]); err != nil {
		return planLookupError(args[0], err)
	}
	logger.Info("plan deleted", zap.String("id", args[0]))
	fmt.Fprintf(cmd.OutOrStdout(), "  Deleted plan %s\n", args[0])
	return nil
}

func planLookupError(id string, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("no plan matches %q", id)
	case errors.Is(err, store.ErrAmbiguous):
		return fmt.Errorf("%q matches more than one plan; use more of the ID", id)
	}
	return err
}
