package cmd

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/calciq/internal/budget"
	"github.com/theirongolddev/calciq/internal/cli"
	"github.com/theirongolddev/calciq/internal/config"
	"github.com/theirongolddev/calciq/internal/model"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	flagIncome     float64
	flagRent       float64
	flagMembers    int
	flagLifestyle  string
	flagCity       string
	flagFormula    string
	flagSet        []string
	flagSave       string
	flagPlanOutput string
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Compute a monthly budget plan",
	Long: "Allocate monthly income across rent, grocery, bills, transport, shopping,\n" +
		"dining and entertainment. Flags default to the values in the config file.",
	Example: "  calciq plan --income 50000 --members 2\n" +
		"  calciq plan --income 80000 --rent 18000 --lifestyle luxury --set dining=4000\n" +
		"  calciq plan --save \"march\" -o json",
	RunE: runPlan,
}

func init() {
	f := planCmd.Flags()
	f.Float64Var(&flagIncome, "income", 0, "Monthly income")
	f.Float64Var(&flagRent, "rent", 0, "Fixed monthly rent (0 budgets 30% of income)")
	f.IntVar(&flagMembers, "members", 1, "Household members")
	f.StringVar(&flagLifestyle, "lifestyle", "", "Lifestyle tier: frugal, middle or luxury")
	f.StringVar(&flagCity, "city", "", "City, for the summary line")
	f.StringVar(&flagFormula, "formula", "", "Household scaling: standard or scaled")
	f.StringArrayVar(&flagSet, "set", nil, "Override one category after allocation, e.g. --set rent=20000")
	f.StringVar(&flagSave, "save", "", "Save the plan under this name")
	f.StringVarP(&flagPlanOutput, "output", "o", outputTable, "Output format: table, json or yaml")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, _ []string) error {
	format, err := validateOutput(flagPlanOutput)
	if err != nil {
		return err
	}
	in, err := planInput(cmd)
	if err != nil {
		return err
	}
	edits, err := parseEdits(flagSet)
	if err != nil {
		return err
	}

	p, err := budget.ComputePlan(in)
	if err != nil {
		return err
	}
	for _, e := range edits {
		budget.UpdateField(p, e.category, e.raw)
	}
	logger.Debug("plan computed",
		zap.Float64("income", p.Income),
		zap.Int("members", p.Members),
		zap.String("formula", string(p.Formula)),
		zap.Int("edits", len(edits)))

	var saved *model.SavedPlan
	if flagSave != "" {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		sp, err := st.SavePlan(cmd.Context(), flagSave, p)
		if err != nil {
			return fmt.Errorf("saving plan: %w", err)
		}
		logger.Info("plan saved", zap.String("id", sp.ID.String()), zap.String("name", sp.Name))
		saved = &sp
	}

	out := cmd.OutOrStdout()
	if format != outputTable {
		if saved != nil {
			return writeStructured(out, format, saved)
		}
		return writeStructured(out, format, p)
	}

	fmt.Fprintln(out)
	fmt.Fprint(out, renderPlan(p, cfg.Currency()))
	if saved != nil {
		fmt.Fprintf(out, "  Saved as %q (%s)\n", saved.Name, saved.ShortID())
	}
	fmt.Fprintln(out)
	return nil
}

// planInput starts from the configured defaults and applies any flags the
// user set explicitly.
func planInput(cmd *cobra.Command) (budget.Input, error) {
	in := cfg.Budget.Input()
	f := cmd.Flags()

	if f.Changed("income") {
		in.Income = flagIncome
	}
	if f.Changed("rent") {
		in.FixedRent = flagRent
	}
	if f.Changed("members") {
		in.Members = flagMembers
	}
	if f.Changed("city") {
		in.City = flagCity
	}
	if f.Changed("lifestyle") {
		ls, ok := budget.ParseLifestyle(flagLifestyle)
		if !ok {
			return in, fmt.Errorf("unknown lifestyle %q (want frugal, middle or luxury)", flagLifestyle)
		}
		in.Lifestyle = ls
	}
	if f.Changed("formula") {
		formula, err := budget.ParseFormula(flagFormula)
		if err != nil {
			return in, err
		}
		in.Formula = formula
	}
	return in, nil
}

type edit struct {
	category budget.Category
	raw      string
}

// parseEdits turns "field=value" pairs into category edits, in order.
func parseEdits(pairs []string) ([]edit, error) {
	edits := make([]edit, 0, len(pairs))
	for _, pair := range pairs {
		field, raw, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --set %q (want field=value)", pair)
		}
		c, ok := budget.ParseCategory(field)
		if !ok {
			return nil, fmt.Errorf("unknown category %q", field)
		}
		edits = append(edits, edit{category: c, raw: raw})
	}
	return edits, nil
}

func renderPlan(p *budget.Plan, cur config.Currency) string {
	var b strings.Builder

	title := fmt.Sprintf("Budget · %s · %d member(s)", p.Lifestyle, p.Members)
	if p.City != "" {
		title += " · " + p.City
	}
	b.WriteString(cli.RenderTitle(title))
	b.WriteString("\n\n")

	share := func(v float64) string {
		if p.Income <= 0 {
			return "-"
		}
		return cli.FormatPercent(v / p.Income)
	}

	rows := make([][]string, 0, len(budget.AllCategories)+5)
	for _, cv := range p.Categories() {
		group := "want"
		if cv.Category.IsNeed() {
			group = "need"
		}
		rows = append(rows, []string{
			cv.Category.Label(),
			cli.FormatMoney(float64(cv.Amount), cur),
			share(float64(cv.Amount)),
			group,
		})
	}
	rows = append(rows, cli.SeparatorRow,
		[]string{"Needs", cli.FormatMoney(float64(p.TotalNeeds), cur), share(float64(p.TotalNeeds)), ""},
		[]string{"Wants", cli.FormatMoney(float64(p.TotalWants), cur), share(float64(p.TotalWants)), ""},
		[]string{"Savings", cli.FormatMoney(p.DisplaySave(), cur), share(p.DisplaySave()), ""},
	)

	b.WriteString(cli.RenderTable(cli.Table{
		Title:   "Income " + cli.FormatMoney(p.Income, cur),
		Headers: []string{"Category", "Amount", "Share", "Group"},
		Rows:    rows,
	}))

	needs, wants, save := p.Shares()
	b.WriteString("  ")
	b.WriteString(cli.RenderShareBar(needs, wants, save, 44))
	b.WriteString("\n")
	if p.TotalSave < 0 {
		b.WriteString("  ")
		b.WriteString(cli.RenderWarning("Spending exceeds income by " + cli.FormatMoney(-p.TotalSave, cur)))
		b.WriteString("\n")
	}
	if p.Reasoning != "" {
		b.WriteString("  ")
		b.WriteString(cli.RenderMuted(p.Reasoning))
		b.WriteString("\n")
	}
	return b.String()
}
