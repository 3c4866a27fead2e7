package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/theirongolddev/calciq/internal/budget"
	"github.com/theirongolddev/calciq/internal/config"
	"github.com/theirongolddev/calciq/internal/tui/theme"

	"github.com/charmbracelet/huh"
)

// SetupValues holds the raw answers of the setup form.
type SetupValues struct {
	Income    string
	Rent      string
	Members   string
	Lifestyle string
	City      string
	Theme     string
}

// NewSetupValues seeds the form with cfg's current values.
func NewSetupValues(cfg config.Config) *SetupValues {
	v := &SetupValues{
		Members:   strconv.Itoa(max(1, cfg.Budget.Members)),
		Lifestyle: string(cfg.Budget.Input().Lifestyle),
		City:      cfg.Budget.City,
		Theme:     theme.ByName(cfg.Appearance.Theme).Name,
	}
	if cfg.Budget.Income > 0 {
		v.Income = strconv.FormatFloat(cfg.Budget.Income, 'f', -1, 64)
	}
	if cfg.Budget.FixedRent > 0 {
		v.Rent = strconv.FormatFloat(cfg.Budget.FixedRent, 'f', -1, 64)
	}
	if _, ok := budget.ParseLifestyle(v.Lifestyle); !ok {
		v.Lifestyle = string(budget.Middle)
	}
	return v
}

// NewSetupForm builds the first-run form writing into v.
func NewSetupForm(v *SetupValues) *huh.Form {
	lifestyles := make([]huh.Option[string], 0, len(budget.Lifestyles))
	for _, ls := range budget.Lifestyles {
		lifestyles = append(lifestyles, huh.NewOption(string(ls), string(ls)))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to calciq").
				Description("A few defaults for your monthly budget.\nEverything can be changed later with `calciq setup`."),
			huh.NewInput().
				Title("Monthly income").
				Placeholder("50000").
				Value(&v.Income).
				Validate(validateIncome),
			huh.NewInput().
				Title("Fixed rent").
				Description("Leave blank to budget 30% of income").
				Value(&v.Rent).
				Validate(validateOptionalAmount),
			huh.NewInput().
				Title("Household members").
				Value(&v.Members).
				Validate(validateMembers),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Lifestyle").
				Options(lifestyles...).
				Value(&v.Lifestyle),
			huh.NewInput().
				Title("City").
				Placeholder("optional").
				Value(&v.City),
			huh.NewSelect[string]().
				Title("Theme").
				Options(huh.NewOptions(theme.Names()...)...).
				Value(&v.Theme),
		),
	).WithShowHelp(true)
}

func parseAmount(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", ""), 64)
	if err != nil {
		return 0, errors.New("enter a number")
	}
	return v, nil
}

func validateIncome(s string) error {
	v, err := parseAmount(s)
	if err != nil {
		return err
	}
	if v < budget.MinIncome {
		return fmt.Errorf("income must be at least %d", budget.MinIncome)
	}
	if v > budget.MaxAmount {
		return errors.New("income is too large")
	}
	return nil
}

func validateOptionalAmount(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	v, err := parseAmount(s)
	if err != nil {
		return err
	}
	if v < 0 {
		return errors.New("must not be negative")
	}
	return nil
}

func validateMembers(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return errors.New("enter a whole number of at least 1")
	}
	return nil
}

// ApplySetup validates v and copies it into cfg.
func ApplySetup(cfg *config.Config, v SetupValues) error {
	if err := validateIncome(v.Income); err != nil {
		return fmt.Errorf("income: %w", err)
	}
	if err := validateOptionalAmount(v.Rent); err != nil {
		return fmt.Errorf("rent: %w", err)
	}
	if err := validateMembers(v.Members); err != nil {
		return fmt.Errorf("members: %w", err)
	}

	income, _ := parseAmount(v.Income)
	rent := 0.0
	if strings.TrimSpace(v.Rent) != "" {
		rent, _ = parseAmount(v.Rent)
	}
	members, _ := strconv.Atoi(strings.TrimSpace(v.Members))
	lifestyle, _ := budget.ParseLifestyle(v.Lifestyle)

	cfg.Budget.Income = income
	cfg.Budget.FixedRent = rent
	cfg.Budget.Members = members
	cfg.Budget.Lifestyle = string(lifestyle)
	cfg.Budget.City = strings.TrimSpace(v.City)
	cfg.Appearance.Theme = theme.ByName(v.Theme).Name
	return nil
}
