// Package budget computes monthly household budgets from income, rent,
// household size and lifestyle tier.
package budget

import (
	"fmt"
	"strings"
)

// Accepted amount range. MaxAmount bounds income, fixed rent and every
// category so that seven categories sum exactly in both int64 and float64.
const (
	MinIncome = 500
	MaxAmount = 1e15
)

// Lifestyle selects the base spending level for groceries and utilities.
type Lifestyle string

// Lifestyle tiers.
const (
	Frugal Lifestyle = "frugal"
	Middle Lifestyle = "middle"
	Luxury Lifestyle = "luxury"
)

// Lifestyles lists the tiers in ascending spending order.
var Lifestyles = []Lifestyle{Frugal, Middle, Luxury}

// ParseLifestyle maps a tier name to a Lifestyle.
// Unknown names fall back to Middle and report ok=false.
func ParseLifestyle(s string) (Lifestyle, bool) {
	switch Lifestyle(strings.ToLower(strings.TrimSpace(s))) {
	case Frugal:
		return Frugal, true
	case Middle:
		return Middle, true
	case Luxury:
		return Luxury, true
	}
	return Middle, false
}

// Formula selects how household size scales groceries and transport.
type Formula string

const (
	// FormulaStandard adds a flat 70% grocery uplift for any household larger
	// than one and charges transport per member.
	FormulaStandard Formula = "standard"
	// FormulaScaled adds 60% grocery per member beyond two and dampens
	// transport to 80% per member for households larger than two.
	FormulaScaled Formula = "scaled"
)

// ParseFormula maps a formula name to a Formula. Empty selects the standard set.
func ParseFormula(s string) (Formula, error) {
	switch Formula(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormulaStandard:
		return FormulaStandard, nil
	case FormulaScaled:
		return FormulaScaled, nil
	}
	return "", fmt.Errorf("unknown formula %q (want %s or %s)", s, FormulaStandard, FormulaScaled)
}

// Input holds the user-supplied parameters for one allocation.
type Input struct {
	Income    float64
	FixedRent float64 // 0 derives rent from income
	Members   int
	Lifestyle Lifestyle
	City      string
	Formula   Formula
}

// ValidationError reports input the allocator refuses to work with.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}
