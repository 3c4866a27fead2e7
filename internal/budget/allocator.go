package budget

import (
	"fmt"
	"math"
)

// Base monthly costs per lifestyle tier, in currency units.
var (
	baseGrocery = map[Lifestyle]float64{Frugal: 2500, Middle: 3000, Luxury: 5000}
	baseUtility = map[Lifestyle]float64{Frugal: 600, Middle: 1000, Luxury: 2000}
)

const (
	transportPerMember = 1500
	rentShare          = 0.30
	shoppingShare      = 0.2
	diningShare        = 0.2
	entertainmentShare = 0.1
)

// ComputePlan allocates income across the seven categories.
//
// Needs are sized from lifestyle and household size, rent defaults to 30% of
// income, and half of whatever remains is split across wants. When needs
// exceed what is left after rent, grocery, utility and transport shrink
// proportionally and wants stay at zero. Rent is never scaled down.
func ComputePlan(in Input) (*Plan, error) {
	if math.IsNaN(in.Income) || math.IsInf(in.Income, 0) || in.Income < MinIncome {
		return nil, &ValidationError{Field: "income", Reason: "income too low"}
	}
	if in.Income > MaxAmount {
		return nil, &ValidationError{Field: "income", Reason: "income too high"}
	}

	in = normalize(in)

	grocery := math.Floor(baseGrocery[in.Lifestyle] * groceryScale(in.Formula, in.Members))
	utility := math.Floor(baseUtility[in.Lifestyle] * (1 + float64(in.Members-1)*0.3))
	transport := math.Floor(transportPerMember * transportScale(in.Formula, in.Members))

	rent := math.Floor(in.Income * rentShare)
	if in.FixedRent > 0 {
		rent = math.Floor(in.FixedRent)
	}

	disposable := math.Max(0, in.Income-rent)
	needs := grocery + utility + transport
	remaining := disposable - needs

	var shopping, dining, entertainment float64
	if remaining > 0 {
		shopping = math.Floor(remaining * shoppingShare)
		dining = math.Floor(remaining * diningShare)
		entertainment = math.Floor(remaining * entertainmentShare)
	} else {
		ratio := 0.0
		if needs > 0 {
			ratio = disposable / needs
		}
		grocery = math.Floor(grocery * ratio)
		utility = math.Floor(utility * ratio)
		transport = math.Floor(transport * ratio)
	}

	p := &Plan{
		Income:        in.Income,
		Members:       in.Members,
		Lifestyle:     in.Lifestyle,
		City:          in.City,
		Formula:       in.Formula,
		Rent:          int64(rent),
		Grocery:       int64(grocery),
		Utility:       int64(utility),
		Transport:     int64(transport),
		Shopping:      int64(shopping),
		Dining:        int64(dining),
		Entertainment: int64(entertainment),
		Reasoning:     reasoning(in),
	}
	p.Recompute()
	return p, nil
}

// normalize clamps malformed optional inputs instead of rejecting them.
func normalize(in Input) Input {
	if in.Members < 1 {
		in.Members = 1
	}
	if math.IsNaN(in.FixedRent) || math.IsInf(in.FixedRent, 0) || in.FixedRent < 0 {
		in.FixedRent = 0
	}
	in.FixedRent = math.Min(in.FixedRent, MaxAmount)
	in.Lifestyle, _ = ParseLifestyle(string(in.Lifestyle))
	if in.Formula != FormulaScaled {
		in.Formula = FormulaStandard
	}
	return in
}

func groceryScale(f Formula, members int) float64 {
	scale := 1.0
	if members > 1 {
		scale += 0.7
	}
	if f == FormulaScaled && members > 2 {
		scale += float64(members-2) * 0.6
	}
	return scale
}

func transportScale(f Formula, members int) float64 {
	if f == FormulaScaled && members > 2 {
		return float64(members) * 0.8
	}
	return float64(members)
}

func reasoning(in Input) string {
	where := ""
	if in.City != "" {
		where = " in " + in.City
	}
	return fmt.Sprintf("Budget optimized for %d person(s)%s with a %s lifestyle.", in.Members, where, in.Lifestyle)
}
