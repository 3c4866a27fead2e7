package budget

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputePlan_MiddleCouple(t *testing.T) {
	p, err := ComputePlan(Input{Income: 50000, Members: 2, Lifestyle: Middle})
	require.NoError(t, err)

	want := &Plan{
		Income:        50000,
		Members:       2,
		Lifestyle:     Middle,
		Formula:       FormulaStandard,
		Rent:          15000,
		Grocery:       5100,
		Utility:       1300,
		Transport:     3000,
		Shopping:      5120,
		Dining:        5120,
		Entertainment: 2560,
		TotalNeeds:    24400,
		TotalWants:    12800,
		TotalSave:     12800,
		Reasoning:     "Budget optimized for 2 person(s) with a middle lifestyle.",
	}
	if diff := cmp.Diff(want, p); diff != "" {
		t.Fatalf("ComputePlan mismatch (-want +got):\n%s", diff)
	}
}

func TestComputePlan_RentDefaultsToThirtyPercent(t *testing.T) {
	p, err := ComputePlan(Input{Income: 50000, FixedRent: 0, Members: 1, Lifestyle: Frugal})
	require.NoError(t, err)
	assert.Equal(t, int64(15000), p.Rent)
}

func TestComputePlan_FixedRentIsFloored(t *testing.T) {
	p, err := ComputePlan(Input{Income: 80000, FixedRent: 12000.7, Members: 1, Lifestyle: Luxury})
	require.NoError(t, err)
	assert.Equal(t, int64(12000), p.Rent)
}

func TestComputePlan_RejectsLowIncome(t *testing.T) {
	for _, income := range []float64{499.99, 0, -1, math.NaN(), math.Inf(1), math.Inf(-1)} {
		p, err := ComputePlan(Input{Income: income, Members: 1, Lifestyle: Middle})
		require.Error(t, err, "income %v", income)
		assert.Nil(t, p)

		var verr *ValidationError
		require.True(t, errors.As(err, &verr), "income %v: error %T is not *ValidationError", income, err)
		assert.Equal(t, "income too low", verr.Error())
		assert.Equal(t, "income", verr.Field)
	}
}

func TestComputePlan_AcceptsMinimumIncome(t *testing.T) {
	_, err := ComputePlan(Input{Income: MinIncome, Members: 1, Lifestyle: Middle})
	require.NoError(t, err)
}

func TestComputePlan_RejectsIncomeAboveMaxAmount(t *testing.T) {
	for _, income := range []float64{MaxAmount + 1, 1e20, math.MaxFloat64} {
		p, err := ComputePlan(Input{Income: income, Members: 2, Lifestyle: Middle})
		assert.Nil(t, p)

		var verr *ValidationError
		require.True(t, errors.As(err, &verr), "income %v: error %T is not *ValidationError", income, err)
		assert.Equal(t, "income too high", verr.Error())
		assert.Equal(t, "income", verr.Field)
	}
}

func TestComputePlan_MaxAmountStaysExact(t *testing.T) {
	p, err := ComputePlan(Input{Income: MaxAmount, Members: 2, Lifestyle: Middle})
	require.NoError(t, err)

	for _, cv := range p.Categories() {
		assert.GreaterOrEqual(t, cv.Amount, int64(0), cv.Category.String())
	}
	assert.Equal(t, int64(3e14), p.Rent)
	assert.Equal(t, MaxAmount, float64(p.TotalNeeds+p.TotalWants)+p.TotalSave)
	assert.Positive(t, p.TotalSave)
}

func TestComputePlan_CapsHugeFixedRent(t *testing.T) {
	p, err := ComputePlan(Input{Income: 40000, FixedRent: 1e20, Members: 1, Lifestyle: Middle})
	require.NoError(t, err)

	assert.Equal(t, int64(MaxAmount), p.Rent)
	assert.Zero(t, p.Grocery)
	assert.Zero(t, p.TotalWants)
	assert.Equal(t, 40000-MaxAmount, p.TotalSave)
}

func TestComputePlan_ClampsMalformedInputs(t *testing.T) {
	p, err := ComputePlan(Input{Income: 40000, FixedRent: -250, Members: 0, Lifestyle: "posh"})
	require.NoError(t, err)

	assert.Equal(t, 1, p.Members)
	assert.Equal(t, Middle, p.Lifestyle)
	assert.Equal(t, int64(12000), p.Rent)
	assert.Equal(t, int64(3000), p.Grocery)
	assert.Equal(t, int64(1000), p.Utility)
	assert.Equal(t, int64(1500), p.Transport)
}

func TestComputePlan_DeficitScalesNeedsExceptRent(t *testing.T) {
	p, err := ComputePlan(Input{Income: 10000, FixedRent: 8000, Members: 1, Lifestyle: Frugal})
	require.NoError(t, err)

	// disposable 2000 spread over needs of 4600
	assert.Equal(t, int64(8000), p.Rent)
	assert.Equal(t, int64(1086), p.Grocery)
	assert.Equal(t, int64(260), p.Utility)
	assert.Equal(t, int64(652), p.Transport)
	assert.Zero(t, p.Shopping)
	assert.Zero(t, p.Dining)
	assert.Zero(t, p.Entertainment)
	assert.Zero(t, p.TotalWants)
	assert.Equal(t, 2.0, p.TotalSave)
}

func TestComputePlan_RentAboveIncome(t *testing.T) {
	p, err := ComputePlan(Input{Income: 20000, FixedRent: 25000, Members: 3, Lifestyle: Luxury})
	require.NoError(t, err)

	assert.Equal(t, int64(25000), p.Rent)
	assert.Zero(t, p.Grocery)
	assert.Zero(t, p.Utility)
	assert.Zero(t, p.Transport)
	assert.Zero(t, p.TotalWants)
	assert.Equal(t, -5000.0, p.TotalSave)
	assert.Zero(t, p.DisplaySave())
}

func TestComputePlan_DeficitNeverFundsWants(t *testing.T) {
	for income := 500.0; income < 30000; income += 777 {
		for members := 1; members <= 6; members++ {
			for _, ls := range Lifestyles {
				p, err := ComputePlan(Input{Income: income, Members: members, Lifestyle: ls})
				require.NoError(t, err)

				rent := math.Floor(income * 0.30)
				fullNeeds := math.Floor(baseGrocery[ls]*groceryScale(FormulaStandard, members)) +
					math.Floor(baseUtility[ls]*(1+float64(members-1)*0.3)) +
					math.Floor(transportPerMember*float64(members))
				if rent+fullNeeds <= income {
					continue
				}
				assert.Zero(t, p.TotalWants, "income=%v members=%d lifestyle=%s", income, members, ls)
				// floors on three scaled needs leave at most a few units unspent
				assert.Less(t, p.TotalSave, float64(len(AllCategories)), "income=%v members=%d lifestyle=%s", income, members, ls)
			}
		}
	}
}

func TestComputePlan_TotalsAccountForIncome(t *testing.T) {
	for _, f := range []Formula{FormulaStandard, FormulaScaled} {
		for income := 500.0; income <= 250000; income += 1237 {
			for members := 1; members <= 7; members++ {
				for _, ls := range Lifestyles {
					p, err := ComputePlan(Input{Income: income, Members: members, Lifestyle: ls, Formula: f})
					require.NoError(t, err)

					sum := float64(p.TotalNeeds+p.TotalWants) + p.TotalSave
					if sum != income {
						t.Fatalf("formula=%s income=%v members=%d lifestyle=%s: needs+wants+save = %v, want %v",
							f, income, members, ls, sum, income)
					}
					if p.TotalNeeds != p.Rent+p.Grocery+p.Utility+p.Transport {
						t.Fatalf("TotalNeeds = %d, want sum of needs", p.TotalNeeds)
					}
					if p.TotalWants != p.Shopping+p.Dining+p.Entertainment {
						t.Fatalf("TotalWants = %d, want sum of wants", p.TotalWants)
					}
				}
			}
		}
	}
}

func TestComputePlan_Idempotent(t *testing.T) {
	in := Input{Income: 73456.5, FixedRent: 18000, Members: 3, Lifestyle: Luxury, City: "Pune"}
	a, err := ComputePlan(in)
	require.NoError(t, err)
	b, err := ComputePlan(in)
	require.NoError(t, err)

	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("repeated ComputePlan differs (-first +second):\n%s", diff)
	}
}

func TestComputePlan_ScaledFormula(t *testing.T) {
	std, err := ComputePlan(Input{Income: 200000, Members: 5, Lifestyle: Middle, Formula: FormulaStandard})
	require.NoError(t, err)
	scaled, err := ComputePlan(Input{Income: 200000, Members: 5, Lifestyle: Middle, Formula: FormulaScaled})
	require.NoError(t, err)

	assert.Equal(t, int64(7500), std.Transport)
	assert.Equal(t, int64(6000), scaled.Transport)
	assert.Greater(t, scaled.Grocery, std.Grocery)
	assert.Equal(t, std.Utility, scaled.Utility)
	assert.Equal(t, FormulaScaled, scaled.Formula)
}

func TestComputePlan_FormulasAgreeForSmallHouseholds(t *testing.T) {
	for members := 1; members <= 2; members++ {
		std, err := ComputePlan(Input{Income: 60000, Members: members, Lifestyle: Luxury})
		require.NoError(t, err)
		scaled, err := ComputePlan(Input{Income: 60000, Members: members, Lifestyle: Luxury, Formula: FormulaScaled})
		require.NoError(t, err)

		scaled.Formula = std.Formula
		if diff := cmp.Diff(std, scaled); diff != "" {
			t.Fatalf("members=%d: formulas differ (-standard +scaled):\n%s", members, diff)
		}
	}
}

func TestComputePlan_ReasoningMentionsCity(t *testing.T) {
	p, err := ComputePlan(Input{Income: 30000, Members: 1, Lifestyle: Frugal, City: "Mumbai"})
	require.NoError(t, err)
	assert.Equal(t, "Budget optimized for 1 person(s) in Mumbai with a frugal lifestyle.", p.Reasoning)
}

func TestParseFormula(t *testing.T) {
	f, err := ParseFormula("")
	require.NoError(t, err)
	assert.Equal(t, FormulaStandard, f)

	f, err = ParseFormula(" Scaled ")
	require.NoError(t, err)
	assert.Equal(t, FormulaScaled, f)

	_, err = ParseFormula("average")
	require.Error(t, err)
}

func TestParseLifestyle(t *testing.T) {
	ls, ok := ParseLifestyle("LUXURY")
	assert.True(t, ok)
	assert.Equal(t, Luxury, ls)

	ls, ok = ParseLifestyle("")
	assert.False(t, ok)
	assert.Equal(t, Middle, ls)
}
