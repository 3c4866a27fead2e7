package budget

import (
	"math"
	"strconv"
	"strings"
)

// Category is one of the seven budget lines.
type Category int

// Budget categories. Needs come first, then wants.
const (
	Rent Category = iota
	Grocery
	Utility
	Transport
	Shopping
	Dining
	Entertainment
	categoryCount // sentinel
)

// AllCategories lists every category in display order.
var AllCategories = []Category{Rent, Grocery, Utility, Transport, Shopping, Dining, Entertainment}

var categoryNames = [categoryCount]string{
	"rent", "grocery", "utility", "transport", "shopping", "dining", "entertainment",
}

var categoryLabels = [categoryCount]string{
	"Rent", "Grocery", "Bills", "Transport", "Shopping", "Dining", "Entertain",
}

func (c Category) String() string {
	if c < 0 || c >= categoryCount {
		return "unknown"
	}
	return categoryNames[c]
}

// Label is the short display name the breakdown screens use.
func (c Category) Label() string {
	if c < 0 || c >= categoryCount {
		return "?"
	}
	return categoryLabels[c]
}

// IsNeed reports whether c counts toward essential spending.
func (c Category) IsNeed() bool {
	return c >= Rent && c <= Transport
}

// ParseCategory maps a category name to a Category, case-insensitively.
// "bills" and "entertain" are accepted as the labels the breakdown screen shows.
func ParseCategory(name string) (Category, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	switch n {
	case "bills":
		return Utility, true
	case "entertain":
		return Entertainment, true
	}
	for i, cn := range categoryNames {
		if cn == n {
			return Category(i), true
		}
	}
	return 0, false
}

// Plan is a computed monthly budget. It stays mutable after allocation:
// UpdateField edits single lines and recomputes only the totals.
type Plan struct {
	Income    float64   `json:"income" yaml:"income"`
	Members   int       `json:"members" yaml:"members"`
	Lifestyle Lifestyle `json:"lifestyle" yaml:"lifestyle"`
	City      string    `json:"city,omitempty" yaml:"city,omitempty"`
	Formula   Formula   `json:"formula" yaml:"formula"`

	Rent          int64 `json:"rent" yaml:"rent"`
	Grocery       int64 `json:"grocery" yaml:"grocery"`
	Utility       int64 `json:"utility" yaml:"utility"`
	Transport     int64 `json:"transport" yaml:"transport"`
	Shopping      int64 `json:"shopping" yaml:"shopping"`
	Dining        int64 `json:"dining" yaml:"dining"`
	Entertainment int64 `json:"entertainment" yaml:"entertainment"`

	TotalNeeds int64   `json:"total_needs" yaml:"total_needs"`
	TotalWants int64   `json:"total_wants" yaml:"total_wants"`
	TotalSave  float64 `json:"total_save" yaml:"total_save"` // may be negative

	Reasoning string `json:"reasoning,omitempty" yaml:"reasoning,omitempty"`
}

func (p *Plan) field(c Category) *int64 {
	switch c {
	case Rent:
		return &p.Rent
	case Grocery:
		return &p.Grocery
	case Utility:
		return &p.Utility
	case Transport:
		return &p.Transport
	case Shopping:
		return &p.Shopping
	case Dining:
		return &p.Dining
	case Entertainment:
		return &p.Entertainment
	}
	return nil
}

// Value returns the amount allocated to c.
func (p *Plan) Value(c Category) int64 {
	if f := p.field(c); f != nil {
		return *f
	}
	return 0
}

// Set stores v in category c and recomputes the totals.
func (p *Plan) Set(c Category, v int64) {
	f := p.field(c)
	if f == nil {
		return
	}
	v = min(max(v, 0), MaxAmount)
	*f = v
	p.Recompute()
}

// Recompute derives the three totals from the seven categories and income.
func (p *Plan) Recompute() {
	p.TotalNeeds = p.Rent + p.Grocery + p.Utility + p.Transport
	p.TotalWants = p.Shopping + p.Dining + p.Entertainment
	p.TotalSave = p.Income - float64(p.TotalNeeds) - float64(p.TotalWants)
}

// DisplaySave is TotalSave clamped at zero, as shown to the user.
func (p *Plan) DisplaySave() float64 {
	if p.TotalSave < 0 {
		return 0
	}
	return p.TotalSave
}

// Shares returns needs, wants and savings as fractions of income.
// Savings use the clamped display value.
func (p *Plan) Shares() (needs, wants, save float64) {
	if p.Income <= 0 {
		return 0, 0, 0
	}
	return float64(p.TotalNeeds) / p.Income,
		float64(p.TotalWants) / p.Income,
		p.DisplaySave() / p.Income
}

// CategoryValue pairs a category with its amount.
type CategoryValue struct {
	Category Category
	Amount   int64
}

// Categories returns every line of the plan in display order.
func (p *Plan) Categories() []CategoryValue {
	out := make([]CategoryValue, 0, len(AllCategories))
	for _, c := range AllCategories {
		out = append(out, CategoryValue{Category: c, Amount: p.Value(c)})
	}
	return out
}

// UpdateField replaces one category with the number parsed from raw and
// recomputes the totals against the plan's stored income. It never
// re-runs allocation and never fails: anything that does not parse to a
// finite, non-negative number is stored as 0, and amounts above MaxAmount
// are capped.
func UpdateField(p *Plan, c Category, raw string) *Plan {
	if p == nil {
		return nil
	}
	p.Set(c, parseAmount(raw))
	return p
}

func parseAmount(raw string) int64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return int64(math.Floor(math.Min(v, MaxAmount)))
}
