package config

import "strings"

// Grouping selects how digits are grouped when formatting amounts.
type Grouping int

const (
	// GroupThousands groups every three digits: 1,234,567.
	GroupThousands Grouping = iota
	// GroupLakh groups the last three digits, then pairs: 12,34,567.
	GroupLakh
)

// Currency describes how amounts are shown.
type Currency struct {
	Code     string
	Symbol   string
	Grouping Grouping
}

// Currencies maps ISO codes to display settings.
var Currencies = map[string]Currency{
	"INR": {Code: "INR", Symbol: "₹", Grouping: GroupLakh},
	"USD": {Code: "USD", Symbol: "$", Grouping: GroupThousands},
	"EUR": {Code: "EUR", Symbol: "€", Grouping: GroupThousands},
	"GBP": {Code: "GBP", Symbol: "£", Grouping: GroupThousands},
	"JPY": {Code: "JPY", Symbol: "¥", Grouping: GroupThousands},
	"AUD": {Code: "AUD", Symbol: "A$", Grouping: GroupThousands},
	"CAD": {Code: "CAD", Symbol: "C$", Grouping: GroupThousands},
}

// LookupCurrency returns the display settings for code, case-insensitively.
// Unknown codes use the code itself as the symbol.
func LookupCurrency(code string) (Currency, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if c, ok := Currencies[code]; ok {
		return c, true
	}
	return Currency{Code: code, Symbol: code + " ", Grouping: GroupThousands}, false
}

// Currency returns the display settings for the configured currency.
func (c Config) Currency() Currency {
	cur, _ := LookupCurrency(c.General.Currency)
	return cur
}
