// Package engine holds the planning and forecasting calculations. Every
// function is pure: inputs, including the clock and the rate table, are passed
// in explicitly and nothing is read from package state.
package engine

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Normalizer converts amounts into a single reporting currency.
// Rates are units of the reporting currency per one unit of the keyed currency.
type Normalizer struct {
	Reporting string
	Rates     map[string]decimal.Decimal
}

// NewNormalizer copies rates with upper-cased currency codes
func NewNormalizer(reporting string, rates map[string]decimal.Decimal) Normalizer {
	copied := make(map[string]decimal.Decimal, len(rates))
	for code, rate := range rates {
		copied[strings.ToUpper(code)] = rate
	}
	return Normalizer{
		Reporting: strings.ToUpper(reporting),
		Rates:     copied,
	}
}

// Rate returns the configured rate for currency.
// The reporting currency, unknown codes and non-positive rates all resolve to 1.
func (n Normalizer) Rate(currency string) decimal.Decimal {
	code := strings.ToUpper(currency)
	if code == n.Reporting {
		return decimal.NewFromInt(1)
	}
	rate, ok := n.Rates[code]
	if !ok || !rate.IsPositive() {
		return decimal.NewFromInt(1)
	}
	return rate
}

// ToReporting converts amount in currency to the reporting currency
func (n Normalizer) ToReporting(amount decimal.Decimal, currency string) decimal.Decimal {
	return amount.Mul(n.Rate(currency))
}

// FromReporting converts a reporting-currency amount back into currency
func (n Normalizer) FromReporting(amount decimal.Decimal, currency string) decimal.Decimal {
	return amount.Div(n.Rate(currency))
}

// Known reports whether currency has an explicit positive rate
func (n Normalizer) Known(currency string) bool {
	code := strings.ToUpper(currency)
	if code == n.Reporting {
		return true
	}
	rate, ok := n.Rates[code]
	return ok && rate.IsPositive()
}
