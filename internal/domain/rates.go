package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrRateSourceUnavailable = errors.New("rate source unavailable")
	ErrRateInvalid           = errors.New("rate must be a positive number")
)

// RateTable maps currency codes to units of the reporting currency
type RateTable struct {
	Reporting string                     `json:"reportingCurrency"`
	Rates     map[string]decimal.Decimal `json:"rates"`
	Source    string                     `json:"source"`
	UpdatedAt time.Time                  `json:"updatedAt"`
}

// Clone returns a copy safe to hand out to readers
func (t RateTable) Clone() RateTable {
	out := t
	out.Rates = make(map[string]decimal.Decimal, len(t.Rates))
	for code, rate := range t.Rates {
		out.Rates[code] = rate
	}
	return out
}

// Merge overlays other's rates onto a copy of t. Codes are upper-cased.
func (t RateTable) Merge(other map[string]decimal.Decimal) RateTable {
	out := t.Clone()
	for code, rate := range other {
		out.Rates[strings.ToUpper(code)] = rate
	}
	return out
}

// RateSource loads rates from somewhere outside the process
type RateSource interface {
	Name() string
	Load(ctx context.Context) (map[string]decimal.Decimal, error)
}

// ParseCurrencyAmounts parses "USD=1000,BRL=200" into a map keyed by upper-cased code.
// Empty input yields an empty map. Values must be positive.
func ParseCurrencyAmounts(s string) (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal)
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		code, value, ok := strings.Cut(pair, "=")
		code = strings.ToUpper(strings.TrimSpace(code))
		if !ok || code == "" {
			return nil, fmt.Errorf("%w: %q", ErrRateInvalid, pair)
		}
		amount, err := decimal.NewFromString(strings.TrimSpace(value))
		if err != nil || !amount.IsPositive() {
			return nil, fmt.Errorf("%w: %q", ErrRateInvalid, pair)
		}
		out[code] = amount
	}
	return out, nil
}
