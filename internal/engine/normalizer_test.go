package engine

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNormalizer_ToReporting(t *testing.T) {
	n := testNormalizer()

	tests := []struct {
		name     string
		amount   string
		currency string
		want     string
	}{
		{"usd", "12.5", "USD", "12500"},
		{"brl", "10", "BRL", "2000"},
		{"lower case code", "1", "eur", "1100"},
		{"reporting currency", "750", "ARS", "750"},
		{"unknown currency falls back to rate 1", "42", "JPY", "42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := n.ToReporting(dec(tt.amount), tt.currency)
			assert.True(t, got.Equal(dec(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestNormalizer_ReportingCurrencyAlwaysRateOne(t *testing.T) {
	n := NewNormalizer("usd", map[string]decimal.Decimal{"USD": dec("1000")})
	assert.True(t, n.Rate("USD").Equal(decimal.NewFromInt(1)))
}

func TestNormalizer_NonPositiveRateFallsBack(t *testing.T) {
	n := NewNormalizer("ARS", map[string]decimal.Decimal{"USD": decimal.Zero, "BRL": dec("-5")})
	assert.True(t, n.Rate("USD").Equal(decimal.NewFromInt(1)))
	assert.True(t, n.Rate("BRL").Equal(decimal.NewFromInt(1)))
	assert.False(t, n.Known("USD"))
	assert.True(t, n.Known("ARS"))
}

func TestNormalizer_FromReporting(t *testing.T) {
	n := testNormalizer()
	got := n.FromReporting(dec("250000"), "USD")
	assert.True(t, got.Equal(dec("250")), "got %s", got)
}

func TestNewNormalizer_CopiesRates(t *testing.T) {
	rates := map[string]decimal.Decimal{"USD": dec("1000")}
	n := NewNormalizer("ARS", rates)
	rates["USD"] = dec("1")
	assert.True(t, n.Rate("USD").Equal(dec("1000")))
}
