package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func datePtr(s string) *time.Time {
	t := date(s)
	return &t
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func intPtr(i int) *int {
	return &i
}

func int32Ptr(i int32) *int32 {
	return &i
}

func testNormalizer() Normalizer {
	return NewNormalizer("ARS", map[string]decimal.Decimal{
		"USD":  dec("1000"),
		"BRL":  dec("200"),
		"USDT": dec("1000"),
		"EUR":  dec("1100"),
	})
}
