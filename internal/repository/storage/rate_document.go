package storage

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/dafibh/fortuna/fortuna-planner/internal/domain"
	"github.com/shopspring/decimal"
)

// rateDocument is the TOML layout shared by the file and S3 sources:
//
//	[rates]
//	USD = "1000"
//	BRL = 200.5
type rateDocument struct {
	Rates map[string]interface{} `toml:"rates"`
}

// parseRateDocument decodes a rate document. Values may be strings, integers or floats.
func parseRateDocument(data []byte) (map[string]decimal.Decimal, error) {
	var doc rateDocument
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing rate document: %w", err)
	}

	out := make(map[string]decimal.Decimal, len(doc.Rates))
	for code, raw := range doc.Rates {
		rate, err := toDecimal(raw)
		if err != nil || !rate.IsPositive() {
			return nil, fmt.Errorf("%w: %s", domain.ErrRateInvalid, code)
		}
		out[strings.ToUpper(strings.TrimSpace(code))] = rate
	}
	return out, nil
}

func toDecimal(raw interface{}) (decimal.Decimal, error) {
	switch v := raw.(type) {
	case string:
		return decimal.NewFromString(strings.TrimSpace(v))
	case int64:
		return decimal.NewFromInt(v), nil
	case float64:
		return decimal.NewFromFloat(v), nil
	default:
		return decimal.Zero, fmt.Errorf("unsupported rate value %T", raw)
	}
}
