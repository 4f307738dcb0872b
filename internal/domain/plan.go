package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrAmountAndBandSet      = errors.New("amount and variable band are mutually exclusive")
	ErrAmountOrBandRequired  = errors.New("either amount or variable band is required")
	ErrAmountInvalid         = errors.New("amount must be positive")
	ErrBandInvalid           = errors.New("variable band min must be positive and not exceed max")
	ErrCurrencyRequired      = errors.New("currency is required")
	ErrCategoryRequired      = errors.New("category is required")
	ErrConfidenceInvalid     = errors.New("confidence must be high, medium or low")
	ErrRecurrenceTypeInvalid = errors.New("recurrence type must be monthly or one_time")
	ErrDayRuleInvalid        = errors.New("day rule must be fixed_day, last_business_day or next_business_day")
	ErrAnchorDayInvalid      = errors.New("anchor day must be between 1 and 31")
)

type RecurrenceType string

const (
	RecurrenceMonthly RecurrenceType = "monthly"
	RecurrenceOneTime RecurrenceType = "one_time"
)

// DayRule resolves the target day of a recurring plan within a month
type DayRule string

const (
	DayRuleFixedDay        DayRule = "fixed_day"
	DayRuleLastBusinessDay DayRule = "last_business_day"
	DayRuleNextBusinessDay DayRule = "next_business_day"
)

type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Scenario is one of the three amounts derived from a variable band
type Scenario string

const (
	ScenarioConservative Scenario = "conservative"
	ScenarioBase         Scenario = "base"
	ScenarioOptimistic   Scenario = "optimistic"
)

type Recurrence struct {
	Type      RecurrenceType `json:"type"`
	DayRule   DayRule        `json:"dayRule"`
	AnchorDay *int           `json:"anchorDay,omitempty"`
}

func (r *Recurrence) Validate() error {
	switch r.Type {
	case RecurrenceMonthly, RecurrenceOneTime:
	default:
		return ErrRecurrenceTypeInvalid
	}
	if r.Type == RecurrenceOneTime {
		return nil
	}
	switch r.DayRule {
	case DayRuleFixedDay, DayRuleNextBusinessDay:
		if r.AnchorDay == nil || *r.AnchorDay < 1 || *r.AnchorDay > 31 {
			return ErrAnchorDayInvalid
		}
	case DayRuleLastBusinessDay:
		if r.AnchorDay != nil && (*r.AnchorDay < 1 || *r.AnchorDay > 31) {
			return ErrAnchorDayInvalid
		}
	default:
		return ErrDayRuleInvalid
	}
	return nil
}

// VariableBand is an amount range used instead of a fixed amount
type VariableBand struct {
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max"`
}

// Midpoint returns the base-scenario amount of the band
func (b VariableBand) Midpoint() decimal.Decimal {
	return b.Min.Add(b.Max).Div(decimal.NewFromInt(2))
}

// validateAmount enforces that exactly one of amount and band is set
func validateAmount(amount *decimal.Decimal, band *VariableBand) error {
	if amount != nil && band != nil {
		return ErrAmountAndBandSet
	}
	if amount == nil && band == nil {
		return ErrAmountOrBandRequired
	}
	if amount != nil && amount.LessThanOrEqual(decimal.Zero) {
		return ErrAmountInvalid
	}
	if band != nil && (band.Min.LessThanOrEqual(decimal.Zero) || band.Min.GreaterThan(band.Max)) {
		return ErrBandInvalid
	}
	return nil
}

func validateConfidence(c Confidence) error {
	switch c {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
		return nil
	}
	return ErrConfidenceInvalid
}
