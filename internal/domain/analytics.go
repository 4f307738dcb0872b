package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ObservedEntry is the common shape of an observed income or expense
type ObservedEntry struct {
	Category string
	Source   string
	Currency string
	Amount   decimal.Decimal
	Date     time.Time
}

// ExpandedPlanned is one dated instance of a recurring plan
type ExpandedPlanned struct {
	PlannedID       int32           `json:"plannedId"`
	Source          string          `json:"source,omitempty"`
	Category        string          `json:"category"`
	Currency        string          `json:"currency"`
	Kind            ExpenseKind     `json:"kind,omitempty"`
	Date            time.Time       `json:"date"`
	AmountOriginal  decimal.Decimal `json:"amountOriginal"`
	AmountReporting decimal.Decimal `json:"amountReporting"`
	Confidence      Confidence      `json:"confidence"`
	Scenario        Scenario        `json:"scenario"`
	IsPending       bool            `json:"isPending"`
}

// Totals holds planned vs observed amounts in the reporting currency
type Totals struct {
	PlannedTotal  decimal.Decimal `json:"plannedTotal"`
	ObservedTotal decimal.Decimal `json:"observedTotal"`
	Variance      decimal.Decimal `json:"variance"`
	VariancePct   decimal.Decimal `json:"variancePct"`
}

type CategoryAggregate struct {
	Category string `json:"category"`
	Totals
}

type MonthlyAggregate struct {
	Month string `json:"month"`
	Totals
	ByCategory []CategoryAggregate `json:"byCategory"`
}

type KPISet struct {
	CurrentMonth  decimal.Decimal `json:"currentMonth"`
	PreviousMonth decimal.Decimal `json:"previousMonth"`
	MoMPct        decimal.Decimal `json:"momPct"`
	YTD           decimal.Decimal `json:"ytd"`
	Avg3m         decimal.Decimal `json:"avg3m"`
	Avg6m         decimal.Decimal `json:"avg6m"`
	Avg12m        decimal.Decimal `json:"avg12m"`
}

type CategoryShare struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	SharePct decimal.Decimal `json:"sharePct"`
}

type CreditDebitSplit struct {
	CreditPct decimal.Decimal `json:"creditPct"`
	DebitPct  decimal.Decimal `json:"debitPct"`
}

type ExpenseKPISet struct {
	KPISet
	TopCategories    []CategoryShare  `json:"topCategories"`
	CreditDebitSplit CreditDebitSplit `json:"creditDebitSplit"`
}

type ForecastMonth struct {
	Month        string          `json:"month"`
	Conservative decimal.Decimal `json:"conservative"`
	Base         decimal.Decimal `json:"base"`
	Optimistic   decimal.Decimal `json:"optimistic"`
}

type ComparisonStatus string

const (
	ComparisonGood    ComparisonStatus = "good"
	ComparisonWarning ComparisonStatus = "warning"
	ComparisonBad     ComparisonStatus = "bad"
)

type Comparison struct {
	Category string `json:"category"`
	Source   string `json:"source,omitempty"`
	Totals
	Status ComparisonStatus `json:"status"`
}
