package engine

import (
	"sort"

	"github.com/dafibh/fortuna/fortuna-planner/internal/domain"
	"github.com/dafibh/fortuna/fortuna-planner/internal/util"
	"github.com/shopspring/decimal"
)

// varianceBand is the tolerated deviation, in percent, before a comparison is flagged
var varianceBand = decimal.NewFromInt(10)

type groupKey struct {
	category string
	source   string
}

// CompareIncomes groups a month's income by category and source.
// A shortfall beyond the band is bad; any other deviation beyond it is a warning.
func CompareIncomes(observed []domain.ObservedEntry, planned []domain.ExpandedPlanned, month string, n Normalizer) []domain.Comparison {
	return compare(observed, planned, month, n, true, incomeStatus)
}

// CompareExpenses groups a month's expenses by category.
// An overspend beyond the band is bad; any other deviation beyond it is a warning.
func CompareExpenses(observed []domain.ObservedEntry, planned []domain.ExpandedPlanned, month string, n Normalizer) []domain.Comparison {
	return compare(observed, planned, month, n, false, expenseStatus)
}

func incomeStatus(pct decimal.Decimal) domain.ComparisonStatus {
	if pct.LessThan(varianceBand.Neg()) {
		return domain.ComparisonBad
	}
	if pct.Abs().GreaterThan(varianceBand) {
		return domain.ComparisonWarning
	}
	return domain.ComparisonGood
}

func expenseStatus(pct decimal.Decimal) domain.ComparisonStatus {
	if pct.GreaterThan(varianceBand) {
		return domain.ComparisonBad
	}
	if pct.Abs().GreaterThan(varianceBand) {
		return domain.ComparisonWarning
	}
	return domain.ComparisonGood
}

func compare(
	observed []domain.ObservedEntry,
	planned []domain.ExpandedPlanned,
	month string,
	n Normalizer,
	bySource bool,
	status func(decimal.Decimal) domain.ComparisonStatus,
) []domain.Comparison {
	groups := make(map[groupKey]*bucket)
	get := func(category, source string) *bucket {
		k := groupKey{category: category}
		if bySource {
			k.source = source
		}
		b, ok := groups[k]
		if !ok {
			b = &bucket{}
			groups[k] = b
		}
		return b
	}

	for _, o := range observed {
		if util.MonthKey(o.Date) != month {
			continue
		}
		b := get(o.Category, o.Source)
		b.observed = b.observed.Add(n.ToReporting(o.Amount, o.Currency))
	}
	for _, p := range planned {
		if p.Scenario != domain.ScenarioBase || util.MonthKey(p.Date) != month {
			continue
		}
		b := get(p.Category, p.Source)
		b.planned = b.planned.Add(p.AmountReporting)
	}

	keys := make([]groupKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].category != keys[j].category {
			return keys[i].category < keys[j].category
		}
		return keys[i].source < keys[j].source
	})

	out := make([]domain.Comparison, 0, len(keys))
	for _, k := range keys {
		b := groups[k]
		totals := newTotals(b.planned, b.observed)
		out = append(out, domain.Comparison{
			Category: k.category,
			Source:   k.source,
			Totals:   totals,
			Status:   status(totals.VariancePct),
		})
	}
	return out
}
