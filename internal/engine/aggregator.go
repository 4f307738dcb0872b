package engine

import (
	"sort"

	"github.com/dafibh/fortuna/fortuna-planner/internal/domain"
	"github.com/dafibh/fortuna/fortuna-planner/internal/util"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// percentOf returns part/whole*100, or 0 when whole is zero
func percentOf(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred)
}

// newTotals derives variance (observed - planned) and its percentage of planned
func newTotals(planned, observed decimal.Decimal) domain.Totals {
	variance := observed.Sub(planned)
	return domain.Totals{
		PlannedTotal:  planned,
		ObservedTotal: observed,
		Variance:      variance,
		VariancePct:   percentOf(variance, planned),
	}
}

type bucket struct {
	planned  decimal.Decimal
	observed decimal.Decimal
}

type monthBucket struct {
	bucket
	byCategory map[string]*bucket
}

func (m *monthBucket) category(name string) *bucket {
	b, ok := m.byCategory[name]
	if !ok {
		b = &bucket{}
		m.byCategory[name] = b
	}
	return b
}

// AggregateMonthly sums observed and base-scenario planned activity per month.
// Only months with activity appear, in ascending order.
func AggregateMonthly(observed []domain.ObservedEntry, planned []domain.ExpandedPlanned, n Normalizer) []domain.MonthlyAggregate {
	months := make(map[string]*monthBucket)
	get := func(key string) *monthBucket {
		m, ok := months[key]
		if !ok {
			m = &monthBucket{byCategory: make(map[string]*bucket)}
			months[key] = m
		}
		return m
	}

	for _, o := range observed {
		amount := n.ToReporting(o.Amount, o.Currency)
		m := get(util.MonthKey(o.Date))
		m.observed = m.observed.Add(amount)
		c := m.category(o.Category)
		c.observed = c.observed.Add(amount)
	}

	for _, p := range planned {
		if p.Scenario != domain.ScenarioBase {
			continue
		}
		m := get(util.MonthKey(p.Date))
		m.planned = m.planned.Add(p.AmountReporting)
		c := m.category(p.Category)
		c.planned = c.planned.Add(p.AmountReporting)
	}

	keys := make([]string, 0, len(months))
	for k := range months {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := make([]domain.MonthlyAggregate, 0, len(keys))
	for _, k := range keys {
		m := months[k]
		result = append(result, domain.MonthlyAggregate{
			Month:      k,
			Totals:     newTotals(m.planned, m.observed),
			ByCategory: categoryAggregates(m.byCategory),
		})
	}
	return result
}

func categoryAggregates(byCategory map[string]*bucket) []domain.CategoryAggregate {
	names := make([]string, 0, len(byCategory))
	for name := range byCategory {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]domain.CategoryAggregate, 0, len(names))
	for _, name := range names {
		b := byCategory[name]
		out = append(out, domain.CategoryAggregate{
			Category: name,
			Totals:   newTotals(b.planned, b.observed),
		})
	}
	return out
}
