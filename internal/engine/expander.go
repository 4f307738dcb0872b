package engine

import (
	"sort"
	"time"

	"github.com/dafibh/fortuna/fortuna-planner/internal/domain"
	"github.com/dafibh/fortuna/fortuna-planner/internal/util"
	"github.com/shopspring/decimal"
)

// planShape is the part of a plan the expander needs, shared by incomes and expenses
type planShape struct {
	id         int32
	source     string
	category   string
	currency   string
	kind       domain.ExpenseKind
	amount     *decimal.Decimal
	band       *domain.VariableBand
	confidence domain.Confidence
	recurrence *domain.Recurrence
	date       *time.Time
}

// ExpandIncome materializes a planned income over the inclusive window [from, to].
// Incomes without a monthly recurrence produce nothing.
func ExpandIncome(plan *domain.PlannedIncome, from, to, now time.Time, n Normalizer) []domain.ExpandedPlanned {
	return expand(planShape{
		id:         plan.ID,
		source:     plan.Source,
		category:   plan.Category,
		currency:   plan.Currency,
		amount:     plan.Amount,
		band:       plan.VariableBand,
		confidence: plan.Confidence,
		recurrence: plan.Recurrence,
	}, from, to, now, n)
}

// ExpandExpense materializes a planned expense over the inclusive window [from, to].
// Non-recurring expenses with a date produce a single instance on that date.
func ExpandExpense(plan *domain.PlannedExpense, from, to, now time.Time, n Normalizer) []domain.ExpandedPlanned {
	return expand(planShape{
		id:         plan.ID,
		source:     plan.Concept,
		category:   plan.Category,
		currency:   plan.Currency,
		kind:       plan.Kind,
		amount:     plan.Amount,
		band:       plan.VariableBand,
		confidence: plan.Confidence,
		recurrence: plan.Recurrence,
		date:       plan.Date,
	}, from, to, now, n)
}

// ExpandIncomes expands every active plan and orders the result by date
func ExpandIncomes(plans []*domain.PlannedIncome, from, to, now time.Time, n Normalizer) []domain.ExpandedPlanned {
	var out []domain.ExpandedPlanned
	for _, p := range plans {
		if !p.IsActive {
			continue
		}
		out = append(out, ExpandIncome(p, from, to, now, n)...)
	}
	sortExpanded(out)
	return out
}

// ExpandExpenses expands every active plan and orders the result by date
func ExpandExpenses(plans []*domain.PlannedExpense, from, to, now time.Time, n Normalizer) []domain.ExpandedPlanned {
	var out []domain.ExpandedPlanned
	for _, p := range plans {
		if !p.IsActive {
			continue
		}
		out = append(out, ExpandExpense(p, from, to, now, n)...)
	}
	sortExpanded(out)
	return out
}

// FilterScenario keeps only records of the given scenario
func FilterScenario(records []domain.ExpandedPlanned, scenario domain.Scenario) []domain.ExpandedPlanned {
	out := make([]domain.ExpandedPlanned, 0, len(records))
	for _, r := range records {
		if r.Scenario == scenario {
			out = append(out, r)
		}
	}
	return out
}

func expand(p planShape, from, to, now time.Time, n Normalizer) []domain.ExpandedPlanned {
	from = util.DateOnly(from)
	to = util.DateOnly(to)
	if from.After(to) {
		return nil
	}

	var out []domain.ExpandedPlanned
	for _, date := range occurrences(p, from, to) {
		out = append(out, instances(p, date, now, n)...)
	}
	return out
}

// occurrences lists the target dates of a plan inside [from, to]
func occurrences(p planShape, from, to time.Time) []time.Time {
	if p.recurrence == nil || p.recurrence.Type != domain.RecurrenceMonthly {
		// Only expenses carry a date; incomes fall through to nothing
		if p.date == nil {
			return nil
		}
		d := util.DateOnly(*p.date)
		if d.Before(from) || d.After(to) {
			return nil
		}
		return []time.Time{d}
	}

	var dates []time.Time
	for month := util.StartOfMonth(from); !month.After(to); month = month.AddDate(0, 1, 0) {
		date := targetDate(*p.recurrence, month.Year(), month.Month())
		if date.Before(from) || date.After(to) {
			continue
		}
		dates = append(dates, date)
	}
	return dates
}

// targetDate resolves a monthly recurrence to its date within year/month
func targetDate(r domain.Recurrence, year int, month time.Month) time.Time {
	anchor := 1
	if r.AnchorDay != nil {
		anchor = *r.AnchorDay
	}

	switch r.DayRule {
	case domain.DayRuleLastBusinessDay:
		return util.ResolveBusinessDay(util.LastDayOfMonth(year, month), util.Backward)
	case domain.DayRuleNextBusinessDay:
		return util.ResolveBusinessDay(util.CalculateActualDate(year, month, anchor), util.Forward)
	default:
		return util.CalculateActualDate(year, month, anchor)
	}
}

// instances dated at midnight become pending as soon as now passes that midnight
func instances(p planShape, date, now time.Time, n Normalizer) []domain.ExpandedPlanned {
	base := domain.ExpandedPlanned{
		PlannedID:  p.id,
		Source:     p.source,
		Category:   p.category,
		Currency:   p.currency,
		Kind:       p.kind,
		Date:       date,
		Confidence: p.confidence,
		IsPending:  date.Before(now),
	}

	withAmount := func(amount decimal.Decimal, scenario domain.Scenario) domain.ExpandedPlanned {
		r := base
		r.AmountOriginal = amount
		r.AmountReporting = n.ToReporting(amount, p.currency)
		r.Scenario = scenario
		return r
	}

	if p.band != nil {
		return []domain.ExpandedPlanned{
			withAmount(p.band.Min, domain.ScenarioConservative),
			withAmount(p.band.Midpoint(), domain.ScenarioBase),
			withAmount(p.band.Max, domain.ScenarioOptimistic),
		}
	}
	if p.amount != nil {
		return []domain.ExpandedPlanned{withAmount(*p.amount, domain.ScenarioBase)}
	}
	return nil
}

var scenarioOrder = map[domain.Scenario]int{
	domain.ScenarioConservative: 0,
	domain.ScenarioBase:         1,
	domain.ScenarioOptimistic:   2,
}

func sortExpanded(records []domain.ExpandedPlanned) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.PlannedID != b.PlannedID {
			return a.PlannedID < b.PlannedID
		}
		return scenarioOrder[a.Scenario] < scenarioOrder[b.Scenario]
	})
}
