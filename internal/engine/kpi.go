package engine

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dafibh/fortuna/fortuna-planner/internal/domain"
	"github.com/dafibh/fortuna/fortuna-planner/internal/util"
	"github.com/shopspring/decimal"
)

// PreviousMonthOffsetDays is the fixed lookback used to find the previous month
const PreviousMonthOffsetDays = 30

// topCategoryCount is how many categories ComputeExpenseKPIs reports
const topCategoryCount = 3

type KPIOptions struct {
	// CalendarPreviousMonth uses the calendar month before now instead of now minus 30 days.
	// The 30-day lookback can land two months back, e.g. on March 1st.
	CalendarPreviousMonth bool
}

// previousMonthKey returns the key of the month compared against the current one
func previousMonthKey(now time.Time, opts KPIOptions) string {
	if opts.CalendarPreviousMonth {
		y, m := util.PreviousMonth(now.Year(), int(now.Month()))
		return util.MonthKey(time.Date(y, time.Month(m), 1, 0, 0, 0, 0, time.UTC))
	}
	return util.MonthKey(now.AddDate(0, 0, -PreviousMonthOffsetDays))
}

// ComputeKPIs summarizes observed totals of an aggregate series relative to now
func ComputeKPIs(aggregates []domain.MonthlyAggregate, now time.Time, opts KPIOptions) domain.KPISet {
	series := sortedAggregates(aggregates)

	currentKey := util.MonthKey(now)
	previousKey := previousMonthKey(now, opts)
	yearPrefix := strconv.Itoa(now.Year()) + "-"

	current, previous, ytd := decimal.Zero, decimal.Zero, decimal.Zero
	for _, a := range series {
		if a.Month == currentKey {
			current = a.ObservedTotal
		}
		if a.Month == previousKey {
			previous = a.ObservedTotal
		}
		if strings.HasPrefix(a.Month, yearPrefix) {
			ytd = ytd.Add(a.ObservedTotal)
		}
	}

	return domain.KPISet{
		CurrentMonth:  current,
		PreviousMonth: previous,
		MoMPct:        percentOf(current.Sub(previous), previous),
		YTD:           ytd,
		Avg3m:         trailingAverage(series, 3),
		Avg6m:         trailingAverage(series, 6),
		Avg12m:        trailingAverage(series, 12),
	}
}

// ComputeExpenseKPIs extends ComputeKPIs with the current month's top categories
// and the credit vs debit split of its base-scenario planned expenses.
func ComputeExpenseKPIs(aggregates []domain.MonthlyAggregate, planned []domain.ExpandedPlanned, now time.Time, opts KPIOptions) domain.ExpenseKPISet {
	kpis := ComputeKPIs(aggregates, now, opts)
	currentKey := util.MonthKey(now)

	var top []domain.CategoryShare
	for _, a := range aggregates {
		if a.Month != currentKey {
			continue
		}
		for _, c := range a.ByCategory {
			if !c.ObservedTotal.IsPositive() {
				continue
			}
			top = append(top, domain.CategoryShare{
				Category: c.Category,
				Amount:   c.ObservedTotal,
				SharePct: percentOf(c.ObservedTotal, a.ObservedTotal),
			})
		}
	}
	sort.SliceStable(top, func(i, j int) bool {
		if !top[i].Amount.Equal(top[j].Amount) {
			return top[i].Amount.GreaterThan(top[j].Amount)
		}
		return top[i].Category < top[j].Category
	})
	if len(top) > topCategoryCount {
		top = top[:topCategoryCount]
	}
	if top == nil {
		top = []domain.CategoryShare{}
	}

	credit, debit := decimal.Zero, decimal.Zero
	for _, p := range planned {
		if p.Scenario != domain.ScenarioBase || util.MonthKey(p.Date) != currentKey {
			continue
		}
		if p.Kind == domain.ExpenseKindCredit {
			credit = credit.Add(p.AmountReporting)
		} else {
			debit = debit.Add(p.AmountReporting)
		}
	}
	total := credit.Add(debit)

	return domain.ExpenseKPISet{
		KPISet:        kpis,
		TopCategories: top,
		CreditDebitSplit: domain.CreditDebitSplit{
			CreditPct: percentOf(credit, total),
			DebitPct:  percentOf(debit, total),
		},
	}
}

// trailingAverage is the mean observed total of the last n aggregates present
func trailingAverage(series []domain.MonthlyAggregate, n int) decimal.Decimal {
	if len(series) == 0 {
		return decimal.Zero
	}
	if len(series) > n {
		series = series[len(series)-n:]
	}
	sum := decimal.Zero
	for _, a := range series {
		sum = sum.Add(a.ObservedTotal)
	}
	return sum.Div(decimal.NewFromInt(int64(len(series))))
}

func sortedAggregates(aggregates []domain.MonthlyAggregate) []domain.MonthlyAggregate {
	series := make([]domain.MonthlyAggregate, len(aggregates))
	copy(series, aggregates)
	sort.SliceStable(series, func(i, j int) bool {
		return series[i].Month < series[j].Month
	})
	return series
}
