package service

import (
	"fmt"
	"time"

	"github.com/dafibh/fortuna/fortuna-planner/internal/domain"
	"github.com/dafibh/fortuna/fortuna-planner/internal/engine"
	"github.com/dafibh/fortuna/fortuna-planner/internal/util"
)

// historyMonths is how far back KPI and forecast windows reach
const historyMonths = 12

// PlanningOptions tunes the analytics the income and expense services expose
type PlanningOptions struct {
	KPI engine.KPIOptions
}

// ComparisonReport is the planned vs observed breakdown of one month
type ComparisonReport struct {
	Month string `json:"month"`
	// Closed is set once the month is entirely in the past
	Closed bool                `json:"closed"`
	Items  []domain.Comparison `json:"items"`
}

// historyWindow covers the trailing twelve months through the end of the
// current month, which always includes January of the current year
func historyWindow(now time.Time) (time.Time, time.Time) {
	from := util.AddMonths(now, -(historyMonths - 1))
	return from, util.LastDayOfMonth(now.Year(), now.Month())
}

// monthWindow returns the first and last day of a YYYY-MM month
func monthWindow(key string) (time.Time, time.Time, error) {
	start, err := util.ParseMonthKey(key)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return start, util.LastDayOfMonth(start.Year(), start.Month()), nil
}

func checkWindow(from, to time.Time) error {
	if from.After(to) {
		return domain.ErrInvalidWindow
	}
	return nil
}

func isClosedMonth(start, now time.Time) bool {
	return util.IsHistoricalMonth(start.Year(), int(start.Month()), now)
}
