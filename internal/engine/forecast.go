package engine

import (
	"time"

	"github.com/dafibh/fortuna/fortuna-planner/internal/domain"
	"github.com/dafibh/fortuna/fortuna-planner/internal/util"
	"github.com/shopspring/decimal"
)

const (
	DefaultForecastHorizon = 3
	MaxForecastHorizon     = 24
)

var (
	conservativeFactor = decimal.RequireFromString("0.85")
	optimisticFactor   = decimal.RequireFromString("1.15")
)

// Forecast projects the next horizon months from the mean of the 3 and 6 month averages
func Forecast(aggregates []domain.MonthlyAggregate, horizon int, now time.Time) []domain.ForecastMonth {
	if horizon <= 0 {
		horizon = DefaultForecastHorizon
	}
	if horizon > MaxForecastHorizon {
		horizon = MaxForecastHorizon
	}

	series := sortedAggregates(aggregates)
	base := trailingAverage(series, 3).Add(trailingAverage(series, 6)).Div(decimal.NewFromInt(2))

	months := make([]domain.ForecastMonth, 0, horizon)
	for i := 1; i <= horizon; i++ {
		months = append(months, domain.ForecastMonth{
			Month:        util.MonthKey(util.AddMonths(now, i)),
			Conservative: base.Mul(conservativeFactor),
			Base:         base,
			Optimistic:   base.Mul(optimisticFactor),
		})
	}
	return months
}
