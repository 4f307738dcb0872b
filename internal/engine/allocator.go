package engine

import (
	"sort"
	"time"

	"github.com/dafibh/fortuna/fortuna-planner/internal/domain"
	"github.com/dafibh/fortuna/fortuna-planner/internal/util"
	"github.com/shopspring/decimal"
)

// Score weights
var (
	priorityFactor  = decimal.RequireFromString("0.4")
	urgencyFactor   = decimal.RequireFromString("0.35")
	shortfallFactor = decimal.RequireFromString("0.25")
)

type AllocationOptions struct {
	PriorityWeights      map[domain.Priority]decimal.Decimal
	RoundToMultiple      decimal.Decimal
	MaxAllocationPerGoal decimal.Decimal
}

// DefaultAllocationOptions returns weights {1, 0.6, 0.3}, multiples of 100 and a 70% cap per goal
func DefaultAllocationOptions() AllocationOptions {
	return AllocationOptions{
		PriorityWeights: map[domain.Priority]decimal.Decimal{
			domain.PriorityHigh:   decimal.NewFromInt(1),
			domain.PriorityMedium: decimal.RequireFromString("0.6"),
			domain.PriorityLow:    decimal.RequireFromString("0.3"),
		},
		RoundToMultiple:      decimal.NewFromInt(100),
		MaxAllocationPerGoal: decimal.RequireFromString("0.7"),
	}
}

// withDefaults replaces missing or non-positive options with the defaults
func (o AllocationOptions) withDefaults() AllocationOptions {
	d := DefaultAllocationOptions()
	weights := make(map[domain.Priority]decimal.Decimal, len(d.PriorityWeights))
	for p, w := range d.PriorityWeights {
		if custom, ok := o.PriorityWeights[p]; ok && custom.IsPositive() {
			w = custom
		}
		weights[p] = w
	}
	d.PriorityWeights = weights
	if o.RoundToMultiple.IsPositive() {
		d.RoundToMultiple = o.RoundToMultiple
	}
	if o.MaxAllocationPerGoal.IsPositive() {
		d.MaxAllocationPerGoal = o.MaxAllocationPerGoal
	}
	return d
}

type scoredGoal struct {
	goal      *domain.SavingGoal
	score     decimal.Decimal
	shortfall decimal.Decimal
	rate      decimal.Decimal
}

// urgency maps days until the due date to a weight; goals without a due date get 0.5
func urgency(due *time.Time, now time.Time) decimal.Decimal {
	if due == nil {
		return decimal.RequireFromString("0.5")
	}
	days := util.DaysBetween(now, *due)
	if days < 0 {
		days = 0
	}
	switch {
	case days <= 30:
		return decimal.NewFromInt(1)
	case days <= 90:
		return decimal.RequireFromString("0.8")
	case days <= 180:
		return decimal.RequireFromString("0.6")
	default:
		return decimal.RequireFromString("0.3")
	}
}

// AllocateSurplus distributes a reporting-currency surplus across unfinished goals
// in proportion to a score built from priority, urgency and relative shortfall.
// Each allocation is capped by the goal's shortfall and a share of the surplus,
// then rounded down to the configured multiple.
func AllocateSurplus(surplus decimal.Decimal, goals []*domain.SavingGoal, now time.Time, n Normalizer, opts AllocationOptions) domain.AllocationSuggestion {
	opts = opts.withDefaults()

	var scored []scoredGoal
	for _, g := range goals {
		if !g.CurrentAmount.LessThan(g.TargetAmount) {
			continue
		}
		rate := n.Rate(g.BaseCurrency)
		target := g.TargetAmount.Mul(rate)
		shortfall := target.Sub(g.CurrentAmount.Mul(rate))

		relative := decimal.Zero
		if !target.IsZero() {
			relative = decimal.Min(decimal.NewFromInt(1), shortfall.Div(target))
		}

		score := priorityFactor.Mul(opts.PriorityWeights[g.Priority]).
			Add(urgencyFactor.Mul(urgency(g.DueDate, now))).
			Add(shortfallFactor.Mul(relative))

		scored = append(scored, scoredGoal{goal: g, score: score, shortfall: shortfall, rate: rate})
	}

	if len(scored) == 0 {
		return domain.AllocationSuggestion{
			TotalSurplus: surplus,
			Allocations:  []domain.Allocation{},
			Remaining:    surplus,
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if !scored[i].score.Equal(scored[j].score) {
			return scored[i].score.GreaterThan(scored[j].score)
		}
		return scored[i].goal.ID < scored[j].goal.ID
	})

	totalScore := decimal.Zero
	for _, s := range scored {
		totalScore = totalScore.Add(s.score)
	}

	perGoalCap := surplus.Mul(opts.MaxAllocationPerGoal)
	remaining := surplus
	allocations := []domain.Allocation{}
	for _, s := range scored {
		if !remaining.IsPositive() {
			break
		}

		proportional := decimal.Zero
		if totalScore.IsPositive() {
			// multiply first; a truncated ratio would floor an exact share one step down
			proportional = s.score.Mul(surplus).Div(totalScore).Round(10)
		}
		limit := decimal.Min(s.shortfall, perGoalCap, proportional)
		amount := limit.Div(opts.RoundToMultiple).Floor().Mul(opts.RoundToMultiple)

		if amount.IsPositive() && amount.LessThanOrEqual(remaining) {
			allocations = append(allocations, domain.Allocation{
				GoalID:          s.goal.ID,
				GoalName:        s.goal.Name,
				AmountReporting: amount,
				AmountBase:      amount.Div(s.rate).Round(2),
				BaseCurrency:    s.goal.BaseCurrency,
				Score:           s.score.Round(3),
			})
			remaining = remaining.Sub(amount)
		}
	}

	return domain.AllocationSuggestion{
		TotalSurplus: surplus,
		Allocations:  allocations,
		Remaining:    remaining,
	}
}
