package cli

import (
	"fmt"
	"time"

	"github.com/dafibh/fortuna/fortuna-planner/internal/domain"
	"github.com/dafibh/fortuna/fortuna-planner/internal/engine"
	"github.com/dafibh/fortuna/fortuna-planner/internal/util"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// side selects the income or expense half of the dataset
type side string

const (
	sideIncome  side = "income"
	sideExpense side = "expense"
)

func parseSide(raw string) (side, error) {
	switch side(raw) {
	case sideIncome, sideExpense:
		return side(raw), nil
	}
	return "", fmt.Errorf("--side must be income or expense, got %q", raw)
}

// window resolves --from/--to, defaulting to twelve months back through three months ahead
func window(now time.Time, fromFlag, toFlag string) (time.Time, time.Time, error) {
	today := util.DateOnly(now)
	from, to := today.AddDate(0, -12, 0), today.AddDate(0, 3, 0)
	var err error
	if fromFlag != "" {
		if from, err = util.ParseDate(fromFlag); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("--from: %w", err)
		}
	}
	if toFlag != "" {
		if to, err = util.ParseDate(toFlag); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("--to: %w", err)
		}
	}
	if from.After(to) {
		return time.Time{}, time.Time{}, domain.ErrInvalidWindow
	}
	return from, to, nil
}

func (s *session) expand(sd side, from, to time.Time) []domain.ExpandedPlanned {
	if sd == sideIncome {
		return engine.ExpandIncomes(s.ds.PlannedIncomes, from, to, s.now, s.n)
	}
	return engine.ExpandExpenses(s.ds.PlannedExpenses, from, to, s.now, s.n)
}

func (s *session) observed(sd side, from, to time.Time) []domain.ObservedEntry {
	var entries []domain.ObservedEntry
	inWindow := func(d time.Time) bool { return !d.Before(from) && !d.After(to) }
	if sd == sideIncome {
		for _, o := range s.ds.ObservedIncomes {
			if inWindow(o.Date) {
				entries = append(entries, o.Entry())
			}
		}
		return entries
	}
	for _, o := range s.ds.ObservedExpenses {
		if inWindow(o.Date) {
			entries = append(entries, o.Entry())
		}
	}
	return entries
}

func (s *session) aggregate(sd side, from, to time.Time) []domain.MonthlyAggregate {
	return engine.AggregateMonthly(s.observed(sd, from, to), s.expand(sd, from, to), s.n)
}

// history is the trailing twelve months through the end of the current month
func (s *session) history() (time.Time, time.Time) {
	return util.AddMonths(s.now, -11), util.LastDayOfMonth(s.now.Year(), s.now.Month())
}

func newExpandCommand(opts *options) *cobra.Command {
	var sideFlag, from, to, scenario string
	cmd := &cobra.Command{
		Use:   "expand",
		Short: "List dated planned instances in a window",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sd, err := parseSide(sideFlag)
			if err != nil {
				return err
			}
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			start, end, err := window(s.now, from, to)
			if err != nil {
				return err
			}
			records := s.expand(sd, start, end)
			switch domain.Scenario(scenario) {
			case "":
			case domain.ScenarioConservative, domain.ScenarioBase, domain.ScenarioOptimistic:
				records = engine.FilterScenario(records, domain.Scenario(scenario))
			default:
				return fmt.Errorf("--scenario must be conservative, base or optimistic, got %q", scenario)
			}
			if records == nil {
				records = []domain.ExpandedPlanned{}
			}
			return writeJSON(cmd.OutOrStdout(), records)
		},
	}
	cmd.Flags().StringVar(&sideFlag, "side", "income", "income or expense")
	cmd.Flags().StringVar(&from, "from", "", "Window start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Window end (YYYY-MM-DD)")
	cmd.Flags().StringVar(&scenario, "scenario", "", "Keep only one scenario")
	return cmd
}

func newAggregateCommand(opts *options) *cobra.Command {
	var sideFlag, from, to string
	cmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Planned vs observed totals per month",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sd, err := parseSide(sideFlag)
			if err != nil {
				return err
			}
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			start, end, err := window(s.now, from, to)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), s.aggregate(sd, start, end))
		},
	}
	cmd.Flags().StringVar(&sideFlag, "side", "income", "income or expense")
	cmd.Flags().StringVar(&from, "from", "", "Window start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Window end (YYYY-MM-DD)")
	return cmd
}

func newKPIsCommand(opts *options) *cobra.Command {
	var sideFlag string
	var calendarPrevious bool
	cmd := &cobra.Command{
		Use:   "kpis",
		Short: "Headline figures of the observed history",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sd, err := parseSide(sideFlag)
			if err != nil {
				return err
			}
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			kpiOpts := engine.KPIOptions{CalendarPreviousMonth: calendarPrevious}
			from, to := s.history()
			aggregates := s.aggregate(sd, from, to)
			if sd == sideIncome {
				return writeJSON(cmd.OutOrStdout(), engine.ComputeKPIs(aggregates, s.now, kpiOpts))
			}
			return writeJSON(cmd.OutOrStdout(), engine.ComputeExpenseKPIs(aggregates, s.expand(sd, from, to), s.now, kpiOpts))
		},
	}
	cmd.Flags().StringVar(&sideFlag, "side", "income", "income or expense")
	cmd.Flags().BoolVar(&calendarPrevious, "calendar-previous", false, "Compare against the calendar month before now")
	return cmd
}

func newForecastCommand(opts *options) *cobra.Command {
	var sideFlag string
	var months int
	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Project the next months from the observed history",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sd, err := parseSide(sideFlag)
			if err != nil {
				return err
			}
			if months < 1 || months > engine.MaxForecastHorizon {
				return fmt.Errorf("--months must be between 1 and %d", engine.MaxForecastHorizon)
			}
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			from, to := s.history()
			return writeJSON(cmd.OutOrStdout(), engine.Forecast(s.aggregate(sd, from, to), months, s.now))
		},
	}
	cmd.Flags().StringVar(&sideFlag, "side", "income", "income or expense")
	cmd.Flags().IntVar(&months, "months", engine.DefaultForecastHorizon, "Months to project")
	return cmd
}

func newCompareCommand(opts *options) *cobra.Command {
	var sideFlag, month string
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Planned vs observed breakdown of one month",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sd, err := parseSide(sideFlag)
			if err != nil {
				return err
			}
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			if month == "" {
				month = util.MonthKey(s.now)
			}
			start, err := util.ParseMonthKey(month)
			if err != nil {
				return fmt.Errorf("--month: %w", err)
			}
			end := util.LastDayOfMonth(start.Year(), start.Month())

			observed, planned := s.observed(sd, start, end), s.expand(sd, start, end)
			var items []domain.Comparison
			if sd == sideIncome {
				items = engine.CompareIncomes(observed, planned, month, s.n)
			} else {
				items = engine.CompareExpenses(observed, planned, month, s.n)
			}
			return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
				"month":  month,
				"closed": util.IsHistoricalMonth(start.Year(), int(start.Month()), s.now),
				"items":  items,
			})
		},
	}
	cmd.Flags().StringVar(&sideFlag, "side", "income", "income or expense")
	cmd.Flags().StringVar(&month, "month", "", "Month to compare (YYYY-MM, default current)")
	return cmd
}

func newInstallmentsCommand(opts *options) *cobra.Command {
	var expenseID int32
	cmd := &cobra.Command{
		Use:   "installments",
		Short: "Installment schedule of a credit purchase",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			expense, err := s.ds.ExpenseByID(expenseID)
			if err != nil {
				return err
			}
			if expense.Kind != domain.ExpenseKindCredit {
				return domain.ErrNotCreditExpense
			}

			installmentOpts := engine.InstallmentOptions{
				DefaultPaymentDay: s.ds.DefaultPaymentDay,
				Routes:            engine.DefaultCoverageRoutes(s.n.Reporting),
			}
			if len(s.ds.Accounts) > 0 {
				installmentOpts.Checker = engine.NewAccountLiquidity(s.ds.Accounts)
				installmentOpts.Routes = engine.AccountRoutes(s.ds.Accounts)
			}

			var card *domain.Card
			if expense.CardID != nil {
				card = s.ds.Cards[*expense.CardID]
			}
			schedule, err := engine.ScheduleInstallments(cmd.Context(), expense, card, s.ds.Paid[expense.ID], s.now, s.n, installmentOpts)
			if err != nil {
				return err
			}
			s.logger.Debug().Int32("expense_id", expense.ID).Int("installments", len(schedule)).Msg("Schedule computed")
			return writeJSON(cmd.OutOrStdout(), schedule)
		},
	}
	cmd.Flags().Int32Var(&expenseID, "expense", 0, "Planned expense ID")
	_ = cmd.MarkFlagRequired("expense")
	return cmd
}

func newAllocateCommand(opts *options) *cobra.Command {
	var surplus, roundTo, maxShare string
	cmd := &cobra.Command{
		Use:   "allocate",
		Short: "Split a surplus across the saving goals",
		RunE: func(cmd *cobra.Command, _ []string) error {
			amount, err := decimal.NewFromString(surplus)
			if err != nil || !amount.IsPositive() {
				return domain.ErrSurplusInvalid
			}
			allocOpts := engine.DefaultAllocationOptions()
			if roundTo != "" {
				if allocOpts.RoundToMultiple, err = decimal.NewFromString(roundTo); err != nil || !allocOpts.RoundToMultiple.IsPositive() {
					return fmt.Errorf("--round-to must be a positive number")
				}
			}
			if maxShare != "" {
				if allocOpts.MaxAllocationPerGoal, err = decimal.NewFromString(maxShare); err != nil || !allocOpts.MaxAllocationPerGoal.IsPositive() {
					return fmt.Errorf("--max-share must be a positive number")
				}
			}

			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), engine.AllocateSurplus(amount, s.ds.Goals, s.now, s.n, allocOpts))
		},
	}
	cmd.Flags().StringVar(&surplus, "surplus", "", "Surplus in the reporting currency")
	cmd.Flags().StringVar(&roundTo, "round-to", "", "Round each allocation down to this multiple")
	cmd.Flags().StringVar(&maxShare, "max-share", "", "Largest fraction of the surplus one goal may take")
	_ = cmd.MarkFlagRequired("surplus")
	return cmd
}
