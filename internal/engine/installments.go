package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/dafibh/fortuna/fortuna-planner/internal/domain"
	"github.com/dafibh/fortuna/fortuna-planner/internal/util"
	"github.com/shopspring/decimal"
)

// Days-until-due thresholds for installment status
const (
	urgentWithinDays  = 3
	warningWithinDays = 7
)

type InstallmentOptions struct {
	// DefaultPaymentDay applies when the card is missing or has no payment day
	DefaultPaymentDay int
	// Checker defaults to NoCoverageCheck
	Checker CoverageChecker
	Routes  []CoverageRoute
}

// ScheduleInstallments splits a credit purchase into monthly installments.
// Installment i is due on the card payment day i months after the purchase,
// moved forward off weekends. The last installment absorbs the rounding residue.
func ScheduleInstallments(
	ctx context.Context,
	expense *domain.PlannedExpense,
	card *domain.Card,
	paid domain.PaidSet,
	now time.Time,
	n Normalizer,
	opts InstallmentOptions,
) ([]domain.ExpenseInstallment, error) {
	if expense.Kind != domain.ExpenseKindCredit || expense.NInstallments == nil || *expense.NInstallments < 1 || expense.Date == nil {
		return []domain.ExpenseInstallment{}, nil
	}

	checker := opts.Checker
	if checker == nil {
		checker = NoCoverageCheck{}
	}

	count := *expense.NInstallments
	amounts := SplitAmount(expense.TotalAmount(), count)
	var equiv []decimal.Decimal
	if expense.AmountEquivEst != nil {
		equiv = SplitAmount(*expense.AmountEquivEst, count)
	}

	paymentDay := card.EffectivePaymentDay(opts.DefaultPaymentDay)
	purchase := util.DateOnly(*expense.Date)
	today := util.DateOnly(now)

	installments := make([]domain.ExpenseInstallment, 0, count)
	for i := 1; i <= count; i++ {
		month := util.AddMonths(purchase, i)
		nominal := util.CalculateActualDate(month.Year(), month.Month(), paymentDay)
		due := util.ResolveBusinessDay(nominal, util.Forward)

		inst := domain.ExpenseInstallment{
			ID:                domain.InstallmentID(expense.ID, i),
			PlannedExpenseID:  expense.ID,
			InstallmentNumber: i,
			TotalInstallments: count,
			DueDate:           due,
			IsWeekendAdjusted: !due.Equal(nominal),
			Status:            installmentStatus(util.DaysBetween(today, due)),
			Currency:          expense.Currency,
			AmountBase:        amounts[i-1],
		}
		if equiv != nil {
			e := equiv[i-1]
			inst.AmountEquivEst = &e
		}

		if paid[i] {
			inst.Status = domain.InstallmentStatusPaid
		} else {
			deficit, err := checker.CheckCoverage(ctx, expense.Currency, inst.AmountBase, due)
			if err != nil {
				return nil, fmt.Errorf("coverage check for installment %d: %w", i, err)
			}
			if deficit != nil && deficit.Amount.IsPositive() {
				inst.Deficit = deficit
				inst.Suggestions = suggestCoverage(*deficit, opts.Routes, n)
			}
		}

		installments = append(installments, inst)
	}
	return installments, nil
}

// SplitAmount divides total into count parts rounded to cents,
// with the last part absorbing the residue so the parts sum to total.
func SplitAmount(total decimal.Decimal, count int) []decimal.Decimal {
	if count < 1 {
		return nil
	}
	share := total.Div(decimal.NewFromInt(int64(count))).Round(2)
	parts := make([]decimal.Decimal, count)
	allocated := decimal.Zero
	for i := 0; i < count-1; i++ {
		parts[i] = share
		allocated = allocated.Add(share)
	}
	parts[count-1] = total.Sub(allocated)
	return parts
}

func installmentStatus(daysUntilDue int) domain.InstallmentStatus {
	switch {
	case daysUntilDue <= 0:
		return domain.InstallmentStatusDue
	case daysUntilDue <= urgentWithinDays:
		return domain.InstallmentStatusUrgent
	case daysUntilDue <= warningWithinDays:
		return domain.InstallmentStatusWarning
	default:
		return domain.InstallmentStatusUpcoming
	}
}
