package engine

import (
	"context"
	"time"

	"github.com/dafibh/fortuna/fortuna-planner/internal/domain"
	"github.com/dafibh/fortuna/fortuna-planner/internal/util"
	"github.com/shopspring/decimal"
)

// ComputeCardCycle returns the billing position of card as of now.
//
// With a cutoff day, the current cycle closes on the next cutoff on or after
// today and is paid on the first payment day after that cutoff. Without one,
// the current payment is the next payment day on or after today. Payment
// dates move forward off weekends, like installment due dates.
//
// Unpaid installments of the card's credit expenses due by the current payment
// count as cycle consumption; later ones as future installments.
func ComputeCardCycle(
	ctx context.Context,
	card *domain.Card,
	expenses []*domain.PlannedExpense,
	paid map[int32]domain.PaidSet,
	now time.Time,
	defaultPaymentDay int,
) (domain.CardCycle, error) {
	today := util.DateOnly(now)
	paymentDay := card.EffectivePaymentDay(defaultPaymentDay)

	cycle := domain.CardCycle{
		CycleConsumption:   map[string]decimal.Decimal{},
		FutureInstallments: map[string]decimal.Decimal{},
	}
	if card.CutoffDay != nil {
		cutoff := util.CalculateActualDate(today.Year(), today.Month(), *card.CutoffDay)
		if cutoff.Before(today) {
			cutoff = dayInMonth(util.AddMonths(today, 1), *card.CutoffDay)
		}
		nextCutoff := dayInMonth(util.AddMonths(cutoff, 1), *card.CutoffDay)
		cycle.CurrentCutoff, cycle.NextCutoff = &cutoff, &nextCutoff
		cycle.CurrentPayment = paymentAfter(cutoff, paymentDay)
		cycle.NextPayment = paymentAfter(nextCutoff, paymentDay)
	} else {
		nominal := dayInMonth(today, paymentDay)
		if util.ResolveBusinessDay(nominal, util.Forward).Before(today) {
			nominal = dayInMonth(util.AddMonths(today, 1), paymentDay)
		}
		cycle.CurrentPayment = util.ResolveBusinessDay(nominal, util.Forward)
		cycle.NextPayment = util.ResolveBusinessDay(dayInMonth(util.AddMonths(nominal, 1), paymentDay), util.Forward)
	}

	opts := InstallmentOptions{DefaultPaymentDay: defaultPaymentDay}
	for _, e := range expenses {
		if e.Kind != domain.ExpenseKindCredit || e.CardID == nil || *e.CardID != card.ID {
			continue
		}
		// no coverage check runs, so the schedule needs no rates
		schedule, err := ScheduleInstallments(ctx, e, card, paid[e.ID], now, Normalizer{}, opts)
		if err != nil {
			return domain.CardCycle{}, err
		}
		for _, inst := range schedule {
			if inst.Status == domain.InstallmentStatusPaid {
				continue
			}
			bucket := cycle.FutureInstallments
			if !inst.DueDate.After(cycle.CurrentPayment) {
				bucket = cycle.CycleConsumption
			}
			bucket[inst.Currency] = bucket[inst.Currency].Add(inst.AmountBase)
		}
	}
	return cycle, nil
}

// PreviewInstallments shows how a purchase made today would be repaid on card.
// Debit cards have no installments and yield an empty preview.
func PreviewInstallments(
	ctx context.Context,
	card *domain.Card,
	amount decimal.Decimal,
	currency string,
	count int,
	now time.Time,
	defaultPaymentDay int,
) ([]domain.InstallmentPreview, error) {
	if !amount.IsPositive() {
		return nil, domain.ErrAmountInvalid
	}
	if count < 1 || count > domain.MaxInstallments {
		return nil, domain.ErrInstallmentsInvalid
	}
	if !card.Supports(currency) {
		return nil, domain.ErrCardCurrencyUnsupported
	}
	if card.Type != domain.CardTypeCredit {
		return []domain.InstallmentPreview{}, nil
	}

	today := util.DateOnly(now)
	purchase := &domain.PlannedExpense{
		WorkspaceID:   card.WorkspaceID,
		Kind:          domain.ExpenseKindCredit,
		CardID:        &card.ID,
		Currency:      currency,
		Amount:        &amount,
		Date:          &today,
		NInstallments: &count,
	}
	schedule, err := ScheduleInstallments(ctx, purchase, card, nil, now, Normalizer{}, InstallmentOptions{DefaultPaymentDay: defaultPaymentDay})
	if err != nil {
		return nil, err
	}

	previews := make([]domain.InstallmentPreview, len(schedule))
	for i, inst := range schedule {
		previews[i] = domain.InstallmentPreview{
			InstallmentNumber: inst.InstallmentNumber,
			DueDate:           inst.DueDate,
			Amount:            inst.AmountBase,
			IsWeekendAdjusted: inst.IsWeekendAdjusted,
		}
	}
	return previews, nil
}

func dayInMonth(month time.Time, day int) time.Time {
	return util.CalculateActualDate(month.Year(), month.Month(), day)
}

// paymentAfter is the first payment date strictly after cutoff, off weekends
func paymentAfter(cutoff time.Time, paymentDay int) time.Time {
	nominal := dayInMonth(cutoff, paymentDay)
	if !nominal.After(cutoff) {
		nominal = dayInMonth(util.AddMonths(cutoff, 1), paymentDay)
	}
	return util.ResolveBusinessDay(nominal, util.Forward)
}
