package service

import (
	"errors"
	"testing"
	"time"

	"github.com/dafibh/fortuna/fortuna-planner/internal/domain"
	"github.com/dafibh/fortuna/fortuna-planner/internal/engine"
	"github.com/dafibh/fortuna/fortuna-planner/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func civil(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func amountPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func dayPtr(d int) *int { return &d }

func monthlyOn(day int) *domain.Recurrence {
	return &domain.Recurrence{Type: domain.RecurrenceMonthly, DayRule: domain.DayRuleFixedDay, AnchorDay: dayPtr(day)}
}

func planningRates() *RateHolder {
	return NewRateHolder(domain.RateTable{
		Reporting: "ARS",
		Rates: map[string]decimal.Decimal{
			"USD":  decimal.NewFromInt(1000),
			"USDT": decimal.NewFromInt(1000),
		},
	})
}

func setupIncomeService() (*IncomeService, *testutil.MockPlannedIncomeRepository, *testutil.MockObservedIncomeRepository, *testutil.MockEventPublisher) {
	plannedRepo := testutil.NewMockPlannedIncomeRepository()
	observedRepo := testutil.NewMockObservedIncomeRepository()
	publisher := testutil.NewMockEventPublisher()

	svc := NewIncomeService(plannedRepo, observedRepo, planningRates(), PlanningOptions{})
	svc.SetClock(fixedClock)
	svc.SetEventPublisher(publisher)
	return svc, plannedRepo, observedRepo, publisher
}

func TestIncomeService_CreatePlanned(t *testing.T) {
	svc, _, _, publisher := setupIncomeService()

	plan, err := svc.CreatePlanned(1, CreatePlannedIncomeInput{
		Source:     "  Acme  ",
		Category:   domain.IncomeCategorySalary,
		Currency:   "usd",
		Amount:     amountPtr("2500"),
		Confidence: domain.ConfidenceHigh,
		Recurrence: monthlyOn(5),
	})
	require.NoError(t, err)

	assert.Equal(t, int32(1), plan.ID)
	assert.Equal(t, "Acme", plan.Source)
	assert.Equal(t, "USD", plan.Currency)
	assert.True(t, plan.IsActive, "plans are active unless stated otherwise")
	assert.Equal(t, []string{"planned_income.created"}, publisher.Types())
}

func TestIncomeService_CreatePlanned_Validation(t *testing.T) {
	svc, plannedRepo, _, publisher := setupIncomeService()

	_, err := svc.CreatePlanned(1, CreatePlannedIncomeInput{
		Source:       "Acme",
		Category:     domain.IncomeCategorySalary,
		Currency:     "ARS",
		Amount:       amountPtr("10"),
		VariableBand: &domain.VariableBand{Min: decimal.NewFromInt(1), Max: decimal.NewFromInt(2)},
		Confidence:   domain.ConfidenceHigh,
	})
	assert.ErrorIs(t, err, domain.ErrAmountAndBandSet)
	assert.Empty(t, plannedRepo.Plans)
	assert.Empty(t, publisher.Events)
}

func TestIncomeService_CreatePlanned_RepositoryError(t *testing.T) {
	svc, plannedRepo, _, _ := setupIncomeService()
	plannedRepo.CreateFn = func(*domain.PlannedIncome) (*domain.PlannedIncome, error) {
		return nil, errors.New("db down")
	}

	_, err := svc.CreatePlanned(1, CreatePlannedIncomeInput{
		Source: "Acme", Category: "salary", Currency: "ARS", Amount: amountPtr("1"), Confidence: domain.ConfidenceLow,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create planned income")
}

func TestIncomeService_DeletePlanned(t *testing.T) {
	svc, plannedRepo, _, publisher := setupIncomeService()
	plannedRepo.AddPlan(&domain.PlannedIncome{ID: 4, WorkspaceID: 1, Source: "Acme", IsActive: true})

	require.NoError(t, svc.DeletePlanned(1, 4))
	assert.Empty(t, plannedRepo.Plans)
	assert.Equal(t, []string{"planned_income.deleted"}, publisher.Types())

	err := svc.DeletePlanned(1, 4)
	assert.ErrorIs(t, err, domain.ErrPlannedIncomeNotFound)
}

func TestIncomeService_DeletePlanned_OtherWorkspace(t *testing.T) {
	svc, plannedRepo, _, _ := setupIncomeService()
	plannedRepo.AddPlan(&domain.PlannedIncome{ID: 4, WorkspaceID: 2})

	err := svc.DeletePlanned(1, 4)
	assert.True(t, domain.IsNotFound(err))
	assert.Len(t, plannedRepo.Plans, 1)
}

func TestIncomeService_RecordObserved_DefaultsToToday(t *testing.T) {
	svc, _, observedRepo, publisher := setupIncomeService()

	o, err := svc.RecordObserved(1, RecordObservedIncomeInput{
		Source: "Acme", Category: "salary", Currency: "ars", Amount: decimal.NewFromInt(900),
	})
	require.NoError(t, err)

	assert.Equal(t, civil(2025, 3, 15), o.Date)
	assert.Equal(t, "ARS", o.Currency)
	assert.Len(t, observedRepo.ByWorkspace[1], 1)
	assert.Equal(t, []string{"observed_income.created"}, publisher.Types())
}

func TestIncomeService_RecordObserved_UnknownPlan(t *testing.T) {
	svc, _, _, _ := setupIncomeService()
	plannedID := int32(99)

	_, err := svc.RecordObserved(1, RecordObservedIncomeInput{
		Category: "salary", Currency: "ARS", Amount: decimal.NewFromInt(1), PlannedID: &plannedID,
	})
	assert.ErrorIs(t, err, domain.ErrPlannedIncomeNotFound)
}

func TestIncomeService_Expanded(t *testing.T) {
	svc, plannedRepo, _, _ := setupIncomeService()
	plannedRepo.AddPlan(&domain.PlannedIncome{
		ID: 1, WorkspaceID: 1, Source: "Acme", Category: "salary", Currency: "ARS",
		VariableBand: &domain.VariableBand{Min: decimal.NewFromInt(1000), Max: decimal.NewFromInt(2000)},
		Confidence:   domain.ConfidenceMedium, Recurrence: monthlyOn(20), IsActive: true,
	})
	plannedRepo.AddPlan(&domain.PlannedIncome{
		ID: 2, WorkspaceID: 1, Source: "Old", Category: "salary", Currency: "ARS",
		Amount: amountPtr("1"), Confidence: domain.ConfidenceHigh, Recurrence: monthlyOn(1), IsActive: false,
	})

	all, err := svc.Expanded(1, civil(2025, 3, 1), civil(2025, 3, 31), "")
	require.NoError(t, err)
	require.Len(t, all, 3, "inactive plans are skipped")
	for _, r := range all {
		assert.Equal(t, civil(2025, 3, 20), r.Date)
		assert.False(t, r.IsPending)
	}

	base, err := svc.Expanded(1, civil(2025, 3, 1), civil(2025, 3, 31), domain.ScenarioBase)
	require.NoError(t, err)
	require.Len(t, base, 1)
	assert.True(t, base[0].AmountOriginal.Equal(decimal.NewFromInt(1500)))

	_, err = svc.Expanded(1, civil(2025, 4, 1), civil(2025, 3, 1), "")
	assert.ErrorIs(t, err, domain.ErrInvalidWindow)
}

func TestIncomeService_MonthlyAndKPIs(t *testing.T) {
	svc, plannedRepo, observedRepo, _ := setupIncomeService()
	plannedRepo.AddPlan(&domain.PlannedIncome{
		ID: 1, WorkspaceID: 1, Source: "Acme", Category: "salary", Currency: "USD",
		Amount: amountPtr("1"), Confidence: domain.ConfidenceHigh, Recurrence: monthlyOn(5), IsActive: true,
	})
	observedRepo.AddObserved(&domain.ObservedIncome{WorkspaceID: 1, Source: "Acme", Category: "salary", Currency: "ARS", Amount: decimal.NewFromInt(800), Date: civil(2025, 2, 5)})
	observedRepo.AddObserved(&domain.ObservedIncome{WorkspaceID: 1, Source: "Acme", Category: "salary", Currency: "USD", Amount: decimal.RequireFromString("0.9"), Date: civil(2025, 3, 5)})

	monthly, err := svc.Monthly(1, civil(2025, 2, 1), civil(2025, 3, 31))
	require.NoError(t, err)
	require.Len(t, monthly, 2)
	assert.Equal(t, "2025-03", monthly[1].Month)
	assert.True(t, monthly[1].PlannedTotal.Equal(decimal.NewFromInt(1000)))
	assert.True(t, monthly[1].ObservedTotal.Equal(decimal.NewFromInt(900)))
	assert.True(t, monthly[1].Variance.Equal(decimal.NewFromInt(-100)))

	kpis, err := svc.KPIs(1)
	require.NoError(t, err)
	assert.True(t, kpis.CurrentMonth.Equal(decimal.NewFromInt(900)))
	assert.True(t, kpis.PreviousMonth.Equal(decimal.NewFromInt(800)))
	assert.True(t, kpis.MoMPct.Equal(decimal.RequireFromString("12.5")), "got %s", kpis.MoMPct)
	assert.True(t, kpis.YTD.Equal(decimal.NewFromInt(1700)))
}

// churningRates returns a new USD rate on every call, like a refresh landing mid-request
type churningRates struct {
	calls int
}

func (r *churningRates) Normalizer() engine.Normalizer {
	r.calls++
	return engine.NewNormalizer("ARS", map[string]decimal.Decimal{"USD": decimal.NewFromInt(int64(1000 * r.calls))})
}

func TestIncomeService_OneRateSnapshotPerRequest(t *testing.T) {
	rates := &churningRates{}
	plannedRepo := testutil.NewMockPlannedIncomeRepository()
	observedRepo := testutil.NewMockObservedIncomeRepository()
	svc := NewIncomeService(plannedRepo, observedRepo, rates, PlanningOptions{})
	svc.SetClock(fixedClock)

	plannedRepo.AddPlan(&domain.PlannedIncome{
		ID: 1, WorkspaceID: 1, Source: "Acme", Category: "salary", Currency: "USD",
		Amount: amountPtr("1"), Confidence: domain.ConfidenceHigh, Recurrence: monthlyOn(5), IsActive: true,
	})
	observedRepo.AddObserved(&domain.ObservedIncome{WorkspaceID: 1, Source: "Acme", Category: "salary", Currency: "USD", Amount: decimal.NewFromInt(1), Date: civil(2025, 3, 5)})

	monthly, err := svc.Monthly(1, civil(2025, 3, 1), civil(2025, 3, 31))
	require.NoError(t, err)
	require.Len(t, monthly, 1)
	assert.Equal(t, 1, rates.calls)
	assert.True(t, monthly[0].PlannedTotal.Equal(monthly[0].ObservedTotal), "planned %s observed %s", monthly[0].PlannedTotal, monthly[0].ObservedTotal)
	assert.True(t, monthly[0].Variance.IsZero())

	report, err := svc.Comparison(1, "2025-03")
	require.NoError(t, err)
	assert.Equal(t, 2, rates.calls)
	require.NotEmpty(t, report.Items)
	assert.True(t, report.Items[0].Variance.IsZero(), "got %s", report.Items[0].Variance)
}

func TestIncomeService_Forecast(t *testing.T) {
	svc, _, observedRepo, _ := setupIncomeService()
	for m := time.January; m <= time.March; m++ {
		observedRepo.AddObserved(&domain.ObservedIncome{WorkspaceID: 1, Category: "salary", Currency: "ARS", Amount: decimal.NewFromInt(1000), Date: civil(2025, m, 10)})
	}

	forecast, err := svc.Forecast(1, 2)
	require.NoError(t, err)
	require.Len(t, forecast, 2)
	assert.Equal(t, "2025-04", forecast[0].Month)
	assert.Equal(t, "2025-05", forecast[1].Month)
	assert.True(t, forecast[0].Base.Equal(decimal.NewFromInt(1000)))
	assert.True(t, forecast[0].Conservative.Equal(decimal.NewFromInt(850)))
}

func TestIncomeService_Comparison(t *testing.T) {
	svc, plannedRepo, observedRepo, _ := setupIncomeService()
	plannedRepo.AddPlan(&domain.PlannedIncome{
		ID: 1, WorkspaceID: 1, Source: "Acme", Category: "salary", Currency: "ARS",
		Amount: amountPtr("1000"), Confidence: domain.ConfidenceHigh, Recurrence: monthlyOn(5), IsActive: true,
	})
	observedRepo.AddObserved(&domain.ObservedIncome{WorkspaceID: 1, Source: "Acme", Category: "salary", Currency: "ARS", Amount: decimal.NewFromInt(850), Date: civil(2025, 2, 5)})

	report, err := svc.Comparison(1, "2025-02")
	require.NoError(t, err)
	assert.Equal(t, "2025-02", report.Month)
	assert.True(t, report.Closed)
	require.Len(t, report.Items, 1)
	assert.Equal(t, domain.ComparisonBad, report.Items[0].Status)

	current, err := svc.Comparison(1, "2025-03")
	require.NoError(t, err)
	assert.False(t, current.Closed)

	_, err = svc.Comparison(1, "March")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func setupExpenseService() (*ExpenseService, *testutil.MockPlannedExpenseRepository, *testutil.MockObservedExpenseRepository, *testutil.MockCardRepository, *testutil.MockEventPublisher) {
	plannedRepo := testutil.NewMockPlannedExpenseRepository()
	observedRepo := testutil.NewMockObservedExpenseRepository()
	cardRepo := testutil.NewMockCardRepository()
	publisher := testutil.NewMockEventPublisher()

	svc := NewExpenseService(plannedRepo, observedRepo, cardRepo, planningRates(), PlanningOptions{})
	svc.SetClock(fixedClock)
	svc.SetEventPublisher(publisher)
	return svc, plannedRepo, observedRepo, cardRepo, publisher
}

func TestExpenseService_CreatePlanned_Credit(t *testing.T) {
	svc, _, _, cardRepo, publisher := setupExpenseService()
	cardRepo.AddCard(&domain.Card{ID: 3, WorkspaceID: 1, Name: "Visa", Type: domain.CardTypeCredit, Currencies: []string{"ARS"}})
	cardID := int32(3)
	purchase := time.Date(2025, 1, 10, 18, 30, 0, 0, time.UTC)

	plan, err := svc.CreatePlanned(1, CreatePlannedExpenseInput{
		Kind:          domain.ExpenseKindCredit,
		CardID:        &cardID,
		Category:      domain.ExpenseCategoryShopping,
		Currency:      "ARS",
		Amount:        amountPtr("300"),
		Confidence:    domain.ConfidenceHigh,
		Date:          &purchase,
		NInstallments: dayPtr(3),
		Concept:       "TV",
	})
	require.NoError(t, err)
	assert.Equal(t, civil(2025, 1, 10), *plan.Date, "dates are stored as civil dates")
	assert.Equal(t, []string{"planned_expense.created"}, publisher.Types())
}

func TestExpenseService_CreatePlanned_CardChecks(t *testing.T) {
	svc, _, _, cardRepo, _ := setupExpenseService()
	cardRepo.AddCard(&domain.Card{ID: 3, WorkspaceID: 1, Name: "Debit", Type: domain.CardTypeDebit, Currencies: []string{"ARS"}})
	purchase := civil(2025, 1, 10)

	input := func(cardID int32) CreatePlannedExpenseInput {
		return CreatePlannedExpenseInput{
			Kind: domain.ExpenseKindCredit, CardID: &cardID, Category: "shopping", Currency: "ARS",
			Amount: amountPtr("300"), Confidence: domain.ConfidenceHigh, Date: &purchase, NInstallments: dayPtr(3),
		}
	}

	_, err := svc.CreatePlanned(1, input(3))
	assert.ErrorIs(t, err, domain.ErrExpenseCardNotCredit)

	_, err = svc.CreatePlanned(1, input(42))
	assert.ErrorIs(t, err, domain.ErrCardNotFound)
}

func TestExpenseService_KPIs(t *testing.T) {
	svc, plannedRepo, observedRepo, _, _ := setupExpenseService()
	cardID := int32(1)
	purchase := civil(2025, 3, 2)
	plannedRepo.AddPlan(&domain.PlannedExpense{
		ID: 1, WorkspaceID: 1, Kind: domain.ExpenseKindDebit, Category: "bills", Currency: "ARS",
		Amount: amountPtr("300"), Confidence: domain.ConfidenceHigh, Recurrence: monthlyOn(1), IsActive: true,
	})
	plannedRepo.AddPlan(&domain.PlannedExpense{
		ID: 2, WorkspaceID: 1, Kind: domain.ExpenseKindCredit, CardID: &cardID, Category: "shopping", Currency: "ARS",
		Amount: amountPtr("100"), Confidence: domain.ConfidenceHigh, Date: &purchase, NInstallments: dayPtr(1), IsActive: true,
	})
	observedRepo.AddObserved(&domain.ObservedExpense{WorkspaceID: 1, Category: "food", Currency: "ARS", Amount: decimal.NewFromInt(600), Date: civil(2025, 3, 3)})
	observedRepo.AddObserved(&domain.ObservedExpense{WorkspaceID: 1, Category: "bills", Currency: "ARS", Amount: decimal.NewFromInt(400), Date: civil(2025, 3, 1)})

	kpis, err := svc.KPIs(1)
	require.NoError(t, err)

	assert.True(t, kpis.CurrentMonth.Equal(decimal.NewFromInt(1000)))
	require.Len(t, kpis.TopCategories, 2)
	assert.Equal(t, "food", kpis.TopCategories[0].Category)
	assert.True(t, kpis.TopCategories[0].SharePct.Equal(decimal.NewFromInt(60)))
	assert.True(t, kpis.CreditDebitSplit.CreditPct.Equal(decimal.NewFromInt(25)))
	assert.True(t, kpis.CreditDebitSplit.DebitPct.Equal(decimal.NewFromInt(75)))
}

func TestExpenseService_Comparison(t *testing.T) {
	svc, plannedRepo, observedRepo, _, _ := setupExpenseService()
	plannedRepo.AddPlan(&domain.PlannedExpense{
		ID: 1, WorkspaceID: 1, Kind: domain.ExpenseKindDebit, Category: "food", Currency: "ARS",
		Amount: amountPtr("1000"), Confidence: domain.ConfidenceHigh, Recurrence: monthlyOn(1), IsActive: true,
	})
	observedRepo.AddObserved(&domain.ObservedExpense{WorkspaceID: 1, Category: "food", Currency: "ARS", Amount: decimal.NewFromInt(1200), Date: civil(2025, 3, 3)})

	report, err := svc.Comparison(1, "2025-03")
	require.NoError(t, err)
	require.Len(t, report.Items, 1)
	assert.Equal(t, domain.ComparisonBad, report.Items[0].Status, "overspending is bad")
	assert.True(t, report.Items[0].VariancePct.Equal(decimal.NewFromInt(20)))
}

func TestExpenseService_RecordObservedAndDelete(t *testing.T) {
	svc, plannedRepo, _, _, publisher := setupExpenseService()
	plannedRepo.AddPlan(&domain.PlannedExpense{ID: 9, WorkspaceID: 1, Kind: domain.ExpenseKindDebit})
	plannedID := int32(9)

	o, err := svc.RecordObserved(1, RecordObservedExpenseInput{
		Category: "food", Concept: " lunch ", Currency: "ARS", Amount: decimal.NewFromInt(50), PlannedID: &plannedID,
	})
	require.NoError(t, err)
	assert.Equal(t, "lunch", o.Concept)

	_, err = svc.RecordObserved(1, RecordObservedExpenseInput{Category: "food", Currency: "ARS", Amount: decimal.Zero})
	assert.ErrorIs(t, err, domain.ErrAmountInvalid)

	require.NoError(t, svc.DeletePlanned(1, 9))
	assert.Equal(t, []string{"observed_expense.created", "planned_expense.deleted"}, publisher.Types())
}

func TestHistoryWindow(t *testing.T) {
	from, to := historyWindow(fixedNow)
	assert.Equal(t, civil(2024, 4, 1), from)
	assert.Equal(t, civil(2025, 3, 31), to)

	// December still reaches back to January
	from, _ = historyWindow(civil(2025, 12, 10))
	assert.Equal(t, civil(2025, 1, 1), from)
}

func TestIncomeService_UpdatePlanned(t *testing.T) {
	svc, plannedRepo, _, publisher := setupIncomeService()
	plannedRepo.AddPlan(&domain.PlannedIncome{
		ID: 4, WorkspaceID: 1, Source: "Acme", Category: "salary", Currency: "USD",
		Amount: amountPtr("2500"), Confidence: domain.ConfidenceHigh, Recurrence: monthlyOn(5), IsActive: false,
	})

	plan, err := svc.UpdatePlanned(1, 4, CreatePlannedIncomeInput{
		Source:       " Acme Corp ",
		Category:     domain.IncomeCategorySalary,
		Currency:     "usd",
		VariableBand: &domain.VariableBand{Min: decimal.NewFromInt(2000), Max: decimal.NewFromInt(3000)},
		Confidence:   domain.ConfidenceMedium,
		Recurrence:   monthlyOn(10),
	})
	require.NoError(t, err)
	assert.Equal(t, int32(4), plan.ID)
	assert.Equal(t, "Acme Corp", plan.Source)
	assert.Nil(t, plan.Amount)
	require.NotNil(t, plan.VariableBand)
	assert.False(t, plan.IsActive, "a missing isActive keeps the current state")
	assert.Equal(t, []string{"planned_income.updated"}, publisher.Types())
	assert.Same(t, plannedRepo.Plans[4], plan)
}

func TestIncomeService_UpdatePlanned_Errors(t *testing.T) {
	svc, plannedRepo, _, publisher := setupIncomeService()
	plannedRepo.AddPlan(&domain.PlannedIncome{
		ID: 4, WorkspaceID: 1, Source: "Acme", Category: "salary", Currency: "USD",
		Amount: amountPtr("2500"), Confidence: domain.ConfidenceHigh, IsActive: true,
	})
	valid := CreatePlannedIncomeInput{Source: "Acme", Category: "salary", Currency: "USD", Amount: amountPtr("1"), Confidence: domain.ConfidenceHigh}

	_, err := svc.UpdatePlanned(1, 5, valid)
	assert.ErrorIs(t, err, domain.ErrPlannedIncomeNotFound)

	_, err = svc.UpdatePlanned(2, 4, valid)
	assert.ErrorIs(t, err, domain.ErrPlannedIncomeNotFound)

	invalid := valid
	invalid.Amount = nil
	_, err = svc.UpdatePlanned(1, 4, invalid)
	assert.ErrorIs(t, err, domain.ErrAmountOrBandRequired)
	assert.True(t, plannedRepo.Plans[4].Amount.Equal(decimal.NewFromInt(2500)), "failed updates leave the plan untouched")
	assert.Empty(t, publisher.Events)
}

func TestExpenseService_UpdatePlanned(t *testing.T) {
	svc, plannedRepo, _, cardRepo, publisher := setupExpenseService()
	cardRepo.AddCard(&domain.Card{ID: 3, WorkspaceID: 1, Name: "Visa", Type: domain.CardTypeCredit, Currencies: []string{"ARS"}})
	cardRepo.AddCard(&domain.Card{ID: 4, WorkspaceID: 1, Name: "Debit", Type: domain.CardTypeDebit, Currencies: []string{"ARS"}})
	purchase := civil(2025, 1, 10)
	plannedRepo.AddPlan(&domain.PlannedExpense{
		ID: 2, WorkspaceID: 1, Kind: domain.ExpenseKindDebit, Category: "food", Currency: "ARS",
		Amount: amountPtr("10"), Confidence: domain.ConfidenceHigh, Date: &purchase, IsActive: true,
	})

	input := func(cardID int32) CreatePlannedExpenseInput {
		return CreatePlannedExpenseInput{
			Kind: domain.ExpenseKindCredit, CardID: &cardID, Category: "shopping", Currency: "ars",
			Amount: amountPtr("300"), Confidence: domain.ConfidenceHigh, Date: &purchase, NInstallments: dayPtr(3),
		}
	}

	_, err := svc.UpdatePlanned(1, 2, input(4))
	assert.ErrorIs(t, err, domain.ErrExpenseCardNotCredit)
	_, err = svc.UpdatePlanned(1, 2, input(42))
	assert.ErrorIs(t, err, domain.ErrCardNotFound)
	_, err = svc.UpdatePlanned(1, 9, input(3))
	assert.ErrorIs(t, err, domain.ErrPlannedExpenseNotFound)

	plan, err := svc.UpdatePlanned(1, 2, input(3))
	require.NoError(t, err)
	assert.Equal(t, int32(2), plan.ID)
	assert.Equal(t, domain.ExpenseKindCredit, plan.Kind)
	assert.Equal(t, "ARS", plan.Currency)
	assert.Equal(t, 3, *plan.NInstallments)
	assert.Equal(t, []string{"planned_expense.updated"}, publisher.Types())
}
