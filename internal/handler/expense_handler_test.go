package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dafibh/fortuna/fortuna-planner/internal/domain"
	"github.com/dafibh/fortuna/fortuna-planner/internal/service"
	"github.com/dafibh/fortuna/fortuna-planner/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type expenseFixture struct {
	handler      *ExpenseHandler
	plannedRepo  *testutil.MockPlannedExpenseRepository
	observedRepo *testutil.MockObservedExpenseRepository
	cardRepo     *testutil.MockCardRepository
	events       *testutil.MockEventPublisher
}

func setupExpenseHandler() expenseFixture {
	f := expenseFixture{
		plannedRepo:  testutil.NewMockPlannedExpenseRepository(),
		observedRepo: testutil.NewMockObservedExpenseRepository(),
		cardRepo:     testutil.NewMockCardRepository(),
		events:       testutil.NewMockEventPublisher(),
	}
	svc := service.NewExpenseService(f.plannedRepo, f.observedRepo, f.cardRepo, testRates(), service.PlanningOptions{})
	svc.SetClock(testClock)
	svc.SetEventPublisher(f.events)

	f.handler = NewExpenseHandler(svc)
	f.handler.now = testClock
	return f
}

func addCard(repo *testutil.MockCardRepository, workspaceID int32, cardType domain.CardType) *domain.Card {
	payDay := 10
	card, _ := repo.Create(&domain.Card{
		WorkspaceID: workspaceID,
		Name:        "Visa " + string(cardType),
		Type:        cardType,
		Currencies:  []string{"ARS", "USD"},
		PaymentDay:  &payDay,
	})
	return card
}

func TestCreatePlannedExpense_Credit(t *testing.T) {
	e := echo.New()
	f := setupExpenseHandler()
	card := addCard(f.cardRepo, 1, domain.CardTypeCredit)

	body := `{"kind": "credit", "cardId": 1, "category": "shopping", "concept": "Laptop", "currency": "ars",
		"amount": "300000", "confidence": "high", "date": "2025-02-20", "nInstallments": 3}`
	c, rec := newJSONContext(e, http.MethodPost, "/api/v1/expenses/planned", body)
	setupWorkspaceContext(c, 1)

	require.NoError(t, f.handler.CreatePlanned(c))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var response PlannedExpenseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, domain.ExpenseKindCredit, response.Kind)
	assert.Equal(t, card.ID, *response.CardID)
	assert.Equal(t, "ARS", response.Currency)
	assert.Equal(t, "2025-02-20", *response.Date)
	assert.Equal(t, 3, *response.NInstallments)
	assert.Equal(t, []string{"planned_expense.created"}, f.events.Types())
}

func TestCreatePlannedExpense_CardChecks(t *testing.T) {
	e := echo.New()
	f := setupExpenseHandler()
	addCard(f.cardRepo, 1, domain.CardTypeDebit)
	addCard(f.cardRepo, 2, domain.CardTypeCredit)

	tests := []struct {
		name   string
		cardID string
		status int
	}{
		{"debit card", "1", http.StatusBadRequest},
		{"card of another workspace", "2", http.StatusNotFound},
		{"unknown card", "99", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := `{"kind": "credit", "cardId": ` + tt.cardID + `, "category": "shopping", "concept": "TV",
				"currency": "ARS", "amount": "1000", "confidence": "low", "date": "2025-02-20", "nInstallments": 2}`
			c, rec := newJSONContext(e, http.MethodPost, "/api/v1/expenses/planned", body)
			setupWorkspaceContext(c, 1)

			require.NoError(t, f.handler.CreatePlanned(c))
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
	assert.Empty(t, f.plannedRepo.Plans)
}

func TestCreatePlannedExpense_DebitRules(t *testing.T) {
	e := echo.New()
	f := setupExpenseHandler()

	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"debit with installments", `{"kind": "debit", "category": "rent", "currency": "ARS", "amount": "100",
			"confidence": "high", "date": "2025-03-01", "nInstallments": 3}`, "nInstallments"},
		{"unknown kind", `{"kind": "cash", "category": "rent", "currency": "ARS", "amount": "100",
			"confidence": "high"}`, "kind"},
		{"bad date", `{"kind": "debit", "category": "rent", "currency": "ARS", "amount": "100",
			"confidence": "high", "date": "tomorrow"}`, "date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newJSONContext(e, http.MethodPost, "/api/v1/expenses/planned", tt.body)
			setupWorkspaceContext(c, 1)

			require.NoError(t, f.handler.CreatePlanned(c))
			require.Equal(t, http.StatusBadRequest, rec.Code)

			var problem ProblemDetails
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
			require.Len(t, problem.Errors, 1)
			assert.Equal(t, tt.field, problem.Errors[0].Field)
		})
	}
}

func TestRecordObservedExpense_DefaultsToToday(t *testing.T) {
	e := echo.New()
	f := setupExpenseHandler()

	body := `{"category": "groceries", "concept": "Market", "currency": "ARS", "amount": "15000"}`
	c, rec := newJSONContext(e, http.MethodPost, "/api/v1/expenses/observed", body)
	setupWorkspaceContext(c, 1)

	require.NoError(t, f.handler.RecordObserved(c))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var response ObservedExpenseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "2025-03-15", response.Date)
	assert.Equal(t, "15000.00", response.Amount)
}

func TestRecordObservedExpense_UnknownPlan(t *testing.T) {
	e := echo.New()
	f := setupExpenseHandler()

	body := `{"category": "groceries", "currency": "ARS", "amount": "10", "plannedId": 42}`
	c, rec := newJSONContext(e, http.MethodPost, "/api/v1/expenses/observed", body)
	setupWorkspaceContext(c, 1)

	require.NoError(t, f.handler.RecordObserved(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExpenseMonthlyAndKPIs(t *testing.T) {
	e := echo.New()
	f := setupExpenseHandler()
	for _, o := range []struct {
		category string
		amount   int64
		date     time.Time
	}{
		{"rent", 100000, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)},
		{"rent", 100000, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"groceries", 50000, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)},
	} {
		f.observedRepo.AddObserved(&domain.ObservedExpense{
			WorkspaceID: 1,
			Category:    o.category,
			Currency:    "ARS",
			Amount:      decimal.NewFromInt(o.amount),
			Date:        o.date,
		})
	}

	c, rec := newJSONContext(e, http.MethodGet, "/api/v1/expenses/monthly?from=2025-02-01&to=2025-03-31", "")
	setupWorkspaceContext(c, 1)
	require.NoError(t, f.handler.Monthly(c))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var monthly []MonthlyAggregateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &monthly))
	require.Len(t, monthly, 2)
	assert.Equal(t, "2025-02", monthly[0].Month)
	assert.Equal(t, "150000.00", monthly[1].ObservedTotal)

	c, rec = newJSONContext(e, http.MethodGet, "/api/v1/expenses/kpis", "")
	setupWorkspaceContext(c, 1)
	require.NoError(t, f.handler.KPIs(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var kpis ExpenseKPIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &kpis))
	assert.Equal(t, "150000.00", kpis.CurrentMonth)
	assert.Equal(t, "100000.00", kpis.PreviousMonth)
	assert.Equal(t, "50.00", kpis.MoMPct)
	require.NotEmpty(t, kpis.TopCategories)
	assert.Equal(t, "rent", kpis.TopCategories[0].Category)
}

func TestExpenseComparison_ClosedMonth(t *testing.T) {
	e := echo.New()
	f := setupExpenseHandler()

	c, rec := newJSONContext(e, http.MethodGet, "/api/v1/expenses/comparison?month=2025-01", "")
	setupWorkspaceContext(c, 1)

	require.NoError(t, f.handler.Comparison(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var response ComparisonResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.True(t, response.Closed)
	assert.Empty(t, response.Items)
}

func TestUpdatePlannedExpense(t *testing.T) {
	e := echo.New()
	f := setupExpenseHandler()
	credit := addCard(f.cardRepo, 1, domain.CardTypeCredit)
	debit := addCard(f.cardRepo, 1, domain.CardTypeDebit)
	amount := decimal.NewFromInt(120)
	purchase := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	plan, err := f.plannedRepo.Create(&domain.PlannedExpense{
		WorkspaceID: 1, Kind: domain.ExpenseKindDebit, Category: "food", Currency: "ARS",
		Amount: &amount, Confidence: domain.ConfidenceHigh, Date: &purchase, IsActive: true,
	})
	require.NoError(t, err)
	id := fmt.Sprint(plan.ID)

	update := func(cardID int32) *httptest.ResponseRecorder {
		body := fmt.Sprintf(`{"kind": "credit", "cardId": %d, "category": "shopping", "currency": "ARS", "amount": "900",
			"confidence": "high", "date": "2025-03-01", "nInstallments": 3}`, cardID)
		c, rec := newJSONContext(e, http.MethodPut, "/api/v1/expenses/planned/"+id, body)
		c.SetParamNames("id")
		c.SetParamValues(id)
		setupWorkspaceContext(c, 1)
		require.NoError(t, f.handler.UpdatePlanned(c))
		return rec
	}

	rec := update(debit.ID)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "credit purchases need a credit card")

	rec = update(credit.ID)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var response PlannedExpenseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, plan.ID, response.ID)
	assert.Equal(t, domain.ExpenseKindCredit, response.Kind)
	assert.Equal(t, "900.00", *response.Amount)
	assert.Equal(t, []string{"planned_expense.updated"}, f.events.Types())
}
