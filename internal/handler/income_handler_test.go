package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/dafibh/fortuna/fortuna-planner/internal/domain"
	"github.com/dafibh/fortuna/fortuna-planner/internal/service"
	"github.com/dafibh/fortuna/fortuna-planner/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupIncomeHandler() (*IncomeHandler, *testutil.MockPlannedIncomeRepository, *testutil.MockObservedIncomeRepository) {
	plannedRepo := testutil.NewMockPlannedIncomeRepository()
	observedRepo := testutil.NewMockObservedIncomeRepository()
	svc := service.NewIncomeService(plannedRepo, observedRepo, testRates(), service.PlanningOptions{})
	svc.SetClock(testClock)

	h := NewIncomeHandler(svc)
	h.now = testClock
	return h, plannedRepo, observedRepo
}

func addSalary(repo *testutil.MockPlannedIncomeRepository, workspaceID int32, amount string) {
	d := decimal.RequireFromString(amount)
	day := 5
	_, _ = repo.Create(&domain.PlannedIncome{
		WorkspaceID: workspaceID,
		Source:      "Acme",
		Category:    domain.IncomeCategorySalary,
		Currency:    "USD",
		Amount:      &d,
		Confidence:  domain.ConfidenceHigh,
		Recurrence:  &domain.Recurrence{Type: domain.RecurrenceMonthly, DayRule: domain.DayRuleFixedDay, AnchorDay: &day},
		IsActive:    true,
	})
}

func TestCreatePlannedIncome_Success(t *testing.T) {
	e := echo.New()
	h, _, _ := setupIncomeHandler()

	body := `{"source": "Acme", "category": "salary", "currency": "usd", "amount": "2500",
		"confidence": "high", "recurrence": {"type": "monthly", "dayRule": "fixed_day", "anchorDay": 5}}`
	c, rec := newJSONContext(e, http.MethodPost, "/api/v1/incomes/planned", body)
	setupWorkspaceContext(c, 1)

	err := h.CreatePlanned(c)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var response PlannedIncomeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Amount == nil || *response.Amount != "2500.00" {
		t.Errorf("Expected amount '2500.00', got %v", response.Amount)
	}
	if response.Currency != "USD" {
		t.Errorf("Expected currency USD, got %s", response.Currency)
	}
	if !response.IsActive {
		t.Error("Expected new plan to be active")
	}
}

func TestCreatePlannedIncome_Validation(t *testing.T) {
	e := echo.New()
	h, plannedRepo, _ := setupIncomeHandler()

	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"bad amount", `{"source": "Acme", "category": "salary", "currency": "USD", "amount": "lots", "confidence": "high"}`, "amount"},
		{"amount and band", `{"source": "Acme", "category": "salary", "currency": "USD", "amount": "10",
			"variableBand": {"min": "5", "max": "15"}, "confidence": "high"}`, "amount"},
		{"band min above max", `{"source": "Acme", "category": "salary", "currency": "USD",
			"variableBand": {"min": "20", "max": "15"}, "confidence": "high"}`, "variableBand"},
		{"missing anchor", `{"source": "Acme", "category": "salary", "currency": "USD", "amount": "10",
			"confidence": "high", "recurrence": {"type": "monthly", "dayRule": "fixed_day"}}`, "recurrence.anchorDay"},
		{"missing source", `{"category": "salary", "currency": "USD", "amount": "10", "confidence": "high"}`, "source"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newJSONContext(e, http.MethodPost, "/api/v1/incomes/planned", tt.body)
			setupWorkspaceContext(c, 1)

			require.NoError(t, h.CreatePlanned(c))
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var problem ProblemDetails
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
			require.Len(t, problem.Errors, 1)
			assert.Equal(t, tt.field, problem.Errors[0].Field)
			assert.Equal(t, ErrorTypeValidation, problem.Type)
		})
	}
	assert.Empty(t, plannedRepo.Plans, "invalid plans must not be stored")
}

func TestCreatePlannedIncome_NoWorkspace(t *testing.T) {
	e := echo.New()
	h, _, _ := setupIncomeHandler()

	c, rec := newJSONContext(e, http.MethodPost, "/api/v1/incomes/planned", `{}`)

	require.NoError(t, h.CreatePlanned(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListPlannedIncomes_ActiveFilter(t *testing.T) {
	e := echo.New()
	h, plannedRepo, _ := setupIncomeHandler()
	addSalary(plannedRepo, 1, "1000")
	addSalary(plannedRepo, 1, "2000")
	plannedRepo.Plans[2].IsActive = false
	addSalary(plannedRepo, 2, "3000")

	c, rec := newJSONContext(e, http.MethodGet, "/api/v1/incomes/planned?active=true", "")
	setupWorkspaceContext(c, 1)

	require.NoError(t, h.ListPlanned(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var response []PlannedIncomeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	require.Len(t, response, 1)
	assert.Equal(t, "1000.00", *response[0].Amount)

	c, rec = newJSONContext(e, http.MethodGet, "/api/v1/incomes/planned?active=maybe", "")
	setupWorkspaceContext(c, 1)
	require.NoError(t, h.ListPlanned(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeletePlannedIncome(t *testing.T) {
	e := echo.New()
	h, plannedRepo, _ := setupIncomeHandler()
	addSalary(plannedRepo, 1, "1000")

	c, rec := newJSONContext(e, http.MethodDelete, "/api/v1/incomes/planned/1", "")
	c.SetParamNames("id")
	c.SetParamValues("1")
	setupWorkspaceContext(c, 1)

	require.NoError(t, h.DeletePlanned(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// Second delete finds nothing
	c, rec = newJSONContext(e, http.MethodDelete, "/api/v1/incomes/planned/1", "")
	c.SetParamNames("id")
	c.SetParamValues("1")
	setupWorkspaceContext(c, 1)

	require.NoError(t, h.DeletePlanned(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeletePlannedIncome_InvalidID(t *testing.T) {
	e := echo.New()
	h, _, _ := setupIncomeHandler()

	c, rec := newJSONContext(e, http.MethodDelete, "/api/v1/incomes/planned/abc", "")
	c.SetParamNames("id")
	c.SetParamValues("abc")
	setupWorkspaceContext(c, 1)

	require.NoError(t, h.DeletePlanned(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecordObservedIncome(t *testing.T) {
	e := echo.New()
	h, _, observedRepo := setupIncomeHandler()

	body := `{"source": "Acme", "category": "salary", "currency": "USD", "amount": "950.5", "date": "2025-03-05"}`
	c, rec := newJSONContext(e, http.MethodPost, "/api/v1/incomes/observed", body)
	setupWorkspaceContext(c, 1)

	require.NoError(t, h.RecordObserved(c))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var response ObservedIncomeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "950.50", response.Amount)
	assert.Equal(t, "2025-03-05", response.Date)
	assert.Len(t, observedRepo.ByWorkspace[1], 1)
}

func TestRecordObservedIncome_BadDate(t *testing.T) {
	e := echo.New()
	h, _, _ := setupIncomeHandler()

	body := `{"source": "Acme", "category": "salary", "currency": "USD", "amount": "10", "date": "05/03/2025"}`
	c, rec := newJSONContext(e, http.MethodPost, "/api/v1/incomes/observed", body)
	setupWorkspaceContext(c, 1)

	require.NoError(t, h.RecordObserved(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var problem ProblemDetails
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	require.Len(t, problem.Errors, 1)
	assert.Equal(t, "date", problem.Errors[0].Field)
}

func TestIncomeExpanded(t *testing.T) {
	e := echo.New()
	h, plannedRepo, _ := setupIncomeHandler()
	addSalary(plannedRepo, 1, "1000")

	c, rec := newJSONContext(e, http.MethodGet, "/api/v1/incomes/expanded?from=2025-03-01&to=2025-04-30&scenario=base", "")
	setupWorkspaceContext(c, 1)

	require.NoError(t, h.Expanded(c))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var response []ExpandedPlannedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	require.Len(t, response, 2)
	assert.Equal(t, "2025-03-05", response[0].Date)
	assert.Equal(t, "1000.00", response[0].AmountOriginal)
	assert.Equal(t, "1000000.00", response[0].AmountReporting)
	assert.Equal(t, domain.ScenarioBase, response[0].Scenario)
}

func TestIncomeExpanded_BadQuery(t *testing.T) {
	e := echo.New()
	h, _, _ := setupIncomeHandler()

	for _, target := range []string{
		"/api/v1/incomes/expanded?from=2025-13-01",
		"/api/v1/incomes/expanded?scenario=pessimistic",
		"/api/v1/incomes/expanded?from=2025-05-01&to=2025-04-01",
	} {
		c, rec := newJSONContext(e, http.MethodGet, target, "")
		setupWorkspaceContext(c, 1)

		require.NoError(t, h.Expanded(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestIncomeMonthlyAndComparison(t *testing.T) {
	e := echo.New()
	h, plannedRepo, observedRepo := setupIncomeHandler()
	addSalary(plannedRepo, 1, "1000")
	observedRepo.AddObserved(&domain.ObservedIncome{
		WorkspaceID: 1,
		Source:      "Acme",
		Category:    domain.IncomeCategorySalary,
		Currency:    "USD",
		Amount:      decimal.NewFromInt(900),
		Date:        testNow.AddDate(0, 0, -10),
	})

	c, rec := newJSONContext(e, http.MethodGet, "/api/v1/incomes/monthly?from=2025-03-01&to=2025-03-31", "")
	setupWorkspaceContext(c, 1)
	require.NoError(t, h.Monthly(c))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var monthly []MonthlyAggregateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &monthly))
	require.Len(t, monthly, 1)
	assert.Equal(t, "2025-03", monthly[0].Month)
	assert.Equal(t, "900000.00", monthly[0].ObservedTotal)

	c, rec = newJSONContext(e, http.MethodGet, "/api/v1/incomes/comparison?month=2025-03", "")
	setupWorkspaceContext(c, 1)
	require.NoError(t, h.Comparison(c))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var comparison ComparisonResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &comparison))
	assert.Equal(t, "2025-03", comparison.Month)
	assert.False(t, comparison.Closed)
	assert.NotEmpty(t, comparison.Items)

	c, rec = newJSONContext(e, http.MethodGet, "/api/v1/incomes/comparison?month=March", "")
	setupWorkspaceContext(c, 1)
	require.NoError(t, h.Comparison(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIncomeKPIsAndForecast(t *testing.T) {
	e := echo.New()
	h, plannedRepo, _ := setupIncomeHandler()
	addSalary(plannedRepo, 1, "1000")

	c, rec := newJSONContext(e, http.MethodGet, "/api/v1/incomes/kpis", "")
	setupWorkspaceContext(c, 1)
	require.NoError(t, h.KPIs(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var kpis KPIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &kpis))
	assert.Equal(t, "0.00", kpis.CurrentMonth, "KPIs are computed from observed income only")

	c, rec = newJSONContext(e, http.MethodGet, "/api/v1/incomes/forecast?months=4", "")
	setupWorkspaceContext(c, 1)
	require.NoError(t, h.Forecast(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var forecast []ForecastMonthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &forecast))
	assert.Len(t, forecast, 4)

	c, rec = newJSONContext(e, http.MethodGet, "/api/v1/incomes/forecast?months=0", "")
	setupWorkspaceContext(c, 1)
	require.NoError(t, h.Forecast(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdatePlannedIncome(t *testing.T) {
	e := echo.New()
	h, plannedRepo, _ := setupIncomeHandler()
	addSalary(plannedRepo, 1, "1000")

	body := `{"source": "Acme", "category": "salary", "currency": "USD", "variableBand": {"min": "900", "max": "1300"},
		"confidence": "medium", "recurrence": {"type": "monthly", "dayRule": "last_business_day"}}`
	c, rec := newJSONContext(e, http.MethodPut, "/api/v1/incomes/planned/1", body)
	c.SetParamNames("id")
	c.SetParamValues("1")
	setupWorkspaceContext(c, 1)

	require.NoError(t, h.UpdatePlanned(c))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var response PlannedIncomeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, int32(1), response.ID)
	assert.Nil(t, response.Amount)
	require.NotNil(t, response.VariableBand)
	assert.Equal(t, "1300.00", response.VariableBand.Max)
	assert.Equal(t, domain.ConfidenceMedium, response.Confidence)
	assert.True(t, response.IsActive)
}

func TestUpdatePlannedIncome_Errors(t *testing.T) {
	tests := []struct {
		name   string
		id     string
		body   string
		status int
	}{
		{"unknown plan", "9", `{"source": "Acme", "category": "salary", "currency": "USD", "amount": "1", "confidence": "high"}`, http.StatusNotFound},
		{"amount and band", "1", `{"source": "Acme", "category": "salary", "currency": "USD", "amount": "1",
			"variableBand": {"min": "1", "max": "2"}, "confidence": "high"}`, http.StatusBadRequest},
		{"bad amount", "1", `{"source": "Acme", "category": "salary", "currency": "USD", "amount": "x", "confidence": "high"}`, http.StatusBadRequest},
		{"bad id", "abc", `{}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			h, plannedRepo, _ := setupIncomeHandler()
			addSalary(plannedRepo, 1, "1000")

			c, rec := newJSONContext(e, http.MethodPut, "/api/v1/incomes/planned/"+tt.id, tt.body)
			c.SetParamNames("id")
			c.SetParamValues(tt.id)
			setupWorkspaceContext(c, 1)

			require.NoError(t, h.UpdatePlanned(c))
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}
