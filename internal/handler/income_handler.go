package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/dafibh/fortuna/fortuna-planner/internal/domain"
	"github.com/dafibh/fortuna/fortuna-planner/internal/engine"
	"github.com/dafibh/fortuna/fortuna-planner/internal/middleware"
	"github.com/dafibh/fortuna/fortuna-planner/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// IncomeHandler handles planned and observed income requests
type IncomeHandler struct {
	incomeService *service.IncomeService
	now           func() time.Time
}

// NewIncomeHandler creates a new IncomeHandler
func NewIncomeHandler(incomeService *service.IncomeService) *IncomeHandler {
	return &IncomeHandler{incomeService: incomeService, now: time.Now}
}

// CreatePlannedIncomeRequest represents the create planned income request body
type CreatePlannedIncomeRequest struct {
	Source       string             `json:"source"`
	Category     string             `json:"category"`
	Currency     string             `json:"currency"`
	Amount       *string            `json:"amount,omitempty"`
	VariableBand *BandRequest       `json:"variableBand,omitempty"`
	Confidence   string             `json:"confidence"`
	Recurrence   *RecurrenceRequest `json:"recurrence,omitempty"`
	IsActive     *bool              `json:"isActive,omitempty"`
	Notes        *string            `json:"notes,omitempty"`
}

// RecordObservedIncomeRequest represents the record observed income request body
type RecordObservedIncomeRequest struct {
	Source    string  `json:"source"`
	Category  string  `json:"category"`
	Currency  string  `json:"currency"`
	Amount    string  `json:"amount"`
	Date      *string `json:"date,omitempty"`
	PlannedID *int32  `json:"plannedId,omitempty"`
}

// CreatePlanned handles POST /api/v1/incomes/planned
func (h *IncomeHandler) CreatePlanned(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	var req CreatePlannedIncomeRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input, err := req.toInput()
	if err != nil {
		return respondError(c, err, workspaceID, "create planned income")
	}

	plan, err := h.incomeService.CreatePlanned(workspaceID, input)
	if err != nil {
		return respondError(c, err, workspaceID, "create planned income")
	}

	log.Info().Int32("workspace_id", workspaceID).Int32("planned_income_id", plan.ID).Str("source", plan.Source).Msg("Planned income created")

	return c.JSON(http.StatusCreated, toPlannedIncomeResponse(plan))
}

// UpdatePlanned handles PUT /api/v1/incomes/planned/:id
func (h *IncomeHandler) UpdatePlanned(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err, workspaceID, "update planned income")
	}

	var req CreatePlannedIncomeRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input, err := req.toInput()
	if err != nil {
		return respondError(c, err, workspaceID, "update planned income")
	}

	plan, err := h.incomeService.UpdatePlanned(workspaceID, id, input)
	if err != nil {
		return respondError(c, err, workspaceID, "update planned income")
	}

	log.Info().Int32("workspace_id", workspaceID).Int32("planned_income_id", plan.ID).Msg("Planned income updated")

	return c.JSON(http.StatusOK, toPlannedIncomeResponse(plan))
}

func (req CreatePlannedIncomeRequest) toInput() (service.CreatePlannedIncomeInput, error) {
	amount, err := parseOptionalDecimal("amount", req.Amount)
	if err != nil {
		return service.CreatePlannedIncomeInput{}, err
	}
	band, err := req.VariableBand.parse()
	if err != nil {
		return service.CreatePlannedIncomeInput{}, err
	}

	return service.CreatePlannedIncomeInput{
		Source:       req.Source,
		Category:     req.Category,
		Currency:     req.Currency,
		Amount:       amount,
		VariableBand: band,
		Confidence:   domain.Confidence(req.Confidence),
		Recurrence:   req.Recurrence.toDomain(),
		IsActive:     req.IsActive,
		Notes:        req.Notes,
	}, nil
}

// ListPlanned handles GET /api/v1/incomes/planned
func (h *IncomeHandler) ListPlanned(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	active, err := parseActiveQuery(c)
	if err != nil {
		return respondError(c, err, workspaceID, "list planned incomes")
	}

	plans, err := h.incomeService.ListPlanned(workspaceID, active)
	if err != nil {
		return respondError(c, err, workspaceID, "list planned incomes")
	}

	response := make([]PlannedIncomeResponse, len(plans))
	for i, p := range plans {
		response[i] = toPlannedIncomeResponse(p)
	}
	return c.JSON(http.StatusOK, response)
}

// DeletePlanned handles DELETE /api/v1/incomes/planned/:id
func (h *IncomeHandler) DeletePlanned(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err, workspaceID, "delete planned income")
	}

	if err := h.incomeService.DeletePlanned(workspaceID, id); err != nil {
		return respondError(c, err, workspaceID, "delete planned income")
	}

	log.Info().Int32("workspace_id", workspaceID).Int32("planned_income_id", id).Msg("Planned income deleted")

	return c.NoContent(http.StatusNoContent)
}

// RecordObserved handles POST /api/v1/incomes/observed
func (h *IncomeHandler) RecordObserved(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	var req RecordObservedIncomeRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := parseDecimal("amount", req.Amount)
	if err != nil {
		return respondError(c, err, workspaceID, "record income")
	}
	date, err := parseOptionalDate("date", req.Date)
	if err != nil {
		return respondError(c, err, workspaceID, "record income")
	}

	observed, err := h.incomeService.RecordObserved(workspaceID, service.RecordObservedIncomeInput{
		Source:    req.Source,
		Category:  req.Category,
		Currency:  req.Currency,
		Amount:    amount,
		Date:      date,
		PlannedID: req.PlannedID,
	})
	if err != nil {
		return respondError(c, err, workspaceID, "record income")
	}

	return c.JSON(http.StatusCreated, toObservedIncomeResponse(observed))
}

// Expanded handles GET /api/v1/incomes/expanded?from&to&scenario
func (h *IncomeHandler) Expanded(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	from, to, err := parseWindowQuery(c, h.now())
	if err != nil {
		return respondError(c, err, workspaceID, "expand planned incomes")
	}
	scenario, err := parseScenarioQuery(c)
	if err != nil {
		return respondError(c, err, workspaceID, "expand planned incomes")
	}

	records, err := h.incomeService.Expanded(workspaceID, from, to, scenario)
	if err != nil {
		return respondError(c, err, workspaceID, "expand planned incomes")
	}
	return c.JSON(http.StatusOK, toExpandedResponses(records))
}

// Monthly handles GET /api/v1/incomes/monthly?from&to
func (h *IncomeHandler) Monthly(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	from, to, err := parseWindowQuery(c, h.now())
	if err != nil {
		return respondError(c, err, workspaceID, "aggregate incomes")
	}

	aggregates, err := h.incomeService.Monthly(workspaceID, from, to)
	if err != nil {
		return respondError(c, err, workspaceID, "aggregate incomes")
	}
	return c.JSON(http.StatusOK, toMonthlyResponses(aggregates))
}

// KPIs handles GET /api/v1/incomes/kpis
func (h *IncomeHandler) KPIs(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	kpis, err := h.incomeService.KPIs(workspaceID)
	if err != nil {
		return respondError(c, err, workspaceID, "compute income KPIs")
	}
	return c.JSON(http.StatusOK, toKPIResponse(kpis))
}

// Forecast handles GET /api/v1/incomes/forecast?months=N
func (h *IncomeHandler) Forecast(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	months, err := parseMonthsQuery(c)
	if err != nil {
		return respondError(c, err, workspaceID, "forecast incomes")
	}

	forecast, err := h.incomeService.Forecast(workspaceID, months)
	if err != nil {
		return respondError(c, err, workspaceID, "forecast incomes")
	}
	return c.JSON(http.StatusOK, toForecastResponses(forecast))
}

// Comparison handles GET /api/v1/incomes/comparison?month=YYYY-MM
func (h *IncomeHandler) Comparison(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	report, err := h.incomeService.Comparison(workspaceID, monthQuery(c, h.now()))
	if err != nil {
		return respondError(c, err, workspaceID, "compare incomes")
	}
	return c.JSON(http.StatusOK, toComparisonResponse(report))
}

func parseScenarioQuery(c echo.Context) (domain.Scenario, error) {
	scenario := domain.Scenario(c.QueryParam("scenario"))
	switch scenario {
	case "", domain.ScenarioConservative, domain.ScenarioBase, domain.ScenarioOptimistic:
		return scenario, nil
	}
	return "", &fieldError{field: "scenario", message: "Must be conservative, base or optimistic"}
}

func parseMonthsQuery(c echo.Context) (int, error) {
	raw := c.QueryParam("months")
	if raw == "" {
		return engine.DefaultForecastHorizon, nil
	}
	months, err := strconv.Atoi(raw)
	if err != nil || months < 1 || months > engine.MaxForecastHorizon {
		return 0, &fieldError{field: "months", message: fmt.Sprintf("Must be between 1 and %d", engine.MaxForecastHorizon)}
	}
	return months, nil
}

// monthQuery returns ?month or the current month
func monthQuery(c echo.Context, now time.Time) string {
	if month := c.QueryParam("month"); month != "" {
		return month
	}
	return now.Format("2006-01")
}
