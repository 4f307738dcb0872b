package handler

import (
	"net/http"
	"time"

	"github.com/dafibh/fortuna/fortuna-planner/internal/domain"
	"github.com/dafibh/fortuna/fortuna-planner/internal/middleware"
	"github.com/dafibh/fortuna/fortuna-planner/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ExpenseHandler handles planned and observed expense requests
type ExpenseHandler struct {
	expenseService *service.ExpenseService
	now            func() time.Time
}

// NewExpenseHandler creates a new ExpenseHandler
func NewExpenseHandler(expenseService *service.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService, now: time.Now}
}

// CreatePlannedExpenseRequest represents the create planned expense request body
type CreatePlannedExpenseRequest struct {
	Kind           string             `json:"kind"`
	CardID         *int32             `json:"cardId,omitempty"`
	Category       string             `json:"category"`
	Concept        string             `json:"concept"`
	Currency       string             `json:"currency"`
	Amount         *string            `json:"amount,omitempty"`
	VariableBand   *BandRequest       `json:"variableBand,omitempty"`
	Confidence     string             `json:"confidence"`
	Recurrence     *RecurrenceRequest `json:"recurrence,omitempty"`
	Date           *string            `json:"date,omitempty"`
	NInstallments  *int               `json:"nInstallments,omitempty"`
	AmountEquivEst *string            `json:"amountEquivEst,omitempty"`
	Notes          *string            `json:"notes,omitempty"`
	IsActive       *bool              `json:"isActive,omitempty"`
}

// RecordObservedExpenseRequest represents the record observed expense request body
type RecordObservedExpenseRequest struct {
	Category  string  `json:"category"`
	Concept   string  `json:"concept"`
	Currency  string  `json:"currency"`
	Amount    string  `json:"amount"`
	Date      *string `json:"date,omitempty"`
	PlannedID *int32  `json:"plannedId,omitempty"`
}

// CreatePlanned handles POST /api/v1/expenses/planned
func (h *ExpenseHandler) CreatePlanned(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	var req CreatePlannedExpenseRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input, err := req.toInput()
	if err != nil {
		return respondError(c, err, workspaceID, "create planned expense")
	}

	plan, err := h.expenseService.CreatePlanned(workspaceID, input)
	if err != nil {
		return respondError(c, err, workspaceID, "create planned expense")
	}

	log.Info().Int32("workspace_id", workspaceID).Int32("planned_expense_id", plan.ID).Str("kind", string(plan.Kind)).Msg("Planned expense created")

	return c.JSON(http.StatusCreated, toPlannedExpenseResponse(plan))
}

func (req CreatePlannedExpenseRequest) toInput() (service.CreatePlannedExpenseInput, error) {
	amount, err := parseOptionalDecimal("amount", req.Amount)
	if err != nil {
		return service.CreatePlannedExpenseInput{}, err
	}
	band, err := req.VariableBand.parse()
	if err != nil {
		return service.CreatePlannedExpenseInput{}, err
	}
	equiv, err := parseOptionalDecimal("amountEquivEst", req.AmountEquivEst)
	if err != nil {
		return service.CreatePlannedExpenseInput{}, err
	}
	date, err := parseOptionalDate("date", req.Date)
	if err != nil {
		return service.CreatePlannedExpenseInput{}, err
	}

	return service.CreatePlannedExpenseInput{
		Kind:           domain.ExpenseKind(req.Kind),
		CardID:         req.CardID,
		Category:       req.Category,
		Currency:       req.Currency,
		Amount:         amount,
		VariableBand:   band,
		Confidence:     domain.Confidence(req.Confidence),
		Recurrence:     req.Recurrence.toDomain(),
		Date:           date,
		NInstallments:  req.NInstallments,
		AmountEquivEst: equiv,
		Concept:        req.Concept,
		Notes:          req.Notes,
		IsActive:       req.IsActive,
	}, nil
}

// UpdatePlanned handles PUT /api/v1/expenses/planned/:id
func (h *ExpenseHandler) UpdatePlanned(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err, workspaceID, "update planned expense")
	}

	var req CreatePlannedExpenseRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input, err := req.toInput()
	if err != nil {
		return respondError(c, err, workspaceID, "update planned expense")
	}

	plan, err := h.expenseService.UpdatePlanned(workspaceID, id, input)
	if err != nil {
		return respondError(c, err, workspaceID, "update planned expense")
	}

	log.Info().Int32("workspace_id", workspaceID).Int32("planned_expense_id", plan.ID).Str("kind", string(plan.Kind)).Msg("Planned expense updated")

	return c.JSON(http.StatusOK, toPlannedExpenseResponse(plan))
}

// ListPlanned handles GET /api/v1/expenses/planned
func (h *ExpenseHandler) ListPlanned(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	active, err := parseActiveQuery(c)
	if err != nil {
		return respondError(c, err, workspaceID, "list planned expenses")
	}

	plans, err := h.expenseService.ListPlanned(workspaceID, active)
	if err != nil {
		return respondError(c, err, workspaceID, "list planned expenses")
	}

	response := make([]PlannedExpenseResponse, len(plans))
	for i, p := range plans {
		response[i] = toPlannedExpenseResponse(p)
	}
	return c.JSON(http.StatusOK, response)
}

// DeletePlanned handles DELETE /api/v1/expenses/planned/:id
func (h *ExpenseHandler) DeletePlanned(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err, workspaceID, "delete planned expense")
	}

	if err := h.expenseService.DeletePlanned(workspaceID, id); err != nil {
		return respondError(c, err, workspaceID, "delete planned expense")
	}

	log.Info().Int32("workspace_id", workspaceID).Int32("planned_expense_id", id).Msg("Planned expense deleted")

	return c.NoContent(http.StatusNoContent)
}

// RecordObserved handles POST /api/v1/expenses/observed
func (h *ExpenseHandler) RecordObserved(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	var req RecordObservedExpenseRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := parseDecimal("amount", req.Amount)
	if err != nil {
		return respondError(c, err, workspaceID, "record expense")
	}
	date, err := parseOptionalDate("date", req.Date)
	if err != nil {
		return respondError(c, err, workspaceID, "record expense")
	}

	observed, err := h.expenseService.RecordObserved(workspaceID, service.RecordObservedExpenseInput{
		Category:  req.Category,
		Concept:   req.Concept,
		Currency:  req.Currency,
		Amount:    amount,
		Date:      date,
		PlannedID: req.PlannedID,
	})
	if err != nil {
		return respondError(c, err, workspaceID, "record expense")
	}

	return c.JSON(http.StatusCreated, toObservedExpenseResponse(observed))
}

// Expanded handles GET /api/v1/expenses/expanded?from&to&scenario
func (h *ExpenseHandler) Expanded(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	from, to, err := parseWindowQuery(c, h.now())
	if err != nil {
		return respondError(c, err, workspaceID, "expand planned expenses")
	}
	scenario, err := parseScenarioQuery(c)
	if err != nil {
		return respondError(c, err, workspaceID, "expand planned expenses")
	}

	records, err := h.expenseService.Expanded(workspaceID, from, to, scenario)
	if err != nil {
		return respondError(c, err, workspaceID, "expand planned expenses")
	}
	return c.JSON(http.StatusOK, toExpandedResponses(records))
}

// Monthly handles GET /api/v1/expenses/monthly?from&to
func (h *ExpenseHandler) Monthly(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	from, to, err := parseWindowQuery(c, h.now())
	if err != nil {
		return respondError(c, err, workspaceID, "aggregate expenses")
	}

	aggregates, err := h.expenseService.Monthly(workspaceID, from, to)
	if err != nil {
		return respondError(c, err, workspaceID, "aggregate expenses")
	}
	return c.JSON(http.StatusOK, toMonthlyResponses(aggregates))
}

// KPIs handles GET /api/v1/expenses/kpis
func (h *ExpenseHandler) KPIs(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	kpis, err := h.expenseService.KPIs(workspaceID)
	if err != nil {
		return respondError(c, err, workspaceID, "compute expense KPIs")
	}
	return c.JSON(http.StatusOK, toExpenseKPIResponse(kpis))
}

// Forecast handles GET /api/v1/expenses/forecast?months=N
func (h *ExpenseHandler) Forecast(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	months, err := parseMonthsQuery(c)
	if err != nil {
		return respondError(c, err, workspaceID, "forecast expenses")
	}

	forecast, err := h.expenseService.Forecast(workspaceID, months)
	if err != nil {
		return respondError(c, err, workspaceID, "forecast expenses")
	}
	return c.JSON(http.StatusOK, toForecastResponses(forecast))
}

// Comparison handles GET /api/v1/expenses/comparison?month=YYYY-MM
func (h *ExpenseHandler) Comparison(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	report, err := h.expenseService.Comparison(workspaceID, monthQuery(c, h.now()))
	if err != nil {
		return respondError(c, err, workspaceID, "compare expenses")
	}
	return c.JSON(http.StatusOK, toComparisonResponse(report))
}
