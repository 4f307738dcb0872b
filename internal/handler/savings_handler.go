package handler

import (
	"net/http"

	"github.com/dafibh/fortuna/fortuna-planner/internal/domain"
	"github.com/dafibh/fortuna/fortuna-planner/internal/middleware"
	"github.com/dafibh/fortuna/fortuna-planner/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// SavingsHandler handles saving goal and surplus allocation requests
type SavingsHandler struct {
	savingsService *service.SavingsService
}

// NewSavingsHandler creates a new SavingsHandler
func NewSavingsHandler(savingsService *service.SavingsService) *SavingsHandler {
	return &SavingsHandler{savingsService: savingsService}
}

// CreateGoalRequest represents the create saving goal request body
type CreateGoalRequest struct {
	Name          string  `json:"name"`
	BaseCurrency  string  `json:"baseCurrency"`
	TargetAmount  string  `json:"targetAmount"`
	CurrentAmount *string `json:"currentAmount,omitempty"`
	Priority      string  `json:"priority"`
	DueDate       *string `json:"dueDate,omitempty"`
	Category      string  `json:"category"`
}

// UpdateGoalRequest represents the update saving goal request body.
// The current amount only changes through contributions.
type UpdateGoalRequest struct {
	Name         string  `json:"name"`
	BaseCurrency string  `json:"baseCurrency"`
	TargetAmount string  `json:"targetAmount"`
	Priority     string  `json:"priority"`
	DueDate      *string `json:"dueDate,omitempty"`
	Category     string  `json:"category"`
}

// ContributeRequest represents the goal contribution request body
type ContributeRequest struct {
	Amount string  `json:"amount"`
	Date   *string `json:"date,omitempty"`
	Note   *string `json:"note,omitempty"`
}

// AllocateRequest represents the surplus allocation request body
type AllocateRequest struct {
	Surplus              string  `json:"surplus"`
	RoundToMultiple      *string `json:"roundToMultiple,omitempty"`
	MaxAllocationPerGoal *string `json:"maxAllocationPerGoal,omitempty"`
}

// CreateGoal handles POST /api/v1/savings/goals
func (h *SavingsHandler) CreateGoal(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	var req CreateGoalRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	target, err := parseDecimal("targetAmount", req.TargetAmount)
	if err != nil {
		return respondError(c, err, workspaceID, "create saving goal")
	}
	current := decimal.Zero
	if parsed, err := parseOptionalDecimal("currentAmount", req.CurrentAmount); err != nil {
		return respondError(c, err, workspaceID, "create saving goal")
	} else if parsed != nil {
		current = *parsed
	}
	due, err := parseOptionalDate("dueDate", req.DueDate)
	if err != nil {
		return respondError(c, err, workspaceID, "create saving goal")
	}

	goal, err := h.savingsService.CreateGoal(workspaceID, service.CreateGoalInput{
		Name:          req.Name,
		BaseCurrency:  req.BaseCurrency,
		TargetAmount:  target,
		CurrentAmount: current,
		Priority:      domain.Priority(req.Priority),
		DueDate:       due,
		Category:      req.Category,
	})
	if err != nil {
		return respondError(c, err, workspaceID, "create saving goal")
	}

	log.Info().Int32("workspace_id", workspaceID).Int32("goal_id", goal.ID).Str("name", goal.Name).Msg("Saving goal created")

	return c.JSON(http.StatusCreated, toSavingGoalResponse(goal))
}

// UpdateGoal handles PUT /api/v1/savings/goals/:id
func (h *SavingsHandler) UpdateGoal(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err, workspaceID, "update saving goal")
	}

	var req UpdateGoalRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	target, err := parseDecimal("targetAmount", req.TargetAmount)
	if err != nil {
		return respondError(c, err, workspaceID, "update saving goal")
	}
	due, err := parseOptionalDate("dueDate", req.DueDate)
	if err != nil {
		return respondError(c, err, workspaceID, "update saving goal")
	}

	goal, err := h.savingsService.UpdateGoal(workspaceID, id, service.UpdateGoalInput{
		Name:         req.Name,
		BaseCurrency: req.BaseCurrency,
		TargetAmount: target,
		Priority:     domain.Priority(req.Priority),
		DueDate:      due,
		Category:     req.Category,
	})
	if err != nil {
		return respondError(c, err, workspaceID, "update saving goal")
	}

	log.Info().Int32("workspace_id", workspaceID).Int32("goal_id", goal.ID).Msg("Saving goal updated")

	return c.JSON(http.StatusOK, toSavingGoalResponse(goal))
}

// DeleteGoal handles DELETE /api/v1/savings/goals/:id
func (h *SavingsHandler) DeleteGoal(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err, workspaceID, "delete saving goal")
	}

	if err := h.savingsService.DeleteGoal(workspaceID, id); err != nil {
		return respondError(c, err, workspaceID, "delete saving goal")
	}

	log.Info().Int32("workspace_id", workspaceID).Int32("goal_id", id).Msg("Saving goal deleted")

	return c.NoContent(http.StatusNoContent)
}

// ListGoals handles GET /api/v1/savings/goals
func (h *SavingsHandler) ListGoals(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	goals, err := h.savingsService.ListGoals(workspaceID)
	if err != nil {
		return respondError(c, err, workspaceID, "list saving goals")
	}

	response := make([]SavingGoalResponse, len(goals))
	for i, g := range goals {
		response[i] = toSavingGoalResponse(g)
	}
	return c.JSON(http.StatusOK, response)
}

// Contribute handles POST /api/v1/savings/goals/:id/contributions
func (h *SavingsHandler) Contribute(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	goalID, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err, workspaceID, "add contribution")
	}

	var req ContributeRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := parseDecimal("amount", req.Amount)
	if err != nil {
		return respondError(c, err, workspaceID, "add contribution")
	}
	date, err := parseOptionalDate("date", req.Date)
	if err != nil {
		return respondError(c, err, workspaceID, "add contribution")
	}

	goal, err := h.savingsService.Contribute(workspaceID, goalID, service.ContributeInput{
		Amount: amount,
		Date:   date,
		Note:   req.Note,
	})
	if err != nil {
		return respondError(c, err, workspaceID, "add contribution")
	}

	log.Info().Int32("workspace_id", workspaceID).Int32("goal_id", goalID).Str("amount", amount.String()).Msg("Contribution added")

	return c.JSON(http.StatusCreated, toSavingGoalResponse(goal))
}

// ListContributions handles GET /api/v1/savings/goals/:id/contributions
func (h *SavingsHandler) ListContributions(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	goalID, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err, workspaceID, "list contributions")
	}

	contributions, err := h.savingsService.ListContributions(workspaceID, goalID)
	if err != nil {
		return respondError(c, err, workspaceID, "list contributions")
	}

	response := make([]ContributionResponse, len(contributions))
	for i, contribution := range contributions {
		response[i] = toContributionResponse(contribution)
	}
	return c.JSON(http.StatusOK, response)
}

// Allocate handles POST /api/v1/savings/allocate
func (h *SavingsHandler) Allocate(c echo.Context) error {
	return h.allocate(c, false)
}

// ApplyAllocation handles POST /api/v1/savings/allocate/apply
func (h *SavingsHandler) ApplyAllocation(c echo.Context) error {
	return h.allocate(c, true)
}

func (h *SavingsHandler) allocate(c echo.Context, apply bool) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	var req AllocateRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	surplus, err := parseDecimal("surplus", req.Surplus)
	if err != nil {
		return respondError(c, err, workspaceID, "allocate surplus")
	}
	roundTo, err := parseOptionalDecimal("roundToMultiple", req.RoundToMultiple)
	if err != nil {
		return respondError(c, err, workspaceID, "allocate surplus")
	}
	maxPerGoal, err := parseOptionalDecimal("maxAllocationPerGoal", req.MaxAllocationPerGoal)
	if err != nil {
		return respondError(c, err, workspaceID, "allocate surplus")
	}

	input := service.AllocateInput{Surplus: surplus, RoundToMultiple: roundTo, MaxAllocationPerGoal: maxPerGoal}

	var suggestion *domain.AllocationSuggestion
	if apply {
		suggestion, err = h.savingsService.ApplyAllocation(workspaceID, input)
	} else {
		suggestion, err = h.savingsService.Allocate(workspaceID, input)
	}
	if err != nil {
		return respondError(c, err, workspaceID, "allocate surplus")
	}

	if apply {
		log.Info().Int32("workspace_id", workspaceID).Int("allocations", len(suggestion.Allocations)).Msg("Surplus allocation applied")
	}

	return c.JSON(http.StatusOK, toAllocationResponse(suggestion))
}
