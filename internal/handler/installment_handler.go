package handler

import (
	"net/http"
	"strconv"

	"github.com/dafibh/fortuna/fortuna-planner/internal/middleware"
	"github.com/dafibh/fortuna/fortuna-planner/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// InstallmentHandler handles installment schedule requests
type InstallmentHandler struct {
	installmentService *service.InstallmentService
}

// NewInstallmentHandler creates a new InstallmentHandler
func NewInstallmentHandler(installmentService *service.InstallmentService) *InstallmentHandler {
	return &InstallmentHandler{installmentService: installmentService}
}

// GetSchedule handles GET /api/v1/expenses/:id/installments
func (h *InstallmentHandler) GetSchedule(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	expenseID, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err, workspaceID, "schedule installments")
	}

	schedule, err := h.installmentService.Schedule(c.Request().Context(), workspaceID, expenseID)
	if err != nil {
		return respondError(c, err, workspaceID, "schedule installments")
	}
	return c.JSON(http.StatusOK, toInstallmentResponses(schedule))
}

// MarkPaid handles POST /api/v1/expenses/:id/installments/:number/paid
func (h *InstallmentHandler) MarkPaid(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	expenseID, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err, workspaceID, "mark installment paid")
	}
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil {
		return respondError(c, &fieldError{field: "number", message: "Must be an integer"}, workspaceID, "mark installment paid")
	}

	inst, err := h.installmentService.MarkPaid(c.Request().Context(), workspaceID, expenseID, number)
	if err != nil {
		return respondError(c, err, workspaceID, "mark installment paid")
	}

	log.Info().Int32("workspace_id", workspaceID).Int32("planned_expense_id", expenseID).Int("installment_number", number).Msg("Installment marked paid")

	return c.JSON(http.StatusOK, toInstallmentResponse(*inst))
}

// CardCycle handles GET /api/v1/cards/:id/cycle
func (h *InstallmentHandler) CardCycle(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	cardID, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err, workspaceID, "get card cycle")
	}

	cycle, err := h.installmentService.CardCycle(c.Request().Context(), workspaceID, cardID)
	if err != nil {
		return respondError(c, err, workspaceID, "get card cycle")
	}
	return c.JSON(http.StatusOK, toCardCycleResponse(cycle))
}

// PreviewInstallmentsRequest represents the installment preview request body
type PreviewInstallmentsRequest struct {
	Amount       string `json:"amount"`
	Installments int    `json:"installments"`
	Currency     string `json:"currency"`
}

// PreviewInstallments handles POST /api/v1/cards/:id/installments/preview
func (h *InstallmentHandler) PreviewInstallments(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	cardID, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err, workspaceID, "preview installments")
	}

	var req PreviewInstallmentsRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := parseDecimal("amount", req.Amount)
	if err != nil {
		return respondError(c, err, workspaceID, "preview installments")
	}

	preview, err := h.installmentService.PreviewInstallments(c.Request().Context(), workspaceID, cardID, service.PreviewInput{
		Amount:       amount,
		Currency:     req.Currency,
		Installments: req.Installments,
	})
	if err != nil {
		return respondError(c, err, workspaceID, "preview installments")
	}
	return c.JSON(http.StatusOK, toInstallmentPreviewResponses(preview))
}
