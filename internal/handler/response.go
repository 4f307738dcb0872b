package handler

import (
	"errors"
	"net/http"

	"github.com/dafibh/fortuna/fortuna-planner/internal/domain"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ProblemDetails represents an RFC 7807 Problem Details response
type ProblemDetails struct {
	Type     string            `json:"type"`
	Title    string            `json:"title"`
	Status   int               `json:"status"`
	Detail   string            `json:"detail,omitempty"`
	Instance string            `json:"instance,omitempty"`
	Errors   []ValidationError `json:"errors,omitempty"`
}

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error types
const (
	ErrorTypeValidation   = "https://fortuna.app/errors/validation"
	ErrorTypeNotFound     = "https://fortuna.app/errors/not-found"
	ErrorTypeUnauthorized = "https://fortuna.app/errors/unauthorized"
	ErrorTypeConflict     = "https://fortuna.app/errors/conflict"
	ErrorTypeInternal     = "https://fortuna.app/errors/internal"
)

// NewValidationError creates a validation error response
func NewValidationError(c echo.Context, detail string, errors []ValidationError) error {
	return c.JSON(http.StatusBadRequest, ProblemDetails{
		Type:     ErrorTypeValidation,
		Title:    "Validation Error",
		Status:   http.StatusBadRequest,
		Detail:   detail,
		Instance: c.Request().URL.Path,
		Errors:   errors,
	})
}

// NewNotFoundError creates a not found error response
func NewNotFoundError(c echo.Context, detail string) error {
	return c.JSON(http.StatusNotFound, ProblemDetails{
		Type:     ErrorTypeNotFound,
		Title:    "Not Found",
		Status:   http.StatusNotFound,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewUnauthorizedError creates an unauthorized error response
func NewUnauthorizedError(c echo.Context, detail string) error {
	return c.JSON(http.StatusUnauthorized, ProblemDetails{
		Type:     ErrorTypeUnauthorized,
		Title:    "Unauthorized",
		Status:   http.StatusUnauthorized,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewConflictError creates a conflict error response
func NewConflictError(c echo.Context, detail string) error {
	return c.JSON(http.StatusConflict, ProblemDetails{
		Type:     ErrorTypeConflict,
		Title:    "Conflict",
		Status:   http.StatusConflict,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewInternalError creates an internal error response
func NewInternalError(c echo.Context, detail string) error {
	return c.JSON(http.StatusInternalServerError, ProblemDetails{
		Type:     ErrorTypeInternal,
		Title:    "Internal Server Error",
		Status:   http.StatusInternalServerError,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// validationFields maps domain validation errors to the request field they concern
var validationFields = []struct {
	err   error
	field string
}{
	{domain.ErrIncomeSourceRequired, "source"},
	{domain.ErrIncomeSourceTooLong, "source"},
	{domain.ErrCurrencyRequired, "currency"},
	{domain.ErrCategoryRequired, "category"},
	{domain.ErrAmountAndBandSet, "amount"},
	{domain.ErrAmountOrBandRequired, "amount"},
	{domain.ErrAmountInvalid, "amount"},
	{domain.ErrBandInvalid, "variableBand"},
	{domain.ErrConfidenceInvalid, "confidence"},
	{domain.ErrRecurrenceTypeInvalid, "recurrence.type"},
	{domain.ErrDayRuleInvalid, "recurrence.dayRule"},
	{domain.ErrAnchorDayInvalid, "recurrence.anchorDay"},
	{domain.ErrExpenseKindInvalid, "kind"},
	{domain.ErrExpenseCardRequired, "cardId"},
	{domain.ErrExpenseCardForbidden, "cardId"},
	{domain.ErrExpenseCardNotCredit, "cardId"},
	{domain.ErrInstallmentsInvalid, "nInstallments"},
	{domain.ErrInstallmentsForbidden, "nInstallments"},
	{domain.ErrExpenseDateRequired, "date"},
	{domain.ErrNotCreditExpense, "id"},
	{domain.ErrInstallmentNumberInvalid, "number"},
	{domain.ErrCardNameEmpty, "name"},
	{domain.ErrCardNameTooLong, "name"},
	{domain.ErrCardTypeInvalid, "type"},
	{domain.ErrCardDayInvalid, "cutoffDay"},
	{domain.ErrCardCurrencyMissing, "currencies"},
	{domain.ErrCardCurrencyUnsupported, "currency"},
	{domain.ErrAccountNameEmpty, "name"},
	{domain.ErrAccountNameTooLong, "name"},
	{domain.ErrAccountTypeInvalid, "type"},
	{domain.ErrLiquidityTierInvalid, "liquidityTier"},
	{domain.ErrAccountCurrencyMissing, "currencies"},
	{domain.ErrAccountBalanceInvalid, "balances"},
	{domain.ErrSavingGoalNameEmpty, "name"},
	{domain.ErrSavingGoalNameTooLong, "name"},
	{domain.ErrSavingGoalTargetInvalid, "targetAmount"},
	{domain.ErrSavingGoalCurrentInvalid, "currentAmount"},
	{domain.ErrPriorityInvalid, "priority"},
	{domain.ErrContributionInvalid, "amount"},
	{domain.ErrSurplusInvalid, "surplus"},
	{domain.ErrInvalidWindow, "from"},
}

func validationField(err error) string {
	for _, v := range validationFields {
		if errors.Is(err, v.err) {
			return v.field
		}
	}
	return ""
}

// respondError translates a service error into a problem response.
// Unexpected errors are logged with the workspace and reported as 500.
func respondError(c echo.Context, err error, workspaceID int32, action string) error {
	var fe *fieldError
	switch {
	case errors.As(err, &fe):
		return NewValidationError(c, "Validation failed", []ValidationError{{Field: fe.field, Message: fe.message}})
	case domain.IsValidationError(err):
		field := validationField(err)
		if field == "" {
			return NewValidationError(c, err.Error(), nil)
		}
		return NewValidationError(c, "Validation failed", []ValidationError{{Field: field, Message: err.Error()}})
	case domain.IsNotFound(err):
		return NewNotFoundError(c, err.Error())
	case domain.IsConflict(err):
		return NewConflictError(c, err.Error())
	}

	log.Error().Err(err).Int32("workspace_id", workspaceID).Msg("Failed to " + action)
	return NewInternalError(c, "Failed to "+action)
}
