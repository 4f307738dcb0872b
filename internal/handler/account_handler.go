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

// AccountHandler handles account-related HTTP requests
type AccountHandler struct {
	accountService *service.AccountService
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(accountService *service.AccountService) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

// AccountRequest represents the create and update account request body.
// Balances map currency codes to decimal strings.
type AccountRequest struct {
	Name             string            `json:"name"`
	Type             string            `json:"type"`
	Country          string            `json:"country"`
	Currencies       []string          `json:"currencies"`
	Balances         map[string]string `json:"balances,omitempty"`
	LiquidityTier    string            `json:"liquidityTier"`
	AllowAutoSuggest bool              `json:"allowAutoSuggest"`
	Notes            *string           `json:"notes,omitempty"`
}

func (req AccountRequest) toInput() (service.AccountInput, error) {
	balances := make(map[string]decimal.Decimal, len(req.Balances))
	for code, raw := range req.Balances {
		amount, err := parseDecimal("balances", raw)
		if err != nil {
			return service.AccountInput{}, err
		}
		balances[code] = amount
	}
	return service.AccountInput{
		Name:             req.Name,
		Type:             domain.AccountType(req.Type),
		Country:          req.Country,
		Currencies:       req.Currencies,
		Balances:         balances,
		LiquidityTier:    domain.LiquidityTier(req.LiquidityTier),
		AllowAutoSuggest: req.AllowAutoSuggest,
		Notes:            req.Notes,
	}, nil
}

// CreateAccount handles POST /api/v1/accounts
func (h *AccountHandler) CreateAccount(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	var req AccountRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input, err := req.toInput()
	if err != nil {
		return respondError(c, err, workspaceID, "create account")
	}

	account, err := h.accountService.CreateAccount(workspaceID, input)
	if err != nil {
		return respondError(c, err, workspaceID, "create account")
	}

	log.Info().Int32("workspace_id", workspaceID).Int32("account_id", account.ID).Str("name", account.Name).Msg("Account created")

	return c.JSON(http.StatusCreated, toAccountResponse(account))
}

// GetAccounts handles GET /api/v1/accounts
func (h *AccountHandler) GetAccounts(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	includeArchived := c.QueryParam("includeArchived") == "true"

	accounts, err := h.accountService.GetAccounts(workspaceID, includeArchived)
	if err != nil {
		return respondError(c, err, workspaceID, "list accounts")
	}

	response := make([]AccountResponse, len(accounts))
	for i, account := range accounts {
		response[i] = toAccountResponse(account)
	}
	return c.JSON(http.StatusOK, response)
}

// GetAccount handles GET /api/v1/accounts/:id
func (h *AccountHandler) GetAccount(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err, workspaceID, "get account")
	}

	account, err := h.accountService.GetAccountByID(workspaceID, id)
	if err != nil {
		return respondError(c, err, workspaceID, "get account")
	}
	return c.JSON(http.StatusOK, toAccountResponse(account))
}

// UpdateAccount handles PUT /api/v1/accounts/:id
func (h *AccountHandler) UpdateAccount(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err, workspaceID, "update account")
	}

	var req AccountRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input, err := req.toInput()
	if err != nil {
		return respondError(c, err, workspaceID, "update account")
	}

	account, err := h.accountService.UpdateAccount(workspaceID, id, input)
	if err != nil {
		return respondError(c, err, workspaceID, "update account")
	}

	log.Info().Int32("workspace_id", workspaceID).Int32("account_id", account.ID).Str("name", account.Name).Msg("Account updated")
	return c.JSON(http.StatusOK, toAccountResponse(account))
}

// DeleteAccount handles DELETE /api/v1/accounts/:id
func (h *AccountHandler) DeleteAccount(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err, workspaceID, "delete account")
	}

	if err := h.accountService.DeleteAccount(workspaceID, id); err != nil {
		return respondError(c, err, workspaceID, "delete account")
	}

	log.Info().Int32("workspace_id", workspaceID).Int32("account_id", id).Msg("Account deleted (soft)")
	return c.NoContent(http.StatusNoContent)
}
