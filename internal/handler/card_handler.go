package handler

import (
	"net/http"

	"github.com/dafibh/fortuna/fortuna-planner/internal/domain"
	"github.com/dafibh/fortuna/fortuna-planner/internal/middleware"
	"github.com/dafibh/fortuna/fortuna-planner/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// CardHandler handles card requests
type CardHandler struct {
	cardService *service.CardService
}

// NewCardHandler creates a new CardHandler
func NewCardHandler(cardService *service.CardService) *CardHandler {
	return &CardHandler{cardService: cardService}
}

// CreateCardRequest represents the create card request body
type CreateCardRequest struct {
	Name       string   `json:"name"`
	Type       string   `json:"type"`
	Currencies []string `json:"currencies"`
	CutoffDay  *int     `json:"cutoffDay,omitempty"`
	PaymentDay *int     `json:"paymentDay,omitempty"`
}

func (req CreateCardRequest) toInput() service.CreateCardInput {
	return service.CreateCardInput{
		Name:       req.Name,
		Type:       domain.CardType(req.Type),
		Currencies: req.Currencies,
		CutoffDay:  req.CutoffDay,
		PaymentDay: req.PaymentDay,
	}
}

// CreateCard handles POST /api/v1/cards
func (h *CardHandler) CreateCard(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	var req CreateCardRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	card, err := h.cardService.CreateCard(workspaceID, req.toInput())
	if err != nil {
		return respondError(c, err, workspaceID, "create card")
	}

	log.Info().Int32("workspace_id", workspaceID).Int32("card_id", card.ID).Str("name", card.Name).Msg("Card created")

	return c.JSON(http.StatusCreated, toCardResponse(card))
}

// ListCards handles GET /api/v1/cards
func (h *CardHandler) ListCards(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	cards, err := h.cardService.ListCards(workspaceID)
	if err != nil {
		return respondError(c, err, workspaceID, "list cards")
	}

	response := make([]CardResponse, len(cards))
	for i, card := range cards {
		response[i] = toCardResponse(card)
	}
	return c.JSON(http.StatusOK, response)
}

// UpdateCard handles PUT /api/v1/cards/:id
func (h *CardHandler) UpdateCard(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err, workspaceID, "update card")
	}

	var req CreateCardRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	card, err := h.cardService.UpdateCard(workspaceID, id, req.toInput())
	if err != nil {
		return respondError(c, err, workspaceID, "update card")
	}

	log.Info().Int32("workspace_id", workspaceID).Int32("card_id", card.ID).Str("name", card.Name).Msg("Card updated")

	return c.JSON(http.StatusOK, toCardResponse(card))
}

// DeleteCard handles DELETE /api/v1/cards/:id
func (h *CardHandler) DeleteCard(c echo.Context) error {
	workspaceID := middleware.GetWorkspaceID(c)
	if workspaceID == 0 {
		return NewUnauthorizedError(c, "Workspace required")
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return respondError(c, err, workspaceID, "delete card")
	}

	if err := h.cardService.DeleteCard(workspaceID, id); err != nil {
		return respondError(c, err, workspaceID, "delete card")
	}

	log.Info().Int32("workspace_id", workspaceID).Int32("card_id", id).Msg("Card deleted")

	return c.NoContent(http.StatusNoContent)
}
