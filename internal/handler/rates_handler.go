package handler

import (
	"net/http"

	"github.com/dafibh/fortuna/fortuna-planner/internal/domain"
	"github.com/labstack/echo/v4"
)

// RateSnapshotter exposes the current rate table
type RateSnapshotter interface {
	Snapshot() domain.RateTable
}

// RatesHandler serves the conversion table
type RatesHandler struct {
	rates RateSnapshotter
}

// NewRatesHandler creates a new RatesHandler
func NewRatesHandler(rates RateSnapshotter) *RatesHandler {
	return &RatesHandler{rates: rates}
}

// GetRates handles GET /api/v1/rates
func (h *RatesHandler) GetRates(c echo.Context) error {
	return c.JSON(http.StatusOK, toRatesResponse(h.rates.Snapshot()))
}
