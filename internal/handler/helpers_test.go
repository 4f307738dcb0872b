package handler

import (
	"context"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/dafibh/fortuna/fortuna-planner/internal/domain"
	"github.com/dafibh/fortuna/fortuna-planner/internal/middleware"
	"github.com/dafibh/fortuna/fortuna-planner/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

var testNow = time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

func testClock() time.Time { return testNow }

func testRates() *service.RateHolder {
	return service.NewRateHolder(domain.RateTable{
		Reporting: "ARS",
		Rates: map[string]decimal.Decimal{
			"USD":  decimal.NewFromInt(1000),
			"USDT": decimal.NewFromInt(1000),
		},
	})
}

// setupWorkspaceContext puts a workspace ID where RequireWorkspace would
func setupWorkspaceContext(c echo.Context, workspaceID int32) {
	ctx := context.WithValue(c.Request().Context(), middleware.WorkspaceIDKey, workspaceID)
	c.SetRequest(c.Request().WithContext(ctx))
}

// newJSONContext builds a context for a request with an optional JSON body
func newJSONContext(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}
