package handler

import (
	"github.com/dafibh/fortuna/fortuna-planner/internal/middleware"
	"github.com/labstack/echo/v4"
)

// Handlers groups the HTTP handlers the router mounts
type Handlers struct {
	Income      *IncomeHandler
	Expense     *ExpenseHandler
	Installment *InstallmentHandler
	Card        *CardHandler
	Account     *AccountHandler
	Savings     *SavingsHandler
	Rates       *RatesHandler
	WebSocket   *WebSocketHandler
}

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, h Handlers, rateLimiter *middleware.RateLimiter) {
	e.GET("/health", Health)

	// API version 1
	api := e.Group("/api/v1")

	// The push channel identifies its workspace in the query string
	if h.WebSocket != nil {
		api.GET("/ws", h.WebSocket.HandleWS)
	}

	workspace := api.Group("", middleware.RequireWorkspace())
	if rateLimiter != nil {
		workspace.Use(middleware.RateLimitMiddleware(rateLimiter))
	}

	// Income routes
	incomes := workspace.Group("/incomes")
	incomes.GET("/planned", h.Income.ListPlanned)
	incomes.POST("/planned", h.Income.CreatePlanned)
	incomes.PUT("/planned/:id", h.Income.UpdatePlanned)
	incomes.DELETE("/planned/:id", h.Income.DeletePlanned)
	incomes.POST("/observed", h.Income.RecordObserved)
	incomes.GET("/expanded", h.Income.Expanded)
	incomes.GET("/monthly", h.Income.Monthly)
	incomes.GET("/kpis", h.Income.KPIs)
	incomes.GET("/forecast", h.Income.Forecast)
	incomes.GET("/comparison", h.Income.Comparison)

	// Expense routes
	expenses := workspace.Group("/expenses")
	expenses.GET("/planned", h.Expense.ListPlanned)
	expenses.POST("/planned", h.Expense.CreatePlanned)
	expenses.PUT("/planned/:id", h.Expense.UpdatePlanned)
	expenses.DELETE("/planned/:id", h.Expense.DeletePlanned)
	expenses.POST("/observed", h.Expense.RecordObserved)
	expenses.GET("/expanded", h.Expense.Expanded)
	expenses.GET("/monthly", h.Expense.Monthly)
	expenses.GET("/kpis", h.Expense.KPIs)
	expenses.GET("/forecast", h.Expense.Forecast)
	expenses.GET("/comparison", h.Expense.Comparison)
	expenses.GET("/:id/installments", h.Installment.GetSchedule)
	expenses.POST("/:id/installments/:number/paid", h.Installment.MarkPaid)

	// Card routes
	cards := workspace.Group("/cards")
	cards.GET("", h.Card.ListCards)
	cards.POST("", h.Card.CreateCard)
	cards.PUT("/:id", h.Card.UpdateCard)
	cards.DELETE("/:id", h.Card.DeleteCard)
	cards.GET("/:id/cycle", h.Installment.CardCycle)
	cards.POST("/:id/installments/preview", h.Installment.PreviewInstallments)

	// Account routes
	accounts := workspace.Group("/accounts")
	accounts.GET("", h.Account.GetAccounts)
	accounts.POST("", h.Account.CreateAccount)
	accounts.GET("/:id", h.Account.GetAccount)
	accounts.PUT("/:id", h.Account.UpdateAccount)
	accounts.DELETE("/:id", h.Account.DeleteAccount)

	// Savings routes
	savings := workspace.Group("/savings")
	savings.GET("/goals", h.Savings.ListGoals)
	savings.POST("/goals", h.Savings.CreateGoal)
	savings.PUT("/goals/:id", h.Savings.UpdateGoal)
	savings.DELETE("/goals/:id", h.Savings.DeleteGoal)
	savings.GET("/goals/:id/contributions", h.Savings.ListContributions)
	savings.POST("/goals/:id/contributions", h.Savings.Contribute)
	savings.POST("/allocate", h.Savings.Allocate)
	savings.POST("/allocate/apply", h.Savings.ApplyAllocation)

	// Rates
	workspace.GET("/rates", h.Rates.GetRates)
}
