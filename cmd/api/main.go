package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dafibh/fortuna/fortuna-planner/internal/config"
	"github.com/dafibh/fortuna/fortuna-planner/internal/domain"
	"github.com/dafibh/fortuna/fortuna-planner/internal/engine"
	"github.com/dafibh/fortuna/fortuna-planner/internal/handler"
	"github.com/dafibh/fortuna/fortuna-planner/internal/middleware"
	"github.com/dafibh/fortuna/fortuna-planner/internal/repository/postgres"
	"github.com/dafibh/fortuna/fortuna-planner/internal/repository/storage"
	"github.com/dafibh/fortuna/fortuna-planner/internal/service"
	"github.com/dafibh/fortuna/fortuna-planner/internal/websocket"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	// Connect to database
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()
	log.Info().Msg("Connected to database")

	// Initialize repositories
	plannedIncomeRepo := postgres.NewPlannedIncomeRepository(pool)
	observedIncomeRepo := postgres.NewObservedIncomeRepository(pool)
	plannedExpenseRepo := postgres.NewPlannedExpenseRepository(pool)
	observedExpenseRepo := postgres.NewObservedExpenseRepository(pool)
	cardRepo := postgres.NewCardRepository(pool)
	paymentRepo := postgres.NewInstallmentPaymentRepository(pool)
	goalRepo := postgres.NewSavingGoalRepository(pool)
	accountRepo := postgres.NewAccountRepository(pool)

	// Rates start from the environment; file and S3 sources override them on refresh
	rates := service.NewRateHolder(domain.RateTable{
		Reporting: cfg.ReportingCurrency,
		Rates:     cfg.Rates,
		Source:    "env",
		UpdatedAt: time.Now().UTC(),
	})
	sources := []domain.RateSource{service.NewStaticRateSource("env", cfg.Rates)}
	if cfg.RatesFile != "" {
		sources = append(sources, storage.NewFileRateSource(cfg.RatesFile))
	}
	if cfg.S3.Enabled() {
		s3Source, err := storage.NewS3RateSource(ctx, cfg.S3)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize S3 rate source")
		}
		sources = append(sources, s3Source)
	}

	// WebSocket hub for real-time updates
	hub := websocket.NewHub()

	// Initialize services
	planning := service.PlanningOptions{
		KPI: engine.KPIOptions{CalendarPreviousMonth: cfg.KPICalendarPrevious},
	}
	incomeService := service.NewIncomeService(plannedIncomeRepo, observedIncomeRepo, rates, planning)
	incomeService.SetEventPublisher(hub)
	expenseService := service.NewExpenseService(plannedExpenseRepo, observedExpenseRepo, cardRepo, rates, planning)
	expenseService.SetEventPublisher(hub)
	// Coverage checks run against each workspace's spendable accounts
	installmentService := service.NewInstallmentService(plannedExpenseRepo, cardRepo, paymentRepo, accountRepo, rates, engine.InstallmentOptions{
		DefaultPaymentDay: cfg.DefaultPaymentDay,
	})
	installmentService.SetEventPublisher(hub)
	cardService := service.NewCardService(cardRepo, plannedExpenseRepo)
	cardService.SetEventPublisher(hub)
	accountService := service.NewAccountService(accountRepo)
	accountService.SetEventPublisher(hub)
	savingsService := service.NewSavingsService(goalRepo, rates, engine.DefaultAllocationOptions())
	savingsService.SetEventPublisher(hub)

	// Rate refresh worker
	rateWorker := service.NewRateRefreshWorker(rates, sources, log.Logger, service.RateRefreshWorkerConfig{
		Interval: cfg.RatesRefreshInterval,
	})
	rateWorker.SetEventPublisher(hub)
	rateWorker.Start(ctx)

	rateLimiter := middleware.NewRateLimiterWithConfig(cfg.RateLimitPerMinute, cfg.RateLimitBurst)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Request ID middleware
	e.Use(echomiddleware.RequestID())

	// CORS middleware
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, middleware.WorkspaceHeader},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Security headers middleware (helmet-like)
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}))

	// Request logging middleware with zerolog
	e.Use(zerologMiddleware())

	// Recovery middleware
	e.Use(echomiddleware.Recover())

	// Register API routes
	handler.RegisterRoutes(e, handler.Handlers{
		Income:      handler.NewIncomeHandler(incomeService),
		Expense:     handler.NewExpenseHandler(expenseService),
		Installment: handler.NewInstallmentHandler(installmentService),
		Card:        handler.NewCardHandler(cardService),
		Account:     handler.NewAccountHandler(accountService),
		Savings:     handler.NewSavingsHandler(savingsService),
		Rates:       handler.NewRatesHandler(rates),
		WebSocket:   handler.NewWebSocketHandler(hub, cfg.CORSOrigins),
	}, rateLimiter)

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Str("reporting_currency", cfg.ReportingCurrency).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	rateWorker.Stop()
	rateLimiter.Stop()
	hub.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// zerologMiddleware returns a middleware that logs requests using zerolog
func zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			log.Info().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Msg("request")

			return nil
		}
	}
}
