package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dafibh/fortuna/fortuna-planner/internal/domain"
	"github.com/dafibh/fortuna/fortuna-planner/internal/websocket"
	"github.com/rs/zerolog"
)

// RateRefreshWorker periodically reloads the rate table from its sources
type RateRefreshWorker struct {
	sources   []domain.RateSource
	holder    *RateHolder
	publisher websocket.EventPublisher
	logger    zerolog.Logger
	interval  time.Duration
	now       func() time.Time
	stopCh    chan struct{}
	doneCh    chan struct{}
	mu        sync.Mutex
	running   bool
}

// RateRefreshWorkerConfig holds configuration for the rate refresh worker
type RateRefreshWorkerConfig struct {
	Interval time.Duration
}

// DefaultRateRefreshWorkerConfig returns sensible defaults
func DefaultRateRefreshWorkerConfig() RateRefreshWorkerConfig {
	return RateRefreshWorkerConfig{
		Interval: 15 * time.Minute,
	}
}

// NewRateRefreshWorker creates a worker. Sources are applied in order, so
// later sources override earlier ones for the same currency.
func NewRateRefreshWorker(
	holder *RateHolder,
	sources []domain.RateSource,
	logger zerolog.Logger,
	config RateRefreshWorkerConfig,
) *RateRefreshWorker {
	if config.Interval <= 0 {
		config.Interval = DefaultRateRefreshWorkerConfig().Interval
	}

	return &RateRefreshWorker{
		sources:  sources,
		holder:   holder,
		logger:   logger.With().Str("component", "rate_refresh_worker").Logger(),
		interval: config.Interval,
		now:      time.Now,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// SetEventPublisher sets the event publisher for rate change notifications
func (w *RateRefreshWorker) SetEventPublisher(publisher websocket.EventPublisher) {
	w.publisher = publisher
}

// Start begins the background refresh
func (w *RateRefreshWorker) Start(ctx context.Context) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	w.logger.Info().
		Dur("interval", w.interval).
		Int("sources", len(w.sources)).
		Msg("Starting rate refresh worker")

	go w.run(ctx)
}

// Stop gracefully stops the worker
func (w *RateRefreshWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.mu.Unlock()

	w.logger.Info().Msg("Stopping rate refresh worker")
	close(w.stopCh)
	<-w.doneCh
	w.logger.Info().Msg("Rate refresh worker stopped")
}

func (w *RateRefreshWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	w.refreshLogged(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.setStopped()
			return
		case <-w.stopCh:
			w.setStopped()
			return
		case <-ticker.C:
			w.refreshLogged(ctx)
		}
	}
}

func (w *RateRefreshWorker) setStopped() {
	w.mu.Lock()
	w.running = false
	w.mu.Unlock()
}

func (w *RateRefreshWorker) refreshLogged(ctx context.Context) {
	if _, err := w.Refresh(ctx); err != nil {
		w.logger.Error().Err(err).Msg("Rate refresh failed")
	}
}

// Refresh loads every source once and applies what loaded. A failing source
// keeps its previous rates. It returns whether the table changed; the error
// is non-nil only when every source failed.
func (w *RateRefreshWorker) Refresh(ctx context.Context) (bool, error) {
	if len(w.sources) == 0 {
		return false, nil
	}

	changed := false
	var loaded []string
	var failures []string
	for _, src := range w.sources {
		rates, err := src.Load(ctx)
		if err != nil {
			w.logger.Warn().Err(err).Str("source", src.Name()).Msg("Rate source failed")
			failures = append(failures, src.Name())
			continue
		}
		if w.holder.Apply(rates, src.Name(), w.now().UTC()) {
			changed = true
		}
		loaded = append(loaded, src.Name())
	}

	if len(loaded) == 0 {
		return false, fmt.Errorf("%w: %s", domain.ErrRateSourceUnavailable, strings.Join(failures, ", "))
	}

	w.logger.Debug().
		Strs("loaded", loaded).
		Strs("failed", failures).
		Bool("changed", changed).
		Msg("Rates refreshed")

	if changed && w.publisher != nil {
		w.publisher.PublishAll(websocket.RatesUpdated(w.holder.Snapshot()))
	}
	return changed, nil
}

// IsRunning returns whether the worker is currently running
func (w *RateRefreshWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}
