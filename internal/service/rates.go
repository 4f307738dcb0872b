package service

import (
	"context"
	"sync"
	"time"

	"github.com/dafibh/fortuna/fortuna-planner/internal/domain"
	"github.com/dafibh/fortuna/fortuna-planner/internal/engine"
	"github.com/shopspring/decimal"
)

// RateProvider hands out the normalizer services convert with
type RateProvider interface {
	Normalizer() engine.Normalizer
}

// RateHolder keeps the current rate table. Reads vastly outnumber the
// periodic writes from the refresh worker.
type RateHolder struct {
	mu    sync.RWMutex
	table domain.RateTable
}

// NewRateHolder creates a holder seeded with the configured table
func NewRateHolder(table domain.RateTable) *RateHolder {
	if table.Rates == nil {
		table.Rates = map[string]decimal.Decimal{}
	}
	return &RateHolder{table: table.Merge(nil)}
}

// Normalizer builds a normalizer over the current table
func (h *RateHolder) Normalizer() engine.Normalizer {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return engine.NewNormalizer(h.table.Reporting, h.table.Rates)
}

// Snapshot returns a copy of the current table
func (h *RateHolder) Snapshot() domain.RateTable {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.table.Clone()
}

// Apply merges rates over the current table and reports whether anything changed
func (h *RateHolder) Apply(rates map[string]decimal.Decimal, source string, at time.Time) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	next := h.table.Merge(rates)
	changed := len(next.Rates) != len(h.table.Rates)
	if !changed {
		for code, rate := range next.Rates {
			if prev, ok := h.table.Rates[code]; !ok || !prev.Equal(rate) {
				changed = true
				break
			}
		}
	}
	next.Source = source
	next.UpdatedAt = at
	h.table = next
	return changed
}

// StaticRateSource serves a fixed set of rates, typically parsed from the environment
type StaticRateSource struct {
	name  string
	rates map[string]decimal.Decimal
}

func NewStaticRateSource(name string, rates map[string]decimal.Decimal) *StaticRateSource {
	return &StaticRateSource{name: name, rates: rates}
}

func (s *StaticRateSource) Name() string {
	return s.name
}

func (s *StaticRateSource) Load(context.Context) (map[string]decimal.Decimal, error) {
	return s.rates, nil
}
