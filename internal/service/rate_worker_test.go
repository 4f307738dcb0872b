package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dafibh/fortuna/fortuna-planner/internal/domain"
	"github.com/dafibh/fortuna/fortuna-planner/internal/testutil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRateSource struct {
	name  string
	rates map[string]decimal.Decimal
	err   error
	calls atomic.Int32
}

func (f *fakeRateSource) Name() string { return f.name }

func (f *fakeRateSource) Load(context.Context) (map[string]decimal.Decimal, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.rates, nil
}

func newTestHolder() *RateHolder {
	return NewRateHolder(domain.RateTable{
		Reporting: "ARS",
		Rates:     map[string]decimal.Decimal{"USD": decimal.NewFromInt(1000)},
		Source:    "env",
	})
}

func setupRateWorker(sources ...domain.RateSource) (*RateRefreshWorker, *RateHolder, *testutil.MockEventPublisher) {
	holder := newTestHolder()
	publisher := testutil.NewMockEventPublisher()
	worker := NewRateRefreshWorker(holder, sources, zerolog.Nop(), RateRefreshWorkerConfig{Interval: 100 * time.Millisecond})
	worker.SetEventPublisher(publisher)
	return worker, holder, publisher
}

func TestRateHolder_Normalizer(t *testing.T) {
	holder := newTestHolder()
	n := holder.Normalizer()

	assert.Equal(t, "ARS", n.Reporting)
	assert.True(t, n.ToReporting(decimal.NewFromInt(2), "usd").Equal(decimal.NewFromInt(2000)))
}

func TestRateHolder_ApplyReportsChanges(t *testing.T) {
	holder := newTestHolder()
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.False(t, holder.Apply(map[string]decimal.Decimal{"USD": decimal.NewFromInt(1000)}, "file", at))
	assert.True(t, holder.Apply(map[string]decimal.Decimal{"usd": decimal.NewFromInt(1050)}, "file", at))
	assert.True(t, holder.Apply(map[string]decimal.Decimal{"BRL": decimal.NewFromInt(200)}, "s3", at))

	snap := holder.Snapshot()
	assert.Equal(t, "s3", snap.Source)
	assert.Equal(t, at, snap.UpdatedAt)
	assert.True(t, snap.Rates["USD"].Equal(decimal.NewFromInt(1050)))

	// the snapshot is a copy
	snap.Rates["USD"] = decimal.NewFromInt(1)
	assert.True(t, holder.Snapshot().Rates["USD"].Equal(decimal.NewFromInt(1050)))
}

func TestRateRefreshWorker_DefaultConfig(t *testing.T) {
	assert.Equal(t, 15*time.Minute, DefaultRateRefreshWorkerConfig().Interval)

	worker := NewRateRefreshWorker(newTestHolder(), nil, zerolog.Nop(), RateRefreshWorkerConfig{})
	assert.Equal(t, 15*time.Minute, worker.interval)
	assert.False(t, worker.IsRunning())
}

func TestRateRefreshWorker_RefreshPublishesOnChange(t *testing.T) {
	src := &fakeRateSource{name: "file", rates: map[string]decimal.Decimal{"USD": decimal.NewFromInt(1100)}}
	worker, holder, publisher := setupRateWorker(src)

	changed, err := worker.Refresh(context.Background())
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, holder.Snapshot().Rates["USD"].Equal(decimal.NewFromInt(1100)))
	require.Len(t, publisher.Events, 1)
	assert.Equal(t, "rates.updated", publisher.Events[0].Event.Type)
	assert.True(t, publisher.Events[0].Broadcast)

	// same rates again: no event
	changed, err = worker.Refresh(context.Background())
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Len(t, publisher.Events, 1)
}

func TestRateRefreshWorker_LaterSourceWins(t *testing.T) {
	first := &fakeRateSource{name: "file", rates: map[string]decimal.Decimal{"USD": decimal.NewFromInt(1100), "BRL": decimal.NewFromInt(190)}}
	second := &fakeRateSource{name: "s3", rates: map[string]decimal.Decimal{"USD": decimal.NewFromInt(1200)}}
	worker, holder, _ := setupRateWorker(first, second)

	_, err := worker.Refresh(context.Background())
	require.NoError(t, err)

	snap := holder.Snapshot()
	assert.True(t, snap.Rates["USD"].Equal(decimal.NewFromInt(1200)))
	assert.True(t, snap.Rates["BRL"].Equal(decimal.NewFromInt(190)))
}

func TestRateRefreshWorker_PartialFailureKeepsRates(t *testing.T) {
	broken := &fakeRateSource{name: "s3", err: errors.New("boom")}
	ok := &fakeRateSource{name: "file", rates: map[string]decimal.Decimal{"BRL": decimal.NewFromInt(200)}}
	worker, holder, _ := setupRateWorker(broken, ok)

	changed, err := worker.Refresh(context.Background())
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, holder.Snapshot().Rates["USD"].Equal(decimal.NewFromInt(1000)))
}

func TestRateRefreshWorker_AllSourcesFail(t *testing.T) {
	broken := &fakeRateSource{name: "s3", err: errors.New("boom")}
	worker, holder, publisher := setupRateWorker(broken)

	_, err := worker.Refresh(context.Background())
	assert.ErrorIs(t, err, domain.ErrRateSourceUnavailable)
	assert.Empty(t, publisher.Events)
	assert.True(t, holder.Snapshot().Rates["USD"].Equal(decimal.NewFromInt(1000)))
}

func TestRateRefreshWorker_StartStop(t *testing.T) {
	src := &fakeRateSource{name: "file", rates: map[string]decimal.Decimal{"USD": decimal.NewFromInt(1000)}}
	worker, _, _ := setupRateWorker(src)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	worker.Start(ctx)
	worker.Start(ctx) // idempotent
	time.Sleep(50 * time.Millisecond)

	assert.True(t, worker.IsRunning())
	assert.GreaterOrEqual(t, src.calls.Load(), int32(1), "refresh runs immediately on start")

	worker.Stop()
	assert.False(t, worker.IsRunning())
}

func TestRateRefreshWorker_StopWithoutStart(t *testing.T) {
	worker, _, _ := setupRateWorker()
	assert.NotPanics(t, worker.Stop)
}

func TestRateRefreshWorker_ContextCancellation(t *testing.T) {
	worker, _, _ := setupRateWorker()

	ctx, cancel := context.WithCancel(context.Background())
	worker.Start(ctx)
	time.Sleep(50 * time.Millisecond)

	cancel()
	time.Sleep(50 * time.Millisecond)
	assert.False(t, worker.IsRunning())
}
