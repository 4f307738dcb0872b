package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/dafibh/fortuna/fortuna-planner/internal/domain"
	"github.com/dafibh/fortuna/fortuna-planner/internal/engine"
	"github.com/dafibh/fortuna/fortuna-planner/internal/util"
	"github.com/dafibh/fortuna/fortuna-planner/internal/websocket"
	"github.com/shopspring/decimal"
)

// IncomeService handles planned and observed income and the income analytics
type IncomeService struct {
	plannedRepo    domain.PlannedIncomeRepository
	observedRepo   domain.ObservedIncomeRepository
	rates          RateProvider
	opts           PlanningOptions
	now            func() time.Time
	eventPublisher websocket.EventPublisher
}

// NewIncomeService creates a new IncomeService
func NewIncomeService(
	plannedRepo domain.PlannedIncomeRepository,
	observedRepo domain.ObservedIncomeRepository,
	rates RateProvider,
	opts PlanningOptions,
) *IncomeService {
	return &IncomeService{
		plannedRepo:  plannedRepo,
		observedRepo: observedRepo,
		rates:        rates,
		opts:         opts,
		now:          time.Now,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *IncomeService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

// SetClock replaces the wall clock, used by tests
func (s *IncomeService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *IncomeService) publishEvent(workspaceID int32, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(workspaceID, event)
	}
}

// CreatePlannedIncomeInput holds the input for creating a planned income
type CreatePlannedIncomeInput struct {
	Source       string
	Category     string
	Currency     string
	Amount       *decimal.Decimal
	VariableBand *domain.VariableBand
	Confidence   domain.Confidence
	Recurrence   *domain.Recurrence
	IsActive     *bool
	Notes        *string
}

// CreatePlanned validates and stores a planned income
func (s *IncomeService) CreatePlanned(workspaceID int32, input CreatePlannedIncomeInput) (*domain.PlannedIncome, error) {
	plan := newPlannedIncome(workspaceID, input, true)
	if err := plan.Validate(); err != nil {
		return nil, err
	}

	created, err := s.plannedRepo.Create(plan)
	if err != nil {
		return nil, fmt.Errorf("create planned income: %w", err)
	}

	s.publishEvent(workspaceID, websocket.PlannedIncomeCreated(created))
	return created, nil
}

// UpdatePlanned replaces every field of a planned income.
// A nil IsActive keeps the current state.
func (s *IncomeService) UpdatePlanned(workspaceID int32, id int32, input CreatePlannedIncomeInput) (*domain.PlannedIncome, error) {
	existing, err := s.plannedRepo.GetByID(workspaceID, id)
	if err != nil {
		return nil, err
	}

	plan := newPlannedIncome(workspaceID, input, existing.IsActive)
	plan.ID = existing.ID
	plan.CreatedAt = existing.CreatedAt
	if err := plan.Validate(); err != nil {
		return nil, err
	}

	updated, err := s.plannedRepo.Update(plan)
	if err != nil {
		return nil, fmt.Errorf("update planned income: %w", err)
	}

	s.publishEvent(workspaceID, websocket.PlannedIncomeUpdated(updated))
	return updated, nil
}

func newPlannedIncome(workspaceID int32, input CreatePlannedIncomeInput, isActive bool) *domain.PlannedIncome {
	if input.IsActive != nil {
		isActive = *input.IsActive
	}
	return &domain.PlannedIncome{
		WorkspaceID:  workspaceID,
		Source:       strings.TrimSpace(input.Source),
		Category:     strings.TrimSpace(input.Category),
		Currency:     strings.ToUpper(strings.TrimSpace(input.Currency)),
		Amount:       input.Amount,
		VariableBand: input.VariableBand,
		Confidence:   input.Confidence,
		Recurrence:   input.Recurrence,
		IsActive:     isActive,
		Notes:        input.Notes,
	}
}

// ListPlanned returns the workspace's planned incomes
func (s *IncomeService) ListPlanned(workspaceID int32, activeOnly *bool) ([]*domain.PlannedIncome, error) {
	return s.plannedRepo.ListByWorkspace(workspaceID, activeOnly)
}

// DeletePlanned removes a planned income
func (s *IncomeService) DeletePlanned(workspaceID int32, id int32) error {
	plan, err := s.plannedRepo.GetByID(workspaceID, id)
	if err != nil {
		return err
	}
	if err := s.plannedRepo.Delete(workspaceID, id); err != nil {
		return err
	}

	s.publishEvent(workspaceID, websocket.PlannedIncomeDeleted(map[string]interface{}{"id": plan.ID}))
	return nil
}

// RecordObservedIncomeInput holds the input for recording an observed income
type RecordObservedIncomeInput struct {
	Source    string
	Category  string
	Currency  string
	Amount    decimal.Decimal
	Date      *time.Time
	PlannedID *int32
}

// RecordObserved stores income that actually arrived. Date defaults to today.
func (s *IncomeService) RecordObserved(workspaceID int32, input RecordObservedIncomeInput) (*domain.ObservedIncome, error) {
	date := util.DateOnly(s.now())
	if input.Date != nil {
		date = util.DateOnly(*input.Date)
	}

	if input.PlannedID != nil {
		if _, err := s.plannedRepo.GetByID(workspaceID, *input.PlannedID); err != nil {
			return nil, err
		}
	}

	observed := &domain.ObservedIncome{
		WorkspaceID: workspaceID,
		Source:      strings.TrimSpace(input.Source),
		Category:    strings.TrimSpace(input.Category),
		Currency:    strings.ToUpper(strings.TrimSpace(input.Currency)),
		Amount:      input.Amount,
		Date:        date,
		PlannedID:   input.PlannedID,
	}
	if err := observed.Validate(); err != nil {
		return nil, err
	}

	created, err := s.observedRepo.Create(observed)
	if err != nil {
		return nil, fmt.Errorf("record observed income: %w", err)
	}

	s.publishEvent(workspaceID, websocket.ObservedIncomeCreated(created))
	return created, nil
}

// Expanded returns dated planned income instances in [from, to].
// A non-empty scenario keeps only that scenario's records.
func (s *IncomeService) Expanded(workspaceID int32, from, to time.Time, scenario domain.Scenario) ([]domain.ExpandedPlanned, error) {
	if err := checkWindow(from, to); err != nil {
		return nil, err
	}
	records, err := s.expand(workspaceID, from, to, s.now(), s.rates.Normalizer())
	if err != nil {
		return nil, err
	}
	if scenario != "" {
		records = engine.FilterScenario(records, scenario)
	}
	return records, nil
}

// Monthly aggregates planned vs observed income per month of [from, to]
func (s *IncomeService) Monthly(workspaceID int32, from, to time.Time) ([]domain.MonthlyAggregate, error) {
	if err := checkWindow(from, to); err != nil {
		return nil, err
	}
	return s.aggregate(workspaceID, from, to, s.now(), s.rates.Normalizer())
}

// KPIs computes the income KPIs as of now
func (s *IncomeService) KPIs(workspaceID int32) (domain.KPISet, error) {
	now := s.now()
	from, to := historyWindow(now)
	aggregates, err := s.aggregate(workspaceID, from, to, now, s.rates.Normalizer())
	if err != nil {
		return domain.KPISet{}, err
	}
	return engine.ComputeKPIs(aggregates, now, s.opts.KPI), nil
}

// Forecast projects income for the next months
func (s *IncomeService) Forecast(workspaceID int32, months int) ([]domain.ForecastMonth, error) {
	now := s.now()
	from, to := historyWindow(now)
	aggregates, err := s.aggregate(workspaceID, from, to, now, s.rates.Normalizer())
	if err != nil {
		return nil, err
	}
	return engine.Forecast(aggregates, months, now), nil
}

// Comparison breaks down planned vs observed income for a YYYY-MM month
func (s *IncomeService) Comparison(workspaceID int32, month string) (*ComparisonReport, error) {
	from, to, err := monthWindow(month)
	if err != nil {
		return nil, err
	}
	now, n := s.now(), s.rates.Normalizer()
	observed, err := s.observed(workspaceID, from, to)
	if err != nil {
		return nil, err
	}
	planned, err := s.expand(workspaceID, from, to, now, n)
	if err != nil {
		return nil, err
	}

	return &ComparisonReport{
		Month:  util.MonthKey(from),
		Closed: isClosedMonth(from, now),
		Items:  engine.CompareIncomes(observed, planned, util.MonthKey(from), n),
	}, nil
}

func (s *IncomeService) aggregate(workspaceID int32, from, to, now time.Time, n engine.Normalizer) ([]domain.MonthlyAggregate, error) {
	observed, err := s.observed(workspaceID, from, to)
	if err != nil {
		return nil, err
	}
	planned, err := s.expand(workspaceID, from, to, now, n)
	if err != nil {
		return nil, err
	}
	return engine.AggregateMonthly(observed, planned, n), nil
}

func (s *IncomeService) expand(workspaceID int32, from, to, now time.Time, n engine.Normalizer) ([]domain.ExpandedPlanned, error) {
	activeOnly := true
	plans, err := s.plannedRepo.ListByWorkspace(workspaceID, &activeOnly)
	if err != nil {
		return nil, fmt.Errorf("list planned incomes: %w", err)
	}
	return engine.ExpandIncomes(plans, from, to, now, n), nil
}

func (s *IncomeService) observed(workspaceID int32, from, to time.Time) ([]domain.ObservedEntry, error) {
	records, err := s.observedRepo.ListByDateRange(workspaceID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list observed incomes: %w", err)
	}
	entries := make([]domain.ObservedEntry, 0, len(records))
	for _, r := range records {
		entries = append(entries, r.Entry())
	}
	return entries, nil
}
