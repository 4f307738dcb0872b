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

// ExpenseService handles planned and observed expenses and the expense analytics
type ExpenseService struct {
	plannedRepo    domain.PlannedExpenseRepository
	observedRepo   domain.ObservedExpenseRepository
	cardRepo       domain.CardRepository
	rates          RateProvider
	opts           PlanningOptions
	now            func() time.Time
	eventPublisher websocket.EventPublisher
}

// NewExpenseService creates a new ExpenseService
func NewExpenseService(
	plannedRepo domain.PlannedExpenseRepository,
	observedRepo domain.ObservedExpenseRepository,
	cardRepo domain.CardRepository,
	rates RateProvider,
	opts PlanningOptions,
) *ExpenseService {
	return &ExpenseService{
		plannedRepo:  plannedRepo,
		observedRepo: observedRepo,
		cardRepo:     cardRepo,
		rates:        rates,
		opts:         opts,
		now:          time.Now,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *ExpenseService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

// SetClock replaces the wall clock, used by tests
func (s *ExpenseService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *ExpenseService) publishEvent(workspaceID int32, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(workspaceID, event)
	}
}

// CreatePlannedExpenseInput holds the input for creating a planned expense
type CreatePlannedExpenseInput struct {
	Kind           domain.ExpenseKind
	CardID         *int32
	Category       string
	Currency       string
	Amount         *decimal.Decimal
	VariableBand   *domain.VariableBand
	Confidence     domain.Confidence
	Recurrence     *domain.Recurrence
	Date           *time.Time
	NInstallments  *int
	AmountEquivEst *decimal.Decimal
	Concept        string
	Notes          *string
	IsActive       *bool
}

// CreatePlanned validates and stores a planned expense.
// Credit purchases must reference a credit card of the same workspace.
func (s *ExpenseService) CreatePlanned(workspaceID int32, input CreatePlannedExpenseInput) (*domain.PlannedExpense, error) {
	plan := newPlannedExpense(workspaceID, input, true)
	if err := s.validatePlanned(plan); err != nil {
		return nil, err
	}

	created, err := s.plannedRepo.Create(plan)
	if err != nil {
		return nil, fmt.Errorf("create planned expense: %w", err)
	}

	s.publishEvent(workspaceID, websocket.PlannedExpenseCreated(created))
	return created, nil
}

// UpdatePlanned replaces every field of a planned expense.
// A nil IsActive keeps the current state. Recorded installment payments are kept.
func (s *ExpenseService) UpdatePlanned(workspaceID int32, id int32, input CreatePlannedExpenseInput) (*domain.PlannedExpense, error) {
	existing, err := s.plannedRepo.GetByID(workspaceID, id)
	if err != nil {
		return nil, err
	}

	plan := newPlannedExpense(workspaceID, input, existing.IsActive)
	plan.ID = existing.ID
	plan.CreatedAt = existing.CreatedAt
	if err := s.validatePlanned(plan); err != nil {
		return nil, err
	}

	updated, err := s.plannedRepo.Update(plan)
	if err != nil {
		return nil, fmt.Errorf("update planned expense: %w", err)
	}

	s.publishEvent(workspaceID, websocket.PlannedExpenseUpdated(updated))
	return updated, nil
}

func (s *ExpenseService) validatePlanned(plan *domain.PlannedExpense) error {
	if err := plan.Validate(); err != nil {
		return err
	}
	if plan.Kind != domain.ExpenseKindCredit {
		return nil
	}
	card, err := s.cardRepo.GetByID(plan.WorkspaceID, *plan.CardID)
	if err != nil {
		return err
	}
	if card.Type != domain.CardTypeCredit {
		return domain.ErrExpenseCardNotCredit
	}
	return nil
}

func newPlannedExpense(workspaceID int32, input CreatePlannedExpenseInput, isActive bool) *domain.PlannedExpense {
	if input.IsActive != nil {
		isActive = *input.IsActive
	}
	var date *time.Time
	if input.Date != nil {
		d := util.DateOnly(*input.Date)
		date = &d
	}
	return &domain.PlannedExpense{
		WorkspaceID:    workspaceID,
		Kind:           input.Kind,
		CardID:         input.CardID,
		Category:       strings.TrimSpace(input.Category),
		Currency:       strings.ToUpper(strings.TrimSpace(input.Currency)),
		Amount:         input.Amount,
		VariableBand:   input.VariableBand,
		Confidence:     input.Confidence,
		Recurrence:     input.Recurrence,
		Date:           date,
		NInstallments:  input.NInstallments,
		AmountEquivEst: input.AmountEquivEst,
		Concept:        strings.TrimSpace(input.Concept),
		Notes:          input.Notes,
		IsActive:       isActive,
	}
}

// ListPlanned returns the workspace's planned expenses
func (s *ExpenseService) ListPlanned(workspaceID int32, activeOnly *bool) ([]*domain.PlannedExpense, error) {
	return s.plannedRepo.ListByWorkspace(workspaceID, activeOnly)
}

// DeletePlanned removes a planned expense
func (s *ExpenseService) DeletePlanned(workspaceID int32, id int32) error {
	plan, err := s.plannedRepo.GetByID(workspaceID, id)
	if err != nil {
		return err
	}
	if err := s.plannedRepo.Delete(workspaceID, id); err != nil {
		return err
	}

	s.publishEvent(workspaceID, websocket.PlannedExpenseDeleted(map[string]interface{}{"id": plan.ID}))
	return nil
}

// RecordObservedExpenseInput holds the input for recording an observed expense
type RecordObservedExpenseInput struct {
	Category  string
	Concept   string
	Currency  string
	Amount    decimal.Decimal
	Date      *time.Time
	PlannedID *int32
}

// RecordObserved stores an expense that actually happened. Date defaults to today.
func (s *ExpenseService) RecordObserved(workspaceID int32, input RecordObservedExpenseInput) (*domain.ObservedExpense, error) {
	date := util.DateOnly(s.now())
	if input.Date != nil {
		date = util.DateOnly(*input.Date)
	}

	if input.PlannedID != nil {
		if _, err := s.plannedRepo.GetByID(workspaceID, *input.PlannedID); err != nil {
			return nil, err
		}
	}

	observed := &domain.ObservedExpense{
		WorkspaceID: workspaceID,
		Category:    strings.TrimSpace(input.Category),
		Concept:     strings.TrimSpace(input.Concept),
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
		return nil, fmt.Errorf("record observed expense: %w", err)
	}

	s.publishEvent(workspaceID, websocket.ObservedExpenseCreated(created))
	return created, nil
}

// Expanded returns dated planned expense instances in [from, to]
func (s *ExpenseService) Expanded(workspaceID int32, from, to time.Time, scenario domain.Scenario) ([]domain.ExpandedPlanned, error) {
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

// Monthly aggregates planned vs observed expenses per month of [from, to]
func (s *ExpenseService) Monthly(workspaceID int32, from, to time.Time) ([]domain.MonthlyAggregate, error) {
	if err := checkWindow(from, to); err != nil {
		return nil, err
	}
	aggregates, _, err := s.aggregate(workspaceID, from, to, s.now(), s.rates.Normalizer())
	return aggregates, err
}

// KPIs computes the expense KPIs, top categories and credit/debit split as of now
func (s *ExpenseService) KPIs(workspaceID int32) (domain.ExpenseKPISet, error) {
	now := s.now()
	from, to := historyWindow(now)
	aggregates, planned, err := s.aggregate(workspaceID, from, to, now, s.rates.Normalizer())
	if err != nil {
		return domain.ExpenseKPISet{}, err
	}
	return engine.ComputeExpenseKPIs(aggregates, planned, now, s.opts.KPI), nil
}

// Forecast projects expenses for the next months
func (s *ExpenseService) Forecast(workspaceID int32, months int) ([]domain.ForecastMonth, error) {
	now := s.now()
	from, to := historyWindow(now)
	aggregates, _, err := s.aggregate(workspaceID, from, to, now, s.rates.Normalizer())
	if err != nil {
		return nil, err
	}
	return engine.Forecast(aggregates, months, now), nil
}

// Comparison breaks down planned vs observed expenses for a YYYY-MM month
func (s *ExpenseService) Comparison(workspaceID int32, month string) (*ComparisonReport, error) {
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
		Items:  engine.CompareExpenses(observed, planned, util.MonthKey(from), n),
	}, nil
}

func (s *ExpenseService) aggregate(workspaceID int32, from, to, now time.Time, n engine.Normalizer) ([]domain.MonthlyAggregate, []domain.ExpandedPlanned, error) {
	observed, err := s.observed(workspaceID, from, to)
	if err != nil {
		return nil, nil, err
	}
	planned, err := s.expand(workspaceID, from, to, now, n)
	if err != nil {
		return nil, nil, err
	}
	return engine.AggregateMonthly(observed, planned, n), planned, nil
}

func (s *ExpenseService) expand(workspaceID int32, from, to, now time.Time, n engine.Normalizer) ([]domain.ExpandedPlanned, error) {
	activeOnly := true
	plans, err := s.plannedRepo.ListByWorkspace(workspaceID, &activeOnly)
	if err != nil {
		return nil, fmt.Errorf("list planned expenses: %w", err)
	}
	return engine.ExpandExpenses(plans, from, to, now, n), nil
}

func (s *ExpenseService) observed(workspaceID int32, from, to time.Time) ([]domain.ObservedEntry, error) {
	records, err := s.observedRepo.ListByDateRange(workspaceID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list observed expenses: %w", err)
	}
	entries := make([]domain.ObservedEntry, 0, len(records))
	for _, r := range records {
		entries = append(entries, r.Entry())
	}
	return entries, nil
}
