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

// SavingsService handles saving goals, contributions and surplus allocation
type SavingsService struct {
	goalRepo       domain.SavingGoalRepository
	rates          RateProvider
	allocation     engine.AllocationOptions
	now            func() time.Time
	eventPublisher websocket.EventPublisher
}

// NewSavingsService creates a new SavingsService
func NewSavingsService(goalRepo domain.SavingGoalRepository, rates RateProvider, allocation engine.AllocationOptions) *SavingsService {
	return &SavingsService{
		goalRepo:   goalRepo,
		rates:      rates,
		allocation: allocation,
		now:        time.Now,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *SavingsService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

// SetClock replaces the wall clock, used by tests
func (s *SavingsService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *SavingsService) publishEvent(workspaceID int32, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(workspaceID, event)
	}
}

// CreateGoalInput holds the input for creating a saving goal
type CreateGoalInput struct {
	Name          string
	BaseCurrency  string
	TargetAmount  decimal.Decimal
	CurrentAmount decimal.Decimal
	Priority      domain.Priority
	DueDate       *time.Time
	Category      string
}

// CreateGoal validates and stores a saving goal
func (s *SavingsService) CreateGoal(workspaceID int32, input CreateGoalInput) (*domain.SavingGoal, error) {
	var due *time.Time
	if input.DueDate != nil {
		d := util.DateOnly(*input.DueDate)
		due = &d
	}

	goal := &domain.SavingGoal{
		WorkspaceID:   workspaceID,
		Name:          strings.TrimSpace(input.Name),
		BaseCurrency:  strings.ToUpper(strings.TrimSpace(input.BaseCurrency)),
		TargetAmount:  input.TargetAmount,
		CurrentAmount: input.CurrentAmount,
		Priority:      input.Priority,
		DueDate:       due,
		Category:      strings.TrimSpace(input.Category),
	}
	if err := goal.Validate(); err != nil {
		return nil, err
	}

	created, err := s.goalRepo.Create(goal)
	if err != nil {
		return nil, fmt.Errorf("create saving goal: %w", err)
	}

	s.publishEvent(workspaceID, websocket.SavingGoalCreated(created))
	return created, nil
}

// ListGoals returns the workspace's saving goals
func (s *SavingsService) ListGoals(workspaceID int32) ([]*domain.SavingGoal, error) {
	return s.goalRepo.ListByWorkspace(workspaceID)
}

// UpdateGoalInput holds the editable fields of a saving goal.
// The current amount only moves through contributions.
type UpdateGoalInput struct {
	Name         string
	BaseCurrency string
	TargetAmount decimal.Decimal
	Priority     domain.Priority
	DueDate      *time.Time
	Category     string
}

// UpdateGoal replaces the editable fields of a saving goal
func (s *SavingsService) UpdateGoal(workspaceID int32, id int32, input UpdateGoalInput) (*domain.SavingGoal, error) {
	existing, err := s.goalRepo.GetByID(workspaceID, id)
	if err != nil {
		return nil, err
	}

	var due *time.Time
	if input.DueDate != nil {
		d := util.DateOnly(*input.DueDate)
		due = &d
	}

	goal := *existing
	goal.Name = strings.TrimSpace(input.Name)
	goal.BaseCurrency = strings.ToUpper(strings.TrimSpace(input.BaseCurrency))
	goal.TargetAmount = input.TargetAmount
	goal.Priority = input.Priority
	goal.DueDate = due
	goal.Category = strings.TrimSpace(input.Category)
	if err := goal.Validate(); err != nil {
		return nil, err
	}

	updated, err := s.goalRepo.Update(&goal)
	if err != nil {
		return nil, fmt.Errorf("update saving goal: %w", err)
	}

	s.publishEvent(workspaceID, websocket.SavingGoalUpdated(updated))
	return updated, nil
}

// DeleteGoal removes a saving goal together with its contributions
func (s *SavingsService) DeleteGoal(workspaceID int32, id int32) error {
	goal, err := s.goalRepo.GetByID(workspaceID, id)
	if err != nil {
		return err
	}
	if err := s.goalRepo.Delete(workspaceID, id); err != nil {
		return err
	}

	s.publishEvent(workspaceID, websocket.SavingGoalDeleted(map[string]interface{}{"id": goal.ID}))
	return nil
}

// ContributeInput holds the input for a goal contribution
type ContributeInput struct {
	Amount decimal.Decimal
	Date   *time.Time
	Note   *string
}

// Contribute adds a positive amount to a goal. Contributions past the target are kept.
func (s *SavingsService) Contribute(workspaceID int32, goalID int32, input ContributeInput) (*domain.SavingGoal, error) {
	date := util.DateOnly(s.now())
	if input.Date != nil {
		date = util.DateOnly(*input.Date)
	}

	contribution := &domain.GoalContribution{
		GoalID: goalID,
		Amount: input.Amount,
		Date:   date,
		Note:   input.Note,
	}
	if err := contribution.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.goalRepo.GetByID(workspaceID, goalID); err != nil {
		return nil, err
	}

	goal, err := s.goalRepo.AddContribution(workspaceID, contribution)
	if err != nil {
		return nil, fmt.Errorf("add contribution: %w", err)
	}

	s.publishEvent(workspaceID, websocket.SavingGoalContributed(map[string]interface{}{
		"goal":         goal,
		"contribution": contribution,
	}))
	return goal, nil
}

// ListContributions returns the contributions made to a goal
func (s *SavingsService) ListContributions(workspaceID int32, goalID int32) ([]*domain.GoalContribution, error) {
	return s.goalRepo.ListContributions(workspaceID, goalID)
}

// AllocateInput holds a surplus in the reporting currency and optional overrides
type AllocateInput struct {
	Surplus              decimal.Decimal
	RoundToMultiple      *decimal.Decimal
	MaxAllocationPerGoal *decimal.Decimal
}

// Allocate suggests how to split a surplus across the workspace's goals
func (s *SavingsService) Allocate(workspaceID int32, input AllocateInput) (*domain.AllocationSuggestion, error) {
	if !input.Surplus.IsPositive() {
		return nil, domain.ErrSurplusInvalid
	}

	goals, err := s.goalRepo.ListByWorkspace(workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list saving goals: %w", err)
	}

	opts := s.allocation
	if input.RoundToMultiple != nil {
		opts.RoundToMultiple = *input.RoundToMultiple
	}
	if input.MaxAllocationPerGoal != nil {
		opts.MaxAllocationPerGoal = *input.MaxAllocationPerGoal
	}

	suggestion := engine.AllocateSurplus(input.Surplus, goals, s.now(), s.rates.Normalizer(), opts)
	return &suggestion, nil
}

// ApplyAllocation computes a suggestion and records each allocation as a
// contribution in the goal's base currency
func (s *SavingsService) ApplyAllocation(workspaceID int32, input AllocateInput) (*domain.AllocationSuggestion, error) {
	suggestion, err := s.Allocate(workspaceID, input)
	if err != nil {
		return nil, err
	}

	note := "surplus allocation"
	for _, a := range suggestion.Allocations {
		if !a.AmountBase.IsPositive() {
			continue
		}
		if _, err := s.Contribute(workspaceID, a.GoalID, ContributeInput{Amount: a.AmountBase, Note: &note}); err != nil {
			return nil, fmt.Errorf("apply allocation to goal %d: %w", a.GoalID, err)
		}
	}
	return suggestion, nil
}
