package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrSavingGoalNotFound       = errors.New("saving goal not found")
	ErrSavingGoalNameEmpty      = errors.New("saving goal name is required")
	ErrSavingGoalNameTooLong    = errors.New("saving goal name must be 100 characters or less")
	ErrSavingGoalTargetInvalid  = errors.New("target amount must be positive")
	ErrSavingGoalCurrentInvalid = errors.New("current amount cannot be negative")
	ErrPriorityInvalid          = errors.New("priority must be high, medium or low")
	ErrContributionInvalid      = errors.New("contribution amount must be positive")
	ErrSurplusInvalid           = errors.New("surplus must be positive")
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

type SavingGoal struct {
	ID            int32           `json:"id"`
	WorkspaceID   int32           `json:"workspaceId"`
	Name          string          `json:"name"`
	BaseCurrency  string          `json:"baseCurrency"`
	TargetAmount  decimal.Decimal `json:"targetAmount"`
	CurrentAmount decimal.Decimal `json:"currentAmount"`
	Priority      Priority        `json:"priority"`
	DueDate       *time.Time      `json:"dueDate,omitempty"`
	Category      string          `json:"category"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

func (g *SavingGoal) Validate() error {
	if g.Name == "" {
		return ErrSavingGoalNameEmpty
	}
	if len(g.Name) > 100 {
		return ErrSavingGoalNameTooLong
	}
	if g.BaseCurrency == "" {
		return ErrCurrencyRequired
	}
	if g.TargetAmount.LessThanOrEqual(decimal.Zero) {
		return ErrSavingGoalTargetInvalid
	}
	if g.CurrentAmount.IsNegative() {
		return ErrSavingGoalCurrentInvalid
	}
	switch g.Priority {
	case PriorityHigh, PriorityMedium, PriorityLow:
	default:
		return ErrPriorityInvalid
	}
	return nil
}

// IsCompleted returns true once contributions reach the target; overshoot is allowed
func (g *SavingGoal) IsCompleted() bool {
	return g.CurrentAmount.GreaterThanOrEqual(g.TargetAmount)
}

// Shortfall returns the amount still needed in the goal's base currency
func (g *SavingGoal) Shortfall() decimal.Decimal {
	s := g.TargetAmount.Sub(g.CurrentAmount)
	if s.IsNegative() {
		return decimal.Zero
	}
	return s
}

// GoalContribution adds to a goal's current amount, in the goal's base currency
type GoalContribution struct {
	ID        int32           `json:"id"`
	GoalID    int32           `json:"goalId"`
	Amount    decimal.Decimal `json:"amount"`
	Date      time.Time       `json:"date"`
	Note      *string         `json:"note,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

func (c *GoalContribution) Validate() error {
	if c.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrContributionInvalid
	}
	return nil
}

type Allocation struct {
	GoalID          int32           `json:"goalId"`
	GoalName        string          `json:"goalName"`
	AmountReporting decimal.Decimal `json:"amountReporting"`
	AmountBase      decimal.Decimal `json:"amountBase"`
	BaseCurrency    string          `json:"baseCurrency"`
	Score           decimal.Decimal `json:"score"`
}

type AllocationSuggestion struct {
	TotalSurplus decimal.Decimal `json:"totalSurplus"`
	Allocations  []Allocation    `json:"allocations"`
	Remaining    decimal.Decimal `json:"remaining"`
}

type SavingGoalRepository interface {
	Create(goal *SavingGoal) (*SavingGoal, error)
	GetByID(workspaceID int32, id int32) (*SavingGoal, error)
	ListByWorkspace(workspaceID int32) ([]*SavingGoal, error)
	// Update rewrites the goal's settings; the current amount only moves through contributions
	Update(goal *SavingGoal) (*SavingGoal, error)
	// Delete removes the goal together with its contributions
	Delete(workspaceID int32, id int32) error
	// AddContribution stores the contribution and increases the goal's current amount
	AddContribution(workspaceID int32, contribution *GoalContribution) (*SavingGoal, error)
	ListContributions(workspaceID int32, goalID int32) ([]*GoalContribution, error)
}
