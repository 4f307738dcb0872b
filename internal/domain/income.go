package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrPlannedIncomeNotFound = errors.New("planned income not found")
	ErrIncomeSourceRequired  = errors.New("income source is required")
	ErrIncomeSourceTooLong   = errors.New("income source must be 200 characters or less")
)

// Income categories. Categories are opaque tags; unknown values are accepted.
const (
	IncomeCategorySalary     = "salary"
	IncomeCategoryFreelance  = "freelance"
	IncomeCategoryRental     = "rental"
	IncomeCategoryInvestment = "investment"
	IncomeCategoryBonus      = "bonus"
	IncomeCategoryOther      = "other"
)

type PlannedIncome struct {
	ID           int32            `json:"id"`
	WorkspaceID  int32            `json:"workspaceId"`
	Source       string           `json:"source"`
	Category     string           `json:"category"`
	Currency     string           `json:"currency"`
	Amount       *decimal.Decimal `json:"amount,omitempty"`
	VariableBand *VariableBand    `json:"variableBand,omitempty"`
	Confidence   Confidence       `json:"confidence"`
	Recurrence   *Recurrence      `json:"recurrence,omitempty"`
	IsActive     bool             `json:"isActive"`
	Notes        *string          `json:"notes,omitempty"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}

func (p *PlannedIncome) Validate() error {
	if p.Source == "" {
		return ErrIncomeSourceRequired
	}
	if len(p.Source) > 200 {
		return ErrIncomeSourceTooLong
	}
	if p.Category == "" {
		return ErrCategoryRequired
	}
	if p.Currency == "" {
		return ErrCurrencyRequired
	}
	if err := validateAmount(p.Amount, p.VariableBand); err != nil {
		return err
	}
	if err := validateConfidence(p.Confidence); err != nil {
		return err
	}
	if p.Recurrence != nil {
		return p.Recurrence.Validate()
	}
	return nil
}

type ObservedIncome struct {
	ID          int32           `json:"id"`
	WorkspaceID int32           `json:"workspaceId"`
	Source      string          `json:"source"`
	Category    string          `json:"category"`
	Currency    string          `json:"currency"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	PlannedID   *int32          `json:"plannedId,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

func (o *ObservedIncome) Validate() error {
	if o.Category == "" {
		return ErrCategoryRequired
	}
	if o.Currency == "" {
		return ErrCurrencyRequired
	}
	if o.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrAmountInvalid
	}
	return nil
}

// Entry returns the fields the engine aggregates over
func (o *ObservedIncome) Entry() ObservedEntry {
	return ObservedEntry{
		Category: o.Category,
		Source:   o.Source,
		Currency: o.Currency,
		Amount:   o.Amount,
		Date:     o.Date,
	}
}

type PlannedIncomeRepository interface {
	Create(p *PlannedIncome) (*PlannedIncome, error)
	GetByID(workspaceID int32, id int32) (*PlannedIncome, error)
	ListByWorkspace(workspaceID int32, activeOnly *bool) ([]*PlannedIncome, error)
	Update(p *PlannedIncome) (*PlannedIncome, error)
	Delete(workspaceID int32, id int32) error
}

type ObservedIncomeRepository interface {
	Create(o *ObservedIncome) (*ObservedIncome, error)
	ListByWorkspace(workspaceID int32) ([]*ObservedIncome, error)
	ListByDateRange(workspaceID int32, from, to time.Time) ([]*ObservedIncome, error)
}
