package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrPlannedExpenseNotFound = errors.New("planned expense not found")
	ErrExpenseKindInvalid     = errors.New("expense kind must be debit or credit")
	ErrExpenseCardRequired    = errors.New("card is required for credit expenses")
	ErrExpenseCardForbidden   = errors.New("card is only allowed for credit expenses")
	ErrInstallmentsInvalid    = errors.New("number of installments must be between 1 and 24")
	ErrInstallmentsForbidden  = errors.New("installments are only allowed for credit expenses")
	ErrExpenseDateRequired    = errors.New("date is required for credit and one-off expenses")
	ErrExpenseCardNotCredit   = errors.New("credit expenses must use a credit card")
)

// MaxInstallments is the upper bound for a credit purchase split
const MaxInstallments = 24

type ExpenseKind string

const (
	ExpenseKindDebit  ExpenseKind = "debit"
	ExpenseKindCredit ExpenseKind = "credit"
)

// Expense categories. Categories are opaque tags; unknown values are accepted.
const (
	ExpenseCategoryFood          = "food"
	ExpenseCategoryTransport     = "transport"
	ExpenseCategoryEntertainment = "entertainment"
	ExpenseCategoryHealth        = "health"
	ExpenseCategoryShopping      = "shopping"
	ExpenseCategoryBills         = "bills"
	ExpenseCategoryOther         = "other"
)

type PlannedExpense struct {
	ID             int32            `json:"id"`
	WorkspaceID    int32            `json:"workspaceId"`
	Kind           ExpenseKind      `json:"kind"`
	CardID         *int32           `json:"cardId,omitempty"`
	Category       string           `json:"category"`
	Currency       string           `json:"currency"`
	Amount         *decimal.Decimal `json:"amount,omitempty"`
	VariableBand   *VariableBand    `json:"variableBand,omitempty"`
	Confidence     Confidence       `json:"confidence"`
	Recurrence     *Recurrence      `json:"recurrence,omitempty"`
	Date           *time.Time       `json:"date,omitempty"`
	NInstallments  *int             `json:"nInstallments,omitempty"`
	AmountEquivEst *decimal.Decimal `json:"amountEquivEst,omitempty"`
	Concept        string           `json:"concept"`
	Notes          *string          `json:"notes,omitempty"`
	IsActive       bool             `json:"isActive"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

func (p *PlannedExpense) Validate() error {
	switch p.Kind {
	case ExpenseKindDebit:
		if p.CardID != nil {
			return ErrExpenseCardForbidden
		}
		if p.NInstallments != nil {
			return ErrInstallmentsForbidden
		}
	case ExpenseKindCredit:
		if p.CardID == nil || *p.CardID <= 0 {
			return ErrExpenseCardRequired
		}
		if p.NInstallments == nil || *p.NInstallments < 1 || *p.NInstallments > MaxInstallments {
			return ErrInstallmentsInvalid
		}
		if p.Date == nil {
			return ErrExpenseDateRequired
		}
	default:
		return ErrExpenseKindInvalid
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
		if err := p.Recurrence.Validate(); err != nil {
			return err
		}
	}
	if !p.IsRecurring() && p.Date == nil {
		return ErrExpenseDateRequired
	}
	return nil
}

// IsRecurring returns true for monthly plans
func (p *PlannedExpense) IsRecurring() bool {
	return p.Recurrence != nil && p.Recurrence.Type == RecurrenceMonthly
}

// TotalAmount returns the fixed amount, or the band midpoint for banded plans
func (p *PlannedExpense) TotalAmount() decimal.Decimal {
	if p.Amount != nil {
		return *p.Amount
	}
	if p.VariableBand != nil {
		return p.VariableBand.Midpoint()
	}
	return decimal.Zero
}

type ObservedExpense struct {
	ID          int32           `json:"id"`
	WorkspaceID int32           `json:"workspaceId"`
	Category    string          `json:"category"`
	Concept     string          `json:"concept"`
	Currency    string          `json:"currency"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	PlannedID   *int32          `json:"plannedId,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

func (o *ObservedExpense) Validate() error {
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
func (o *ObservedExpense) Entry() ObservedEntry {
	return ObservedEntry{
		Category: o.Category,
		Currency: o.Currency,
		Amount:   o.Amount,
		Date:     o.Date,
	}
}

type PlannedExpenseRepository interface {
	Create(p *PlannedExpense) (*PlannedExpense, error)
	GetByID(workspaceID int32, id int32) (*PlannedExpense, error)
	ListByWorkspace(workspaceID int32, activeOnly *bool) ([]*PlannedExpense, error)
	Update(p *PlannedExpense) (*PlannedExpense, error)
	Delete(workspaceID int32, id int32) error
}

type ObservedExpenseRepository interface {
	Create(o *ObservedExpense) (*ObservedExpense, error)
	ListByWorkspace(workspaceID int32) ([]*ObservedExpense, error)
	ListByDateRange(workspaceID int32, from, to time.Time) ([]*ObservedExpense, error)
}
