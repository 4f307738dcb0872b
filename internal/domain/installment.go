package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotCreditExpense         = errors.New("expense is not a credit purchase")
	ErrInstallmentAlreadyPaid   = errors.New("installment already marked as paid")
	ErrInstallmentNumberInvalid = errors.New("installment number is out of range")
)

// InstallmentStatus moves forward as the due date approaches; paid is terminal
type InstallmentStatus string

const (
	InstallmentStatusUpcoming InstallmentStatus = "upcoming"
	InstallmentStatusWarning  InstallmentStatus = "warning"
	InstallmentStatusUrgent   InstallmentStatus = "urgent"
	InstallmentStatusDue      InstallmentStatus = "due"
	InstallmentStatusPaid     InstallmentStatus = "paid"
)

// Deficit is the uncovered part of an installment in a given currency
type Deficit struct {
	Currency string          `json:"currency"`
	Amount   decimal.Decimal `json:"amount"`
}

// CoverageSuggestion is one way of funding a deficit from another currency
type CoverageSuggestion struct {
	FromCurrency      string           `json:"fromCurrency"`
	AmountFromEst     decimal.Decimal  `json:"amountFromEst"`
	EstRate           decimal.Decimal  `json:"estRate"`
	EstSpreadPct      *decimal.Decimal `json:"estSpreadPct,omitempty"`
	PlatformSuggested string           `json:"platformSuggested"`
}

type ExpenseInstallment struct {
	ID                string               `json:"id"`
	PlannedExpenseID  int32                `json:"plannedExpenseId"`
	InstallmentNumber int                  `json:"installmentNumber"`
	TotalInstallments int                  `json:"totalInstallments"`
	DueDate           time.Time            `json:"dueDate"`
	IsWeekendAdjusted bool                 `json:"isWeekendAdjusted"`
	Status            InstallmentStatus    `json:"status"`
	Currency          string               `json:"currency"`
	AmountBase        decimal.Decimal      `json:"amountBase"`
	AmountEquivEst    *decimal.Decimal     `json:"amountEquivEst,omitempty"`
	Deficit           *Deficit             `json:"deficit,omitempty"`
	Suggestions       []CoverageSuggestion `json:"suggestions,omitempty"`
}

// InstallmentID builds the derived identifier of an installment
func InstallmentID(expenseID int32, number int) string {
	return fmt.Sprintf("inst_%d_%d", expenseID, number)
}

// InstallmentPayment records that an installment was paid outside the engine
type InstallmentPayment struct {
	ExpenseID         int32     `json:"expenseId"`
	InstallmentNumber int       `json:"installmentNumber"`
	PaidAt            time.Time `json:"paidAt"`
}

// PaidSet is the set of paid installment numbers for an expense
type PaidSet map[int]bool

type InstallmentPaymentRepository interface {
	MarkPaid(workspaceID int32, payment *InstallmentPayment) (*InstallmentPayment, error)
	ListByExpense(workspaceID int32, expenseID int32) ([]*InstallmentPayment, error)
}
