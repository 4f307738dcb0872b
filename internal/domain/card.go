package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrCardNotFound            = errors.New("card not found")
	ErrCardNameEmpty           = errors.New("card name is required")
	ErrCardNameTooLong         = errors.New("card name must be 100 characters or less")
	ErrCardTypeInvalid         = errors.New("card type must be credit or debit")
	ErrCardDayInvalid          = errors.New("card cutoff and payment days must be between 1 and 31")
	ErrCardCurrencyMissing     = errors.New("card must support at least one currency")
	ErrCardNameTaken           = errors.New("a card with this name already exists")
	ErrCardInUse               = errors.New("card is referenced by planned expenses")
	ErrCardCurrencyUnsupported = errors.New("currency is not supported by the card")
)

// DefaultPaymentDay is used when a card has no payment day configured
const DefaultPaymentDay = 10

type CardType string

const (
	CardTypeCredit CardType = "credit"
	CardTypeDebit  CardType = "debit"
)

type Card struct {
	ID          int32     `json:"id"`
	WorkspaceID int32     `json:"workspaceId"`
	Name        string    `json:"name"`
	Type        CardType  `json:"type"`
	Currencies  []string  `json:"currencies"`
	CutoffDay   *int      `json:"cutoffDay,omitempty"`
	PaymentDay  *int      `json:"paymentDay,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (c *Card) Validate() error {
	if c.Name == "" {
		return ErrCardNameEmpty
	}
	if len(c.Name) > 100 {
		return ErrCardNameTooLong
	}
	if c.Type != CardTypeCredit && c.Type != CardTypeDebit {
		return ErrCardTypeInvalid
	}
	if len(c.Currencies) == 0 {
		return ErrCardCurrencyMissing
	}
	for _, d := range []*int{c.CutoffDay, c.PaymentDay} {
		if d != nil && (*d < 1 || *d > 31) {
			return ErrCardDayInvalid
		}
	}
	return nil
}

// EffectivePaymentDay returns the card's payment day or fallback when unset
func (c *Card) EffectivePaymentDay(fallback int) int {
	if c != nil && c.PaymentDay != nil {
		return *c.PaymentDay
	}
	if fallback < 1 {
		return DefaultPaymentDay
	}
	return fallback
}

// Supports reports whether the card can be charged in the given currency
func (c *Card) Supports(currency string) bool {
	for _, code := range c.Currencies {
		if code == currency {
			return true
		}
	}
	return false
}

// CardCycle is the billing position of a credit card as of a date.
// Cutoffs are nil when the card has no cutoff day.
type CardCycle struct {
	CurrentCutoff  *time.Time `json:"currentCutoff,omitempty"`
	CurrentPayment time.Time  `json:"currentPayment"`
	NextCutoff     *time.Time `json:"nextCutoff,omitempty"`
	NextPayment    time.Time  `json:"nextPayment"`
	// CycleConsumption sums unpaid installments due by the current payment, per currency
	CycleConsumption map[string]decimal.Decimal `json:"cycleConsumption"`
	// FutureInstallments sums unpaid installments due after it
	FutureInstallments map[string]decimal.Decimal `json:"futureInstallments"`
}

// InstallmentPreview is one installment of a purchase that has not been recorded yet
type InstallmentPreview struct {
	InstallmentNumber int             `json:"installmentNumber"`
	DueDate           time.Time       `json:"dueDate"`
	Amount            decimal.Decimal `json:"amount"`
	IsWeekendAdjusted bool            `json:"isWeekendAdjusted"`
}

type CardRepository interface {
	Create(card *Card) (*Card, error)
	GetByID(workspaceID int32, id int32) (*Card, error)
	ListByWorkspace(workspaceID int32) ([]*Card, error)
	Update(card *Card) (*Card, error)
	Delete(workspaceID int32, id int32) error
}
