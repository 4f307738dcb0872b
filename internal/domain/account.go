package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrAccountNotFound        = errors.New("account not found")
	ErrAccountNameEmpty       = errors.New("account name is required")
	ErrAccountNameTooLong     = errors.New("account name must be 100 characters or less")
	ErrAccountTypeInvalid     = errors.New("account type must be cash, bank, ewallet or crypto")
	ErrLiquidityTierInvalid   = errors.New("liquidity tier must be operational, buffer, savings or untouchable")
	ErrAccountCurrencyMissing = errors.New("account must support at least one currency")
	ErrAccountBalanceInvalid  = errors.New("balances must be non-negative and in a supported currency")
	ErrAccountNameTaken       = errors.New("an account with this name already exists")
)

const MaxAccountNameLength = 100

type AccountType string

const (
	AccountTypeCash    AccountType = "cash"
	AccountTypeBank    AccountType = "bank"
	AccountTypeEwallet AccountType = "ewallet"
	AccountTypeCrypto  AccountType = "crypto"
)

// LiquidityTier says how readily an account's money can be spent
type LiquidityTier string

const (
	LiquidityOperational LiquidityTier = "operational"
	LiquidityBuffer      LiquidityTier = "buffer"
	LiquiditySavings     LiquidityTier = "savings"
	LiquidityUntouchable LiquidityTier = "untouchable"
)

// IsSpendable reports whether balances in this tier can cover upcoming payments
func (t LiquidityTier) IsSpendable() bool {
	return t == LiquidityOperational || t == LiquidityBuffer
}

// Account is a place money is held, with a balance per supported currency
type Account struct {
	ID               int32                      `json:"id"`
	WorkspaceID      int32                      `json:"workspaceId"`
	Name             string                     `json:"name"`
	Type             AccountType                `json:"type"`
	Country          string                     `json:"country"`
	Currencies       []string                   `json:"currencies"`
	Balances         map[string]decimal.Decimal `json:"balances"`
	LiquidityTier    LiquidityTier              `json:"liquidityTier"`
	AllowAutoSuggest bool                       `json:"allowAutoSuggest"`
	Notes            *string                    `json:"notes,omitempty"`
	CreatedAt        time.Time                  `json:"createdAt"`
	UpdatedAt        time.Time                  `json:"updatedAt"`
	DeletedAt        *time.Time                 `json:"deletedAt,omitempty"`
}

func (a *Account) Validate() error {
	if a.Name == "" {
		return ErrAccountNameEmpty
	}
	if len(a.Name) > MaxAccountNameLength {
		return ErrAccountNameTooLong
	}
	switch a.Type {
	case AccountTypeCash, AccountTypeBank, AccountTypeEwallet, AccountTypeCrypto:
	default:
		return ErrAccountTypeInvalid
	}
	switch a.LiquidityTier {
	case LiquidityOperational, LiquidityBuffer, LiquiditySavings, LiquidityUntouchable:
	default:
		return ErrLiquidityTierInvalid
	}
	if len(a.Currencies) == 0 {
		return ErrAccountCurrencyMissing
	}
	for code, amount := range a.Balances {
		if amount.IsNegative() || !a.Supports(code) {
			return ErrAccountBalanceInvalid
		}
	}
	return nil
}

// Supports reports whether the account holds the given currency
func (a *Account) Supports(currency string) bool {
	for _, c := range a.Currencies {
		if c == currency {
			return true
		}
	}
	return false
}

// IsArchived returns true if the account has been soft-deleted
func (a *Account) IsArchived() bool {
	return a.DeletedAt != nil
}

type AccountRepository interface {
	Create(account *Account) (*Account, error)
	GetByID(workspaceID int32, id int32) (*Account, error)
	ListByWorkspace(workspaceID int32, includeArchived bool) ([]*Account, error)
	Update(account *Account) (*Account, error)
	// SoftDelete archives the account; archived accounts stop counting as liquidity
	SoftDelete(workspaceID int32, id int32) error
}
