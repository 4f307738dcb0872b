package service

import (
	"fmt"
	"strings"

	"github.com/dafibh/fortuna/fortuna-planner/internal/domain"
	"github.com/dafibh/fortuna/fortuna-planner/internal/websocket"
	"github.com/shopspring/decimal"
)

// AccountService handles the accounts whose balances back upcoming payments
type AccountService struct {
	accountRepo    domain.AccountRepository
	eventPublisher websocket.EventPublisher
}

// NewAccountService creates a new AccountService
func NewAccountService(accountRepo domain.AccountRepository) *AccountService {
	return &AccountService{accountRepo: accountRepo}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *AccountService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *AccountService) publishEvent(workspaceID int32, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(workspaceID, event)
	}
}

// AccountInput holds the input for creating or updating an account
type AccountInput struct {
	Name             string
	Type             domain.AccountType
	Country          string
	Currencies       []string
	Balances         map[string]decimal.Decimal
	LiquidityTier    domain.LiquidityTier
	AllowAutoSuggest bool
	Notes            *string
}

// account builds the account an input describes. Currency codes and
// balance keys are upper-cased.
func (in AccountInput) account(workspaceID int32) *domain.Account {
	balances := make(map[string]decimal.Decimal, len(in.Balances))
	for code, amount := range in.Balances {
		code = strings.ToUpper(strings.TrimSpace(code))
		balances[code] = balances[code].Add(amount)
	}
	return &domain.Account{
		WorkspaceID:      workspaceID,
		Name:             strings.TrimSpace(in.Name),
		Type:             in.Type,
		Country:          strings.TrimSpace(in.Country),
		Currencies:       normalizeCurrencies(in.Currencies),
		Balances:         balances,
		LiquidityTier:    in.LiquidityTier,
		AllowAutoSuggest: in.AllowAutoSuggest,
		Notes:            in.Notes,
	}
}

// CreateAccount validates and stores an account
func (s *AccountService) CreateAccount(workspaceID int32, input AccountInput) (*domain.Account, error) {
	account := input.account(workspaceID)
	if err := account.Validate(); err != nil {
		return nil, err
	}

	created, err := s.accountRepo.Create(account)
	if err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}

	s.publishEvent(workspaceID, websocket.AccountCreated(created))
	return created, nil
}

// GetAccounts retrieves the accounts of a workspace, archived ones on request
func (s *AccountService) GetAccounts(workspaceID int32, includeArchived bool) ([]*domain.Account, error) {
	return s.accountRepo.ListByWorkspace(workspaceID, includeArchived)
}

// GetAccountByID retrieves an active account by ID within a workspace
func (s *AccountService) GetAccountByID(workspaceID int32, id int32) (*domain.Account, error) {
	return s.accountRepo.GetByID(workspaceID, id)
}

// UpdateAccount replaces every field of an active account
func (s *AccountService) UpdateAccount(workspaceID int32, id int32, input AccountInput) (*domain.Account, error) {
	existing, err := s.accountRepo.GetByID(workspaceID, id)
	if err != nil {
		return nil, err
	}

	account := input.account(workspaceID)
	account.ID = existing.ID
	account.CreatedAt = existing.CreatedAt
	if err := account.Validate(); err != nil {
		return nil, err
	}

	updated, err := s.accountRepo.Update(account)
	if err != nil {
		return nil, fmt.Errorf("update account: %w", err)
	}

	s.publishEvent(workspaceID, websocket.AccountUpdated(updated))
	return updated, nil
}

// DeleteAccount archives an account; it stops backing coverage checks
func (s *AccountService) DeleteAccount(workspaceID int32, id int32) error {
	// SoftDelete checks existence and archives in one statement
	if err := s.accountRepo.SoftDelete(workspaceID, id); err != nil {
		return err
	}

	s.publishEvent(workspaceID, websocket.AccountDeleted(map[string]interface{}{"id": id}))
	return nil
}
