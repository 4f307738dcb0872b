package service

import (
	"fmt"
	"strings"

	"github.com/dafibh/fortuna/fortuna-planner/internal/domain"
	"github.com/dafibh/fortuna/fortuna-planner/internal/websocket"
)

// CardService handles the cards credit purchases are charged to
type CardService struct {
	cardRepo       domain.CardRepository
	expenseRepo    domain.PlannedExpenseRepository
	eventPublisher websocket.EventPublisher
}

// NewCardService creates a new CardService
func NewCardService(cardRepo domain.CardRepository, expenseRepo domain.PlannedExpenseRepository) *CardService {
	return &CardService{cardRepo: cardRepo, expenseRepo: expenseRepo}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *CardService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *CardService) publishEvent(workspaceID int32, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(workspaceID, event)
	}
}

// CreateCardInput holds the input for creating or updating a card
type CreateCardInput struct {
	Name       string
	Type       domain.CardType
	Currencies []string
	CutoffDay  *int
	PaymentDay *int
}

func (in CreateCardInput) card(workspaceID int32) *domain.Card {
	return &domain.Card{
		WorkspaceID: workspaceID,
		Name:        strings.TrimSpace(in.Name),
		Type:        in.Type,
		Currencies:  normalizeCurrencies(in.Currencies),
		CutoffDay:   in.CutoffDay,
		PaymentDay:  in.PaymentDay,
	}
}

// CreateCard validates and stores a card. Currency codes are upper-cased and de-duplicated.
func (s *CardService) CreateCard(workspaceID int32, input CreateCardInput) (*domain.Card, error) {
	card := input.card(workspaceID)
	if err := card.Validate(); err != nil {
		return nil, err
	}

	created, err := s.cardRepo.Create(card)
	if err != nil {
		return nil, fmt.Errorf("create card: %w", err)
	}

	s.publishEvent(workspaceID, websocket.CardCreated(created))
	return created, nil
}

// ListCards returns the workspace's cards
func (s *CardService) ListCards(workspaceID int32) ([]*domain.Card, error) {
	return s.cardRepo.ListByWorkspace(workspaceID)
}

// UpdateCard replaces every field of a card.
// A card charged with planned expenses cannot become a debit card.
func (s *CardService) UpdateCard(workspaceID int32, id int32, input CreateCardInput) (*domain.Card, error) {
	existing, err := s.cardRepo.GetByID(workspaceID, id)
	if err != nil {
		return nil, err
	}

	card := input.card(workspaceID)
	card.ID = existing.ID
	card.CreatedAt = existing.CreatedAt
	if err := card.Validate(); err != nil {
		return nil, err
	}
	if existing.Type == domain.CardTypeCredit && card.Type != domain.CardTypeCredit {
		inUse, err := s.inUse(workspaceID, id)
		if err != nil {
			return nil, err
		}
		if inUse {
			return nil, domain.ErrCardInUse
		}
	}

	updated, err := s.cardRepo.Update(card)
	if err != nil {
		return nil, fmt.Errorf("update card: %w", err)
	}

	s.publishEvent(workspaceID, websocket.CardUpdated(updated))
	return updated, nil
}

// DeleteCard removes a card no planned expense is charged to
func (s *CardService) DeleteCard(workspaceID int32, id int32) error {
	if _, err := s.cardRepo.GetByID(workspaceID, id); err != nil {
		return err
	}
	inUse, err := s.inUse(workspaceID, id)
	if err != nil {
		return err
	}
	if inUse {
		return domain.ErrCardInUse
	}
	if err := s.cardRepo.Delete(workspaceID, id); err != nil {
		return err
	}

	s.publishEvent(workspaceID, websocket.CardDeleted(map[string]interface{}{"id": id}))
	return nil
}

// inUse reports whether any planned expense, active or not, is charged to the card
func (s *CardService) inUse(workspaceID int32, cardID int32) (bool, error) {
	expenses, err := s.expenseRepo.ListByWorkspace(workspaceID, nil)
	if err != nil {
		return false, fmt.Errorf("list planned expenses: %w", err)
	}
	for _, e := range expenses {
		if e.CardID != nil && *e.CardID == cardID {
			return true, nil
		}
	}
	return false, nil
}

// normalizeCurrencies upper-cases codes, dropping blanks and duplicates
func normalizeCurrencies(codes []string) []string {
	seen := make(map[string]bool, len(codes))
	result := make([]string, 0, len(codes))
	for _, c := range codes {
		code := strings.ToUpper(strings.TrimSpace(c))
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		result = append(result, code)
	}
	return result
}
