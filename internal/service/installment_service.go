package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dafibh/fortuna/fortuna-planner/internal/domain"
	"github.com/dafibh/fortuna/fortuna-planner/internal/engine"
	"github.com/dafibh/fortuna/fortuna-planner/internal/websocket"
	"github.com/shopspring/decimal"
)

// InstallmentService derives repayment schedules for credit purchases
// and records installments paid outside the planner
type InstallmentService struct {
	expenseRepo    domain.PlannedExpenseRepository
	cardRepo       domain.CardRepository
	paymentRepo    domain.InstallmentPaymentRepository
	accountRepo    domain.AccountRepository
	rates          RateProvider
	opts           engine.InstallmentOptions
	now            func() time.Time
	eventPublisher websocket.EventPublisher
}

// NewInstallmentService creates a new InstallmentService.
// A workspace with active accounts checks coverage against their spendable
// balances and suggests routes from its auto-suggest accounts. Otherwise
// opts.Checker applies, with the stablecoin and manual routes for the
// reporting currency.
func NewInstallmentService(
	expenseRepo domain.PlannedExpenseRepository,
	cardRepo domain.CardRepository,
	paymentRepo domain.InstallmentPaymentRepository,
	accountRepo domain.AccountRepository,
	rates RateProvider,
	opts engine.InstallmentOptions,
) *InstallmentService {
	return &InstallmentService{
		expenseRepo: expenseRepo,
		cardRepo:    cardRepo,
		paymentRepo: paymentRepo,
		accountRepo: accountRepo,
		rates:       rates,
		opts:        opts,
		now:         time.Now,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *InstallmentService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

// SetClock replaces the wall clock, used by tests
func (s *InstallmentService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *InstallmentService) publishEvent(workspaceID int32, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(workspaceID, event)
	}
}

// Schedule returns the installments of a credit expense
func (s *InstallmentService) Schedule(ctx context.Context, workspaceID int32, expenseID int32) ([]domain.ExpenseInstallment, error) {
	expense, err := s.creditExpense(workspaceID, expenseID)
	if err != nil {
		return nil, err
	}
	return s.schedule(ctx, workspaceID, expense)
}

// MarkPaid records installment number of an expense as paid and returns
// the recomputed installment
func (s *InstallmentService) MarkPaid(ctx context.Context, workspaceID int32, expenseID int32, number int) (*domain.ExpenseInstallment, error) {
	expense, err := s.creditExpense(workspaceID, expenseID)
	if err != nil {
		return nil, err
	}
	if number < 1 || number > *expense.NInstallments {
		return nil, domain.ErrInstallmentNumberInvalid
	}

	paid, err := s.paidSet(workspaceID, expenseID)
	if err != nil {
		return nil, err
	}
	if paid[number] {
		return nil, domain.ErrInstallmentAlreadyPaid
	}

	if _, err := s.paymentRepo.MarkPaid(workspaceID, &domain.InstallmentPayment{
		ExpenseID:         expenseID,
		InstallmentNumber: number,
		PaidAt:            s.now().UTC(),
	}); err != nil {
		return nil, fmt.Errorf("mark installment paid: %w", err)
	}

	schedule, err := s.schedule(ctx, workspaceID, expense)
	if err != nil {
		return nil, err
	}
	inst := schedule[number-1]

	s.publishEvent(workspaceID, websocket.InstallmentPaid(inst))
	return &inst, nil
}

func (s *InstallmentService) creditExpense(workspaceID int32, expenseID int32) (*domain.PlannedExpense, error) {
	expense, err := s.expenseRepo.GetByID(workspaceID, expenseID)
	if err != nil {
		return nil, err
	}
	if expense.Kind != domain.ExpenseKindCredit || expense.NInstallments == nil {
		return nil, domain.ErrNotCreditExpense
	}
	return expense, nil
}

func (s *InstallmentService) paidSet(workspaceID int32, expenseID int32) (domain.PaidSet, error) {
	payments, err := s.paymentRepo.ListByExpense(workspaceID, expenseID)
	if err != nil {
		return nil, fmt.Errorf("list installment payments: %w", err)
	}
	paid := make(domain.PaidSet, len(payments))
	for _, p := range payments {
		paid[p.InstallmentNumber] = true
	}
	return paid, nil
}

func (s *InstallmentService) schedule(ctx context.Context, workspaceID int32, expense *domain.PlannedExpense) ([]domain.ExpenseInstallment, error) {
	var card *domain.Card
	if expense.CardID != nil {
		c, err := s.cardRepo.GetByID(workspaceID, *expense.CardID)
		switch {
		case err == nil:
			card = c
		case errors.Is(err, domain.ErrCardNotFound):
			// a removed card falls back to the default payment day
		default:
			return nil, fmt.Errorf("load card: %w", err)
		}
	}

	paid, err := s.paidSet(workspaceID, expense.ID)
	if err != nil {
		return nil, err
	}

	n := s.rates.Normalizer()
	opts, err := s.coverage(workspaceID, n.Reporting)
	if err != nil {
		return nil, err
	}
	return engine.ScheduleInstallments(ctx, expense, card, paid, s.now(), n, opts)
}

func (s *InstallmentService) coverage(workspaceID int32, reporting string) (engine.InstallmentOptions, error) {
	opts := s.opts
	accounts, err := s.accountRepo.ListByWorkspace(workspaceID, false)
	if err != nil {
		return opts, fmt.Errorf("list accounts: %w", err)
	}
	if len(accounts) > 0 {
		opts.Checker = engine.NewAccountLiquidity(accounts)
		opts.Routes = engine.AccountRoutes(accounts)
		return opts, nil
	}
	if opts.Routes == nil {
		opts.Routes = engine.DefaultCoverageRoutes(reporting)
	}
	return opts, nil
}

// CardCycle returns the current and next billing dates of a card with the
// unpaid installments charged to it
func (s *InstallmentService) CardCycle(ctx context.Context, workspaceID int32, cardID int32) (*domain.CardCycle, error) {
	card, err := s.cardRepo.GetByID(workspaceID, cardID)
	if err != nil {
		return nil, err
	}

	activeOnly := true
	plans, err := s.expenseRepo.ListByWorkspace(workspaceID, &activeOnly)
	if err != nil {
		return nil, fmt.Errorf("list planned expenses: %w", err)
	}
	expenses := make([]*domain.PlannedExpense, 0, len(plans))
	paid := make(map[int32]domain.PaidSet)
	for _, e := range plans {
		if e.Kind != domain.ExpenseKindCredit || e.CardID == nil || *e.CardID != card.ID {
			continue
		}
		set, err := s.paidSet(workspaceID, e.ID)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
		paid[e.ID] = set
	}

	cycle, err := engine.ComputeCardCycle(ctx, card, expenses, paid, s.now(), s.opts.DefaultPaymentDay)
	if err != nil {
		return nil, err
	}
	return &cycle, nil
}

// PreviewInput describes a purchase to preview on a card
type PreviewInput struct {
	Amount       decimal.Decimal
	Currency     string
	Installments int
}

// PreviewInstallments shows the installments a purchase made today would have
// on a card. Nothing is stored.
func (s *InstallmentService) PreviewInstallments(ctx context.Context, workspaceID int32, cardID int32, input PreviewInput) ([]domain.InstallmentPreview, error) {
	card, err := s.cardRepo.GetByID(workspaceID, cardID)
	if err != nil {
		return nil, err
	}
	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	return engine.PreviewInstallments(ctx, card, input.Amount, currency, input.Installments, s.now(), s.opts.DefaultPaymentDay)
}
