package testutil

import (
	"sort"
	"sync"
	"time"

	"github.com/dafibh/fortuna/fortuna-planner/internal/domain"
	"github.com/dafibh/fortuna/fortuna-planner/internal/websocket"
)

// MockPlannedIncomeRepository is a mock implementation of domain.PlannedIncomeRepository
type MockPlannedIncomeRepository struct {
	Plans       map[int32]*domain.PlannedIncome
	ByWorkspace map[int32][]*domain.PlannedIncome
	NextID      int32
	CreateFn    func(p *domain.PlannedIncome) (*domain.PlannedIncome, error)
	ListFn      func(workspaceID int32, activeOnly *bool) ([]*domain.PlannedIncome, error)
	DeleteFn    func(workspaceID int32, id int32) error
}

// NewMockPlannedIncomeRepository creates a new MockPlannedIncomeRepository
func NewMockPlannedIncomeRepository() *MockPlannedIncomeRepository {
	return &MockPlannedIncomeRepository{
		Plans:       make(map[int32]*domain.PlannedIncome),
		ByWorkspace: make(map[int32][]*domain.PlannedIncome),
		NextID:      1,
	}
}

func (m *MockPlannedIncomeRepository) Create(p *domain.PlannedIncome) (*domain.PlannedIncome, error) {
	if m.CreateFn != nil {
		return m.CreateFn(p)
	}
	p.ID = m.NextID
	m.NextID++
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	m.AddPlan(p)
	return p, nil
}

func (m *MockPlannedIncomeRepository) GetByID(workspaceID int32, id int32) (*domain.PlannedIncome, error) {
	p, ok := m.Plans[id]
	if !ok || p.WorkspaceID != workspaceID {
		return nil, domain.ErrPlannedIncomeNotFound
	}
	return p, nil
}

func (m *MockPlannedIncomeRepository) ListByWorkspace(workspaceID int32, activeOnly *bool) ([]*domain.PlannedIncome, error) {
	if m.ListFn != nil {
		return m.ListFn(workspaceID, activeOnly)
	}
	result := []*domain.PlannedIncome{}
	for _, p := range m.ByWorkspace[workspaceID] {
		if activeOnly != nil && *activeOnly && !p.IsActive {
			continue
		}
		result = append(result, p)
	}
	return result, nil
}

func (m *MockPlannedIncomeRepository) Update(p *domain.PlannedIncome) (*domain.PlannedIncome, error) {
	existing, err := m.GetByID(p.WorkspaceID, p.ID)
	if err != nil {
		return nil, err
	}
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = time.Now()
	*existing = *p
	return existing, nil
}

func (m *MockPlannedIncomeRepository) Delete(workspaceID int32, id int32) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(workspaceID, id)
	}
	p, ok := m.Plans[id]
	if !ok || p.WorkspaceID != workspaceID {
		return domain.ErrPlannedIncomeNotFound
	}
	delete(m.Plans, id)
	plans := m.ByWorkspace[workspaceID]
	for i, existing := range plans {
		if existing.ID == id {
			m.ByWorkspace[workspaceID] = append(plans[:i], plans[i+1:]...)
			break
		}
	}
	return nil
}

// AddPlan adds a plan to the mock repository (helper for tests)
func (m *MockPlannedIncomeRepository) AddPlan(p *domain.PlannedIncome) {
	m.Plans[p.ID] = p
	m.ByWorkspace[p.WorkspaceID] = append(m.ByWorkspace[p.WorkspaceID], p)
}

// MockObservedIncomeRepository is a mock implementation of domain.ObservedIncomeRepository
type MockObservedIncomeRepository struct {
	ByWorkspace map[int32][]*domain.ObservedIncome
	NextID      int32
	CreateFn    func(o *domain.ObservedIncome) (*domain.ObservedIncome, error)
	ListFn      func(workspaceID int32) ([]*domain.ObservedIncome, error)
}

// NewMockObservedIncomeRepository creates a new MockObservedIncomeRepository
func NewMockObservedIncomeRepository() *MockObservedIncomeRepository {
	return &MockObservedIncomeRepository{
		ByWorkspace: make(map[int32][]*domain.ObservedIncome),
		NextID:      1,
	}
}

func (m *MockObservedIncomeRepository) Create(o *domain.ObservedIncome) (*domain.ObservedIncome, error) {
	if m.CreateFn != nil {
		return m.CreateFn(o)
	}
	o.ID = m.NextID
	m.NextID++
	o.CreatedAt = time.Now()
	m.AddObserved(o)
	return o, nil
}

func (m *MockObservedIncomeRepository) ListByWorkspace(workspaceID int32) ([]*domain.ObservedIncome, error) {
	if m.ListFn != nil {
		return m.ListFn(workspaceID)
	}
	result := []*domain.ObservedIncome{}
	result = append(result, m.ByWorkspace[workspaceID]...)
	return result, nil
}

func (m *MockObservedIncomeRepository) ListByDateRange(workspaceID int32, from, to time.Time) ([]*domain.ObservedIncome, error) {
	all, err := m.ListByWorkspace(workspaceID)
	if err != nil {
		return nil, err
	}
	result := []*domain.ObservedIncome{}
	for _, o := range all {
		if !o.Date.Before(from) && !o.Date.After(to) {
			result = append(result, o)
		}
	}
	return result, nil
}

// AddObserved adds a record to the mock repository (helper for tests)
func (m *MockObservedIncomeRepository) AddObserved(o *domain.ObservedIncome) {
	m.ByWorkspace[o.WorkspaceID] = append(m.ByWorkspace[o.WorkspaceID], o)
}

// MockPlannedExpenseRepository is a mock implementation of domain.PlannedExpenseRepository
type MockPlannedExpenseRepository struct {
	Plans       map[int32]*domain.PlannedExpense
	ByWorkspace map[int32][]*domain.PlannedExpense
	NextID      int32
	CreateFn    func(p *domain.PlannedExpense) (*domain.PlannedExpense, error)
	GetByIDFn   func(workspaceID int32, id int32) (*domain.PlannedExpense, error)
	ListFn      func(workspaceID int32, activeOnly *bool) ([]*domain.PlannedExpense, error)
	DeleteFn    func(workspaceID int32, id int32) error
}

// NewMockPlannedExpenseRepository creates a new MockPlannedExpenseRepository
func NewMockPlannedExpenseRepository() *MockPlannedExpenseRepository {
	return &MockPlannedExpenseRepository{
		Plans:       make(map[int32]*domain.PlannedExpense),
		ByWorkspace: make(map[int32][]*domain.PlannedExpense),
		NextID:      1,
	}
}

func (m *MockPlannedExpenseRepository) Create(p *domain.PlannedExpense) (*domain.PlannedExpense, error) {
	if m.CreateFn != nil {
		return m.CreateFn(p)
	}
	p.ID = m.NextID
	m.NextID++
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	m.AddPlan(p)
	return p, nil
}

func (m *MockPlannedExpenseRepository) GetByID(workspaceID int32, id int32) (*domain.PlannedExpense, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(workspaceID, id)
	}
	p, ok := m.Plans[id]
	if !ok || p.WorkspaceID != workspaceID {
		return nil, domain.ErrPlannedExpenseNotFound
	}
	return p, nil
}

func (m *MockPlannedExpenseRepository) ListByWorkspace(workspaceID int32, activeOnly *bool) ([]*domain.PlannedExpense, error) {
	if m.ListFn != nil {
		return m.ListFn(workspaceID, activeOnly)
	}
	result := []*domain.PlannedExpense{}
	for _, p := range m.ByWorkspace[workspaceID] {
		if activeOnly != nil && *activeOnly && !p.IsActive {
			continue
		}
		result = append(result, p)
	}
	return result, nil
}

func (m *MockPlannedExpenseRepository) Update(p *domain.PlannedExpense) (*domain.PlannedExpense, error) {
	existing, err := m.GetByID(p.WorkspaceID, p.ID)
	if err != nil {
		return nil, err
	}
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = time.Now()
	*existing = *p
	return existing, nil
}

func (m *MockPlannedExpenseRepository) Delete(workspaceID int32, id int32) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(workspaceID, id)
	}
	p, ok := m.Plans[id]
	if !ok || p.WorkspaceID != workspaceID {
		return domain.ErrPlannedExpenseNotFound
	}
	delete(m.Plans, id)
	plans := m.ByWorkspace[workspaceID]
	for i, existing := range plans {
		if existing.ID == id {
			m.ByWorkspace[workspaceID] = append(plans[:i], plans[i+1:]...)
			break
		}
	}
	return nil
}

// AddPlan adds a plan to the mock repository (helper for tests)
func (m *MockPlannedExpenseRepository) AddPlan(p *domain.PlannedExpense) {
	m.Plans[p.ID] = p
	m.ByWorkspace[p.WorkspaceID] = append(m.ByWorkspace[p.WorkspaceID], p)
}

// MockObservedExpenseRepository is a mock implementation of domain.ObservedExpenseRepository
type MockObservedExpenseRepository struct {
	ByWorkspace map[int32][]*domain.ObservedExpense
	NextID      int32
	CreateFn    func(o *domain.ObservedExpense) (*domain.ObservedExpense, error)
	ListFn      func(workspaceID int32) ([]*domain.ObservedExpense, error)
}

// NewMockObservedExpenseRepository creates a new MockObservedExpenseRepository
func NewMockObservedExpenseRepository() *MockObservedExpenseRepository {
	return &MockObservedExpenseRepository{
		ByWorkspace: make(map[int32][]*domain.ObservedExpense),
		NextID:      1,
	}
}

func (m *MockObservedExpenseRepository) Create(o *domain.ObservedExpense) (*domain.ObservedExpense, error) {
	if m.CreateFn != nil {
		return m.CreateFn(o)
	}
	o.ID = m.NextID
	m.NextID++
	o.CreatedAt = time.Now()
	m.AddObserved(o)
	return o, nil
}

func (m *MockObservedExpenseRepository) ListByWorkspace(workspaceID int32) ([]*domain.ObservedExpense, error) {
	if m.ListFn != nil {
		return m.ListFn(workspaceID)
	}
	result := []*domain.ObservedExpense{}
	result = append(result, m.ByWorkspace[workspaceID]...)
	return result, nil
}

func (m *MockObservedExpenseRepository) ListByDateRange(workspaceID int32, from, to time.Time) ([]*domain.ObservedExpense, error) {
	all, err := m.ListByWorkspace(workspaceID)
	if err != nil {
		return nil, err
	}
	result := []*domain.ObservedExpense{}
	for _, o := range all {
		if !o.Date.Before(from) && !o.Date.After(to) {
			result = append(result, o)
		}
	}
	return result, nil
}

// AddObserved adds a record to the mock repository (helper for tests)
func (m *MockObservedExpenseRepository) AddObserved(o *domain.ObservedExpense) {
	m.ByWorkspace[o.WorkspaceID] = append(m.ByWorkspace[o.WorkspaceID], o)
}

// MockCardRepository is a mock implementation of domain.CardRepository
type MockCardRepository struct {
	Cards       map[int32]*domain.Card
	ByWorkspace map[int32][]*domain.Card
	NextID      int32
	CreateFn    func(card *domain.Card) (*domain.Card, error)
	GetByIDFn   func(workspaceID int32, id int32) (*domain.Card, error)
}

// NewMockCardRepository creates a new MockCardRepository
func NewMockCardRepository() *MockCardRepository {
	return &MockCardRepository{
		Cards:       make(map[int32]*domain.Card),
		ByWorkspace: make(map[int32][]*domain.Card),
		NextID:      1,
	}
}

func (m *MockCardRepository) Create(card *domain.Card) (*domain.Card, error) {
	if m.CreateFn != nil {
		return m.CreateFn(card)
	}
	card.ID = m.NextID
	m.NextID++
	card.CreatedAt = time.Now()
	card.UpdatedAt = card.CreatedAt
	m.AddCard(card)
	return card, nil
}

func (m *MockCardRepository) GetByID(workspaceID int32, id int32) (*domain.Card, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(workspaceID, id)
	}
	card, ok := m.Cards[id]
	if !ok || card.WorkspaceID != workspaceID {
		return nil, domain.ErrCardNotFound
	}
	return card, nil
}

func (m *MockCardRepository) ListByWorkspace(workspaceID int32) ([]*domain.Card, error) {
	result := []*domain.Card{}
	result = append(result, m.ByWorkspace[workspaceID]...)
	return result, nil
}

func (m *MockCardRepository) Update(card *domain.Card) (*domain.Card, error) {
	existing, err := m.GetByID(card.WorkspaceID, card.ID)
	if err != nil {
		return nil, err
	}
	for _, other := range m.ByWorkspace[card.WorkspaceID] {
		if other.ID != card.ID && other.Name == card.Name {
			return nil, domain.ErrCardNameTaken
		}
	}
	card.CreatedAt = existing.CreatedAt
	card.UpdatedAt = time.Now()
	*existing = *card
	return existing, nil
}

func (m *MockCardRepository) Delete(workspaceID int32, id int32) error {
	if _, err := m.GetByID(workspaceID, id); err != nil {
		return err
	}
	delete(m.Cards, id)
	cards := m.ByWorkspace[workspaceID]
	for i, existing := range cards {
		if existing.ID == id {
			m.ByWorkspace[workspaceID] = append(cards[:i], cards[i+1:]...)
			break
		}
	}
	return nil
}

// AddCard adds a card to the mock repository (helper for tests)
func (m *MockCardRepository) AddCard(card *domain.Card) {
	m.Cards[card.ID] = card
	m.ByWorkspace[card.WorkspaceID] = append(m.ByWorkspace[card.WorkspaceID], card)
}

// MockInstallmentPaymentRepository is a mock implementation of domain.InstallmentPaymentRepository
type MockInstallmentPaymentRepository struct {
	// workspace ID -> expense ID -> payments
	Payments   map[int32]map[int32][]*domain.InstallmentPayment
	MarkPaidFn func(workspaceID int32, payment *domain.InstallmentPayment) (*domain.InstallmentPayment, error)
	ListFn     func(workspaceID int32, expenseID int32) ([]*domain.InstallmentPayment, error)
}

// NewMockInstallmentPaymentRepository creates a new MockInstallmentPaymentRepository
func NewMockInstallmentPaymentRepository() *MockInstallmentPaymentRepository {
	return &MockInstallmentPaymentRepository{
		Payments: make(map[int32]map[int32][]*domain.InstallmentPayment),
	}
}

// MarkPaid records a payment; marking the same installment again is a no-op
func (m *MockInstallmentPaymentRepository) MarkPaid(workspaceID int32, payment *domain.InstallmentPayment) (*domain.InstallmentPayment, error) {
	if m.MarkPaidFn != nil {
		return m.MarkPaidFn(workspaceID, payment)
	}
	if m.Payments[workspaceID] == nil {
		m.Payments[workspaceID] = make(map[int32][]*domain.InstallmentPayment)
	}
	for _, existing := range m.Payments[workspaceID][payment.ExpenseID] {
		if existing.InstallmentNumber == payment.InstallmentNumber {
			return existing, nil
		}
	}
	if payment.PaidAt.IsZero() {
		payment.PaidAt = time.Now()
	}
	m.Payments[workspaceID][payment.ExpenseID] = append(m.Payments[workspaceID][payment.ExpenseID], payment)
	return payment, nil
}

func (m *MockInstallmentPaymentRepository) ListByExpense(workspaceID int32, expenseID int32) ([]*domain.InstallmentPayment, error) {
	if m.ListFn != nil {
		return m.ListFn(workspaceID, expenseID)
	}
	result := []*domain.InstallmentPayment{}
	if byExpense, ok := m.Payments[workspaceID]; ok {
		result = append(result, byExpense[expenseID]...)
	}
	return result, nil
}

// MockSavingGoalRepository is a mock implementation of domain.SavingGoalRepository
type MockSavingGoalRepository struct {
	Goals              map[int32]*domain.SavingGoal
	ByWorkspace        map[int32][]*domain.SavingGoal
	Contributions      map[int32][]*domain.GoalContribution
	NextID             int32
	NextContributionID int32
	CreateFn           func(goal *domain.SavingGoal) (*domain.SavingGoal, error)
	ListFn             func(workspaceID int32) ([]*domain.SavingGoal, error)
	AddContributionFn  func(workspaceID int32, c *domain.GoalContribution) (*domain.SavingGoal, error)
}

// NewMockSavingGoalRepository creates a new MockSavingGoalRepository
func NewMockSavingGoalRepository() *MockSavingGoalRepository {
	return &MockSavingGoalRepository{
		Goals:              make(map[int32]*domain.SavingGoal),
		ByWorkspace:        make(map[int32][]*domain.SavingGoal),
		Contributions:      make(map[int32][]*domain.GoalContribution),
		NextID:             1,
		NextContributionID: 1,
	}
}

func (m *MockSavingGoalRepository) Create(goal *domain.SavingGoal) (*domain.SavingGoal, error) {
	if m.CreateFn != nil {
		return m.CreateFn(goal)
	}
	goal.ID = m.NextID
	m.NextID++
	goal.CreatedAt = time.Now()
	goal.UpdatedAt = goal.CreatedAt
	m.AddGoal(goal)
	return goal, nil
}

func (m *MockSavingGoalRepository) GetByID(workspaceID int32, id int32) (*domain.SavingGoal, error) {
	goal, ok := m.Goals[id]
	if !ok || goal.WorkspaceID != workspaceID {
		return nil, domain.ErrSavingGoalNotFound
	}
	return goal, nil
}

func (m *MockSavingGoalRepository) ListByWorkspace(workspaceID int32) ([]*domain.SavingGoal, error) {
	if m.ListFn != nil {
		return m.ListFn(workspaceID)
	}
	result := []*domain.SavingGoal{}
	result = append(result, m.ByWorkspace[workspaceID]...)
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// Update rewrites a goal's settings and keeps its current amount
func (m *MockSavingGoalRepository) Update(goal *domain.SavingGoal) (*domain.SavingGoal, error) {
	existing, err := m.GetByID(goal.WorkspaceID, goal.ID)
	if err != nil {
		return nil, err
	}
	goal.CurrentAmount = existing.CurrentAmount
	goal.CreatedAt = existing.CreatedAt
	goal.UpdatedAt = time.Now()
	*existing = *goal
	return existing, nil
}

// Delete removes a goal and its contributions
func (m *MockSavingGoalRepository) Delete(workspaceID int32, id int32) error {
	if _, err := m.GetByID(workspaceID, id); err != nil {
		return err
	}
	delete(m.Goals, id)
	delete(m.Contributions, id)
	goals := m.ByWorkspace[workspaceID]
	for i, existing := range goals {
		if existing.ID == id {
			m.ByWorkspace[workspaceID] = append(goals[:i], goals[i+1:]...)
			break
		}
	}
	return nil
}

func (m *MockSavingGoalRepository) AddContribution(workspaceID int32, c *domain.GoalContribution) (*domain.SavingGoal, error) {
	if m.AddContributionFn != nil {
		return m.AddContributionFn(workspaceID, c)
	}
	goal, err := m.GetByID(workspaceID, c.GoalID)
	if err != nil {
		return nil, err
	}
	c.ID = m.NextContributionID
	m.NextContributionID++
	c.CreatedAt = time.Now()
	m.Contributions[c.GoalID] = append(m.Contributions[c.GoalID], c)
	goal.CurrentAmount = goal.CurrentAmount.Add(c.Amount)
	goal.UpdatedAt = c.CreatedAt
	return goal, nil
}

func (m *MockSavingGoalRepository) ListContributions(workspaceID int32, goalID int32) ([]*domain.GoalContribution, error) {
	if _, err := m.GetByID(workspaceID, goalID); err != nil {
		return nil, err
	}
	result := []*domain.GoalContribution{}
	result = append(result, m.Contributions[goalID]...)
	return result, nil
}

// AddGoal adds a goal to the mock repository (helper for tests)
func (m *MockSavingGoalRepository) AddGoal(goal *domain.SavingGoal) {
	m.Goals[goal.ID] = goal
	m.ByWorkspace[goal.WorkspaceID] = append(m.ByWorkspace[goal.WorkspaceID], goal)
}

// MockAccountRepository is a mock implementation of domain.AccountRepository
type MockAccountRepository struct {
	Accounts    map[int32]*domain.Account
	ByWorkspace map[int32][]*domain.Account
	NextID      int32
	ListFn      func(workspaceID int32, includeArchived bool) ([]*domain.Account, error)
}

// NewMockAccountRepository creates a new MockAccountRepository
func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		Accounts:    make(map[int32]*domain.Account),
		ByWorkspace: make(map[int32][]*domain.Account),
		NextID:      1,
	}
}

func (m *MockAccountRepository) Create(account *domain.Account) (*domain.Account, error) {
	for _, existing := range m.ByWorkspace[account.WorkspaceID] {
		if !existing.IsArchived() && existing.Name == account.Name {
			return nil, domain.ErrAccountNameTaken
		}
	}
	account.ID = m.NextID
	m.NextID++
	account.CreatedAt = time.Now()
	account.UpdatedAt = account.CreatedAt
	m.AddAccount(account)
	return account, nil
}

func (m *MockAccountRepository) GetByID(workspaceID int32, id int32) (*domain.Account, error) {
	account, ok := m.Accounts[id]
	if !ok || account.WorkspaceID != workspaceID || account.IsArchived() {
		return nil, domain.ErrAccountNotFound
	}
	return account, nil
}

func (m *MockAccountRepository) ListByWorkspace(workspaceID int32, includeArchived bool) ([]*domain.Account, error) {
	if m.ListFn != nil {
		return m.ListFn(workspaceID, includeArchived)
	}
	result := []*domain.Account{}
	for _, account := range m.ByWorkspace[workspaceID] {
		if includeArchived || !account.IsArchived() {
			result = append(result, account)
		}
	}
	return result, nil
}

func (m *MockAccountRepository) Update(account *domain.Account) (*domain.Account, error) {
	existing, err := m.GetByID(account.WorkspaceID, account.ID)
	if err != nil {
		return nil, err
	}
	account.CreatedAt = existing.CreatedAt
	account.UpdatedAt = time.Now()
	*existing = *account
	return existing, nil
}

func (m *MockAccountRepository) SoftDelete(workspaceID int32, id int32) error {
	account, err := m.GetByID(workspaceID, id)
	if err != nil {
		return err
	}
	now := time.Now()
	account.DeletedAt = &now
	return nil
}

// AddAccount adds an account to the mock repository (helper for tests)
func (m *MockAccountRepository) AddAccount(account *domain.Account) {
	m.Accounts[account.ID] = account
	m.ByWorkspace[account.WorkspaceID] = append(m.ByWorkspace[account.WorkspaceID], account)
}

// PublishedEvent is one recorded Publish call
type PublishedEvent struct {
	WorkspaceID int32
	Event       websocket.Event
	// Broadcast is set for PublishAll calls
	Broadcast bool
}

// MockEventPublisher records published events
type MockEventPublisher struct {
	mu     sync.Mutex
	Events []PublishedEvent
}

// NewMockEventPublisher creates a new MockEventPublisher
func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{}
}

func (m *MockEventPublisher) Publish(workspaceID int32, event websocket.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, PublishedEvent{WorkspaceID: workspaceID, Event: event})
}

func (m *MockEventPublisher) PublishAll(event websocket.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, PublishedEvent{Event: event, Broadcast: true})
}

// Types returns the recorded event types in order
func (m *MockEventPublisher) Types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]string, len(m.Events))
	for i, e := range m.Events {
		types[i] = e.Event.Type
	}
	return types
}
