package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/dafibh/fortuna/fortuna-planner/internal/domain"
	"github.com/dafibh/fortuna/fortuna-planner/internal/util"
	"github.com/shopspring/decimal"
)

// datasetWorkspace is the workspace every record of a dataset file belongs to
const datasetWorkspace int32 = 1

// datasetFile is the on-disk TOML layout. Amounts are strings so they
// survive without float rounding.
type datasetFile struct {
	ReportingCurrency string            `toml:"reporting_currency"`
	Rates             map[string]string `toml:"rates"`
	DefaultPaymentDay int               `toml:"default_payment_day"`

	PlannedIncomes   []plannedIncomeRow   `toml:"planned_incomes"`
	ObservedIncomes  []observedIncomeRow  `toml:"observed_incomes"`
	PlannedExpenses  []plannedExpenseRow  `toml:"planned_expenses"`
	ObservedExpenses []observedExpenseRow `toml:"observed_expenses"`
	Cards            []cardRow            `toml:"cards"`
	Payments         []paymentRow         `toml:"installment_payments"`
	Goals            []goalRow            `toml:"goals"`
	Accounts         []accountRow         `toml:"accounts"`
}

type recurrenceRow struct {
	Type      string `toml:"type"`
	DayRule   string `toml:"day_rule"`
	AnchorDay *int   `toml:"anchor_day"`
}

type bandRow struct {
	Min string `toml:"min"`
	Max string `toml:"max"`
}

type plannedIncomeRow struct {
	ID         int32          `toml:"id"`
	Source     string         `toml:"source"`
	Category   string         `toml:"category"`
	Currency   string         `toml:"currency"`
	Amount     string         `toml:"amount"`
	Band       *bandRow       `toml:"band"`
	Confidence string         `toml:"confidence"`
	Recurrence *recurrenceRow `toml:"recurrence"`
	Inactive   bool           `toml:"inactive"`
}

type observedIncomeRow struct {
	Source    string `toml:"source"`
	Category  string `toml:"category"`
	Currency  string `toml:"currency"`
	Amount    string `toml:"amount"`
	Date      string `toml:"date"`
	PlannedID *int32 `toml:"planned_id"`
}

type plannedExpenseRow struct {
	ID            int32          `toml:"id"`
	Kind          string         `toml:"kind"`
	CardID        *int32         `toml:"card_id"`
	Category      string         `toml:"category"`
	Concept       string         `toml:"concept"`
	Currency      string         `toml:"currency"`
	Amount        string         `toml:"amount"`
	Band          *bandRow       `toml:"band"`
	Confidence    string         `toml:"confidence"`
	Recurrence    *recurrenceRow `toml:"recurrence"`
	Date          string         `toml:"date"`
	NInstallments *int           `toml:"n_installments"`
	Inactive      bool           `toml:"inactive"`
}

type observedExpenseRow struct {
	Category  string `toml:"category"`
	Concept   string `toml:"concept"`
	Currency  string `toml:"currency"`
	Amount    string `toml:"amount"`
	Date      string `toml:"date"`
	PlannedID *int32 `toml:"planned_id"`
}

type cardRow struct {
	ID         int32    `toml:"id"`
	Name       string   `toml:"name"`
	Type       string   `toml:"type"`
	Currencies []string `toml:"currencies"`
	CutoffDay  *int     `toml:"cutoff_day"`
	PaymentDay *int     `toml:"payment_day"`
}

type paymentRow struct {
	ExpenseID         int32 `toml:"expense_id"`
	InstallmentNumber int   `toml:"installment_number"`
}

type accountRow struct {
	Name             string            `toml:"name"`
	Type             string            `toml:"type"`
	Currencies       []string          `toml:"currencies"`
	Balances         map[string]string `toml:"balances"`
	LiquidityTier    string            `toml:"liquidity_tier"`
	AllowAutoSuggest bool              `toml:"allow_auto_suggest"`
}

type goalRow struct {
	ID       int32  `toml:"id"`
	Name     string `toml:"name"`
	Currency string `toml:"base_currency"`
	Target   string `toml:"target"`
	Current  string `toml:"current"`
	Priority string `toml:"priority"`
	DueDate  string `toml:"due_date"`
	Category string `toml:"category"`
}

// Dataset is a validated planning snapshot loaded from a TOML file
type Dataset struct {
	ReportingCurrency string
	Rates             map[string]decimal.Decimal
	DefaultPaymentDay int

	PlannedIncomes   []*domain.PlannedIncome
	ObservedIncomes  []*domain.ObservedIncome
	PlannedExpenses  []*domain.PlannedExpense
	ObservedExpenses []*domain.ObservedExpense
	Cards            map[int32]*domain.Card
	Paid             map[int32]domain.PaidSet
	Goals            []*domain.SavingGoal
	// Accounts back the coverage check of installment schedules
	Accounts []*domain.Account
}

// LoadDataset reads and validates a dataset file
func LoadDataset(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	return ParseDataset(data)
}

// ParseDataset decodes and validates TOML dataset content
func ParseDataset(data []byte) (*Dataset, error) {
	var f datasetFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	return f.build()
}

func (f *datasetFile) build() (*Dataset, error) {
	ds := &Dataset{
		ReportingCurrency: strings.ToUpper(strings.TrimSpace(f.ReportingCurrency)),
		DefaultPaymentDay: f.DefaultPaymentDay,
		Cards:             make(map[int32]*domain.Card),
		Paid:              make(map[int32]domain.PaidSet),
	}
	if ds.ReportingCurrency == "" {
		ds.ReportingCurrency = "ARS"
	}
	if ds.DefaultPaymentDay == 0 {
		ds.DefaultPaymentDay = domain.DefaultPaymentDay
	}

	var err error
	if ds.Rates, err = parseAmountTable(f.Rates); err != nil {
		return nil, fmt.Errorf("rates: %w", err)
	}

	for i, row := range f.PlannedIncomes {
		plan, err := row.toDomain()
		if err != nil {
			return nil, fmt.Errorf("planned_incomes[%d]: %w", i, err)
		}
		ds.PlannedIncomes = append(ds.PlannedIncomes, plan)
	}
	for i, row := range f.ObservedIncomes {
		o, err := row.toDomain()
		if err != nil {
			return nil, fmt.Errorf("observed_incomes[%d]: %w", i, err)
		}
		ds.ObservedIncomes = append(ds.ObservedIncomes, o)
	}
	for i, row := range f.Cards {
		card, err := row.toDomain()
		if err != nil {
			return nil, fmt.Errorf("cards[%d]: %w", i, err)
		}
		ds.Cards[card.ID] = card
	}
	for i, row := range f.PlannedExpenses {
		plan, err := row.toDomain()
		if err != nil {
			return nil, fmt.Errorf("planned_expenses[%d]: %w", i, err)
		}
		if plan.Kind == domain.ExpenseKindCredit {
			card, ok := ds.Cards[*plan.CardID]
			if !ok {
				return nil, fmt.Errorf("planned_expenses[%d]: %w", i, domain.ErrCardNotFound)
			}
			if card.Type != domain.CardTypeCredit {
				return nil, fmt.Errorf("planned_expenses[%d]: %w", i, domain.ErrExpenseCardNotCredit)
			}
		}
		ds.PlannedExpenses = append(ds.PlannedExpenses, plan)
	}
	for i, row := range f.ObservedExpenses {
		o, err := row.toDomain()
		if err != nil {
			return nil, fmt.Errorf("observed_expenses[%d]: %w", i, err)
		}
		ds.ObservedExpenses = append(ds.ObservedExpenses, o)
	}
	for _, p := range f.Payments {
		if ds.Paid[p.ExpenseID] == nil {
			ds.Paid[p.ExpenseID] = domain.PaidSet{}
		}
		ds.Paid[p.ExpenseID][p.InstallmentNumber] = true
	}
	for i, row := range f.Goals {
		goal, err := row.toDomain()
		if err != nil {
			return nil, fmt.Errorf("goals[%d]: %w", i, err)
		}
		ds.Goals = append(ds.Goals, goal)
	}
	for i, row := range f.Accounts {
		account, err := row.toDomain(int32(i + 1))
		if err != nil {
			return nil, fmt.Errorf("accounts[%d]: %w", i, err)
		}
		ds.Accounts = append(ds.Accounts, account)
	}

	return ds, nil
}

// ExpenseByID finds a planned expense of the dataset
func (ds *Dataset) ExpenseByID(id int32) (*domain.PlannedExpense, error) {
	for _, p := range ds.PlannedExpenses {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, domain.ErrPlannedExpenseNotFound
}

func parseAmountTable(raw map[string]string) (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal, len(raw))
	for code, value := range raw {
		d, err := decimal.NewFromString(strings.TrimSpace(value))
		if err != nil || !d.IsPositive() {
			return nil, fmt.Errorf("%w: %s=%q", domain.ErrRateInvalid, code, value)
		}
		out[strings.ToUpper(strings.TrimSpace(code))] = d
	}
	return out, nil
}

func parseOptional(field, raw string) (*decimal.Decimal, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", field, domain.ErrAmountInvalid)
	}
	return &d, nil
}

func parseRequired(field, raw string) (decimal.Decimal, error) {
	d, err := parseOptional(field, raw)
	if err != nil {
		return decimal.Zero, err
	}
	if d == nil {
		return decimal.Zero, fmt.Errorf("%s: %w", field, domain.ErrAmountInvalid)
	}
	return *d, nil
}

func parseOptionalDate(field, raw string) (*time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	d, err := util.ParseDate(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", field, domain.ErrInvalidInput, err)
	}
	return &d, nil
}

func (b *bandRow) toDomain() (*domain.VariableBand, error) {
	if b == nil {
		return nil, nil
	}
	lo, err := parseRequired("band.min", b.Min)
	if err != nil {
		return nil, err
	}
	hi, err := parseRequired("band.max", b.Max)
	if err != nil {
		return nil, err
	}
	return &domain.VariableBand{Min: lo, Max: hi}, nil
}

func (r *recurrenceRow) toDomain() *domain.Recurrence {
	if r == nil {
		return nil
	}
	return &domain.Recurrence{
		Type:      domain.RecurrenceType(r.Type),
		DayRule:   domain.DayRule(r.DayRule),
		AnchorDay: r.AnchorDay,
	}
}

func (row plannedIncomeRow) toDomain() (*domain.PlannedIncome, error) {
	amount, err := parseOptional("amount", row.Amount)
	if err != nil {
		return nil, err
	}
	band, err := row.Band.toDomain()
	if err != nil {
		return nil, err
	}
	plan := &domain.PlannedIncome{
		ID:           row.ID,
		WorkspaceID:  datasetWorkspace,
		Source:       strings.TrimSpace(row.Source),
		Category:     strings.TrimSpace(row.Category),
		Currency:     strings.ToUpper(strings.TrimSpace(row.Currency)),
		Amount:       amount,
		VariableBand: band,
		Confidence:   domain.Confidence(row.Confidence),
		Recurrence:   row.Recurrence.toDomain(),
		IsActive:     !row.Inactive,
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return plan, nil
}

func (row observedIncomeRow) toDomain() (*domain.ObservedIncome, error) {
	amount, err := parseRequired("amount", row.Amount)
	if err != nil {
		return nil, err
	}
	date, err := parseOptionalDate("date", row.Date)
	if err != nil {
		return nil, err
	}
	if date == nil {
		return nil, fmt.Errorf("date: %w", domain.ErrInvalidInput)
	}
	o := &domain.ObservedIncome{
		WorkspaceID: datasetWorkspace,
		Source:      strings.TrimSpace(row.Source),
		Category:    strings.TrimSpace(row.Category),
		Currency:    strings.ToUpper(strings.TrimSpace(row.Currency)),
		Amount:      amount,
		Date:        *date,
		PlannedID:   row.PlannedID,
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return o, nil
}

func (row plannedExpenseRow) toDomain() (*domain.PlannedExpense, error) {
	amount, err := parseOptional("amount", row.Amount)
	if err != nil {
		return nil, err
	}
	band, err := row.Band.toDomain()
	if err != nil {
		return nil, err
	}
	date, err := parseOptionalDate("date", row.Date)
	if err != nil {
		return nil, err
	}
	plan := &domain.PlannedExpense{
		ID:            row.ID,
		WorkspaceID:   datasetWorkspace,
		Kind:          domain.ExpenseKind(row.Kind),
		CardID:        row.CardID,
		Category:      strings.TrimSpace(row.Category),
		Concept:       strings.TrimSpace(row.Concept),
		Currency:      strings.ToUpper(strings.TrimSpace(row.Currency)),
		Amount:        amount,
		VariableBand:  band,
		Confidence:    domain.Confidence(row.Confidence),
		Recurrence:    row.Recurrence.toDomain(),
		Date:          date,
		NInstallments: row.NInstallments,
		IsActive:      !row.Inactive,
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return plan, nil
}

func (row observedExpenseRow) toDomain() (*domain.ObservedExpense, error) {
	amount, err := parseRequired("amount", row.Amount)
	if err != nil {
		return nil, err
	}
	date, err := parseOptionalDate("date", row.Date)
	if err != nil {
		return nil, err
	}
	if date == nil {
		return nil, fmt.Errorf("date: %w", domain.ErrInvalidInput)
	}
	o := &domain.ObservedExpense{
		WorkspaceID: datasetWorkspace,
		Category:    strings.TrimSpace(row.Category),
		Concept:     strings.TrimSpace(row.Concept),
		Currency:    strings.ToUpper(strings.TrimSpace(row.Currency)),
		Amount:      amount,
		Date:        *date,
		PlannedID:   row.PlannedID,
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return o, nil
}

func (row cardRow) toDomain() (*domain.Card, error) {
	currencies := make([]string, 0, len(row.Currencies))
	for _, c := range row.Currencies {
		currencies = append(currencies, strings.ToUpper(strings.TrimSpace(c)))
	}
	card := &domain.Card{
		ID:          row.ID,
		WorkspaceID: datasetWorkspace,
		Name:        strings.TrimSpace(row.Name),
		Type:        domain.CardType(row.Type),
		Currencies:  currencies,
		CutoffDay:   row.CutoffDay,
		PaymentDay:  row.PaymentDay,
	}
	if err := card.Validate(); err != nil {
		return nil, err
	}
	return card, nil
}

func (row goalRow) toDomain() (*domain.SavingGoal, error) {
	target, err := parseRequired("target", row.Target)
	if err != nil {
		return nil, err
	}
	current := decimal.Zero
	if parsed, err := parseOptional("current", row.Current); err != nil {
		return nil, err
	} else if parsed != nil {
		current = *parsed
	}
	due, err := parseOptionalDate("due_date", row.DueDate)
	if err != nil {
		return nil, err
	}
	goal := &domain.SavingGoal{
		ID:            row.ID,
		WorkspaceID:   datasetWorkspace,
		Name:          strings.TrimSpace(row.Name),
		BaseCurrency:  strings.ToUpper(strings.TrimSpace(row.Currency)),
		TargetAmount:  target,
		CurrentAmount: current,
		Priority:      domain.Priority(row.Priority),
		DueDate:       due,
		Category:      strings.TrimSpace(row.Category),
	}
	if err := goal.Validate(); err != nil {
		return nil, err
	}
	return goal, nil
}

func (row accountRow) toDomain(id int32) (*domain.Account, error) {
	balances := make(map[string]decimal.Decimal, len(row.Balances))
	for code, raw := range row.Balances {
		amount, err := parseRequired("balances."+code, raw)
		if err != nil {
			return nil, err
		}
		balances[strings.ToUpper(strings.TrimSpace(code))] = amount
	}
	currencies := make([]string, 0, len(row.Currencies))
	for _, code := range row.Currencies {
		currencies = append(currencies, strings.ToUpper(strings.TrimSpace(code)))
	}
	account := &domain.Account{
		ID:               id,
		WorkspaceID:      datasetWorkspace,
		Name:             strings.TrimSpace(row.Name),
		Type:             domain.AccountType(row.Type),
		Currencies:       currencies,
		Balances:         balances,
		LiquidityTier:    domain.LiquidityTier(row.LiquidityTier),
		AllowAutoSuggest: row.AllowAutoSuggest,
	}
	if err := account.Validate(); err != nil {
		return nil, err
	}
	return account, nil
}
