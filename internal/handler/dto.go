package handler

import (
	"time"

	"github.com/dafibh/fortuna/fortuna-planner/internal/domain"
	"github.com/dafibh/fortuna/fortuna-planner/internal/service"
	"github.com/dafibh/fortuna/fortuna-planner/internal/util"
	"github.com/shopspring/decimal"
)

func formatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func formatOptionalAmount(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := formatAmount(*d)
	return &s
}

func formatDate(t time.Time) string {
	return t.Format(util.DateLayout)
}

func formatOptionalDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatDate(*t)
	return &s
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// BandResponse represents a variable amount range
type BandResponse struct {
	Min string `json:"min"`
	Max string `json:"max"`
}

func toBandResponse(b *domain.VariableBand) *BandResponse {
	if b == nil {
		return nil
	}
	return &BandResponse{Min: formatAmount(b.Min), Max: formatAmount(b.Max)}
}

// PlannedIncomeResponse represents a planned income in API responses
type PlannedIncomeResponse struct {
	ID           int32              `json:"id"`
	WorkspaceID  int32              `json:"workspaceId"`
	Source       string             `json:"source"`
	Category     string             `json:"category"`
	Currency     string             `json:"currency"`
	Amount       *string            `json:"amount,omitempty"`
	VariableBand *BandResponse      `json:"variableBand,omitempty"`
	Confidence   domain.Confidence  `json:"confidence"`
	Recurrence   *domain.Recurrence `json:"recurrence,omitempty"`
	IsActive     bool               `json:"isActive"`
	Notes        *string            `json:"notes,omitempty"`
	CreatedAt    string             `json:"createdAt"`
	UpdatedAt    string             `json:"updatedAt"`
}

func toPlannedIncomeResponse(p *domain.PlannedIncome) PlannedIncomeResponse {
	return PlannedIncomeResponse{
		ID:           p.ID,
		WorkspaceID:  p.WorkspaceID,
		Source:       p.Source,
		Category:     p.Category,
		Currency:     p.Currency,
		Amount:       formatOptionalAmount(p.Amount),
		VariableBand: toBandResponse(p.VariableBand),
		Confidence:   p.Confidence,
		Recurrence:   p.Recurrence,
		IsActive:     p.IsActive,
		Notes:        p.Notes,
		CreatedAt:    formatTimestamp(p.CreatedAt),
		UpdatedAt:    formatTimestamp(p.UpdatedAt),
	}
}

// ObservedIncomeResponse represents a received income in API responses
type ObservedIncomeResponse struct {
	ID        int32  `json:"id"`
	Source    string `json:"source"`
	Category  string `json:"category"`
	Currency  string `json:"currency"`
	Amount    string `json:"amount"`
	Date      string `json:"date"`
	PlannedID *int32 `json:"plannedId,omitempty"`
	CreatedAt string `json:"createdAt"`
}

func toObservedIncomeResponse(o *domain.ObservedIncome) ObservedIncomeResponse {
	return ObservedIncomeResponse{
		ID:        o.ID,
		Source:    o.Source,
		Category:  o.Category,
		Currency:  o.Currency,
		Amount:    formatAmount(o.Amount),
		Date:      formatDate(o.Date),
		PlannedID: o.PlannedID,
		CreatedAt: formatTimestamp(o.CreatedAt),
	}
}

// PlannedExpenseResponse represents a planned expense in API responses
type PlannedExpenseResponse struct {
	ID             int32              `json:"id"`
	WorkspaceID    int32              `json:"workspaceId"`
	Kind           domain.ExpenseKind `json:"kind"`
	CardID         *int32             `json:"cardId,omitempty"`
	Category       string             `json:"category"`
	Concept        string             `json:"concept"`
	Currency       string             `json:"currency"`
	Amount         *string            `json:"amount,omitempty"`
	VariableBand   *BandResponse      `json:"variableBand,omitempty"`
	Confidence     domain.Confidence  `json:"confidence"`
	Recurrence     *domain.Recurrence `json:"recurrence,omitempty"`
	Date           *string            `json:"date,omitempty"`
	NInstallments  *int               `json:"nInstallments,omitempty"`
	AmountEquivEst *string            `json:"amountEquivEst,omitempty"`
	Notes          *string            `json:"notes,omitempty"`
	IsActive       bool               `json:"isActive"`
	CreatedAt      string             `json:"createdAt"`
	UpdatedAt      string             `json:"updatedAt"`
}

func toPlannedExpenseResponse(p *domain.PlannedExpense) PlannedExpenseResponse {
	return PlannedExpenseResponse{
		ID:             p.ID,
		WorkspaceID:    p.WorkspaceID,
		Kind:           p.Kind,
		CardID:         p.CardID,
		Category:       p.Category,
		Concept:        p.Concept,
		Currency:       p.Currency,
		Amount:         formatOptionalAmount(p.Amount),
		VariableBand:   toBandResponse(p.VariableBand),
		Confidence:     p.Confidence,
		Recurrence:     p.Recurrence,
		Date:           formatOptionalDate(p.Date),
		NInstallments:  p.NInstallments,
		AmountEquivEst: formatOptionalAmount(p.AmountEquivEst),
		Notes:          p.Notes,
		IsActive:       p.IsActive,
		CreatedAt:      formatTimestamp(p.CreatedAt),
		UpdatedAt:      formatTimestamp(p.UpdatedAt),
	}
}

// ObservedExpenseResponse represents a paid expense in API responses
type ObservedExpenseResponse struct {
	ID        int32  `json:"id"`
	Category  string `json:"category"`
	Concept   string `json:"concept"`
	Currency  string `json:"currency"`
	Amount    string `json:"amount"`
	Date      string `json:"date"`
	PlannedID *int32 `json:"plannedId,omitempty"`
	CreatedAt string `json:"createdAt"`
}

func toObservedExpenseResponse(o *domain.ObservedExpense) ObservedExpenseResponse {
	return ObservedExpenseResponse{
		ID:        o.ID,
		Category:  o.Category,
		Concept:   o.Concept,
		Currency:  o.Currency,
		Amount:    formatAmount(o.Amount),
		Date:      formatDate(o.Date),
		PlannedID: o.PlannedID,
		CreatedAt: formatTimestamp(o.CreatedAt),
	}
}

// ExpandedPlannedResponse is one dated occurrence of a planned record
type ExpandedPlannedResponse struct {
	PlannedID       int32              `json:"plannedId"`
	Source          string             `json:"source,omitempty"`
	Category        string             `json:"category"`
	Currency        string             `json:"currency"`
	Kind            domain.ExpenseKind `json:"kind,omitempty"`
	Date            string             `json:"date"`
	AmountOriginal  string             `json:"amountOriginal"`
	AmountReporting string             `json:"amountReporting"`
	Confidence      domain.Confidence  `json:"confidence"`
	Scenario        domain.Scenario    `json:"scenario"`
	IsPending       bool               `json:"isPending"`
}

func toExpandedResponses(records []domain.ExpandedPlanned) []ExpandedPlannedResponse {
	out := make([]ExpandedPlannedResponse, len(records))
	for i, r := range records {
		out[i] = ExpandedPlannedResponse{
			PlannedID:       r.PlannedID,
			Source:          r.Source,
			Category:        r.Category,
			Currency:        r.Currency,
			Kind:            r.Kind,
			Date:            formatDate(r.Date),
			AmountOriginal:  formatAmount(r.AmountOriginal),
			AmountReporting: formatAmount(r.AmountReporting),
			Confidence:      r.Confidence,
			Scenario:        r.Scenario,
			IsPending:       r.IsPending,
		}
	}
	return out
}

// TotalsResponse is planned vs observed with the variance between them
type TotalsResponse struct {
	PlannedTotal  string `json:"plannedTotal"`
	ObservedTotal string `json:"observedTotal"`
	Variance      string `json:"variance"`
	VariancePct   string `json:"variancePct"`
}

func toTotalsResponse(t domain.Totals) TotalsResponse {
	return TotalsResponse{
		PlannedTotal:  formatAmount(t.PlannedTotal),
		ObservedTotal: formatAmount(t.ObservedTotal),
		Variance:      formatAmount(t.Variance),
		VariancePct:   formatAmount(t.VariancePct),
	}
}

// CategoryAggregateResponse is the totals of one category within a month
type CategoryAggregateResponse struct {
	Category string `json:"category"`
	TotalsResponse
}

// MonthlyAggregateResponse is the totals of one month
type MonthlyAggregateResponse struct {
	Month string `json:"month"`
	TotalsResponse
	ByCategory []CategoryAggregateResponse `json:"byCategory"`
}

func toMonthlyResponses(aggregates []domain.MonthlyAggregate) []MonthlyAggregateResponse {
	out := make([]MonthlyAggregateResponse, len(aggregates))
	for i, a := range aggregates {
		cats := make([]CategoryAggregateResponse, len(a.ByCategory))
		for j, cat := range a.ByCategory {
			cats[j] = CategoryAggregateResponse{Category: cat.Category, TotalsResponse: toTotalsResponse(cat.Totals)}
		}
		out[i] = MonthlyAggregateResponse{Month: a.Month, TotalsResponse: toTotalsResponse(a.Totals), ByCategory: cats}
	}
	return out
}

// KPIResponse holds the headline figures of a history
type KPIResponse struct {
	CurrentMonth  string `json:"currentMonth"`
	PreviousMonth string `json:"previousMonth"`
	MoMPct        string `json:"momPct"`
	YTD           string `json:"ytd"`
	Avg3m         string `json:"avg3m"`
	Avg6m         string `json:"avg6m"`
	Avg12m        string `json:"avg12m"`
}

func toKPIResponse(k domain.KPISet) KPIResponse {
	return KPIResponse{
		CurrentMonth:  formatAmount(k.CurrentMonth),
		PreviousMonth: formatAmount(k.PreviousMonth),
		MoMPct:        formatAmount(k.MoMPct),
		YTD:           formatAmount(k.YTD),
		Avg3m:         formatAmount(k.Avg3m),
		Avg6m:         formatAmount(k.Avg6m),
		Avg12m:        formatAmount(k.Avg12m),
	}
}

// CategoryShareResponse is a category's part of the period's spending
type CategoryShareResponse struct {
	Category string `json:"category"`
	Amount   string `json:"amount"`
	SharePct string `json:"sharePct"`
}

// ExpenseKPIResponse extends the KPIs with spending mix figures
type ExpenseKPIResponse struct {
	KPIResponse
	TopCategories    []CategoryShareResponse `json:"topCategories"`
	CreditDebitSplit struct {
		CreditPct string `json:"creditPct"`
		DebitPct  string `json:"debitPct"`
	} `json:"creditDebitSplit"`
}

func toExpenseKPIResponse(k domain.ExpenseKPISet) ExpenseKPIResponse {
	resp := ExpenseKPIResponse{KPIResponse: toKPIResponse(k.KPISet)}
	resp.TopCategories = make([]CategoryShareResponse, len(k.TopCategories))
	for i, share := range k.TopCategories {
		resp.TopCategories[i] = CategoryShareResponse{
			Category: share.Category,
			Amount:   formatAmount(share.Amount),
			SharePct: formatAmount(share.SharePct),
		}
	}
	resp.CreditDebitSplit.CreditPct = formatAmount(k.CreditDebitSplit.CreditPct)
	resp.CreditDebitSplit.DebitPct = formatAmount(k.CreditDebitSplit.DebitPct)
	return resp
}

// ForecastMonthResponse is the projection for one future month
type ForecastMonthResponse struct {
	Month        string `json:"month"`
	Conservative string `json:"conservative"`
	Base         string `json:"base"`
	Optimistic   string `json:"optimistic"`
}

func toForecastResponses(months []domain.ForecastMonth) []ForecastMonthResponse {
	out := make([]ForecastMonthResponse, len(months))
	for i, m := range months {
		out[i] = ForecastMonthResponse{
			Month:        m.Month,
			Conservative: formatAmount(m.Conservative),
			Base:         formatAmount(m.Base),
			Optimistic:   formatAmount(m.Optimistic),
		}
	}
	return out
}

// ComparisonItemResponse is one category (or source) of a comparison
type ComparisonItemResponse struct {
	Category string `json:"category"`
	Source   string `json:"source,omitempty"`
	TotalsResponse
	Status domain.ComparisonStatus `json:"status"`
}

// ComparisonResponse is the planned vs observed breakdown of a month
type ComparisonResponse struct {
	Month  string                   `json:"month"`
	Closed bool                     `json:"closed"`
	Items  []ComparisonItemResponse `json:"items"`
}

func toComparisonResponse(r *service.ComparisonReport) ComparisonResponse {
	items := make([]ComparisonItemResponse, len(r.Items))
	for i, item := range r.Items {
		items[i] = ComparisonItemResponse{
			Category:       item.Category,
			Source:         item.Source,
			TotalsResponse: toTotalsResponse(item.Totals),
			Status:         item.Status,
		}
	}
	return ComparisonResponse{Month: r.Month, Closed: r.Closed, Items: items}
}

// CardResponse represents a card in API responses
type CardResponse struct {
	ID         int32           `json:"id"`
	Name       string          `json:"name"`
	Type       domain.CardType `json:"type"`
	Currencies []string        `json:"currencies"`
	CutoffDay  *int            `json:"cutoffDay,omitempty"`
	PaymentDay *int            `json:"paymentDay,omitempty"`
	CreatedAt  string          `json:"createdAt"`
}

func toCardResponse(card *domain.Card) CardResponse {
	return CardResponse{
		ID:         card.ID,
		Name:       card.Name,
		Type:       card.Type,
		Currencies: card.Currencies,
		CutoffDay:  card.CutoffDay,
		PaymentDay: card.PaymentDay,
		CreatedAt:  formatTimestamp(card.CreatedAt),
	}
}

// CardCycleResponse is a card's billing position and the unpaid installments charged to it
type CardCycleResponse struct {
	CurrentCutoff      *string           `json:"currentCutoff,omitempty"`
	CurrentPayment     string            `json:"currentPayment"`
	NextCutoff         *string           `json:"nextCutoff,omitempty"`
	NextPayment        string            `json:"nextPayment"`
	CycleConsumption   map[string]string `json:"cycleConsumption"`
	FutureInstallments map[string]string `json:"futureInstallments"`
}

func formatAmounts(amounts map[string]decimal.Decimal) map[string]string {
	out := make(map[string]string, len(amounts))
	for code, amount := range amounts {
		out[code] = formatAmount(amount)
	}
	return out
}

func toCardCycleResponse(cycle *domain.CardCycle) CardCycleResponse {
	return CardCycleResponse{
		CurrentCutoff:      formatOptionalDate(cycle.CurrentCutoff),
		CurrentPayment:     formatDate(cycle.CurrentPayment),
		NextCutoff:         formatOptionalDate(cycle.NextCutoff),
		NextPayment:        formatDate(cycle.NextPayment),
		CycleConsumption:   formatAmounts(cycle.CycleConsumption),
		FutureInstallments: formatAmounts(cycle.FutureInstallments),
	}
}

// InstallmentPreviewResponse is one installment of a previewed purchase
type InstallmentPreviewResponse struct {
	InstallmentNumber int    `json:"installmentNumber"`
	DueDate           string `json:"dueDate"`
	Amount            string `json:"amount"`
	IsWeekendAdjusted bool   `json:"isWeekendAdjusted"`
}

func toInstallmentPreviewResponses(previews []domain.InstallmentPreview) []InstallmentPreviewResponse {
	out := make([]InstallmentPreviewResponse, len(previews))
	for i, p := range previews {
		out[i] = InstallmentPreviewResponse{
			InstallmentNumber: p.InstallmentNumber,
			DueDate:           formatDate(p.DueDate),
			Amount:            formatAmount(p.Amount),
			IsWeekendAdjusted: p.IsWeekendAdjusted,
		}
	}
	return out
}

// AccountResponse represents an account in API responses. Balances keep
// their full precision, since crypto amounts go below cents.
type AccountResponse struct {
	ID               int32                `json:"id"`
	WorkspaceID      int32                `json:"workspaceId"`
	Name             string               `json:"name"`
	Type             domain.AccountType   `json:"type"`
	Country          string               `json:"country"`
	Currencies       []string             `json:"currencies"`
	Balances         map[string]string    `json:"balances"`
	LiquidityTier    domain.LiquidityTier `json:"liquidityTier"`
	AllowAutoSuggest bool                 `json:"allowAutoSuggest"`
	Notes            *string              `json:"notes,omitempty"`
	CreatedAt        string               `json:"createdAt"`
	UpdatedAt        string               `json:"updatedAt"`
	DeletedAt        *string              `json:"deletedAt,omitempty"`
}

func toAccountResponse(a *domain.Account) AccountResponse {
	balances := make(map[string]string, len(a.Balances))
	for code, amount := range a.Balances {
		balances[code] = amount.String()
	}
	resp := AccountResponse{
		ID:               a.ID,
		WorkspaceID:      a.WorkspaceID,
		Name:             a.Name,
		Type:             a.Type,
		Country:          a.Country,
		Currencies:       a.Currencies,
		Balances:         balances,
		LiquidityTier:    a.LiquidityTier,
		AllowAutoSuggest: a.AllowAutoSuggest,
		Notes:            a.Notes,
		CreatedAt:        formatTimestamp(a.CreatedAt),
		UpdatedAt:        formatTimestamp(a.UpdatedAt),
	}
	if a.DeletedAt != nil {
		deletedAt := formatTimestamp(*a.DeletedAt)
		resp.DeletedAt = &deletedAt
	}
	return resp
}

// DeficitResponse is the liquidity missing for an installment
type DeficitResponse struct {
	Currency string `json:"currency"`
	Amount   string `json:"amount"`
}

// SuggestionResponse is one way to cover a deficit
type SuggestionResponse struct {
	FromCurrency      string  `json:"fromCurrency"`
	AmountFromEst     string  `json:"amountFromEst"`
	EstRate           string  `json:"estRate"`
	EstSpreadPct      *string `json:"estSpreadPct,omitempty"`
	PlatformSuggested string  `json:"platformSuggested"`
}

// InstallmentResponse represents one installment of a credit purchase
type InstallmentResponse struct {
	ID                string                   `json:"id"`
	PlannedExpenseID  int32                    `json:"plannedExpenseId"`
	InstallmentNumber int                      `json:"installmentNumber"`
	TotalInstallments int                      `json:"totalInstallments"`
	DueDate           string                   `json:"dueDate"`
	IsWeekendAdjusted bool                     `json:"isWeekendAdjusted"`
	Status            domain.InstallmentStatus `json:"status"`
	Currency          string                   `json:"currency"`
	AmountBase        string                   `json:"amountBase"`
	AmountEquivEst    *string                  `json:"amountEquivEst,omitempty"`
	Deficit           *DeficitResponse         `json:"deficit,omitempty"`
	Suggestions       []SuggestionResponse     `json:"suggestions,omitempty"`
}

func toInstallmentResponse(inst domain.ExpenseInstallment) InstallmentResponse {
	resp := InstallmentResponse{
		ID:                inst.ID,
		PlannedExpenseID:  inst.PlannedExpenseID,
		InstallmentNumber: inst.InstallmentNumber,
		TotalInstallments: inst.TotalInstallments,
		DueDate:           formatDate(inst.DueDate),
		IsWeekendAdjusted: inst.IsWeekendAdjusted,
		Status:            inst.Status,
		Currency:          inst.Currency,
		AmountBase:        formatAmount(inst.AmountBase),
		AmountEquivEst:    formatOptionalAmount(inst.AmountEquivEst),
	}
	if inst.Deficit != nil {
		resp.Deficit = &DeficitResponse{Currency: inst.Deficit.Currency, Amount: formatAmount(inst.Deficit.Amount)}
	}
	for _, s := range inst.Suggestions {
		resp.Suggestions = append(resp.Suggestions, SuggestionResponse{
			FromCurrency:      s.FromCurrency,
			AmountFromEst:     formatAmount(s.AmountFromEst),
			EstRate:           s.EstRate.String(),
			EstSpreadPct:      formatOptionalAmount(s.EstSpreadPct),
			PlatformSuggested: s.PlatformSuggested,
		})
	}
	return resp
}

func toInstallmentResponses(schedule []domain.ExpenseInstallment) []InstallmentResponse {
	out := make([]InstallmentResponse, len(schedule))
	for i, inst := range schedule {
		out[i] = toInstallmentResponse(inst)
	}
	return out
}

// SavingGoalResponse represents a saving goal in API responses
type SavingGoalResponse struct {
	ID            int32           `json:"id"`
	Name          string          `json:"name"`
	BaseCurrency  string          `json:"baseCurrency"`
	TargetAmount  string          `json:"targetAmount"`
	CurrentAmount string          `json:"currentAmount"`
	Shortfall     string          `json:"shortfall"`
	IsCompleted   bool            `json:"isCompleted"`
	Priority      domain.Priority `json:"priority"`
	DueDate       *string         `json:"dueDate,omitempty"`
	Category      string          `json:"category"`
	CreatedAt     string          `json:"createdAt"`
	UpdatedAt     string          `json:"updatedAt"`
}

func toSavingGoalResponse(g *domain.SavingGoal) SavingGoalResponse {
	return SavingGoalResponse{
		ID:            g.ID,
		Name:          g.Name,
		BaseCurrency:  g.BaseCurrency,
		TargetAmount:  formatAmount(g.TargetAmount),
		CurrentAmount: formatAmount(g.CurrentAmount),
		Shortfall:     formatAmount(g.Shortfall()),
		IsCompleted:   g.IsCompleted(),
		Priority:      g.Priority,
		DueDate:       formatOptionalDate(g.DueDate),
		Category:      g.Category,
		CreatedAt:     formatTimestamp(g.CreatedAt),
		UpdatedAt:     formatTimestamp(g.UpdatedAt),
	}
}

// ContributionResponse represents a goal contribution in API responses
type ContributionResponse struct {
	ID     int32   `json:"id"`
	GoalID int32   `json:"goalId"`
	Amount string  `json:"amount"`
	Date   string  `json:"date"`
	Note   *string `json:"note,omitempty"`
}

func toContributionResponse(c *domain.GoalContribution) ContributionResponse {
	return ContributionResponse{
		ID:     c.ID,
		GoalID: c.GoalID,
		Amount: formatAmount(c.Amount),
		Date:   formatDate(c.Date),
		Note:   c.Note,
	}
}

// AllocationResponse is the share of the surplus proposed for one goal
type AllocationResponse struct {
	GoalID          int32  `json:"goalId"`
	GoalName        string `json:"goalName"`
	AmountReporting string `json:"amountReporting"`
	AmountBase      string `json:"amountBase"`
	BaseCurrency    string `json:"baseCurrency"`
	Score           string `json:"score"`
}

// AllocationSuggestionResponse is the proposed split of a surplus
type AllocationSuggestionResponse struct {
	TotalSurplus string               `json:"totalSurplus"`
	Allocations  []AllocationResponse `json:"allocations"`
	Remaining    string               `json:"remaining"`
}

func toAllocationResponse(s *domain.AllocationSuggestion) AllocationSuggestionResponse {
	allocations := make([]AllocationResponse, len(s.Allocations))
	for i, a := range s.Allocations {
		allocations[i] = AllocationResponse{
			GoalID:          a.GoalID,
			GoalName:        a.GoalName,
			AmountReporting: formatAmount(a.AmountReporting),
			AmountBase:      formatAmount(a.AmountBase),
			BaseCurrency:    a.BaseCurrency,
			Score:           a.Score.StringFixed(3),
		}
	}
	return AllocationSuggestionResponse{
		TotalSurplus: formatAmount(s.TotalSurplus),
		Allocations:  allocations,
		Remaining:    formatAmount(s.Remaining),
	}
}

// RatesResponse is the current conversion table
type RatesResponse struct {
	ReportingCurrency string            `json:"reportingCurrency"`
	Rates             map[string]string `json:"rates"`
	Source            string            `json:"source,omitempty"`
	UpdatedAt         *string           `json:"updatedAt,omitempty"`
}

func toRatesResponse(t domain.RateTable) RatesResponse {
	rates := make(map[string]string, len(t.Rates))
	for code, rate := range t.Rates {
		rates[code] = rate.String()
	}
	resp := RatesResponse{ReportingCurrency: t.Reporting, Rates: rates, Source: t.Source}
	if !t.UpdatedAt.IsZero() {
		ts := formatTimestamp(t.UpdatedAt)
		resp.UpdatedAt = &ts
	}
	return resp
}
