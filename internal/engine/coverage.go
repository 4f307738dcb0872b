package engine

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/dafibh/fortuna/fortuna-planner/internal/domain"
	"github.com/shopspring/decimal"
)

// CoverageChecker reports how much of an amount due on asOf cannot be covered
// by available funds in currency. A nil deficit means fully covered.
type CoverageChecker interface {
	CheckCoverage(ctx context.Context, currency string, amount decimal.Decimal, asOf time.Time) (*domain.Deficit, error)
}

// NoCoverageCheck treats every installment as covered
type NoCoverageCheck struct{}

func (NoCoverageCheck) CheckCoverage(context.Context, string, decimal.Decimal, time.Time) (*domain.Deficit, error) {
	return nil, nil
}

// StaticLiquidity checks amounts against fixed balances per currency.
// A currency without a balance has nothing available.
type StaticLiquidity struct {
	Balances map[string]decimal.Decimal
}

// NewStaticLiquidity copies balances with upper-cased currency codes
func NewStaticLiquidity(balances map[string]decimal.Decimal) StaticLiquidity {
	copied := make(map[string]decimal.Decimal, len(balances))
	for code, amount := range balances {
		copied[strings.ToUpper(code)] = amount
	}
	return StaticLiquidity{Balances: copied}
}

func (s StaticLiquidity) CheckCoverage(_ context.Context, currency string, amount decimal.Decimal, _ time.Time) (*domain.Deficit, error) {
	available := s.Balances[strings.ToUpper(currency)]
	missing := amount.Sub(available)
	if !missing.IsPositive() {
		return nil, nil
	}
	return &domain.Deficit{Currency: currency, Amount: missing.Round(2)}, nil
}

// NewAccountLiquidity sums the balances of spendable accounts per currency.
// Archived accounts and the savings and untouchable tiers hold nothing available.
func NewAccountLiquidity(accounts []*domain.Account) StaticLiquidity {
	balances := make(map[string]decimal.Decimal)
	for _, a := range accounts {
		if a.IsArchived() || !a.LiquidityTier.IsSpendable() {
			continue
		}
		for code, amount := range a.Balances {
			code = strings.ToUpper(code)
			balances[code] = balances[code].Add(amount)
		}
	}
	return StaticLiquidity{Balances: balances}
}

// CoverageRoute is a way of converting another currency to fund a deficit
type CoverageRoute struct {
	FromCurrency string
	Platform     string
	EstSpreadPct *decimal.Decimal
}

// DefaultCoverageRoutes returns a stablecoin route and a manual route from the reporting currency
func DefaultCoverageRoutes(reporting string) []CoverageRoute {
	spread := decimal.RequireFromString("-0.22")
	return []CoverageRoute{
		{FromCurrency: "USDT", Platform: "Binance P2P", EstSpreadPct: &spread},
		{FromCurrency: strings.ToUpper(reporting), Platform: "Manual"},
	}
}

// AccountRoutes offers one route per currency holding a positive balance in an
// active account that allows auto-suggestion, named after that account.
// The result is never nil, so it always replaces the default routes.
func AccountRoutes(accounts []*domain.Account) []CoverageRoute {
	routes := []CoverageRoute{}
	for _, a := range accounts {
		if a.IsArchived() || !a.AllowAutoSuggest {
			continue
		}
		codes := make([]string, 0, len(a.Balances))
		for code, amount := range a.Balances {
			if amount.IsPositive() {
				codes = append(codes, strings.ToUpper(code))
			}
		}
		sort.Strings(codes)
		for _, code := range codes {
			routes = append(routes, CoverageRoute{FromCurrency: code, Platform: a.Name})
		}
	}
	return routes
}

// suggestCoverage prices each route for the deficit using the normalizer's rates.
// Routes from the deficit's own currency are skipped.
func suggestCoverage(deficit domain.Deficit, routes []CoverageRoute, n Normalizer) []domain.CoverageSuggestion {
	inReporting := n.ToReporting(deficit.Amount, deficit.Currency)
	target := n.Rate(deficit.Currency)

	var out []domain.CoverageSuggestion
	for _, r := range routes {
		if strings.EqualFold(r.FromCurrency, deficit.Currency) {
			continue
		}
		from := n.Rate(r.FromCurrency)
		out = append(out, domain.CoverageSuggestion{
			FromCurrency:      r.FromCurrency,
			AmountFromEst:     n.FromReporting(inReporting, r.FromCurrency).Round(2),
			EstRate:           from.Div(target).Round(4),
			EstSpreadPct:      r.EstSpreadPct,
			PlatformSuggested: r.Platform,
		})
	}
	return out
}
