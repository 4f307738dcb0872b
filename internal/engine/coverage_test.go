package engine

import (
	"context"
	"testing"
	"time"

	"github.com/dafibh/fortuna/fortuna-planner/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func account(name string, tier domain.LiquidityTier, autoSuggest bool, balances map[string]string) *domain.Account {
	parsed := make(map[string]decimal.Decimal, len(balances))
	codes := make([]string, 0, len(balances))
	for code, amount := range balances {
		parsed[code] = dec(amount)
		codes = append(codes, code)
	}
	return &domain.Account{
		Name: name, Type: domain.AccountTypeBank, Currencies: codes, Balances: parsed,
		LiquidityTier: tier, AllowAutoSuggest: autoSuggest,
	}
}

func TestAccountLiquidity_CountsSpendableTiersOnly(t *testing.T) {
	archivedAt := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	archived := account("Old wallet", domain.LiquidityOperational, false, map[string]string{"ARS": "999"})
	archived.DeletedAt = &archivedAt

	liquidity := NewAccountLiquidity([]*domain.Account{
		account("Checking", domain.LiquidityOperational, false, map[string]string{"ARS": "300"}),
		account("Emergency", domain.LiquidityBuffer, false, map[string]string{"ARS": "200", "USD": "10"}),
		account("Brokerage", domain.LiquiditySavings, false, map[string]string{"ARS": "1000"}),
		account("Gold", domain.LiquidityUntouchable, false, map[string]string{"ARS": "5000"}),
		archived,
	})

	deficit, err := liquidity.CheckCoverage(context.Background(), "ARS", dec("600"), date("2025-03-10"))
	require.NoError(t, err)
	require.NotNil(t, deficit)
	assert.Equal(t, "ARS", deficit.Currency)
	assert.True(t, deficit.Amount.Equal(dec("100")))

	deficit, err = liquidity.CheckCoverage(context.Background(), "usd", dec("10"), date("2025-03-10"))
	require.NoError(t, err)
	assert.Nil(t, deficit)
}

func TestAccountRoutes_OnlyAutoSuggestAccountsWithFunds(t *testing.T) {
	routes := AccountRoutes([]*domain.Account{
		account("Binance", domain.LiquidityBuffer, true, map[string]string{"USDT": "500", "BTC": "0", "USD": "20"}),
		account("Checking", domain.LiquidityOperational, false, map[string]string{"ARS": "300"}),
		account("Savings", domain.LiquiditySavings, true, map[string]string{"EUR": "100"}),
	})

	require.Len(t, routes, 3)
	assert.Equal(t, CoverageRoute{FromCurrency: "USD", Platform: "Binance"}, routes[0])
	assert.Equal(t, CoverageRoute{FromCurrency: "USDT", Platform: "Binance"}, routes[1])
	assert.Equal(t, CoverageRoute{FromCurrency: "EUR", Platform: "Savings"}, routes[2])
}

func TestScheduleInstallments_AccountBackedCoverage(t *testing.T) {
	accounts := []*domain.Account{
		account("Checking", domain.LiquidityOperational, false, map[string]string{"ARS": "40"}),
		account("Binance", domain.LiquidityBuffer, true, map[string]string{"USDT": "500"}),
	}
	opts := InstallmentOptions{Checker: NewAccountLiquidity(accounts), Routes: AccountRoutes(accounts)}

	got, err := ScheduleInstallments(context.Background(), creditPurchase("2025-01-10", "100", 1), nil, nil, date("2025-01-10"), testNormalizer(), opts)
	require.NoError(t, err)
	require.Len(t, got, 1)

	require.NotNil(t, got[0].Deficit)
	assert.True(t, got[0].Deficit.Amount.Equal(dec("60")))
	require.Len(t, got[0].Suggestions, 1)
	assert.Equal(t, "USDT", got[0].Suggestions[0].FromCurrency)
	assert.Equal(t, "Binance", got[0].Suggestions[0].PlatformSuggested)
	assert.True(t, got[0].Suggestions[0].AmountFromEst.Equal(dec("0.06")))
}
