package cli

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleDataset = `
reporting_currency = "ARS"
default_payment_day = 10

[rates]
USD = "1000"
USDT = "1010"

[[accounts]]
name = "Checking"
type = "bank"
currencies = ["ARS"]
balances = { ARS = "50000" }
liquidity_tier = "operational"

[[accounts]]
name = "Binance"
type = "crypto"
currencies = ["USDT"]
balances = { USDT = "200" }
liquidity_tier = "buffer"
allow_auto_suggest = true

[[planned_incomes]]
id = 1
source = "Acme"
category = "salary"
currency = "USD"
amount = "2000"
confidence = "high"
recurrence = { type = "monthly", day_rule = "fixed_day", anchor_day = 5 }

[[planned_incomes]]
id = 2
source = "Freelance"
category = "freelance"
currency = "ARS"
confidence = "low"
band = { min = "100000", max = "300000" }
recurrence = { type = "monthly", day_rule = "last_business_day" }

[[observed_incomes]]
source = "Acme"
category = "salary"
currency = "USD"
amount = "2000"
date = "2025-02-05"
planned_id = 1

[[observed_incomes]]
source = "Acme"
category = "salary"
currency = "USD"
amount = "2100"
date = "2025-03-05"
planned_id = 1

[[cards]]
id = 1
name = "Visa"
type = "credit"
currencies = ["ARS", "USD"]
payment_day = 10

[[planned_expenses]]
id = 1
kind = "credit"
card_id = 1
category = "shopping"
concept = "Laptop"
currency = "ARS"
amount = "300000"
confidence = "high"
date = "2025-02-20"
n_installments = 3

[[planned_expenses]]
id = 2
kind = "debit"
category = "rent"
concept = "Flat"
currency = "ARS"
amount = "400000"
confidence = "high"
recurrence = { type = "monthly", day_rule = "fixed_day", anchor_day = 1 }

[[observed_expenses]]
category = "rent"
concept = "Flat"
currency = "ARS"
amount = "400000"
date = "2025-03-01"

[[installment_payments]]
expense_id = 1
installment_number = 1

[[goals]]
id = 1
name = "Emergency"
base_currency = "ARS"
target = "1000000"
priority = "high"

[[goals]]
id = 2
name = "Trip"
base_currency = "USD"
target = "3000"
current = "500"
priority = "low"
due_date = "2025-12-01"
`

func writeDataset(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "planner.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write dataset: %v", err)
	}
	return path
}
