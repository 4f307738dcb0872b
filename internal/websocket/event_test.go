package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	payload := map[string]interface{}{"id": 1, "amount": "100.00"}

	before := time.Now().UTC()
	event := NewEvent(EventTypeCreated, EntityTypePlannedExpense, payload)

	assert.Equal(t, "planned_expense.created", event.Type)
	assert.Equal(t, EntityTypePlannedExpense, event.Entity)
	assert.Equal(t, payload, event.Payload)
	assert.False(t, event.Timestamp.Before(before))
	assert.Equal(t, time.UTC, event.Timestamp.Location())
}

func TestEventConstructors(t *testing.T) {
	tests := []struct {
		name  string
		event Event
		want  string
	}{
		{"planned income created", PlannedIncomeCreated(nil), "planned_income.created"},
		{"planned income deleted", PlannedIncomeDeleted(nil), "planned_income.deleted"},
		{"planned expense created", PlannedExpenseCreated(nil), "planned_expense.created"},
		{"planned expense deleted", PlannedExpenseDeleted(nil), "planned_expense.deleted"},
		{"observed income", ObservedIncomeCreated(nil), "observed_income.created"},
		{"observed expense", ObservedExpenseCreated(nil), "observed_expense.created"},
		{"installment paid", InstallmentPaid(nil), "installment.paid"},
		{"goal created", SavingGoalCreated(nil), "saving_goal.created"},
		{"goal contributed", SavingGoalContributed(nil), "saving_goal.contributed"},
		{"planned income updated", PlannedIncomeUpdated(nil), "planned_income.updated"},
		{"planned expense updated", PlannedExpenseUpdated(nil), "planned_expense.updated"},
		{"goal updated", SavingGoalUpdated(nil), "saving_goal.updated"},
		{"goal deleted", SavingGoalDeleted(nil), "saving_goal.deleted"},
		{"card created", CardCreated(nil), "card.created"},
		{"card updated", CardUpdated(nil), "card.updated"},
		{"card deleted", CardDeleted(nil), "card.deleted"},
		{"account created", AccountCreated(nil), "account.created"},
		{"account updated", AccountUpdated(nil), "account.updated"},
		{"account deleted", AccountDeleted(nil), "account.deleted"},
		{"rates updated", RatesUpdated(nil), "rates.updated"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.event.Type)
		})
	}
}

func TestEvent_ToJSON(t *testing.T) {
	event := SavingGoalContributed(map[string]interface{}{"goalId": 3})

	data, err := event.ToJSON()
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "saving_goal.contributed", decoded["type"])
	assert.Equal(t, "saving_goal", decoded["entity"])
	assert.Contains(t, decoded, "timestamp")
	payload, ok := decoded["payload"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(3), payload["goalId"])
}
