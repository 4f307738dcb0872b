package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType is the action part of an event type
type EventType string

const (
	EventTypeCreated     EventType = "created"
	EventTypeDeleted     EventType = "deleted"
	EventTypePaid        EventType = "paid"
	EventTypeContributed EventType = "contributed"
	EventTypeUpdated     EventType = "updated"
)

// EntityType is the record kind an event is about
type EntityType string

const (
	EntityTypePlannedIncome   EntityType = "planned_income"
	EntityTypePlannedExpense  EntityType = "planned_expense"
	EntityTypeObservedIncome  EntityType = "observed_income"
	EntityTypeObservedExpense EntityType = "observed_expense"
	EntityTypeInstallment     EntityType = "installment"
	EntityTypeSavingGoal      EntityType = "saving_goal"
	EntityTypeCard            EntityType = "card"
	EntityTypeAccount         EntityType = "account"
	EntityTypeRates           EntityType = "rates"
)

// Event is the message pushed to clients. Consumers recompute their views on receipt.
// Format: { type, entity, payload, timestamp }
type Event struct {
	Type      string      `json:"type"`      // e.g. "planned_income.created"
	Entity    EntityType  `json:"entity"`    // e.g. "planned_income"
	Payload   interface{} `json:"payload"`   // record that changed
	Timestamp time.Time   `json:"timestamp"` // UTC
}

// NewEvent builds an event with type "<entity>.<eventType>"
func NewEvent(eventType EventType, entityType EntityType, payload interface{}) Event {
	return Event{
		Type:      fmt.Sprintf("%s.%s", entityType, eventType),
		Entity:    entityType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON serializes the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func PlannedIncomeCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypePlannedIncome, payload)
}

func PlannedIncomeUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypePlannedIncome, payload)
}

func PlannedIncomeDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypePlannedIncome, payload)
}

func PlannedExpenseCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypePlannedExpense, payload)
}

func PlannedExpenseUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypePlannedExpense, payload)
}

func PlannedExpenseDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypePlannedExpense, payload)
}

func ObservedIncomeCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeObservedIncome, payload)
}

func ObservedExpenseCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeObservedExpense, payload)
}

// InstallmentPaid creates an installment.paid event
func InstallmentPaid(payload interface{}) Event {
	return NewEvent(EventTypePaid, EntityTypeInstallment, payload)
}

func SavingGoalCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeSavingGoal, payload)
}

func SavingGoalUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeSavingGoal, payload)
}

func SavingGoalDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeSavingGoal, payload)
}

// SavingGoalContributed creates a saving_goal.contributed event
func SavingGoalContributed(payload interface{}) Event {
	return NewEvent(EventTypeContributed, EntityTypeSavingGoal, payload)
}

func CardCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeCard, payload)
}

func CardUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeCard, payload)
}

func CardDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeCard, payload)
}

func AccountCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeAccount, payload)
}

func AccountUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeAccount, payload)
}

// AccountDeleted is published when an account is archived
func AccountDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeAccount, payload)
}

// RatesUpdated is broadcast to every workspace after the rate table is refreshed
func RatesUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeRates, payload)
}
