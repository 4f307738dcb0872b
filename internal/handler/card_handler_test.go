package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/dafibh/fortuna/fortuna-planner/internal/domain"
	"github.com/dafibh/fortuna/fortuna-planner/internal/service"
	"github.com/dafibh/fortuna/fortuna-planner/internal/testutil"
	"github.com/labstack/echo/v4"
)

func TestCreateCard_Success(t *testing.T) {
	e := echo.New()
	cardRepo := testutil.NewMockCardRepository()
	handler := NewCardHandler(service.NewCardService(cardRepo, testutil.NewMockPlannedExpenseRepository()))

	body := `{"name": "Visa Gold", "type": "credit", "currencies": ["ars", "usd", "ARS"], "cutoffDay": 28, "paymentDay": 10}`
	c, rec := newJSONContext(e, http.MethodPost, "/api/v1/cards", body)
	setupWorkspaceContext(c, 1)

	if err := handler.CreateCard(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var response CardResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Type != domain.CardTypeCredit {
		t.Errorf("Expected type credit, got %s", response.Type)
	}
	if len(response.Currencies) != 2 || response.Currencies[0] != "ARS" || response.Currencies[1] != "USD" {
		t.Errorf("Expected currencies [ARS USD], got %v", response.Currencies)
	}
	if response.PaymentDay == nil || *response.PaymentDay != 10 {
		t.Errorf("Expected payment day 10, got %v", response.PaymentDay)
	}
}

func TestCreateCard_Errors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		createFn func(card *domain.Card) (*domain.Card, error)
		status   int
	}{
		{"empty name", `{"name": "", "type": "credit", "currencies": ["ARS"]}`, nil, http.StatusBadRequest},
		{"bad type", `{"name": "Amex", "type": "prepaid", "currencies": ["ARS"]}`, nil, http.StatusBadRequest},
		{"no currencies", `{"name": "Amex", "type": "credit", "currencies": []}`, nil, http.StatusBadRequest},
		{"payment day out of range", `{"name": "Amex", "type": "credit", "currencies": ["ARS"], "paymentDay": 40}`, nil, http.StatusBadRequest},
		{"duplicate name", `{"name": "Amex", "type": "credit", "currencies": ["ARS"]}`,
			func(card *domain.Card) (*domain.Card, error) { return nil, domain.ErrCardNameTaken }, http.StatusConflict},
		{"store failure", `{"name": "Amex", "type": "credit", "currencies": ["ARS"]}`,
			func(card *domain.Card) (*domain.Card, error) { return nil, fmt.Errorf("connection reset") }, http.StatusInternalServerError},
		{"malformed body", `{"name": `, nil, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			cardRepo := testutil.NewMockCardRepository()
			cardRepo.CreateFn = tt.createFn
			handler := NewCardHandler(service.NewCardService(cardRepo, testutil.NewMockPlannedExpenseRepository()))

			c, rec := newJSONContext(e, http.MethodPost, "/api/v1/cards", tt.body)
			setupWorkspaceContext(c, 1)

			if err := handler.CreateCard(c); err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if rec.Code != tt.status {
				t.Errorf("Expected status %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestListCards_WorkspaceIsolation(t *testing.T) {
	e := echo.New()
	cardRepo := testutil.NewMockCardRepository()
	addCard(cardRepo, 1, domain.CardTypeCredit)
	addCard(cardRepo, 2, domain.CardTypeDebit)
	handler := NewCardHandler(service.NewCardService(cardRepo, testutil.NewMockPlannedExpenseRepository()))

	c, rec := newJSONContext(e, http.MethodGet, "/api/v1/cards", "")
	setupWorkspaceContext(c, 2)

	if err := handler.ListCards(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	var response []CardResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(response) != 1 || response[0].Type != domain.CardTypeDebit {
		t.Errorf("Expected only the debit card of workspace 2, got %+v", response)
	}
}

func TestUpdateCard(t *testing.T) {
	e := echo.New()
	cardRepo := testutil.NewMockCardRepository()
	card := addCard(cardRepo, 1, domain.CardTypeCredit)
	handler := NewCardHandler(service.NewCardService(cardRepo, testutil.NewMockPlannedExpenseRepository()))

	body := `{"name": "Visa Platinum", "type": "credit", "currencies": ["ars"], "cutoffDay": 20, "paymentDay": 29}`
	c, rec := newJSONContext(e, http.MethodPut, "/api/v1/cards/1", body)
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(card.ID))
	setupWorkspaceContext(c, 1)

	if err := handler.UpdateCard(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var response CardResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.ID != card.ID || response.Name != "Visa Platinum" {
		t.Errorf("Expected card %d renamed to Visa Platinum, got %+v", card.ID, response)
	}
	if response.CutoffDay == nil || *response.CutoffDay != 20 {
		t.Errorf("Expected cutoff day 20, got %v", response.CutoffDay)
	}
}

func TestUpdateAndDeleteCard_Errors(t *testing.T) {
	tests := []struct {
		name   string
		method string
		id     string
		body   string
		status int
	}{
		{"update unknown card", http.MethodPut, "9", `{"name": "Amex", "type": "credit", "currencies": ["ARS"]}`, http.StatusNotFound},
		{"update to taken name", http.MethodPut, "1", `{"name": "Visa debit", "type": "credit", "currencies": ["ARS"]}`, http.StatusConflict},
		{"charged card turned debit", http.MethodPut, "1", `{"name": "Visa credit", "type": "debit", "currencies": ["ARS"]}`, http.StatusConflict},
		{"update bad id", http.MethodPut, "x", `{"name": "Amex", "type": "credit", "currencies": ["ARS"]}`, http.StatusBadRequest},
		{"delete charged card", http.MethodDelete, "1", "", http.StatusConflict},
		{"delete unknown card", http.MethodDelete, "9", "", http.StatusNotFound},
		{"delete unused card", http.MethodDelete, "2", "", http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			cardRepo := testutil.NewMockCardRepository()
			credit := addCard(cardRepo, 1, domain.CardTypeCredit)
			addCard(cardRepo, 1, domain.CardTypeDebit)
			expenseRepo := testutil.NewMockPlannedExpenseRepository()
			expenseRepo.AddPlan(&domain.PlannedExpense{ID: 5, WorkspaceID: 1, Kind: domain.ExpenseKindCredit, CardID: &credit.ID, IsActive: true})
			handler := NewCardHandler(service.NewCardService(cardRepo, expenseRepo))

			c, rec := newJSONContext(e, tt.method, "/api/v1/cards/"+tt.id, tt.body)
			c.SetParamNames("id")
			c.SetParamValues(tt.id)
			setupWorkspaceContext(c, 1)

			var err error
			if tt.method == http.MethodPut {
				err = handler.UpdateCard(c)
			} else {
				err = handler.DeleteCard(c)
			}
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if rec.Code != tt.status {
				t.Errorf("Expected status %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
		})
	}
}
