package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mossline/ledgermind/internal/common"
	"github.com/mossline/ledgermind/internal/model"
	"github.com/mossline/ledgermind/internal/service"
)

func TestClient_FetchSuggestions(t *testing.T) {
	var gotPath string
	var gotBody suggestionRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}
		_ = json.NewEncoder(w).Encode(suggestionResponse{
			PayeeSuggestions: []wireSuggestion{
				{ID: "p1", Name: "Starbucks", Type: "ai_suggestion", Confidence: 0.92, Reason: "matched past transactions"},
			},
			CategorySuggestions: []wireSuggestion{
				{ID: "c4", Name: "Coffee Shops", Type: "ai_suggestion", Confidence: 0.87},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", time.Second)

	amount := 5.75
	resp, err := client.FetchSuggestions(context.Background(), service.SuggestionRequest{
		Description: "Starbucks Coffee",
		Amount:      &amount,
		AccountID:   "acc-1",
		AccountType: model.AccountTypeChecking,
	})
	if err != nil {
		t.Fatalf("FetchSuggestions error = %v", err)
	}

	if gotPath != "/v1/suggestions" {
		t.Errorf("request path = %q, want /v1/suggestions", gotPath)
	}
	if gotBody.Description != "Starbucks Coffee" || gotBody.Amount == nil || *gotBody.Amount != 5.75 {
		t.Errorf("request body = %+v, want description and amount carried through", gotBody)
	}

	if len(resp.Payees) != 1 || resp.Payees[0].ID != "p1" || resp.Payees[0].Confidence != 0.92 {
		t.Errorf("payees = %+v, want the decoded wire suggestion", resp.Payees)
	}
	if resp.Payees[0].Type != model.SuggestionAI {
		t.Errorf("payee type = %v, want ai_suggestion", resp.Payees[0].Type)
	}
	if len(resp.Categories) != 1 || resp.Categories[0].Name != "Coffee Shops" {
		t.Errorf("categories = %+v, want Coffee Shops", resp.Categories)
	}
}

func TestClient_StatusHandling(t *testing.T) {
	tests := []struct {
		check  func(t *testing.T, err error)
		name   string
		status int
	}{
		{
			name:   "429 maps to rate limit",
			status: http.StatusTooManyRequests,
			check: func(t *testing.T, err error) {
				if !errors.Is(err, common.ErrRateLimit) {
					t.Errorf("error = %v, want ErrRateLimit", err)
				}
			},
		},
		{
			name:   "500 is retryable",
			status: http.StatusInternalServerError,
			check: func(t *testing.T, err error) {
				if !common.IsRetryable(err) {
					t.Errorf("error = %v, want retryable", err)
				}
			},
		},
		{
			name:   "400 is not retryable",
			status: http.StatusBadRequest,
			check: func(t *testing.T, err error) {
				if err == nil {
					t.Fatal("error = nil, want failure")
				}
				if common.IsRetryable(err) {
					t.Errorf("error = %v, want non-retryable", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			client := NewClient(server.URL, "", time.Second)
			_, err := client.FetchSuggestions(context.Background(), service.SuggestionRequest{Description: "Starbucks Coffee"})
			tt.check(t, err)
		})
	}
}

func TestClient_RecordSelection(t *testing.T) {
	var gotPath string
	var gotEvent model.SelectionEvent

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotEvent)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", time.Second)

	confidence := 0.92
	event := model.SelectionEvent{
		EventID:              "evt-1",
		TransactionID:        "txn-1",
		Field:                model.FieldPayee,
		SelectedID:           "p1",
		SelectedName:         "Starbucks",
		WasSuggested:         true,
		SuggestionConfidence: &confidence,
		Method:               model.MethodSuggestion,
	}

	if err := client.RecordSelection(context.Background(), event); err != nil {
		t.Fatalf("RecordSelection error = %v", err)
	}

	if gotPath != "/v1/selections" {
		t.Errorf("request path = %q, want /v1/selections", gotPath)
	}
	if gotEvent.EventID != "evt-1" || !gotEvent.WasSuggested {
		t.Errorf("posted event = %+v, want the original event fields", gotEvent)
	}
	if gotEvent.SuggestionConfidence == nil || *gotEvent.SuggestionConfidence != 0.92 {
		t.Error("posted event lost the suggestion confidence")
	}
}
