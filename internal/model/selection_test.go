package model

import (
	"testing"
	"time"
)

func sampleTxn() Transaction {
	return Transaction{
		ID:          "txn-1",
		Date:        time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
		Description: "Starbucks Coffee",
		Amount:      5.75,
		AccountID:   "acc-1",
	}
}

func TestNewSelectionEvent_MatchesShownSuggestion(t *testing.T) {
	shown := Suggestions{
		{ID: "p1", Name: "Starbucks", Type: SuggestionAI, Confidence: 0.92},
		{ID: "p2", Name: "Peets", Type: SuggestionAI, Confidence: 0.4},
	}

	event := NewSelectionEvent(sampleTxn(), FieldPayee, "p1", "Starbucks", AccountTypeChecking, shown, MethodSuggestion)

	if !event.WasSuggested {
		t.Error("WasSuggested = false, want true for a selected id present in the shown list")
	}
	if event.SuggestionConfidence == nil {
		t.Fatal("SuggestionConfidence = nil, want the matched suggestion's score")
	}
	if *event.SuggestionConfidence != 0.92 {
		t.Errorf("SuggestionConfidence = %v, want 0.92", *event.SuggestionConfidence)
	}
	if event.Field != FieldPayee {
		t.Errorf("Field = %v, want %v", event.Field, FieldPayee)
	}
	if event.TransactionID != "txn-1" {
		t.Errorf("TransactionID = %q, want %q", event.TransactionID, "txn-1")
	}
	if event.EventID == "" {
		t.Error("EventID is empty, want a generated id")
	}
}

func TestNewSelectionEvent_NoMatch(t *testing.T) {
	shown := Suggestions{
		{ID: "p1", Name: "Starbucks", Type: SuggestionAI, Confidence: 0.92},
	}

	event := NewSelectionEvent(sampleTxn(), FieldPayee, "p9", "Corner Deli", AccountTypeChecking, shown, MethodManual)

	if event.WasSuggested {
		t.Error("WasSuggested = true, want false for a selection outside the shown list")
	}
	if event.SuggestionConfidence != nil {
		t.Errorf("SuggestionConfidence = %v, want nil", *event.SuggestionConfidence)
	}
}

func TestNewSelectionEvent_EmptyShownList(t *testing.T) {
	event := NewSelectionEvent(sampleTxn(), FieldCategory, "c1", "Coffee Shops", AccountTypeCredit, nil, MethodManual)

	if event.WasSuggested {
		t.Error("WasSuggested = true, want false when nothing was shown")
	}
	if event.SuggestionConfidence != nil {
		t.Error("SuggestionConfidence should be absent when nothing was shown")
	}
}

func TestNewSelectionEvent_UniqueEventIDs(t *testing.T) {
	first := NewSelectionEvent(sampleTxn(), FieldPayee, "p1", "Starbucks", AccountTypeChecking, nil, MethodManual)
	second := NewSelectionEvent(sampleTxn(), FieldPayee, "p1", "Starbucks", AccountTypeChecking, nil, MethodManual)

	if first.EventID == second.EventID {
		t.Error("two selection events share an EventID; each selection must be distinct")
	}
}
