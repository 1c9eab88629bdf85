package model

import (
	"time"

	"github.com/google/uuid"
)

// SelectionMethod tags how the user arrived at a value.
type SelectionMethod string

const (
	// MethodSuggestion means the user picked a shown suggestion.
	MethodSuggestion SelectionMethod = "suggestion"
	// MethodManual means the user typed or chose the value themselves.
	MethodManual SelectionMethod = "manual"
	// MethodBulk means the value was applied through a bulk update.
	MethodBulk SelectionMethod = "bulk"
)

// SelectionEvent records a user's final choice for a transaction field.
// It is reported to the insight service as best-effort feedback.
type SelectionEvent struct {
	SelectedAt           time.Time        `json:"selected_at"`
	EventID              string           `json:"event_id"`
	TransactionID        string           `json:"transaction_id"`
	Field                FieldType        `json:"field_type"`
	SelectedID           string           `json:"selected_value_id"`
	SelectedName         string           `json:"selected_value_name"`
	Description          string           `json:"description"`
	AccountType          AccountType      `json:"account_type,omitempty"`
	Method               SelectionMethod  `json:"method"`
	SuggestionConfidence *float64         `json:"suggestion_confidence,omitempty"`
	Amount               float64          `json:"amount"`
	WasSuggested         bool             `json:"was_suggested"`
}

// NewSelectionEvent builds a selection event for a committed field edit.
// WasSuggested is set only when the selected id appears in the suggestion
// list that was shown for this field at selection time, and the event then
// carries that suggestion's confidence.
func NewSelectionEvent(txn Transaction, field FieldType, selectedID, selectedName string, accountType AccountType, shown Suggestions, method SelectionMethod) SelectionEvent {
	event := SelectionEvent{
		EventID:       uuid.NewString(),
		TransactionID: txn.ID,
		Field:         field,
		SelectedID:    selectedID,
		SelectedName:  selectedName,
		Description:   txn.Description,
		Amount:        txn.Amount,
		AccountType:   accountType,
		Method:        method,
		SelectedAt:    time.Now().UTC(),
	}

	if match := shown.FindByID(selectedID); match != nil {
		event.WasSuggested = true
		confidence := match.Confidence
		event.SuggestionConfidence = &confidence
	}

	return event
}
