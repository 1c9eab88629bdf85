package engine

import (
	"context"

	"github.com/mossline/ledgermind/internal/model"
	"github.com/mossline/ledgermind/internal/service"
	"github.com/mossline/ledgermind/internal/suggest"
)

// SuggestionFetcher provides ranked suggestions for a transaction.
type SuggestionFetcher interface {
	Fetch(ctx context.Context, req service.SuggestionRequest, known suggest.KnownEntities) (*suggest.Result, error)
}

// Prompt is everything the prompter needs to review one transaction.
type Prompt struct {
	Transaction        model.Transaction
	Payees             model.Suggestions
	Categories         model.Suggestions
	AutoExpandPayee    bool
	AutoExpandCategory bool
	Fallback           bool
}

// Selection is the user's choice for a single field. SuggestionID is set when
// the user picked from the shown list; otherwise Name carries a manual entry.
type Selection struct {
	SuggestionID string
	Name         string
}

// Decision is the prompter's outcome for one transaction.
type Decision struct {
	Payee    *Selection
	Category *Selection
	Skip     bool
	Quit     bool
}

// Prompter defines the contract for user interaction during review.
type Prompter interface {
	Review(ctx context.Context, prompt Prompt) (Decision, error)
}
