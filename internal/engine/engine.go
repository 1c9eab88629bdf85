// Package engine orchestrates the review of unassigned transactions:
// fetching suggestions, prompting the user, persisting selections and
// reporting feedback.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mossline/ledgermind/internal/common"
	"github.com/mossline/ledgermind/internal/feedback"
	"github.com/mossline/ledgermind/internal/model"
	"github.com/mossline/ledgermind/internal/service"
	"github.com/mossline/ledgermind/internal/suggest"
)

// ReviewEngine walks unassigned transactions and applies the user's
// payee and category selections.
type ReviewEngine struct {
	storage   service.Storage
	fetcher   SuggestionFetcher
	prompter  Prompter
	recorder  service.SelectionRecorder
	metrics   *feedback.SessionMetrics
	logger    *slog.Logger
	batchSize int
}

// Config holds configuration options for the review engine.
type Config struct {
	BatchSize int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{BatchSize: 50}
}

// New creates a review engine with the default configuration.
func New(storage service.Storage, fetcher SuggestionFetcher, prompter Prompter, recorder service.SelectionRecorder, logger *slog.Logger) *ReviewEngine {
	return NewWithConfig(storage, fetcher, prompter, recorder, logger, DefaultConfig())
}

// NewWithConfig creates a review engine with custom configuration.
func NewWithConfig(storage service.Storage, fetcher SuggestionFetcher, prompter Prompter, recorder service.SelectionRecorder, logger *slog.Logger, config Config) *ReviewEngine {
	if logger == nil {
		logger = slog.Default()
	}
	batchSize := config.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultConfig().BatchSize
	}
	return &ReviewEngine{
		storage:   storage,
		fetcher:   fetcher,
		prompter:  prompter,
		recorder:  recorder,
		metrics:   feedback.NewSessionMetrics(),
		logger:    logger,
		batchSize: batchSize,
	}
}

// Stats summarizes a review run.
type Stats struct {
	Reviewed int
	Assigned int
	Skipped  int
	Session  feedback.Snapshot
}

// ReviewTransactionsWith runs a review session with a prompter supplied at
// call time, for prompters whose construction needs the engine's metrics.
func (e *ReviewEngine) ReviewTransactionsWith(ctx context.Context, prompter Prompter) (Stats, error) {
	e.prompter = prompter
	return e.ReviewTransactions(ctx)
}

// ReviewTransactions prompts for every transaction missing a payee or
// category, oldest first, until the list is exhausted or the user quits.
func (e *ReviewEngine) ReviewTransactions(ctx context.Context) (Stats, error) {
	var stats Stats

	accountTypes, err := e.loadAccountTypes(ctx)
	if err != nil {
		return stats, err
	}

	for {
		transactions, err := e.storage.GetTransactions(ctx, service.TransactionFilter{
			Unassigned: true,
			SortBy:     service.SortByDate,
			Limit:      e.batchSize,
		})
		if err != nil {
			return stats, fmt.Errorf("failed to load transactions: %w", err)
		}
		if len(transactions) == 0 {
			break
		}

		quit, progressed, err := e.reviewBatch(ctx, transactions, accountTypes, &stats)
		if err != nil {
			return stats, err
		}
		if quit || !progressed {
			break
		}
	}

	stats.Session = e.metrics.Snapshot()
	e.logger.Info("review session finished",
		"reviewed", stats.Reviewed,
		"assigned", stats.Assigned,
		"skipped", stats.Skipped,
		"acceptance_rate", stats.Session.AcceptanceRate)
	return stats, nil
}

// reviewBatch handles one page of transactions. It reports whether the user
// quit and whether any transaction left the unassigned set, so the caller
// does not loop forever over all-skipped pages.
func (e *ReviewEngine) reviewBatch(ctx context.Context, transactions []model.Transaction, accountTypes map[string]model.AccountType, stats *Stats) (quit, progressed bool, err error) {
	known, err := e.loadKnownEntities(ctx)
	if err != nil {
		return false, false, err
	}

	for i := range transactions {
		select {
		case <-ctx.Done():
			return true, progressed, ctx.Err()
		default:
		}

		txn := transactions[i]
		prompt, result := e.buildPrompt(ctx, txn, accountTypes[txn.AccountID], known)

		decision, err := e.prompter.Review(ctx, prompt)
		if err != nil {
			return false, progressed, fmt.Errorf("prompter failed: %w", err)
		}

		stats.Reviewed++
		e.observe(txn, result, decision)

		if decision.Quit {
			return true, progressed, nil
		}
		if decision.Skip || (decision.Payee == nil && decision.Category == nil) {
			stats.Skipped++
			continue
		}

		if err := e.apply(ctx, txn, result, decision, accountTypes[txn.AccountID]); err != nil {
			return false, progressed, err
		}
		stats.Assigned++

		// A transaction leaves the unassigned set only when both fields
		// are filled; anything less and the next page would refetch it.
		payeeDone := !txn.NeedsPayee() || decision.Payee != nil
		categoryDone := !txn.NeedsCategory() || decision.Category != nil
		if payeeDone && categoryDone {
			progressed = true
		}

		// New payees or categories change the known-entity set, which feeds
		// both deduplication and the fallback lists.
		known, err = e.loadKnownEntities(ctx)
		if err != nil {
			return false, progressed, err
		}
	}

	return false, progressed, nil
}

// buildPrompt fetches suggestions for the transaction. A fetch failure is not
// fatal: the fallback lists still let the user pick an existing entity.
func (e *ReviewEngine) buildPrompt(ctx context.Context, txn model.Transaction, accountType model.AccountType, known suggest.KnownEntities) (Prompt, *suggest.Result) {
	amount := txn.Amount
	result, err := e.fetcher.Fetch(ctx, service.SuggestionRequest{
		Description: txn.Description,
		AccountID:   txn.AccountID,
		AccountType: accountType,
		Amount:      &amount,
	}, known)
	if err != nil {
		if !errors.Is(err, common.ErrSuggestionUnavailable) {
			e.logger.Warn("suggestion fetch failed", "transaction", txn.ID, "error", err)
		}
		if result == nil {
			result = &suggest.Result{}
		}
	}

	return Prompt{
		Transaction:        txn,
		Payees:             result.Payees,
		Categories:         result.Categories,
		AutoExpandPayee:    suggest.ShouldAutoExpand(txn.NeedsPayee(), txn.Description, result.Payees),
		AutoExpandCategory: suggest.ShouldAutoExpand(txn.NeedsCategory(), txn.Description, result.Categories),
		Fallback:           result.Fallback,
	}, result
}

// observe updates the session counters from one prompt outcome.
func (e *ReviewEngine) observe(txn model.Transaction, result *suggest.Result, decision Decision) {
	fields := []struct {
		selection *Selection
		shown     model.Suggestions
		needed    bool
	}{
		{decision.Payee, result.Payees, txn.NeedsPayee()},
		{decision.Category, result.Categories, txn.NeedsCategory()},
	}

	for _, f := range fields {
		if !f.needed || len(f.shown) == 0 {
			continue
		}
		e.metrics.SuggestionsShown(1)
		switch {
		case f.selection != nil && f.selection.SuggestionID != "":
			e.metrics.SuggestionAccepted()
		default:
			e.metrics.SuggestionRejected()
		}
	}
}

// apply persists the decision in one database transaction, then reports the
// selection events. Events go out only after the commit succeeds.
func (e *ReviewEngine) apply(ctx context.Context, txn model.Transaction, result *suggest.Result, decision Decision, accountType model.AccountType) error {
	tx, err := e.storage.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var events []model.SelectionEvent

	if decision.Payee != nil {
		payee, err := e.resolvePayee(ctx, tx, *decision.Payee, result.Payees)
		if err != nil {
			return err
		}
		if err := tx.UpdateTransactionPayee(ctx, txn.ID, &payee.ID); err != nil {
			return fmt.Errorf("failed to assign payee: %w", err)
		}
		if err := tx.IncrementPayeeUseCount(ctx, payee.ID); err != nil {
			return fmt.Errorf("failed to update payee usage: %w", err)
		}
		selectedID := decision.Payee.SuggestionID
		if selectedID == "" {
			selectedID = suggest.PayeeSuggestionID(payee.ID)
		}
		events = append(events, model.NewSelectionEvent(txn, model.FieldPayee,
			selectedID, payee.Name, accountType,
			result.Payees, methodFor(*decision.Payee)))
	}

	if decision.Category != nil {
		category, err := e.resolveCategory(ctx, tx, *decision.Category, result.Categories, txn)
		if err != nil {
			return err
		}
		if err := tx.UpdateTransactionCategory(ctx, txn.ID, &category.ID); err != nil {
			return fmt.Errorf("failed to assign category: %w", err)
		}
		selectedID := decision.Category.SuggestionID
		if selectedID == "" {
			selectedID = suggest.CategorySuggestionID(category.ID)
		}
		events = append(events, model.NewSelectionEvent(txn, model.FieldCategory,
			selectedID, category.Name, accountType,
			result.Categories, methodFor(*decision.Category)))
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit review: %w", err)
	}

	if e.recorder != nil {
		for _, event := range events {
			e.recorder.Record(event)
		}
	}
	return nil
}

// resolvePayee turns a selection into a stored payee, creating one when the
// user typed a new name or accepted a suggestion with no existing entity.
func (e *ReviewEngine) resolvePayee(ctx context.Context, store service.Storage, sel Selection, shown model.Suggestions) (*model.Payee, error) {
	name := strings.TrimSpace(sel.Name)

	if sel.SuggestionID != "" {
		if id, ok := suggest.ParsePayeeSuggestionID(sel.SuggestionID); ok {
			payee, err := store.GetPayee(ctx, id)
			if err == nil {
				return payee, nil
			}
			if !errors.Is(err, common.ErrNotFound) {
				return nil, fmt.Errorf("failed to load payee: %w", err)
			}
		}
		if match := shown.FindByID(sel.SuggestionID); match != nil && name == "" {
			name = match.Name
		}
	}

	if name == "" {
		return nil, common.NewUserError("a payee selection needs a name", nil)
	}

	payee, err := store.GetPayeeByName(ctx, name)
	if err == nil {
		return payee, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up payee: %w", err)
	}

	created := &model.Payee{Name: name}
	if err := store.CreatePayee(ctx, created); err != nil {
		return nil, fmt.Errorf("failed to create payee: %w", err)
	}
	e.logger.Info("created payee", "name", name)
	return created, nil
}

// resolveCategory mirrors resolvePayee for categories. New categories get a
// type inferred from the transaction's direction.
func (e *ReviewEngine) resolveCategory(ctx context.Context, store service.Storage, sel Selection, shown model.Suggestions, txn model.Transaction) (*model.Category, error) {
	name := strings.TrimSpace(sel.Name)

	if sel.SuggestionID != "" {
		if id, ok := suggest.ParseCategorySuggestionID(sel.SuggestionID); ok {
			category, err := store.GetCategoryByID(ctx, id)
			if err == nil {
				return category, nil
			}
			if !errors.Is(err, common.ErrNotFound) {
				return nil, fmt.Errorf("failed to load category: %w", err)
			}
		}
		if match := shown.FindByID(sel.SuggestionID); match != nil && name == "" {
			name = match.Name
		}
	}

	if name == "" {
		return nil, common.NewUserError("a category selection needs a name", nil)
	}

	category, err := store.GetCategoryByName(ctx, name)
	if err == nil {
		return category, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up category: %w", err)
	}

	categoryType := model.CategoryTypeExpense
	if txn.Amount > 0 {
		categoryType = model.CategoryTypeIncome
	}
	created, err := store.CreateCategory(ctx, name, "", categoryType)
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	e.logger.Info("created category", "name", name, "type", categoryType)
	return created, nil
}

func (e *ReviewEngine) loadAccountTypes(ctx context.Context) (map[string]model.AccountType, error) {
	accounts, err := e.storage.GetAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}
	types := make(map[string]model.AccountType, len(accounts))
	for i := range accounts {
		types[accounts[i].ID] = accounts[i].Type
	}
	return types, nil
}

func (e *ReviewEngine) loadKnownEntities(ctx context.Context) (suggest.KnownEntities, error) {
	payees, err := e.storage.GetPayees(ctx)
	if err != nil {
		return suggest.KnownEntities{}, fmt.Errorf("failed to load payees: %w", err)
	}
	categories, err := e.storage.GetCategories(ctx)
	if err != nil {
		return suggest.KnownEntities{}, fmt.Errorf("failed to load categories: %w", err)
	}
	return suggest.KnownEntities{Payees: payees, Categories: categories}, nil
}

// Metrics exposes the session counters, primarily for status displays.
func (e *ReviewEngine) Metrics() *feedback.SessionMetrics {
	return e.metrics
}

func methodFor(sel Selection) model.SelectionMethod {
	if sel.SuggestionID != "" {
		return model.MethodSuggestion
	}
	return model.MethodManual
}
