package engine

import (
	"context"
	"testing"
	"time"

	"github.com/mossline/ledgermind/internal/model"
	"github.com/mossline/ledgermind/internal/service"
	"github.com/mossline/ledgermind/internal/storage"
	"github.com/mossline/ledgermind/internal/suggest"
)

// fakeFetcher returns a canned result for every transaction.
type fakeFetcher struct {
	result suggest.Result
	calls  int
}

func (f *fakeFetcher) Fetch(_ context.Context, _ service.SuggestionRequest, _ suggest.KnownEntities) (*suggest.Result, error) {
	f.calls++
	result := f.result
	return &result, nil
}

// scriptedPrompter replays a fixed list of decisions and captures prompts.
type scriptedPrompter struct {
	decisions []Decision
	prompts   []Prompt
}

func (p *scriptedPrompter) Review(_ context.Context, prompt Prompt) (Decision, error) {
	p.prompts = append(p.prompts, prompt)
	if len(p.decisions) == 0 {
		return Decision{Quit: true}, nil
	}
	decision := p.decisions[0]
	p.decisions = p.decisions[1:]
	return decision, nil
}

// captureRecorder collects every event handed to it.
type captureRecorder struct {
	events []model.SelectionEvent
}

func (r *captureRecorder) Record(event model.SelectionEvent) {
	r.events = append(r.events, event)
}

func newTestStorage(t *testing.T) service.Storage {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteStorage() = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate() = %v", err)
	}

	err = store.CreateAccount(context.Background(), &model.Account{
		ID:   "acc-1",
		Name: "Checking",
		Type: model.AccountTypeChecking,
	})
	if err != nil {
		t.Fatalf("CreateAccount() = %v", err)
	}
	return store
}

func seedUnassigned(t *testing.T, store service.Storage, id, description string, amount float64) {
	t.Helper()

	txn := model.Transaction{
		ID:          id,
		Date:        time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		Description: description,
		Amount:      amount,
		AccountID:   "acc-1",
		Status:      model.StatusCleared,
	}
	txn.Hash = txn.GenerateHash()
	if err := store.SaveTransactions(context.Background(), []model.Transaction{txn}); err != nil {
		t.Fatalf("SaveTransactions() = %v", err)
	}
}

func TestReviewTransactions_AcceptSuggestions(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	payee := &model.Payee{Name: "Starbucks"}
	if err := store.CreatePayee(ctx, payee); err != nil {
		t.Fatalf("CreatePayee() = %v", err)
	}
	category, err := store.GetCategoryByName(ctx, "Coffee Shops")
	if err != nil {
		t.Fatalf("GetCategoryByName() = %v", err)
	}

	seedUnassigned(t, store, "t1", "STARBUCKS #1234", -5.25)

	payeeID := suggest.PayeeSuggestionID(payee.ID)
	categoryID := suggest.CategorySuggestionID(category.ID)
	fetcher := &fakeFetcher{result: suggest.Result{
		Payees: model.Suggestions{
			{ID: payeeID, Name: "Starbucks", Type: model.SuggestionExisting, Confidence: 0.92},
		},
		Categories: model.Suggestions{
			{ID: categoryID, Name: "Coffee Shops", Type: model.SuggestionExisting, Confidence: 0.88},
		},
	}}
	prompter := &scriptedPrompter{decisions: []Decision{
		{Payee: &Selection{SuggestionID: payeeID}, Category: &Selection{SuggestionID: categoryID}},
	}}
	recorder := &captureRecorder{}

	eng := New(store, fetcher, prompter, recorder, nil)
	stats, err := eng.ReviewTransactions(ctx)
	if err != nil {
		t.Fatalf("ReviewTransactions() = %v", err)
	}

	if stats.Reviewed != 1 || stats.Assigned != 1 || stats.Skipped != 0 {
		t.Errorf("stats = %+v", stats)
	}

	txn, err := store.GetTransactionByID(ctx, "t1")
	if err != nil {
		t.Fatalf("GetTransactionByID() = %v", err)
	}
	if txn.PayeeID == nil || *txn.PayeeID != payee.ID {
		t.Errorf("payee = %v, want %d", txn.PayeeID, payee.ID)
	}
	if txn.CategoryID == nil || *txn.CategoryID != category.ID {
		t.Errorf("category = %v, want %d", txn.CategoryID, category.ID)
	}

	updated, err := store.GetPayee(ctx, payee.ID)
	if err != nil {
		t.Fatalf("GetPayee() = %v", err)
	}
	if updated.UseCount != 1 {
		t.Errorf("use count = %d, want 1", updated.UseCount)
	}

	if len(recorder.events) != 2 {
		t.Fatalf("events = %d, want 2", len(recorder.events))
	}
	for _, event := range recorder.events {
		if !event.WasSuggested {
			t.Errorf("event %s should be marked as suggested", event.Field)
		}
		if event.Method != model.MethodSuggestion {
			t.Errorf("event method = %s, want suggestion", event.Method)
		}
		if event.SuggestionConfidence == nil {
			t.Errorf("event %s should carry the suggestion confidence", event.Field)
		}
	}

	if stats.Session.Shown != 2 || stats.Session.Accepted != 2 {
		t.Errorf("session = %+v, want 2 shown 2 accepted", stats.Session)
	}
	if stats.Session.AcceptanceRate != 1.0 {
		t.Errorf("acceptance rate = %v, want 1.0", stats.Session.AcceptanceRate)
	}
}

func TestReviewTransactions_ManualEntryCreatesEntities(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	seedUnassigned(t, store, "t1", "ACME WIDGETS INVOICE", -120.00)

	fetcher := &fakeFetcher{}
	prompter := &scriptedPrompter{decisions: []Decision{
		{Payee: &Selection{Name: "Acme Widgets"}, Category: &Selection{Name: "Office Supplies"}},
	}}
	recorder := &captureRecorder{}

	eng := New(store, fetcher, prompter, recorder, nil)
	stats, err := eng.ReviewTransactions(ctx)
	if err != nil {
		t.Fatalf("ReviewTransactions() = %v", err)
	}
	if stats.Assigned != 1 {
		t.Fatalf("assigned = %d, want 1", stats.Assigned)
	}

	payee, err := store.GetPayeeByName(ctx, "Acme Widgets")
	if err != nil {
		t.Fatalf("created payee missing: %v", err)
	}
	if payee.UseCount != 1 {
		t.Errorf("use count = %d, want 1", payee.UseCount)
	}
	category, err := store.GetCategoryByName(ctx, "Office Supplies")
	if err != nil {
		t.Fatalf("created category missing: %v", err)
	}
	if category.Type != model.CategoryTypeExpense {
		t.Errorf("category type = %s, want expense for a negative amount", category.Type)
	}

	if len(recorder.events) != 2 {
		t.Fatalf("events = %d, want 2", len(recorder.events))
	}
	for _, event := range recorder.events {
		if event.WasSuggested {
			t.Errorf("manual event %s should not be marked as suggested", event.Field)
		}
		if event.Method != model.MethodManual {
			t.Errorf("event method = %s, want manual", event.Method)
		}
	}

	// Nothing was shown, so the session counters stay untouched
	if stats.Session.Shown != 0 || stats.Session.AcceptanceRate != 0 {
		t.Errorf("session = %+v, want empty", stats.Session)
	}
}

func TestReviewTransactions_NewPayeeFromSuggestion(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	seedUnassigned(t, store, "t1", "BLUE BOTTLE COFFEE", -6.50)

	fetcher := &fakeFetcher{result: suggest.Result{
		Payees: model.Suggestions{
			{ID: "s-remote-1", Name: "Blue Bottle", Type: model.SuggestionAI, Confidence: 0.9},
		},
	}}
	prompter := &scriptedPrompter{decisions: []Decision{
		{Payee: &Selection{SuggestionID: "s-remote-1"}},
	}}
	recorder := &captureRecorder{}

	eng := New(store, fetcher, prompter, recorder, nil)
	if _, err := eng.ReviewTransactions(ctx); err != nil {
		t.Fatalf("ReviewTransactions() = %v", err)
	}

	payee, err := store.GetPayeeByName(ctx, "Blue Bottle")
	if err != nil {
		t.Fatalf("payee from accepted suggestion missing: %v", err)
	}
	txn, err := store.GetTransactionByID(ctx, "t1")
	if err != nil {
		t.Fatalf("GetTransactionByID() = %v", err)
	}
	if txn.PayeeID == nil || *txn.PayeeID != payee.ID {
		t.Errorf("payee = %v, want %d", txn.PayeeID, payee.ID)
	}

	if len(recorder.events) != 1 {
		t.Fatalf("events = %d, want 1", len(recorder.events))
	}
	event := recorder.events[0]
	if event.SelectedID != "s-remote-1" || !event.WasSuggested {
		t.Errorf("event = %+v, want the shown suggestion id marked as suggested", event)
	}
}

func TestReviewTransactions_SkipAndQuit(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	seedUnassigned(t, store, "t1", "FIRST TRANSACTION", -10)
	seedUnassigned(t, store, "t2", "SECOND TRANSACTION", -20)

	fetcher := &fakeFetcher{}
	prompter := &scriptedPrompter{decisions: []Decision{
		{Skip: true},
		{Quit: true},
	}}

	eng := New(store, fetcher, prompter, &captureRecorder{}, nil)
	stats, err := eng.ReviewTransactions(ctx)
	if err != nil {
		t.Fatalf("ReviewTransactions() = %v", err)
	}

	if stats.Assigned != 0 {
		t.Errorf("assigned = %d, want 0", stats.Assigned)
	}
	if stats.Skipped != 1 {
		t.Errorf("skipped = %d, want 1", stats.Skipped)
	}
}

func TestReviewTransactions_AutoExpandFlags(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	seedUnassigned(t, store, "t1", "SHELL OIL 57442", -40)

	fetcher := &fakeFetcher{result: suggest.Result{
		Payees: model.Suggestions{
			{ID: "s1", Name: "Shell", Type: model.SuggestionAI, Confidence: 0.95},
		},
		Categories: model.Suggestions{
			{ID: "s2", Name: "Gas", Type: model.SuggestionAI, Confidence: 0.5},
		},
	}}
	prompter := &scriptedPrompter{decisions: []Decision{{Skip: true}}}

	eng := New(store, fetcher, prompter, &captureRecorder{}, nil)
	if _, err := eng.ReviewTransactions(ctx); err != nil {
		t.Fatalf("ReviewTransactions() = %v", err)
	}

	if len(prompter.prompts) != 1 {
		t.Fatalf("prompts = %d, want 1", len(prompter.prompts))
	}
	prompt := prompter.prompts[0]
	if !prompt.AutoExpandPayee {
		t.Error("payee list with a high-confidence suggestion should auto-expand")
	}
	if prompt.AutoExpandCategory {
		t.Error("category list with only low confidence should stay collapsed")
	}
}
