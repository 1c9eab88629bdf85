package storage

import (
	"context"
	"testing"
	"time"

	"github.com/mossline/ledgermind/internal/model"
	"github.com/mossline/ledgermind/internal/service"
)

func seedTransactions(t *testing.T, store *SQLiteStorage) {
	t.Helper()
	ctx := context.Background()

	if err := store.CreateAccount(ctx, testAccount("acc-1")); err != nil {
		t.Fatalf("CreateAccount() = %v", err)
	}
	other := testAccount("acc-2")
	other.Name = "Travel Card"
	other.Type = model.AccountTypeCredit
	if err := store.CreateAccount(ctx, other); err != nil {
		t.Fatalf("CreateAccount() = %v", err)
	}

	txns := []model.Transaction{
		{
			ID: "t1", Date: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
			Description: "STARBUCKS COFFEE", Amount: -5.75, AccountID: "acc-1",
		},
		{
			ID: "t2", Date: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
			Description: "WHOLE FOODS MARKET", Amount: -82.13, AccountID: "acc-1",
		},
		{
			ID: "t3", Date: time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC),
			Description: "PAYROLL DEPOSIT", Amount: 2500.00, AccountID: "acc-1",
		},
		{
			ID: "t4", Date: time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC),
			Description: "UNITED AIRLINES", Amount: -412.40, AccountID: "acc-2",
		},
	}
	if err := store.SaveTransactions(ctx, txns); err != nil {
		t.Fatalf("SaveTransactions() = %v", err)
	}
}

func TestSaveTransactions_DeduplicatesByHash(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	if err := store.CreateAccount(ctx, testAccount("acc-1")); err != nil {
		t.Fatalf("CreateAccount() = %v", err)
	}

	first := testTransaction("t1", "acc-1", -5.75)
	duplicate := first
	duplicate.ID = "t1-reimport" // same date/amount/description/account

	if err := store.SaveTransactions(ctx, []model.Transaction{first}); err != nil {
		t.Fatalf("first save = %v", err)
	}
	if err := store.SaveTransactions(ctx, []model.Transaction{duplicate}); err != nil {
		t.Fatalf("re-import save = %v", err)
	}

	count, err := store.CountTransactions(ctx, service.TransactionFilter{})
	if err != nil {
		t.Fatalf("CountTransactions() = %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1 (duplicate import ignored)", count)
	}
}

func TestGetTransactions_FilterAndSort(t *testing.T) {
	store := newTestStorage(t)
	seedTransactions(t, store)
	ctx := context.Background()

	// Account filter
	txns, err := store.GetTransactions(ctx, service.TransactionFilter{AccountID: "acc-2"})
	if err != nil {
		t.Fatalf("GetTransactions() = %v", err)
	}
	if len(txns) != 1 || txns[0].ID != "t4" {
		t.Errorf("account filter returned %+v, want only t4", txns)
	}

	// Search filter
	txns, err = store.GetTransactions(ctx, service.TransactionFilter{Search: "starbucks"})
	if err != nil {
		t.Fatalf("GetTransactions() = %v", err)
	}
	if len(txns) != 1 || txns[0].ID != "t1" {
		t.Errorf("search filter returned %d rows, want only t1", len(txns))
	}

	// Sort by amount descending
	txns, err = store.GetTransactions(ctx, service.TransactionFilter{
		SortBy:     service.SortByAmount,
		Descending: true,
	})
	if err != nil {
		t.Fatalf("GetTransactions() = %v", err)
	}
	if txns[0].ID != "t3" {
		t.Errorf("first row by amount desc = %s, want t3 (payroll)", txns[0].ID)
	}

	// Date range
	start := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)
	txns, err = store.GetTransactions(ctx, service.TransactionFilter{StartDate: &start, EndDate: &end})
	if err != nil {
		t.Fatalf("GetTransactions() = %v", err)
	}
	if len(txns) != 2 {
		t.Errorf("date range returned %d rows, want 2", len(txns))
	}
}

func TestGetTransactions_Pagination(t *testing.T) {
	store := newTestStorage(t)
	seedTransactions(t, store)
	ctx := context.Background()

	page1, err := store.GetTransactions(ctx, service.TransactionFilter{Limit: 2})
	if err != nil {
		t.Fatalf("page 1 = %v", err)
	}
	page2, err := store.GetTransactions(ctx, service.TransactionFilter{Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("page 2 = %v", err)
	}

	if len(page1) != 2 || len(page2) != 2 {
		t.Fatalf("page sizes = %d, %d, want 2, 2", len(page1), len(page2))
	}
	seen := map[string]bool{}
	for _, txn := range append(page1, page2...) {
		if seen[txn.ID] {
			t.Errorf("transaction %s appears on both pages", txn.ID)
		}
		seen[txn.ID] = true
	}
}

func TestUpdateTransactionAssignments(t *testing.T) {
	store := newTestStorage(t)
	seedTransactions(t, store)
	ctx := context.Background()

	payee := &model.Payee{Name: "Starbucks"}
	if err := store.CreatePayee(ctx, payee); err != nil {
		t.Fatalf("CreatePayee() = %v", err)
	}
	category, err := store.GetCategoryByName(ctx, "Coffee Shops")
	if err != nil {
		t.Fatalf("GetCategoryByName() = %v", err)
	}

	if err := store.UpdateTransactionPayee(ctx, "t1", &payee.ID); err != nil {
		t.Fatalf("UpdateTransactionPayee() = %v", err)
	}
	if err := store.UpdateTransactionCategory(ctx, "t1", &category.ID); err != nil {
		t.Fatalf("UpdateTransactionCategory() = %v", err)
	}

	txn, err := store.GetTransactionByID(ctx, "t1")
	if err != nil {
		t.Fatalf("GetTransactionByID() = %v", err)
	}
	if txn.PayeeID == nil || *txn.PayeeID != payee.ID {
		t.Errorf("payee id = %v, want %d", txn.PayeeID, payee.ID)
	}
	if txn.CategoryID == nil || *txn.CategoryID != category.ID {
		t.Errorf("category id = %v, want %d", txn.CategoryID, category.ID)
	}

	// Clearing an assignment
	if err := store.UpdateTransactionPayee(ctx, "t1", nil); err != nil {
		t.Fatalf("clear payee = %v", err)
	}
	txn, _ = store.GetTransactionByID(ctx, "t1")
	if txn.PayeeID != nil {
		t.Error("payee id not cleared")
	}
}

func TestBulkUpdateTransactions(t *testing.T) {
	store := newTestStorage(t)
	seedTransactions(t, store)
	ctx := context.Background()

	category, err := store.GetCategoryByName(ctx, "Dining")
	if err != nil {
		t.Fatalf("GetCategoryByName() = %v", err)
	}

	updated, err := store.BulkUpdateTransactions(ctx, []string{"t1", "t2", "missing"}, nil, &category.ID)
	if err != nil {
		t.Fatalf("BulkUpdateTransactions() = %v", err)
	}
	if updated != 2 {
		t.Errorf("updated = %d, want 2", updated)
	}

	unassigned, err := store.GetTransactions(ctx, service.TransactionFilter{Unassigned: true})
	if err != nil {
		t.Fatalf("GetTransactions() = %v", err)
	}
	// t1/t2 still miss a payee, t3/t4 miss everything
	if len(unassigned) != 4 {
		t.Errorf("unassigned count = %d, want 4", len(unassigned))
	}
}

func TestDeleteTransactions(t *testing.T) {
	store := newTestStorage(t)
	seedTransactions(t, store)
	ctx := context.Background()

	deleted, err := store.DeleteTransactions(ctx, []string{"t1", "t4"})
	if err != nil {
		t.Fatalf("DeleteTransactions() = %v", err)
	}
	if deleted != 2 {
		t.Errorf("deleted = %d, want 2", deleted)
	}

	count, err := store.CountTransactions(ctx, service.TransactionFilter{})
	if err != nil {
		t.Fatalf("CountTransactions() = %v", err)
	}
	if count != 2 {
		t.Errorf("remaining = %d, want 2", count)
	}
}
