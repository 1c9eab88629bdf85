package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/mossline/ledgermind/internal/common"
	"github.com/mossline/ledgermind/internal/model"
)

func TestAccounts_CreateAndGet(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	if err := store.CreateAccount(ctx, testAccount("acc-1")); err != nil {
		t.Fatalf("CreateAccount() = %v", err)
	}

	account, err := store.GetAccount(ctx, "acc-1")
	if err != nil {
		t.Fatalf("GetAccount() = %v", err)
	}
	if account.Type != model.AccountTypeChecking || account.Currency != "USD" {
		t.Errorf("account = %+v", account)
	}

	_, err = store.GetAccount(ctx, "missing")
	if !errors.Is(err, common.ErrNotFound) {
		t.Errorf("GetAccount(missing) = %v, want ErrNotFound", err)
	}
}

func TestAccounts_RejectsUnknownType(t *testing.T) {
	store := newTestStorage(t)

	bad := &model.Account{ID: "acc-1", Name: "Mystery", Type: "offshore"}
	if err := store.CreateAccount(context.Background(), bad); err == nil {
		t.Error("CreateAccount with unknown type should fail")
	}
}

func TestAccounts_Update(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	account := testAccount("acc-1")
	if err := store.CreateAccount(ctx, account); err != nil {
		t.Fatalf("CreateAccount() = %v", err)
	}

	account.Name = "Joint Checking"
	if err := store.UpdateAccount(ctx, account); err != nil {
		t.Fatalf("UpdateAccount() = %v", err)
	}

	got, err := store.GetAccount(ctx, "acc-1")
	if err != nil {
		t.Fatalf("GetAccount() = %v", err)
	}
	if got.Name != "Joint Checking" {
		t.Errorf("name = %q, want Joint Checking", got.Name)
	}
}

func TestRecalculateBalance(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	if err := store.CreateAccount(ctx, testAccount("acc-1")); err != nil {
		t.Fatalf("CreateAccount() = %v", err)
	}

	// Amounts chosen to expose float accumulation drift: naive float64
	// summation of 0.1+0.2 style values does not land on exact cents.
	txns := []model.Transaction{
		testTransaction("t1", "acc-1", 0.10),
		testTransaction("t2", "acc-1", 0.20),
		testTransaction("t3", "acc-1", -0.30),
		testTransaction("t4", "acc-1", 1234.56),
	}
	pending := testTransaction("t5", "acc-1", 999.99)
	pending.Status = model.StatusPending
	txns = append(txns, pending)

	if err := store.SaveTransactions(ctx, txns); err != nil {
		t.Fatalf("SaveTransactions() = %v", err)
	}

	balance, err := store.RecalculateBalance(ctx, "acc-1")
	if err != nil {
		t.Fatalf("RecalculateBalance() = %v", err)
	}
	if balance != 1234.56 {
		t.Errorf("balance = %v, want 1234.56 (pending excluded, no drift)", balance)
	}

	account, err := store.GetAccount(ctx, "acc-1")
	if err != nil {
		t.Fatalf("GetAccount() = %v", err)
	}
	if account.Balance != 1234.56 {
		t.Errorf("stored balance = %v, want 1234.56", account.Balance)
	}
}

func TestRecalculateBalance_UnknownAccount(t *testing.T) {
	store := newTestStorage(t)

	_, err := store.RecalculateBalance(context.Background(), "missing")
	if !errors.Is(err, common.ErrNotFound) {
		t.Errorf("RecalculateBalance(missing) = %v, want ErrNotFound", err)
	}
}
