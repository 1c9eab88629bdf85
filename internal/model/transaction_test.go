package model

import (
	"testing"
	"time"
)

func TestTransaction_GenerateHash(t *testing.T) {
	base := Transaction{
		ID:          "txn1",
		Date:        time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
		Description: "STARBUCKS",
		Amount:      5.25,
		AccountID:   "acc1",
	}

	tests := []struct {
		mutate   func(*Transaction)
		name     string
		wantSame bool
	}{
		{
			name:     "identical transactions have same hash",
			mutate:   func(_ *Transaction) {},
			wantSame: true,
		},
		{
			name:     "different amounts produce different hashes",
			mutate:   func(txn *Transaction) { txn.Amount = 6.25 },
			wantSame: false,
		},
		{
			name:     "different descriptions produce different hashes",
			mutate:   func(txn *Transaction) { txn.Description = "PEETS" },
			wantSame: false,
		},
		{
			name:     "different accounts produce different hashes",
			mutate:   func(txn *Transaction) { txn.AccountID = "acc2" },
			wantSame: false,
		},
		{
			name:     "different dates produce different hashes",
			mutate:   func(txn *Transaction) { txn.Date = txn.Date.AddDate(0, 0, 1) },
			wantSame: false,
		},
		{
			name: "time of day does not affect the hash",
			mutate: func(txn *Transaction) {
				txn.Date = time.Date(2025, 1, 1, 23, 59, 0, 0, time.UTC)
			},
			wantSame: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			other := base
			tt.mutate(&other)

			same := base.GenerateHash() == other.GenerateHash()
			if same != tt.wantSame {
				t.Errorf("hash equality = %v, want %v", same, tt.wantSame)
			}
		})
	}
}

func TestTransaction_Needs(t *testing.T) {
	txn := Transaction{ID: "txn1"}
	if !txn.NeedsPayee() || !txn.NeedsCategory() {
		t.Error("fresh transaction should need both payee and category")
	}

	payeeID := int64(3)
	categoryID := int64(7)
	txn.PayeeID = &payeeID
	txn.CategoryID = &categoryID

	if txn.NeedsPayee() || txn.NeedsCategory() {
		t.Error("assigned transaction should not need payee or category")
	}
}
