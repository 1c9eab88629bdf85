// Package model defines the core domain models used throughout the application.
package model

import (
	"crypto/sha256"
	"fmt"
	"time"
)

// TransactionStatus indicates where a transaction is in its lifecycle.
type TransactionStatus string

const (
	// StatusPending represents a transaction that has not yet cleared.
	StatusPending TransactionStatus = "PENDING"
	// StatusCleared represents a settled transaction.
	StatusCleared TransactionStatus = "CLEARED"
	// StatusReconciled represents a transaction confirmed against a statement.
	StatusReconciled TransactionStatus = "RECONCILED"
)

// Transaction represents a single financial transaction from any source.
type Transaction struct {
	Date        time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ID          string
	Hash        string
	Description string // Raw transaction description as imported
	AccountID   string
	Status      TransactionStatus
	Type        string // Source transaction type (e.g., DEBIT, CHECK, PAYMENT, ATM)
	CheckNumber string
	PayeeID     *int64
	CategoryID  *int64
	Amount      float64
}

// GenerateHash creates a unique hash for duplicate detection.
func (t *Transaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%.2f:%s:%s",
		t.Date.Format("2006-01-02"),
		t.Amount,
		t.Description,
		t.AccountID)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// NeedsPayee reports whether the transaction still lacks a payee assignment.
func (t *Transaction) NeedsPayee() bool {
	return t.PayeeID == nil
}

// NeedsCategory reports whether the transaction still lacks a category.
func (t *Transaction) NeedsCategory() bool {
	return t.CategoryID == nil
}
