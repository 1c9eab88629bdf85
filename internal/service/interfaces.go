// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/mossline/ledgermind/internal/model"
)

// SortField names a transaction list sort column.
type SortField string

// Transaction sort columns.
const (
	SortByDate        SortField = "date"
	SortByAmount      SortField = "amount"
	SortByDescription SortField = "description"
)

// TransactionFilter defines filtering, sorting and pagination for transaction queries.
type TransactionFilter struct {
	StartDate  *time.Time
	EndDate    *time.Time
	PayeeID    *int64
	CategoryID *int64
	AccountID  string
	Search     string
	SortBy     SortField
	Limit      int
	Offset     int
	Descending bool
	Unassigned bool // Only transactions missing a payee or category
}

// Storage defines the contract for the persistence layer.
type Storage interface {
	// Account operations
	CreateAccount(ctx context.Context, account *model.Account) error
	GetAccount(ctx context.Context, id string) (*model.Account, error)
	GetAccounts(ctx context.Context) ([]model.Account, error)
	UpdateAccount(ctx context.Context, account *model.Account) error
	RecalculateBalance(ctx context.Context, accountID string) (float64, error)

	// Transaction operations
	SaveTransactions(ctx context.Context, transactions []model.Transaction) error
	GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error)
	GetTransactions(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error)
	CountTransactions(ctx context.Context, filter TransactionFilter) (int, error)
	UpdateTransactionPayee(ctx context.Context, transactionID string, payeeID *int64) error
	UpdateTransactionCategory(ctx context.Context, transactionID string, categoryID *int64) error
	BulkUpdateTransactions(ctx context.Context, transactionIDs []string, payeeID, categoryID *int64) (int, error)
	DeleteTransactions(ctx context.Context, transactionIDs []string) (int, error)

	// Payee operations
	CreatePayee(ctx context.Context, payee *model.Payee) error
	GetPayee(ctx context.Context, id int64) (*model.Payee, error)
	GetPayeeByName(ctx context.Context, name string) (*model.Payee, error)
	GetPayees(ctx context.Context) ([]model.Payee, error)
	UpdatePayee(ctx context.Context, payee *model.Payee) error
	IncrementPayeeUseCount(ctx context.Context, id int64) error

	// Category operations
	GetCategories(ctx context.Context) ([]model.Category, error)
	GetCategoryByID(ctx context.Context, id int64) (*model.Category, error)
	GetCategoryByName(ctx context.Context, name string) (*model.Category, error)
	CreateCategory(ctx context.Context, name, description string, categoryType model.CategoryType) (*model.Category, error)
	UpdateCategory(ctx context.Context, id int64, name, description string) error
	DeleteCategory(ctx context.Context, id int64) error

	// View state persistence (filter preferences, column layouts)
	SaveViewState(ctx context.Context, view string, blob []byte) error
	GetViewState(ctx context.Context, view string) ([]byte, error)

	// Database management
	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Transaction, error)
	Close() error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit() error
	Rollback() error
	Storage
}

// SuggestionRequest is the input tuple for a suggestion fetch.
type SuggestionRequest struct {
	Description string
	AccountID   string
	AccountType model.AccountType
	Amount      *float64
}

// SuggestionResponse carries the ranked lists returned by the insight service.
type SuggestionResponse struct {
	Payees     model.Suggestions
	Categories model.Suggestions
}

// SuggestionService is the client-side contract for the external insight service.
type SuggestionService interface {
	FetchSuggestions(ctx context.Context, req SuggestionRequest) (*SuggestionResponse, error)
	RecordSelection(ctx context.Context, event model.SelectionEvent) error
}

// SelectionRecorder accepts committed selection events for best-effort reporting.
type SelectionRecorder interface {
	Record(event model.SelectionEvent)
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
