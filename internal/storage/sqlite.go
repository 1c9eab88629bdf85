package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mossline/ledgermind/internal/model"
	"github.com/mossline/ledgermind/internal/service"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// executor abstracts *sql.DB and *sql.Tx so every query helper works inside
// and outside an explicit transaction.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLiteStorage implements the service.Storage interface using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStorage creates a new SQLite storage instance.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStorage{db: db, dbPath: dbPath}, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// BeginTx starts a new database transaction.
func (s *SQLiteStorage) BeginTx(ctx context.Context) (service.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	return &sqliteTransaction{tx: tx, storage: s}, nil
}

// Account operations.

func (s *SQLiteStorage) CreateAccount(ctx context.Context, account *model.Account) error {
	return createAccount(ctx, s.db, account)
}

func (s *SQLiteStorage) GetAccount(ctx context.Context, id string) (*model.Account, error) {
	return getAccount(ctx, s.db, id)
}

func (s *SQLiteStorage) GetAccounts(ctx context.Context) ([]model.Account, error) {
	return getAccounts(ctx, s.db)
}

func (s *SQLiteStorage) UpdateAccount(ctx context.Context, account *model.Account) error {
	return updateAccount(ctx, s.db, account)
}

func (s *SQLiteStorage) RecalculateBalance(ctx context.Context, accountID string) (float64, error) {
	return recalculateBalance(ctx, s.db, accountID)
}

// Transaction operations.

func (s *SQLiteStorage) SaveTransactions(ctx context.Context, transactions []model.Transaction) error {
	return saveTransactions(ctx, s.db, transactions)
}

func (s *SQLiteStorage) GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error) {
	return getTransactionByID(ctx, s.db, id)
}

func (s *SQLiteStorage) GetTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	return getTransactions(ctx, s.db, filter)
}

func (s *SQLiteStorage) CountTransactions(ctx context.Context, filter service.TransactionFilter) (int, error) {
	return countTransactions(ctx, s.db, filter)
}

func (s *SQLiteStorage) UpdateTransactionPayee(ctx context.Context, transactionID string, payeeID *int64) error {
	return updateTransactionPayee(ctx, s.db, transactionID, payeeID)
}

func (s *SQLiteStorage) UpdateTransactionCategory(ctx context.Context, transactionID string, categoryID *int64) error {
	return updateTransactionCategory(ctx, s.db, transactionID, categoryID)
}

func (s *SQLiteStorage) BulkUpdateTransactions(ctx context.Context, transactionIDs []string, payeeID, categoryID *int64) (int, error) {
	return bulkUpdateTransactions(ctx, s.db, transactionIDs, payeeID, categoryID)
}

func (s *SQLiteStorage) DeleteTransactions(ctx context.Context, transactionIDs []string) (int, error) {
	return deleteTransactions(ctx, s.db, transactionIDs)
}

// Payee operations.

func (s *SQLiteStorage) CreatePayee(ctx context.Context, payee *model.Payee) error {
	return createPayee(ctx, s.db, payee)
}

func (s *SQLiteStorage) GetPayee(ctx context.Context, id int64) (*model.Payee, error) {
	return getPayee(ctx, s.db, id)
}

func (s *SQLiteStorage) GetPayeeByName(ctx context.Context, name string) (*model.Payee, error) {
	return getPayeeByName(ctx, s.db, name)
}

func (s *SQLiteStorage) GetPayees(ctx context.Context) ([]model.Payee, error) {
	return getPayees(ctx, s.db)
}

func (s *SQLiteStorage) UpdatePayee(ctx context.Context, payee *model.Payee) error {
	return updatePayee(ctx, s.db, payee)
}

func (s *SQLiteStorage) IncrementPayeeUseCount(ctx context.Context, id int64) error {
	return incrementPayeeUseCount(ctx, s.db, id)
}

// Category operations.

func (s *SQLiteStorage) GetCategories(ctx context.Context) ([]model.Category, error) {
	return getCategories(ctx, s.db)
}

func (s *SQLiteStorage) GetCategoryByID(ctx context.Context, id int64) (*model.Category, error) {
	return getCategoryByID(ctx, s.db, id)
}

func (s *SQLiteStorage) GetCategoryByName(ctx context.Context, name string) (*model.Category, error) {
	return getCategoryByName(ctx, s.db, name)
}

func (s *SQLiteStorage) CreateCategory(ctx context.Context, name, description string, categoryType model.CategoryType) (*model.Category, error) {
	return createCategory(ctx, s.db, name, description, categoryType)
}

func (s *SQLiteStorage) UpdateCategory(ctx context.Context, id int64, name, description string) error {
	return updateCategory(ctx, s.db, id, name, description)
}

func (s *SQLiteStorage) DeleteCategory(ctx context.Context, id int64) error {
	return deleteCategory(ctx, s.db, id)
}

// View state operations.

func (s *SQLiteStorage) SaveViewState(ctx context.Context, view string, blob []byte) error {
	return saveViewState(ctx, s.db, view, blob)
}

func (s *SQLiteStorage) GetViewState(ctx context.Context, view string) ([]byte, error) {
	return getViewState(ctx, s.db, view)
}

// sqliteTransaction wraps sql.Tx to implement service.Transaction.
type sqliteTransaction struct {
	tx      *sql.Tx
	storage *SQLiteStorage
}

func (t *sqliteTransaction) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTransaction) Rollback() error {
	return t.tx.Rollback()
}

func (t *sqliteTransaction) CreateAccount(ctx context.Context, account *model.Account) error {
	return createAccount(ctx, t.tx, account)
}

func (t *sqliteTransaction) GetAccount(ctx context.Context, id string) (*model.Account, error) {
	return getAccount(ctx, t.tx, id)
}

func (t *sqliteTransaction) GetAccounts(ctx context.Context) ([]model.Account, error) {
	return getAccounts(ctx, t.tx)
}

func (t *sqliteTransaction) UpdateAccount(ctx context.Context, account *model.Account) error {
	return updateAccount(ctx, t.tx, account)
}

func (t *sqliteTransaction) RecalculateBalance(ctx context.Context, accountID string) (float64, error) {
	return recalculateBalance(ctx, t.tx, accountID)
}

func (t *sqliteTransaction) SaveTransactions(ctx context.Context, transactions []model.Transaction) error {
	return saveTransactions(ctx, t.tx, transactions)
}

func (t *sqliteTransaction) GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error) {
	return getTransactionByID(ctx, t.tx, id)
}

func (t *sqliteTransaction) GetTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	return getTransactions(ctx, t.tx, filter)
}

func (t *sqliteTransaction) CountTransactions(ctx context.Context, filter service.TransactionFilter) (int, error) {
	return countTransactions(ctx, t.tx, filter)
}

func (t *sqliteTransaction) UpdateTransactionPayee(ctx context.Context, transactionID string, payeeID *int64) error {
	return updateTransactionPayee(ctx, t.tx, transactionID, payeeID)
}

func (t *sqliteTransaction) UpdateTransactionCategory(ctx context.Context, transactionID string, categoryID *int64) error {
	return updateTransactionCategory(ctx, t.tx, transactionID, categoryID)
}

func (t *sqliteTransaction) BulkUpdateTransactions(ctx context.Context, transactionIDs []string, payeeID, categoryID *int64) (int, error) {
	return bulkUpdateTransactions(ctx, t.tx, transactionIDs, payeeID, categoryID)
}

func (t *sqliteTransaction) DeleteTransactions(ctx context.Context, transactionIDs []string) (int, error) {
	return deleteTransactions(ctx, t.tx, transactionIDs)
}

func (t *sqliteTransaction) CreatePayee(ctx context.Context, payee *model.Payee) error {
	return createPayee(ctx, t.tx, payee)
}

func (t *sqliteTransaction) GetPayee(ctx context.Context, id int64) (*model.Payee, error) {
	return getPayee(ctx, t.tx, id)
}

func (t *sqliteTransaction) GetPayeeByName(ctx context.Context, name string) (*model.Payee, error) {
	return getPayeeByName(ctx, t.tx, name)
}

func (t *sqliteTransaction) GetPayees(ctx context.Context) ([]model.Payee, error) {
	return getPayees(ctx, t.tx)
}

func (t *sqliteTransaction) UpdatePayee(ctx context.Context, payee *model.Payee) error {
	return updatePayee(ctx, t.tx, payee)
}

func (t *sqliteTransaction) IncrementPayeeUseCount(ctx context.Context, id int64) error {
	return incrementPayeeUseCount(ctx, t.tx, id)
}

func (t *sqliteTransaction) GetCategories(ctx context.Context) ([]model.Category, error) {
	return getCategories(ctx, t.tx)
}

func (t *sqliteTransaction) GetCategoryByID(ctx context.Context, id int64) (*model.Category, error) {
	return getCategoryByID(ctx, t.tx, id)
}

func (t *sqliteTransaction) GetCategoryByName(ctx context.Context, name string) (*model.Category, error) {
	return getCategoryByName(ctx, t.tx, name)
}

func (t *sqliteTransaction) CreateCategory(ctx context.Context, name, description string, categoryType model.CategoryType) (*model.Category, error) {
	return createCategory(ctx, t.tx, name, description, categoryType)
}

func (t *sqliteTransaction) UpdateCategory(ctx context.Context, id int64, name, description string) error {
	return updateCategory(ctx, t.tx, id, name, description)
}

func (t *sqliteTransaction) DeleteCategory(ctx context.Context, id int64) error {
	return deleteCategory(ctx, t.tx, id)
}

func (t *sqliteTransaction) SaveViewState(ctx context.Context, view string, blob []byte) error {
	return saveViewState(ctx, t.tx, view, blob)
}

func (t *sqliteTransaction) GetViewState(ctx context.Context, view string) ([]byte, error) {
	return getViewState(ctx, t.tx, view)
}

func (t *sqliteTransaction) Migrate(_ context.Context) error {
	return fmt.Errorf("migrations cannot run inside a transaction")
}

func (t *sqliteTransaction) BeginTx(_ context.Context) (service.Transaction, error) {
	return nil, fmt.Errorf("nested transactions are not supported")
}

func (t *sqliteTransaction) Close() error {
	return t.tx.Rollback()
}

// nullTime converts a sql.NullTime into a time.Time, zero when absent.
func nullTime(t sql.NullTime) time.Time {
	if t.Valid {
		return t.Time
	}
	return time.Time{}
}

// nullInt64Ptr converts a sql.NullInt64 into a *int64.
func nullInt64Ptr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

// int64Null converts a *int64 into a sql.NullInt64.
func int64Null(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
