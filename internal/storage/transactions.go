package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mossline/ledgermind/internal/common"
	"github.com/mossline/ledgermind/internal/model"
	"github.com/mossline/ledgermind/internal/service"
)

const transactionColumns = `id, hash, date, description, amount, account_id,
	payee_id, category_id, status, type, check_number, created_at, updated_at`

func saveTransactions(ctx context.Context, ext executor, transactions []model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransactions(transactions); err != nil {
		return err
	}

	for i := range transactions {
		txn := &transactions[i]
		if txn.Hash == "" {
			txn.Hash = txn.GenerateHash()
		}
		if txn.Status == "" {
			txn.Status = model.StatusCleared
		}

		// Duplicate imports are skipped via the unique hash
		_, err := ext.ExecContext(ctx,
			`INSERT OR IGNORE INTO transactions
			 (id, hash, date, description, amount, account_id, payee_id, category_id, status, type, check_number)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			txn.ID, txn.Hash, txn.Date, txn.Description, txn.Amount, txn.AccountID,
			int64Null(txn.PayeeID), int64Null(txn.CategoryID), txn.Status, txn.Type, txn.CheckNumber)
		if err != nil {
			return fmt.Errorf("failed to save transaction %s: %w", txn.ID, err)
		}
	}
	return nil
}

func getTransactionByID(ctx context.Context, ext executor, id string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := ext.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)
	txn, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transaction %q: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return txn, nil
}

// filterClauses converts a TransactionFilter into WHERE clauses and args.
func filterClauses(filter service.TransactionFilter) (string, []any) {
	var clauses []string
	var args []any

	if filter.AccountID != "" {
		clauses = append(clauses, "account_id = ?")
		args = append(args, filter.AccountID)
	}
	if filter.PayeeID != nil {
		clauses = append(clauses, "payee_id = ?")
		args = append(args, *filter.PayeeID)
	}
	if filter.CategoryID != nil {
		clauses = append(clauses, "category_id = ?")
		args = append(args, *filter.CategoryID)
	}
	if filter.StartDate != nil {
		clauses = append(clauses, "date >= ?")
		args = append(args, *filter.StartDate)
	}
	if filter.EndDate != nil {
		clauses = append(clauses, "date <= ?")
		args = append(args, *filter.EndDate)
	}
	if filter.Search != "" {
		clauses = append(clauses, "description LIKE ?")
		args = append(args, "%"+filter.Search+"%")
	}
	if filter.Unassigned {
		clauses = append(clauses, "(payee_id IS NULL OR category_id IS NULL)")
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// orderClause maps the sort field onto a whitelisted column. Unknown fields
// fall back to date so user input can never reach the SQL string.
func orderClause(filter service.TransactionFilter) string {
	column := "date"
	switch filter.SortBy {
	case service.SortByAmount:
		column = "amount"
	case service.SortByDescription:
		column = "description"
	case service.SortByDate:
		column = "date"
	}

	direction := "ASC"
	if filter.Descending {
		direction = "DESC"
	}
	// Secondary key keeps pagination stable across equal values
	return fmt.Sprintf(" ORDER BY %s %s, id ASC", column, direction)
}

func getTransactions(ctx context.Context, ext executor, filter service.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	where, args := filterClauses(filter)
	query := `SELECT ` + transactionColumns + ` FROM transactions` + where + orderClause(filter)

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := ext.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	for rows.Next() {
		txn, scanErr := scanTransaction(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", scanErr)
		}
		transactions = append(transactions, *txn)
	}
	return transactions, rows.Err()
}

func countTransactions(ctx context.Context, ext executor, filter service.TransactionFilter) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	where, args := filterClauses(filter)
	var count int
	err := ext.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`+where, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

func updateTransactionPayee(ctx context.Context, ext executor, transactionID string, payeeID *int64) error {
	return updateTransactionColumn(ctx, ext, transactionID, "payee_id", payeeID)
}

func updateTransactionCategory(ctx context.Context, ext executor, transactionID string, categoryID *int64) error {
	return updateTransactionColumn(ctx, ext, transactionID, "category_id", categoryID)
}

func updateTransactionColumn(ctx context.Context, ext executor, transactionID, column string, value *int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(transactionID, "transactionID"); err != nil {
		return err
	}

	result, err := ext.ExecContext(ctx,
		`UPDATE transactions SET `+column+` = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		int64Null(value), transactionID)
	if err != nil {
		return fmt.Errorf("failed to update transaction %s: %w", column, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("transaction %q: %w", transactionID, common.ErrNotFound)
	}
	return nil
}

func bulkUpdateTransactions(ctx context.Context, ext executor, transactionIDs []string, payeeID, categoryID *int64) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if len(transactionIDs) == 0 {
		return 0, fmt.Errorf("%w: transactionIDs", ErrEmptySlice)
	}
	if payeeID == nil && categoryID == nil {
		return 0, fmt.Errorf("%w: nothing to update", ErrNilParameter)
	}

	var sets []string
	var args []any
	if payeeID != nil {
		sets = append(sets, "payee_id = ?")
		args = append(args, *payeeID)
	}
	if categoryID != nil {
		sets = append(sets, "category_id = ?")
		args = append(args, *categoryID)
	}

	query := `UPDATE transactions SET ` + strings.Join(sets, ", ") +
		`, updated_at = CURRENT_TIMESTAMP WHERE id IN (` + placeholders(len(transactionIDs)) + `)`
	for _, id := range transactionIDs {
		args = append(args, id)
	}

	result, err := ext.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to bulk update transactions: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check bulk update result: %w", err)
	}
	return int(affected), nil
}

func deleteTransactions(ctx context.Context, ext executor, transactionIDs []string) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if len(transactionIDs) == 0 {
		return 0, fmt.Errorf("%w: transactionIDs", ErrEmptySlice)
	}

	args := make([]any, len(transactionIDs))
	for i, id := range transactionIDs {
		args[i] = id
	}

	result, err := ext.ExecContext(ctx,
		`DELETE FROM transactions WHERE id IN (`+placeholders(len(transactionIDs))+`)`, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete transactions: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check delete result: %w", err)
	}
	return int(affected), nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(s scanner) (*model.Transaction, error) {
	var txn model.Transaction
	var payeeID, categoryID sql.NullInt64
	var txnType, checkNumber sql.NullString
	var created, updated sql.NullTime

	err := s.Scan(&txn.ID, &txn.Hash, &txn.Date, &txn.Description, &txn.Amount,
		&txn.AccountID, &payeeID, &categoryID, &txn.Status, &txnType, &checkNumber,
		&created, &updated)
	if err != nil {
		return nil, err
	}

	txn.PayeeID = nullInt64Ptr(payeeID)
	txn.CategoryID = nullInt64Ptr(categoryID)
	txn.Type = txnType.String
	txn.CheckNumber = checkNumber.String
	txn.CreatedAt = nullTime(created)
	txn.UpdatedAt = nullTime(updated)
	return &txn, nil
}
