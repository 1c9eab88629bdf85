package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mossline/ledgermind/internal/common"
	"github.com/mossline/ledgermind/internal/model"
)

func createAccount(ctx context.Context, ext executor, account *model.Account) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateAccount(account); err != nil {
		return err
	}

	if account.Currency == "" {
		account.Currency = "USD"
	}

	_, err := ext.ExecContext(ctx,
		`INSERT INTO accounts (id, name, type, currency, balance) VALUES (?, ?, ?, ?, ?)`,
		account.ID, account.Name, account.Type, account.Currency, account.Balance)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func getAccount(ctx context.Context, ext executor, id string) (*model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	var account model.Account
	var created, updated sql.NullTime
	err := ext.QueryRowContext(ctx,
		`SELECT id, name, type, currency, balance, created_at, updated_at
		 FROM accounts WHERE id = ?`, id).
		Scan(&account.ID, &account.Name, &account.Type, &account.Currency,
			&account.Balance, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("account %q: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	account.CreatedAt = nullTime(created)
	account.UpdatedAt = nullTime(updated)
	return &account, nil
}

func getAccounts(ctx context.Context, ext executor) ([]model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := ext.QueryContext(ctx,
		`SELECT id, name, type, currency, balance, created_at, updated_at
		 FROM accounts ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var accounts []model.Account
	for rows.Next() {
		var account model.Account
		var created, updated sql.NullTime
		if err := rows.Scan(&account.ID, &account.Name, &account.Type,
			&account.Currency, &account.Balance, &created, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		account.CreatedAt = nullTime(created)
		account.UpdatedAt = nullTime(updated)
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

func updateAccount(ctx context.Context, ext executor, account *model.Account) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateAccount(account); err != nil {
		return err
	}

	result, err := ext.ExecContext(ctx,
		`UPDATE accounts SET name = ?, type = ?, currency = ?, balance = ?,
		 updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		account.Name, account.Type, account.Currency, account.Balance, account.ID)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("account %q: %w", account.ID, common.ErrNotFound)
	}
	return nil
}

// recalculateBalance recomputes an account's balance from its cleared and
// reconciled transactions. Summation uses decimal arithmetic so repeated
// recalculations never drift.
func recalculateBalance(ctx context.Context, ext executor, accountID string) (float64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateString(accountID, "accountID"); err != nil {
		return 0, err
	}

	rows, err := ext.QueryContext(ctx,
		`SELECT amount FROM transactions WHERE account_id = ? AND status != ?`,
		accountID, model.StatusPending)
	if err != nil {
		return 0, fmt.Errorf("failed to query transaction amounts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	total := decimal.Zero
	for rows.Next() {
		var amount float64
		if err := rows.Scan(&amount); err != nil {
			return 0, fmt.Errorf("failed to scan amount: %w", err)
		}
		total = total.Add(decimal.NewFromFloat(amount).Round(2))
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("failed to iterate amounts: %w", err)
	}

	balance := total.InexactFloat64()

	result, err := ext.ExecContext(ctx,
		`UPDATE accounts SET balance = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		balance, accountID)
	if err != nil {
		return 0, fmt.Errorf("failed to store balance: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check balance update: %w", err)
	}
	if affected == 0 {
		return 0, fmt.Errorf("account %q: %w", accountID, common.ErrNotFound)
	}

	return balance, nil
}
