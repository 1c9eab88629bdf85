package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mossline/ledgermind/internal/common"
	"github.com/mossline/ledgermind/internal/model"
)

const payeeColumns = `id, name, default_category_id, color, use_count, last_used_at, created_at`

func createPayee(ctx context.Context, ext executor, payee *model.Payee) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validatePayee(payee); err != nil {
		return err
	}

	result, err := ext.ExecContext(ctx,
		`INSERT INTO payees (name, default_category_id, color) VALUES (?, ?, ?)`,
		payee.Name, int64Null(payee.DefaultCategoryID), payee.Color)
	if err != nil {
		return fmt.Errorf("failed to create payee: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get payee id: %w", err)
	}
	payee.ID = id
	return nil
}

func getPayee(ctx context.Context, ext executor, id int64) (*model.Payee, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	row := ext.QueryRowContext(ctx,
		`SELECT `+payeeColumns+` FROM payees WHERE id = ?`, id)
	payee, err := scanPayee(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("payee %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payee: %w", err)
	}
	return payee, nil
}

func getPayeeByName(ctx context.Context, ext executor, name string) (*model.Payee, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	row := ext.QueryRowContext(ctx,
		`SELECT `+payeeColumns+` FROM payees WHERE name = ? COLLATE NOCASE`, name)
	payee, err := scanPayee(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("payee %q: %w", name, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payee: %w", err)
	}
	return payee, nil
}

func getPayees(ctx context.Context, ext executor) ([]model.Payee, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := ext.QueryContext(ctx,
		`SELECT `+payeeColumns+` FROM payees ORDER BY use_count DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query payees: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var payees []model.Payee
	for rows.Next() {
		payee, scanErr := scanPayee(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan payee: %w", scanErr)
		}
		payees = append(payees, *payee)
	}
	return payees, rows.Err()
}

func updatePayee(ctx context.Context, ext executor, payee *model.Payee) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validatePayee(payee); err != nil {
		return err
	}

	result, err := ext.ExecContext(ctx,
		`UPDATE payees SET name = ?, default_category_id = ?, color = ? WHERE id = ?`,
		payee.Name, int64Null(payee.DefaultCategoryID), payee.Color, payee.ID)
	if err != nil {
		return fmt.Errorf("failed to update payee: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("payee %d: %w", payee.ID, common.ErrNotFound)
	}
	return nil
}

func incrementPayeeUseCount(ctx context.Context, ext executor, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	_, err := ext.ExecContext(ctx,
		`UPDATE payees SET use_count = use_count + 1, last_used_at = CURRENT_TIMESTAMP WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to increment payee use count: %w", err)
	}
	return nil
}

func scanPayee(s scanner) (*model.Payee, error) {
	var payee model.Payee
	var defaultCategory sql.NullInt64
	var color sql.NullString
	var lastUsed, created sql.NullTime

	err := s.Scan(&payee.ID, &payee.Name, &defaultCategory, &color,
		&payee.UseCount, &lastUsed, &created)
	if err != nil {
		return nil, err
	}

	payee.DefaultCategoryID = nullInt64Ptr(defaultCategory)
	payee.Color = color.String
	payee.LastUsedAt = nullTime(lastUsed)
	payee.CreatedAt = nullTime(created)
	return &payee, nil
}
