package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mossline/ledgermind/internal/common"
	"github.com/mossline/ledgermind/internal/model"
)

const categoryColumns = `id, name, description, color, type, is_active, created_at`

func getCategories(ctx context.Context, ext executor) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := ext.QueryContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE is_active = 1 ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []model.Category
	for rows.Next() {
		category, scanErr := scanCategory(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan category: %w", scanErr)
		}
		categories = append(categories, *category)
	}
	return categories, rows.Err()
}

func getCategoryByID(ctx context.Context, ext executor, id int64) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	row := ext.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id)
	category, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("category %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return category, nil
}

func getCategoryByName(ctx context.Context, ext executor, name string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	row := ext.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE name = ? COLLATE NOCASE`, name)
	category, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("category %q: %w", name, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return category, nil
}

func createCategory(ctx context.Context, ext executor, name, description string, categoryType model.CategoryType) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}
	if categoryType == "" {
		categoryType = model.CategoryTypeExpense
	}

	result, err := ext.ExecContext(ctx,
		`INSERT INTO categories (name, description, type) VALUES (?, ?, ?)`,
		name, description, categoryType)
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get category id: %w", err)
	}

	return getCategoryByID(ctx, ext, id)
}

func updateCategory(ctx context.Context, ext executor, id int64, name, description string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(name, "name"); err != nil {
		return err
	}

	result, err := ext.ExecContext(ctx,
		`UPDATE categories SET name = ?, description = ? WHERE id = ?`,
		name, description, id)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("category %d: %w", id, common.ErrNotFound)
	}
	return nil
}

// deleteCategory soft-deletes so historical transactions keep their labels.
func deleteCategory(ctx context.Context, ext executor, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := ext.ExecContext(ctx,
		`UPDATE categories SET is_active = 0 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("category %d: %w", id, common.ErrNotFound)
	}
	return nil
}

func scanCategory(s scanner) (*model.Category, error) {
	var category model.Category
	var description, color sql.NullString
	var created sql.NullTime

	err := s.Scan(&category.ID, &category.Name, &description, &color,
		&category.Type, &category.IsActive, &created)
	if err != nil {
		return nil, err
	}

	category.Description = description.String
	category.Color = color.String
	category.CreatedAt = nullTime(created)
	return &category, nil
}
