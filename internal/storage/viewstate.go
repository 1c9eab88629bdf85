package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mossline/ledgermind/internal/common"
)

// View state rows hold opaque JSON blobs (filter preferences, column
// layouts) keyed by view name. The schema of the blob belongs to the caller.

func saveViewState(ctx context.Context, ext executor, view string, blob []byte) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(view, "view"); err != nil {
		return err
	}
	if blob == nil {
		return fmt.Errorf("%w: blob", ErrNilParameter)
	}

	_, err := ext.ExecContext(ctx,
		`INSERT INTO view_state (view, blob, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(view) DO UPDATE SET blob = excluded.blob, updated_at = CURRENT_TIMESTAMP`,
		view, string(blob))
	if err != nil {
		return fmt.Errorf("failed to save view state: %w", err)
	}
	return nil
}

func getViewState(ctx context.Context, ext executor, view string) ([]byte, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(view, "view"); err != nil {
		return nil, err
	}

	var blob string
	err := ext.QueryRowContext(ctx,
		`SELECT blob FROM view_state WHERE view = ?`, view).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("view state %q: %w", view, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get view state: %w", err)
	}
	return []byte(blob), nil
}
