// Package export renders ledger data to CSV for use in spreadsheets.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/mossline/ledgermind/internal/model"
	"github.com/mossline/ledgermind/internal/service"
)

var csvHeader = []string{"Date", "Description", "Amount", "Account", "Payee", "Category", "Status", "Check Number"}

// Exporter writes transactions as CSV with payee and category names
// resolved from storage.
type Exporter struct {
	storage service.Storage
	logger  *slog.Logger
}

// NewExporter creates a CSV exporter backed by the given storage.
func NewExporter(storage service.Storage, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{storage: storage, logger: logger}
}

// Export writes all transactions matching the filter to w and returns the
// number of rows written, not counting the header.
func (e *Exporter) Export(ctx context.Context, w io.Writer, filter service.TransactionFilter) (int, error) {
	transactions, err := e.storage.GetTransactions(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to load transactions: %w", err)
	}

	payees, err := e.payeeNames(ctx)
	if err != nil {
		return 0, err
	}
	categories, err := e.categoryNames(ctx)
	if err != nil {
		return 0, err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return 0, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for i := range transactions {
		if err := cw.Write(e.row(&transactions[i], payees, categories)); err != nil {
			return 0, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, fmt.Errorf("failed to flush CSV output: %w", err)
	}

	e.logger.Info("exported transactions", "rows", len(transactions))
	return len(transactions), nil
}

func (e *Exporter) row(txn *model.Transaction, payees, categories map[int64]string) []string {
	var payee, category string
	if txn.PayeeID != nil {
		payee = payees[*txn.PayeeID]
	}
	if txn.CategoryID != nil {
		category = categories[*txn.CategoryID]
	}

	return []string{
		txn.Date.Format("2006-01-02"),
		txn.Description,
		strconv.FormatFloat(txn.Amount, 'f', 2, 64),
		txn.AccountID,
		payee,
		category,
		string(txn.Status),
		txn.CheckNumber,
	}
}

func (e *Exporter) payeeNames(ctx context.Context) (map[int64]string, error) {
	payees, err := e.storage.GetPayees(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load payees: %w", err)
	}
	names := make(map[int64]string, len(payees))
	for i := range payees {
		names[payees[i].ID] = payees[i].Name
	}
	return names, nil
}

func (e *Exporter) categoryNames(ctx context.Context) (map[int64]string, error) {
	categories, err := e.storage.GetCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	names := make(map[int64]string, len(categories))
	for i := range categories {
		names[categories[i].ID] = categories[i].Name
	}
	return names, nil
}
