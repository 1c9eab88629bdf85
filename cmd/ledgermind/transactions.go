package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mossline/ledgermind/internal/common"
	"github.com/mossline/ledgermind/internal/model"
	"github.com/mossline/ledgermind/internal/service"
	"github.com/mossline/ledgermind/internal/tui"
	"github.com/mossline/ledgermind/internal/viewstate"
)

// transactionsView is the stored view-state key for the listing.
const transactionsView = "transactions"

func transactionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transactions",
		Short: "List and manage transactions",
	}

	cmd.AddCommand(listTransactionsCmd())
	cmd.AddCommand(assignTransactionsCmd())
	cmd.AddCommand(deleteTransactionsCmd())
	return cmd
}

func listTransactionsCmd() *cobra.Command {
	var (
		account    string
		search     string
		startDate  string
		endDate    string
		sortBy     string
		ascending  bool
		unassigned bool
		limit      int
		offset     int
		remember   bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions",
		Long: `List transactions with filtering, search and pagination.

With --remember, the filters are stored and become the defaults for the
next listing; flags given explicitly always win over stored filters.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			// Start from the remembered view, then layer explicit flags on top
			state, err := loadViewState(cmd, store)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("account") {
				state = viewstate.Apply(state, viewstate.SetAccountFilter{AccountID: account})
			}
			if cmd.Flags().Changed("search") {
				state = viewstate.Apply(state, viewstate.SetSearch{Query: search})
			}
			if cmd.Flags().Changed("unassigned") && unassigned != state.Filters.UnassignedOnly {
				state = viewstate.Apply(state, viewstate.ToggleUnassigned{})
			}
			if cmd.Flags().Changed("sort") || cmd.Flags().Changed("asc") {
				state = viewstate.Apply(state, viewstate.SetSort{
					Field:      service.SortField(sortBy),
					Descending: !ascending,
				})
			}
			if cmd.Flags().Changed("start") || cmd.Flags().Changed("end") {
				start, end, err := parseDateRange(startDate, endDate)
				if err != nil {
					return err
				}
				state = viewstate.Apply(state, viewstate.SetDateRange{Start: start, End: end})
			}

			filter := state.Filter()
			filter.Limit = limit
			filter.Offset = offset

			transactions, err := store.GetTransactions(ctx, filter)
			if err != nil {
				return fmt.Errorf("failed to get transactions: %w", err)
			}
			total, err := store.CountTransactions(ctx, filter)
			if err != nil {
				return fmt.Errorf("failed to count transactions: %w", err)
			}

			if remember {
				if err := saveViewState(cmd, store, state); err != nil {
					return err
				}
			}

			printTransactions(transactions, total, offset)
			return nil
		},
	}

	cmd.Flags().StringVarP(&account, "account", "a", "", "filter by account id")
	cmd.Flags().StringVarP(&search, "search", "q", "", "search descriptions")
	cmd.Flags().StringVar(&startDate, "start", "", "start date (2006-01-02)")
	cmd.Flags().StringVar(&endDate, "end", "", "end date (2006-01-02)")
	cmd.Flags().StringVar(&sortBy, "sort", "date", "sort column (date, amount, description)")
	cmd.Flags().BoolVar(&ascending, "asc", false, "sort ascending")
	cmd.Flags().BoolVarP(&unassigned, "unassigned", "u", false, "only transactions missing payee or category")
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "max rows")
	cmd.Flags().IntVar(&offset, "offset", 0, "rows to skip")
	cmd.Flags().BoolVar(&remember, "remember", false, "store these filters as the view default")
	return cmd
}

func loadViewState(cmd *cobra.Command, store service.Storage) (viewstate.State, error) {
	blob, err := store.GetViewState(cmd.Context(), transactionsView)
	if errors.Is(err, common.ErrNotFound) {
		return viewstate.DefaultState(), nil
	}
	if err != nil {
		return viewstate.DefaultState(), fmt.Errorf("failed to load view state: %w", err)
	}

	state, err := viewstate.Decode(blob)
	if err != nil {
		// A corrupt blob falls back to defaults; not worth failing the listing
		return viewstate.DefaultState(), nil
	}
	return state, nil
}

func saveViewState(cmd *cobra.Command, store service.Storage, state viewstate.State) error {
	blob, err := viewstate.Encode(state)
	if err != nil {
		return err
	}
	if err := store.SaveViewState(cmd.Context(), transactionsView, blob); err != nil {
		return fmt.Errorf("failed to save view state: %w", err)
	}
	return nil
}

func parseDateRange(startDate, endDate string) (start, end *time.Time, err error) {
	if startDate != "" {
		parsed, err := time.Parse("2006-01-02", startDate)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid start date %q: %w", startDate, err)
		}
		start = &parsed
	}
	if endDate != "" {
		parsed, err := time.Parse("2006-01-02", endDate)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid end date %q: %w", endDate, err)
		}
		end = &parsed
	}
	return start, end, nil
}

func printTransactions(transactions []model.Transaction, total, offset int) {
	if len(transactions) == 0 {
		fmt.Println(tui.SubtleStyle.Render("No transactions match."))
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
		tui.TitleStyle.Render("Date"),
		tui.TitleStyle.Render("Description"),
		tui.TitleStyle.Render("Amount"),
		tui.TitleStyle.Render("Account"),
		tui.TitleStyle.Render("Payee"),
		tui.TitleStyle.Render("Category"))

	for i := range transactions {
		t := &transactions[i]
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%s\t%s\t%s\n",
			t.Date.Format("2006-01-02"),
			truncate(t.Description, 40),
			t.Amount,
			t.AccountID,
			idOrDash(t.PayeeID),
			idOrDash(t.CategoryID))
	}
	w.Flush()

	fmt.Println(tui.SubtleStyle.Render(fmt.Sprintf("showing %d-%d of %d",
		offset+1, offset+len(transactions), total)))
}

func assignTransactionsCmd() *cobra.Command {
	var payeeID, categoryID int64

	cmd := &cobra.Command{
		Use:   "assign <transaction-id>...",
		Short: "Assign a payee and/or category to transactions",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var payee, category *int64
			if cmd.Flags().Changed("payee") {
				payee = &payeeID
			}
			if cmd.Flags().Changed("category") {
				category = &categoryID
			}
			if payee == nil && category == nil {
				return fmt.Errorf("nothing to assign: pass --payee and/or --category")
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			updated, err := store.BulkUpdateTransactions(ctx, args, payee, category)
			if err != nil {
				return fmt.Errorf("failed to update transactions: %w", err)
			}
			// One usage bump per row that actually changed
			for i := 0; payee != nil && i < updated; i++ {
				if err := store.IncrementPayeeUseCount(ctx, *payee); err != nil {
					return fmt.Errorf("failed to update payee usage: %w", err)
				}
			}
			fmt.Printf("Updated %d transactions\n", updated)
			return nil
		},
	}

	cmd.Flags().Int64Var(&payeeID, "payee", 0, "payee id to assign")
	cmd.Flags().Int64Var(&categoryID, "category", 0, "category id to assign")
	return cmd
}

func deleteTransactionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <transaction-id>...",
		Short: "Delete transactions",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			deleted, err := store.DeleteTransactions(ctx, args)
			if err != nil {
				return fmt.Errorf("failed to delete transactions: %w", err)
			}
			fmt.Printf("Deleted %d transactions\n", deleted)
			return nil
		},
	}
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit-1] + "…"
}

func idOrDash(id *int64) string {
	if id == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *id)
}
