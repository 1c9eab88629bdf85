package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mossline/ledgermind/internal/export"
	"github.com/mossline/ledgermind/internal/service"
)

func exportCmd() *cobra.Command {
	var (
		output    string
		account   string
		startDate string
		endDate   string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export transactions to CSV",
		Long:  `Write transactions as CSV with payee and category names resolved, for spreadsheets or your accountant.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			start, end, err := parseDateRange(startDate, endDate)
			if err != nil {
				return err
			}
			filter := service.TransactionFilter{
				AccountID: account,
				StartDate: start,
				EndDate:   end,
				SortBy:    service.SortByDate,
			}

			out := os.Stdout
			if output != "" {
				file, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", output, err)
				}
				defer file.Close()
				out = file
			}

			rows, err := export.NewExporter(store, nil).Export(ctx, out, filter)
			if err != nil {
				return err
			}
			if output != "" {
				fmt.Printf("Wrote %d rows to %s\n", rows, output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&account, "account", "a", "", "filter by account id")
	cmd.Flags().StringVar(&startDate, "start", "", "start date (2006-01-02)")
	cmd.Flags().StringVar(&endDate, "end", "", "end date (2006-01-02)")
	return cmd
}
