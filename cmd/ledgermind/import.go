package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/mossline/ledgermind/internal/model"
	"github.com/mossline/ledgermind/internal/ofx"
	"github.com/mossline/ledgermind/internal/service"
	"github.com/mossline/ledgermind/internal/tui"
)

func importCmd() *cobra.Command {
	var listAccounts bool
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import <file.ofx>...",
		Short: "Import transactions from OFX/QFX statements",
		Long: `Import bank and credit card statements in OFX/QFX format.

Transactions are deduplicated by content hash, so re-importing the same
statement is safe. Unknown accounts are created automatically.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			parser := ofx.NewParser()

			if listAccounts {
				for _, path := range args {
					file, err := os.Open(path)
					if err != nil {
						return fmt.Errorf("failed to open %s: %w", path, err)
					}
					accounts, err := parser.Accounts(ctx, file)
					file.Close()
					if err != nil {
						return err
					}
					for _, id := range accounts {
						fmt.Printf("%s: %s\n", filepath.Base(path), id)
					}
				}
				return nil
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			var total int
			for _, path := range args {
				file, err := os.Open(path)
				if err != nil {
					return fmt.Errorf("failed to open %s: %w", path, err)
				}
				transactions, err := parser.ParseFile(ctx, file)
				file.Close()
				if err != nil {
					return err
				}

				if dryRun {
					fmt.Printf("%s: %d transactions (dry run)\n", filepath.Base(path), len(transactions))
					continue
				}

				if err := ensureAccounts(cmd, store, transactions); err != nil {
					return err
				}

				bar := progressbar.NewOptions(len(transactions),
					progressbar.OptionSetWriter(os.Stderr),
					progressbar.OptionShowCount(),
					progressbar.OptionSetWidth(40),
					progressbar.OptionSetDescription(fmt.Sprintf("Importing %s", filepath.Base(path))),
				)

				// Saving in chunks keeps the bar honest on big statements
				const chunk = 100
				for start := 0; start < len(transactions); start += chunk {
					end := start + chunk
					if end > len(transactions) {
						end = len(transactions)
					}
					if err := store.SaveTransactions(ctx, transactions[start:end]); err != nil {
						return fmt.Errorf("failed to save transactions: %w", err)
					}
					_ = bar.Add(end - start)
				}
				_ = bar.Finish()
				fmt.Fprintln(os.Stderr)

				total += len(transactions)
			}

			if !dryRun {
				fmt.Println(tui.TitleStyle.Render(fmt.Sprintf("Imported %d transactions", total)))
				fmt.Println(tui.SubtleStyle.Render("Run 'ledgermind review' to assign payees and categories."))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&listAccounts, "list-accounts", false, "list account ids in the files without importing")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse without saving")
	return cmd
}

// ensureAccounts creates placeholder accounts for any account id seen in the
// statement that the ledger does not know yet.
func ensureAccounts(cmd *cobra.Command, store service.Storage, transactions []model.Transaction) error {
	ctx := cmd.Context()

	existing, err := store.GetAccounts(ctx)
	if err != nil {
		return fmt.Errorf("failed to get accounts: %w", err)
	}
	known := make(map[string]bool, len(existing))
	for _, account := range existing {
		known[account.ID] = true
	}

	for i := range transactions {
		id := transactions[i].AccountID
		if id == "" || known[id] {
			continue
		}
		account := model.Account{
			ID:   id,
			Name: fmt.Sprintf("Imported %s", id),
			Type: model.AccountTypeChecking,
		}
		if err := store.CreateAccount(ctx, &account); err != nil {
			return fmt.Errorf("failed to create account %s: %w", id, err)
		}
		known[id] = true
		fmt.Println(tui.SubtleStyle.Render(fmt.Sprintf("Created account %s; set its type with 'ledgermind accounts'", id)))
	}
	return nil
}
