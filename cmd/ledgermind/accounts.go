package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mossline/ledgermind/internal/model"
	"github.com/mossline/ledgermind/internal/tui"
)

func accountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage accounts",
		Long:  `List and add the accounts transactions belong to, and recalculate balances.`,
	}

	cmd.AddCommand(listAccountsCmd())
	cmd.AddCommand(addAccountCmd())
	cmd.AddCommand(balanceCmd())
	return cmd
}

func listAccountsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all accounts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			accounts, err := store.GetAccounts(ctx)
			if err != nil {
				return fmt.Errorf("failed to get accounts: %w", err)
			}
			if len(accounts) == 0 {
				fmt.Println(tui.SubtleStyle.Render("No accounts yet. Use 'ledgermind accounts add' or import a statement."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer w.Flush()

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				tui.TitleStyle.Render("ID"),
				tui.TitleStyle.Render("Name"),
				tui.TitleStyle.Render("Type"),
				tui.TitleStyle.Render("Balance"))
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				strings.Repeat("-", 12),
				strings.Repeat("-", 20),
				strings.Repeat("-", 10),
				strings.Repeat("-", 12))

			for _, account := range accounts {
				fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\n",
					account.ID, account.Name, account.Type, account.Balance)
			}
			return nil
		},
	}
}

func addAccountCmd() *cobra.Command {
	var accountType string
	var currency string

	cmd := &cobra.Command{
		Use:   "add <id> <name>",
		Short: "Add an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			account := model.Account{
				ID:       args[0],
				Name:     args[1],
				Currency: currency,
				Type:     model.AccountType(accountType),
			}
			if !model.ValidAccountType(account.Type) {
				return fmt.Errorf("unknown account type %q (checking, savings, credit, investment)", accountType)
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.CreateAccount(ctx, &account); err != nil {
				return fmt.Errorf("failed to create account: %w", err)
			}
			fmt.Printf("Added account %s (%s)\n", account.Name, account.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&accountType, "type", "t", "checking", "account type (checking, savings, credit, investment)")
	cmd.Flags().StringVar(&currency, "currency", "USD", "account currency")
	return cmd
}

func balanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance [account-id]",
		Short: "Recalculate account balances from transactions",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			var ids []string
			if len(args) == 1 {
				ids = args
			} else {
				accounts, err := store.GetAccounts(ctx)
				if err != nil {
					return fmt.Errorf("failed to get accounts: %w", err)
				}
				for _, account := range accounts {
					ids = append(ids, account.ID)
				}
			}

			for _, id := range ids {
				balance, err := store.RecalculateBalance(ctx, id)
				if err != nil {
					return fmt.Errorf("failed to recalculate %s: %w", id, err)
				}
				fmt.Printf("%s: %.2f\n", id, balance)
			}
			return nil
		},
	}
}
