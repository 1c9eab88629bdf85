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

func payeesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payees",
		Short: "Manage payees",
	}

	cmd.AddCommand(listPayeesCmd())
	cmd.AddCommand(addPayeeCmd())
	return cmd
}

func listPayeesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List payees by usage",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			payees, err := store.GetPayees(ctx)
			if err != nil {
				return fmt.Errorf("failed to get payees: %w", err)
			}
			if len(payees) == 0 {
				fmt.Println(tui.SubtleStyle.Render("No payees yet. They are created during review."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer w.Flush()

			fmt.Fprintf(w, "%s\t%s\t%s\n",
				tui.TitleStyle.Render("ID"),
				tui.TitleStyle.Render("Name"),
				tui.TitleStyle.Render("Uses"))
			fmt.Fprintf(w, "%s\t%s\t%s\n",
				strings.Repeat("-", 4),
				strings.Repeat("-", 24),
				strings.Repeat("-", 6))

			for _, payee := range payees {
				fmt.Fprintf(w, "%d\t%s\t%d\n", payee.ID, payee.Name, payee.UseCount)
			}
			return nil
		},
	}
}

func addPayeeCmd() *cobra.Command {
	var color string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a payee",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			payee := model.Payee{Name: args[0], Color: color}
			if err := store.CreatePayee(ctx, &payee); err != nil {
				return fmt.Errorf("failed to create payee: %w", err)
			}
			fmt.Printf("Added payee %s (id %d)\n", payee.Name, payee.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&color, "color", "", "display color (hex)")
	return cmd
}
