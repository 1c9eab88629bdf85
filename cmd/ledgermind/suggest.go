package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mossline/ledgermind/internal/model"
	"github.com/mossline/ledgermind/internal/service"
	"github.com/mossline/ledgermind/internal/suggest"
	"github.com/mossline/ledgermind/internal/tui"
)

func suggestCmd() *cobra.Command {
	var (
		account     string
		accountType string
		amount      float64
	)

	cmd := &cobra.Command{
		Use:   "suggest <description>",
		Short: "Show suggestions for a transaction description",
		Long:  `Ask the insight service what payee and category it would suggest for a description, without touching any transaction.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			fetcher, _ := initSuggestions(slog.Default())
			if fetcher == nil {
				return fmt.Errorf("suggest needs the insight service; configure insight.base_url")
			}
			defer fetcher.Close()

			payees, err := store.GetPayees(ctx)
			if err != nil {
				return fmt.Errorf("failed to get payees: %w", err)
			}
			categories, err := store.GetCategories(ctx)
			if err != nil {
				return fmt.Errorf("failed to get categories: %w", err)
			}

			req := service.SuggestionRequest{
				Description: args[0],
				AccountID:   account,
				AccountType: model.AccountType(accountType),
			}
			if cmd.Flags().Changed("amount") {
				req.Amount = &amount
			}

			result, err := fetcher.Fetch(ctx, req, suggest.KnownEntities{
				Payees:     payees,
				Categories: categories,
			})
			if err != nil {
				fmt.Println(tui.WarningStyle.Render("Insight service unavailable, showing your existing entries"))
			}

			printSuggestions("Payees", result.Payees)
			printSuggestions("Categories", result.Categories)
			return nil
		},
	}

	cmd.Flags().StringVarP(&account, "account", "a", "", "account id for context")
	cmd.Flags().StringVar(&accountType, "account-type", "", "account type for context")
	cmd.Flags().Float64Var(&amount, "amount", 0, "amount for context")
	return cmd
}

func printSuggestions(title string, suggestions model.Suggestions) {
	fmt.Println(tui.TitleStyle.Render(title))
	if len(suggestions) == 0 {
		fmt.Println(tui.SubtleStyle.Render("  (none)"))
		return
	}
	for _, s := range suggestions {
		label := ""
		if s.Type == model.SuggestionExisting {
			label = tui.SubtleStyle.Render(" (existing)")
		}
		fmt.Printf("  %-6s %.2f  %s%s\n", s.Tier(), s.Confidence, s.Name, label)
	}
}
