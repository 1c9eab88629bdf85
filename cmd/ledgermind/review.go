package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mossline/ledgermind/internal/engine"
	"github.com/mossline/ledgermind/internal/tui"
)

func reviewCmd() *cobra.Command {
	var batchSize int

	cmd := &cobra.Command{
		Use:   "review",
		Short: "Review unassigned transactions interactively",
		Long: `Walk through transactions missing a payee or category. For each one the
insight service suggests likely values, ranked by confidence; accept a
suggestion, type your own, or skip. Selections are reported back to the
service so future suggestions improve.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			logger := slog.Default()
			fetcher, recorder := initSuggestions(logger)
			if fetcher == nil {
				return fmt.Errorf("review needs the insight service; configure insight.base_url")
			}
			defer fetcher.Close()
			defer recorder.Flush()

			eng := engine.NewWithConfig(store, fetcher, nil, recorder, logger,
				engine.Config{BatchSize: batchSize})
			prompter := tui.NewPrompter(ctx, eng.Metrics())

			// The engine drives the prompter; the prompter owns the terminal.
			engineErr := make(chan error, 1)
			var stats engine.Stats
			go func() {
				var err error
				stats, err = eng.ReviewTransactionsWith(ctx, prompter)
				prompter.Quit()
				engineErr <- err
			}()

			if err := prompter.Start(); err != nil {
				cancel()
				<-engineErr
				return err
			}
			cancel()
			if err := <-engineErr; err != nil && !errors.Is(err, context.Canceled) {
				return err
			}

			fmt.Printf("Reviewed %d transactions: %d assigned, %d skipped\n",
				stats.Reviewed, stats.Assigned, stats.Skipped)
			if stats.Session.Shown > 0 {
				fmt.Printf("Suggestions: %d shown, %d accepted (%.0f%%)\n",
					stats.Session.Shown, stats.Session.Accepted, stats.Session.AcceptanceRate*100)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&batchSize, "batch-size", 50, "transactions loaded per page")
	return cmd
}
