package main

import (
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mossline/ledgermind/internal/api"
	"github.com/mossline/ledgermind/internal/engine"
	"github.com/mossline/ledgermind/internal/service"
)

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the local HTTP API",
		Long: `Serve the ledger over HTTP for local clients: accounts, transactions,
payees, categories, suggestions and selection feedback, plus Prometheus
metrics on /metrics.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			logger := slog.Default()

			var fetcher engine.SuggestionFetcher
			var recorder service.SelectionRecorder
			if f, rec := initSuggestions(logger); f != nil {
				defer f.Close()
				defer rec.Flush()
				fetcher = f
				recorder = rec
			}

			if !cmd.Flags().Changed("addr") {
				if configured := viper.GetString("server.addr"); configured != "" {
					addr = configured
				}
			}

			server := api.NewServer(addr, store, fetcher, recorder, logger)
			return server.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8321", "listen address")
	return cmd
}
