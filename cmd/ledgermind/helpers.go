package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/viper"

	"github.com/mossline/ledgermind/internal/config"
	"github.com/mossline/ledgermind/internal/feedback"
	"github.com/mossline/ledgermind/internal/service"
	"github.com/mossline/ledgermind/internal/storage"
	"github.com/mossline/ledgermind/internal/suggest"
)

// initStorage opens the database with proper path expansion and runs
// any pending migrations.
func initStorage(ctx context.Context) (service.Storage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/ledgermind/ledgermind.db"
	}
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return store, nil
}

// insightClient builds the HTTP client for the insight service from config.
func insightClient() (*suggest.Client, error) {
	baseURL := viper.GetString("insight.base_url")
	if baseURL == "" {
		return nil, fmt.Errorf("insight.base_url is not configured (set LEDGERMIND_INSIGHT_BASE_URL or add it to the config file)")
	}

	timeout := viper.GetDuration("insight.timeout")
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return suggest.NewClient(baseURL, viper.GetString("insight.api_key"), timeout), nil
}

// initSuggestions wires the fetcher and recorder, or returns nils when the
// insight service is not configured. Everything else works without it.
func initSuggestions(logger *slog.Logger) (*suggest.Fetcher, *feedback.Recorder) {
	client, err := insightClient()
	if err != nil {
		logger.Warn("suggestions disabled", "reason", err)
		return nil, nil
	}

	fetcher := suggest.NewFetcher(client, suggest.Config{
		CacheTTL:  viper.GetDuration("insight.cache_ttl"),
		RateLimit: viper.GetInt("insight.rate_limit"),
	}, logger)
	recorder := feedback.NewRecorder(client, logger)
	return fetcher, recorder
}
