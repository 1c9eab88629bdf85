// Package api exposes the ledger over HTTP for local clients.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mossline/ledgermind/internal/engine"
	"github.com/mossline/ledgermind/internal/service"
)

// Server serves the REST API backed by local storage and the insight service.
type Server struct {
	storage  service.Storage
	fetcher  engine.SuggestionFetcher
	recorder service.SelectionRecorder
	logger   *slog.Logger
	http     *http.Server
}

// NewServer wires the API routes. fetcher and recorder may be nil, in which
// case the suggestion endpoints report the service as unavailable.
func NewServer(addr string, storage service.Storage, fetcher engine.SuggestionFetcher, recorder service.SelectionRecorder, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		storage:  storage,
		fetcher:  fetcher,
		recorder: recorder,
		logger:   logger,
	}
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Router builds the chi route tree. Exposed separately for tests.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.healthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/accounts", s.listAccounts)
		r.Post("/accounts", s.createAccount)
		r.Get("/transactions", s.listTransactions)
		r.Patch("/transactions/{id}", s.assignTransaction)
		r.Get("/payees", s.listPayees)
		r.Post("/payees", s.createPayee)
		r.Get("/categories", s.listCategories)
		r.Post("/categories", s.createCategory)
		r.Post("/suggestions", s.suggestions)
		r.Post("/selections", s.recordSelection)
	})

	return r
}

// ListenAndServe runs the server until the context is canceled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("API server listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}

// logRequests logs one line per request the way the rest of the app logs.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start))
	})
}
