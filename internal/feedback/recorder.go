package feedback

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mossline/ledgermind/internal/model"
	"github.com/mossline/ledgermind/internal/service"
)

// Recorder submits selection events to the insight service. Submission is
// asynchronous and best-effort: each event gets exactly one network attempt,
// failures are logged and swallowed, and the caller is never blocked.
type Recorder struct {
	client  service.SuggestionService
	logger  *slog.Logger
	sent    map[string]struct{}
	timeout time.Duration
	mu      sync.Mutex
	wg      sync.WaitGroup
}

// NewRecorder creates a selection recorder backed by the given client.
func NewRecorder(client service.SuggestionService, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		client:  client,
		logger:  logger,
		sent:    make(map[string]struct{}),
		timeout: 10 * time.Second,
	}
}

// Record submits the event in the background. Duplicate event ids are
// dropped so a selection is never reported twice.
func (r *Recorder) Record(event model.SelectionEvent) {
	r.mu.Lock()
	if _, duplicate := r.sent[event.EventID]; duplicate {
		r.mu.Unlock()
		r.logger.Debug("selection event already submitted, dropping duplicate",
			"event_id", event.EventID)
		return
	}
	r.sent[event.EventID] = struct{}{}
	r.mu.Unlock()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()

		if err := r.client.RecordSelection(ctx, event); err != nil {
			// Best-effort telemetry: never retried, never surfaced.
			promRecorded.WithLabelValues("failed").Inc()
			r.logger.Warn("selection recording failed",
				"event_id", event.EventID,
				"transaction_id", event.TransactionID,
				"field", event.Field,
				"error", err)
			return
		}

		promRecorded.WithLabelValues("ok").Inc()
		r.logger.Debug("selection recorded",
			"event_id", event.EventID,
			"field", event.Field,
			"was_suggested", event.WasSuggested)
	}()
}

// Flush waits for all in-flight submissions to finish.
func (r *Recorder) Flush() {
	r.wg.Wait()
}
