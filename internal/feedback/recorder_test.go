package feedback

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/mossline/ledgermind/internal/model"
	"github.com/mossline/ledgermind/internal/service"
)

type captureClient struct {
	err    error
	events []model.SelectionEvent
	mu     sync.Mutex
}

func (c *captureClient) FetchSuggestions(_ context.Context, _ service.SuggestionRequest) (*service.SuggestionResponse, error) {
	return &service.SuggestionResponse{}, nil
}

func (c *captureClient) RecordSelection(_ context.Context, event model.SelectionEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	return c.err
}

func (c *captureClient) recorded() []model.SelectionEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.SelectionEvent(nil), c.events...)
}

func TestRecorder_SubmitsEventOnce(t *testing.T) {
	client := &captureClient{}
	recorder := NewRecorder(client, slog.Default())

	event := model.SelectionEvent{EventID: "evt-1", TransactionID: "txn-1", Field: model.FieldPayee}
	recorder.Record(event)
	recorder.Flush()

	events := client.recorded()
	if len(events) != 1 {
		t.Fatalf("recorded %d events, want 1", len(events))
	}
	if events[0].EventID != "evt-1" {
		t.Errorf("event id = %q, want evt-1", events[0].EventID)
	}
}

func TestRecorder_DropsDuplicateEventIDs(t *testing.T) {
	client := &captureClient{}
	recorder := NewRecorder(client, slog.Default())

	event := model.SelectionEvent{EventID: "evt-1", TransactionID: "txn-1", Field: model.FieldPayee}
	recorder.Record(event)
	recorder.Record(event)
	recorder.Record(event)
	recorder.Flush()

	if got := len(client.recorded()); got != 1 {
		t.Errorf("recorded %d events, want exactly 1 per selection", got)
	}
}

func TestRecorder_SwallowsFailures(t *testing.T) {
	client := &captureClient{err: errors.New("service down")}
	recorder := NewRecorder(client, slog.Default())

	// Must not panic, block, or surface the error.
	recorder.Record(model.SelectionEvent{EventID: "evt-1"})
	recorder.Flush()

	// The single attempt happened; no retry follows.
	if got := len(client.recorded()); got != 1 {
		t.Errorf("attempts = %d, want 1 (no retries for telemetry)", got)
	}
}

func TestRecorder_DistinctEventsAllSubmitted(t *testing.T) {
	client := &captureClient{}
	recorder := NewRecorder(client, slog.Default())

	for _, id := range []string{"evt-1", "evt-2", "evt-3"} {
		recorder.Record(model.SelectionEvent{EventID: id})
	}
	recorder.Flush()

	if got := len(client.recorded()); got != 3 {
		t.Errorf("recorded %d events, want 3", got)
	}
}
