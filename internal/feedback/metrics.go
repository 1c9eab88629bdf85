// Package feedback reports committed user selections to the insight service
// and tracks session-level suggestion metrics.
package feedback

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	promShown = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ledgermind_suggestions_shown_total",
		Help: "Total number of suggestions shown to the user.",
	})

	promAccepted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ledgermind_suggestions_accepted_total",
		Help: "Total number of suggestions the user accepted.",
	})

	promRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ledgermind_suggestions_rejected_total",
		Help: "Total number of suggestions the user rejected.",
	})

	promRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledgermind_selections_recorded_total",
		Help: "Selection events submitted to the insight service, labelled by outcome.",
	}, []string{"status"})
)

// SessionMetrics holds process-local suggestion counters. They reset on
// restart and are never persisted.
type SessionMetrics struct {
	shown    atomic.Int64
	accepted atomic.Int64
	rejected atomic.Int64
}

// NewSessionMetrics creates an empty metrics set.
func NewSessionMetrics() *SessionMetrics {
	return &SessionMetrics{}
}

// SuggestionsShown records n suggestions being presented.
func (m *SessionMetrics) SuggestionsShown(n int) {
	if n <= 0 {
		return
	}
	m.shown.Add(int64(n))
	promShown.Add(float64(n))
}

// SuggestionAccepted records the user accepting a suggestion.
func (m *SessionMetrics) SuggestionAccepted() {
	m.accepted.Add(1)
	promAccepted.Inc()
}

// SuggestionRejected records the user rejecting a suggestion.
func (m *SessionMetrics) SuggestionRejected() {
	m.rejected.Add(1)
	promRejected.Inc()
}

// Snapshot is a point-in-time view of the session counters.
type Snapshot struct {
	Shown          int64
	Accepted       int64
	Rejected       int64
	AcceptanceRate float64
}

// Snapshot returns the current counters and derived acceptance rate.
// The rate is 0 when nothing has been shown.
func (m *SessionMetrics) Snapshot() Snapshot {
	snap := Snapshot{
		Shown:    m.shown.Load(),
		Accepted: m.accepted.Load(),
		Rejected: m.rejected.Load(),
	}
	if snap.Shown > 0 {
		snap.AcceptanceRate = float64(snap.Accepted) / float64(snap.Shown)
	}
	return snap
}
