package suggest

import (
	"strings"

	"github.com/mossline/ledgermind/internal/model"
)

// minAutoExpandDescription is the shortest description that can trigger
// auto-expand. Trivial descriptions produce low-value suggestions.
const minAutoExpandDescription = 5

// ShouldAutoExpand reports whether an editor for an empty field should open
// on its own: the field must be empty, a high-tier suggestion must exist,
// and the description must be non-trivial.
func ShouldAutoExpand(fieldEmpty bool, description string, suggestions model.Suggestions) bool {
	if !fieldEmpty {
		return false
	}
	if len(strings.TrimSpace(description)) < minAutoExpandDescription {
		return false
	}
	return suggestions.HasTier(model.TierHigh)
}

// expandSnapshot captures the value-level inputs of an auto-expand decision.
type expandSnapshot struct {
	description string
	bestTier    model.ConfidenceTier
	fieldEmpty  bool
	haveAny     bool
}

// ExpandGate fires the auto-expand decision once per logical change of its
// inputs. Re-evaluating with value-identical inputs never re-fires, no
// matter how often the surrounding UI refreshes.
type ExpandGate struct {
	last   expandSnapshot
	seeded bool
}

// Evaluate returns true when the editor should auto-expand now.
func (g *ExpandGate) Evaluate(fieldEmpty bool, description string, suggestions model.Suggestions) bool {
	snap := expandSnapshot{
		description: description,
		fieldEmpty:  fieldEmpty,
		haveAny:     len(suggestions) > 0,
	}
	if top := suggestions.Top(); top != nil {
		snap.bestTier = top.Tier()
	}

	if g.seeded && snap == g.last {
		return false
	}
	g.last = snap
	g.seeded = true

	return ShouldAutoExpand(fieldEmpty, description, suggestions)
}

// Reset clears the gate, e.g. when moving to a different transaction.
func (g *ExpandGate) Reset() {
	g.seeded = false
	g.last = expandSnapshot{}
}
