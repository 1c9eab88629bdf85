package model

import (
	"fmt"
	"sort"
)

// FieldType identifies which transaction field a suggestion or selection targets.
type FieldType string

const (
	// FieldPayee targets the transaction's payee.
	FieldPayee FieldType = "payee"
	// FieldCategory targets the transaction's category.
	FieldCategory FieldType = "category"
)

// SuggestionType indicates where a suggestion came from.
type SuggestionType string

const (
	// SuggestionAI marks a value produced by the insight service.
	SuggestionAI SuggestionType = "ai_suggestion"
	// SuggestionExisting marks a value that matches an entity the user already has.
	SuggestionExisting SuggestionType = "existing"
)

// ConfidenceTier buckets a confidence score for display and auto-expand decisions.
type ConfidenceTier string

const (
	// TierHigh is a confidence score of 0.8 or above.
	TierHigh ConfidenceTier = "high"
	// TierMedium is a confidence score in [0.6, 0.8).
	TierMedium ConfidenceTier = "medium"
	// TierLow is a confidence score below 0.6.
	TierLow ConfidenceTier = "low"
)

// TierFor buckets a confidence score. Boundaries are inclusive upward:
// exactly 0.8 is high and exactly 0.6 is medium.
func TierFor(score float64) ConfidenceTier {
	switch {
	case score >= 0.8:
		return TierHigh
	case score >= 0.6:
		return TierMedium
	default:
		return TierLow
	}
}

// Suggestion is a ranked candidate value for a transaction field.
type Suggestion struct {
	ID         string
	Name       string
	Reason     string
	Color      string
	Type       SuggestionType
	Confidence float64
}

// Tier returns the confidence tier for this suggestion.
func (s Suggestion) Tier() ConfidenceTier {
	return TierFor(s.Confidence)
}

// Validate ensures the suggestion has usable data.
func (s *Suggestion) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("suggestion name is required")
	}
	if s.Confidence < 0.0 || s.Confidence > 1.0 {
		return fmt.Errorf("confidence must be between 0.0 and 1.0, got %.2f", s.Confidence)
	}
	return nil
}

// Suggestions is a slice of Suggestion with ranking helpers.
type Suggestions []Suggestion

// Sort orders the suggestions by confidence descending, name ascending on ties.
func (s Suggestions) Sort() {
	sort.SliceStable(s, func(i, j int) bool {
		if s[i].Confidence != s[j].Confidence {
			return s[i].Confidence > s[j].Confidence
		}
		return s[i].Name < s[j].Name
	})
}

// Top returns the highest-confidence suggestion, or nil if the list is empty.
func (s Suggestions) Top() *Suggestion {
	if len(s) == 0 {
		return nil
	}
	top := s[0]
	for _, cand := range s[1:] {
		if cand.Confidence > top.Confidence {
			top = cand
		}
	}
	return &top
}

// FindByID returns the suggestion with the given id, or nil if none matches.
func (s Suggestions) FindByID(id string) *Suggestion {
	for i := range s {
		if s[i].ID == id {
			return &s[i]
		}
	}
	return nil
}

// HasTier reports whether any suggestion reaches the given tier or better.
func (s Suggestions) HasTier(tier ConfidenceTier) bool {
	for _, cand := range s {
		if tierRank(cand.Tier()) >= tierRank(tier) {
			return true
		}
	}
	return false
}

func tierRank(t ConfidenceTier) int {
	switch t {
	case TierHigh:
		return 2
	case TierMedium:
		return 1
	default:
		return 0
	}
}
