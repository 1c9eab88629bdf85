// Package viewstate models per-view UI preferences (filters, sorting,
// column layout) as immutable values updated through explicit commands.
// Updates go through a pure Apply function so view behavior is testable
// without any rendering environment.
package viewstate

import (
	"time"

	"github.com/mossline/ledgermind/internal/service"
)

// Column width bounds in terminal cells.
const (
	minColumnWidth = 6
	maxColumnWidth = 120
)

// FilterState holds a view's active transaction filters.
type FilterState struct {
	StartDate      *time.Time        `json:"start_date,omitempty"`
	EndDate        *time.Time        `json:"end_date,omitempty"`
	CategoryID     *int64            `json:"category_id,omitempty"`
	PayeeID        *int64            `json:"payee_id,omitempty"`
	AccountID      string            `json:"account_id,omitempty"`
	Search         string            `json:"search,omitempty"`
	SortBy         service.SortField `json:"sort_by,omitempty"`
	Descending     bool              `json:"descending,omitempty"`
	UnassignedOnly bool              `json:"unassigned_only,omitempty"`
}

// State is the full view state for one named view.
type State struct {
	Columns map[string]int `json:"columns"`
	Filters FilterState    `json:"filters"`
}

// DefaultState returns the initial state for a transactions view.
func DefaultState() State {
	return State{
		Filters: FilterState{
			SortBy:     service.SortByDate,
			Descending: true,
		},
		Columns: map[string]int{
			"date":        12,
			"description": 40,
			"amount":      12,
			"payee":       20,
			"category":    20,
		},
	}
}

// Command describes a single user-driven state change.
type Command interface {
	isCommand()
}

// SetSearch updates the free-text search filter.
type SetSearch struct{ Query string }

// SetAccountFilter restricts the view to one account; empty clears it.
type SetAccountFilter struct{ AccountID string }

// SetCategoryFilter restricts the view to one category; nil clears it.
type SetCategoryFilter struct{ CategoryID *int64 }

// SetPayeeFilter restricts the view to one payee; nil clears it.
type SetPayeeFilter struct{ PayeeID *int64 }

// SetDateRange restricts the view to a date window; nils clear the bounds.
type SetDateRange struct{ Start, End *time.Time }

// SetSort changes the sort column and direction.
type SetSort struct {
	Field      service.SortField
	Descending bool
}

// ToggleUnassigned flips the unassigned-only filter.
type ToggleUnassigned struct{}

// ResizeColumn sets a column's width, clamped to sane bounds.
type ResizeColumn struct {
	Column string
	Width  int
}

// ResetFilters clears all filters but keeps the column layout.
type ResetFilters struct{}

func (SetSearch) isCommand()         {}
func (SetAccountFilter) isCommand()  {}
func (SetCategoryFilter) isCommand() {}
func (SetPayeeFilter) isCommand()    {}
func (SetDateRange) isCommand()      {}
func (SetSort) isCommand()           {}
func (ToggleUnassigned) isCommand()  {}
func (ResizeColumn) isCommand()      {}
func (ResetFilters) isCommand()      {}

// Apply returns the state after the command. The input state is never
// mutated; unknown commands return it unchanged.
func Apply(state State, cmd Command) State {
	next := state
	next.Columns = make(map[string]int, len(state.Columns))
	for name, width := range state.Columns {
		next.Columns[name] = width
	}

	switch c := cmd.(type) {
	case SetSearch:
		next.Filters.Search = c.Query
	case SetAccountFilter:
		next.Filters.AccountID = c.AccountID
	case SetCategoryFilter:
		next.Filters.CategoryID = c.CategoryID
	case SetPayeeFilter:
		next.Filters.PayeeID = c.PayeeID
	case SetDateRange:
		next.Filters.StartDate = c.Start
		next.Filters.EndDate = c.End
	case SetSort:
		next.Filters.SortBy = c.Field
		next.Filters.Descending = c.Descending
	case ToggleUnassigned:
		next.Filters.UnassignedOnly = !state.Filters.UnassignedOnly
	case ResizeColumn:
		width := c.Width
		if width < minColumnWidth {
			width = minColumnWidth
		}
		if width > maxColumnWidth {
			width = maxColumnWidth
		}
		next.Columns[c.Column] = width
	case ResetFilters:
		defaults := DefaultState()
		next.Filters = defaults.Filters
	}

	return next
}

// Filter converts the state's filters into a storage query filter.
func (s State) Filter() service.TransactionFilter {
	return service.TransactionFilter{
		AccountID:  s.Filters.AccountID,
		CategoryID: s.Filters.CategoryID,
		PayeeID:    s.Filters.PayeeID,
		Search:     s.Filters.Search,
		StartDate:  s.Filters.StartDate,
		EndDate:    s.Filters.EndDate,
		SortBy:     s.Filters.SortBy,
		Descending: s.Filters.Descending,
		Unassigned: s.Filters.UnassignedOnly,
	}
}
