package viewstate

import (
	"encoding/json"
	"fmt"
)

// Encode serializes a state for the view_state table.
func Encode(state State) ([]byte, error) {
	blob, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("failed to encode view state: %w", err)
	}
	return blob, nil
}

// Decode restores a state from a stored blob. Missing or empty blobs
// yield the defaults rather than an error, so a new view always works.
func Decode(blob []byte) (State, error) {
	if len(blob) == 0 {
		return DefaultState(), nil
	}

	var state State
	if err := json.Unmarshal(blob, &state); err != nil {
		return DefaultState(), fmt.Errorf("failed to decode view state: %w", err)
	}
	if state.Columns == nil {
		state.Columns = DefaultState().Columns
	}
	return state, nil
}
