package domain

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// State is the shared key-value state a graph run operates on.
type State map[string]any

// Delta is a partial state update with no routing implication.
// Returning a Delta from a node means "continue along the synthesized edges".
type Delta map[string]any

// Clone returns a shallow copy of the state. Nested values are shared.
func (s State) Clone() State {
	next := make(State, len(s))
	for k, v := range s {
		next[k] = v
	}
	return next
}

// Decode maps the state onto out (a pointer to a struct or map) using json tags.
// Loose numeric and string conversions are accepted, so state restored from JSON
// checkpoints decodes into the same struct as freshly built state.
func (s State) Decode(out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return fmt.Errorf("failed to create state decoder: %w", err)
	}
	if err := decoder.Decode(map[string]any(s)); err != nil {
		return fmt.Errorf("failed to decode state: %w", err)
	}
	return nil
}

// Decode is the generic form of State.Decode.
func Decode[T any](s State) (T, error) {
	var out T
	err := s.Decode(&out)
	return out, err
}

// Clone returns a shallow copy of the delta.
func (d Delta) Clone() Delta {
	if d == nil {
		return nil
	}
	next := make(Delta, len(d))
	for k, v := range d {
		next[k] = v
	}
	return next
}
