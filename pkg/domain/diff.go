package domain

import (
	"reflect"
)

// Diff calculates the keys that changed between old and new.
// Added and modified keys carry their new value; deleted keys are present with a nil value.
// If old is nil, the whole of new is returned. Returns nil when nothing changed.
func Diff(old, new State) Delta {
	delta := make(Delta)

	for k, newVal := range new {
		oldVal, exists := old[k]
		if !exists || !reflect.DeepEqual(oldVal, newVal) {
			delta[k] = newVal
		}
	}

	for k := range old {
		if _, exists := new[k]; !exists {
			delta[k] = nil
		}
	}

	// Return nil if delta is empty so omitempty can remove the key
	if len(delta) == 0 {
		return nil
	}
	return delta
}
