package schema

import (
	"errors"
	"fmt"
	"maps"
	"reflect"
	"slices"

	"github.com/aretw0/harbor/pkg/domain"
)

// Descriptor is the state schema descriptor an engine applies to every superstep.
// The zero value accepts any state and replaces values key by key.
type Descriptor struct {
	// Fields type-checks known keys. Keys absent from the state are not reported here.
	Fields Schema
	// Reducers maps a key to how updates for it are folded. Unlisted keys use Replace.
	Reducers map[string]Reducer
	// Strict rejects keys that Fields does not define.
	Strict bool
	// Required keys must be present after every transition.
	Required []string
	// Immutable keys may be set once but never changed afterwards.
	Immutable []string
}

// FromAny resolves the schema handle carried by a graph configuration.
// Accepted forms are nil, Schema, Descriptor and *Descriptor. The result is a copy,
// so later edits to the handle do not reach graphs compiled from it.
func FromAny(v any) (*Descriptor, error) {
	switch s := v.(type) {
	case nil:
		return &Descriptor{}, nil
	case *Descriptor:
		if s == nil {
			return &Descriptor{}, nil
		}
		return s.Clone(), nil
	case Descriptor:
		return s.Clone(), nil
	case Schema:
		return &Descriptor{Fields: maps.Clone(s)}, nil
	default:
		return nil, fmt.Errorf("unsupported state schema descriptor %T", v)
	}
}

// Clone returns a copy of d that shares no maps or slices with it.
func (d *Descriptor) Clone() *Descriptor {
	return &Descriptor{
		Fields:    maps.Clone(d.Fields),
		Reducers:  maps.Clone(d.Reducers),
		Strict:    d.Strict,
		Required:  slices.Clone(d.Required),
		Immutable: slices.Clone(d.Immutable),
	}
}

// Reducer returns the reducer configured for key.
func (d *Descriptor) Reducer(key string) Reducer {
	if r, ok := d.Reducers[key]; ok && r != nil {
		return r
	}
	return Replace
}

// Merge folds delta into base and returns the new state. base is not modified.
func (d *Descriptor) Merge(base domain.State, delta domain.Delta) (domain.State, error) {
	next := base.Clone()
	if next == nil {
		next = domain.State{}
	}
	var errs []error
	for _, key := range sortedKeys(delta) {
		merged, err := d.Reducer(key)(next[key], delta[key])
		if err != nil {
			errs = append(errs, &ValidationError{Key: key, Reason: err.Error(), Value: delta[key]})
			continue
		}
		next[key] = merged
	}
	if err := aggregate(errs); err != nil {
		return nil, err
	}
	return next, nil
}

// Validate type-checks state against Fields.
func (d *Descriptor) Validate(state domain.State) error {
	return ValidatePresent(d.Fields, state, d.Strict)
}

// ValidateTransition checks the move from prev to next: next must be valid, hold every
// Required key, and keep every Immutable key that prev already had.
func (d *Descriptor) ValidateTransition(prev, next domain.State) error {
	var errs []error
	if err := d.Validate(next); err != nil {
		errs = append(errs, ValidationErrors(err)...)
	}
	for _, key := range d.Required {
		if _, ok := next[key]; !ok {
			errs = append(errs, &ValidationError{Key: key, Reason: ReasonRequired})
		}
	}
	for _, key := range d.Immutable {
		before, had := prev[key]
		if !had {
			continue
		}
		if after, ok := next[key]; !ok || !reflect.DeepEqual(before, after) {
			errs = append(errs, &ValidationError{Key: key, Reason: ReasonImmutable, Value: next[key]})
		}
	}
	return aggregate(errs)
}

// IsValidationError reports whether err carries schema validation failures.
func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
