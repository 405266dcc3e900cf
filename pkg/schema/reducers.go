package schema

import (
	"fmt"
	"maps"
	"reflect"
)

// Reducer folds an update for one key into the current value of that key.
// current is nil when the key is not yet in the state.
type Reducer func(current, update any) (any, error)

// Replace overwrites the current value. It is the default reducer.
func Replace(_, update any) (any, error) {
	return update, nil
}

// Append concatenates update onto current. Either side may be a slice or a single value.
func Append(current, update any) (any, error) {
	out := flatten(current)
	return append(out, flatten(update)...), nil
}

// Sum adds numeric values. Integers stay integers; any float operand yields a float64.
func Sum(current, update any) (any, error) {
	if current == nil {
		return update, nil
	}
	ci, cInt := asInt(current)
	ui, uInt := asInt(update)
	if cInt && uInt {
		return ci + ui, nil
	}
	cf, ok := asFloat(current)
	if !ok {
		return nil, fmt.Errorf("sum: current value is %T, not a number", current)
	}
	uf, ok := asFloat(update)
	if !ok {
		return nil, fmt.Errorf("sum: update is %T, not a number", update)
	}
	return cf + uf, nil
}

// MergeMap shallow-merges a string-keyed map update into the current map.
func MergeMap(current, update any) (any, error) {
	out := make(map[string]any)
	for _, side := range []any{current, update} {
		if side == nil {
			continue
		}
		m, ok := side.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("merge: expected map[string]any, got %T", side)
		}
		maps.Copy(out, m)
	}
	return out, nil
}

func flatten(v any) []any {
	if v == nil {
		return []any{}
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return []any{v}
	}
	out := make([]any, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		out = append(out, rv.Index(i).Interface())
	}
	return out
}

// asInt accepts every signed and unsigned integer kind, including named ones.
func asInt(v any) (int, bool) {
	rv := reflect.ValueOf(v)
	switch {
	case rv.CanInt():
		return int(rv.Int()), true
	case rv.CanUint():
		return int(rv.Uint()), true
	default:
		return 0, false
	}
}

func asFloat(v any) (float64, bool) {
	if i, ok := asInt(v); ok {
		return float64(i), true
	}
	rv := reflect.ValueOf(v)
	if rv.CanFloat() {
		return rv.Float(), true
	}
	return 0, false
}

var reducersByName = map[string]Reducer{
	"replace": Replace,
	"append":  Append,
	"sum":     Sum,
	"merge":   MergeMap,
}

// ParseReducer resolves a reducer by its config name: replace, append, sum or merge.
func ParseReducer(name string) (Reducer, error) {
	r, ok := reducersByName[name]
	if !ok {
		return nil, fmt.Errorf("unsupported reducer: %s", name)
	}
	return r, nil
}
