package schema

import (
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
)

// MarshalJSON encodes the schema as field names mapped to type strings.
func (s Schema) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}
	raw := make(map[string]string, len(s))
	for key, typ := range s {
		if typ == nil {
			return nil, fmt.Errorf("field %s: type is nil", key)
		}
		raw[key] = typ.Name()
	}
	return json.Marshal(raw)
}

// UnmarshalJSON decodes field names mapped to type strings.
// Custom and Tagged types cannot be rebuilt from their names.
func (s *Schema) UnmarshalJSON(data []byte) error {
	if s == nil {
		return fmt.Errorf("schema: UnmarshalJSON on nil pointer")
	}
	if string(data) == "null" {
		*s = nil
		return nil
	}
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("schema: expected an object of type strings: %w", err)
	}
	parsed, err := ParseTypeMap(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

type descriptorJSON struct {
	Fields    Schema            `json:"fields,omitempty"`
	Reducers  map[string]string `json:"reducers,omitempty"`
	Strict    bool              `json:"strict,omitempty"`
	Required  []string          `json:"required,omitempty"`
	Immutable []string          `json:"immutable,omitempty"`
}

// ReducerName returns the config name of a built-in reducer, or "custom".
func ReducerName(r Reducer) string {
	if r == nil {
		return "replace"
	}
	ptr := reflect.ValueOf(r).Pointer()
	for name, known := range reducersByName {
		if reflect.ValueOf(known).Pointer() == ptr {
			return name
		}
	}
	return "custom"
}

// MarshalJSON encodes the descriptor with reducers named as in ParseReducer.
func (d *Descriptor) MarshalJSON() ([]byte, error) {
	if d == nil {
		return []byte("null"), nil
	}
	out := descriptorJSON{
		Fields:    d.Fields,
		Strict:    d.Strict,
		Required:  slices.Clone(d.Required),
		Immutable: slices.Clone(d.Immutable),
	}
	if len(d.Reducers) > 0 {
		out.Reducers = make(map[string]string, len(d.Reducers))
		for key, r := range d.Reducers {
			out.Reducers[key] = ReducerName(r)
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a descriptor. A "custom" reducer is an error since
// its function cannot be recovered.
func (d *Descriptor) UnmarshalJSON(data []byte) error {
	var raw descriptorJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("schema: invalid descriptor: %w", err)
	}
	*d = Descriptor{
		Fields:    raw.Fields,
		Strict:    raw.Strict,
		Required:  raw.Required,
		Immutable: raw.Immutable,
	}
	if len(raw.Reducers) > 0 {
		d.Reducers = make(map[string]Reducer, len(raw.Reducers))
		for key, name := range raw.Reducers {
			r, err := ParseReducer(name)
			if err != nil {
				return fmt.Errorf("reducer for %s: %w", key, err)
			}
			d.Reducers[key] = r
		}
	}
	return nil
}
