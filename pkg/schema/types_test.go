package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypes_Validate(t *testing.T) {
	tests := []struct {
		name  string
		typ   Type
		value any
		ok    bool
	}{
		{"string", String(), "x", true},
		{"string rejects int", String(), 1, false},
		{"int", Int(), 3, true},
		{"int accepts whole float", Int(), float64(3), true},
		{"int rejects fraction", Int(), 3.5, false},
		{"float accepts int", Float(), 3, true},
		{"bool", Bool(), false, true},
		{"any", Any(), struct{}{}, true},
		{"slice", Slice(String()), []any{"a", "b"}, true},
		{"slice element", Slice(Int()), []any{1, "b"}, false},
		{"map", Map(Int()), map[string]any{"a": 1}, true},
		{"map value", Map(Int()), map[string]any{"a": "x"}, false},
		{"map key kind", Map(Any()), map[int]any{1: 1}, false},
		{"tagged email", Tagged("email", "required,email"), "dev@example.com", true},
		{"tagged email rejects", Tagged("email", "required,email"), "not-an-email", false},
		{"tagged range", Tagged("score", "gte=0,lte=10"), 11, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.typ.Validate(tt.value)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestTagged_ReportsRule(t *testing.T) {
	err := Tagged("email", "email").Validate("nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"email"`)
}

func TestParseType(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"string", "string"},
		{"[int]", "[int]"},
		{"{any}", "{any}"},
		{"[{string}]", "[{string}]"},
		{" bool ", "bool"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			typ, err := ParseType(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, typ.Name())
		})
	}

	_, err := ParseType("uuid")
	assert.Error(t, err)
}

func TestSchema_JSONRoundTrip(t *testing.T) {
	s := Schema{"tags": Slice(String()), "count": Int()}

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"tags":"[string]","count":"int"}`, string(data))

	var back Schema
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, "[string]", back["tags"].Name())

	assert.Error(t, json.Unmarshal([]byte(`{"a": 1}`), &back))
}

func TestDescriptor_JSON(t *testing.T) {
	d := &Descriptor{
		Fields:    Schema{"log": Slice(String())},
		Reducers:  map[string]Reducer{"log": Append, "n": Sum, "x": func(_, u any) (any, error) { return u, nil }},
		Required:  []string{"log"},
		Immutable: []string{"topic"},
	}

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"fields": {"log": "[string]"},
		"reducers": {"log": "append", "n": "sum", "x": "custom"},
		"required": ["log"],
		"immutable": ["topic"]
	}`, string(data))

	var back Descriptor
	assert.Error(t, json.Unmarshal(data, &back), "custom reducers cannot be decoded")

	require.NoError(t, json.Unmarshal([]byte(`{"reducers": {"n": "sum"}, "strict": true}`), &back))
	assert.True(t, back.Strict)
	assert.Equal(t, "sum", ReducerName(back.Reducers["n"]))
	assert.Equal(t, "replace", ReducerName(nil))
}
