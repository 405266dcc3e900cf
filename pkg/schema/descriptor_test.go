package schema

import (
	"testing"

	"github.com/aretw0/harbor/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_AllFieldsRequired(t *testing.T) {
	s := Schema{"api_key": String(), "retries": Int()}

	assert.NoError(t, Validate(s, map[string]any{"api_key": "k", "retries": 3}))

	err := Validate(s, map[string]any{"api_key": "k"})
	errs := ValidationErrors(err)
	require.Len(t, errs, 1)
	assert.Equal(t, "retries", errs[0].(*ValidationError).Key)
}

func TestReducers(t *testing.T) {
	got, err := Append([]any{"a"}, "b")
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b"}, got)

	got, err = Append(nil, []string{"x", "y"})
	require.NoError(t, err)
	assert.Equal(t, []any{"x", "y"}, got)

	got, err = Sum(2, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, got)

	got, err = Sum(2, 0.5)
	require.NoError(t, err)
	assert.Equal(t, 2.5, got)

	_, err = Sum("a", 1)
	assert.Error(t, err)

	got, err = MergeMap(map[string]any{"a": 1}, map[string]any{"b": 2})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": 1, "b": 2}, got)

	r, err := ParseReducer("append")
	require.NoError(t, err)
	got, _ = r(nil, 1)
	assert.Equal(t, []any{1}, got)

	_, err = ParseReducer("max")
	assert.Error(t, err)
}

func TestSum_NumericKinds(t *testing.T) {
	type count uint16
	tests := []struct {
		name            string
		current, update any
		want            any
	}{
		{"uint", uint(2), uint(3), 5},
		{"uint8 and int", uint8(250), 10, 260},
		{"uint64", uint64(1), uint64(1), 2},
		{"named unsigned", count(4), 1, 5},
		{"int32 and float32", int32(1), float32(0.5), 1.5},
		{"uint and float64", uint32(2), 0.25, 2.25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Sum(tt.current, tt.update)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDescriptor_Merge(t *testing.T) {
	d := &Descriptor{Reducers: map[string]Reducer{"trace": Append, "count": Sum}}
	base := domain.State{"trace": []any{"a"}, "count": 1, "name": "x"}

	next, err := d.Merge(base, domain.Delta{"trace": "b", "count": 2, "name": "y"})
	require.NoError(t, err)

	assert.Equal(t, []any{"a", "b"}, next["trace"])
	assert.Equal(t, 3, next["count"])
	assert.Equal(t, "y", next["name"])
	assert.Equal(t, "x", base["name"], "base must not be modified")

	_, err = d.Merge(domain.State{"count": "nan"}, domain.Delta{"count": 1})
	assert.True(t, IsValidationError(err))
}

func TestDescriptor_ValidateTransition(t *testing.T) {
	d := &Descriptor{
		Fields:    Schema{"id": Int(), "name": String()},
		Required:  []string{"id", "required_field"},
		Immutable: []string{"id"},
	}

	t.Run("basic", func(t *testing.T) {
		plain := &Descriptor{}
		assert.NoError(t, plain.ValidateTransition(
			domain.State{"name": "test", "count": 5},
			domain.State{"name": "test", "count": 6, "status": "active"},
		))
	})

	t.Run("missing required", func(t *testing.T) {
		err := d.ValidateTransition(domain.State{"id": 1}, domain.State{"id": 1, "name": "test"})
		errs := ValidationErrors(err)
		require.Len(t, errs, 1)
		assert.Equal(t, "required_field", errs[0].(*ValidationError).Key)
		assert.Equal(t, ReasonRequired, errs[0].(*ValidationError).Reason)
	})

	t.Run("immutable changed", func(t *testing.T) {
		err := d.ValidateTransition(
			domain.State{"id": 1, "required_field": true},
			domain.State{"id": 2, "required_field": true},
		)
		errs := ValidationErrors(err)
		require.Len(t, errs, 1)
		assert.Equal(t, ReasonImmutable, errs[0].(*ValidationError).Reason)
	})

	t.Run("immutable set for the first time", func(t *testing.T) {
		assert.NoError(t, d.ValidateTransition(
			domain.State{"required_field": true},
			domain.State{"id": 7, "required_field": true},
		))
	})

	t.Run("type mismatch", func(t *testing.T) {
		err := d.ValidateTransition(
			domain.State{},
			domain.State{"id": "one", "required_field": true},
		)
		assert.True(t, IsValidationError(err))
	})
}

func TestDescriptor_Strict(t *testing.T) {
	d := &Descriptor{Fields: Schema{"a": Int()}, Strict: true}
	err := d.Validate(domain.State{"a": 1, "b": 2})
	errs := ValidationErrors(err)
	require.Len(t, errs, 1)
	assert.Equal(t, ReasonUnknown, errs[0].(*ValidationError).Reason)

	loose := &Descriptor{Fields: Schema{"a": Int()}}
	assert.NoError(t, loose.Validate(domain.State{"a": 1, "b": 2}))
	assert.NoError(t, loose.Validate(domain.State{"a": nil}), "nil clears a key")
}

func TestFromAny(t *testing.T) {
	d, err := FromAny(nil)
	require.NoError(t, err)
	assert.NotNil(t, d)

	d, err = FromAny(Schema{"a": Int()})
	require.NoError(t, err)
	assert.Contains(t, d.Fields, "a")

	d, err = FromAny(Descriptor{Strict: true})
	require.NoError(t, err)
	assert.True(t, d.Strict)

	_, err = FromAny("schema")
	assert.Error(t, err)
}

func TestFromAny_Copies(t *testing.T) {
	orig := &Descriptor{
		Fields:    Schema{"a": Int()},
		Reducers:  map[string]Reducer{"a": Sum},
		Immutable: []string{"a"},
	}
	d, err := FromAny(orig)
	require.NoError(t, err)
	assert.NotSame(t, orig, d)

	orig.Fields["b"] = String()
	orig.Reducers["a"] = Append
	orig.Immutable[0] = "b"
	orig.Strict = true

	assert.NotContains(t, d.Fields, "b")
	assert.Equal(t, "sum", ReducerName(d.Reducers["a"]))
	assert.Equal(t, []string{"a"}, d.Immutable)
	assert.False(t, d.Strict)
}
