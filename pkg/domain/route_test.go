package domain_test

import (
	"errors"
	"testing"

	"github.com/aretw0/harbor/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoute_Constructors(t *testing.T) {
	r := domain.To("b", domain.Delta{"foo": 1}, domain.Delta{"bar": 2})
	assert.Equal(t, []string{"b"}, r.Goto)
	assert.Equal(t, domain.Delta{"foo": 1, "bar": 2}, r.Update)

	assert.Nil(t, domain.To("b").Update, "no updates should leave Update nil")

	fin := domain.Finish(domain.Delta{"done": true})
	assert.Equal(t, []string{domain.End}, fin.Goto)
	assert.Equal(t, true, fin.Update["done"])

	fan := domain.ToAll("x", "y")
	assert.Equal(t, []string{"x", "y"}, fan.Goto)
}

func TestRoute_WithUpdate(t *testing.T) {
	base := domain.To("b", domain.Delta{"foo": 1})
	chained := base.WithUpdate(domain.Delta{"bar": 2}).WithUpdate(domain.Delta{"foo": 3})

	assert.Equal(t, domain.Delta{"foo": 3, "bar": 2}, chained.Update)
	assert.Equal(t, domain.Delta{"foo": 1}, base.Update, "receiver must not be mutated")
}

func TestState_Decode(t *testing.T) {
	type view struct {
		Count int      `json:"count"`
		Trace []string `json:"trace"`
	}

	s := domain.State{"count": float64(3), "trace": []any{"a", "b"}}
	got, err := domain.Decode[view](s)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Count)
	assert.Equal(t, []string{"a", "b"}, got.Trace)
}

func TestState_Clone(t *testing.T) {
	s := domain.State{"a": 1}
	c := s.Clone()
	c["a"] = 2
	assert.Equal(t, 1, s["a"])
}

func TestErrors_Is(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		is    error
		group error
	}{
		{"duplicate", &domain.DuplicateNodeNameError{Names: []string{"a"}}, domain.ErrDuplicateNodeName, domain.ErrConfiguration},
		{"start", &domain.StartNodeNotFoundError{Start: "x"}, domain.ErrStartNodeNotFound, domain.ErrConfiguration},
		{"empty", &domain.EmptyNodeSetError{}, domain.ErrEmptyNodeSet, domain.ErrConfiguration},
		{"name", &domain.InvalidNodeNameError{}, domain.ErrInvalidNodeName, domain.ErrConfiguration},
		{"target", &domain.UnknownEdgeTargetError{Node: "a", Targets: []string{"z"}}, domain.ErrUnknownEdgeTarget, domain.ErrConfiguration},
		{"shape", &domain.UnrecognizedReturnShapeError{Node: "a", Shape: "int"}, domain.ErrUnrecognizedReturnShape, domain.ErrInvocation},
		{"contract", &domain.RoutedContractViolationError{Node: "a"}, domain.ErrRoutedContractViolation, domain.ErrInvocation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, errors.Is(tt.err, tt.is))
			assert.True(t, errors.Is(tt.err, tt.group))
		})
	}
}

func TestDuplicateNodeNameError_Message(t *testing.T) {
	err := &domain.DuplicateNodeNameError{Graph: "flow", Names: []string{"a", "b"}}
	assert.Contains(t, err.Error(), "a, b")
	assert.Contains(t, err.Error(), `"flow"`)
}
