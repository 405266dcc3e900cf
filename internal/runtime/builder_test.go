package runtime_test

import (
	"context"
	"testing"

	"github.com/aretw0/harbor/internal/runtime"
	"github.com/aretw0/harbor/pkg/domain"
	"github.com/aretw0/harbor/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(context.Context, domain.State) (ports.Command, error) { return ports.Command{}, nil }

func TestBuilder_Rejects(t *testing.T) {
	b, err := runtime.New().NewBuilder(nil)
	require.NoError(t, err)

	assert.ErrorIs(t, b.AddNode(ports.End, noop, domain.NodePolicy{}), runtime.ErrInvalidGraph)
	assert.ErrorIs(t, b.AddNode("a", nil, domain.NodePolicy{}), runtime.ErrInvalidGraph)
	require.NoError(t, b.AddNode("a", noop, domain.NodePolicy{}))
	assert.ErrorIs(t, b.AddNode("a", noop, domain.NodePolicy{}), runtime.ErrInvalidGraph)

	assert.ErrorIs(t, b.AddEdge("a", "ghost"), runtime.ErrInvalidGraph)
	assert.ErrorIs(t, b.AddEdge("ghost", "a"), runtime.ErrInvalidGraph)

	_, err = b.Compile()
	assert.ErrorIs(t, err, runtime.ErrInvalidGraph, "a graph needs an entry edge")

	require.NoError(t, b.AddEdge(ports.Start, "a"))
	_, err = b.Compile()
	assert.NoError(t, err)
}

func TestEngine_RejectsUnknownSchema(t *testing.T) {
	_, err := runtime.New().NewBuilder(42)
	assert.Error(t, err)
}
