package harbor_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/aretw0/harbor"
	"github.com/aretw0/harbor/internal/runtime"
	"github.com/aretw0/harbor/pkg/adapters/memory"
	"github.com/aretw0/harbor/pkg/domain"
	"github.com/aretw0/harbor/pkg/ports"
	"github.com/aretw0/harbor/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var traceSchema = &schema.Descriptor{Reducers: map[string]schema.Reducer{"trace": schema.Append}}

func stepA(ctx context.Context, s harbor.State) (harbor.Delta, error) {
	return harbor.Delta{"trace": "A"}, nil
}

func stepB(ctx context.Context, s harbor.State) (harbor.Route, error) {
	return harbor.To("stepC", harbor.Delta{"trace": "B"}), nil
}

func stepC(ctx context.Context, s harbor.State) (map[string]any, error) {
	return map[string]any{"trace": "C"}, nil
}

func abc(t *testing.T) *harbor.Graph {
	t.Helper()
	g := harbor.Declare(harbor.Config{Name: "abc", Start: "stepA", Schema: traceSchema})
	harbor.Node(g, stepA)
	harbor.Node(g, stepB)
	harbor.Node(g, stepC)
	return g
}

func TestDeclare_NamesFromFunctions(t *testing.T) {
	g := abc(t)
	nodes := g.Nodes()
	require.Len(t, nodes, 3)
	assert.Equal(t, "stepA", nodes[0].Name)
	assert.Equal(t, 1, nodes[0].Index)
	assert.Equal(t, "stepC", nodes[2].Name)
	assert.Equal(t, 3, nodes[2].Index)
}

func TestPlan_SequentialRoutedSequential(t *testing.T) {
	topo, err := abc(t).Plan()
	require.NoError(t, err)

	assert.Equal(t, []domain.Edge{
		{From: domain.Start, To: "stepA"},
		{From: "stepA", To: "stepB"},
		{From: "stepC", To: domain.End},
	}, topo.Edges)
	assert.Equal(t, domain.ContractRouted, topo.Nodes[1].Contract)
	assert.Empty(t, topo.OutEdges("stepB"))
}

func TestCompile_RunsRouteToC(t *testing.T) {
	flow, err := abc(t).Compile()
	require.NoError(t, err)

	out, err := flow.Invoke(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, []any{"A", "B", "C"}, out["trace"])
}

func TestCompile_Repeatable(t *testing.T) {
	g := abc(t)
	one, err := g.Compile()
	require.NoError(t, err)
	two, err := g.Compile()
	require.NoError(t, err)

	assert.NotSame(t, one, two)
	assert.True(t, one.Signature().Equal(two.Signature()))
}

func TestCompile_ConfigurationErrors(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		_, err := harbor.Declare(harbor.Config{Start: "a"}).Compile()
		assert.ErrorIs(t, err, domain.ErrEmptyNodeSet)
	})
	t.Run("start", func(t *testing.T) {
		g := harbor.Declare(harbor.Config{Start: "missing"})
		harbor.Node(g, stepA)
		_, err := g.Compile()
		assert.ErrorIs(t, err, domain.ErrStartNodeNotFound)
	})
	t.Run("duplicate", func(t *testing.T) {
		g := harbor.Declare(harbor.Config{Start: "stepA"})
		harbor.Node(g, stepA)
		harbor.Node(g, stepA)
		_, err := g.Compile()
		var dup *domain.DuplicateNodeNameError
		require.True(t, errors.As(err, &dup))
		assert.Equal(t, []string{"stepA"}, dup.Names)
	})
	t.Run("literal without name", func(t *testing.T) {
		g := harbor.Declare(harbor.Config{Start: "x"})
		harbor.Node(g, func(ctx context.Context, s harbor.State) (harbor.Delta, error) { return nil, nil })
		_, err := g.Compile()
		assert.ErrorIs(t, err, domain.ErrInvalidNodeName)
		assert.ErrorIs(t, err, domain.ErrConfiguration)
	})
}

func TestRoutedNodeReturningNothingViolatesContract(t *testing.T) {
	g := harbor.Declare(harbor.Config{Start: "bad"})
	harbor.Node(g, func(ctx context.Context, s harbor.State) (*harbor.Route, error) {
		return nil, nil
	}, harbor.WithName("bad"))
	flow, err := g.Compile()
	require.NoError(t, err)

	_, err = flow.Invoke(context.Background(), nil)
	var violation *domain.RoutedContractViolationError
	require.True(t, errors.As(err, &violation))
	assert.Equal(t, "bad", violation.Node)
}

func TestSequentialRouteOverridesChain(t *testing.T) {
	g := harbor.Declare(harbor.Config{Start: "first", Schema: traceSchema})
	harbor.Node(g, func(ctx context.Context, s harbor.State) (any, error) {
		return harbor.To("last", harbor.Delta{"trace": "first"}), nil
	}, harbor.WithName("first"))
	harbor.Node(g, func(ctx context.Context, s harbor.State) (harbor.Delta, error) {
		return harbor.Delta{"trace": "skipped"}, nil
	}, harbor.WithName("middle"))
	harbor.Node(g, func(ctx context.Context, s harbor.State) (harbor.Delta, error) {
		return harbor.Delta{"trace": "last"}, nil
	}, harbor.WithName("last"))

	flow, err := g.Compile()
	require.NoError(t, err)
	out, err := flow.Invoke(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, []any{"first", "last"}, out["trace"])
}

func TestCustomTerminal(t *testing.T) {
	g := harbor.Declare(harbor.Config{Start: "decide", Terminal: "DONE", Schema: traceSchema})
	harbor.Node(g, func(ctx context.Context, s harbor.State) (harbor.Route, error) {
		return harbor.To("DONE", harbor.Delta{"trace": "decide"}), nil
	}, harbor.WithName("decide"))
	harbor.Node(g, stepC)

	flow, err := g.Compile()
	require.NoError(t, err)
	out, err := flow.Invoke(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, []any{"decide"}, out["trace"])

	topo, err := g.Plan()
	require.NoError(t, err)
	assert.Equal(t, "DONE", topo.Terminal)
	assert.Contains(t, topo.Edges, domain.Edge{From: "stepC", To: "DONE"})
}

func TestUnknownRouteTarget(t *testing.T) {
	g := harbor.Declare(harbor.Config{Start: "lost"})
	harbor.Node(g, func(ctx context.Context, s harbor.State) (harbor.Route, error) {
		return harbor.To("nowhere"), nil
	}, harbor.WithName("lost"), harbor.WithRetry(3, 0, 1))

	flow, err := g.Compile()
	require.NoError(t, err)
	_, err = flow.Invoke(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrUnknownEdgeTarget)

	var nodeErr *runtime.NodeExecutionError
	require.True(t, errors.As(err, &nodeErr))
	assert.Equal(t, 1, nodeErr.Attempts, "configuration errors are not retried")
}

func TestNodeErrorsPropagateUnchanged(t *testing.T) {
	sentinel := errors.New("upstream down")
	g := harbor.Declare(harbor.Config{Start: "call"})
	harbor.Node(g, func(ctx context.Context, s harbor.State) (harbor.Delta, error) {
		return nil, sentinel
	}, harbor.WithName("call"))

	flow, err := g.Compile()
	require.NoError(t, err)
	_, err = flow.Invoke(context.Background(), nil)
	assert.ErrorIs(t, err, sentinel)
}

func TestConcurrentDeclaration(t *testing.T) {
	var wg sync.WaitGroup
	results := make([][]domain.NodeDefinition, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = abc(t).Nodes()
		}()
	}
	wg.Wait()
	for _, nodes := range results {
		assert.Equal(t, []int{1, 2, 3}, []int{nodes[0].Index, nodes[1].Index, nodes[2].Index})
	}
}

func TestThreadPersistence(t *testing.T) {
	store := memory.NewCheckpointer()
	flow, err := abc(t).Compile(ports.WithCheckpointer(store))
	require.NoError(t, err)

	ctx := context.Background()
	_, err = flow.Invoke(ctx, nil, ports.WithThread("user-1"))
	require.NoError(t, err)

	cp, err := store.Load(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, []any{"A", "B", "C"}, cp.Values["trace"])
	assert.Equal(t, 3, cp.Step)
}

func TestStream(t *testing.T) {
	flow, err := abc(t).Compile()
	require.NoError(t, err)

	var nodes []string
	for snap, err := range flow.Stream(context.Background(), nil) {
		require.NoError(t, err)
		nodes = append(nodes, snap.Nodes...)
	}
	assert.Equal(t, []string{"stepA", "stepB", "stepC"}, nodes)
}
