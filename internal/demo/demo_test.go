package demo_test

import (
	"context"
	"testing"

	"github.com/aretw0/harbor/internal/demo"
	"github.com/aretw0/harbor/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, name string, input domain.State) domain.State {
	t.Helper()
	f, err := demo.Lookup(name)
	require.NoError(t, err)
	flow, err := f.Declare().Compile()
	require.NoError(t, err)
	if input == nil {
		input = f.Sample
	}
	out, err := flow.Invoke(context.Background(), input)
	require.NoError(t, err)
	return out
}

func TestCatalog(t *testing.T) {
	assert.Equal(t, []string{"chat", "pipeline", "review"}, demo.Names())
	_, err := demo.Lookup("missing")
	assert.Error(t, err)

	for _, f := range demo.All() {
		t.Run(f.Name, func(t *testing.T) {
			topo, err := f.Declare().Plan()
			require.NoError(t, err)
			assert.Equal(t, f.Name, topo.Graph)
		})
	}
}

func TestPipeline(t *testing.T) {
	out := run(t, "pipeline", nil)
	assert.Equal(t, "harbor compiles graphs", out["text"])
	assert.Equal(t, 3, out["count"])
	assert.Equal(t, []any{"trim", "lower", "split"}, out["trace"])
}

func TestReview(t *testing.T) {
	out := run(t, "review", nil)
	assert.Equal(t, "published", out["status"])
	assert.Equal(t, demo.MaxRevisions, out["revisions"])
	assert.Equal(t, "notes on graph compilers (rev 1) (rev 2)", out["draft"])
	assert.Equal(t, []any{"write", "critique", "revise", "critique", "revise", "approve", "publish"}, out["log"])
}

func TestReview_Topology(t *testing.T) {
	f, err := demo.Lookup("review")
	require.NoError(t, err)
	topo, err := f.Declare().Plan()
	require.NoError(t, err)

	assert.Equal(t, []domain.Edge{
		{From: domain.Start, To: "write"},
		{From: "write", To: "critique"},
		{From: "publish", To: domain.End},
	}, topo.Edges)
}

func TestChat(t *testing.T) {
	out := run(t, "chat", nil)
	assert.Equal(t, "the answer is 42", out["answer"])
	findings := out["findings"].(map[string]any)
	assert.Contains(t, findings, "search")

	out = run(t, "chat", domain.State{"question": "who wrote this?"})
	assert.Equal(t, "no documents about who wrote this", out["answer"])
}

func TestChat_RejectsShortQuestion(t *testing.T) {
	f, err := demo.Lookup("chat")
	require.NoError(t, err)
	flow, err := f.Declare().Compile()
	require.NoError(t, err)

	_, err = flow.Invoke(context.Background(), domain.State{"question": "a"})
	assert.Error(t, err)
}
