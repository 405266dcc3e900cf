package ports

import (
	"context"
	"iter"
	"slices"

	"github.com/aretw0/harbor/pkg/domain"
)

// Reserved sentinels recognised by engines.
const (
	Start = domain.Start
	End   = domain.End
)

// Command is the engine-native routing primitive: where to go next and what to merge.
// An empty Goto means "follow the static edges of the node".
type Command struct {
	Goto   []string       `json:"goto,omitempty"`
	Update map[string]any `json:"update,omitempty"`
}

// NodeFunc is the shape of a node once the compiler has wrapped it.
type NodeFunc func(ctx context.Context, state domain.State) (Command, error)

// Engine creates graph builders.
type Engine interface {
	// NewBuilder returns a builder for graphs whose state follows schema.
	// The schema value is engine specific; nil means "no schema".
	NewBuilder(schema any) (GraphBuilder, error)
}

// GraphBuilder is the builder capability set an engine exposes.
type GraphBuilder interface {
	AddNode(name string, fn NodeFunc, policy domain.NodePolicy) error
	AddEdge(from, to string) error
	Compile(opts ...CompileOption) (Artifact, error)
}

// Artifact is a compiled graph.
type Artifact interface {
	// Invoke runs the graph to completion and returns the final state.
	Invoke(ctx context.Context, input domain.State, opts ...RunOption) (domain.State, error)

	// Stream runs the graph lazily, yielding one Snapshot per superstep.
	// The returned sequence belongs to a single run and can be ranged over once.
	Stream(ctx context.Context, input domain.State, opts ...RunOption) iter.Seq2[Snapshot, error]

	// Signature describes the node and edge sets the artifact was compiled from.
	Signature() Signature
}

// Snapshot is an intermediate state produced by Stream.
type Snapshot struct {
	Step    int                     `json:"step"`
	Nodes   []string                `json:"nodes"`
	Updates map[string]domain.Delta `json:"updates"`
	Values  domain.State            `json:"values"`
	Next    []string                `json:"next,omitempty"`
}

// Signature is the (node-set, edge-set) identity of a compiled graph.
type Signature struct {
	Nodes []string      `json:"nodes"`
	Edges []domain.Edge `json:"edges"`
}

// NewSignature builds a signature with both sets sorted.
func NewSignature(nodes []string, edges []domain.Edge) Signature {
	n := slices.Clone(nodes)
	slices.Sort(n)
	e := slices.Clone(edges)
	slices.SortFunc(e, func(a, b domain.Edge) int {
		if a.From != b.From {
			if a.From < b.From {
				return -1
			}
			return 1
		}
		if a.To < b.To {
			return -1
		}
		if a.To > b.To {
			return 1
		}
		return 0
	})
	return Signature{Nodes: n, Edges: e}
}

// Equal reports whether both signatures describe the same node and edge sets.
func (s Signature) Equal(other Signature) bool {
	return slices.Equal(s.Nodes, other.Nodes) && slices.Equal(s.Edges, other.Edges)
}
