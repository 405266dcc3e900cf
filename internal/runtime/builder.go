package runtime

import (
	"fmt"
	"slices"

	"github.com/aretw0/harbor/pkg/domain"
	"github.com/aretw0/harbor/pkg/ports"
	"github.com/aretw0/harbor/pkg/schema"
)

type node struct {
	name   string
	fn     ports.NodeFunc
	policy domain.NodePolicy
}

// Builder implements ports.GraphBuilder. Nodes must be added before edges that use them.
type Builder struct {
	engine *Engine
	desc   *schema.Descriptor
	nodes  map[string]node
	order  []string
	edges  []domain.Edge
}

func newBuilder(e *Engine, desc *schema.Descriptor) *Builder {
	return &Builder{engine: e, desc: desc, nodes: make(map[string]node)}
}

// AddNode registers a node.
func (b *Builder) AddNode(name string, fn ports.NodeFunc, policy domain.NodePolicy) error {
	switch {
	case name == "" || name == ports.Start || name == ports.End:
		return fmt.Errorf("%w: reserved or empty node name %q", ErrInvalidGraph, name)
	case fn == nil:
		return fmt.Errorf("%w: node %q has no function", ErrInvalidGraph, name)
	}
	if _, exists := b.nodes[name]; exists {
		return fmt.Errorf("%w: node %q already added", ErrInvalidGraph, name)
	}
	b.nodes[name] = node{name: name, fn: fn, policy: policy}
	b.order = append(b.order, name)
	return nil
}

// AddEdge registers a static edge. from may be ports.Start and to may be ports.End.
func (b *Builder) AddEdge(from, to string) error {
	if _, ok := b.nodes[from]; !ok && from != ports.Start {
		return fmt.Errorf("%w: edge source %q is not a node", ErrInvalidGraph, from)
	}
	if _, ok := b.nodes[to]; !ok && to != ports.End {
		return fmt.Errorf("%w: edge target %q is not a node", ErrInvalidGraph, to)
	}
	e := domain.Edge{From: from, To: to}
	if !slices.Contains(b.edges, e) {
		b.edges = append(b.edges, e)
	}
	return nil
}

// Compile freezes the builder contents into a new Graph. The builder stays usable.
func (b *Builder) Compile(opts ...ports.CompileOption) (ports.Artifact, error) {
	settings := ports.NewCompileSettings(opts...)
	if settings.Logger == nil {
		settings.Logger = b.engine.logger
	}
	settings.Hooks = domain.ChainHooks(b.engine.hooks, settings.Hooks)

	out := make(map[string][]string, len(b.nodes)+1)
	for _, e := range b.edges {
		out[e.From] = append(out[e.From], e.To)
	}
	if len(out[ports.Start]) == 0 {
		return nil, fmt.Errorf("%w: no entry edge from %s", ErrInvalidGraph, ports.Start)
	}

	nodes := make(map[string]node, len(b.nodes))
	for k, v := range b.nodes {
		nodes[k] = v
	}

	return newGraph(b.engine, b.desc, nodes, slices.Clone(b.order), slices.Clone(b.edges), out, settings), nil
}
