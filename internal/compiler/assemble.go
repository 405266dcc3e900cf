package compiler

import (
	"fmt"

	"github.com/aretw0/harbor/pkg/domain"
	"github.com/aretw0/harbor/pkg/ports"
)

// Assemble binds a planned topology to an engine builder and compiles it.
// Each call creates a fresh builder, so assembling twice yields two independent artifacts.
func Assemble(engine ports.Engine, topo domain.Topology, cfg domain.GraphConfig, opts ...ports.CompileOption) (ports.Artifact, error) {
	builder, err := engine.NewBuilder(cfg.Schema)
	if err != nil {
		return nil, fmt.Errorf("graph %q: new builder: %w", cfg.Name, err)
	}

	targets := NewTargets(names(topo.Nodes), cfg.TerminalSentinel())

	for _, n := range topo.Nodes {
		if err := builder.AddNode(n.Name, Wrap(n, targets), n.Policy); err != nil {
			return nil, fmt.Errorf("graph %q: add node %q: %w", cfg.Name, n.Name, err)
		}
	}
	for _, e := range topo.Edges {
		if err := builder.AddEdge(e.From, targets.Lower(e.To)); err != nil {
			return nil, fmt.Errorf("graph %q: add edge %s: %w", cfg.Name, e, err)
		}
	}

	// The graph name goes first so callers can still override it.
	all := append([]ports.CompileOption{ports.WithName(cfg.Name)}, opts...)
	artifact, err := builder.Compile(all...)
	if err != nil {
		return nil, fmt.Errorf("graph %q: compile: %w", cfg.Name, err)
	}
	return artifact, nil
}
