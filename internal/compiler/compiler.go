// Package compiler turns the nodes declared on a graph into an engine artifact.
//
// Compilation runs in four stages: Validate, Classify, Synthesize and Assemble.
// Plan runs the first three and is pure; Compile adds assembly against a ports.Engine.
package compiler

import (
	"log/slog"

	"github.com/aretw0/harbor/internal/logging"
	"github.com/aretw0/harbor/pkg/domain"
	"github.com/aretw0/harbor/pkg/ports"
)

// Compiler carries the ambient dependencies of compilation. It holds no graph state.
type Compiler struct {
	logger *slog.Logger
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithLogger sets the logger used for compile diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Compiler) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a Compiler. The default logger discards everything.
func New(opts ...Option) *Compiler {
	c := &Compiler{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Plan validates, classifies and synthesizes edges. nodes is not modified.
func (c *Compiler) Plan(cfg domain.GraphConfig, nodes []domain.NodeDefinition) (domain.Topology, error) {
	if err := Validate(nodes, cfg); err != nil {
		return domain.Topology{}, err
	}
	classified := ClassifyAll(nodes)
	edges, err := Synthesize(classified, cfg)
	if err != nil {
		return domain.Topology{}, err
	}
	return domain.Topology{
		Graph:    cfg.Name,
		Start:    cfg.Start,
		Terminal: cfg.TerminalSentinel(),
		Nodes:    classified,
		Edges:    edges,
		Schema:   cfg.Schema,
	}, nil
}

// Compile plans the graph and assembles it against engine.
func (c *Compiler) Compile(engine ports.Engine, cfg domain.GraphConfig, nodes []domain.NodeDefinition, opts ...ports.CompileOption) (ports.Artifact, domain.Topology, error) {
	c.logger.Debug("compiling graph", "graph", cfg.Name, "nodes", len(nodes))

	topo, err := c.Plan(cfg, nodes)
	if err != nil {
		c.logger.Debug("graph rejected", "graph", cfg.Name, "err", err)
		return nil, domain.Topology{}, err
	}

	artifact, err := Assemble(engine, topo, cfg, opts...)
	if err != nil {
		return nil, topo, err
	}

	c.logger.Debug("graph compiled", "graph", cfg.Name, "nodes", len(topo.Nodes), "edges", len(topo.Edges))
	return artifact, topo, nil
}
