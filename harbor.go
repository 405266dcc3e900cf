package harbor

import (
	"context"
	"log/slog"
	"reflect"
	"time"

	"github.com/aretw0/harbor/internal/compiler"
	"github.com/aretw0/harbor/internal/logging"
	engine "github.com/aretw0/harbor/internal/runtime"
	"github.com/aretw0/harbor/pkg/domain"
	"github.com/aretw0/harbor/pkg/ports"
	"github.com/aretw0/harbor/pkg/registry"
)

// Aliases of the domain vocabulary, so simple flows only import this package.
type (
	State  = domain.State
	Delta  = domain.Delta
	Route  = domain.Route
	Config = domain.GraphConfig
)

// End is the default terminal sentinel.
const End = domain.End

// To routes to a single node.
func To(target string, updates ...Delta) Route { return domain.To(target, updates...) }

// ToAll fans out to several nodes in the same step.
func ToAll(targets ...string) Route { return domain.ToAll(targets...) }

// Finish routes to the default terminal sentinel.
func Finish(updates ...Delta) Route { return domain.Finish(updates...) }

// Graph is a graph under declaration. It owns its registry, so graphs can be declared
// concurrently; a single Graph is not safe for concurrent declaration.
type Graph struct {
	cfg      Config
	registry *registry.Registry
	engine   ports.Engine
	logger   *slog.Logger
}

// Option configures a Graph.
type Option func(*Graph)

// WithEngine compiles against e instead of the in-process engine.
func WithEngine(e ports.Engine) Option {
	return func(g *Graph) {
		g.engine = e
	}
}

// WithLogger sets the logger for compile and run diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Graph) {
		g.logger = logger
	}
}

// Declare starts a graph. cfg is copied and never modified afterwards.
func Declare(cfg Config, opts ...Option) *Graph {
	g := &Graph{cfg: cfg, registry: registry.New()}
	for _, opt := range opts {
		opt(g)
	}
	if g.logger == nil {
		g.logger = logging.NewNop()
	}
	if g.engine == nil {
		g.engine = engine.New(engine.WithLogger(g.logger))
	}
	return g
}

// Config returns a copy of the graph configuration.
func (g *Graph) Config() Config { return g.cfg }

// Nodes returns the registered definitions in declaration order.
func (g *Graph) Nodes() []domain.NodeDefinition { return g.registry.Nodes() }

// Plan validates and classifies the nodes and synthesizes the static edges without
// touching the engine.
func (g *Graph) Plan() (domain.Topology, error) {
	return g.compiler().Plan(g.cfg, g.registry.Nodes())
}

// Compile produces a new artifact on every call. Nothing is cached, so compiling an
// unchanged graph twice yields two artifacts with equal signatures.
func (g *Graph) Compile(opts ...ports.CompileOption) (ports.Artifact, error) {
	art, _, err := g.CompileTopology(opts...)
	return art, err
}

// CompileTopology is Compile that also returns the planned topology.
func (g *Graph) CompileTopology(opts ...ports.CompileOption) (ports.Artifact, domain.Topology, error) {
	opts = append([]ports.CompileOption{ports.WithLogger(g.logger)}, opts...)
	return g.compiler().Compile(g.engine, g.cfg, g.registry.Nodes(), opts...)
}

func (g *Graph) compiler() *compiler.Compiler {
	return compiler.New(compiler.WithLogger(g.logger))
}

type nodeOptions struct {
	name   string
	policy domain.NodePolicy
}

// NodeOption configures a node at registration.
type NodeOption func(*nodeOptions)

// WithName overrides the name derived from the function identifier.
// It is required for function literals.
func WithName(name string) NodeOption {
	return func(o *nodeOptions) {
		o.name = name
	}
}

// WithTimeout bounds each attempt of the node.
func WithTimeout(d time.Duration) NodeOption {
	return func(o *nodeOptions) {
		o.policy.Timeout = d
	}
}

// WithRetry lets the engine re-run a failing node up to maxAttempts times, waiting delay
// before the second attempt and multiplying the wait by backoff afterwards.
func WithRetry(maxAttempts int, delay time.Duration, backoff float64) NodeOption {
	return func(o *nodeOptions) {
		o.policy.Retry = domain.RetryPolicy{MaxAttempts: maxAttempts, Delay: delay, Backoff: backoff}
	}
}

// Node registers fn on g. The declared result type R decides the node contract:
// Route, *Route, ports.Command and *ports.Command make it Routed.
// Duplicate and invalid names are reported by Compile, not here.
func Node[R any](g *Graph, fn func(context.Context, State) (R, error), opts ...NodeOption) domain.NodeDefinition {
	o := nodeOptions{name: funcName(fn)}
	for _, opt := range opts {
		opt(&o)
	}
	return g.registry.Register(domain.NodeDefinition{
		Name:       o.name,
		ResultType: reflect.TypeFor[R](),
		Procedure: func(ctx context.Context, s domain.State) (any, error) {
			out, err := fn(ctx, s)
			return out, err
		},
		Policy: o.policy,
	})
}
