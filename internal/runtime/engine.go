// Package runtime is the in-process execution engine behind ports.Engine.
//
// Graphs run in supersteps. Every step executes the current frontier against the same
// snapshot of state, merges the returned updates in frontier order through the schema
// reducers, and computes the next frontier from each node's Command, falling back to its
// static out-edges. A branch ends when it reaches ports.End.
package runtime

import (
	"log/slog"

	"github.com/aretw0/harbor/internal/logging"
	"github.com/aretw0/harbor/pkg/domain"
	"github.com/aretw0/harbor/pkg/ports"
	"github.com/aretw0/harbor/pkg/schema"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope of engine spans.
const TracerName = "github.com/aretw0/harbor/runtime"

// Engine creates graph builders. It is stateless and safe for concurrent use.
type Engine struct {
	logger         *slog.Logger
	tracerProvider trace.TracerProvider
	hooks          domain.LifecycleHooks
}

// Option configures engine-wide defaults. Compile options take precedence.
type Option func(*Engine)

// WithLogger sets the default logger of compiled graphs.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithTracerProvider sets the default tracer provider of compiled graphs.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(e *Engine) { e.tracerProvider = tp }
}

// WithLifecycleHooks sets hooks applied to every graph built by this engine.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) { e.hooks = hooks }
}

// New creates an engine.
func New(opts ...Option) *Engine {
	e := &Engine{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewBuilder accepts nil, schema.Schema, schema.Descriptor or *schema.Descriptor.
func (e *Engine) NewBuilder(s any) (ports.GraphBuilder, error) {
	desc, err := schema.FromAny(s)
	if err != nil {
		return nil, err
	}
	return newBuilder(e, desc), nil
}

func (e *Engine) tracer(tp trace.TracerProvider) trace.Tracer {
	if tp == nil {
		tp = e.tracerProvider
	}
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return tp.Tracer(TracerName)
}
