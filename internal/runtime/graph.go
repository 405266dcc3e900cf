package runtime

import (
	"context"
	"iter"
	"sync/atomic"

	"github.com/aretw0/harbor/pkg/domain"
	"github.com/aretw0/harbor/pkg/ports"
	"github.com/aretw0/harbor/pkg/schema"
	"github.com/aretw0/harbor/pkg/session"
	"go.opentelemetry.io/otel/trace"
)

// Graph is the compiled artifact. It is immutable and safe for concurrent runs;
// runs that share a thread are serialized.
type Graph struct {
	name     string
	desc     *schema.Descriptor
	nodes    map[string]node
	order    []string
	edges    []domain.Edge
	out      map[string][]string
	settings ports.CompileSettings
	tracer   trace.Tracer
	sessions *session.Manager
}

var _ ports.Artifact = (*Graph)(nil)

func newGraph(e *Engine, desc *schema.Descriptor, nodes map[string]node, order []string, edges []domain.Edge, out map[string][]string, settings ports.CompileSettings) *Graph {
	return &Graph{
		name:     settings.Name,
		desc:     desc,
		nodes:    nodes,
		order:    order,
		edges:    edges,
		out:      out,
		settings: settings,
		tracer:   e.tracer(settings.TracerProvider),
		sessions: session.NewManager(settings.Checkpointer,
			session.WithLocker(settings.Locker),
			session.WithLogger(settings.Logger),
		),
	}
}

// Name returns the compiled graph name.
func (g *Graph) Name() string { return g.name }

// Signature returns the sorted node and edge sets.
func (g *Graph) Signature() ports.Signature {
	return ports.NewSignature(g.order, g.edges)
}

// Sessions exposes the thread manager, e.g. to inspect or delete checkpoints.
func (g *Graph) Sessions() *session.Manager { return g.sessions }

// Invoke runs the graph to completion and returns the final state.
func (g *Graph) Invoke(ctx context.Context, input domain.State, opts ...ports.RunOption) (domain.State, error) {
	rs := ports.NewRunSettings(g.settings, opts...)
	var final domain.State
	err := g.withThread(ctx, rs.Thread, func(ctx context.Context) error {
		var err error
		final, err = g.run(ctx, input, rs, nil)
		return err
	})
	return final, err
}

// Stream runs the graph lazily, yielding a Snapshot after every superstep.
// Breaking out of the loop stops the run after the current step; a thread keeps its
// pending nodes so a later run resumes there.
func (g *Graph) Stream(ctx context.Context, input domain.State, opts ...ports.RunOption) iter.Seq2[ports.Snapshot, error] {
	rs := ports.NewRunSettings(g.settings, opts...)
	var consumed atomic.Bool

	return func(yield func(ports.Snapshot, error) bool) {
		if consumed.Swap(true) {
			yield(ports.Snapshot{}, ErrStreamConsumed)
			return
		}
		stopped := false
		err := g.withThread(ctx, rs.Thread, func(ctx context.Context) error {
			_, err := g.run(ctx, input, rs, func(s ports.Snapshot) bool {
				if !yield(s, nil) {
					stopped = true
					return false
				}
				return true
			})
			return err
		})
		if err != nil && !stopped {
			yield(ports.Snapshot{}, err)
		}
	}
}

func (g *Graph) withThread(ctx context.Context, thread string, fn func(context.Context) error) error {
	if thread == "" {
		return fn(ctx)
	}
	return g.sessions.WithLock(ctx, thread, fn)
}
