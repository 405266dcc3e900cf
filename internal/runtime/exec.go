package runtime

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/aretw0/harbor/pkg/domain"
	"github.com/aretw0/harbor/pkg/ports"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// execution is the mutable state of one run.
type execution struct {
	g        *Graph
	settings ports.RunSettings
	runID    string
	step     int
	values   domain.State
	frontier []string
}

func (x *execution) base(t domain.EventType) domain.EventBase {
	return domain.EventBase{
		Timestamp: time.Now(),
		Type:      t,
		Graph:     x.g.name,
		RunID:     x.runID,
		Thread:    x.settings.Thread,
	}
}

// run drives one execution. When yield returns false the run stops without error.
func (g *Graph) run(ctx context.Context, input domain.State, rs ports.RunSettings, yield func(ports.Snapshot) bool) (final domain.State, err error) {
	x := &execution{g: g, settings: rs, runID: uuid.NewString()}
	logger := g.settings.Logger.With("graph", g.name, "run_id", x.runID)
	hooks := g.settings.Hooks
	started := time.Now()

	ctx, span := g.tracer.Start(ctx, "harbor.run", trace.WithAttributes(
		attribute.String("harbor.graph", g.name),
		attribute.String("harbor.run_id", x.runID),
		attribute.String("harbor.thread", rs.Thread),
	))
	defer span.End()

	if hooks.OnRunStart != nil {
		hooks.OnRunStart(ctx, &domain.RunEvent{EventBase: x.base(domain.EventRunStart)})
	}
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			logger.Warn("run failed", "steps", x.step, "err", err)
		} else {
			span.SetStatus(codes.Ok, "")
			logger.Debug("run finished", "steps", x.step, "duration", time.Since(started))
		}
		span.SetAttributes(attribute.Int("harbor.steps", x.step))
		if hooks.OnRunEnd != nil {
			hooks.OnRunEnd(ctx, &domain.RunEvent{
				EventBase: x.base(domain.EventRunEnd),
				Steps:     x.step,
				Duration:  time.Since(started),
				Err:       err,
			})
		}
	}()

	if err := x.restore(ctx, input); err != nil {
		return nil, err
	}
	logger.Debug("run started", "thread", rs.Thread, "frontier", x.frontier, "step", x.step)

	for len(x.frontier) > 0 {
		if err := ctx.Err(); err != nil {
			return x.values, err
		}
		if x.step >= rs.MaxSteps {
			return x.values, &RecursionLimitError{Limit: rs.MaxSteps, Next: x.frontier}
		}
		x.step++

		snap, err := x.superstep(ctx)
		if err != nil {
			return x.values, err
		}
		if hooks.OnStep != nil {
			hooks.OnStep(ctx, &domain.StepEvent{
				EventBase: x.base(domain.EventStep),
				Step:      snap.Step,
				Nodes:     snap.Nodes,
				Next:      snap.Next,
			})
		}
		if yield != nil && !yield(snap) {
			return x.values, nil
		}
	}
	return x.values, nil
}

// restore seeds values and frontier, from the thread checkpoint when there is one.
// A pending checkpoint resumes at its next nodes; a finished one only provides the base state.
func (x *execution) restore(ctx context.Context, input domain.State) error {
	g := x.g
	base := domain.State{}
	restored := false
	x.frontier = slices.Clone(g.out[ports.Start])

	if x.settings.Thread != "" {
		cp, err := g.sessions.LoadUnlocked(ctx, x.settings.Thread)
		switch {
		case errors.Is(err, domain.ErrCheckpointNotFound):
		case err != nil:
			return fmt.Errorf("load checkpoint %q: %w", x.settings.Thread, err)
		default:
			base = cp.Values
			restored = true
			if cp.Pending() {
				x.frontier = slices.Clone(cp.Next)
				x.step = cp.Step
			}
		}
	}

	values, err := g.desc.Merge(base, domain.Delta(input))
	if err != nil {
		return &StateValidationError{Err: err}
	}
	if restored {
		if err := g.desc.ValidateTransition(base, values); err != nil {
			return &StateValidationError{Err: err}
		}
	} else if err := g.desc.Validate(values); err != nil {
		return &StateValidationError{Err: err}
	}
	x.values = values
	return nil
}

// superstep runs the frontier concurrently and merges the results in frontier order.
func (x *execution) superstep(ctx context.Context) (ports.Snapshot, error) {
	g := x.g
	nodes := x.frontier
	for _, name := range nodes {
		if _, ok := g.nodes[name]; !ok {
			return ports.Snapshot{}, fmt.Errorf("%w: step %d targets unknown node %q", ErrInvalidGraph, x.step, name)
		}
	}

	results := make([]ports.Command, len(nodes))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, name := range nodes {
		n := g.nodes[name]
		input := x.values.Clone()
		eg.Go(func() error {
			cmd, err := x.invoke(egCtx, n, input)
			if err != nil {
				return err
			}
			results[i] = cmd
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return ports.Snapshot{}, err
	}

	prev := x.values
	next := prev
	updates := make(map[string]domain.Delta, len(nodes))
	var frontier []string
	for i, name := range nodes {
		cmd := results[i]
		merged, err := g.desc.Merge(next, cmd.Update)
		if err != nil {
			return ports.Snapshot{}, &StateValidationError{Step: x.step, Nodes: []string{name}, Err: err}
		}
		next = merged
		updates[name] = domain.Delta(cmd.Update)

		targets := cmd.Goto
		if len(targets) == 0 {
			targets = g.out[name]
		}
		for _, t := range targets {
			if t != ports.End && !slices.Contains(frontier, t) {
				frontier = append(frontier, t)
			}
		}
	}

	if err := g.desc.ValidateTransition(prev, next); err != nil {
		return ports.Snapshot{}, &StateValidationError{Step: x.step, Nodes: nodes, Err: err}
	}
	x.values = next
	x.frontier = frontier

	if err := x.checkpoint(ctx); err != nil {
		return ports.Snapshot{}, err
	}
	g.settings.Logger.Debug("step complete", "graph", g.name, "run_id", x.runID, "step", x.step, "nodes", nodes, "next", frontier)

	return ports.Snapshot{
		Step:    x.step,
		Nodes:   slices.Clone(nodes),
		Updates: updates,
		Values:  next.Clone(),
		Next:    slices.Clone(frontier),
	}, nil
}

func (x *execution) checkpoint(ctx context.Context) error {
	if x.settings.Thread == "" {
		return nil
	}
	err := x.g.sessions.SaveUnlocked(ctx, &ports.Checkpoint{
		Thread:    x.settings.Thread,
		RunID:     x.runID,
		Step:      x.step,
		Values:    x.values,
		Next:      x.frontier,
		UpdatedAt: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("save checkpoint %q: %w", x.settings.Thread, err)
	}
	return nil
}

// invoke runs one node under its retry and timeout policy.
func (x *execution) invoke(ctx context.Context, n node, state domain.State) (ports.Command, error) {
	hooks := x.g.settings.Hooks
	retry := n.policy.Retry
	attempts := max(retry.MaxAttempts, 1)
	delay := retry.Delay

	for attempt := 1; ; attempt++ {
		if hooks.OnNodeEnter != nil {
			hooks.OnNodeEnter(ctx, &domain.NodeEvent{
				EventBase: x.base(domain.EventNodeEnter),
				Node:      n.name,
				Step:      x.step,
				Attempt:   attempt,
			})
		}

		started := time.Now()
		cmd, err := x.attempt(ctx, n, state, attempt)

		if hooks.OnNodeLeave != nil {
			hooks.OnNodeLeave(ctx, &domain.NodeEvent{
				EventBase: x.base(domain.EventNodeLeave),
				Node:      n.name,
				Step:      x.step,
				Attempt:   attempt,
				Goto:      cmd.Goto,
				Duration:  time.Since(started),
				Err:       err,
			})
		}

		if err == nil {
			return cmd, nil
		}
		if attempt >= attempts || !retryable(err) || ctx.Err() != nil {
			return ports.Command{}, &NodeExecutionError{Node: n.name, Step: x.step, Attempts: attempt, Err: err}
		}

		x.g.settings.Logger.Warn("node attempt failed, retrying",
			"graph", x.g.name, "node", n.name, "attempt", attempt, "delay", delay, "err", err)
		if delay > 0 {
			select {
			case <-ctx.Done():
				return ports.Command{}, &NodeExecutionError{Node: n.name, Step: x.step, Attempts: attempt, Err: err}
			case <-time.After(delay):
			}
			if retry.Backoff > 1 {
				delay = time.Duration(float64(delay) * retry.Backoff)
			}
		}
	}
}

// attempt makes a single call inside a node span, enforcing the timeout and turning
// panics into errors.
func (x *execution) attempt(ctx context.Context, n node, state domain.State, attempt int) (ports.Command, error) {
	ctx, span := x.g.tracer.Start(ctx, "harbor.node", trace.WithAttributes(
		attribute.String("harbor.node", n.name),
		attribute.Int("harbor.step", x.step),
		attribute.Int("harbor.attempt", attempt),
	))
	defer span.End()

	cmd, err := call(ctx, n, state)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return cmd, err
	}
	span.SetAttributes(attribute.StringSlice("harbor.goto", cmd.Goto))
	span.SetStatus(codes.Ok, "")
	return cmd, nil
}

type callResult struct {
	cmd ports.Command
	err error
}

func call(ctx context.Context, n node, state domain.State) (ports.Command, error) {
	if n.policy.Timeout <= 0 {
		return safeCall(ctx, n, state)
	}

	ctx, cancel := context.WithTimeout(ctx, n.policy.Timeout)
	defer cancel()

	done := make(chan callResult, 1)
	go func() {
		cmd, err := safeCall(ctx, n, state)
		done <- callResult{cmd: cmd, err: err}
	}()

	select {
	case r := <-done:
		return r.cmd, r.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return ports.Command{}, &timeoutError{node: n.name, timeout: n.policy.Timeout, cause: ctx.Err()}
		}
		return ports.Command{}, ctx.Err()
	}
}

func safeCall(ctx context.Context, n node, state domain.State) (cmd ports.Command, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("node %q panicked: %v", n.name, r)
		}
	}()
	return n.fn(ctx, state)
}
