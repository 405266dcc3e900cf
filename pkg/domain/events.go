package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventRunStart  EventType = "run_start"
	EventRunEnd    EventType = "run_end"
	EventNodeEnter EventType = "node_enter"
	EventNodeLeave EventType = "node_leave"
	EventStep      EventType = "step"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Graph     string    `json:"graph"`
	RunID     string    `json:"run_id"`
	Thread    string    `json:"thread,omitempty"`
}

// RunEvent marks the start or the end of a run.
type RunEvent struct {
	EventBase
	Steps    int           `json:"steps,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
	Err      error         `json:"-"`
}

// NodeEvent represents entry into or exit from a node.
type NodeEvent struct {
	EventBase
	Node     string        `json:"node"`
	Step     int           `json:"step"`
	Attempt  int           `json:"attempt"`
	Goto     []string      `json:"goto,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
	Err      error         `json:"-"`
}

// StepEvent is emitted once per superstep after updates are merged.
type StepEvent struct {
	EventBase
	Step  int      `json:"step"`
	Nodes []string `json:"nodes"`
	Next  []string `json:"next,omitempty"`
}

// LifecycleHooks defines callbacks for engine observability.
// Nil callbacks are skipped. Hooks for fan-out nodes may be called concurrently.
type LifecycleHooks struct {
	OnRunStart  func(context.Context, *RunEvent)
	OnRunEnd    func(context.Context, *RunEvent)
	OnNodeEnter func(context.Context, *NodeEvent)
	OnNodeLeave func(context.Context, *NodeEvent)
	OnStep      func(context.Context, *StepEvent)
}

// ChainHooks combines several hook sets; callbacks run in the order given.
func ChainHooks(hooks ...LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnRunStart: func(ctx context.Context, e *RunEvent) {
			for _, h := range hooks {
				if h.OnRunStart != nil {
					h.OnRunStart(ctx, e)
				}
			}
		},
		OnRunEnd: func(ctx context.Context, e *RunEvent) {
			for _, h := range hooks {
				if h.OnRunEnd != nil {
					h.OnRunEnd(ctx, e)
				}
			}
		},
		OnNodeEnter: func(ctx context.Context, e *NodeEvent) {
			for _, h := range hooks {
				if h.OnNodeEnter != nil {
					h.OnNodeEnter(ctx, e)
				}
			}
		},
		OnNodeLeave: func(ctx context.Context, e *NodeEvent) {
			for _, h := range hooks {
				if h.OnNodeLeave != nil {
					h.OnNodeLeave(ctx, e)
				}
			}
		},
		OnStep: func(ctx context.Context, e *StepEvent) {
			for _, h := range hooks {
				if h.OnStep != nil {
					h.OnStep(ctx, e)
				}
			}
		},
	}
}
