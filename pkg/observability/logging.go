package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/harbor/pkg/domain"
)

// LogHooks returns hooks that emit one structured record per lifecycle event.
// Run boundaries log at Info, node and step events at Debug and failures at Warn.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRunStart: func(ctx context.Context, e *domain.RunEvent) {
			logger.InfoContext(ctx, "run_start", "graph", e.Graph, "run_id", e.RunID, "thread", e.Thread)
		},
		OnRunEnd: func(ctx context.Context, e *domain.RunEvent) {
			if e.Err != nil {
				logger.WarnContext(ctx, "run_end", "graph", e.Graph, "run_id", e.RunID, "steps", e.Steps, "err", e.Err)
				return
			}
			logger.InfoContext(ctx, "run_end", "graph", e.Graph, "run_id", e.RunID, "steps", e.Steps, "duration", e.Duration)
		},
		OnNodeEnter: func(ctx context.Context, e *domain.NodeEvent) {
			logger.DebugContext(ctx, "node_enter", "graph", e.Graph, "node", e.Node, "step", e.Step, "attempt", e.Attempt)
		},
		OnNodeLeave: func(ctx context.Context, e *domain.NodeEvent) {
			if e.Err != nil {
				logger.WarnContext(ctx, "node_leave", "graph", e.Graph, "node", e.Node, "attempt", e.Attempt, "err", e.Err)
				return
			}
			logger.DebugContext(ctx, "node_leave", "graph", e.Graph, "node", e.Node, "goto", e.Goto, "duration", e.Duration)
		},
		OnStep: func(ctx context.Context, e *domain.StepEvent) {
			logger.DebugContext(ctx, "step", "graph", e.Graph, "step", e.Step, "nodes", e.Nodes, "next", e.Next)
		},
	}
}
