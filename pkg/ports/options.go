package ports

import (
	"log/slog"

	"github.com/aretw0/harbor/pkg/domain"
	"go.opentelemetry.io/otel/trace"
)

// DefaultMaxSteps is the superstep budget of a run when none is configured.
const DefaultMaxSteps = 25

// CompileSettings holds the options an engine receives at compile time.
type CompileSettings struct {
	Name           string
	Checkpointer   Checkpointer
	Locker         DistributedLocker
	MaxSteps       int
	Hooks          domain.LifecycleHooks
	Logger         *slog.Logger
	TracerProvider trace.TracerProvider
}

// CompileOption configures how an artifact is compiled.
type CompileOption func(*CompileSettings)

// NewCompileSettings applies opts over the defaults.
func NewCompileSettings(opts ...CompileOption) CompileSettings {
	s := CompileSettings{MaxSteps: DefaultMaxSteps}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithName names the compiled graph.
func WithName(name string) CompileOption {
	return func(s *CompileSettings) { s.Name = name }
}

// WithCheckpointer persists run state per thread.
func WithCheckpointer(c Checkpointer) CompileOption {
	return func(s *CompileSettings) { s.Checkpointer = c }
}

// WithLocker serializes runs of one thread across processes.
func WithLocker(l DistributedLocker) CompileOption {
	return func(s *CompileSettings) { s.Locker = l }
}

// WithMaxSteps sets the default superstep budget of each run.
func WithMaxSteps(n int) CompileOption {
	return func(s *CompileSettings) { s.MaxSteps = n }
}

// WithHooks registers lifecycle callbacks.
func WithHooks(h domain.LifecycleHooks) CompileOption {
	return func(s *CompileSettings) { s.Hooks = h }
}

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) CompileOption {
	return func(s *CompileSettings) { s.Logger = l }
}

// WithTracerProvider sets the provider used for run and node spans.
func WithTracerProvider(tp trace.TracerProvider) CompileOption {
	return func(s *CompileSettings) { s.TracerProvider = tp }
}

// RunSettings holds per-run options.
type RunSettings struct {
	Thread   string
	MaxSteps int
}

// RunOption configures a single Invoke or Stream call.
type RunOption func(*RunSettings)

// NewRunSettings applies opts over the compile-time defaults.
func NewRunSettings(defaults CompileSettings, opts ...RunOption) RunSettings {
	s := RunSettings{MaxSteps: defaults.MaxSteps}
	for _, opt := range opts {
		opt(&s)
	}
	if s.MaxSteps <= 0 {
		s.MaxSteps = DefaultMaxSteps
	}
	return s
}

// WithThread attaches the run to a persisted thread.
// Requires a Checkpointer; without one the thread only scopes locking.
func WithThread(id string) RunOption {
	return func(s *RunSettings) { s.Thread = id }
}

// WithRecursionLimit overrides the superstep budget for this run.
func WithRecursionLimit(n int) RunOption {
	return func(s *RunSettings) { s.MaxSteps = n }
}
