package runtime

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/harbor/pkg/domain"
)

var (
	// ErrStreamConsumed is yielded when a Stream sequence is ranged over a second time.
	ErrStreamConsumed = errors.New("stream already consumed")
	// ErrRecursionLimit is matched by RecursionLimitError.
	ErrRecursionLimit = errors.New("recursion limit reached")
	// ErrNodeTimeout is matched by a node that exceeded its policy timeout.
	ErrNodeTimeout = errors.New("node timed out")
	// ErrInvalidGraph is returned by the builder for a malformed graph.
	ErrInvalidGraph = errors.New("invalid graph")
)

// RecursionLimitError reports a run that did not reach the end within its step budget.
type RecursionLimitError struct {
	Limit int
	Next  []string
}

func (e *RecursionLimitError) Error() string {
	return fmt.Sprintf("recursion limit of %d steps reached; pending nodes: %s", e.Limit, strings.Join(e.Next, ", "))
}

func (e *RecursionLimitError) Is(target error) bool {
	return target == ErrRecursionLimit
}

// NodeExecutionError wraps the final failure of a node after its retry policy is spent.
type NodeExecutionError struct {
	Node     string
	Step     int
	Attempts int
	Err      error
}

func (e *NodeExecutionError) Error() string {
	return fmt.Sprintf("node %q failed at step %d after %d attempt(s): %v", e.Node, e.Step, e.Attempts, e.Err)
}

func (e *NodeExecutionError) Unwrap() error {
	return e.Err
}

// StateValidationError reports a state transition rejected by the schema descriptor.
type StateValidationError struct {
	Step  int
	Nodes []string
	Err   error
}

func (e *StateValidationError) Error() string {
	if len(e.Nodes) == 0 {
		return fmt.Sprintf("invalid input state: %v", e.Err)
	}
	return fmt.Sprintf("step %d (%s): invalid state transition: %v", e.Step, strings.Join(e.Nodes, ", "), e.Err)
}

func (e *StateValidationError) Unwrap() error {
	return e.Err
}

type timeoutError struct {
	node    string
	timeout time.Duration
	cause   error
}

func (e *timeoutError) Error() string {
	return fmt.Sprintf("node %q timed out after %s", e.node, e.timeout)
}

func (e *timeoutError) Is(target error) bool {
	return target == ErrNodeTimeout
}

func (e *timeoutError) Unwrap() error {
	return e.cause
}

// retryable reports whether a failed attempt may be repeated.
// Configuration and result-contract errors are deterministic, so they never are.
func retryable(err error) bool {
	return !errors.Is(err, domain.ErrConfiguration) && !errors.Is(err, domain.ErrInvocation)
}
