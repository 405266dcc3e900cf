package domain

import (
	"context"
	"reflect"
	"time"
)

// Contract is the compile-time classification of a node.
type Contract int

const (
	// ContractUnclassified is the contract of a node that was registered but not yet classified.
	ContractUnclassified Contract = iota
	// ContractSequential nodes receive a synthesized edge to their declaration-order successor.
	ContractSequential
	// ContractRouted nodes never receive a synthesized out-edge; their successor is chosen at runtime.
	ContractRouted
)

func (c Contract) String() string {
	switch c {
	case ContractSequential:
		return "sequential"
	case ContractRouted:
		return "routed"
	default:
		return "unclassified"
	}
}

// Procedure is the type-erased form of a user step.
type Procedure func(ctx context.Context, state State) (any, error)

// RetryPolicy bounds how often the engine re-runs a failing node.
// A zero value means a single attempt.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
	Backoff     float64
}

// NodePolicy is execution policy the compiler hands to the engine untouched.
type NodePolicy struct {
	Timeout time.Duration
	Retry   RetryPolicy
}

// NodeDefinition is a node as recorded by a graph's registry.
type NodeDefinition struct {
	// Name is unique within one graph.
	Name string
	// Index is the declaration index, strictly increasing per graph, starting at 1.
	Index int
	// Contract is ContractUnclassified until the compiler classifies the node.
	Contract Contract
	// ResultType is the declared result type of the procedure.
	ResultType reflect.Type
	// Procedure is opaque to the compiler.
	Procedure Procedure
	Policy    NodePolicy
}
