package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrConfiguration groups errors raised while compiling a graph, before any node runs.
// They are terminal and never worth retrying.
var ErrConfiguration = errors.New("graph configuration error")

// ErrInvocation groups errors raised while normalizing a node result during a run.
var ErrInvocation = errors.New("node invocation error")

var (
	ErrDuplicateNodeName       = errors.New("duplicate node name")
	ErrStartNodeNotFound       = errors.New("start node not found")
	ErrEmptyNodeSet            = errors.New("graph has no nodes")
	ErrInvalidNodeName         = errors.New("invalid node name")
	ErrUnknownEdgeTarget       = errors.New("unknown edge target")
	ErrUnrecognizedReturnShape = errors.New("unrecognized return shape")
	ErrRoutedContractViolation = errors.New("routed contract violation")
)

// ErrCheckpointNotFound is returned when a thread has no stored checkpoint.
var ErrCheckpointNotFound = errors.New("checkpoint not found")

// DuplicateNodeNameError reports names registered more than once in one graph.
type DuplicateNodeNameError struct {
	Graph string
	Names []string
}

func (e *DuplicateNodeNameError) Error() string {
	return fmt.Sprintf("graph %q: duplicate node names: %s", e.Graph, strings.Join(e.Names, ", "))
}

func (e *DuplicateNodeNameError) Is(target error) bool {
	return target == ErrDuplicateNodeName || target == ErrConfiguration
}

// StartNodeNotFoundError reports a start node that was never registered.
type StartNodeNotFoundError struct {
	Graph string
	Start string
	Known []string
}

func (e *StartNodeNotFoundError) Error() string {
	return fmt.Sprintf("graph %q: start=%q is not a registered node: %v", e.Graph, e.Start, e.Known)
}

func (e *StartNodeNotFoundError) Is(target error) bool {
	return target == ErrStartNodeNotFound || target == ErrConfiguration
}

// EmptyNodeSetError reports a graph compiled without nodes.
type EmptyNodeSetError struct {
	Graph string
}

func (e *EmptyNodeSetError) Error() string {
	return fmt.Sprintf("graph %q has no registered nodes", e.Graph)
}

func (e *EmptyNodeSetError) Is(target error) bool {
	return target == ErrEmptyNodeSet || target == ErrConfiguration
}

// InvalidNodeNameError reports a node whose effective name cannot be used.
type InvalidNodeNameError struct {
	Index  int
	Name   string
	Reason string
}

func (e *InvalidNodeNameError) Error() string {
	return fmt.Sprintf("node #%d %q: %s", e.Index, e.Name, e.Reason)
}

func (e *InvalidNodeNameError) Is(target error) bool {
	return target == ErrInvalidNodeName || target == ErrConfiguration
}

// UnknownEdgeTargetError reports a routing target that matches no registered node.
type UnknownEdgeTargetError struct {
	Node    string
	Targets []string
}

func (e *UnknownEdgeTargetError) Error() string {
	return fmt.Sprintf("node %q routed to unknown targets: %s", e.Node, strings.Join(e.Targets, ", "))
}

func (e *UnknownEdgeTargetError) Is(target error) bool {
	return target == ErrUnknownEdgeTarget || target == ErrConfiguration
}

// UnrecognizedReturnShapeError reports a node result that is neither a route nor a mapping.
type UnrecognizedReturnShapeError struct {
	Node  string
	Shape string
}

func (e *UnrecognizedReturnShapeError) Error() string {
	return fmt.Sprintf("node %q returned %s; expected Route, Command, a string-keyed map or nil", e.Node, e.Shape)
}

func (e *UnrecognizedReturnShapeError) Is(target error) bool {
	return target == ErrUnrecognizedReturnShape || target == ErrInvocation
}

// RoutedContractViolationError reports a routed node that did not return a routing directive.
type RoutedContractViolationError struct {
	Node  string
	Shape string
}

func (e *RoutedContractViolationError) Error() string {
	return fmt.Sprintf("routed node %q must return a Route, got %s", e.Node, e.Shape)
}

func (e *RoutedContractViolationError) Is(target error) bool {
	return target == ErrRoutedContractViolation || target == ErrInvocation
}
