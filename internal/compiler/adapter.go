package compiler

import (
	"context"
	"fmt"
	"reflect"

	"github.com/aretw0/harbor/pkg/domain"
	"github.com/aretw0/harbor/pkg/ports"
)

// OutcomeKind tags a normalized node result.
type OutcomeKind int

const (
	// OutcomeUnrecognized is a result the adapter cannot interpret.
	OutcomeUnrecognized OutcomeKind = iota
	// OutcomeDelta is a state update that continues along static edges.
	OutcomeDelta
	// OutcomeRoute is a routing directive.
	OutcomeRoute
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeDelta:
		return "delta"
	case OutcomeRoute:
		return "route"
	default:
		return "unrecognized"
	}
}

// Outcome is the closed union a raw node result normalizes into.
type Outcome struct {
	Kind OutcomeKind
	// Route is set for OutcomeRoute results built from a domain.Route.
	Route domain.Route
	// Native is set for OutcomeRoute results that were already an engine Command.
	Native *ports.Command
	// Delta is set for OutcomeDelta. It is never nil.
	Delta domain.Delta
	// Shape describes the raw value, for error messages.
	Shape string
}

// Normalize classifies a raw node result. Rules apply in order:
// Route, engine Command, string-keyed map, absence, anything else.
func Normalize(result any) Outcome {
	out := normalize(result)
	if out.Shape == "" {
		out.Shape = fmt.Sprintf("%T", result)
	}
	return out
}

func normalize(result any) Outcome {
	switch v := result.(type) {
	case domain.Route:
		return routeOutcome(v)
	case *domain.Route:
		if v != nil {
			return routeOutcome(*v)
		}
	case ports.Command:
		return Outcome{Kind: OutcomeRoute, Native: &v}
	case *ports.Command:
		if v != nil {
			cmd := *v
			return Outcome{Kind: OutcomeRoute, Native: &cmd}
		}
	case domain.Delta:
		return deltaOutcome(v)
	case domain.State:
		return deltaOutcome(domain.Delta(v))
	case map[string]any:
		return deltaOutcome(v)
	case nil:
		return deltaOutcome(nil)
	}

	rv := reflect.ValueOf(result)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Func, reflect.Chan:
		if rv.IsNil() {
			return deltaOutcome(nil)
		}
	case reflect.Map:
		if rv.IsNil() {
			return deltaOutcome(nil)
		}
		if rv.Type().Key().Kind() == reflect.String {
			delta := make(domain.Delta, rv.Len())
			iter := rv.MapRange()
			for iter.Next() {
				delta[iter.Key().String()] = iter.Value().Interface()
			}
			return deltaOutcome(delta)
		}
	}
	return Outcome{Kind: OutcomeUnrecognized}
}

func routeOutcome(r domain.Route) Outcome {
	if len(r.Goto) == 0 {
		return Outcome{Kind: OutcomeUnrecognized, Shape: "domain.Route without target"}
	}
	return Outcome{Kind: OutcomeRoute, Route: r}
}

func deltaOutcome(d domain.Delta) Outcome {
	if d == nil {
		d = domain.Delta{}
	}
	return Outcome{Kind: OutcomeDelta, Delta: d}
}

// Targets is the set of names a wrapped node may route to.
type Targets struct {
	names    map[string]bool
	terminal string
}

// NewTargets builds the routing set for a graph: every registered name plus the terminal.
func NewTargets(names []string, terminal string) Targets {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return Targets{names: set, terminal: terminal}
}

// Lower maps a user-facing target to the engine name: the terminal becomes ports.End.
func (t Targets) Lower(target string) string {
	if target == t.terminal {
		return ports.End
	}
	return target
}

func (t Targets) unknown(names []string) []string {
	var bad []string
	for _, g := range names {
		if g == ports.End || t.names[g] {
			continue
		}
		bad = append(bad, g)
	}
	return bad
}

// Wrap adapts a classified node into the engine's NodeFunc.
// Errors returned by the procedure are passed through untouched; the wrapper never retries.
func Wrap(def domain.NodeDefinition, targets Targets) ports.NodeFunc {
	return func(ctx context.Context, state domain.State) (ports.Command, error) {
		raw, err := def.Procedure(ctx, state)
		if err != nil {
			return ports.Command{}, err
		}
		return Lower(def, Normalize(raw), targets)
	}
}

// Lower turns an Outcome into the engine Command for node def.
func Lower(def domain.NodeDefinition, out Outcome, targets Targets) (ports.Command, error) {
	routed := def.Contract == domain.ContractRouted

	switch out.Kind {
	case OutcomeRoute:
		if out.Native != nil {
			if bad := targets.unknown(out.Native.Goto); len(bad) > 0 {
				return ports.Command{}, &domain.UnknownEdgeTargetError{Node: def.Name, Targets: bad}
			}
			return *out.Native, nil
		}
		next := make([]string, len(out.Route.Goto))
		for i, g := range out.Route.Goto {
			next[i] = targets.Lower(g)
		}
		if bad := targets.unknown(next); len(bad) > 0 {
			return ports.Command{}, &domain.UnknownEdgeTargetError{Node: def.Name, Targets: bad}
		}
		return ports.Command{Goto: next, Update: out.Route.Update}, nil

	case OutcomeDelta:
		if routed {
			return ports.Command{}, &domain.RoutedContractViolationError{Node: def.Name, Shape: out.Shape}
		}
		return ports.Command{Update: out.Delta}, nil

	default:
		if routed {
			return ports.Command{}, &domain.RoutedContractViolationError{Node: def.Name, Shape: out.Shape}
		}
		return ports.Command{}, &domain.UnrecognizedReturnShapeError{Node: def.Name, Shape: out.Shape}
	}
}
