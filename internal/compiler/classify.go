package compiler

import (
	"reflect"

	"github.com/aretw0/harbor/pkg/domain"
	"github.com/aretw0/harbor/pkg/ports"
)

// routedResults are the declared result types that make a node Routed.
var routedResults = map[reflect.Type]bool{
	reflect.TypeFor[domain.Route]():  true,
	reflect.TypeFor[*domain.Route](): true,
	reflect.TypeFor[ports.Command](): true,
	reflect.TypeFor[*ports.Command](): true,
}

// Classify labels a node from its declared result type, never from runtime behaviour.
func Classify(def domain.NodeDefinition) domain.Contract {
	if def.ResultType != nil && routedResults[def.ResultType] {
		return domain.ContractRouted
	}
	return domain.ContractSequential
}

// ClassifyAll returns a classified copy of nodes, preserving order.
func ClassifyAll(nodes []domain.NodeDefinition) []domain.NodeDefinition {
	out := make([]domain.NodeDefinition, len(nodes))
	for i, n := range nodes {
		n.Contract = Classify(n)
		out[i] = n
	}
	return out
}
