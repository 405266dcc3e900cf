// Package registry records the nodes declared on one graph, in declaration order.
//
// A Registry belongs to exactly one graph under construction. It holds no process-wide
// state, so independent graphs can be declared concurrently. A single Registry is not
// safe for concurrent registration.
package registry

import (
	"github.com/aretw0/harbor/pkg/domain"
)

// Registry is an append-only arena of node definitions.
type Registry struct {
	nodes []domain.NodeDefinition
	next  int
}

// New creates an empty registry whose first declaration index is 1.
func New() *Registry {
	return &Registry{next: 1}
}

// Register appends def, assigning the next declaration index and resetting its contract
// to unclassified. Duplicate names are accepted here and reported by Duplicates at compile time, so a
// graph can be declared before every name is final.
func (r *Registry) Register(def domain.NodeDefinition) domain.NodeDefinition {
	def.Index = r.next
	def.Contract = domain.ContractUnclassified
	r.next++
	r.nodes = append(r.nodes, def)
	return def
}

// Nodes returns a copy of the definitions in declaration order.
func (r *Registry) Nodes() []domain.NodeDefinition {
	out := make([]domain.NodeDefinition, len(r.nodes))
	copy(out, r.nodes)
	return out
}

// Duplicates returns the names that occur more than once in nodes, in order of
// first repetition.
func Duplicates(nodes []domain.NodeDefinition) []string {
	seen := make(map[string]int, len(nodes))
	var dups []string
	for _, n := range nodes {
		seen[n.Name]++
		if seen[n.Name] == 2 {
			dups = append(dups, n.Name)
		}
	}
	return dups
}
