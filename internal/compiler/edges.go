package compiler

import (
	"github.com/aretw0/harbor/pkg/domain"
)

// Synthesize derives the static edges of a graph from its classified nodes, in order:
// the entry edge, one edge per Sequential node to its successor, and a terminal edge
// when the last node is Sequential. Routed nodes never get an out-edge.
func Synthesize(nodes []domain.NodeDefinition, cfg domain.GraphConfig) ([]domain.Edge, error) {
	if len(nodes) == 0 {
		return nil, &domain.EmptyNodeSetError{Graph: cfg.Name}
	}
	if !hasNode(nodes, cfg.Start) {
		return nil, &domain.StartNodeNotFoundError{Graph: cfg.Name, Start: cfg.Start, Known: names(nodes)}
	}

	edges := make([]domain.Edge, 0, len(nodes)+1)
	edges = append(edges, domain.Edge{From: domain.Start, To: cfg.Start})

	for i := 0; i+1 < len(nodes); i++ {
		if nodes[i].Contract == domain.ContractSequential {
			edges = append(edges, domain.Edge{From: nodes[i].Name, To: nodes[i+1].Name})
		}
	}

	if last := nodes[len(nodes)-1]; last.Contract == domain.ContractSequential {
		edges = append(edges, domain.Edge{From: last.Name, To: cfg.TerminalSentinel()})
	}
	return edges, nil
}

func hasNode(nodes []domain.NodeDefinition, name string) bool {
	for _, n := range nodes {
		if n.Name == name {
			return true
		}
	}
	return false
}

func names(nodes []domain.NodeDefinition) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Name
	}
	return out
}
