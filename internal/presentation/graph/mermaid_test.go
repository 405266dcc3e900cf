package graph_test

import (
	"strings"
	"testing"
	"time"

	"github.com/aretw0/harbor/internal/presentation/graph"
	"github.com/aretw0/harbor/pkg/domain"
)

func linear() domain.Topology {
	return domain.Topology{
		Graph:    "flow",
		Start:    "a",
		Terminal: domain.End,
		Nodes: []domain.NodeDefinition{
			{Name: "a", Index: 1, Contract: domain.ContractSequential},
			{Name: "b", Index: 2, Contract: domain.ContractRouted},
			{Name: "c-step", Index: 3, Contract: domain.ContractSequential, Policy: domain.NodePolicy{Timeout: 2 * time.Second}},
		},
		Edges: []domain.Edge{
			{From: domain.Start, To: "a"},
			{From: "a", To: "b"},
			{From: "c-step", To: domain.End},
		},
	}
}

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		topo     domain.Topology
		overlay  *graph.GraphOverlay
		contains []string
		excludes []string
	}{
		{
			name: "Node Shapes",
			topo: linear(),
			contains: []string{
				`__start__(("start"))`,
				`a["a"]`,
				`b{{"b"}}`,
				`__end__(("__end__"))`,
			},
		},
		{
			name: "Edges",
			topo: linear(),
			contains: []string{
				"__start__ --> a",
				"a --> b",
				"c_step --> __end__",
				`b -. "route" .-> b`,
			},
			excludes: []string{"b --> "},
		},
		{
			name:     "Timeout Annotation",
			topo:     linear(),
			contains: []string{`c_step["c-step <br/> ⏱️ 2s"]`},
		},
		{
			name: "Custom Terminal",
			topo: domain.Topology{
				Terminal: "DONE",
				Nodes:    []domain.NodeDefinition{{Name: "x", Contract: domain.ContractSequential}},
				Edges:    []domain.Edge{{From: domain.Start, To: "x"}, {From: "x", To: "DONE"}},
			},
			contains: []string{`DONE(("DONE"))`, "x --> DONE"},
		},
		{
			name:    "Overlay",
			topo:    linear(),
			overlay: &graph.GraphOverlay{VisitedNodes: []string{"a", "a", "b"}, CurrentNode: "c-step", PendingNodes: []string{"b"}},
			contains: []string{
				"class a visited;",
				"class b visited;",
				"class b pending;",
				"class c_step current;",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(tt.topo, tt.overlay)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("GenerateMermaid() = \n%v\nWant substring: %v", got, want)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(got, unwanted) {
					t.Errorf("GenerateMermaid() = \n%v\nUnexpected substring: %v", got, unwanted)
				}
			}
			if tt.overlay != nil && strings.Count(got, "class a visited;") != 1 {
				t.Errorf("visited nodes should be deduplicated:\n%v", got)
			}
		})
	}
}
