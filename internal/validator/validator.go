// Package validator reports reachability problems in a compiled topology.
package validator

import (
	"fmt"
	"strings"

	"github.com/aretw0/harbor/pkg/domain"
)

// Report is the result of crawling a topology from its entry edge.
type Report struct {
	// Reachable nodes are reached from the entry through static edges alone.
	Reachable []string
	// Dynamic nodes are not statically reachable but may be targeted by a routed node.
	Dynamic []string
	// Unreachable nodes can never run: nothing reaches them and no node routes.
	Unreachable []string
	// Terminates reports whether some static path reaches the terminal.
	Terminates bool
	// Routed reports whether a reachable node chooses its successor at runtime.
	Routed bool
}

// Err summarizes the findings that make the graph unusable, or returns nil.
func (r Report) Err() error {
	var problems []string
	for _, n := range r.Unreachable {
		problems = append(problems, fmt.Sprintf("Unreachable node: '%s'", n))
	}
	if !r.Terminates && !r.Routed {
		problems = append(problems, "No path reaches the terminal")
	}
	if len(problems) > 0 {
		return fmt.Errorf("found %d errors:\n- %s", len(problems), strings.Join(problems, "\n- "))
	}
	return nil
}

// ValidateTopology crawls topo breadth-first from the entry sentinel.
func ValidateTopology(topo domain.Topology) Report {
	terminal := topo.Terminal
	if terminal == "" {
		terminal = domain.End
	}

	visited := make(map[string]bool)
	var report Report

	queue := []string{domain.Start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if visited[current] {
			continue
		}
		visited[current] = true

		if current == terminal {
			report.Terminates = true
			continue
		}
		if current != domain.Start {
			report.Reachable = append(report.Reachable, current)
			if n, ok := topo.Node(current); ok && n.Contract == domain.ContractRouted {
				report.Routed = true
			}
		}

		for _, e := range topo.OutEdges(current) {
			if !visited[e.To] {
				queue = append(queue, e.To)
			}
		}
	}

	for _, n := range topo.Nodes {
		if visited[n.Name] {
			continue
		}
		if report.Routed {
			report.Dynamic = append(report.Dynamic, n.Name)
		} else {
			report.Unreachable = append(report.Unreachable, n.Name)
		}
	}
	return report
}
