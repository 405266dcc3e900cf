package domain

import "fmt"

// GraphConfig describes a graph before compilation.
type GraphConfig struct {
	// Schema is an opaque state schema descriptor handed to the engine.
	Schema any
	// Start is the name of the node the entry edge points at.
	Start string
	// Terminal is the value nodes route to in order to end the graph. Defaults to End.
	Terminal string
	// Name identifies the graph in logs, metrics and artifacts.
	Name string
}

// TerminalSentinel returns the configured terminal value, falling back to End.
func (c GraphConfig) TerminalSentinel() string {
	if c.Terminal == "" {
		return End
	}
	return c.Terminal
}

// Edge is a static edge between two nodes, or between a node and a sentinel.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (e Edge) String() string {
	return fmt.Sprintf("%s->%s", e.From, e.To)
}

// Topology is the classified node list together with the synthesized edges.
type Topology struct {
	Graph    string
	Start    string
	Terminal string
	Nodes    []NodeDefinition
	Edges    []Edge
	// Schema is the GraphConfig schema handle, passed through untouched.
	Schema any
}

// Node returns the definition named name.
func (t Topology) Node(name string) (NodeDefinition, bool) {
	for _, n := range t.Nodes {
		if n.Name == name {
			return n, true
		}
	}
	return NodeDefinition{}, false
}

// OutEdges returns the static edges leaving name, in synthesis order.
func (t Topology) OutEdges(name string) []Edge {
	var out []Edge
	for _, e := range t.Edges {
		if e.From == name {
			out = append(out, e)
		}
	}
	return out
}
