// Package demo bundles small flows used by the harbor command and its tests.
package demo

import (
	"fmt"
	"slices"
	"sort"

	"github.com/aretw0/harbor"
)

// Flow is a named, ready-to-declare graph.
type Flow struct {
	Name        string
	Description string
	// Sample is an input the flow runs to completion with.
	Sample harbor.State
	build  func(opts ...harbor.Option) *harbor.Graph
}

// Declare builds a fresh graph for the flow.
func (f Flow) Declare(opts ...harbor.Option) *harbor.Graph {
	return f.build(opts...)
}

var catalog = map[string]Flow{
	"pipeline": {
		Name:        "pipeline",
		Description: "Three sequential steps chained in declaration order",
		Sample:      harbor.State{"text": "  Harbor compiles Graphs  "},
		build:       Pipeline,
	},
	"review": {
		Name:        "review",
		Description: "A routed reviewer loops drafts through revision until approved",
		Sample:      harbor.State{"topic": "graph compilers"},
		build:       Review,
	},
	"chat": {
		Name:        "chat",
		Description: "A router fans out to tools in parallel and joins their answers",
		Sample:      harbor.State{"question": "what is 6 times 7?"},
		build:       Chat,
	},
}

// Names returns the bundled flow names, sorted.
func Names() []string {
	names := make([]string, 0, len(catalog))
	for n := range catalog {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the flow called name.
func Lookup(name string) (Flow, error) {
	f, ok := catalog[name]
	if !ok {
		return Flow{}, fmt.Errorf("unknown flow %q (available: %v)", name, Names())
	}
	return f, nil
}

// All returns every flow sorted by name.
func All() []Flow {
	flows := make([]Flow, 0, len(catalog))
	for _, n := range Names() {
		flows = append(flows, catalog[n])
	}
	return slices.Clip(flows)
}
