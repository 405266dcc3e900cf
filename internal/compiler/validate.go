package compiler

import (
	"github.com/aretw0/harbor/pkg/domain"
	"github.com/aretw0/harbor/pkg/registry"
)

// Validate runs the configuration checks that need no classification:
// an empty node set, unusable names, then duplicate names.
func Validate(nodes []domain.NodeDefinition, cfg domain.GraphConfig) error {
	if len(nodes) == 0 {
		return &domain.EmptyNodeSetError{Graph: cfg.Name}
	}

	terminal := cfg.TerminalSentinel()
	for _, n := range nodes {
		switch n.Name {
		case "":
			return &domain.InvalidNodeNameError{Index: n.Index, Reason: "name is empty; anonymous functions need WithName"}
		case domain.Start, domain.End:
			return &domain.InvalidNodeNameError{Index: n.Index, Name: n.Name, Reason: "name is a reserved sentinel"}
		case terminal:
			return &domain.InvalidNodeNameError{Index: n.Index, Name: n.Name, Reason: "name equals the terminal sentinel"}
		}
	}

	if dups := registry.Duplicates(nodes); len(dups) > 0 {
		return &domain.DuplicateNodeNameError{Graph: cfg.Name, Names: dups}
	}
	return nil
}
