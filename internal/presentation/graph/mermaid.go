package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/harbor/pkg/domain"
)

// GraphOverlay contains run data to visualize on the graph.
type GraphOverlay struct {
	VisitedNodes []string
	CurrentNode  string
	// PendingNodes are scheduled for the next step of a paused thread.
	PendingNodes []string
}

// GenerateMermaid produces a Mermaid flowchart for a compiled topology.
// It applies semantic styling:
// - Entry and terminal sentinels: ((Circle))
// - Routed nodes: {{Hexagon}}, since their successors are chosen at runtime
// - Sequential nodes: [Rectangle]
// Routed nodes get no outgoing arrows; a dotted self-note marks them as dynamic.
// It also applies overlay styles (Visited/Current) if provided.
func GenerateMermaid(topo domain.Topology, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	terminal := topo.Terminal
	if terminal == "" {
		terminal = domain.End
	}

	fmt.Fprintf(&sb, "    %s((\"start\"))\n", sanitizeMermaidID(domain.Start))
	for _, node := range topo.Nodes {
		safeID := sanitizeMermaidID(node.Name)

		opener, closer := "[", "]"
		if node.Contract == domain.ContractRouted {
			opener, closer = "{{", "}}"
		}

		label := node.Name
		if node.Policy.Timeout > 0 {
			label = fmt.Sprintf("%s <br/> ⏱️ %s", node.Name, node.Policy.Timeout)
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, escapeLabel(label), closer)
	}
	fmt.Fprintf(&sb, "    %s((\"%s\"))\n", sanitizeMermaidID(terminal), escapeLabel(terminal))

	for _, e := range topo.Edges {
		fmt.Fprintf(&sb, "    %s --> %s\n", sanitizeMermaidID(e.From), sanitizeMermaidID(e.To))
	}
	for _, node := range topo.Nodes {
		if node.Contract == domain.ContractRouted {
			safeID := sanitizeMermaidID(node.Name)
			fmt.Fprintf(&sb, "    %s -. \"route\" .-> %s\n", safeID, safeID)
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		sb.WriteString("    classDef pending fill:#fff3e0,stroke:#e65100,stroke-dasharray:4 2,color:#000;\n")

		visitedSet := make(map[string]bool)
		for _, id := range overlay.VisitedNodes {
			safeID := sanitizeMermaidID(id)
			if !visitedSet[safeID] && safeID != "" {
				visitedSet[safeID] = true
				fmt.Fprintf(&sb, "    class %s visited;\n", safeID)
			}
		}

		for _, id := range overlay.PendingNodes {
			if safeID := sanitizeMermaidID(id); safeID != "" {
				fmt.Fprintf(&sb, "    class %s pending;\n", safeID)
			}
		}

		if overlay.CurrentNode != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(overlay.CurrentNode))
		}
	}

	return sb.String()
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
