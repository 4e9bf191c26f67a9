package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/guide/pkg/domain"
)

// GraphOverlay contains session data to visualize on the graph.
type GraphOverlay struct {
	VisitedSteps []string
	CurrentStep  string
}

// GenerateMermaid produces a Mermaid flowchart syntax string from a scenario.
// It applies semantic styling:
// - Initial: ((Circle))
// - Terminal: (((Double Circle)))
// - Default: [Rectangle]
// Edges are labeled with the event name, plus the action when there is one.
// Action-only events are drawn as dotted self-loops.
// It also applies overlay styles (Visited/Current) if provided.
func GenerateMermaid(sc domain.Scenario, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, step := range sc.Steps {
		safeID := sanitizeMermaidID(step.Name)

		opener, closer := "[", "]"
		switch step.Name {
		case sc.InitialStep:
			opener, closer = "((", "))"
		case sc.TerminalStep:
			opener, closer = "(((", ")))"
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, escapeLabel(step.Name), closer))

		names := make([]string, 0, len(step.Events))
		for name := range step.Events {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			ev := step.Events[name]
			label := escapeLabel(name)
			if ev.Action != "" {
				label += " / " + escapeLabel(ev.Action)
			}

			if ev.Next == "" {
				sb.WriteString(fmt.Sprintf("    %s -. \"%s\" .-> %s\n", safeID, label, safeID))
				continue
			}
			sb.WriteString(fmt.Sprintf("    %s -- \"%s\" --> %s\n", safeID, label, sanitizeMermaidID(ev.Next)))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visitedSet := make(map[string]bool)
		for _, name := range overlay.VisitedSteps {
			safeID := sanitizeMermaidID(name)
			if !visitedSet[safeID] && safeID != "" {
				visitedSet[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s visited;\n", safeID))
			}
		}

		if overlay.CurrentStep != "" {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", sanitizeMermaidID(overlay.CurrentStep)))
		}
	}

	return sb.String()
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

var idReplacer = strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_")

func sanitizeMermaidID(id string) string {
	// "end" closes a subgraph in Mermaid and cannot be a node id.
	if strings.EqualFold(id, "end") {
		return id + "_"
	}
	return idReplacer.Replace(id)
}
