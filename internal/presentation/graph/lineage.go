package graph

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/aretw0/propschema/pkg/schema"
)

// Highlight marks versions to style on the lineage graph.
type Highlight struct {
	// Source is the version a bag is transformed from.
	Source string
	// Target is the version a bag is transformed into.
	Target string
}

// GenerateMermaid produces a Mermaid flowchart of the version lineage of every
// resource type in schemas. Versions of one resource type are chained in sorted
// order inside a subgraph. Each edge is labelled with the renames declared by
// the newer version, and properties that appear or disappear between the two
// versions are listed on it.
//
// Deprecated properties are annotated on the version node.
func GenerateMermaid(schemas []*schema.Schema, highlight *Highlight) string {
	byType := make(map[string][]*schema.Schema)
	for _, s := range schemas {
		if s == nil {
			continue
		}
		byType[s.ResourceType] = append(byType[s.ResourceType], s)
	}

	var sb strings.Builder
	sb.WriteString("graph LR\n")

	types := make([]string, 0, len(byType))
	for rt := range byType {
		types = append(types, rt)
	}
	slices.Sort(types)

	for _, rt := range types {
		versions := byType[rt]
		slices.SortFunc(versions, func(a, b *schema.Schema) int {
			return cmp.Compare(a.Version, b.Version)
		})

		fmt.Fprintf(&sb, "    subgraph %s[\"%s\"]\n", sanitizeMermaidID(rt), rt)
		for _, s := range versions {
			label := s.Version
			if len(s.Deprecated) > 0 {
				label = fmt.Sprintf("%s <br/> deprecated: %s", s.Version, strings.Join(s.Deprecated, ", "))
			}
			fmt.Fprintf(&sb, "        %s[\"%s\"]\n", nodeID(s), label)
		}
		sb.WriteString("    end\n")

		for i := 1; i < len(versions); i++ {
			prev, next := versions[i-1], versions[i]
			if changes := describeChanges(prev, next); changes != "" {
				fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", nodeID(prev), changes, nodeID(next))
			} else {
				fmt.Fprintf(&sb, "    %s --> %s\n", nodeID(prev), nodeID(next))
			}
		}
	}

	if highlight != nil {
		sb.WriteString("\n    %% Highlight Styles\n")
		sb.WriteString("    classDef source fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef target fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		for _, rt := range types {
			for _, s := range byType[rt] {
				switch s.Version {
				case highlight.Source:
					fmt.Fprintf(&sb, "    class %s source;\n", nodeID(s))
				case highlight.Target:
					fmt.Fprintf(&sb, "    class %s target;\n", nodeID(s))
				}
			}
		}
	}

	return sb.String()
}

// describeChanges summarises what a bag goes through between two versions.
func describeChanges(prev, next *schema.Schema) string {
	var parts []string

	olds := make([]string, 0, len(next.TransformationRules))
	for old := range next.TransformationRules {
		olds = append(olds, old)
	}
	slices.Sort(olds)
	for _, old := range olds {
		parts = append(parts, fmt.Sprintf("%s → %s", old, next.TransformationRules[old]))
	}

	for _, name := range next.PropertyNames() {
		if _, ok := prev.Properties[name]; !ok {
			parts = append(parts, "+"+name)
		}
	}
	for _, name := range prev.PropertyNames() {
		if _, ok := next.Properties[name]; !ok {
			parts = append(parts, "-"+name)
		}
	}

	return strings.ReplaceAll(strings.Join(parts, "<br/>"), "\"", "'")
}

func nodeID(s *schema.Schema) string {
	return sanitizeMermaidID(s.ResourceType + "_" + s.Version)
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, "@", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
