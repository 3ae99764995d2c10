package tui

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/aretw0/propschema/pkg/schema"
)

// SchemaMarkdown describes s as a markdown document: a property table followed
// by the rules and renames it declares.
func SchemaMarkdown(s *schema.Schema) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", s.ResourceType)
	fmt.Fprintf(&sb, "Version `%s`\n\n", s.Version)

	if len(s.Required) > 0 {
		fmt.Fprintf(&sb, "**Required:** %s\n\n", codeList(s.Required))
	}
	if len(s.Deprecated) > 0 {
		fmt.Fprintf(&sb, "**Deprecated:** %s\n\n", codeList(s.Deprecated))
	}

	sb.WriteString("## Properties\n\n")
	names := s.PropertyNames()
	if len(names) == 0 {
		sb.WriteString("_No properties defined._\n\n")
	} else {
		sb.WriteString("| Name | Type | Required | Default | Rules | Description |\n")
		sb.WriteString("|------|------|----------|---------|-------|-------------|\n")
		for _, name := range names {
			def := s.Properties[name]
			display := "`" + name + "`"
			if def.Deprecated {
				display += " (deprecated)"
			}
			fmt.Fprintf(&sb, "| %s | %s | %s | %s | %s | %s |\n",
				display,
				def.DataType,
				yesNo(def.Required),
				defaultCell(def),
				escapeCell(rulesCell(def.Validation)),
				escapeCell(describe(def)),
			)
		}
		sb.WriteString("\n")
	}

	if len(s.ValidationRules) > 0 {
		sb.WriteString("## Schema Rules\n\n")
		for _, pv := range s.ValidationRules {
			fmt.Fprintf(&sb, "- `%s`: %s\n", pv.Property, rulesCell(pv.Rules))
		}
		sb.WriteString("\n")
	}

	if len(s.TransformationRules) > 0 {
		sb.WriteString("## Renames\n\n")
		for _, old := range slices.Sorted(maps.Keys(s.TransformationRules)) {
			fmt.Fprintf(&sb, "- `%s` → `%s`\n", old, s.TransformationRules[old])
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func codeList(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = "`" + n + "`"
	}
	return strings.Join(quoted, ", ")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func defaultCell(def schema.PropertyDefinition) string {
	if !def.HasDefault() {
		return ""
	}
	raw, err := json.Marshal(def.Default)
	if err != nil {
		return fmt.Sprintf("`%v`", def.Default)
	}
	return "`" + string(raw) + "`"
}

func rulesCell(rules []schema.ValidationRule) string {
	parts := make([]string, 0, len(rules))
	for _, r := range rules {
		switch r.Kind {
		case schema.RulePatternMatch:
			parts = append(parts, fmt.Sprintf("pattern `%s`", r.Pattern))
		case schema.RuleValueRange:
			parts = append(parts, "range "+rangeText(r.Range))
		default:
			parts = append(parts, string(r.Kind))
		}
	}
	return strings.Join(parts, ", ")
}

func rangeText(r *schema.Range) string {
	if r == nil {
		return "(unbounded)"
	}
	lo, hi := "-∞", "∞"
	if r.Min != nil {
		lo = schema.FormatNumber(*r.Min)
	}
	if r.Max != nil {
		hi = schema.FormatNumber(*r.Max)
	}
	return fmt.Sprintf("[%s, %s]", lo, hi)
}

func describe(def schema.PropertyDefinition) string {
	text := def.Description
	if def.AddedInVersion != "" {
		text = strings.TrimSpace(text + " Since " + def.AddedInVersion + ".")
	}
	if def.RemovedInVersion != "" {
		text = strings.TrimSpace(text + " Removed in " + def.RemovedInVersion + ".")
	}
	return text
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
