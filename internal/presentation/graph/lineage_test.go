package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/propschema/internal/presentation/graph"
	"github.com/aretw0/propschema/pkg/schema"
)

func versioned(rt, version string, props ...string) *schema.Schema {
	s := &schema.Schema{
		ResourceType: rt,
		Version:      version,
		Properties:   map[string]schema.PropertyDefinition{},
		Required:     []string{},
	}
	for _, p := range props {
		s.Properties[p] = schema.PropertyDefinition{DataType: schema.TypeString}
	}
	return s
}

func TestGenerateMermaid(t *testing.T) {
	rg := "Microsoft.Resources/resourceGroups"

	v1 := versioned(rg, "2024-11-01", "oldName", "location", "managedBy")
	v1.Deprecated = []string{"managedBy"}
	v2 := versioned(rg, "2025-01-01", "name", "location")
	v2.TransformationRules = map[string]string{"oldName": "name"}
	plain := versioned("Contoso/widgets", "v1", "size")
	plain2 := versioned("Contoso/widgets", "v2", "size")

	tests := []struct {
		name      string
		schemas   []*schema.Schema
		highlight *graph.Highlight
		contains  []string
		excludes  []string
	}{
		{
			name:    "Subgraph Per Resource Type",
			schemas: []*schema.Schema{v2, v1},
			contains: []string{
				"graph LR",
				`subgraph Microsoft_Resources_resourceGroups["Microsoft.Resources/resourceGroups"]`,
				`Microsoft_Resources_resourceGroups_2025_01_01["2025-01-01"]`,
			},
		},
		{
			name:    "Deprecated Annotation",
			schemas: []*schema.Schema{v1},
			contains: []string{
				`["2024-11-01 <br/> deprecated: managedBy"]`,
			},
		},
		{
			name:    "Edge Lists Renames And Property Changes",
			schemas: []*schema.Schema{v1, v2},
			contains: []string{
				`Microsoft_Resources_resourceGroups_2024_11_01 -- "oldName → name<br/>+name<br/>-managedBy<br/>-oldName" --> Microsoft_Resources_resourceGroups_2025_01_01`,
			},
		},
		{
			name:    "Unchanged Versions Use Plain Edge",
			schemas: []*schema.Schema{plain2, plain},
			contains: []string{
				"Contoso_widgets_v1 --> Contoso_widgets_v2",
			},
		},
		{
			name:      "Highlight",
			schemas:   []*schema.Schema{v1, v2},
			highlight: &graph.Highlight{Source: "2024-11-01", Target: "2025-01-01"},
			contains: []string{
				"class Microsoft_Resources_resourceGroups_2024_11_01 source;",
				"class Microsoft_Resources_resourceGroups_2025_01_01 target;",
			},
		},
		{
			name:     "No Highlight Styles By Default",
			schemas:  []*schema.Schema{v1, v2},
			excludes: []string{"classDef"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(tt.schemas, tt.highlight)
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
		})
	}
}
