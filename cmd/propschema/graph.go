package main

import (
	"fmt"

	"github.com/aretw0/propschema/internal/presentation/graph"
	"github.com/aretw0/propschema/pkg/schema"
	"github.com/spf13/cobra"
)

func newGraphCmd(a *app) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "graph [resource-type]",
		Short: "Export the version lineage as a Mermaid diagram",
		Long: `Outputs a Mermaid flowchart (graph LR) chaining the versions of each
resource type. Edges list the renames and the properties added or removed
between consecutive versions.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.loadCatalog()
			if err != nil {
				return err
			}

			var schemas []*schema.Schema
			for _, s := range c.Schemas() {
				if len(args) == 1 && s.ResourceType != args[0] {
					continue
				}
				schemas = append(schemas, s)
			}
			if len(schemas) == 0 && len(args) == 1 {
				return fmt.Errorf("%w: %s", schema.ErrSchemaNotFound, args[0])
			}

			var highlight *graph.Highlight
			if from != "" || to != "" {
				highlight = &graph.Highlight{Source: from, Target: to}
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(schemas, highlight))
			return err
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Highlight the version a bag is transformed from")
	cmd.Flags().StringVar(&to, "to", "", "Highlight the version a bag is transformed into")
	return cmd
}
