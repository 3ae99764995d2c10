package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newSchemasCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "schemas [resource-type]",
		Short: "List the schemas in the catalog",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.loadCatalog()
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "RESOURCE TYPE\tVERSION\tPROPERTIES\tREQUIRED")
			for _, s := range c.Schemas() {
				if len(args) == 1 && s.ResourceType != args[0] {
					continue
				}
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n", s.ResourceType, s.Version, len(s.Properties), len(s.Required))
			}
			return tw.Flush()
		},
	}
}
