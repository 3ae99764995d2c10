package main

import (
	"fmt"

	"github.com/aretw0/propschema/internal/openapi"
	"github.com/aretw0/propschema/internal/presentation/tui"
	"github.com/aretw0/propschema/pkg/catalog"
	"github.com/spf13/cobra"
)

func newDescribeCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "describe <resource-type> <version>",
		Short: "Show a schema",
		Long: `Prints the schema of <resource-type> at <version>.

Formats:
- markdown (default): property table, rendered in color on a terminal.
- openapi: the schema as an OpenAPI 3 object schema (YAML).
- json: the catalog document.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.loadCatalog()
			if err != nil {
				return err
			}
			s, err := c.Get(args[0], args[1])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch format {
			case "markdown", "md":
				md := tui.SchemaMarkdown(s)
				if !tui.IsTerminal(out) {
					_, err := fmt.Fprint(out, md)
					return err
				}
				render, err := tui.NewRenderer(tui.Width(out))
				if err != nil {
					return err
				}
				rendered, err := render(md)
				if err != nil {
					return err
				}
				_, err = fmt.Fprint(out, rendered)
				return err
			case "openapi":
				doc, err := openapi.YAML(openapi.FromSchema(s))
				if err != nil {
					return err
				}
				_, err = out.Write(doc)
				return err
			case "json":
				doc, err := catalog.Encode(s)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(out, string(doc))
				return err
			default:
				return fmt.Errorf("unknown format %q", format)
			}
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "markdown", "Output format: markdown, openapi or json")
	return cmd
}
