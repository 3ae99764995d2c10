package main

import (
	"encoding/json"

	"github.com/aretw0/propschema/internal/presentation/tui"
	"github.com/aretw0/propschema/pkg/schema"
	"github.com/spf13/cobra"
)

type validateOutput struct {
	schema.ValidationResult
	Formatted []string `json:"formatted"`
}

func newValidateCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "validate <resource-type> <version> <bag-file>",
		Short: "Check a property bag against a schema",
		Long: `Validates the property bag in <bag-file> (YAML or JSON, "-" for stdin)
against the schema of <resource-type> at <version>.

Exits with status 1 when the bag is invalid.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.loadCatalog()
			if err != nil {
				return err
			}
			v, err := c.Validator(args[0], args[1])
			if err != nil {
				return err
			}
			bag, err := readBag(cmd, args[2])
			if err != nil {
				return err
			}

			result := v.ValidateProps(bag)
			switch output {
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(validateOutput{ValidationResult: result, Formatted: v.FormatValidationErrors(result)}); err != nil {
					return err
				}
			default:
				out := cmd.OutOrStdout()
				tui.NewPrinter(out, tui.Profile(out)).Report(schema.Key(args[0], args[1]), result)
			}

			if !result.Valid {
				return errInvalid
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format: text or json")
	return cmd
}
