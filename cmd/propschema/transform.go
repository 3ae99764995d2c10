package main

import (
	"github.com/spf13/cobra"
)

func newTransformCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "transform <resource-type> <from-version> <to-version> <bag-file>",
		Short: "Reshape a property bag into another API version",
		Long: `Transforms a bag that conforms to <from-version> into the shape of
<to-version>: keys are renamed through the target's transformation rules and
values of declared properties are coerced to the declared type.`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.loadCatalog()
			if err != nil {
				return err
			}
			v, err := c.Validator(args[0], args[1])
			if err != nil {
				return err
			}
			target, err := c.Get(args[0], args[2])
			if err != nil {
				return err
			}
			bag, err := readBag(cmd, args[3])
			if err != nil {
				return err
			}

			out, err := v.TransformTo(bag, target)
			if err != nil {
				return err
			}
			return writeBag(cmd.OutOrStdout(), out, output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "yaml", "Output format: yaml or json")
	return cmd
}
