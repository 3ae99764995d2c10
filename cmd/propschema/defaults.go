package main

import (
	"github.com/spf13/cobra"
)

func newDefaultsCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "defaults <resource-type> <version> <bag-file>",
		Short: "Fill absent properties with their declared defaults",
		Args:  cobra.ExactArgs(3),
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

			out, err := v.ApplyDefaults(bag)
			if err != nil {
				return err
			}
			return writeBag(cmd.OutOrStdout(), out, output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "yaml", "Output format: yaml or json")
	return cmd
}
