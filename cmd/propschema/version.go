package main

import (
	"fmt"

	"github.com/aretw0/propschema"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of propschema",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "propschema version %s\n", propschema.Version)
		},
	}
}
