package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is overridden at link time via -ldflags, matching the teacher's
// own unset-by-default version string.
var version = "dev"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the cc32 version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), version)
			return nil
		},
	}
}
