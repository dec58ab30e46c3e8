// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd constructs the kdist root command.
func NewRootCmd() *cobra.Command {
	version := os.Getenv("KDIST_VERSION")
	if version == "" {
		version = "0.0.0-dev"
	}

	cmd := &cobra.Command{
		Use:           "kdist",
		Short:         "kdist - packaging and release automation for kport",
		Long:          "kdist builds PyPI and Debian packages for kport, tags releases, and publishes them to GitHub.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringP("root", "C", ".", "project root directory")

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number of kdist",
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "kdist version %s\n", version)
		},
	})

	cmd.AddCommand(NewReleaseCommand())
	cmd.AddCommand(NewDebCommand())
	cmd.AddCommand(NewPyPICommand())

	return cmd
}
