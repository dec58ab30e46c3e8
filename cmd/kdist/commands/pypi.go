// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/farman20ali/kdist/cmd/kdist/internal/clierr"
	"github.com/farman20ali/kdist/internal/pypkg"
)

// NewPyPICommand groups the Python packaging operations.
func NewPyPICommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pypi",
		Short: "Build and upload the PyPI package",
	}

	cmd.AddCommand(newPyPIBuildCommand())
	cmd.AddCommand(newPyPIUploadCommand())

	return cmd
}

func newPyPIBuildCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Clean and build the sdist and wheel",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			builder := pypkg.NewBuilder(e.Runner, e.Config, e.Root, e.Out)

			e.Out.Step("checking required packages")
			missing, err := builder.CheckRequirements(cmd.Context())
			if err != nil {
				return err
			}
			if len(missing) > 0 {
				e.Out.Warn("missing packages: " + strings.Join(missing, ", "))
				if err := builder.InstallRequirements(cmd.Context(), missing); err != nil {
					return err
				}
			} else {
				e.Out.Success("all required packages installed")
			}

			e.Out.Step("cleaning previous builds")
			if err := builder.Clean(); err != nil {
				return err
			}

			e.Out.Step("building package")
			wheels, err := builder.Build(cmd.Context())
			if err != nil {
				return clierr.Wrap(1, "pypi build failed", err)
			}
			e.Out.Success("package built")
			for _, w := range wheels {
				e.Out.Plain("  %s", filepath.Base(w))
			}
			return nil
		},
	}
}

func newPyPIUploadCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Upload dist/ to PyPI via twine",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			test, _ := cmd.Flags().GetBool("test")

			builder := pypkg.NewBuilder(e.Runner, e.Config, e.Root, e.Out)
			if err := builder.Upload(cmd.Context(), test); err != nil {
				return clierr.Wrap(1, "upload failed", err)
			}
			if test {
				e.Out.Success("upload to Test PyPI complete")
				e.Out.Plain("Test installation with:")
				e.Out.Plain("  pip install --index-url https://test.pypi.org/simple/ %s", e.Config.Package)
			} else {
				e.Out.Success("published to PyPI")
				e.Out.Plain("Users can now install with:")
				e.Out.Plain("  pip install %s", e.Config.Package)
			}
			return nil
		},
	}

	cmd.Flags().Bool("test", false, "upload to Test PyPI (test.pypi.org) instead of production")

	return cmd
}
