// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/farman20ali/kdist/cmd/kdist/internal/clierr"
	"github.com/farman20ali/kdist/internal/debpkg"
	"github.com/farman20ali/kdist/internal/release"
)

// NewDebCommand groups the Debian packaging operations: tool checks,
// dependency installation, and the build itself.
func NewDebCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deb",
		Short: "Build and inspect the Debian package",
	}

	cmd.AddCommand(newDebCheckCommand())
	cmd.AddCommand(newDebDepsCommand())
	cmd.AddCommand(newDebBuildCommand())

	return cmd
}

func newDebCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check Debian build tools and Build-Depends",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}

			if missing := debpkg.MissingBuildTools(e.Runner); len(missing) > 0 {
				e.Out.Fail("missing tools: " + strings.Join(missing, ", "))
				e.Out.Plain("Run `kdist deb deps` to install build dependencies.")
				return clierr.New(1, "build tools missing")
			}
			e.Out.Success("build tools look installed")

			// Unmet Build-Depends are a soft condition here: report them and
			// let the operator decide.
			builder := debpkg.NewBuilder(e.Runner, e.Config, e.Root, e.Out)
			unmet, err := builder.Preflight(cmd.Context())
			if err != nil {
				return err
			}
			if len(unmet) > 0 {
				e.Out.Warn("unmet Build-Depends: " + strings.Join(unmet, ", "))
				e.Out.Plain("Run `kdist deb deps` (or install the missing packages) before building.")
			}
			return nil
		},
	}
}

func newDebDepsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Install Debian build dependencies (apt-get, requires sudo)",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			return debpkg.InstallBuildTools(cmd.Context(), e.Runner, e.Out)
		},
	}
}

func newDebBuildCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the .deb from a generated packaging skeleton",
		RunE:  runDebBuild,
	}

	cmd.Flags().Bool("install-hint", false, "show the dpkg install command after a successful build")
	cmd.Flags().BoolP("yes", "y", false, "install missing Build-Depends without prompting")

	return cmd
}

func runDebBuild(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}

	installHint, _ := cmd.Flags().GetBool("install-hint")
	yes, _ := cmd.Flags().GetBool("yes")

	if missing := debpkg.MissingBuildTools(e.Runner); len(missing) > 0 {
		e.Out.Fail("missing tools: " + strings.Join(missing, ", "))
		e.Out.Plain("Run `kdist deb deps` to install build dependencies.")
		return clierr.New(1, "build tools missing")
	}

	builder := debpkg.NewBuilder(e.Runner, e.Config, e.Root, e.Out)

	// Preflight against a throwaway skeleton so the real build does not die
	// halfway through on a missing Build-Depends.
	unmet, err := builder.Preflight(cmd.Context())
	if err != nil {
		return err
	}
	if len(unmet) > 0 {
		e.Out.Warn("missing Build-Depends: " + strings.Join(unmet, ", "))
		proceed := yes
		if !proceed {
			prompt := release.NewTTYPrompter(os.Stdin, cmd.OutOrStdout())
			proceed, err = prompt.Confirm("Install missing Build-Depends now?")
			if err != nil {
				return err
			}
		}
		if !proceed {
			return clierr.New(1, "cannot build until Build-Depends are installed")
		}
		if err := debpkg.InstallPackages(cmd.Context(), e.Runner, e.Out, unmet); err != nil {
			return err
		}
	}

	artifact, err := builder.Build(cmd.Context())
	if err != nil {
		return clierr.Wrap(1, "deb build failed", err)
	}
	if artifact == "" {
		e.Out.Warn("build finished but the .deb file was not located automatically")
		e.Out.Plain("Checked temporary build output; nothing copied to %s/deb/.", e.Config.DistDir)
		return nil
	}

	if installHint {
		showInstallHint(e, artifact)
	} else {
		e.Out.Plain("%s", artifact)
	}
	return nil
}

func showInstallHint(e *env, artifact string) {
	e.Out.Header("Build complete")
	e.Out.Field(".deb", artifact)
	e.Out.Plain("Install:")
	e.Out.Plain("  sudo dpkg -i %s", artifact)
	e.Out.Plain("Then run:")
	e.Out.Plain("  %s --version", e.Config.Package)
	fmt.Fprintln(e.Out.Out)
}
