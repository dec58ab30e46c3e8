// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/farman20ali/kdist/cmd/kdist/internal/clierr"
	"github.com/farman20ali/kdist/internal/release"
)

// NewReleaseCommand returns the `kdist release` command: the full pipeline
// from version resolution through GitHub publication.
func NewReleaseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "release",
		Short: "Tag, build, and publish a release",
		Long:  "Validates git state, creates and pushes the release tag, builds PyPI and Debian packages, and creates a GitHub release with the built artifacts.",
		RunE:  runRelease,
	}

	cmd.Flags().String("version", "", "version to release (default: read from setup.py)")
	cmd.Flags().Bool("no-pypi", false, "skip the PyPI package build")
	cmd.Flags().Bool("no-deb", false, "skip the Debian package build")
	cmd.Flags().Bool("no-github", false, "skip GitHub release creation")
	cmd.Flags().Bool("dry-run", false, "preview without making changes")
	cmd.Flags().BoolP("yes", "y", false, "answer yes to all prompts")

	return cmd
}

func runRelease(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}

	versionFlag, _ := cmd.Flags().GetString("version")
	noPyPI, _ := cmd.Flags().GetBool("no-pypi")
	noDeb, _ := cmd.Flags().GetBool("no-deb")
	noGitHub, _ := cmd.Flags().GetBool("no-github")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	yes, _ := cmd.Flags().GetBool("yes")

	var prompt release.Prompter
	if yes || dryRun {
		prompt = &release.NonInteractive{Answer: true}
	} else {
		prompt = release.NewTTYPrompter(os.Stdin, cmd.OutOrStdout())
	}

	opts := release.Options{
		Version:    versionFlag,
		SkipPyPI:   noPyPI,
		SkipDeb:    noDeb,
		SkipGitHub: noGitHub,
		DryRun:     dryRun,
	}

	orch := release.NewOrchestrator(e.Runner, e.Config, e.Root, e.Out, prompt, opts)
	_, err = orch.Run(cmd.Context())
	if err != nil {
		if errors.Is(err, release.ErrCancelled) {
			e.Out.Plain("Release cancelled")
			return nil
		}
		if release.IsPrecondition(err) {
			return clierr.Wrap(1, "release aborted", err)
		}
		return err
	}
	return nil
}
