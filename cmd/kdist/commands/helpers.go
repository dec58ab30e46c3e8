// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/farman20ali/kdist/internal/config"
	"github.com/farman20ali/kdist/internal/execx"
	"github.com/farman20ali/kdist/internal/ui"
)

// env bundles what every subcommand needs: the resolved project root, the
// loaded descriptor, a styled printer on the command's stdout, and the local
// subprocess runner.
type env struct {
	Root   string
	Config config.Config
	Out    *ui.Printer
	Runner execx.Runner
}

func setup(cmd *cobra.Command) (*env, error) {
	root, _ := cmd.Flags().GetString("root")
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving project root: %w", err)
	}

	cfg, err := config.Load(abs)
	if err != nil {
		return nil, err
	}

	return &env{
		Root:   abs,
		Config: cfg,
		Out:    ui.New(cmd.OutOrStdout()),
		Runner: execx.NewLocal(),
	}, nil
}
