// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/depfetch/depfetch/internal/config"
)

// newConfigCommand creates the `depfetch config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage depfetch configuration",
		Long: `Manage depfetch configuration.

Configuration is stored in:
  - Linux: ~/.config/depfetch/config.cue
  - macOS: ~/Library/Application Support/depfetch/config.cue
  - Windows: %APPDATA%\depfetch\config.cue

Every setting can be overridden with a DEPFETCH_ environment variable,
for example DEPFETCH_CACHE_DIR or DEPFETCH_HTTP_TIMEOUT.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration as CUE",
		Long:  "Show the effective configuration as CUE. Repository passwords are masked.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			source := app.cfg.Source()
			if source == "" {
				source = "(defaults)"
			}
			fmt.Fprintf(app.stderr, "%s %s\n\n", KeyStyle.Render("Config file:"), source)
			fmt.Fprint(app.stdout, config.GenerateCUE(config.Redacted(app.cfg)))
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show the configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := config.ConfigDir()
			if err != nil {
				return app.fail(cmd, err)
			}
			fmt.Fprintln(app.stdout, filepath.Join(dir, config.ConfigFileName+"."+config.ConfigFileExt))
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write the default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := config.ConfigDir()
			if err != nil {
				return app.fail(cmd, err)
			}
			path := filepath.Join(dir, config.ConfigFileName+"."+config.ConfigFileExt)
			if _, err := os.Stat(path); err == nil {
				return app.fail(cmd, fmt.Errorf("%s already exists: %w", path, fs.ErrExist))
			} else if !errors.Is(err, fs.ErrNotExist) {
				return app.fail(cmd, err)
			}

			written, err := config.Save(config.DefaultConfig())
			if err != nil {
				return app.fail(cmd, err)
			}
			fmt.Fprintf(app.stdout, "%s Created default configuration at %s\n", SuccessStyle.Render("✓"), written)
			return nil
		},
	})

	return cfgCmd
}
