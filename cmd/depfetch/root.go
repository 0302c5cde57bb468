// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "depfetch",
		Short: "Resolve and download Maven dependencies",
		Long: TitleStyle.Render("depfetch") + SubtitleStyle.Render(" - Resolve and download Maven dependencies") + `

depfetch reads dependency coordinates, walks their POM descriptors and
downloads every transitive dependency into a local cache, checking each
file against the SHA-1 published next to it.

` + SubtitleStyle.Render("Examples:") + `
  depfetch resolve com.google.code.gson:gson:2.10.1
  depfetch resolve --output classpath org.slf4j:slf4j-simple
  depfetch pom ./pom.xml
  depfetch sync                 Resolve depfetch.cue and update the lock file
  depfetch cache verify         Re-check every cached file`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := app.loadConfig(cmd.Context()); err != nil {
				return app.fail(cmd, err)
			}
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&app.flags.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/depfetch/config.cue)")
	flags.BoolVarP(&app.flags.verbose, "verbose", "v", false, "enable debug logging and full error chains")
	flags.BoolVarP(&app.flags.quiet, "quiet", "q", false, "only log warnings and errors")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	rootCmd.AddCommand(
		newResolveCommand(app),
		newPomCommand(app),
		newSyncCommand(app),
		newTreeCommand(app),
		newCacheCommand(app),
		newConfigCommand(app),
	)

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Main runs the CLI with os.Args and returns the process exit code.
func Main() int {
	app := NewApp(Dependencies{})
	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return exitErr.Code
		}
		return 1
	}
	return 0
}

// Execute runs the CLI and exits the process. It is called by main.main().
func Execute() {
	os.Exit(Main())
}
