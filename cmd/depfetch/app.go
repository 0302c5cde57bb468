// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"

	charmlog "github.com/charmbracelet/log"

	"github.com/depfetch/depfetch/internal/config"
)

type (
	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config ConfigProvider
		Stdout io.Writer
		Stderr io.Writer
	}

	// App is the composition root of the CLI. Every command handler receives
	// it and reads configuration, output streams and the logger through it.
	App struct {
		Config ConfigProvider

		stdout io.Writer
		stderr io.Writer

		// helpStyle is the glamour style used for issue help.
		helpStyle string

		flags  globalFlags
		cfg    *config.Config
		logger *slog.Logger
	}

	globalFlags struct {
		configPath string
		verbose    bool
		quiet      bool
	}
)

// NewApp builds an App, filling unset dependencies with production defaults.
func NewApp(deps Dependencies) *App {
	app := &App{
		Config:    deps.Config,
		stdout:    deps.Stdout,
		stderr:    deps.Stderr,
		helpStyle: "auto",
	}
	if app.Config == nil {
		app.Config = config.NewProvider()
	}
	if app.stdout == nil {
		app.stdout = os.Stdout
	}
	if app.stderr == nil {
		app.stderr = os.Stderr
	}
	app.logger = newLogger(app.stderr, charmlog.InfoLevel)
	return app
}

// loadConfig reads configuration for the current invocation and installs
// the logger its verbosity asks for.
func (a *App) loadConfig(ctx context.Context) error {
	cfg, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: a.flags.configPath})
	if err != nil {
		return err
	}
	a.cfg = cfg

	level := charmlog.InfoLevel
	switch {
	case a.flags.quiet:
		level = charmlog.WarnLevel
	case a.flags.verbose:
		level = charmlog.DebugLevel
	}
	a.logger = newLogger(a.stderr, level)
	slog.SetDefault(a.logger)
	return nil
}

// progressVerbose reports whether resolution progress is logged at info level.
func (a *App) progressVerbose() bool {
	if a.flags.quiet {
		return false
	}
	return a.flags.verbose || (a.cfg != nil && a.cfg.Verbose)
}

func newLogger(w io.Writer, level charmlog.Level) *slog.Logger {
	handler := charmlog.NewWithOptions(w, charmlog.Options{
		Level:           level,
		ReportTimestamp: false,
	})
	return slog.New(handler)
}
