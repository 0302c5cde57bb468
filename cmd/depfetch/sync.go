// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/depfetch/depfetch/internal/issue"
	"github.com/depfetch/depfetch/pkg/manifest"
	"github.com/depfetch/depfetch/pkg/resolver"
)

// ErrLockDrift is returned by sync when the resolution differs from the lock file.
var ErrLockDrift = errors.New("resolution differs from lock file")

type syncFlags struct {
	resolveFlags
	manifestPath string
	lockPath     string
	update       bool
}

func newSyncCommand(app *App) *cobra.Command {
	var flags syncFlags

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Resolve the project manifest and maintain its lock file",
		Long: `Resolve every dependency listed in ` + manifest.FileName + ` and record the result in
` + manifest.LockFileName + `.

The first sync writes the lock file. Later syncs fail when the resolved
versions or file digests no longer match it; pass --update to accept the
new resolution.`,
		Example: `  depfetch sync
  depfetch sync --manifest build/depfetch.cue -o classpath
  depfetch sync --update`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd, app, &flags)
		},
	}
	flags.register(cmd, true)
	cmd.Flags().StringVar(&flags.manifestPath, "manifest", manifest.FileName, "project manifest")
	cmd.Flags().StringVar(&flags.lockPath, "lock", "", "lock file (default next to the manifest)")
	cmd.Flags().BoolVar(&flags.update, "update", false, "rewrite the lock file when the resolution changed")

	return cmd
}

func runSync(cmd *cobra.Command, app *App, flags *syncFlags) error {
	m, err := manifest.Load(flags.manifestPath)
	if err != nil {
		if errors.Is(err, manifest.ErrNotFound) {
			return app.fail(cmd, err)
		}
		return app.fail(cmd, issue.NewErrorContext().
			WithOperation("load manifest").
			WithResource(flags.manifestPath).
			WithIssue(issue.ManifestParseFailedId).
			Wrap(err).
			BuildError())
	}

	deps, err := m.Dependencies()
	if err != nil {
		return app.fail(cmd, issue.NewErrorContext().
			WithOperation("read manifest dependencies").
			WithResource(m.Path()).
			WithIssue(issue.ManifestParseFailedId).
			Wrap(err).
			BuildError())
	}

	flags.includeOptional = flags.includeOptional || m.IncludeOptional
	res, err := app.newResolution(&flags.resolveFlags, m.Repositories(), m.ScopeNames)
	if err != nil {
		return app.fail(cmd, err)
	}

	result, err := res.resolver.ResolveMany(cmd.Context(), nil, res.repos, deps)
	if err != nil {
		return app.fail(cmd, err)
	}

	lockPath := flags.lockPath
	if lockPath == "" {
		lockPath = filepath.Join(filepath.Dir(m.Path()), manifest.LockFileName)
	}
	if err := reconcileLock(app, lockPath, res.resolver.Cache().Root(), result, flags.update); err != nil {
		return app.fail(cmd, err)
	}

	return writeOrFail(app, cmd, res, result)
}

// reconcileLock writes the lock file for result when none exists or update
// is set, and otherwise fails if result no longer matches it.
func reconcileLock(app *App, lockPath, cacheRoot string, result *resolver.Result, update bool) error {
	existing, err := manifest.LoadLockFile(lockPath)
	if err != nil {
		return issue.NewErrorContext().
			WithOperation("load lock file").
			WithResource(lockPath).
			WithSuggestion("Delete the lock file and run 'depfetch sync' to recreate it").
			Wrap(err).
			BuildError()
	}

	fresh, err := manifest.FromResult(cacheRoot, result)
	if err != nil {
		return err
	}

	changed := existing.Diff(fresh)
	if len(existing.Dependencies) > 0 && len(changed) == 0 {
		return nil
	}

	if len(existing.Dependencies) > 0 && !update {
		for _, key := range changed {
			fmt.Fprintln(app.stderr, WarningStyle.Render("  ~ ")+key+describeChange(existing, fresh, key))
		}
		return issue.NewErrorContext().
			WithOperation("check lock file").
			WithResource(lockPath).
			WithSuggestion("Run 'depfetch sync --update' to accept the new resolution").
			WithIssue(issue.LockDriftId).
			Wrap(fmt.Errorf("%w: %d entries changed", ErrLockDrift, len(changed))).
			BuildError()
	}

	if err := fresh.Save(lockPath); err != nil {
		return err
	}
	fmt.Fprintf(app.stderr, "%s Wrote %s (%d dependencies)\n", SuccessStyle.Render("✓"), lockPath, len(fresh.Dependencies))
	return nil
}

func describeChange(before, after *manifest.LockFile, key string) string {
	old, hadOld := before.Get(key)
	cur, hasCur := after.Get(key)
	switch {
	case !hadOld:
		return " added " + cur.Version
	case !hasCur:
		return " removed"
	case old.Version != cur.Version:
		return " " + old.Version + " -> " + cur.Version
	default:
		return " content changed"
	}
}
