// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/depfetch/depfetch/internal/issue"
	"github.com/depfetch/depfetch/pkg/artifact"
	"github.com/depfetch/depfetch/pkg/manifest"
	"github.com/depfetch/depfetch/pkg/resolver"
)

// ErrCacheCorrupted is returned by cache verify when any file fails its check.
var ErrCacheCorrupted = errors.New("cache corrupted")

type cacheFlags struct {
	cacheDir string
	jobs     int
	lockPath string
}

func newCacheCommand(app *App) *cobra.Command {
	var flags cacheFlags

	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect the dependency cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cacheCmd.PersistentFlags().StringVar(&flags.cacheDir, "cache-dir", "", "cache directory (default from config)")

	cacheCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List cached descriptors and artifacts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := app.openCache(flags.cacheDir)
			if err != nil {
				return app.fail(cmd, err)
			}
			entries, err := cache.Entries()
			if err != nil {
				return app.fail(cmd, err)
			}
			writeEntries(app.stdout, entries)
			return nil
		},
	})

	cacheCmd.AddCommand(&cobra.Command{
		Use:   "versions <group:artifact[:classifier]>",
		Short: "List the cached versions of an artifact, highest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			coord, err := artifact.ParseCoordinate(args[0])
			if err != nil {
				return app.fail(cmd, err)
			}
			cache, err := app.openCache(flags.cacheDir)
			if err != nil {
				return app.fail(cmd, err)
			}
			versions, err := cache.InstalledVersions(coord)
			if err != nil {
				return app.fail(cmd, err)
			}
			for _, v := range versions {
				fmt.Fprintln(app.stdout, v.String())
			}
			return nil
		},
	})

	verifyCmd := &cobra.Command{
		Use:   "verify",
		Short: "Re-check every cached file against its SHA-1 sidecar",
		Long: `Re-hash every cached descriptor and artifact and compare it with the
SHA-1 sidecar stored next to it. With --lock, the sha256 digests recorded
in the lock file are checked as well.

Exits with status 1 when any file fails.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd, app, &flags)
		},
	}
	verifyCmd.Flags().IntVarP(&flags.jobs, "jobs", "j", runtime.NumCPU(), "files hashed in parallel")
	verifyCmd.Flags().StringVar(&flags.lockPath, "lock", "", "also check the digests recorded in this lock file")
	cacheCmd.AddCommand(verifyCmd)

	return cacheCmd
}

func (a *App) openCache(dir string) (*resolver.Cache, error) {
	if dir == "" {
		dir = a.cfg.CacheDirOrDefault()
	}
	r, err := resolver.New(dir, resolver.WithLogger(a.logger))
	if err != nil {
		return nil, err
	}
	return r.Cache(), nil
}

func runVerify(cmd *cobra.Command, app *App, flags *cacheFlags) error {
	cache, err := app.openCache(flags.cacheDir)
	if err != nil {
		return app.fail(cmd, err)
	}

	results, err := cache.Verify(cmd.Context(), flags.jobs)
	if err != nil {
		return app.fail(cmd, err)
	}

	t := table.NewWriter()
	t.SetOutputMirror(app.stdout)
	t.AppendHeader(table.Row{"File", "Status"})
	failed := 0
	for _, r := range results {
		if r.OK {
			continue
		}
		failed++
		t.AppendRow(table.Row{relativeTo(cache.Root(), r.Path), r.Status})
	}

	if flags.lockPath != "" {
		lock, err := manifest.LoadLockFile(flags.lockPath)
		if err != nil {
			return app.fail(cmd, err)
		}
		for _, d := range lock.Verify(cache.Root()) {
			failed++
			status := "digest " + d.Actual.String()
			if d.Err != nil {
				status = d.Err.Error()
			}
			t.AppendRow(table.Row{relativeTo(cache.Root(), d.Path), "lock: " + status})
		}
	}

	if failed == 0 {
		fmt.Fprintf(app.stdout, "%s %d files verified\n", SuccessStyle.Render("✓"), len(results))
		return nil
	}

	style := table.StyleLight
	style.Options.DrawBorder = false
	t.SetStyle(style)
	t.Render()

	return app.fail(cmd, issue.NewErrorContext().
		WithOperation("verify cache").
		WithResource(cache.Root()).
		WithIssue(issue.CacheCorruptedId).
		Wrap(fmt.Errorf("%w: %d of %d files failed", ErrCacheCorrupted, failed, len(results))).
		BuildError())
}

func writeEntries(w io.Writer, entries []resolver.Entry) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Artifact", "Version", "Files"})
	for _, e := range entries {
		files := []string{"pom"}
		if e.ArtifactFile != "" {
			files = append(files, "jar")
		}
		t.AppendRow(table.Row{e.Coordinate.String(), e.Version, strings.Join(files, ", ")})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, AutoMerge: true},
	})
	style := table.StyleLight
	style.Options.DrawBorder = false
	t.SetStyle(style)
	t.Render()
}
