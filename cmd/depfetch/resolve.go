// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/depfetch/depfetch/internal/issue"
	"github.com/depfetch/depfetch/pkg/artifact"
	"github.com/depfetch/depfetch/pkg/repository"
	"github.com/depfetch/depfetch/pkg/resolver"
)

type (
	// resolveFlags are the flags shared by every command that resolves.
	resolveFlags struct {
		repos           []string
		scopes          []string
		includeOptional bool
		cacheDir        string
		output          string
	}

	// resolution is a configured resolver plus the state a command needs
	// after it ran.
	resolution struct {
		resolver  *resolver.Resolver
		repos     []repository.Repository
		collector *resolver.Collector
		format    OutputFormat
	}
)

func (f *resolveFlags) register(cmd *cobra.Command, withOutput bool) {
	flags := cmd.Flags()
	flags.StringArrayVar(&f.repos, "repo", nil, "repository URL or directory to use instead of the configured ones (repeatable)")
	flags.StringSliceVar(&f.scopes, "scope", nil, "scopes followed transitively (default from config)")
	flags.BoolVar(&f.includeOptional, "include-optional", false, "also resolve dependencies marked optional")
	flags.StringVar(&f.cacheDir, "cache-dir", "", "cache directory (default from config)")
	if withOutput {
		flags.StringVarP(&f.output, "output", "o", string(OutputTable), fmt.Sprintf("output format: one of %v", OutputFormats()))
	}
}

// newResolution builds a resolver from configuration overridden by flags.
// specs and scopeNames come from a manifest; flags take precedence over them
// and they take precedence over configuration.
func (a *App) newResolution(f *resolveFlags, specs []repository.Spec, scopeNames []string) (*resolution, error) {
	cfg := a.cfg

	format := OutputTable
	if f.output != "" {
		parsed, err := ParseOutputFormat(f.output)
		if err != nil {
			return nil, err
		}
		format = parsed
	}

	scopes, err := cfg.ScopeSet()
	if err != nil {
		return nil, err
	}
	switch {
	case len(f.scopes) > 0:
		scopes, err = artifact.ParseScopeSet(f.scopes)
	case len(scopeNames) > 0:
		scopes, err = artifact.ParseScopeSet(scopeNames)
	}
	if err != nil {
		return nil, err
	}

	switch {
	case len(f.repos) > 0:
		specs = make([]repository.Spec, 0, len(f.repos))
		for _, u := range f.repos {
			specs = append(specs, repository.Spec{URL: u})
		}
	case len(specs) == 0:
		specs = cfg.RepositorySpecs()
	}

	repoOpts := cfg.RepositoryOptions()
	repos := make([]repository.Repository, 0, len(specs))
	for _, spec := range specs {
		repo, err := repository.New(spec, repoOpts...)
		if err != nil {
			return nil, err
		}
		repos = append(repos, repo)
	}

	cacheDir := f.cacheDir
	if cacheDir == "" {
		cacheDir = cfg.CacheDirOrDefault()
	}

	collector := &resolver.Collector{}
	r, err := resolver.New(cacheDir,
		resolver.WithScopes(scopes),
		resolver.WithIncludeOptional(f.includeOptional || cfg.IncludeOptional),
		resolver.WithVerbose(a.progressVerbose()),
		resolver.WithLogger(a.logger),
		resolver.WithSink(collector),
		resolver.WithRepositories(repos...),
		resolver.WithRepositoryFactory(func(spec repository.Spec) (repository.Repository, error) {
			return repository.New(spec, repoOpts...)
		}),
	)
	if err != nil {
		return nil, err
	}

	return &resolution{
		resolver:  r,
		repos:     r.Repositories(),
		collector: collector,
		format:    format,
	}, nil
}

// parseCoordinates parses command arguments as dependencies.
func parseCoordinates(args []string) ([]artifact.Dependency, error) {
	deps := make([]artifact.Dependency, 0, len(args))
	for _, arg := range args {
		dep, err := artifact.ParseDependency(arg)
		if err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("parse coordinate").
				WithResource(arg).
				WithSuggestion("Use group:artifact[:version[:classifier]]").
				WithIssue(issue.InvalidCoordinateId).
				Wrap(err).
				BuildError()
		}
		deps = append(deps, dep)
	}
	return deps, nil
}

func newResolveCommand(app *App) *cobra.Command {
	var flags resolveFlags

	cmd := &cobra.Command{
		Use:   "resolve <group:artifact[:version[:classifier]]>...",
		Short: "Resolve dependencies and their transitive closure into the cache",
		Long: `Resolve dependencies and everything they require.

A coordinate without a version resolves to the newest version the
repositories report, falling back to the highest version already cached.`,
		Example: `  depfetch resolve com.google.code.gson:gson:2.10.1
  depfetch resolve --repo ./mirror --scope runtime org.example:app:1.0
  depfetch resolve -o classpath org.slf4j:slf4j-simple:2.0.9`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := parseCoordinates(args)
			if err != nil {
				return app.fail(cmd, err)
			}

			res, err := app.newResolution(&flags, nil, nil)
			if err != nil {
				return app.fail(cmd, err)
			}

			result, err := res.resolver.ResolveMany(cmd.Context(), nil, res.repos, deps)
			if err != nil {
				return app.fail(cmd, err)
			}

			return writeOrFail(app, cmd, res, result)
		},
	}
	flags.register(cmd, true)

	return cmd
}

// writeOrFail writes result to stdout in the requested format.
func writeOrFail(app *App, cmd *cobra.Command, res *resolution, result *resolver.Result) error {
	if err := writeResult(app.stdout, res.format, res.resolver.Cache().Root(), result, res.collector.Paths()); err != nil {
		return app.fail(cmd, err)
	}
	return nil
}
