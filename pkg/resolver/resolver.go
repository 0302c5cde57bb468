// SPDX-License-Identifier: MPL-2.0

package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/depfetch/depfetch/pkg/artifact"
	"github.com/depfetch/depfetch/pkg/pom"
	"github.com/depfetch/depfetch/pkg/repository"
)

type (
	// Resolver resolves dependencies into its cache.
	Resolver struct {
		cache           *Cache
		repos           []repository.Repository
		scopes          artifact.ScopeSet
		includeOptional bool
		verbose         bool
		logger          *slog.Logger
		sink            Sink
		newRepository   RepositoryFactory
	}

	// pending is a worklist entry: a dependency, the repositories to try for
	// it and the coordinate that declared it.
	pending struct {
		dep    artifact.Dependency
		repos  []repository.Repository
		parent *artifact.Coordinate
	}
)

// New creates a resolver caching into cacheDir. An empty cacheDir means DefaultCacheDir.
// The directory is created on the first resolution.
func New(cacheDir string, opts ...Option) (*Resolver, error) {
	if cacheDir == "" {
		cacheDir = DefaultCacheDir
	}
	absCacheDir, err := filepath.Abs(cacheDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve cache directory: %w", err)
	}

	r := &Resolver{
		cache:   NewCache(absCacheDir),
		scopes:  artifact.DefaultScopes(),
		verbose: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.newRepository == nil {
		r.newRepository = func(spec repository.Spec) (repository.Repository, error) {
			return repository.New(spec)
		}
	}
	return r, nil
}

// Cache returns the resolver's cache.
func (r *Resolver) Cache() *Cache { return r.cache }

// Scopes returns the scopes followed transitively.
func (r *Resolver) Scopes() artifact.ScopeSet { return r.scopes }

// Repositories returns the configured repositories, or the default public
// repository when none are configured.
func (r *Resolver) Repositories() []repository.Repository {
	if len(r.repos) == 0 {
		return []repository.Repository{repository.Central()}
	}
	return r.repos
}

// ResolveOne resolves dep and everything it transitively requires. A nil
// session resolves in a fresh one. If dep is already resolved in sess the
// result is empty.
func (r *Resolver) ResolveOne(ctx context.Context, sess *Session, repos []repository.Repository, dep artifact.Dependency) (*Result, error) {
	if sess == nil {
		sess = NewSession()
	}
	return r.resolve(ctx, sess, repos, dep, r.scopes)
}

// ResolveMany ensures the cache exists, resolves every dependency and hands the
// union to the sink. Any failure aborts the call and no result is returned.
func (r *Resolver) ResolveMany(ctx context.Context, sess *Session, repos []repository.Repository, deps []artifact.Dependency) (*Result, error) {
	return r.resolveMany(ctx, sess, repos, deps, r.scopes)
}

// ResolveFromDescriptor resolves the dependencies declared by project using
// the configured repositories followed by those the project declares. Only
// dependencies in scopes are followed, at every depth; an empty set means the
// resolver's scopes.
func (r *Resolver) ResolveFromDescriptor(ctx context.Context, sess *Session, project *pom.Project, scopes artifact.ScopeSet) (*Result, error) {
	if scopes.Len() == 0 {
		scopes = r.scopes
	}

	declared, err := project.Repositories()
	if err != nil {
		return nil, err
	}
	repos := r.withDeclared(r.Repositories(), declared)

	deps, err := project.Dependencies(pom.DependencyOptions{Scopes: scopes, IncludeOptional: r.includeOptional})
	if err != nil {
		return nil, err
	}
	return r.resolveMany(ctx, sess, repos, deps, scopes)
}

func (r *Resolver) resolveMany(ctx context.Context, sess *Session, repos []repository.Repository, deps []artifact.Dependency, scopes artifact.ScopeSet) (*Result, error) {
	if err := os.MkdirAll(r.cache.Root(), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	if sess == nil {
		sess = NewSession()
	}

	result := newResult()
	for _, dep := range deps {
		res, err := r.resolve(ctx, sess, repos, dep, scopes)
		if err != nil {
			return nil, err
		}
		result.merge(res)
	}

	r.inject(ctx, result)
	return result, nil
}

// resolve walks the graph below root with an explicit stack. The session is
// the visited set, so a cycle ends at the first coordinate seen twice.
func (r *Resolver) resolve(ctx context.Context, sess *Session, repos []repository.Repository, root artifact.Dependency, scopes artifact.ScopeSet) (*Result, error) {
	result := newResult()
	stack := []pending{{dep: root, repos: repos}}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.parent != nil {
			result.addEdge(*p.parent, p.dep.Coordinate)
		}
		if sess.IsResolved(p.dep.Coordinate) {
			continue
		}

		resolved, project, err := r.fetch(ctx, p.dep, p.repos)
		if err != nil {
			if p.parent != nil {
				return nil, fmt.Errorf("dependency of %s: %w", *p.parent, err)
			}
			return nil, err
		}
		sess.MarkResolved(p.dep.Coordinate)
		result.add(resolved)
		if p.parent == nil {
			result.addRoot(resolved.Coordinate)
		}

		children, childRepos, err := r.expand(project, p.repos, scopes)
		if err != nil {
			return nil, fmt.Errorf("dependencies of %s: %w", resolved.Dependency, err)
		}
		parent := resolved.Coordinate
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, pending{dep: children[i], repos: childRepos, parent: &parent})
		}
	}

	return result, nil
}

// expand returns the dependencies project declares within scopes and the
// repositories to resolve them from.
func (r *Resolver) expand(project *pom.Project, repos []repository.Repository, scopes artifact.ScopeSet) ([]artifact.Dependency, []repository.Repository, error) {
	deps, err := project.Dependencies(pom.DependencyOptions{Scopes: scopes, IncludeOptional: r.includeOptional})
	if err != nil {
		return nil, nil, err
	}
	declared, err := project.Repositories()
	if err != nil {
		return nil, nil, err
	}
	return deps, r.withDeclared(repos, declared), nil
}

// withDeclared appends declared repositories after base, skipping locations already present.
func (r *Resolver) withDeclared(base []repository.Repository, declared []pom.Repository) []repository.Repository {
	if len(declared) == 0 {
		return base
	}

	seen := make(map[string]bool, len(base)+len(declared))
	out := make([]repository.Repository, 0, len(base)+len(declared))
	for _, repo := range base {
		seen[repo.Location()] = true
		out = append(out, repo)
	}
	for _, d := range declared {
		repo, err := r.newRepository(repository.Spec{ID: d.ID, URL: d.URL})
		if err != nil {
			r.logger.Warn("ignoring declared repository", "repository", d.URL, "error", err)
			continue
		}
		if seen[repo.Location()] {
			continue
		}
		seen[repo.Location()] = true
		out = append(out, repo)
	}
	return out
}

// inject hands every resolved artifact that exists on disk to the sink.
func (r *Resolver) inject(ctx context.Context, result *Result) {
	if r.sink == nil {
		return
	}
	for _, d := range result.LoadOrder() {
		if d.ArtifactFile == "" || !exists(d.ArtifactFile) {
			continue
		}
		r.progress("Loading", "dependency", d.Dependency.String(), "path", d.ArtifactFile)
		if err := r.sink.Inject(ctx, d.Dependency, d.ArtifactFile); err != nil {
			r.logger.Warn("sink rejected artifact", "dependency", d.Dependency.String(), "path", d.ArtifactFile, "error", err)
		}
	}
}

// progress logs at Info when verbose and at Debug otherwise.
func (r *Resolver) progress(msg string, args ...any) {
	level := slog.LevelDebug
	if r.verbose {
		level = slog.LevelInfo
	}
	r.logger.Log(context.Background(), level, msg, args...)
}
