// SPDX-License-Identifier: MPL-2.0

package resolver

import (
	"log/slog"

	"github.com/depfetch/depfetch/pkg/artifact"
	"github.com/depfetch/depfetch/pkg/repository"
)

// Option configures a Resolver.
type Option func(*Resolver)

// RepositoryFactory builds repositories declared inside descriptors.
type RepositoryFactory func(spec repository.Spec) (repository.Repository, error)

// WithScopes sets the scopes followed transitively. The default is runtime and compile.
func WithScopes(scopes artifact.ScopeSet) Option {
	return func(r *Resolver) {
		r.scopes = scopes
	}
}

// WithIncludeOptional follows dependencies marked optional.
func WithIncludeOptional(include bool) Option {
	return func(r *Resolver) {
		r.includeOptional = include
	}
}

// WithVerbose reports progress at Info instead of Debug.
func WithVerbose(verbose bool) Option {
	return func(r *Resolver) {
		r.verbose = verbose
	}
}

// WithLogger sets the logger. A nil logger means slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = l
	}
}

// WithSink sets the sink that receives resolved artifacts.
func WithSink(s Sink) Option {
	return func(r *Resolver) {
		r.sink = s
	}
}

// WithRepositories sets the repositories used by ResolveFromDescriptor ahead
// of the descriptor's own declarations.
func WithRepositories(repos ...repository.Repository) Option {
	return func(r *Resolver) {
		r.repos = repos
	}
}

// WithRepositoryFactory sets how repositories declared in descriptors are built.
func WithRepositoryFactory(f RepositoryFactory) Option {
	return func(r *Resolver) {
		r.newRepository = f
	}
}
