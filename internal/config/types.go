// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/depfetch/depfetch/pkg/artifact"
	"github.com/depfetch/depfetch/pkg/repository"
)

const (
	// DefaultCacheDir is the cache directory used when none is configured.
	DefaultCacheDir = "libs"
	// DefaultTimeout bounds a single repository request.
	DefaultTimeout = 60 * time.Second
	// DefaultUserAgent is sent with every HTTP request.
	DefaultUserAgent = "depfetch"
)

var (
	// ErrInvalidCacheDirPath is returned when a CacheDirPath value is whitespace-only.
	ErrInvalidCacheDirPath = errors.New("invalid cache dir path")
	// ErrInvalidRepositoryConfig is the sentinel error wrapped by InvalidRepositoryConfigError.
	ErrInvalidRepositoryConfig = errors.New("invalid repository config")
	// ErrInvalidHTTPConfig is the sentinel error wrapped by InvalidHTTPConfigError.
	ErrInvalidHTTPConfig = errors.New("invalid http config")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// CacheDirPath is the directory holding downloaded descriptors and artifacts.
	// The zero value means DefaultCacheDir.
	CacheDirPath string

	// InvalidCacheDirPathError is returned when a CacheDirPath value is
	// non-empty but whitespace-only.
	InvalidCacheDirPathError struct {
		Value CacheDirPath
	}

	// InvalidRepositoryConfigError is returned when a repository entry has no URL.
	InvalidRepositoryConfigError struct {
		Index int
		URL   string
	}

	// InvalidHTTPConfigError is returned when HTTP settings are out of range.
	InvalidHTTPConfigError struct {
		Timeout time.Duration
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// RepositoryConfig is one configured repository.
	RepositoryConfig struct {
		ID       string `json:"id,omitempty" mapstructure:"id"`
		URL      string `json:"url" mapstructure:"url"`
		Username string `json:"username,omitempty" mapstructure:"username"`
		Password string `json:"password,omitempty" mapstructure:"password"`
	}

	// HTTPConfig configures the HTTP repository client.
	HTTPConfig struct {
		// Timeout bounds each request; zero disables the limit.
		Timeout   time.Duration `json:"timeout" mapstructure:"timeout"`
		UserAgent string        `json:"user_agent" mapstructure:"user_agent"`
	}

	// Config holds the application configuration.
	Config struct {
		// CacheDir is where resolved files are stored.
		CacheDir CacheDirPath `json:"cache_dir" mapstructure:"cache_dir"`
		// Scopes lists the dependency scopes followed transitively.
		Scopes []string `json:"scopes" mapstructure:"scopes"`
		// IncludeOptional follows dependencies marked optional.
		IncludeOptional bool `json:"include_optional" mapstructure:"include_optional"`
		// Verbose reports resolution progress at info level.
		Verbose bool `json:"verbose" mapstructure:"verbose"`
		// Repositories are tried in order.
		Repositories []RepositoryConfig `json:"repositories" mapstructure:"repositories"`
		HTTP         HTTPConfig         `json:"http" mapstructure:"http"`

		source string
	}
)

// String returns the string representation of the CacheDirPath.
func (p CacheDirPath) String() string { return string(p) }

// IsValid returns whether the CacheDirPath is valid.
// The zero value ("") is valid (means "use default cache directory").
// Non-zero values must not be whitespace-only.
func (p CacheDirPath) IsValid() (bool, []error) {
	if p == "" {
		return true, nil
	}
	if strings.TrimSpace(string(p)) == "" {
		return false, []error{&InvalidCacheDirPathError{Value: p}}
	}
	return true, nil
}

// Error implements the error interface for InvalidCacheDirPathError.
func (e *InvalidCacheDirPathError) Error() string {
	return fmt.Sprintf("invalid cache dir path %q: non-empty value must not be whitespace-only", e.Value)
}

// Unwrap returns ErrInvalidCacheDirPath for errors.Is() compatibility.
func (e *InvalidCacheDirPathError) Unwrap() error { return ErrInvalidCacheDirPath }

// Error implements the error interface for InvalidRepositoryConfigError.
func (e *InvalidRepositoryConfigError) Error() string {
	return fmt.Sprintf("repositories[%d]: invalid url %q", e.Index, e.URL)
}

// Unwrap returns ErrInvalidRepositoryConfig for errors.Is() compatibility.
func (e *InvalidRepositoryConfigError) Unwrap() error { return ErrInvalidRepositoryConfig }

// Error implements the error interface for InvalidHTTPConfigError.
func (e *InvalidHTTPConfigError) Error() string {
	return fmt.Sprintf("invalid http timeout %s: must not be negative", e.Timeout)
}

// Unwrap returns ErrInvalidHTTPConfig for errors.Is() compatibility.
func (e *InvalidHTTPConfigError) Unwrap() error { return ErrInvalidHTTPConfig }

// IsValid returns whether the HTTPConfig has valid fields.
func (c HTTPConfig) IsValid() (bool, []error) {
	if c.Timeout < 0 {
		return false, []error{&InvalidHTTPConfigError{Timeout: c.Timeout}}
	}
	return true, nil
}

// IsValid returns whether the Config has valid fields.
// It checks the cache path, every scope name, every repository URL and the HTTP settings.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.CacheDir.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	for _, s := range c.Scopes {
		if _, err := artifact.ParseScope(s); err != nil {
			errs = append(errs, err)
		}
	}
	for i, r := range c.Repositories {
		if strings.TrimSpace(r.URL) == "" {
			errs = append(errs, &InvalidRepositoryConfigError{Index: i, URL: r.URL})
		}
	}
	if valid, fieldErrs := c.HTTP.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidConfig followed by the field errors, so errors.Is
// matches both the sentinel and each field's own sentinel.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

// Source returns the file the configuration was read from, or "" when only
// defaults and environment variables applied.
func (c *Config) Source() string { return c.source }

// CacheDirOrDefault returns the configured cache directory or DefaultCacheDir.
func (c *Config) CacheDirOrDefault() string {
	if c.CacheDir == "" {
		return DefaultCacheDir
	}
	return string(c.CacheDir)
}

// ScopeSet parses the configured scopes. An empty list yields the default set.
func (c *Config) ScopeSet() (artifact.ScopeSet, error) {
	if len(c.Scopes) == 0 {
		return artifact.DefaultScopes(), nil
	}
	return artifact.ParseScopeSet(c.Scopes)
}

// RepositorySpecs returns the configured repositories in order.
func (c *Config) RepositorySpecs() []repository.Spec {
	specs := make([]repository.Spec, 0, len(c.Repositories))
	for _, r := range c.Repositories {
		specs = append(specs, repository.Spec(r))
	}
	return specs
}

// RepositoryOptions returns the client options derived from the HTTP settings.
func (c *Config) RepositoryOptions() []repository.Option {
	var opts []repository.Option
	if c.HTTP.Timeout > 0 {
		opts = append(opts, repository.WithTimeout(c.HTTP.Timeout))
	}
	if c.HTTP.UserAgent != "" {
		opts = append(opts, repository.WithUserAgent(c.HTTP.UserAgent))
	}
	return opts
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		CacheDir:        DefaultCacheDir,
		Scopes:          []string{string(artifact.ScopeRuntime), string(artifact.ScopeCompile)},
		IncludeOptional: false,
		Verbose:         true,
		Repositories: []RepositoryConfig{
			{ID: "central", URL: repository.CentralURL},
		},
		HTTP: HTTPConfig{
			Timeout:   DefaultTimeout,
			UserAgent: DefaultUserAgent,
		},
	}
}
