// SPDX-License-Identifier: MPL-2.0

package config

import "context"

type (
	// LoadOptions defines explicit configuration loading inputs.
	LoadOptions struct {
		// ConfigFilePath forces loading from a specific config file when set.
		ConfigFilePath string
		// ConfigDirPath overrides the config directory lookup when set.
		ConfigDirPath string
		// BaseDir is searched for config.cue after the config directory.
		// Empty means the current directory.
		BaseDir string
	}

	// Provider loads configuration from explicit options.
	Provider interface {
		Load(ctx context.Context, opts LoadOptions) (*Config, error)
	}

	// ProviderFunc adapts a plain function to Provider.
	ProviderFunc func(ctx context.Context, opts LoadOptions) (*Config, error)
)

// Load calls f.
func (f ProviderFunc) Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	return f(ctx, opts)
}

// NewProvider returns the provider that reads config.cue files and
// DEPFETCH_* environment variables.
func NewProvider() Provider {
	return ProviderFunc(loadWithOptions)
}

// Static returns a provider that ignores its options and yields a copy of
// cfg, or err when err is non-nil.
func Static(cfg *Config, err error) Provider {
	return ProviderFunc(func(context.Context, LoadOptions) (*Config, error) {
		if err != nil {
			return nil, err
		}
		c := *cfg
		return &c, nil
	})
}
