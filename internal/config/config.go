// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/spf13/viper"

	"github.com/depfetch/depfetch/internal/issue"
	"github.com/depfetch/depfetch/pkg/cueutil"
)

const (
	// AppName is the application name.
	AppName = "depfetch"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// EnvPrefix prefixes environment overrides, e.g. DEPFETCH_CACHE_DIR.
	EnvPrefix = "DEPFETCH"
)

//go:embed config_schema.cue
var configSchema string

// ConfigDir returns the depfetch configuration directory using platform-specific
// conventions: Windows uses %APPDATA%, macOS uses ~/Library/Application Support,
// and Linux/others use $XDG_CONFIG_HOME (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default:
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// loadWithOptions performs option-driven config loading without mutating
// package-level state.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	resolvedPath, err := locate(opts)
	if err != nil {
		return nil, err
	}
	if resolvedPath != "" {
		if err := loadCUEIntoViper(v, resolvedPath); err != nil {
			return nil, loadError(resolvedPath, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, loadError(resolvedPath, fmt.Errorf("failed to parse config: %w", err))
	}
	cfg.source = resolvedPath

	if valid, errs := cfg.IsValid(); !valid {
		return nil, issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(resolvedPath).
			WithSuggestion("Check DEPFETCH_* environment variables").
			WithSuggestion("Scopes must be compile, runtime, test, provided or system").
			WithIssue(issue.ConfigLoadFailedId).
			Wrap(errs[0]).
			BuildError()
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	defaults := DefaultConfig()

	repos := make([]map[string]any, 0, len(defaults.Repositories))
	for _, r := range defaults.Repositories {
		repos = append(repos, map[string]any{"id": r.ID, "url": r.URL})
	}

	v.SetDefault("cache_dir", string(defaults.CacheDir))
	v.SetDefault("scopes", defaults.Scopes)
	v.SetDefault("include_optional", defaults.IncludeOptional)
	v.SetDefault("verbose", defaults.Verbose)
	v.SetDefault("repositories", repos)
	v.SetDefault("http.timeout", defaults.HTTP.Timeout)
	v.SetDefault("http.user_agent", defaults.HTTP.UserAgent)
}

// locate returns the config file to read, or "" when none exists.
// An explicitly requested file must exist.
func locate(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Use 'depfetch config show' to see the default configuration").
				WithIssue(issue.ConfigLoadFailedId).
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		return opts.ConfigFilePath, nil
	}

	cfgDir, err := configDirWithOverride(opts.ConfigDirPath)
	if err != nil {
		return "", err
	}

	candidates := []string{
		filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt),
		filepath.Join(opts.BaseDir, ConfigFileName+"."+ConfigFileExt),
	}
	for _, path := range candidates {
		if fileExists(path) {
			return path, nil
		}
	}
	return "", nil
}

func loadError(path string, err error) error {
	return issue.NewErrorContext().
		WithOperation("load configuration").
		WithResource(path).
		WithSuggestion("Check that the file contains valid CUE syntax").
		WithSuggestion("Verify the configuration values match the expected schema").
		WithIssue(issue.ConfigLoadFailedId).
		Wrap(err).
		BuildError()
}

// configDirWithOverride resolves the configuration directory, honoring
// explicit provider options before platform defaults.
func configDirWithOverride(configDirPath string) (string, error) {
	if configDirPath != "" {
		return configDirPath, nil
	}

	return ConfigDir()
}

// loadCUEIntoViper parses a CUE file, validates it against the #Config schema,
// and merges its contents into Viper.
//
// This does not use cueutil.ParseAndDecode: the result is merged into Viper as
// a map, and validation is not concrete because every field is optional.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := cueutil.CheckFileSize(data, cueutil.DefaultMaxFileSize, path); err != nil {
		return err
	}

	ctx := cuecontext.New()

	schemaValue := ctx.CompileString(configSchema)
	if schemaValue.Err() != nil {
		return fmt.Errorf("internal error: failed to compile config schema: %w", schemaValue.Err())
	}

	userValue := ctx.CompileBytes(data, cue.Filename(path))
	if userValue.Err() != nil {
		return cueutil.FormatError(userValue.Err(), path)
	}

	schema := schemaValue.LookupPath(cue.ParsePath("#Config"))
	unified := schema.Unify(userValue)
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return cueutil.FormatError(err, path)
	}

	var configMap map[string]any
	if err := unified.Decode(&configMap); err != nil {
		return cueutil.FormatError(err, path)
	}

	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}

	return nil
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// Save writes cfg to the config file in the configuration directory.
func Save(cfg *Config) (string, error) {
	cfgDir, err := ConfigDir()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	cfgPath := filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt)
	if err := os.WriteFile(cfgPath, []byte(GenerateCUE(cfg)), 0o600); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}

	return cfgPath, nil
}

// GenerateCUE generates a CUE representation of the configuration.
// Passwords are written as-is; callers displaying the result should use Redacted.
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// depfetch configuration file\n\n")

	fmt.Fprintf(&sb, "cache_dir: %q\n", cfg.CacheDir)

	quoted := make([]string, len(cfg.Scopes))
	for i, s := range cfg.Scopes {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	fmt.Fprintf(&sb, "scopes: [%s]\n", strings.Join(quoted, ", "))
	fmt.Fprintf(&sb, "include_optional: %v\n", cfg.IncludeOptional)
	fmt.Fprintf(&sb, "verbose: %v\n", cfg.Verbose)

	if len(cfg.Repositories) > 0 {
		sb.WriteString("\nrepositories: [\n")
		for _, r := range cfg.Repositories {
			fields := []string{}
			if r.ID != "" {
				fields = append(fields, fmt.Sprintf("id: %q", r.ID))
			}
			fields = append(fields, fmt.Sprintf("url: %q", r.URL))
			if r.Username != "" {
				fields = append(fields, fmt.Sprintf("username: %q", r.Username))
			}
			if r.Password != "" {
				fields = append(fields, fmt.Sprintf("password: %q", r.Password))
			}
			fmt.Fprintf(&sb, "\t{%s},\n", strings.Join(fields, ", "))
		}
		sb.WriteString("]\n")
	}

	sb.WriteString("\nhttp: {\n")
	fmt.Fprintf(&sb, "\ttimeout: %q\n", cfg.HTTP.Timeout.String())
	fmt.Fprintf(&sb, "\tuser_agent: %q\n", cfg.HTTP.UserAgent)
	sb.WriteString("}\n")

	return sb.String()
}

// Redacted returns a copy of cfg with repository passwords masked.
func Redacted(cfg *Config) *Config {
	out := *cfg
	out.Repositories = make([]RepositoryConfig, len(cfg.Repositories))
	for i, r := range cfg.Repositories {
		if r.Password != "" {
			r.Password = "xxxxx"
		}
		out.Repositories[i] = r
	}
	return &out
}
