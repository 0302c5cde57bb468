// SPDX-License-Identifier: MPL-2.0

// Package config handles depfetch configuration using Viper with CUE as the file format.
//
// Configuration is loaded from config.cue in the depfetch configuration directory
// ($XDG_CONFIG_HOME/depfetch on Linux, ~/Library/Application Support/depfetch on
// macOS, %APPDATA%\depfetch on Windows), falling back to ./config.cue. Values may be
// overridden with DEPFETCH_* environment variables, e.g. DEPFETCH_CACHE_DIR.
//
// Files are validated against the embedded config_schema.cue before they are merged
// over the defaults.
package config
