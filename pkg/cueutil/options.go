// SPDX-License-Identifier: MPL-2.0

package cueutil

// DefaultMaxFileSize is the default maximum document size (5MB).
const DefaultMaxFileSize int64 = 5 * 1024 * 1024

type (
	parseOptions struct {
		maxFileSize int64
		concrete    bool
		filename    string
	}

	// Option configures parsing behavior.
	Option func(*parseOptions)
)

func defaultOptions() parseOptions {
	return parseOptions{
		maxFileSize: DefaultMaxFileSize,
		concrete:    true,
	}
}

// WithMaxFileSize sets the maximum allowed document size.
func WithMaxFileSize(size int64) Option {
	return func(o *parseOptions) {
		o.maxFileSize = size
	}
}

// WithConcrete sets whether all values must be concrete after unification.
// Default is true.
func WithConcrete(concrete bool) Option {
	return func(o *parseOptions) {
		o.concrete = concrete
	}
}

// WithFilename sets the file name used in error messages.
func WithFilename(name string) Option {
	return func(o *parseOptions) {
		o.filename = name
	}
}
