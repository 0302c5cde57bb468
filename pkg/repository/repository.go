// SPDX-License-Identifier: MPL-2.0

package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/depfetch/depfetch/pkg/artifact"
)

// CentralURL is the repository used when nothing else is configured.
const CentralURL = "https://repo1.maven.org/maven2"

var (
	// ErrNotFound is returned when the requested file does not exist in the repository.
	ErrNotFound = errors.New("not found in repository")
	// ErrUnexpectedStatus is returned for HTTP responses other than 200 and 404.
	ErrUnexpectedStatus = errors.New("unexpected repository response")
	// ErrNoVersions is returned when a version index lists no usable version.
	ErrNoVersions = errors.New("no versions available")
	// ErrUnsupportedScheme is returned by New for URL schemes other than http, https and file.
	ErrUnsupportedScheme = errors.New("unsupported repository scheme")
)

type (
	// Repository is a source of descriptors and artifacts.
	Repository interface {
		// Location identifies the repository in logs and errors. Credentials are never included.
		Location() string
		// LatestVersion reports the newest version published for c.
		LatestVersion(ctx context.Context, c artifact.Coordinate) (string, error)
		// Fetch streams the file at the slash-separated relative path into w.
		Fetch(ctx context.Context, relPath string, w io.Writer) error
	}

	// Spec describes a repository endpoint as configured or declared in a descriptor.
	Spec struct {
		ID       string
		URL      string
		Username string
		Password string
	}

	// StatusError records an HTTP response that could not be used.
	StatusError struct {
		URL        string
		StatusCode int
	}

	// Option configures repositories built by New.
	Option func(*options)

	options struct {
		httpClient *http.Client
		userAgent  string
		timeout    time.Duration
	}
)

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// Unwrap returns ErrNotFound for 404 and 410 responses and ErrUnexpectedStatus otherwise.
func (e *StatusError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound || e.StatusCode == http.StatusGone {
		return ErrNotFound
	}
	return ErrUnexpectedStatus
}

// WithHTTPClient sets the client used by HTTP repositories.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

// WithUserAgent sets the User-Agent header sent by HTTP repositories.
func WithUserAgent(ua string) Option {
	return func(o *options) {
		o.userAgent = ua
	}
}

// WithTimeout bounds each HTTP request. It is ignored when WithHTTPClient is also given.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// New builds a repository for spec. http and https URLs produce an HTTP
// repository; file URLs and plain paths produce a local directory repository.
func New(spec Spec, opts ...Option) (Repository, error) {
	raw := strings.TrimSpace(spec.URL)
	if raw == "" {
		return nil, fmt.Errorf("repository %q: url is required", spec.ID)
	}

	o := options{userAgent: "depfetch"}
	for _, opt := range opts {
		opt(&o)
	}

	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || isWindowsDrive(u.Scheme) {
		return NewLocal(raw), nil //nolint:nilerr // Unparseable URLs are treated as filesystem paths.
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return newHTTP(u, spec, o), nil
	case "file":
		return NewLocal(filepath.FromSlash(u.Path)), nil
	default:
		return nil, fmt.Errorf("repository %q: %w %q", raw, ErrUnsupportedScheme, u.Scheme)
	}
}

// Central returns the default public repository.
func Central(opts ...Option) Repository {
	r, _ := New(Spec{ID: "central", URL: CentralURL}, opts...) //nolint:errcheck // Constant URL always parses.
	return r
}

func isWindowsDrive(scheme string) bool {
	return len(scheme) == 1
}

// redactURL strips credentials, query parameters and fragments for safe logging.
func redactURL(u *url.URL) string {
	c := *u
	c.User = nil
	c.RawQuery = ""
	c.Fragment = ""
	return c.String()
}
