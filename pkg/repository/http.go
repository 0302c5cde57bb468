// SPDX-License-Identifier: MPL-2.0

package repository

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/depfetch/depfetch/pkg/artifact"
)

// maxMetadataBytes is the upper bound on a version index download (10 MB).
const maxMetadataBytes = 10 << 20

// HTTP is a remote repository reached over HTTP or HTTPS.
type HTTP struct {
	base       *url.URL
	location   string
	username   string
	password   string
	userAgent  string
	httpClient *http.Client
}

func newHTTP(u *url.URL, spec Spec, o options) *HTTP {
	base := *u
	base.Path = strings.TrimRight(base.Path, "/")

	username, password := spec.Username, spec.Password
	if username == "" && base.User != nil {
		username = base.User.Username()
		password, _ = base.User.Password()
	}

	client := o.httpClient
	if client == nil {
		client = &http.Client{Timeout: o.timeout}
	}

	return &HTTP{
		base:       &base,
		location:   redactURL(&base),
		username:   username,
		password:   password,
		userAgent:  o.userAgent,
		httpClient: client,
	}
}

// Location returns the base URL without credentials.
func (r *HTTP) Location() string { return r.location }

// LatestVersion downloads the artifact's maven-metadata.xml and reports its newest version.
func (r *HTTP) LatestVersion(ctx context.Context, c artifact.Coordinate) (string, error) {
	resp, err := r.get(ctx, c.MetadataPath())
	if err != nil {
		return "", fmt.Errorf("latest version of %s: %w", c, err)
	}
	defer func() { _ = resp.Body.Close() }() // read-only response body

	md, err := ParseMetadata(io.LimitReader(resp.Body, maxMetadataBytes))
	if err != nil {
		return "", fmt.Errorf("latest version of %s from %s: %w", c, r.location, err)
	}
	v, err := md.Newest()
	if err != nil {
		return "", fmt.Errorf("latest version of %s from %s: %w", c, r.location, err)
	}
	return v, nil
}

// Fetch streams the file at relPath into w.
func (r *HTTP) Fetch(ctx context.Context, relPath string, w io.Writer) error {
	resp, err := r.get(ctx, relPath)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }() // read-only response body

	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("download %s: %w", r.fileURL(relPath, true), err)
	}
	return nil
}

// get issues a GET for relPath and returns the response only when the status is 200.
func (r *HTTP) get(ctx context.Context, relPath string) (*http.Response, error) {
	reqURL := r.fileURL(relPath, false)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", r.userAgent)
	if r.username != "" {
		req.SetBasicAuth(r.username, r.password)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", r.fileURL(relPath, true), err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, &StatusError{URL: r.fileURL(relPath, true), StatusCode: resp.StatusCode}
	}
	return resp, nil
}

func (r *HTTP) fileURL(relPath string, redacted bool) string {
	u := *r.base
	u.User = nil
	u.Path = u.Path + "/" + strings.TrimLeft(relPath, "/")
	if redacted {
		return redactURL(&u)
	}
	return u.String()
}
