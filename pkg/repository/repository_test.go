// SPDX-License-Identifier: MPL-2.0

package repository

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/depfetch/depfetch/pkg/artifact"
)

var gson = artifact.Coordinate{Group: "com.google.code.gson", Artifact: "gson"}

const gsonMetadata = `<metadata>
  <groupId>com.google.code.gson</groupId>
  <artifactId>gson</artifactId>
  <versioning>
    <latest>2.11.0-SNAPSHOT</latest>
    <release>2.10.1</release>
    <versions><version>2.9.0</version><version>2.10.1</version></versions>
  </versioning>
</metadata>`

func TestMetadataNewest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		doc     string
		want    string
		wantErr error
	}{
		{name: "release wins", doc: gsonMetadata, want: "2.10.1"},
		{
			name: "latest without release",
			doc:  `<metadata><versioning><latest>3.0</latest></versioning></metadata>`,
			want: "3.0",
		},
		{
			name: "highest listed",
			doc:  `<metadata><versioning><versions><version>1.10</version><version>1.9</version><version>1.2</version></versions></versioning></metadata>`,
			want: "1.10",
		},
		{
			name:    "nothing listed",
			doc:     `<metadata><versioning/></metadata>`,
			wantErr: ErrNoVersions,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			md, err := ParseMetadata(strings.NewReader(tt.doc))
			if err != nil {
				t.Fatalf("ParseMetadata() unexpected error: %v", err)
			}
			got, err := md.Newest()
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Newest() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Newest() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Newest() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHTTPRepository(t *testing.T) {
	t.Parallel()

	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if user, pass, ok := r.BasicAuth(); !ok || user != "deploy" || pass != "s3cret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if got := r.Header.Get("User-Agent"); got != "depfetch-test" {
			t.Errorf("User-Agent = %q", got)
		}
		switch r.URL.Path {
		case "/maven2/com/google/code/gson/gson/maven-metadata.xml":
			_, _ = w.Write([]byte(gsonMetadata))
		case "/maven2/com/google/code/gson/gson/2.10.1/gson-2.10.1.jar":
			_, _ = w.Write([]byte("jar-bytes"))
		case "/maven2/broken":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	repo, err := New(Spec{ID: "test", URL: srv.URL + "/maven2/", Username: "deploy", Password: "s3cret"},
		WithUserAgent("depfetch-test"))
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}
	if _, ok := repo.(*HTTP); !ok {
		t.Fatalf("New() = %T, want *HTTP", repo)
	}
	if repo.Location() != srv.URL+"/maven2" {
		t.Errorf("Location() = %q", repo.Location())
	}

	ctx := context.Background()

	v, err := repo.LatestVersion(ctx, gson)
	if err != nil {
		t.Fatalf("LatestVersion() unexpected error: %v", err)
	}
	if v != "2.10.1" {
		t.Errorf("LatestVersion() = %q, want 2.10.1", v)
	}

	var buf bytes.Buffer
	if err := repo.Fetch(ctx, gson.ArtifactPath("2.10.1"), &buf); err != nil {
		t.Fatalf("Fetch() unexpected error: %v", err)
	}
	if buf.String() != "jar-bytes" {
		t.Errorf("Fetch() wrote %q", buf.String())
	}

	err = repo.Fetch(ctx, gson.ArtifactPath("9.9"), &buf)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Fetch(missing) error = %v, want ErrNotFound", err)
	}

	err = repo.Fetch(ctx, "broken", &buf)
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("Fetch(broken) error = %v, want StatusError 500", err)
	}
	if !errors.Is(err, ErrUnexpectedStatus) {
		t.Errorf("Fetch(broken) error should wrap ErrUnexpectedStatus")
	}

	if got := requests.Load(); got != 4 {
		t.Errorf("server saw %d requests, want 4", got)
	}
}

func TestHTTPRepositoryRedactsCredentials(t *testing.T) {
	t.Parallel()

	repo, err := New(Spec{URL: "https://user:pw@repo.example.org/maven2"})
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}
	if strings.Contains(repo.Location(), "pw") {
		t.Errorf("Location() leaked credentials: %q", repo.Location())
	}
	h := repo.(*HTTP)
	if h.username != "user" || h.password != "pw" {
		t.Errorf("credentials from URL not used: %q/%q", h.username, h.password)
	}
}

func TestNewSchemes(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	tests := []struct {
		url     string
		local   bool
		wantErr error
	}{
		{url: dir, local: true},
		{url: "file://" + filepath.ToSlash(dir), local: true},
		{url: "https://repo1.maven.org/maven2"},
		{url: "ftp://example.org/repo", wantErr: ErrUnsupportedScheme},
	}

	for _, tt := range tests {
		repo, err := New(Spec{URL: tt.url})
		if tt.wantErr != nil {
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("New(%q) error = %v, want %v", tt.url, err, tt.wantErr)
			}
			continue
		}
		if err != nil {
			t.Errorf("New(%q) unexpected error: %v", tt.url, err)
			continue
		}
		if _, isLocal := repo.(*Local); isLocal != tt.local {
			t.Errorf("New(%q) = %T", tt.url, repo)
		}
	}

	if _, err := New(Spec{ID: "empty"}); err == nil {
		t.Error("New() with empty URL should fail")
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLocalRepository(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	for _, v := range []string{"1.9", "1.10", "2.0-beta"} {
		writeFile(t, filepath.Join(root, filepath.FromSlash(gson.DescriptorPath(v))), "<project/>")
	}
	// A version directory without a descriptor is not a candidate.
	if err := os.MkdirAll(filepath.Join(root, filepath.FromSlash(gson.VersionDir("3.0"))), 0o755); err != nil {
		t.Fatal(err)
	}

	repo := NewLocal(root)
	ctx := context.Background()

	v, err := repo.LatestVersion(ctx, gson)
	if err != nil {
		t.Fatalf("LatestVersion() unexpected error: %v", err)
	}
	if v != "2.0-beta" {
		t.Errorf("LatestVersion() = %q, want 2.0-beta", v)
	}

	writeFile(t, filepath.Join(root, filepath.FromSlash(gson.ArtifactDir()), "maven-metadata-local.xml"),
		`<metadata><versioning><release>1.9</release></versioning></metadata>`)
	v, err = repo.LatestVersion(ctx, gson)
	if err != nil {
		t.Fatalf("LatestVersion() unexpected error: %v", err)
	}
	if v != "1.9" {
		t.Errorf("LatestVersion() with local index = %q, want 1.9", v)
	}

	_, err = repo.LatestVersion(ctx, artifact.Coordinate{Group: "no", Artifact: "such"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("LatestVersion(missing) error = %v, want ErrNotFound", err)
	}

	var buf bytes.Buffer
	if err := repo.Fetch(ctx, gson.DescriptorPath("1.9"), &buf); err != nil {
		t.Fatalf("Fetch() unexpected error: %v", err)
	}
	if buf.String() != "<project/>" {
		t.Errorf("Fetch() wrote %q", buf.String())
	}
	if err := repo.Fetch(ctx, gson.ArtifactPath("1.9"), &buf); !errors.Is(err, ErrNotFound) {
		t.Errorf("Fetch(missing) error = %v, want ErrNotFound", err)
	}
}
