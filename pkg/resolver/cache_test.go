// SPDX-License-Identifier: MPL-2.0

package resolver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/depfetch/depfetch/pkg/artifact"
	"github.com/depfetch/depfetch/pkg/repository"
)

func TestCacheInstalledVersions(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, v := range []string{"1.2", "1.10", "1.10-beta"} {
		seedCache(t, dir, depA.WithVersion(v))
	}
	// An empty version directory is not an installed version.
	if err := os.MkdirAll(filepath.Join(dir, filepath.FromSlash(depA.VersionDir("9.0"))), 0o755); err != nil {
		t.Fatal(err)
	}
	// Neither is a jar-packaged descriptor whose artifact never arrived.
	partial := depA.WithVersion("3.0")
	writeCached(t, dir, partial.DescriptorPath(), descriptor(partial, ""))
	// A pom-packaged descriptor needs no artifact.
	aggregator := depA.WithVersion("2.0")
	writeCached(t, dir, aggregator.DescriptorPath(), descriptor(aggregator, "pom"))

	cache := NewCache(dir)
	got, err := cache.InstalledVersions(depA.Coordinate)
	if err != nil {
		t.Fatalf("InstalledVersions() unexpected error: %v", err)
	}
	var vs []string
	for _, v := range got {
		vs = append(vs, v.String())
	}
	if strings.Join(vs, ",") != "2.0,1.10,1.10-beta,1.2" {
		t.Errorf("InstalledVersions() = %v, want [2.0 1.10 1.10-beta 1.2]", vs)
	}

	none, err := cache.InstalledVersions(depB.Coordinate)
	if err != nil || len(none) != 0 {
		t.Errorf("InstalledVersions(uncached) = %v, %v", none, err)
	}
}

// writeCached stores content at rel under cacheDir with a matching sidecar.
func writeCached(t *testing.T, cacheDir, rel, content string) {
	t.Helper()

	p := NewCache(cacheDir).Path(rel)
	if err := writeFileAtomic(p, []byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := writeFileAtomic(p+artifact.ExtChecksum, []byte(sha1Hex([]byte(content)))); err != nil {
		t.Fatal(err)
	}
}

func TestCacheLookup(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	seedCache(t, dir, depB)
	cache := NewCache(dir)

	project, ok := cache.Lookup(depB)
	if !ok {
		t.Fatal("Lookup() missed a complete cache entry")
	}
	if project.EffectiveArtifactID() != "b" || project.EffectiveVersion() != "2.0" {
		t.Errorf("Lookup() project = %s@%s", project.EffectiveArtifactID(), project.EffectiveVersion())
	}

	if _, ok := cache.Lookup(depB.WithVersion("9.9")); ok {
		t.Error("Lookup() hit a version that is not cached")
	}

	if err := os.WriteFile(cache.Path(depB.ArtifactPath()), []byte("tampered"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, ok := cache.Lookup(depB); ok {
		t.Error("Lookup() hit an artifact that no longer matches its sidecar")
	}
}

func TestCacheEntries(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	seedCache(t, dir, depB)
	seedCache(t, dir, depA.WithVersion("1.10"))
	seedCache(t, dir, depA.WithVersion("1.9"))

	entries, err := NewCache(dir).Entries()
	if err != nil {
		t.Fatalf("Entries() unexpected error: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("Entries() = %d, want 3", len(entries))
	}
	want := []struct{ coord, version string }{
		{"org.example:a", "1.9"},
		{"org.example:a", "1.10"},
		{"org.example:b", "2.0"},
	}
	for i, w := range want {
		if entries[i].Coordinate.String() != w.coord || entries[i].Version != w.version {
			t.Errorf("entry %d = %s@%s, want %s@%s", i, entries[i].Coordinate, entries[i].Version, w.coord, w.version)
		}
		if entries[i].ArtifactFile == "" {
			t.Errorf("entry %d has no artifact path", i)
		}
	}

	missing, err := NewCache(filepath.Join(dir, "absent")).Entries()
	if err != nil || len(missing) != 0 {
		t.Errorf("Entries() on missing root = %v, %v", missing, err)
	}
}

func TestCacheVerify(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	seedCache(t, dir, depA)
	seedCache(t, dir, depB)

	cache := NewCache(dir)
	jar := cache.Path(depB.ArtifactPath())
	if err := os.WriteFile(jar, []byte("corrupted"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(cache.Path(depA.DescriptorPath()) + artifact.ExtChecksum); err != nil {
		t.Fatal(err)
	}

	results, err := cache.Verify(context.Background(), 4)
	if err != nil {
		t.Fatalf("Verify() unexpected error: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("Verify() returned %d results, want 4", len(results))
	}

	status := map[string]string{}
	for _, r := range results {
		status[r.Path] = r.Status
	}
	if got := status[jar]; got != "mismatch" {
		t.Errorf("corrupted jar status = %q, want mismatch", got)
	}
	if got := status[cache.Path(depA.DescriptorPath())]; got != "missing sidecar" {
		t.Errorf("descriptor without sidecar status = %q", got)
	}
	if got := status[cache.Path(depA.ArtifactPath())]; got != "ok" {
		t.Errorf("intact jar status = %q, want ok", got)
	}
}

func TestCacheVerifyCanceled(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	seedCache(t, dir, depA)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewCache(dir).Verify(ctx, 1); !errors.Is(err, context.Canceled) {
		t.Errorf("Verify() error = %v, want context.Canceled", err)
	}
}

func TestParseSidecar(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"ABCDEF0123\n", "abcdef0123"},
		{"abcdef0123  gson-2.10.1.jar\n", "abcdef0123"},
		{"   ", ""},
	}
	for _, tt := range tests {
		if got := parseSidecar([]byte(tt.in)); got != tt.want {
			t.Errorf("parseSidecar(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDownloadErrorMessage(t *testing.T) {
	t.Parallel()

	err := &DownloadError{
		Operation:  OpFetch,
		Dependency: depA,
		Causes: []RepositoryFailure{
			{Repository: "https://one.example", Err: repository.ErrNotFound},
			{Repository: "https://two.example", Err: errors.New("connection refused")},
		},
	}
	want := "unable to download org.example:a@1.0\n" +
		"  - https://one.example: not found in repository\n" +
		"  - https://two.example: connection refused"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, repository.ErrNotFound) {
		t.Error("errors.Is should see the first cause")
	}

	empty := &DownloadError{Operation: OpVersionLookup, Dependency: depA.WithVersion("")}
	if !strings.Contains(empty.Error(), ErrNoRepositories.Error()) {
		t.Errorf("Error() without causes = %q", empty.Error())
	}
}

func TestSession(t *testing.T) {
	t.Parallel()

	s := NewSession()
	if s.IsResolved(depA.Coordinate) {
		t.Error("new session reports a resolved coordinate")
	}
	if !s.MarkResolved(depA.Coordinate) {
		t.Error("first MarkResolved() = false")
	}
	if s.MarkResolved(depA.WithVersion("2").Coordinate) {
		t.Error("MarkResolved() of the same coordinate = true")
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}
