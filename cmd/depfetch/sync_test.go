// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/depfetch/depfetch/pkg/manifest"
)

func writeManifest(t *testing.T, dir, appVersion string) string {
	t.Helper()

	path := filepath.Join(dir, manifest.FileName)
	content := `dependencies: [
	{group: "org.example", artifact: "app", version: "` + appVersion + `"},
]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}
	return path
}

func TestSyncMaintainsLockFile(t *testing.T) {
	t.Parallel()

	repo := newLocalRepo(t)
	repo.publishChain()
	repo.publish("org.example:app:1.1", "org.example:lib:2.0")

	projectDir := t.TempDir()
	manifestPath := writeManifest(t, projectDir, "1.0")
	lockPath := filepath.Join(projectDir, manifest.LockFileName)
	cfg := testConfig(t.TempDir(), repo.dir)

	res := runCLI(t, cfg, "sync", "--manifest", manifestPath, "-o", "classpath")
	requireSuccess(t, res)
	if !strings.Contains(res.stderr, "Wrote "+lockPath) {
		t.Errorf("first sync should write the lock file:\n%s", res.stderr)
	}
	if got := strings.Count(res.stdout, string(os.PathListSeparator)); got != 2 {
		t.Errorf("classpath %q should hold three entries", res.stdout)
	}

	lock, err := manifest.LoadLockFile(lockPath)
	if err != nil {
		t.Fatalf("LoadLockFile() failed: %v", err)
	}
	wantKeys := []string{"org.example:app", "org.example:core", "org.example:lib"}
	if !slices.Equal(lock.Keys(), wantKeys) {
		t.Errorf("lock keys = %v, want %v", lock.Keys(), wantKeys)
	}

	t.Run("unchanged", func(t *testing.T) {
		res := runCLI(t, cfg, "sync", "--manifest", manifestPath)
		requireSuccess(t, res)
		if strings.Contains(res.stderr, "Wrote") {
			t.Errorf("unchanged sync should not rewrite the lock file:\n%s", res.stderr)
		}
	})

	t.Run("drift", func(t *testing.T) {
		writeManifest(t, projectDir, "1.1")

		res := runCLI(t, cfg, "sync", "--manifest", manifestPath)
		requireExit(t, res, 1)
		if !errors.Is(res.err, ErrLockDrift) {
			t.Errorf("errors.Is(%v, ErrLockDrift) = false", res.err)
		}
		for _, want := range []string{"org.example:app 1.0 -> 1.1", "Lock file out of date!"} {
			if !strings.Contains(res.stderr, want) {
				t.Errorf("stderr missing %q:\n%s", want, res.stderr)
			}
		}
	})

	t.Run("update", func(t *testing.T) {
		res := runCLI(t, cfg, "sync", "--manifest", manifestPath, "--update")
		requireSuccess(t, res)

		lock, err := manifest.LoadLockFile(lockPath)
		if err != nil {
			t.Fatalf("LoadLockFile() failed: %v", err)
		}
		if app, _ := lock.Get("org.example:app"); app.Version != "1.1" {
			t.Errorf("locked app version = %q, want 1.1", app.Version)
		}
	})
}

func TestSyncExplicitLockPath(t *testing.T) {
	t.Parallel()

	repo := newLocalRepo(t)
	repo.publishChain()

	manifestPath := writeManifest(t, t.TempDir(), "1.0")
	lockPath := filepath.Join(t.TempDir(), "nested", "deps.lock.cue")

	res := runCLI(t, testConfig(t.TempDir(), repo.dir), "sync", "--manifest", manifestPath, "--lock", lockPath)
	requireSuccess(t, res)
	if _, err := os.Stat(lockPath); err != nil {
		t.Errorf("lock file not written at %s: %v", lockPath, err)
	}
}

func TestSyncErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	invalid := filepath.Join(dir, "invalid.cue")
	if err := os.WriteFile(invalid, []byte(`dependencies: [{group: "org.example"}]`), 0o644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}

	tests := []struct {
		name       string
		manifest   string
		wantStderr string
		wantIs     error
	}{
		{name: "missing", manifest: filepath.Join(dir, "absent.cue"), wantStderr: "No manifest found!", wantIs: manifest.ErrNotFound},
		{name: "invalid", manifest: invalid, wantStderr: "Failed to parse manifest!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res := runCLI(t, testConfig(t.TempDir(), t.TempDir()), "sync", "--manifest", tt.manifest)
			requireExit(t, res, 1)
			if !strings.Contains(res.stderr, tt.wantStderr) {
				t.Errorf("stderr missing %q:\n%s", tt.wantStderr, res.stderr)
			}
			if tt.wantIs != nil && !errors.Is(res.err, tt.wantIs) {
				t.Errorf("errors.Is(%v, %v) = false", res.err, tt.wantIs)
			}
		})
	}
}
