// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	_ "crypto/sha256"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/opencontainers/go-digest"

	"github.com/depfetch/depfetch/pkg/cueutil"
	"github.com/depfetch/depfetch/pkg/resolver"
)

// LockFileVersion is the format version written to new lock files.
const LockFileVersion = "1.0"

//go:embed lock_schema.cue
var lockSchema []byte

type (
	// LockFile is the depfetch.lock.cue file structure.
	LockFile struct {
		// Version is the lock file format version.
		Version string
		// Generated is when the lock file was written.
		Generated time.Time
		// Dependencies maps "group:artifact[:classifier]" to the locked entry.
		Dependencies map[string]Locked
	}

	// Locked is one pinned dependency. Path is relative to the cache root and
	// uses forward slashes.
	Locked struct {
		Version    string        `json:"version"`
		Scope      string        `json:"scope"`
		Packaging  string        `json:"packaging"`
		Path       string        `json:"path"`
		Digest     digest.Digest `json:"digest"`
		Repository string        `json:"repository,omitempty"`
	}

	// Drift is a lock entry whose cached file no longer matches.
	Drift struct {
		Key      string
		Path     string
		Expected digest.Digest
		// Actual is empty when the file could not be read.
		Actual digest.Digest
		Err    error
	}

	lockDocument struct {
		Version      string            `json:"version"`
		Generated    string            `json:"generated"`
		Dependencies map[string]Locked `json:"dependencies"`
	}
)

// NewLockFile creates an empty lock file.
func NewLockFile() *LockFile {
	return &LockFile{
		Version:      LockFileVersion,
		Generated:    time.Now().UTC(),
		Dependencies: make(map[string]Locked),
	}
}

// LoadLockFile reads the lock file at path. A missing file yields an empty lock file.
func LoadLockFile(path string) (*LockFile, error) {
	result, err := cueutil.ParseFile[lockDocument](lockSchema, path, "#Lock")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return NewLockFile(), nil
		}
		return nil, fmt.Errorf("failed to load lock file: %w", err)
	}

	doc := result.Value
	lock := &LockFile{
		Version:      doc.Version,
		Dependencies: doc.Dependencies,
	}
	if lock.Dependencies == nil {
		lock.Dependencies = make(map[string]Locked)
	}
	if t, err := time.Parse(time.RFC3339, doc.Generated); err == nil {
		lock.Generated = t
	}
	return lock, nil
}

// FromResult builds a lock file from a resolution. The digest covers the
// artifact, or the descriptor for dependencies that publish no artifact.
func FromResult(cacheRoot string, result *resolver.Result) (*LockFile, error) {
	lock := NewLockFile()
	for _, r := range result.LoadOrder() {
		path := r.ArtifactFile
		if path == "" {
			path = r.DescriptorFile
		}

		d, err := fileDigest(path)
		if err != nil {
			return nil, fmt.Errorf("failed to digest %s: %w", r.Dependency, err)
		}

		rel, err := filepath.Rel(cacheRoot, path)
		if err != nil {
			return nil, fmt.Errorf("failed to locate %s in cache: %w", path, err)
		}

		lock.Dependencies[r.Coordinate.String()] = Locked{
			Version:    r.Version,
			Scope:      r.EffectiveScope().String(),
			Packaging:  r.Packaging,
			Path:       filepath.ToSlash(rel),
			Digest:     d,
			Repository: r.Repository,
		}
	}
	return lock, nil
}

// Keys returns the locked coordinates in sorted order.
func (l *LockFile) Keys() []string {
	return slices.Sorted(maps.Keys(l.Dependencies))
}

// Get returns the entry locked for key.
func (l *LockFile) Get(key string) (Locked, bool) {
	e, ok := l.Dependencies[key]
	return e, ok
}

// Diff returns the keys whose version differs between l and other, plus
// keys present in only one of them, sorted.
func (l *LockFile) Diff(other *LockFile) []string {
	var changed []string
	for key, e := range l.Dependencies {
		o, ok := other.Dependencies[key]
		if !ok || o.Version != e.Version || o.Digest != e.Digest {
			changed = append(changed, key)
		}
	}
	for key := range other.Dependencies {
		if _, ok := l.Dependencies[key]; !ok {
			changed = append(changed, key)
		}
	}
	slices.Sort(changed)
	return changed
}

// Verify re-digests every locked file under cacheRoot and returns the entries that drifted.
func (l *LockFile) Verify(cacheRoot string) []Drift {
	var drift []Drift
	for _, key := range l.Keys() {
		e := l.Dependencies[key]
		path := filepath.Join(cacheRoot, filepath.FromSlash(e.Path))

		actual, err := fileDigest(path)
		if err != nil {
			drift = append(drift, Drift{Key: key, Path: path, Expected: e.Digest, Err: err})
			continue
		}
		if actual != e.Digest {
			drift = append(drift, Drift{Key: key, Path: path, Expected: e.Digest, Actual: actual})
		}
	}
	return drift
}

// Save writes the lock file to path in CUE format.
func (l *LockFile) Save(path string) error {
	content := l.toCUE()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write lock file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename lock file: %w", err)
	}

	return nil
}

func (l *LockFile) toCUE() string {
	var sb strings.Builder

	sb.WriteString("// depfetch.lock.cue - generated by depfetch sync\n")
	sb.WriteString("// DO NOT EDIT MANUALLY\n\n")

	fmt.Fprintf(&sb, "version:   %q\n", l.Version)
	fmt.Fprintf(&sb, "generated: %q\n\n", l.Generated.Format(time.RFC3339))

	if len(l.Dependencies) == 0 {
		sb.WriteString("dependencies: {}\n")
		return sb.String()
	}

	sb.WriteString("dependencies: {\n")
	for _, key := range l.Keys() {
		e := l.Dependencies[key]
		fmt.Fprintf(&sb, "\t%q: {\n", key)
		fmt.Fprintf(&sb, "\t\tversion:   %q\n", e.Version)
		fmt.Fprintf(&sb, "\t\tscope:     %q\n", e.Scope)
		fmt.Fprintf(&sb, "\t\tpackaging: %q\n", e.Packaging)
		fmt.Fprintf(&sb, "\t\tpath:      %q\n", e.Path)
		fmt.Fprintf(&sb, "\t\tdigest:    %q\n", e.Digest)
		if e.Repository != "" {
			fmt.Fprintf(&sb, "\t\trepository: %q\n", e.Repository)
		}
		sb.WriteString("\t}\n")
	}
	sb.WriteString("}\n")

	return sb.String()
}

func fileDigest(path string) (digest.Digest, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	return digest.Canonical.FromReader(f)
}
