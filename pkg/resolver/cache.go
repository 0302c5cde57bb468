// SPDX-License-Identifier: MPL-2.0

package resolver

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/depfetch/depfetch/pkg/artifact"
	"github.com/depfetch/depfetch/pkg/pom"
	"github.com/depfetch/depfetch/pkg/version"
)

// DefaultCacheDir is the cache directory used when none is configured.
const DefaultCacheDir = "libs"

type (
	// Cache is the on-disk store of descriptors, artifacts and their sidecars.
	Cache struct {
		root string
	}

	// Entry is one cached version of an artifact.
	Entry struct {
		Coordinate artifact.Coordinate
		Version    string
		// DescriptorFile is the absolute descriptor path.
		DescriptorFile string
		// ArtifactFile is the absolute path of the unclassified artifact, or empty when none is cached.
		ArtifactFile string
	}

	// VerifyResult is the state of one cached file.
	VerifyResult struct {
		Path   string
		Status string
		OK     bool
	}

	cached struct {
		project    *pom.Project
		descriptor string
		artifact   string
	}
)

// NewCache returns a cache rooted at dir.
func NewCache(dir string) *Cache {
	return &Cache{root: filepath.Clean(dir)}
}

// Root returns the cache root directory.
func (c *Cache) Root() string { return c.root }

// Path converts a slash-separated layout path into a path under the cache root.
func (c *Cache) Path(relPath string) string {
	return filepath.Join(c.root, filepath.FromSlash(relPath))
}

// Lookup reports whether dep is fully cached with valid fingerprints. A
// descriptor with pom packaging counts as complete without an artifact.
func (c *Cache) Lookup(dep artifact.Dependency) (project *pom.Project, ok bool) {
	hit, found := c.lookup(dep)
	if !found {
		return nil, false
	}
	return hit.project, true
}

func (c *Cache) lookup(dep artifact.Dependency) (*cached, bool) {
	desc := c.Path(dep.DescriptorPath())
	if checkPair(desc) != pairValid {
		return nil, false
	}
	project, err := pom.ParseFile(desc)
	if err != nil {
		return nil, false
	}

	art := c.Path(dep.ArtifactPath())
	switch checkPair(art) {
	case pairValid:
		return &cached{project: project, descriptor: desc, artifact: art}, true
	case pairMissingFile:
		if !project.HasBinary() && !exists(art+artifact.ExtChecksum) {
			return &cached{project: project, descriptor: desc}, true
		}
	}
	return nil, false
}

// InstalledVersions returns the versions of coord that the cache can serve
// without a download, highest first. Version directories holding a partial or
// corrupted download are skipped.
func (c *Cache) InstalledVersions(coord artifact.Coordinate) ([]version.Version, error) {
	entries, err := os.ReadDir(c.Path(coord.ArtifactDir()))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read cache: %w", err)
	}

	var versions []version.Version
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		v := e.Name()
		dep := artifact.Dependency{Coordinate: coord, Version: v}
		if _, ok := c.lookup(dep); ok {
			versions = append(versions, version.Parse(v))
		}
	}
	slices.SortFunc(versions, func(a, b version.Version) int { return b.Compare(a) })
	return versions, nil
}

// Entries lists every cached descriptor, ordered by coordinate then version.
func (c *Cache) Entries() ([]Entry, error) {
	var out []Entry
	err := filepath.WalkDir(c.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == c.root {
				return filepath.SkipAll
			}
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), "."+artifact.ExtDescriptor) {
			return nil
		}
		if e, ok := c.entryFor(path); ok {
			out = append(out, e)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk cache: %w", err)
	}

	slices.SortFunc(out, func(a, b Entry) int {
		if n := strings.Compare(a.Coordinate.String(), b.Coordinate.String()); n != 0 {
			return n
		}
		return version.Compare(a.Version, b.Version)
	})
	return out, nil
}

// entryFor derives the coordinate from a descriptor path laid out as
// <group path>/<artifact>/<version>/<artifact>-<version>.pom.
func (c *Cache) entryFor(path string) (Entry, bool) {
	rel, err := filepath.Rel(c.root, path)
	if err != nil {
		return Entry{}, false
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) < 4 {
		return Entry{}, false
	}
	n := len(parts)
	coord := artifact.Coordinate{
		Group:    strings.Join(parts[:n-3], "."),
		Artifact: parts[n-3],
	}
	v := parts[n-2]
	if parts[n-1] != coord.FileName(v, artifact.ExtDescriptor) {
		return Entry{}, false
	}

	e := Entry{Coordinate: coord, Version: v, DescriptorFile: path}
	if art := c.Path(coord.ArtifactPath(v)); exists(art) {
		e.ArtifactFile = art
	}
	return e, true
}

// Verify re-hashes every cached file that has a sidecar or should have one,
// using up to concurrency workers. Results are ordered by path.
func (c *Cache) Verify(ctx context.Context, concurrency int) ([]VerifyResult, error) {
	var paths []string
	err := filepath.WalkDir(c.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == c.root {
				return filepath.SkipAll
			}
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		switch filepath.Ext(d.Name()) {
		case "." + artifact.ExtDescriptor, "." + artifact.ExtArtifact:
			paths = append(paths, path)
		case artifact.ExtChecksum:
			if !exists(strings.TrimSuffix(path, artifact.ExtChecksum)) {
				paths = append(paths, strings.TrimSuffix(path, artifact.ExtChecksum))
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk cache: %w", err)
	}
	slices.Sort(paths)

	if concurrency < 1 {
		concurrency = 1
	}
	results := make([]VerifyResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, p := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			status := checkPair(p)
			results[i] = VerifyResult{Path: p, Status: status.String(), OK: status == pairValid}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
