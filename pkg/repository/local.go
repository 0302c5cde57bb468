// SPDX-License-Identifier: MPL-2.0

package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/depfetch/depfetch/pkg/artifact"
	"github.com/depfetch/depfetch/pkg/version"
)

// localMetadataNames are the version index files checked in order.
// maven-metadata-local.xml is what an install into a local repository writes.
var localMetadataNames = []string{"maven-metadata.xml", "maven-metadata-local.xml"}

// Local is a repository laid out on the filesystem, such as a mirror or ~/.m2/repository.
type Local struct {
	root string
}

// NewLocal returns a repository rooted at dir.
func NewLocal(dir string) *Local {
	return &Local{root: filepath.Clean(dir)}
}

// Location returns the root directory.
func (r *Local) Location() string { return r.root }

// LatestVersion reads the artifact's version index, falling back to the
// highest version directory that holds a descriptor.
func (r *Local) LatestVersion(ctx context.Context, c artifact.Coordinate) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dir := filepath.Join(r.root, filepath.FromSlash(c.ArtifactDir()))
	for _, name := range localMetadataNames {
		f, err := os.Open(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		md, parseErr := ParseMetadata(f)
		_ = f.Close()
		if parseErr != nil {
			return "", fmt.Errorf("latest version of %s from %s: %w", c, r.root, parseErr)
		}
		if v, err := md.Newest(); err == nil {
			return v, nil
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("latest version of %s from %s: %w", c, r.root, ErrNotFound)
		}
		return "", fmt.Errorf("latest version of %s from %s: %w", c, r.root, err)
	}

	var candidates []version.Version
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		descriptor := filepath.Join(r.root, filepath.FromSlash(c.DescriptorPath(e.Name())))
		if _, err := os.Stat(descriptor); err == nil {
			candidates = append(candidates, version.Parse(e.Name()))
		}
	}
	best, ok := version.Max(candidates...)
	if !ok {
		return "", fmt.Errorf("latest version of %s from %s: %w", c, r.root, ErrNoVersions)
	}
	return best.String(), nil
}

// Fetch copies the file at relPath into w.
func (r *Local) Fetch(ctx context.Context, relPath string, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p := filepath.Join(r.root, filepath.FromSlash(relPath))
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s: %w", p, ErrNotFound)
		}
		return fmt.Errorf("open %s: %w", p, err)
	}
	defer func() { _ = f.Close() }()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("read %s: %w", p, err)
	}
	return nil
}
