// SPDX-License-Identifier: MPL-2.0

package resolver

import (
	"bytes"
	"context"
	"crypto/sha1" //nolint:gosec // Maven repositories publish SHA-1 sidecars.
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/depfetch/depfetch/pkg/artifact"
	"github.com/depfetch/depfetch/pkg/pom"
	"github.com/depfetch/depfetch/pkg/repository"
)

// maxSidecarBytes bounds a downloaded sidecar; a hex SHA-1 is 40 bytes.
const maxSidecarBytes = 4 << 10

// fetch makes dep available in the cache and returns its entry and descriptor.
func (r *Resolver) fetch(ctx context.Context, dep artifact.Dependency, repos []repository.Repository) (*Resolved, *pom.Project, error) {
	if err := dep.Validate(); err != nil {
		return nil, nil, err
	}

	r.progress("Resolving", "dependency", dep.String())

	if !dep.HasVersion() {
		v, err := r.lookupVersion(ctx, dep, repos)
		if err != nil {
			return nil, nil, err
		}
		dep = dep.WithVersion(v)
		if err := dep.Validate(); err != nil {
			return nil, nil, err
		}
	}

	if hit, ok := r.cache.lookup(dep); ok {
		r.progress("Cache hit", "dependency", dep.String(), "path", hit.descriptor)
		return &Resolved{
			Dependency:     dep,
			DescriptorFile: hit.descriptor,
			ArtifactFile:   hit.artifact,
			Packaging:      hit.project.EffectivePackaging(),
		}, hit.project, nil
	}

	var causes []RepositoryFailure
	for _, repo := range repos {
		resolved, project, err := r.download(ctx, repo, dep)
		if err == nil {
			return resolved, project, nil
		}
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
		r.logger.Debug("repository failed", "dependency", dep.String(), "repository", repo.Location(), "error", err)
		causes = append(causes, RepositoryFailure{Repository: repo.Location(), Err: err})
	}
	return nil, nil, &DownloadError{Operation: OpFetch, Dependency: dep, Causes: causes}
}

// lookupVersion asks each repository for the newest version of dep. When
// all of them fail, the highest version already cached is used.
func (r *Resolver) lookupVersion(ctx context.Context, dep artifact.Dependency, repos []repository.Repository) (string, error) {
	var causes []RepositoryFailure
	for _, repo := range repos {
		v, err := repo.LatestVersion(ctx, dep.Coordinate)
		if err == nil && v != "" {
			r.progress("Found latest version", "dependency", dep.Coordinate.String(), "version", v, "repository", repo.Location())
			return v, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if err == nil {
			err = repository.ErrNoVersions
		}
		causes = append(causes, RepositoryFailure{Repository: repo.Location(), Err: err})
	}

	installed, err := r.cache.InstalledVersions(dep.Coordinate)
	if err != nil {
		r.logger.Warn("unable to scan cache for installed versions", "dependency", dep.Coordinate.String(), "error", err)
	}
	if len(installed) > 0 {
		v := installed[0].String()
		r.progress("Using cached version", "dependency", dep.Coordinate.String(), "version", v)
		return v, nil
	}
	return "", &DownloadError{Operation: OpVersionLookup, Dependency: dep, Causes: causes}
}

// download fetches the descriptor and artifact of dep from one repository.
// A missing artifact is tolerated when the descriptor has pom packaging.
func (r *Resolver) download(ctx context.Context, repo repository.Repository, dep artifact.Dependency) (*Resolved, *pom.Project, error) {
	r.progress("Downloading", "dependency", dep.String(), "repository", repo.Location())

	descPath := r.cache.Path(dep.DescriptorPath())
	if err := r.fetchVerified(ctx, repo, dep.DescriptorPath(), descPath); err != nil {
		return nil, nil, fmt.Errorf("descriptor: %w", err)
	}
	project, err := pom.ParseFile(descPath)
	if err != nil {
		discard(descPath)
		return nil, nil, err
	}

	artPath := r.cache.Path(dep.ArtifactPath())
	if err := r.fetchVerified(ctx, repo, dep.ArtifactPath(), artPath); err != nil {
		discard(artPath)
		if project.HasBinary() {
			// A descriptor without its artifact is not a usable version.
			discard(descPath)
			return nil, nil, fmt.Errorf("artifact: %w", err)
		}
		r.logger.Debug("no artifact for pom packaging", "dependency", dep.String(), "repository", repo.Location(), "error", err)
		artPath = ""
	}

	return &Resolved{
		Dependency:     dep,
		DescriptorFile: descPath,
		ArtifactFile:   artPath,
		Packaging:      project.EffectivePackaging(),
		Repository:     repo.Location(),
	}, project, nil
}

// discard removes path and its sidecar.
func discard(path string) {
	_ = os.Remove(path)
	_ = os.Remove(path + artifact.ExtChecksum)
}

// fetchVerified downloads relPath and its published sidecar, checks that they
// agree and then moves the file into dest next to a freshly written sidecar.
func (r *Resolver) fetchVerified(ctx context.Context, repo repository.Repository, relPath, dest string) error {
	var actual string
	err := writeAtomic(dest, func(w io.Writer) error {
		h := sha1.New() //nolint:gosec // see import
		if err := repo.Fetch(ctx, relPath, io.MultiWriter(w, h)); err != nil {
			return err
		}
		actual = hex.EncodeToString(h.Sum(nil))

		var published bytes.Buffer
		if err := repo.Fetch(ctx, relPath+artifact.ExtChecksum, &limitedWriter{w: &published, n: maxSidecarBytes}); err != nil {
			return fmt.Errorf("checksum: %w", err)
		}
		if expected := parseSidecar(published.Bytes()); expected != actual {
			return &ChecksumMismatchError{Path: relPath, Expected: expected, Actual: actual}
		}
		return nil
	})
	if err != nil {
		return err
	}

	return writeFileAtomic(dest+artifact.ExtChecksum, []byte(actual))
}

// limitedWriter fails once more than n bytes have been written.
type limitedWriter struct {
	w io.Writer
	n int64
}

func (l *limitedWriter) Write(p []byte) (int, error) {
	if int64(len(p)) > l.n {
		return 0, fmt.Errorf("sidecar larger than %d bytes", maxSidecarBytes)
	}
	l.n -= int64(len(p))
	return l.w.Write(p)
}
