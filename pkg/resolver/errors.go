// SPDX-License-Identifier: MPL-2.0

package resolver

import (
	"errors"
	"fmt"
	"strings"

	"github.com/depfetch/depfetch/pkg/artifact"
)

const (
	// OpVersionLookup is the operation of asking repositories for the newest version.
	OpVersionLookup Operation = "look up the latest version"
	// OpFetch is the operation of downloading the descriptor and artifact.
	OpFetch Operation = "download"
)

var (
	// ErrDownload is matched by every *DownloadError via errors.Is.
	ErrDownload = errors.New("download failed")
	// ErrChecksumMismatch is returned when a downloaded file does not match the
	// fingerprint published next to it.
	ErrChecksumMismatch = errors.New("checksum mismatch")
	// ErrNoRepositories is recorded when a resolution has no repository to try.
	ErrNoRepositories = errors.New("no repositories to try")
)

type (
	// Operation names the step that failed on every repository.
	Operation string

	// RepositoryFailure is the failure of one repository for one operation.
	RepositoryFailure struct {
		Repository string
		Err        error
	}

	// DownloadError is returned when no repository could satisfy an operation.
	// Causes keeps one entry per repository tried, in the order they were tried.
	DownloadError struct {
		Operation  Operation
		Dependency artifact.Dependency
		Causes     []RepositoryFailure
	}

	// ChecksumMismatchError reports a fetched file whose SHA-1 differs from its published sidecar.
	ChecksumMismatchError struct {
		Path     string
		Expected string
		Actual   string
	}
)

// Error implements the error interface.
func (f RepositoryFailure) Error() string {
	return fmt.Sprintf("%s: %v", f.Repository, f.Err)
}

// Unwrap returns the repository's error.
func (f RepositoryFailure) Unwrap() error { return f.Err }

// Error renders the dependency followed by one line per repository cause.
func (e *DownloadError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "unable to %s %s", e.Operation, e.Dependency)
	if len(e.Causes) == 0 {
		sb.WriteString(": ")
		sb.WriteString(ErrNoRepositories.Error())
		return sb.String()
	}
	for _, c := range e.Causes {
		sb.WriteString("\n  - ")
		sb.WriteString(c.Error())
	}
	return sb.String()
}

// Is reports whether target is ErrDownload.
func (e *DownloadError) Is(target error) bool { return target == ErrDownload }

// Unwrap returns every repository cause so errors.Is and errors.As see all of them.
func (e *DownloadError) Unwrap() []error {
	errs := make([]error, len(e.Causes))
	for i, c := range e.Causes {
		errs[i] = c
	}
	return errs
}

// Error implements the error interface.
func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("%s: sha1 %s does not match published %s", e.Path, e.Actual, e.Expected)
}

// Unwrap returns ErrChecksumMismatch.
func (e *ChecksumMismatchError) Unwrap() error { return ErrChecksumMismatch }
