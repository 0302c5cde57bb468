// SPDX-License-Identifier: MPL-2.0

package artifact

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

const (
	// ExtDescriptor is the file extension of a project descriptor.
	ExtDescriptor = "pom"
	// ExtArtifact is the file extension of a binary artifact.
	ExtArtifact = "jar"
	// ExtChecksum is appended to a file name to address its fingerprint sidecar.
	ExtChecksum = ".sha1"
)

// ErrInvalidCoordinate is the sentinel error wrapped by InvalidCoordinateError.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

type (
	// Coordinate is the version-independent identity of a dependency.
	// It is comparable and used directly as a map key.
	Coordinate struct {
		Group      string
		Artifact   string
		Classifier string
	}

	// InvalidCoordinateError is returned when a coordinate is missing a
	// required part or contains characters that would escape the cache layout.
	InvalidCoordinateError struct {
		Value  string
		Reason string
	}
)

// Error implements the error interface.
func (e *InvalidCoordinateError) Error() string {
	return fmt.Sprintf("invalid coordinate %q: %s", e.Value, e.Reason)
}

// Unwrap returns ErrInvalidCoordinate so callers can use errors.Is for programmatic detection.
func (e *InvalidCoordinateError) Unwrap() error { return ErrInvalidCoordinate }

// Validate checks that group and artifact are present and that no part
// can be used to traverse outside a repository or cache root.
func (c Coordinate) Validate() error {
	if c.Group == "" {
		return &InvalidCoordinateError{Value: c.String(), Reason: "group is required"}
	}
	if c.Artifact == "" {
		return &InvalidCoordinateError{Value: c.String(), Reason: "artifact is required"}
	}
	for _, part := range []string{c.Group, c.Artifact, c.Classifier} {
		if strings.ContainsAny(part, `/\:`) || strings.Contains(part, "..") {
			return &InvalidCoordinateError{Value: c.String(), Reason: "path separators and '..' are not allowed"}
		}
	}
	return nil
}

// String renders the coordinate as group:artifact[:classifier].
func (c Coordinate) String() string {
	s := c.Group + ":" + c.Artifact
	if c.Classifier != "" {
		s += ":" + c.Classifier
	}
	return s
}

// Base returns the coordinate without its classifier.
// Descriptors are shared by every classifier of an artifact.
func (c Coordinate) Base() Coordinate {
	return Coordinate{Group: c.Group, Artifact: c.Artifact}
}

// GroupPath returns the group with dots replaced by slashes.
func (c Coordinate) GroupPath() string {
	return strings.ReplaceAll(c.Group, ".", "/")
}

// ArtifactDir returns the slash-separated directory that holds every version of the artifact.
func (c Coordinate) ArtifactDir() string {
	return path.Join(c.GroupPath(), c.Artifact)
}

// VersionDir returns the slash-separated directory for one version.
func (c Coordinate) VersionDir(version string) string {
	return path.Join(c.ArtifactDir(), version)
}

// FileName returns the file name of this coordinate's file with the given extension.
func (c Coordinate) FileName(version, ext string) string {
	name := c.Artifact + "-" + version
	if c.Classifier != "" {
		name += "-" + c.Classifier
	}
	return name + "." + ext
}

// DescriptorPath returns the slash-separated relative path of the descriptor.
func (c Coordinate) DescriptorPath(version string) string {
	return path.Join(c.VersionDir(version), c.Base().FileName(version, ExtDescriptor))
}

// ArtifactPath returns the slash-separated relative path of the binary artifact.
func (c Coordinate) ArtifactPath(version string) string {
	return path.Join(c.VersionDir(version), c.FileName(version, ExtArtifact))
}

// MetadataPath returns the slash-separated relative path of the repository version index.
func (c Coordinate) MetadataPath() string {
	return path.Join(c.ArtifactDir(), "maven-metadata.xml")
}
