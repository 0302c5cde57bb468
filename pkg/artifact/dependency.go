// SPDX-License-Identifier: MPL-2.0

package artifact

import (
	"fmt"
	"strings"
)

// Dependency is a coordinate together with the attributes a resolution needs.
// Version is empty until a repository lookup or the local cache supplies one.
type Dependency struct {
	Coordinate

	// Version is the concrete version, or empty when it still has to be looked up.
	Version string

	// Scope is the declared usage scope; empty is treated as compile.
	Scope Scope

	// Optional marks dependencies that are skipped unless the caller opts in.
	Optional bool
}

// NewDependency returns a compile-scoped dependency.
func NewDependency(group, artifact, version string) Dependency {
	return Dependency{
		Coordinate: Coordinate{Group: group, Artifact: artifact},
		Version:    version,
		Scope:      ScopeCompile,
	}
}

// ParseDependency parses "group:artifact[:version[:classifier]]".
// An empty version segment leaves the version unset.
func ParseDependency(s string) (Dependency, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 4 {
		return Dependency{}, &InvalidCoordinateError{Value: s, Reason: "expected group:artifact[:version[:classifier]]"}
	}

	dep := Dependency{
		Coordinate: Coordinate{Group: parts[0], Artifact: parts[1]},
		Scope:      ScopeCompile,
	}
	if len(parts) > 2 {
		dep.Version = parts[2]
	}
	if len(parts) > 3 {
		dep.Classifier = parts[3]
	}

	if err := dep.Validate(); err != nil {
		return Dependency{}, err
	}
	return dep, nil
}

// ParseCoordinate parses "group:artifact[:classifier]".
func ParseCoordinate(s string) (Coordinate, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return Coordinate{}, &InvalidCoordinateError{Value: s, Reason: "expected group:artifact[:classifier]"}
	}
	c := Coordinate{Group: parts[0], Artifact: parts[1]}
	if len(parts) == 3 {
		c.Classifier = parts[2]
	}
	if err := c.Validate(); err != nil {
		return Coordinate{}, err
	}
	return c, nil
}

// Validate checks the coordinate, the scope and that the version cannot escape the cache layout.
func (d Dependency) Validate() error {
	if err := d.Coordinate.Validate(); err != nil {
		return err
	}
	if strings.ContainsAny(d.Version, `/\`) || strings.Contains(d.Version, "..") {
		return &InvalidCoordinateError{Value: d.String(), Reason: "version must not contain path separators or '..'"}
	}
	if d.Scope != "" {
		if err := d.Scope.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// HasVersion reports whether the version has been set.
func (d Dependency) HasVersion() bool { return d.Version != "" }

// EffectiveScope returns the scope, defaulting to compile.
func (d Dependency) EffectiveScope() Scope {
	if d.Scope == "" {
		return ScopeCompile
	}
	return d.Scope
}

// WithVersion returns a copy of d with the version set.
func (d Dependency) WithVersion(version string) Dependency {
	d.Version = version
	return d
}

// DescriptorPath returns the relative descriptor path for the resolved version.
func (d Dependency) DescriptorPath() string { return d.Coordinate.DescriptorPath(d.Version) }

// ArtifactPath returns the relative artifact path for the resolved version.
func (d Dependency) ArtifactPath() string { return d.Coordinate.ArtifactPath(d.Version) }

// String renders group:artifact[:classifier]@version, with "?" for an unset version.
func (d Dependency) String() string {
	v := d.Version
	if v == "" {
		v = "?"
	}
	return fmt.Sprintf("%s@%s", d.Coordinate, v)
}
