// SPDX-License-Identifier: MPL-2.0

package pom

import (
	"fmt"
	"strings"

	"github.com/depfetch/depfetch/pkg/artifact"
)

// DependencyOptions filters the dependencies returned by Project.Dependencies.
type DependencyOptions struct {
	// Scopes lists the scopes to keep. An empty set keeps every scope.
	Scopes artifact.ScopeSet
	// IncludeOptional keeps entries marked <optional>true</optional>.
	IncludeOptional bool
}

type managedKey struct {
	group, artifact, classifier string
}

// Dependencies returns the project's declared dependencies with defaults
// applied and filtered by opts, in document order.
//
// A version that is a range or still references an unknown property is
// returned unset so the caller can look it up.
func (p *Project) Dependencies(opts DependencyOptions) ([]artifact.Dependency, error) {
	managed := p.managedIndex()

	deps := make([]artifact.Dependency, 0, len(p.Declared))
	for i, el := range p.Declared {
		field := fmt.Sprintf("dependencies/dependency[%d]", i+1)

		dep, keep, err := p.toDependency(el, managed, field, opts)
		if err != nil {
			return nil, err
		}
		if keep {
			deps = append(deps, dep)
		}
	}
	return deps, nil
}

func (p *Project) managedIndex() map[managedKey]DependencyElement {
	if len(p.Managed) == 0 {
		return nil
	}
	idx := make(map[managedKey]DependencyElement, len(p.Managed))
	for _, el := range p.Managed {
		k := managedKey{
			group:      p.interpolate(strings.TrimSpace(el.GroupID)),
			artifact:   p.interpolate(strings.TrimSpace(el.ArtifactID)),
			classifier: p.interpolate(strings.TrimSpace(el.Classifier)),
		}
		idx[k] = el
	}
	return idx
}

// toDependency applies defaults to el. Entries filtered out by opts are
// reported with keep false before their version is required.
func (p *Project) toDependency(el DependencyElement, managed map[managedKey]DependencyElement, field string, opts DependencyOptions) (dep artifact.Dependency, keep bool, err error) {
	group := p.interpolate(strings.TrimSpace(el.GroupID))
	name := p.interpolate(strings.TrimSpace(el.ArtifactID))
	classifier := p.interpolate(strings.TrimSpace(el.Classifier))
	version := p.interpolate(strings.TrimSpace(el.Version))
	scope := strings.TrimSpace(el.Scope)
	optional := strings.TrimSpace(el.Optional)

	if m, ok := managed[managedKey{group: group, artifact: name, classifier: classifier}]; ok {
		if version == "" {
			version = p.interpolate(strings.TrimSpace(m.Version))
		}
		if scope == "" {
			scope = strings.TrimSpace(m.Scope)
		}
		if optional == "" {
			optional = strings.TrimSpace(m.Optional)
		}
	}

	if err := p.requireIdentity(field+"/groupId", group); err != nil {
		return dep, false, err
	}
	if err := p.requireIdentity(field+"/artifactId", name); err != nil {
		return dep, false, err
	}

	parsedScope := artifact.ScopeCompile
	if scope != "" {
		s, err := artifact.ParseScope(p.interpolate(scope))
		if err != nil {
			return dep, false, p.fieldError(field+"/scope", err)
		}
		parsedScope = s
	}
	isOptional := strings.EqualFold(p.interpolate(optional), "true")
	if isOptional && !opts.IncludeOptional {
		return dep, false, nil
	}
	if opts.Scopes.Len() > 0 && !opts.Scopes.Contains(parsedScope) {
		return dep, false, nil
	}

	if version == "" {
		return dep, false, p.fieldError(field+"/version", ErrMissingField)
	}
	if unresolved(version) || isVersionRange(version) {
		version = ""
	}

	dep = artifact.Dependency{
		Coordinate: artifact.Coordinate{Group: group, Artifact: name, Classifier: classifier},
		Version:    version,
		Scope:      parsedScope,
		Optional:   isOptional,
	}
	if err := dep.Validate(); err != nil {
		return artifact.Dependency{}, false, p.fieldError(field, err)
	}
	return dep, true, nil
}

func (p *Project) requireIdentity(field, value string) error {
	switch {
	case value == "":
		return p.fieldError(field, ErrMissingField)
	case unresolved(value):
		return p.fieldError(field, fmt.Errorf("%w: %s", ErrUnresolvedProperty, value))
	}
	return nil
}

func (p *Project) fieldError(field string, err error) *ParseError {
	return &ParseError{Source: p.source, Field: field, Err: err}
}

func isVersionRange(v string) bool {
	return strings.HasPrefix(v, "[") || strings.HasPrefix(v, "(")
}
