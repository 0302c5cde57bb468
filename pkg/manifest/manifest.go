// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/depfetch/depfetch/pkg/artifact"
	"github.com/depfetch/depfetch/pkg/cueutil"
	"github.com/depfetch/depfetch/pkg/repository"
)

const (
	// FileName is the default manifest file name.
	FileName = "depfetch.cue"
	// LockFileName is the default lock file name.
	LockFileName = "depfetch.lock.cue"
)

var (
	//go:embed manifest_schema.cue
	manifestSchema []byte

	// ErrNotFound is returned when the manifest file does not exist.
	ErrNotFound = errors.New("manifest not found")
)

type (
	// Manifest is a decoded depfetch.cue file.
	Manifest struct {
		Deps            []DependencySpec `json:"dependencies"`
		Repos           []RepositorySpec `json:"repositories,omitempty"`
		ScopeNames      []string         `json:"scopes,omitempty"`
		IncludeOptional bool             `json:"include_optional,omitempty"`

		path string
	}

	// DependencySpec is one entry of the manifest's dependencies list.
	DependencySpec struct {
		Group      string `json:"group"`
		Artifact   string `json:"artifact"`
		Version    string `json:"version,omitempty"`
		Classifier string `json:"classifier,omitempty"`
		Scope      string `json:"scope,omitempty"`
		Optional   bool   `json:"optional,omitempty"`
	}

	// RepositorySpec is one entry of the manifest's repositories list.
	RepositorySpec struct {
		ID       string `json:"id,omitempty"`
		URL      string `json:"url"`
		Username string `json:"username,omitempty"`
		Password string `json:"password,omitempty"`
	}

	// NotFoundError is returned by Load when the manifest file is missing.
	NotFoundError struct {
		Path string
	}
)

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("manifest %s not found", e.Path)
}

// Unwrap returns ErrNotFound for errors.Is() compatibility.
func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// Load reads and validates the manifest at path.
func Load(path string) (*Manifest, error) {
	result, err := cueutil.ParseFile[Manifest](manifestSchema, path, "#Manifest")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &NotFoundError{Path: path}
		}
		return nil, err
	}

	m := result.Value
	m.path = path
	return m, nil
}

// Parse validates manifest content that did not come from a file.
func Parse(data []byte, filename string) (*Manifest, error) {
	result, err := cueutil.ParseAndDecode[Manifest](manifestSchema, data, "#Manifest", cueutil.WithFilename(filename))
	if err != nil {
		return nil, err
	}

	m := result.Value
	m.path = filename
	return m, nil
}

// Path returns the file the manifest was loaded from.
func (m *Manifest) Path() string { return m.path }

// Dependencies converts the manifest entries into dependencies. Entries without
// a scope are compile-scoped; entries without a version resolve to the latest.
func (m *Manifest) Dependencies() ([]artifact.Dependency, error) {
	deps := make([]artifact.Dependency, 0, len(m.Deps))
	for i, spec := range m.Deps {
		dep := artifact.Dependency{
			Coordinate: artifact.Coordinate{
				Group:      spec.Group,
				Artifact:   spec.Artifact,
				Classifier: spec.Classifier,
			},
			Version:  spec.Version,
			Scope:    artifact.ScopeCompile,
			Optional: spec.Optional,
		}
		if spec.Scope != "" {
			scope, err := artifact.ParseScope(spec.Scope)
			if err != nil {
				return nil, fmt.Errorf("%s: dependencies[%d]: %w", m.path, i, err)
			}
			dep.Scope = scope
		}
		if err := dep.Validate(); err != nil {
			return nil, fmt.Errorf("%s: dependencies[%d]: %w", m.path, i, err)
		}
		deps = append(deps, dep)
	}
	return deps, nil
}

// Repositories returns the repository specs in declaration order.
func (m *Manifest) Repositories() []repository.Spec {
	specs := make([]repository.Spec, 0, len(m.Repos))
	for _, r := range m.Repos {
		specs = append(specs, repository.Spec(r))
	}
	return specs
}

// Scopes returns the requested scope set, or the default set when the manifest names none.
func (m *Manifest) Scopes() (artifact.ScopeSet, error) {
	if len(m.ScopeNames) == 0 {
		return artifact.DefaultScopes(), nil
	}
	return artifact.ParseScopeSet(m.ScopeNames)
}
