// SPDX-License-Identifier: MPL-2.0

package pom

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/net/html/charset"
)

const (
	// PackagingJar is the packaging assumed when a descriptor declares none.
	PackagingJar = "jar"
	// PackagingPom marks an aggregator descriptor that ships no binary artifact.
	PackagingPom = "pom"

	// MaxDescriptorSize bounds how much of a descriptor is read.
	MaxDescriptorSize = 8 << 20
)

type (
	// Project is the typed form of a descriptor document. Raw element text is
	// kept as-is; accessors apply inheritance, interpolation and defaults.
	Project struct {
		XMLName    xml.Name   `xml:"project"`
		GroupID    string     `xml:"groupId"`
		ArtifactID string     `xml:"artifactId"`
		Version    string     `xml:"version"`
		Packaging  string     `xml:"packaging"`
		Parent     *Parent    `xml:"parent"`
		Properties Properties `xml:"properties"`

		// Managed holds <dependencyManagement> entries used to fill in
		// versions and scopes omitted by Declared entries.
		Managed []DependencyElement `xml:"dependencyManagement>dependencies>dependency"`
		// Declared holds the project's own <dependencies> entries.
		Declared []DependencyElement `xml:"dependencies>dependency"`
		// DeclaredRepositories holds the project's <repositories> entries.
		DeclaredRepositories []RepositoryElement `xml:"repositories>repository"`

		source string
	}

	// Parent is the <parent> reference of a descriptor.
	Parent struct {
		GroupID    string `xml:"groupId"`
		ArtifactID string `xml:"artifactId"`
		Version    string `xml:"version"`
	}

	// DependencyElement is a <dependency> entry before defaults are applied.
	DependencyElement struct {
		GroupID    string `xml:"groupId"`
		ArtifactID string `xml:"artifactId"`
		Version    string `xml:"version"`
		Classifier string `xml:"classifier"`
		Type       string `xml:"type"`
		Scope      string `xml:"scope"`
		Optional   string `xml:"optional"`
	}

	// RepositoryElement is a <repository> entry before validation.
	RepositoryElement struct {
		ID   string `xml:"id"`
		Name string `xml:"name"`
		URL  string `xml:"url"`
	}

	// Repository is a validated repository declaration.
	Repository struct {
		ID  string
		URL string
	}

	// Properties holds the <properties> entries keyed by element name.
	Properties map[string]string
)

// Parse decodes a descriptor from r. The document root must be <project>;
// any namespace is accepted.
func Parse(r io.Reader) (*Project, error) {
	return parse(r, "")
}

// ParseFile reads and decodes the descriptor at path.
func ParseFile(path string) (*Project, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open descriptor: %w", err)
	}
	defer func() { _ = f.Close() }()

	return parse(f, path)
}

// ParseBytes decodes a descriptor held in memory. source names it in errors.
func ParseBytes(data []byte, source string) (*Project, error) {
	return parse(bytes.NewReader(data), source)
}

func parse(r io.Reader, source string) (*Project, error) {
	dec := xml.NewDecoder(io.LimitReader(r, MaxDescriptorSize))
	dec.CharsetReader = charset.NewReaderLabel

	var p Project
	if err := dec.Decode(&p); err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("empty document")
		}
		return nil, &ParseError{Source: source, Err: err}
	}
	p.source = source
	return &p, nil
}

// Source returns the file the project was parsed from, if any.
func (p *Project) Source() string { return p.source }

// EffectiveGroupID returns the groupId, inherited from the parent when absent.
func (p *Project) EffectiveGroupID() string {
	if g := strings.TrimSpace(p.GroupID); g != "" {
		return p.interpolate(g)
	}
	if p.Parent != nil {
		return p.interpolate(strings.TrimSpace(p.Parent.GroupID))
	}
	return ""
}

// EffectiveArtifactID returns the artifactId.
func (p *Project) EffectiveArtifactID() string {
	return p.interpolate(strings.TrimSpace(p.ArtifactID))
}

// EffectiveVersion returns the version, inherited from the parent when absent.
func (p *Project) EffectiveVersion() string {
	if v := strings.TrimSpace(p.Version); v != "" {
		return p.interpolate(v)
	}
	if p.Parent != nil {
		return p.interpolate(strings.TrimSpace(p.Parent.Version))
	}
	return ""
}

// EffectivePackaging returns the declared packaging, defaulting to jar.
func (p *Project) EffectivePackaging() string {
	if pk := strings.ToLower(strings.TrimSpace(p.Packaging)); pk != "" {
		return pk
	}
	return PackagingJar
}

// HasBinary reports whether the project is expected to publish a binary artifact.
// Only pom packaging is treated as artifact-less.
func (p *Project) HasBinary() bool {
	return p.EffectivePackaging() != PackagingPom
}

// Repositories returns the repository declarations. The url element is mandatory.
func (p *Project) Repositories() ([]Repository, error) {
	repos := make([]Repository, 0, len(p.DeclaredRepositories))
	for i, el := range p.DeclaredRepositories {
		url := p.interpolate(strings.TrimSpace(el.URL))
		if url == "" {
			perr := missingField(fmt.Sprintf("repositories/repository[%d]/url", i+1))
			perr.Source = p.source
			return nil, perr
		}
		repos = append(repos, Repository{ID: strings.TrimSpace(el.ID), URL: url})
	}
	return repos, nil
}

// UnmarshalXML collects every child element of <properties> as a key/value pair.
func (props *Properties) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	if *props == nil {
		*props = Properties{}
	}
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			var value string
			if err := d.DecodeElement(&value, &t); err != nil {
				return err
			}
			(*props)[t.Name.Local] = strings.TrimSpace(value)
		case xml.EndElement:
			return nil
		}
	}
}
