// SPDX-License-Identifier: MPL-2.0

package repository

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/depfetch/depfetch/pkg/version"
)

// Metadata is the maven-metadata.xml version index of an artifact.
type Metadata struct {
	XMLName    xml.Name `xml:"metadata"`
	GroupID    string   `xml:"groupId"`
	ArtifactID string   `xml:"artifactId"`
	Versioning struct {
		Latest      string   `xml:"latest"`
		Release     string   `xml:"release"`
		Versions    []string `xml:"versions>version"`
		LastUpdated string   `xml:"lastUpdated"`
	} `xml:"versioning"`
}

// ParseMetadata decodes a version index.
func ParseMetadata(r io.Reader) (*Metadata, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel

	var md Metadata
	if err := dec.Decode(&md); err != nil {
		return nil, fmt.Errorf("parse version index: %w", err)
	}
	return &md, nil
}

// Newest returns the release version, else the latest version, else the
// highest listed version.
func (m *Metadata) Newest() (string, error) {
	if v := strings.TrimSpace(m.Versioning.Release); v != "" {
		return v, nil
	}
	if v := strings.TrimSpace(m.Versioning.Latest); v != "" {
		return v, nil
	}

	listed := make([]version.Version, 0, len(m.Versioning.Versions))
	for _, v := range m.Versioning.Versions {
		if v = strings.TrimSpace(v); v != "" {
			listed = append(listed, version.Parse(v))
		}
	}
	if best, ok := version.Max(listed...); ok {
		return best.String(), nil
	}
	return "", ErrNoVersions
}
