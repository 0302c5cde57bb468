// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pelletier/go-toml/v2"
	"sigs.k8s.io/yaml"

	"github.com/depfetch/depfetch/pkg/resolver"
)

// OutputFormat selects how a resolution result is written to stdout.
type OutputFormat string

const (
	OutputTable     OutputFormat = "table"
	OutputJSON      OutputFormat = "json"
	OutputYAML      OutputFormat = "yaml"
	OutputTOML      OutputFormat = "toml"
	OutputClasspath OutputFormat = "classpath"
)

var allOutputFormats = []OutputFormat{OutputTable, OutputJSON, OutputYAML, OutputTOML, OutputClasspath}

type (
	// report is the document written by the structured encodings.
	report struct {
		Cache        string   `json:"cache" toml:"cache"`
		Dependencies []record `json:"dependencies" toml:"dependencies"`
	}

	// record is one resolved dependency. Paths are relative to the cache.
	record struct {
		Dependency string `json:"dependency" toml:"dependency"`
		Version    string `json:"version" toml:"version"`
		Scope      string `json:"scope" toml:"scope"`
		Packaging  string `json:"packaging" toml:"packaging"`
		Descriptor string `json:"descriptor" toml:"descriptor"`
		Artifact   string `json:"artifact,omitempty" toml:"artifact,omitempty"`
		Repository string `json:"repository,omitempty" toml:"repository,omitempty"`
	}
)

// OutputFormats returns the accepted --output values.
func OutputFormats() []string {
	out := make([]string, len(allOutputFormats))
	for i, f := range allOutputFormats {
		out[i] = string(f)
	}
	return out
}

// ParseOutputFormat validates an --output value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	for _, f := range allOutputFormats {
		if strings.EqualFold(s, string(f)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown output format %q (expected one of %s)", s, strings.Join(OutputFormats(), ", "))
}

// writeResult encodes result in load order. classpath holds the artifact
// paths the sink received and is only used by OutputClasspath.
func writeResult(w io.Writer, format OutputFormat, cacheRoot string, result *resolver.Result, classpath []string) error {
	if format == OutputClasspath {
		if len(classpath) == 0 {
			return nil
		}
		_, err := fmt.Fprintln(w, strings.Join(classpath, string(os.PathListSeparator)))
		return err
	}

	rep := newReport(cacheRoot, result)

	var (
		data []byte
		err  error
	)
	switch format {
	case OutputJSON:
		data, err = json.MarshalIndent(rep, "", "  ")
		data = append(data, '\n')
	case OutputYAML:
		data, err = yaml.Marshal(rep)
	case OutputTOML:
		data, err = toml.Marshal(rep)
	case OutputTable:
		data = encodeTable(rep)
	default:
		err = fmt.Errorf("unknown output format: %q", format)
	}
	if err != nil {
		return fmt.Errorf("encoding result as %q failed: %w", format, err)
	}

	_, err = w.Write(data)
	return err
}

func newReport(cacheRoot string, result *resolver.Result) report {
	rep := report{Cache: cacheRoot, Dependencies: []record{}}
	for _, d := range result.LoadOrder() {
		rep.Dependencies = append(rep.Dependencies, record{
			Dependency: d.Coordinate.String(),
			Version:    d.Version,
			Scope:      d.EffectiveScope().String(),
			Packaging:  d.Packaging,
			Descriptor: relativeTo(cacheRoot, d.DescriptorFile),
			Artifact:   relativeTo(cacheRoot, d.ArtifactFile),
			Repository: d.Repository,
		})
	}
	return rep
}

func encodeTable(rep report) []byte {
	var buf strings.Builder
	t := table.NewWriter()
	t.SetOutputMirror(&buf)
	t.AppendHeader(table.Row{"Dependency", "Version", "Scope", "Packaging", "Source"})
	for _, r := range rep.Dependencies {
		source := r.Repository
		if source == "" {
			source = "cache"
		}
		t.AppendRow(table.Row{r.Dependency, r.Version, r.Scope, r.Packaging, source})
	}
	style := table.StyleLight
	style.Options.DrawBorder = false
	t.SetStyle(style)
	t.Render()
	return []byte(buf.String())
}

// relativeTo returns path relative to root with forward slashes, or path
// unchanged when it is empty or outside root.
func relativeTo(root, path string) string {
	if path == "" {
		return ""
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}
