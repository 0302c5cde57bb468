// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testSchema = `
#Repo: {
	url:       string & =~"^(https?|file)://"
	username?: string
}

#Doc: {
	name:  string
	repos: [...#Repo] | *[]
	count?: int & >=0
}
`

type testRepo struct {
	URL      string `json:"url"`
	Username string `json:"username,omitempty"`
}

type testDoc struct {
	Name  string     `json:"name"`
	Repos []testRepo `json:"repos"`
	Count int        `json:"count,omitempty"`
}

func TestParseAndDecode(t *testing.T) {
	t.Parallel()

	data := []byte(`
name: "demo"
repos: [{url: "https://repo1.maven.org/maven2"}, {url: "file:///srv/mirror", username: "ci"}]
`)
	result, err := ParseAndDecode[testDoc]([]byte(testSchema), data, "#Doc")
	if err != nil {
		t.Fatalf("ParseAndDecode() unexpected error: %v", err)
	}
	if result.Value.Name != "demo" || len(result.Value.Repos) != 2 || result.Value.Repos[1].Username != "ci" {
		t.Errorf("decoded %+v", result.Value)
	}
	if !result.Unified.Exists() {
		t.Error("Unified value should exist")
	}
}

func TestParseAndDecodeDefaults(t *testing.T) {
	t.Parallel()

	result, err := ParseAndDecode[testDoc]([]byte(testSchema), []byte(`name: "x"`), "#Doc")
	if err != nil {
		t.Fatalf("ParseAndDecode() unexpected error: %v", err)
	}
	if len(result.Value.Repos) != 0 {
		t.Errorf("Repos = %v, want default empty list", result.Value.Repos)
	}
}

func TestParseAndDecodeErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		data     string
		wantPath string
	}{
		{name: "syntax error", data: `name: "x`},
		{name: "wrong type", data: `name: 42`, wantPath: "name"},
		{name: "pattern mismatch", data: `name: "x", repos: [{url: "ftp://nope"}]`, wantPath: "repos[0].url"},
		{name: "closed definition", data: `name: "x", unknown: true`, wantPath: "unknown"},
		{name: "missing required", data: `repos: []`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := ParseAndDecode[testDoc]([]byte(testSchema), []byte(tt.data), "#Doc", WithFilename("doc.cue"))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), "doc.cue") {
				t.Errorf("error should name the file, got: %v", err)
			}
			if tt.wantPath == "" {
				return
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected *ValidationError, got %T: %v", err, err)
			}
			if !strings.Contains(err.Error(), tt.wantPath) {
				t.Errorf("error should locate %q, got: %v", tt.wantPath, err)
			}
		})
	}
}

func TestParseFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "doc.cue")
	if err := os.WriteFile(path, []byte(`name: "from-file"`), 0o644); err != nil {
		t.Fatal(err)
	}

	result, err := ParseFile[testDoc]([]byte(testSchema), path, "#Doc")
	if err != nil {
		t.Fatalf("ParseFile() unexpected error: %v", err)
	}
	if result.Value.Name != "from-file" {
		t.Errorf("Name = %q", result.Value.Name)
	}

	if _, err := ParseFile[testDoc]([]byte(testSchema), path, "#Doc", WithMaxFileSize(4)); err == nil {
		t.Error("ParseFile() should enforce the size limit")
	}
	if _, err := ParseFile[testDoc]([]byte(testSchema), filepath.Join(dir, "absent.cue"), "#Doc"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("ParseFile(absent) error = %v, want ErrNotExist", err)
	}
}

func TestFormatError(t *testing.T) {
	t.Parallel()

	if FormatError(nil, "x.cue") != nil {
		t.Error("FormatError(nil) should be nil")
	}

	err := FormatError(errors.New("some error"), "test.cue")
	if err == nil || !strings.Contains(err.Error(), "test.cue") || !strings.Contains(err.Error(), "some error") {
		t.Errorf("FormatError() = %v", err)
	}
}

func TestFormatPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path []string
		want string
	}{
		{path: nil, want: ""},
		{path: []string{"cache_dir"}, want: "cache_dir"},
		{path: []string{"http", "timeout"}, want: "http.timeout"},
		{path: []string{"dependencies", "0", "scope"}, want: "dependencies[0].scope"},
		{path: []string{"repositories", "1", "auth", "0"}, want: "repositories[1].auth[0]"},
	}

	for _, tt := range tests {
		if got := formatPath(tt.path); got != tt.want {
			t.Errorf("formatPath(%v) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestCheckFileSize(t *testing.T) {
	t.Parallel()

	if err := CheckFileSize(make([]byte, 100), 100, "a.cue"); err != nil {
		t.Errorf("data at the limit should pass, got %v", err)
	}
	err := CheckFileSize(make([]byte, 101), 100, "a.cue")
	if err == nil || !strings.Contains(err.Error(), "101") || !strings.Contains(err.Error(), "a.cue") {
		t.Errorf("CheckFileSize() over the limit = %v", err)
	}
}

func TestValidationErrorMessage(t *testing.T) {
	t.Parallel()

	one := &ValidationError{FilePath: "config.cue", Problems: []Problem{{Path: "scopes[0]", Message: "invalid value"}}}
	if got := one.Error(); got != "config.cue: scopes[0]: invalid value" {
		t.Errorf("Error() = %q", got)
	}

	two := &ValidationError{FilePath: "config.cue", Problems: []Problem{{Message: "a"}, {Path: "b", Message: "c"}}}
	if got := two.Error(); got != "config.cue: validation failed:\n  a\n  b: c" {
		t.Errorf("Error() = %q", got)
	}
}
