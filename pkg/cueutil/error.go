// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue/errors"
)

type (
	// ValidationError lists every problem CUE reported for one document.
	ValidationError struct {
		FilePath string
		Problems []Problem
	}

	// Problem is one CUE error located by a JSON-style path such as "dependencies[0].scope".
	Problem struct {
		Path    string
		Message string
	}
)

// Error implements the error interface.
func (e *ValidationError) Error() string {
	lines := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		lines[i] = p.String()
	}
	if len(lines) == 1 {
		return fmt.Sprintf("%s: %s", e.FilePath, lines[0])
	}
	return fmt.Sprintf("%s: validation failed:\n  %s", e.FilePath, strings.Join(lines, "\n  "))
}

// String renders the problem as "path: message", or just the message when it has no path.
func (p Problem) String() string {
	if p.Path == "" {
		return p.Message
	}
	return p.Path + ": " + p.Message
}

// FormatError converts a CUE error into a *ValidationError. Errors that do
// not come from CUE are wrapped with the file path.
func FormatError(err error, filePath string) error {
	if err == nil {
		return nil
	}

	cueErrors := errors.Errors(err)
	if len(cueErrors) == 0 {
		return fmt.Errorf("%s: %w", filePath, err)
	}

	ve := &ValidationError{FilePath: filePath}
	for _, e := range cueErrors {
		pathStr := formatPath(errors.Path(e))
		msg := e.Error()

		// CUE sometimes repeats the path at the start of the message.
		if pathStr != "" && strings.HasPrefix(msg, pathStr) {
			msg = strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(msg, pathStr), ":"))
		}
		ve.Problems = append(ve.Problems, Problem{Path: pathStr, Message: msg})
	}
	return ve
}

// formatPath converts ["dependencies", "0", "scope"] into "dependencies[0].scope".
func formatPath(path []string) string {
	var result strings.Builder
	for i, part := range path {
		if i > 0 && isIndex(part) {
			result.WriteString("[" + part + "]")
			continue
		}
		if i > 0 {
			result.WriteString(".")
		}
		result.WriteString(part)
	}
	return result.String()
}

func isIndex(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// CheckFileSize returns an error when data is larger than maxSize.
func CheckFileSize(data []byte, maxSize int64, filename string) error {
	if int64(len(data)) > maxSize {
		return fmt.Errorf("%s: file size %d bytes exceeds maximum %d bytes",
			filename, len(data), maxSize)
	}
	return nil
}
