// SPDX-License-Identifier: MPL-2.0

package pom

import (
	"errors"
	"fmt"
)

var (
	// ErrParse is matched by every *ParseError via errors.Is.
	ErrParse = errors.New("descriptor parse failed")
	// ErrMissingField is the cause recorded when a mandatory element is absent.
	ErrMissingField = errors.New("missing mandatory field")
	// ErrUnresolvedProperty is the cause recorded when an identity field
	// still contains a ${...} reference after interpolation.
	ErrUnresolvedProperty = errors.New("unresolved property reference")
)

// ParseError is returned when a descriptor is not well-formed XML or a
// mandatory field is missing. Field is a slash-separated element path and
// is empty for document-level failures.
type ParseError struct {
	Source string
	Field  string
	Err    error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	src := e.Source
	if src == "" {
		src = "descriptor"
	}
	if e.Field == "" {
		return fmt.Sprintf("parse %s: %v", src, e.Err)
	}
	return fmt.Sprintf("parse %s: %s: %v", src, e.Field, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ParseError) Unwrap() error { return e.Err }

// Is reports whether target is ErrParse.
func (e *ParseError) Is(target error) bool { return target == ErrParse }

func missingField(field string) *ParseError {
	return &ParseError{Field: field, Err: ErrMissingField}
}
