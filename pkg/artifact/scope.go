// SPDX-License-Identifier: MPL-2.0

package artifact

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

const (
	// ScopeCompile is required to build and run; the default when no scope is declared.
	ScopeCompile Scope = "compile"
	// ScopeRuntime is required to run but not to build.
	ScopeRuntime Scope = "runtime"
	// ScopeTest is only required by tests.
	ScopeTest Scope = "test"
	// ScopeProvided is expected to be supplied by the host.
	ScopeProvided Scope = "provided"
	// ScopeSystem points at a file on the local system.
	ScopeSystem Scope = "system"
)

// ErrInvalidScope is the sentinel error wrapped by InvalidScopeError.
var ErrInvalidScope = errors.New("invalid dependency scope")

type (
	// Scope is the usage context a dependency is declared for.
	Scope string

	// InvalidScopeError is returned when a scope name is not recognized.
	InvalidScopeError struct {
		Value string
	}

	// ScopeSet is the set of scopes a resolution follows transitively.
	// The zero value is empty and contains nothing.
	ScopeSet struct {
		scopes map[Scope]struct{}
	}
)

// AllScopes lists every known scope in declaration order.
func AllScopes() []Scope {
	return []Scope{ScopeCompile, ScopeRuntime, ScopeTest, ScopeProvided, ScopeSystem}
}

// Error implements the error interface.
func (e *InvalidScopeError) Error() string {
	return fmt.Sprintf("invalid dependency scope %q (expected one of compile, runtime, test, provided, system)", e.Value)
}

// Unwrap returns ErrInvalidScope so callers can use errors.Is for programmatic detection.
func (e *InvalidScopeError) Unwrap() error { return ErrInvalidScope }

// ParseScope parses a scope name case-insensitively.
func ParseScope(s string) (Scope, error) {
	scope := Scope(strings.ToLower(strings.TrimSpace(s)))
	if err := scope.Validate(); err != nil {
		return "", &InvalidScopeError{Value: s}
	}
	return scope, nil
}

// Validate returns nil if the scope is one of the known scopes.
func (s Scope) Validate() error {
	if !slices.Contains(AllScopes(), s) {
		return &InvalidScopeError{Value: string(s)}
	}
	return nil
}

// String returns the string representation of the Scope.
func (s Scope) String() string { return string(s) }

// NewScopeSet builds a set from the given scopes.
func NewScopeSet(scopes ...Scope) ScopeSet {
	set := ScopeSet{scopes: make(map[Scope]struct{}, len(scopes))}
	for _, s := range scopes {
		set.scopes[s] = struct{}{}
	}
	return set
}

// DefaultScopes returns the scopes followed when the caller does not choose: runtime and compile.
func DefaultScopes() ScopeSet {
	return NewScopeSet(ScopeRuntime, ScopeCompile)
}

// ParseScopeSet parses scope names into a set.
func ParseScopeSet(names []string) (ScopeSet, error) {
	scopes := make([]Scope, 0, len(names))
	for _, name := range names {
		s, err := ParseScope(name)
		if err != nil {
			return ScopeSet{}, err
		}
		scopes = append(scopes, s)
	}
	return NewScopeSet(scopes...), nil
}

// Contains reports whether s is in the set.
func (ss ScopeSet) Contains(s Scope) bool {
	_, ok := ss.scopes[s]
	return ok
}

// Len returns the number of scopes in the set.
func (ss ScopeSet) Len() int { return len(ss.scopes) }

// Scopes returns the members in declaration order.
func (ss ScopeSet) Scopes() []Scope {
	var out []Scope
	for _, s := range AllScopes() {
		if ss.Contains(s) {
			out = append(out, s)
		}
	}
	return out
}

// String renders the set as a comma-separated list.
func (ss ScopeSet) String() string {
	scopes := ss.Scopes()
	names := make([]string, len(scopes))
	for i, s := range scopes {
		names[i] = string(s)
	}
	return strings.Join(names, ",")
}
