// SPDX-License-Identifier: MPL-2.0

package resolver

import (
	"sync"

	"github.com/depfetch/depfetch/pkg/artifact"
)

// Session records which coordinates have been fully resolved. It is the
// visited set of a traversal and breaks cycles and diamonds. Entries are
// never removed, so a coordinate resolved earlier in a shared session is
// skipped even if its cached files were deleted in the meantime.
//
// A Session is safe for concurrent use.
type Session struct {
	mu       sync.Mutex
	resolved map[artifact.Coordinate]struct{}
}

// NewSession returns an empty session.
func NewSession() *Session {
	return &Session{resolved: make(map[artifact.Coordinate]struct{})}
}

// IsResolved reports whether c has been resolved in this session.
func (s *Session) IsResolved(c artifact.Coordinate) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.resolved[c]
	return ok
}

// MarkResolved records c and reports whether it was newly added.
func (s *Session) MarkResolved(c artifact.Coordinate) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.resolved[c]; ok {
		return false
	}
	s.resolved[c] = struct{}{}
	return true
}

// Len returns the number of resolved coordinates.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.resolved)
}
