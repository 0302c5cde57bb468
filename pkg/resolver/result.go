// SPDX-License-Identifier: MPL-2.0

package resolver

import (
	"slices"

	"github.com/depfetch/depfetch/internal/dag"
	"github.com/depfetch/depfetch/pkg/artifact"
)

type (
	// Result is the set of dependencies resolved by one call, keyed by coordinate.
	Result struct {
		deps  map[artifact.Coordinate]*Resolved
		order []artifact.Coordinate
		roots []artifact.Coordinate
		// edges maps a dependent to the dependencies it declared, in declaration order.
		edges map[artifact.Coordinate][]artifact.Coordinate
	}

	// Resolved is one dependency with the cache files that back it.
	Resolved struct {
		artifact.Dependency

		// DescriptorFile is the absolute path of the cached descriptor.
		DescriptorFile string
		// ArtifactFile is the absolute path of the cached artifact, or empty
		// for descriptors that publish no artifact.
		ArtifactFile string
		// Packaging is the descriptor's effective packaging.
		Packaging string
		// Repository is the location the files came from, or empty for a cache hit.
		Repository string
	}
)

func newResult() *Result {
	return &Result{
		deps:  make(map[artifact.Coordinate]*Resolved),
		edges: make(map[artifact.Coordinate][]artifact.Coordinate),
	}
}

// Len returns the number of resolved dependencies.
func (r *Result) Len() int { return len(r.order) }

// Contains reports whether c was resolved.
func (r *Result) Contains(c artifact.Coordinate) bool {
	_, ok := r.deps[c]
	return ok
}

// Get returns the resolved entry for c.
func (r *Result) Get(c artifact.Coordinate) (*Resolved, bool) {
	d, ok := r.deps[c]
	return d, ok
}

// Dependencies returns the resolved dependencies in discovery order.
func (r *Result) Dependencies() []artifact.Dependency {
	out := make([]artifact.Dependency, 0, len(r.order))
	for _, c := range r.order {
		out = append(out, r.deps[c].Dependency)
	}
	return out
}

// Entries returns the resolved entries in discovery order.
func (r *Result) Entries() []*Resolved {
	out := make([]*Resolved, 0, len(r.order))
	for _, c := range r.order {
		out = append(out, r.deps[c])
	}
	return out
}

// Roots returns the top-level coordinates resolved by this call.
func (r *Result) Roots() []artifact.Coordinate { return r.roots }

// Children returns the resolved dependencies declared by c.
func (r *Result) Children(c artifact.Coordinate) []artifact.Coordinate {
	var out []artifact.Coordinate
	for _, child := range r.edges[c] {
		if r.Contains(child) {
			out = append(out, child)
		}
	}
	return out
}

// LoadOrder returns the entries with every dependency ahead of the entries
// that declared it. When the graph has a cycle the discovery order is returned.
func (r *Result) LoadOrder() []*Resolved {
	g := dag.New[artifact.Coordinate]()
	for _, c := range r.order {
		g.AddNode(c)
	}
	for _, parent := range r.order {
		for _, child := range r.Children(parent) {
			g.AddEdge(child, parent)
		}
	}

	sorted, err := g.TopologicalSort()
	if err != nil {
		return r.Entries()
	}

	out := make([]*Resolved, 0, len(sorted))
	for _, c := range sorted {
		out = append(out, r.deps[c])
	}
	return out
}

func (r *Result) add(d *Resolved) {
	if r.Contains(d.Coordinate) {
		return
	}
	r.deps[d.Coordinate] = d
	r.order = append(r.order, d.Coordinate)
}

func (r *Result) addRoot(c artifact.Coordinate) {
	r.roots = append(r.roots, c)
}

func (r *Result) addEdge(from, to artifact.Coordinate) {
	if !slices.Contains(r.edges[from], to) {
		r.edges[from] = append(r.edges[from], to)
	}
}

// merge folds other into r, keeping r's entries on conflict.
func (r *Result) merge(other *Result) {
	for _, c := range other.order {
		r.add(other.deps[c])
	}
	r.roots = append(r.roots, other.roots...)
	for from, tos := range other.edges {
		for _, to := range tos {
			r.addEdge(from, to)
		}
	}
}
