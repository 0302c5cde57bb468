// SPDX-License-Identifier: MPL-2.0

// Package dag orders the nodes of a directed graph topologically. The
// resolver uses it to put every dependency ahead of the artifacts that
// declared it.
package dag

import (
	"fmt"
	"strings"
)

type (
	// CycleError indicates that the graph contains a cycle, preventing topological ordering.
	CycleError struct {
		// Cycle lists the nodes left with unresolved incoming edges, rendered with fmt.
		Cycle []string
	}

	// Graph is a directed graph over comparable keys.
	// An edge from A to B means A must come before B.
	Graph[K comparable] struct {
		adjacency map[K][]K
		edges     map[[2]K]bool
		// nodes tracks all nodes in insertion order for deterministic output.
		nodes   []K
		nodeSet map[K]bool
	}
)

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle detected: %s", strings.Join(e.Cycle, " -> "))
}

// New creates an empty Graph.
func New[K comparable]() *Graph[K] {
	return &Graph[K]{
		adjacency: make(map[K][]K),
		edges:     make(map[[2]K]bool),
		nodeSet:   make(map[K]bool),
	}
}

// AddNode adds a node to the graph. If the node already exists, this is a no-op.
func (g *Graph[K]) AddNode(n K) {
	if g.nodeSet[n] {
		return
	}
	g.nodeSet[n] = true
	g.nodes = append(g.nodes, n)
}

// AddEdge adds a directed edge from -> to. Both nodes are added if missing;
// repeated edges are recorded once.
func (g *Graph[K]) AddEdge(from, to K) {
	g.AddNode(from)
	g.AddNode(to)
	key := [2]K{from, to}
	if g.edges[key] {
		return
	}
	g.edges[key] = true
	g.adjacency[from] = append(g.adjacency[from], to)
}

// Len returns the number of nodes.
func (g *Graph[K]) Len() int { return len(g.nodes) }

// Successors returns the targets of from's outgoing edges in insertion order.
func (g *Graph[K]) Successors(from K) []K {
	return g.adjacency[from]
}

// TopologicalSort returns an order using Kahn's algorithm, or a *CycleError.
// Nodes at the same level appear in the order they were first added.
func (g *Graph[K]) TopologicalSort() ([]K, error) {
	if len(g.nodes) == 0 {
		return nil, nil
	}

	inDegree := make(map[K]int, len(g.nodes))
	for _, node := range g.nodes {
		inDegree[node] = 0
	}
	for _, neighbors := range g.adjacency {
		for _, neighbor := range neighbors {
			inDegree[neighbor]++
		}
	}

	queue := make([]K, 0, len(g.nodes))
	for _, node := range g.nodes {
		if inDegree[node] == 0 {
			queue = append(queue, node)
		}
	}

	result := make([]K, 0, len(g.nodes))
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		result = append(result, node)

		for _, neighbor := range g.adjacency[node] {
			inDegree[neighbor]--
			if inDegree[neighbor] == 0 {
				queue = append(queue, neighbor)
			}
		}
	}

	if len(result) != len(g.nodes) {
		var cycle []string
		for _, node := range g.nodes {
			if inDegree[node] > 0 {
				cycle = append(cycle, fmt.Sprint(node))
			}
		}
		return nil, &CycleError{Cycle: cycle}
	}

	return result, nil
}
