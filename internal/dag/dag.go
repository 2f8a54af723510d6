// SPDX-License-Identifier: MPL-2.0

// Package dag orders build operations. Nodes are operation names and an
// edge from A to B means A finishes before B starts.
package dag

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownNode is returned when a dependency names a node that was never added.
var ErrUnknownNode = errors.New("unknown node")

type (
	// CycleError reports the nodes left unordered by a dependency cycle.
	CycleError struct {
		Nodes []string
	}

	// Graph is a directed graph with insertion-ordered nodes.
	Graph struct {
		successors   map[string][]string
		predecessors map[string][]string
		nodes        []string
		known        map[string]bool
	}
)

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle between: %s", strings.Join(e.Nodes, ", "))
}

// New creates an empty Graph.
func New() *Graph {
	return &Graph{
		successors:   make(map[string][]string),
		predecessors: make(map[string][]string),
		known:        make(map[string]bool),
	}
}

// AddNode adds name. Adding a node twice is a no-op.
func (g *Graph) AddNode(name string) {
	if g.known[name] {
		return
	}
	g.known[name] = true
	g.nodes = append(g.nodes, name)
}

// AddEdge records that before must finish before after starts. Both nodes
// are added when missing.
func (g *Graph) AddEdge(before, after string) {
	g.AddNode(before)
	g.AddNode(after)
	g.successors[before] = append(g.successors[before], after)
	g.predecessors[after] = append(g.predecessors[after], before)
}

// Has reports whether name is a node of g.
func (g *Graph) Has(name string) bool { return g.known[name] }

// Nodes returns every node in insertion order.
func (g *Graph) Nodes() []string { return append([]string(nil), g.nodes...) }

// Predecessors returns the direct predecessors of name.
func (g *Graph) Predecessors(name string) []string {
	return append([]string(nil), g.predecessors[name]...)
}

// Closure returns roots plus everything they transitively depend on, in
// insertion order.
func (g *Graph) Closure(roots ...string) ([]string, error) {
	keep := make(map[string]bool)
	stack := make([]string, 0, len(roots))
	for _, r := range roots {
		if !g.known[r] {
			return nil, fmt.Errorf("%w: %s", ErrUnknownNode, r)
		}
		stack = append(stack, r)
	}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if keep[n] {
			continue
		}
		keep[n] = true
		stack = append(stack, g.predecessors[n]...)
	}
	var out []string
	for _, n := range g.nodes {
		if keep[n] {
			out = append(out, n)
		}
	}
	return out, nil
}

// TopologicalSort orders every node with Kahn's algorithm. Ties keep
// insertion order, so the result is deterministic.
func (g *Graph) TopologicalSort() ([]string, error) {
	if len(g.nodes) == 0 {
		return nil, nil
	}

	pending := make(map[string]int, len(g.nodes))
	for _, n := range g.nodes {
		pending[n] = len(g.predecessors[n])
	}

	var ready []string
	for _, n := range g.nodes {
		if pending[n] == 0 {
			ready = append(ready, n)
		}
	}

	order := make([]string, 0, len(g.nodes))
	for len(ready) > 0 {
		n := ready[0]
		ready = ready[1:]
		order = append(order, n)
		for _, s := range g.successors[n] {
			pending[s]--
			if pending[s] == 0 {
				ready = append(ready, s)
			}
		}
	}

	if len(order) != len(g.nodes) {
		var stuck []string
		for _, n := range g.nodes {
			if pending[n] > 0 {
				stuck = append(stuck, n)
			}
		}
		return nil, &CycleError{Nodes: stuck}
	}
	return order, nil
}
