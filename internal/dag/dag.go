// SPDX-License-Identifier: MPL-2.0

// Package dag models the build target graph. Nodes are target names and there
// are two edge kinds: depends-on edges pull a dependency into the execution
// closure and order it first, while run-before edges only order two targets
// that are both scheduled.
package dag

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrUnknownNode is the sentinel error wrapped by UnknownNodeError.
var ErrUnknownNode = errors.New("unknown node")

type (
	// CycleError indicates that the graph contains a cycle, preventing topological ordering.
	CycleError struct {
		// Cycle contains the nodes left unordered by Kahn's algorithm: every
		// node on a cycle plus nodes that depend on one.
		Cycle []string
	}

	// UnknownNodeError is returned when an edge or a root refers to a node
	// that was never added.
	UnknownNodeError struct {
		Node string
		// Referrer is the node whose edge names Node, empty for roots.
		Referrer string
	}

	// Graph is a directed graph of named nodes. Nodes keep insertion order,
	// which is the tie break of every traversal and makes output deterministic.
	Graph struct {
		nodes   []string
		index   map[string]int
		deps    map[string][]string
		befores map[string][]string
	}
)

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle detected: %s", strings.Join(e.Cycle, " -> "))
}

func (e *UnknownNodeError) Error() string {
	if e.Referrer == "" {
		return fmt.Sprintf("unknown target %q", e.Node)
	}
	return fmt.Sprintf("target %q references unknown target %q", e.Referrer, e.Node)
}

// Unwrap returns ErrUnknownNode for errors.Is.
func (e *UnknownNodeError) Unwrap() error { return ErrUnknownNode }

// New creates an empty Graph.
func New() *Graph {
	return &Graph{
		index:   make(map[string]int),
		deps:    make(map[string][]string),
		befores: make(map[string][]string),
	}
}

// AddNode adds a node to the graph. If the node already exists, this is a no-op.
func (g *Graph) AddNode(name string) {
	if _, ok := g.index[name]; ok {
		return
	}
	g.index[name] = len(g.nodes)
	g.nodes = append(g.nodes, name)
}

// Has reports whether name is a node of the graph.
func (g *Graph) Has(name string) bool {
	_, ok := g.index[name]
	return ok
}

// Nodes returns every node in insertion order.
func (g *Graph) Nodes() []string {
	return slices.Clone(g.nodes)
}

// DependsOn records that node requires dep: scheduling node schedules dep,
// and dep completes first. Neither node is added implicitly; Validate reports
// dangling references.
func (g *Graph) DependsOn(node, dep string) {
	if !slices.Contains(g.deps[node], dep) {
		g.deps[node] = append(g.deps[node], dep)
	}
}

// RunBefore records that first runs before second when both are scheduled.
// It never schedules either node.
func (g *Graph) RunBefore(first, second string) {
	if !slices.Contains(g.befores[first], second) {
		g.befores[first] = append(g.befores[first], second)
	}
}

// Dependencies returns the direct depends-on edges of node.
func (g *Graph) Dependencies(node string) []string {
	return slices.Clone(g.deps[node])
}

// Befores returns the nodes node must run before when scheduled together.
func (g *Graph) Befores(node string) []string {
	return slices.Clone(g.befores[node])
}

// Validate checks that every edge names known nodes and that the whole graph,
// both edge kinds included, is acyclic.
func (g *Graph) Validate() error {
	for _, node := range g.nodes {
		for _, dep := range g.deps[node] {
			if !g.Has(dep) {
				return &UnknownNodeError{Node: dep, Referrer: node}
			}
		}
		for _, next := range g.befores[node] {
			if !g.Has(next) {
				return &UnknownNodeError{Node: next, Referrer: node}
			}
		}
	}
	_, err := g.Order(g.nodes)
	return err
}

// Closure returns roots plus everything they transitively depend on, in
// insertion order. Run-before edges are not followed.
func (g *Graph) Closure(roots ...string) ([]string, error) {
	seen := make(map[string]bool)
	stack := make([]string, 0, len(roots))
	for _, root := range roots {
		if !g.Has(root) {
			return nil, &UnknownNodeError{Node: root}
		}
		stack = append(stack, root)
	}

	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[node] {
			continue
		}
		seen[node] = true
		for _, dep := range g.deps[node] {
			if !g.Has(dep) {
				return nil, &UnknownNodeError{Node: dep, Referrer: node}
			}
			stack = append(stack, dep)
		}
	}

	closure := make([]string, 0, len(seen))
	for _, node := range g.nodes {
		if seen[node] {
			closure = append(closure, node)
		}
	}
	return closure, nil
}

// Order returns subset in an execution order that honors every depends-on
// and run-before edge between members of subset, using Kahn's algorithm.
// Among ready nodes the earliest inserted is taken first.
// Returns CycleError if the subset contains a cycle.
func (g *Graph) Order(subset []string) ([]string, error) {
	if len(subset) == 0 {
		return nil, nil
	}

	member := make(map[string]bool, len(subset))
	for _, node := range subset {
		if !g.Has(node) {
			return nil, &UnknownNodeError{Node: node}
		}
		member[node] = true
	}

	// successors[a] lists the members that must wait for a.
	successors := make(map[string][]string, len(member))
	inDegree := make(map[string]int, len(member))
	addEdge := func(from, to string) {
		if !member[from] || !member[to] || slices.Contains(successors[from], to) {
			return
		}
		successors[from] = append(successors[from], to)
		inDegree[to]++
	}
	for node := range member {
		for _, dep := range g.deps[node] {
			addEdge(dep, node)
		}
		for _, next := range g.befores[node] {
			addEdge(node, next)
		}
	}

	ordered := g.sortByInsertion(member)
	result := make([]string, 0, len(ordered))
	done := make(map[string]bool, len(ordered))
	for len(result) < len(ordered) {
		next := ""
		for _, node := range ordered {
			if !done[node] && inDegree[node] == 0 {
				next = node
				break
			}
		}
		if next == "" {
			var cycle []string
			for _, node := range ordered {
				if !done[node] {
					cycle = append(cycle, node)
				}
			}
			return nil, &CycleError{Cycle: cycle}
		}
		done[next] = true
		result = append(result, next)
		for _, succ := range successors[next] {
			inDegree[succ]--
		}
	}

	return result, nil
}

func (g *Graph) sortByInsertion(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for _, node := range g.nodes {
		if set[node] {
			out = append(out, node)
		}
	}
	return out
}
