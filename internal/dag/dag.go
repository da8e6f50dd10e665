// Package dag provides the step dependency graph of a query.
// It supports reachability from an output step, cycle detection and
// grouping steps into evaluation levels.
//
// Traversals use explicit work lists, so graph depth is bounded only by
// memory. A self-edge (a step referring to itself via @Name) is recorded but
// is not treated as a cycle.
package dag

import (
	"fmt"
	"sort"
)

// Node represents a node in the graph.
type Node struct {
	// ID is the unique identifier (step name)
	ID string
	// Data holds arbitrary node data
	Data any
}

// Graph is a directed graph whose edges point from a dependency (parent) to
// its dependent (child).
type Graph struct {
	nodes   map[string]*Node
	order   []string            // insertion order
	edges   map[string][]string // parent -> children (dependents)
	parents map[string][]string // child -> parents (dependencies)
}

// NewGraph creates a new empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:   make(map[string]*Node),
		edges:   make(map[string][]string),
		parents: make(map[string][]string),
	}
}

// AddNode adds a node to the graph, or updates its data if it exists.
func (g *Graph) AddNode(id string, data any) {
	if n, exists := g.nodes[id]; exists {
		n.Data = data
		return
	}
	g.nodes[id] = &Node{ID: id, Data: data}
	g.order = append(g.order, id)
	g.edges[id] = []string{}
	g.parents[id] = []string{}
}

// AddEdge adds a directed edge from parent to child (child depends on parent).
// Both nodes must exist. Duplicate edges are ignored.
func (g *Graph) AddEdge(parentID, childID string) error {
	if _, exists := g.nodes[parentID]; !exists {
		return fmt.Errorf("parent node %q does not exist", parentID)
	}
	if _, exists := g.nodes[childID]; !exists {
		return fmt.Errorf("child node %q does not exist", childID)
	}

	if !contains(g.edges[parentID], childID) {
		g.edges[parentID] = append(g.edges[parentID], childID)
	}
	if !contains(g.parents[childID], parentID) {
		g.parents[childID] = append(g.parents[childID], parentID)
	}
	return nil
}

// GetNode returns a node by ID.
func (g *Graph) GetNode(id string) (*Node, bool) {
	node, exists := g.nodes[id]
	return node, exists
}

// GetParents returns the parents (dependencies) of a node in insertion order.
func (g *Graph) GetParents(id string) []string {
	return g.parents[id]
}

// GetChildren returns the children (dependents) of a node in insertion order.
func (g *Graph) GetChildren(id string) []string {
	return g.edges[id]
}

// GetAllNodes returns all nodes in insertion order.
func (g *Graph) GetAllNodes() []*Node {
	nodes := make([]*Node, 0, len(g.order))
	for _, id := range g.order {
		nodes = append(nodes, g.nodes[id])
	}
	return nodes
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, children := range g.edges {
		count += len(children)
	}
	return count
}

// Reachable returns root and every node it transitively depends on.
// Unknown roots yield an empty set. Revisiting a node is a no-op, so cyclic
// graphs terminate.
func (g *Graph) Reachable(root string) map[string]bool {
	seen := make(map[string]bool)
	if _, ok := g.nodes[root]; !ok {
		return seen
	}

	work := []string{root}
	for len(work) > 0 {
		id := work[len(work)-1]
		work = work[:len(work)-1]
		if seen[id] {
			continue
		}
		seen[id] = true
		for _, parentID := range g.parents[id] {
			if !seen[parentID] {
				work = append(work, parentID)
			}
		}
	}
	return seen
}

// GetUpstreamNodes returns the sorted dependencies of id, excluding id itself
// unless it depends on itself through a cycle.
func (g *Graph) GetUpstreamNodes(id string) []string {
	upstream := make(map[string]bool)
	work := append([]string(nil), g.parents[id]...)
	for len(work) > 0 {
		n := work[len(work)-1]
		work = work[:len(work)-1]
		if upstream[n] {
			continue
		}
		upstream[n] = true
		work = append(work, g.parents[n]...)
	}
	delete(upstream, id)

	result := make([]string, 0, len(upstream))
	for n := range upstream {
		result = append(result, n)
	}
	sort.Strings(result)
	return result
}

// HasCycle returns true if the graph contains a cycle between distinct
// nodes, along with one cycle path (first node repeated at the end).
func (g *Graph) HasCycle() (bool, []string) {
	const (
		white = iota
		grey
		black
	)
	color := make(map[string]int, len(g.nodes))

	type frame struct {
		id   string
		next int
	}

	for _, start := range g.order {
		if color[start] != white {
			continue
		}
		stack := []frame{{id: start}}
		color[start] = grey
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			children := g.edges[top.id]
			if top.next >= len(children) {
				color[top.id] = black
				stack = stack[:len(stack)-1]
				continue
			}
			child := children[top.next]
			top.next++
			if child == top.id {
				continue
			}
			switch color[child] {
			case white:
				color[child] = grey
				stack = append(stack, frame{id: child})
			case grey:
				var path []string
				for i := len(stack) - 1; i >= 0; i-- {
					path = append([]string{stack[i].id}, path...)
					if stack[i].id == child {
						break
					}
				}
				return true, append(path, child)
			}
		}
	}
	return false, nil
}

// GetExecutionLevels returns nodes grouped by evaluation level.
// Level 0 holds nodes with no dependencies; a node at level N depends only on
// nodes at levels below N. Returns an error if the graph contains a cycle.
func (g *Graph) GetExecutionLevels() ([][]string, error) {
	if hasCycle, cyclePath := g.HasCycle(); hasCycle {
		return nil, fmt.Errorf("cycle detected: %v", cyclePath)
	}

	pending := make(map[string]int, len(g.nodes))
	var current []string
	for _, id := range g.order {
		n := 0
		for _, p := range g.parents[id] {
			if p != id {
				n++
			}
		}
		pending[id] = n
		if n == 0 {
			current = append(current, id)
		}
	}

	var levels [][]string
	for len(current) > 0 {
		sort.Strings(current)
		levels = append(levels, current)
		var next []string
		for _, id := range current {
			for _, child := range g.edges[id] {
				if child == id {
					continue
				}
				pending[child]--
				if pending[child] == 0 {
					next = append(next, child)
				}
			}
		}
		current = next
	}
	return levels, nil
}

// contains checks if a slice contains a string.
func contains(slice []string, str string) bool {
	for _, s := range slice {
		if s == str {
			return true
		}
	}
	return false
}
