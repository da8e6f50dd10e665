package lineage

import (
	"sort"

	"github.com/leapstack-labs/pqdeps/internal/dag"
)

// Reachable returns output and every step it transitively references through
// edges, a map from step name to the sibling steps it references. The walk
// tolerates cycles. An output that is not a step yields an empty set.
func Reachable(output string, edges map[string][]string) map[string]bool {
	names := make([]string, 0, len(edges))
	for name := range edges {
		names = append(names, name)
	}
	sort.Strings(names)
	return stepGraph(names, edges).Reachable(output)
}

// stepGraph builds a graph with one node per name and an edge from each
// referenced step to the step referencing it. References to names outside
// names are dropped.
func stepGraph(names []string, edges map[string][]string) *dag.Graph {
	g := dag.NewGraph()
	for _, name := range names {
		g.AddNode(name, nil)
	}
	for _, name := range names {
		for _, ref := range edges[name] {
			if _, ok := g.GetNode(ref); !ok {
				continue
			}
			// Both ends exist, so AddEdge cannot fail.
			_ = g.AddEdge(ref, name)
		}
	}
	return g
}
