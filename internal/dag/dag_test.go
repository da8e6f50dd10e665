package dag

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGraph(t *testing.T, ids []string, edges [][2]string) *Graph {
	t.Helper()
	g := NewGraph()
	for _, id := range ids {
		g.AddNode(id, nil)
	}
	for _, e := range edges {
		require.NoError(t, g.AddEdge(e[0], e[1]))
	}
	return g
}

func TestGraph_AddNodeAndEdge(t *testing.T) {
	g := newGraph(t, []string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"b", "c"}})

	assert.Equal(t, 3, g.NodeCount())
	assert.Equal(t, 2, g.EdgeCount())

	// duplicate edges are ignored
	require.NoError(t, g.AddEdge("a", "b"))
	assert.Equal(t, 2, g.EdgeCount())

	g.AddNode("a", "updated")
	n, ok := g.GetNode("a")
	require.True(t, ok)
	assert.Equal(t, "updated", n.Data)
	assert.Equal(t, 3, g.NodeCount())
}

func TestGraph_AddEdge_InvalidNodes(t *testing.T) {
	g := NewGraph()
	g.AddNode("a", nil)

	assert.Error(t, g.AddEdge("a", "nonexistent"))
	assert.Error(t, g.AddEdge("nonexistent", "a"))
}

func TestGraph_SelfEdgeAllowed(t *testing.T) {
	g := newGraph(t, []string{"fact"}, [][2]string{{"fact", "fact"}})

	hasCycle, _ := g.HasCycle()
	assert.False(t, hasCycle, "self reference is not a cycle")

	levels, err := g.GetExecutionLevels()
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"fact"}}, levels)
}

func TestGraph_GetParentsAndChildren(t *testing.T) {
	g := newGraph(t, []string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"a", "c"}, {"b", "c"}})

	assert.Equal(t, []string{"a", "b"}, g.GetParents("c"))
	assert.Equal(t, []string{"b", "c"}, g.GetChildren("a"))
	assert.Empty(t, g.GetParents("a"))
}

func TestGraph_GetAllNodes_InsertionOrder(t *testing.T) {
	g := newGraph(t, []string{"z", "a", "m"}, nil)

	var ids []string
	for _, n := range g.GetAllNodes() {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []string{"z", "a", "m"}, ids)
}

func TestGraph_HasCycle(t *testing.T) {
	t.Run("no cycle", func(t *testing.T) {
		g := newGraph(t, []string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"b", "c"}})
		hasCycle, path := g.HasCycle()
		assert.False(t, hasCycle, "unexpected cycle %v", path)
	})

	t.Run("with cycle", func(t *testing.T) {
		g := newGraph(t, []string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}})
		hasCycle, path := g.HasCycle()
		require.True(t, hasCycle)
		require.NotEmpty(t, path)
		assert.Equal(t, path[0], path[len(path)-1])
		assert.Len(t, path, 4)
	})
}

func TestGraph_Reachable(t *testing.T) {
	// S2 <- S1, S3 isolated
	g := newGraph(t, []string{"S1", "S2", "S3"}, [][2]string{{"S1", "S2"}})

	assert.Equal(t, map[string]bool{"S1": true, "S2": true}, g.Reachable("S2"))
	assert.Equal(t, map[string]bool{"S3": true}, g.Reachable("S3"))
	assert.Empty(t, g.Reachable("missing"))
}

func TestGraph_Reachable_Diamond(t *testing.T) {
	g := newGraph(t, []string{"src", "left", "right", "out"}, [][2]string{
		{"src", "left"}, {"src", "right"}, {"left", "out"}, {"right", "out"},
	})

	assert.Len(t, g.Reachable("out"), 4)
	assert.Len(t, g.Reachable("left"), 2)
}

func TestGraph_Reachable_CycleTerminates(t *testing.T) {
	g := newGraph(t, []string{"a", "b", "c", "d"}, [][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}})

	assert.Equal(t, map[string]bool{"a": true, "b": true, "c": true}, g.Reachable("a"))
}

func TestGraph_Reachable_Deep(t *testing.T) {
	const depth = 100000
	g := NewGraph()
	ids := make([]string, depth)
	for i := range ids {
		ids[i] = "step" + strconv.Itoa(i)
		g.AddNode(ids[i], nil)
		if i > 0 {
			require.NoError(t, g.AddEdge(ids[i-1], ids[i]))
		}
	}
	assert.Len(t, g.Reachable(ids[depth-1]), depth)
}

func TestGraph_GetUpstreamNodes(t *testing.T) {
	g := newGraph(t, []string{"a", "b", "c", "d"}, [][2]string{{"a", "b"}, {"b", "c"}, {"d", "c"}})

	assert.Equal(t, []string{"a", "b", "d"}, g.GetUpstreamNodes("c"))
	assert.Empty(t, g.GetUpstreamNodes("a"))
}

func TestGraph_GetExecutionLevels(t *testing.T) {
	g := newGraph(t, []string{"Source", "Typed", "Filtered", "Lookup", "Merged"}, [][2]string{
		{"Source", "Typed"},
		{"Typed", "Filtered"},
		{"Filtered", "Merged"},
		{"Lookup", "Merged"},
	})

	levels, err := g.GetExecutionLevels()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Lookup", "Source"},
		{"Typed"},
		{"Filtered"},
		{"Merged"},
	}, levels)
}

func TestGraph_GetExecutionLevels_Cycle(t *testing.T) {
	g := newGraph(t, []string{"a", "b"}, [][2]string{{"a", "b"}, {"b", "a"}})

	_, err := g.GetExecutionLevels()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle detected")
}
