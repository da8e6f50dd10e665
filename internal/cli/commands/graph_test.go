package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/pqdeps/internal/cli/output"
	"github.com/leapstack-labs/pqdeps/internal/cli/testutil"
	"github.com/leapstack-labs/pqdeps/pkg/lineage"
)

func TestBuildGraph_Levels(t *testing.T) {
	q := &lineage.QueryResult{
		Name:   "Q",
		Output: "C",
		Steps: []*lineage.StepRecord{
			{Name: "A", References: []string{}, UsedForOutput: true},
			{Name: "B", References: []string{"A"}, UsedForOutput: true},
			{Name: "Dead", References: []string{"A"}},
			{Name: "C", References: []string{"A", "B"}, UsedForOutput: true},
		},
	}

	g := buildGraph(q)
	assert.Empty(t, g.Cycle)
	assert.Equal(t, 4, g.TotalSteps)
	assert.Equal(t, 4, g.TotalEdges)
	require.Len(t, g.Levels, 3)

	names := func(level output.GraphLevel) []string {
		var out []string
		for _, s := range level.Steps {
			out = append(out, s.Name)
		}
		return out
	}
	assert.Equal(t, []string{"A"}, names(g.Levels[0]))
	assert.Equal(t, []string{"B", "Dead"}, names(g.Levels[1]))
	assert.Equal(t, []string{"C"}, names(g.Levels[2]))
	assert.False(t, g.Levels[1].Steps[1].UsedForOutput)
	assert.Equal(t, []string{"A", "B"}, g.Levels[2].Steps[0].DependsOn)
}

func TestBuildGraph_Cycle(t *testing.T) {
	q := &lineage.QueryResult{
		Name:   "Q",
		Output: "A",
		Steps: []*lineage.StepRecord{
			{Name: "A", References: []string{"B"}, UsedForOutput: true},
			{Name: "B", References: []string{"A"}, UsedForOutput: true},
		},
	}

	g := buildGraph(q)
	assert.NotEmpty(t, g.Cycle)
	require.Len(t, g.Levels, 1)
	assert.Len(t, g.Levels[0].Steps, 2)
	assert.Equal(t, "A", g.Levels[0].Steps[0].Name)
}

func TestGraphMarkdown(t *testing.T) {
	q := &lineage.QueryResult{
		Name:   "Q",
		Output: "B",
		Steps: []*lineage.StepRecord{
			{Name: "A", References: []string{}, UsedForOutput: true},
			{Name: "B", References: []string{"A"}, UsedForOutput: true},
			{Name: "Dead", References: []string{}},
		},
	}

	tr := testutil.NewTestRenderer(output.ModeMarkdown, false)
	graphMarkdown(tr.Renderer, []output.GraphOutput{buildGraph(q)})
	md := tr.Output()

	testutil.AssertValidMarkdown(t, md)
	assert.Contains(t, md, "## Q")
	assert.Contains(t, md, "### Level 0")
	assert.Contains(t, md, "- ~~Dead~~ (unused)")
	assert.Contains(t, md, "  - depends on: A")
	assert.Contains(t, md, "**Total Dependencies:** 1")
}
