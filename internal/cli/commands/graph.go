package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/pqdeps/internal/cli/output"
	"github.com/leapstack-labs/pqdeps/pkg/lineage"
)

// NewGraphCommand creates the graph command.
func NewGraphCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph [path|-]",
		Short: "Show the step graph of each query",
		Long: `Display the step dependency graph of every query.

Steps are grouped by evaluation level: level 0 steps reference no sibling
step, and a step at level N references only steps below N. Steps that
reference each other in a loop are reported as a cycle.`,
		Example: `  # Show the step graph
  pqdeps graph queries.pq

  # Output as JSON
  pqdeps graph queries.pq --output json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraph(cmd, pathArg(args))
		},
	}
	return cmd
}

func runGraph(cmd *cobra.Command, path string) error {
	cmdCtx := NewCommandContext(cmd)
	eng, err := cmdCtx.NewEngine()
	if err != nil {
		return err
	}

	src, err := cmdCtx.Load(path)
	if err != nil {
		return err
	}
	batch, err := eng.Analyze(cmd.Context(), src.Text)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	graphs := make([]output.GraphOutput, 0, len(batch.Queries))
	for _, q := range batch.Queries {
		graphs = append(graphs, buildGraph(q))
	}

	r := cmdCtx.Renderer
	switch r.EffectiveMode() {
	case output.ModeJSON:
		err = r.JSON(graphs)
	case output.ModeYAML:
		err = r.YAML(graphs)
	case output.ModeMarkdown:
		graphMarkdown(r, graphs)
	default:
		graphText(r, graphs)
	}
	if err != nil {
		return err
	}

	for _, f := range batch.Failures {
		r.Warning(f.Error())
	}
	if cmdCtx.Cfg.Strict && len(batch.Failures) > 0 {
		return fmt.Errorf("%w: %d of %d", ErrDocumentsFailed, len(batch.Failures), len(batch.Failures)+len(batch.Queries))
	}
	return nil
}

// buildGraph groups the steps of q into levels. A cyclic query gets its
// cycle and a single level holding every step in declaration order.
func buildGraph(q *lineage.QueryResult) output.GraphOutput {
	g := q.Graph()
	out := output.GraphOutput{
		Query:      q.Name,
		Output:     q.Output,
		TotalSteps: g.NodeCount(),
		TotalEdges: g.EdgeCount(),
	}

	step := func(name string) output.GraphStep {
		rec := q.Step(name)
		return output.GraphStep{
			Name:          name,
			DependsOn:     g.GetParents(name),
			UsedBy:        g.GetChildren(name),
			UsedForOutput: rec != nil && rec.UsedForOutput,
		}
	}

	levels, err := g.GetExecutionLevels()
	if err != nil {
		_, out.Cycle = g.HasCycle()
		levels = [][]string{q.StepNames()}
	}

	out.Levels = make([]output.GraphLevel, 0, len(levels))
	for i, level := range levels {
		gl := output.GraphLevel{Level: i, Steps: make([]output.GraphStep, 0, len(level))}
		for _, name := range level {
			gl.Steps = append(gl.Steps, step(name))
		}
		out.Levels = append(out.Levels, gl)
	}
	return out
}

// graphText outputs the graphs in styled text format.
func graphText(r *output.Renderer, graphs []output.GraphOutput) {
	styles := r.Styles()

	for _, g := range graphs {
		r.Printf("%s %s\n", styles.Header1.Render(g.Query), styles.Muted.Render("(output: "+g.Output+")"))
		if len(g.Cycle) > 0 {
			r.Println(styles.Warning.Render("cycle: " + strings.Join(g.Cycle, " -> ")))
		}

		for _, level := range g.Levels {
			if len(g.Cycle) == 0 {
				r.Println(styles.Header2.Render(fmt.Sprintf("Level %d:", level.Level)))
			}
			for _, s := range level.Steps {
				name := styles.StepName.Render(s.Name)
				if !s.UsedForOutput {
					name = styles.Dead.Render(s.Name) + " " + styles.Muted.Render("(unused)")
				}
				r.Printf("  %s\n", name)
				if len(s.DependsOn) > 0 {
					r.Printf("    %s %s\n", styles.Muted.Render("depends on:"), strings.Join(s.DependsOn, ", "))
				}
				if len(s.UsedBy) > 0 {
					r.Printf("    %s %s\n", styles.Muted.Render("used by:"), strings.Join(s.UsedBy, ", "))
				}
			}
		}
		r.Println(styles.Muted.Render(fmt.Sprintf("Total: %d steps, %d dependencies", g.TotalSteps, g.TotalEdges)))
		r.Println("")
	}
}

// graphMarkdown outputs the graphs in markdown format.
func graphMarkdown(r *output.Renderer, graphs []output.GraphOutput) {
	r.Println(output.FormatHeader(1, "Step Graph"))
	r.Println("")

	for _, g := range graphs {
		r.Println(output.FormatHeader(2, g.Query))
		r.Println(output.FormatKeyValue("Output", g.Output))
		if len(g.Cycle) > 0 {
			r.Println(output.FormatKeyValue("Cycle", strings.Join(g.Cycle, " -> ")))
		}
		r.Println("")

		for _, level := range g.Levels {
			if len(g.Cycle) == 0 {
				r.Println(output.FormatHeader(3, fmt.Sprintf("Level %d", level.Level)))
			}
			for _, s := range level.Steps {
				if s.UsedForOutput {
					r.Printf("- %s\n", s.Name)
				} else {
					r.Printf("- ~~%s~~ (unused)\n", s.Name)
				}
				if len(s.DependsOn) > 0 {
					r.Printf("  - depends on: %s\n", strings.Join(s.DependsOn, ", "))
				}
				if len(s.UsedBy) > 0 {
					r.Printf("  - used by: %s\n", strings.Join(s.UsedBy, ", "))
				}
			}
			r.Println("")
		}

		r.Println(output.FormatKeyValue("Total Steps", fmt.Sprintf("%d", g.TotalSteps)))
		r.Println(output.FormatKeyValue("Total Dependencies", fmt.Sprintf("%d", g.TotalEdges)))
		r.Println("")
	}
}
