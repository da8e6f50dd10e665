package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/pqdeps/internal/cli/output"
	"github.com/leapstack-labs/pqdeps/internal/engine"
	"github.com/leapstack-labs/pqdeps/pkg/lineage"
)

// AnalyzeOptions holds options for the analyze command.
type AnalyzeOptions struct {
	Watch bool
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand() *cobra.Command {
	opts := &AnalyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze [path|-]",
		Short: "Analyze step dependencies",
		Long: `Analyze the steps of every query in a file, a directory of .pq/.m/.pqm
files, or standard input.

For each step the result lists the sibling steps it references, the external
queries it references, its source text, and whether the query output depends
on it.

Output adapts to environment:
  - Terminal: Styled tables
  - Piped/Scripted: JSON`,
		Example: `  # Analyze a combined source
  pqdeps analyze queries.pq --parser-cmd node,parse.js

  # Analyze a directory and print YAML
  pqdeps analyze ./queries -o yaml

  # Read from stdin
  cat queries.pq | pqdeps analyze -

  # Re-run on every change
  pqdeps analyze ./queries --watch`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, pathArg(args), opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Re-run when query files change")

	return cmd
}

func runAnalyze(cmd *cobra.Command, path string, opts *AnalyzeOptions) error {
	cmdCtx := NewCommandContext(cmd)
	eng, err := cmdCtx.NewEngine()
	if err != nil {
		return err
	}

	if !opts.Watch {
		return analyzeOnce(cmd.Context(), cmdCtx, eng, path)
	}
	// A failed run is reported and the watch goes on.
	return watch(cmd.Context(), path, cmdCtx.Logger, func() {
		if err := analyzeOnce(cmd.Context(), cmdCtx, eng, path); err != nil && cmd.Context().Err() == nil {
			cmdCtx.Renderer.Error(err.Error())
		}
	})
}

func analyzeOnce(ctx context.Context, cmdCtx *CommandContext, eng *engine.Engine, path string) error {
	src, err := cmdCtx.Load(path)
	if err != nil {
		return err
	}

	batch, err := eng.Analyze(ctx, src.Text)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	r := cmdCtx.Renderer
	if err := renderBatch(r, batch); err != nil {
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

func renderBatch(r *output.Renderer, batch *lineage.BatchResult) error {
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(batch)
	case output.ModeYAML:
		return r.YAML(batch)
	case output.ModeMarkdown:
		batchMarkdown(r, batch)
	default:
		batchText(r, batch)
	}
	return nil
}

// batchText outputs the batch as styled tables.
func batchText(r *output.Renderer, batch *lineage.BatchResult) {
	styles := r.Styles()

	for _, q := range batch.Queries {
		r.Printf("%s %s\n", styles.Header1.Render(q.Name), styles.Muted.Render("(output: "+q.Output+")"))
		r.Table([]string{"Step", "Used", "References", "External queries"}, stepRows(q))
		r.Println("")
	}

	r.Println(styles.Muted.Render(summary(batch)))
}

// batchMarkdown outputs the batch with one section per query.
func batchMarkdown(r *output.Renderer, batch *lineage.BatchResult) {
	r.Println(output.FormatHeader(1, "Step Lineage"))
	r.Println("")

	for _, q := range batch.Queries {
		r.Println(output.FormatHeader(2, q.Name))
		r.Println(output.FormatKeyValue("Output", q.Output))
		r.Println("")
		r.Table([]string{"Step", "Used", "References", "External queries"}, stepRows(q))
		r.Println("")

		for _, s := range q.Steps {
			if s.Code == "" {
				continue
			}
			r.Println(output.FormatHeader(3, s.Name))
			r.Println(output.FormatCodeBlock("powerquery", s.Code))
			r.Println("")
		}
	}

	if len(batch.Failures) > 0 {
		r.Println(output.FormatHeader(2, "Failures"))
		for _, f := range batch.Failures {
			r.Printf("- %s\n", f.Error())
		}
		r.Println("")
	}

	r.Println(output.FormatKeyValue("Summary", summary(batch)))
}

func stepRows(q *lineage.QueryResult) [][]string {
	rows := make([][]string, 0, len(q.Steps))
	for _, s := range q.Steps {
		used := "no"
		if s.UsedForOutput {
			used = "yes"
		}
		rows = append(rows, []string{
			s.Name,
			used,
			output.FormatList(s.References, "-"),
			output.FormatList(s.ExternalQueries, "-"),
		})
	}
	return rows
}

func summary(batch *lineage.BatchResult) string {
	steps := 0
	for _, q := range batch.Queries {
		steps += len(q.Steps)
	}
	parts := []string{
		plural(len(batch.Queries), "query", "queries"),
		plural(steps, "step", "steps"),
	}
	if len(batch.Failures) > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", len(batch.Failures)))
	}
	return strings.Join(parts, ", ")
}

func plural(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}
