package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/pqdeps/internal/cli/output"
	"github.com/leapstack-labs/pqdeps/pkg/document"
)

// NewSplitCommand creates the split command.
func NewSplitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "split [path|-]",
		Short: "Show the documents of a combined source",
		Long: `Split a combined source into its documents and print them.

A line starting with the header marker (default "//") followed by a name
starts a new document. A source without headers is one document named by
split.default_name. No parser is needed.`,
		Example: `  # Show the documents of a combined source
  pqdeps split queries.pq

  # Use a different header marker
  pqdeps split queries.pq --marker '##'`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSplit(cmd, pathArg(args))
		},
	}
	return cmd
}

func runSplit(cmd *cobra.Command, path string) error {
	cmdCtx := NewCommandContext(cmd)

	src, err := cmdCtx.Load(path)
	if err != nil {
		return err
	}
	if err := document.Validate(src.Text); err != nil {
		return err
	}
	docs := cmdCtx.Splitter().Split(src.Text)

	r := cmdCtx.Renderer
	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(documentOutputs(docs))
	case output.ModeYAML:
		return r.YAML(documentOutputs(docs))
	case output.ModeMarkdown:
		splitMarkdown(r, docs)
	default:
		splitText(r, docs)
	}
	return nil
}

func documentOutputs(docs []document.SourceDocument) []output.DocumentOutput {
	out := make([]output.DocumentOutput, len(docs))
	for i, d := range docs {
		out[i] = output.DocumentOutput{Name: d.Name, Code: d.Code}
	}
	return out
}

// splitText outputs each document under a styled header.
func splitText(r *output.Renderer, docs []document.SourceDocument) {
	styles := r.Styles()
	for _, d := range docs {
		r.Println(styles.Header1.Render(d.Name))
		r.Println(d.Code)
		r.Println("")
	}
	r.Println(styles.Muted.Render(plural(len(docs), "document", "documents")))
}

// splitMarkdown outputs each document as a section with a code block.
func splitMarkdown(r *output.Renderer, docs []document.SourceDocument) {
	r.Println(output.FormatHeader(1, "Documents"))
	r.Println("")
	for _, d := range docs {
		r.Println(output.FormatHeader(2, d.Name))
		r.Println(output.FormatCodeBlock("powerquery", d.Code))
		r.Println("")
	}
	r.Println(output.FormatKeyValue("Total Documents", fmt.Sprintf("%d", len(docs))))
}
