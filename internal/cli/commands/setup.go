package commands

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/pqdeps/internal/cli/config"
	"github.com/leapstack-labs/pqdeps/internal/cli/output"
	"github.com/leapstack-labs/pqdeps/internal/engine"
	"github.com/leapstack-labs/pqdeps/internal/loader"
	"github.com/leapstack-labs/pqdeps/internal/provider"
	"github.com/leapstack-labs/pqdeps/pkg/document"
)

// ErrDocumentsFailed is returned under --strict when a document could not be
// analyzed.
var ErrDocumentsFailed = errors.New("some documents could not be analyzed")

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
	cmd      *cobra.Command
}

// NewCommandContext creates a CommandContext from the config and logger
// stored on cmd's context.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := config.GetConfig(cmd.Context())
	mode := output.Mode(cfg.OutputFormat)
	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(cmd.Context()),
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode),
		cmd:      cmd,
	}
}

// Load reads the combined source at path ("-" or "" for stdin).
func (c *CommandContext) Load(path string) (*loader.Source, error) {
	l := loader.Loader{Marker: c.Cfg.Split.Marker, Stdin: c.cmd.InOrStdin()}
	src, err := l.Load(path)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("source loaded", "path", src.Path, "files", len(src.Files), "bytes", len(src.Text))
	return src, nil
}

// Splitter returns the configured document splitter.
func (c *CommandContext) Splitter() document.Splitter {
	return document.Splitter{Marker: c.Cfg.Split.Marker, DefaultName: c.Cfg.Split.DefaultName}
}

// NewEngine creates an engine backed by the configured parser command.
func (c *CommandContext) NewEngine() (*engine.Engine, error) {
	if err := c.Cfg.ValidateParser(); err != nil {
		return nil, err
	}
	p, err := provider.NewCommand(c.Cfg.Parser.Command, c.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to set up parser: %w", err)
	}
	return c.newEngine(p)
}

func (c *CommandContext) newEngine(p provider.Provider) (*engine.Engine, error) {
	return engine.New(engine.Config{
		Provider: p,
		Settings: provider.Settings{
			Locale:  c.Cfg.Parser.Locale,
			Timeout: c.Cfg.Parser.Timeout,
		},
		Concurrency: c.Cfg.Concurrency,
		Marker:      c.Cfg.Split.Marker,
		DefaultName: c.Cfg.Split.DefaultName,
		Logger:      c.Logger,
	})
}

// pathArg returns the optional path argument, defaulting to stdin.
func pathArg(args []string) string {
	if len(args) == 0 {
		return loader.StdinPath
	}
	return args[0]
}
