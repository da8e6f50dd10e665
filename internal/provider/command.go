package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"unicode/utf8"

	"github.com/leapstack-labs/pqdeps/pkg/ast"
)

// ErrNoCommand is returned by NewCommand for an empty argv.
var ErrNoCommand = errors.New("parser command is not configured")

// maxStderr bounds how much parser stderr is quoted in errors.
const maxStderr = 512

// Command runs an external parser once per document.
//
// The process receives one JSON request on stdin:
//
//	{"settings": {"locale": "en-US"}, "text": "let ... in ..."}
//
// and must print a parse result on stdout, either a powerquery-parser
// result (`{"kind": "ParseOk", "root": ...}` or `{"kind": "ParseError", ...}`),
// a `{"success": ..., "parseResult": ...}` envelope or a bare root node.
type Command struct {
	Path   string
	Args   []string
	Env    []string // appended to the inherited environment when set
	Logger *slog.Logger
}

// NewCommand returns a Command running argv[0] with the remaining arguments.
func NewCommand(argv []string, logger *slog.Logger) (*Command, error) {
	if len(argv) == 0 || strings.TrimSpace(argv[0]) == "" {
		return nil, ErrNoCommand
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Command{Path: argv[0], Args: argv[1:], Logger: logger}, nil
}

type request struct {
	Settings requestSettings `json:"settings"`
	Text     string          `json:"text"`
}

type requestSettings struct {
	Locale string `json:"locale"`
}

// Parse implements Provider. Cancellation and timeouts are returned as the
// context error; everything else the parser reports is a *ParseError.
func (c *Command) Parse(ctx context.Context, settings Settings, text string) (ast.Node, error) {
	if settings.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, settings.Timeout)
		defer cancel()
	}

	payload, err := json.Marshal(request{
		Settings: requestSettings{Locale: settings.locale()},
		Text:     text,
	})
	if err != nil {
		return nil, fmt.Errorf("encode parse request: %w", err)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	cmd.Stdin = bytes.NewReader(payload)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if len(c.Env) > 0 {
		cmd.Env = append(cmd.Environ(), c.Env...)
	}

	c.logger().Debug("running parser", "command", c.Path, "bytes", len(text))
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("parser %s: %w", c.Path, ctxErr)
		}
		msg := truncate(strings.TrimSpace(stderr.String()), maxStderr)
		if msg == "" {
			msg = err.Error()
		}
		return nil, &ParseError{Message: msg, Err: err}
	}

	root, err := ast.DecodeParseResult(stdout.Bytes())
	if err != nil {
		var failure *ast.FailureError
		if errors.As(err, &failure) {
			msg := failure.Message
			if msg == "" {
				msg = "parser reported no diagnostic"
			}
			return nil, &ParseError{Message: msg, Err: err}
		}
		return nil, &ParseError{Message: "unreadable parser output", Err: err}
	}
	return root, nil
}

func (c *Command) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.Logger
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
