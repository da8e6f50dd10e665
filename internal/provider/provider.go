// Package provider obtains parsed trees for Power Query text.
//
// Parsing is delegated to an external component; this package defines the
// boundary and ships two implementations: Func, which adapts a plain
// function, and Command, which runs a parser process that speaks JSON over
// stdin and stdout.
package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/leapstack-labs/pqdeps/pkg/ast"
)

// DefaultLocale is used when Settings.Locale is empty.
const DefaultLocale = "en-US"

// Settings configures one parse call.
type Settings struct {
	// Locale is forwarded to the parser (affects number and date literals)
	Locale string
	// Timeout bounds a single parse call. Zero means no limit.
	Timeout time.Duration
}

// Provider parses the text of one document.
type Provider interface {
	Parse(ctx context.Context, settings Settings, text string) (ast.Node, error)
}

// Func adapts a function to the Provider interface.
type Func func(ctx context.Context, settings Settings, text string) (ast.Node, error)

// Parse calls f.
func (f Func) Parse(ctx context.Context, settings Settings, text string) (ast.Node, error) {
	return f(ctx, settings, text)
}

// ParseError reports a document the parser could not turn into a tree.
type ParseError struct {
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Message == "" && e.Err != nil {
		return fmt.Sprintf("parse failed: %v", e.Err)
	}
	return "parse failed: " + e.Message
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

func (s Settings) locale() string {
	if s.Locale == "" {
		return DefaultLocale
	}
	return s.Locale
}
