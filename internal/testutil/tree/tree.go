// Package tree builds Power Query syntax trees for tests.
package tree

import (
	"strings"
	"testing"

	"github.com/leapstack-labs/pqdeps/pkg/ast"
)

// Let builds `let steps in body`. The body comes first so steps can be
// variadic.
func Let(body ast.Node, steps ...*ast.IdentifierPairedExpression) *ast.LetExpression {
	return &ast.LetExpression{Steps: steps, Body: body}
}

// Step builds a `name = value` binding.
func Step(name string, value ast.Node) *ast.IdentifierPairedExpression {
	return &ast.IdentifierPairedExpression{Key: &ast.Identifier{Literal: name}, Value: value}
}

// Ref builds a reference to name.
func Ref(name string) *ast.IdentifierExpression {
	return &ast.IdentifierExpression{Identifier: &ast.Identifier{Literal: name}}
}

// Lit builds a literal leaf.
func Lit(literal string) *ast.Composite {
	return &ast.Composite{NodeKind: "LiteralExpression", Literal: literal}
}

// Node builds an opaque composite of the given kind.
func Node(kind string, children ...ast.Node) *ast.Composite {
	return &ast.Composite{NodeKind: ast.Kind(kind), Children: children}
}

// Call builds `fn(args...)`.
func Call(fn ast.Node, args ...ast.Node) *ast.Composite {
	return Node("RecursivePrimaryExpression", fn, Node("InvokeExpression", args...))
}

// Fn builds `(params) => body`.
func Fn(params []string, body ast.Node) *ast.FunctionExpression {
	f := &ast.FunctionExpression{Body: body}
	for _, p := range params {
		f.Parameters = append(f.Parameters, &ast.Identifier{Literal: p})
	}
	return f
}

// Each builds `each body`.
func Each(body ast.Node) *ast.EachExpression {
	return &ast.EachExpression{Body: body}
}

// Span returns the token range of the first occurrence of text in source,
// using the parser's convention: positionStart is one past the first code
// unit and positionEnd is exclusive. The source is assumed to be ASCII up to
// the end of the match.
func Span(t testing.TB, source, text string) *ast.TokenRange {
	t.Helper()
	i := strings.Index(source, text)
	if i < 0 {
		t.Fatalf("%q not found in source", text)
	}
	return &ast.TokenRange{
		PositionStart: ast.Position{CodeUnit: i + 1},
		PositionEnd:   ast.Position{CodeUnit: i + len(text)},
	}
}

// At sets the token range of n and returns n.
func At[N ast.Node](n N, r *ast.TokenRange) N {
	switch v := any(n).(type) {
	case *ast.LetExpression:
		v.TokenRange = r
	case *ast.IdentifierPairedExpression:
		v.TokenRange = r
	case *ast.IdentifierExpression:
		v.TokenRange = r
	case *ast.Identifier:
		v.TokenRange = r
	case *ast.FunctionExpression:
		v.TokenRange = r
	case *ast.EachExpression:
		v.TokenRange = r
	case *ast.Composite:
		v.TokenRange = r
	}
	return n
}
