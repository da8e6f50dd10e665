// Package ast defines the typed Power Query syntax tree consumed by the
// lineage analysis, together with a decoder for the JSON produced by
// @microsoft/powerquery-parser.
//
// The node set is closed: LetExpression, IdentifierPairedExpression,
// IdentifierExpression, Identifier, FunctionExpression and EachExpression
// carry the fields the analysis depends on. Every other node kind decodes to
// a Composite whose children were discovered structurally.
package ast

// Kind is the node tag reported by the parser.
type Kind string

// Node kinds with dedicated variants.
const (
	KindLetExpression              Kind = "LetExpression"
	KindIdentifierPairedExpression Kind = "IdentifierPairedExpression"
	KindIdentifierExpression       Kind = "IdentifierExpression"
	KindIdentifier                 Kind = "Identifier"
	KindFunctionExpression         Kind = "FunctionExpression"
	KindEachExpression             Kind = "EachExpression"
)

// Wrapper kinds that only appear while decoding.
const (
	KindArrayWrapper Kind = "ArrayWrapper"
	KindCsv          Kind = "Csv"
	KindParameter    Kind = "Parameter"
)

// Position is one end of a token range. CodeUnit is an absolute offset into
// the document text, counted in UTF-16 code units.
type Position struct {
	CodeUnit     int `json:"codeUnit"`
	LineNumber   int `json:"lineNumber"`
	LineCodeUnit int `json:"lineCodeUnit"`
}

// TokenRange locates a node in the source text.
type TokenRange struct {
	PositionStart Position `json:"positionStart"`
	PositionEnd   Position `json:"positionEnd"`
}

// Node is implemented by every tree node.
type Node interface {
	// Kind returns the parser tag of the node.
	Kind() Kind
	// Range returns the node's token range, or nil when the parser did not
	// report one.
	Range() *TokenRange
	node()
}

// LetExpression is `let <steps> in <body>`.
type LetExpression struct {
	Steps      []*IdentifierPairedExpression
	Body       Node
	TokenRange *TokenRange
}

// StepNames returns the declared step names in declaration order.
// Steps without a key literal are skipped.
func (l *LetExpression) StepNames() []string {
	names := make([]string, 0, len(l.Steps))
	for _, s := range l.Steps {
		if name := s.Name(); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// IdentifierPairedExpression is one `name = value` binding.
type IdentifierPairedExpression struct {
	Key        *Identifier
	Value      Node
	TokenRange *TokenRange
}

// Name returns the key literal, or "" when the key is missing.
func (p *IdentifierPairedExpression) Name() string {
	if p.Key == nil {
		return ""
	}
	return p.Key.Literal
}

// IdentifierExpression is a name reference, optionally `@`-inclusive.
type IdentifierExpression struct {
	Identifier *Identifier
	Inclusive  bool
	TokenRange *TokenRange
}

// Name returns the referenced literal, or "" when the identifier is missing.
func (e *IdentifierExpression) Name() string {
	if e.Identifier == nil {
		return ""
	}
	return e.Identifier.Literal
}

// Identifier is a bare identifier token.
type Identifier struct {
	Literal    string
	TokenRange *TokenRange
}

// FunctionExpression is `(params) => body`.
type FunctionExpression struct {
	Parameters []*Identifier
	Body       Node
	TokenRange *TokenRange
}

// ParameterNames returns the parameter literals in declaration order.
func (f *FunctionExpression) ParameterNames() []string {
	names := make([]string, 0, len(f.Parameters))
	for _, p := range f.Parameters {
		if p != nil && p.Literal != "" {
			names = append(names, p.Literal)
		}
	}
	return names
}

// EachExpression is `each body`, which binds `_` inside body.
type EachExpression struct {
	Body       Node
	TokenRange *TokenRange
}

// EachParameter is the implicit parameter name bound by `each`.
const EachParameter = "_"

// Composite is any node kind the analysis has no dedicated variant for.
type Composite struct {
	NodeKind   Kind
	Literal    string // set for leaf kinds that report one (literals, constants)
	Children   []Node // in input order
	TokenRange *TokenRange
}

func (*LetExpression) node()              {}
func (*IdentifierPairedExpression) node() {}
func (*IdentifierExpression) node()       {}
func (*Identifier) node()                 {}
func (*FunctionExpression) node()         {}
func (*EachExpression) node()             {}
func (*Composite) node()                  {}

// Kind implements Node.
func (*LetExpression) Kind() Kind { return KindLetExpression }

// Kind implements Node.
func (*IdentifierPairedExpression) Kind() Kind { return KindIdentifierPairedExpression }

// Kind implements Node.
func (*IdentifierExpression) Kind() Kind { return KindIdentifierExpression }

// Kind implements Node.
func (*Identifier) Kind() Kind { return KindIdentifier }

// Kind implements Node.
func (*FunctionExpression) Kind() Kind { return KindFunctionExpression }

// Kind implements Node.
func (*EachExpression) Kind() Kind { return KindEachExpression }

// Kind implements Node.
func (c *Composite) Kind() Kind { return c.NodeKind }

// Range implements Node.
func (l *LetExpression) Range() *TokenRange { return l.TokenRange }

// Range implements Node.
func (p *IdentifierPairedExpression) Range() *TokenRange { return p.TokenRange }

// Range implements Node.
func (e *IdentifierExpression) Range() *TokenRange { return e.TokenRange }

// Range implements Node.
func (i *Identifier) Range() *TokenRange { return i.TokenRange }

// Range implements Node.
func (f *FunctionExpression) Range() *TokenRange { return f.TokenRange }

// Range implements Node.
func (e *EachExpression) Range() *TokenRange { return e.TokenRange }

// Range implements Node.
func (c *Composite) Range() *TokenRange { return c.TokenRange }

// Children returns the direct child nodes of n in source order.
// Nil children are omitted.
func Children(n Node) []Node {
	if IsNil(n) {
		return nil
	}
	var out []Node
	add := func(c Node) {
		if !IsNil(c) {
			out = append(out, c)
		}
	}

	switch n := n.(type) {
	case *LetExpression:
		for _, s := range n.Steps {
			add(s)
		}
		add(n.Body)
	case *IdentifierPairedExpression:
		add(n.Key)
		add(n.Value)
	case *IdentifierExpression:
		add(n.Identifier)
	case *Identifier:
	case *FunctionExpression:
		for _, p := range n.Parameters {
			add(p)
		}
		add(n.Body)
	case *EachExpression:
		add(n.Body)
	case *Composite:
		for _, c := range n.Children {
			add(c)
		}
	}
	return out
}

// IsNil reports whether n is nil, including typed nil pointers.
func IsNil(n Node) bool {
	switch v := n.(type) {
	case nil:
		return true
	case *LetExpression:
		return v == nil
	case *IdentifierPairedExpression:
		return v == nil
	case *IdentifierExpression:
		return v == nil
	case *Identifier:
		return v == nil
	case *FunctionExpression:
		return v == nil
	case *EachExpression:
		return v == nil
	case *Composite:
		return v == nil
	}
	return false
}
