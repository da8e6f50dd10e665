// Package lineage computes step-level dependency information for Power Query
// documents.
//
// A document is a `let ... in <Output>` expression. For every step the
// package reports which sibling steps it references, which names it takes
// from outside the document, the step's source text, and whether the step
// contributes to the output.
//
// # Basic Usage
//
//	root, err := ast.DecodeParseResult(parserOutput)
//	if err != nil {
//	    return err
//	}
//
//	result, err := lineage.Assemble(doc, root)
//	if errors.Is(err, lineage.ErrNotAnalyzable) {
//	    // root is not `let ... in <identifier>`
//	}
//
//	for _, step := range result.Steps {
//	    fmt.Println(step.Name, step.References, step.UsedForOutput)
//	}
//
// # Scoping
//
// The top-level steps form one flat scope: every step can see every other
// step regardless of declaration order. Nested `let` expressions, function
// parameters and the implicit `_` of `each` open inner scopes. A name bound
// in an inner scope shadows the document's steps and is never reported,
// neither as a reference nor as an external name. Inner bindings are visible
// only below the node that introduces them, so a sibling step's nested
// binding never leaks.
package lineage
