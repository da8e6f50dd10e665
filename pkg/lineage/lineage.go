package lineage

import (
	"fmt"

	"github.com/leapstack-labs/pqdeps/pkg/ast"
	"github.com/leapstack-labs/pqdeps/pkg/document"
)

// Assemble analyzes the parsed tree of doc. root must be a LetExpression
// whose body is an IdentifierExpression; anything else is a *ShapeError.
// Steps are reported in declaration order.
func Assemble(doc document.SourceDocument, root ast.Node) (*QueryResult, error) {
	let, output, err := checkShape(doc.Name, root)
	if err != nil {
		return nil, err
	}

	names := let.StepNames()
	scope := NewDocumentScope(names)
	source := NewSource(doc.Code)

	result := &QueryResult{
		Name:   doc.Name,
		Output: output,
		Steps:  make([]*StepRecord, 0, len(let.Steps)),
	}
	edges := make(map[string][]string, len(let.Steps))
	for _, step := range let.Steps {
		res := Resolve(step.Value, scope)
		result.Steps = append(result.Steps, &StepRecord{
			Name:            step.Name(),
			References:      res.References,
			ExternalQueries: res.External,
			Code:            source.Code(step.Value),
		})
		edges[step.Name()] = res.References
	}

	live := stepGraph(names, edges).Reachable(output)
	for _, rec := range result.Steps {
		rec.UsedForOutput = live[rec.Name]
	}
	return result, nil
}

// checkShape validates root and returns it with the output identifier.
func checkShape(name string, root ast.Node) (*ast.LetExpression, string, error) {
	if ast.IsNil(root) {
		return nil, "", &ShapeError{Document: name, Reason: "empty tree"}
	}
	let, ok := root.(*ast.LetExpression)
	if !ok {
		return nil, "", &ShapeError{Document: name, Reason: fmt.Sprintf("root is %s, not %s", root.Kind(), ast.KindLetExpression)}
	}
	body, ok := let.Body.(*ast.IdentifierExpression)
	if !ok || body == nil {
		kind := "nothing"
		if !ast.IsNil(let.Body) {
			kind = string(let.Body.Kind())
		}
		return nil, "", &ShapeError{Document: name, Reason: fmt.Sprintf("let body is %s, not an identifier", kind)}
	}
	if body.Name() == "" {
		return nil, "", &ShapeError{Document: name, Reason: "let body identifier has no name"}
	}

	seen := make(map[string]bool, len(let.Steps))
	for i, step := range let.Steps {
		if step == nil || step.Name() == "" {
			return nil, "", &ShapeError{Document: name, Reason: fmt.Sprintf("step %d has no name", i+1)}
		}
		if seen[step.Name()] {
			return nil, "", &ShapeError{Document: name, Reason: fmt.Sprintf("step %q is declared more than once", step.Name())}
		}
		seen[step.Name()] = true
	}
	return let, body.Name(), nil
}
