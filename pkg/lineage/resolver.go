package lineage

import "github.com/leapstack-labs/pqdeps/pkg/ast"

// Resolution is the classified set of names referenced by one step value.
// Both slices hold unique names in first-occurrence order and are never nil.
type Resolution struct {
	References []string // sibling steps
	External   []string // names no scope binds
}

// frame is one pending node together with the scope chain it is visited in.
type frame struct {
	node  ast.Node
	scope *Scope
}

// Resolve classifies every identifier reference below value. scope is the
// chain value is evaluated in, normally the document scope built by
// NewDocumentScope. A nil scope treats every name as external.
//
// The walk uses an explicit stack, so nesting depth is bounded only by
// memory.
func Resolve(value ast.Node, scope *Scope) Resolution {
	refs := newOrderedSet()
	ext := newOrderedSet()

	stack := []frame{{node: value, scope: scope}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if ast.IsNil(f.node) {
			continue
		}

		switch n := f.node.(type) {
		case *ast.LetExpression:
			inner := f.scope.Push(n.StepNames())
			stack = append(stack, frame{node: n.Body, scope: inner})
			for i := len(n.Steps) - 1; i >= 0; i-- {
				if n.Steps[i] != nil {
					stack = append(stack, frame{node: n.Steps[i].Value, scope: inner})
				}
			}

		case *ast.FunctionExpression:
			stack = append(stack, frame{node: n.Body, scope: f.scope.Push(n.ParameterNames())})

		case *ast.EachExpression:
			stack = append(stack, frame{node: n.Body, scope: f.scope.Push([]string{ast.EachParameter})})

		case *ast.IdentifierExpression:
			name := n.Name()
			if name == "" {
				continue
			}
			switch f.scope.Lookup(name) {
			case BindingStep:
				refs.add(name)
			case BindingExternal:
				ext.add(name)
			}

		default:
			// Reverse push so children pop in source order.
			children := ast.Children(n)
			for i := len(children) - 1; i >= 0; i-- {
				stack = append(stack, frame{node: children[i], scope: f.scope})
			}
		}
	}

	return Resolution{References: refs.items, External: ext.items}
}

type orderedSet struct {
	seen  map[string]struct{}
	items []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]struct{}), items: []string{}}
}

func (s *orderedSet) add(name string) {
	if _, ok := s.seen[name]; ok {
		return
	}
	s.seen[name] = struct{}{}
	s.items = append(s.items, name)
}
