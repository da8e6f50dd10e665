package lineage

// Binding classifies how a name resolves against a scope chain.
type Binding int

const (
	// BindingExternal means no scope binds the name.
	BindingExternal Binding = iota
	// BindingStep means the name is a step of the document.
	BindingStep
	// BindingNested means an inner scope (nested let, function parameter or
	// each) binds the name.
	BindingNested
)

// String returns a human readable binding name.
func (b Binding) String() string {
	switch b {
	case BindingStep:
		return "step"
	case BindingNested:
		return "nested"
	default:
		return "external"
	}
}

// Scope is one link of an immutable scope chain. Push returns a new chain and
// never modifies the receiver, so sibling branches of a traversal can share
// their common ancestors.
type Scope struct {
	names  map[string]struct{}
	parent *Scope
}

// NewDocumentScope returns the outermost scope holding the document's step
// names.
func NewDocumentScope(names []string) *Scope {
	return &Scope{names: nameSet(names)}
}

// Push returns a chain with an inner scope binding names in front of s.
func (s *Scope) Push(names []string) *Scope {
	return &Scope{names: nameSet(names), parent: s}
}

// Lookup resolves name innermost first.
func (s *Scope) Lookup(name string) Binding {
	for cur := s; cur != nil; cur = cur.parent {
		if _, ok := cur.names[name]; !ok {
			continue
		}
		if cur.parent == nil {
			return BindingStep
		}
		return BindingNested
	}
	return BindingExternal
}

// Depth returns the number of scopes in the chain.
func (s *Scope) Depth() int {
	n := 0
	for cur := s; cur != nil; cur = cur.parent {
		n++
	}
	return n
}

func nameSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}
