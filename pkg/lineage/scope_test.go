package lineage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScope_Lookup(t *testing.T) {
	doc := NewDocumentScope([]string{"Source", "Filtered"})
	inner := doc.Push([]string{"Source", "tmp"})

	tests := []struct {
		name  string
		scope *Scope
		ident string
		want  Binding
	}{
		{"document step", doc, "Filtered", BindingStep},
		{"unknown", doc, "Sales", BindingExternal},
		{"inner shadows step", inner, "Source", BindingNested},
		{"inner only", inner, "tmp", BindingNested},
		{"through inner to document", inner, "Filtered", BindingStep},
		{"inner not visible from document", doc, "tmp", BindingExternal},
		{"nil chain", nil, "Source", BindingExternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.scope.Lookup(tt.ident))
		})
	}
}

func TestScope_PushDoesNotModifyParent(t *testing.T) {
	doc := NewDocumentScope([]string{"A"})
	left := doc.Push([]string{"x"})
	right := doc.Push([]string{"y"})

	assert.Equal(t, BindingNested, left.Lookup("x"))
	assert.Equal(t, BindingExternal, left.Lookup("y"))
	assert.Equal(t, BindingExternal, right.Lookup("x"))
	assert.Equal(t, 1, doc.Depth())
	assert.Equal(t, 2, left.Depth())
	assert.Equal(t, "nested", BindingNested.String())
}
