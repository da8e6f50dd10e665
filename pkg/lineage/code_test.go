package lineage

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leapstack-labs/pqdeps/internal/testutil/tree"
	"github.com/leapstack-labs/pqdeps/pkg/ast"
)

func span(start, end int) *ast.TokenRange {
	return &ast.TokenRange{
		PositionStart: ast.Position{CodeUnit: start},
		PositionEnd:   ast.Position{CodeUnit: end},
	}
}

func TestExtractCode(t *testing.T) {
	tests := []struct {
		name   string
		source string
		node   ast.Node
		want   string
	}{
		{
			name:   "start is one past the first unit",
			source: "0123456789abcd xyz",
			node:   tree.At(tree.Lit("abcd"), span(11, 15)),
			want:   "abcd",
		},
		{
			name:   "surrounding whitespace trimmed",
			source: "let A =\n   1 + 2  \nin A",
			node:   tree.At(tree.Lit(""), span(8, 18)),
			want:   "1 + 2",
		},
		{
			name:   "no range",
			source: "let A = 1 in A",
			node:   tree.Lit("1"),
			want:   "",
		},
		{
			name:   "nil node",
			source: "let A = 1 in A",
			node:   nil,
			want:   "",
		},
		{
			name:   "end clamped",
			source: "abc",
			node:   tree.At(tree.Lit(""), span(2, 99)),
			want:   "bc",
		},
		{
			name:   "start before text clamped",
			source: "abc",
			node:   tree.At(tree.Lit(""), span(0, 2)),
			want:   "ab",
		},
		{
			name:   "inverted range",
			source: "abcdef",
			node:   tree.At(tree.Lit(""), span(5, 2)),
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractCode(tt.node, tt.source))
		})
	}
}

func TestSource_UTF16Offsets(t *testing.T) {
	// "é" is one UTF-16 unit and two bytes; "😀" is two units and four bytes
	src := NewSource(`let Name = "é😀", Next = Name in Next`)

	assert.Equal(t, 37, src.Len())
	// Next's value "Name" starts at unit 25
	assert.Equal(t, "Name", src.Code(tree.At(tree.Ref("Name"), span(26, 29))))
	assert.Equal(t, `"é😀"`, src.Code(tree.At(tree.Lit(""), span(12, 16))))
}

func TestSource_ASCII(t *testing.T) {
	src := NewSource("let A = 1 in A")

	assert.Nil(t, src.offsets)
	assert.Equal(t, 14, src.Len())
	assert.Equal(t, "A = 1", src.Slice(4, 9))
}
