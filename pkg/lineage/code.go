package lineage

import (
	"strings"
	"unicode/utf16"

	"github.com/leapstack-labs/pqdeps/pkg/ast"
)

// Source is document text addressable by the parser's UTF-16 code unit
// offsets.
type Source struct {
	text string
	// offsets[u] is the byte offset of code unit u; len(offsets) is one more
	// than the number of code units. nil when text is pure ASCII and offsets
	// coincide.
	offsets []int
}

// NewSource indexes text for code unit addressing.
func NewSource(text string) *Source {
	s := &Source{text: text}
	for i := 0; i < len(text); i++ {
		if text[i] >= 0x80 {
			s.offsets = codeUnitOffsets(text)
			break
		}
	}
	return s
}

func codeUnitOffsets(text string) []int {
	offsets := make([]int, 0, len(text)+1)
	for i, r := range text {
		n := utf16.RuneLen(r)
		if n < 1 {
			n = 1
		}
		// The second unit of a surrogate pair maps to the start of its rune.
		for ; n > 0; n-- {
			offsets = append(offsets, i)
		}
	}
	return append(offsets, len(text))
}

// Len returns the text length in UTF-16 code units.
func (s *Source) Len() int {
	if s.offsets == nil {
		return len(s.text)
	}
	return len(s.offsets) - 1
}

// Slice returns the text between code units start and end. Offsets are
// clamped to the text; start > end yields "".
func (s *Source) Slice(start, end int) string {
	start, end = clamp(start, s.Len()), clamp(end, s.Len())
	if start > end {
		return ""
	}
	if s.offsets != nil {
		start, end = s.offsets[start], s.offsets[end]
	}
	return s.text[start:end]
}

// Code returns the trimmed source text of n, or "" when n has no token range.
//
// The parser reports positionStart one code unit past the first character of
// the node and positionEnd as the exclusive end, so the node spans
// [positionStart-1, positionEnd).
func (s *Source) Code(n ast.Node) string {
	if ast.IsNil(n) {
		return ""
	}
	r := n.Range()
	if r == nil {
		return ""
	}
	return strings.TrimSpace(s.Slice(r.PositionStart.CodeUnit-1, r.PositionEnd.CodeUnit))
}

// ExtractCode returns the trimmed source text of value within source.
func ExtractCode(value ast.Node, source string) string {
	return NewSource(source).Code(value)
}

func clamp(v, limit int) int {
	if v < 0 {
		return 0
	}
	if v > limit {
		return limit
	}
	return v
}
