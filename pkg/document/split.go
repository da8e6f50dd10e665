// Package document splits one combined Power Query source into named
// documents.
//
// A header is a line whose trimmed text starts with the marker (default
// "//") followed by a name:
//
//	// Customers
//	let Source = ... in Source
//	// Orders
//	let Source = Customers in Source
//
// Headers delimit documents; a header with no body is not a document.
package document

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Defaults for Splitter.
const (
	DefaultMarker = "//"
	DefaultName   = "Query1"
)

var (
	// ErrEmptyInput is returned for an empty or blank combined source.
	ErrEmptyInput = errors.New("combined source is empty")
	// ErrInvalidInput is returned for a combined source that is not valid UTF-8.
	ErrInvalidInput = errors.New("combined source is not valid UTF-8 text")
)

// SourceDocument is one named query.
type SourceDocument struct {
	Name string `json:"name" yaml:"name"`
	Code string `json:"code" yaml:"code"`
}

// Splitter splits combined sources. The zero value uses DefaultMarker and
// DefaultName.
type Splitter struct {
	Marker      string
	DefaultName string
}

// Validate rejects input that cannot be split at all.
func Validate(combined string) error {
	if strings.TrimSpace(combined) == "" {
		return ErrEmptyInput
	}
	if !utf8.ValidString(combined) {
		return ErrInvalidInput
	}
	return nil
}

// Split calls Splitter{}.Split.
func Split(combined string) []SourceDocument {
	return Splitter{}.Split(combined)
}

// Split partitions combined into documents in input order. Lines before the
// first header are dropped. Without any header the whole trimmed input is a
// single document under the default name. Repeated header names get a " (n)"
// suffix.
func (s Splitter) Split(combined string) []SourceDocument {
	marker := s.Marker
	if marker == "" {
		marker = DefaultMarker
	}

	var (
		docs      []SourceDocument
		current   string
		body      []string
		sawHeader bool
		taken     = make(map[string]bool)
	)

	flush := func() {
		code := trimBlankLines(body)
		if current != "" && code != "" {
			docs = append(docs, SourceDocument{Name: uniqueName(taken, current), Code: code})
		}
		body = body[:0]
	}

	for _, line := range strings.Split(combined, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if name, ok := headerName(line, marker); ok {
			flush()
			current = name
			sawHeader = true
			continue
		}
		body = append(body, line)
	}
	flush()

	if !sawHeader {
		name := s.DefaultName
		if name == "" {
			name = DefaultName
		}
		code := strings.TrimSpace(combined)
		if code == "" {
			return nil
		}
		return []SourceDocument{{Name: name, Code: code}}
	}
	return docs
}

// StartsWithHeader reports whether the first non-blank line of text is a
// header. Text that does not start with one would extend the preceding
// document when appended to a combined source.
func (s Splitter) StartsWithHeader(text string) bool {
	marker := s.Marker
	if marker == "" {
		marker = DefaultMarker
	}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		_, ok := headerName(line, marker)
		return ok
	}
	return false
}

// headerName reports whether line is a header and returns its name.
func headerName(line, marker string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, marker) {
		return "", false
	}
	name := strings.TrimSpace(trimmed[len(marker):])
	if name == "" {
		return "", false
	}
	return name, true
}

// trimBlankLines joins lines and trims leading and trailing whitespace.
func trimBlankLines(lines []string) string {
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// uniqueName returns name, or name with the first " (n)" suffix not yet
// taken, and marks the result taken.
func uniqueName(taken map[string]bool, name string) string {
	unique := name
	for n := 2; taken[unique]; n++ {
		unique = fmt.Sprintf("%s (%d)", name, n)
	}
	taken[unique] = true
	return unique
}

// Join renders documents back into a combined source using marker headers.
// Split(Join(docs)) returns docs when every code body is non-empty and
// no code line is itself a header.
func Join(docs []SourceDocument, marker string) string {
	if marker == "" {
		marker = DefaultMarker
	}
	var b strings.Builder
	for i, d := range docs {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s %s\n%s\n", marker, d.Name, d.Code)
	}
	return b.String()
}
