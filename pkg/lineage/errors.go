package lineage

import (
	"errors"
	"fmt"
)

// ErrNotAnalyzable is matched by every shape rejection.
var ErrNotAnalyzable = errors.New("document is not analyzable")

// ShapeError reports a parsed document whose tree is not
// `let <steps> in <identifier>`.
type ShapeError struct {
	Document string
	Reason   string
}

// Error implements the error interface.
func (e *ShapeError) Error() string {
	if e.Document == "" {
		return fmt.Sprintf("%s: %s", ErrNotAnalyzable, e.Reason)
	}
	return fmt.Sprintf("document %q is not analyzable: %s", e.Document, e.Reason)
}

// Unwrap returns ErrNotAnalyzable.
func (e *ShapeError) Unwrap() error {
	return ErrNotAnalyzable
}

// Stage names where a document failed.
type Stage string

// Failure stages.
const (
	StageParse Stage = "parse"
	StageShape Stage = "shape"
)

// DocumentFailure records a document that produced no QueryResult.
type DocumentFailure struct {
	Document string
	Stage    Stage
	Err      error
}

// Error implements the error interface.
func (f *DocumentFailure) Error() string {
	return fmt.Sprintf("%s failed for %q: %v", f.Stage, f.Document, f.Err)
}

// Unwrap returns the underlying error.
func (f *DocumentFailure) Unwrap() error {
	return f.Err
}
