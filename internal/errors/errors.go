// Package errors defines the engine's error taxonomy: Structural, Input,
// Runtime, and Semantic failures, each carrying enough context to name the
// offending identifier or input. Value-local failures (a tag transform or
// scripted filter that fails on one line) are never represented here —
// those degrade to a null tag value or an unset bit, per spec.
package errors

import (
	stderrors "errors"
	"fmt"

	"github.com/angelini/logtags/internal/ids"
)

// Kind names one of the four error categories the engine can surface.
type Kind string

const (
	// Structural: unknown identifiers, a plan not rooted at a File, a
	// Filter/Distinct whose parent chain never reaches a Tag.
	Structural Kind = "structural"
	// Input: malformed regex, malformed script, missing/unreadable file.
	Input Kind = "input"
	// Runtime: I/O failure mid-read, script evaluation failure that is
	// not value-local (e.g. a setup script failing outright).
	Runtime Kind = "runtime"
	// Semantic: an operation that doesn't apply to the identifier's kind.
	Semantic Kind = "semantic"
)

// Error is the one exported error type for every kind above. Op names the
// engine operation that failed; ID is the offending identifier when one
// exists; Underlying is the wrapped cause, if any.
type Error struct {
	Kind       Kind
	Op         string
	ID         *ids.ID
	Underlying error
}

func (e *Error) Error() string {
	switch {
	case e.ID != nil && e.Underlying != nil:
		return fmt.Sprintf("%s: %s failed for %s: %v", e.Kind, e.Op, e.ID, e.Underlying)
	case e.ID != nil:
		return fmt.Sprintf("%s: %s failed for %s", e.Kind, e.Op, e.ID)
	case e.Underlying != nil:
		return fmt.Sprintf("%s: %s failed: %v", e.Kind, e.Op, e.Underlying)
	default:
		return fmt.Sprintf("%s: %s failed", e.Kind, e.Op)
	}
}

func (e *Error) Unwrap() error {
	return e.Underlying
}

func newErr(kind Kind, op string, id *ids.ID, underlying error) *Error {
	return &Error{Kind: kind, Op: op, ID: id, Underlying: underlying}
}

// StructuralErr builds a Structural-kind error, e.g. an unknown identifier or
// a Filter/Distinct with no governing tag.
func StructuralErr(op string, id ids.ID, underlying error) *Error {
	return newErr(Structural, op, &id, underlying)
}

// StructuralNoID builds a Structural error that names no single id (e.g.
// a plan not rooted at a File).
func StructuralNoID(op string, underlying error) *Error {
	return newErr(Structural, op, nil, underlying)
}

// InputErr builds an Input-kind error: malformed regex/script, bad path.
func InputErr(op string, id ids.ID, underlying error) *Error {
	return newErr(Input, op, &id, underlying)
}

// InputNoID builds an Input error with no id (e.g. a bad Load path before
// a FileId exists).
func InputNoID(op string, underlying error) *Error {
	return newErr(Input, op, nil, underlying)
}

// RuntimeErr builds a Runtime-kind error: I/O failure, non-value-local
// script failure.
func RuntimeErr(op string, id ids.ID, underlying error) *Error {
	return newErr(Runtime, op, &id, underlying)
}

// SemanticErr builds a Semantic-kind error: operation not valid for this
// identifier's kind.
func SemanticErr(op string, id ids.ID, underlying error) *Error {
	return newErr(Semantic, op, &id, underlying)
}

// Is reports whether err (or something it wraps) is an *Error of kind k.
func Is(err error, k Kind) bool {
	var e *Error
	return stderrors.As(err, &e) && e.Kind == k
}
