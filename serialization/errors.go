package serialization

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrForbiddenType is returned when a value of a type that cannot be
	// serialized is written, or named by $type while reading.
	ErrForbiddenType = errors.New("type cannot be serialized")

	// ErrCycle is returned when a cycle is found while references are disabled.
	ErrCycle = errors.New("reference cycle with serialized references disabled")

	// ErrDuplicateAdapter is returned when an adapter is added twice for a type.
	ErrDuplicateAdapter = errors.New("adapter already registered for type")

	// ErrDuplicateMigration is returned when a migration is added twice for a type.
	ErrDuplicateMigration = errors.New("migration already registered for type")

	// ErrUnknownType is returned when a $type name cannot be resolved.
	ErrUnknownType = errors.New("unknown type name")

	// ErrDuplicateTypeName is returned when a type name is bound to two types.
	ErrDuplicateTypeName = errors.New("type name already registered")

	// ErrForwardReference is returned when $ref names an id that was not read yet.
	ErrForwardReference = errors.New("reference to an id that was not deserialized yet")

	// ErrTypeMismatch is returned when a value cannot be stored in its slot.
	ErrTypeMismatch = errors.New("value type does not match slot type")

	// ErrSyntax is returned for malformed documents.
	ErrSyntax = errors.New("syntax error")

	// ErrContinueVisitation is returned by adapters that decline a value; the
	// default handling is used instead.
	ErrContinueVisitation = errors.New("continue with default visitation")
)

// SyntaxError describes a malformed document.
type SyntaxError struct {
	Offset int    // byte offset of the offending input
	Msg    string // description of the problem
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at offset %d: %s", e.Offset, e.Msg)
}

// Unwrap returns ErrSyntax for errors.Is compatibility.
func (e *SyntaxError) Unwrap() error {
	return ErrSyntax
}
