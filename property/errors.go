package property

import (
	"errors"
	"reflect"
	"strings"
)

//go:generate go tool stringer -type=ErrorCode -output=errorcode_string.go

// ErrorCode is the result code of a structural visitation failure.
type ErrorCode int

const (
	Ok ErrorCode = iota
	NullContainer
	InvalidContainerType
	MissingPropertyBag
	InvalidCast
	InvalidPath
)

// Sentinel errors.
var (
	// ErrReadOnly is returned when writing a read-only property.
	ErrReadOnly = errors.New("property is read-only")

	// ErrAlreadyRegistered is returned when a different bag is registered for a type that has one.
	ErrAlreadyRegistered = errors.New("property bag already registered")

	// ErrInvalidBagType is returned when registering a bag for a type that cannot own properties.
	ErrInvalidBagType = errors.New("type cannot own a property bag")

	// ErrDuplicateProperty is returned when two properties of one bag share a name.
	ErrDuplicateProperty = errors.New("duplicate property name")
)

// Comparable sentinels matching any *VisitError with the same code.
var (
	ErrNullContainer        = &VisitError{Code: NullContainer}
	ErrInvalidContainerType = &VisitError{Code: InvalidContainerType}
	ErrMissingPropertyBag   = &VisitError{Code: MissingPropertyBag}
	ErrInvalidCast          = &VisitError{Code: InvalidCast}
	ErrInvalidPath          = &VisitError{Code: InvalidPath}
)

// VisitError is a structural visitation failure.
type VisitError struct {
	Code ErrorCode    // Machine-readable result code
	Type reflect.Type // Container type involved (optional)
	Path string       // Property path involved (optional)
	Err  error        // Underlying cause (optional)
}

// Error implements the error interface.
func (e *VisitError) Error() string {
	var b strings.Builder

	b.WriteString(e.Code.String())

	if e.Type != nil {
		b.WriteString(" for type ")
		b.WriteString(e.Type.String())
	}

	if e.Path != "" {
		b.WriteString(" at path ")
		b.WriteString(e.Path)
	}

	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}

	return b.String()
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *VisitError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a *VisitError with the same code.
func (e *VisitError) Is(target error) bool {
	var t *VisitError
	if !errors.As(target, &t) {
		return false
	}

	return t.Code == e.Code
}

// CodeOf returns the ErrorCode carried by err: Ok for nil, the code of the
// first *VisitError in the chain, or InvalidCast for any other failure.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return Ok
	}

	var ve *VisitError
	if errors.As(err, &ve) {
		return ve.Code
	}

	return InvalidCast
}

func newError(code ErrorCode, t reflect.Type, cause error) *VisitError {
	return &VisitError{Code: code, Type: t, Err: cause}
}
