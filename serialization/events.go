package serialization

import (
	"propbag/internal/diagnostic"
)

// EventType is the severity of a deserialization event.
type EventType = diagnostic.Severity

// Event severities.
const (
	EventLog       = diagnostic.SeverityLog
	EventWarning   = diagnostic.SeverityWarning
	EventError     = diagnostic.SeverityError
	EventException = diagnostic.SeverityException
)

// DeserializationEvent is one entry of the event log.
type DeserializationEvent = diagnostic.Diagnostic

// Event codes.
const (
	CodeUnknownKey       = "unknown-key"
	CodeIncompatible     = "incompatible-value"
	CodeReadOnly         = "read-only"
	CodeReference        = "reference"
	CodeUnknownType      = "unknown-type"
	CodeForbiddenType    = "forbidden-type"
	CodeTypeMismatch     = "type-mismatch"
	CodeMigration        = "migration"
	CodeAdapter          = "adapter"
	CodeSyntax           = "syntax"
	CodeMissingBag       = "missing-bag"
	CodeLengthMismatch   = "length-mismatch"
	CodeUnresolvableSlot = "unresolvable-slot"
	CodeReservedKey      = "reserved-key"
)

// DeserializationResult is the ordered log of events of one read.
type DeserializationResult struct {
	diags diagnostic.Diagnostics
}

// Events returns the events in the order they were recorded.
func (r *DeserializationResult) Events() []DeserializationEvent {
	return r.diags.Events
}

// Filter returns the events of the given severity.
func (r *DeserializationResult) Filter(t EventType) []DeserializationEvent {
	return r.diags.Filter(t)
}

// DidSucceed reports whether no Error or Exception event was recorded.
func (r *DeserializationResult) DidSucceed() bool {
	return !r.diags.HasErrors()
}

// Throw returns nil on success, the single failure as-is, or all failures
// joined.
func (r *DeserializationResult) Throw() error {
	return r.diags.Error()
}

func (r *DeserializationResult) reset() {
	r.diags.Reset()
}

// clone copies the events out of a pooled result.
func (r *DeserializationResult) clone() DeserializationResult {
	var out DeserializationResult
	out.diags.Events = append([]DeserializationEvent(nil), r.diags.Events...)

	return out
}

func (r *DeserializationResult) countFailures() int {
	return len(r.diags.Filter(EventError)) + len(r.diags.Filter(EventException))
}
