package diagnostic

import (
	"errors"
	"fmt"
	"strings"
)

//go:generate go tool stringer -type=Severity -output=severity_string.go

// Severity represents the severity level of a diagnostic.
type Severity int

const (
	SeverityLog Severity = iota
	SeverityWarning
	SeverityError
	SeverityException
)

// IsFailure reports whether the severity makes the overall operation fail.
func (s Severity) IsFailure() bool {
	return s >= SeverityError
}

// Diagnostic represents a single diagnostic message.
type Diagnostic struct {
	// Severity of the diagnostic.
	Severity Severity
	// Code is a unique identifier for this type of diagnostic.
	Code string
	// Message is the human-readable description.
	Message string
	// Path identifies which value in the document this relates to (if any).
	Path string
	// Err is the underlying failure for exception diagnostics.
	Err error
	// Suggestions are potential fixes or alternatives.
	Suggestions []string
}

// Diagnostics holds all diagnostics of one operation in the order they were
// recorded.
type Diagnostics struct {
	Events []Diagnostic
}

// Add appends a diagnostic.
func (d *Diagnostics) Add(diag Diagnostic) {
	d.Events = append(d.Events, diag)
}

// AddLog adds an informational diagnostic.
func (d *Diagnostics) AddLog(code, message, path string, suggestions ...string) {
	d.Add(Diagnostic{Severity: SeverityLog, Code: code, Message: message, Path: path, Suggestions: suggestions})
}

// AddWarning adds a warning diagnostic.
func (d *Diagnostics) AddWarning(code, message, path string) {
	d.Add(Diagnostic{Severity: SeverityWarning, Code: code, Message: message, Path: path})
}

// AddError adds an error diagnostic.
func (d *Diagnostics) AddError(code, message, path string) {
	d.Add(Diagnostic{Severity: SeverityError, Code: code, Message: message, Path: path})
}

// AddException adds an exception diagnostic carrying err.
func (d *Diagnostics) AddException(code string, err error, path string, suggestions ...string) {
	d.Add(Diagnostic{
		Severity:    SeverityException,
		Code:        code,
		Message:     err.Error(),
		Path:        path,
		Err:         err,
		Suggestions: suggestions,
	})
}

// HasErrors returns true if there are any error or exception diagnostics.
func (d *Diagnostics) HasErrors() bool {
	for _, e := range d.Events {
		if e.Severity.IsFailure() {
			return true
		}
	}

	return false
}

// Filter returns the diagnostics with the given severity.
func (d *Diagnostics) Filter(severity Severity) []Diagnostic {
	var out []Diagnostic

	for _, e := range d.Events {
		if e.Severity == severity {
			out = append(out, e)
		}
	}

	return out
}

// Merge merges another Diagnostics instance into this one.
func (d *Diagnostics) Merge(other Diagnostics) {
	d.Events = append(d.Events, other.Events...)
}

// Reset drops all diagnostics, keeping the allocated storage.
func (d *Diagnostics) Reset() {
	clear(d.Events)
	d.Events = d.Events[:0]
}

// Error returns the failures as a single error: a lone failure is returned
// as-is (its underlying Err for exceptions), several are joined. It returns
// nil when there are no failures.
func (d *Diagnostics) Error() error {
	var errs []error

	for _, e := range d.Events {
		if !e.Severity.IsFailure() {
			continue
		}

		errs = append(errs, e.AsError())
	}

	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	default:
		return errors.Join(errs...)
	}
}

// AsError returns the diagnostic as an error value.
func (d Diagnostic) AsError() error {
	if d.Err != nil {
		if d.Path == "" {
			return d.Err
		}

		return fmt.Errorf("%s: %w", d.Path, d.Err)
	}

	return errors.New(d.String())
}

// String returns a formatted diagnostic string.
func (d Diagnostic) String() string {
	msg := d.Message
	if d.Code != "" {
		msg = fmt.Sprintf("[%s] %s", d.Code, msg)
	}

	if len(d.Suggestions) > 0 {
		msg += " (did you mean " + strings.Join(d.Suggestions, ", ") + "?)"
	}

	if d.Path != "" {
		return d.Path + ": " + msg
	}

	return msg
}
