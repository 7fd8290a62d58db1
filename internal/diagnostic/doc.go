// Package diagnostic provides the ordered event log collected while a
// document is being deserialized.
//
// Key capabilities:
//   - Log, Warning, Error and Exception severities, in encounter order
//   - Field path and "did you mean" suggestions per event
//   - Success check and re-raising of collected failures
package diagnostic
