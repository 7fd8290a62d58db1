// Package serialization reads and writes JSON through property bag
// visitation.
//
// Values are written by walking their property bags with a writer visitor
// and read by populating a default instance with a reader visitor. Both honor
// a small set of leading metadata keys:
//
//   - $id / $ref: instances reachable more than once are written once and
//     referenced afterwards, which also breaks cycles
//   - $type: the runtime type of a value held in a slot of another static type
//   - $version: the current migration version of the value's type
//   - $elements: the payload of a collection that also carries metadata
//
// Reading never aborts on malformed data. Problems are collected as events
// in a DeserializationResult; Error and Exception events mark the result as
// failed.
//
// Output is either pretty (4-space indentation), minified, or simplified
// (unquoted safe keys, '=' between key and value, whitespace between
// elements). The reader accepts all three.
//
// Key types:
//   - Context: bag registry, type names, global adapters and migrations, logger, hooks
//   - Params: per-call options
//   - Adapter / Migration: type-specific overrides and version upgrades
//   - SerializedValueView: read-only view over a parsed document
//   - JSONWriter: low-level token writer
package serialization
