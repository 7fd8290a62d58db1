// Package property provides reflection-driven property bags and the
// visitation algorithm built on them.
//
// A property bag describes the accessible properties of one container type:
// a record (struct), a list (slice or array), a set (map[K]struct{}) or a
// map. Bags never hold data; they only know how to read and write a container
// through its properties. Bags are registered in, or synthesized on demand by,
// a Registry.
//
// Visitation is a double dispatch: Visit resolves the bag of the container's
// runtime type and the bag calls back the visitor, either through a
// shape-specific method (RecordVisitor, ListVisitor, SetVisitor, MapVisitor)
// or once per property through Visitor.VisitProperty.
//
// Key types:
//   - Property: named, typed accessor bound to a container type
//   - Bag: RecordBag, ListBag, SetBag, MapBag
//   - Registry: process-wide or caller-owned bag store
//   - Path: dotted/indexed property path such as a.b[2].c or m["key"]
//   - VisitError: structural failure carrying an ErrorCode
package property
