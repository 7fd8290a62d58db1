package property

import (
	"reflect"

	"propbag/primitive"
)

//go:generate go tool stringer -type=Kind -output=kind_string.go

// Kind classifies how visitation treats a type.
type Kind int

const (
	KindLeaf      Kind = iota // bool, numbers, strings, enums, time.Time, time.Duration
	KindRecord                // struct with named properties
	KindList                  // slice or array
	KindSet                   // map[K]struct{}
	KindMap                   // any other map
	KindPointer               // nullable indirection, reference tracked
	KindInterface             // polymorphic slot
	KindForbidden             // func, chan, unsafe.Pointer, complex numbers
)

// IsContainer reports whether values of this kind own properties.
func (k Kind) IsContainer() bool {
	switch k {
	default:
		return false
	case KindRecord, KindList, KindSet, KindMap:
		return true
	}
}

// Classify returns the Kind of t.
func Classify(t reflect.Type) Kind {
	if t == nil {
		return KindForbidden
	}

	if primitive.IsLeaf(t) {
		return KindLeaf
	}

	switch t.Kind() {
	default:
		return KindForbidden
	case reflect.Pointer:
		return KindPointer
	case reflect.Interface:
		return KindInterface
	case reflect.Struct:
		return KindRecord
	case reflect.Slice, reflect.Array:
		return KindList
	case reflect.Map:
		if isEmptyStruct(t.Elem()) {
			return KindSet
		}

		return KindMap
	}
}

// IsNullable reports whether a slot of type t can hold null.
func IsNullable(t reflect.Type) bool {
	switch t.Kind() {
	default:
		return false
	case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map:
		return true
	}
}

func isEmptyStruct(t reflect.Type) bool {
	return t.Kind() == reflect.Struct && t.NumField() == 0
}

// needsWriteBack reports whether a copy of a value of kind k must be stored
// back to its slot for mutations to be observed.
func needsWriteBack(k reflect.Kind) bool {
	switch k {
	default:
		return false
	case reflect.Struct, reflect.Array, reflect.Interface:
		return true
	}
}
