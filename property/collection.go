package property

import (
	"cmp"
	"fmt"
	"iter"
	"reflect"
	"slices"

	"propbag/primitive"
)

// ListBag is the bag of a slice or array type. Its properties are the
// current elements, named "[i]".
type ListBag struct {
	typ  reflect.Type
	elem reflect.Type
}

func newListBag(typ reflect.Type) *ListBag {
	return &ListBag{typ: typ, elem: typ.Elem()}
}

func (b *ListBag) Type() reflect.Type { return b.typ }
func (b *ListBag) Kind() Kind         { return KindList }

// Elem returns the element type.
func (b *ListBag) Elem() reflect.Type { return b.elem }

// IsArray reports whether the list has a fixed length.
func (b *ListBag) IsArray() bool { return b.typ.Kind() == reflect.Array }

// Len returns the number of elements in container.
func (b *ListBag) Len(container reflect.Value) int { return container.Len() }

// Element returns the element at index i.
func (b *ListBag) Element(container reflect.Value, i int) reflect.Value {
	return container.Index(i)
}

// Resize sets the length of a slice to n, keeping existing elements.
// Arrays only accept their own length.
func (b *ListBag) Resize(container reflect.Value, n int) error {
	if b.IsArray() {
		if n != container.Len() {
			return newError(InvalidCast, b.typ, fmt.Errorf("array length is fixed at %d, got %d", container.Len(), n))
		}

		return nil
	}

	if n <= container.Cap() && !container.IsNil() {
		old := container.Len()
		container.SetLen(n)

		for i := old; i < n; i++ {
			container.Index(i).SetZero()
		}

		return nil
	}

	out := reflect.MakeSlice(b.typ, n, n)
	reflect.Copy(out, container)
	container.Set(out)

	return nil
}

func (b *ListBag) Properties(container reflect.Value) iter.Seq[Property] {
	return func(yield func(Property) bool) {
		p := &ListElement{elem: b.elem}

		for i := range container.Len() {
			p.index = i
			if !yield(p) {
				return
			}
		}
	}
}

func (b *ListBag) Accept(v Visitor, container reflect.Value) {
	if lv, ok := v.(ListVisitor); ok {
		lv.VisitList(b, container)
		return
	}

	for p := range b.Properties(container) {
		v.VisitProperty(p, container, p.Value(container))
	}
}

func (b *ListBag) New() reflect.Value {
	return reflect.New(b.typ).Elem()
}

// SetBag is the bag of a map[K]struct{} type. Its properties are the current
// members in sorted order.
type SetBag struct {
	typ  reflect.Type
	elem reflect.Type
}

func newSetBag(typ reflect.Type) *SetBag {
	return &SetBag{typ: typ, elem: typ.Key()}
}

func (b *SetBag) Type() reflect.Type { return b.typ }
func (b *SetBag) Kind() Kind         { return KindSet }

// Elem returns the member type.
func (b *SetBag) Elem() reflect.Type { return b.elem }

// Len returns the number of members.
func (b *SetBag) Len(container reflect.Value) int { return container.Len() }

// Members returns the members of container in sorted order.
func (b *SetBag) Members(container reflect.Value) []reflect.Value {
	return sortedKeys(container)
}

// Contains reports whether member is in the set.
func (b *SetBag) Contains(container, member reflect.Value) bool {
	if container.IsNil() {
		return false
	}

	return container.MapIndex(member).IsValid()
}

// Add inserts member, creating the set if it is nil.
func (b *SetBag) Add(container, member reflect.Value) error {
	if !member.Type().AssignableTo(b.elem) {
		return newError(InvalidCast, b.typ, fmt.Errorf("cannot add %s to set of %s", member.Type(), b.elem))
	}

	if container.IsNil() {
		container.Set(reflect.MakeMap(b.typ))
	}

	container.SetMapIndex(member, reflect.Zero(b.typ.Elem()))

	return nil
}

// Clear removes every member.
func (b *SetBag) Clear(container reflect.Value) {
	if !container.IsNil() {
		container.Clear()
	}
}

func (b *SetBag) Properties(container reflect.Value) iter.Seq[Property] {
	return func(yield func(Property) bool) {
		p := &SetElement{}

		for _, key := range sortedKeys(container) {
			p.elem = key
			if !yield(p) {
				return
			}
		}
	}
}

func (b *SetBag) Accept(v Visitor, container reflect.Value) {
	if sv, ok := v.(SetVisitor); ok {
		sv.VisitSet(b, container)
		return
	}

	for p := range b.Properties(container) {
		v.VisitProperty(p, container, p.Value(container))
	}
}

func (b *SetBag) New() reflect.Value {
	return reflect.New(b.typ).Elem()
}

// MapBag is the bag of a map type. Its properties are the current entries in
// sorted key order.
type MapBag struct {
	typ  reflect.Type
	key  reflect.Type
	elem reflect.Type
}

func newMapBag(typ reflect.Type) *MapBag {
	return &MapBag{typ: typ, key: typ.Key(), elem: typ.Elem()}
}

func (b *MapBag) Type() reflect.Type { return b.typ }
func (b *MapBag) Kind() Kind         { return KindMap }

// Key returns the key type.
func (b *MapBag) Key() reflect.Type { return b.key }

// Elem returns the value type.
func (b *MapBag) Elem() reflect.Type { return b.elem }

// Len returns the number of entries.
func (b *MapBag) Len(container reflect.Value) int { return container.Len() }

// Keys returns the keys of container in sorted order.
func (b *MapBag) Keys(container reflect.Value) []reflect.Value {
	return sortedKeys(container)
}

// Entry returns a copy of the value stored under key.
func (b *MapBag) Entry(container, key reflect.Value) (reflect.Value, bool) {
	if container.IsNil() {
		return reflect.Value{}, false
	}

	v := container.MapIndex(key)
	if !v.IsValid() {
		return reflect.Value{}, false
	}

	out := reflect.New(b.elem).Elem()
	out.Set(v)

	return out, true
}

// SetEntry stores value under key, creating the map if it is nil.
func (b *MapBag) SetEntry(container, key, value reflect.Value) error {
	if !key.Type().AssignableTo(b.key) {
		return newError(InvalidCast, b.typ, fmt.Errorf("cannot use %s as key of %s", key.Type(), b.typ))
	}

	return (&MapEntry{key: key, elem: b.elem}).SetValue(container, value)
}

// Clear removes every entry.
func (b *MapBag) Clear(container reflect.Value) {
	if !container.IsNil() {
		container.Clear()
	}
}

func (b *MapBag) Properties(container reflect.Value) iter.Seq[Property] {
	return func(yield func(Property) bool) {
		p := &MapEntry{elem: b.elem}

		for _, key := range sortedKeys(container) {
			p.key = key
			if !yield(p) {
				return
			}
		}
	}
}

func (b *MapBag) Accept(v Visitor, container reflect.Value) {
	if mv, ok := v.(MapVisitor); ok {
		mv.VisitMap(b, container)
		return
	}

	for p := range b.Properties(container) {
		v.VisitProperty(p, container, p.Value(container))
	}
}

func (b *MapBag) New() reflect.Value {
	return reflect.New(b.typ).Elem()
}

// sortedKeys returns map keys ordered by value for leaf keys and by their
// printed form otherwise.
func sortedKeys(m reflect.Value) []reflect.Value {
	if m.IsNil() {
		return nil
	}

	keys := m.MapKeys()
	slices.SortFunc(keys, compareKeys)

	return keys
}

func compareKeys(a, b reflect.Value) int {
	kind := primitive.BaseKind(a.Type())

	switch {
	case kind == primitive.KindString:
		return cmp.Compare(a.String(), b.String())
	case kind.IsSigned() || kind == primitive.KindDuration:
		return cmp.Compare(a.Int(), b.Int())
	case kind.IsUnsigned():
		return cmp.Compare(a.Uint(), b.Uint())
	case kind.IsFloat():
		return cmp.Compare(a.Float(), b.Float())
	case kind == primitive.KindBool:
		return cmp.Compare(boolRank(a.Bool()), boolRank(b.Bool()))
	}

	return cmp.Compare(keyString(a), keyString(b))
}

func boolRank(b bool) int {
	if b {
		return 1
	}

	return 0
}
