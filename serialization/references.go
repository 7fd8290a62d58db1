package serialization

import (
	"reflect"

	"propbag/property"
)

// Reserved metadata keys.
const (
	keyID       = "$id"
	keyRef      = "$ref"
	keyType     = "$type"
	keyVersion  = "$version"
	keyElements = "$elements"
)

func isMetaKey(key string) bool {
	switch key {
	case keyID, keyRef, keyType, keyVersion, keyElements:
		return true
	}

	return false
}

// hasReservedKey reports whether the string-keyed map m has a key that an
// object form would confuse with metadata.
func hasReservedKey(m reflect.Value) bool {
	if m.Type().Key().Kind() != reflect.String {
		return false
	}

	iter := m.MapRange()
	for iter.Next() {
		if isMetaKey(iter.Key().String()) {
			return true
		}
	}

	return false
}

// ptrKey identifies one instance during a write.
type ptrKey struct {
	typ  reflect.Type
	addr uintptr
}

func keyOf(v reflect.Value) ptrKey {
	return ptrKey{typ: v.Type(), addr: v.Pointer()}
}

// tracked reports whether pointers of type t take part in reference
// tracking: only pointers to containers do.
func tracked(t reflect.Type) bool {
	return t.Kind() == reflect.Pointer && property.Classify(t.Elem()).IsContainer()
}

// sharedBacking returns the identity of a non-empty map or slice. Either can
// hold itself through an interface. Neither gets $id, so meeting one again
// while it is still open is a cycle.
func sharedBacking(v reflect.Value) (ptrKey, bool) {
	switch v.Kind() {
	case reflect.Map, reflect.Slice:
		if v.IsNil() || v.Len() == 0 {
			return ptrKey{}, false
		}

		return keyOf(v), true
	}

	return ptrKey{}, false
}

// writeRefs assigns ids to instances reachable more than once.
type writeRefs struct {
	counts map[ptrKey]int
	ids    map[ptrKey]int
	active map[ptrKey]struct{}
	next   int
}

func newWriteRefs() writeRefs {
	return writeRefs{
		counts: make(map[ptrKey]int),
		ids:    make(map[ptrKey]int),
		active: make(map[ptrKey]struct{}),
	}
}

func (r *writeRefs) reset() {
	clear(r.counts)
	clear(r.ids)
	clear(r.active)
	r.next = 0
}

// shared reports whether the instance was seen more than once.
func (r *writeRefs) shared(k ptrKey) bool { return r.counts[k] > 1 }

// assign gives k the next id.
func (r *writeRefs) assign(k ptrKey) int {
	id := r.next
	r.ids[k] = id
	r.next++

	return id
}

// scan counts how often every tracked instance is reachable from v.
func (w *writer) scan(v reflect.Value, root bool) {
	for v.Kind() == reflect.Interface {
		if v.IsNil() {
			return
		}

		v = v.Elem()
	}

	if !v.IsValid() || w.ctx.isForbidden(v.Type()) {
		return
	}

	if !(root && w.params.DisableRootAdapters) && w.adapter(v.Type()) != nil {
		return
	}

	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return
		}

		if w.refTracked(v.Type()) {
			k := keyOf(v)
			w.refs.counts[k]++

			if w.refs.counts[k] > 1 {
				return
			}
		}

		w.scan(v.Elem(), root)

		return
	}

	if !property.Classify(v.Type()).IsContainer() {
		return
	}

	if k, ok := sharedBacking(v); ok {
		if _, open := w.refs.active[k]; open {
			return
		}

		w.refs.active[k] = struct{}{}
		defer delete(w.refs.active, k)
	}

	_ = w.ctx.registry.VisitValue(v, property.VisitorFunc(func(_ property.Property, _, value reflect.Value) {
		w.scan(value, false)
	}))
}
