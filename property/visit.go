package property

import (
	"reflect"
)

// Visitor receives one call per property of a visited container. The value
// passed is the property's current value; it is addressable when the
// property's storage lives in the container, otherwise writes go through
// Property.SetValue.
type Visitor interface {
	VisitProperty(p Property, container, value reflect.Value)
}

// RecordVisitor handles record containers as a whole.
type RecordVisitor interface {
	VisitRecord(b *RecordBag, container reflect.Value)
}

// ListVisitor handles slice and array containers as a whole.
type ListVisitor interface {
	VisitList(b *ListBag, container reflect.Value)
}

// SetVisitor handles set containers as a whole.
type SetVisitor interface {
	VisitSet(b *SetBag, container reflect.Value)
}

// MapVisitor handles map containers as a whole.
type MapVisitor interface {
	VisitMap(b *MapBag, container reflect.Value)
}

// VisitorFunc adapts a function to the Visitor interface.
type VisitorFunc func(p Property, container, value reflect.Value)

// VisitProperty calls f.
func (f VisitorFunc) VisitProperty(p Property, container, value reflect.Value) {
	f(p, container, value)
}

// Visit visits the container c with v using the default registry.
func Visit[C any](c *C, v Visitor) error {
	if c == nil {
		return newError(NullContainer, reflect.TypeFor[C](), nil)
	}

	return Default().VisitValue(reflect.ValueOf(c).Elem(), v)
}

// TryVisit is Visit reporting only the result code.
func TryVisit[C any](c *C, v Visitor) ErrorCode {
	return CodeOf(Visit(c, v))
}

// VisitValue visits container with v.
//
// Pointers are followed. Values held in an interface are visited through a
// copy of their dynamic type which is stored back into the slot when it is
// settable. Nil pointers, interfaces, slices and maps fail with
// NullContainer, leaves with InvalidContainerType.
func (r *Registry) VisitValue(container reflect.Value, v Visitor) error {
	if !container.IsValid() {
		return newError(NullContainer, nil, nil)
	}

	t := container.Type()

	switch container.Kind() {
	case reflect.Pointer:
		if container.IsNil() {
			return newError(NullContainer, t, nil)
		}

		return r.VisitValue(container.Elem(), v)

	case reflect.Interface:
		if container.IsNil() {
			return newError(NullContainer, t, nil)
		}

		inner := container.Elem()
		if inner.Kind() == reflect.Pointer {
			return r.VisitValue(inner, v)
		}

		boxed := reflect.New(inner.Type()).Elem()
		boxed.Set(inner)

		if err := r.VisitValue(boxed, v); err != nil {
			return err
		}

		if container.CanSet() {
			container.Set(boxed)
		}

		return nil

	case reflect.Slice, reflect.Map:
		if container.IsNil() {
			return newError(NullContainer, t, nil)
		}
	}

	if !Classify(t).IsContainer() {
		return newError(InvalidContainerType, t, nil)
	}

	bag, err := r.resolve(t)
	if err != nil {
		return err
	}

	if !container.CanAddr() {
		tmp := reflect.New(t).Elem()
		tmp.Set(container)
		container = tmp
	}

	bag.Accept(v, container)

	return nil
}
