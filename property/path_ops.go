package property

import (
	"fmt"
	"reflect"

	"propbag/internal/match"
	"propbag/primitive"
)

// pathOp is the operation applied to the property at the end of a path.
type pathOp struct {
	mutates bool // the operation may change the resolved value
	creates bool // a missing map key at the last step is created
	apply   func(p Property, container reflect.Value) error
}

// pathVisitor resolves one step of a path per visited container.
type pathVisitor struct {
	registry *Registry
	path     *Path
	depth    int
	op       pathOp
	err      error
}

func (r *Registry) walk(container reflect.Value, path *Path, depth int, op pathOp) error {
	if path.IsEmpty() {
		return newPathError(path, depth, fmt.Errorf("empty path"))
	}

	pv := &pathVisitor{registry: r, path: path, depth: depth, op: op}

	if err := r.VisitValue(container, pv); err != nil {
		return newPathError(path, depth, err)
	}

	return pv.err
}

func newPathError(path *Path, depth int, cause error) *VisitError {
	return &VisitError{Code: InvalidPath, Path: path.prefix(depth + 1), Err: cause}
}

func (pv *pathVisitor) fail(cause error) {
	pv.err = newPathError(pv.path, pv.depth, cause)
}

func (pv *pathVisitor) part() PathPart { return pv.path.Part(pv.depth) }
func (pv *pathVisitor) last() bool     { return pv.depth == pv.path.Len()-1 }

// VisitProperty is unused: every container shape has its own method.
func (pv *pathVisitor) VisitProperty(Property, reflect.Value, reflect.Value) {}

func (pv *pathVisitor) VisitRecord(b *RecordBag, container reflect.Value) {
	part := pv.part()
	if part.Kind() != PartName {
		pv.fail(fmt.Errorf("%s has no element %s", b.Type(), part))
		return
	}

	p, ok := b.Lookup(part.Name())
	if !ok {
		err := fmt.Errorf("%s has no property %q", b.Type(), part.Name())
		if hints := match.Suggest(part.Name(), b.Names(), 1); len(hints) > 0 {
			err = fmt.Errorf("%w (did you mean %q?)", err, hints[0])
		}

		pv.fail(err)

		return
	}

	pv.step(p, container)
}

func (pv *pathVisitor) VisitList(b *ListBag, container reflect.Value) {
	part := pv.part()
	if part.Kind() != PartIndex {
		pv.fail(fmt.Errorf("%s can only be indexed, got %s", b.Type(), part))
		return
	}

	if part.Index() >= b.Len(container) {
		pv.fail(fmt.Errorf("index %d out of range [0:%d]", part.Index(), b.Len(container)))
		return
	}

	pv.step(&ListElement{index: part.Index(), elem: b.Elem()}, container)
}

func (pv *pathVisitor) VisitSet(b *SetBag, container reflect.Value) {
	member, ok := primitive.ConvertString(pv.part().Key(), b.Elem())
	if !ok {
		pv.fail(fmt.Errorf("%q is not a valid %s", pv.part().Key(), b.Elem()))
		return
	}

	if !b.Contains(container, member) {
		pv.fail(fmt.Errorf("set has no member %q", pv.part().Key()))
		return
	}

	pv.step(&SetElement{elem: member}, container)
}

func (pv *pathVisitor) VisitMap(b *MapBag, container reflect.Value) {
	key, ok := primitive.ConvertString(pv.part().Key(), b.Key())
	if !ok {
		pv.fail(fmt.Errorf("%q is not a valid %s key", pv.part().Key(), b.Key()))
		return
	}

	if _, exists := b.Entry(container, key); !exists && !(pv.last() && pv.op.creates) {
		pv.fail(fmt.Errorf("map has no key %q", pv.part().Key()))
		return
	}

	pv.step(&MapEntry{key: key, elem: b.Elem()}, container)
}

// step applies the operation at the last step, otherwise descends into the
// property value. Values that do not live in the container are copied and,
// for mutating operations, stored back through the property afterwards.
func (pv *pathVisitor) step(p Property, container reflect.Value) {
	if pv.last() {
		pv.err = pv.op.apply(p, container)
		return
	}

	child := p.Value(container)
	if !child.IsValid() {
		pv.fail(fmt.Errorf("%s has no value", p.Name()))
		return
	}

	writeBack := pv.op.mutates && !inPlace(p, container) && needsWriteBack(child.Kind())
	if writeBack && p.IsReadOnly() {
		pv.err = &VisitError{Code: InvalidCast, Type: container.Type(), Path: pv.path.prefix(pv.depth + 1), Err: ErrReadOnly}
		return
	}

	if err := pv.registry.walk(child, pv.path, pv.depth+1, pv.op); err != nil {
		pv.err = err
		return
	}

	if writeBack {
		if err := p.SetValue(container, child); err != nil {
			pv.err = err
		}
	}
}

// inPlace reports whether the value returned by p aliases the container's
// storage.
func inPlace(p Property, container reflect.Value) bool {
	switch p.(type) {
	case *fieldProperty:
		return true
	case *ListElement:
		return container.Kind() == reflect.Slice || container.CanAddr()
	}

	return false
}

func (r *Registry) resolvePath(container any, path string, op pathOp) error {
	p, err := acquirePath(path)
	if err != nil {
		return &VisitError{Code: InvalidPath, Path: path, Err: err}
	}
	defer releasePath(p)

	return r.walk(reflect.ValueOf(container), p, 0, op)
}

// Get returns the value at path inside container, which must be a pointer
// or a value containing one.
func (r *Registry) Get(container any, path string) (reflect.Value, error) {
	var out reflect.Value

	err := r.resolvePath(container, path, pathOp{
		apply: func(p Property, c reflect.Value) error {
			v := p.Value(c)
			out = reflect.New(v.Type()).Elem()
			out.Set(v)

			return nil
		},
	})

	return out, err
}

// Set stores value at path inside container.
func (r *Registry) Set(container any, path string, value reflect.Value) error {
	return r.resolvePath(container, path, pathOp{
		mutates: true,
		creates: true,
		apply: func(p Property, c reflect.Value) error {
			converted, err := convertValue(value, p.DeclaredType())
			if err != nil {
				return err
			}

			if err := p.SetValue(c, converted); err != nil {
				return &VisitError{Code: InvalidCast, Type: c.Type(), Path: path, Err: err}
			}

			return nil
		},
	})
}

// PropertyAt returns the property the path resolves to.
func (r *Registry) PropertyAt(container any, path string) (Property, error) {
	var out Property

	err := r.resolvePath(container, path, pathOp{
		apply: func(p Property, _ reflect.Value) error {
			out = p
			return nil
		},
	})

	return out, err
}

// Exists reports whether path resolves inside container.
func (r *Registry) Exists(container any, path string) bool {
	return r.resolvePath(container, path, pathOp{
		apply: func(Property, reflect.Value) error { return nil },
	}) == nil
}

// VisitAt calls v.VisitProperty for the property the path resolves to.
func (r *Registry) VisitAt(container any, path string, v Visitor) error {
	return r.resolvePath(container, path, pathOp{
		mutates: true,
		apply: func(p Property, c reflect.Value) error {
			v.VisitProperty(p, c, p.Value(c))
			return nil
		},
	})
}

// GetValue returns the value at path converted to V.
func GetValue[V, C any](container *C, path string) (V, error) {
	var zero V

	value, err := Default().Get(container, path)
	if err != nil {
		return zero, err
	}

	converted, err := convertValue(value, reflect.TypeFor[V]())
	if err != nil {
		return zero, err
	}

	out, _ := converted.Interface().(V)

	return out, nil
}

// TryGetValue is GetValue reporting only the result code.
func TryGetValue[V, C any](container *C, path string) (V, ErrorCode) {
	v, err := GetValue[V](container, path)
	return v, CodeOf(err)
}

// SetValue stores value at path. Read-only properties fail with InvalidCast
// and leave the container unchanged.
func SetValue[V, C any](container *C, path string, value V) error {
	return Default().Set(container, path, reflect.ValueOf(&value).Elem())
}

// TrySetValue is SetValue reporting only the result code.
func TrySetValue[V, C any](container *C, path string, value V) ErrorCode {
	return CodeOf(SetValue(container, path, value))
}

// GetProperty returns the property at path.
func GetProperty[C any](container *C, path string) (Property, error) {
	return Default().PropertyAt(container, path)
}

// Exists reports whether path resolves inside container.
func Exists[C any](container *C, path string) bool {
	return Default().Exists(container, path)
}

// VisitAtPath visits the single property at path with v.
func VisitAtPath[C any](container *C, path string, v Visitor) error {
	return Default().VisitAt(container, path, v)
}

// convertValue converts value to t, first by assignment and then through the
// primitive conversions.
func convertValue(value reflect.Value, t reflect.Type) (reflect.Value, error) {
	if !value.IsValid() {
		return reflect.Zero(t), nil
	}

	if value.Type().AssignableTo(t) {
		return value, nil
	}

	if converted, ok := primitive.Convert(value, t, primitive.CategoryAll); ok {
		return converted, nil
	}

	return reflect.Value{}, newError(InvalidCast, t, fmt.Errorf("cannot convert %s to %s", value.Type(), t))
}
