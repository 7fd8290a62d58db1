package property

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"propbag/primitive"
)

// Property is a named, typed accessor bound to one container type.
//
// Value and SetValue take the container as an addressable reflect.Value of the
// bag's type. Value returns an addressable value whenever the property's
// storage lives inside the container, so writes through it are observed.
type Property interface {
	Name() string
	IsReadOnly() bool
	DeclaredType() reflect.Type
	Value(container reflect.Value) reflect.Value
	SetValue(container, value reflect.Value) error
}

// Renamed is implemented by properties that were previously serialized under
// other names.
type Renamed interface {
	FormerNames() []string
}

// Option configures a property.
type Option func(*options)

type options struct {
	readOnly    bool
	formerNames []string
}

// ReadOnly marks the property as rejecting writes.
func ReadOnly() Option {
	return func(o *options) { o.readOnly = true }
}

// FormerNames records names the property was previously known as.
func FormerNames(names ...string) Option {
	return func(o *options) { o.formerNames = append(o.formerNames, names...) }
}

// NewProperty builds a property from typed accessors. A nil set makes the
// property read-only.
func NewProperty[C, V any](name string, get func(*C) V, set func(*C, V), opts ...Option) Property {
	if get == nil {
		panic("property getter cannot be nil")
	}

	p := &funcProperty[C, V]{
		name: name,
		get:  get,
		set:  set,
		typ:  reflect.TypeFor[V](),
	}

	for _, opt := range opts {
		opt(&p.opts)
	}

	if set == nil {
		p.opts.readOnly = true
	}

	return p
}

type funcProperty[C, V any] struct {
	name string
	get  func(*C) V
	set  func(*C, V)
	typ  reflect.Type
	opts options
}

func (p *funcProperty[C, V]) Name() string                { return p.name }
func (p *funcProperty[C, V]) IsReadOnly() bool            { return p.opts.readOnly }
func (p *funcProperty[C, V]) DeclaredType() reflect.Type  { return p.typ }
func (p *funcProperty[C, V]) FormerNames() []string       { return p.opts.formerNames }
func (p *funcProperty[C, V]) containerType() reflect.Type { return reflect.TypeFor[C]() }

func (p *funcProperty[C, V]) Value(container reflect.Value) reflect.Value {
	v := p.get(addrOf[C](container))
	return reflect.ValueOf(&v).Elem()
}

func (p *funcProperty[C, V]) SetValue(container, value reflect.Value) error {
	if p.opts.readOnly {
		return ErrReadOnly
	}

	var v V
	if err := assign(reflect.ValueOf(&v).Elem(), value); err != nil {
		return err
	}

	p.set(addrOf[C](container), v)

	return nil
}

func addrOf[C any](container reflect.Value) *C {
	if container.CanAddr() {
		return container.Addr().Interface().(*C)
	}

	c := new(C)
	reflect.ValueOf(c).Elem().Set(container)

	return c
}

// fieldProperty accesses a struct field by its index path.
type fieldProperty struct {
	name        string
	index       []int
	typ         reflect.Type
	readOnly    bool
	formerNames []string
}

func (p *fieldProperty) Name() string               { return p.name }
func (p *fieldProperty) IsReadOnly() bool           { return p.readOnly }
func (p *fieldProperty) DeclaredType() reflect.Type { return p.typ }
func (p *fieldProperty) FormerNames() []string      { return p.formerNames }

func (p *fieldProperty) Value(container reflect.Value) reflect.Value {
	return container.FieldByIndex(p.index)
}

func (p *fieldProperty) SetValue(container, value reflect.Value) error {
	if p.readOnly {
		return ErrReadOnly
	}

	return assign(container.FieldByIndex(p.index), value)
}

// ListElement is the property synthesized for one list index. The same
// instance is repositioned while a list is enumerated.
type ListElement struct {
	index int
	elem  reflect.Type
}

// Index returns the element index the property currently points at.
func (p *ListElement) Index() int                 { return p.index }
func (p *ListElement) Name() string               { return "[" + strconv.Itoa(p.index) + "]" }
func (p *ListElement) IsReadOnly() bool           { return false }
func (p *ListElement) DeclaredType() reflect.Type { return p.elem }

func (p *ListElement) Value(container reflect.Value) reflect.Value {
	return container.Index(p.index)
}

func (p *ListElement) SetValue(container, value reflect.Value) error {
	return assign(container.Index(p.index), value)
}

// MapEntry is the property synthesized for one map key. The same instance is
// repositioned while a map is enumerated.
type MapEntry struct {
	key  reflect.Value
	elem reflect.Type
}

// Key returns the map key the property currently points at.
func (p *MapEntry) Key() reflect.Value         { return p.key }
func (p *MapEntry) Name() string               { return keyString(p.key) }
func (p *MapEntry) IsReadOnly() bool           { return false }
func (p *MapEntry) DeclaredType() reflect.Type { return p.elem }

// Value returns a copy of the entry value; map values are not addressable.
func (p *MapEntry) Value(container reflect.Value) reflect.Value {
	v := container.MapIndex(p.key)
	if !v.IsValid() {
		return v
	}

	out := reflect.New(p.elem).Elem()
	out.Set(v)

	return out
}

func (p *MapEntry) SetValue(container, value reflect.Value) error {
	out := reflect.New(p.elem).Elem()
	if err := assign(out, value); err != nil {
		return err
	}

	if container.IsNil() {
		container.Set(reflect.MakeMap(container.Type()))
	}

	container.SetMapIndex(p.key, out)

	return nil
}

// SetElement is the property synthesized for one set member. Members are map
// keys and cannot be replaced in place.
type SetElement struct {
	elem reflect.Value
}

func (p *SetElement) Name() string               { return keyString(p.elem) }
func (p *SetElement) IsReadOnly() bool           { return true }
func (p *SetElement) DeclaredType() reflect.Type { return p.elem.Type() }

func (p *SetElement) Value(reflect.Value) reflect.Value {
	out := reflect.New(p.elem.Type()).Elem()
	out.Set(p.elem)

	return out
}

func (p *SetElement) SetValue(reflect.Value, reflect.Value) error {
	return ErrReadOnly
}

// assign stores value into dst. An invalid value stores the zero value.
func assign(dst, value reflect.Value) error {
	if !value.IsValid() {
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}

	if !value.Type().AssignableTo(dst.Type()) {
		return newError(InvalidCast, dst.Type(),
			fmt.Errorf("cannot assign %s to %s", value.Type(), dst.Type()))
	}

	dst.Set(value)

	return nil
}

func keyString(key reflect.Value) string {
	if text, ok := primitive.FormatLeaf(key); ok {
		return text
	}

	return fmt.Sprint(key.Interface())
}

// parseTag reads the prop struct tag: "readonly" and "former=a|b" options
// separated by commas.
func parseTag(tag string) (readOnly bool, former []string) {
	for opt := range strings.SplitSeq(tag, ",") {
		opt = strings.TrimSpace(opt)

		switch {
		case opt == "readonly":
			readOnly = true
		case strings.HasPrefix(opt, "former="):
			for name := range strings.SplitSeq(strings.TrimPrefix(opt, "former="), "|") {
				if name != "" {
					former = append(former, name)
				}
			}
		}
	}

	return readOnly, former
}

// jsonName returns the json tag name if present, otherwise the field name.
// The second result is false for fields tagged "-".
func jsonName(f reflect.StructField) (string, bool) {
	tag := f.Tag.Get("json")
	if tag == "-" {
		return "", false
	}

	if name, _, _ := strings.Cut(tag, ","); name != "" {
		return name, true
	}

	return f.Name, true
}
