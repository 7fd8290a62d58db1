package property

import (
	"fmt"
	"iter"
	"reflect"
	"slices"
	"strings"
)

// Bag describes the properties of one container type. A bag never holds
// container data; every operation receives the container instance.
type Bag interface {
	// Type returns the container type the bag describes.
	Type() reflect.Type
	// Kind returns the container shape.
	Kind() Kind
	// Properties enumerates the properties of the given container instance.
	Properties(container reflect.Value) iter.Seq[Property]
	// Accept dispatches the container to the visitor's shape method, or to
	// VisitProperty once per property when the visitor has none.
	Accept(v Visitor, container reflect.Value)
	// New returns an addressable default instance of the container type.
	New() reflect.Value
}

type boundProperty interface {
	containerType() reflect.Type
}

// RecordBag is the bag of a struct type with named properties.
type RecordBag struct {
	typ    reflect.Type
	props  []Property
	byName map[string]int
	former map[string]int
	ctor   func() reflect.Value
}

// NewRecordBag builds a record bag for C from explicit properties.
func NewRecordBag[C any](props ...Property) (*RecordBag, error) {
	typ := reflect.TypeFor[C]()
	if Classify(typ) != KindRecord {
		return nil, fmt.Errorf("%w: %s is not a struct", ErrInvalidBagType, typ)
	}

	for _, p := range props {
		if bp, ok := p.(boundProperty); ok && bp.containerType() != typ {
			return nil, fmt.Errorf("property %q is bound to %s, not %s", p.Name(), bp.containerType(), typ)
		}
	}

	return newRecordBag(typ, props)
}

// WithConstructor sets the function used to create default instances of C.
func WithConstructor[C any](b *RecordBag, fn func() C) *RecordBag {
	b.ctor = func() reflect.Value {
		return reflect.ValueOf(fn())
	}

	return b
}

func newRecordBag(typ reflect.Type, props []Property) (*RecordBag, error) {
	b := &RecordBag{
		typ:    typ,
		props:  props,
		byName: make(map[string]int, len(props)),
		former: make(map[string]int),
	}

	for i, p := range props {
		if _, ok := b.byName[p.Name()]; ok {
			return nil, fmt.Errorf("%w: %q in %s", ErrDuplicateProperty, p.Name(), typ)
		}

		b.byName[p.Name()] = i
	}

	for i, p := range props {
		r, ok := p.(Renamed)
		if !ok {
			continue
		}

		for _, name := range r.FormerNames() {
			if _, taken := b.byName[name]; taken {
				continue
			}

			b.former[name] = i
		}
	}

	return b, nil
}

// reflectRecordBag derives a record bag from the exported fields of a struct.
// Embedded non-pointer structs are flattened into the parent. A promoted
// field is hidden by a shallower field of the same name; at equal depth a
// field with a json tag hides untagged ones.
func reflectRecordBag(typ reflect.Type) (*RecordBag, error) {
	var fields []candidate
	collectFields(typ, nil, &fields)

	return newRecordBag(typ, dominantFields(fields))
}

// candidate is a struct field found while flattening embedded structs.
type candidate struct {
	prop   *fieldProperty
	depth  int
	tagged bool
}

func collectFields(typ reflect.Type, prefix []int, fields *[]candidate) {
	for i := range typ.NumField() {
		f := typ.Field(i)
		index := append(slices.Clone(prefix), i)

		if f.Anonymous && f.Type.Kind() == reflect.Struct && f.Tag.Get("json") == "" {
			collectFields(f.Type, index, fields)
			continue
		}

		if !f.IsExported() {
			continue
		}

		name, ok := jsonName(f)
		if !ok {
			continue
		}

		readOnly, former := parseTag(f.Tag.Get("prop"))
		tagName, _, _ := strings.Cut(f.Tag.Get("json"), ",")

		*fields = append(*fields, candidate{
			prop: &fieldProperty{
				name:        name,
				index:       index,
				typ:         f.Type,
				readOnly:    readOnly,
				formerNames: former,
			},
			depth:  len(prefix),
			tagged: tagName != "",
		})
	}
}

// dominantFields keeps, per name, the fields at the shallowest depth, and of
// those only the tagged ones when any is tagged. Ties left over stay in and
// fail as duplicates. Declaration order is preserved.
func dominantFields(fields []candidate) []Property {
	best := make(map[string]candidate, len(fields))

	for _, c := range fields {
		cur, ok := best[c.prop.name]
		if !ok || c.depth < cur.depth || c.depth == cur.depth && c.tagged && !cur.tagged {
			best[c.prop.name] = c
		}
	}

	props := make([]Property, 0, len(fields))

	for _, c := range fields {
		b := best[c.prop.name]
		if c.depth == b.depth && c.tagged == b.tagged {
			props = append(props, c.prop)
		}
	}

	return props
}

func (b *RecordBag) Type() reflect.Type { return b.typ }
func (b *RecordBag) Kind() Kind         { return KindRecord }

// Len returns the number of properties.
func (b *RecordBag) Len() int { return len(b.props) }

// Property returns the property with the given current name.
func (b *RecordBag) Property(name string) (Property, bool) {
	i, ok := b.byName[name]
	if !ok {
		return nil, false
	}

	return b.props[i], true
}

// Lookup returns the property known by name, including former names.
func (b *RecordBag) Lookup(name string) (Property, bool) {
	if p, ok := b.Property(name); ok {
		return p, true
	}

	i, ok := b.former[name]
	if !ok {
		return nil, false
	}

	return b.props[i], true
}

// Names returns the current property names in declaration order.
func (b *RecordBag) Names() []string {
	names := make([]string, len(b.props))
	for i, p := range b.props {
		names[i] = p.Name()
	}

	return names
}

func (b *RecordBag) Properties(reflect.Value) iter.Seq[Property] {
	return slices.Values(b.props)
}

func (b *RecordBag) Accept(v Visitor, container reflect.Value) {
	if rv, ok := v.(RecordVisitor); ok {
		rv.VisitRecord(b, container)
		return
	}

	for _, p := range b.props {
		v.VisitProperty(p, container, p.Value(container))
	}
}

func (b *RecordBag) New() reflect.Value {
	out := reflect.New(b.typ).Elem()
	if b.ctor != nil {
		out.Set(b.ctor())
	}

	return out
}
