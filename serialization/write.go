package serialization

import (
	"errors"
	"fmt"
	"reflect"

	"propbag/primitive"
	"propbag/property"
)

// writer emits values through property bag visitation. The first failure
// is kept and stops all further output.
type writer struct {
	ctx    *Context
	params *Params
	own    *JSONWriter
	out    *JSONWriter
	refs   writeRefs
	depth  int
	err    error
}

func newWriter(ctx *Context) *writer {
	own := NewJSONWriter(0, FormatPretty)

	return &writer{ctx: ctx, own: own, out: own, refs: newWriteRefs()}
}

func (w *writer) reset() {
	w.params = nil
	w.out = w.own
	w.out.Reset(FormatPretty)
	w.refs.reset()
	w.depth = 0
	w.err = nil
}

func (w *writer) fail(err error) {
	if w.err == nil {
		w.err = err
	}
}

// run writes the root value v declared as t.
func (w *writer) run(v reflect.Value, t reflect.Type) error {
	if !w.params.DisableSerializedReferences {
		w.scan(v, true)
	}

	w.writeValue(v, t)

	return w.err
}

func (w *writer) adapter(t reflect.Type) *Adapter {
	if a := w.params.adapter(t); a != nil {
		return a
	}

	if a := w.ctx.adapter(t); a != nil {
		return a
	}

	return builtinAdapters[t]
}

// meta holds the metadata keys of one written value.
type meta struct {
	id       int
	typeName string
	version  int
}

func (m meta) empty() bool { return m.id < 0 && m.typeName == "" && m.version <= 0 }

func (w *writer) writeMeta(m meta) {
	if m.id >= 0 {
		w.out.WriteKey(keyID)
		w.out.WriteInt(int64(m.id))
	}

	if m.typeName != "" {
		w.out.WriteKey(keyType)
		w.out.WriteString(m.typeName)
	}

	if m.version > 0 {
		w.out.WriteKey(keyVersion)
		w.out.WriteInt(int64(m.version))
	}
}

// untyped are the types an untyped slot reads back on its own.
var untyped = map[reflect.Type]struct{}{
	reflect.TypeFor[bool]():           {},
	reflect.TypeFor[float64]():        {},
	reflect.TypeFor[string]():         {},
	reflect.TypeFor[[]any]():          {},
	reflect.TypeFor[map[string]any](): {},
}

// typeTag returns the $type to write for v in a slot of type declared.
func (w *writer) typeTag(v reflect.Value, declared reflect.Type) (string, error) {
	t := v.Type()
	if t == declared {
		return "", nil
	}

	if w.depth == 0 && w.params.SerializedType != nil {
		return "", nil
	}

	if _, ok := untyped[t]; ok && declared.Kind() == reflect.Interface && declared.NumMethod() == 0 {
		// a map holding reserved keys is written as pairs, which an untyped
		// slot would read back as a list
		if t.Kind() != reflect.Map || !hasReservedKey(v) {
			return "", nil
		}
	}

	return w.ctx.types.nameOf(t)
}

func (w *writer) writeValue(v reflect.Value, declared reflect.Type) {
	if w.err != nil {
		return
	}

	for v.IsValid() && v.Kind() == reflect.Interface {
		if v.IsNil() {
			w.out.WriteNull()
			return
		}

		v = v.Elem()
	}

	if !v.IsValid() {
		w.out.WriteNull()
		return
	}

	t := v.Type()
	if w.ctx.isForbidden(t) {
		w.fail(fmt.Errorf("%w: %s", ErrForbiddenType, t))
		return
	}

	typeName, err := w.typeTag(v, declared)
	if err != nil {
		w.fail(err)
		return
	}

	if !(w.depth == 0 && w.params.DisableRootAdapters) {
		if a := w.adapter(t); a != nil && a.write != nil {
			if w.writeAdapted(a, v, typeName) {
				return
			}
		}
	}

	m := meta{id: -1, typeName: typeName}

	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			w.out.WriteNull()
			return
		}

		if !w.refTracked(t) {
			w.wrapType(typeName, func() { w.writeValue(v.Elem(), t.Elem()) })
			return
		}

		if w.ctx.isForbidden(t.Elem()) {
			w.fail(fmt.Errorf("%w: %s", ErrForbiddenType, t.Elem()))
			return
		}

		k := keyOf(v)

		if id, ok := w.refs.ids[k]; ok {
			w.writeRef(id)
			return
		}

		if _, ok := w.refs.active[k]; ok {
			w.fail(fmt.Errorf("%w: %s", ErrCycle, t))
			return
		}

		if !w.params.DisableSerializedReferences && w.refs.shared(k) {
			m.id = w.refs.assign(k)
		}

		w.refs.active[k] = struct{}{}
		defer delete(w.refs.active, k)

		v = v.Elem()
	}

	if k, ok := sharedBacking(v); ok {
		if _, open := w.refs.active[k]; open {
			w.fail(fmt.Errorf("%w: %s", ErrCycle, v.Type()))
			return
		}

		w.refs.active[k] = struct{}{}
		defer delete(w.refs.active, k)
	}

	if mig := w.migration(v.Type()); mig != nil {
		m.version = mig.version
	}

	w.writeBody(v, m)
}

// refTracked reports whether instances behind pointers of type t get
// $id/$ref. Pointers to adapted types are plain indirections.
func (w *writer) refTracked(t reflect.Type) bool {
	return tracked(t) && w.adapter(t.Elem()) == nil
}

// wrapType runs write inside a {"$type": name, "$elements": ...} wrapper
// when name is set.
func (w *writer) wrapType(name string, write func()) {
	if name == "" {
		write()
		return
	}

	w.openTypeWrapper(name)
	write()
	w.out.EndObject()
}

func (w *writer) openTypeWrapper(name string) {
	w.out.BeginObject()
	w.out.WriteKey(keyType)
	w.out.WriteString(name)
	w.out.WriteKey(keyElements)
}

// writeAdapted runs an adapter. It reports false when the adapter declined
// and the default handling should continue.
func (w *writer) writeAdapted(a *Adapter, v reflect.Value, typeName string) bool {
	if typeName != "" {
		w.openTypeWrapper(typeName)
	}

	err := a.write(&WriteContext{w: w}, v)

	switch {
	case errors.Is(err, ErrContinueVisitation):
		if typeName == "" {
			return false
		}

		// the wrapper is already open
		w.writeBody(v, meta{id: -1})
	case err != nil:
		w.fail(fmt.Errorf("adapter for %s: %w", a.typ, err))
		return true
	}

	if typeName != "" {
		w.out.EndObject()
	}

	return true
}

func (w *writer) migration(t reflect.Type) *Migration {
	if m := w.params.migration(t); m != nil {
		return m
	}

	return w.ctx.migration(t)
}

func (w *writer) writeRef(id int) {
	w.out.BeginObject()
	w.out.WriteKey(keyRef)
	w.out.WriteInt(int64(id))
	w.out.EndObject()
}

// writeBody writes a non-interface value with its metadata. Records carry
// metadata next to their fields; everything else is wrapped in $elements.
func (w *writer) writeBody(v reflect.Value, m meta) {
	kind := property.Classify(v.Type())

	if kind == property.KindRecord {
		w.out.BeginObject()
		w.writeMeta(m)
		w.visit(v)
		w.out.EndObject()

		return
	}

	if m.empty() {
		w.writePayload(v, kind)
		return
	}

	w.out.BeginObject()
	w.writeMeta(m)
	w.out.WriteKey(keyElements)
	w.writePayload(v, kind)
	w.out.EndObject()
}

func (w *writer) writePayload(v reflect.Value, kind property.Kind) {
	switch kind {
	case property.KindLeaf:
		w.writeLeaf(v)
	case property.KindList, property.KindSet, property.KindMap:
		if v.Kind() != reflect.Array && v.IsNil() {
			w.out.WriteNull()
			return
		}

		w.visit(v)
	case property.KindPointer, property.KindInterface:
		w.depth++
		w.writeValue(v, v.Type())
		w.depth--
	default:
		w.fail(fmt.Errorf("%w: %s", ErrForbiddenType, v.Type()))
	}
}

func (w *writer) visit(v reflect.Value) {
	w.depth++
	defer func() { w.depth-- }()

	if err := w.ctx.registry.VisitValue(v, w); err != nil {
		w.fail(err)
	}
}

func (w *writer) writeLeaf(v reflect.Value) {
	kind := primitive.BaseKind(v.Type())

	switch {
	case kind == primitive.KindBool:
		w.out.WriteBool(v.Bool())
	case kind == primitive.KindString:
		w.out.WriteString(v.String())
	case kind.IsSigned():
		w.out.WriteInt(v.Int())
	case kind.IsUnsigned():
		w.out.WriteUint(v.Uint())
	case kind.IsFloat():
		w.out.WriteFloat(v.Float(), kind.Bits())
	default:
		text, ok := primitive.FormatLeaf(v)
		if !ok {
			w.fail(fmt.Errorf("%w: cannot format %s", ErrTypeMismatch, v.Type()))
			return
		}

		w.out.WriteString(text)
	}
}

func (w *writer) VisitProperty(property.Property, reflect.Value, reflect.Value) {}

func (w *writer) VisitRecord(b *property.RecordBag, container reflect.Value) {
	for p := range b.Properties(container) {
		w.out.WriteKey(p.Name())
		w.writeValue(p.Value(container), p.DeclaredType())
	}
}

func (w *writer) VisitList(b *property.ListBag, container reflect.Value) {
	w.out.BeginArray()

	for i := range b.Len(container) {
		w.writeValue(b.Element(container, i), b.Elem())
	}

	w.out.EndArray()
}

func (w *writer) VisitSet(b *property.SetBag, container reflect.Value) {
	w.out.BeginArray()

	for _, m := range b.Members(container) {
		w.writeValue(m, b.Elem())
	}

	w.out.EndArray()
}

// VisitMap writes maps with string keys as objects and all others as an
// array of {"Key": k, "Value": v} pairs.
func (w *writer) VisitMap(b *property.MapBag, container reflect.Value) {
	if primitive.BaseKind(b.Key()) == primitive.KindString && !hasReservedKey(container) {
		w.out.BeginObject()

		for _, k := range b.Keys(container) {
			v, _ := b.Entry(container, k)
			w.out.WriteKey(k.String())
			w.writeValue(v, b.Elem())
		}

		w.out.EndObject()

		return
	}

	w.out.BeginArray()

	for _, k := range b.Keys(container) {
		v, _ := b.Entry(container, k)

		w.out.BeginObject()
		w.out.WriteKey("Key")
		w.writeValue(k, b.Key())
		w.out.WriteKey("Value")
		w.writeValue(v, b.Elem())
		w.out.EndObject()
	}

	w.out.EndArray()
}
