package serialization

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"

	"propbag/internal/match"
	"propbag/primitive"
	"propbag/property"
)

// reader populates values from a parsed document through property bag
// visitation. Problems are recorded as events and never abort the read,
// unless Params.Strict is set.
type reader struct {
	ctx    *Context
	params *Params
	result DeserializationResult
	refs   map[int]reflect.Value
	path   *property.Path
	view   SerializedValueView // value being visited
	depth  int
	bypass reflect.Type // type whose migration Populate skips once
	halted bool
}

func newReader(ctx *Context) *reader {
	return &reader{ctx: ctx, refs: make(map[int]reflect.Value), path: property.NewPath()}
}

func (r *reader) reset() {
	r.params = nil
	r.result.reset()
	clear(r.refs)
	r.path.Clear()
	r.view = SerializedValueView{}
	r.depth = 0
	r.bypass = nil
	r.halted = false
}

func (r *reader) log(code, msg string, suggestions ...string) {
	r.result.diags.AddLog(code, msg, r.path.String(), suggestions...)
}

func (r *reader) warn(code, msg string) {
	r.result.diags.AddWarning(code, msg, r.path.String())
}

func (r *reader) error(code, msg string) {
	r.result.diags.AddError(code, msg, r.path.String())
	r.failed()
}

func (r *reader) exception(code string, err error) {
	r.result.diags.AddException(code, err, r.path.String())
	r.failed()
}

func (r *reader) failed() {
	if r.params.Strict {
		r.halted = true
	}
}

func (r *reader) adapter(t reflect.Type) *Adapter {
	if a := r.params.adapter(t); a != nil {
		return a
	}

	if a := r.ctx.adapter(t); a != nil {
		return a
	}

	return builtinAdapters[t]
}

func (r *reader) migration(t reflect.Type) *Migration {
	if m := r.params.migration(t); m != nil {
		return m
	}

	return r.ctx.migration(t)
}

// run parses text and reads it into target.
func (r *reader) run(text string, target reflect.Value) {
	view, err := ParseView(text)
	if err != nil {
		r.exception(CodeSyntax, err)
		return
	}

	st := r.params.SerializedType
	if st == nil || st == target.Type() {
		r.readValue(view, target)
		return
	}

	if !st.AssignableTo(target.Type()) {
		r.exception(CodeTypeMismatch, fmt.Errorf("%w: %s cannot be stored in %s", ErrTypeMismatch, st, target.Type()))
		return
	}

	v := r.fresh(st)
	if target.Kind() == reflect.Interface && !target.IsNil() && target.Elem().Type() == st {
		v.Set(target.Elem())
	}

	r.readValue(view, v)
	target.Set(v)
}

// readNested reads a value one level below the current one.
func (r *reader) readNested(view SerializedValueView, target reflect.Value) {
	r.depth++
	r.readValue(view, target)
	r.depth--
}

// payloadOf returns the $elements member of a metadata object, or view.
func payloadOf(view SerializedValueView) SerializedValueView {
	if view.Kind() != ValueObject {
		return view
	}

	if p, ok := view.AsObject().Get(keyElements); ok {
		return p
	}

	return view
}

// readValue reads view into target, handling adapters and the $ref and
// $type metadata.
func (r *reader) readValue(view SerializedValueView, target reflect.Value) {
	if r.halted {
		return
	}

	t := target.Type()

	if view.IsNull() {
		if !property.IsNullable(t) {
			r.warn(CodeIncompatible, "null read into non-nullable "+t.String())
		}

		target.SetZero()

		return
	}

	if r.readAdapted(view, target) {
		return
	}

	if view.Kind() == ValueObject {
		obj := view.AsObject()

		if ref, ok := obj.Get(keyRef); ok {
			r.readRef(ref, target)
			return
		}

		if tv, ok := obj.Get(keyType); ok {
			rt, ok := r.resolveType(tv, t)
			if !ok {
				return
			}

			if rt != t {
				v := r.fresh(rt)
				if t.Kind() == reflect.Interface && !target.IsNil() && target.Elem().Type() == rt {
					v.Set(target.Elem())
				}

				r.readValue(view, v)
				target.Set(v)

				return
			}
		}
	}

	r.readResolved(view, target)
}

// readAdapted runs the adapter of target's type. It reports false when
// there is none or it declined.
func (r *reader) readAdapted(view SerializedValueView, target reflect.Value) bool {
	if r.depth == 0 && r.params.DisableRootAdapters {
		return false
	}

	t := target.Type()

	a := r.adapter(t)
	if a == nil || a.read == nil {
		return false
	}

	v, err := a.read(&ReadContext{eventSink: eventSink{r: r}, view: payloadOf(view)})

	switch {
	case errors.Is(err, ErrContinueVisitation):
		return false
	case err != nil:
		r.exception(CodeAdapter, fmt.Errorf("adapter for %s: %w", t, err))
		return true
	}

	target.Set(v)

	return true
}

func (r *reader) readRef(ref SerializedValueView, target reflect.Value) {
	id, ok := ref.AsInt()
	if !ok {
		r.exception(CodeReference, fmt.Errorf("%w: $ref %s is not an integer", ErrTypeMismatch, ref.Raw()))
		return
	}

	ptr, found := r.refs[int(id)]
	if !found {
		r.exception(CodeReference, fmt.Errorf("%w: %d", ErrForwardReference, id))
		return
	}

	if !ptr.Type().AssignableTo(target.Type()) {
		r.exception(CodeTypeMismatch, fmt.Errorf("%w: $ref %d is %s, slot is %s", ErrTypeMismatch, id, ptr.Type(), target.Type()))
		return
	}

	target.Set(ptr)
}

func (r *reader) resolveType(tv SerializedValueView, declared reflect.Type) (reflect.Type, bool) {
	if tv.Kind() != ValueString {
		r.exception(CodeUnknownType, fmt.Errorf("%w: $type %s is not a string", ErrUnknownType, tv.Raw()))
		return nil, false
	}

	name := tv.AsString()

	rt, current, err := r.ctx.types.resolve(name)
	if err != nil {
		r.exception(CodeUnknownType, err)
		return nil, false
	}

	if current != "" {
		r.ctx.logger.Debug("type resolved through former name", "former", name, "current", current)
	}

	if r.ctx.isForbidden(rt) {
		r.exception(CodeForbiddenType, fmt.Errorf("%w: %s", ErrForbiddenType, rt))
		return nil, false
	}

	if !rt.AssignableTo(declared) {
		r.exception(CodeTypeMismatch, fmt.Errorf("%w: %s cannot be stored in %s", ErrTypeMismatch, rt, declared))
		return nil, false
	}

	return rt, true
}

// fresh returns an addressable default instance of t: what the container's
// bag constructs, or the zero value.
func (r *reader) fresh(t reflect.Type) reflect.Value {
	if property.Classify(t).IsContainer() {
		if bag, ok := r.ctx.registry.Resolve(t); ok {
			return bag.New()
		}
	}

	return reflect.New(t).Elem()
}

// refTracked mirrors writer.refTracked.
func (r *reader) refTracked(t reflect.Type) bool {
	return tracked(t) && r.adapter(t.Elem()) == nil
}

// readResolved reads view into target whose type is final.
func (r *reader) readResolved(view SerializedValueView, target reflect.Value) {
	t := target.Type()

	switch t.Kind() {
	case reflect.Pointer:
		ptr := target
		if ptr.IsNil() {
			ptr = reflect.New(t.Elem())
			ptr.Elem().Set(r.fresh(t.Elem()))
		}

		if r.refTracked(t) {
			r.registerID(view, ptr)
			target.Set(ptr)
			r.readBody(view, ptr.Elem())

			return
		}

		inner := view
		if view.Kind() == ValueObject && view.AsObject().Has(keyType) {
			inner = payloadOf(view)
		}

		r.readValue(inner, ptr.Elem())
		target.Set(ptr)

	case reflect.Interface:
		if !target.IsNil() {
			cur := target.Elem()
			if _, plain := untyped[cur.Type()]; !plain {
				v := reflect.New(cur.Type()).Elem()
				v.Set(cur)
				r.readValue(view, v)
				target.Set(v)

				return
			}
		}

		if t.NumMethod() != 0 {
			r.warn(CodeUnresolvableSlot, "no $type for a value of "+t.String())
			return
		}

		target.Set(r.readUntyped(view))

	default:
		r.readBody(view, target)
	}
}

func (r *reader) registerID(view SerializedValueView, ptr reflect.Value) {
	if view.Kind() != ValueObject {
		return
	}

	idView, ok := view.AsObject().Get(keyID)
	if !ok {
		return
	}

	id, ok := idView.AsInt()
	if !ok {
		r.warn(CodeReference, "$id "+idView.Raw()+" is not an integer")
		return
	}

	r.refs[int(id)] = ptr
}

// skipReserved reports a metadata key met where only map entries belong.
// Writers emit such maps as key/value pairs, so the entry is dropped.
func (r *reader) skipReserved(key string) {
	r.path.AppendKey(key)
	r.warn(CodeReservedKey, "reserved key "+strconv.Quote(key)+" skipped in a map")
	r.path.Pop()
}

// readUntyped decodes view into the natural Go value of an empty interface.
func (r *reader) readUntyped(view SerializedValueView) reflect.Value {
	out := reflect.New(reflect.TypeFor[any]()).Elem()

	switch view.Kind() {
	case ValueBool:
		b, _ := view.AsBool()
		out.Set(reflect.ValueOf(b))

	case ValueNumber:
		f, _ := view.AsFloat()
		out.Set(reflect.ValueOf(f))

	case ValueString:
		out.Set(reflect.ValueOf(view.AsString()))

	case ValueArray:
		arr := view.AsArray()
		items := make([]any, arr.Len())

		for i, child := range arr.All() {
			r.path.AppendIndex(i)
			r.readNested(child, reflect.ValueOf(&items[i]).Elem())
			r.path.Pop()
		}

		out.Set(reflect.ValueOf(items))

	case ValueObject:
		m := make(map[string]any, view.AsObject().Len())

		for k, child := range view.AsObject().All() {
			if isMetaKey(k) {
				r.skipReserved(k)
				continue
			}

			var item any

			r.path.AppendKey(k)
			r.readNested(child, reflect.ValueOf(&item).Elem())
			r.path.Pop()

			m[k] = item
		}

		out.Set(reflect.ValueOf(m))
	}

	return out
}

// readBody populates a value of a concrete type: migration first, then the
// default population of the $elements payload or the object itself.
func (r *reader) readBody(view SerializedValueView, target reflect.Value) {
	t := target.Type()

	if m := r.migration(t); m != nil {
		if r.bypass == t {
			r.bypass = nil
		} else {
			sv, ok := serializedVersion(view)
			if !ok {
				r.warn(CodeMigration, "$version is not an integer")
			}

			if sv != m.version {
				r.migrate(m, view, target, sv)
				return
			}
		}
	}

	payload := payloadOf(view)

	switch kind := property.Classify(t); kind {
	case property.KindLeaf:
		r.readLeaf(payload, target)

	case property.KindRecord:
		if !r.expect(payload, ValueObject, t) {
			return
		}

		r.visit(payload, target)

	case property.KindList, property.KindSet:
		if !r.expect(payload, ValueArray, t) {
			return
		}

		switch {
		case t.Kind() == reflect.Slice && target.IsNil():
			target.Set(reflect.MakeSlice(t, 0, payload.AsArray().Len()))
		case t.Kind() == reflect.Map && target.IsNil():
			target.Set(reflect.MakeMap(t))
		}

		r.visit(payload, target)

	case property.KindMap:
		if payload.Kind() != ValueObject && !r.expect(payload, ValueArray, t) {
			return
		}

		if target.IsNil() {
			target.Set(reflect.MakeMap(t))
		}

		r.visit(payload, target)

	case property.KindPointer, property.KindInterface:
		r.readValue(payload, target)

	default:
		r.exception(CodeForbiddenType, fmt.Errorf("%w: %s", ErrForbiddenType, t))
	}
}

// expect records a Warning and reports false when view is not of kind.
func (r *reader) expect(view SerializedValueView, kind ValueKind, t reflect.Type) bool {
	if view.Kind() == kind {
		return true
	}

	r.warn(CodeIncompatible, fmt.Sprintf("%s read as %s, expected %s", view.Kind(), t, kind))

	return false
}

func (r *reader) migrate(m *Migration, view SerializedValueView, target reflect.Value, from int) {
	t := target.Type()
	r.ctx.logger.Debug("migrating value", "type", t, "from", from, "to", m.version)

	v, err := m.migrate(&MigrationContext{eventSink: eventSink{r: r}, view: view, version: from})
	if err != nil {
		r.exception(CodeMigration, fmt.Errorf("migrating %s from version %d: %w", t, from, err))
		return
	}

	target.Set(v)
}

func (r *reader) visit(view SerializedValueView, target reflect.Value) {
	saved := r.view
	r.view = view
	r.depth++

	err := r.ctx.registry.VisitValue(target, r)

	r.depth--
	r.view = saved

	if err != nil {
		r.exception(CodeMissingBag, err)
	}
}

func (r *reader) readLeaf(view SerializedValueView, target reflect.Value) {
	v, ok := decodeLeaf(view, target.Type())
	if !ok {
		r.warn(CodeIncompatible, fmt.Sprintf("cannot read %s as %s", view.Raw(), target.Type()))
		target.SetZero()

		return
	}

	target.Set(v)
}

// decodeLeaf converts a primitive view into a value of type t.
func decodeLeaf(view SerializedValueView, t reflect.Type) (reflect.Value, bool) {
	switch view.Kind() {
	case ValueString:
		return primitive.ConvertString(view.AsString(), t)

	case ValueBool:
		b, _ := view.AsBool()
		return primitive.Convert(reflect.ValueOf(b), t, primitive.CategoryAll)

	case ValueNumber:
		base := primitive.BaseKind(t)
		if !base.IsNumber() {
			if v, ok := primitive.ConvertString(view.AsString(), t); ok {
				return v, true
			}
		}

		n, ok := parseNumber(view, base)
		if !ok {
			return reflect.Value{}, false
		}

		return primitive.Convert(n, t, primitive.CategoryAll)
	}

	return reflect.Value{}, false
}

// parseNumber returns the number as int64, uint64 or float64, whichever
// suits base.
func parseNumber(view SerializedValueView, base primitive.KindEnum) (reflect.Value, bool) {
	switch {
	case base.IsUnsigned():
		if n, err := strconv.ParseUint(view.AsString(), 10, 64); err == nil {
			return reflect.ValueOf(n), true
		}

		if n, ok := view.AsInt(); ok && n >= 0 {
			return reflect.ValueOf(uint64(n)), true
		}

	case base.IsFloat():
		if f, ok := view.AsFloat(); ok {
			return reflect.ValueOf(f), true
		}

	default:
		if n, ok := view.AsInt(); ok {
			return reflect.ValueOf(n), true
		}
	}

	return reflect.Value{}, false
}

func (r *reader) VisitProperty(property.Property, reflect.Value, reflect.Value) {}

func (r *reader) VisitRecord(b *property.RecordBag, container reflect.Value) {
	for key, child := range r.view.AsObject().All() {
		if r.halted {
			return
		}

		if isMetaKey(key) {
			continue
		}

		p, ok := b.Lookup(key)
		if !ok {
			r.path.AppendName(key)
			r.log(CodeUnknownKey, "unknown key "+strconv.Quote(key), match.Suggest(key, b.Names(), 3)...)
			r.path.Pop()

			continue
		}

		r.path.AppendName(p.Name())
		r.readProperty(p, container, child)
		r.path.Pop()
	}
}

// readProperty reads one record member. Read-only properties accept only
// their current value.
func (r *reader) readProperty(p property.Property, container reflect.Value, view SerializedValueView) {
	cur := p.Value(container)
	tmp := r.fresh(p.DeclaredType())

	if p.IsReadOnly() {
		r.readValue(view, tmp)

		if cur.IsValid() && cur.CanInterface() && reflect.DeepEqual(tmp.Interface(), cur.Interface()) {
			return
		}

		r.exception(CodeReadOnly, fmt.Errorf("%w: %s", property.ErrReadOnly, p.Name()))

		return
	}

	// a zero member counts as absent and starts from the default instance
	if cur.IsValid() && !cur.IsZero() {
		tmp.Set(cur)
	}

	r.readValue(view, tmp)

	if err := p.SetValue(container, tmp); err != nil {
		r.exception(CodeTypeMismatch, err)
	}
}

func (r *reader) VisitList(b *property.ListBag, container reflect.Value) {
	arr := r.view.AsArray()
	n := arr.Len()
	old := b.Len(container)

	if b.IsArray() {
		if size := b.Len(container); n != size {
			r.warn(CodeLengthMismatch, fmt.Sprintf("%d elements read into an array of length %d", n, size))
			n = min(n, size)
		}
	} else if err := b.Resize(container, n); err != nil {
		r.exception(CodeLengthMismatch, err)
		return
	}

	for i := old; i < n; i++ {
		b.Element(container, i).Set(r.fresh(b.Elem()))
	}

	for i := range n {
		r.path.AppendIndex(i)
		r.readValue(arr.At(i), b.Element(container, i))
		r.path.Pop()
	}
}

func (r *reader) VisitSet(b *property.SetBag, container reflect.Value) {
	b.Clear(container)

	for i, child := range r.view.AsArray().All() {
		member := r.fresh(b.Elem())

		r.path.AppendIndex(i)
		r.readValue(child, member)

		if err := b.Add(container, member); err != nil {
			r.exception(CodeTypeMismatch, err)
		}

		r.path.Pop()
	}
}

// VisitMap reads both the object form and the [{"Key": k, "Value": v}]
// form of a map.
func (r *reader) VisitMap(b *property.MapBag, container reflect.Value) {
	b.Clear(container)

	if r.view.Kind() == ValueObject {
		for k, child := range r.view.AsObject().All() {
			if isMetaKey(k) {
				r.skipReserved(k)
				continue
			}

			r.path.AppendKey(k)
			r.readEntry(b, container, child, func(key reflect.Value) bool {
				v, ok := primitive.ConvertString(k, b.Key())
				if ok {
					key.Set(v)
				}

				return ok
			})
			r.path.Pop()
		}

		return
	}

	for i, child := range r.view.AsArray().All() {
		r.path.AppendIndex(i)

		pair := child.AsObject()
		kv, hasKey := pair.Get("Key")
		vv, _ := pair.Get("Value")

		if hasKey {
			r.readEntry(b, container, vv, func(key reflect.Value) bool {
				r.readValue(kv, key)
				return true
			})
		} else {
			r.warn(CodeIncompatible, "map entry without Key")
		}

		r.path.Pop()
	}
}

func (r *reader) readEntry(b *property.MapBag, container reflect.Value, view SerializedValueView, readKey func(reflect.Value) bool) {
	key := r.fresh(b.Key())
	if !readKey(key) {
		r.warn(CodeIncompatible, "key is not a valid "+b.Key().String())
		return
	}

	value := r.fresh(b.Elem())
	if view.IsValid() {
		r.readValue(view, value)
	}

	if err := b.SetEntry(container, key, value); err != nil {
		r.exception(CodeTypeMismatch, err)
	}
}
