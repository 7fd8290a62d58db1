package serialization

import (
	"reflect"
	"time"

	"propbag/property"
)

// ToJSON writes value as a document.
//
// Writing stops at the first failure: a forbidden type, a type that has no
// name for $type, a cycle while references are disabled, or a failing
// adapter.
func ToJSON[T any](value T, params *Params) (string, error) {
	p := params.orDefault()
	ctx := params.context()

	lease := ctx.writers.acquire(p.RequiresThreadSafety)
	defer lease.release()

	w := lease.value()
	w.params = p
	w.out.Reset(p.format())
	w.out.Grow(p.InitialCapacity)

	start := time.Now()
	err := w.run(reflect.ValueOf(&value).Elem(), reflect.TypeFor[T]())
	ctx.hooks.OnSerialize(reflect.TypeFor[T]().String(), w.out.Len(), time.Since(start), err)

	if err != nil {
		return "", err
	}

	return w.out.String(), nil
}

// WriteJSON writes value to out in out's current format. Params format
// options are ignored. On failure out holds a partial document.
func WriteJSON[T any](out *JSONWriter, value T, params *Params) error {
	p := params.orDefault()
	ctx := params.context()

	lease := ctx.writers.acquire(p.RequiresThreadSafety)
	defer lease.release()

	w := lease.value()
	w.params = p
	w.out = out

	start := time.Now()
	before := out.Len()
	err := w.run(reflect.ValueOf(&value).Elem(), reflect.TypeFor[T]())
	ctx.hooks.OnSerialize(reflect.TypeFor[T]().String(), out.Len()-before, time.Since(start), err)

	return err
}

// FromJSON reads a new T from text. The error is the result's Throw: nil
// unless an Error or Exception event was recorded. The value is returned
// either way.
func FromJSON[T any](text string, params *Params) (T, error) {
	var out T

	result := read(text, &out, params, true)

	return out, result.Throw()
}

// TryFromJSON reads a new T from text and stores it in target, even when the
// read failed.
func TryFromJSON[T any](text string, target *T, params *Params) DeserializationResult {
	var out T

	result := read(text, &out, params, true)

	if target != nil {
		*target = out
	}

	return result
}

// FromJSONOverride populates the existing value behind target from text.
// Members absent from the document keep their values.
func FromJSONOverride[T any](text string, target *T, params *Params) DeserializationResult {
	if target == nil {
		var result DeserializationResult
		result.diags.AddException(CodeTypeMismatch, property.ErrNullContainer, "")

		return result
	}

	return read(text, target, params, false)
}

// read populates target. With seed set it first holds the default instance
// of T instead of its current value.
func read[T any](text string, target *T, params *Params, seed bool) DeserializationResult {
	p := params.orDefault()
	ctx := params.context()

	lease := ctx.readers.acquire(p.RequiresThreadSafety)
	defer lease.release()

	r := lease.value()
	r.params = p

	root := reflect.ValueOf(target).Elem()
	if seed {
		root.Set(r.fresh(root.Type()))
	}

	start := time.Now()
	r.run(text, root)

	result := r.result.clone()
	name := reflect.TypeFor[T]().String()
	ctx.hooks.OnDeserialize(name, time.Since(start), &result)

	if n := result.countFailures(); n > 0 {
		ctx.logger.Warn("deserialization finished with failures", "type", name, "failures", n)
	}

	return result
}
