package serialization

import (
	"fmt"
	"reflect"
)

// Migration upgrades documents of one type written by an older version.
//
// Documents record the version under $version; a missing key means version
// 0. When the serialized version differs from Version, the migration builds
// the value from the raw view instead of the default population.
type Migration struct {
	typ     reflect.Type
	version int
	migrate func(*MigrationContext) (reflect.Value, error)
}

// NewMigration returns a migration producing values of T at version.
func NewMigration[T any](version int, fn func(*MigrationContext) (T, error)) *Migration {
	m := &Migration{typ: reflect.TypeFor[T](), version: version}

	m.migrate = func(ctx *MigrationContext) (reflect.Value, error) {
		v, err := fn(ctx)
		if err != nil {
			return reflect.Value{}, err
		}

		out := reflect.New(m.typ).Elem()
		out.Set(reflect.ValueOf(&v).Elem())

		return out, nil
	}

	return m
}

// Type returns the migrated type.
func (m *Migration) Type() reflect.Type { return m.typ }

// Version returns the current version of the type.
func (m *Migration) Version() int { return m.version }

// MigrationContext is passed to migration functions.
type MigrationContext struct {
	eventSink

	view    SerializedValueView
	version int
}

// SerializedVersion returns the version the document was written with.
func (c *MigrationContext) SerializedVersion() int { return c.version }

// View returns the serialized value, metadata keys included.
func (c *MigrationContext) View() SerializedValueView { return c.view }

// Populate reads the view into target, a non-nil pointer, with the default
// population and without running this migration again.
func (c *MigrationContext) Populate(target any) error {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return fmt.Errorf("%w: populate needs a non-nil pointer, got %T", ErrTypeMismatch, target)
	}

	r := c.r
	saved := r.bypass
	r.bypass = v.Elem().Type()
	r.readResolved(c.view, v.Elem())
	r.bypass = saved

	return nil
}

// ReadField reads the member name of the serialized object into a new T. The
// second result is false when the member is absent.
func ReadField[T any](c *MigrationContext, name string) (T, bool) {
	var out T

	child, ok := c.view.AsObject().Get(name)
	if !ok {
		return out, false
	}

	v := reflect.ValueOf(&out).Elem()
	v.Set(c.r.fresh(v.Type()))

	c.r.path.AppendName(name)
	c.r.readNested(child, v)
	c.r.path.Pop()

	return out, true
}

// serializedVersion returns the $version of view, 0 when absent.
func serializedVersion(view SerializedValueView) (int, bool) {
	if view.Kind() != ValueObject {
		return 0, true
	}

	v, ok := view.AsObject().Get(keyVersion)
	if !ok {
		return 0, true
	}

	n, ok := v.AsInt()

	return int(n), ok
}
