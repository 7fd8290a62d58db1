package serialization

import (
	"fmt"
	"reflect"
	"time"

	"github.com/google/uuid"
)

// Adapter overrides how values of one type are written and read. Adapters
// are consulted before the default handling: per-call adapters first, then
// the Context's, then the built-in ones for time.Time, time.Duration and
// uuid.UUID.
//
// Either function may return ErrContinueVisitation to decline a value; the
// default handling is used instead. A write function must decline before it
// writes anything.
type Adapter struct {
	typ   reflect.Type
	write func(*WriteContext, reflect.Value) error
	read  func(*ReadContext) (reflect.Value, error)
}

// NewAdapter returns an adapter for T. A nil write or read function leaves
// that direction to the default handling.
func NewAdapter[T any](write func(*WriteContext, T) error, read func(*ReadContext) (T, error)) *Adapter {
	a := &Adapter{typ: reflect.TypeFor[T]()}

	if write != nil {
		a.write = func(ctx *WriteContext, v reflect.Value) error {
			return write(ctx, v.Interface().(T))
		}
	}

	if read != nil {
		a.read = func(ctx *ReadContext) (reflect.Value, error) {
			v, err := read(ctx)
			if err != nil {
				return reflect.Value{}, err
			}

			out := reflect.New(a.typ).Elem()
			out.Set(reflect.ValueOf(&v).Elem())

			return out, nil
		}
	}

	return a
}

// Type returns the adapted type.
func (a *Adapter) Type() reflect.Type { return a.typ }

// WriteContext is passed to adapter write functions.
type WriteContext struct {
	w *writer
}

// Writer returns the output writer.
func (c *WriteContext) Writer() *JSONWriter { return c.w.out }

// WriteValue writes v with the default handling, adapters included.
func (c *WriteContext) WriteValue(v any) error {
	c.w.depth++
	c.w.writeValue(reflect.ValueOf(v), reflect.TypeOf(v))
	c.w.depth--

	return c.w.err
}

// ReadContext is passed to adapter read functions.
type ReadContext struct {
	eventSink

	view SerializedValueView
}

// View returns the serialized value to read.
func (c *ReadContext) View() SerializedValueView { return c.view }

// ReadAs reads view into a new T with the default handling, adapters
// included. Problems are recorded as events.
func ReadAs[T any](c *ReadContext, view SerializedValueView) T {
	var out T

	v := reflect.ValueOf(&out).Elem()
	v.Set(c.r.fresh(v.Type()))
	c.r.readNested(view, v)

	return out
}

// eventSink records events at the reader's current path.
type eventSink struct {
	r *reader
}

// Path returns the document path being read.
func (s eventSink) Path() string { return s.r.path.String() }

// Log records a Log event.
func (s eventSink) Log(msg string) { s.r.result.diags.AddLog(CodeAdapter, msg, s.Path()) }

// Warn records a Warning event.
func (s eventSink) Warn(msg string) { s.r.warn(CodeAdapter, msg) }

// Error records an Error event.
func (s eventSink) Error(msg string) { s.r.error(CodeAdapter, msg) }

// Exception records an Exception event.
func (s eventSink) Exception(err error) { s.r.exception(CodeAdapter, err) }

var builtinAdapters = map[reflect.Type]*Adapter{}

func init() {
	for _, a := range []*Adapter{
		NewAdapter(writeTime, readTime),
		NewAdapter(writeDuration, readDuration),
		NewAdapter(writeUUID, readUUID),
	} {
		builtinAdapters[a.typ] = a
	}
}

func writeTime(ctx *WriteContext, t time.Time) error {
	ctx.Writer().WriteString(t.Format(time.RFC3339Nano))
	return nil
}

func readTime(ctx *ReadContext) (time.Time, error) {
	if ctx.View().Kind() != ValueString {
		return time.Time{}, ErrContinueVisitation
	}

	return time.Parse(time.RFC3339Nano, ctx.View().AsString())
}

func writeDuration(ctx *WriteContext, d time.Duration) error {
	ctx.Writer().WriteString(d.String())
	return nil
}

func readDuration(ctx *ReadContext) (time.Duration, error) {
	if ctx.View().Kind() != ValueString {
		return 0, ErrContinueVisitation
	}

	return time.ParseDuration(ctx.View().AsString())
}

func writeUUID(ctx *WriteContext, id uuid.UUID) error {
	ctx.Writer().WriteString(id.String())
	return nil
}

func readUUID(ctx *ReadContext) (uuid.UUID, error) {
	if ctx.View().Kind() != ValueString {
		return uuid.Nil, fmt.Errorf("%w: uuid must be a string, got %s", ErrTypeMismatch, ctx.View().Kind())
	}

	return uuid.Parse(ctx.View().AsString())
}
