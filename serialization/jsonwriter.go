package serialization

import (
	"io"
	"slices"
	"strconv"
	"unicode/utf8"

	"propbag/primitive"
)

// Format selects the textual layout of a JSONWriter.
type Format int

const (
	// FormatMinified writes no insignificant whitespace.
	FormatMinified Format = 1 << iota
	// FormatSimplified leaves safe keys unquoted, writes '=' between key and
	// value and separates elements by whitespace.
	FormatSimplified

	// FormatPretty indents nested values by four spaces.
	FormatPretty Format = 0
)

const indentWidth = 4

type frame struct {
	count int
}

// JSONWriter writes a document token by token. Separators and indentation
// are inserted automatically.
type JSONWriter struct {
	buf      []byte
	format   Format
	stack    []frame
	afterKey bool
}

// NewJSONWriter returns a writer with an initial buffer capacity.
func NewJSONWriter(capacity int, format Format) *JSONWriter {
	return &JSONWriter{buf: make([]byte, 0, max(capacity, 16)), format: format}
}

func (w *JSONWriter) minified() bool   { return w.format&FormatMinified != 0 }
func (w *JSONWriter) simplified() bool { return w.format&FormatSimplified != 0 }

// Reset clears the content, keeping the buffer, and switches to format.
func (w *JSONWriter) Reset(format Format) {
	w.buf = w.buf[:0]
	w.stack = w.stack[:0]
	w.afterKey = false
	w.format = format
}

// Grow makes room for at least n more bytes.
func (w *JSONWriter) Grow(n int) {
	if n > 0 {
		w.buf = slices.Grow(w.buf, n)
	}
}

// Len returns the number of bytes written.
func (w *JSONWriter) Len() int { return len(w.buf) }

// Bytes returns the written content. It aliases the internal buffer.
func (w *JSONWriter) Bytes() []byte { return w.buf }

// String returns the written content.
func (w *JSONWriter) String() string { return string(w.buf) }

// WriteTo writes the content to dst.
func (w *JSONWriter) WriteTo(dst io.Writer) (int64, error) {
	n, err := dst.Write(w.buf)
	return int64(n), err
}

func (w *JSONWriter) newline() {
	w.buf = append(w.buf, '\n')
	for range len(w.stack) * indentWidth {
		w.buf = append(w.buf, ' ')
	}
}

// element starts a new value or key inside the current container.
func (w *JSONWriter) element() {
	if w.afterKey {
		w.afterKey = false
		return
	}

	if len(w.stack) == 0 {
		return
	}

	top := &w.stack[len(w.stack)-1]

	if top.count > 0 {
		switch {
		case !w.simplified():
			w.buf = append(w.buf, ',')
		case w.minified():
			w.buf = append(w.buf, ' ')
		}
	}

	if !w.minified() {
		w.newline()
	}

	top.count++
}

func (w *JSONWriter) open(c byte) {
	w.element()
	w.buf = append(w.buf, c)
	w.stack = append(w.stack, frame{})
}

func (w *JSONWriter) close(c byte) {
	top := w.stack[len(w.stack)-1]
	w.stack = w.stack[:len(w.stack)-1]

	if top.count > 0 && !w.minified() {
		w.newline()
	}

	w.buf = append(w.buf, c)
}

func (w *JSONWriter) BeginObject() { w.open('{') }
func (w *JSONWriter) EndObject()   { w.close('}') }
func (w *JSONWriter) BeginArray()  { w.open('[') }
func (w *JSONWriter) EndArray()    { w.close(']') }

// WriteKey writes an object key and the key/value separator.
func (w *JSONWriter) WriteKey(key string) {
	w.element()

	if w.simplified() && isSafeKey(key) {
		w.buf = append(w.buf, key...)
	} else {
		w.buf = appendQuoted(w.buf, key)
	}

	switch {
	case w.simplified() && w.minified():
		w.buf = append(w.buf, '=')
	case w.simplified():
		w.buf = append(w.buf, " = "...)
	case w.minified():
		w.buf = append(w.buf, ':')
	default:
		w.buf = append(w.buf, ": "...)
	}

	w.afterKey = true
}

// WriteString writes a quoted string.
func (w *JSONWriter) WriteString(s string) {
	w.element()
	w.buf = appendQuoted(w.buf, s)
}

func (w *JSONWriter) WriteInt(n int64) {
	w.element()
	w.buf = strconv.AppendInt(w.buf, n, 10)
}

func (w *JSONWriter) WriteUint(n uint64) {
	w.element()
	w.buf = strconv.AppendUint(w.buf, n, 10)
}

// WriteFloat writes f with the shortest representation for its bit size.
// NaN and infinities are written as bare NaN, Infinity and -Infinity.
func (w *JSONWriter) WriteFloat(f float64, bits int) {
	w.element()
	w.buf = append(w.buf, primitive.FormatFloat(f, bits)...)
}

func (w *JSONWriter) WriteBool(b bool) {
	w.element()
	w.buf = strconv.AppendBool(w.buf, b)
}

func (w *JSONWriter) WriteNull() {
	w.element()
	w.buf = append(w.buf, "null"...)
}

// WriteRaw writes a literal token as-is.
func (w *JSONWriter) WriteRaw(token string) {
	w.element()
	w.buf = append(w.buf, token...)
}

// WriteView writes a parsed value in the writer's format, keeping the key
// order of the source.
func (w *JSONWriter) WriteView(v SerializedValueView) {
	switch v.Kind() {
	case ValueObject:
		w.BeginObject()

		for k, child := range v.AsObject().All() {
			w.WriteKey(k)
			w.WriteView(child)
		}

		w.EndObject()
	case ValueArray:
		w.BeginArray()

		for _, child := range v.AsArray().All() {
			w.WriteView(child)
		}

		w.EndArray()
	case ValueString:
		w.WriteString(v.AsString())
	case ValueNumber, ValueBool:
		w.WriteRaw(v.AsString())
	default:
		w.WriteNull()
	}
}

// isSafeKey reports whether key can be written unquoted in simplified
// output and read back unchanged.
func isSafeKey(key string) bool {
	if key == "" {
		return false
	}

	for i := range len(key) {
		c := key[i]

		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '_', c == '$', c == '-', c == '.':
		default:
			return false
		}
	}

	return true
}

const hexDigits = "0123456789abcdef"

// appendQuoted appends s as a JSON string literal.
func appendQuoted(buf []byte, s string) []byte {
	buf = append(buf, '"')

	for i := 0; i < len(s); {
		c := s[i]

		if c < utf8.RuneSelf {
			switch {
			case c == '"' || c == '\\':
				buf = append(buf, '\\', c)
			case c == '\n':
				buf = append(buf, '\\', 'n')
			case c == '\r':
				buf = append(buf, '\\', 'r')
			case c == '\t':
				buf = append(buf, '\\', 't')
			case c < 0x20:
				buf = append(buf, '\\', 'u', '0', '0', hexDigits[c>>4], hexDigits[c&0xf])
			default:
				buf = append(buf, c)
			}

			i++

			continue
		}

		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			buf = append(buf, "\ufffd"...)
		} else {
			buf = append(buf, s[i:i+size]...)
		}

		i += size
	}

	return append(buf, '"')
}
