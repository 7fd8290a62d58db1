package serialization

import (
	"iter"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"propbag/primitive"
)

//go:generate go tool stringer -type=ValueKind -output=valuekind_string.go

// ValueKind is the syntactic kind of a document value.
type ValueKind int

const (
	ValueInvalid ValueKind = iota
	ValueNull
	ValueBool
	ValueNumber
	ValueString
	ValueObject
	ValueArray
)

// node is one parsed value. Object members carry their key.
type node struct {
	kind     ValueKind
	key      string
	text     string // decoded string, or the raw literal for primitives
	start    int    // source span
	end      int
	children []int
}

// document is the node arena of one parsed text.
type document struct {
	source string
	nodes  []node
}

// ParseView parses text in standard or simplified syntax.
func ParseView(text string) (SerializedValueView, error) {
	p := &parser{
		src: text,
		doc: &document{source: text, nodes: make([]node, 0, len(text)/8+1)},
	}

	p.skipSpace()

	root, err := p.value()
	if err != nil {
		return SerializedValueView{}, err
	}

	p.skipSpace()

	if p.pos < len(p.src) {
		return SerializedValueView{}, p.errorf("unexpected trailing data")
	}

	return SerializedValueView{doc: p.doc, index: root}, nil
}

type parser struct {
	src string
	pos int
	doc *document
}

func (p *parser) errorf(msg string) error {
	return &SyntaxError{Offset: p.pos, Msg: msg}
}

func (p *parser) add(n node) int {
	p.doc.nodes = append(p.doc.nodes, n)
	return len(p.doc.nodes) - 1
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

// skipSeparator consumes whitespace and at most one comma.
func (p *parser) skipSeparator() {
	p.skipSpace()

	if p.pos < len(p.src) && p.src[p.pos] == ',' {
		p.pos++
		p.skipSpace()
	}
}

func (p *parser) value() (int, error) {
	if p.pos >= len(p.src) {
		return 0, p.errorf("unexpected end of input")
	}

	switch p.src[p.pos] {
	case '{':
		return p.object()
	case '[':
		return p.array()
	case '"':
		start := p.pos

		s, err := p.quoted()
		if err != nil {
			return 0, err
		}

		return p.add(node{kind: ValueString, text: s, start: start, end: p.pos}), nil
	}

	start := p.pos
	word := p.bare()

	if word == "" {
		return 0, p.errorf("unexpected character " + strconv.QuoteRune(rune(p.src[p.pos])))
	}

	n := node{text: word, start: start, end: p.pos}

	switch word {
	case "null":
		n.kind = ValueNull
	case "true", "false":
		n.kind = ValueBool
	default:
		if !isNumberLiteral(word) {
			p.pos = start
			return 0, p.errorf("invalid literal " + strconv.Quote(word))
		}

		if _, ok := primitive.ParseFloat(word); !ok {
			p.pos = start
			return 0, p.errorf("invalid literal " + strconv.Quote(word))
		}

		n.kind = ValueNumber
	}

	return p.add(n), nil
}

func (p *parser) object() (int, error) {
	start := p.pos
	p.pos++

	index := p.add(node{kind: ValueObject, start: start})
	var children []int

	for {
		p.skipSpace()

		if p.pos >= len(p.src) {
			return 0, p.errorf("unterminated object")
		}

		if p.src[p.pos] == '}' {
			p.pos++
			break
		}

		key, err := p.key()
		if err != nil {
			return 0, err
		}

		p.skipSpace()

		if p.pos >= len(p.src) || (p.src[p.pos] != ':' && p.src[p.pos] != '=') {
			return 0, p.errorf("expected ':' or '=' after key " + strconv.Quote(key))
		}

		p.pos++
		p.skipSpace()

		child, err := p.value()
		if err != nil {
			return 0, err
		}

		p.doc.nodes[child].key = key
		children = append(children, child)

		p.skipSeparator()
	}

	p.doc.nodes[index].children = children
	p.doc.nodes[index].end = p.pos

	return index, nil
}

func (p *parser) array() (int, error) {
	start := p.pos
	p.pos++

	index := p.add(node{kind: ValueArray, start: start})
	var children []int

	for {
		p.skipSpace()

		if p.pos >= len(p.src) {
			return 0, p.errorf("unterminated array")
		}

		if p.src[p.pos] == ']' {
			p.pos++
			break
		}

		child, err := p.value()
		if err != nil {
			return 0, err
		}

		children = append(children, child)

		p.skipSeparator()
	}

	p.doc.nodes[index].children = children
	p.doc.nodes[index].end = p.pos

	return index, nil
}

func (p *parser) key() (string, error) {
	if p.src[p.pos] == '"' {
		return p.quoted()
	}

	key := p.bare()
	if key == "" {
		return "", p.errorf("expected key")
	}

	return key, nil
}

// bare reads an unquoted token.
func (p *parser) bare() string {
	start := p.pos

	for p.pos < len(p.src) && isBareChar(p.src[p.pos]) {
		p.pos++
	}

	return p.src[start:p.pos]
}

// isNumberLiteral reports whether s follows the JSON number grammar or is
// exactly NaN, Infinity or -Infinity.
func isNumberLiteral(s string) bool {
	switch s {
	case "NaN", "Infinity", "-Infinity":
		return true
	}

	i := 0
	if strings.HasPrefix(s, "-") {
		i++
	}

	digits := func() int {
		from := i
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}

		return i - from
	}

	if i < len(s) && s[i] == '0' {
		i++
	} else if digits() == 0 {
		return false
	}

	if i < len(s) && s[i] == '.' {
		i++
		if digits() == 0 {
			return false
		}
	}

	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}

		if digits() == 0 {
			return false
		}
	}

	return i == len(s)
}

func isBareChar(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '{', '}', '[', ']', ':', '=', ',', '"':
		return false
	}

	return true
}

// quoted reads a quoted string starting at the opening quote.
func (p *parser) quoted() (string, error) {
	start := p.pos
	p.pos++

	// fast path: no escapes
	end := p.pos
	for end < len(p.src) && p.src[end] != '"' && p.src[end] != '\\' {
		end++
	}

	if end < len(p.src) && p.src[end] == '"' {
		p.pos = end + 1
		return p.src[start+1 : end], nil
	}

	var b strings.Builder
	b.WriteString(p.src[start+1 : end])
	p.pos = end

	for p.pos < len(p.src) {
		c := p.src[p.pos]

		switch c {
		case '"':
			p.pos++
			return b.String(), nil

		case '\\':
			if p.pos+1 >= len(p.src) {
				return "", p.errorf("unterminated escape")
			}

			esc := p.src[p.pos+1]
			p.pos += 2

			switch esc {
			case '"', '\\', '/':
				b.WriteByte(esc)
			case 'b':
				b.WriteByte('\b')
			case 'f':
				b.WriteByte('\f')
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 't':
				b.WriteByte('\t')
			case 'u':
				r, err := p.unicodeEscape()
				if err != nil {
					return "", err
				}

				b.WriteRune(r)
			default:
				return "", p.errorf("invalid escape " + strconv.QuoteRune(rune(esc)))
			}

		default:
			b.WriteByte(c)
			p.pos++
		}
	}

	return "", &SyntaxError{Offset: start, Msg: "unterminated string"}
}

// unicodeEscape decodes the hex digits of a \u escape, combining surrogate
// pairs.
func (p *parser) unicodeEscape() (rune, error) {
	r, err := p.hex4()
	if err != nil {
		return 0, err
	}

	if !utf16.IsSurrogate(r) {
		return r, nil
	}

	if !strings.HasPrefix(p.src[p.pos:], `\u`) {
		return utf8.RuneError, nil
	}

	p.pos += 2

	low, err := p.hex4()
	if err != nil {
		return 0, err
	}

	return utf16.DecodeRune(r, low), nil
}

func (p *parser) hex4() (rune, error) {
	if p.pos+4 > len(p.src) {
		return 0, p.errorf("short unicode escape")
	}

	n, err := strconv.ParseUint(p.src[p.pos:p.pos+4], 16, 32)
	if err != nil {
		return 0, p.errorf("invalid unicode escape")
	}

	p.pos += 4

	return rune(n), nil
}

// SerializedValueView is a read-only view of one value of a parsed document.
// The zero view is invalid.
type SerializedValueView struct {
	doc   *document
	index int
}

func (v SerializedValueView) node() *node { return &v.doc.nodes[v.index] }

// IsValid reports whether the view points at a value.
func (v SerializedValueView) IsValid() bool { return v.doc != nil }

// Kind returns the syntactic kind of the value.
func (v SerializedValueView) Kind() ValueKind {
	if v.doc == nil {
		return ValueInvalid
	}

	return v.node().kind
}

// IsNull reports whether the value is the null literal.
func (v SerializedValueView) IsNull() bool { return v.Kind() == ValueNull }

// AsString returns the decoded text of a string, or the literal text of a
// primitive.
func (v SerializedValueView) AsString() string {
	if v.doc == nil {
		return ""
	}

	return v.node().text
}

// AsBool returns the value of a boolean literal.
func (v SerializedValueView) AsBool() (bool, bool) {
	if v.Kind() != ValueBool {
		return false, false
	}

	return v.node().text == "true", true
}

// AsFloat returns the value of a number, including NaN and infinities.
func (v SerializedValueView) AsFloat() (float64, bool) {
	if v.Kind() != ValueNumber {
		return 0, false
	}

	return primitive.ParseFloat(v.node().text)
}

// AsInt returns the value of an integral number.
func (v SerializedValueView) AsInt() (int64, bool) {
	if v.Kind() != ValueNumber {
		return 0, false
	}

	n, err := strconv.ParseInt(v.node().text, 10, 64)
	if err != nil {
		f, ok := v.AsFloat()
		if !ok || f != float64(int64(f)) {
			return 0, false
		}

		return int64(f), true
	}

	return n, true
}

// AsObject returns the value as an object view; the view is empty for other
// kinds.
func (v SerializedValueView) AsObject() ObjectView {
	if v.Kind() != ValueObject {
		return ObjectView{}
	}

	return ObjectView(v)
}

// AsArray returns the value as an array view; the view is empty for other
// kinds.
func (v SerializedValueView) AsArray() ArrayView {
	if v.Kind() != ValueArray {
		return ArrayView{}
	}

	return ArrayView(v)
}

// Raw returns the source text of the value.
func (v SerializedValueView) Raw() string {
	if v.doc == nil {
		return ""
	}

	n := v.node()

	return v.doc.source[n.start:n.end]
}

func (v SerializedValueView) String() string { return v.Raw() }

func (v SerializedValueView) child(i int) SerializedValueView {
	return SerializedValueView{doc: v.doc, index: v.node().children[i]}
}

// ObjectView is a view of an object value.
type ObjectView SerializedValueView

// Len returns the number of members.
func (o ObjectView) Len() int {
	if o.doc == nil {
		return 0
	}

	return len(SerializedValueView(o).node().children)
}

// Get returns the first member named key.
func (o ObjectView) Get(key string) (SerializedValueView, bool) {
	for k, v := range o.All() {
		if k == key {
			return v, true
		}
	}

	return SerializedValueView{}, false
}

// Has reports whether a member named key exists.
func (o ObjectView) Has(key string) bool {
	_, ok := o.Get(key)
	return ok
}

// Keys returns the member names in document order.
func (o ObjectView) Keys() []string {
	keys := make([]string, 0, o.Len())
	for k := range o.All() {
		keys = append(keys, k)
	}

	return keys
}

// All iterates the members in document order.
func (o ObjectView) All() iter.Seq2[string, SerializedValueView] {
	return func(yield func(string, SerializedValueView) bool) {
		v := SerializedValueView(o)

		for i := range o.Len() {
			c := v.child(i)
			if !yield(c.node().key, c) {
				return
			}
		}
	}
}

// View returns the object as a value view.
func (o ObjectView) View() SerializedValueView { return SerializedValueView(o) }

// ArrayView is a view of an array value.
type ArrayView SerializedValueView

// Len returns the number of elements.
func (a ArrayView) Len() int {
	if a.doc == nil {
		return 0
	}

	return len(SerializedValueView(a).node().children)
}

// At returns the element at index i.
func (a ArrayView) At(i int) SerializedValueView {
	return SerializedValueView(a).child(i)
}

// All iterates the elements in order.
func (a ArrayView) All() iter.Seq2[int, SerializedValueView] {
	return func(yield func(int, SerializedValueView) bool) {
		for i := range a.Len() {
			if !yield(i, a.At(i)) {
				return
			}
		}
	}
}
