package property

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// PartKind distinguishes the steps of a Path.
type PartKind int

const (
	PartName  PartKind = iota // record property: a.b
	PartIndex                 // list element: a[2]
	PartKey                   // map or set key: a["k"]
)

// PathPart is one step of a Path.
type PathPart struct {
	kind  PartKind
	name  string
	index int
}

func (p PathPart) Kind() PartKind { return p.kind }

// Name returns the property name or the key text.
func (p PathPart) Name() string { return p.name }

// Index returns the element index of a PartIndex step.
func (p PathPart) Index() int { return p.index }

// Key returns the text used to look the step up in a map or set.
func (p PathPart) Key() string {
	if p.kind == PartIndex {
		return strconv.Itoa(p.index)
	}

	return p.name
}

func (p PathPart) String() string {
	switch p.kind {
	case PartIndex:
		return "[" + strconv.Itoa(p.index) + "]"
	case PartKey:
		return "[" + strconv.Quote(p.name) + "]"
	}

	return p.name
}

// Path is an ordered list of name, index and key steps, such as
// `items[2].tags["red"]`.
type Path struct {
	parts []PathPart
}

// NewPath returns an empty path.
func NewPath() *Path { return &Path{} }

// ParsePath parses a path string. Names are separated by '.', indexes are
// written [n] and keys ["text"].
func ParsePath(path string) (*Path, error) {
	p := &Path{}
	if err := p.parse(path); err != nil {
		return nil, err
	}

	return p, nil
}

// MustParsePath is ParsePath panicking on error.
func MustParsePath(path string) *Path {
	p, err := ParsePath(path)
	if err != nil {
		panic(err)
	}

	return p
}

func (p *Path) parse(path string) error {
	p.parts = p.parts[:0]

	if path == "" {
		return errors.New("empty path")
	}

	i := 0
	expectName := true

	for i < len(path) {
		switch c := path[i]; {
		case c == '.':
			if expectName || i+1 == len(path) {
				return fmt.Errorf("invalid path %q: empty segment at %d", path, i)
			}

			expectName = true
			i++

		case c == '[':
			if i > 0 && path[i-1] == '.' {
				return fmt.Errorf("invalid path %q: '.' before index at %d", path, i)
			}

			end, part, err := parseBracket(path, i)
			if err != nil {
				return err
			}

			p.parts = append(p.parts, part)
			expectName = false
			i = end

		default:
			if !expectName {
				return fmt.Errorf("invalid path %q: unexpected %q at %d", path, c, i)
			}

			end := i
			for end < len(path) && path[end] != '.' && path[end] != '[' {
				end++
			}

			p.parts = append(p.parts, PathPart{kind: PartName, name: path[i:end]})
			expectName = false
			i = end
		}
	}

	return nil
}

// parseBracket parses an index or quoted key starting at the '[' at i.
func parseBracket(path string, i int) (int, PathPart, error) {
	rest := path[i+1:]

	if strings.HasPrefix(rest, `"`) {
		quoted, err := strconv.QuotedPrefix(rest)
		if err != nil {
			return 0, PathPart{}, fmt.Errorf("invalid path %q: bad key at %d: %w", path, i, err)
		}

		key, _ := strconv.Unquote(quoted)
		end := i + 1 + len(quoted)

		if end >= len(path) || path[end] != ']' {
			return 0, PathPart{}, fmt.Errorf("invalid path %q: unterminated key at %d", path, i)
		}

		return end + 1, PathPart{kind: PartKey, name: key}, nil
	}

	closing := strings.IndexByte(rest, ']')
	if closing < 0 {
		return 0, PathPart{}, fmt.Errorf("invalid path %q: unterminated index at %d", path, i)
	}

	index, err := strconv.Atoi(rest[:closing])
	if err != nil || index < 0 {
		return 0, PathPart{}, fmt.Errorf("invalid path %q: bad index %q", path, rest[:closing])
	}

	return i + 1 + closing + 1, PathPart{kind: PartIndex, index: index}, nil
}

// AppendName adds a property step.
func (p *Path) AppendName(name string) *Path {
	p.parts = append(p.parts, PathPart{kind: PartName, name: name})
	return p
}

// AppendIndex adds a list element step.
func (p *Path) AppendIndex(index int) *Path {
	p.parts = append(p.parts, PathPart{kind: PartIndex, index: index})
	return p
}

// AppendKey adds a map or set key step.
func (p *Path) AppendKey(key string) *Path {
	p.parts = append(p.parts, PathPart{kind: PartKey, name: key})
	return p
}

// Pop removes the last step.
func (p *Path) Pop() *Path {
	if len(p.parts) > 0 {
		p.parts = p.parts[:len(p.parts)-1]
	}

	return p
}

// Clear removes every step, keeping the allocated storage.
func (p *Path) Clear() { p.parts = p.parts[:0] }

func (p *Path) Len() int            { return len(p.parts) }
func (p *Path) IsEmpty() bool       { return len(p.parts) == 0 }
func (p *Path) Part(i int) PathPart { return p.parts[i] }

// Clone returns an independent copy.
func (p *Path) Clone() *Path {
	return &Path{parts: append([]PathPart(nil), p.parts...)}
}

func (p *Path) String() string {
	return p.prefix(len(p.parts))
}

// prefix renders the first n steps.
func (p *Path) prefix(n int) string {
	var b strings.Builder

	for i, part := range p.parts[:n] {
		if i > 0 && part.kind == PartName {
			b.WriteByte('.')
		}

		b.WriteString(part.String())
	}

	return b.String()
}

var pathPool = sync.Pool{
	New: func() any { return &Path{parts: make([]PathPart, 0, 8)} },
}

// acquirePath parses path into a pooled Path. The caller must release it.
func acquirePath(path string) (*Path, error) {
	p := pathPool.Get().(*Path)
	if err := p.parse(path); err != nil {
		releasePath(p)
		return nil, err
	}

	return p, nil
}

func releasePath(p *Path) {
	p.Clear()
	pathPool.Put(p)
}
