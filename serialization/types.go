package serialization

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// typeRegistry maps runtime types to the names written under $type.
type typeRegistry struct {
	mu     sync.RWMutex
	byName map[string]reflect.Type
	names  map[reflect.Type]string
	former map[string]string
}

func newTypeRegistry() *typeRegistry {
	r := &typeRegistry{
		byName: make(map[string]reflect.Type),
		names:  make(map[reflect.Type]string),
		former: make(map[string]string),
	}

	for _, t := range []reflect.Type{
		reflect.TypeFor[bool](), reflect.TypeFor[string](),
		reflect.TypeFor[int](), reflect.TypeFor[int8](), reflect.TypeFor[int16](),
		reflect.TypeFor[int32](), reflect.TypeFor[int64](),
		reflect.TypeFor[uint](), reflect.TypeFor[uint8](), reflect.TypeFor[uint16](),
		reflect.TypeFor[uint32](), reflect.TypeFor[uint64](),
		reflect.TypeFor[float32](), reflect.TypeFor[float64](),
	} {
		r.add(t, t.Name())
	}

	r.add(reflect.TypeFor[any](), "any")
	r.add(reflect.TypeFor[time.Time](), "time.Time")
	r.add(reflect.TypeFor[time.Duration](), "time.Duration")
	r.add(reflect.TypeFor[uuid.UUID](), "uuid.UUID")

	return r
}

func (r *typeRegistry) add(t reflect.Type, name string) {
	r.byName[name] = t
	r.names[t] = name
}

// register binds name to t and remaps every former name to it.
func (r *typeRegistry) register(t reflect.Type, name string, former []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if other, ok := r.byName[name]; ok && other != t {
		return fmt.Errorf("%w: %q names %s", ErrDuplicateTypeName, name, other)
	}

	if prev, ok := r.names[t]; ok && prev != name {
		// an auto-derived name is replaced by the explicit one
		if prev != autoName(t) {
			return fmt.Errorf("%w: %s is already named %q", ErrDuplicateTypeName, t, prev)
		}

		delete(r.byName, prev)
	}

	r.add(t, name)

	for _, f := range former {
		r.former[f] = name
	}

	return nil
}

// nameOf returns the serialized name of t. Named types that were never
// registered get their package-qualified name, which is remembered so it
// resolves within the same process.
func (r *typeRegistry) nameOf(t reflect.Type) (string, error) {
	r.mu.RLock()
	name, ok := r.names[t]
	r.mu.RUnlock()

	if ok {
		return name, nil
	}

	switch t.Kind() {
	case reflect.Pointer:
		elem, err := r.nameOf(t.Elem())
		return "*" + elem, err
	case reflect.Slice:
		elem, err := r.nameOf(t.Elem())
		return "[]" + elem, err
	case reflect.Array:
		elem, err := r.nameOf(t.Elem())
		return "[" + strconv.Itoa(t.Len()) + "]" + elem, err
	case reflect.Map:
		key, err := r.nameOf(t.Key())
		if err != nil {
			return "", err
		}

		elem, err := r.nameOf(t.Elem())

		return "map[" + key + "]" + elem, err
	}

	name = autoName(t)
	if name == "" {
		return "", fmt.Errorf("%w: %s has no name", ErrUnknownType, t)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if other, ok := r.byName[name]; ok && other != t {
		return "", fmt.Errorf("%w: %q names %s", ErrDuplicateTypeName, name, other)
	}

	r.add(t, name)

	return name, nil
}

func autoName(t reflect.Type) string {
	if t.Name() == "" {
		return ""
	}

	if t.PkgPath() == "" {
		return t.Name()
	}

	return t.PkgPath() + "." + t.Name()
}

// resolve returns the type named name, following former names. The second
// result is the current name when a former name was used.
func (r *typeRegistry) resolve(name string) (reflect.Type, string, error) {
	r.mu.RLock()
	current, renamed := r.former[name]
	if renamed {
		name = current
	}

	t, ok := r.byName[name]
	r.mu.RUnlock()

	if ok {
		return t, current, nil
	}

	t, err := r.composite(name)
	if err != nil {
		return nil, "", err
	}

	return t, current, nil
}

// composite parses pointer, slice, array and map names.
func (r *typeRegistry) composite(name string) (reflect.Type, error) {
	unknown := fmt.Errorf("%w: %q", ErrUnknownType, name)

	switch {
	case strings.HasPrefix(name, "*"):
		elem, _, err := r.resolve(name[1:])
		if err != nil {
			return nil, err
		}

		return reflect.PointerTo(elem), nil

	case strings.HasPrefix(name, "[]"):
		elem, _, err := r.resolve(name[2:])
		if err != nil {
			return nil, err
		}

		return reflect.SliceOf(elem), nil

	case strings.HasPrefix(name, "["):
		end := strings.IndexByte(name, ']')
		if end < 0 {
			return nil, unknown
		}

		n, err := strconv.Atoi(name[1:end])
		if err != nil || n < 0 {
			return nil, unknown
		}

		elem, _, err := r.resolve(name[end+1:])
		if err != nil {
			return nil, err
		}

		return reflect.ArrayOf(n, elem), nil

	case strings.HasPrefix(name, "map["):
		end := matchingBracket(name, len("map"))
		if end < 0 {
			return nil, unknown
		}

		key, _, err := r.resolve(name[len("map["):end])
		if err != nil {
			return nil, err
		}

		elem, _, err := r.resolve(name[end+1:])
		if err != nil {
			return nil, err
		}

		if !key.Comparable() {
			return nil, unknown
		}

		return reflect.MapOf(key, elem), nil
	}

	return nil, unknown
}

// matchingBracket returns the index of the ']' closing the '[' at open.
func matchingBracket(s string, open int) int {
	depth := 0

	for i := open; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}

	return -1
}
