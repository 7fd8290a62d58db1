package property

import (
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type vector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type base struct {
	ID int `json:"id" prop:"readonly"`
}

type entity struct {
	base

	Name     string              `json:"name" prop:"former=title|label"`
	Position vector              `json:"position"`
	Tags     map[string]struct{} `json:"tags"`
	Stats    map[string]int      `json:"stats"`
	Children []*entity           `json:"children"`
	Secret   string              `json:"-"`
	hidden   int
}

func TestReflectProviderRecord(t *testing.T) {
	t.Parallel()

	r := NewRegistry()

	bag, ok := r.Resolve(reflect.TypeFor[entity]())
	require.True(t, ok)
	require.Equal(t, KindRecord, bag.Kind())

	record := bag.(*RecordBag)
	assert.Equal(t, []string{"id", "name", "position", "tags", "stats", "children"}, record.Names())

	id, ok := record.Property("id")
	require.True(t, ok)
	assert.True(t, id.IsReadOnly())

	name, ok := record.Lookup("title")
	require.True(t, ok)
	assert.Equal(t, "name", name.Name())

	_, ok = record.Property("title")
	assert.False(t, ok)

	_, ok = record.Lookup("Secret")
	assert.False(t, ok)
}

type labelled struct {
	Label string `json:"label"`
	Code  int    `json:"code"`
}

type audited struct {
	Note    string
	Created int `json:"created"`
}

type shadowing struct {
	labelled
	audited

	Label string `json:"label"`
	Note  string `json:"note_text"`
}

type remark struct {
	Note string
}

type ambiguous struct {
	audited
	remark
}

type tieBreak struct {
	labelled
	audited
	shadowNote
}

type shadowNote struct {
	Text string `json:"Note"`
}

func TestReflectProviderShadowing(t *testing.T) {
	t.Parallel()

	r := NewRegistry()

	tests := []struct {
		name  string
		typ   reflect.Type
		names []string
		index map[string][]int
	}{
		{
			name:  "outer field hides embedded",
			typ:   reflect.TypeFor[shadowing](),
			names: []string{"code", "Note", "created", "label", "note_text"},
			index: map[string][]int{"label": {2}, "Note": {1, 0}, "code": {0, 1}},
		},
		{
			name:  "tagged field wins at equal depth",
			typ:   reflect.TypeFor[tieBreak](),
			names: []string{"label", "code", "created", "Note"},
			index: map[string][]int{"Note": {2, 0}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			bag, ok := r.Resolve(tt.typ)
			require.True(t, ok)

			record := bag.(*RecordBag)
			assert.Equal(t, tt.names, record.Names())

			for name, index := range tt.index {
				p, ok := record.Property(name)
				require.True(t, ok, name)
				assert.Equal(t, index, p.(*fieldProperty).index, name)
			}
		})
	}
}

func TestReflectProviderDuplicateAtSameDepth(t *testing.T) {
	t.Parallel()

	type twice struct {
		A int `json:"a"`
		B int `json:"a"`
	}

	for _, typ := range []reflect.Type{reflect.TypeFor[twice](), reflect.TypeFor[ambiguous]()} {
		_, err := reflectRecordBag(typ)
		assert.ErrorIs(t, err, ErrDuplicateProperty, typ.String())
	}
}

func TestReflectProviderShapes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		typ  reflect.Type
		kind Kind
	}{
		{"slice", reflect.TypeFor[[]int](), KindList},
		{"array", reflect.TypeFor[[3]string](), KindList},
		{"set", reflect.TypeFor[map[string]struct{}](), KindSet},
		{"map", reflect.TypeFor[map[int]vector](), KindMap},
		{"record", reflect.TypeFor[vector](), KindRecord},
	}

	r := NewRegistry()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bag, ok := r.Resolve(tt.typ)
			require.True(t, ok)
			assert.Equal(t, tt.kind, bag.Kind())
			assert.Equal(t, tt.typ, bag.Type())
		})
	}
}

func TestRegister(t *testing.T) {
	t.Parallel()

	var observed []reflect.Type

	r := NewRegistry(WithObserver(func(b Bag) { observed = append(observed, b.Type()) }))

	bag, err := NewRecordBag[vector](
		NewProperty("x", func(v *vector) float64 { return v.X }, func(v *vector, x float64) { v.X = x }),
	)
	require.NoError(t, err)

	require.NoError(t, r.Register(bag))
	require.NoError(t, r.Register(bag), "same bag twice is a no-op")

	other, err := NewRecordBag[vector]()
	require.NoError(t, err)
	assert.ErrorIs(t, r.Register(other), ErrAlreadyRegistered)

	got, ok := r.Resolve(reflect.TypeFor[vector]())
	require.True(t, ok)
	assert.Same(t, bag, got)
	assert.Equal(t, []reflect.Type{reflect.TypeFor[vector]()}, observed)
}

func TestRegisterRejectsLeaves(t *testing.T) {
	t.Parallel()

	r := NewRegistry()

	_, err := NewRecordBag[int]()
	require.ErrorIs(t, err, ErrInvalidBagType)

	err = r.Register(newListBag(reflect.TypeFor[[]int]()))
	require.NoError(t, err)

	err = r.Register(&RecordBag{typ: reflect.TypeFor[string]()})
	assert.ErrorIs(t, err, ErrInvalidBagType)

	err = r.Register(&RecordBag{typ: reflect.TypeFor[error]()})
	assert.ErrorIs(t, err, ErrInvalidBagType)
}

func TestNewRecordBagDuplicate(t *testing.T) {
	t.Parallel()

	_, err := NewRecordBag[vector](
		NewProperty("x", func(v *vector) float64 { return v.X }, nil),
		NewProperty("x", func(v *vector) float64 { return v.Y }, nil),
	)
	assert.ErrorIs(t, err, ErrDuplicateProperty)
}

func TestNewRecordBagForeignProperty(t *testing.T) {
	t.Parallel()

	_, err := NewRecordBag[vector](
		NewProperty("name", func(e *entity) string { return e.Name }, nil),
	)
	assert.Error(t, err)
}

func TestWithConstructor(t *testing.T) {
	t.Parallel()

	bag, err := NewRecordBag[vector]()
	require.NoError(t, err)

	WithConstructor(bag, func() vector { return vector{X: 1, Y: 2} })

	assert.Equal(t, vector{X: 1, Y: 2}, bag.New().Interface())
}

func TestResolveWithoutProvider(t *testing.T) {
	t.Parallel()

	r := NewRegistry(WithProvider(nil))

	_, ok := r.Resolve(reflect.TypeFor[vector]())
	assert.False(t, ok)

	var v vector

	err := r.VisitValue(reflect.ValueOf(&v), VisitorFunc(func(Property, reflect.Value, reflect.Value) {}))
	assert.ErrorIs(t, err, ErrMissingPropertyBag)
}

func TestResolveCachesFailure(t *testing.T) {
	t.Parallel()

	calls := 0
	r := NewRegistry(WithProvider(ProviderFunc(func(reflect.Type) (Bag, error) {
		calls++
		return nil, errors.New("unsupported")
	})))

	for range 3 {
		_, ok := r.Resolve(reflect.TypeFor[vector]())
		assert.False(t, ok)
	}

	assert.Equal(t, 1, calls)
}

func TestResolveConcurrent(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	bags := make([]Bag, 16)

	var wg sync.WaitGroup

	for i := range bags {
		wg.Add(1)

		go func() {
			defer wg.Done()

			bags[i], _ = r.Resolve(reflect.TypeFor[entity]())
		}()
	}

	wg.Wait()

	for _, b := range bags[1:] {
		assert.Same(t, bags[0], b)
	}
}
