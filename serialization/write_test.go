package serialization

import (
	"errors"
	"reflect"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTripFormats(t *testing.T) {
	t.Parallel()

	ctx := newTestContext(t)
	want := item{Name: "crate", Count: 2, Tags: []string{"a", "b"}}

	tests := []struct {
		name   string
		params *Params
		out    string
	}{
		{
			name:   "pretty",
			params: &Params{Context: ctx},
			out: "{\n" +
				"    \"name\": \"crate\",\n" +
				"    \"count\": 2,\n" +
				"    \"tags\": [\n" +
				"        \"a\",\n" +
				"        \"b\"\n" +
				"    ]\n" +
				"}",
		},
		{
			name:   "minified",
			params: minified(ctx),
			out:    `{"name":"crate","count":2,"tags":["a","b"]}`,
		},
		{
			name:   "simplified",
			params: &Params{Context: ctx, Minified: true, Simplified: true},
			out:    `{name="crate" count=2 tags=["a" "b"]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out, err := ToJSON(want, tt.params)
			require.NoError(t, err)
			assert.Equal(t, tt.out, out)

			got, err := FromJSON[item](out, tt.params)
			require.NoError(t, err)
			assert.Equal(t, want, got, spew.Sdump(got))
		})
	}
}

func TestWriteCollections(t *testing.T) {
	t.Parallel()

	ctx := newTestContext(t)

	tests := []struct {
		name  string
		value any
		out   string
	}{
		{name: "string map", value: map[string]int{"b": 2, "a": 1}, out: `{"a":1,"b":2}`},
		{name: "int map", value: map[int]string{2: "b", 1: "a"}, out: `[{"Key":1,"Value":"a"},{"Key":2,"Value":"b"}]`},
		{name: "set", value: map[string]struct{}{"b": {}, "a": {}}, out: `["a","b"]`},
		{name: "array", value: [3]int{1, 2, 3}, out: `[1,2,3]`},
		{name: "nil slice", value: []int(nil), out: `null`},
		{name: "empty slice", value: []int{}, out: `[]`},
		{name: "nested", value: [][]bool{{true}, {}}, out: `[[true],[]]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := &Params{Context: ctx, Minified: true, SerializedType: reflect.TypeOf(tt.value)}

			out, err := ToJSON(tt.value, p)
			require.NoError(t, err)
			assert.Equal(t, tt.out, out)

			got, err := FromJSON[any](out, p)
			require.NoError(t, err)
			assert.Equal(t, tt.value, got)
		})
	}
}

func TestWriteSharedReferences(t *testing.T) {
	t.Parallel()

	ctx := newTestContext(t)
	shared := &point{X: 1, Y: 2}

	out, err := ToJSON(pair{A: shared, B: shared}, minified(ctx))
	require.NoError(t, err)
	assert.Equal(t, `{"a":{"$id":0,"x":1,"y":2},"b":{"$ref":0}}`, out)

	got, err := FromJSON[pair](out, minified(ctx))
	require.NoError(t, err)
	require.NotNil(t, got.A)
	assert.Same(t, got.A, got.B)
	assert.Equal(t, *shared, *got.A)

	p := minified(ctx)
	p.DisableSerializedReferences = true

	out, err = ToJSON(pair{A: shared, B: shared}, p)
	require.NoError(t, err)
	assert.Equal(t, `{"a":{"x":1,"y":2},"b":{"x":1,"y":2}}`, out)

	got, err = FromJSON[pair](out, p)
	require.NoError(t, err)
	assert.NotSame(t, got.A, got.B)
	assert.Equal(t, *got.A, *got.B)
}

func TestWriteCycle(t *testing.T) {
	t.Parallel()

	ctx := newTestContext(t)

	root := &treeNode{Name: "root"}
	root.Children = []*treeNode{{Name: "leaf", Parent: root}}

	out, err := ToJSON(root, minified(ctx))
	require.NoError(t, err)
	assert.Equal(t, `{"$id":0,"name":"root","children":[{"name":"leaf","children":null,"parent":{"$ref":0}}],"parent":null}`, out)

	got, err := FromJSON[*treeNode](out, minified(ctx))
	require.NoError(t, err)
	require.Len(t, got.Children, 1)
	assert.Equal(t, "leaf", got.Children[0].Name)
	assert.Same(t, got, got.Children[0].Parent)

	p := minified(ctx)
	p.DisableSerializedReferences = true

	_, err = ToJSON(root, p)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCycle))
}

func TestWriteSelfContainingCollections(t *testing.T) {
	t.Parallel()

	ctx := newTestContext(t)

	selfMap := map[string]any{"name": "root"}
	selfMap["self"] = selfMap

	selfSlice := []any{1, nil}
	selfSlice[1] = selfSlice

	nested := map[string]any{"list": []any{"x"}}
	nested["list"].([]any)[0] = nested

	tests := []struct {
		name  string
		value any
	}{
		{name: "map holding itself", value: selfMap},
		{name: "slice holding itself", value: selfSlice},
		{name: "map through a slice", value: nested},
		{name: "record holding the map", value: box{Value: selfMap}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := ToJSON(tt.value, minified(ctx))
			assert.ErrorIs(t, err, ErrCycle)

			p := minified(ctx)
			p.DisableSerializedReferences = true

			_, err = ToJSON(tt.value, p)
			assert.ErrorIs(t, err, ErrCycle)
		})
	}

	t.Run("shared without a cycle", func(t *testing.T) {
		t.Parallel()

		shared := map[string]any{"a": 1.0}

		out, err := ToJSON([]any{shared, shared}, minified(ctx))
		require.NoError(t, err)
		assert.Equal(t, `[{"a":1},{"a":1}]`, out)
	})
}

func TestWriteReservedMapKeys(t *testing.T) {
	t.Parallel()

	ctx := newTestContext(t)
	want := map[string]int{"$id": 1, "a b": 2, "": 3}

	out, err := ToJSON(want, minified(ctx))
	require.NoError(t, err)
	assert.Equal(t, `[{"Key":"","Value":3},{"Key":"$id","Value":1},{"Key":"a b","Value":2}]`, out)

	for _, params := range []*Params{
		minified(ctx),
		{Context: ctx},
		{Context: ctx, Minified: true, Simplified: true},
	} {
		out, err := ToJSON(want, params)
		require.NoError(t, err)

		got, err := FromJSON[map[string]int](out, params)
		require.NoError(t, err)
		assert.Equal(t, want, got, out)
	}

	t.Run("untyped slot", func(t *testing.T) {
		t.Parallel()

		value := box{Value: map[string]any{"$type": "x", "n": 1.0}}

		out, err := ToJSON(value, minified(ctx))
		require.NoError(t, err)
		assert.Equal(t, `{"value":{"$type":"map[string]any","$elements":[{"Key":"$type","Value":"x"},{"Key":"n","Value":1}]}}`, out)

		got, err := FromJSON[box](out, minified(ctx))
		require.NoError(t, err)
		assert.Equal(t, value, got)
	})

	t.Run("plain keys stay an object", func(t *testing.T) {
		t.Parallel()

		out, err := ToJSON(map[string]int{"id": 1, "$": 2}, minified(ctx))
		require.NoError(t, err)
		assert.Equal(t, `{"$":2,"id":1}`, out)
	})
}

func TestWriteForbidden(t *testing.T) {
	t.Parallel()

	type holder struct {
		Fn func() `json:"fn"`
	}

	ctx := newTestContext(t, WithForbiddenTypes(reflect.TypeFor[point]()))

	_, err := ToJSON(holder{Fn: func() {}}, minified(ctx))
	assert.ErrorIs(t, err, ErrForbiddenType)

	_, err = ToJSON(pair{A: &point{}}, minified(ctx))
	assert.ErrorIs(t, err, ErrForbiddenType)

	out, err := ToJSON(pair{}, minified(ctx))
	require.NoError(t, err)
	assert.Equal(t, `{"a":null,"b":null}`, out)
}

func TestWriteJSONToExternalWriter(t *testing.T) {
	t.Parallel()

	ctx := newTestContext(t)
	w := NewJSONWriter(0, FormatMinified)

	w.BeginArray()
	require.NoError(t, WriteJSON(w, point{X: 1}, &Params{Context: ctx}))
	require.NoError(t, WriteJSON(w, "two", &Params{Context: ctx}))
	w.EndArray()

	assert.Equal(t, `[{"x":1,"y":0},"two"]`, w.String())
}

func TestToJSONThreadSafety(t *testing.T) {
	t.Parallel()

	ctx := newTestContext(t)
	p := minified(ctx)
	p.RequiresThreadSafety = true

	done := make(chan string, 8)

	for i := range 8 {
		go func() {
			out, err := ToJSON(point{X: i, Y: i}, p)
			if err != nil {
				out = err.Error()
			}

			done <- out
		}()
	}

	seen := map[string]bool{}
	for range 8 {
		seen[<-done] = true
	}

	assert.Len(t, seen, 8)
	assert.True(t, seen[`{"x":3,"y":3}`])
}
