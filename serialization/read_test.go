package serialization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propbag/property"
)

func TestReadUnknownKey(t *testing.T) {
	t.Parallel()

	ctx := newTestContext(t)

	var got item
	result := TryFromJSON(`{"nme": "crate", "count": 1}`, &got, &Params{Context: ctx})

	assert.True(t, result.DidSucceed())
	require.NoError(t, result.Throw())
	assert.Equal(t, item{Count: 1}, got)

	logs := result.Filter(EventLog)
	require.Len(t, logs, 1)
	assert.Equal(t, CodeUnknownKey, logs[0].Code)
	assert.Equal(t, "nme", logs[0].Path)
	assert.Equal(t, []string{"name"}, logs[0].Suggestions)
}

func TestReadFormerPropertyName(t *testing.T) {
	t.Parallel()

	got, err := FromJSON[account](`{"title": "old"}`, &Params{Context: newTestContext(t)})
	require.NoError(t, err)
	assert.Equal(t, "old", got.Name)
}

func TestReadReadOnly(t *testing.T) {
	t.Parallel()

	ctx := newTestContext(t)

	t.Run("same value", func(t *testing.T) {
		t.Parallel()

		acc := account{ID: 7, Name: "a"}
		result := FromJSONOverride(`{"id": 7, "name": "b"}`, &acc, &Params{Context: ctx})

		require.NoError(t, result.Throw())
		assert.Equal(t, account{ID: 7, Name: "b"}, acc)
	})

	t.Run("different value", func(t *testing.T) {
		t.Parallel()

		acc := account{ID: 7, Name: "a"}
		result := FromJSONOverride(`{"id": 8, "name": "b"}`, &acc, &Params{Context: ctx})

		assert.False(t, result.DidSucceed())
		assert.ErrorIs(t, result.Throw(), property.ErrReadOnly)

		exceptions := result.Filter(EventException)
		require.Len(t, exceptions, 1)
		assert.Equal(t, CodeReadOnly, exceptions[0].Code)
		assert.Equal(t, "id", exceptions[0].Path)
		assert.Equal(t, account{ID: 7, Name: "b"}, acc)
	})
}

func TestReadOverrideKeepsAbsentMembers(t *testing.T) {
	t.Parallel()

	it := item{Name: "crate", Count: 3, Tags: []string{"x"}}
	result := FromJSONOverride(`{"count": 4}`, &it, &Params{Context: newTestContext(t)})

	require.True(t, result.DidSucceed())
	assert.Equal(t, item{Name: "crate", Count: 4, Tags: []string{"x"}}, it)

	result = FromJSONOverride[item](`{}`, nil, nil)
	assert.False(t, result.DidSucceed())
}

func TestReadIncompatibleValues(t *testing.T) {
	t.Parallel()

	ctx := newTestContext(t)

	tests := []struct {
		name string
		json string
		code string
		path string
		want item
	}{
		{name: "null leaf", json: `{"count": null}`, code: CodeIncompatible, path: "count"},
		{name: "bad number", json: `{"count": "many"}`, code: CodeIncompatible, path: "count"},
		{name: "object for list", json: `{"tags": {}}`, code: CodeIncompatible, path: "tags"},
		{name: "bad element", json: `{"name": "n", "tags": ["a", []]}`, code: CodeIncompatible, path: "tags[1]", want: item{Name: "n", Tags: []string{"a", ""}}},
		{name: "fraction into int", json: `{"count": 1.5}`, code: CodeIncompatible, path: "count"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var got item
			result := TryFromJSON(tt.json, &got, &Params{Context: ctx})

			require.True(t, result.DidSucceed(), "warnings do not fail the read")

			warnings := result.Filter(EventWarning)
			require.Len(t, warnings, 1)
			assert.Equal(t, tt.code, warnings[0].Code)
			assert.Equal(t, tt.path, warnings[0].Path)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadNumbers(t *testing.T) {
	t.Parallel()

	type numbers struct {
		I8  int8    `json:"i8"`
		U64 uint64  `json:"u64"`
		F32 float32 `json:"f32"`
		F64 float64 `json:"f64"`
		S   string  `json:"s"`
		B   bool    `json:"b"`
	}

	ctx := newTestContext(t)

	got, err := FromJSON[numbers](`{"i8": -5, "u64": 18446744073709551615, "f32": 0.5, "f64": Infinity, "s": 12, "b": "true"}`, &Params{Context: ctx})
	require.NoError(t, err)
	assert.Equal(t, int8(-5), got.I8)
	assert.Equal(t, uint64(18446744073709551615), got.U64)
	assert.InDelta(t, 0.5, got.F32, 0)
	assert.Greater(t, got.F64, 1e308)
	assert.Equal(t, "12", got.S)
	assert.True(t, got.B)

	var overflow numbers
	result := TryFromJSON(`{"i8": 300}`, &overflow, &Params{Context: ctx})
	assert.Len(t, result.Filter(EventWarning), 1)
	assert.Zero(t, overflow.I8)
}

func TestReadFixedArray(t *testing.T) {
	t.Parallel()

	type grid struct {
		Cells [3]int `json:"cells"`
	}

	var got grid
	result := TryFromJSON(`{"cells": [1, 2]}`, &got, &Params{Context: newTestContext(t)})

	warnings := result.Filter(EventWarning)
	require.Len(t, warnings, 1)
	assert.Equal(t, CodeLengthMismatch, warnings[0].Code)
	assert.Equal(t, [3]int{1, 2, 0}, got.Cells)
}

func TestReadForwardReference(t *testing.T) {
	t.Parallel()

	var got pair
	result := TryFromJSON(`{"a": {"$ref": 3}, "b": {"$id": 3, "x": 1}}`, &got, &Params{Context: newTestContext(t)})

	assert.False(t, result.DidSucceed())
	assert.ErrorIs(t, result.Throw(), ErrForwardReference)
	assert.Nil(t, got.A)
	require.NotNil(t, got.B)
	assert.Equal(t, 1, got.B.X)
}

func TestReadSyntaxError(t *testing.T) {
	t.Parallel()

	_, err := FromJSON[item](`{"name": }`, &Params{Context: newTestContext(t)})
	assert.ErrorIs(t, err, ErrSyntax)
}

func TestReadStrict(t *testing.T) {
	t.Parallel()

	ctx := newTestContext(t)
	doc := `{"animals": [{"$type": "Bird"}, {"$type": "Fish"}]}`

	var got zoo
	result := TryFromJSON(doc, &got, &Params{Context: ctx})
	assert.Len(t, result.Filter(EventException), 2)

	result = TryFromJSON(doc, &got, &Params{Context: ctx, Strict: true})
	assert.Len(t, result.Filter(EventException), 1)
}

func TestReadUntyped(t *testing.T) {
	t.Parallel()

	got, err := FromJSON[box](`{"value": {"a": [1, true, null, "s"], "$id": 4}}`, &Params{Context: newTestContext(t)})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": []any{1.0, true, nil, "s"}}, got.Value)
}

func TestReadReservedMapKey(t *testing.T) {
	t.Parallel()

	ctx := newTestContext(t)

	var got map[string]int
	result := TryFromJSON(`{"a": 1, "$id": 2, "$version": 3}`, &got, &Params{Context: ctx})

	require.NoError(t, result.Throw())
	assert.Equal(t, map[string]int{"a": 1}, got)

	warnings := result.Filter(EventWarning)
	require.Len(t, warnings, 2)

	for i, path := range []string{`["$id"]`, `["$version"]`} {
		assert.Equal(t, CodeReservedKey, warnings[i].Code)
		assert.Equal(t, path, warnings[i].Path)
	}
}

type engine struct {
	Name  string
	Speed int
}

type garage struct {
	D engine            `json:"d"`
	L []engine          `json:"l"`
	P *engine           `json:"p"`
	M map[string]engine `json:"m"`
}

func TestReadConstructorDefaults(t *testing.T) {
	t.Parallel()

	ctx := newTestContext(t)

	bag, err := property.NewRecordBag[engine](
		property.NewProperty("name",
			func(e *engine) string { return e.Name },
			func(e *engine, v string) { e.Name = v }),
		property.NewProperty("speed",
			func(e *engine) int { return e.Speed },
			func(e *engine, v int) { e.Speed = v }),
	)
	require.NoError(t, err)
	require.NoError(t, ctx.Registry().Register(property.WithConstructor(bag, func() engine {
		return engine{Speed: 10}
	})))

	doc := `{"d": {"name": "x"}, "l": [{"name": "y"}], "p": {"name": "z"}, "m": {"k": {"name": "w"}}}`

	tests := []struct {
		name string
		read func(t *testing.T) garage
	}{
		{
			name: "from json",
			read: func(t *testing.T) garage {
				got, err := FromJSON[garage](doc, &Params{Context: ctx})
				require.NoError(t, err)

				return got
			},
		},
		{
			name: "override of a zero value",
			read: func(t *testing.T) garage {
				var got garage
				result := FromJSONOverride(doc, &got, &Params{Context: ctx})
				require.NoError(t, result.Throw())

				return got
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := tt.read(t)

			assert.Equal(t, engine{Name: "x", Speed: 10}, got.D)
			assert.Equal(t, []engine{{Name: "y", Speed: 10}}, got.L)
			require.NotNil(t, got.P)
			assert.Equal(t, engine{Name: "z", Speed: 10}, *got.P)
			assert.Equal(t, map[string]engine{"k": {Name: "w", Speed: 10}}, got.M)
		})
	}

	t.Run("root", func(t *testing.T) {
		t.Parallel()

		got, err := FromJSON[engine](`{"name": "r"}`, &Params{Context: ctx})
		require.NoError(t, err)
		assert.Equal(t, engine{Name: "r", Speed: 10}, got)
	})

	t.Run("explicit value wins", func(t *testing.T) {
		t.Parallel()

		got, err := FromJSON[engine](`{"name": "r", "speed": 3}`, &Params{Context: ctx})
		require.NoError(t, err)
		assert.Equal(t, engine{Name: "r", Speed: 3}, got)
	})
}

func TestReadResultIsolated(t *testing.T) {
	t.Parallel()

	ctx := newTestContext(t)

	var a, b item
	first := TryFromJSON(`{"x": 1}`, &a, &Params{Context: ctx})
	second := TryFromJSON(`{"y": 1, "z": 2}`, &b, &Params{Context: ctx})

	assert.Len(t, first.Events(), 1)
	assert.Len(t, second.Events(), 2)
}
