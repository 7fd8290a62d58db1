package serialization

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeNames(t *testing.T) {
	t.Parallel()

	r := newTypeRegistry()
	require.NoError(t, r.register(reflect.TypeFor[dog](), "Dog", nil))

	tests := []struct {
		typ  reflect.Type
		name string
	}{
		{typ: reflect.TypeFor[int](), name: "int"},
		{typ: reflect.TypeFor[*dog](), name: "*Dog"},
		{typ: reflect.TypeFor[[]*dog](), name: "[]*Dog"},
		{typ: reflect.TypeFor[[2]string](), name: "[2]string"},
		{typ: reflect.TypeFor[map[string][]int](), name: "map[string][]int"},
		{typ: reflect.TypeFor[cat](), name: "propbag/serialization.cat"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, err := r.nameOf(tt.typ)
			require.NoError(t, err)
			assert.Equal(t, tt.name, name)

			back, _, err := r.resolve(name)
			require.NoError(t, err)
			assert.Equal(t, tt.typ, back)
		})
	}

	_, err := r.nameOf(reflect.TypeFor[struct{ A int }]())
	assert.ErrorIs(t, err, ErrUnknownType)

	_, _, err = r.resolve("map[[]int]bool")
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestRegisterType(t *testing.T) {
	t.Parallel()

	ctx := newTestContext(t)

	assert.ErrorIs(t, RegisterType[point](ctx, "Dog"), ErrDuplicateTypeName)
	assert.ErrorIs(t, RegisterType[dog](ctx, "Hound"), ErrDuplicateTypeName)
	require.NoError(t, RegisterType[dog](ctx, "Dog"))

	// an automatic name gives way to an explicit one
	name, err := ctx.types.nameOf(reflect.TypeFor[point]())
	require.NoError(t, err)
	assert.Equal(t, "propbag/serialization.point", name)
	require.NoError(t, RegisterType[point](ctx, "Point"))

	name, err = ctx.types.nameOf(reflect.TypeFor[point]())
	require.NoError(t, err)
	assert.Equal(t, "Point", name)
}

func TestPolymorphicSlots(t *testing.T) {
	t.Parallel()

	ctx := newTestContext(t)
	want := zoo{Animals: []animal{&dog{Name: "rex"}, cat{Lives: 9}, nil}}

	out, err := ToJSON(want, minified(ctx))
	require.NoError(t, err)
	assert.Equal(t, `{"animals":[{"$type":"*Dog","name":"rex"},{"$type":"Cat","lives":9},null]}`, out)

	got, err := FromJSON[zoo](out, minified(ctx))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFormerTypeName(t *testing.T) {
	t.Parallel()

	got, err := FromJSON[zoo](`{"animals": [{"$type": "Kitty", "lives": 3}]}`, &Params{Context: newTestContext(t)})
	require.NoError(t, err)
	assert.Equal(t, []animal{cat{Lives: 3}}, got.Animals)
}

func TestTypeErrors(t *testing.T) {
	t.Parallel()

	ctx := newTestContext(t, WithForbiddenTypes(reflect.TypeFor[point]()))

	tests := []struct {
		name string
		json string
		code string
		err  error
	}{
		{name: "unknown", json: `{"animals": [{"$type": "Bird"}]}`, code: CodeUnknownType, err: ErrUnknownType},
		{name: "not a string", json: `{"animals": [{"$type": 4}]}`, code: CodeUnknownType, err: ErrUnknownType},
		{name: "not assignable", json: `{"animals": [{"$type": "int", "$elements": 1}]}`, code: CodeTypeMismatch, err: ErrTypeMismatch},
		{name: "value receiver missing", json: `{"animals": [{"$type": "Dog"}]}`, code: CodeTypeMismatch, err: ErrTypeMismatch},
		{name: "forbidden", json: `{"animals": [{"$type": "propbag/serialization.point"}]}`, code: CodeForbiddenType, err: ErrForbiddenType},
	}

	// make the automatic point name known
	_, err := ctx.types.nameOf(reflect.TypeFor[point]())
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var got zoo
			result := TryFromJSON(tt.json, &got, &Params{Context: ctx})

			exceptions := result.Filter(EventException)
			require.Len(t, exceptions, 1)
			assert.Equal(t, tt.code, exceptions[0].Code)
			assert.Equal(t, "animals[0]", exceptions[0].Path)
			assert.ErrorIs(t, result.Throw(), tt.err)
			assert.Equal(t, []animal{nil}, got.Animals)
		})
	}
}

func TestUnresolvableSlot(t *testing.T) {
	t.Parallel()

	var got zoo
	result := TryFromJSON(`{"animals": [{"name": "rex"}]}`, &got, &Params{Context: newTestContext(t)})

	warnings := result.Filter(EventWarning)
	require.Len(t, warnings, 1)
	assert.Equal(t, CodeUnresolvableSlot, warnings[0].Code)

	// an existing value supplies the type
	got = zoo{Animals: []animal{&dog{}}}
	result = FromJSONOverride(`{"animals": [{"name": "rex"}]}`, &got, &Params{Context: newTestContext(t)})
	require.True(t, result.DidSucceed())
	assert.Equal(t, []animal{&dog{Name: "rex"}}, got.Animals)
}

func TestAnySlot(t *testing.T) {
	t.Parallel()

	ctx := newTestContext(t)

	tests := []struct {
		name  string
		value any
		out   string
	}{
		{name: "int", value: 3, out: `{"value":{"$type":"int","$elements":3}}`},
		{name: "string", value: "s", out: `{"value":"s"}`},
		{name: "float64", value: 1.5, out: `{"value":1.5}`},
		{name: "slice", value: []int{1, 2}, out: `{"value":{"$type":"[]int","$elements":[1,2]}}`},
		{name: "record", value: cat{Lives: 1}, out: `{"value":{"$type":"Cat","lives":1}}`},
		{name: "pointer to leaf", value: new(int), out: `{"value":{"$type":"*int","$elements":0}}`},
		{name: "nil", value: nil, out: `{"value":null}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out, err := ToJSON(box{Value: tt.value}, minified(ctx))
			require.NoError(t, err)
			assert.Equal(t, tt.out, out)

			got, err := FromJSON[box](out, minified(ctx))
			require.NoError(t, err)
			assert.Equal(t, box{Value: tt.value}, got)
		})
	}
}

func TestSerializedType(t *testing.T) {
	t.Parallel()

	ctx := newTestContext(t)
	p := &Params{Context: ctx, Minified: true, SerializedType: reflect.TypeFor[*dog]()}

	out, err := ToJSON[animal](&dog{Name: "rex"}, p)
	require.NoError(t, err)
	assert.Equal(t, `{"name":"rex"}`, out)

	got, err := FromJSON[animal](out, p)
	require.NoError(t, err)
	assert.Equal(t, &dog{Name: "rex"}, got)

	out, err = ToJSON[animal](&dog{Name: "rex"}, minified(ctx))
	require.NoError(t, err)
	assert.Equal(t, `{"$type":"*Dog","name":"rex"}`, out)

	got, err = FromJSON[animal](out, minified(ctx))
	require.NoError(t, err)
	assert.Equal(t, &dog{Name: "rex"}, got)

	_, err = FromJSON[animal](`{}`, &Params{Context: ctx, SerializedType: reflect.TypeFor[point]()})
	assert.ErrorIs(t, err, ErrTypeMismatch)
}
