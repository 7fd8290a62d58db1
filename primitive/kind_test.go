package primitive_test

import (
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"propbag/primitive"
)

func Example() {
	type IntEnum int
	type StringEnum string
	type Empty struct{}

	fmt.Println(primitive.FromReflectType(reflect.TypeOf(int(0))))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf("")))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf(IntEnum(0))))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf(StringEnum(""))))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf(time.Duration(0))))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf(time.Time{})))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf(Empty{})))
	// Output:
	// KindInt
	// KindString
	// KindPrimitiveEnum
	// KindPrimitiveEnum
	// KindDuration
	// KindTime
	// KindEnum(0)
}

func ExampleBaseKind() {
	type Level uint8
	type Name string

	fmt.Println(primitive.BaseKind(reflect.TypeFor[Level]()))
	fmt.Println(primitive.BaseKind(reflect.TypeFor[Name]()))
	fmt.Println(primitive.BaseKind(reflect.TypeFor[uintptr]()))
	fmt.Println(primitive.BaseKind(reflect.TypeFor[[]int]()))
	// Output:
	// KindUint8
	// KindString
	// KindUint64
	// KindEnum(0)
}

func TestIsLeaf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		typ  reflect.Type
		want bool
	}{
		{"int", reflect.TypeFor[int](), true},
		{"named bool", reflect.TypeFor[toggle](), true},
		{"time", reflect.TypeFor[time.Time](), true},
		{"duration", reflect.TypeFor[time.Duration](), true},
		{"struct", reflect.TypeFor[struct{ A int }](), false},
		{"pointer", reflect.TypeFor[*int](), false},
		{"slice", reflect.TypeFor[[]byte](), false},
		{"complex", reflect.TypeFor[complex128](), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, primitive.IsLeaf(tt.typ))
		})
	}
}

type toggle bool

func TestAllowed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		from, to primitive.KindEnum
		allowed  primitive.CategoryEnum
		want     bool
	}{
		{"same kind needs nothing", primitive.KindInt16, primitive.KindInt16, primitive.CategoryNone, true},
		{"enum to itself needs a category", primitive.KindPrimitiveEnum, primitive.KindPrimitiveEnum, primitive.CategoryNone, false},
		{"int8 widens to int", primitive.KindInt8, primitive.KindInt, primitive.CategorySafeNumber, true},
		{"int64 to int is not safe", primitive.KindInt64, primitive.KindInt, primitive.CategorySafeNumber, false},
		{"int64 to int is unsafe", primitive.KindInt64, primitive.KindInt, primitive.CategoryUnsafeNumber, true},
		{"int16 fits float32", primitive.KindInt16, primitive.KindFloat32, primitive.CategorySafeNumber, true},
		{"int32 exceeds float32", primitive.KindInt32, primitive.KindFloat32, primitive.CategorySafeNumber, false},
		{"int32 fits float64", primitive.KindInt32, primitive.KindFloat64, primitive.CategorySafeNumber, true},
		{"uint16 to int", primitive.KindUint16, primitive.KindInt, primitive.CategorySafeNumber, true},
		{"uint32 to int32", primitive.KindUint32, primitive.KindInt32, primitive.CategorySafeNumber, false},
		{"uint32 to int64", primitive.KindUint32, primitive.KindInt64, primitive.CategorySafeNumber, true},
		{"float64 to float32", primitive.KindFloat64, primitive.KindFloat32, primitive.CategorySafeNumber, false},
		{"text to number", primitive.KindString, primitive.KindUint8, primitive.CategoryTextNumber, true},
		{"float to bool", primitive.KindFloat64, primitive.KindBool, primitive.CategoryNumericBool, false},
		{"unix seconds", primitive.KindInt64, primitive.KindTime, primitive.CategoryTimestamp, true},
		{"uint64 nanoseconds", primitive.KindUint64, primitive.KindDuration, primitive.CategoryNanoseconds, false},
		{"float seconds", primitive.KindDuration, primitive.KindFloat32, primitive.CategorySeconds, true},
		{"enum name", primitive.KindString, primitive.KindPrimitiveEnum, primitive.CategoryEnumString, true},
		{"nothing to a struct", 0, primitive.KindString, primitive.CategoryAll, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, primitive.Allowed(tt.from, tt.to, tt.allowed))
		})
	}
}

func TestBits(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 8, primitive.KindUint8.Bits())
	assert.Equal(t, 32, primitive.KindFloat32.Bits())
	assert.Panics(t, func() { primitive.KindString.Bits() })
}
