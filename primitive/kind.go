package primitive

import (
	"reflect"
	"strconv"
	"time"
)

//go:generate go tool stringer -type=KindEnum -output=kind_string.go

// KindEnum identifies the scalar families a leaf value can belong to. The
// zero value means "not a leaf".
type KindEnum int

const (
	_ KindEnum = iota

	KindInt
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUint
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindFloat32
	KindFloat64
	KindBool
	KindString
	KindTime
	KindDuration
	KindPrimitiveEnum // named int or string type

	KindTotal = int(iota)
)

type numClass uint8

const (
	classSigned numClass = 1 << iota
	classUnsigned
	classFloat
)

type kindInfo struct {
	class numClass
	bits  int
}

var kinds = [KindTotal]kindInfo{
	KindInt:     {classSigned, strconv.IntSize},
	KindInt8:    {classSigned, 8},
	KindInt16:   {classSigned, 16},
	KindInt32:   {classSigned, 32},
	KindInt64:   {classSigned, 64},
	KindUint:    {classUnsigned, strconv.IntSize},
	KindUint8:   {classUnsigned, 8},
	KindUint16:  {classUnsigned, 16},
	KindUint32:  {classUnsigned, 32},
	KindUint64:  {classUnsigned, 64},
	KindFloat32: {classFloat, 32},
	KindFloat64: {classFloat, 64},
}

func (k KindEnum) info() kindInfo {
	if k <= 0 || int(k) >= KindTotal {
		return kindInfo{}
	}

	return kinds[k]
}

func (k KindEnum) IsNumber() bool   { return k.info().class != 0 }
func (k KindEnum) IsInteger() bool  { return k.info().class&(classSigned|classUnsigned) != 0 }
func (k KindEnum) IsFloat() bool    { return k.info().class == classFloat }
func (k KindEnum) IsSigned() bool   { return k.info().class == classSigned }
func (k KindEnum) IsUnsigned() bool { return k.info().class == classUnsigned }

// Bits returns the storage size of a numeric kind. It panics for other kinds.
func (k KindEnum) Bits() int {
	bits := k.info().bits
	if bits == 0 {
		panic("primitive: no bit size for " + k.String())
	}

	return bits
}

var (
	timeType     = reflect.TypeFor[time.Time]()
	durationType = reflect.TypeFor[time.Duration]()
)

// builtinKinds maps the predeclared types and the time types to their kind.
var builtinKinds = map[reflect.Type]KindEnum{
	reflect.TypeFor[int]():     KindInt,
	reflect.TypeFor[int8]():    KindInt8,
	reflect.TypeFor[int16]():   KindInt16,
	reflect.TypeFor[int32]():   KindInt32,
	reflect.TypeFor[int64]():   KindInt64,
	reflect.TypeFor[uint]():    KindUint,
	reflect.TypeFor[uint8]():   KindUint8,
	reflect.TypeFor[uint16]():  KindUint16,
	reflect.TypeFor[uint32]():  KindUint32,
	reflect.TypeFor[uint64]():  KindUint64,
	reflect.TypeFor[float32](): KindFloat32,
	reflect.TypeFor[float64](): KindFloat64,
	reflect.TypeFor[bool]():    KindBool,
	reflect.TypeFor[string]():  KindString,
	timeType:                   KindTime,
	durationType:               KindDuration,
}

var underlyingKinds = map[reflect.Kind]KindEnum{
	reflect.Int:     KindInt,
	reflect.Int8:    KindInt8,
	reflect.Int16:   KindInt16,
	reflect.Int32:   KindInt32,
	reflect.Int64:   KindInt64,
	reflect.Uint:    KindUint,
	reflect.Uint8:   KindUint8,
	reflect.Uint16:  KindUint16,
	reflect.Uint32:  KindUint32,
	reflect.Uint64:  KindUint64,
	reflect.Uintptr: KindUint64,
	reflect.Float32: KindFloat32,
	reflect.Float64: KindFloat64,
	reflect.Bool:    KindBool,
	reflect.String:  KindString,
}

// FromReflectType returns the kind of a predeclared or time type. Other named
// int and string types are KindPrimitiveEnum; everything else is 0.
func FromReflectType(rtype reflect.Type) KindEnum {
	if rtype == nil {
		return 0
	}

	if k, ok := builtinKinds[rtype]; ok {
		return k
	}

	switch rtype.Kind() {
	case reflect.Int, reflect.String:
		return KindPrimitiveEnum
	default:
		return 0
	}
}

// BaseKind is like FromReflectType, but named numeric, bool and string types
// resolve to the kind of their underlying type instead of KindPrimitiveEnum.
func BaseKind(rtype reflect.Type) KindEnum {
	if rtype == nil {
		return 0
	}

	switch rtype {
	case timeType:
		return KindTime
	case durationType:
		return KindDuration
	}

	return underlyingKinds[rtype.Kind()]
}

// IsLeaf reports whether values of rtype are written as a single JSON scalar
// and never entered by visitation.
func IsLeaf(rtype reflect.Type) bool {
	return BaseKind(rtype) != 0
}
