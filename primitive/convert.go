package primitive

import (
	"encoding"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var (
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
	textMarshalerType   = reflect.TypeFor[encoding.TextMarshaler]()
	validatorType       = reflect.TypeFor[interface{ IsValid() bool }]()
)

// Convert converts v into a value of type to, permitting only the conversions
// enabled by allowed. The second result is false when the conversion is not
// permitted, the value does not fit into the target type, or the text does not
// parse.
func Convert(v reflect.Value, to reflect.Type, allowed CategoryEnum) (reflect.Value, bool) {
	if !v.IsValid() || to == nil {
		return reflect.Value{}, false
	}

	from := v.Type()
	if from == to {
		return v, true
	}

	if from.AssignableTo(to) {
		out := reflect.New(to).Elem()
		out.Set(v)

		return out, true
	}

	if !allowedPair(from, to, allowed) {
		return reflect.Value{}, false
	}

	fromBase, toBase := BaseKind(from), BaseKind(to)

	switch {
	case toBase == KindString:
		text, ok := FormatLeaf(v)
		if !ok {
			return reflect.Value{}, false
		}

		out := reflect.New(to).Elem()
		out.SetString(text)

		return validated(out)

	case fromBase == KindString:
		return ConvertString(v.String(), to)

	case fromBase == KindTime:
		unix := v.Interface().(time.Time).Unix()
		return convertNumber(reflect.ValueOf(unix), to)

	case toBase == KindTime:
		secs, ok := convertNumber(v, reflect.TypeFor[int64]())
		if !ok {
			return reflect.Value{}, false
		}

		return reflect.ValueOf(time.Unix(secs.Int(), 0).UTC()), true

	case fromBase == KindDuration:
		d := time.Duration(v.Int())
		if toBase.IsFloat() {
			return convertNumber(reflect.ValueOf(d.Seconds()), to)
		}

		return convertNumber(reflect.ValueOf(int64(d)), to)

	case toBase == KindDuration:
		out := reflect.New(to).Elem()
		if fromBase.IsFloat() {
			out.SetInt(int64(v.Float() * float64(time.Second)))
			return out, true
		}

		ns, ok := convertNumber(v, reflect.TypeFor[int64]())
		if !ok {
			return reflect.Value{}, false
		}

		out.SetInt(ns.Int())

		return out, true

	case toBase == KindBool:
		out := reflect.New(to).Elem()

		switch {
		case fromBase.IsSigned():
			out.SetBool(v.Int() != 0)
		case fromBase.IsUnsigned():
			out.SetBool(v.Uint() != 0)
		default:
			return reflect.Value{}, false
		}

		return out, true

	case fromBase == KindBool:
		n := int64(0)
		if v.Bool() {
			n = 1
		}

		return convertNumber(reflect.ValueOf(n), to)

	case fromBase.IsNumber() && toBase.IsNumber():
		out, ok := convertNumber(v, to)
		if !ok {
			return reflect.Value{}, false
		}

		return validated(out)
	}

	return reflect.Value{}, false
}

// allowedPair checks the conversion table, falling back to the underlying
// kinds for enum-like named types.
func allowedPair(from, to reflect.Type, allowed CategoryEnum) bool {
	fromKind, toKind := kindOf(from), kindOf(to)
	if fromKind == 0 || toKind == 0 {
		return false
	}

	if Allowed(fromKind, toKind, allowed) {
		return true
	}

	if fromKind != KindPrimitiveEnum && toKind != KindPrimitiveEnum {
		return false
	}

	return Allowed(BaseKind(from), BaseKind(to), allowed)
}

func kindOf(t reflect.Type) KindEnum {
	if k := FromReflectType(t); k != 0 {
		return k
	}

	return BaseKind(t)
}

func convertNumber(v reflect.Value, to reflect.Type) (reflect.Value, bool) {
	out := reflect.New(to).Elem()
	fromBase := BaseKind(v.Type())
	toBase := BaseKind(to)

	switch {
	case toBase.IsSigned() || toBase == KindDuration:
		var n int64

		switch {
		case fromBase.IsSigned() || fromBase == KindDuration:
			n = v.Int()
		case fromBase.IsUnsigned():
			u := v.Uint()
			if u > math.MaxInt64 {
				return reflect.Value{}, false
			}

			n = int64(u)
		case fromBase.IsFloat():
			f := v.Float()
			if !(f >= math.MinInt64 && f < math.MaxInt64) {
				return reflect.Value{}, false
			}

			n = int64(f)
		default:
			return reflect.Value{}, false
		}

		if out.OverflowInt(n) {
			return reflect.Value{}, false
		}

		out.SetInt(n)

	case toBase.IsUnsigned():
		var n uint64

		switch {
		case fromBase.IsSigned():
			i := v.Int()
			if i < 0 {
				return reflect.Value{}, false
			}

			n = uint64(i)
		case fromBase.IsUnsigned():
			n = v.Uint()
		case fromBase.IsFloat():
			f := v.Float()
			if !(f >= 0 && f < math.MaxUint64) {
				return reflect.Value{}, false
			}

			n = uint64(f)
		default:
			return reflect.Value{}, false
		}

		if out.OverflowUint(n) {
			return reflect.Value{}, false
		}

		out.SetUint(n)

	case toBase.IsFloat():
		var f float64

		switch {
		case fromBase.IsSigned():
			f = float64(v.Int())
		case fromBase.IsUnsigned():
			f = float64(v.Uint())
		case fromBase.IsFloat():
			f = v.Float()
		default:
			return reflect.Value{}, false
		}

		if !math.IsInf(f, 0) && !math.IsNaN(f) && out.OverflowFloat(f) {
			return reflect.Value{}, false
		}

		out.SetFloat(f)

	default:
		return reflect.Value{}, false
	}

	return out, true
}

// ConvertString parses invariant text into a value of type to. Numbers accept
// NaN, Infinity and -Infinity; booleans accept yes/no/on/off/1/0 in any case;
// time.Time uses RFC3339Nano and time.Duration the Go duration syntax (or
// integer nanoseconds). Types implementing encoding.TextUnmarshaler decode
// through it.
func ConvertString(text string, to reflect.Type) (reflect.Value, bool) {
	if to == nil {
		return reflect.Value{}, false
	}

	out := reflect.New(to).Elem()

	if to.Kind() != reflect.String && reflect.PointerTo(to).Implements(textUnmarshalerType) && BaseKind(to) != KindDuration {
		if err := out.Addr().Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(text)); err != nil {
			return reflect.Value{}, false
		}

		return validated(out)
	}

	kind := BaseKind(to)

	switch {
	case kind == KindString:
		out.SetString(text)

	case kind == KindBool:
		b, ok := ParseBool(text)
		if !ok {
			return reflect.Value{}, false
		}

		out.SetBool(b)

	case kind == KindDuration:
		d, err := time.ParseDuration(text)
		if err != nil {
			n, perr := strconv.ParseInt(text, 10, 64)
			if perr != nil {
				return reflect.Value{}, false
			}

			d = time.Duration(n)
		}

		out.SetInt(int64(d))

	case kind.IsSigned():
		n, err := strconv.ParseInt(text, 10, kind.Bits())
		if err != nil {
			f, ok := ParseFloat(text)
			if !ok || f != math.Trunc(f) {
				return reflect.Value{}, false
			}

			return convertNumber(reflect.ValueOf(f), to)
		}

		out.SetInt(n)

	case kind.IsUnsigned():
		n, err := strconv.ParseUint(text, 10, kind.Bits())
		if err != nil {
			f, ok := ParseFloat(text)
			if !ok || f != math.Trunc(f) {
				return reflect.Value{}, false
			}

			return convertNumber(reflect.ValueOf(f), to)
		}

		out.SetUint(n)

	case kind.IsFloat():
		f, ok := ParseFloat(text)
		if !ok {
			return reflect.Value{}, false
		}

		if !math.IsInf(f, 0) && !math.IsNaN(f) && out.OverflowFloat(f) {
			return reflect.Value{}, false
		}

		out.SetFloat(f)

	default:
		return reflect.Value{}, false
	}

	return validated(out)
}

// ParseBool accepts true/false, yes/no, on/off and 1/0, case-insensitively.
func ParseBool(text string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "true", "yes", "on", "1":
		return true, true
	case "false", "no", "off", "0":
		return false, true
	}

	return false, false
}

// ParseFloat parses a float in invariant notation, including the NaN,
// Infinity and -Infinity literals.
func ParseFloat(text string) (float64, bool) {
	switch text {
	case "NaN":
		return math.NaN(), true
	case "Infinity", "+Infinity":
		return math.Inf(1), true
	case "-Infinity":
		return math.Inf(-1), true
	}

	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, false
	}

	return f, true
}

// FormatFloat writes f the way JSON numbers are written: shortest
// round-tripping representation, exponent form only for very small or very
// large magnitudes. Non-finite values become NaN, Infinity or -Infinity.
func FormatFloat(f float64, bits int) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}

	format := byte('f')
	if abs := math.Abs(f); abs != 0 {
		if bits == 64 && (abs < 1e-6 || abs >= 1e21) ||
			bits == 32 && (float32(abs) < 1e-6 || float32(abs) >= 1e21) {
			format = 'e'
		}
	}

	return strconv.FormatFloat(f, format, -1, bits)
}

// FormatLeaf returns the invariant text of a leaf value.
func FormatLeaf(v reflect.Value) (string, bool) {
	if !v.IsValid() {
		return "", false
	}

	kind := BaseKind(v.Type())

	switch {
	case kind == KindTime:
		return v.Interface().(time.Time).Format(time.RFC3339Nano), true
	case kind == KindDuration:
		return time.Duration(v.Int()).String(), true
	case kind == KindString:
		return v.String(), true
	case kind == KindBool:
		return strconv.FormatBool(v.Bool()), true
	case kind.IsSigned():
		return strconv.FormatInt(v.Int(), 10), true
	case kind.IsUnsigned():
		return strconv.FormatUint(v.Uint(), 10), true
	case kind.IsFloat():
		return FormatFloat(v.Float(), kind.Bits()), true
	}

	if v.Type().Implements(textMarshalerType) && v.CanInterface() {
		text, err := v.Interface().(encoding.TextMarshaler).MarshalText()
		if err != nil {
			return "", false
		}

		return string(text), true
	}

	return "", false
}

// validated rejects enum values whose type reports them as invalid.
func validated(v reflect.Value) (reflect.Value, bool) {
	if v.Type().Implements(validatorType) && v.CanInterface() {
		if !v.Interface().(interface{ IsValid() bool }).IsValid() {
			return reflect.Value{}, false
		}
	}

	return v, true
}
