package primitive

// CategoryEnum is a set of conversion families, combined with |.
type CategoryEnum int

const (
	CategorySafeNumber   CategoryEnum = 1 << iota // number to number, every value representable
	CategoryUnsafeNumber                          // number to number, range checked per value
	CategoryTextNumber                            // number <-> decimal text
	CategoryNumericBool                           // integer 0/1 <-> bool
	CategoryTextualBool                           // yes/no, on/off, true/false <-> bool
	CategoryDatetime                              // RFC 3339 text <-> time.Time
	CategoryTimestamp                             // Unix seconds <-> time.Time
	CategoryDuration                              // "2h45m" <-> time.Duration
	CategoryNanoseconds                           // integer nanoseconds <-> time.Duration
	CategorySeconds                               // float seconds <-> time.Duration
	CategoryEnumString                            // name <-> enum value, through the enum's String method

	CategoryAll  = (1 << iota) - 1
	CategoryNone = 0
)

// Allowed reports whether converting a value of kind from into kind to is
// permitted by any of the allowed categories. Identical kinds always are,
// except enums, which need CategoryEnumString.
func Allowed(from, to KindEnum, allowed CategoryEnum) bool {
	if from == to && from != 0 && from != KindPrimitiveEnum {
		return true
	}

	for c := CategoryEnum(1); c&CategoryAll != 0; c <<= 1 {
		if allowed&c != 0 && c.admits(from, to) {
			return true
		}
	}

	return false
}

// admits reports whether the single category c covers from -> to.
func (c CategoryEnum) admits(from, to KindEnum) bool {
	switch c {
	case CategorySafeNumber:
		return lossless(from, to)
	case CategoryUnsafeNumber:
		return from.IsNumber() && to.IsNumber() && !lossless(from, to)
	case CategoryTextNumber:
		return either(from, to, KindString, KindEnum.IsNumber)
	case CategoryNumericBool:
		return either(from, to, KindBool, KindEnum.IsInteger)
	case CategoryTextualBool:
		return pairOf(from, to, KindString, KindBool)
	case CategoryDatetime:
		return pairOf(from, to, KindString, KindTime)
	case CategoryTimestamp:
		return either(from, to, KindTime, KindEnum.IsInteger)
	case CategoryDuration:
		return pairOf(from, to, KindString, KindDuration)
	case CategoryNanoseconds:
		return either(from, to, KindDuration, func(k KindEnum) bool { return k.IsInteger() && k != KindUint64 })
	case CategorySeconds:
		return either(from, to, KindDuration, KindEnum.IsFloat)
	case CategoryEnumString:
		return to == KindPrimitiveEnum && (from == KindString || from == KindPrimitiveEnum) ||
			from == KindPrimitiveEnum && to == KindString
	}

	return false
}

func pairOf(from, to, a, b KindEnum) bool {
	return from == a && to == b || from == b && to == a
}

func either(from, to, k KindEnum, other func(KindEnum) bool) bool {
	return from == k && other(to) || to == k && other(from)
}

// lossless reports whether every value of kind from is exactly representable
// in kind to. int and uint count as 64 bits wide on the source side and 32 on
// the target side, so the answer holds on every platform.
func lossless(from, to KindEnum) bool {
	if !from.IsNumber() || !to.IsNumber() {
		return false
	}

	fromBits, toBits := width(from, 64), width(to, 32)

	switch {
	case from.IsFloat():
		return to.IsFloat() && toBits >= fromBits
	case to.IsFloat():
		mantissa := 24
		if to == KindFloat64 {
			mantissa = 53
		}

		return fromBits <= mantissa
	case from.IsSigned():
		return to.IsSigned() && toBits >= fromBits
	default:
		return to.IsUnsigned() && toBits >= fromBits || to.IsSigned() && toBits > fromBits
	}
}

func width(k KindEnum, platform int) int {
	if k == KindInt || k == KindUint {
		return platform
	}

	return k.Bits()
}
