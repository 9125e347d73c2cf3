package runtime

import (
	"math"
	"strconv"
	"strings"
)

// ToNumber converts a value to a number for arithmetic.
func (v *Value) ToNumber() float64 {
	switch v.Type {
	case TypeUndefined:
		return math.NaN()
	case TypeNull:
		return 0
	case TypeBoolean:
		if v.Bool {
			return 1
		}
		return 0
	case TypeNumber:
		return v.Number
	case TypeString:
		s := strings.TrimSpace(v.Str)
		if s == "" {
			return 0
		}
		if s == "Infinity" || s == "+Infinity" {
			return math.Inf(1)
		}
		if s == "-Infinity" {
			return math.Inf(-1)
		}
		if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
			n, err := strconv.ParseUint(s[2:], 16, 64)
			if err != nil {
				return math.NaN()
			}
			return float64(n)
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN()
		}
		return n
	case TypeArray:
		if len(v.Array.Elements) == 0 {
			return 0
		}
		if len(v.Array.Elements) == 1 {
			return v.Array.Get(0).ToNumber()
		}
		return math.NaN()
	case TypeObject, TypeFunction, TypeHost:
		return math.NaN()
	default:
		return math.NaN()
	}
}

// StrictEquals implements === comparison: same type, same value, no
// coercion. Objects, arrays, functions, and host objects compare by
// identity.
func StrictEquals(a, b *Value) bool {
	if a.Type != b.Type {
		return false
	}
	switch a.Type {
	case TypeUndefined, TypeNull:
		return true
	case TypeBoolean:
		return a.Bool == b.Bool
	case TypeNumber:
		if math.IsNaN(a.Number) || math.IsNaN(b.Number) {
			return false
		}
		return a.Number == b.Number
	case TypeString:
		return a.Str == b.Str
	case TypeObject:
		return a.Object == b.Object
	case TypeArray:
		return a.Array == b.Array
	case TypeFunction:
		return a.Fn == b.Fn
	case TypeHost:
		return a.Host == b.Host
	default:
		return false
	}
}

// AbstractEquals implements == comparison with coercion: null == undefined,
// numbers and strings compare numerically, booleans convert to numbers.
func AbstractEquals(a, b *Value) bool {
	if a.Type == b.Type {
		return StrictEquals(a, b)
	}
	if (a.Type == TypeNull && b.Type == TypeUndefined) ||
		(a.Type == TypeUndefined && b.Type == TypeNull) {
		return true
	}
	if a.Type == TypeNumber && b.Type == TypeString {
		return AbstractEquals(a, NewNumber(b.ToNumber()))
	}
	if a.Type == TypeString && b.Type == TypeNumber {
		return AbstractEquals(NewNumber(a.ToNumber()), b)
	}
	if a.Type == TypeBoolean {
		return AbstractEquals(NewNumber(a.ToNumber()), b)
	}
	if b.Type == TypeBoolean {
		return AbstractEquals(a, NewNumber(b.ToNumber()))
	}
	return false
}
