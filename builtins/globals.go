package builtins

import (
	"math"
	"strconv"
	"strings"

	"github.com/example/pulse/runtime"
)

func registerGlobalFunctions(env *runtime.Environment) {
	declareFunc(env, "parseInt", globalParseInt)
	declareFunc(env, "parseFloat", globalParseFloat)
	declareFunc(env, "isNaN", globalIsNaN)
	declareFunc(env, "isFinite", globalIsFinite)
	declareFunc(env, "String", globalString)
	declareFunc(env, "Number", globalNumber)
	declareFunc(env, "Boolean", globalBoolean)
	declareFunc(env, "len", globalLen)
	declareFunc(env, "keys", globalKeys)
}

func globalParseInt(args []*runtime.Value) (*runtime.Value, error) {
	s := strings.TrimSpace(argAt(args, 0).ToString())
	radix := 10
	if len(args) > 1 && args[1].Type != runtime.TypeUndefined {
		radix = int(args[1].ToNumber())
	}
	if radix == 0 {
		radix = 10
	}
	if radix < 2 || radix > 36 {
		return runtime.NaN, nil
	}
	if radix == 16 || (radix == 10 && (strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X"))) {
		radix = 16
		s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	}

	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	} else {
		s = strings.TrimPrefix(s, "+")
	}

	// longest valid prefix
	end := 0
	for end < len(s) {
		if _, err := strconv.ParseInt(s[:end+1], radix, 64); err != nil {
			break
		}
		end++
	}
	if end == 0 {
		return runtime.NaN, nil
	}
	n, _ := strconv.ParseInt(s[:end], radix, 64)
	if neg {
		n = -n
	}
	return runtime.NewNumber(float64(n)), nil
}

func globalParseFloat(args []*runtime.Value) (*runtime.Value, error) {
	s := strings.TrimSpace(argAt(args, 0).ToString())
	end := 0
	for end < len(s) {
		if _, err := strconv.ParseFloat(s[:end+1], 64); err != nil {
			break
		}
		end++
	}
	if end == 0 {
		return runtime.NaN, nil
	}
	n, _ := strconv.ParseFloat(s[:end], 64)
	return runtime.NewNumber(n), nil
}

func globalIsNaN(args []*runtime.Value) (*runtime.Value, error) {
	return runtime.NewBool(math.IsNaN(argAt(args, 0).ToNumber())), nil
}

func globalIsFinite(args []*runtime.Value) (*runtime.Value, error) {
	n := argAt(args, 0).ToNumber()
	return runtime.NewBool(!math.IsNaN(n) && !math.IsInf(n, 0)), nil
}

func globalString(args []*runtime.Value) (*runtime.Value, error) {
	return runtime.NewString(argAt(args, 0).ToString()), nil
}

func globalNumber(args []*runtime.Value) (*runtime.Value, error) {
	return runtime.NewNumber(argAt(args, 0).ToNumber()), nil
}

func globalBoolean(args []*runtime.Value) (*runtime.Value, error) {
	return runtime.NewBool(argAt(args, 0).ToBoolean()), nil
}

// len mirrors .length for the container types plus object key counts.
func globalLen(args []*runtime.Value) (*runtime.Value, error) {
	v := argAt(args, 0)
	switch v.Type {
	case runtime.TypeString:
		return runtime.NewNumber(float64(len(v.Str))), nil
	case runtime.TypeArray:
		return runtime.NewNumber(float64(v.Array.Len())), nil
	case runtime.TypeObject:
		return runtime.NewNumber(float64(len(v.Object.Keys()))), nil
	}
	return runtime.NaN, nil
}

func globalKeys(args []*runtime.Value) (*runtime.Value, error) {
	v := argAt(args, 0)
	arr := &runtime.Array{}
	if v.Type == runtime.TypeObject {
		for _, k := range v.Object.Keys() {
			arr.Elements = append(arr.Elements, runtime.NewString(k))
		}
	}
	return runtime.NewArray(arr), nil
}
