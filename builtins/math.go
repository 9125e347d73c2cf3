package builtins

import (
	"math"
	"math/rand"

	"github.com/example/pulse/runtime"
)

func createMathObject() *runtime.HostObject {
	m := runtime.NewHostObject("math")

	m.Props["PI"] = runtime.NewNumber(math.Pi)
	m.Props["E"] = runtime.NewNumber(math.E)
	m.Props["SQRT2"] = runtime.NewNumber(math.Sqrt2)

	setMethod(m, "abs", mathUnary(math.Abs))
	setMethod(m, "ceil", mathUnary(math.Ceil))
	setMethod(m, "floor", mathUnary(math.Floor))
	setMethod(m, "round", mathUnary(math.Round))
	setMethod(m, "trunc", mathUnary(math.Trunc))
	setMethod(m, "sqrt", mathUnary(math.Sqrt))
	setMethod(m, "log", mathUnary(math.Log))
	setMethod(m, "exp", mathUnary(math.Exp))
	setMethod(m, "sin", mathUnary(math.Sin))
	setMethod(m, "cos", mathUnary(math.Cos))
	setMethod(m, "tan", mathUnary(math.Tan))
	setMethod(m, "pow", mathPow)
	setMethod(m, "min", mathMin)
	setMethod(m, "max", mathMax)
	setMethod(m, "random", mathRandom)

	return m
}

func mathUnary(fn func(float64) float64) runtime.HostFunc {
	return func(args []*runtime.Value) (*runtime.Value, error) {
		return runtime.NewNumber(fn(argAt(args, 0).ToNumber())), nil
	}
}

func mathPow(args []*runtime.Value) (*runtime.Value, error) {
	return runtime.NewNumber(math.Pow(argAt(args, 0).ToNumber(), argAt(args, 1).ToNumber())), nil
}

func mathMin(args []*runtime.Value) (*runtime.Value, error) {
	if len(args) == 0 {
		return runtime.NewNumber(math.Inf(1)), nil
	}
	min := args[0].ToNumber()
	for _, a := range args[1:] {
		n := a.ToNumber()
		if math.IsNaN(n) {
			return runtime.NaN, nil
		}
		if n < min {
			min = n
		}
	}
	return runtime.NewNumber(min), nil
}

func mathMax(args []*runtime.Value) (*runtime.Value, error) {
	if len(args) == 0 {
		return runtime.NewNumber(math.Inf(-1)), nil
	}
	max := args[0].ToNumber()
	for _, a := range args[1:] {
		n := a.ToNumber()
		if math.IsNaN(n) {
			return runtime.NaN, nil
		}
		if n > max {
			max = n
		}
	}
	return runtime.NewNumber(max), nil
}

func mathRandom(args []*runtime.Value) (*runtime.Value, error) {
	return runtime.NewNumber(rand.Float64()), nil
}
