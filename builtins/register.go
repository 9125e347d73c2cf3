// Package builtins ships the host objects every Pulse environment gets:
// console, math, and a small set of global functions. Everything else the
// language touches is plain script values.
package builtins

import (
	"github.com/example/pulse/runtime"
)

// RegisterAll installs the builtin host objects and global functions into
// env, normally the interpreter's root environment.
func RegisterAll(env *runtime.Environment) {
	env.Declare("console", "const", runtime.NewHost(createConsoleObject()))
	env.Declare("math", "const", runtime.NewHost(createMathObject()))
	registerGlobalFunctions(env)
}

func setMethod(host *runtime.HostObject, name string, fn runtime.HostFunc) {
	host.Props[name] = runtime.NewFunction(&runtime.Function{Name: name, Call: fn})
}

func declareFunc(env *runtime.Environment, name string, fn runtime.HostFunc) {
	env.Declare(name, "const", runtime.NewFunction(&runtime.Function{Name: name, Call: fn}))
}

func argAt(args []*runtime.Value, i int) *runtime.Value {
	if i < len(args) && args[i] != nil {
		return args[i]
	}
	return runtime.Undefined
}
