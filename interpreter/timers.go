package interpreter

import (
	"fmt"
	"time"

	"github.com/example/pulse/eventloop"
	"github.com/example/pulse/runtime"
)

// installTimers declares the script-facing timer API in the root
// environment: thin wrappers over the injected event loop.
func (interp *Interpreter) installTimers() {
	loop := interp.loop

	interp.declareHostFunc("nextTick", func(args []*runtime.Value) (*runtime.Value, error) {
		task, err := interp.callbackTask("nextTick", args)
		if err != nil {
			return nil, err
		}
		loop.QueueMicrotask(task)
		return runtime.Undefined, nil
	})

	interp.declareHostFunc("setTimeout", func(args []*runtime.Value) (*runtime.Value, error) {
		task, err := interp.callbackTask("setTimeout", args)
		if err != nil {
			return nil, err
		}
		id := loop.SetTimeout(task, delayArg(args))
		return runtime.NewNumber(float64(id)), nil
	})

	interp.declareHostFunc("setInterval", func(args []*runtime.Value) (*runtime.Value, error) {
		task, err := interp.callbackTask("setInterval", args)
		if err != nil {
			return nil, err
		}
		id := loop.SetInterval(task, delayArg(args))
		return runtime.NewNumber(float64(id)), nil
	})

	clear := func(args []*runtime.Value) (*runtime.Value, error) {
		if len(args) > 0 {
			loop.ClearTimer(int64(args[0].ToNumber()))
		}
		return runtime.Undefined, nil
	}
	interp.declareHostFunc("clearTimeout", clear)
	interp.declareHostFunc("clearInterval", clear)
}

func (interp *Interpreter) declareHostFunc(name string, call runtime.HostFunc) {
	fn := &runtime.Function{Name: name, Call: call}
	interp.global.Declare(name, "const", runtime.NewFunction(fn))
}

// callbackTask wraps a script function value as an event loop task. The
// callback runs under the closure environment captured at scheduling time;
// an uncaught throw is reported at the task boundary by the loop.
func (interp *Interpreter) callbackTask(name string, args []*runtime.Value) (eventloop.Task, error) {
	if len(args) == 0 || args[0].Type != runtime.TypeFunction {
		return nil, fmt.Errorf("TypeError: %s callback is not a function", name)
	}
	fn := args[0]
	return func() error {
		_, err := interp.CallFunction(fn, nil)
		return err
	}, nil
}

func delayArg(args []*runtime.Value) time.Duration {
	if len(args) < 2 {
		return 0
	}
	ms := args[1].ToNumber()
	if ms < 0 || ms != ms {
		return 0
	}
	return time.Duration(ms * float64(time.Millisecond))
}
