package interpreter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/example/pulse/ast"
	"github.com/example/pulse/runtime"
)

// observerDepthLimit bounds synchronous re-entrant dispatch: a handler
// that keeps mutating its own observed path hits a RangeError instead of
// recursing forever.
const observerDepthLimit = 64

func (interp *Interpreter) execObserve(s *ast.ObserveStatement, env *runtime.Environment) (*runtime.Value, signal) {
	handler, sig := interp.evalExpression(s.Handler, env)
	if sig.typ != sigNone {
		return nil, sig
	}
	if handler.Type != runtime.TypeFunction {
		return nil, signal{typ: sigThrow, value: makeErrorObject("TypeError", "observe handler is not a function")}
	}

	path, ok := observePath(s.Target)
	if !ok {
		return nil, signal{typ: sigThrow, value: makeErrorObject("TypeError", "observe target is not an identifier or property path")}
	}

	interp.observers.Register(path, &runtime.ObserverEntry{Handler: handler})
	return nil, signal{}
}

func (interp *Interpreter) execMultiObserve(s *ast.MultiObserveStatement, env *runtime.Environment) (*runtime.Value, signal) {
	handler, sig := interp.evalExpression(s.Handler, env)
	if sig.typ != sigNone {
		return nil, sig
	}
	if handler.Type != runtime.TypeFunction {
		return nil, signal{typ: sigThrow, value: makeErrorObject("TypeError", "observe handler is not a function")}
	}

	names := make([]string, len(s.Targets))
	for i, t := range s.Targets {
		names[i] = t.Value
	}
	entry := &runtime.ObserverEntry{Handler: handler, Names: names}
	for _, name := range names {
		interp.observers.Register(name, entry)
	}
	return nil, signal{}
}

// execWhen runs a first-match-wins chain: conditions are evaluated against
// current values, the first true clause's block runs, and a trailing
// otherwise runs only when no clause matched.
func (interp *Interpreter) execWhen(s *ast.WhenStatement, env *runtime.Environment) (*runtime.Value, signal) {
	for _, clause := range s.Clauses {
		cond, sig := interp.evalExpression(clause.Condition, env)
		if sig.typ != sigNone {
			return nil, sig
		}
		if cond.ToBoolean() {
			return interp.execBlock(clause.Body, env)
		}
	}
	if s.Otherwise != nil {
		return interp.execBlock(s.Otherwise, env)
	}
	return nil, signal{}
}

// observePath renders an assignment target as the syntactic path text
// observers are keyed by: an identifier ("count") or a non-computed member
// chain ("obj.x"). Computed members have no stable path.
func observePath(expr ast.Expression) (string, bool) {
	switch e := expr.(type) {
	case *ast.Identifier:
		return e.Value, true
	case *ast.MemberExpression:
		if e.Computed {
			return "", false
		}
		prop, ok := e.Property.(*ast.Identifier)
		if !ok {
			return "", false
		}
		base, ok := observePath(e.Object)
		if !ok {
			return "", false
		}
		return base + "." + prop.Value, true
	}
	return "", false
}

// store is the single write path every assignment routes through: it
// writes first, then fires the handlers registered for the target's exact
// path when the stored value differs from the prior one.
func (interp *Interpreter) store(target ast.Expression, val *runtime.Value, env *runtime.Environment) signal {
	path, hasPath := observePath(target)
	watched := hasPath && interp.observers.Observed(path)

	old := runtime.Undefined
	if watched {
		if prev, sig := interp.evalExpression(target, env); sig.typ == sigNone && prev != nil {
			old = prev
		}
	}

	switch e := target.(type) {
	case *ast.Identifier:
		if err := env.Set(e.Value, val); err != nil {
			if strings.HasPrefix(err.Error(), "AssignmentError") {
				return signal{typ: sigThrow, value: errorFromGoError(err)}
			}
			// undeclared: bind in the nearest function scope
			env.GetFunctionScope().SetInCurrentScope(e.Value, val)
		}
	case *ast.MemberExpression:
		if sig := interp.storeMember(e, val, env); sig.typ != sigNone {
			return sig
		}
	default:
		return signal{typ: sigThrow, value: makeErrorObject("TypeError", "invalid assignment target")}
	}

	if watched && !runtime.StrictEquals(old, val) {
		return interp.notifyObservers(path, old, val)
	}
	return signal{}
}

func (interp *Interpreter) storeMember(e *ast.MemberExpression, val *runtime.Value, env *runtime.Environment) signal {
	obj, sig := interp.evalExpression(e.Object, env)
	if sig.typ != sigNone {
		return sig
	}
	key, ksig := interp.memberKey(e, env)
	if ksig.typ != sigNone {
		return ksig
	}

	switch obj.Type {
	case runtime.TypeObject:
		obj.Object.Set(key, val)
	case runtime.TypeArray:
		idx, err := strconv.Atoi(key)
		if err != nil {
			return signal{typ: sigThrow, value: makeErrorObject("TypeError", fmt.Sprintf("invalid array index '%s'", key))}
		}
		obj.Array.Set(idx, val)
	case runtime.TypeHost:
		return signal{typ: sigThrow, value: makeErrorObject("TypeError", fmt.Sprintf("cannot assign to property '%s' of host object %s", key, obj.Host.Name))}
	case runtime.TypeUndefined, runtime.TypeNull:
		return signal{typ: sigThrow, value: makeErrorObject("TypeError", fmt.Sprintf("Cannot set properties of %s (setting '%s')", obj.ToString(), key))}
	default:
		return signal{typ: sigThrow, value: makeErrorObject("TypeError", fmt.Sprintf("cannot set property '%s' on a %s", key, obj.Type.String()))}
	}
	return signal{}
}

// notifyObservers fires every handler registered for path, in registration
// order, synchronously. A throw inside a handler propagates out of the
// triggering assignment.
func (interp *Interpreter) notifyObservers(path string, old, newVal *runtime.Value) signal {
	interp.obsDepth++
	defer func() { interp.obsDepth-- }()
	if interp.obsDepth > observerDepthLimit {
		return signal{typ: sigThrow, value: makeErrorObject("RangeError", "observer recursion limit exceeded")}
	}

	for _, entry := range interp.observers.Lookup(path) {
		var args []*runtime.Value
		if entry.Names != nil {
			args = []*runtime.Value{changesObject(path, old, newVal)}
		} else {
			args = []*runtime.Value{old, newVal}
		}
		if _, err := entry.Handler.Fn.Call(args); err != nil {
			return signal{typ: sigThrow, value: errorFromGoError(err)}
		}
	}
	return signal{}
}

// changesObject is what multi-variable handlers receive: one entry keyed
// by the variable that changed in this store.
func changesObject(name string, old, newVal *runtime.Value) *runtime.Value {
	change := runtime.NewPlainObject()
	change.Set("old", old)
	change.Set("new", newVal)
	changes := runtime.NewPlainObject()
	changes.Set(name, runtime.NewObject(change))
	return runtime.NewObject(changes)
}
