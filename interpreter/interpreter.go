package interpreter

import (
	"fmt"
	"strings"

	"github.com/example/pulse/ast"
	"github.com/example/pulse/eventloop"
	"github.com/example/pulse/parser"
	"github.com/example/pulse/runtime"
)

// Signal types for control flow
type signalType int

const (
	sigNone signalType = iota
	sigReturn
	sigBreak
	sigContinue
	sigThrow
)

type signal struct {
	typ   signalType
	value *runtime.Value
}

// ScriptError wraps a thrown script value as a Go error. It crosses the
// host boundary whenever a throw escapes a function body or the whole
// program, and is unwrapped back into a throw signal at call sites.
type ScriptError struct {
	Value *runtime.Value
}

func (e *ScriptError) Error() string {
	if e.Value != nil {
		return e.Value.ToString()
	}
	return "undefined"
}

// makeErrorObject creates a throwable error value: a plain object with
// name and message keys, the shape script-level catch clauses inspect.
func makeErrorObject(name string, message string) *runtime.Value {
	obj := runtime.NewPlainObject()
	obj.Set("name", runtime.NewString(name))
	obj.Set("message", runtime.NewString(message))
	return runtime.NewObject(obj)
}

// errorFromGoError converts a Go error (from environment.Get/Set or a host
// function) into a throwable error value. It parses the error type prefix
// (e.g. "ReferenceError: ...") so the taxonomy survives the round trip.
func errorFromGoError(goErr error) *runtime.Value {
	if se, ok := goErr.(*ScriptError); ok {
		return se.Value
	}
	msg := goErr.Error()
	errorTypes := []string{"TypeError", "ReferenceError", "SyntaxError", "RangeError", "AssignmentError"}
	for _, et := range errorTypes {
		prefix := et + ": "
		if strings.HasPrefix(msg, prefix) {
			return makeErrorObject(et, strings.TrimPrefix(msg, prefix))
		}
	}
	return makeErrorObject("Error", msg)
}

// ModuleLoader resolves and evaluates imported modules. Load receives the
// canonical path produced by Resolve and owns caching, so a canonical path
// is evaluated at most once.
type ModuleLoader interface {
	Resolve(specifier, fromPath string) (string, error)
	Load(canonicalPath string) (map[string]*runtime.Value, error)
}

// Interpreter evaluates an AST by tree-walking. It owns the root
// environment and the observer registry; the event loop and module loader
// are injected, never ambient.
type Interpreter struct {
	global     *runtime.Environment
	observers  *runtime.ObserverRegistry
	loader     ModuleLoader
	loop       *eventloop.Loop
	obsDepth   int
	scriptPath string
	exports    map[string]*runtime.Value // non-nil while a module body runs
}

type Option func(*Interpreter)

// WithLoader installs a module loader for import/export statements.
func WithLoader(l ModuleLoader) Option {
	return func(interp *Interpreter) { interp.loader = l }
}

// WithGlobals declares extra host values in the root environment.
func WithGlobals(globals map[string]*runtime.Value) Option {
	return func(interp *Interpreter) {
		for name, val := range globals {
			interp.global.Declare(name, "const", val)
		}
	}
}

// WithLoop attaches an event loop and installs the script-facing timer API
// (setTimeout, setInterval, clearTimeout, clearInterval, nextTick).
func WithLoop(loop *eventloop.Loop) Option {
	return func(interp *Interpreter) { interp.loop = loop }
}

func New(opts ...Option) *Interpreter {
	interp := &Interpreter{
		global:    runtime.NewEnvironment(nil, false),
		observers: runtime.NewObserverRegistry(),
	}
	for _, opt := range opts {
		opt(interp)
	}
	if interp.loop != nil {
		interp.installTimers()
	}
	return interp
}

// GlobalEnv returns the interpreter's root environment for builtin
// registration.
func (interp *Interpreter) GlobalEnv() *runtime.Environment {
	return interp.global
}

// Eval parses and evaluates a source string in the root environment.
// An uncaught throw comes back as a *ScriptError.
func (interp *Interpreter) Eval(source string) (*runtime.Value, error) {
	return interp.run(source, interp.global)
}

// EvalScript evaluates a source string read from path. The path anchors
// relative import specifiers.
func (interp *Interpreter) EvalScript(source, path string) (*runtime.Value, error) {
	prev := interp.scriptPath
	interp.scriptPath = path
	val, err := interp.run(source, interp.global)
	interp.scriptPath = prev
	return val, err
}

// EvalModule evaluates a module body and returns its exports map. Called
// by the module loader; the module gets its own top-level environment so
// its bindings stay private while closures over the root still resolve.
func (interp *Interpreter) EvalModule(source, path string) (map[string]*runtime.Value, error) {
	prevExports := interp.exports
	prevPath := interp.scriptPath
	interp.exports = make(map[string]*runtime.Value)
	interp.scriptPath = path

	env := runtime.NewEnvironment(interp.global, false)
	_, err := interp.run(source, env)

	exports := interp.exports
	interp.exports = prevExports
	interp.scriptPath = prevPath
	if err != nil {
		return nil, err
	}
	return exports, nil
}

func (interp *Interpreter) run(source string, env *runtime.Environment) (*runtime.Value, error) {
	program, err := parser.Parse(source)
	if err != nil {
		return nil, err
	}

	interp.hoist(program.Statements, env)

	var result *runtime.Value
	for _, stmt := range program.Statements {
		val, sig := interp.execStatement(stmt, env)
		if sig.typ == sigThrow {
			return nil, &ScriptError{Value: sig.value}
		}
		if sig.typ == sigReturn {
			return sig.value, nil
		}
		if val != nil {
			result = val
		}
	}

	if result == nil {
		return runtime.Undefined, nil
	}
	return result, nil
}

// CallFunction invokes a function value with already-evaluated arguments.
// Used by the event loop bridge and by host builtins taking callbacks.
func (interp *Interpreter) CallFunction(fn *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	if fn == nil || fn.Type != runtime.TypeFunction || fn.Fn == nil || fn.Fn.Call == nil {
		return nil, fmt.Errorf("TypeError: value is not a function")
	}
	result, err := fn.Fn.Call(args)
	if err != nil {
		return nil, err
	}
	if result == nil {
		result = runtime.Undefined
	}
	return result, nil
}

// execStatement executes a statement, returning a value and a control flow
// signal.
func (interp *Interpreter) execStatement(stmt ast.Statement, env *runtime.Environment) (*runtime.Value, signal) {
	switch s := stmt.(type) {
	case *ast.ExpressionStatement:
		return interp.evalExpression(s.Expression, env)
	case *ast.VariableDeclaration:
		return interp.execVarDecl(s, env)
	case *ast.BlockStatement:
		return interp.execBlock(s, env)
	case *ast.ReturnStatement:
		return interp.execReturn(s, env)
	case *ast.IfStatement:
		return interp.execIf(s, env)
	case *ast.WhileStatement:
		return interp.execWhile(s, env)
	case *ast.DoWhileStatement:
		return interp.execDoWhile(s, env)
	case *ast.ForStatement:
		return interp.execFor(s, env)
	case *ast.ForInStatement:
		return interp.execForIn(s, env)
	case *ast.ForOfStatement:
		return interp.execForOf(s, env)
	case *ast.BreakStatement:
		return nil, signal{typ: sigBreak}
	case *ast.ContinueStatement:
		return nil, signal{typ: sigContinue}
	case *ast.SwitchStatement:
		return interp.execSwitch(s, env)
	case *ast.ThrowStatement:
		return interp.execThrow(s, env)
	case *ast.TryStatement:
		return interp.execTry(s, env)
	case *ast.FunctionDeclaration:
		// already bound during hoisting
		return nil, signal{}
	case *ast.EmptyStatement:
		return nil, signal{}
	case *ast.ObserveStatement:
		return interp.execObserve(s, env)
	case *ast.MultiObserveStatement:
		return interp.execMultiObserve(s, env)
	case *ast.WhenStatement:
		return interp.execWhen(s, env)
	case *ast.ImportStatement:
		return interp.execImport(s, env)
	case *ast.ExportStatement:
		return interp.execExport(s, env)
	default:
		return nil, signal{typ: sigThrow, value: makeErrorObject("Error", fmt.Sprintf("unsupported statement: %T", stmt))}
	}
}

func (interp *Interpreter) execVarDecl(s *ast.VariableDeclaration, env *runtime.Environment) (*runtime.Value, signal) {
	for _, decl := range s.Declarations {
		if s.Kind == "var" && decl.Value == nil {
			// already hoisted as undefined
			continue
		}

		var val *runtime.Value = runtime.Undefined
		if decl.Value != nil {
			v, sig := interp.evalExpression(decl.Value, env)
			if sig.typ != sigNone {
				return nil, sig
			}
			val = v
		}

		if s.Kind == "var" {
			env.GetFunctionScope().SetInCurrentScope(decl.Name.Value, val)
			continue
		}
		if err := env.Declare(decl.Name.Value, s.Kind, val); err != nil {
			return nil, signal{typ: sigThrow, value: errorFromGoError(err)}
		}
	}
	return nil, signal{}
}

func (interp *Interpreter) execBlock(s *ast.BlockStatement, env *runtime.Environment) (*runtime.Value, signal) {
	blockEnv := runtime.NewEnvironment(env, true)
	interp.hoist(s.Statements, blockEnv)

	var result *runtime.Value
	for _, stmt := range s.Statements {
		val, sig := interp.execStatement(stmt, blockEnv)
		if sig.typ != sigNone {
			return nil, sig
		}
		if val != nil {
			result = val
		}
	}
	return result, signal{}
}

func (interp *Interpreter) execReturn(s *ast.ReturnStatement, env *runtime.Environment) (*runtime.Value, signal) {
	if s.Value == nil {
		return nil, signal{typ: sigReturn, value: runtime.Undefined}
	}
	val, sig := interp.evalExpression(s.Value, env)
	if sig.typ != sigNone {
		return nil, sig
	}
	return nil, signal{typ: sigReturn, value: val}
}

func (interp *Interpreter) execIf(s *ast.IfStatement, env *runtime.Environment) (*runtime.Value, signal) {
	cond, sig := interp.evalExpression(s.Condition, env)
	if sig.typ != sigNone {
		return nil, sig
	}
	if cond.ToBoolean() {
		return interp.execBlock(s.Consequence, env)
	}
	if s.Alternative != nil {
		return interp.execStatement(s.Alternative, env)
	}
	return nil, signal{}
}

func (interp *Interpreter) execWhile(s *ast.WhileStatement, env *runtime.Environment) (*runtime.Value, signal) {
	for {
		cond, sig := interp.evalExpression(s.Condition, env)
		if sig.typ != sigNone {
			return nil, sig
		}
		if !cond.ToBoolean() {
			break
		}
		_, sig = interp.execStatement(s.Body, env)
		if sig.typ == sigBreak {
			break
		}
		if sig.typ == sigContinue {
			continue
		}
		if sig.typ != sigNone {
			return nil, sig
		}
	}
	return nil, signal{}
}

func (interp *Interpreter) execDoWhile(s *ast.DoWhileStatement, env *runtime.Environment) (*runtime.Value, signal) {
	for {
		_, sig := interp.execStatement(s.Body, env)
		if sig.typ == sigBreak {
			break
		}
		if sig.typ != sigNone && sig.typ != sigContinue {
			return nil, sig
		}
		cond, csig := interp.evalExpression(s.Condition, env)
		if csig.typ != sigNone {
			return nil, csig
		}
		if !cond.ToBoolean() {
			break
		}
	}
	return nil, signal{}
}

func (interp *Interpreter) execFor(s *ast.ForStatement, env *runtime.Environment) (*runtime.Value, signal) {
	forEnv := runtime.NewEnvironment(env, true)

	if s.Init != nil {
		switch init := s.Init.(type) {
		case ast.Statement:
			if _, sig := interp.execStatement(init, forEnv); sig.typ != sigNone {
				return nil, sig
			}
		case ast.Expression:
			if _, sig := interp.evalExpression(init, forEnv); sig.typ != sigNone {
				return nil, sig
			}
		}
	}

	for {
		if s.Test != nil {
			cond, sig := interp.evalExpression(s.Test, forEnv)
			if sig.typ != sigNone {
				return nil, sig
			}
			if !cond.ToBoolean() {
				break
			}
		}

		_, sig := interp.execStatement(s.Body, forEnv)
		if sig.typ == sigBreak {
			break
		}
		if sig.typ != sigNone && sig.typ != sigContinue {
			return nil, sig
		}

		if s.Update != nil {
			if _, usig := interp.evalExpression(s.Update, forEnv); usig.typ != sigNone {
				return nil, usig
			}
		}
	}
	return nil, signal{}
}

func (interp *Interpreter) execForIn(s *ast.ForInStatement, env *runtime.Environment) (*runtime.Value, signal) {
	right, sig := interp.evalExpression(s.Right, env)
	if sig.typ != sigNone {
		return nil, sig
	}

	var keys []*runtime.Value
	switch right.Type {
	case runtime.TypeObject:
		for _, k := range right.Object.Keys() {
			keys = append(keys, runtime.NewString(k))
		}
	case runtime.TypeArray:
		for i := range right.Array.Elements {
			keys = append(keys, runtime.NewNumber(float64(i)))
		}
	}

	return interp.runIterationBody(s.Left, keys, s.Body, env)
}

func (interp *Interpreter) execForOf(s *ast.ForOfStatement, env *runtime.Environment) (*runtime.Value, signal) {
	right, sig := interp.evalExpression(s.Right, env)
	if sig.typ != sigNone {
		return nil, sig
	}

	var items []*runtime.Value
	switch right.Type {
	case runtime.TypeArray:
		items = append(items, right.Array.Elements...)
	case runtime.TypeString:
		for _, ch := range right.Str {
			items = append(items, runtime.NewString(string(ch)))
		}
	default:
		return nil, signal{typ: sigThrow, value: makeErrorObject("TypeError", fmt.Sprintf("%s is not iterable", right.ToString()))}
	}

	return interp.runIterationBody(s.Left, items, s.Body, env)
}

// runIterationBody binds each item to the loop variable and executes the
// body, sharing the break/continue handling between for-in and for-of.
func (interp *Interpreter) runIterationBody(left ast.Node, items []*runtime.Value, body ast.Statement, env *runtime.Environment) (*runtime.Value, signal) {
	for _, item := range items {
		iterEnv := runtime.NewEnvironment(env, true)

		switch l := left.(type) {
		case *ast.VariableDeclaration:
			name := l.Declarations[0].Name.Value
			if l.Kind == "var" {
				iterEnv.GetFunctionScope().SetInCurrentScope(name, item)
			} else {
				iterEnv.Declare(name, l.Kind, item)
			}
		case *ast.Identifier:
			if asig := interp.store(l, item, iterEnv); asig.typ != sigNone {
				return nil, asig
			}
		}

		_, sig := interp.execStatement(body, iterEnv)
		if sig.typ == sigBreak {
			break
		}
		if sig.typ != sigNone && sig.typ != sigContinue {
			return nil, sig
		}
	}
	return nil, signal{}
}

func (interp *Interpreter) execSwitch(s *ast.SwitchStatement, env *runtime.Environment) (*runtime.Value, signal) {
	disc, sig := interp.evalExpression(s.Discriminant, env)
	if sig.typ != sigNone {
		return nil, sig
	}

	switchEnv := runtime.NewEnvironment(env, true)

	matched := false
	defaultIdx := -1
	for i, c := range s.Cases {
		if c.Test == nil {
			defaultIdx = i
			if matched {
				// fall-through runs a mid-list default like any other case
				done, rsig := interp.runSwitchCase(c, switchEnv)
				if done || rsig.typ != sigNone {
					return nil, rsig
				}
			}
			continue
		}
		if !matched {
			test, tsig := interp.evalExpression(c.Test, switchEnv)
			if tsig.typ != sigNone {
				return nil, tsig
			}
			if runtime.StrictEquals(disc, test) {
				matched = true
			}
		}
		if matched {
			done, rsig := interp.runSwitchCase(c, switchEnv)
			if done || rsig.typ != sigNone {
				return nil, rsig
			}
		}
	}

	// fall through from default when nothing matched
	if !matched && defaultIdx >= 0 {
		for i := defaultIdx; i < len(s.Cases); i++ {
			done, rsig := interp.runSwitchCase(s.Cases[i], switchEnv)
			if done || rsig.typ != sigNone {
				return nil, rsig
			}
		}
	}
	return nil, signal{}
}

func (interp *Interpreter) runSwitchCase(c *ast.SwitchCase, env *runtime.Environment) (bool, signal) {
	for _, stmt := range c.Consequent {
		_, sig := interp.execStatement(stmt, env)
		if sig.typ == sigBreak {
			return true, signal{}
		}
		if sig.typ != sigNone {
			return true, sig
		}
	}
	return false, signal{}
}

func (interp *Interpreter) execThrow(s *ast.ThrowStatement, env *runtime.Environment) (*runtime.Value, signal) {
	val, sig := interp.evalExpression(s.Argument, env)
	if sig.typ != sigNone {
		return nil, sig
	}
	return nil, signal{typ: sigThrow, value: val}
}

func (interp *Interpreter) execTry(s *ast.TryStatement, env *runtime.Environment) (*runtime.Value, signal) {
	var pending signal

	_, sig := interp.execBlock(s.Block, env)
	pending = sig

	if sig.typ == sigThrow && s.Handler != nil {
		catchEnv := runtime.NewEnvironment(env, true)
		if s.Handler.Param != nil {
			thrown := sig.value
			if thrown == nil {
				thrown = runtime.Undefined
			}
			catchEnv.Declare(s.Handler.Param.Value, "let", thrown)
		}

		pending = signal{}
		interp.hoist(s.Handler.Body.Statements, catchEnv)
		for _, stmt := range s.Handler.Body.Statements {
			_, csig := interp.execStatement(stmt, catchEnv)
			if csig.typ != sigNone {
				pending = csig
				break
			}
		}
	}

	if s.Finalizer != nil {
		_, fsig := interp.execBlock(s.Finalizer, env)
		if fsig.typ != sigNone {
			// finally's own signal supersedes the in-flight one
			return nil, fsig
		}
	}

	return nil, pending
}
