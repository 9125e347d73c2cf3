package interpreter

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/example/pulse/ast"
	"github.com/example/pulse/runtime"
)

func (interp *Interpreter) evalExpression(expr ast.Expression, env *runtime.Environment) (*runtime.Value, signal) {
	switch e := expr.(type) {
	case *ast.NumberLiteral:
		return runtime.NewNumber(e.Value), signal{}
	case *ast.StringLiteral:
		return runtime.NewString(e.Value), signal{}
	case *ast.BooleanLiteral:
		return runtime.NewBool(e.Value), signal{}
	case *ast.NullLiteral:
		return runtime.Null, signal{}
	case *ast.UndefinedLiteral:
		return runtime.Undefined, signal{}
	case *ast.Identifier:
		return interp.evalIdentifier(e, env)
	case *ast.ArrayLiteral:
		return interp.evalArrayLiteral(e, env)
	case *ast.ObjectLiteral:
		return interp.evalObjectLiteral(e, env)
	case *ast.FunctionExpression:
		name := ""
		if e.Name != nil {
			name = e.Name.Value
		}
		return interp.createFunction(name, e.Params, e.Body, env), signal{}
	case *ast.ArrowFunctionExpression:
		return interp.createArrowFunction(e, env), signal{}
	case *ast.UnaryExpression:
		return interp.evalUnary(e, env)
	case *ast.UpdateExpression:
		return interp.evalUpdate(e, env)
	case *ast.BinaryExpression:
		return interp.evalBinary(e, env)
	case *ast.LogicalExpression:
		return interp.evalLogical(e, env)
	case *ast.AssignmentExpression:
		return interp.evalAssignment(e, env)
	case *ast.ConditionalExpression:
		return interp.evalConditional(e, env)
	case *ast.CallExpression:
		return interp.evalCall(e, env)
	case *ast.MemberExpression:
		return interp.evalMember(e, env)
	case *ast.TemplateLiteralExpr:
		return interp.evalTemplateLiteral(e, env)
	default:
		return nil, signal{typ: sigThrow, value: makeErrorObject("Error", fmt.Sprintf("unsupported expression: %T", expr))}
	}
}

func (interp *Interpreter) evalIdentifier(e *ast.Identifier, env *runtime.Environment) (*runtime.Value, signal) {
	switch e.Value {
	case "NaN":
		return runtime.NaN, signal{}
	case "Infinity":
		return runtime.NewNumber(math.Inf(1)), signal{}
	}
	val, err := env.Get(e.Value)
	if err != nil {
		return nil, signal{typ: sigThrow, value: errorFromGoError(err)}
	}
	return val, signal{}
}

func (interp *Interpreter) evalArrayLiteral(e *ast.ArrayLiteral, env *runtime.Environment) (*runtime.Value, signal) {
	var elements []*runtime.Value
	for _, elem := range e.Elements {
		if elem == nil {
			elements = append(elements, runtime.Undefined)
			continue
		}
		val, sig := interp.evalExpression(elem, env)
		if sig.typ != sigNone {
			return nil, sig
		}
		elements = append(elements, val)
	}
	return runtime.NewArray(runtime.NewArrayOf(elements...)), signal{}
}

func (interp *Interpreter) evalObjectLiteral(e *ast.ObjectLiteral, env *runtime.Environment) (*runtime.Value, signal) {
	obj := runtime.NewPlainObject()
	for _, prop := range e.Properties {
		key := propertyKey(prop.Key)
		val, sig := interp.evalExpression(prop.Value, env)
		if sig.typ != sigNone {
			return nil, sig
		}
		obj.Set(key, val)
	}
	return runtime.NewObject(obj), signal{}
}

func propertyKey(key ast.Expression) string {
	switch k := key.(type) {
	case *ast.Identifier:
		return k.Value
	case *ast.StringLiteral:
		return k.Value
	case *ast.NumberLiteral:
		return runtime.FormatNumber(k.Value)
	}
	return ""
}

// createFunction builds a script function value. The closure shares
// (does not own) the defining environment; each call builds a fresh child
// of it, binds parameters positionally, and catches return.
func (interp *Interpreter) createFunction(name string, params []*ast.Identifier, body *ast.BlockStatement, env *runtime.Environment) *runtime.Value {
	paramNames := make([]string, len(params))
	for i, p := range params {
		paramNames[i] = p.Value
	}

	fn := &runtime.Function{Name: name, Params: paramNames}
	fnVal := runtime.NewFunction(fn)

	fn.Call = func(args []*runtime.Value) (*runtime.Value, error) {
		fnEnv := runtime.NewEnvironment(env, false)
		if name != "" {
			fnEnv.Declare(name, "const", fnVal)
		}
		bindParams(paramNames, args, fnEnv)
		interp.hoist(body.Statements, fnEnv)

		for _, stmt := range body.Statements {
			_, sig := interp.execStatement(stmt, fnEnv)
			if sig.typ == sigReturn {
				if sig.value == nil {
					return runtime.Undefined, nil
				}
				return sig.value, nil
			}
			if sig.typ == sigThrow {
				return nil, &ScriptError{Value: sig.value}
			}
		}
		return runtime.Undefined, nil
	}

	return fnVal
}

func (interp *Interpreter) createArrowFunction(e *ast.ArrowFunctionExpression, env *runtime.Environment) *runtime.Value {
	paramNames := make([]string, len(e.Params))
	for i, p := range e.Params {
		paramNames[i] = p.Value
	}

	fn := &runtime.Function{Params: paramNames}
	fnVal := runtime.NewFunction(fn)

	fn.Call = func(args []*runtime.Value) (*runtime.Value, error) {
		fnEnv := runtime.NewEnvironment(env, false)
		bindParams(paramNames, args, fnEnv)

		switch body := e.Body.(type) {
		case *ast.BlockStatement:
			interp.hoist(body.Statements, fnEnv)
			for _, stmt := range body.Statements {
				_, sig := interp.execStatement(stmt, fnEnv)
				if sig.typ == sigReturn {
					if sig.value == nil {
						return runtime.Undefined, nil
					}
					return sig.value, nil
				}
				if sig.typ == sigThrow {
					return nil, &ScriptError{Value: sig.value}
				}
			}
			return runtime.Undefined, nil
		case ast.Expression:
			val, sig := interp.evalExpression(body, fnEnv)
			if sig.typ == sigThrow {
				return nil, &ScriptError{Value: sig.value}
			}
			return val, nil
		}
		return runtime.Undefined, nil
	}

	return fnVal
}

// bindParams binds arguments positionally: missing parameters become
// undefined, extra arguments are ignored.
func bindParams(params []string, args []*runtime.Value, env *runtime.Environment) {
	for i, p := range params {
		val := runtime.Undefined
		if i < len(args) && args[i] != nil {
			val = args[i]
		}
		env.Declare(p, "let", val)
	}
}

func (interp *Interpreter) evalUnary(e *ast.UnaryExpression, env *runtime.Environment) (*runtime.Value, signal) {
	if e.Operator == "typeof" {
		// typeof tolerates undeclared identifiers
		if ident, ok := e.Operand.(*ast.Identifier); ok {
			val, err := env.Get(ident.Value)
			if err != nil {
				return runtime.NewString("undefined"), signal{}
			}
			return runtime.NewString(val.Type.String()), signal{}
		}
		val, sig := interp.evalExpression(e.Operand, env)
		if sig.typ != sigNone {
			return nil, sig
		}
		return runtime.NewString(val.Type.String()), signal{}
	}

	operand, sig := interp.evalExpression(e.Operand, env)
	if sig.typ != sigNone {
		return nil, sig
	}

	switch e.Operator {
	case "-":
		return runtime.NewNumber(-operand.ToNumber()), signal{}
	case "+":
		return runtime.NewNumber(operand.ToNumber()), signal{}
	case "!":
		return runtime.NewBool(!operand.ToBoolean()), signal{}
	case "~":
		n := int32(operand.ToNumber())
		return runtime.NewNumber(float64(^n)), signal{}
	}
	return runtime.Undefined, signal{}
}

func (interp *Interpreter) evalUpdate(e *ast.UpdateExpression, env *runtime.Environment) (*runtime.Value, signal) {
	old, sig := interp.evalExpression(e.Operand, env)
	if sig.typ != sigNone {
		return nil, sig
	}
	oldNum := old.ToNumber()
	var newNum float64
	if e.Operator == "++" {
		newNum = oldNum + 1
	} else {
		newNum = oldNum - 1
	}
	newVal := runtime.NewNumber(newNum)
	if asig := interp.store(e.Operand, newVal, env); asig.typ != sigNone {
		return nil, asig
	}

	if e.Prefix {
		return newVal, signal{}
	}
	return runtime.NewNumber(oldNum), signal{}
}

func (interp *Interpreter) evalBinary(e *ast.BinaryExpression, env *runtime.Environment) (*runtime.Value, signal) {
	left, sig := interp.evalExpression(e.Left, env)
	if sig.typ != sigNone {
		return nil, sig
	}
	right, sig := interp.evalExpression(e.Right, env)
	if sig.typ != sigNone {
		return nil, sig
	}
	return interp.applyBinaryOp(e.Operator, left, right)
}

func (interp *Interpreter) applyBinaryOp(op string, left, right *runtime.Value) (*runtime.Value, signal) {
	switch op {
	case "+":
		if left.Type == runtime.TypeString || right.Type == runtime.TypeString {
			return runtime.NewString(left.ToString() + right.ToString()), signal{}
		}
		return runtime.NewNumber(left.ToNumber() + right.ToNumber()), signal{}
	case "-":
		return runtime.NewNumber(left.ToNumber() - right.ToNumber()), signal{}
	case "*":
		return runtime.NewNumber(left.ToNumber() * right.ToNumber()), signal{}
	case "/":
		return runtime.NewNumber(left.ToNumber() / right.ToNumber()), signal{}
	case "%":
		return runtime.NewNumber(math.Mod(left.ToNumber(), right.ToNumber())), signal{}
	case "==":
		return runtime.NewBool(runtime.AbstractEquals(left, right)), signal{}
	case "!=":
		return runtime.NewBool(!runtime.AbstractEquals(left, right)), signal{}
	case "===":
		return runtime.NewBool(runtime.StrictEquals(left, right)), signal{}
	case "!==":
		return runtime.NewBool(!runtime.StrictEquals(left, right)), signal{}
	case "<":
		return compareValues(left, right, "<"), signal{}
	case ">":
		return compareValues(left, right, ">"), signal{}
	case "<=":
		return compareValues(left, right, "<="), signal{}
	case ">=":
		return compareValues(left, right, ">="), signal{}
	case "&":
		return runtime.NewNumber(float64(int32(left.ToNumber()) & int32(right.ToNumber()))), signal{}
	case "|":
		return runtime.NewNumber(float64(int32(left.ToNumber()) | int32(right.ToNumber()))), signal{}
	case "^":
		return runtime.NewNumber(float64(int32(left.ToNumber()) ^ int32(right.ToNumber()))), signal{}
	case "<<":
		return runtime.NewNumber(float64(int32(left.ToNumber()) << (uint32(right.ToNumber()) & 0x1f))), signal{}
	case ">>":
		return runtime.NewNumber(float64(int32(left.ToNumber()) >> (uint32(right.ToNumber()) & 0x1f))), signal{}
	case "instanceof":
		return interp.evalInstanceof(left, right)
	case "in":
		return interp.evalIn(left, right)
	}
	return runtime.Undefined, signal{}
}

func compareValues(left, right *runtime.Value, op string) *runtime.Value {
	if left.Type == runtime.TypeString && right.Type == runtime.TypeString {
		switch op {
		case "<":
			return runtime.NewBool(left.Str < right.Str)
		case ">":
			return runtime.NewBool(left.Str > right.Str)
		case "<=":
			return runtime.NewBool(left.Str <= right.Str)
		default:
			return runtime.NewBool(left.Str >= right.Str)
		}
	}
	ln := left.ToNumber()
	rn := right.ToNumber()
	if math.IsNaN(ln) || math.IsNaN(rn) {
		return runtime.False
	}
	switch op {
	case "<":
		return runtime.NewBool(ln < rn)
	case ">":
		return runtime.NewBool(ln > rn)
	case "<=":
		return runtime.NewBool(ln <= rn)
	default:
		return runtime.NewBool(ln >= rn)
	}
}

// Without prototype chains instanceof can only validate its right operand;
// no value is ever an instance of a function.
func (interp *Interpreter) evalInstanceof(left, right *runtime.Value) (*runtime.Value, signal) {
	if right.Type != runtime.TypeFunction {
		return nil, signal{typ: sigThrow, value: makeErrorObject("TypeError", "right-hand side of instanceof is not a function")}
	}
	return runtime.False, signal{}
}

func (interp *Interpreter) evalIn(left, right *runtime.Value) (*runtime.Value, signal) {
	key := left.ToString()
	switch right.Type {
	case runtime.TypeObject:
		return runtime.NewBool(right.Object.Has(key)), signal{}
	case runtime.TypeArray:
		idx, err := strconv.Atoi(key)
		return runtime.NewBool(err == nil && idx >= 0 && idx < right.Array.Len()), signal{}
	case runtime.TypeHost:
		_, ok := right.Host.Props[key]
		return runtime.NewBool(ok), signal{}
	}
	return nil, signal{typ: sigThrow, value: makeErrorObject("TypeError", "right-hand side of in is not an object")}
}

func (interp *Interpreter) evalLogical(e *ast.LogicalExpression, env *runtime.Environment) (*runtime.Value, signal) {
	left, sig := interp.evalExpression(e.Left, env)
	if sig.typ != sigNone {
		return nil, sig
	}

	// short-circuit, yielding the selected operand value
	switch e.Operator {
	case "&&":
		if !left.ToBoolean() {
			return left, signal{}
		}
		return interp.evalExpression(e.Right, env)
	case "||":
		if left.ToBoolean() {
			return left, signal{}
		}
		return interp.evalExpression(e.Right, env)
	}
	return left, signal{}
}

func (interp *Interpreter) evalAssignment(e *ast.AssignmentExpression, env *runtime.Environment) (*runtime.Value, signal) {
	right, sig := interp.evalExpression(e.Right, env)
	if sig.typ != sigNone {
		return nil, sig
	}

	if e.Operator != "=" {
		old, osig := interp.evalExpression(e.Left, env)
		if osig.typ != sigNone {
			return nil, osig
		}
		combined, bsig := interp.applyBinaryOp(strings.TrimSuffix(e.Operator, "="), old, right)
		if bsig.typ != sigNone {
			return nil, bsig
		}
		right = combined
	}

	if asig := interp.store(e.Left, right, env); asig.typ != sigNone {
		return nil, asig
	}
	return right, signal{}
}

func (interp *Interpreter) evalConditional(e *ast.ConditionalExpression, env *runtime.Environment) (*runtime.Value, signal) {
	test, sig := interp.evalExpression(e.Test, env)
	if sig.typ != sigNone {
		return nil, sig
	}
	if test.ToBoolean() {
		return interp.evalExpression(e.Consequent, env)
	}
	return interp.evalExpression(e.Alternate, env)
}

func (interp *Interpreter) evalCall(e *ast.CallExpression, env *runtime.Environment) (*runtime.Value, signal) {
	callee, sig := interp.evalExpression(e.Callee, env)
	if sig.typ != sigNone {
		return nil, sig
	}

	if callee == nil || callee.Type != runtime.TypeFunction || callee.Fn == nil || callee.Fn.Call == nil {
		return nil, signal{typ: sigThrow, value: makeErrorObject("TypeError", fmt.Sprintf("%s is not a function", calleeText(e.Callee)))}
	}

	args, argSig := interp.evalArguments(e.Arguments, env)
	if argSig.typ != sigNone {
		return nil, argSig
	}

	result, err := callee.Fn.Call(args)
	if err != nil {
		return nil, signal{typ: sigThrow, value: errorFromGoError(err)}
	}
	if result == nil {
		result = runtime.Undefined
	}
	return result, signal{}
}

func calleeText(expr ast.Expression) string {
	switch e := expr.(type) {
	case *ast.Identifier:
		return e.Value
	case *ast.MemberExpression:
		if ident, ok := e.Property.(*ast.Identifier); ok && !e.Computed {
			return calleeText(e.Object) + "." + ident.Value
		}
		return calleeText(e.Object) + "[...]"
	}
	return "expression"
}

func (interp *Interpreter) evalArguments(arguments []ast.Expression, env *runtime.Environment) ([]*runtime.Value, signal) {
	var args []*runtime.Value
	for _, arg := range arguments {
		val, sig := interp.evalExpression(arg, env)
		if sig.typ != sigNone {
			return nil, sig
		}
		args = append(args, val)
	}
	return args, signal{}
}

func (interp *Interpreter) evalMember(e *ast.MemberExpression, env *runtime.Environment) (*runtime.Value, signal) {
	obj, sig := interp.evalExpression(e.Object, env)
	if sig.typ != sigNone {
		return nil, sig
	}

	key, ksig := interp.memberKey(e, env)
	if ksig.typ != sigNone {
		return nil, ksig
	}

	switch obj.Type {
	case runtime.TypeUndefined, runtime.TypeNull:
		return nil, signal{typ: sigThrow, value: makeErrorObject("TypeError", fmt.Sprintf("Cannot read properties of %s (reading '%s')", obj.ToString(), key))}
	case runtime.TypeObject:
		return obj.Object.Get(key), signal{}
	case runtime.TypeArray:
		if key == "length" {
			return runtime.NewNumber(float64(obj.Array.Len())), signal{}
		}
		if idx, err := strconv.Atoi(key); err == nil {
			return obj.Array.Get(idx), signal{}
		}
		return runtime.Undefined, signal{}
	case runtime.TypeString:
		if key == "length" {
			return runtime.NewNumber(float64(len(obj.Str))), signal{}
		}
		if idx, err := strconv.Atoi(key); err == nil {
			if idx >= 0 && idx < len(obj.Str) {
				return runtime.NewString(string(obj.Str[idx])), signal{}
			}
			return runtime.Undefined, signal{}
		}
		return runtime.Undefined, signal{}
	case runtime.TypeHost:
		return obj.Host.Get(key), signal{}
	}
	return runtime.Undefined, signal{}
}

func (interp *Interpreter) memberKey(e *ast.MemberExpression, env *runtime.Environment) (string, signal) {
	if e.Computed {
		keyVal, sig := interp.evalExpression(e.Property, env)
		if sig.typ != sigNone {
			return "", sig
		}
		return keyVal.ToString(), signal{}
	}
	if ident, ok := e.Property.(*ast.Identifier); ok {
		return ident.Value, signal{}
	}
	return "", signal{}
}

func (interp *Interpreter) evalTemplateLiteral(e *ast.TemplateLiteralExpr, env *runtime.Environment) (*runtime.Value, signal) {
	var sb strings.Builder
	for i, quasi := range e.Quasis {
		sb.WriteString(quasi.Value)
		if i < len(e.Expressions) {
			val, sig := interp.evalExpression(e.Expressions[i], env)
			if sig.typ != sigNone {
				return nil, sig
			}
			sb.WriteString(val.ToString())
		}
	}
	return runtime.NewString(sb.String()), signal{}
}
