package interpreter

import (
	"math"
	"strings"
	"testing"

	"github.com/example/pulse/runtime"
)

func evalExpect(t *testing.T, source string) *runtime.Value {
	t.Helper()
	interp := New()
	val, err := interp.Eval(source)
	if err != nil {
		t.Fatalf("Eval error for %q: %v", source, err)
	}
	return val
}

func evalExpectError(t *testing.T, source string) error {
	t.Helper()
	interp := New()
	_, err := interp.Eval(source)
	if err == nil {
		t.Fatalf("expected error for %q but got none", source)
	}
	return err
}

func expectNumber(t *testing.T, source string, expected float64) {
	t.Helper()
	val := evalExpect(t, source)
	if val.Type != runtime.TypeNumber {
		t.Fatalf("expected number for %q, got type=%v", source, val.Type)
	}
	if math.IsNaN(expected) {
		if !math.IsNaN(val.Number) {
			t.Fatalf("expected NaN for %q, got %v", source, val.Number)
		}
		return
	}
	if val.Number != expected {
		t.Fatalf("expected %v for %q, got %v", expected, source, val.Number)
	}
}

func expectString(t *testing.T, source string, expected string) {
	t.Helper()
	val := evalExpect(t, source)
	if val.Type != runtime.TypeString {
		t.Fatalf("expected string for %q, got type=%v", source, val.Type)
	}
	if val.Str != expected {
		t.Fatalf("expected %q for %q, got %q", expected, source, val.Str)
	}
}

func expectBool(t *testing.T, source string, expected bool) {
	t.Helper()
	val := evalExpect(t, source)
	if val.Type != runtime.TypeBoolean {
		t.Fatalf("expected boolean for %q, got type=%v", source, val.Type)
	}
	if val.Bool != expected {
		t.Fatalf("expected %v for %q, got %v", expected, source, val.Bool)
	}
}

func expectUndefined(t *testing.T, source string) {
	t.Helper()
	val := evalExpect(t, source)
	if val.Type != runtime.TypeUndefined {
		t.Fatalf("expected undefined for %q, got type=%v", source, val.Type)
	}
}

func expectErrorContains(t *testing.T, source, fragment string) {
	t.Helper()
	err := evalExpectError(t, source)
	if !strings.Contains(err.Error(), fragment) {
		t.Fatalf("expected error containing %q for %q, got %v", fragment, source, err)
	}
}

// --- Literals ---

func TestLiterals(t *testing.T) {
	expectNumber(t, "42", 42)
	expectNumber(t, "3.14", 3.14)
	expectNumber(t, "0xFF", 255)
	expectNumber(t, "1e3", 1000)
	expectString(t, `"hello"`, "hello")
	expectString(t, "'world'", "world")
	expectBool(t, "true", true)
	expectBool(t, "false", false)
	expectUndefined(t, "undefined")
	if val := evalExpect(t, "null"); val.Type != runtime.TypeNull {
		t.Errorf("expected null, got type=%v", val.Type)
	}
}

// --- Arithmetic ---

func TestArithmetic(t *testing.T) {
	expectNumber(t, "1 + 2 * 3", 7)
	expectNumber(t, "(1 + 2) * 3", 9)
	expectNumber(t, "10 - 3 - 2", 5)
	expectNumber(t, "10 / 4", 2.5)
	expectNumber(t, "10 % 3", 1)
	expectNumber(t, "-5 + 2", -3)
	expectNumber(t, "+true", 1)
	expectNumber(t, "1 / 0", math.Inf(1))
	expectNumber(t, "0 / 0", math.NaN())
	expectNumber(t, `"3" * "4"`, 12)
	expectNumber(t, "undefined + 1", math.NaN())
}

func TestStringConcat(t *testing.T) {
	expectString(t, `"hello" + " " + "world"`, "hello world")
	expectString(t, `"n: " + 42`, "n: 42")
	expectString(t, `1 + "2"`, "12")
	expectString(t, `"v" + null`, "vnull")
	expectString(t, `"v" + undefined`, "vundefined")
}

// --- Comparison and equality ---

func TestComparisons(t *testing.T) {
	expectBool(t, "1 < 2", true)
	expectBool(t, "2 <= 2", true)
	expectBool(t, "3 > 4", false)
	expectBool(t, `"a" < "b"`, true)
	expectBool(t, `"10" < "9"`, true) // both strings: lexicographic
	expectBool(t, `10 < "9"`, false)  // mixed: numeric
	expectBool(t, "undefined < 1", false)
	expectBool(t, "undefined > 1", false)
}

func TestEquality(t *testing.T) {
	expectBool(t, "1 == 1", true)
	expectBool(t, `1 == "1"`, true)
	expectBool(t, "null == undefined", true)
	expectBool(t, "true == 1", true)
	expectBool(t, `1 === "1"`, false)
	expectBool(t, "null === undefined", false)
	expectBool(t, "NaN === NaN", false)
	expectBool(t, "1 !== 2", true)
	expectBool(t, "[1] == [1]", false) // identity
	expectBool(t, "let a = [1]; a == a", true)
}

// --- Logical operators ---

func TestLogicalOperators(t *testing.T) {
	expectBool(t, "true && false", false)
	expectBool(t, "true || false", true)
	expectBool(t, "!0", true)
	expectString(t, `0 || "fallback"`, "fallback")
	expectNumber(t, `1 && 2`, 2)
	expectNumber(t, `0 && f()`, 0)      // short circuit: f never called
	expectNumber(t, `1 || f()`, 1)      // short circuit
}

// --- Bitwise ---

func TestBitwiseOperators(t *testing.T) {
	expectNumber(t, "5 & 3", 1)
	expectNumber(t, "5 | 3", 7)
	expectNumber(t, "5 ^ 3", 6)
	expectNumber(t, "~5", -6)
	expectNumber(t, "1 << 4", 16)
	expectNumber(t, "-8 >> 1", -4)
}

// --- typeof and unary ---

func TestTypeof(t *testing.T) {
	expectString(t, "typeof 1", "number")
	expectString(t, `typeof "s"`, "string")
	expectString(t, "typeof true", "boolean")
	expectString(t, "typeof undefined", "undefined")
	expectString(t, "typeof null", "object")
	expectString(t, "typeof {}", "object")
	expectString(t, "typeof (() => 1)", "function")
	expectString(t, "typeof neverDeclared", "undefined")
}

// --- Variables and scoping ---

func TestVariableDeclarations(t *testing.T) {
	expectNumber(t, "let x = 5; x", 5)
	expectNumber(t, "const c = 7; c", 7)
	expectNumber(t, "var v = 9; v", 9)
	expectUndefined(t, "let u; u")
	expectNumber(t, "let a = 1, b = 2; a + b", 3)
}

func TestConstReassignment(t *testing.T) {
	expectErrorContains(t, "const c = 1; c = 2;", "AssignmentError")
}

func TestLetRedeclaration(t *testing.T) {
	expectErrorContains(t, "let x = 1; let x = 2;", "already been declared")
}

func TestBlockScoping(t *testing.T) {
	expectNumber(t, "let x = 1; { let x = 2; } x", 1)
	expectNumber(t, "let x = 1; { x = 2; } x", 2)
}

func TestVarEscapesBlocks(t *testing.T) {
	expectNumber(t, "{ var y = 5; } y", 5)
	expectNumber(t, "if (true) { var z = 3; } z", 3)
}

func TestVarHoisting(t *testing.T) {
	expectUndefined(t, "let seen = h; var h = 1; seen")
	expectNumber(t, "function f() { return v; } var v = 10; f()", 10)
}

func TestFunctionHoisting(t *testing.T) {
	expectNumber(t, "let r = early(); function early() { return 11; } r", 11)
}

func TestUndeclaredAssignmentBinds(t *testing.T) {
	// Assigning an undeclared name binds it in the nearest function scope.
	expectNumber(t, "g = 4; g", 4)
	expectErrorContains(t, "function f() { local = 1; } f(); local", "ReferenceError")
}

func TestUndeclaredReadIsError(t *testing.T) {
	expectErrorContains(t, "missing + 1", "ReferenceError")
}

// --- Functions and closures ---

func TestFunctionCalls(t *testing.T) {
	expectNumber(t, "function add(a, b) { return a + b; } add(2, 3)", 5)
	expectUndefined(t, "function f(a) { return a; } f()")
	expectNumber(t, "function f(a) { return a; } f(1, 2, 3)", 1)
	expectUndefined(t, "function noReturn() { 1 + 1; } noReturn()")
}

func TestRecursion(t *testing.T) {
	expectNumber(t, `
function fact(n) {
	if (n <= 1) { return 1; }
	return n * fact(n - 1);
}
fact(6)`, 720)
}

func TestNamedFunctionExpressionRecursion(t *testing.T) {
	expectNumber(t, `
let f = function fib(n) {
	if (n < 2) { return n; }
	return fib(n - 1) + fib(n - 2);
};
f(10)`, 55)
}

func TestClosures(t *testing.T) {
	expectNumber(t, `
function counter() {
	let n = 0;
	return () => { n = n + 1; return n; };
}
let c = counter();
c(); c(); c()`, 3)

	// Two counters do not share state.
	expectNumber(t, `
function counter() {
	let n = 0;
	return () => { n = n + 1; return n; };
}
let a = counter();
let b = counter();
a(); a();
b()`, 1)
}

func TestClosureSeesLiveVariable(t *testing.T) {
	expectNumber(t, `
let x = 1;
let get = () => x;
x = 5;
get()`, 5)
}

func TestArrowFunctions(t *testing.T) {
	expectNumber(t, "let sq = x => x * x; sq(9)", 81)
	expectNumber(t, "let add = (a, b) => a + b; add(1, 2)", 3)
	expectNumber(t, "let f = () => { return 7; }; f()", 7)
	expectNumber(t, "let mk = a => b => a + b; mk(10)(4)", 14)
}

func TestFunctionsAsValues(t *testing.T) {
	expectNumber(t, `
function apply(f, x) { return f(x); }
apply(n => n * 2, 21)`, 42)
}

func TestCallNonFunction(t *testing.T) {
	expectErrorContains(t, "let x = 5; x();", "is not a function")
}

// --- Control flow ---

func TestIfElse(t *testing.T) {
	expectNumber(t, "let r; if (1 < 2) { r = 1; } else { r = 2; } r", 1)
	expectNumber(t, "let r; if (1 > 2) { r = 1; } else { r = 2; } r", 2)
	expectNumber(t, `
let r;
if (false) { r = 1; }
else if (true) { r = 2; }
else { r = 3; }
r`, 2)
	expectUndefined(t, "let r; if (false) { r = 1; } r")
}

func TestWhileLoop(t *testing.T) {
	expectNumber(t, `
let i = 0;
let sum = 0;
while (i < 5) { sum = sum + i; i = i + 1; }
sum`, 10)
}

func TestDoWhileRunsOnce(t *testing.T) {
	expectNumber(t, "let n = 0; do { n = n + 1; } while (false); n", 1)
}

func TestForLoop(t *testing.T) {
	expectNumber(t, `
let sum = 0;
for (let i = 1; i <= 4; i = i + 1) { sum = sum + i; }
sum`, 10)
}

func TestBreakAndContinue(t *testing.T) {
	expectNumber(t, `
let sum = 0;
for (let i = 0; i < 10; i = i + 1) {
	if (i == 2) { continue; }
	if (i == 4) { break; }
	sum = sum + i;
}
sum`, 4)
}

func TestNestedLoopBreak(t *testing.T) {
	// break only exits the inner loop
	expectNumber(t, `
let n = 0;
for (let i = 0; i < 3; i = i + 1) {
	for (let j = 0; j < 10; j = j + 1) {
		if (j == 2) { break; }
		n = n + 1;
	}
}
n`, 6)
}

func TestForInObject(t *testing.T) {
	// Keys visit in sorted order.
	expectString(t, `
let o = {b: 1, a: 2, c: 3};
let out = "";
for (let k in o) { out = out + k; }
out`, "abc")
}

func TestForInArrayIndices(t *testing.T) {
	expectNumber(t, `
let total = 0;
for (let i in [10, 20, 30]) { total = total + i; }
total`, 3) // 0 + 1 + 2, numeric indices
}

func TestForOf(t *testing.T) {
	expectNumber(t, `
let total = 0;
for (const v of [10, 20, 30]) { total = total + v; }
total`, 60)
	expectString(t, `
let out = "";
for (let ch of "abc") { out = out + ch + "-"; }
out`, "a-b-c-")
	expectErrorContains(t, "for (let x of 42) {}", "is not iterable")
}

func TestSwitch(t *testing.T) {
	expectString(t, `
function label(n) {
	switch (n) {
	case 1:
		return "one";
	case 2:
	case 3:
		return "few";
	default:
		return "many";
	}
}
label(1) + " " + label(3) + " " + label(9)`, "one few many")
}

func TestSwitchFallThrough(t *testing.T) {
	expectNumber(t, `
let n = 0;
switch (2) {
case 1:
	n = n + 1;
case 2:
	n = n + 10;
case 3:
	n = n + 100;
	break;
case 4:
	n = n + 1000;
}
n`, 110)
}

func TestSwitchFallThroughIntoMidListDefault(t *testing.T) {
	expectNumber(t, `
let n = 0;
switch (1) {
case 1:
	n = n + 1;
default:
	n = n + 10;
case 3:
	n = n + 100;
}
n`, 111)
}

func TestSwitchStrictMatching(t *testing.T) {
	expectString(t, `
let r = "none";
switch ("1") {
case 1:
	r = "number";
	break;
default:
	r = "default";
}
r`, "default")
}

// --- Exceptions ---

func TestThrowCatch(t *testing.T) {
	expectString(t, `
let r;
try { throw "boom"; } catch (e) { r = e; }
r`, "boom")
}

func TestCatchSkippedWithoutThrow(t *testing.T) {
	expectNumber(t, `
let r = 1;
try { r = 2; } catch (e) { r = 3; }
r`, 2)
}

func TestTryCatchFinally(t *testing.T) {
	expectString(t, `
let r = 0;
let f = false;
try { throw "x"; } catch (e) { r = 2; } finally { f = true; }
r + ":" + f`, "2:true")
}

func TestFinallyRunsOnReturn(t *testing.T) {
	expectBool(t, `
let cleaned = false;
function f() {
	try { return 1; } finally { cleaned = true; }
}
f();
cleaned`, true)
}

func TestFinallySupersedesReturn(t *testing.T) {
	expectNumber(t, `
function f() {
	try { return 1; } finally { return 2; }
}
f()`, 2)
}

func TestUncaughtThrow(t *testing.T) {
	expectErrorContains(t, `throw "unhandled";`, "unhandled")
}

func TestRuntimeErrorObjectShape(t *testing.T) {
	expectString(t, `
let r;
try { missing(); } catch (e) { r = e.name + "|" + (e.message !== undefined); }
r`, "ReferenceError|true")
}

func TestRethrow(t *testing.T) {
	expectString(t, `
let r;
try {
	try { throw "inner"; } catch (e) { throw e + "!"; }
} catch (e2) { r = e2; }
r`, "inner!")
}

func TestCatchParamIsScoped(t *testing.T) {
	expectErrorContains(t, `
try { throw 1; } catch (e) {}
e`, "ReferenceError")
}

func TestThrowFromFunctionUnwindsCallers(t *testing.T) {
	expectString(t, `
function deep() { throw "deep"; }
function mid() { deep(); return "never"; }
let r;
try { mid(); } catch (e) { r = e; }
r`, "deep")
}

// --- Objects and arrays ---

func TestObjectLiterals(t *testing.T) {
	expectNumber(t, `let o = {a: 1, b: 2}; o.a + o.b`, 3)
	expectNumber(t, `let o = {"key": 10}; o["key"]`, 10)
	expectNumber(t, `let o = {nested: {deep: 5}}; o.nested.deep`, 5)
	expectUndefined(t, `let o = {}; o.missing`)
}

func TestObjectMutation(t *testing.T) {
	expectNumber(t, `let o = {}; o.x = 1; o.x = o.x + 1; o.x`, 2)
	expectNumber(t, `let o = {}; let k = "dyn"; o[k] = 42; o.dyn`, 42)
}

func TestArrays(t *testing.T) {
	expectNumber(t, `let a = [1, 2, 3]; a[0] + a[2]`, 4)
	expectNumber(t, `[10, 20, 30].length`, 3)
	expectUndefined(t, `let a = [1]; a[5]`)
	expectNumber(t, `let a = [1]; a[3] = 9; a.length`, 4)
	expectNumber(t, `let m = [[1, 2], [3, 4]]; m[1][0]`, 3)
}

func TestStringIndexing(t *testing.T) {
	expectString(t, `"hello"[1]`, "e")
	expectNumber(t, `"hello".length`, 5)
	expectUndefined(t, `"hi"[10]`)
}

func TestMemberAccessOnUndefined(t *testing.T) {
	expectErrorContains(t, "let u; u.x", "Cannot read properties of undefined")
	expectErrorContains(t, "null.x", "Cannot read properties of null")
	expectErrorContains(t, "let u; u.x = 1;", "Cannot set properties of undefined")
}

// --- Operators on structures ---

func TestInOperator(t *testing.T) {
	expectBool(t, `"a" in {a: 1}`, true)
	expectBool(t, `"b" in {a: 1}`, false)
	expectBool(t, `1 in [10, 20]`, true)
	expectBool(t, `5 in [10, 20]`, false)
	expectErrorContains(t, `"x" in 42`, "TypeError")
}

func TestInstanceof(t *testing.T) {
	expectBool(t, `let f = () => 1; ({}) instanceof f`, false)
	expectErrorContains(t, `({}) instanceof 42`, "TypeError")
}

// --- Assignment forms ---

func TestCompoundAssignment(t *testing.T) {
	expectNumber(t, "let x = 10; x += 5; x", 15)
	expectNumber(t, "let x = 10; x -= 3; x", 7)
	expectNumber(t, "let x = 10; x *= 2; x", 20)
	expectNumber(t, "let x = 10; x /= 4; x", 2.5)
	expectNumber(t, "let x = 10; x %= 3; x", 1)
	expectString(t, `let s = "a"; s += "b"; s`, "ab")
	expectNumber(t, "let o = {n: 1}; o.n += 2; o.n", 3)
}

func TestUpdateExpressions(t *testing.T) {
	expectNumber(t, "let x = 1; x++; x", 2)
	expectNumber(t, "let x = 1; x++", 1) // postfix yields old value
	expectNumber(t, "let x = 1; ++x", 2) // prefix yields new value
	expectNumber(t, "let x = 5; x--; --x; x", 3)
	expectNumber(t, "let a = [1]; a[0]++; a[0]", 2)
}

func TestChainedAssignment(t *testing.T) {
	expectNumber(t, "let a; let b; a = b = 3; a + b", 6)
}

// --- Conditional expression ---

func TestConditionalExpression(t *testing.T) {
	expectString(t, `true ? "yes" : "no"`, "yes")
	expectString(t, `0 ? "yes" : "no"`, "no")
	expectNumber(t, `let x = (1 < 2) ? 10 : 20; x`, 10)
	// `x = c ? a : b` conditions the ternary on the assignment itself.
	expectNumber(t, `let x; let r = 0; r = ((x = true) ? 10 : 20); x ? r : -1`, 10)
}

// --- Template literals ---

func TestTemplateLiterals(t *testing.T) {
	expectString(t, "`plain`", "plain")
	expectString(t, "let n = 3; `n is ${n}`", "n is 3")
	expectString(t, "let a = 1; let b = 2; `${a} + ${b} = ${a + b}`", "1 + 2 = 3")
	expectString(t, "`nested ${`inner ${1 + 1}`}!`", "nested inner 2!")
}

// --- Interpreter state across Eval calls ---

func TestEvalStatePersists(t *testing.T) {
	interp := New()
	if _, err := interp.Eval("let kept = 21;"); err != nil {
		t.Fatalf("first Eval: %v", err)
	}
	val, err := interp.Eval("kept * 2")
	if err != nil {
		t.Fatalf("second Eval: %v", err)
	}
	if val.Type != runtime.TypeNumber || val.Number != 42 {
		t.Fatalf("expected 42, got %v", val)
	}
}

func TestWithGlobals(t *testing.T) {
	interp := New(WithGlobals(map[string]*runtime.Value{
		"answer": runtime.NewNumber(42),
	}))
	val, err := interp.Eval("answer")
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if val.Number != 42 {
		t.Fatalf("expected 42, got %v", val)
	}
	if _, err := interp.Eval("answer = 1;"); err == nil {
		t.Fatal("expected injected globals to be constant")
	}
}

func TestHostFunctionError(t *testing.T) {
	interp := New(WithGlobals(map[string]*runtime.Value{
		"boom": runtime.NewFunction(&runtime.Function{
			Name: "boom",
			Call: func(args []*runtime.Value) (*runtime.Value, error) {
				return nil, &ScriptError{Value: makeErrorObject("RangeError", "too big")}
			},
		}),
	}))
	val, err := interp.Eval(`
let r;
try { boom(); } catch (e) { r = e.name; }
r`)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if val.Str != "RangeError" {
		t.Fatalf("expected RangeError, got %v", val)
	}
}

func TestParseErrorSurfaces(t *testing.T) {
	interp := New()
	if _, err := interp.Eval("let = 1;"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestCallFunction(t *testing.T) {
	interp := New()
	fn, err := interp.Eval("(a, b) => a * b")
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	out, err := interp.CallFunction(fn, []*runtime.Value{runtime.NewNumber(6), runtime.NewNumber(7)})
	if err != nil {
		t.Fatalf("CallFunction: %v", err)
	}
	if out.Number != 42 {
		t.Fatalf("expected 42, got %v", out)
	}

	if _, err := interp.CallFunction(runtime.NewNumber(1), nil); err == nil {
		t.Fatal("expected error calling a non-function")
	}
}
