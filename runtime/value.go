package runtime

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// ValueType enumerates the closed set of runtime value kinds. Every operator
// and builtin switches exhaustively over these.
type ValueType int

const (
	TypeUndefined ValueType = iota
	TypeNull
	TypeBoolean
	TypeNumber
	TypeString
	TypeObject
	TypeArray
	TypeFunction
	TypeHost
)

func (t ValueType) String() string {
	switch t {
	case TypeUndefined:
		return "undefined"
	case TypeNull:
		return "object" // typeof null is "object"
	case TypeBoolean:
		return "boolean"
	case TypeNumber:
		return "number"
	case TypeString:
		return "string"
	case TypeObject:
		return "object"
	case TypeArray:
		return "array"
	case TypeFunction:
		return "function"
	case TypeHost:
		return "host"
	default:
		return "unknown"
	}
}

// Value is a single runtime value. Exactly one of the payload fields is
// meaningful, selected by Type.
type Value struct {
	Type   ValueType
	Bool   bool
	Number float64
	Str    string
	Object *Object
	Array  *Array
	Fn     *Function
	Host   *HostObject
}

var (
	Undefined = &Value{Type: TypeUndefined}
	Null      = &Value{Type: TypeNull}
	True      = &Value{Type: TypeBoolean, Bool: true}
	False     = &Value{Type: TypeBoolean, Bool: false}
	NaN       = &Value{Type: TypeNumber, Number: math.NaN()}
	Zero      = &Value{Type: TypeNumber, Number: 0}
)

func NewNumber(n float64) *Value {
	if n == 0 && !math.Signbit(n) {
		return Zero
	}
	return &Value{Type: TypeNumber, Number: n}
}

func NewString(s string) *Value {
	return &Value{Type: TypeString, Str: s}
}

func NewBool(b bool) *Value {
	if b {
		return True
	}
	return False
}

func NewObject(obj *Object) *Value {
	return &Value{Type: TypeObject, Object: obj}
}

func NewArray(arr *Array) *Value {
	return &Value{Type: TypeArray, Array: arr}
}

func NewFunction(fn *Function) *Value {
	return &Value{Type: TypeFunction, Fn: fn}
}

func NewHost(h *HostObject) *Value {
	return &Value{Type: TypeHost, Host: h}
}

// ToBoolean reports truthiness. The falsy values are false, 0, "", null,
// undefined, and NaN; everything else is truthy.
func (v *Value) ToBoolean() bool {
	switch v.Type {
	case TypeUndefined, TypeNull:
		return false
	case TypeBoolean:
		return v.Bool
	case TypeNumber:
		return v.Number != 0 && !math.IsNaN(v.Number)
	case TypeString:
		return len(v.Str) > 0
	case TypeObject, TypeArray, TypeFunction, TypeHost:
		return true
	default:
		return false
	}
}

// ToString renders the value for display and string coercion.
func (v *Value) ToString() string {
	switch v.Type {
	case TypeUndefined:
		return "undefined"
	case TypeNull:
		return "null"
	case TypeBoolean:
		if v.Bool {
			return "true"
		}
		return "false"
	case TypeNumber:
		return FormatNumber(v.Number)
	case TypeString:
		return v.Str
	case TypeArray:
		parts := make([]string, len(v.Array.Elements))
		for i, el := range v.Array.Elements {
			if el == nil || el.Type == TypeUndefined || el.Type == TypeNull {
				parts[i] = ""
				continue
			}
			parts[i] = el.ToString()
		}
		return strings.Join(parts, ",")
	case TypeObject:
		if name, msg, ok := v.Object.errorShape(); ok {
			if msg == "" {
				return name
			}
			return name + ": " + msg
		}
		return "[object Object]"
	case TypeFunction:
		if v.Fn.Name != "" {
			return "function " + v.Fn.Name + "() { ... }"
		}
		return "function () { ... }"
	case TypeHost:
		return "[host " + v.Host.Name + "]"
	default:
		return "undefined"
	}
}

// FormatNumber renders a float the way scripts expect: integral values
// without a fractional part, NaN and infinities by name.
func FormatNumber(n float64) string {
	switch {
	case math.IsNaN(n):
		return "NaN"
	case math.IsInf(n, 1):
		return "Infinity"
	case math.IsInf(n, -1):
		return "-Infinity"
	case n == 0:
		return "0"
	case n == math.Trunc(n) && math.Abs(n) < 1e21:
		return fmt.Sprintf("%d", int64(n))
	default:
		return fmt.Sprintf("%g", n)
	}
}

// Object is a plain string-keyed property bag. There are no prototype
// chains; lookup misses yield Undefined.
type Object struct {
	Properties map[string]*Value
}

func NewPlainObject() *Object {
	return &Object{Properties: make(map[string]*Value)}
}

func (o *Object) Get(name string) *Value {
	if v, ok := o.Properties[name]; ok {
		return v
	}
	return Undefined
}

func (o *Object) Set(name string, val *Value) {
	o.Properties[name] = val
}

func (o *Object) Has(name string) bool {
	_, ok := o.Properties[name]
	return ok
}

func (o *Object) Delete(name string) {
	delete(o.Properties, name)
}

// Keys returns the property names in sorted order, which is the enumeration
// order used by for-in.
func (o *Object) Keys() []string {
	keys := make([]string, 0, len(o.Properties))
	for k := range o.Properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// errorShape recognizes thrown-error objects: any object carrying string
// name and message properties.
func (o *Object) errorShape() (name, msg string, ok bool) {
	n, hasName := o.Properties["name"]
	if !hasName || n.Type != TypeString {
		return "", "", false
	}
	m, hasMsg := o.Properties["message"]
	if !hasMsg || m.Type != TypeString {
		return n.Str, "", true
	}
	return n.Str, m.Str, true
}

// Array is a growable list value with the usual length semantics.
type Array struct {
	Elements []*Value
}

func NewArrayOf(elements ...*Value) *Array {
	return &Array{Elements: elements}
}

func (a *Array) Len() int { return len(a.Elements) }

// Get returns the element at index, or Undefined when out of range.
func (a *Array) Get(i int) *Value {
	if i < 0 || i >= len(a.Elements) {
		return Undefined
	}
	if a.Elements[i] == nil {
		return Undefined
	}
	return a.Elements[i]
}

// Set stores at index, growing the array with Undefined holes as needed.
// Negative indexes are ignored.
func (a *Array) Set(i int, val *Value) {
	if i < 0 {
		return
	}
	for len(a.Elements) <= i {
		a.Elements = append(a.Elements, Undefined)
	}
	a.Elements[i] = val
}

// HostFunc is the Go signature behind every callable: already-evaluated
// arguments in, value or host error out.
type HostFunc func(args []*Value) (*Value, error)

// Function is a callable value. Script functions close their body and
// defining environment into Call when constructed; host functions carry a
// Go implementation directly. Immutable after construction.
type Function struct {
	Name   string
	Params []string
	Call   HostFunc
}

// HostObject is a named, script-read-only bag of host values (console,
// math, ...).
type HostObject struct {
	Name  string
	Props map[string]*Value
}

func NewHostObject(name string) *HostObject {
	return &HostObject{Name: name, Props: make(map[string]*Value)}
}

func (h *HostObject) Get(name string) *Value {
	if v, ok := h.Props[name]; ok {
		return v
	}
	return Undefined
}
