package runtime

import "fmt"

// Environment represents a lexical scope: a bindings map plus a link to the
// enclosing scope. Function values share (do not own) the environment that
// was active at their definition.
type Environment struct {
	store   map[string]*Binding
	outer   *Environment
	isBlock bool // true for block scopes (let/const), false for function scopes
}

type Binding struct {
	Value   *Value
	Mutable bool   // false for const
	Kind    string // "var", "let", "const", "function"
}

func NewEnvironment(outer *Environment, isBlock bool) *Environment {
	return &Environment{
		store:   make(map[string]*Binding),
		outer:   outer,
		isBlock: isBlock,
	}
}

// Declare declares a variable in the current scope.
func (e *Environment) Declare(name string, kind string, value *Value) error {
	if kind == "let" || kind == "const" {
		if _, exists := e.store[name]; exists {
			return fmt.Errorf("SyntaxError: Identifier '%s' has already been declared", name)
		}
	}
	e.store[name] = &Binding{
		Value:   value,
		Mutable: kind != "const",
		Kind:    kind,
	}
	return nil
}

// Get retrieves a variable value, walking up the scope chain.
func (e *Environment) Get(name string) (*Value, error) {
	if binding, ok := e.store[name]; ok {
		return binding.Value, nil
	}
	if e.outer != nil {
		return e.outer.Get(name)
	}
	return nil, fmt.Errorf("ReferenceError: %s is not defined", name)
}

// Set updates a variable value in the scope where it was declared.
func (e *Environment) Set(name string, value *Value) error {
	if binding, ok := e.store[name]; ok {
		if !binding.Mutable {
			return fmt.Errorf("AssignmentError: Assignment to constant variable '%s'", name)
		}
		binding.Value = value
		return nil
	}
	if e.outer != nil {
		return e.outer.Set(name, value)
	}
	return fmt.Errorf("ReferenceError: %s is not defined", name)
}

// SetInCurrentScope sets/creates a variable in the current scope (for var
// hoisting and sloppy auto-globals).
func (e *Environment) SetInCurrentScope(name string, value *Value) {
	if binding, ok := e.store[name]; ok {
		binding.Value = value
		return
	}
	e.store[name] = &Binding{
		Value:   value,
		Mutable: true,
		Kind:    "var",
	}
}

// HasInCurrentScope reports whether the name is bound in this scope,
// without walking the chain.
func (e *Environment) HasInCurrentScope(name string) bool {
	_, ok := e.store[name]
	return ok
}

// Has reports whether the name resolves anywhere on the chain.
func (e *Environment) Has(name string) bool {
	if _, ok := e.store[name]; ok {
		return true
	}
	if e.outer != nil {
		return e.outer.Has(name)
	}
	return false
}

// GetFunctionScope walks up to find the nearest function scope (or global).
func (e *Environment) GetFunctionScope() *Environment {
	if !e.isBlock {
		return e
	}
	if e.outer != nil {
		return e.outer.GetFunctionScope()
	}
	return e
}

// IsBlock returns true if this is a block scope (not a function/program scope).
func (e *Environment) IsBlock() bool {
	return e.isBlock
}

// Outer returns the parent environment.
func (e *Environment) Outer() *Environment {
	return e.outer
}
