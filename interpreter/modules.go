package interpreter

import (
	"fmt"

	"github.com/example/pulse/ast"
	"github.com/example/pulse/runtime"
)

func (interp *Interpreter) execImport(s *ast.ImportStatement, env *runtime.Environment) (*runtime.Value, signal) {
	exports, sig := interp.loadModule(s.Source)
	if sig.typ != sigNone {
		return nil, sig
	}

	if s.Default != nil {
		val, ok := exports["default"]
		if !ok {
			return nil, signal{typ: sigThrow, value: makeErrorObject("ReferenceError", fmt.Sprintf("module %q has no default export", s.Source))}
		}
		if err := env.Declare(s.Default.Value, "const", val); err != nil {
			return nil, signal{typ: sigThrow, value: errorFromGoError(err)}
		}
	}

	for _, spec := range s.Named {
		val, ok := exports[spec.Name.Value]
		if !ok {
			return nil, signal{typ: sigThrow, value: makeErrorObject("ReferenceError", fmt.Sprintf("module %q does not export %q", s.Source, spec.Name.Value))}
		}
		if err := env.Declare(spec.Alias.Value, "const", val); err != nil {
			return nil, signal{typ: sigThrow, value: errorFromGoError(err)}
		}
	}
	return nil, signal{}
}

func (interp *Interpreter) execExport(s *ast.ExportStatement, env *runtime.Environment) (*runtime.Value, signal) {
	if interp.exports == nil {
		// top-level script: exports are collected but unobservable
		interp.exports = make(map[string]*runtime.Value)
	}

	switch {
	case s.Declaration != nil:
		if _, sig := interp.execStatement(s.Declaration, env); sig.typ != sigNone {
			return nil, sig
		}
		for _, name := range declaredNames(s.Declaration) {
			val, err := env.Get(name)
			if err != nil {
				return nil, signal{typ: sigThrow, value: errorFromGoError(err)}
			}
			interp.exports[name] = val
		}

	case s.Default != nil:
		val, sig := interp.evalExpression(s.Default, env)
		if sig.typ != sigNone {
			return nil, sig
		}
		interp.exports["default"] = val

	case s.Source != "":
		// re-export: pull the names straight out of the other module
		sourceExports, sig := interp.loadModule(s.Source)
		if sig.typ != sigNone {
			return nil, sig
		}
		for _, spec := range s.Named {
			val, ok := sourceExports[spec.Name.Value]
			if !ok {
				return nil, signal{typ: sigThrow, value: makeErrorObject("ReferenceError", fmt.Sprintf("module %q does not export %q", s.Source, spec.Name.Value))}
			}
			interp.exports[spec.Alias.Value] = val
		}

	default:
		for _, spec := range s.Named {
			val, err := env.Get(spec.Name.Value)
			if err != nil {
				return nil, signal{typ: sigThrow, value: errorFromGoError(err)}
			}
			interp.exports[spec.Alias.Value] = val
		}
	}
	return nil, signal{}
}

func (interp *Interpreter) loadModule(specifier string) (map[string]*runtime.Value, signal) {
	if interp.loader == nil {
		return nil, signal{typ: sigThrow, value: makeErrorObject("Error", "no module loader configured")}
	}
	path, err := interp.loader.Resolve(specifier, interp.scriptPath)
	if err != nil {
		return nil, signal{typ: sigThrow, value: errorFromGoError(err)}
	}
	exports, err := interp.loader.Load(path)
	if err != nil {
		return nil, signal{typ: sigThrow, value: errorFromGoError(err)}
	}
	return exports, signal{}
}

func declaredNames(stmt ast.Statement) []string {
	switch s := stmt.(type) {
	case *ast.VariableDeclaration:
		names := make([]string, 0, len(s.Declarations))
		for _, decl := range s.Declarations {
			names = append(names, decl.Name.Value)
		}
		return names
	case *ast.FunctionDeclaration:
		return []string{s.Name.Value}
	}
	return nil
}
