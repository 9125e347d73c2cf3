package interpreter

import (
	"github.com/example/pulse/ast"
	"github.com/example/pulse/runtime"
)

// hoist prepares a statement list for execution:
//  1. every `var` name anywhere under these statements is installed as
//     undefined in the nearest function/global environment
//  2. function declarations at this level are bound with their values
//
// let/const are untouched; they bind where their declaration executes.
func (interp *Interpreter) hoist(stmts []ast.Statement, env *runtime.Environment) {
	funcScope := env.GetFunctionScope()
	collectVarDecls(stmts, funcScope)

	for _, stmt := range stmts {
		fd, ok := stmt.(*ast.FunctionDeclaration)
		if !ok {
			ex, isExport := stmt.(*ast.ExportStatement)
			if !isExport {
				continue
			}
			fd, ok = ex.Declaration.(*ast.FunctionDeclaration)
			if !ok {
				continue
			}
		}
		fnVal := interp.createFunction(fd.Name.Value, fd.Params, fd.Body, env)
		env.Declare(fd.Name.Value, "function", fnVal)
	}
}

func collectVarDecls(stmts []ast.Statement, funcScope *runtime.Environment) {
	for _, stmt := range stmts {
		collectVarDeclsFromStmt(stmt, funcScope)
	}
}

func collectVarDeclsFromStmt(stmt ast.Statement, funcScope *runtime.Environment) {
	switch s := stmt.(type) {
	case *ast.VariableDeclaration:
		hoistVarNames(s, funcScope)
	case *ast.BlockStatement:
		collectVarDecls(s.Statements, funcScope)
	case *ast.IfStatement:
		if s.Consequence != nil {
			collectVarDecls(s.Consequence.Statements, funcScope)
		}
		if s.Alternative != nil {
			collectVarDeclsFromStmt(s.Alternative, funcScope)
		}
	case *ast.WhileStatement:
		collectVarDeclsFromStmt(s.Body, funcScope)
	case *ast.DoWhileStatement:
		collectVarDeclsFromStmt(s.Body, funcScope)
	case *ast.ForStatement:
		if init, ok := s.Init.(ast.Statement); ok {
			collectVarDeclsFromStmt(init, funcScope)
		}
		collectVarDeclsFromStmt(s.Body, funcScope)
	case *ast.ForInStatement:
		if left, ok := s.Left.(*ast.VariableDeclaration); ok {
			hoistVarNames(left, funcScope)
		}
		collectVarDeclsFromStmt(s.Body, funcScope)
	case *ast.ForOfStatement:
		if left, ok := s.Left.(*ast.VariableDeclaration); ok {
			hoistVarNames(left, funcScope)
		}
		collectVarDeclsFromStmt(s.Body, funcScope)
	case *ast.SwitchStatement:
		for _, c := range s.Cases {
			collectVarDecls(c.Consequent, funcScope)
		}
	case *ast.TryStatement:
		collectVarDecls(s.Block.Statements, funcScope)
		if s.Handler != nil {
			collectVarDecls(s.Handler.Body.Statements, funcScope)
		}
		if s.Finalizer != nil {
			collectVarDecls(s.Finalizer.Statements, funcScope)
		}
	case *ast.WhenStatement:
		for _, clause := range s.Clauses {
			collectVarDecls(clause.Body.Statements, funcScope)
		}
		if s.Otherwise != nil {
			collectVarDecls(s.Otherwise.Statements, funcScope)
		}
	case *ast.ExportStatement:
		if s.Declaration != nil {
			collectVarDeclsFromStmt(s.Declaration, funcScope)
		}
	}
}

// hoistVarNames installs each var name as undefined unless the binding is
// already live in the function scope; re-entering a block must not reset a
// value assigned earlier in the function.
func hoistVarNames(s *ast.VariableDeclaration, funcScope *runtime.Environment) {
	if s.Kind != "var" {
		return
	}
	for _, decl := range s.Declarations {
		if funcScope.HasInCurrentScope(decl.Name.Value) {
			continue
		}
		funcScope.SetInCurrentScope(decl.Name.Value, runtime.Undefined)
	}
}
