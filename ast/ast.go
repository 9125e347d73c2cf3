package ast

import "github.com/example/pulse/token"

// Node is the interface all AST nodes implement.
type Node interface {
	TokenLiteral() string
	nodeType() string
}

type Statement interface {
	Node
	statementNode()
}

type Expression interface {
	Node
	expressionNode()
}

// Program is the root node of every AST.
type Program struct {
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}
func (p *Program) nodeType() string { return "Program" }

// ---------- Statements ----------

type VariableDeclaration struct {
	Token        token.Token // var, let, or const
	Kind         string      // "var", "let", "const"
	Declarations []*VariableDeclarator
}

type VariableDeclarator struct {
	Token token.Token
	Name  *Identifier
	Value Expression // may be nil
}

type ExpressionStatement struct {
	Token      token.Token
	Expression Expression
}

type BlockStatement struct {
	Token      token.Token
	Statements []Statement
}

type ReturnStatement struct {
	Token token.Token
	Value Expression // may be nil
}

type IfStatement struct {
	Token       token.Token
	Condition   Expression
	Consequence *BlockStatement
	Alternative Statement // may be nil; can be *IfStatement or *BlockStatement
}

type WhileStatement struct {
	Token     token.Token
	Condition Expression
	Body      Statement
}

type DoWhileStatement struct {
	Token     token.Token
	Body      Statement
	Condition Expression
}

type ForStatement struct {
	Token  token.Token
	Init   Node       // Statement or Expression, may be nil
	Test   Expression // may be nil
	Update Expression // may be nil
	Body   Statement
}

type ForInStatement struct {
	Token token.Token
	Left  Node // VariableDeclaration or Expression
	Right Expression
	Body  Statement
}

type ForOfStatement struct {
	Token token.Token
	Left  Node
	Right Expression
	Body  Statement
}

type BreakStatement struct {
	Token token.Token
}

type ContinueStatement struct {
	Token token.Token
}

type SwitchStatement struct {
	Token        token.Token
	Discriminant Expression
	Cases        []*SwitchCase
}

type SwitchCase struct {
	Token      token.Token
	Test       Expression // nil for default
	Consequent []Statement
}

type ThrowStatement struct {
	Token    token.Token
	Argument Expression
}

type TryStatement struct {
	Token     token.Token
	Block     *BlockStatement
	Handler   *CatchClause    // may be nil
	Finalizer *BlockStatement // may be nil
}

type CatchClause struct {
	Token token.Token
	Param *Identifier // may be nil
	Body  *BlockStatement
}

type FunctionDeclaration struct {
	Token  token.Token
	Name   *Identifier
	Params []*Identifier
	Body   *BlockStatement
}

type EmptyStatement struct {
	Token token.Token
}

// ObserveStatement registers a handler against a single identifier or
// property-path target: `observe t fn` / `observe obj.x fn`.
type ObserveStatement struct {
	Token   token.Token
	Target  Expression // *Identifier or non-computed *MemberExpression
	Handler Expression
}

// MultiObserveStatement registers one handler against several variables at
// once: `observe (a, b) fn`. The handler receives a changes object keyed by
// variable name.
type MultiObserveStatement struct {
	Token   token.Token
	Targets []*Identifier
	Handler Expression
}

// WhenStatement is a first-match-wins chain of guarded blocks with an
// optional trailing otherwise. Consecutive `when` clauses and a trailing
// `otherwise` are grouped into one statement at parse time.
type WhenStatement struct {
	Token     token.Token
	Clauses   []*WhenClause
	Otherwise *BlockStatement // may be nil
}

type WhenClause struct {
	Token     token.Token
	Condition Expression
	Body      *BlockStatement
}

type ImportStatement struct {
	Token   token.Token
	Default *Identifier // may be nil
	Named   []*ImportSpecifier
	Source  string
}

type ImportSpecifier struct {
	Token token.Token
	Name  *Identifier
	Alias *Identifier // local binding; equals Name when not renamed
}

type ExportStatement struct {
	Token       token.Token
	Declaration Statement  // exported declaration, may be nil
	Default     Expression // export default expr, may be nil
	Named       []*ExportSpecifier
	Source      string // non-empty for re-exports: export { a as b } from "m"
}

type ExportSpecifier struct {
	Token token.Token
	Name  *Identifier
	Alias *Identifier // exported name; equals Name when not renamed
}

// ---------- Expressions ----------

type Identifier struct {
	Token token.Token
	Value string
}

type NumberLiteral struct {
	Token token.Token
	Value float64
}

type StringLiteral struct {
	Token token.Token
	Value string
}

type BooleanLiteral struct {
	Token token.Token
	Value bool
}

type NullLiteral struct {
	Token token.Token
}

type UndefinedLiteral struct {
	Token token.Token
}

type ArrayLiteral struct {
	Token    token.Token
	Elements []Expression
}

type ObjectLiteral struct {
	Token      token.Token
	Properties []*Property
}

type Property struct {
	Token token.Token
	Key   Expression // Identifier, StringLiteral, or NumberLiteral
	Value Expression
}

type FunctionExpression struct {
	Token  token.Token
	Name   *Identifier // may be nil for anonymous
	Params []*Identifier
	Body   *BlockStatement
}

type ArrowFunctionExpression struct {
	Token  token.Token
	Params []*Identifier
	Body   Node // *BlockStatement or Expression
}

type UnaryExpression struct {
	Token    token.Token
	Operator string
	Operand  Expression
	Prefix   bool
}

type UpdateExpression struct {
	Token    token.Token
	Operator string // ++ or --
	Operand  Expression
	Prefix   bool
}

type BinaryExpression struct {
	Token    token.Token
	Operator string
	Left     Expression
	Right    Expression
}

type LogicalExpression struct {
	Token    token.Token
	Operator string // && or ||
	Left     Expression
	Right    Expression
}

type AssignmentExpression struct {
	Token    token.Token
	Operator string
	Left     Expression
	Right    Expression
}

type ConditionalExpression struct {
	Token      token.Token
	Test       Expression
	Consequent Expression
	Alternate  Expression
}

type CallExpression struct {
	Token     token.Token
	Callee    Expression
	Arguments []Expression
}

type MemberExpression struct {
	Token    token.Token
	Object   Expression
	Property Expression
	Computed bool
}

type TemplateLiteralExpr struct {
	Token       token.Token
	Quasis      []*TemplateElement
	Expressions []Expression
}

type TemplateElement struct {
	Token token.Token
	Value string
	Tail  bool
}

// --- Node interface implementations ---
// Statement markers
func (s *VariableDeclaration) statementNode()   {}
func (s *ExpressionStatement) statementNode()   {}
func (s *BlockStatement) statementNode()        {}
func (s *ReturnStatement) statementNode()       {}
func (s *IfStatement) statementNode()           {}
func (s *WhileStatement) statementNode()        {}
func (s *DoWhileStatement) statementNode()      {}
func (s *ForStatement) statementNode()          {}
func (s *ForInStatement) statementNode()        {}
func (s *ForOfStatement) statementNode()        {}
func (s *BreakStatement) statementNode()        {}
func (s *ContinueStatement) statementNode()     {}
func (s *SwitchStatement) statementNode()       {}
func (s *ThrowStatement) statementNode()        {}
func (s *TryStatement) statementNode()          {}
func (s *FunctionDeclaration) statementNode()   {}
func (s *EmptyStatement) statementNode()        {}
func (s *ObserveStatement) statementNode()      {}
func (s *MultiObserveStatement) statementNode() {}
func (s *WhenStatement) statementNode()         {}
func (s *ImportStatement) statementNode()       {}
func (s *ExportStatement) statementNode()       {}

// Expression markers
func (e *Identifier) expressionNode()              {}
func (e *NumberLiteral) expressionNode()           {}
func (e *StringLiteral) expressionNode()           {}
func (e *BooleanLiteral) expressionNode()          {}
func (e *NullLiteral) expressionNode()             {}
func (e *UndefinedLiteral) expressionNode()        {}
func (e *ArrayLiteral) expressionNode()            {}
func (e *ObjectLiteral) expressionNode()           {}
func (e *FunctionExpression) expressionNode()      {}
func (e *ArrowFunctionExpression) expressionNode() {}
func (e *UnaryExpression) expressionNode()         {}
func (e *UpdateExpression) expressionNode()        {}
func (e *BinaryExpression) expressionNode()        {}
func (e *LogicalExpression) expressionNode()       {}
func (e *AssignmentExpression) expressionNode()    {}
func (e *ConditionalExpression) expressionNode()   {}
func (e *CallExpression) expressionNode()          {}
func (e *MemberExpression) expressionNode()        {}
func (e *TemplateLiteralExpr) expressionNode()     {}

// TokenLiteral implementations
func (s *VariableDeclaration) TokenLiteral() string   { return s.Token.Literal }
func (s *VariableDeclarator) TokenLiteral() string    { return s.Token.Literal }
func (s *ExpressionStatement) TokenLiteral() string   { return s.Token.Literal }
func (s *BlockStatement) TokenLiteral() string        { return s.Token.Literal }
func (s *ReturnStatement) TokenLiteral() string       { return s.Token.Literal }
func (s *IfStatement) TokenLiteral() string           { return s.Token.Literal }
func (s *WhileStatement) TokenLiteral() string        { return s.Token.Literal }
func (s *DoWhileStatement) TokenLiteral() string      { return s.Token.Literal }
func (s *ForStatement) TokenLiteral() string          { return s.Token.Literal }
func (s *ForInStatement) TokenLiteral() string        { return s.Token.Literal }
func (s *ForOfStatement) TokenLiteral() string        { return s.Token.Literal }
func (s *BreakStatement) TokenLiteral() string        { return s.Token.Literal }
func (s *ContinueStatement) TokenLiteral() string     { return s.Token.Literal }
func (s *SwitchStatement) TokenLiteral() string       { return s.Token.Literal }
func (s *ThrowStatement) TokenLiteral() string        { return s.Token.Literal }
func (s *TryStatement) TokenLiteral() string          { return s.Token.Literal }
func (s *CatchClause) TokenLiteral() string           { return s.Token.Literal }
func (s *FunctionDeclaration) TokenLiteral() string   { return s.Token.Literal }
func (s *EmptyStatement) TokenLiteral() string        { return s.Token.Literal }
func (s *ObserveStatement) TokenLiteral() string      { return s.Token.Literal }
func (s *MultiObserveStatement) TokenLiteral() string { return s.Token.Literal }
func (s *WhenStatement) TokenLiteral() string         { return s.Token.Literal }
func (s *WhenClause) TokenLiteral() string            { return s.Token.Literal }
func (s *ImportStatement) TokenLiteral() string       { return s.Token.Literal }
func (s *ExportStatement) TokenLiteral() string       { return s.Token.Literal }

func (e *Identifier) TokenLiteral() string              { return e.Token.Literal }
func (e *NumberLiteral) TokenLiteral() string           { return e.Token.Literal }
func (e *StringLiteral) TokenLiteral() string           { return e.Token.Literal }
func (e *BooleanLiteral) TokenLiteral() string          { return e.Token.Literal }
func (e *NullLiteral) TokenLiteral() string             { return e.Token.Literal }
func (e *UndefinedLiteral) TokenLiteral() string        { return e.Token.Literal }
func (e *ArrayLiteral) TokenLiteral() string            { return e.Token.Literal }
func (e *ObjectLiteral) TokenLiteral() string           { return e.Token.Literal }
func (e *Property) TokenLiteral() string                { return e.Token.Literal }
func (e *FunctionExpression) TokenLiteral() string      { return e.Token.Literal }
func (e *ArrowFunctionExpression) TokenLiteral() string { return e.Token.Literal }
func (e *UnaryExpression) TokenLiteral() string         { return e.Token.Literal }
func (e *UpdateExpression) TokenLiteral() string        { return e.Token.Literal }
func (e *BinaryExpression) TokenLiteral() string        { return e.Token.Literal }
func (e *LogicalExpression) TokenLiteral() string       { return e.Token.Literal }
func (e *AssignmentExpression) TokenLiteral() string    { return e.Token.Literal }
func (e *ConditionalExpression) TokenLiteral() string   { return e.Token.Literal }
func (e *CallExpression) TokenLiteral() string          { return e.Token.Literal }
func (e *MemberExpression) TokenLiteral() string        { return e.Token.Literal }
func (e *TemplateLiteralExpr) TokenLiteral() string     { return e.Token.Literal }
func (e *TemplateElement) TokenLiteral() string         { return e.Token.Literal }
func (e *SwitchCase) TokenLiteral() string              { return e.Token.Literal }

// nodeType implementations
func (s *VariableDeclaration) nodeType() string   { return "VariableDeclaration" }
func (s *VariableDeclarator) nodeType() string    { return "VariableDeclarator" }
func (s *ExpressionStatement) nodeType() string   { return "ExpressionStatement" }
func (s *BlockStatement) nodeType() string        { return "BlockStatement" }
func (s *ReturnStatement) nodeType() string       { return "ReturnStatement" }
func (s *IfStatement) nodeType() string           { return "IfStatement" }
func (s *WhileStatement) nodeType() string        { return "WhileStatement" }
func (s *DoWhileStatement) nodeType() string      { return "DoWhileStatement" }
func (s *ForStatement) nodeType() string          { return "ForStatement" }
func (s *ForInStatement) nodeType() string        { return "ForInStatement" }
func (s *ForOfStatement) nodeType() string        { return "ForOfStatement" }
func (s *BreakStatement) nodeType() string        { return "BreakStatement" }
func (s *ContinueStatement) nodeType() string     { return "ContinueStatement" }
func (s *SwitchStatement) nodeType() string       { return "SwitchStatement" }
func (s *ThrowStatement) nodeType() string        { return "ThrowStatement" }
func (s *TryStatement) nodeType() string          { return "TryStatement" }
func (s *CatchClause) nodeType() string           { return "CatchClause" }
func (s *FunctionDeclaration) nodeType() string   { return "FunctionDeclaration" }
func (s *EmptyStatement) nodeType() string        { return "EmptyStatement" }
func (s *ObserveStatement) nodeType() string      { return "ObserveStatement" }
func (s *MultiObserveStatement) nodeType() string { return "MultiObserveStatement" }
func (s *WhenStatement) nodeType() string         { return "WhenStatement" }
func (s *WhenClause) nodeType() string            { return "WhenClause" }
func (s *ImportStatement) nodeType() string       { return "ImportStatement" }
func (s *ExportStatement) nodeType() string       { return "ExportStatement" }
func (s *SwitchCase) nodeType() string            { return "SwitchCase" }

func (e *Identifier) nodeType() string              { return "Identifier" }
func (e *NumberLiteral) nodeType() string           { return "NumberLiteral" }
func (e *StringLiteral) nodeType() string           { return "StringLiteral" }
func (e *BooleanLiteral) nodeType() string          { return "BooleanLiteral" }
func (e *NullLiteral) nodeType() string             { return "NullLiteral" }
func (e *UndefinedLiteral) nodeType() string        { return "UndefinedLiteral" }
func (e *ArrayLiteral) nodeType() string            { return "ArrayLiteral" }
func (e *ObjectLiteral) nodeType() string           { return "ObjectLiteral" }
func (e *Property) nodeType() string                { return "Property" }
func (e *FunctionExpression) nodeType() string      { return "FunctionExpression" }
func (e *ArrowFunctionExpression) nodeType() string { return "ArrowFunctionExpression" }
func (e *UnaryExpression) nodeType() string         { return "UnaryExpression" }
func (e *UpdateExpression) nodeType() string        { return "UpdateExpression" }
func (e *BinaryExpression) nodeType() string        { return "BinaryExpression" }
func (e *LogicalExpression) nodeType() string       { return "LogicalExpression" }
func (e *AssignmentExpression) nodeType() string    { return "AssignmentExpression" }
func (e *ConditionalExpression) nodeType() string   { return "ConditionalExpression" }
func (e *CallExpression) nodeType() string          { return "CallExpression" }
func (e *MemberExpression) nodeType() string        { return "MemberExpression" }
func (e *TemplateLiteralExpr) nodeType() string     { return "TemplateLiteralExpr" }
func (e *TemplateElement) nodeType() string         { return "TemplateElement" }
