package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/example/pulse/ast"
	"github.com/example/pulse/lexer"
	"github.com/example/pulse/token"
)

// Precedence levels, lowest to highest binding. The conditional operator
// binds loosest; assignment sits between it and arrow functions.
const (
	_ int = iota
	precConditional
	precAssignment
	precArrow
	precLogicalOr
	precLogicalAnd
	precBitwiseOr
	precBitwiseXor
	precBitwiseAnd
	precEquality
	precRelational
	precShift
	precAdditive
	precMultiplicative
	precUnary
	precPostfix
	precCall
	precMember
)

type Parser struct {
	l         *lexer.Lexer
	curToken  token.Token
	peekToken token.Token
	err       error
	noIn      bool // suppress 'in' as binary operator (for-in disambiguation)
}

func New(source string) *Parser {
	p := &Parser{
		l: lexer.New(source),
	}
	p.nextToken()
	p.nextToken()
	return p
}

// Parse runs the whole pipeline over source. The first lex or grammar
// failure aborts with a positioned error.
func Parse(source string) (*ast.Program, error) {
	return New(source).ParseProgram()
}

func (p *Parser) ParseProgram() (*ast.Program, error) {
	program := &ast.Program{}
	for p.curToken.Type != token.EOF && p.err == nil {
		stmt := p.parseStatement()
		if p.err != nil {
			break
		}
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
	}
	if p.err != nil {
		return nil, p.err
	}
	return program, nil
}

// IsIncomplete reports whether a parse failure looks like truncated input
// rather than a genuine grammar violation. The REPL uses this to prompt for
// a continuation line.
func IsIncomplete(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "got EOF") ||
		strings.Contains(msg, "unterminated template literal") ||
		strings.Contains(msg, "unterminated block comment")
}

// snapshot and restore implement the parser's single backtracking point,
// used only for the parenthesized-arrow-head ambiguity. The lexer value and
// both lookahead tokens are copied wholesale.
type parserState struct {
	lex  lexer.Lexer
	cur  token.Token
	peek token.Token
	err  error
}

func (p *Parser) snapshot() parserState {
	return parserState{lex: *p.l, cur: p.curToken, peek: p.peekToken, err: p.err}
}

func (p *Parser) restore(s parserState) {
	*p.l = s.lex
	p.curToken = s.cur
	p.peekToken = s.peek
	p.err = s.err
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
	if p.peekToken.Type == token.Illegal && p.err == nil {
		p.err = fmt.Errorf("lex error at %d:%d: %s", p.peekToken.Line, p.peekToken.Column, p.peekToken.Literal)
	}
}

func (p *Parser) curTokenIs(t token.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t token.TokenType) bool {
	return p.peekToken.Type == t
}

func (p *Parser) expect(t token.TokenType) bool {
	if p.curTokenIs(t) {
		p.nextToken()
		return true
	}
	p.addError("expected %s, got %s (%q)", tokenName(t), tokenName(p.curToken.Type), p.curToken.Literal)
	return false
}

func (p *Parser) addError(format string, args ...interface{}) {
	if p.err != nil {
		return
	}
	msg := fmt.Sprintf(format, args...)
	p.err = fmt.Errorf("parse error at %d:%d: %s", p.curToken.Line, p.curToken.Column, msg)
}

// parseStatement dispatches to the appropriate statement parser.
func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case token.Var, token.Let, token.Const:
		return p.parseVariableDeclaration()
	case token.LeftBrace:
		return p.parseBlockStatement()
	case token.Return:
		return p.parseReturnStatement()
	case token.If:
		return p.parseIfStatement()
	case token.While:
		return p.parseWhileStatement()
	case token.Do:
		return p.parseDoWhileStatement()
	case token.For:
		return p.parseForStatement()
	case token.Break:
		return p.parseBreakStatement()
	case token.Continue:
		return p.parseContinueStatement()
	case token.Switch:
		return p.parseSwitchStatement()
	case token.Throw:
		return p.parseThrowStatement()
	case token.Try:
		return p.parseTryStatement()
	case token.Function:
		return p.parseFunctionDeclaration()
	case token.Observe:
		return p.parseObserveStatement()
	case token.When:
		return p.parseWhenStatement()
	case token.Otherwise:
		p.addError("otherwise without a preceding when")
		return nil
	case token.Import:
		return p.parseImportStatement()
	case token.Export:
		return p.parseExportStatement()
	case token.Semicolon:
		return p.parseEmptyStatement()
	default:
		return p.parseExpressionStatement()
	}
}

// ---------- Statement Parsers ----------

func (p *Parser) parseVariableDeclaration() *ast.VariableDeclaration {
	stmt := &ast.VariableDeclaration{Token: p.curToken, Kind: p.curToken.Literal}
	p.nextToken() // consume var/let/const

	for p.err == nil {
		decl := p.parseVariableDeclarator()
		stmt.Declarations = append(stmt.Declarations, decl)
		if !p.curTokenIs(token.Comma) {
			break
		}
		p.nextToken() // consume comma
	}

	p.consumeSemicolon()
	return stmt
}

func (p *Parser) parseVariableDeclarator() *ast.VariableDeclarator {
	decl := &ast.VariableDeclarator{Token: p.curToken}
	decl.Name = p.parseIdentifierName()

	if p.curTokenIs(token.Assign) {
		p.nextToken() // consume =
		decl.Value = p.parseAssignmentExpression()
	}
	return decl
}

func (p *Parser) parseIdentifierName() *ast.Identifier {
	if !p.curTokenIs(token.Identifier) {
		p.addError("expected identifier, got %s (%q)", tokenName(p.curToken.Type), p.curToken.Literal)
		tok := p.curToken
		p.nextToken()
		return &ast.Identifier{Token: tok, Value: tok.Literal}
	}
	ident := &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
	p.nextToken()
	return ident
}

func (p *Parser) parseBlockStatement() *ast.BlockStatement {
	block := &ast.BlockStatement{Token: p.curToken}
	p.nextToken() // consume {

	for !p.curTokenIs(token.RightBrace) && !p.curTokenIs(token.EOF) && p.err == nil {
		stmt := p.parseStatement()
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
	}
	p.expect(token.RightBrace)
	return block
}

func (p *Parser) parseReturnStatement() *ast.ReturnStatement {
	stmt := &ast.ReturnStatement{Token: p.curToken}
	p.nextToken() // consume return

	if !p.curTokenIs(token.Semicolon) && !p.curTokenIs(token.RightBrace) && !p.curTokenIs(token.EOF) {
		stmt.Value = p.parseExpression(0)
	}
	p.consumeSemicolon()
	return stmt
}

func (p *Parser) parseIfStatement() *ast.IfStatement {
	stmt := &ast.IfStatement{Token: p.curToken}
	p.nextToken() // consume if
	p.expect(token.LeftParen)
	stmt.Condition = p.parseExpression(0)
	p.expect(token.RightParen)

	if p.curTokenIs(token.LeftBrace) {
		stmt.Consequence = p.parseBlockStatement()
	} else {
		inner := p.parseStatement()
		stmt.Consequence = &ast.BlockStatement{
			Token:      p.curToken,
			Statements: []ast.Statement{inner},
		}
	}

	if p.curTokenIs(token.Else) {
		p.nextToken()
		if p.curTokenIs(token.If) {
			stmt.Alternative = p.parseIfStatement()
		} else if p.curTokenIs(token.LeftBrace) {
			stmt.Alternative = p.parseBlockStatement()
		} else {
			inner := p.parseStatement()
			stmt.Alternative = &ast.BlockStatement{
				Token:      p.curToken,
				Statements: []ast.Statement{inner},
			}
		}
	}
	return stmt
}

func (p *Parser) parseWhileStatement() *ast.WhileStatement {
	stmt := &ast.WhileStatement{Token: p.curToken}
	p.nextToken() // consume while
	p.expect(token.LeftParen)
	stmt.Condition = p.parseExpression(0)
	p.expect(token.RightParen)
	stmt.Body = p.parseStatement()
	return stmt
}

func (p *Parser) parseDoWhileStatement() *ast.DoWhileStatement {
	stmt := &ast.DoWhileStatement{Token: p.curToken}
	p.nextToken() // consume do
	stmt.Body = p.parseStatement()
	p.expect(token.While)
	p.expect(token.LeftParen)
	stmt.Condition = p.parseExpression(0)
	p.expect(token.RightParen)
	p.consumeSemicolon()
	return stmt
}

func (p *Parser) parseForStatement() ast.Statement {
	tok := p.curToken
	p.nextToken() // consume for
	p.expect(token.LeftParen)

	// for (var/let/const ...
	if p.curTokenIs(token.Var) || p.curTokenIs(token.Let) || p.curTokenIs(token.Const) {
		return p.parseForWithDeclaration(tok)
	}

	// for (; ...
	if p.curTokenIs(token.Semicolon) {
		p.nextToken()
		return p.parseForStandard(tok, nil)
	}

	// for (expr ...
	// Parse with noIn to prevent 'in' from being consumed as binary operator
	p.noIn = true
	expr := p.parseExpression(0)
	p.noIn = false

	if p.curTokenIs(token.In) {
		p.nextToken()
		right := p.parseExpression(0)
		p.expect(token.RightParen)
		body := p.parseStatement()
		return &ast.ForInStatement{Token: tok, Left: expr, Right: right, Body: body}
	}
	if p.curTokenIs(token.Of) {
		p.nextToken()
		right := p.parseExpression(0)
		p.expect(token.RightParen)
		body := p.parseStatement()
		return &ast.ForOfStatement{Token: tok, Left: expr, Right: right, Body: body}
	}

	p.expect(token.Semicolon)
	return p.parseForStandard(tok, &ast.ExpressionStatement{Token: tok, Expression: expr})
}

func (p *Parser) parseForWithDeclaration(tok token.Token) ast.Statement {
	declToken := p.curToken
	kind := p.curToken.Literal
	p.nextToken() // consume var/let/const

	decl := &ast.VariableDeclaration{Token: declToken, Kind: kind}
	d := &ast.VariableDeclarator{Token: p.curToken}
	d.Name = p.parseIdentifierName()

	// for-in / for-of
	if p.curTokenIs(token.In) {
		decl.Declarations = append(decl.Declarations, d)
		p.nextToken()
		right := p.parseExpression(0)
		p.expect(token.RightParen)
		body := p.parseStatement()
		return &ast.ForInStatement{Token: tok, Left: decl, Right: right, Body: body}
	}
	if p.curTokenIs(token.Of) {
		decl.Declarations = append(decl.Declarations, d)
		p.nextToken()
		right := p.parseExpression(0)
		p.expect(token.RightParen)
		body := p.parseStatement()
		return &ast.ForOfStatement{Token: tok, Left: decl, Right: right, Body: body}
	}

	// standard for with initializer
	if p.curTokenIs(token.Assign) {
		p.nextToken()
		d.Value = p.parseAssignmentExpression()
	}
	decl.Declarations = append(decl.Declarations, d)

	for p.curTokenIs(token.Comma) && p.err == nil {
		p.nextToken()
		d2 := p.parseVariableDeclarator()
		decl.Declarations = append(decl.Declarations, d2)
	}

	p.expect(token.Semicolon)
	return p.parseForStandard(tok, decl)
}

func (p *Parser) parseForStandard(tok token.Token, init ast.Node) *ast.ForStatement {
	stmt := &ast.ForStatement{Token: tok, Init: init}

	if !p.curTokenIs(token.Semicolon) {
		stmt.Test = p.parseExpression(0)
	}
	p.expect(token.Semicolon)

	if !p.curTokenIs(token.RightParen) {
		stmt.Update = p.parseExpression(0)
	}
	p.expect(token.RightParen)
	stmt.Body = p.parseStatement()
	return stmt
}

func (p *Parser) parseBreakStatement() *ast.BreakStatement {
	stmt := &ast.BreakStatement{Token: p.curToken}
	p.nextToken() // consume break
	p.consumeSemicolon()
	return stmt
}

func (p *Parser) parseContinueStatement() *ast.ContinueStatement {
	stmt := &ast.ContinueStatement{Token: p.curToken}
	p.nextToken() // consume continue
	p.consumeSemicolon()
	return stmt
}

func (p *Parser) parseSwitchStatement() *ast.SwitchStatement {
	stmt := &ast.SwitchStatement{Token: p.curToken}
	p.nextToken() // consume switch
	p.expect(token.LeftParen)
	stmt.Discriminant = p.parseExpression(0)
	p.expect(token.RightParen)
	p.expect(token.LeftBrace)

	for !p.curTokenIs(token.RightBrace) && !p.curTokenIs(token.EOF) && p.err == nil {
		sc := &ast.SwitchCase{Token: p.curToken}
		if p.curTokenIs(token.Case) {
			p.nextToken()
			sc.Test = p.parseExpression(0)
		} else if p.curTokenIs(token.Default) {
			p.nextToken()
		} else {
			p.addError("expected case or default, got %s", tokenName(p.curToken.Type))
			return stmt
		}
		p.expect(token.Colon)
		for !p.curTokenIs(token.Case) && !p.curTokenIs(token.Default) && !p.curTokenIs(token.RightBrace) && !p.curTokenIs(token.EOF) && p.err == nil {
			s := p.parseStatement()
			if s != nil {
				sc.Consequent = append(sc.Consequent, s)
			}
		}
		stmt.Cases = append(stmt.Cases, sc)
	}
	p.expect(token.RightBrace)
	return stmt
}

func (p *Parser) parseThrowStatement() *ast.ThrowStatement {
	stmt := &ast.ThrowStatement{Token: p.curToken}
	p.nextToken() // consume throw
	stmt.Argument = p.parseExpression(0)
	p.consumeSemicolon()
	return stmt
}

func (p *Parser) parseTryStatement() *ast.TryStatement {
	stmt := &ast.TryStatement{Token: p.curToken}
	p.nextToken() // consume try
	stmt.Block = p.parseBlockStatement()

	if p.curTokenIs(token.Catch) {
		stmt.Handler = &ast.CatchClause{Token: p.curToken}
		p.nextToken() // consume catch
		if p.curTokenIs(token.LeftParen) {
			p.nextToken()
			stmt.Handler.Param = p.parseIdentifierName()
			p.expect(token.RightParen)
		}
		stmt.Handler.Body = p.parseBlockStatement()
	}
	if p.curTokenIs(token.Finally) {
		p.nextToken()
		stmt.Finalizer = p.parseBlockStatement()
	}
	if stmt.Handler == nil && stmt.Finalizer == nil {
		p.addError("try without catch or finally")
	}
	return stmt
}

func (p *Parser) parseFunctionDeclaration() *ast.FunctionDeclaration {
	decl := &ast.FunctionDeclaration{Token: p.curToken}
	p.nextToken() // consume function

	decl.Name = p.parseIdentifierName()
	decl.Params = p.parseFunctionParams()
	decl.Body = p.parseBlockStatement()
	return decl
}

func (p *Parser) parseFunctionParams() []*ast.Identifier {
	p.expect(token.LeftParen)
	var params []*ast.Identifier

	for !p.curTokenIs(token.RightParen) && !p.curTokenIs(token.EOF) && p.err == nil {
		params = append(params, p.parseIdentifierName())
		if !p.curTokenIs(token.Comma) {
			break
		}
		p.nextToken()
	}
	p.expect(token.RightParen)
	return params
}

// parseObserveStatement handles both single-target and grouped forms:
//
//	observe count handler
//	observe obj.x handler
//	observe (a, b) handler
func (p *Parser) parseObserveStatement() ast.Statement {
	tok := p.curToken
	p.nextToken() // consume observe

	if p.curTokenIs(token.LeftParen) {
		p.nextToken() // consume (
		stmt := &ast.MultiObserveStatement{Token: tok}
		for !p.curTokenIs(token.RightParen) && !p.curTokenIs(token.EOF) && p.err == nil {
			stmt.Targets = append(stmt.Targets, p.parseIdentifierName())
			if !p.curTokenIs(token.Comma) {
				break
			}
			p.nextToken()
		}
		p.expect(token.RightParen)
		if len(stmt.Targets) == 0 {
			p.addError("observe needs at least one target")
		}
		stmt.Handler = p.parseAssignmentExpression()
		p.consumeSemicolon()
		return stmt
	}

	stmt := &ast.ObserveStatement{Token: tok}
	stmt.Target = p.parseObserveTarget()
	stmt.Handler = p.parseAssignmentExpression()
	p.consumeSemicolon()
	return stmt
}

// parseObserveTarget accepts an identifier or a non-computed member chain.
// It deliberately does not run the expression parser, so the handler
// expression that follows is never folded into the target.
func (p *Parser) parseObserveTarget() ast.Expression {
	var target ast.Expression = p.parseIdentifierName()
	for p.curTokenIs(token.Dot) && p.err == nil {
		tok := p.curToken
		p.nextToken() // consume .
		prop := p.parseIdentifierName()
		target = &ast.MemberExpression{Token: tok, Object: target, Property: prop}
	}
	return target
}

// parseWhenStatement groups consecutive when clauses and a trailing
// otherwise into one first-match-wins chain.
func (p *Parser) parseWhenStatement() *ast.WhenStatement {
	stmt := &ast.WhenStatement{Token: p.curToken}

	for p.curTokenIs(token.When) && p.err == nil {
		clause := &ast.WhenClause{Token: p.curToken}
		p.nextToken() // consume when
		p.expect(token.LeftParen)
		clause.Condition = p.parseExpression(0)
		p.expect(token.RightParen)
		if !p.curTokenIs(token.LeftBrace) {
			p.addError("expected { after when condition, got %s", tokenName(p.curToken.Type))
			return stmt
		}
		clause.Body = p.parseBlockStatement()
		stmt.Clauses = append(stmt.Clauses, clause)
	}

	if p.curTokenIs(token.Otherwise) {
		p.nextToken() // consume otherwise
		if !p.curTokenIs(token.LeftBrace) {
			p.addError("expected { after otherwise, got %s", tokenName(p.curToken.Type))
			return stmt
		}
		stmt.Otherwise = p.parseBlockStatement()
	}
	return stmt
}

func (p *Parser) parseImportStatement() *ast.ImportStatement {
	stmt := &ast.ImportStatement{Token: p.curToken}
	p.nextToken() // consume import

	if p.curTokenIs(token.Identifier) {
		stmt.Default = p.parseIdentifierName()
		if p.curTokenIs(token.Comma) {
			p.nextToken()
		}
	}

	if p.curTokenIs(token.LeftBrace) {
		p.nextToken() // consume {
		for !p.curTokenIs(token.RightBrace) && !p.curTokenIs(token.EOF) && p.err == nil {
			spec := &ast.ImportSpecifier{Token: p.curToken}
			spec.Name = p.parseIdentifierName()
			spec.Alias = spec.Name
			if p.curTokenIs(token.As) {
				p.nextToken()
				spec.Alias = p.parseIdentifierName()
			}
			stmt.Named = append(stmt.Named, spec)
			if !p.curTokenIs(token.Comma) {
				break
			}
			p.nextToken()
		}
		p.expect(token.RightBrace)
	}

	if stmt.Default == nil && len(stmt.Named) == 0 {
		p.addError("import needs a default or named bindings")
		return stmt
	}

	p.expect(token.From)
	if !p.curTokenIs(token.String) {
		p.addError("expected module path string, got %s", tokenName(p.curToken.Type))
		return stmt
	}
	stmt.Source = p.curToken.Literal
	p.nextToken()
	p.consumeSemicolon()
	return stmt
}

func (p *Parser) parseExportStatement() *ast.ExportStatement {
	stmt := &ast.ExportStatement{Token: p.curToken}
	p.nextToken() // consume export

	switch p.curToken.Type {
	case token.Default:
		p.nextToken()
		stmt.Default = p.parseAssignmentExpression()
		p.consumeSemicolon()
		return stmt

	case token.Var, token.Let, token.Const:
		stmt.Declaration = p.parseVariableDeclaration()
		return stmt

	case token.Function:
		stmt.Declaration = p.parseFunctionDeclaration()
		return stmt

	case token.LeftBrace:
		p.nextToken() // consume {
		for !p.curTokenIs(token.RightBrace) && !p.curTokenIs(token.EOF) && p.err == nil {
			spec := &ast.ExportSpecifier{Token: p.curToken}
			spec.Name = p.parseIdentifierName()
			spec.Alias = spec.Name
			if p.curTokenIs(token.As) {
				p.nextToken()
				spec.Alias = p.parseIdentifierName()
			}
			stmt.Named = append(stmt.Named, spec)
			if !p.curTokenIs(token.Comma) {
				break
			}
			p.nextToken()
		}
		p.expect(token.RightBrace)

		if p.curTokenIs(token.From) {
			p.nextToken()
			if !p.curTokenIs(token.String) {
				p.addError("expected module path string, got %s", tokenName(p.curToken.Type))
				return stmt
			}
			stmt.Source = p.curToken.Literal
			p.nextToken()
		}
		p.consumeSemicolon()
		return stmt

	default:
		p.addError("unexpected token after export: %s", tokenName(p.curToken.Type))
		return stmt
	}
}

func (p *Parser) parseEmptyStatement() *ast.EmptyStatement {
	stmt := &ast.EmptyStatement{Token: p.curToken}
	p.nextToken()
	return stmt
}

func (p *Parser) parseExpressionStatement() *ast.ExpressionStatement {
	stmt := &ast.ExpressionStatement{Token: p.curToken}
	stmt.Expression = p.parseExpression(0)
	p.consumeSemicolon()
	return stmt
}

// ---------- Expression Parsing (precedence climbing) ----------

func (p *Parser) parseExpression(minPrec int) ast.Expression {
	left := p.parsePrefixExpression()
	for p.err == nil {
		prec := p.infixPrecedence()
		if prec <= minPrec {
			break
		}
		left = p.parseInfixExpression(left, prec)
	}
	return left
}

func (p *Parser) parseAssignmentExpression() ast.Expression {
	return p.parseExpression(0)
}

// parseContainedExpression parses an expression inside parentheses, brackets,
// braces, or template interpolation, where 'in' regains its binary meaning
// even within a for-statement init.
func (p *Parser) parseContainedExpression() ast.Expression {
	saved := p.noIn
	p.noIn = false
	expr := p.parseExpression(0)
	p.noIn = saved
	return expr
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	switch p.curToken.Type {
	case token.Identifier:
		return p.parseIdentifierOrArrow()
	case token.Number:
		return p.parseNumberLiteral()
	case token.String:
		return p.parseStringLiteral()
	case token.True, token.False:
		return p.parseBooleanLiteral()
	case token.Null:
		return p.parseNullLiteral()
	case token.Undefined:
		return p.parseUndefinedLiteral()
	case token.LeftParen:
		return p.parseParenthesizedOrArrow()
	case token.LeftBracket:
		return p.parseArrayLiteral()
	case token.LeftBrace:
		return p.parseObjectLiteral()
	case token.Function:
		return p.parseFunctionExpression()
	case token.Not, token.BitwiseNot, token.Typeof:
		return p.parseUnaryExpression()
	case token.Plus, token.Minus:
		return p.parseUnaryExpression()
	case token.Increment, token.Decrement:
		return p.parsePrefixUpdateExpression()
	case token.NoSubstitutionTemplate:
		return p.parseNoSubstitutionTemplate()
	case token.TemplateHead:
		return p.parseTemplateLiteral()
	default:
		p.addError("unexpected token %s (%q)", tokenName(p.curToken.Type), p.curToken.Literal)
		tok := p.curToken
		p.nextToken()
		return &ast.Identifier{Token: tok, Value: tok.Literal}
	}
}

func (p *Parser) parseIdentifierOrArrow() ast.Expression {
	if p.curTokenIs(token.Identifier) && p.peekTokenIs(token.Arrow) {
		return p.parseSingleParamArrow()
	}
	return p.parseIdentifier()
}

func (p *Parser) parseSingleParamArrow() ast.Expression {
	param := &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
	p.nextToken() // consume identifier
	arrowTok := p.curToken
	p.nextToken() // consume =>
	arrow := &ast.ArrowFunctionExpression{Token: arrowTok, Params: []*ast.Identifier{param}}
	if p.curTokenIs(token.LeftBrace) {
		arrow.Body = p.parseBlockStatement()
	} else {
		arrow.Body = p.parseAssignmentExpression()
	}
	return arrow
}

func (p *Parser) parseIdentifier() *ast.Identifier {
	ident := &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
	p.nextToken()
	return ident
}

func (p *Parser) parseNumberLiteral() *ast.NumberLiteral {
	lit := &ast.NumberLiteral{Token: p.curToken}
	val, err := parseNumber(p.curToken.Literal)
	if err != nil {
		p.addError("invalid number: %s", p.curToken.Literal)
	}
	lit.Value = val
	p.nextToken()
	return lit
}

func parseNumber(s string) (float64, error) {
	if len(s) > 2 && (s[:2] == "0x" || s[:2] == "0X") {
		val, err := strconv.ParseUint(s[2:], 16, 64)
		return float64(val), err
	}
	return strconv.ParseFloat(s, 64)
}

func (p *Parser) parseStringLiteral() *ast.StringLiteral {
	lit := &ast.StringLiteral{Token: p.curToken, Value: p.curToken.Literal}
	p.nextToken()
	return lit
}

func (p *Parser) parseBooleanLiteral() *ast.BooleanLiteral {
	lit := &ast.BooleanLiteral{Token: p.curToken, Value: p.curTokenIs(token.True)}
	p.nextToken()
	return lit
}

func (p *Parser) parseNullLiteral() *ast.NullLiteral {
	lit := &ast.NullLiteral{Token: p.curToken}
	p.nextToken()
	return lit
}

func (p *Parser) parseUndefinedLiteral() *ast.UndefinedLiteral {
	lit := &ast.UndefinedLiteral{Token: p.curToken}
	p.nextToken()
	return lit
}

// parseParenthesizedOrArrow resolves the one ambiguity that needs
// backtracking: "(a, b) => ..." versus a parenthesized expression. It
// speculatively parses an arrow head and restores the saved position when
// the speculation fails.
func (p *Parser) parseParenthesizedOrArrow() ast.Expression {
	if arrow, ok := p.tryParseArrowFunction(); ok {
		return arrow
	}
	return p.parseGroupExpression()
}

func (p *Parser) tryParseArrowFunction() (ast.Expression, bool) {
	saved := p.snapshot()
	p.nextToken() // consume (

	var params []*ast.Identifier
	for !p.curTokenIs(token.RightParen) {
		if !p.curTokenIs(token.Identifier) {
			p.restore(saved)
			return nil, false
		}
		params = append(params, &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal})
		p.nextToken()
		if p.curTokenIs(token.Comma) {
			p.nextToken()
			continue
		}
		break
	}
	if !p.curTokenIs(token.RightParen) {
		p.restore(saved)
		return nil, false
	}
	p.nextToken() // consume )
	if !p.curTokenIs(token.Arrow) {
		p.restore(saved)
		return nil, false
	}

	arrowTok := p.curToken
	p.nextToken() // consume =>
	arrow := &ast.ArrowFunctionExpression{Token: arrowTok, Params: params}
	if p.curTokenIs(token.LeftBrace) {
		arrow.Body = p.parseBlockStatement()
	} else {
		arrow.Body = p.parseAssignmentExpression()
	}
	return arrow, true
}

func (p *Parser) parseGroupExpression() ast.Expression {
	p.nextToken() // consume (

	if p.curTokenIs(token.RightParen) {
		p.addError("empty parenthesized expression")
		return &ast.Identifier{Token: p.curToken}
	}

	expr := p.parseContainedExpression()
	p.expect(token.RightParen)
	return expr
}

func (p *Parser) parseArrayLiteral() *ast.ArrayLiteral {
	arr := &ast.ArrayLiteral{Token: p.curToken}
	p.nextToken() // consume [

	for !p.curTokenIs(token.RightBracket) && !p.curTokenIs(token.EOF) && p.err == nil {
		arr.Elements = append(arr.Elements, p.parseContainedExpression())
		if !p.curTokenIs(token.Comma) {
			break
		}
		p.nextToken()
	}
	p.expect(token.RightBracket)
	return arr
}

func (p *Parser) parseObjectLiteral() *ast.ObjectLiteral {
	obj := &ast.ObjectLiteral{Token: p.curToken}
	p.nextToken() // consume {

	for !p.curTokenIs(token.RightBrace) && !p.curTokenIs(token.EOF) && p.err == nil {
		prop := p.parseObjectProperty()
		obj.Properties = append(obj.Properties, prop)
		if !p.curTokenIs(token.Comma) {
			break
		}
		p.nextToken()
	}
	p.expect(token.RightBrace)
	return obj
}

func (p *Parser) parseObjectProperty() *ast.Property {
	prop := &ast.Property{Token: p.curToken}
	prop.Key = p.parsePropertyName()
	p.expect(token.Colon)
	prop.Value = p.parseContainedExpression()
	return prop
}

func (p *Parser) parsePropertyName() ast.Expression {
	switch p.curToken.Type {
	case token.Identifier, token.Var, token.Let, token.Const, token.Function, token.Return,
		token.If, token.Else, token.While, token.For, token.Do, token.Break, token.Continue,
		token.Switch, token.Case, token.Default, token.Throw, token.Try, token.Catch,
		token.Finally, token.Typeof, token.In, token.Instanceof, token.Import,
		token.Export, token.From, token.As, token.Of, token.Observe, token.When,
		token.Otherwise, token.True, token.False, token.Null, token.Undefined:
		ident := &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
		p.nextToken()
		return ident
	case token.Number:
		return p.parseNumberLiteral()
	case token.String:
		return p.parseStringLiteral()
	default:
		p.addError("unexpected token in property name: %s", tokenName(p.curToken.Type))
		ident := &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
		p.nextToken()
		return ident
	}
}

func (p *Parser) parseFunctionExpression() *ast.FunctionExpression {
	fe := &ast.FunctionExpression{Token: p.curToken}
	p.nextToken() // consume function

	if p.curTokenIs(token.Identifier) {
		fe.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
		p.nextToken()
	}

	fe.Params = p.parseFunctionParams()
	fe.Body = p.parseBlockStatement()
	return fe
}

func (p *Parser) parseUnaryExpression() ast.Expression {
	tok := p.curToken
	op := tok.Literal
	p.nextToken()
	operand := p.parseExpression(precUnary)
	return &ast.UnaryExpression{Token: tok, Operator: op, Operand: operand, Prefix: true}
}

func (p *Parser) parsePrefixUpdateExpression() ast.Expression {
	tok := p.curToken
	op := tok.Literal
	p.nextToken()
	operand := p.parseExpression(precUnary)
	return &ast.UpdateExpression{Token: tok, Operator: op, Operand: operand, Prefix: true}
}

func (p *Parser) parseNoSubstitutionTemplate() *ast.TemplateLiteralExpr {
	tmpl := &ast.TemplateLiteralExpr{Token: p.curToken}
	tmpl.Quasis = append(tmpl.Quasis, &ast.TemplateElement{
		Token: p.curToken,
		Value: p.curToken.Literal,
		Tail:  true,
	})
	p.nextToken()
	return tmpl
}

func (p *Parser) parseTemplateLiteral() *ast.TemplateLiteralExpr {
	tmpl := &ast.TemplateLiteralExpr{Token: p.curToken}
	tmpl.Quasis = append(tmpl.Quasis, &ast.TemplateElement{
		Token: p.curToken,
		Value: p.curToken.Literal,
	})
	p.nextToken() // move past TemplateHead

	for p.err == nil {
		expr := p.parseContainedExpression()
		tmpl.Expressions = append(tmpl.Expressions, expr)

		if p.curTokenIs(token.TemplateTail) {
			tmpl.Quasis = append(tmpl.Quasis, &ast.TemplateElement{
				Token: p.curToken,
				Value: p.curToken.Literal,
				Tail:  true,
			})
			p.nextToken()
			break
		}
		if p.curTokenIs(token.TemplateMiddle) {
			tmpl.Quasis = append(tmpl.Quasis, &ast.TemplateElement{
				Token: p.curToken,
				Value: p.curToken.Literal,
			})
			p.nextToken()
			continue
		}
		p.addError("expected template middle or tail, got %s", tokenName(p.curToken.Type))
		break
	}
	return tmpl
}

// ---------- Infix Parsing ----------

func (p *Parser) infixPrecedence() int {
	switch p.curToken.Type {
	case token.QuestionMark:
		return precConditional
	case token.Assign, token.PlusAssign, token.MinusAssign, token.AsteriskAssign,
		token.SlashAssign, token.PercentAssign,
		token.AmpersandAssign, token.PipeAssign, token.CaretAssign,
		token.LeftShiftAssign, token.RightShiftAssign:
		return precAssignment
	case token.Or:
		return precLogicalOr
	case token.And:
		return precLogicalAnd
	case token.BitwiseOr:
		return precBitwiseOr
	case token.BitwiseXor:
		return precBitwiseXor
	case token.BitwiseAnd:
		return precBitwiseAnd
	case token.Equal, token.NotEqual, token.StrictEqual, token.StrictNotEqual:
		return precEquality
	case token.LessThan, token.GreaterThan, token.LessThanOrEqual, token.GreaterThanOrEqual,
		token.Instanceof:
		return precRelational
	case token.In:
		if p.noIn {
			return 0
		}
		return precRelational
	case token.LeftShift, token.RightShift:
		return precShift
	case token.Plus, token.Minus:
		return precAdditive
	case token.Asterisk, token.Slash, token.Percent:
		return precMultiplicative
	case token.Increment, token.Decrement:
		return precPostfix
	case token.LeftParen:
		return precCall
	case token.Dot, token.LeftBracket:
		return precMember
	default:
		return 0
	}
}

func (p *Parser) parseInfixExpression(left ast.Expression, prec int) ast.Expression {
	switch p.curToken.Type {
	case token.Assign, token.PlusAssign, token.MinusAssign, token.AsteriskAssign,
		token.SlashAssign, token.PercentAssign,
		token.AmpersandAssign, token.PipeAssign, token.CaretAssign,
		token.LeftShiftAssign, token.RightShiftAssign:
		return p.parseAssignmentInfix(left)
	case token.QuestionMark:
		return p.parseConditionalExpression(left)
	case token.Or, token.And:
		return p.parseLogicalInfix(left)
	case token.LeftParen:
		return p.parseCallExpression(left)
	case token.Dot:
		return p.parseDotMember(left)
	case token.LeftBracket:
		return p.parseBracketMember(left)
	case token.Increment, token.Decrement:
		return p.parsePostfixUpdate(left)
	default:
		return p.parseBinaryInfix(left)
	}
}

func (p *Parser) parseAssignmentInfix(left ast.Expression) ast.Expression {
	tok := p.curToken
	p.nextToken()
	// Right-associative: recurse one level below our own precedence.
	right := p.parseExpression(precAssignment - 1)
	return &ast.AssignmentExpression{Token: tok, Operator: tok.Literal, Left: left, Right: right}
}

func (p *Parser) parseConditionalExpression(left ast.Expression) ast.Expression {
	tok := p.curToken
	p.nextToken() // consume ?
	consequent := p.parseExpression(precConditional - 1)
	p.expect(token.Colon)
	// Right-associative alternate
	alternate := p.parseExpression(precConditional - 1)
	return &ast.ConditionalExpression{Token: tok, Test: left, Consequent: consequent, Alternate: alternate}
}

func (p *Parser) parseLogicalInfix(left ast.Expression) ast.Expression {
	tok := p.curToken
	prec := p.infixPrecedence()
	p.nextToken()
	right := p.parseExpression(prec)
	return &ast.LogicalExpression{Token: tok, Operator: tok.Literal, Left: left, Right: right}
}

func (p *Parser) parseBinaryInfix(left ast.Expression) ast.Expression {
	tok := p.curToken
	prec := p.infixPrecedence()
	p.nextToken()
	right := p.parseExpression(prec)
	return &ast.BinaryExpression{Token: tok, Operator: tok.Literal, Left: left, Right: right}
}

func (p *Parser) parseCallExpression(left ast.Expression) ast.Expression {
	tok := p.curToken
	args := p.parseArguments()
	return p.parsePostfixOps(&ast.CallExpression{Token: tok, Callee: left, Arguments: args})
}

func (p *Parser) parseArguments() []ast.Expression {
	p.nextToken() // consume (
	var args []ast.Expression

	for !p.curTokenIs(token.RightParen) && !p.curTokenIs(token.EOF) && p.err == nil {
		args = append(args, p.parseContainedExpression())
		if !p.curTokenIs(token.Comma) {
			break
		}
		p.nextToken()
	}
	p.expect(token.RightParen)
	return args
}

func (p *Parser) parseDotMember(left ast.Expression) ast.Expression {
	tok := p.curToken
	p.nextToken() // consume .
	prop := p.parsePropertyName()
	result := &ast.MemberExpression{Token: tok, Object: left, Property: prop}
	return p.parsePostfixOps(result)
}

func (p *Parser) parseBracketMember(left ast.Expression) ast.Expression {
	tok := p.curToken
	p.nextToken() // consume [
	prop := p.parseContainedExpression()
	p.expect(token.RightBracket)
	result := &ast.MemberExpression{Token: tok, Object: left, Property: prop, Computed: true}
	return p.parsePostfixOps(result)
}

func (p *Parser) parsePostfixUpdate(left ast.Expression) ast.Expression {
	tok := p.curToken
	p.nextToken()
	return &ast.UpdateExpression{Token: tok, Operator: tok.Literal, Operand: left, Prefix: false}
}

// parsePostfixOps folds call, member, and index accesses left to right in
// one loop, so a.b[c](d).e parses without extra recursion.
func (p *Parser) parsePostfixOps(expr ast.Expression) ast.Expression {
	for p.err == nil {
		switch p.curToken.Type {
		case token.Dot:
			tok := p.curToken
			p.nextToken()
			prop := p.parsePropertyName()
			expr = &ast.MemberExpression{Token: tok, Object: expr, Property: prop}
		case token.LeftBracket:
			tok := p.curToken
			p.nextToken()
			prop := p.parseContainedExpression()
			p.expect(token.RightBracket)
			expr = &ast.MemberExpression{Token: tok, Object: expr, Property: prop, Computed: true}
		case token.LeftParen:
			tok := p.curToken
			args := p.parseArguments()
			expr = &ast.CallExpression{Token: tok, Callee: expr, Arguments: args}
		default:
			return expr
		}
	}
	return expr
}

// ---------- Helpers ----------

func (p *Parser) consumeSemicolon() {
	if p.curTokenIs(token.Semicolon) {
		p.nextToken()
	}
}

func tokenName(t token.TokenType) string {
	names := map[token.TokenType]string{
		token.EOF:                    "EOF",
		token.Illegal:                "ILLEGAL",
		token.Identifier:             "IDENTIFIER",
		token.Number:                 "NUMBER",
		token.String:                 "STRING",
		token.Plus:                   "+",
		token.Minus:                  "-",
		token.Asterisk:               "*",
		token.Slash:                  "/",
		token.Percent:                "%",
		token.Assign:                 "=",
		token.PlusAssign:             "+=",
		token.MinusAssign:            "-=",
		token.AsteriskAssign:         "*=",
		token.SlashAssign:            "/=",
		token.PercentAssign:          "%=",
		token.AmpersandAssign:        "&=",
		token.PipeAssign:             "|=",
		token.CaretAssign:            "^=",
		token.LeftShiftAssign:        "<<=",
		token.RightShiftAssign:       ">>=",
		token.Equal:                  "==",
		token.NotEqual:               "!=",
		token.StrictEqual:            "===",
		token.StrictNotEqual:         "!==",
		token.LessThan:               "<",
		token.GreaterThan:            ">",
		token.LessThanOrEqual:        "<=",
		token.GreaterThanOrEqual:     ">=",
		token.And:                    "&&",
		token.Or:                     "||",
		token.Not:                    "!",
		token.BitwiseAnd:             "&",
		token.BitwiseOr:              "|",
		token.BitwiseXor:             "^",
		token.BitwiseNot:             "~",
		token.LeftShift:              "<<",
		token.RightShift:             ">>",
		token.Increment:              "++",
		token.Decrement:              "--",
		token.LeftParen:              "(",
		token.RightParen:             ")",
		token.LeftBrace:              "{",
		token.RightBrace:             "}",
		token.LeftBracket:            "[",
		token.RightBracket:           "]",
		token.Semicolon:              ";",
		token.Colon:                  ":",
		token.Comma:                  ",",
		token.Dot:                    ".",
		token.Arrow:                  "=>",
		token.QuestionMark:           "?",
		token.Var:                    "var",
		token.Let:                    "let",
		token.Const:                  "const",
		token.Function:               "function",
		token.Return:                 "return",
		token.If:                     "if",
		token.Else:                   "else",
		token.While:                  "while",
		token.For:                    "for",
		token.Do:                     "do",
		token.Break:                  "break",
		token.Continue:               "continue",
		token.Switch:                 "switch",
		token.Case:                   "case",
		token.Default:                "default",
		token.Throw:                  "throw",
		token.Try:                    "try",
		token.Catch:                  "catch",
		token.Finally:                "finally",
		token.Typeof:                 "typeof",
		token.In:                     "in",
		token.Instanceof:             "instanceof",
		token.Import:                 "import",
		token.Export:                 "export",
		token.From:                   "from",
		token.As:                     "as",
		token.Of:                     "of",
		token.Observe:                "observe",
		token.When:                   "when",
		token.Otherwise:              "otherwise",
		token.True:                   "true",
		token.False:                  "false",
		token.Null:                   "null",
		token.Undefined:              "undefined",
		token.TemplateHead:           "TEMPLATE_HEAD",
		token.TemplateMiddle:         "TEMPLATE_MIDDLE",
		token.TemplateTail:           "TEMPLATE_TAIL",
		token.NoSubstitutionTemplate: "TEMPLATE",
	}
	if name, ok := names[t]; ok {
		return name
	}
	return fmt.Sprintf("TOKEN(%d)", t)
}
