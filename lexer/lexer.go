package lexer

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/example/pulse/token"
)

type Lexer struct {
	input   string
	pos     int // current position in input (points to current char)
	readPos int // current reading position (after current char)
	ch      rune
	line    int
	col     int

	// For template literal interpolation tracking
	braceDepth    int
	templateStack []int // stack of brace depths where template interpolations started

	badComment bool // set when a block comment runs off the end of input
}

func New(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
		col:   0,
	}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0
		l.pos = l.readPos
		l.readPos++
		l.col++
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPos:])
	l.ch = r
	l.pos = l.readPos
	l.readPos += size
	l.col++
}

func (l *Lexer) peekChar() rune {
	if l.readPos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPos:])
	return r
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n' {
		if l.ch == '\n' {
			l.line++
			l.col = 0
		}
		l.readChar()
	}
}

func (l *Lexer) skipLineComment() {
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
}

// skipBlockComment consumes a /* ... */ comment. Reaching end of input
// before the closing */ marks the lexer as having seen a malformed comment.
func (l *Lexer) skipBlockComment() {
	l.readChar()
	l.readChar()
	for {
		if l.ch == 0 {
			l.badComment = true
			return
		}
		if l.ch == '\n' {
			l.line++
			l.col = 0
		}
		if l.ch == '*' && l.peekChar() == '/' {
			l.readChar()
			l.readChar()
			return
		}
		l.readChar()
	}
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		l.skipWhitespace()
		if l.ch == '/' && l.peekChar() == '/' {
			l.skipLineComment()
			continue
		}
		if l.ch == '/' && l.peekChar() == '*' {
			l.skipBlockComment()
			if l.badComment {
				return
			}
			continue
		}
		break
	}
}

func (l *Lexer) NextToken() token.Token {
	l.skipWhitespaceAndComments()

	line := l.line
	col := l.col

	tok := func(tt token.TokenType, lit string) token.Token {
		return token.Token{Type: tt, Literal: lit, Line: line, Column: col}
	}

	if l.badComment {
		return tok(token.Illegal, "unterminated block comment")
	}

	// Check for template middle/tail when closing a template interpolation
	if l.ch == '}' && len(l.templateStack) > 0 && l.braceDepth-1 == l.templateStack[len(l.templateStack)-1] {
		l.templateStack = l.templateStack[:len(l.templateStack)-1]
		return l.readTemplateContinuation(line, col)
	}

	switch {
	case l.ch == 0:
		return tok(token.EOF, "")

	case l.ch == '(':
		l.readChar()
		return tok(token.LeftParen, "(")
	case l.ch == ')':
		l.readChar()
		return tok(token.RightParen, ")")
	case l.ch == '{':
		l.braceDepth++
		l.readChar()
		return tok(token.LeftBrace, "{")
	case l.ch == '}':
		l.braceDepth--
		l.readChar()
		return tok(token.RightBrace, "}")
	case l.ch == '[':
		l.readChar()
		return tok(token.LeftBracket, "[")
	case l.ch == ']':
		l.readChar()
		return tok(token.RightBracket, "]")
	case l.ch == ';':
		l.readChar()
		return tok(token.Semicolon, ";")
	case l.ch == ':':
		l.readChar()
		return tok(token.Colon, ":")
	case l.ch == ',':
		l.readChar()
		return tok(token.Comma, ",")
	case l.ch == '~':
		l.readChar()
		return tok(token.BitwiseNot, "~")

	case l.ch == '.':
		if isDigit(l.peekChar()) {
			return l.readNumber(line, col)
		}
		l.readChar()
		return tok(token.Dot, ".")

	case l.ch == '+':
		l.readChar()
		if l.ch == '+' {
			l.readChar()
			return tok(token.Increment, "++")
		}
		if l.ch == '=' {
			l.readChar()
			return tok(token.PlusAssign, "+=")
		}
		return tok(token.Plus, "+")

	case l.ch == '-':
		l.readChar()
		if l.ch == '-' {
			l.readChar()
			return tok(token.Decrement, "--")
		}
		if l.ch == '=' {
			l.readChar()
			return tok(token.MinusAssign, "-=")
		}
		return tok(token.Minus, "-")

	case l.ch == '*':
		l.readChar()
		if l.ch == '=' {
			l.readChar()
			return tok(token.AsteriskAssign, "*=")
		}
		return tok(token.Asterisk, "*")

	case l.ch == '/':
		l.readChar()
		if l.ch == '=' {
			l.readChar()
			return tok(token.SlashAssign, "/=")
		}
		return tok(token.Slash, "/")

	case l.ch == '%':
		l.readChar()
		if l.ch == '=' {
			l.readChar()
			return tok(token.PercentAssign, "%=")
		}
		return tok(token.Percent, "%")

	case l.ch == '=':
		l.readChar()
		if l.ch == '>' {
			l.readChar()
			return tok(token.Arrow, "=>")
		}
		if l.ch == '=' {
			l.readChar()
			if l.ch == '=' {
				l.readChar()
				return tok(token.StrictEqual, "===")
			}
			return tok(token.Equal, "==")
		}
		return tok(token.Assign, "=")

	case l.ch == '!':
		l.readChar()
		if l.ch == '=' {
			l.readChar()
			if l.ch == '=' {
				l.readChar()
				return tok(token.StrictNotEqual, "!==")
			}
			return tok(token.NotEqual, "!=")
		}
		return tok(token.Not, "!")

	case l.ch == '<':
		l.readChar()
		if l.ch == '<' {
			l.readChar()
			if l.ch == '=' {
				l.readChar()
				return tok(token.LeftShiftAssign, "<<=")
			}
			return tok(token.LeftShift, "<<")
		}
		if l.ch == '=' {
			l.readChar()
			return tok(token.LessThanOrEqual, "<=")
		}
		return tok(token.LessThan, "<")

	case l.ch == '>':
		l.readChar()
		if l.ch == '>' {
			l.readChar()
			if l.ch == '=' {
				l.readChar()
				return tok(token.RightShiftAssign, ">>=")
			}
			return tok(token.RightShift, ">>")
		}
		if l.ch == '=' {
			l.readChar()
			return tok(token.GreaterThanOrEqual, ">=")
		}
		return tok(token.GreaterThan, ">")

	case l.ch == '&':
		l.readChar()
		if l.ch == '&' {
			l.readChar()
			return tok(token.And, "&&")
		}
		if l.ch == '=' {
			l.readChar()
			return tok(token.AmpersandAssign, "&=")
		}
		return tok(token.BitwiseAnd, "&")

	case l.ch == '|':
		l.readChar()
		if l.ch == '|' {
			l.readChar()
			return tok(token.Or, "||")
		}
		if l.ch == '=' {
			l.readChar()
			return tok(token.PipeAssign, "|=")
		}
		return tok(token.BitwiseOr, "|")

	case l.ch == '^':
		l.readChar()
		if l.ch == '=' {
			l.readChar()
			return tok(token.CaretAssign, "^=")
		}
		return tok(token.BitwiseXor, "^")

	case l.ch == '?':
		l.readChar()
		return tok(token.QuestionMark, "?")

	case l.ch == '`':
		return l.readTemplateLiteral(line, col)

	case l.ch == '"' || l.ch == '\'':
		return l.readString(line, col)

	case isDigit(l.ch):
		return l.readNumber(line, col)

	case isIdentStart(l.ch):
		return l.readIdentifier(line, col)

	default:
		ch := l.ch
		l.readChar()
		return tok(token.Illegal, string(ch))
	}
}

func (l *Lexer) readIdentifier(line, col int) token.Token {
	start := l.pos
	for isIdentPart(l.ch) {
		l.readChar()
	}
	literal := l.input[start:l.pos]
	tt := token.LookupIdentifier(literal)
	return token.Token{Type: tt, Literal: literal, Line: line, Column: col}
}

func (l *Lexer) readString(line, col int) token.Token {
	quote := l.ch
	l.readChar() // skip opening quote
	var buf strings.Builder

	for l.ch != quote && l.ch != 0 && l.ch != '\n' {
		if l.ch == '\\' {
			l.readChar()
			switch l.ch {
			case 'n':
				buf.WriteByte('\n')
			case 'r':
				buf.WriteByte('\r')
			case 't':
				buf.WriteByte('\t')
			case '\\':
				buf.WriteByte('\\')
			case '\'':
				buf.WriteByte('\'')
			case '"':
				buf.WriteByte('"')
			case 0:
				return token.Token{Type: token.Illegal, Literal: "unterminated string", Line: line, Column: col}
			default:
				buf.WriteRune(l.ch)
			}
			l.readChar()
			continue
		}
		buf.WriteRune(l.ch)
		l.readChar()
	}

	if l.ch != quote {
		return token.Token{Type: token.Illegal, Literal: "unterminated string", Line: line, Column: col}
	}
	l.readChar() // skip closing quote
	return token.Token{Type: token.String, Literal: buf.String(), Line: line, Column: col}
}

func (l *Lexer) readNumber(line, col int) token.Token {
	start := l.pos

	if l.ch == '0' && (l.peekChar() == 'x' || l.peekChar() == 'X') {
		l.readChar() // 0
		l.readChar() // x
		if !isHexDigit(l.ch) {
			return token.Token{Type: token.Illegal, Literal: "invalid hex literal", Line: line, Column: col}
		}
		for isHexDigit(l.ch) {
			l.readChar()
		}
		return token.Token{Type: token.Number, Literal: l.input[start:l.pos], Line: line, Column: col}
	}

	// Decimal: integer part
	for isDigit(l.ch) {
		l.readChar()
	}

	// Fractional part
	if l.ch == '.' {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	// Exponent
	if l.ch == 'e' || l.ch == 'E' {
		l.readChar()
		if l.ch == '+' || l.ch == '-' {
			l.readChar()
		}
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	return token.Token{Type: token.Number, Literal: l.input[start:l.pos], Line: line, Column: col}
}

func (l *Lexer) readTemplateLiteral(line, col int) token.Token {
	l.readChar() // skip opening backtick
	var buf strings.Builder

	for {
		if l.ch == 0 {
			return token.Token{Type: token.Illegal, Literal: "unterminated template literal", Line: line, Column: col}
		}
		if l.ch == '`' {
			l.readChar()
			return token.Token{Type: token.NoSubstitutionTemplate, Literal: buf.String(), Line: line, Column: col}
		}
		if l.ch == '$' && l.peekChar() == '{' {
			l.readChar() // skip $
			l.readChar() // skip {
			l.templateStack = append(l.templateStack, l.braceDepth)
			l.braceDepth++
			return token.Token{Type: token.TemplateHead, Literal: buf.String(), Line: line, Column: col}
		}
		if l.ch == '\\' {
			l.readChar()
			l.readTemplateEscape(&buf)
			continue
		}
		if l.ch == '\n' {
			l.line++
			l.col = 0
		}
		buf.WriteRune(l.ch)
		l.readChar()
	}
}

func (l *Lexer) readTemplateContinuation(line, col int) token.Token {
	l.readChar() // skip closing }
	l.braceDepth--
	var buf strings.Builder

	for {
		if l.ch == 0 {
			return token.Token{Type: token.Illegal, Literal: "unterminated template literal", Line: line, Column: col}
		}
		if l.ch == '`' {
			l.readChar()
			return token.Token{Type: token.TemplateTail, Literal: buf.String(), Line: line, Column: col}
		}
		if l.ch == '$' && l.peekChar() == '{' {
			l.readChar() // skip $
			l.readChar() // skip {
			l.templateStack = append(l.templateStack, l.braceDepth)
			l.braceDepth++
			return token.Token{Type: token.TemplateMiddle, Literal: buf.String(), Line: line, Column: col}
		}
		if l.ch == '\\' {
			l.readChar()
			l.readTemplateEscape(&buf)
			continue
		}
		if l.ch == '\n' {
			l.line++
			l.col = 0
		}
		buf.WriteRune(l.ch)
		l.readChar()
	}
}

func (l *Lexer) readTemplateEscape(buf *strings.Builder) {
	switch l.ch {
	case 'n':
		buf.WriteByte('\n')
	case 'r':
		buf.WriteByte('\r')
	case 't':
		buf.WriteByte('\t')
	case '\\':
		buf.WriteByte('\\')
	case '`':
		buf.WriteByte('`')
	case '$':
		buf.WriteByte('$')
	case '\n':
		l.line++
		l.col = 0
	default:
		buf.WriteByte('\\')
		buf.WriteRune(l.ch)
	}
	l.readChar()
}

// Tokenize scans the whole input. The first malformed token aborts the scan
// with a positioned error.
func Tokenize(input string) ([]token.Token, error) {
	l := New(input)
	var tokens []token.Token
	for {
		tok := l.NextToken()
		if tok.Type == token.Illegal {
			return nil, fmt.Errorf("lex error at %d:%d: %s", tok.Line, tok.Column, tok.Literal)
		}
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			return tokens, nil
		}
	}
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func isHexDigit(ch rune) bool {
	return (ch >= '0' && ch <= '9') || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func isIdentStart(ch rune) bool {
	return ch == '_' || ch == '$' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch > 127 && unicode.IsLetter(ch))
}

func isIdentPart(ch rune) bool {
	return isIdentStart(ch) || isDigit(ch)
}
