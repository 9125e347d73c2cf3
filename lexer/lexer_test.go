package lexer

import (
	"testing"

	"github.com/example/pulse/token"
)

func expectTokens(t *testing.T, input string, expected []struct {
	typ token.TokenType
	lit string
}) {
	t.Helper()
	l := New(input)
	for i, exp := range expected {
		tok := l.NextToken()
		if tok.Type != exp.typ {
			t.Errorf("test[%d]: type wrong. expected=%d, got=%d (lit=%q)", i, exp.typ, tok.Type, tok.Literal)
		}
		if tok.Literal != exp.lit {
			t.Errorf("test[%d]: literal wrong. expected=%q, got=%q", i, exp.lit, tok.Literal)
		}
	}
}

func TestSingleCharTokens(t *testing.T) {
	expectTokens(t, `( ) { } [ ] ; : , ~ .`, []struct {
		typ token.TokenType
		lit string
	}{
		{token.LeftParen, "("},
		{token.RightParen, ")"},
		{token.LeftBrace, "{"},
		{token.RightBrace, "}"},
		{token.LeftBracket, "["},
		{token.RightBracket, "]"},
		{token.Semicolon, ";"},
		{token.Colon, ":"},
		{token.Comma, ","},
		{token.BitwiseNot, "~"},
		{token.Dot, "."},
		{token.EOF, ""},
	})
}

func TestArithmeticOperators(t *testing.T) {
	expectTokens(t, `+ - * / %`, []struct {
		typ token.TokenType
		lit string
	}{
		{token.Plus, "+"},
		{token.Minus, "-"},
		{token.Asterisk, "*"},
		{token.Slash, "/"},
		{token.Percent, "%"},
		{token.EOF, ""},
	})
}

func TestComparisonOperators(t *testing.T) {
	expectTokens(t, `== != === !== < > <= >=`, []struct {
		typ token.TokenType
		lit string
	}{
		{token.Equal, "=="},
		{token.NotEqual, "!="},
		{token.StrictEqual, "==="},
		{token.StrictNotEqual, "!=="},
		{token.LessThan, "<"},
		{token.GreaterThan, ">"},
		{token.LessThanOrEqual, "<="},
		{token.GreaterThanOrEqual, ">="},
		{token.EOF, ""},
	})
}

func TestLogicalAndBitwiseOperators(t *testing.T) {
	expectTokens(t, `&& || ! & | ^ << >>`, []struct {
		typ token.TokenType
		lit string
	}{
		{token.And, "&&"},
		{token.Or, "||"},
		{token.Not, "!"},
		{token.BitwiseAnd, "&"},
		{token.BitwiseOr, "|"},
		{token.BitwiseXor, "^"},
		{token.LeftShift, "<<"},
		{token.RightShift, ">>"},
		{token.EOF, ""},
	})
}

func TestAssignmentOperators(t *testing.T) {
	expectTokens(t, `= += -= *= /= %= &= |= ^= <<= >>=`, []struct {
		typ token.TokenType
		lit string
	}{
		{token.Assign, "="},
		{token.PlusAssign, "+="},
		{token.MinusAssign, "-="},
		{token.AsteriskAssign, "*="},
		{token.SlashAssign, "/="},
		{token.PercentAssign, "%="},
		{token.AmpersandAssign, "&="},
		{token.PipeAssign, "|="},
		{token.CaretAssign, "^="},
		{token.LeftShiftAssign, "<<="},
		{token.RightShiftAssign, ">>="},
		{token.EOF, ""},
	})
}

func TestIncrementDecrementArrow(t *testing.T) {
	expectTokens(t, `++ -- => ?`, []struct {
		typ token.TokenType
		lit string
	}{
		{token.Increment, "++"},
		{token.Decrement, "--"},
		{token.Arrow, "=>"},
		{token.QuestionMark, "?"},
		{token.EOF, ""},
	})
}

func TestKeywords(t *testing.T) {
	expectTokens(t, `var let const function return if else while for do break continue switch case default throw try catch finally typeof in instanceof import export from as of true false null undefined`, []struct {
		typ token.TokenType
		lit string
	}{
		{token.Var, "var"},
		{token.Let, "let"},
		{token.Const, "const"},
		{token.Function, "function"},
		{token.Return, "return"},
		{token.If, "if"},
		{token.Else, "else"},
		{token.While, "while"},
		{token.For, "for"},
		{token.Do, "do"},
		{token.Break, "break"},
		{token.Continue, "continue"},
		{token.Switch, "switch"},
		{token.Case, "case"},
		{token.Default, "default"},
		{token.Throw, "throw"},
		{token.Try, "try"},
		{token.Catch, "catch"},
		{token.Finally, "finally"},
		{token.Typeof, "typeof"},
		{token.In, "in"},
		{token.Instanceof, "instanceof"},
		{token.Import, "import"},
		{token.Export, "export"},
		{token.From, "from"},
		{token.As, "as"},
		{token.Of, "of"},
		{token.True, "true"},
		{token.False, "false"},
		{token.Null, "null"},
		{token.Undefined, "undefined"},
		{token.EOF, ""},
	})
}

func TestReactiveKeywords(t *testing.T) {
	expectTokens(t, `observe when otherwise`, []struct {
		typ token.TokenType
		lit string
	}{
		{token.Observe, "observe"},
		{token.When, "when"},
		{token.Otherwise, "otherwise"},
		{token.EOF, ""},
	})
}

func TestIdentifiers(t *testing.T) {
	expectTokens(t, `foo _bar $baz camelCase x1 observer whenever`, []struct {
		typ token.TokenType
		lit string
	}{
		{token.Identifier, "foo"},
		{token.Identifier, "_bar"},
		{token.Identifier, "$baz"},
		{token.Identifier, "camelCase"},
		{token.Identifier, "x1"},
		{token.Identifier, "observer"},
		{token.Identifier, "whenever"},
		{token.EOF, ""},
	})
}

func TestNumbers(t *testing.T) {
	expectTokens(t, `42 3.14 0.5 .25 1e3 2.5e-2 0xFF 0x1a`, []struct {
		typ token.TokenType
		lit string
	}{
		{token.Number, "42"},
		{token.Number, "3.14"},
		{token.Number, "0.5"},
		{token.Number, ".25"},
		{token.Number, "1e3"},
		{token.Number, "2.5e-2"},
		{token.Number, "0xFF"},
		{token.Number, "0x1a"},
		{token.EOF, ""},
	})
}

func TestStrings(t *testing.T) {
	expectTokens(t, `"hello" 'world' "a\nb" "say \"hi\"" 'it\'s'`, []struct {
		typ token.TokenType
		lit string
	}{
		{token.String, "hello"},
		{token.String, "world"},
		{token.String, "a\nb"},
		{token.String, `say "hi"`},
		{token.String, "it's"},
		{token.EOF, ""},
	})
}

func TestUnterminatedString(t *testing.T) {
	l := New(`"never closed`)
	tok := l.NextToken()
	if tok.Type != token.Illegal {
		t.Fatalf("expected Illegal token, got %d (lit=%q)", tok.Type, tok.Literal)
	}
}

func TestTemplateLiteralPlain(t *testing.T) {
	expectTokens(t, "`hello world`", []struct {
		typ token.TokenType
		lit string
	}{
		{token.NoSubstitutionTemplate, "hello world"},
		{token.EOF, ""},
	})
}

func TestTemplateLiteralInterpolation(t *testing.T) {
	expectTokens(t, "`a ${x} b ${y} c`", []struct {
		typ token.TokenType
		lit string
	}{
		{token.TemplateHead, "a "},
		{token.Identifier, "x"},
		{token.TemplateMiddle, " b "},
		{token.Identifier, "y"},
		{token.TemplateTail, " c"},
		{token.EOF, ""},
	})
}

func TestTemplateLiteralNestedBraces(t *testing.T) {
	// An object literal inside the interpolation must not close the template.
	expectTokens(t, "`v: ${ {a: 1}.a }!`", []struct {
		typ token.TokenType
		lit string
	}{
		{token.TemplateHead, "v: "},
		{token.LeftBrace, "{"},
		{token.Identifier, "a"},
		{token.Colon, ":"},
		{token.Number, "1"},
		{token.RightBrace, "}"},
		{token.Dot, "."},
		{token.Identifier, "a"},
		{token.TemplateTail, "!"},
		{token.EOF, ""},
	})
}

func TestComments(t *testing.T) {
	input := `
// line comment
1 /* block
   comment */ 2
`
	expectTokens(t, input, []struct {
		typ token.TokenType
		lit string
	}{
		{token.Number, "1"},
		{token.Number, "2"},
		{token.EOF, ""},
	})
}

func TestLineAndColumnTracking(t *testing.T) {
	l := New("let x\n  = 1")
	letTok := l.NextToken()
	if letTok.Line != 1 {
		t.Errorf("let: expected line 1, got %d", letTok.Line)
	}
	l.NextToken() // x
	assign := l.NextToken()
	if assign.Type != token.Assign {
		t.Fatalf("expected Assign, got %d", assign.Type)
	}
	if assign.Line != 2 {
		t.Errorf("=: expected line 2, got %d", assign.Line)
	}
}

func TestTokenize(t *testing.T) {
	toks, err := Tokenize(`let x = 1;`)
	if err != nil {
		t.Fatalf("Tokenize error: %v", err)
	}
	if len(toks) != 6 { // let x = 1 ; EOF
		t.Fatalf("expected 6 tokens, got %d", len(toks))
	}

	if _, err := Tokenize(`"oops`); err == nil {
		t.Fatal("expected Tokenize error for unterminated string")
	}
	if _, err := Tokenize(`/* never closed`); err == nil {
		t.Fatal("expected Tokenize error for unterminated block comment")
	}
}
