package lexer

import (
	"testing"

	"github.com/decisivestrike/uncommon-lisp/internal/token"
)

func TestNextToken(t *testing.T) {
	input := `(var x -12.5) # comment
[true false nil "a b" snake_case1]`

	tests := []struct {
		expectedType   token.TokenType
		expectedLexeme string
		line, column   int
	}{
		{token.LPAREN, "(", 1, 1},
		{token.IDENT, "var", 1, 2},
		{token.IDENT, "x", 1, 6},
		{token.NUMBER, "-12.5", 1, 8},
		{token.RPAREN, ")", 1, 13},
		{token.LBRACKET, "[", 2, 1},
		{token.TRUE, "true", 2, 2},
		{token.FALSE, "false", 2, 7},
		{token.NIL, "nil", 2, 13},
		{token.STRING, `"a b"`, 2, 17},
		{token.IDENT, "snake_case1", 2, 23},
		{token.RBRACKET, "]", 2, 34},
		{token.EOF, "", 2, 35},
	}

	l := New(input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q", i, tt.expectedType, tok.Type)
		}
		if tok.Lexeme != tt.expectedLexeme {
			t.Fatalf("tests[%d] - lexeme wrong. expected=%q, got=%q", i, tt.expectedLexeme, tok.Lexeme)
		}
		if tok.Line != tt.line || tok.Column != tt.column {
			t.Fatalf("tests[%d] - position wrong. expected=%d:%d, got=%d:%d", i, tt.line, tt.column, tok.Line, tok.Column)
		}
	}
}

func TestStringLiteral(t *testing.T) {
	tok := New(`"a\nb"`).NextToken()
	if tok.Type != token.STRING || tok.Literal != `a\nb` {
		t.Errorf("got %s literal %q", tok, tok.Literal)
	}
}

func TestUnterminatedString(t *testing.T) {
	for _, input := range []string{`"abc`, "\"abc\ndef\""} {
		tok := New(input).NextToken()
		if tok.Type != token.UNTERMINATED_STRING {
			t.Errorf("%q: got %s", input, tok)
		}
		if tok.Literal != "abc" {
			t.Errorf("%q: literal %q", input, tok.Literal)
		}
	}
}

func TestNumberForms(t *testing.T) {
	tests := []struct {
		input string
		types []token.TokenType
	}{
		{"42", []token.TokenType{token.NUMBER}},
		{"-7", []token.TokenType{token.NUMBER}},
		{"3.14", []token.TokenType{token.NUMBER}},
		{"3.", []token.TokenType{token.NUMBER, token.ILLEGAL}},
		{"- 1", []token.TokenType{token.ILLEGAL, token.NUMBER}},
	}
	for _, tt := range tests {
		l := New(tt.input)
		for i, want := range tt.types {
			if tok := l.NextToken(); tok.Type != want {
				t.Errorf("%q token %d: got %s, want %s", tt.input, i, tok.Type, want)
			}
		}
		if tok := l.NextToken(); tok.Type != token.EOF {
			t.Errorf("%q: trailing token %s", tt.input, tok)
		}
	}
}

func TestSkipToForm(t *testing.T) {
	l := New("leading (junk) # (not a form\n  (real)")
	if !l.SkipToForm() {
		t.Fatal("expected a form")
	}
	if tok := l.NextToken(); tok.Type != token.LPAREN || tok.Column != 9 {
		t.Fatalf("got %s", tok)
	}
	l.NextToken() // junk
	l.NextToken() // )
	if !l.SkipToForm() {
		t.Fatal("expected a second form")
	}
	if tok := l.NextToken(); tok.Line != 2 || tok.Column != 3 {
		t.Fatalf("comment was not skipped: %s", tok)
	}
	l.NextToken()
	l.NextToken()
	if l.SkipToForm() {
		t.Error("expected end of input")
	}
}

func TestUnicodeIdentifier(t *testing.T) {
	tok := New("(привет)").NextToken()
	if tok.Type != token.LPAREN {
		t.Fatalf("got %s", tok)
	}
	l := New("привет мир")
	if tok := l.NextToken(); tok.Type != token.IDENT || tok.Lexeme != "привет" {
		t.Errorf("got %s", tok)
	}
	if tok := l.NextToken(); tok.Column != 8 {
		t.Errorf("columns count runes, got %d", tok.Column)
	}
}
