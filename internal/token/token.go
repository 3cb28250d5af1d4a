package token

import "fmt"

type TokenType string

const (
	ILLEGAL TokenType = "ILLEGAL"
	EOF     TokenType = "EOF"

	IDENT  TokenType = "IDENT"
	NUMBER TokenType = "NUMBER"
	STRING TokenType = "STRING"

	// Reserved words. They lex as their own types so the parser can turn
	// them into primitives without a second lookup.
	TRUE  TokenType = "TRUE"
	FALSE TokenType = "FALSE"
	NIL   TokenType = "NIL"

	LPAREN   TokenType = "("
	RPAREN   TokenType = ")"
	LBRACKET TokenType = "["
	RBRACKET TokenType = "]"

	// UNTERMINATED_STRING is produced for a '"' whose closing quote is
	// missing on the same line. Literal holds the text read so far.
	UNTERMINATED_STRING TokenType = "UNTERMINATED_STRING"
)

var keywords = map[string]TokenType{
	"true":  TRUE,
	"false": FALSE,
	"nil":   NIL,
}

// LookupIdent returns the keyword type for ident, or IDENT.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

type Token struct {
	Type    TokenType
	Lexeme  string // raw source text
	Literal string // decoded text (string contents without quotes)
	Line    int
	Column  int
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q) at %d:%d", t.Type, t.Lexeme, t.Line, t.Column)
}
