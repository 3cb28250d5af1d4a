package lexer

import (
	"unicode"
	"unicode/utf8"

	"github.com/decisivestrike/uncommon-lisp/internal/token"
)

// Lexer is a character-level reader that produces one token per
// NextToken call. It never reads ahead past the token it returns, so the
// parser can resynchronise on '(' between top-level forms.
type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           rune // current char under examination
	line         int  // current line number
	column       int  // current column number
}

func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}

	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = len(l.input)
		l.readPosition = len(l.input) + 1
		l.column++
		return
	}

	r, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += w
	l.column++
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func (l *Lexer) atEOF() bool {
	return l.position >= len(l.input)
}

// SkipToForm advances to the next '(' outside of comments, dropping any
// other text on the way. It reports false when the input is exhausted.
func (l *Lexer) SkipToForm() bool {
	for !l.atEOF() {
		switch {
		case l.ch == '(':
			return true
		case l.ch == '#':
			l.skipComment()
		default:
			l.readChar()
		}
	}
	return false
}

func (l *Lexer) NextToken() token.Token {
	l.skipWhitespace()

	line, col := l.line, l.column

	if l.atEOF() {
		return token.Token{Type: token.EOF, Line: line, Column: col}
	}

	var tok token.Token
	switch l.ch {
	case '(':
		tok = newToken(token.LPAREN, l.ch, line, col)
	case ')':
		tok = newToken(token.RPAREN, l.ch, line, col)
	case '[':
		tok = newToken(token.LBRACKET, l.ch, line, col)
	case ']':
		tok = newToken(token.RBRACKET, l.ch, line, col)
	case '"':
		return l.readString(line, col)
	case '-':
		if isDigit(l.peekChar()) {
			return l.readNumber(line, col)
		}
		tok = newToken(token.ILLEGAL, l.ch, line, col)
	default:
		if isDigit(l.ch) {
			return l.readNumber(line, col)
		}
		if isLetter(l.ch) {
			ident := l.readIdentifier()
			return token.Token{
				Type:    token.LookupIdent(ident),
				Lexeme:  ident,
				Literal: ident,
				Line:    line,
				Column:  col,
			}
		}
		tok = newToken(token.ILLEGAL, l.ch, line, col)
	}

	l.readChar()
	return tok
}

func (l *Lexer) skipWhitespace() {
	for !l.atEOF() {
		switch l.ch {
		case ' ', '\t', '\r', '\n':
			l.readChar()
		case '#':
			l.skipComment()
		default:
			return
		}
	}
}

// skipComment consumes a '#' comment up to, not including, the newline.
func (l *Lexer) skipComment() {
	for !l.atEOF() && l.ch != '\n' {
		l.readChar()
	}
}

// readString reads a double-quoted string. Strings may not span lines and
// have no escape syntax; backslash sequences are kept verbatim.
func (l *Lexer) readString(line, col int) token.Token {
	start := l.position
	l.readChar() // opening quote
	for !l.atEOF() && l.ch != '"' && l.ch != '\n' {
		l.readChar()
	}

	if l.ch != '"' || l.atEOF() {
		return token.Token{
			Type:    token.UNTERMINATED_STRING,
			Lexeme:  l.input[start:l.position],
			Literal: l.input[start+1 : l.position],
			Line:    line,
			Column:  col,
		}
	}

	content := l.input[start+1 : l.position]
	l.readChar() // closing quote
	return token.Token{
		Type:    token.STRING,
		Lexeme:  l.input[start:l.position],
		Literal: content,
		Line:    line,
		Column:  col,
	}
}

// readNumber reads '-'? digit+ ('.' digit+)?.
func (l *Lexer) readNumber(line, col int) token.Token {
	start := l.position
	if l.ch == '-' {
		l.readChar()
	}
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	lexeme := l.input[start:l.position]
	return token.Token{Type: token.NUMBER, Lexeme: lexeme, Literal: lexeme, Line: line, Column: col}
}

func (l *Lexer) readIdentifier() string {
	start := l.position
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}
	return l.input[start:l.position]
}

func isLetter(ch rune) bool {
	return ch != 0 && unicode.IsLetter(ch)
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

func newToken(tokenType token.TokenType, ch rune, line, col int) token.Token {
	return token.Token{Type: tokenType, Lexeme: string(ch), Literal: string(ch), Line: line, Column: col}
}
