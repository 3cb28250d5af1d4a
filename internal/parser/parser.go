package parser

import (
	"github.com/decisivestrike/uncommon-lisp/internal/ast"
	"github.com/decisivestrike/uncommon-lisp/internal/diagnostics"
	"github.com/decisivestrike/uncommon-lisp/internal/lexer"
	"github.com/decisivestrike/uncommon-lisp/internal/pipeline"
	"github.com/decisivestrike/uncommon-lisp/internal/token"
)

// Parser is a recursive-descent consumer of a token stream. It only ever
// looks at the current token: every parse function returns with curToken
// on the last token it consumed, and the caller advances.
type Parser struct {
	stream   pipeline.TokenStream
	curToken token.Token
}

func New(stream pipeline.TokenStream) *Parser {
	return &Parser{stream: stream}
}

func (p *Parser) nextToken() {
	p.curToken = p.stream.NextToken()
}

func (p *Parser) curTokenIs(t token.TokenType) bool {
	return p.curToken.Type == t
}

// ParseProgram parses top-level forms until the input is exhausted or the
// first syntax error. Text before each top-level '(' is skipped. Forms
// parsed before an error are kept in the returned program.
func (p *Parser) ParseProgram() (*ast.Program, *diagnostics.ParseError) {
	program := &ast.Program{}
	for p.stream.SkipToForm() {
		p.nextToken()
		expr, err := p.parseExpression()
		if err != nil {
			return program, err
		}
		program.Forms = append(program.Forms, expr)
	}
	return program, nil
}

// Parse reads every top-level form of source. On a syntax error it returns
// the forms that precede it together with the error.
func Parse(source string) ([]*ast.Expression, error) {
	program, err := New(lexer.New(source)).ParseProgram()
	if err != nil {
		return program.Forms, err
	}
	return program.Forms, nil
}
