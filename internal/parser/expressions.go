package parser

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/decisivestrike/uncommon-lisp/internal/ast"
	"github.com/decisivestrike/uncommon-lisp/internal/diagnostics"
	"github.com/decisivestrike/uncommon-lisp/internal/token"
)

// parseExpression parses '(' identifier entity* ')'. curToken is the '('.
func (p *Parser) parseExpression() (*ast.Expression, *diagnostics.ParseError) {
	open := p.curToken
	expr := &ast.Expression{Line: open.Line, Column: open.Column}

	p.nextToken()
	switch p.curToken.Type {
	case token.IDENT, token.TRUE, token.FALSE, token.NIL:
		// Any identifier-shaped word names the function, keywords included.
		expr.Function = &ast.Identifier{Name: p.curToken.Lexeme}
	case token.EOF:
		return nil, diagnostics.NewError(diagnostics.ErrP003, open)
	default:
		return nil, diagnostics.NewError(diagnostics.ErrP005, p.curToken)
	}

	for {
		p.nextToken()
		switch p.curToken.Type {
		case token.RPAREN:
			return expr, nil
		case token.EOF:
			return nil, diagnostics.NewError(diagnostics.ErrP003, open)
		}
		arg, err := p.parseEntity()
		if err != nil {
			return nil, err
		}
		expr.Args = append(expr.Args, arg)
	}
}

// parseList parses '[' entity* ']'. curToken is the '['.
func (p *Parser) parseList() (*ast.List, *diagnostics.ParseError) {
	open := p.curToken
	list := &ast.List{}

	for {
		p.nextToken()
		switch p.curToken.Type {
		case token.RBRACKET:
			return list, nil
		case token.EOF:
			return nil, diagnostics.NewError(diagnostics.ErrP004, open)
		}
		elem, err := p.parseEntity()
		if err != nil {
			return nil, err
		}
		list.Elements = append(list.Elements, elem)
	}
}

func (p *Parser) parseEntity() (ast.Entity, *diagnostics.ParseError) {
	switch p.curToken.Type {
	case token.LPAREN:
		return p.parseExpression()
	case token.LBRACKET:
		return p.parseList()
	case token.STRING:
		return &ast.String{Value: p.curToken.Literal}, nil
	case token.NUMBER:
		return p.parseNumber(), nil
	case token.TRUE:
		return ast.TRUE, nil
	case token.FALSE:
		return ast.FALSE, nil
	case token.NIL:
		return ast.NIL, nil
	case token.IDENT:
		return &ast.Identifier{Name: p.curToken.Lexeme}, nil
	case token.UNTERMINATED_STRING:
		return nil, diagnostics.NewError(diagnostics.ErrP001, p.curToken)
	default:
		// Stray closers and characters no production starts with.
		return nil, diagnostics.NewError(diagnostics.ErrP002, p.curToken)
	}
}

// parseNumber converts a NUMBER token. The lexer only lets '-', digits and
// a single '.' through, so a syntax failure here is a lexer bug. Literals
// out of float64 range saturate to ±Inf.
func (p *Parser) parseNumber() *ast.Number {
	value, err := strconv.ParseFloat(p.curToken.Literal, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		panic(fmt.Sprintf("parser: malformed number literal %q at %d:%d",
			p.curToken.Literal, p.curToken.Line, p.curToken.Column))
	}
	return &ast.Number{Value: value}
}
