// Package diagnostics defines syntax errors reported by the parser and the
// terminal formatting shared by every command that prints them.
package diagnostics

import (
	"errors"
	"fmt"

	"github.com/decisivestrike/uncommon-lisp/internal/token"
)

type ErrorCode string

const (
	ErrP001 ErrorCode = "P001" // unterminated string
	ErrP002 ErrorCode = "P002" // unknown token
	ErrP003 ErrorCode = "P003" // incomplete expression
	ErrP004 ErrorCode = "P004" // incomplete list
	ErrP005 ErrorCode = "P005" // expected identifier
)

var kindNames = map[ErrorCode]string{
	ErrP001: "UnterminatedString",
	ErrP002: "UnknownToken",
	ErrP003: "IncompleteExpression",
	ErrP004: "IncompleteList",
	ErrP005: "ExpectedIdentifier",
}

// ParseError is a structural error found before any evaluation.
type ParseError struct {
	Code   ErrorCode
	Line   int
	Column int
	// Char is the offending character for ErrP002.
	Char rune
	File string
}

// NewError builds a ParseError located at tok.
func NewError(code ErrorCode, tok token.Token) *ParseError {
	err := &ParseError{Code: code, Line: tok.Line, Column: tok.Column}
	if code == ErrP002 {
		for _, r := range tok.Lexeme {
			err.Char = r
			break
		}
	}
	return err
}

// Kind returns the name of the error variant, e.g. "IncompleteList".
func (e *ParseError) Kind() string {
	return kindNames[e.Code]
}

func (e *ParseError) Message() string {
	switch e.Code {
	case ErrP001:
		return "unterminated string"
	case ErrP002:
		return fmt.Sprintf("unknown token %q", e.Char)
	case ErrP003:
		return "incomplete expression: '(' is never closed"
	case ErrP004:
		return "incomplete list: '[' is never closed"
	case ErrP005:
		return "expected identifier after '('"
	}
	return string(e.Code)
}

func (e *ParseError) Error() string {
	loc := fmt.Sprintf("%d:%d", e.Line, e.Column)
	if e.File != "" {
		loc = e.File + ":" + loc
	}
	return fmt.Sprintf("%s: syntax error [%s]: %s", loc, e.Code, e.Message())
}

// IsIncomplete reports whether err means the input ended inside an open
// expression or list, i.e. more input could complete it.
func IsIncomplete(err error) bool {
	var pe *ParseError
	if !errors.As(err, &pe) {
		return false
	}
	return pe.Code == ErrP003 || pe.Code == ErrP004
}
