package parser_test

import (
	"testing"

	"github.com/decisivestrike/uncommon-lisp/internal/diagnostics"
	"github.com/decisivestrike/uncommon-lisp/internal/lexer"
	"github.com/decisivestrike/uncommon-lisp/internal/parser"
	"github.com/decisivestrike/uncommon-lisp/internal/pipeline"
)

// parseWithError runs the lexer+parser and returns the syntax error.
func parseWithError(input string) *diagnostics.ParseError {
	ctx := &pipeline.PipelineContext{SourceCode: input, FilePath: "test.ul"}
	lp := &lexer.LexerProcessor{}
	ctx = lp.Process(ctx)
	pp := &parser.ParserProcessor{}
	ctx = pp.Process(ctx)
	return ctx.ParseError
}

// expectError asserts a syntax error with the given code and position.
func expectError(t *testing.T, input string, code diagnostics.ErrorCode, line, col int) *diagnostics.ParseError {
	t.Helper()
	err := parseWithError(input)
	if err == nil {
		t.Fatalf("expected error %s, but got none\ninput: %s", code, input)
	}
	if err.Code != code {
		t.Fatalf("expected error %s, got %v\ninput: %s", code, err, input)
	}
	if err.Line != line || err.Column != col {
		t.Errorf("expected %s at %d:%d, got %d:%d\ninput: %s", code, line, col, err.Line, err.Column, input)
	}
	if err.File != "test.ul" {
		t.Errorf("expected file to be set, got %q", err.File)
	}
	return err
}

func TestP001_UnterminatedString(t *testing.T) {
	expectError(t, `(print "abc`, diagnostics.ErrP001, 1, 8)
}

func TestP001_StringSpanningLines(t *testing.T) {
	expectError(t, "(print \"a\nb\")", diagnostics.ErrP001, 1, 8)
}

func TestP002_UnknownCharacter(t *testing.T) {
	err := expectError(t, "(add 1 ^)", diagnostics.ErrP002, 1, 8)
	if err.Char != '^' {
		t.Errorf("expected char '^', got %q", err.Char)
	}
}

func TestP002_LoneMinus(t *testing.T) {
	err := expectError(t, "(add -)", diagnostics.ErrP002, 1, 6)
	if err.Char != '-' {
		t.Errorf("expected char '-', got %q", err.Char)
	}
}

func TestP002_StrayCloser(t *testing.T) {
	expectError(t, "(add 1 ])", diagnostics.ErrP002, 1, 8)
	expectError(t, "(add [1 2)", diagnostics.ErrP002, 1, 10)
}

func TestP003_IncompleteExpression(t *testing.T) {
	expectError(t, "(add 1 2", diagnostics.ErrP003, 1, 1)
	expectError(t, "(", diagnostics.ErrP003, 1, 1)
	expectError(t, "(add 1)\n  (sub (mul 2 3)", diagnostics.ErrP003, 2, 3)
}

func TestP004_IncompleteList(t *testing.T) {
	expectError(t, "(add [1 2", diagnostics.ErrP004, 1, 6)
}

func TestP005_ExpectedIdentifier(t *testing.T) {
	expectError(t, "(1 2)", diagnostics.ErrP005, 1, 2)
	expectError(t, "()", diagnostics.ErrP005, 1, 2)
	expectError(t, `( "name" 1)`, diagnostics.ErrP005, 1, 3)
	expectError(t, "([x] 1)", diagnostics.ErrP005, 1, 2)
}

func TestIncompleteErrorsAreRecognised(t *testing.T) {
	for _, input := range []string{"(add 1", "(add [1"} {
		if !diagnostics.IsIncomplete(parseWithError(input)) {
			t.Errorf("%q: expected an incomplete-input error", input)
		}
	}
	if diagnostics.IsIncomplete(parseWithError("(1)")) {
		t.Error("ExpectedIdentifier must not count as incomplete input")
	}
}
