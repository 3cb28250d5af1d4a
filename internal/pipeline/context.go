package pipeline

import (
	"github.com/decisivestrike/uncommon-lisp/internal/ast"
	"github.com/decisivestrike/uncommon-lisp/internal/diagnostics"
	"github.com/decisivestrike/uncommon-lisp/internal/token"
)

// Processor is a single stage of the pipeline.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// TokenStream is the lexer as seen by the parser stage. Tokens are pulled
// one at a time; SkipToForm drops text up to the next top-level '('.
type TokenStream interface {
	NextToken() token.Token
	SkipToForm() bool
}

// FormResult is the outcome of evaluating one top-level form.
type FormResult struct {
	Form  *ast.Expression
	Value ast.Value
	Err   error
}

// PipelineContext carries the state shared between stages.
type PipelineContext struct {
	SourceCode  string
	FilePath    string
	TokenStream TokenStream
	Program     *ast.Program
	// ParseError is the first syntax error. Forms parsed before it are
	// still present in Program.
	ParseError *diagnostics.ParseError
	Results    []FormResult
}

func NewPipelineContext(source string) *PipelineContext {
	return &PipelineContext{SourceCode: source}
}

// RuntimeErrors returns the errors of every form that failed.
func (c *PipelineContext) RuntimeErrors() []error {
	var errs []error
	for _, r := range c.Results {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	return errs
}

// LastValue returns the value of the last form that succeeded, or nil.
func (c *PipelineContext) LastValue() ast.Value {
	for i := len(c.Results) - 1; i >= 0; i-- {
		if c.Results[i].Err == nil {
			return c.Results[i].Value
		}
	}
	return nil
}
