package parser

import (
	"github.com/decisivestrike/uncommon-lisp/internal/lexer"
	"github.com/decisivestrike/uncommon-lisp/internal/pipeline"
)

type ParserProcessor struct{}

func (pp *ParserProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.TokenStream == nil {
		ctx.TokenStream = lexer.New(ctx.SourceCode)
	}

	program, err := New(ctx.TokenStream).ParseProgram()
	program.File = ctx.FilePath
	ctx.Program = program

	if err != nil {
		if err.File == "" {
			err.File = ctx.FilePath
		}
		ctx.ParseError = err
	}
	return ctx
}
