package lexer

import "github.com/decisivestrike/uncommon-lisp/internal/pipeline"

type LexerProcessor struct{}

func (lp *LexerProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	ctx.TokenStream = New(ctx.SourceCode)
	return ctx
}
