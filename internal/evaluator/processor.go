package evaluator

import (
	"errors"

	"github.com/decisivestrike/uncommon-lisp/internal/pipeline"
)

// EvaluatorProcessor evaluates every parsed form in order. A runtime error
// is recorded against its form and evaluation moves on to the next one.
// Forms parsed before a syntax error are still evaluated.
type EvaluatorProcessor struct {
	// Evaluator and Scope are created on first use when nil, so a caller
	// that keeps the processor keeps its bindings across runs.
	Evaluator *Evaluator
	Scope     *Scope
}

func (ep *EvaluatorProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Program == nil {
		return ctx
	}
	if ep.Evaluator == nil {
		ep.Evaluator = New()
	}
	if ep.Scope == nil {
		ep.Scope = NewScope()
	}

	for _, form := range ctx.Program.Forms {
		val, err := ep.Evaluator.Evaluate(form, ep.Scope)
		if err != nil {
			var rerr *RuntimeError
			if errors.As(err, &rerr) && rerr.File == "" {
				rerr.File = ctx.FilePath
			}
		}
		ctx.Results = append(ctx.Results, pipeline.FormResult{Form: form, Value: val, Err: err})
	}
	return ctx
}
