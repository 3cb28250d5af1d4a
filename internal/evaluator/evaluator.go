package evaluator

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/decisivestrike/uncommon-lisp/internal/ast"
	"github.com/decisivestrike/uncommon-lisp/internal/config"
)

type Evaluator struct {
	// Context for cancellation
	Context context.Context

	// Out receives print output.
	Out io.Writer

	// MaxDepth bounds the nesting of Evaluate calls. Zero disables the
	// check, in which case runaway recursion exhausts the goroutine stack
	// and kills the process.
	MaxDepth int

	// depth tracks the current nesting depth of Evaluate calls
	depth int
}

func New() *Evaluator {
	return &Evaluator{
		Out:      os.Stdout,
		MaxDepth: config.DefaultMaxDepth,
	}
}

// Evaluate reduces expr to a Value. Builtins are looked up before the
// scope's user functions, so a user function can never replace one.
func (e *Evaluator) Evaluate(expr *ast.Expression, scope *Scope) (ast.Value, error) {
	e.depth++
	defer func() { e.depth-- }()

	if e.MaxDepth > 0 && e.depth > e.MaxDepth {
		return nil, locate(&RuntimeError{Kind: RecursionLimit, Max: e.MaxDepth}, expr)
	}
	if err := e.checkCancelled(); err != nil {
		return nil, locate(err, expr)
	}

	val, err := e.evalCore(expr, scope)
	if err != nil {
		return nil, locate(err, expr)
	}
	return val, nil
}

func (e *Evaluator) evalCore(expr *ast.Expression, scope *Scope) (ast.Value, error) {
	if expr.Function == nil {
		return ast.NIL, nil
	}
	name := expr.Function.Name

	if builtin, ok := builtins[name]; ok {
		return builtin.Fn(e, expr.Args, scope)
	}
	if fn, ok := scope.Function(name); ok {
		return e.callUserFunction(fn, expr.Args, scope)
	}
	return nil, undefinedFunction(name)
}

func (e *Evaluator) callUserFunction(fn *UserFunction, args []ast.Entity, scope *Scope) (ast.Value, error) {
	if len(args) != len(fn.Params) {
		return nil, invalidArgCount(len(fn.Params), len(args))
	}
	return e.Evaluate(Substitute(fn.Body, fn.Params, args), scope)
}

func (e *Evaluator) checkCancelled() *RuntimeError {
	if e.Context == nil {
		return nil
	}
	select {
	case <-e.Context.Done():
		return &RuntimeError{Kind: Cancelled, Cause: e.Context.Err()}
	default:
		return nil
	}
}

// locate stamps the position of expr onto a runtime error that has none
// yet, so the innermost failing expression wins.
func locate(err error, expr *ast.Expression) error {
	var rerr *RuntimeError
	if errors.As(err, &rerr) && rerr.Line == 0 {
		rerr.Line = expr.Line
		rerr.Column = expr.Column
	}
	return err
}
