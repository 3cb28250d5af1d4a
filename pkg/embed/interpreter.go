package ul

import (
	"context"
	"fmt"
	"io"
	"reflect"

	"github.com/decisivestrike/uncommon-lisp/internal/ast"
	"github.com/decisivestrike/uncommon-lisp/internal/diagnostics"
	"github.com/decisivestrike/uncommon-lisp/internal/evaluator"
	"github.com/decisivestrike/uncommon-lisp/internal/parser"
)

// RuntimeError and ParseError let callers inspect failures with errors.As.
type (
	RuntimeError = evaluator.RuntimeError
	ParseError   = diagnostics.ParseError
)

// Interpreter is one independent program: its own variables, functions
// and output. It is not safe for concurrent use; run one per goroutine.
type Interpreter struct {
	eval       *evaluator.Evaluator
	scope      *evaluator.Scope
	marshaller *Marshaller
}

type Option func(*Interpreter)

// WithOutput redirects print.
func WithOutput(w io.Writer) Option {
	return func(in *Interpreter) { in.eval.Out = w }
}

func WithMaxDepth(n int) Option {
	return func(in *Interpreter) { in.eval.MaxDepth = n }
}

// WithContext makes evaluation stop with a Cancelled error once ctx is done.
func WithContext(ctx context.Context) Option {
	return func(in *Interpreter) { in.eval.Context = ctx }
}

func New(opts ...Option) *Interpreter {
	in := &Interpreter{
		eval:       evaluator.New(),
		scope:      evaluator.NewScope(),
		marshaller: NewMarshaller(),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Reset drops every variable and function.
func (in *Interpreter) Reset() {
	in.scope = evaluator.NewScope()
}

// Eval runs code and returns the Go value of its last form. Nothing runs
// if code does not parse.
func (in *Interpreter) Eval(code string) (interface{}, error) {
	val, err := in.evalSource(code)
	if err != nil {
		return nil, err
	}
	return in.marshaller.FromValue(val, nil)
}

// EvalString is like Eval but returns the canonical text of the result.
func (in *Interpreter) EvalString(code string) (string, error) {
	val, err := in.evalSource(code)
	if err != nil {
		return "", err
	}
	return val.String(), nil
}

func (in *Interpreter) evalSource(code string) (ast.Value, error) {
	forms, err := parser.Parse(code)
	if err != nil {
		return nil, err
	}
	var last ast.Value = ast.NIL
	for _, form := range forms {
		val, err := in.eval.Evaluate(form, in.scope)
		if err != nil {
			return nil, err
		}
		last = val
	}
	return last, nil
}

// Set binds a Go value as a variable.
func (in *Interpreter) Set(name string, val interface{}) error {
	v, err := in.marshaller.ToValue(val)
	if err != nil {
		return fmt.Errorf("set %s: %w", name, err)
	}
	in.scope.Set(name, v)
	return nil
}

// Get returns a variable as a Go value.
func (in *Interpreter) Get(name string) (interface{}, error) {
	val, ok := in.scope.Get(name)
	if !ok {
		return nil, fmt.Errorf("variable %s is not defined", name)
	}
	return in.marshaller.FromValue(val, nil)
}

// GetAs converts a variable into the type pointed to by target.
func (in *Interpreter) GetAs(name string, target interface{}) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("get %s: target must be a non-nil pointer", name)
	}
	val, ok := in.scope.Get(name)
	if !ok {
		return fmt.Errorf("variable %s is not defined", name)
	}
	out, err := in.marshaller.FromValue(val, rv.Elem().Type())
	if err != nil {
		return fmt.Errorf("get %s: %w", name, err)
	}
	if out == nil {
		rv.Elem().Set(reflect.Zero(rv.Elem().Type()))
		return nil
	}
	rv.Elem().Set(reflect.ValueOf(out))
	return nil
}

// Call invokes a builtin or declared function with Go arguments.
func (in *Interpreter) Call(funcName string, args ...interface{}) (interface{}, error) {
	expr := ast.NewExpression(funcName)
	for i, arg := range args {
		v, err := in.marshaller.ToValue(arg)
		if err != nil {
			return nil, fmt.Errorf("argument %d conversion failed: %w", i, err)
		}
		expr.Args = append(expr.Args, v)
	}
	val, err := in.eval.Evaluate(expr, in.scope)
	if err != nil {
		return nil, err
	}
	return in.marshaller.FromValue(val, nil)
}

// Parse checks code without running it and returns each top-level form in
// canonical text.
func (in *Interpreter) Parse(code string) ([]string, error) {
	forms, err := parser.Parse(code)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(forms))
	for i, form := range forms {
		out[i] = form.String()
	}
	return out, nil
}

// Variables lists the bound variable names.
func (in *Interpreter) Variables() []string {
	return in.scope.VariableNames()
}

// Functions lists the declared function names.
func (in *Interpreter) Functions() []string {
	return in.scope.FunctionNames()
}
