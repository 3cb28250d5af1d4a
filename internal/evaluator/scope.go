package evaluator

import (
	"sort"

	"github.com/decisivestrike/uncommon-lisp/internal/ast"
)

// UserFunction is a function declared with func. Body is a template: each
// call rewrites a copy of it and never mutates the original.
type UserFunction struct {
	Name   string
	Params []*ast.Identifier
	Body   *ast.Expression
}

// Scope is the single binding table of a running program. Variables and
// functions live in separate namespaces. There are no nested frames.
//
// A Scope is not safe for concurrent use.
type Scope struct {
	variables map[string]ast.Value
	functions map[string]*UserFunction
}

func NewScope() *Scope {
	return &Scope{
		variables: make(map[string]ast.Value),
		functions: make(map[string]*UserFunction),
	}
}

func (s *Scope) Get(name string) (ast.Value, bool) {
	v, ok := s.variables[name]
	return v, ok
}

// Set binds name, replacing any previous value.
func (s *Scope) Set(name string, val ast.Value) ast.Value {
	s.variables[name] = val
	return val
}

func (s *Scope) Function(name string) (*UserFunction, bool) {
	fn, ok := s.functions[name]
	return fn, ok
}

func (s *Scope) Define(fn *UserFunction) {
	s.functions[fn.Name] = fn
}

// VariableNames returns the bound variable names in sorted order.
func (s *Scope) VariableNames() []string {
	names := make([]string, 0, len(s.variables))
	for name := range s.variables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FunctionNames returns the declared function names in sorted order.
func (s *Scope) FunctionNames() []string {
	names := make([]string, 0, len(s.functions))
	for name := range s.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
