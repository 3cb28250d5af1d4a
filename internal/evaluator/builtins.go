package evaluator

import (
	"sort"
	"strings"

	"github.com/decisivestrike/uncommon-lisp/internal/ast"
	"github.com/decisivestrike/uncommon-lisp/internal/config"
)

// BuiltinFunction receives the unevaluated arguments of a call and coerces
// only what it needs, in the order it needs it.
type BuiltinFunction func(e *Evaluator, args []ast.Entity, scope *Scope) (ast.Value, error)

type Builtin struct {
	Fn   BuiltinFunction
	Name string // Name of the builtin
}

// builtins is filled in init: the functions reach back into Evaluate, which
// reads this table.
var builtins map[string]*Builtin

func init() {
	builtins = make(map[string]*Builtin)
	register := func(name string, fn BuiltinFunction) {
		builtins[name] = &Builtin{Fn: fn, Name: name}
	}

	register(config.VarFuncName, builtinVar)
	register(config.FuncFuncName, builtinFunc)
	register(config.TypeOfFuncName, builtinTypeOf)
	register(config.IfFuncName, builtinIf)
	register(config.WhileFuncName, builtinWhile)

	register(config.EqFuncName, comparison(func(a, b ast.Value) (bool, error) { return equalValues(a, b), nil }))
	register(config.NeFuncName, comparison(func(a, b ast.Value) (bool, error) { return !equalValues(a, b), nil }))
	register(config.LtFuncName, comparison(ordered(func(c int) bool { return c < 0 })))
	register(config.GtFuncName, comparison(ordered(func(c int) bool { return c > 0 })))
	register(config.LeFuncName, comparison(ordered(func(c int) bool { return c <= 0 })))
	register(config.GeFuncName, comparison(ordered(func(c int) bool { return c >= 0 })))

	register(config.AddFuncName, fold(0, func(acc, x float64) float64 { return acc + x }))
	register(config.MulFuncName, fold(1, func(acc, x float64) float64 { return acc * x }))
	register(config.SubFuncName, reduce(func(acc, x float64) float64 { return acc - x }))
	register(config.DivFuncName, reduce(func(acc, x float64) float64 { return acc / x }))

	register(config.ConcatFuncName, builtinConcat)
	register(config.PrintFuncName, builtinPrint)
}

// IsBuiltin reports whether name is served by the builtin table.
func IsBuiltin(name string) bool {
	_, ok := builtins[name]
	return ok
}

// BuiltinNames returns the builtin names in sorted order.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// (var name value)
func builtinVar(e *Evaluator, args []ast.Entity, scope *Scope) (ast.Value, error) {
	if len(args) != 2 {
		return nil, invalidArgCount(2, len(args))
	}
	name, err := asIdentifier(args[0])
	if err != nil {
		return nil, err
	}
	val, err := e.AsValue(args[1], scope)
	if err != nil {
		return nil, err
	}
	return scope.Set(name.Name, val), nil
}

// (func name [params...] body)
func builtinFunc(e *Evaluator, args []ast.Entity, scope *Scope) (ast.Value, error) {
	if len(args) != 3 {
		return nil, invalidArgCount(3, len(args))
	}
	name, err := asIdentifier(args[0])
	if err != nil {
		return nil, err
	}

	list, ok := args[1].(*ast.List)
	if !ok {
		val, err := e.AsValue(args[1], scope)
		if err != nil {
			return nil, err
		}
		if list, ok = val.(*ast.List); !ok {
			return nil, typeMismatch(ast.ListType, val.Datatype())
		}
	}
	params := make([]*ast.Identifier, len(list.Elements))
	for i, elem := range list.Elements {
		if params[i], err = asIdentifier(elem); err != nil {
			return nil, err
		}
	}

	body, ok := args[2].(*ast.Expression)
	if !ok {
		return nil, typeMismatch(ast.ExpressionType, args[2].Datatype())
	}

	scope.Define(&UserFunction{Name: name.Name, Params: params, Body: body})
	return ast.NIL, nil
}

// (typeof x) returns the type name as a string. A bare identifier reports
// its variable's type, or Function when it names a function.
func builtinTypeOf(e *Evaluator, args []ast.Entity, scope *Scope) (ast.Value, error) {
	if len(args) != 1 {
		return nil, invalidArgCount(1, len(args))
	}
	if ident, ok := args[0].(*ast.Identifier); ok {
		if val, ok := scope.Get(ident.Name); ok {
			return &ast.String{Value: val.Datatype().String()}, nil
		}
		if _, ok := scope.Function(ident.Name); ok || IsBuiltin(ident.Name) {
			return &ast.String{Value: ast.FunctionType.String()}, nil
		}
		return nil, undefinedFunction(ident.Name)
	}
	val, err := e.AsValue(args[0], scope)
	if err != nil {
		return nil, err
	}
	return &ast.String{Value: val.Datatype().String()}, nil
}

// (if cond then [else]) evaluates only the branch it takes.
func builtinIf(e *Evaluator, args []ast.Entity, scope *Scope) (ast.Value, error) {
	if len(args) < 2 {
		return nil, notEnoughArgs(2)
	}
	if len(args) > 3 {
		return nil, tooMuchArgs(3)
	}
	cond, err := e.AsBool(args[0], scope)
	if err != nil {
		return nil, err
	}
	if cond {
		return e.AsValue(args[1], scope)
	}
	if len(args) == 3 {
		return e.AsValue(args[2], scope)
	}
	return ast.NIL, nil
}

// (while cond body...) re-tests cond before every pass and returns the
// last body value, or nil if the body never ran.
func builtinWhile(e *Evaluator, args []ast.Entity, scope *Scope) (ast.Value, error) {
	if len(args) < 2 {
		return nil, notEnoughArgs(2)
	}
	var result ast.Value = ast.NIL
	for {
		if err := e.checkCancelled(); err != nil {
			return nil, err
		}
		cond, err := e.AsBool(args[0], scope)
		if err != nil {
			return nil, err
		}
		if !cond {
			return result, nil
		}
		for _, body := range args[1:] {
			if result, err = e.AsValue(body, scope); err != nil {
				return nil, err
			}
		}
	}
}

// comparison checks the first argument against each of the others and
// stops at the first pair that fails.
func comparison(rel func(a, b ast.Value) (bool, error)) BuiltinFunction {
	return func(e *Evaluator, args []ast.Entity, scope *Scope) (ast.Value, error) {
		if len(args) < 2 {
			return nil, notEnoughArgs(2)
		}
		first, err := e.AsValue(args[0], scope)
		if err != nil {
			return nil, err
		}
		for _, arg := range args[1:] {
			other, err := e.AsValue(arg, scope)
			if err != nil {
				return nil, err
			}
			ok, err := rel(first, other)
			if err != nil {
				return nil, err
			}
			if !ok {
				return ast.FALSE, nil
			}
		}
		return ast.TRUE, nil
	}
}

// equalValues compares numbers with IEEE semantics, so nan is never equal
// to anything. Lists compare element-wise the same way.
func equalValues(a, b ast.Value) bool {
	switch a := a.(type) {
	case *ast.Number:
		bn, ok := b.(*ast.Number)
		return ok && a.Value == bn.Value
	case *ast.List:
		bl, ok := b.(*ast.List)
		if !ok || len(a.Elements) != len(bl.Elements) {
			return false
		}
		for i, el := range a.Elements {
			av, aok := el.(ast.Value)
			bv, bok := bl.Elements[i].(ast.Value)
			if aok && bok {
				if !equalValues(av, bv) {
					return false
				}
				continue
			}
			if !ast.Equal(el, bl.Elements[i]) {
				return false
			}
		}
		return true
	}
	return ast.Equal(a, b)
}

// ordered compares two strings lexicographically and anything else as
// numbers.
func ordered(accept func(cmp int) bool) func(a, b ast.Value) (bool, error) {
	return func(a, b ast.Value) (bool, error) {
		sa, aok := a.(*ast.String)
		sb, bok := b.(*ast.String)
		if aok && bok {
			return accept(strings.Compare(sa.Value, sb.Value)), nil
		}
		x, err := toNumber(a)
		if err != nil {
			return false, err
		}
		y, err := toNumber(b)
		if err != nil {
			return false, err
		}
		switch {
		case x < y:
			return accept(-1), nil
		case x > y:
			return accept(1), nil
		case x == y:
			return accept(0), nil
		}
		// NaN is unordered.
		return false, nil
	}
}

func fold(identity float64, op func(acc, x float64) float64) BuiltinFunction {
	return func(e *Evaluator, args []ast.Entity, scope *Scope) (ast.Value, error) {
		acc := identity
		for _, arg := range args {
			x, err := e.AsNumber(arg, scope)
			if err != nil {
				return nil, err
			}
			acc = op(acc, x)
		}
		return &ast.Number{Value: acc}, nil
	}
}

func reduce(op func(acc, x float64) float64) BuiltinFunction {
	return func(e *Evaluator, args []ast.Entity, scope *Scope) (ast.Value, error) {
		if len(args) < 2 {
			return nil, notEnoughArgs(2)
		}
		acc, err := e.AsNumber(args[0], scope)
		if err != nil {
			return nil, err
		}
		for _, arg := range args[1:] {
			x, err := e.AsNumber(arg, scope)
			if err != nil {
				return nil, err
			}
			acc = op(acc, x)
		}
		return &ast.Number{Value: acc}, nil
	}
}

func builtinConcat(e *Evaluator, args []ast.Entity, scope *Scope) (ast.Value, error) {
	var sb strings.Builder
	for _, arg := range args {
		s, err := e.AsString(arg, scope)
		if err != nil {
			return nil, err
		}
		sb.WriteString(s)
	}
	return &ast.String{Value: sb.String()}, nil
}
