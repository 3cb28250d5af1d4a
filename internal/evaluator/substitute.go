package evaluator

import "github.com/decisivestrike/uncommon-lisp/internal/ast"

// Substitute returns a copy of body in which every argument that is one of
// params is replaced by the matching entry of args, descending into nested
// expressions. All parameters are replaced in one pass, so an argument that
// itself mentions a parameter name is left as written. Function names and
// list contents are not rewritten. body is not modified.
func Substitute(body *ast.Expression, params []*ast.Identifier, args []ast.Entity) *ast.Expression {
	bindings := make(map[string]ast.Entity, len(params))
	for i, param := range params {
		if i < len(args) {
			bindings[param.Name] = args[i]
		}
	}
	return substitute(body, bindings)
}

func substitute(expr *ast.Expression, bindings map[string]ast.Entity) *ast.Expression {
	out := &ast.Expression{
		Function: expr.Function,
		Args:     make([]ast.Entity, len(expr.Args)),
		Line:     expr.Line,
		Column:   expr.Column,
	}
	for i, arg := range expr.Args {
		switch arg := arg.(type) {
		case *ast.Identifier:
			if replacement, ok := bindings[arg.Name]; ok {
				out.Args[i] = replacement
				continue
			}
		case *ast.Expression:
			out.Args[i] = substitute(arg, bindings)
			continue
		}
		out.Args[i] = arg
	}
	return out
}
