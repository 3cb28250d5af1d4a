package evaluator

import (
	"errors"
	"strconv"

	"github.com/decisivestrike/uncommon-lisp/internal/ast"
)

// AsValue reduces ent to a Value. Identifiers are looked up as variables
// and read as nil when unbound; expressions are evaluated.
func (e *Evaluator) AsValue(ent ast.Entity, scope *Scope) (ast.Value, error) {
	switch ent := ent.(type) {
	case ast.Value:
		return ent, nil
	case *ast.Identifier:
		if val, ok := scope.Get(ent.Name); ok {
			return val, nil
		}
		return ast.NIL, nil
	case *ast.Expression:
		return e.Evaluate(ent, scope)
	}
	return nil, typeMismatch(ast.ListType, ent.Datatype())
}

// AsNumber coerces ent to a float. Numeric strings are accepted.
func (e *Evaluator) AsNumber(ent ast.Entity, scope *Scope) (float64, error) {
	val, err := e.AsValue(ent, scope)
	if err != nil {
		return 0, err
	}
	return toNumber(val)
}

// toNumber parses strings the way number literals are read: text out of
// float64 range saturates to ±Inf.
func toNumber(val ast.Value) (float64, error) {
	switch val := val.(type) {
	case *ast.Number:
		return val.Value, nil
	case *ast.String:
		f, err := strconv.ParseFloat(val.Value, 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return 0, typeMismatch(ast.NumberType, ast.StringType)
		}
		return f, nil
	}
	return 0, typeMismatch(ast.NumberType, val.Datatype())
}

// AsString coerces ent to its canonical text.
func (e *Evaluator) AsString(ent ast.Entity, scope *Scope) (string, error) {
	val, err := e.AsValue(ent, scope)
	if err != nil {
		return "", err
	}
	return val.String(), nil
}

// AsBool coerces ent to a truth value: non-zero numbers and non-empty
// strings and lists are true, nil is false.
func (e *Evaluator) AsBool(ent ast.Entity, scope *Scope) (bool, error) {
	val, err := e.AsValue(ent, scope)
	if err != nil {
		return false, err
	}
	return Truthy(val), nil
}

func Truthy(val ast.Value) bool {
	switch val := val.(type) {
	case *ast.Bool:
		return val.Value
	case *ast.Number:
		return val.Value != 0
	case *ast.String:
		return val.Value != ""
	case *ast.List:
		return len(val.Elements) > 0
	}
	return false
}

// asIdentifier requires ent to be an identifier as written, without
// resolving it.
func asIdentifier(ent ast.Entity) (*ast.Identifier, error) {
	if ident, ok := ent.(*ast.Identifier); ok {
		return ident, nil
	}
	return nil, typeMismatch(ast.IdentifierType, ent.Datatype())
}
