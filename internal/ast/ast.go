// Package ast holds the entity model produced by the parser: primitives,
// lists, identifiers and unevaluated function-call expressions.
package ast

import (
	"math"
	"strconv"
	"strings"
)

// Entity is any node produced by the parser.
type Entity interface {
	entityNode()
	Datatype() Datatype
	// String is the canonical text form used by print, string coercion and
	// REPL echo. It is lossy: strings are unquoted and lists lose brackets.
	String() string
	Accept(v Visitor)
}

// Value is an entity evaluation may terminate on: a primitive or a list.
type Value interface {
	Entity
	valueNode()
}

var (
	NIL   = &Nil{}
	TRUE  = &Bool{Value: true}
	FALSE = &Bool{Value: false}
)

// NewBool returns the shared TRUE or FALSE instance.
func NewBool(b bool) *Bool {
	if b {
		return TRUE
	}
	return FALSE
}

type Number struct {
	Value float64
}

func (n *Number) entityNode()        {}
func (n *Number) valueNode()         {}
func (n *Number) Datatype() Datatype { return NumberType }
func (n *Number) String() string     { return FormatNumber(n.Value) }
func (n *Number) Accept(v Visitor)   { v.VisitNumber(n) }

type String struct {
	Value string
}

func (s *String) entityNode()        {}
func (s *String) valueNode()         {}
func (s *String) Datatype() Datatype { return StringType }
func (s *String) String() string     { return s.Value }
func (s *String) Accept(v Visitor)   { v.VisitString(s) }

type Bool struct {
	Value bool
}

func (b *Bool) entityNode()        {}
func (b *Bool) valueNode()         {}
func (b *Bool) Datatype() Datatype { return BoolType }
func (b *Bool) String() string     { return strconv.FormatBool(b.Value) }
func (b *Bool) Accept(v Visitor)   { v.VisitBool(b) }

type Nil struct{}

func (n *Nil) entityNode()        {}
func (n *Nil) valueNode()         {}
func (n *Nil) Datatype() Datatype { return NilType }
func (n *Nil) String() string     { return "nil" }
func (n *Nil) Accept(v Visitor)   { v.VisitNil(n) }

// List is both a literal value and a container. Its elements are kept as
// written; the evaluator does not reduce them.
type List struct {
	Elements []Entity
}

func (l *List) entityNode()        {}
func (l *List) valueNode()         {}
func (l *List) Datatype() Datatype { return ListType }
func (l *List) String() string     { return joinEntities(l.Elements) }
func (l *List) Accept(v Visitor)   { v.VisitList(l) }

type Identifier struct {
	Name string
}

func (i *Identifier) entityNode()        {}
func (i *Identifier) Datatype() Datatype { return IdentifierType }
func (i *Identifier) String() string     { return i.Name }
func (i *Identifier) Accept(v Visitor)   { v.VisitIdentifier(i) }

// Expression is an unevaluated call (function arg...). Line and Column
// locate the opening parenthesis. A nil Function is the degenerate empty
// call, which the parser never produces.
type Expression struct {
	Function *Identifier
	Args     []Entity
	Line     int
	Column   int
}

func (e *Expression) entityNode()        {}
func (e *Expression) Datatype() Datatype { return ExpressionType }
func (e *Expression) Accept(v Visitor)   { v.VisitExpression(e) }

func (e *Expression) String() string {
	var parts []string
	if e.Function != nil {
		parts = append(parts, e.Function.String())
	}
	for _, arg := range e.Args {
		parts = append(parts, arg.String())
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// Name returns the function identifier's name, or "" for the empty call.
func (e *Expression) Name() string {
	if e.Function == nil {
		return ""
	}
	return e.Function.Name
}

// NewExpression builds a call expression with no source position.
func NewExpression(name string, args ...Entity) *Expression {
	return &Expression{Function: &Identifier{Name: name}, Args: args}
}

// Program is the sequence of top-level forms of one source text.
type Program struct {
	File  string
	Forms []*Expression
}

func (p *Program) Accept(v Visitor) { v.VisitProgram(p) }

// FormatNumber renders f in its shortest round-trip decimal form, without
// exponent notation.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func joinEntities(entities []Entity) string {
	parts := make([]string, len(entities))
	for i, e := range entities {
		parts[i] = e.String()
	}
	return strings.Join(parts, " ")
}
