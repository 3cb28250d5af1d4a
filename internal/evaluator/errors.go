package evaluator

import (
	"fmt"

	"github.com/decisivestrike/uncommon-lisp/internal/ast"
)

type ErrorKind int

const (
	TypeMismatch ErrorKind = iota
	NotEnoughArgs
	TooMuchArgs
	InvalidArgCount
	UndefinedFunction
	RecursionLimit
	Cancelled
)

var errorKindNames = [...]string{
	TypeMismatch:      "TypeMismatch",
	NotEnoughArgs:     "NotEnoughArgs",
	TooMuchArgs:       "TooMuchArgs",
	InvalidArgCount:   "InvalidArgCount",
	UndefinedFunction: "UndefinedFunction",
	RecursionLimit:    "RecursionLimit",
	Cancelled:         "Cancelled",
}

func (k ErrorKind) String() string {
	if k < 0 || int(k) >= len(errorKindNames) {
		return "Unknown"
	}
	return errorKindNames[k]
}

// RuntimeError is a semantic error raised during evaluation. Only the
// fields relevant to Kind are set. Line and Column locate the innermost
// expression that raised it; zero means unknown.
type RuntimeError struct {
	Kind ErrorKind

	Expected ast.Datatype // TypeMismatch
	Found    ast.Datatype // TypeMismatch
	Min      int          // NotEnoughArgs
	Max      int          // TooMuchArgs, RecursionLimit
	Want     int          // InvalidArgCount
	Got      int          // InvalidArgCount
	Name     string       // UndefinedFunction

	Line   int
	Column int
	File   string

	// Cause is the context error behind Cancelled.
	Cause error
}

func (e *RuntimeError) Message() string {
	switch e.Kind {
	case TypeMismatch:
		return fmt.Sprintf("type mismatch: expected %s, found %s", e.Expected, e.Found)
	case NotEnoughArgs:
		return fmt.Sprintf("not enough arguments: need at least %d", e.Min)
	case TooMuchArgs:
		return fmt.Sprintf("too many arguments: at most %d allowed", e.Max)
	case InvalidArgCount:
		return fmt.Sprintf("invalid argument count: expected %d, got %d", e.Want, e.Got)
	case UndefinedFunction:
		return fmt.Sprintf("undefined function '%s'", e.Name)
	case RecursionLimit:
		return fmt.Sprintf("maximum recursion depth exceeded (%d)", e.Max)
	case Cancelled:
		if e.Cause != nil {
			return fmt.Sprintf("evaluation cancelled: %v", e.Cause)
		}
		return "evaluation cancelled"
	}
	return e.Kind.String()
}

func (e *RuntimeError) Error() string {
	msg := fmt.Sprintf("runtime error [%s]: %s", e.Kind, e.Message())
	if e.Line == 0 {
		return msg
	}
	loc := fmt.Sprintf("%d:%d", e.Line, e.Column)
	if e.File != "" {
		loc = e.File + ":" + loc
	}
	return loc + ": " + msg
}

func (e *RuntimeError) Unwrap() error {
	return e.Cause
}

func typeMismatch(expected, found ast.Datatype) *RuntimeError {
	return &RuntimeError{Kind: TypeMismatch, Expected: expected, Found: found}
}

func notEnoughArgs(min int) *RuntimeError {
	return &RuntimeError{Kind: NotEnoughArgs, Min: min}
}

func tooMuchArgs(max int) *RuntimeError {
	return &RuntimeError{Kind: TooMuchArgs, Max: max}
}

func invalidArgCount(want, got int) *RuntimeError {
	return &RuntimeError{Kind: InvalidArgCount, Want: want, Got: got}
}

func undefinedFunction(name string) *RuntimeError {
	return &RuntimeError{Kind: UndefinedFunction, Name: name}
}
