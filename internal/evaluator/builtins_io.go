package evaluator

import (
	"fmt"
	"strings"

	"github.com/decisivestrike/uncommon-lisp/internal/ast"
)

// (print args...) writes the space-joined text of its arguments, with
// backslash escapes interpreted, followed by a newline.
func builtinPrint(e *Evaluator, args []ast.Entity, scope *Scope) (ast.Value, error) {
	parts := make([]string, len(args))
	for i, arg := range args {
		s, err := e.AsString(arg, scope)
		if err != nil {
			return nil, err
		}
		parts[i] = s
	}
	fmt.Fprintln(e.Out, Unescape(strings.Join(parts, " ")))
	return ast.NIL, nil
}

// Unescape interprets \n, \r, \t and \\. Any other escaped character is
// kept without its backslash; a trailing lone backslash is dropped.
func Unescape(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s))
	escaped := false
	for _, r := range s {
		if !escaped {
			if r == '\\' {
				escaped = true
			} else {
				sb.WriteRune(r)
			}
			continue
		}
		escaped = false
		switch r {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
