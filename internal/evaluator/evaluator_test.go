package evaluator_test

import (
	"bytes"
	"context"
	"errors"
	"math"
	"testing"

	"github.com/decisivestrike/uncommon-lisp/internal/ast"
	"github.com/decisivestrike/uncommon-lisp/internal/evaluator"
	"github.com/decisivestrike/uncommon-lisp/internal/parser"
)

// run parses src and evaluates every form against scope, returning the
// value of the last form or the first error.
func run(t *testing.T, e *evaluator.Evaluator, scope *evaluator.Scope, src string) (ast.Value, error) {
	t.Helper()
	forms, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	var last ast.Value = ast.NIL
	for _, form := range forms {
		val, err := e.Evaluate(form, scope)
		if err != nil {
			return nil, err
		}
		last = val
	}
	return last, nil
}

func newEvaluator() (*evaluator.Evaluator, *bytes.Buffer) {
	var out bytes.Buffer
	e := evaluator.New()
	e.Out = &out
	return e, &out
}

func evalOK(t *testing.T, src string) ast.Value {
	t.Helper()
	e, _ := newEvaluator()
	val, err := run(t, e, evaluator.NewScope(), src)
	if err != nil {
		t.Fatalf("%s: unexpected error: %v", src, err)
	}
	return val
}

func evalErr(t *testing.T, src string, kind evaluator.ErrorKind) *evaluator.RuntimeError {
	t.Helper()
	e, _ := newEvaluator()
	_, err := run(t, e, evaluator.NewScope(), src)
	if err == nil {
		t.Fatalf("%s: expected %s, got no error", src, kind)
	}
	var rerr *evaluator.RuntimeError
	if !errors.As(err, &rerr) {
		t.Fatalf("%s: expected a RuntimeError, got %T: %v", src, err, err)
	}
	if rerr.Kind != kind {
		t.Fatalf("%s: expected %s, got %v", src, kind, err)
	}
	return rerr
}

func expectNumber(t *testing.T, src string, want float64) {
	t.Helper()
	val := evalOK(t, src)
	n, ok := val.(*ast.Number)
	if !ok {
		t.Fatalf("%s: expected Number, got %s (%s)", src, val.Datatype(), val)
	}
	if n.Value != want && !(math.IsNaN(want) && math.IsNaN(n.Value)) {
		t.Errorf("%s = %v, want %v", src, n.Value, want)
	}
}

func expectString(t *testing.T, src string, want string) {
	t.Helper()
	val := evalOK(t, src)
	s, ok := val.(*ast.String)
	if !ok {
		t.Fatalf("%s: expected String, got %s (%s)", src, val.Datatype(), val)
	}
	if s.Value != want {
		t.Errorf("%s = %q, want %q", src, s.Value, want)
	}
}

func expectBool(t *testing.T, src string, want bool) {
	t.Helper()
	val := evalOK(t, src)
	b, ok := val.(*ast.Bool)
	if !ok {
		t.Fatalf("%s: expected Bool, got %s (%s)", src, val.Datatype(), val)
	}
	if b.Value != want {
		t.Errorf("%s = %t, want %t", src, b.Value, want)
	}
}

func TestArithmetic(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"(add)", 0},
		{"(add 1 2 3)", 6},
		{"(add 0.1 0.2)", 0.1 + 0.2},
		{"(add -5 2.5)", -2.5},
		{"(mul)", 1},
		{"(mul 2 3 4)", 24},
		{"(sub 10 1 2)", 7},
		{"(div 12 2 3)", 2},
		{"(add (mul 2 3) (sub 10 4))", 12},
		{`(add "2" 3)`, 5},
		{"(div 1 0)", math.Inf(1)},
		{"(div -1 0)", math.Inf(-1)},
		{"(div 0 0)", math.NaN()},
		{`(add "1e400")`, math.Inf(1)},
		{`(add "-1e400" 1)`, math.Inf(-1)},
	}
	for _, tt := range tests {
		expectNumber(t, tt.input, tt.want)
	}
}

func TestSubDivNeedTwoArgs(t *testing.T) {
	for _, src := range []string{"(sub 1)", "(div 1)", "(sub)", "(div)"} {
		if err := evalErr(t, src, evaluator.NotEnoughArgs); err.Min != 2 {
			t.Errorf("%s: Min = %d, want 2", src, err.Min)
		}
	}
}

func TestNumberCoercionRejects(t *testing.T) {
	tests := []struct {
		input string
		found ast.Datatype
	}{
		{"(add true)", ast.BoolType},
		{"(add nil)", ast.NilType},
		{`(add "abc")`, ast.StringType},
		{"(add [1 2])", ast.ListType},
	}
	for _, tt := range tests {
		err := evalErr(t, tt.input, evaluator.TypeMismatch)
		if err.Expected != ast.NumberType || err.Found != tt.found {
			t.Errorf("%s: got expected=%s found=%s", tt.input, err.Expected, err.Found)
		}
	}
}

func TestVariables(t *testing.T) {
	e, _ := newEvaluator()
	scope := evaluator.NewScope()

	if _, err := run(t, e, scope, "(var x 5)"); err != nil {
		t.Fatal(err)
	}
	val, err := e.AsValue(&ast.Identifier{Name: "x"}, scope)
	if err != nil {
		t.Fatal(err)
	}
	if !ast.Equal(val, &ast.Number{Value: 5}) {
		t.Errorf("x = %s, want 5", val)
	}

	if _, err := run(t, e, scope, `(var x "hi")`); err != nil {
		t.Fatal(err)
	}
	val, _ = e.AsValue(&ast.Identifier{Name: "x"}, scope)
	if !ast.Equal(val, &ast.String{Value: "hi"}) {
		t.Errorf("x = %s, want hi", val)
	}
}

func TestVarReturnsStoredValue(t *testing.T) {
	expectNumber(t, "(var x (add 1 1))", 2)
	expectNumber(t, "(var x 3) (var y x) (add y 1)", 4)
}

func TestUnboundIdentifierReadsAsNil(t *testing.T) {
	expectString(t, "(concat ghost)", "nil")
	expectString(t, "(typeof (if true ghost))", "Nil")
}

func TestVarArgumentErrors(t *testing.T) {
	if err := evalErr(t, "(var x)", evaluator.InvalidArgCount); err.Want != 2 || err.Got != 1 {
		t.Errorf("got want=%d got=%d", err.Want, err.Got)
	}
	if err := evalErr(t, "(var 1 2)", evaluator.TypeMismatch); err.Expected != ast.IdentifierType {
		t.Errorf("expected Identifier mismatch, got %v", err)
	}
}

func TestUserFunction(t *testing.T) {
	expectNumber(t, "(func double [x] (add x x)) (double 21)", 42)
	expectString(t, `(func swap [a b] (concat b a)) (swap "x" "y")`, "yx")
	expectNumber(t, "(func nested [x] (add (mul x 2) (sub x 1))) (nested 5)", 14)
}

func TestFuncReturnsNil(t *testing.T) {
	val := evalOK(t, "(func f [] (add 1))")
	if val != ast.NIL {
		t.Errorf("func returned %s, want nil", val)
	}
	expectNumber(t, "(func one [] (add 1)) (one)", 1)
}

func TestRecursiveFunction(t *testing.T) {
	src := `
(func fact [n] (if (le n 1) 1 (mul n (fact (sub n 1)))))
(fact 6)`
	expectNumber(t, src, 720)
}

func TestSubstitutionIsSinglePass(t *testing.T) {
	// a is replaced by the identifier b as written; the caller's b is not
	// confused with the parameter b.
	expectString(t, `(func f [a b] (concat a b)) (var b "q") (f b "z")`, "qz")
}

func TestArgumentsAreLazy(t *testing.T) {
	e, out := newEvaluator()
	scope := evaluator.NewScope()
	src := `(func twice [x] (concat x x)) (twice (concat (print "side") "a"))`
	val, err := run(t, e, scope, src)
	if err != nil {
		t.Fatal(err)
	}
	if val.String() != "nilanila" {
		t.Errorf("got %q", val.String())
	}
	if out.String() != "side\nside\n" {
		t.Errorf("argument should be evaluated once per use, output %q", out.String())
	}
}

func TestBuiltinsTakePrecedence(t *testing.T) {
	expectNumber(t, `(func add [a b] (concat a b)) (add 1 2)`, 3)
}

func TestFuncArgumentErrors(t *testing.T) {
	if err := evalErr(t, "(func f [x])", evaluator.InvalidArgCount); err.Want != 3 || err.Got != 2 {
		t.Errorf("got want=%d got=%d", err.Want, err.Got)
	}
	if err := evalErr(t, "(func f [1] (add))", evaluator.TypeMismatch); err.Expected != ast.IdentifierType {
		t.Errorf("got %v", err)
	}
	if err := evalErr(t, "(func f [x] 5)", evaluator.TypeMismatch); err.Expected != ast.ExpressionType || err.Found != ast.NumberType {
		t.Errorf("got %v", err)
	}
	if err := evalErr(t, "(func f 5 (add))", evaluator.TypeMismatch); err.Expected != ast.ListType {
		t.Errorf("got %v", err)
	}
	if err := evalErr(t, "(func double [x] (add x x)) (double 1 2)", evaluator.InvalidArgCount); err.Want != 1 || err.Got != 2 {
		t.Errorf("got want=%d got=%d", err.Want, err.Got)
	}
}

func TestIf(t *testing.T) {
	expectString(t, `(if (gt 3 2) "yes" "no")`, "yes")
	expectString(t, `(if (lt 3 2) "yes" "no")`, "no")
	if val := evalOK(t, `(if false "yes")`); val != ast.NIL {
		t.Errorf("missing else branch should give nil, got %s", val)
	}
}

func TestIfSkipsUntakenBranch(t *testing.T) {
	e, _ := newEvaluator()
	scope := evaluator.NewScope()
	val, err := run(t, e, scope, `(if (gt 3 2) "yes" (var touched 1))`)
	if err != nil {
		t.Fatal(err)
	}
	if val.String() != "yes" {
		t.Errorf("got %s", val)
	}
	if _, ok := scope.Get("touched"); ok {
		t.Error("the else branch was evaluated")
	}
}

func TestIfArgCount(t *testing.T) {
	if err := evalErr(t, "(if true)", evaluator.NotEnoughArgs); err.Min != 2 {
		t.Errorf("Min = %d", err.Min)
	}
	if err := evalErr(t, "(if true 1 2 3)", evaluator.TooMuchArgs); err.Max != 3 {
		t.Errorf("Max = %d", err.Max)
	}
}

func TestTruthiness(t *testing.T) {
	tests := []struct {
		cond string
		want string
	}{
		{"0", "f"},
		{"1", "t"},
		{"-0.5", "t"},
		{`""`, "f"},
		{`"x"`, "t"},
		{"[]", "f"},
		{"[0]", "t"},
		{"nil", "f"},
		{"true", "t"},
		{"false", "f"},
	}
	for _, tt := range tests {
		expectString(t, `(if `+tt.cond+` "t" "f")`, tt.want)
	}
}

func TestComparisons(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"(eq 1 1 1)", true},
		{"(eq 1 1 2)", false},
		{`(eq "a" "a")`, true},
		{`(eq 1 "1")`, false},
		{"(eq [1 2] [1 2])", true},
		{"(eq nil nil)", true},
		{"(eq (div 0 0) (div 0 0))", false},
		{"(ne (div 0 0) (div 0 0))", true},
		{"(eq (div 1 0) (div 2 0))", true},
		{"(ne 1 2 3)", true},
		{"(ne 1 2 1)", false},
		{"(lt 1 2 3)", true},
		{"(lt 1 2 0)", false},
		{"(gt 3 2 1)", true},
		{"(le 2 2 3)", true},
		{"(ge 2 2 3)", false},
		{`(lt "apple" "banana")`, true},
		{`(gt "b" "a")`, true},
		{`(lt "2" 10)`, true},
		{"(lt 5 1 (nope))", false},
	}
	for _, tt := range tests {
		expectBool(t, tt.input, tt.want)
	}
}

func TestComparisonErrors(t *testing.T) {
	if err := evalErr(t, "(eq 1)", evaluator.NotEnoughArgs); err.Min != 2 {
		t.Errorf("Min = %d", err.Min)
	}
	if err := evalErr(t, `(lt 1 "x")`, evaluator.TypeMismatch); err.Found != ast.StringType {
		t.Errorf("got %v", err)
	}
}

func TestComparisonEvaluatesFirstArgumentOnce(t *testing.T) {
	e, out := newEvaluator()
	_, err := run(t, e, evaluator.NewScope(), `(eq (print "once") nil nil nil)`)
	if err != nil {
		t.Fatal(err)
	}
	if out.String() != "once\n" {
		t.Errorf("output %q", out.String())
	}
}

func TestConcat(t *testing.T) {
	expectString(t, `(concat "a" "b" "c")`, "abc")
	expectString(t, "(concat)", "")
	expectString(t, `(concat "n=" 1.5 " " true " " nil " " [1 "x"])`, "n=1.5 true nil 1 x")
}

func TestTypeOf(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"(typeof 1)", "Number"},
		{`(typeof "s")`, "String"},
		{"(typeof true)", "Bool"},
		{"(typeof nil)", "Nil"},
		{"(typeof [1])", "List"},
		{"(typeof (add 1 2))", "Number"},
		{"(typeof add)", "Function"},
		{"(func f [] (add)) (typeof f)", "Function"},
		{`(var v "x") (typeof v)`, "String"},
	}
	for _, tt := range tests {
		expectString(t, tt.input, tt.want)
	}
}

func TestTypeOfUndefinedName(t *testing.T) {
	if err := evalErr(t, "(typeof undefinedName)", evaluator.UndefinedFunction); err.Name != "undefinedName" {
		t.Errorf("Name = %q", err.Name)
	}
	if err := evalErr(t, "(typeof 1 2)", evaluator.InvalidArgCount); err.Want != 1 {
		t.Errorf("Want = %d", err.Want)
	}
}

func TestUndefinedFunction(t *testing.T) {
	err := evalErr(t, "(nope 1 2)", evaluator.UndefinedFunction)
	if err.Name != "nope" {
		t.Errorf("Name = %q", err.Name)
	}
	if err.Line != 1 || err.Column != 1 {
		t.Errorf("position %d:%d", err.Line, err.Column)
	}
}

func TestErrorLocatesInnermostExpression(t *testing.T) {
	err := evalErr(t, "(add 1\n  (mul 2 (nope)))", evaluator.UndefinedFunction)
	if err.Line != 2 || err.Column != 10 {
		t.Errorf("position %d:%d, want 2:10", err.Line, err.Column)
	}
}

func TestPrint(t *testing.T) {
	e, out := newEvaluator()
	val, err := run(t, e, evaluator.NewScope(), `(print "a" 1 [2 3] "b\tc\\d")`)
	if err != nil {
		t.Fatal(err)
	}
	if val != ast.NIL {
		t.Errorf("print returned %s", val)
	}
	if got, want := out.String(), "a 1 2 3 b\tc\\d\n"; got != want {
		t.Errorf("output %q, want %q", got, want)
	}
}

func TestUnescape(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`plain`, "plain"},
		{`a\nb`, "a\nb"},
		{`\r\t`, "\r\t"},
		{`back\\slash`, `back\slash`},
		{`\q`, "q"},
		{`end\`, `end`},
		{`end\\`, `end\`},
	}
	for _, tt := range tests {
		if got := evaluator.Unescape(tt.in); got != tt.want {
			t.Errorf("Unescape(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWhile(t *testing.T) {
	e, _ := newEvaluator()
	scope := evaluator.NewScope()
	val, err := run(t, e, scope, "(var i 0) (while (lt i 3) (var i (add i 1)))")
	if err != nil {
		t.Fatal(err)
	}
	if !ast.Equal(val, &ast.Number{Value: 3}) {
		t.Errorf("while returned %s", val)
	}

	if val := evalOK(t, "(while false 1)"); val != ast.NIL {
		t.Errorf("loop that never runs returned %s", val)
	}
	evalErr(t, "(while true)", evaluator.NotEnoughArgs)
}

func TestRecursionLimit(t *testing.T) {
	e, _ := newEvaluator()
	e.MaxDepth = 100
	_, err := run(t, e, evaluator.NewScope(), "(func loop [n] (loop n)) (loop 1)")
	var rerr *evaluator.RuntimeError
	if !errors.As(err, &rerr) || rerr.Kind != evaluator.RecursionLimit {
		t.Fatalf("expected RecursionLimit, got %v", err)
	}
	if rerr.Max != 100 {
		t.Errorf("Max = %d", rerr.Max)
	}

	// The evaluator is usable again afterwards.
	val, err := run(t, e, evaluator.NewScope(), "(add 1 1)")
	if err != nil || !ast.Equal(val, &ast.Number{Value: 2}) {
		t.Errorf("got %v, %v", val, err)
	}
}

func TestCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e, _ := newEvaluator()
	e.Context = ctx
	_, err := run(t, e, evaluator.NewScope(), "(while true 1)")
	var rerr *evaluator.RuntimeError
	if !errors.As(err, &rerr) || rerr.Kind != evaluator.Cancelled {
		t.Fatalf("expected Cancelled, got %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Error("Cancelled should wrap the context error")
	}
}

func TestEmptyCallIsNil(t *testing.T) {
	e, _ := newEvaluator()
	val, err := e.Evaluate(&ast.Expression{}, evaluator.NewScope())
	if err != nil || val != ast.NIL {
		t.Errorf("got %v, %v", val, err)
	}
}

func TestRuntimeErrorString(t *testing.T) {
	err := &evaluator.RuntimeError{Kind: evaluator.TypeMismatch, Expected: ast.NumberType, Found: ast.BoolType, Line: 3, Column: 4, File: "a.ul"}
	want := "a.ul:3:4: runtime error [TypeMismatch]: type mismatch: expected Number, found Bool"
	if err.Error() != want {
		t.Errorf("got %q", err.Error())
	}
}
