package mutator

import (
	"testing"

	"github.com/decisivestrike/uncommon-lisp/internal/ast"
	"github.com/decisivestrike/uncommon-lisp/internal/parser"
	"github.com/decisivestrike/uncommon-lisp/internal/prettyprinter"
)

const sample = `(var x 10) (func f [a b] (add a (mul b 2))) (print "hi" [1 true] (f x 3)) (if false x)`

func parseProgram(t *testing.T, src string) *ast.Program {
	t.Helper()
	forms, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	return &ast.Program{Forms: forms}
}

func TestMutateChangesProgram(t *testing.T) {
	changed := 0
	for seed := int64(0); seed < 50; seed++ {
		original := parseProgram(t, sample)
		mutated := parseProgram(t, sample)
		NewASTMutator(seed).Mutate(mutated)

		if len(original.Forms) != len(mutated.Forms) {
			changed++
			continue
		}
		for i := range original.Forms {
			if !ast.Equal(original.Forms[i], mutated.Forms[i]) {
				changed++
				break
			}
		}
	}
	// A mutation may pick a replacement equal to the original.
	if changed < 35 {
		t.Errorf("only %d of 50 mutations changed the program", changed)
	}
}

func TestMutatedProgramStillPrints(t *testing.T) {
	for seed := int64(0); seed < 50; seed++ {
		prog := parseProgram(t, sample)
		m := NewASTMutator(seed)
		for i := 0; i < 5; i++ {
			m.Mutate(prog)
		}
		cp := prettyprinter.NewCodePrinter()
		prog.Accept(cp)
		if _, err := parser.Parse(cp.String()); err != nil {
			t.Errorf("seed %d: mutated program does not reparse: %v\n%s", seed, err, cp.String())
		}
	}
}

func TestMutateDoesNotTouchSharedLiterals(t *testing.T) {
	for seed := int64(0); seed < 50; seed++ {
		NewASTMutator(seed).Mutate(parseProgram(t, "(if true false nil)"))
	}
	if !ast.TRUE.Value || ast.FALSE.Value {
		t.Fatal("shared boolean literals were modified")
	}
}

func TestMutateEmptyProgram(t *testing.T) {
	prog := &ast.Program{}
	NewASTMutator(1).Mutate(prog)
	if len(prog.Forms) != 0 {
		t.Error("empty program grew")
	}
}
