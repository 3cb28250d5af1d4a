package mutator

import (
	"math/rand"

	"github.com/decisivestrike/uncommon-lisp/internal/ast"
	"github.com/decisivestrike/uncommon-lisp/internal/config"
)

// ASTMutator applies random mutations to an AST.
type ASTMutator struct {
	rnd *rand.Rand
}

// NewASTMutator creates a new ASTMutator with the given seed.
func NewASTMutator(seed int64) *ASTMutator {
	return &ASTMutator{
		rnd: rand.New(rand.NewSource(seed)),
	}
}

var functionNames = []string{
	config.AddFuncName, config.SubFuncName, config.MulFuncName, config.DivFuncName,
	config.EqFuncName, config.LtFuncName, config.ConcatFuncName, config.IfFuncName,
	config.TypeOfFuncName, config.PrintFuncName, config.VarFuncName, "undefined",
}

// Mutate applies a random mutation to one top-level form of the program.
// It modifies the AST in place.
func (m *ASTMutator) Mutate(program *ast.Program) {
	if len(program.Forms) == 0 {
		return
	}

	idx := m.rnd.Intn(len(program.Forms))
	if m.rnd.Float32() < 0.1 {
		// Duplicate the form.
		forms := append([]*ast.Expression{}, program.Forms[:idx+1]...)
		program.Forms = append(forms, program.Forms[idx:]...)
		return
	}
	m.mutateExpression(program.Forms[idx])
}

func (m *ASTMutator) mutateExpression(e *ast.Expression) {
	if e == nil {
		return
	}
	r := m.rnd.Float32()
	switch {
	case r < 0.2 || len(e.Args) == 0:
		e.Function = &ast.Identifier{Name: functionNames[m.rnd.Intn(len(functionNames))]}
	case r < 0.35:
		// Drop an argument.
		i := m.rnd.Intn(len(e.Args))
		e.Args = append(e.Args[:i], e.Args[i+1:]...)
	case r < 0.5:
		e.Args = append(e.Args, m.randomLiteral())
	default:
		i := m.rnd.Intn(len(e.Args))
		e.Args[i] = m.mutateEntity(e.Args[i])
	}
}

// mutateEntity returns the replacement for ent. Shared singletons such as
// ast.TRUE are replaced, never modified.
func (m *ASTMutator) mutateEntity(ent ast.Entity) ast.Entity {
	switch ent := ent.(type) {
	case *ast.Number:
		return &ast.Number{Value: ent.Value + float64(m.rnd.Intn(21)-10)}
	case *ast.Bool:
		return ast.NewBool(!ent.Value)
	case *ast.String:
		if m.rnd.Intn(2) == 0 {
			return &ast.String{Value: ""}
		}
		return &ast.String{Value: ent.Value + ent.Value}
	case *ast.Identifier:
		return &ast.Identifier{Name: ent.Name + "x"}
	case *ast.List:
		if len(ent.Elements) == 0 {
			return &ast.List{Elements: []ast.Entity{m.randomLiteral()}}
		}
		elems := append([]ast.Entity{}, ent.Elements...)
		i := m.rnd.Intn(len(elems))
		elems[i] = m.mutateEntity(elems[i])
		return &ast.List{Elements: elems}
	case *ast.Expression:
		m.mutateExpression(ent)
		return ent
	}
	return m.randomLiteral()
}

func (m *ASTMutator) randomLiteral() ast.Entity {
	switch m.rnd.Intn(5) {
	case 0:
		return &ast.Number{Value: float64(m.rnd.Intn(200) - 100)}
	case 1:
		return &ast.String{Value: "s"}
	case 2:
		return ast.NewBool(m.rnd.Intn(2) == 0)
	case 3:
		return ast.NIL
	default:
		return &ast.Identifier{Name: "x"}
	}
}
