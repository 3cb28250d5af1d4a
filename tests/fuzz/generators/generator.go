package generators

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/decisivestrike/uncommon-lisp/internal/config"
)

// RandomSource abstracts the source of randomness.
type RandomSource interface {
	Intn(n int) int
	Float64() float64
}

// RandSource wraps math/rand.
type RandSource struct {
	*rand.Rand
}

// ByteSource uses a byte slice as a source of randomness. Once the data
// runs out every choice is 0, which always picks the simplest production.
type ByteSource struct {
	data []byte
	pos  int
}

func (s *ByteSource) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	if s.pos >= len(s.data) {
		return 0
	}
	v := int(s.data[s.pos])
	s.pos++
	return v % n
}

func (s *ByteSource) Float64() float64 {
	if s.pos >= len(s.data) {
		return 0.0
	}
	v := int(s.data[s.pos])
	s.pos++
	return float64(v) / 255.0
}

// Generator generates random, syntactically valid programs.
type Generator struct {
	src   RandomSource
	depth int
	vars  []string
	funcs []declared
}

type declared struct {
	name  string
	arity int
}

const (
	MaxDepth = 5
	MaxForms = 6
	MaxArgs  = 4
)

var callable = []string{
	config.AddFuncName, config.SubFuncName, config.MulFuncName, config.DivFuncName,
	config.EqFuncName, config.NeFuncName, config.LtFuncName, config.GtFuncName,
	config.LeFuncName, config.GeFuncName, config.ConcatFuncName, config.IfFuncName,
	config.TypeOfFuncName,
}

func New(seed int64) *Generator {
	return &Generator{
		src:  &RandSource{rand.New(rand.NewSource(seed))},
		vars: []string{"x", "y", "z", "a", "b"},
	}
}

func NewFromData(data []byte) *Generator {
	return &Generator{
		src:  &ByteSource{data: data},
		vars: []string{"x", "y", "z", "a", "b"},
	}
}

// Intn exposes the random source's Intn method for embedded structs.
func (g *Generator) Intn(n int) int {
	return g.src.Intn(n)
}

// Src returns the random source of the generator.
func (g *Generator) Src() RandomSource {
	return g.src
}

func (g *Generator) GenerateProgram() string {
	var sb strings.Builder
	count := g.src.Intn(MaxForms) + 1
	for i := 0; i < count; i++ {
		sb.WriteString(g.GenerateTopLevelForm())
		sb.WriteString("\n")
		sb.WriteString(g.GenerateNoise())
	}
	return sb.String()
}

// GenerateNoise returns whitespace, a comment or stray text, all of which
// the reader skips between top-level forms.
func (g *Generator) GenerateNoise() string {
	// 10% chance to generate noise
	if g.src.Intn(10) != 0 {
		return ""
	}

	var sb strings.Builder
	count := g.src.Intn(3) + 1
	for i := 0; i < count; i++ {
		switch g.src.Intn(4) {
		case 0:
			sb.WriteString(" ")
		case 1:
			sb.WriteString("\t")
		case 2:
			sb.WriteString("# comment (not a form\n")
		case 3:
			sb.WriteString("stray words ] \"\n")
		}
	}
	return sb.String()
}

// MaybeNewline returns "\n" with ~30% probability, otherwise " ".
func (g *Generator) MaybeNewline() string {
	if g.src.Intn(3) == 0 {
		return "\n"
	}
	return " "
}

func (g *Generator) GenerateTopLevelForm() string {
	choice := g.src.Intn(10)
	switch {
	case choice < 3:
		return g.GenerateVarDecl()
	case choice < 5:
		return g.GenerateFunctionDecl()
	case choice < 6:
		return g.GenerateLoop()
	case choice < 8:
		return g.GeneratePrint()
	default:
		return g.GenerateExpression()
	}
}

func (g *Generator) GenerateVarDecl() string {
	return fmt.Sprintf("(%s %s %s)", config.VarFuncName, g.GenerateIdentifier(), g.GenerateEntity())
}

// GenerateFunctionDecl declares a function whose body only calls builtins,
// so calling it can never recurse.
func (g *Generator) GenerateFunctionDecl() string {
	name := fmt.Sprintf("f%d", len(g.funcs))
	params := g.vars[:g.src.Intn(3)]
	decl := fmt.Sprintf("(%s %s [%s]%s%s)", config.FuncFuncName, name, strings.Join(params, " "), g.MaybeNewline(), g.generateBuiltinCall())
	g.funcs = append(g.funcs, declared{name: name, arity: len(params)})
	return decl
}

// GenerateLoop produces a while loop that counts a fresh variable up to a
// small bound.
func (g *Generator) GenerateLoop() string {
	counter := fmt.Sprintf("i%d", g.src.Intn(100))
	bound := g.src.Intn(10)
	return fmt.Sprintf("(var %s 0)\n(while (lt %s %d)%s(var %s (add %s 1)))",
		counter, counter, bound, g.MaybeNewline(), counter, counter)
}

func (g *Generator) GeneratePrint() string {
	return g.call(config.PrintFuncName)
}

// GenerateExpression returns a call to a builtin or a declared function.
func (g *Generator) GenerateExpression() string {
	if len(g.funcs) > 0 && g.src.Intn(3) == 0 {
		fn := g.funcs[g.src.Intn(len(g.funcs))]
		parts := []string{fn.name}
		for i := 0; i < fn.arity; i++ {
			parts = append(parts, g.GenerateEntity())
		}
		return "(" + strings.Join(parts, " ") + ")"
	}
	return g.generateBuiltinCall()
}

func (g *Generator) generateBuiltinCall() string {
	return g.call(callable[g.src.Intn(len(callable))])
}

func (g *Generator) call(name string) string {
	if g.depth > MaxDepth {
		return "(" + name + ")"
	}
	g.depth++
	defer func() { g.depth-- }()

	n := g.src.Intn(MaxArgs + 1)
	var sb strings.Builder
	sb.WriteString("(" + name)
	for i := 0; i < n; i++ {
		sb.WriteString(g.MaybeNewline())
		sb.WriteString(g.GenerateEntity())
	}
	sb.WriteString(")")
	return sb.String()
}

func (g *Generator) GenerateEntity() string {
	if g.depth > MaxDepth {
		return g.GenerateNumber()
	}
	switch g.src.Intn(9) {
	case 0, 1:
		return g.GenerateNumber()
	case 2:
		return g.GenerateString()
	case 3:
		return []string{"true", "false", "nil"}[g.src.Intn(3)]
	case 4, 5:
		return g.GenerateIdentifier()
	case 6:
		return g.GenerateList()
	default:
		return g.generateBuiltinCall()
	}
}

func (g *Generator) GenerateIdentifier() string {
	return g.vars[g.src.Intn(len(g.vars))]
}

func (g *Generator) GenerateNumber() string {
	n := g.src.Intn(2000) - 1000
	if g.src.Intn(4) == 0 {
		return fmt.Sprintf("%d.%d", n, g.src.Intn(100))
	}
	return fmt.Sprint(n)
}

// GenerateString returns a quoted literal. Strings have no escape syntax,
// so the alphabet excludes '"' and newlines; backslashes pass through.
func (g *Generator) GenerateString() string {
	const alphabet = "abc xyz019_-()[]#\\tλ"
	runes := []rune(alphabet)
	n := g.src.Intn(8)
	var sb strings.Builder
	sb.WriteByte('"')
	for i := 0; i < n; i++ {
		sb.WriteRune(runes[g.src.Intn(len(runes))])
	}
	sb.WriteByte('"')
	return sb.String()
}

func (g *Generator) GenerateList() string {
	g.depth++
	defer func() { g.depth-- }()
	n := g.src.Intn(MaxArgs)
	elems := make([]string, n)
	for i := range elems {
		elems[i] = g.GenerateEntity()
	}
	return "[" + strings.Join(elems, " ") + "]"
}
