package prettyprinter

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/decisivestrike/uncommon-lisp/internal/ast"
)

// --- Tree Printer (AST structure dump) ---

type TreePrinter struct {
	buf   bytes.Buffer
	depth int
}

func NewTreePrinter() *TreePrinter {
	return &TreePrinter{}
}

func (p *TreePrinter) String() string {
	return p.buf.String()
}

func (p *TreePrinter) line(format string, args ...interface{}) {
	p.buf.WriteString(strings.Repeat("  ", p.depth))
	fmt.Fprintf(&p.buf, format, args...)
	p.buf.WriteByte('\n')
}

func (p *TreePrinter) children(entities []ast.Entity) {
	p.depth++
	for _, e := range entities {
		e.Accept(p)
	}
	p.depth--
}

func (p *TreePrinter) VisitProgram(prog *ast.Program) {
	if prog.File != "" {
		p.line("Program %s", prog.File)
	} else {
		p.line("Program")
	}
	p.depth++
	for _, form := range prog.Forms {
		form.Accept(p)
	}
	p.depth--
}

func (p *TreePrinter) VisitExpression(e *ast.Expression) {
	p.line("Expression %s @%d:%d", e.Name(), e.Line, e.Column)
	p.children(e.Args)
}

func (p *TreePrinter) VisitList(l *ast.List) {
	p.line("List")
	p.children(l.Elements)
}

func (p *TreePrinter) VisitIdentifier(i *ast.Identifier) { p.line("Identifier %s", i.Name) }
func (p *TreePrinter) VisitNumber(n *ast.Number)         { p.line("Number %s", n.String()) }
func (p *TreePrinter) VisitString(s *ast.String)         { p.line("String %s", strconv.Quote(s.Value)) }
func (p *TreePrinter) VisitBool(b *ast.Bool)             { p.line("Bool %t", b.Value) }
func (p *TreePrinter) VisitNil(n *ast.Nil)               { p.line("Nil") }
