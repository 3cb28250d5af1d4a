package prettyprinter

import (
	"bytes"
	"strings"

	"github.com/decisivestrike/uncommon-lisp/internal/ast"
)

// --- Code Printer (Output looks like source code) ---

// CodePrinter renders entities as source text the parser accepts again:
// strings keep their quotes and lists keep their brackets. Forms wider
// than the line width are broken one argument per line.
type CodePrinter struct {
	buf       bytes.Buffer
	indent    int
	lineWidth int // max line width (0 = unlimited)
	column    int // current column position
}

func NewCodePrinter() *CodePrinter {
	return &CodePrinter{lineWidth: 100}
}

func NewCodePrinterWithWidth(width int) *CodePrinter {
	return &CodePrinter{lineWidth: width}
}

func (p *CodePrinter) SetLineWidth(width int) {
	p.lineWidth = width
}

func (p *CodePrinter) String() string {
	return p.buf.String()
}

func (p *CodePrinter) write(s string) {
	p.buf.WriteString(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		p.column = len(s) - i - 1
		return
	}
	p.column += len(s)
}

func (p *CodePrinter) newline() {
	p.buf.WriteByte('\n')
	p.buf.WriteString(strings.Repeat("  ", p.indent))
	p.column = p.indent * 2
}

func (p *CodePrinter) fits(s string) bool {
	return p.lineWidth <= 0 || p.column+len(s) <= p.lineWidth
}

func (p *CodePrinter) VisitProgram(prog *ast.Program) {
	for _, form := range prog.Forms {
		form.Accept(p)
		p.write("\n")
	}
}

func (p *CodePrinter) VisitExpression(e *ast.Expression) {
	flat := Source(e)
	if len(e.Args) == 0 || p.fits(flat) {
		p.write(flat)
		return
	}
	p.write("(" + e.Name())
	p.indent++
	for _, arg := range e.Args {
		p.newline()
		arg.Accept(p)
	}
	p.indent--
	p.write(")")
}

func (p *CodePrinter) VisitList(l *ast.List) {
	flat := Source(l)
	if len(l.Elements) == 0 || p.fits(flat) {
		p.write(flat)
		return
	}
	p.write("[")
	p.indent++
	for _, elem := range l.Elements {
		p.newline()
		elem.Accept(p)
	}
	p.indent--
	p.write("]")
}

func (p *CodePrinter) VisitIdentifier(i *ast.Identifier) { p.write(i.Name) }
func (p *CodePrinter) VisitNumber(n *ast.Number)         { p.write(n.String()) }
func (p *CodePrinter) VisitString(s *ast.String)         { p.write(`"` + s.Value + `"`) }
func (p *CodePrinter) VisitBool(b *ast.Bool)             { p.write(b.String()) }
func (p *CodePrinter) VisitNil(n *ast.Nil)               { p.write("nil") }

// Source renders e on a single line as parseable source.
func Source(e ast.Entity) string {
	var sb strings.Builder
	writeSource(&sb, e)
	return sb.String()
}

func writeSource(sb *strings.Builder, e ast.Entity) {
	switch e := e.(type) {
	case *ast.String:
		sb.WriteByte('"')
		sb.WriteString(e.Value)
		sb.WriteByte('"')
	case *ast.List:
		sb.WriteByte('[')
		for i, elem := range e.Elements {
			if i > 0 {
				sb.WriteByte(' ')
			}
			writeSource(sb, elem)
		}
		sb.WriteByte(']')
	case *ast.Expression:
		sb.WriteByte('(')
		sb.WriteString(e.Name())
		for i, arg := range e.Args {
			if i > 0 || e.Function != nil {
				sb.WriteByte(' ')
			}
			writeSource(sb, arg)
		}
		sb.WriteByte(')')
	default:
		sb.WriteString(e.String())
	}
}
