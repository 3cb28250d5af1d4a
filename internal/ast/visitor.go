package ast

type Visitor interface {
	VisitProgram(p *Program)
	VisitExpression(e *Expression)
	VisitList(l *List)
	VisitIdentifier(i *Identifier)
	VisitNumber(n *Number)
	VisitString(s *String)
	VisitBool(b *Bool)
	VisitNil(n *Nil)
}
