package ast

// Datatype is the closed set of runtime types reported by typeof and used
// in type-mismatch diagnostics.
type Datatype int

const (
	NumberType Datatype = iota
	StringType
	BoolType
	NilType
	ListType
	IdentifierType
	ExpressionType
	FunctionType
)

var datatypeNames = [...]string{
	NumberType:     "Number",
	StringType:     "String",
	BoolType:       "Bool",
	NilType:        "Nil",
	ListType:       "List",
	IdentifierType: "Identifier",
	ExpressionType: "Expression",
	FunctionType:   "Function",
}

func (d Datatype) String() string {
	if d < 0 || int(d) >= len(datatypeNames) {
		return "Unknown"
	}
	return datatypeNames[d]
}
