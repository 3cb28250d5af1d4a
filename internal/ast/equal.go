package ast

import "math"

// Equal reports structural equality. Source positions are ignored and NaN
// equals NaN so that parsed trees can be compared after a round trip.
func Equal(a, b Entity) bool {
	switch x := a.(type) {
	case *Number:
		y, ok := b.(*Number)
		return ok && (x.Value == y.Value || (math.IsNaN(x.Value) && math.IsNaN(y.Value)))
	case *String:
		y, ok := b.(*String)
		return ok && x.Value == y.Value
	case *Bool:
		y, ok := b.(*Bool)
		return ok && x.Value == y.Value
	case *Nil:
		_, ok := b.(*Nil)
		return ok
	case *Identifier:
		y, ok := b.(*Identifier)
		return ok && x.Name == y.Name
	case *List:
		y, ok := b.(*List)
		return ok && equalSlices(x.Elements, y.Elements)
	case *Expression:
		y, ok := b.(*Expression)
		if !ok || x.Name() != y.Name() || (x.Function == nil) != (y.Function == nil) {
			return false
		}
		return equalSlices(x.Args, y.Args)
	}
	return false
}

func equalSlices(a, b []Entity) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}
