package lisp

// Equal is structural equality: lists element by element, symbols by name,
// everything else by the underlying value.
func Equal(x, y SExpression) bool {
	for {
		px, okx := x.(*Pair)
		py, oky := y.(*Pair)
		if okx != oky {
			return false
		}
		if !okx {
			// comparable dynamic types; closures and macros by identity
			return x == y
		}
		if px == Nil || py == Nil {
			return px == py
		}
		if !Equal(px.car, py.car) {
			return false
		}
		x, y = px.cdr, py.cdr
	}
}
