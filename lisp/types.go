package lisp

import (
	"math"
	"strconv"
	"strings"
)

// SExpression is any runtime value: data and code share one representation.
type SExpression interface {
	String() string
	// Type returns the name reported by typeof.
	Type() string
}

type Symbol string

type Number float64

type String string

type Boolean bool

// Pair is a cons cell. The empty list is the single sentinel pair Nil.
type Pair struct {
	car SExpression
	cdr SExpression
}

// Nil is the empty list.
var Nil = &Pair{}

// symbolOK is what def, set! and print return.
const symbolOK Symbol = "OK"

// Closure is a lambda together with the environment it was created in.
type Closure struct {
	params SExpression
	body   SExpression
	env    *Env
}

// Macro has no environment: expansion only substitutes argument terms.
type Macro struct {
	params SExpression
	body   SExpression
}

// TailCall is a saturated closure call that has not been run yet.
// It never leaves the evaluator when evaluating strictly.
type TailCall struct {
	closure *Closure
	frame   map[Symbol]SExpression
}

func NewSymbol(s string) Symbol {
	return Symbol(s)
}

func NewPair(car, cdr SExpression) *Pair {
	return &Pair{car: car, cdr: cdr}
}

func (p *Pair) Car() SExpression { return p.car }
func (p *Pair) Cdr() SExpression { return p.cdr }

func (c *Closure) Params() SExpression { return c.params }
func (c *Closure) Body() SExpression   { return c.body }
func (c *Closure) Env() *Env           { return c.env }

func (m *Macro) Params() SExpression { return m.params }
func (m *Macro) Body() SExpression   { return m.body }

func isNil(e SExpression) bool {
	p, ok := e.(*Pair)
	return ok && p == Nil
}

func isList(e SExpression) bool {
	_, ok := e.(*Pair)
	return ok
}

// uncons splits a list into its head and tail. ok is false for the empty
// list and for anything that is not a pair.
func uncons(e SExpression) (head, tail SExpression, ok bool) {
	p, isPair := e.(*Pair)
	if !isPair || p == Nil {
		return nil, nil, false
	}
	return p.car, p.cdr, true
}

func car(e SExpression) SExpression {
	h, _, ok := uncons(e)
	if !ok {
		return Nil
	}
	return h
}

func cdr(e SExpression) SExpression {
	_, t, ok := uncons(e)
	if !ok {
		return Nil
	}
	return t
}

func list2cons(list ...SExpression) *Pair {
	p := Nil
	for i := len(list) - 1; i >= 0; i-- {
		p = NewPair(list[i], p)
	}
	return p
}

func cons2list(e SExpression) []SExpression {
	list := []SExpression{}
	for {
		h, t, ok := uncons(e)
		if !ok {
			return list
		}
		list = append(list, h)
		e = t
	}
}

func (s Symbol) String() string { return string(s) }
func (s Symbol) Type() string   { return "Symbol" }

func (n Number) String() string {
	f := float64(n)
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		// also -0
		return "0"
	}
	if a := math.Abs(f); a >= 1e21 || a < 1e-6 {
		return expForm(strconv.FormatFloat(f, 'g', -1, 64))
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// expForm drops the exponent padding: 1e-07 becomes 1e-7.
func expForm(s string) string {
	mant, exp, ok := strings.Cut(s, "e")
	if !ok {
		return s
	}
	sign, digits := exp[:1], strings.TrimLeft(exp[1:], "0")
	return mant + "e" + sign + digits
}
func (n Number) Type() string { return "number" }

func (s String) String() string { return `"` + string(s) + `"` }
func (s String) Type() string   { return "string" }

func (b Boolean) String() string {
	if b {
		return "true"
	}
	return "false"
}
func (b Boolean) Type() string { return "boolean" }

func (p *Pair) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	var e SExpression = p
	for first := true; ; first = false {
		h, t, ok := uncons(e)
		if !ok {
			break
		}
		if !first {
			sb.WriteByte(' ')
		}
		sb.WriteString(h.String())
		e = t
	}
	if !isList(e) {
		sb.WriteString(" . ")
		sb.WriteString(e.String())
	}
	sb.WriteByte(')')
	return sb.String()
}
func (p *Pair) Type() string { return "ConsList" }

func (c *Closure) String() string {
	return "(lambda " + c.params.String() + " " + c.body.String() + ")"
}
func (c *Closure) Type() string { return "Lambda" }

func (m *Macro) String() string {
	return "(macro " + m.params.String() + " " + m.body.String() + ")"
}
func (m *Macro) Type() string { return "Macro" }

func (tc *TailCall) String() string {
	return "(tail-call " + tc.closure.String() + ")"
}
func (tc *TailCall) Type() string { return "TailCall" }

// display is String for everything except strings, which are left unquoted.
func display(e SExpression) string {
	if s, ok := e.(String); ok {
		return string(s)
	}
	return e.String()
}

func isTruthy(e SExpression) bool {
	switch v := e.(type) {
	case Boolean:
		return bool(v)
	case Number:
		return v != 0 && !math.IsNaN(float64(v))
	case String:
		return v != ""
	}
	return true
}
