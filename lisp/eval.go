package lisp

import (
	"fmt"
	"log/slog"
)

// evalEnv reduces e under env. When strict is false a saturated closure call
// in tail position comes back as a *TailCall for the caller to run; this is
// what keeps tail recursion from growing the Go stack.
func (l *Lisp) evalEnv(env *Env, e SExpression, depth int, strict bool) (SExpression, error) {
	l.stats.record(depth)
	d := depth + 1

	switch x := e.(type) {
	case Symbol:
		return env.Lookup(x), nil
	case *Pair:
		if x == Nil {
			return x, nil
		}
		return l.call(env, x, d, strict)
	}
	return e, nil
}

func (l *Lisp) call(env *Env, form *Pair, d int, strict bool) (SExpression, error) {
	t := form.cdr
	h, err := l.evalEnv(env, form.car, d, strict || !isNil(t))
	if err != nil {
		return nil, err
	}
	if tc, ok := h.(*TailCall); ok {
		h, err = l.trampoline(tc, d)
		if err != nil {
			return nil, err
		}
	}
	switch head := h.(type) {
	case BinaryOp:
		return l.foldOp(env, head, t, d)
	case BinaryPred:
		return l.foldPred(env, head, t, d)
	case SpecialForm:
		return l.special(env, head, t, d, strict)
	case *Closure:
		return l.apply(env, head, t, d, strict)
	case *Macro:
		expanded, err := l.expand(env, head, t, d)
		if err != nil {
			return nil, err
		}
		return l.evalEnv(env, expanded, d, true)
	}
	return nil, evalErrorf("illegal call head %s -> %s", snippet(form.car), snippet(h))
}

func (l *Lisp) apply(env *Env, f *Closure, t SExpression, d int, strict bool) (SExpression, error) {
	frame, rest, err := l.bind(env, f.params, t, d, true)
	if err != nil {
		return nil, err
	}
	if !isNil(rest) {
		return &Closure{params: rest, body: f.body, env: NewEnv(frame, f.env)}, nil
	}
	if !l.TCO {
		return l.evalEnv(NewEnv(frame, f.env), f.body, d, true)
	}
	tc := &TailCall{closure: f, frame: frame}
	if !strict {
		return tc, nil
	}
	return l.trampoline(tc, d)
}

// trampoline runs pending tail calls until a proper value comes back.
func (l *Lisp) trampoline(tc *TailCall, d int) (SExpression, error) {
	bounces := 0
	var v SExpression = tc
	for {
		next, ok := v.(*TailCall)
		if !ok {
			break
		}
		bounces++
		var err error
		v, err = l.evalEnv(NewEnv(next.frame, next.closure.env), next.closure.body, d, false)
		if err != nil {
			return nil, err
		}
	}
	if bounces > 1 {
		l.log().Debug("trampoline", slog.Int("bounces", bounces), slog.Int("depth", d))
	}
	return v, nil
}

// bind pairs declared parameters with argument terms. The last parameter
// takes all remaining arguments as a list when more than one is left.
// Arguments are evaluated only for closure calls. Parameters left over
// when the arguments run out are returned for partial application.
func (l *Lisp) bind(env *Env, params, args SExpression, d int, evaluate bool) (map[Symbol]SExpression, SExpression, error) {
	frame := map[Symbol]SExpression{}
	for {
		p, prest, ok := uncons(params)
		if !ok {
			break
		}
		a, arest, ok := uncons(args)
		if !ok {
			break
		}
		name, ok := p.(Symbol)
		if !ok {
			return nil, nil, evalErrorf("parameter is not a symbol: %s", snippet(p))
		}
		var v SExpression
		var err error
		switch {
		case isNil(prest) && !isNil(arest):
			v = args
			if evaluate {
				v, err = l.evalList(env, args, d)
			}
		case evaluate:
			v, err = l.evalEnv(env, a, d, true)
		default:
			v = a
		}
		if err != nil {
			return nil, nil, err
		}
		frame[name] = v
		params, args = prest, arest
	}
	return frame, params, nil
}

func (l *Lisp) evalList(env *Env, t SExpression, d int) (*Pair, error) {
	vals, err := l.evalSlice(env, t, d)
	if err != nil {
		return nil, err
	}
	return list2cons(vals...), nil
}

func (l *Lisp) evalSlice(env *Env, t SExpression, d int) ([]SExpression, error) {
	vals := []SExpression{}
	for {
		a, rest, ok := uncons(t)
		if !ok {
			return vals, nil
		}
		v, err := l.evalEnv(env, a, d, true)
		if err != nil {
			return nil, err
		}
		vals = append(vals, v)
		t = rest
	}
}

func (l *Lisp) expand(env *Env, m *Macro, t SExpression, d int) (SExpression, error) {
	frame, _, err := l.bind(env, m.params, t, d, false)
	if err != nil {
		return nil, err
	}
	return substitute(m.body, frame), nil
}

// substitute replaces parameter symbols in body with argument terms.
// No renaming happens: macros are not hygienic.
func substitute(body SExpression, frame map[Symbol]SExpression) SExpression {
	switch b := body.(type) {
	case Symbol:
		if v, ok := frame[b]; ok {
			return v
		}
	case *Pair:
		if b == Nil {
			return b
		}
		return NewPair(substitute(b.car, frame), substitute(b.cdr, frame))
	}
	return body
}

func (l *Lisp) foldOp(env *Env, op BinaryOp, t SExpression, d int) (SExpression, error) {
	a, rest, ok := uncons(t)
	if !ok {
		return nil, evalErrorf("at least one operand required for %s", op)
	}
	acc, err := l.evalEnv(env, a, d, true)
	if err != nil {
		return nil, err
	}
	for {
		a, rest, ok = uncons(rest)
		if !ok {
			return acc, nil
		}
		v, err := l.evalEnv(env, a, d, true)
		if err != nil {
			return nil, err
		}
		acc, err = op.apply(acc, v)
		if err != nil {
			return nil, err
		}
	}
}

func (l *Lisp) foldPred(env *Env, bp BinaryPred, t SExpression, d int) (SExpression, error) {
	a, rest, ok := uncons(t)
	if !ok {
		return Boolean(true), nil
	}
	prev, err := l.evalEnv(env, a, d, true)
	if err != nil {
		return nil, err
	}
	for {
		a, rest, ok = uncons(rest)
		if !ok {
			return Boolean(true), nil
		}
		next, err := l.evalEnv(env, a, d, true)
		if err != nil {
			return nil, err
		}
		holds, err := bp.test(prev, next)
		if err != nil {
			return nil, err
		}
		if !holds {
			return Boolean(false), nil
		}
		prev = next
	}
}

// symbolName turns the name position of def/set! into a binding name.
func (l *Lisp) symbolName(env *Env, e SExpression, d int) (Symbol, error) {
	switch n := e.(type) {
	case Symbol:
		return n, nil
	case String:
		return Symbol(n), nil
	}
	v, err := l.evalEnv(env, e, d, true)
	if err != nil {
		return "", err
	}
	return Symbol(display(v)), nil
}

// body is the single body term, or the terms wrapped in do when there are
// several.
func body(t SExpression) SExpression {
	if _, rest, ok := uncons(t); ok && !isNil(rest) {
		return NewPair(DO, t)
	}
	if h, _, ok := uncons(t); ok {
		return h
	}
	return Nil
}

func checkParams(sf SpecialForm, params SExpression) error {
	if !isList(params) {
		return evalErrorf("%s: parameters must be a list: %s", sf, snippet(params))
	}
	for _, p := range cons2list(params) {
		if _, ok := p.(Symbol); !ok {
			return evalErrorf("%s: parameter is not a symbol: %s", sf, snippet(p))
		}
	}
	return nil
}

func (l *Lisp) special(env *Env, sf SpecialForm, t SExpression, d int, strict bool) (SExpression, error) {
	switch sf {
	case DEF, SET:
		for {
			n, rest, ok := uncons(t)
			if !ok {
				break
			}
			x, rest, ok := uncons(rest)
			if !ok {
				break
			}
			name, err := l.symbolName(env, n, d)
			if err != nil {
				return nil, err
			}
			v, err := l.evalEnv(env, x, d, true)
			if err != nil {
				return nil, err
			}
			if sf == DEF {
				env.Add(name, v)
			} else {
				env.replace(name, v)
			}
			t = rest
		}
		return symbolOK, nil

	case QUOTE:
		x, _, ok := uncons(t)
		if !ok {
			return nil, evalErrorf("quote: missing argument")
		}
		return x, nil

	case TYPEOF:
		v, err := l.evalArg(env, sf, t, d)
		if err != nil {
			return nil, err
		}
		return String(v.Type()), nil

	case CONS:
		vals, err := l.evalSlice(env, t, d)
		if err != nil {
			return nil, err
		}
		if len(vals) == 0 {
			return Nil, nil
		}
		last := vals[len(vals)-1]
		tail, ok := last.(*Pair)
		if !ok {
			tail = list2cons(last)
		}
		for i := len(vals) - 2; i >= 0; i-- {
			tail = NewPair(vals[i], tail)
		}
		return tail, nil

	case CAR, CDR:
		v, err := l.evalArg(env, sf, t, d)
		if err != nil {
			return nil, err
		}
		h, rest, ok := uncons(v)
		switch {
		case sf == CAR && ok:
			return h, nil
		case sf == CAR:
			return v, nil
		case ok:
			return rest, nil
		}
		return Nil, nil

	case COND:
		for {
			test, rest, ok := uncons(t)
			if !ok {
				return Nil, nil
			}
			conseq, next, ok := uncons(rest)
			if !ok {
				// trailing else branch
				return l.evalEnv(env, test, d, strict)
			}
			v, err := l.evalEnv(env, test, d, true)
			if err != nil {
				return nil, err
			}
			if isTruthy(v) {
				return l.evalEnv(env, conseq, d, strict)
			}
			t = next
		}

	case PRINT, READ:
		vals, err := l.evalSlice(env, t, d)
		if err != nil {
			return nil, err
		}
		s := ""
		for _, v := range vals {
			s += display(v)
		}
		if err := l.console().WriteLine(s); err != nil {
			return nil, fmt.Errorf("%s: %w", sf, err)
		}
		if sf == PRINT {
			return symbolOK, nil
		}
		line, err := l.console().ReadLine()
		if err != nil {
			return nil, fmt.Errorf("read: %w", err)
		}
		return parse(line)

	case EVAL:
		v, err := l.evalArg(env, sf, t, d)
		if err != nil {
			return nil, err
		}
		return l.evalEnv(env, v, d, true)

	case EVALIN:
		v, err := l.evalArg(env, sf, t, d)
		if err != nil {
			return nil, err
		}
		f, ok := v.(*Closure)
		if !ok {
			return nil, evalErrorf("eval-in not in lambda '%s'", snippet(v))
		}
		return l.evalEnv(f.env, body(cdr(t)), d, true)

	case LAMBDA:
		params := car(t)
		if err := checkParams(sf, params); err != nil {
			return nil, err
		}
		return &Closure{params: params, body: body(cdr(t)), env: env}, nil

	case MACRO:
		params := car(t)
		if err := checkParams(sf, params); err != nil {
			return nil, err
		}
		return &Macro{params: params, body: body(cdr(t))}, nil

	case SYMBOL:
		v, err := l.evalArg(env, sf, t, d)
		if err != nil {
			return nil, err
		}
		if s, ok := v.(Symbol); ok {
			return s, nil
		}
		return Symbol(display(v)), nil

	case DO:
		var v SExpression = symbolOK
		for {
			x, rest, ok := uncons(t)
			if !ok {
				return v, nil
			}
			var err error
			v, err = l.evalEnv(env, x, d, strict || !isNil(rest))
			if err != nil {
				return nil, err
			}
			t = rest
		}
	}
	return nil, evalErrorf("unrecognized special form %d", sf)
}

// evalArg strictly evaluates the single argument of a one-argument form.
func (l *Lisp) evalArg(env *Env, sf SpecialForm, t SExpression, d int) (SExpression, error) {
	x, _, ok := uncons(t)
	if !ok {
		return nil, evalErrorf("%s: missing argument", sf)
	}
	return l.evalEnv(env, x, d, true)
}
