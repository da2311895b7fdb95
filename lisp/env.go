package lisp

// Env is one frame of the lexical scope chain. Frames only point outward,
// so a frame can be shared by any number of closures.
type Env struct {
	dict  map[Symbol]SExpression
	outer *Env
}

func NewEnv(frame map[Symbol]SExpression, outer *Env) *Env {
	if frame == nil {
		frame = map[Symbol]SExpression{}
	}
	return &Env{dict: frame, outer: outer}
}

func GlobalEnv() *Env {
	return NewEnv(nil, nil)
}

func (e *Env) find(s Symbol) (*Env, bool) {
	for env := e; env != nil; env = env.outer {
		if _, ok := env.dict[s]; ok {
			return env, true
		}
	}
	return nil, false
}

// Lookup never fails: an unbound name evaluates to the symbol itself.
func (e *Env) Lookup(s Symbol) SExpression {
	env, ok := e.find(s)
	if !ok {
		return s
	}
	return env.dict[s]
}

// Add binds s in this frame, shadowing any outer binding.
func (e *Env) Add(s Symbol, sexp SExpression) {
	e.dict[s] = sexp
}

// replace rebinds s in the frame that already holds it.
// Unbound names are left alone.
func (e *Env) replace(s Symbol, sexp SExpression) bool {
	outer, ok := e.find(s)
	if !ok {
		return false
	}
	outer.dict[s] = sexp
	return true
}

// copyEnv duplicates the chain. Closures bound directly in a copied frame
// get a copy of the chain they captured, with shared frames kept shared.
// Closures nested inside lists still point at the original frames.
func copyEnv(env *Env) *Env {
	copies := map[*Env]*Env{}
	var cp func(*Env) *Env
	cp = func(env *Env) *Env {
		if env == nil {
			return nil
		}
		if c, ok := copies[env]; ok {
			return c
		}
		c := &Env{dict: make(map[Symbol]SExpression, len(env.dict))}
		copies[env] = c
		c.outer = cp(env.outer)
		for k, v := range env.dict {
			if f, ok := v.(*Closure); ok {
				v = &Closure{params: f.params, body: f.body, env: cp(f.env)}
			}
			c.dict[k] = v
		}
		return c
	}
	return cp(env)
}
