package lisp

import (
	"io"
	"log/slog"
	"os"
)

type Lisp struct {
	Env     *Env
	// Console is stdin and stdout when left nil.
	Console Console
	Logger  *slog.Logger
	// TCO runs tail calls through the trampoline. Without it every closure
	// call recurses on the Go stack.
	TCO   bool
	stats Stats
}

func New() *Lisp {
	return &Lisp{
		Env:     GlobalEnv(),
		Console: NewConsole(os.Stdin, os.Stdout),
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		TCO:     true,
	}
}

func (l *Lisp) log() *slog.Logger {
	if l.Logger == nil {
		l.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return l.Logger
}

func (l *Lisp) console() Console {
	if l.Console == nil {
		l.Console = NewConsole(os.Stdin, os.Stdout)
	}
	return l.Console
}

// Eval parses input and evaluates it in the global environment.
func (l *Lisp) Eval(input string) (SExpression, error) {
	sexp, err := parse(input)
	if err != nil {
		return nil, err
	}
	return l.EvalExpr(sexp)
}

func (l *Lisp) EvalExpr(e SExpression) (SExpression, error) {
	l.stats = Stats{}
	v, err := l.evalEnv(l.Env, e, 0, true)
	if err == nil {
		if tc, ok := v.(*TailCall); ok {
			v, err = l.trampoline(tc, 0)
		}
	}
	l.log().Debug("eval", slog.String("expr", snippet(e)), slog.Int("maxStack", l.stats.MaxStack), slog.Int("evalCalls", l.stats.EvalCalls), slog.Any("err", err))
	return v, err
}

// Load evaluates a whole program: all top-level terms in sequence.
func (l *Lisp) Load(data string) (SExpression, error) {
	sexp, err := parseProgram(data)
	if err != nil {
		return nil, err
	}
	return l.EvalExpr(sexp)
}

func (l *Lisp) LoadFile(filename string) (SExpression, error) {
	sexp, err := ParseFile(filename)
	if err != nil {
		return nil, err
	}
	l.log().Debug("load", slog.String("file", filename))
	return l.EvalExpr(sexp)
}

// Stats describes the last top-level evaluation.
func (l *Lisp) Stats() Stats {
	return l.stats
}

// Fork returns an interpreter over a copy of the global environment.
// Definitions made in either one are not seen by the other.
func (l *Lisp) Fork() *Lisp {
	return &Lisp{
		Env:     copyEnv(l.Env),
		Console: l.Console,
		Logger:  l.Logger,
		TCO:     l.TCO,
	}
}
