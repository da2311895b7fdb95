package lisp

import (
	"errors"
	"io"
	"strings"
	"testing"
)

type fakeConsole struct {
	in  []string
	out []string
}

func (c *fakeConsole) WriteLine(s string) error {
	c.out = append(c.out, s)
	return nil
}

func (c *fakeConsole) ReadLine() (string, error) {
	if len(c.in) == 0 {
		return "", io.EOF
	}
	s := c.in[0]
	c.in = c.in[1:]
	return s, nil
}

func newTestLisp() (*Lisp, *fakeConsole) {
	l := New()
	c := &fakeConsole{}
	l.Console = c
	return l, c
}

func TestLisp(t *testing.T) {
	// NOTE: one shared global env for test, meaning order matters here!
	l, _ := newTestLisp()
	for i, tt := range []struct {
		input string
		want  string
	}{
		{input: "(+ 1 2 3)", want: "6"},
		{input: "(def x 5)", want: "OK"},
		{input: "(set! x (+ x 1))", want: "OK"},
		{input: "x", want: "6"},
		{input: "((lambda (a b) (+ a b)) 3 4)", want: "7"},
		{input: "(cons 1 (quote (2 3)))", want: "(1 2 3)"},
		{input: "(cons 1 2)", want: "(1 2)"},
		{input: "(cons 1 2 (quote ()))", want: "(1 2)"},
		{input: "(cons)", want: "()"},
		{input: "(cond false 1 false 2 3)", want: "3"},
		{input: "(cond false 1)", want: "()"},
		{input: "(cond (< 1 2) 1 2)", want: "1"},
		{input: "(cond 0 1 2)", want: "2"},
		{input: `(cond "" 1 2)`, want: "2"},
		{input: "(cond (quote ()) 1 2)", want: "1"},
		{input: "(quote quoted)", want: "quoted"},
		{input: "'quoted", want: "quoted"},
		{input: "'(1 (2 3))", want: "(1 (2 3))"},
		{input: "(car (quote (1 2 3)))", want: "1"},
		{input: "(cdr (quote (1 2 3)))", want: "(2 3)"},
		{input: "(car 5)", want: "5"},
		{input: "(cdr 5)", want: "()"},
		{input: "(car (quote ()))", want: "()"},
		{input: `"hello"`, want: `"hello"`},
		{input: `(++ "a" 1 (quote (b c)) "d")`, want: `"a1(b c)d"`},
		{input: `(++ "x")`, want: `"x"`},
		{input: "(// 7 2)", want: "3"},
		{input: "(// -7 2)", want: "-3"},
		{input: "(/ 7 2)", want: "3.5"},
		{input: "(/ 1 0)", want: "Infinity"},
		{input: "(mod 7 3)", want: "1"},
		{input: "(mod -7 3)", want: "-1"},
		{input: "(- 10)", want: "10"},
		{input: "(- 10 1 2)", want: "7"},
		{input: "(* 1.5 2)", want: "3"},
		{input: "(* -1 0)", want: "0"},
		{input: `(++ "n=" (// -1 2))`, want: `"n=0"`},
		{input: "(/ 1 10000000)", want: "1e-7"},
		{input: "(++ 1e-7)", want: `"1e-7"`},
		{input: "(< 1 2 3)", want: "true"},
		{input: "(< 1 3 2)", want: "false"},
		{input: "(>= 3 3 1)", want: "true"},
		{input: `(< "a" "b")`, want: "true"},
		{input: "(>)", want: "true"},
		{input: "(= (quote (1 2 3)) (quote (1 2 3)))", want: "true"},
		{input: "(= (quote (1 2)) (quote (1 2 3)))", want: "false"},
		{input: "(= 1 1 1)", want: "true"},
		{input: "(= (quote a) (symbol \"a\"))", want: "true"},
		{input: "(/= 1 2)", want: "true"},
		{input: "(typeof 1)", want: `"number"`},
		{input: `(typeof "s")`, want: `"string"`},
		{input: "(typeof true)", want: `"boolean"`},
		{input: "(typeof (quote a))", want: `"Symbol"`},
		{input: "(typeof (quote ()))", want: `"ConsList"`},
		{input: "(typeof (lambda (x) x))", want: `"Lambda"`},
		{input: "(typeof (macro (x) x))", want: `"Macro"`},
		{input: "(typeof +)", want: `"Operator"`},
		{input: "(typeof =)", want: `"Predicate"`},
		{input: "(typeof def)", want: `"SpecialForm"`},
		{input: "unbound", want: "unbound"},
		{input: `(symbol "abc")`, want: "abc"},
		{input: "(symbol 12)", want: "12"},
		{input: "(symbol (quote s))", want: "s"},
		{input: "(eval (quote (+ 1 2)))", want: "3"},
		{input: "(def f (lambda (x) (* x 2)))", want: "OK"},
		{input: "f", want: "(lambda (x) (* x 2))"},
		{input: "(f 21)", want: "42"},
		{input: "(def g (lambda (x) (def y x) (+ y 1)))", want: "OK"},
		{input: "g", want: "(lambda (x) (do (def y x) (+ y 1)))"},
		{input: "(g 1)", want: "2"},
		{input: "y", want: "y"},
		{input: "(do)", want: "OK"},
		{input: "(do 1 2)", want: "2"},
		{input: `(def "str-name" 1)`, want: "OK"},
		{input: "str-name", want: "1"},
		{input: `(def (++ "a" "b") 2)`, want: "OK"},
		{input: "ab", want: "2"},
		{input: "(def p 1 q 2)", want: "OK"},
		{input: "(+ p q)", want: "3"},
		{input: "(set! nope 1)", want: "OK"},
		{input: "nope", want: "nope"},
		{input: "((lambda (a b) b) 1 2 3)", want: "(2 3)"},
		{input: "((lambda (a) a) 1 2)", want: "(1 2)"},
		{input: "((lambda (a) a) (+ 1 1))", want: "2"},
		{input: "((lambda () 1))", want: "1"},
		{input: "(def add (lambda (a b) (+ a b)))", want: "OK"},
		{input: "(add 1)", want: "(lambda (b) (+ a b))"},
		{input: "((add 1) 2)", want: "3"},
		{input: "(def m (macro (x) (quote x)))", want: "OK"},
		{input: "(m (+ 1 2))", want: "(+ 1 2)"},
		{input: "(def unless (macro (c a b) (cond c b a)))", want: "OK"},
		{input: "(unless false 1 2)", want: "1"},
		{input: "(def lst (macro (x) (quote x)))", want: "OK"},
		{input: "(lst 1 2 3)", want: "(1 2 3)"},
		{input: "(def mk (lambda (v) (lambda () v)))", want: "OK"},
		{input: "(def c (mk 42))", want: "OK"},
		{input: "(c)", want: "42"},
		{input: "(eval-in c v)", want: "42"},
		{input: "(eval-in c (def w 1) (+ v w))", want: "43"},
		{input: "((mk 7))", want: "7"},
		{input: "(((lambda (a) (lambda (b) (+ a b))) 1) 2)", want: "3"},
	} {
		e, err := l.Eval(tt.input)
		if err != nil {
			t.Errorf("%d) eval error %v", i, err)
			continue
		}
		got := e.String()
		if got != tt.want {
			t.Errorf("%d) got %s want %s", i, got, tt.want)
		}
	}
}

func TestLoad(t *testing.T) {
	for i, tt := range []struct {
		input string
		want  string
	}{
		{input: "(def x 5) (set! x (+ x 1)) x", want: "6"},
		{input: "(def x 5) ;comment; x", want: "5"},
		{input: "1", want: "1"},
		{input: "", want: "OK"},
		{input: " ;only a comment; ", want: "OK"},
		{
			input: `(def fact (lambda (n) (cond (<= n 1) 1 (* n (fact (- n 1))))))
                    (fact 10)`,
			want: "3628800",
		},
	} {
		l, _ := newTestLisp()
		e, err := l.Load(tt.input)
		if err != nil {
			t.Errorf("%d) load error %v", i, err)
			continue
		}
		got := e.String()
		if got != tt.want {
			t.Errorf("%d) got %s want %s", i, got, tt.want)
		}
	}
}

func TestErrors(t *testing.T) {
	for i, tt := range []struct {
		input    string
		parseErr bool
		contains string
	}{
		{input: "(1 2", parseErr: true, contains: "closing ')' is absent"},
		{input: ")", parseErr: true, contains: "extra closing ')'"},
		{input: `"abc`, parseErr: true, contains: `closing '"' is absent`},
		{input: "; comment", parseErr: true, contains: "closing ';' is absent"},
		{input: "a b)", parseErr: true, contains: "extra symbols"},
		{input: "(+)", contains: "at least one operand required"},
		{input: "(1 2)", contains: "illegal call head"},
		{input: `(+ 1 "a")`, contains: "expects numbers"},
		{input: `(< 1 "a")`, contains: "cannot compare"},
		{input: "(eval-in 1 2)", contains: "eval-in not in lambda"},
		{input: "(lambda 5 x)", contains: "parameters must be a list"},
		{input: "(macro (1) x)", contains: "parameter is not a symbol"},
		{input: "(quote)", contains: "missing argument"},
		{input: "(car)", contains: "missing argument"},
		{input: "(+ 1 (car))", contains: "missing argument"},
	} {
		l, _ := newTestLisp()
		_, err := l.Eval(tt.input)
		if err == nil {
			t.Errorf("%d) expected error for %s", i, tt.input)
			continue
		}
		var perr *ParseError
		var eerr *EvalError
		if tt.parseErr && !errors.As(err, &perr) {
			t.Errorf("%d) got %T want *ParseError", i, err)
		}
		if !tt.parseErr && !errors.As(err, &eerr) {
			t.Errorf("%d) got %T want *EvalError", i, err)
		}
		if !strings.Contains(err.Error(), tt.contains) {
			t.Errorf("%d) got %q want it to contain %q", i, err.Error(), tt.contains)
		}
	}
}

func TestErrorSnippetIsTruncated(t *testing.T) {
	_, err := Parse(") this is a long remaining text that goes on")
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("got %v want parse error", err)
	}
	if want := ") this is a long rem..."; perr.Near != want {
		t.Errorf("got %q want %q", perr.Near, want)
	}
}

func TestTailRecursion(t *testing.T) {
	if testing.Short() {
		t.Skip()
	}
	l, _ := newTestLisp()
	for i, tt := range []struct {
		input string
		want  string
	}{
		{
			input: "(def count (lambda (n acc) (cond (= n 0) acc (count (- n 1) (+ acc 1)))))",
			want:  "OK",
		},
		{
			input: "(count 100000 0)",
			want:  "100000",
		},
		{
			input: "(def sum-to (lambda (n acc) (do (def m (- n 1)) (cond (= n 0) acc (sum-to m (+ n acc))))))",
			want:  "OK",
		},
		{
			input: "(sum-to 1000000 0)",
			want:  "500000500000",
		},
		{
			input: "(def ev? (lambda (n) (cond (= n 0) true (od? (- n 1)))))",
			want:  "OK",
		},
		{
			input: "(def od? (lambda (n) (cond (= n 0) false (ev? (- n 1)))))",
			want:  "OK",
		},
		{
			input: "(ev? 100001)",
			want:  "false",
		},
		{
			input: "(def n 100000)",
			want:  "OK",
		},
		{
			input: "(def loop (lambda () (do (set! n (- n 1)) (cond (= n 0) (quote done) (loop)))))",
			want:  "OK",
		},
		{
			input: "(loop)",
			want:  "done",
		},
		{
			input: "(def mk (lambda () loop))",
			want:  "OK",
		},
		{
			input: "(def again (lambda (k) (do (set! n k) ((mk)))))",
			want:  "OK",
		},
		{
			input: "(again 100000)",
			want:  "done",
		},
	} {
		e, err := l.Eval(tt.input)
		if err != nil {
			t.Errorf("%d) eval error %v", i, err)
			continue
		}
		got := e.String()
		if got != tt.want {
			t.Errorf("%d) got %s want %s", i, got, tt.want)
		}
		if s := l.Stats(); s.MaxStack > 20 {
			t.Errorf("%d) stack grew to %d", i, s.MaxStack)
		}
	}
}

func TestWithoutTCO(t *testing.T) {
	l, _ := newTestLisp()
	l.TCO = false
	if _, err := l.Eval("(def count (lambda (n acc) (cond (= n 0) acc (count (- n 1) (+ acc 1)))))"); err != nil {
		t.Fatal(err)
	}
	e, err := l.Eval("(count 1000 0)")
	if err != nil {
		t.Fatal(err)
	}
	if e.String() != "1000" {
		t.Errorf("got %s want 1000", e)
	}
	if s := l.Stats(); s.MaxStack < 1000 {
		t.Errorf("expected native recursion, max stack %d", s.MaxStack)
	}
}

func TestCurrying(t *testing.T) {
	l, _ := newTestLisp()
	if _, err := l.Eval("(def f (lambda (a b) (- (* a 10) b)))"); err != nil {
		t.Fatal(err)
	}
	partial, err := l.Eval("(f 4)")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := partial.(*Closure); !ok {
		t.Fatalf("got %T want closure", partial)
	}
	l.Env.Add("partial", partial)
	curried, err := l.Eval("(partial 2)")
	if err != nil {
		t.Fatal(err)
	}
	direct, err := l.Eval("(f 4 2)")
	if err != nil {
		t.Fatal(err)
	}
	if !Equal(curried, direct) {
		t.Errorf("got %s want %s", curried, direct)
	}
}

func TestMacroDoesNotEvaluateArguments(t *testing.T) {
	l, _ := newTestLisp()
	if _, err := l.Load(`
        (def n 0)
        (def bump (lambda () (set! n (+ n 1)) n))
        (def M (macro (x) (quote x)))
        (def F (lambda (x) (quote x)))`); err != nil {
		t.Fatal(err)
	}
	for i, tt := range []struct {
		input string
		want  string
	}{
		{input: "(M (bump))", want: "(bump)"},
		{input: "n", want: "0"},
		{input: "(F (bump))", want: "x"},
		{input: "n", want: "1"},
	} {
		e, err := l.Eval(tt.input)
		if err != nil {
			t.Errorf("%d) eval error %v", i, err)
			continue
		}
		if got := e.String(); got != tt.want {
			t.Errorf("%d) got %s want %s", i, got, tt.want)
		}
	}
}

func TestConsole(t *testing.T) {
	l, c := newTestLisp()
	c.in = []string{"(+ 1 2)", "hello"}
	for i, tt := range []struct {
		input string
		want  string
	}{
		{input: `(print "a" 1 (quote (x "y")))`, want: "OK"},
		{input: `(eval (read "> "))`, want: "3"},
		{input: "(read)", want: "hello"},
	} {
		e, err := l.Eval(tt.input)
		if err != nil {
			t.Errorf("%d) eval error %v", i, err)
			continue
		}
		if got := e.String(); got != tt.want {
			t.Errorf("%d) got %s want %s", i, got, tt.want)
		}
	}
	want := []string{`a1(x "y")`, "> ", ""}
	if strings.Join(c.out, "|") != strings.Join(want, "|") {
		t.Errorf("got output %q want %q", c.out, want)
	}
	if _, err := l.Eval("(read)"); !errors.Is(err, io.EOF) {
		t.Errorf("got %v want EOF", err)
	}
}

func TestFork(t *testing.T) {
	l, _ := newTestLisp()
	if _, err := l.Load(`
        (def counter 0)
        (def inc (lambda () (set! counter (+ counter 1)) counter))
        (def sq (lambda (x) (* x x)))`); err != nil {
		t.Fatal(err)
	}
	f1, f2 := l.Fork(), l.Fork()
	term := mustParse("(cons (sq 3) (inc) (inc))")
	a, err := f1.EvalExpr(term)
	if err != nil {
		t.Fatal(err)
	}
	b, err := f2.EvalExpr(term)
	if err != nil {
		t.Fatal(err)
	}
	if !Equal(a, b) {
		t.Errorf("forks disagree: %s vs %s", a, b)
	}
	if a.String() != "(9 1 2)" {
		t.Errorf("got %s want (9 1 2)", a)
	}
	e, err := l.Eval("counter")
	if err != nil {
		t.Fatal(err)
	}
	if e.String() != "0" {
		t.Errorf("fork leaked into original: counter = %s", e)
	}
}

func TestStatsString(t *testing.T) {
	s := Stats{EvalCalls: 1234567, MaxStack: 12}
	if got, want := s.String(), "max stack: 12, eval calls: 1,234,567"; got != want {
		t.Errorf("got %s want %s", got, want)
	}
}

func TestLiteralLispFallsBackToStdio(t *testing.T) {
	l := &Lisp{Env: GlobalEnv()}
	e, err := l.Eval(`(print "")`)
	if err != nil {
		t.Fatal(err)
	}
	if e.String() != "OK" {
		t.Errorf("got %s want OK", e)
	}
	if l.Console == nil {
		t.Error("console left unset")
	}
}
