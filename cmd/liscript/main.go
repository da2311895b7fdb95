package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/deosjr/liscript/internal/config"
	"github.com/deosjr/liscript/lisp"
	"github.com/deosjr/liscript/stdlib"
)

func main() {
	configPath := flag.String("config", ".liscript.yaml", "path to YAML config")
	noTCO := flag.Bool("notco", false, "disable tail call optimisation")
	stat := flag.Bool("stat", false, "print evaluation statistics")
	noPrelude := flag.Bool("noprelude", false, "do not load the standard library")
	debug := flag.Bool("debug", false, "debug logging")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if *noTCO {
		cfg.TCO = false
	}
	if *stat {
		cfg.Stats = true
	}
	if *noPrelude {
		cfg.Prelude = false
	}
	if *debug {
		cfg.LogLevel = "debug"
	}
	level, err := cfg.Level()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	l := lisp.New()
	l.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	l.TCO = cfg.TCO
	if cfg.Prelude {
		if err := stdlib.Load(l); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
	for _, f := range cfg.Load {
		if _, err := l.LoadFile(f); err != nil {
			fmt.Fprintln(os.Stderr, describe(err))
			os.Exit(1)
		}
	}

	if flag.NArg() == 0 {
		startREPL(l, cfg)
		return
	}
	os.Exit(run(l, cfg, flag.Args()))
}

// run evaluates each file in its own copy of the prepared environment.
func run(l *lisp.Lisp, cfg config.Config, files []string) int {
	for _, f := range files {
		fork := l.Fork()
		e, err := fork.LoadFile(f)
		if err != nil {
			fmt.Fprintln(os.Stderr, describe(err))
			return 1
		}
		fmt.Println(e)
		if cfg.Stats {
			fmt.Println(fork.Stats())
		}
	}
	return 0
}

// describe prefixes an error with the stage it came from.
func describe(err error) string {
	var perr *lisp.ParseError
	var eerr *lisp.EvalError
	var ferr *fs.PathError
	switch {
	case errors.As(err, &perr):
		return "PARSING ERROR: " + err.Error()
	case errors.As(err, &eerr):
		return "EVAL ERROR: " + err.Error()
	case errors.As(err, &ferr):
		return "FILE ERROR: " + err.Error()
	}
	return "ERROR: " + err.Error()
}

// linerConsole lets read share the line editor with the REPL.
type linerConsole struct {
	ln *liner.State
}

func (c linerConsole) WriteLine(s string) error {
	_, err := fmt.Println(s)
	return err
}

func (c linerConsole) ReadLine() (string, error) {
	return c.ln.Prompt("")
}

type repl struct {
	l         *lisp.Lisp
	ln        *liner.State
	cfg       config.Config
	out       io.Writer
	errOut    io.Writer
	lastInput string
}

func startREPL(l *lisp.Lisp, cfg config.Config) {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	histPath := cfg.History
	if home, err := os.UserHomeDir(); err == nil && !filepath.IsAbs(histPath) {
		histPath = filepath.Join(home, histPath)
	}
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	l.Console = linerConsole{ln: ln}
	r := &repl{l: l, ln: ln, cfg: cfg, out: os.Stdout, errOut: os.Stderr}
	for {
		s, ok := r.readInput()
		if !ok {
			fmt.Println()
			return
		}
		s = strings.TrimSpace(s)
		if s == ":q" {
			return
		}
		if s != ":" {
			r.lastInput = s
		}
		if s != "" {
			ln.AppendHistory(strings.ReplaceAll(s, "\n", " "))
		}
		r.evalInput(s)
	}
}

func (r *repl) prompt() string {
	if r.l.TCO {
		return "t " + r.cfg.Prompt
	}
	return "n " + r.cfg.Prompt
}

// readInput keeps reading lines while the input so far is an unfinished term.
func (r *repl) readInput() (string, bool) {
	var b strings.Builder
	for {
		p := r.prompt()
		if b.Len() > 0 {
			p = strings.Repeat(" ", max(len(p)-4, 0)) + "... "
		}
		line, err := r.ln.Prompt(p)
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return "", false
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") {
			return src, true
		}
		if _, err := lisp.Parse(src); !lisp.IsIncomplete(err) {
			return src, true
		}
	}
}

func (r *repl) evalInput(s string) {
	if s == "" {
		return
	}
	if strings.HasPrefix(s, ":") {
		r.command(s)
		return
	}
	r.evalLisp(s)
}

func (r *repl) evalLisp(s string) {
	e, err := r.l.Eval(s)
	r.report(e, err)
}

func (r *repl) report(e lisp.SExpression, err error) {
	if err != nil {
		fmt.Fprintln(r.errOut, describe(err))
		return
	}
	fmt.Fprintln(r.out, e)
	if r.cfg.Stats {
		fmt.Fprintln(r.out, r.l.Stats())
	}
}

func (r *repl) command(s string) {
	fields := strings.Fields(s)
	switch fields[0] {
	case ":l":
		if len(fields) < 2 {
			fmt.Fprintln(r.errOut, "usage: :l <file>")
			return
		}
		r.report(r.l.LoadFile(fields[1]))
	case ":":
		if r.lastInput != "" && r.lastInput != ":" {
			r.evalInput(r.lastInput)
		}
	case ":help":
		if err := stdlib.Help(r.l); err != nil {
			fmt.Fprintln(r.errOut, describe(err))
		}
	case ":tco":
		r.l.TCO = !r.l.TCO
	case ":stat":
		r.cfg.Stats = !r.cfg.Stats
	default:
		fmt.Fprintln(r.errOut, "bad REPL command: "+fields[0])
	}
}
