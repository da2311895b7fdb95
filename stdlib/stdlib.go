package stdlib

import (
	_ "embed"
	"fmt"

	"github.com/deosjr/liscript/lisp"
)

//go:embed stdlib.liscript
var prelude string

//go:embed help.liscript
var help string

// Load defines the standard library in the global environment of l.
func Load(l *lisp.Lisp) error {
	if _, err := l.Load(prelude); err != nil {
		return fmt.Errorf("stdlib: %w", err)
	}
	return nil
}

// Help prints the REPL help text to the console of l.
func Help(l *lisp.Lisp) error {
	_, err := l.Load(help)
	return err
}
