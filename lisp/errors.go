package lisp

import (
	"errors"
	"fmt"
)

// snippetLen bounds how much source or rendered term ends up in an error.
const snippetLen = 20

type ParseError struct {
	Msg  string
	Near string
	// Incomplete is set when the input ended inside a list, string or
	// comment, so more input could still make it parse.
	Incomplete bool
}

func (e *ParseError) Error() string {
	if e.Near == "" {
		return e.Msg
	}
	return e.Msg + ": " + e.Near
}

type EvalError struct {
	Msg string
}

func (e *EvalError) Error() string {
	return e.Msg
}

func parseError(msg, rest string) error {
	return &ParseError{Msg: msg, Near: truncate(rest)}
}

func incompleteError(msg, rest string) error {
	return &ParseError{Msg: msg, Near: truncate(rest), Incomplete: true}
}

// IsIncomplete reports whether err is a parse error caused by input that
// ended too early.
func IsIncomplete(err error) bool {
	var perr *ParseError
	return errors.As(err, &perr) && perr.Incomplete
}

func evalErrorf(format string, args ...any) error {
	return &EvalError{Msg: fmt.Sprintf(format, args...)}
}

func snippet(e SExpression) string {
	if e == nil {
		return "<nil>"
	}
	return truncate(e.String())
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= snippetLen {
		return s
	}
	return string(r[:snippetLen]) + "..."
}
