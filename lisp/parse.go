package lisp

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"unicode"
)

// Parse reads a single term. If more terms follow, the result is the first
// term consed onto the list of the remaining ones, so "do a b" reads as the
// sequence (do a b).
func Parse(program string) (SExpression, error) {
	return parse(program)
}

// ParseFile reads a whole file as one do-sequence of its top-level terms.
func ParseFile(filename string) (SExpression, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	return parseProgram(string(b))
}

// parseProgram reads all top-level terms of a program as (do ...).
func parseProgram(program string) (SExpression, error) {
	p, err := parse("do " + program)
	if err != nil {
		return nil, err
	}
	if p == SExpression(DO) {
		// nothing but whitespace and comments
		return list2cons(DO), nil
	}
	return p, nil
}

func mustParse(program string) SExpression {
	p, err := parse(program)
	if err != nil {
		panic(err)
	}
	return p
}

func parse(program string) (SExpression, error) {
	x, rest, err := parseTerm(program)
	if err != nil {
		return nil, err
	}
	rest, err = skipTrash(rest)
	if err != nil {
		return nil, err
	}
	if rest == "" {
		return x, nil
	}
	y, rest, err := parseTerm("(" + rest + ")")
	if err != nil {
		return nil, err
	}
	if rest != "" {
		return nil, parseError("extra symbols", rest)
	}
	return NewPair(x, y), nil
}

// skipTrash drops leading whitespace and ;comments;
func skipTrash(s string) (string, error) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	for strings.HasPrefix(s, ";") {
		end := strings.IndexByte(s[1:], ';')
		if end == -1 {
			return "", incompleteError("closing ';' is absent", s)
		}
		s = strings.TrimLeftFunc(s[end+2:], unicode.IsSpace)
	}
	return s, nil
}

func parseTerm(s string) (SExpression, string, error) {
	s, err := skipTrash(s)
	if err != nil {
		return nil, "", err
	}
	if s == "" {
		return Nil, "", nil
	}
	switch s[0] {
	case '(':
		return parseList(s[1:])
	case ')':
		return nil, "", parseError("extra closing ')'", s)
	case '"':
		end := strings.IndexByte(s[1:], '"')
		if end == -1 {
			return nil, "", incompleteError(`closing '"' is absent`, s)
		}
		return String(s[1 : end+1]), s[end+2:], nil
	case '\'':
		x, rest, err := parseTerm(s[1:])
		if err != nil {
			return nil, "", err
		}
		return list2cons(QUOTE, x), rest, nil
	}
	end := strings.IndexFunc(s, isDelimiter)
	if end == -1 {
		end = len(s)
	}
	return atom(s[:end]), s[end:], nil
}

func parseList(s string) (SExpression, string, error) {
	list := []SExpression{}
	for {
		var err error
		s, err = skipTrash(s)
		if err != nil {
			return nil, "", err
		}
		if s == "" {
			return nil, "", incompleteError("closing ')' is absent", "")
		}
		if s[0] == ')' {
			return list2cons(list...), s[1:], nil
		}
		var x SExpression
		x, s, err = parseTerm(s)
		if err != nil {
			return nil, "", err
		}
		list = append(list, x)
	}
}

func isDelimiter(r rune) bool {
	return unicode.IsSpace(r) || strings.ContainsRune(`()";`, r)
}

func atom(token string) SExpression {
	switch token {
	case "true":
		return Boolean(true)
	case "false":
		return Boolean(false)
	}
	if op, ok := binaryOps[token]; ok {
		return op
	}
	if bp, ok := binaryPreds[token]; ok {
		return bp
	}
	if sf, ok := specialForms[token]; ok {
		return sf
	}
	if n, ok := parseNumber(token); ok {
		return n
	}
	return NewSymbol(token)
}

func parseNumber(token string) (Number, bool) {
	if strings.ContainsRune(token, '_') || isHexFloat(token) {
		return 0, false
	}
	n, err := strconv.ParseFloat(token, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		if i, ok := parseRadix(token); ok {
			return Number(i), true
		}
		return 0, false
	}
	if math.IsNaN(n) {
		return 0, false
	}
	// ParseFloat also takes "inf" and "infinity" in any case
	if math.IsInf(n, 0) && err == nil && strings.TrimLeft(token, "+-") != "Infinity" {
		return 0, false
	}
	return Number(n), true
}

// parseRadix reads 0x, 0o and 0b prefixed integers.
func parseRadix(token string) (int64, bool) {
	if len(token) < 3 || token[0] != '0' || !strings.ContainsRune("xXoObB", rune(token[1])) {
		return 0, false
	}
	i, err := strconv.ParseInt(token, 0, 64)
	return i, err == nil
}

func isHexFloat(token string) bool {
	t := strings.TrimLeft(token, "+-")
	return len(t) > 2 && t[0] == '0' && (t[1] == 'x' || t[1] == 'X') && strings.ContainsAny(t, "pP")
}
