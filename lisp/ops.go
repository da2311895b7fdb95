package lisp

import "math"

type BinaryOp uint8

const (
	ADD BinaryOp = iota
	SUB
	MUL
	DIV
	NDIV
	MOD
	SCONCAT
)

type BinaryPred uint8

const (
	GT BinaryPred = iota
	GTE
	LT
	LTE
	EQ
	NOEQ
)

type SpecialForm uint8

const (
	DEF SpecialForm = iota
	SET
	QUOTE
	TYPEOF
	CONS
	CAR
	CDR
	COND
	PRINT
	READ
	EVAL
	EVALIN
	LAMBDA
	MACRO
	SYMBOL
	DO
)

// source tokens, indexed by tag
var (
	binaryOpTokens    = [...]string{"+", "-", "*", "/", "//", "mod", "++"}
	binaryPredTokens  = [...]string{">", ">=", "<", "<=", "=", "/="}
	specialFormTokens = [...]string{
		"def", "set!", "quote", "typeof", "cons", "car", "cdr", "cond",
		"print", "read", "eval", "eval-in", "lambda", "macro", "symbol", "do",
	}
)

// reverse lookup tables used by the parser
var (
	binaryOps    = map[string]BinaryOp{}
	binaryPreds  = map[string]BinaryPred{}
	specialForms = map[string]SpecialForm{}
)

func init() {
	for i, s := range binaryOpTokens {
		binaryOps[s] = BinaryOp(i)
	}
	for i, s := range binaryPredTokens {
		binaryPreds[s] = BinaryPred(i)
	}
	for i, s := range specialFormTokens {
		specialForms[s] = SpecialForm(i)
	}
}

func (op BinaryOp) String() string { return binaryOpTokens[op] }
func (op BinaryOp) Type() string   { return "Operator" }

func (bp BinaryPred) String() string { return binaryPredTokens[bp] }
func (bp BinaryPred) Type() string   { return "Predicate" }

func (sf SpecialForm) String() string { return specialFormTokens[sf] }
func (sf SpecialForm) Type() string   { return "SpecialForm" }

func (op BinaryOp) apply(a, b SExpression) (SExpression, error) {
	if op == SCONCAT {
		return String(display(a) + display(b)), nil
	}
	x, okx := a.(Number)
	y, oky := b.(Number)
	if !okx || !oky {
		return nil, evalErrorf("operator %s expects numbers, got %s and %s", op, snippet(a), snippet(b))
	}
	switch op {
	case ADD:
		return x + y, nil
	case SUB:
		return x - y, nil
	case MUL:
		return x * y, nil
	case DIV:
		return x / y, nil
	case NDIV:
		return Number(math.Trunc(float64(x / y))), nil
	case MOD:
		return Number(math.Mod(float64(x), float64(y))), nil
	}
	return nil, evalErrorf("unknown operator %d", op)
}

func (bp BinaryPred) test(a, b SExpression) (bool, error) {
	switch bp {
	case EQ:
		return Equal(a, b), nil
	case NOEQ:
		return !Equal(a, b), nil
	}
	switch x := a.(type) {
	case Number:
		if y, ok := b.(Number); ok {
			return bp.order(x < y, x == y, x > y), nil
		}
	case String:
		if y, ok := b.(String); ok {
			return bp.order(x < y, x == y, x > y), nil
		}
	}
	return false, evalErrorf("predicate %s cannot compare %s with %s", bp, snippet(a), snippet(b))
}

// order maps the outcome of a comparison onto an ordering predicate.
// For NaN all three outcomes are false.
func (bp BinaryPred) order(less, equal, greater bool) bool {
	switch bp {
	case GT:
		return greater
	case GTE:
		return greater || equal
	case LT:
		return less
	case LTE:
		return less || equal
	}
	return false
}
