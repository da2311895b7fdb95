package lisp

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Stats covers one top-level evaluation.
type Stats struct {
	EvalCalls int
	MaxStack  int
}

func (s *Stats) record(depth int) {
	s.EvalCalls++
	if depth+1 > s.MaxStack {
		s.MaxStack = depth + 1
	}
}

var statsPrinter = message.NewPrinter(language.English)

func (s Stats) String() string {
	return statsPrinter.Sprintf("max stack: %d, eval calls: %d", s.MaxStack, s.EvalCalls)
}
