package peg

import (
	"fmt"
	"strings"
)

// ParseError reports that the input does not match the grammar. Pos is the
// furthest position the parser reached before failing; Rule is the
// innermost named rule active there.
type ParseError struct {
	Source  string
	Pos     Position
	Rule    string
	Message string
}

func (e *ParseError) Error() string {
	var b strings.Builder
	if e.Source != "" {
		fmt.Fprintf(&b, "%s:", e.Source)
	}
	fmt.Fprintf(&b, "%d:%d: %s", e.Pos.Line, e.Pos.Col, e.Message)
	if e.Rule != "" {
		fmt.Fprintf(&b, " (in %s)", e.Rule)
	}
	return b.String()
}

// GrammarError reports a structural defect in the grammar itself: a missing
// or unreachable rule, or a repetition that could loop forever. It is a
// development-time defect, detected before any input is parsed.
type GrammarError struct {
	Rule    string
	Message string
}

func (e *GrammarError) Error() string {
	if e.Rule == "" {
		return fmt.Sprintf("grammar: %s", e.Message)
	}
	return fmt.Sprintf("grammar: rule %q: %s", e.Rule, e.Message)
}
