package fix

import (
	"fmt"
	"strings"

	"github.com/yaklabco/picofix/pkg/source"
)

// InvariantError reports a recorded occurrence that no longer matches the
// content it points into. The parser and the rewriter disagree about the
// buffer, which is a bug in this program, not in the input.
type InvariantError struct {
	Name       string
	Occurrence Occurrence
	Message    string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s (%s)",
		e.Name, e.Occurrence.Line, e.Occurrence.Col, e.Message, e.Occurrence.Kind)
}

// reassignOps are the characters that may precede '=' in a compound
// assignment operator.
const reassignOps = "+-*/%"

// Rewrite translates the recorded dialect occurrences in content into
// canonical Lua. Two passes:
//
//  1. every != becomes ~= — a same-length replacement, so the line and
//     column bookkeeping from the parse stays valid for pass two;
//  2. every compound assignment "a += b" becomes "a = a +(b)": the line is
//     scanned from the recorded start column for the first '=' preceded by
//     an operator character, and the left-hand side is duplicated in front
//     of the re-parenthesised right-hand side.
//
// Pass two is line-scoped: a compound assignment whose expression continues
// on the next line is only rewritten up to the end of its first line.
//
// Single-line if occurrences are diagnostic only and are left untouched.
// With nothing to rewrite the input is returned as-is, byte for byte.
func Rewrite(name string, content []byte, rec *Recorder) ([]byte, error) {
	notEquals := rec.Of(KindNotEqual)
	reassigns := rec.Of(KindReassign)
	if len(notEquals) == 0 && len(reassigns) == 0 {
		return content, nil
	}

	out, err := rewriteNotEquals(name, content, notEquals)
	if err != nil {
		return nil, err
	}
	return rewriteReassigns(name, out, reassigns)
}

func rewriteNotEquals(name string, content []byte, occs []Occurrence) ([]byte, error) {
	if len(occs) == 0 {
		return content, nil
	}

	b := NewEditBuilder()
	for _, occ := range occs {
		if occ.Offset >= len(content) || content[occ.Offset] != '!' {
			return nil, &InvariantError{
				Name:       name,
				Occurrence: occ,
				Message:    "recorded operator does not point at '!'",
			}
		}
		b.ReplaceRange(occ.Offset, occ.Offset+1, "~")
	}

	edits, err := PrepareEdits(b.Edits, len(content))
	if err != nil {
		return nil, err
	}
	return ApplyEdits(content, edits), nil
}

func rewriteReassigns(name string, content []byte, occs []Occurrence) ([]byte, error) {
	if len(occs) == 0 {
		return content, nil
	}

	text := source.New(name, content)
	b := NewEditBuilder()
	for _, occ := range occs {
		lineStart := text.LineStart(occ.Line)
		line := text.LineContent(occ.Line)
		start := occ.Col - 1
		if lineStart < 0 || start < 0 || start >= len(line) {
			return nil, &InvariantError{
				Name:       name,
				Occurrence: occ,
				Message:    "recorded position is outside its line",
			}
		}

		// Find the operator: the first '=' preceded by one of +-*/%.
		opIdx := -1
		for i := start; i < len(line); i++ {
			if line[i] == '=' && i > 0 && strings.IndexByte(reassignOps, line[i-1]) >= 0 {
				opIdx = i
				break
			}
		}
		if opIdx < 0 {
			return nil, &InvariantError{
				Name:       name,
				Occurrence: occ,
				Message:    "no compound assignment operator on the recorded line",
			}
		}

		end := start + occ.Length
		if end > len(line) {
			end = len(line)
		}
		if end < opIdx+1 {
			end = opIdx + 1
		}

		lhs := string(line[start : opIdx-1])
		op := string(line[opIdx-1])
		rhs := string(line[opIdx+1 : end])
		b.ReplaceRange(lineStart+opIdx-1, lineStart+end, "="+lhs+op+"("+rhs+")")
	}

	edits, err := PrepareEdits(b.Edits, len(content))
	if err != nil {
		return nil, err
	}
	return ApplyEdits(content, edits), nil
}
