package peg

import "github.com/yaklabco/picofix/pkg/source"

// Position is a cursor into a source buffer: byte offset plus the derived
// 1-based line and byte column. It only ever moves forward on confirmed
// consumption; moving backward happens exclusively through State.restore,
// tied to a failed alternative.
type Position struct {
	Offset int
	Line   int
	Col    int
}

// Backtracker receives backtrack notifications from a parse in progress.
//
// Side-effect logs populated by semantic actions register themselves on the
// State; whenever the engine restores a saved position, every registered
// Backtracker must discard entries at or beyond the restore offset.
// Offsets are appended in non-decreasing order during forward progress, so
// the discard is a trim from the tail, never a scan.
type Backtracker interface {
	TrimFrom(offset int)
}

// State is the mutable matching state for a single parse. A State is owned
// by exactly one parse and is never shared: independent inputs may be parsed
// concurrently by independent States with zero shared mutable data.
type State struct {
	src   *source.Text
	input []byte
	pos   Position

	// quiet is incremented inside predicates (not-at / at). While quiet,
	// semantic actions do not fire and failures do not advance the
	// farthest-failure marker, since predicate failures are expected.
	quiet int

	farthest     Position
	farthestRule string

	ruleStack []string
	trackers  []Backtracker

	// err is a fatal parse error raised by a must-sequence. Once set, no
	// alternative is tried and the parse unwinds to the caller.
	err error
}

// NewState creates a parse state positioned at the start of src.
func NewState(src *source.Text) *State {
	return &State{
		src:   src,
		input: src.Content(),
		pos:   Position{Offset: 0, Line: 1, Col: 1},
	}
}

// Register adds a Backtracker to be notified on every position restore.
func (s *State) Register(b Backtracker) {
	s.trackers = append(s.trackers, b)
}

// Pos returns the current cursor position.
func (s *State) Pos() Position { return s.pos }

// Source returns the source buffer being parsed.
func (s *State) Source() *source.Text { return s.src }

func (s *State) atEnd() bool {
	return s.pos.Offset >= len(s.input)
}

func (s *State) remaining() int {
	return len(s.input) - s.pos.Offset
}

func (s *State) peek(i int) byte {
	return s.input[s.pos.Offset+i]
}

// advance consumes n bytes, updating line and column bookkeeping.
func (s *State) advance(n int) {
	end := s.pos.Offset + n
	for _, c := range s.input[s.pos.Offset:end] {
		if c == '\n' {
			s.pos.Line++
			s.pos.Col = 1
		} else {
			s.pos.Col++
		}
	}
	s.pos.Offset = end
}

// restore rewinds the cursor to a previously saved position and trims every
// registered side-effect log back to it. This is the single point where the
// backtrack-safety contract is enforced.
func (s *State) restore(p Position) {
	if p.Offset < s.pos.Offset {
		for _, t := range s.trackers {
			t.TrimFrom(p.Offset)
		}
	}
	s.pos = p
}

// miss records a failed terminal match for furthest-failure diagnostics.
func (s *State) miss() {
	if s.quiet > 0 {
		return
	}
	if s.pos.Offset >= s.farthest.Offset {
		s.farthest = s.pos
		if n := len(s.ruleStack); n > 0 {
			s.farthestRule = s.ruleStack[n-1]
		}
	}
}

// errorPos returns the best diagnostic position: the furthest failure seen,
// or the current position if nothing failed deeper.
func (s *State) errorPos() (Position, string) {
	if s.farthest.Offset >= s.pos.Offset {
		return s.farthest, s.farthestRule
	}
	rule := ""
	if n := len(s.ruleStack); n > 0 {
		rule = s.ruleStack[n-1]
	}
	return s.pos, rule
}

// Capture is the matched span handed to a semantic action.
type Capture struct {
	Start Position
	End   Position

	input []byte
	src   *source.Text
}

// Text returns the matched bytes as a string.
func (c Capture) Text() string {
	return string(c.input[c.Start.Offset:c.End.Offset])
}

// Len returns the matched length in bytes.
func (c Capture) Len() int {
	return c.End.Offset - c.Start.Offset
}

// Source returns the buffer the capture points into.
func (c Capture) Source() *source.Text { return c.src }
