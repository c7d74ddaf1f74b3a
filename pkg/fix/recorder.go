package fix

import "sort"

// Kind identifies a dialect construct found during parsing.
type Kind int

const (
	// KindNotEqual is the != comparison operator.
	KindNotEqual Kind = iota
	// KindReassign is a compound assignment such as a += b.
	KindReassign
	// KindShortIf is the single-line if form without "then" and "end".
	KindShortIf
)

func (k Kind) String() string {
	switch k {
	case KindNotEqual:
		return "not-equal operator"
	case KindReassign:
		return "compound assignment"
	case KindShortIf:
		return "single-line if"
	default:
		return "unknown"
	}
}

// Occurrence is one dialect construct located in the source. Line and Col
// are 1-based; Offset and Length are in bytes.
type Occurrence struct {
	Kind   Kind
	Offset int
	Line   int
	Col    int
	Length int
	Text   string
}

// Recorder accumulates occurrences reported by grammar actions. It
// implements the parser's Backtracker contract: occurrences recorded by an
// alternative that is later abandoned are trimmed away, so the final set
// reflects only the successful parse.
//
// Occurrences are kept per kind because actions for nested constructs fire
// inner-first: a compound assignment's record arrives after the records for
// operators inside its right-hand side, so offsets are only monotonic
// within a single kind.
type Recorder struct {
	byKind map[Kind][]Occurrence
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{byKind: make(map[Kind][]Occurrence)}
}

// Record adds an occurrence. A record at or past an existing same-kind
// record's offset means that region is being re-parsed; the stale tail is
// dropped first.
func (r *Recorder) Record(o Occurrence) {
	occs := r.byKind[o.Kind]
	for len(occs) > 0 && occs[len(occs)-1].Offset >= o.Offset {
		occs = occs[:len(occs)-1]
	}
	r.byKind[o.Kind] = append(occs, o)
}

// TrimFrom discards every occurrence at or beyond offset. The parser calls
// this whenever it backtracks.
func (r *Recorder) TrimFrom(offset int) {
	for kind, occs := range r.byKind {
		for len(occs) > 0 && occs[len(occs)-1].Offset >= offset {
			occs = occs[:len(occs)-1]
		}
		r.byKind[kind] = occs
	}
}

// Of returns the occurrences of one kind in source order.
func (r *Recorder) Of(kind Kind) []Occurrence {
	return r.byKind[kind]
}

// All returns every occurrence, ordered by offset.
func (r *Recorder) All() []Occurrence {
	var all []Occurrence
	for _, occs := range r.byKind {
		all = append(all, occs...)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Offset < all[j].Offset })
	return all
}

// Len returns the total number of occurrences.
func (r *Recorder) Len() int {
	n := 0
	for _, occs := range r.byKind {
		n += len(occs)
	}
	return n
}

// Reset discards all occurrences.
func (r *Recorder) Reset() {
	r.byKind = make(map[Kind][]Occurrence)
}
