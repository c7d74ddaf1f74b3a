// Package peg implements a PEG-style combinator engine: a grammar is an
// explicit graph of rule nodes that is first validated structurally
// (Analyze) and then matched recursively against an immutable source buffer.
//
// Matching follows the usual PEG discipline: alternatives are tried in
// order, the first success wins, and failure restores the parser to the
// position where the alternative began. Semantic actions may record
// side effects during speculative matching; the State's Backtracker hooks
// guarantee those records are retracted whenever the engine rewinds.
package peg

import "strings"

// Expr is a single grammar rule node. Nodes compose into a graph rooted at
// a Grammar's root rule; the graph is acyclic except through named rule
// references, which is legal as long as the recursion is not left
// recursion (checked by Grammar.Analyze).
type Expr interface {
	parse(s *State) bool
	children() []Expr
}

// ActionFunc is invoked when the wrapped expression matches outside any
// predicate. The capture spans the matched input.
type ActionFunc func(Capture)

// ---------------------------------------------------------------------------
// Terminals
// ---------------------------------------------------------------------------

type lit struct {
	s    string
	fold bool
}

func (l *lit) parse(s *State) bool {
	n := len(l.s)
	if s.remaining() < n {
		s.miss()
		return false
	}
	for i := 0; i < n; i++ {
		c := s.peek(i)
		if l.fold {
			c = lowerASCII(c)
		}
		if c != l.s[i] {
			s.miss()
			return false
		}
	}
	s.advance(n)
	return true
}

func (l *lit) children() []Expr { return nil }

func lowerASCII(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}

// S matches the literal string exactly.
func S(text string) Expr { return &lit{s: text} }

// IS matches the literal string ignoring ASCII case. The argument must be
// lowercase.
func IS(text string) Expr { return &lit{s: text, fold: true} }

type oneOf struct {
	set    string
	negate bool
}

func (o *oneOf) parse(s *State) bool {
	if s.atEnd() {
		s.miss()
		return false
	}
	in := strings.IndexByte(o.set, s.peek(0)) >= 0
	if in == o.negate {
		s.miss()
		return false
	}
	s.advance(1)
	return true
}

func (o *oneOf) children() []Expr { return nil }

// One matches a single byte contained in set.
func One(set string) Expr { return &oneOf{set: set} }

// NotOne matches a single byte not contained in set.
func NotOne(set string) Expr { return &oneOf{set: set, negate: true} }

type class struct {
	name string
	pred func(byte) bool
}

func (c *class) parse(s *State) bool {
	if s.atEnd() || !c.pred(s.peek(0)) {
		s.miss()
		return false
	}
	s.advance(1)
	return true
}

func (c *class) children() []Expr { return nil }

// Class matches a single byte satisfying pred. The name is diagnostic only.
func Class(name string, pred func(byte) bool) Expr {
	return &class{name: name, pred: pred}
}

// Common byte classes.
var (
	Digit  = Class("digit", func(c byte) bool { return c >= '0' && c <= '9' })
	XDigit = Class("xdigit", func(c byte) bool {
		return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
	})
	Space = Class("space", func(c byte) bool {
		return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
	})
	IdentFirst = Class("identifier-first", func(c byte) bool {
		return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
	})
	IdentOther = Class("identifier-other", func(c byte) bool {
		return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
	})
)

type anyByte struct{}

func (anyByte) parse(s *State) bool {
	if s.atEnd() {
		s.miss()
		return false
	}
	s.advance(1)
	return true
}

func (anyByte) children() []Expr { return nil }

// Any matches any single byte.
func Any() Expr { return anyByte{} }

type eofExpr struct{}

func (eofExpr) parse(s *State) bool {
	if !s.atEnd() {
		s.miss()
		return false
	}
	return true
}

func (eofExpr) children() []Expr { return nil }

// EOF matches only at the end of input, consuming nothing.
func EOF() Expr { return eofExpr{} }

// Eolf matches a line ending (LF or CRLF) or the end of input.
func Eolf() Expr { return Choice(S("\r\n"), S("\n"), EOF()) }

// ---------------------------------------------------------------------------
// Composites
// ---------------------------------------------------------------------------

type seq struct{ items []Expr }

func (q *seq) parse(s *State) bool {
	for _, it := range q.items {
		if !it.parse(s) {
			return false
		}
	}
	return true
}

func (q *seq) children() []Expr { return q.items }

// Seq matches every item in order.
func Seq(items ...Expr) Expr {
	if len(items) == 1 {
		return items[0]
	}
	return &seq{items: items}
}

type choice struct{ items []Expr }

func (c *choice) parse(s *State) bool {
	saved := s.pos
	for _, it := range c.items {
		if it.parse(s) {
			return true
		}
		if s.err != nil {
			return false
		}
		s.restore(saved)
	}
	return false
}

func (c *choice) children() []Expr { return c.items }

// Choice tries each alternative in order; the first success wins.
func Choice(items ...Expr) Expr {
	if len(items) == 1 {
		return items[0]
	}
	return &choice{items: items}
}

type star struct{ item Expr }

func (r *star) parse(s *State) bool {
	for {
		saved := s.pos
		if !r.item.parse(s) {
			if s.err != nil {
				return false
			}
			s.restore(saved)
			return true
		}
		if s.pos.Offset == saved.Offset {
			// Empty match; stop rather than loop. Analyze flags grammars
			// that can reach this.
			return true
		}
	}
}

func (r *star) children() []Expr { return []Expr{r.item} }

// Star matches the sequence zero or more times.
func Star(items ...Expr) Expr { return &star{item: Seq(items...)} }

type plus struct{ item Expr }

func (r *plus) parse(s *State) bool {
	if !r.item.parse(s) {
		return false
	}
	st := star{item: r.item}
	return st.parse(s)
}

func (r *plus) children() []Expr { return []Expr{r.item} }

// Plus matches the sequence one or more times.
func Plus(items ...Expr) Expr { return &plus{item: Seq(items...)} }

type opt struct{ item Expr }

func (o *opt) parse(s *State) bool {
	saved := s.pos
	if !o.item.parse(s) {
		if s.err != nil {
			return false
		}
		s.restore(saved)
	}
	return true
}

func (o *opt) children() []Expr { return []Expr{o.item} }

// Opt matches the sequence zero or one time.
func Opt(items ...Expr) Expr { return &opt{item: Seq(items...)} }

type repMax struct {
	item Expr
	max  int
}

func (r *repMax) parse(s *State) bool {
	for i := 0; i < r.max; i++ {
		saved := s.pos
		if !r.item.parse(s) {
			if s.err != nil {
				return false
			}
			s.restore(saved)
			return true
		}
	}
	return true
}

func (r *repMax) children() []Expr { return []Expr{r.item} }

// RepMax matches the item at most max times (including zero).
func RepMax(max int, item Expr) Expr { return &repMax{item: item, max: max} }

type notAt struct{ item Expr }

func (n *notAt) parse(s *State) bool {
	saved := s.pos
	s.quiet++
	ok := n.item.parse(s)
	s.quiet--
	s.restore(saved)
	if s.err != nil {
		return false
	}
	if ok {
		s.miss()
	}
	return !ok
}

func (n *notAt) children() []Expr { return []Expr{n.item} }

// Not is a negative lookahead: succeeds, consuming nothing, only if the
// sequence does not match here. Actions inside the lookahead never fire.
func Not(items ...Expr) Expr { return &notAt{item: Seq(items...)} }

type at struct{ item Expr }

func (a *at) parse(s *State) bool {
	saved := s.pos
	s.quiet++
	ok := a.item.parse(s)
	s.quiet--
	s.restore(saved)
	if s.err != nil {
		return false
	}
	if !ok {
		s.miss()
	}
	return ok
}

func (a *at) children() []Expr { return []Expr{a.item} }

// At is a positive lookahead: succeeds, consuming nothing, only if the
// sequence matches here. Actions inside the lookahead never fire.
func At(items ...Expr) Expr { return &at{item: Seq(items...)} }

type until struct {
	cond Expr
	body Expr
}

func (u *until) parse(s *State) bool {
	for {
		saved := s.pos
		if u.cond.parse(s) {
			return true
		}
		if s.err != nil {
			return false
		}
		s.restore(saved)
		if !u.body.parse(s) {
			return false
		}
		if s.pos.Offset == saved.Offset {
			return false
		}
	}
}

func (u *until) children() []Expr { return []Expr{u.cond, u.body} }

// Until repeatedly matches body until cond matches; cond's consumption is
// kept. With no body, any byte is consumed.
func Until(cond Expr, body ...Expr) Expr {
	b := Expr(Any())
	if len(body) > 0 {
		b = Seq(body...)
	}
	return &until{cond: cond, body: b}
}

type must struct{ items []Expr }

func (m *must) parse(s *State) bool {
	for _, it := range m.items {
		if !it.parse(s) {
			if s.err == nil {
				pos, rule := s.errorPos()
				s.err = &ParseError{
					Source:  s.src.Name(),
					Pos:     pos,
					Rule:    rule,
					Message: "syntax error",
				}
			}
			return false
		}
	}
	return true
}

func (m *must) children() []Expr { return m.items }

// Must matches every item in order; any failure is fatal and is never
// backtracked over. Use it after a committed prefix (e.g. once a numeral's
// "0x" has been seen, malformed digits are a hard error).
func Must(items ...Expr) Expr { return &must{items: items} }

// IfMust matches head normally, then commits: the remaining items must
// match or the parse fails fatally.
func IfMust(head Expr, rest ...Expr) Expr {
	return Seq(head, Must(rest...))
}

type action struct {
	item Expr
	fn   ActionFunc
}

func (a *action) parse(s *State) bool {
	start := s.pos
	if !a.item.parse(s) {
		return false
	}
	if s.quiet == 0 && a.fn != nil {
		a.fn(Capture{Start: start, End: s.pos, input: s.input, src: s.src})
	}
	return true
}

func (a *action) children() []Expr { return []Expr{a.item} }

// Act invokes fn with the matched span whenever the expression succeeds
// outside a predicate. Records made by fn must be registered with the
// State as Backtrackers so they are retracted if the match is later
// abandoned.
func Act(e Expr, fn ActionFunc) Expr { return &action{item: e, fn: fn} }

// ---------------------------------------------------------------------------
// Long-bracket strings
// ---------------------------------------------------------------------------

type rawString struct {
	open, fill, close byte
}

func (r *rawString) parse(s *State) bool {
	// Opening delimiter: open, N fills, open.
	if s.atEnd() || s.peek(0) != r.open {
		s.miss()
		return false
	}
	i := 1
	for i < s.remaining() && s.peek(i) == r.fill {
		i++
	}
	if i >= s.remaining() || s.peek(i) != r.open {
		s.miss()
		return false
	}
	level := i - 1
	i++

	// Content runs verbatim to the matching close with the same fill count.
	for i < s.remaining() {
		if s.peek(i) == r.close {
			j := i + 1
			n := 0
			for j < s.remaining() && s.peek(j) == r.fill {
				j++
				n++
			}
			if n == level && j < s.remaining() && s.peek(j) == r.close {
				s.advance(j + 1)
				return true
			}
		}
		i++
	}
	s.miss()
	return false
}

func (r *rawString) children() []Expr { return nil }

// RawString matches a long-bracket form: open, N fills, open, verbatim
// content, close, N fills, close — with the same N on both ends. This is
// the `[==[ ... ]==]` convention shared by long strings and long comments.
func RawString(open, fill, close byte) Expr {
	return &rawString{open: open, fill: fill, close: close}
}
