// Package lua defines the combined lexer/parser grammar for Lua 5.3 plus
// the PICO-8 syntax extensions, expressed over the peg engine.
//
// The grammar is not a classical two-stage lexer/parser: every rule handles
// its own internal padding (spaces and comments), and operator precedence
// and associativity are reflected directly in the rule structure. All left
// recursion from the reference grammar has been eliminated by hand; see
// expr.go for the head/tail split that parses variable and call chains such
// as
//
//	(a*b).c()[d].e:f()
//
// in a single pass without deciding up front whether the chain is a
// variable or a function call.
//
// The PICO-8 extensions (the != operator, compound assignment, the
// single-line if shorthand) are guarded by Options.Pico8 and are simply
// absent from the grammar when the flag is off, so canonical-mode behavior
// is a strict subset by construction. Extension matches are reported
// through Options.Recorder; the recorder must be registered on the parse
// State so speculative matches are retracted on backtrack.
package lua

import (
	"github.com/yaklabco/picofix/pkg/fix"
	"github.com/yaklabco/picofix/pkg/peg"
)

// Options configures grammar construction.
type Options struct {
	// Pico8 enables the dialect extension rules. When false the grammar
	// accepts canonical Lua 5.3 only and extension constructs are ordinary
	// parse failures.
	Pico8 bool

	// Recorder receives extension occurrences during parsing. May be nil
	// (e.g. for the structural self-check), in which case extensions are
	// still parsed but not recorded.
	Recorder *fix.Recorder
}

// keywords in match order. "elseif" precedes "else" so that the keyword
// alternation never matches only the "else" prefix of an "elseif".
var keywords = []string{
	"and", "break", "do", "elseif", "else", "end", "false", "for",
	"function", "goto", "if", "in", "local", "nil", "not", "or",
	"repeat", "return", "then", "true", "until", "while",
}

type builder struct {
	g    *peg.Grammar
	opts Options

	sep     peg.Expr
	seps    peg.Expr
	keyword peg.Expr
	keys    map[string]peg.Expr

	name       peg.Expr // ref
	expression peg.Expr // ref
	statement  peg.Expr // ref

	threeDots        peg.Expr
	exprListMust     peg.Expr
	bracketExpr      peg.Expr
	variableTail     peg.Expr
	functionCallTail peg.Expr
	functionArgs     peg.Expr
}

// New builds the grammar. Callers should run Analyze once on a freshly
// built grammar before trusting it with input; the structure is identical
// for every build with the same options, so one check covers them all.
func New(opts Options) *peg.Grammar {
	b := &builder{
		g:    peg.NewGrammar(),
		opts: opts,
		keys: make(map[string]peg.Expr, len(keywords)),
	}

	b.name = b.g.Ref("name")
	b.expression = b.g.Ref("expression")
	b.statement = b.g.Ref("statement")

	b.buildLexical()
	b.buildExpressions()
	b.buildStatements()

	b.g.Root("chunk")
	return b.g
}

// key matches a keyword as a whole word: the keyword must not be a prefix
// of a longer identifier.
func (b *builder) key(kw string) peg.Expr {
	if e, ok := b.keys[kw]; ok {
		return e
	}
	e := peg.Seq(peg.S(kw), peg.Not(peg.IdentOther))
	b.keys[kw] = e
	return e
}

// pad wraps an expression in optional separator runs on both sides.
func (b *builder) pad(e peg.Expr) peg.Expr {
	return peg.Seq(b.seps, e, b.seps)
}

// padOpt matches optional separators, then optionally e followed by more
// separators.
func (b *builder) padOpt(e peg.Expr) peg.Expr {
	return peg.Seq(b.seps, peg.Opt(e, b.seps))
}

// list matches item (sep item)* with padding around each separator.
func (b *builder) list(item, sep peg.Expr) peg.Expr {
	return peg.Seq(item, peg.Star(b.pad(sep), item))
}

// listMust is list, but once a separator is consumed the next item must
// follow.
func (b *builder) listMust(item, sep peg.Expr) peg.Expr {
	return peg.Seq(item, peg.Star(b.pad(sep), peg.Must(item)))
}

// listTail is list with an optional trailing separator.
func (b *builder) listTail(item, sep peg.Expr) peg.Expr {
	return peg.Seq(b.list(item, sep), peg.Opt(b.pad(sep)))
}

// record returns an action function emitting an occurrence of the given
// kind, or nil when no recorder is attached.
func (b *builder) record(kind fix.Kind) peg.ActionFunc {
	rec := b.opts.Recorder
	if rec == nil {
		return nil
	}
	return func(c peg.Capture) {
		rec.Record(fix.Occurrence{
			Kind:   kind,
			Offset: c.Start.Offset,
			Line:   c.Start.Line,
			Col:    c.Start.Col,
			Length: c.Len(),
			Text:   c.Text(),
		})
	}
}

// opOne matches a single-character operator that must not be followed by
// any of the excluded characters, so that a short operator is never
// greedily matched inside a longer one (e.g. "<" inside "<<").
func opOne(op, excluded string) peg.Expr {
	return peg.Seq(peg.One(op), peg.At(peg.NotOne(excluded)))
}

// opTwo is opOne for a two-character operator.
func opTwo(op, excluded string) peg.Expr {
	return peg.Seq(peg.S(op), peg.At(peg.NotOne(excluded)))
}
