package lua

import "github.com/yaklabco/picofix/pkg/peg"

// buildLexical defines the token-level rules: separators (whitespace and
// comments), keywords, names, string literals and numerals. Everything
// above this layer consumes padding through b.seps, so no rule here eats
// trailing whitespace of its own.
func (b *builder) buildLexical() {
	g := b.g

	// Comments. A long bracket immediately after "--" turns the comment
	// into a block comment; otherwise it runs to the end of the line.
	longString := peg.RawString('[', '=', ']')
	shortComment := peg.Until(peg.Eolf())
	comment := peg.Seq(peg.S("--"), peg.Choice(longString, shortComment))

	b.sep = peg.Choice(peg.Space, comment)
	b.seps = peg.Star(b.sep)

	// Keyword alternation, used only to keep names and keywords apart.
	alts := make([]peg.Expr, len(keywords))
	for i, kw := range keywords {
		alts[i] = peg.S(kw)
	}
	b.keyword = peg.Seq(peg.Choice(alts...), peg.Not(peg.IdentOther))

	g.Define("name",
		peg.Not(b.keyword),
		peg.IdentFirst, peg.Star(peg.IdentOther),
	)

	// Short string escapes. Once the backslash is consumed the escape must
	// be well formed; a stray backslash is a hard error, not a backtrack.
	singleEscape := peg.One("abfnrtv\\\"'0\n")
	hexByte := peg.IfMust(peg.One("x"), peg.XDigit, peg.XDigit)
	decByte := peg.IfMust(peg.Digit, peg.RepMax(2, peg.Digit))
	uniChar := peg.IfMust(peg.One("u"), peg.One("{"), peg.Plus(peg.XDigit), peg.One("}"))
	skipSpace := peg.Seq(peg.One("z"), peg.Star(peg.Space))
	escaped := peg.IfMust(peg.One("\\"),
		peg.Choice(hexByte, decByte, uniChar, singleEscape, skipSpace))
	regular := peg.NotOne("\r\n")
	character := peg.Choice(escaped, regular)

	shortString := func(q string) peg.Expr {
		return peg.IfMust(peg.One(q), peg.Until(peg.One(q), character))
	}

	g.Define("literal_string", peg.Choice(
		shortString(`"`),
		shortString(`'`),
		longString,
	))

	// Numerals. The decimal and hexadecimal forms share one shape with
	// different digit classes and exponent markers; the hexadecimal form
	// commits after its "0x" prefix.
	exponent := func(markers string) peg.Expr {
		return peg.Opt(peg.IfMust(peg.One(markers), peg.Opt(peg.One("+-")), peg.Plus(peg.Digit)))
	}
	mantissa := func(digit peg.Expr, markers string) peg.Expr {
		withInt := peg.Seq(
			peg.Plus(digit),
			peg.Opt(peg.One("."), peg.Star(digit)),
			exponent(markers),
		)
		fractionOnly := peg.Seq(
			peg.IfMust(peg.One("."), peg.Plus(digit)),
			exponent(markers),
		)
		return peg.Choice(withInt, fractionOnly)
	}

	g.Define("numeral", peg.Choice(
		peg.IfMust(peg.IS("0x"), mantissa(peg.XDigit, "pP")),
		mantissa(peg.Digit, "eE"),
	))
}
