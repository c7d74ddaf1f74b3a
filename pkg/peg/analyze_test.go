package peg_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/picofix/pkg/peg"
)

func TestAnalyzeValidGrammar(t *testing.T) {
	t.Parallel()

	g := peg.NewGrammar()
	g.Define("root", g.Ref("list"), peg.EOF())
	g.Define("list", g.Ref("item"), peg.Star(peg.S(","), g.Ref("item")))
	g.Define("item", peg.Plus(peg.Digit))
	g.Root("root")

	assert.NoError(t, g.Analyze())
}

func TestAnalyzeMissingRule(t *testing.T) {
	t.Parallel()

	g := peg.NewGrammar()
	g.Define("root", g.Ref("ghost"), peg.EOF())
	g.Root("root")

	err := g.Analyze()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ghost")
	assert.Contains(t, err.Error(), "not defined")
}

func TestAnalyzeUnreachableRule(t *testing.T) {
	t.Parallel()

	g := peg.NewGrammar()
	g.Define("root", peg.S("a"), peg.EOF())
	g.Define("orphan", peg.S("b"))
	g.Root("root")

	err := g.Analyze()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "orphan")
	assert.Contains(t, err.Error(), "unreachable")
}

func TestAnalyzeEmptyRepetition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		build func(g *peg.Grammar)
	}{
		{
			name: "star of optional",
			build: func(g *peg.Grammar) {
				g.Define("root", peg.Star(peg.Opt(peg.S("a"))), peg.EOF())
			},
		},
		{
			name: "plus of star",
			build: func(g *peg.Grammar) {
				g.Define("root", peg.Plus(peg.Star(peg.S("a"))), peg.EOF())
			},
		},
		{
			name: "star of nullable rule",
			build: func(g *peg.Grammar) {
				g.Define("maybe", peg.Opt(peg.S("x")))
				g.Define("root", peg.Star(g.Ref("maybe")), peg.EOF())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			g := peg.NewGrammar()
			tt.build(g)
			g.Root("root")

			err := g.Analyze()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "empty")
		})
	}
}

func TestAnalyzeLeftRecursion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		build func(g *peg.Grammar)
	}{
		{
			name: "direct",
			build: func(g *peg.Grammar) {
				g.Define("root", g.Ref("expr"), peg.EOF())
				g.Define("expr", peg.Choice(
					peg.Seq(g.Ref("expr"), peg.S("+"), peg.S("1")),
					peg.S("1"),
				))
			},
		},
		{
			name: "indirect",
			build: func(g *peg.Grammar) {
				g.Define("root", g.Ref("a"), peg.EOF())
				g.Define("a", g.Ref("b"), peg.S("x"))
				g.Define("b", peg.Opt(peg.S("y")), g.Ref("a"))
			},
		},
		{
			name: "through nullable prefix",
			build: func(g *peg.Grammar) {
				g.Define("root", g.Ref("expr"), peg.EOF())
				g.Define("expr", peg.Star(peg.S(" ")), g.Ref("expr"), peg.S("z"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			g := peg.NewGrammar()
			tt.build(g)
			g.Root("root")

			err := g.Analyze()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "left recursion")
		})
	}
}

func TestAnalyzeRecursionAfterConsumptionIsLegal(t *testing.T) {
	t.Parallel()

	// Nested expressions are fine: the recursive call always follows a
	// consumed opening token.
	g := peg.NewGrammar()
	g.Define("root", g.Ref("expr"), peg.EOF())
	g.Define("expr", peg.Choice(
		peg.Seq(peg.S("("), g.Ref("expr"), peg.S(")")),
		peg.Plus(peg.Digit),
	))
	g.Root("root")

	assert.NoError(t, g.Analyze())
}

func TestAnalyzeRedefinedRule(t *testing.T) {
	t.Parallel()

	g := peg.NewGrammar()
	g.Define("root", peg.S("a"), peg.EOF())
	g.Define("root", peg.S("b"), peg.EOF())
	g.Root("root")

	err := g.Analyze()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redefined")
}

func TestAnalyzeNoRoot(t *testing.T) {
	t.Parallel()

	g := peg.NewGrammar()
	g.Define("rule", peg.S("a"))

	err := g.Analyze()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "root")
}
