package lua

import (
	"github.com/yaklabco/picofix/pkg/fix"
	"github.com/yaklabco/picofix/pkg/peg"
)

// leftAssoc matches operand (op operand)*, committing after each operator.
func (b *builder) leftAssoc(operand, operators peg.Expr) peg.Expr {
	return peg.Seq(operand, b.seps,
		peg.Star(peg.IfMust(operators, b.seps, operand, b.seps)))
}

// buildExpressions defines the precedence ladder, lowest binding last. The
// tiers, loosest to tightest: or, and, comparison, |, ~ (binary), &, shift,
// .. (right-assoc), additive, multiplicative, unary, ^ (right-assoc, binds
// looser than a fresh unary on its right), then atoms.
//
// Variable and call chains are the one place the reference grammar is left
// recursive; here they are head/tail rules instead. A chain is a head (name
// or parenthesized expression) followed by tail links, where a call tail is
// an argument list or ":name(args)" and a variable tail is ".name" or
// "[expr]". The "variable" rule requires the chain to end on a variable
// tail, "function_call" requires at least one trailing call tail, and the
// expression-level "prefix_chain" accepts any mix.
func (b *builder) buildExpressions() {
	g := b.g
	seps := b.seps

	b.threeDots = peg.S("...")

	b.exprListMust = b.listMust(b.expression, peg.One(","))

	b.bracketExpr = peg.IfMust(peg.One("("), seps, b.expression, seps, peg.One(")"))

	// Table constructors. A "name =" prefix commits to a keyed field, so
	// the positional-field alternative is only tried for other shapes.
	tableFieldOne := peg.IfMust(peg.One("["),
		seps, b.expression, seps, peg.One("]"),
		seps, peg.One("="), seps, b.expression)
	tableFieldTwo := peg.IfMust(
		peg.Seq(b.name, seps, peg.One("=")),
		seps, b.expression)
	tableField := peg.Choice(tableFieldOne, tableFieldTwo, b.expression)
	tableFieldList := b.listTail(tableField, peg.One(",;"))
	g.Define("table_constructor", peg.IfMust(peg.One("{"),
		b.padOpt(tableFieldList), peg.One("}")))

	// Function bodies and literals.
	nameList := b.list(b.name, peg.One(","))
	parameterList := peg.Choice(
		b.threeDots,
		peg.Seq(nameList, peg.Opt(peg.IfMust(b.pad(peg.One(",")), b.threeDots))),
	)
	g.Define("function_body",
		peg.One("("), b.padOpt(parameterList), peg.One(")"),
		seps, b.statementList(b.key("end")),
	)
	functionLiteral := peg.IfMust(b.key("function"), seps, g.Ref("function_body"))

	// Chain tails.
	functionArgsOne := peg.IfMust(peg.One("("),
		b.padOpt(b.exprListMust), peg.One(")"))
	b.functionArgs = peg.Choice(functionArgsOne,
		g.Ref("table_constructor"), g.Ref("literal_string"))

	variableTailOne := peg.IfMust(peg.One("["), seps, b.expression, seps, peg.One("]"))
	variableTailTwo := peg.IfMust(
		peg.Seq(peg.Not(peg.S("..")), peg.One(".")),
		seps, b.name)
	b.variableTail = peg.Choice(variableTailOne, variableTailTwo)

	functionCallTailOne := peg.IfMust(
		peg.Seq(peg.Not(peg.S("::")), peg.One(":")),
		seps, b.name, seps, b.functionArgs)
	b.functionCallTail = peg.Choice(b.functionArgs, functionCallTailOne)

	// Chains with a constrained final link, used in statement position.
	variableHead := peg.Choice(b.name, peg.Seq(b.bracketExpr, seps, b.variableTail))
	g.Define("variable", variableHead,
		peg.Star(peg.Star(seps, b.functionCallTail), seps, b.variableTail))

	functionCallHead := peg.Choice(b.name, b.bracketExpr)
	g.Define("function_call", functionCallHead,
		peg.Plus(peg.Until(peg.Seq(seps, b.functionCallTail), seps, b.variableTail)))

	// Unconstrained chain, used in expression position.
	g.Define("prefix_chain",
		peg.Choice(b.bracketExpr, b.name),
		peg.Star(seps, peg.Choice(b.functionCallTail, b.variableTail)),
	)

	atom := peg.Choice(
		b.key("nil"),
		b.key("true"),
		b.key("false"),
		b.threeDots,
		g.Ref("numeral"),
		g.Ref("literal_string"),
		functionLiteral,
		g.Ref("prefix_chain"),
		g.Ref("table_constructor"),
	)

	// ^ binds tighter than unary on its left but looser than unary on its
	// right: -a^b is -(a^b) and a^-b is a^(-b).
	powExpr := peg.Seq(atom, seps,
		peg.Opt(peg.One("^"), seps, g.Ref("unary_expression"), seps))
	unaryOperators := peg.Choice(
		peg.One("-"),
		peg.One("#"),
		opOne("~", "="),
		b.key("not"),
	)
	unaryApply := peg.IfMust(unaryOperators, seps, g.Ref("unary_expression"), seps)
	g.Define("unary_expression", peg.Choice(unaryApply, powExpr))

	operatorsMul := peg.Choice(peg.S("//"), peg.One("/"), peg.One("*"), peg.One("%"))
	mulExpr := b.leftAssoc(g.Ref("unary_expression"), operatorsMul)
	addExpr := b.leftAssoc(mulExpr, peg.One("+-"))

	// Concatenation is right associative, expressed by direct recursion
	// after the consumed operator.
	g.Define("concat_expression", addExpr, seps,
		peg.Opt(peg.IfMust(opTwo("..", "."), seps, g.Ref("concat_expression"))))

	shiftExpr := b.leftAssoc(g.Ref("concat_expression"),
		peg.Choice(peg.S("<<"), peg.S(">>")))
	bandExpr := b.leftAssoc(shiftExpr, peg.One("&"))
	bxorExpr := b.leftAssoc(bandExpr, opOne("~", "="))
	borExpr := b.leftAssoc(bxorExpr, peg.One("|"))

	comparisonOps := []peg.Expr{
		peg.S("=="),
		peg.S("<="),
		peg.S(">="),
		opOne("<", "<"),
		opOne(">", ">"),
	}
	if b.opts.Pico8 {
		comparisonOps = append(comparisonOps,
			peg.Act(peg.S("!="), b.record(fix.KindNotEqual)))
	}
	comparisonOps = append(comparisonOps, peg.S("~="))
	cmpExpr := b.leftAssoc(borExpr, peg.Choice(comparisonOps...))

	andExpr := b.leftAssoc(cmpExpr, b.key("and"))
	g.Define("expression", b.leftAssoc(andExpr, b.key("or")))
}
