package lua

import (
	"github.com/yaklabco/picofix/pkg/fix"
	"github.com/yaklabco/picofix/pkg/peg"
)

// statementList matches statements until the terminator matches. An
// optional return statement, which must be last in a block, doubles as a
// terminator.
func (b *builder) statementList(terminator peg.Expr) peg.Expr {
	statementReturn := peg.Seq(
		b.padOpt(b.exprListMust),
		peg.Opt(peg.One(";"), b.seps),
	)
	return peg.Seq(b.seps, peg.Until(
		peg.Choice(
			terminator,
			peg.IfMust(b.key("return"), statementReturn, terminator),
		),
		b.statement, b.seps,
	))
}

func (b *builder) buildStatements() {
	g := b.g
	seps := b.seps

	labelStatement := peg.IfMust(peg.S("::"), seps, b.name, seps, peg.S("::"))
	gotoStatement := peg.IfMust(b.key("goto"), seps, b.name)

	nameListMust := b.listMust(b.name, peg.One(","))

	doStatement := peg.IfMust(b.key("do"), b.statementList(b.key("end")))
	whileStatement := peg.IfMust(b.key("while"),
		seps, b.expression, seps, b.key("do"), b.statementList(b.key("end")))
	repeatStatement := peg.IfMust(b.key("repeat"),
		b.statementList(b.key("until")), seps, b.expression)

	atElseifElseEnd := peg.Choice(
		peg.At(b.key("elseif")),
		peg.At(b.key("else")),
		peg.At(b.key("end")),
	)
	elseifStatement := peg.IfMust(b.key("elseif"),
		seps, b.expression, seps, b.key("then"),
		b.statementList(atElseifElseEnd))
	elseStatement := peg.IfMust(b.key("else"), b.statementList(b.key("end")))
	ifStatement := peg.IfMust(b.key("if"),
		seps, b.expression, seps, b.key("then"),
		b.statementList(atElseifElseEnd),
		seps, peg.Until(peg.Choice(elseStatement, b.key("end")), elseifStatement, seps))

	forStatementOne := peg.Seq(b.name,
		seps, peg.One("="), seps, b.expression,
		seps, peg.One(","), seps, b.expression,
		b.padOpt(peg.IfMust(peg.One(","), seps, b.expression)),
		b.key("do"), b.statementList(b.key("end")))
	forStatementTwo := peg.Seq(nameListMust,
		seps, b.key("in"), seps, b.exprListMust,
		seps, b.key("do"), b.statementList(b.key("end")))
	forStatement := peg.IfMust(b.key("for"),
		seps, peg.Choice(forStatementOne, forStatementTwo))

	assignmentVariableList := b.listMust(g.Ref("variable"), peg.One(","))
	assignmentsOne := peg.IfMust(peg.One("="), seps, b.exprListMust)
	assignments := peg.Seq(assignmentVariableList, seps, assignmentsOne)

	functionName := peg.Seq(
		b.list(b.name, peg.One(".")),
		seps,
		peg.Opt(peg.IfMust(peg.One(":"), seps, b.name, seps)),
	)
	functionDefinition := peg.IfMust(b.key("function"),
		seps, functionName, g.Ref("function_body"))

	localFunction := peg.IfMust(b.key("function"),
		seps, b.name, seps, g.Ref("function_body"))
	localVariables := peg.IfMust(nameListMust, seps, peg.Opt(assignmentsOne))
	localStatement := peg.IfMust(b.key("local"),
		seps, peg.Choice(localFunction, localVariables))

	alternatives := []peg.Expr{
		peg.One(";"),
		assignments,
	}
	if b.opts.Pico8 {
		operatorsReassign := peg.Choice(
			peg.S("+="), peg.S("-="), peg.S("*="), peg.S("/="), peg.S("%="),
		)
		g.Define("reassignment", peg.Act(peg.Seq(
			g.Ref("variable"), seps, operatorsReassign, seps, b.exprListMust,
		), b.record(fix.KindReassign)))
		alternatives = append(alternatives, g.Ref("reassignment"))
	}
	alternatives = append(alternatives,
		g.Ref("function_call"),
		labelStatement,
		b.key("break"),
		gotoStatement,
		doStatement,
		whileStatement,
		repeatStatement,
	)
	if b.opts.Pico8 {
		alternatives = append(alternatives, g.Ref("short_if_statement"))
		g.Define("short_if_statement", b.shortIfStatement())
	}
	alternatives = append(alternatives,
		ifStatement,
		forStatement,
		functionDefinition,
		localStatement,
	)

	g.Define("statement", peg.Choice(alternatives...))

	interpreter := peg.Seq(peg.One("#"), peg.Until(peg.Eolf()))
	g.Define("chunk", peg.Must(
		peg.Opt(interpreter),
		b.statementList(peg.EOF()),
	))
}

// shortIfStatement matches the single-line form
//
//	if (cond) body
//
// which omits "then" and "end" and runs to the end of the line. The form
// is ambiguous against an ordinary if whose parenthesized condition
// continues past the closing bracket, e.g.
//
//	if (a) or (b) then ... end
//
// so after the bracketed condition the rule refuses to match when the next
// token could continue the enclosing expression or start the "then"
// clause. Matches are reported for diagnostics only and never rewritten.
func (b *builder) shortIfStatement() peg.Expr {
	continuation := peg.Choice(
		b.key("then"),
		b.key("and"),
		b.key("or"),
		peg.One("+-*/%^=<>~!.:[({&|\"'"),
	)
	return peg.Act(peg.Seq(
		b.key("if"), b.seps, b.bracketExpr, b.seps,
		peg.Not(continuation),
		peg.Until(peg.At(peg.Choice(peg.Eolf(), b.key("end")))),
	), b.record(fix.KindShortIf))
}
