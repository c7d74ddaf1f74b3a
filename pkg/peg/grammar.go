package peg

import "errors"

// Grammar is a set of named rules with a designated root. Rules may refer
// to each other (including recursively) through Ref nodes, which are
// resolved when the grammar is linked.
type Grammar struct {
	rules  map[string]Expr
	order  []string
	root   string
	refs   []*ref
	linked bool
	errs   []error
}

// NewGrammar creates an empty grammar.
func NewGrammar() *Grammar {
	return &Grammar{rules: make(map[string]Expr)}
}

// Define registers a named rule. Multiple items form a sequence.
func (g *Grammar) Define(name string, items ...Expr) {
	if _, ok := g.rules[name]; ok {
		g.errs = append(g.errs, &GrammarError{Rule: name, Message: "redefined"})
		return
	}
	g.rules[name] = Seq(items...)
	g.order = append(g.order, name)
	g.linked = false
}

// Ref returns a reference to a named rule, resolved at link time. A Ref to
// a rule that is never defined is a link error, not a panic.
func (g *Grammar) Ref(name string) Expr {
	r := &ref{name: name}
	g.refs = append(g.refs, r)
	return r
}

// Root sets the start rule.
func (g *Grammar) Root(name string) {
	g.root = name
	g.linked = false
}

type ref struct {
	name   string
	target Expr
}

func (r *ref) parse(s *State) bool {
	s.ruleStack = append(s.ruleStack, r.name)
	ok := r.target.parse(s)
	s.ruleStack = s.ruleStack[:len(s.ruleStack)-1]
	return ok
}

func (r *ref) children() []Expr { return nil }

// link resolves every Ref to its rule body and validates the basics:
// all referenced rules exist and a root is set.
func (g *Grammar) link() error {
	if g.linked {
		return errors.Join(g.errs...)
	}

	errs := g.errs
	if g.root == "" {
		errs = append(errs, &GrammarError{Message: "no root rule set"})
	} else if _, ok := g.rules[g.root]; !ok {
		errs = append(errs, &GrammarError{Rule: g.root, Message: "root rule not defined"})
	}

	for _, r := range g.refs {
		body, ok := g.rules[r.name]
		if !ok {
			errs = append(errs, &GrammarError{Rule: r.name, Message: "referenced but not defined"})
			continue
		}
		r.target = body
	}

	g.errs = errs
	g.linked = true
	return errors.Join(errs...)
}

// Parse matches the root rule against the state's input. On mismatch it
// returns a *ParseError carrying the furthest failure position; on a
// structurally broken grammar it returns the link error.
func (g *Grammar) Parse(s *State) error {
	if err := g.link(); err != nil {
		return err
	}

	root := &ref{name: g.root, target: g.rules[g.root]}
	ok := root.parse(s)
	if s.err != nil {
		return s.err
	}
	if !ok {
		pos, rule := s.errorPos()
		return &ParseError{
			Source:  s.src.Name(),
			Pos:     pos,
			Rule:    rule,
			Message: "syntax error",
		}
	}
	return nil
}
