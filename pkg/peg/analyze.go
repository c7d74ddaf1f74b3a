package peg

import "errors"

// Analyze validates the grammar's structure before any input is parsed.
// It detects:
//
//   - references to undefined rules,
//   - rules unreachable from the root,
//   - repetitions whose body can match the empty string (infinite loop),
//   - recursion reachable without consuming input (left recursion).
//
// A failure here is a defect in the grammar, not in any input; callers
// treat it as fatal and process no input at all.
func (g *Grammar) Analyze() error {
	if err := g.link(); err != nil {
		return err
	}

	var errs []error

	nullable := g.computeNullable()

	errs = append(errs, g.checkReachability()...)
	errs = append(errs, g.checkRepetition(nullable)...)
	errs = append(errs, g.checkLeftRecursion(nullable)...)

	return errors.Join(errs...)
}

// walk visits e and all descendants. Rule references are boundaries: their
// targets are walked as separate rules.
func walk(e Expr, fn func(Expr)) {
	fn(e)
	for _, c := range e.children() {
		walk(c, fn)
	}
}

// refNames collects the names of all rules referenced within e.
func refNames(e Expr, out map[string]bool) {
	walk(e, func(n Expr) {
		if r, ok := n.(*ref); ok {
			out[r.name] = true
		}
	})
}

func (g *Grammar) checkReachability() []error {
	reached := map[string]bool{g.root: true}
	frontier := []string{g.root}
	for len(frontier) > 0 {
		name := frontier[0]
		frontier = frontier[1:]
		refs := make(map[string]bool)
		refNames(g.rules[name], refs)
		for r := range refs {
			if !reached[r] {
				reached[r] = true
				frontier = append(frontier, r)
			}
		}
	}

	var errs []error
	for _, name := range g.order {
		if !reached[name] {
			errs = append(errs, &GrammarError{Rule: name, Message: "unreachable from root"})
		}
	}
	return errs
}

// computeNullable runs a fixpoint over the rule set determining which rules
// can succeed without consuming input.
func (g *Grammar) computeNullable() map[string]bool {
	nullable := make(map[string]bool, len(g.rules))
	for changed := true; changed; {
		changed = false
		for name, body := range g.rules {
			if !nullable[name] && exprNullable(body, nullable) {
				nullable[name] = true
				changed = true
			}
		}
	}
	return nullable
}

func exprNullable(e Expr, nullable map[string]bool) bool {
	switch n := e.(type) {
	case *lit:
		return len(n.s) == 0
	case *oneOf, *class, anyByte, *rawString:
		return false
	case eofExpr, *notAt, *at:
		return true
	case *seq:
		for _, it := range n.items {
			if !exprNullable(it, nullable) {
				return false
			}
		}
		return true
	case *choice:
		for _, it := range n.items {
			if exprNullable(it, nullable) {
				return true
			}
		}
		return false
	case *star, *opt, *repMax:
		return true
	case *plus:
		return exprNullable(n.item, nullable)
	case *until:
		return exprNullable(n.cond, nullable)
	case *must:
		for _, it := range n.items {
			if !exprNullable(it, nullable) {
				return false
			}
		}
		return true
	case *action:
		return exprNullable(n.item, nullable)
	case *ref:
		return nullable[n.name]
	default:
		return false
	}
}

// checkRepetition flags repetitions whose repeated body can match empty:
// the engine would make no progress and loop forever.
func (g *Grammar) checkRepetition(nullable map[string]bool) []error {
	var errs []error
	for _, name := range g.order {
		walk(g.rules[name], func(e Expr) {
			switch n := e.(type) {
			case *star:
				if exprNullable(n.item, nullable) {
					errs = append(errs, &GrammarError{Rule: name, Message: "star body can match empty input"})
				}
			case *plus:
				if exprNullable(n.item, nullable) {
					errs = append(errs, &GrammarError{Rule: name, Message: "plus body can match empty input"})
				}
			case *until:
				if exprNullable(n.body, nullable) {
					errs = append(errs, &GrammarError{Rule: name, Message: "until body can match empty input"})
				}
			}
		})
	}
	return errs
}

// leftRefs collects rules reachable from e before any guaranteed
// consumption and reports whether e itself always consumes on success.
func leftRefs(e Expr, nullable map[string]bool, out map[string]bool) bool {
	switch n := e.(type) {
	case *lit:
		return len(n.s) > 0
	case *oneOf, *class, anyByte, *rawString:
		return true
	case eofExpr:
		return false
	case *seq:
		for _, it := range n.items {
			if leftRefs(it, nullable, out) {
				return true
			}
		}
		return false
	case *must:
		for _, it := range n.items {
			if leftRefs(it, nullable, out) {
				return true
			}
		}
		return false
	case *choice:
		all := true
		for _, it := range n.items {
			if !leftRefs(it, nullable, out) {
				all = false
			}
		}
		return all
	case *star, *opt, *repMax:
		leftRefs(repBody(n), nullable, out)
		return false
	case *plus:
		return leftRefs(n.item, nullable, out)
	case *until:
		leftRefs(n.cond, nullable, out)
		leftRefs(n.body, nullable, out)
		return false
	case *notAt:
		leftRefs(n.item, nullable, out)
		return false
	case *at:
		leftRefs(n.item, nullable, out)
		return false
	case *action:
		return leftRefs(n.item, nullable, out)
	case *ref:
		out[n.name] = true
		return !nullable[n.name]
	default:
		return false
	}
}

func repBody(e Expr) Expr {
	switch n := e.(type) {
	case *star:
		return n.item
	case *opt:
		return n.item
	case *repMax:
		return n.item
	default:
		return e
	}
}

// checkLeftRecursion detects cycles in the "callable before consuming"
// graph between rules.
func (g *Grammar) checkLeftRecursion(nullable map[string]bool) []error {
	leftGraph := make(map[string][]string, len(g.rules))
	for name, body := range g.rules {
		refs := make(map[string]bool)
		leftRefs(body, nullable, refs)
		for r := range refs {
			leftGraph[name] = append(leftGraph[name], r)
		}
	}

	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(g.rules))
	var errs []error

	var visit func(name string)
	visit = func(name string) {
		color[name] = gray
		for _, next := range leftGraph[name] {
			switch color[next] {
			case white:
				visit(next)
			case gray:
				errs = append(errs, &GrammarError{Rule: next, Message: "left recursion: rule can invoke itself before consuming input"})
			}
		}
		color[name] = black
	}

	for _, name := range g.order {
		if color[name] == white {
			visit(name)
		}
	}
	return errs
}
