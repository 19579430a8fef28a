package pattern

import (
	"glenside/internal/egraph"
	"glenside/internal/ir"
)

// Rule is a conditional rewrite rule (spec §4.E). LHS is compiled once
// and matched against every e-class; Guard (optional — nil means
// "always fires") filters the raw substitutions before Applier runs;
// Applier builds the right-hand side out of bound e-classes and returns
// its e-class id, which the caller unions with the class LHS matched
// against.
type Rule struct {
	Name    string
	LHS     *Program
	Guard   func(Subst, *egraph.EGraph) bool
	Applier func(Subst, *egraph.EGraph) (ir.EClassId, error)
}

// NewRule compiles lhs and wraps it with the given guard and applier.
func NewRule(name string, lhs Pattern, guard func(Subst, *egraph.EGraph) bool, applier func(Subst, *egraph.EGraph) (ir.EClassId, error)) Rule {
	return Rule{Name: name, LHS: Compile(lhs), Guard: guard, Applier: applier}
}

// Match is a thin wrapper applying the rule's guard after its pattern
// match, so callers only ever see substitutions the rule actually fires
// on.
func (r Rule) Match(g *egraph.EGraph, root ir.EClassId) []Subst {
	raw := r.LHS.Match(g, root)
	if r.Guard == nil {
		return raw
	}
	kept := raw[:0]
	for _, s := range raw {
		if r.Guard(s, g) {
			kept = append(kept, s)
		}
	}
	return kept
}

// MatchAll runs Match across every e-class in g, guard included.
func (r Rule) MatchAll(g *egraph.EGraph) map[ir.EClassId][]Subst {
	raw := r.LHS.MatchAll(g)
	if r.Guard == nil {
		return raw
	}
	out := make(map[ir.EClassId][]Subst, len(raw))
	for class, substs := range raw {
		kept := substs[:0]
		for _, s := range substs {
			if r.Guard(s, g) {
				kept = append(kept, s)
			}
		}
		if len(kept) > 0 {
			out[class] = kept
		}
	}
	return out
}
