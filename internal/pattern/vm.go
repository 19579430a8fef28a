package pattern

import (
	"glenside/internal/egraph"
	"glenside/internal/ir"
)

// regs is the VM's register file for one in-progress match attempt.
type regs map[int]ir.EClassId

func cloneRegs(r regs) regs {
	out := make(regs, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Match runs prog against every e-node in root's e-class (root need not
// be canonical), returning every substitution that makes the pattern's
// root literal node match. This is the matcher's read phase: it never
// mutates g, so it is safe to run once per e-class per saturation
// iteration before any rewrite is applied (spec §4.F "search the whole
// e-graph ... then apply all matches").
func (prog *Program) Match(g *egraph.EGraph, root ir.EClassId) []Subst {
	var results []Subst
	r := regs{0: g.Find(root)}
	prog.step(g, 0, r, Subst{}, &results)
	return results
}

// MatchAll runs prog against every live e-class in g, returning the
// e-class id paired with each substitution found there.
func (prog *Program) MatchAll(g *egraph.EGraph) map[ir.EClassId][]Subst {
	out := make(map[ir.EClassId][]Subst)
	for _, class := range g.Classes() {
		if matches := prog.Match(g, class); len(matches) > 0 {
			out[class] = matches
		}
	}
	return out
}

func (prog *Program) step(g *egraph.EGraph, pc int, r regs, subst Subst, results *[]Subst) {
	if pc >= len(prog.instrs) {
		return
	}
	in := prog.instrs[pc]

	switch in.op {
	case opYield:
		*results = append(*results, cloneSubst(subst))

	case opBind:
		bound := cloneSubst(subst)
		bound[in.varName] = r[in.reg]
		prog.step(g, pc+1, r, bound, results)

	case opCompare:
		if g.Find(r[in.reg]) == g.Find(r[in.otherReg]) {
			prog.step(g, pc+1, r, subst, results)
		}

	case opMatchNode:
		class := g.Find(r[in.reg])
		for _, node := range g.NodesOf(class) {
			if node.Head != in.head || len(node.Children) != len(in.childRegs) {
				continue
			}
			next := cloneRegs(r)
			for i, childReg := range in.childRegs {
				next[childReg] = g.Find(node.Children[i])
			}
			prog.step(g, pc+1, next, subst, results)
		}
	}
}
