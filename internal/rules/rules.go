// Package rules is glenside's rewrite rule library (spec §4.E component
// J): the concrete Pattern/Applier pairs a saturate.Runner saturates an
// e-graph with. Every rule here is built with pattern.NewRule over the
// matcher in internal/pattern and the e-graph in internal/egraph; none
// of them know about either package's internals beyond that public
// surface.
package rules

import (
	"fmt"

	"glenside/internal/egraph"
	"glenside/internal/ir"
	"glenside/internal/pattern"
	"glenside/internal/shape"
)

// Default returns the rule library's standard set: commutativity of the
// elementwise ops, distributivity of the pointwise unary ops through
// access-transpose and access-reshape, the systolic-array lowering
// rule, and one tiling rule. tileSize parameterizes the tiling rule's
// fixed block size (spec's worked example uses 16).
func Default(tileSize int) []pattern.Rule {
	rules := []pattern.Rule{
		DoubleNegativeElimination(),
		CommuteElementwise(ir.ElementwiseAdd),
		CommuteElementwise(ir.ElementwiseMul),
		LowerDotProductToSystolicArray(),
		TileLastAxisViaWindows(tileSize),
	}
	for _, op := range []ir.ComputeOp{ir.Negative, ir.Relu, ir.Sqrt} {
		rules = append(rules, DistributeThroughTranspose(op), DistributeThroughReshape(op))
	}
	return rules
}

// DoubleNegativeElimination: negative(negative(x)) = x. The one rule
// whose correctness needs no guard at all — it holds for every operand
// shape and dtype.
func DoubleNegativeElimination() pattern.Rule {
	x := pattern.PVar("x")
	lhs := pattern.PNode(ir.Head{Kind: ir.KindCompute, Op: ir.Negative},
		pattern.PNode(ir.Head{Kind: ir.KindCompute, Op: ir.Negative}, x))
	return pattern.NewRule("double-negative-elimination", lhs, nil,
		func(s pattern.Subst, g *egraph.EGraph) (ir.EClassId, error) {
			return s["x"], nil
		})
}

// CommuteElementwise: compute(op, cartesian-product(a, b)) =
// compute(op, cartesian-product(b, a)), for op in
// {elementwise-add, elementwise-mul, elementwise-div is intentionally
// excluded since division is not commutative}.
//
// This rule is deliberately unguarded: spec §4.E asks for commutativity
// "limited to prevent term explosion", and that limiting is the
// saturate.Runner's job (match_limit + backoff), not the rule's — see
// spec §8 property (f), which exercises exactly this rule to demonstrate
// backoff kicking in.
func CommuteElementwise(op ir.ComputeOp) pattern.Rule {
	a, b := pattern.PVar("a"), pattern.PVar("b")
	cp := pattern.PNode(ir.Head{Kind: ir.KindAccessCartesianProduct}, a, b)
	lhs := pattern.PNode(ir.Head{Kind: ir.KindCompute, Op: op}, cp)
	name := fmt.Sprintf("commute-%s", op)
	return pattern.NewRule(name, lhs, nil,
		func(s pattern.Subst, g *egraph.EGraph) (ir.EClassId, error) {
			swapped, err := g.AddNode(ir.Head{Kind: ir.KindAccessCartesianProduct}, []ir.EClassId{s["b"], s["a"]})
			if err != nil {
				return 0, err
			}
			return g.AddNode(ir.Head{Kind: ir.KindCompute, Op: op}, []ir.EClassId{swapped})
		})
}

// DistributeThroughTranspose: compute(op, access-transpose(x, p)) =
// access-transpose(compute(op, x), p), for a pointwise unary op (one
// whose result at each position depends only on the input at that same
// position). Valid only for Negative/Relu/Sqrt — not for Softmax, which
// mixes values across the reduced axis, so callers must not pass it one.
func DistributeThroughTranspose(op ir.ComputeOp) pattern.Rule {
	x, p := pattern.PVar("x"), pattern.PVar("p")
	lhs := pattern.PNode(ir.Head{Kind: ir.KindCompute, Op: op},
		pattern.PNode(ir.Head{Kind: ir.KindAccessTranspose}, x, p))
	name := fmt.Sprintf("distribute-%s-through-transpose", op)
	return pattern.NewRule(name, lhs, nil,
		func(s pattern.Subst, g *egraph.EGraph) (ir.EClassId, error) {
			inner, err := g.AddNode(ir.Head{Kind: ir.KindCompute, Op: op}, []ir.EClassId{s["x"]})
			if err != nil {
				return 0, err
			}
			return g.AddNode(ir.Head{Kind: ir.KindAccessTranspose}, []ir.EClassId{inner, s["p"]})
		})
}

// DistributeThroughReshape is DistributeThroughTranspose's counterpart
// for access-reshape: reshape never reorders a row-major buffer, so a
// pointwise op commutes with it exactly the same way it does with
// transpose.
func DistributeThroughReshape(op ir.ComputeOp) pattern.Rule {
	x, shp := pattern.PVar("x"), pattern.PVar("shape")
	lhs := pattern.PNode(ir.Head{Kind: ir.KindCompute, Op: op},
		pattern.PNode(ir.Head{Kind: ir.KindAccessReshape}, x, shp))
	name := fmt.Sprintf("distribute-%s-through-reshape", op)
	return pattern.NewRule(name, lhs, nil,
		func(s pattern.Subst, g *egraph.EGraph) (ir.EClassId, error) {
			inner, err := g.AddNode(ir.Head{Kind: ir.KindCompute, Op: op}, []ir.EClassId{s["x"]})
			if err != nil {
				return 0, err
			}
			return g.AddNode(ir.Head{Kind: ir.KindAccessReshape}, []ir.EClassId{inner, s["shape"]})
		})
}

// LowerDotProductToSystolicArray implements spec §4.E's key lowering
// rule: a dot-product over an access-cartesian-product whose left
// operand's last item dim equals the right operand's penultimate
// (batch-free) item dims [R, C] becomes systolic-array R C applied to
// the same two operands directly.
func LowerDotProductToSystolicArray() pattern.Rule {
	act, w := pattern.PVar("act"), pattern.PVar("w")
	cp := pattern.PNode(ir.Head{Kind: ir.KindAccessCartesianProduct}, act, w)
	lhs := pattern.PNode(ir.Head{Kind: ir.KindCompute, Op: ir.DotProduct}, cp)

	guard := func(s pattern.Subst, g *egraph.EGraph) bool {
		_, ok := systolicDims(s, g)
		return ok
	}
	applier := func(s pattern.Subst, g *egraph.EGraph) (ir.EClassId, error) {
		dims, ok := systolicDims(s, g)
		if !ok {
			return 0, fmt.Errorf("rules: lower-dot-product-to-systolic-array: operands no longer fit the systolic shape")
		}
		return g.AddNode(ir.Head{Kind: ir.KindSystolicArray, R: dims.r, C: dims.c}, []ir.EClassId{s["act"], s["w"]})
	}
	return pattern.NewRule("lower-dot-product-to-systolic-array", lhs, guard, applier)
}

type rcDims struct{ r, c int }

func systolicDims(s pattern.Subst, g *egraph.EGraph) (rcDims, bool) {
	act := g.AnalysisOf(s["act"]).Type
	w := g.AnalysisOf(s["w"]).Type
	if act.Kind != shape.ShapeType || w.Kind != shape.ShapeType {
		return rcDims{}, false
	}
	if len(w.BatchDims()) != 0 {
		return rcDims{}, false
	}
	aItem, wItem := act.ItemDims(), w.ItemDims()
	if len(aItem) == 0 || len(wItem) != 2 {
		return rcDims{}, false
	}
	if aItem[len(aItem)-1] != wItem[0] {
		return rcDims{}, false
	}
	return rcDims{r: int(wItem[0]), c: int(wItem[1])}, true
}
