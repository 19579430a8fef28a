// Package extract picks the cheapest well-typed term an e-graph can
// represent for a given root e-class (spec §4.H "Extraction").
package extract

import "glenside/internal/ir"

// Cost assigns a scalar cost to an e-node given its head and its
// children's already-computed costs. Implementations must be
// non-negative and monotone: increasing any element of childCosts must
// not decrease the result (spec §4.H "Cost: cost(head, child_costs) ->
// c, non-negative, monotone in child costs").
type Cost interface {
	NodeCost(head ir.Head, childCosts []float64) float64
}

// DefaultCost assigns a small positive weight per operator-head family,
// heavier for compute-ish nodes than for pure access-pattern bookkeeping,
// with a multiplicative discount on systolic-array nodes.
//
// This resolves spec's Open Question (i): without some bias, an
// accelerator-lowered dot-product (systolic-array) and its unlowered
// compute-op equivalent would cost about the same once their operand
// subtrees are counted, so the extractor would have no reason to prefer
// the lowered form a rewrite rule worked to make available. Discounting
// systolic-array's own weight (not its children's cost, which would
// violate monotonicity) makes the lowered form strictly cheaper whenever
// both are present in the same e-class, without needing a separate
// "prefer lowered forms" extraction pass.
type DefaultCost struct {
	// SystolicArrayDiscount multiplies systolic-array's own weight; must
	// be in (0, 1]. Zero is treated as 1 (no discount) so the cost
	// function stays strictly positive.
	SystolicArrayDiscount float64
}

// NewDefaultCost returns a DefaultCost with a modest accelerator bias.
func NewDefaultCost() DefaultCost {
	return DefaultCost{SystolicArrayDiscount: 0.25}
}

func (c DefaultCost) weight(h ir.Head) float64 {
	switch h.Kind {
	case ir.KindNum, ir.KindTensor, ir.KindShape, ir.KindList, ir.KindAccess,
		ir.KindGetAccessShape, ir.KindConstructTuple, ir.KindTupleGetItem:
		return 1
	case ir.KindAccessTranspose, ir.KindAccessReshape, ir.KindAccessFlatten,
		ir.KindAccessSlice, ir.KindAccessBroadcast, ir.KindAccessInsertAxis,
		ir.KindAccessSqueeze, ir.KindAccessPad:
		return 2
	case ir.KindAccessConcatenate, ir.KindAccessWindows, ir.KindAccessCartesianProduct:
		return 3
	case ir.KindCompute:
		return 5
	case ir.KindSystolicArray:
		discount := c.SystolicArrayDiscount
		if discount <= 0 {
			discount = 1
		}
		return 5 * discount
	default:
		return 1
	}
}

// NodeCost sums the node's own weight with its children's costs.
func (c DefaultCost) NodeCost(h ir.Head, childCosts []float64) float64 {
	total := c.weight(h)
	for _, cc := range childCosts {
		total += cc
	}
	return total
}
