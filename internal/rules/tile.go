package rules

import (
	"fmt"

	"glenside/internal/egraph"
	"glenside/internal/ir"
	"glenside/internal/pattern"
	"glenside/internal/shape"
)

// TileLastAxisViaWindows implements spec §4.E's tiling/blocking rule
// family: access-windows is used to cut a rank-2, whole-matrix access
// term's trailing axis into tileSize-wide blocks, re-expressed as a
// batch of sub-accesses of the original dtype and dims. This is the
// rule that "first introduces access-windows ... to expose the needed
// shape" for a later lowering (e.g. to systolic-array) to match against,
// rather than a rewrite that is itself a lowering.
//
// It only fires on "access(x, 0)" where x has rank 2 and its trailing
// dim is divisible by tileSize — the one case that can be taken apart
// with access-windows and reassembled exactly with access-squeeze,
// access-transpose and access-reshape, all of which the reference
// interpreter in internal/interp can execute without any new primitive.
func TileLastAxisViaWindows(tileSize int) pattern.Rule {
	x := pattern.PVar("x")
	zero := pattern.PNode(ir.Head{Kind: ir.KindNum, Num: 0})
	lhs := pattern.PNode(ir.Head{Kind: ir.KindAccess}, x, zero)

	guard := func(s pattern.Subst, g *egraph.EGraph) bool {
		_, _, ok := tileDims(s, g, tileSize)
		return ok
	}
	applier := func(s pattern.Subst, g *egraph.EGraph) (ir.EClassId, error) {
		rows, k, ok := tileDims(s, g, tileSize)
		if !ok {
			return 0, fmt.Errorf("rules: tile-last-axis-via-windows: operand no longer fits the tiled shape")
		}
		return buildTiledAccess(g, s["x"], rows, k, tileSize)
	}
	return pattern.NewRule("tile-last-axis-via-windows", lhs, guard, applier)
}

// tileDims reports the [rows, k] shape of x when it is eligible for
// tiling: rank 2 and k divisible by tileSize.
func tileDims(s pattern.Subst, g *egraph.EGraph, tileSize int) (rows, k int64, ok bool) {
	t := g.AnalysisOf(s["x"]).Type
	if t.Kind != shape.ShapeType || len(t.Dims) != 2 {
		return 0, 0, false
	}
	if tileSize <= 0 || t.Dims[1]%int64(tileSize) != 0 {
		return 0, 0, false
	}
	return t.Dims[0], t.Dims[1], true
}

// buildTiledAccess rebuilds "access(x, 0)" (rows x k, access axis 0) as
// a windowed, squeezed, transposed and reshaped pipeline that ends up
// with the identical dims and access axis, but passes through an
// intermediate batch-of-tiles representation a later rule (e.g. the
// systolic-array lowering) can match against per tile.
func buildTiledAccess(g *egraph.EGraph, xID ir.EClassId, rows, k int64, tileSize int) (ir.EClassId, error) {
	zero, err := g.Add(ir.Num(0))
	if err != nil {
		return 0, err
	}
	start, err := g.AddNode(ir.Head{Kind: ir.KindAccess}, []ir.EClassId{xID, zero})
	if err != nil {
		return 0, err
	}

	windowShape, err := addDimList(g, ir.KindShape, []int64{rows, int64(tileSize)})
	if err != nil {
		return 0, err
	}
	windows, err := g.AddNode(ir.Head{Kind: ir.KindAccessWindows}, []ir.EClassId{start, windowShape, windowShape})
	if err != nil {
		return 0, err
	}

	// windows has dims [1, k/tileSize, rows, tileSize], access axis 2.
	// Squeezing away the leading size-1 count leaves [k/tileSize, rows,
	// tileSize], access axis 1: a batch of k/tileSize tiles, each rows x
	// tileSize.
	squeezed, err := g.AddNode(ir.Head{Kind: ir.KindAccessSqueeze}, []ir.EClassId{windows, zero})
	if err != nil {
		return 0, err
	}

	// Move the tile-count axis next to tileSize so the two can be merged
	// back into k: [k/tileSize, rows, tileSize] -> [rows, k/tileSize, tileSize].
	perm, err := addDimList(g, ir.KindList, []int64{1, 0, 2})
	if err != nil {
		return 0, err
	}
	transposed, err := g.AddNode(ir.Head{Kind: ir.KindAccessTranspose}, []ir.EClassId{squeezed, perm})
	if err != nil {
		return 0, err
	}

	reshapeTo, err := addDimList(g, ir.KindShape, []int64{rows, k})
	if err != nil {
		return 0, err
	}
	reshaped, err := g.AddNode(ir.Head{Kind: ir.KindAccessReshape}, []ir.EClassId{transposed, reshapeTo})
	if err != nil {
		return 0, err
	}

	return g.AddNode(ir.Head{Kind: ir.KindAccess}, []ir.EClassId{reshaped, zero})
}

// addDimList builds a "(shape d0 d1 ...)" or "(list d0 d1 ...)" e-node
// (kind must be ir.KindShape or ir.KindList) out of freshly-added
// numeric literal e-nodes, the way any rule applier constructs a
// constant argument for its rewrite's right-hand side.
func addDimList(g *egraph.EGraph, kind ir.Kind, vals []int64) (ir.EClassId, error) {
	children := make([]ir.EClassId, len(vals))
	for i, v := range vals {
		id, err := g.Add(ir.Num(v))
		if err != nil {
			return 0, err
		}
		children[i] = id
	}
	return g.AddNode(ir.Head{Kind: kind}, children)
}
