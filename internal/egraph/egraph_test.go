package egraph

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"glenside/internal/ir"
	"glenside/internal/shape"
	"glenside/internal/sym"
)

func newTestGraph(t *testing.T, shapes map[string][]int64) (*EGraph, *sym.Table, map[string]sym.Symbol) {
	t.Helper()
	tbl := sym.NewTable()
	env := shape.NewEnv()
	names := make(map[string]sym.Symbol, len(shapes))
	for name, dims := range shapes {
		s := tbl.Intern(name)
		env.Declare(s, dims, shape.F32)
		names[name] = s
	}
	return New(tbl, env), tbl, names
}

func TestAddHashConsesIdenticalTerms(t *testing.T) {
	g, _, names := newTestGraph(t, map[string][]int64{"A": {4, 16}})
	a1, err := g.Add(ir.Access(ir.Tensor(names["A"]), 1))
	assert.NoError(t, err)
	a2, err := g.Add(ir.Access(ir.Tensor(names["A"]), 1))
	assert.NoError(t, err)
	assert.Equal(t, a1, a2)
	assert.Len(t, g.Classes(), 3) // tensor leaf + axis literal + access node
}

func TestAddRejectsBadAccessAxis(t *testing.T) {
	g, _, names := newTestGraph(t, map[string][]int64{"A": {4, 16}})
	_, err := g.Add(ir.Access(ir.Tensor(names["A"]), 9))
	assert.Error(t, err)
}

func TestAddAssignsShapeAnalysis(t *testing.T) {
	g, _, names := newTestGraph(t, map[string][]int64{"A": {4, 16}})
	id, err := g.Add(ir.Access(ir.Tensor(names["A"]), 1))
	assert.NoError(t, err)
	val := g.AnalysisOf(id)
	assert.Equal(t, []int64{4, 16}, val.Type.Dims)
	assert.Equal(t, 1, val.Type.AccessAxis)
}

func TestUnionMergesClassesAndDedupsHashcons(t *testing.T) {
	g, _, names := newTestGraph(t, map[string][]int64{"A": {4, 16}, "B": {4, 16}})
	a, err := g.Add(ir.Access(ir.Tensor(names["A"]), 1))
	assert.NoError(t, err)
	b, err := g.Add(ir.Access(ir.Tensor(names["B"]), 1))
	assert.NoError(t, err)

	tensorA, _ := g.Add(ir.Tensor(names["A"]))
	tensorB, _ := g.Add(ir.Tensor(names["B"]))
	g.Union(tensorA, tensorB)

	root, changed := g.Union(a, b)
	assert.True(t, changed)
	assert.NoError(t, g.Rebuild())
	assert.Equal(t, g.Find(a), g.Find(b))
	assert.Equal(t, g.Find(root), g.Find(a))
}

func TestRebuildPropagatesCongruence(t *testing.T) {
	// access(A, 1) and access(B, 1) are distinct e-nodes; unioning the
	// two tensor leaves should, after Rebuild, make the two access nodes
	// congruent and merge their classes even though Union was never
	// called on the access nodes directly.
	g, _, names := newTestGraph(t, map[string][]int64{"A": {4, 16}, "B": {4, 16}})
	accessA, err := g.Add(ir.Access(ir.Tensor(names["A"]), 1))
	assert.NoError(t, err)
	accessB, err := g.Add(ir.Access(ir.Tensor(names["B"]), 1))
	assert.NoError(t, err)
	assert.NotEqual(t, g.Find(accessA), g.Find(accessB))

	tensorA, _ := g.Add(ir.Tensor(names["A"]))
	tensorB, _ := g.Add(ir.Tensor(names["B"]))
	g.Union(tensorA, tensorB)
	assert.NoError(t, g.Rebuild())

	assert.Equal(t, g.Find(accessA), g.Find(accessB))
}

func TestUnionConflictingShapesFoldsToNotAType(t *testing.T) {
	g, _, names := newTestGraph(t, map[string][]int64{"A": {4, 16}, "B": {8, 32}})
	a, _ := g.Add(ir.Tensor(names["A"]))
	b, _ := g.Add(ir.Tensor(names["B"]))
	root, _ := g.Union(a, b)
	assert.NoError(t, g.Rebuild())
	assert.Equal(t, shape.NotAType, g.AnalysisOf(root).Type.Kind)
}
