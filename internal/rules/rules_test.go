package rules

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glenside/internal/egraph"
	"glenside/internal/extract"
	"glenside/internal/ir"
	"glenside/internal/pattern"
	"glenside/internal/saturate"
	"glenside/internal/shape"
	"glenside/internal/sym"
)

func newGraph(t *testing.T, decls map[string][]int64) (*egraph.EGraph, *sym.Table) {
	t.Helper()
	tbl := sym.NewTable()
	env := shape.NewEnv()
	for name, dims := range decls {
		env.Declare(tbl.Intern(name), dims, shape.F32)
	}
	return egraph.New(tbl, env), tbl
}

func TestDoubleNegativeEliminationUnwraps(t *testing.T) {
	g, tbl := newGraph(t, map[string][]int64{"A": {2, 2}})
	a := tbl.Intern("A")
	term := ir.Compute(ir.Negative, ir.Compute(ir.Negative, ir.Access(ir.Tensor(a), 0)))
	root, err := g.Add(term)
	require.NoError(t, err)

	rule := DoubleNegativeElimination()
	matches := rule.MatchAll(g)
	substs, ok := matches[g.Find(root)]
	require.True(t, ok)
	require.Len(t, substs, 1)

	rhs, err := rule.Applier(substs[0], g)
	require.NoError(t, err)
	merged, changed := g.Union(root, rhs)
	assert.True(t, changed)
	require.NoError(t, g.Rebuild())

	plain, err := g.Add(ir.Access(ir.Tensor(a), 0))
	require.NoError(t, err)
	assert.Equal(t, g.Find(plain), g.Find(merged))
}

func TestLowerDotProductToSystolicArray(t *testing.T) {
	g, tbl := newGraph(t, map[string][]int64{"A": {4, 16}, "B": {16, 32}})
	a, b := tbl.Intern("A"), tbl.Intern("B")

	pair := ir.AccessCartesianProduct(ir.Access(ir.Tensor(a), 1), ir.Access(ir.Tensor(b), 0))
	term := ir.Compute(ir.DotProduct, pair)
	root, err := g.Add(term)
	require.NoError(t, err)

	runner := saturate.New(g, []pattern.Rule{LowerDotProductToSystolicArray()}, saturate.Config{IterLimit: 10})
	_, res := runner.Run(context.Background())
	assert.Equal(t, saturate.Saturated, res.Stop)

	ex := extract.New(g, extract.NewDefaultCost())
	best, err := ex.Extract(g.Find(root))
	require.NoError(t, err)

	assert.Equal(t, ir.KindSystolicArray, best.Head.Kind)
	assert.Equal(t, 16, best.Head.R)
	assert.Equal(t, 32, best.Head.C)
}

func TestCommuteElementwiseAddReachesSwappedForm(t *testing.T) {
	g, tbl := newGraph(t, map[string][]int64{"A": {2}, "B": {2}})
	a, b := tbl.Intern("A"), tbl.Intern("B")

	pair := ir.AccessCartesianProduct(ir.Access(ir.Tensor(a), 0), ir.Access(ir.Tensor(b), 0))
	term := ir.Compute(ir.ElementwiseAdd, pair)
	root, err := g.Add(term)
	require.NoError(t, err)

	swappedPair := ir.AccessCartesianProduct(ir.Access(ir.Tensor(b), 0), ir.Access(ir.Tensor(a), 0))
	swappedTerm := ir.Compute(ir.ElementwiseAdd, swappedPair)
	swappedRoot, err := g.Add(swappedTerm)
	require.NoError(t, err)

	runner := saturate.New(g, []pattern.Rule{CommuteElementwise(ir.ElementwiseAdd)}, saturate.Config{IterLimit: 5})
	_, res := runner.Run(context.Background())
	assert.Equal(t, saturate.Saturated, res.Stop)

	assert.Equal(t, g.Find(root), g.Find(swappedRoot))
}

func TestTileLastAxisViaWindowsPreservesShape(t *testing.T) {
	g, tbl := newGraph(t, map[string][]int64{"A": {4, 16}})
	a := tbl.Intern("A")
	term := ir.Access(ir.Tensor(a), 0)
	root, err := g.Add(term)
	require.NoError(t, err)

	rule := TileLastAxisViaWindows(4)
	matches := rule.MatchAll(g)
	substs, ok := matches[g.Find(root)]
	require.True(t, ok)
	require.NotEmpty(t, substs)

	rhs, err := rule.Applier(substs[0], g)
	require.NoError(t, err)

	rhsType := g.AnalysisOf(rhs).Type
	rootType := g.AnalysisOf(root).Type
	assert.Equal(t, rootType.Dims, rhsType.Dims)
	assert.Equal(t, rootType.AccessAxis, rhsType.AccessAxis)

	merged, changed := g.Union(root, rhs)
	assert.True(t, changed)
	require.NoError(t, g.Rebuild())
	assert.NotEqual(t, shape.NotAType, g.AnalysisOf(merged).Type.Kind)
}

func TestDistributeReluThroughTranspose(t *testing.T) {
	g, tbl := newGraph(t, map[string][]int64{"A": {2, 3}})
	a := tbl.Intern("A")

	transposed := ir.AccessTranspose(ir.Access(ir.Tensor(a), 0), ir.List(1, 0))
	term := ir.Compute(ir.Relu, transposed)
	root, err := g.Add(term)
	require.NoError(t, err)

	rule := DistributeThroughTranspose(ir.Relu)
	matches := rule.MatchAll(g)
	substs, ok := matches[g.Find(root)]
	require.True(t, ok)
	require.Len(t, substs, 1)

	rhs, err := rule.Applier(substs[0], g)
	require.NoError(t, err)
	assert.Equal(t, g.AnalysisOf(root).Type.Dims, g.AnalysisOf(rhs).Type.Dims)
}
