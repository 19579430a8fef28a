package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"glenside/internal/egraph"
	"glenside/internal/ir"
	"glenside/internal/shape"
	"glenside/internal/sym"
)

func newTestGraph(t *testing.T, dims map[string][]int64) (*egraph.EGraph, map[string]sym.Symbol) {
	t.Helper()
	tbl := sym.NewTable()
	env := shape.NewEnv()
	names := make(map[string]sym.Symbol, len(dims))
	for name, d := range dims {
		s := tbl.Intern(name)
		env.Declare(s, d, shape.F32)
		names[name] = s
	}
	return egraph.New(tbl, env), names
}

func TestMatchBindsVariables(t *testing.T) {
	g, names := newTestGraph(t, map[string][]int64{"A": {4, 16}})
	id, err := g.Add(ir.Access(ir.Tensor(names["A"]), 1))
	assert.NoError(t, err)

	prog := Compile(PNode(ir.Head{Kind: ir.KindAccess}, PVar("t"), PVar("k")))
	matches := prog.Match(g, id)
	assert.Len(t, matches, 1)
	assert.Contains(t, matches[0], "t")
	assert.Contains(t, matches[0], "k")
}

func TestMatchRepeatedVariableRequiresEquality(t *testing.T) {
	g, names := newTestGraph(t, map[string][]int64{"A": {4, 16}, "B": {4, 16}})
	accessA, _ := g.Add(ir.Access(ir.Tensor(names["A"]), 1))
	sameAccess, _ := g.Add(ir.AccessCartesianProduct(
		ir.Access(ir.Tensor(names["A"]), 1),
		ir.Access(ir.Tensor(names["A"]), 1),
	))
	diffAccess, err := g.Add(ir.AccessCartesianProduct(
		ir.Access(ir.Tensor(names["A"]), 1),
		ir.Access(ir.Tensor(names["B"]), 1),
	))
	assert.NoError(t, err)
	_ = accessA

	prog := Compile(PNode(ir.Head{Kind: ir.KindAccessCartesianProduct}, PVar("x"), PVar("x")))

	assert.Len(t, prog.Match(g, sameAccess), 1)
	assert.Len(t, prog.Match(g, diffAccess), 0)
}

func TestMatchFailsOnWrongHead(t *testing.T) {
	g, names := newTestGraph(t, map[string][]int64{"A": {4, 16}})
	id, _ := g.Add(ir.Tensor(names["A"]))

	prog := Compile(PNode(ir.Head{Kind: ir.KindAccess}, PVar("t"), PVar("k")))
	assert.Len(t, prog.Match(g, id), 0)
}

func TestRuleGuardFiltersMatches(t *testing.T) {
	g, names := newTestGraph(t, map[string][]int64{"A": {4, 16}})
	id, _ := g.Add(ir.Access(ir.Tensor(names["A"]), 1))

	always := NewRule("always", PNode(ir.Head{Kind: ir.KindAccess}, PVar("t"), PVar("k")), nil, nil)
	never := NewRule("never", PNode(ir.Head{Kind: ir.KindAccess}, PVar("t"), PVar("k")),
		func(Subst, *egraph.EGraph) bool { return false }, nil)

	assert.Len(t, always.Match(g, id), 1)
	assert.Len(t, never.Match(g, id), 0)
}

func TestMatchAllFindsEveryClass(t *testing.T) {
	g, names := newTestGraph(t, map[string][]int64{"A": {4, 16}, "B": {8, 2}})
	_, _ = g.Add(ir.Access(ir.Tensor(names["A"]), 1))
	_, _ = g.Add(ir.Access(ir.Tensor(names["B"]), 1))

	prog := Compile(PNode(ir.Head{Kind: ir.KindAccess}, PVar("t"), PVar("k")))
	all := prog.MatchAll(g)
	assert.Len(t, all, 2)
}
