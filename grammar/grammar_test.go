package grammar_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glenside/grammar"
	"glenside/internal/ir"
	"glenside/internal/sym"
)

func TestParseBareTensorReference(t *testing.T) {
	tbl := sym.NewTable()
	term, err := grammar.Parse("A", tbl)
	require.NoError(t, err)
	assert.Equal(t, ir.KindTensor, term.Head.Kind)
	assert.Equal(t, "A", tbl.Name(term.Head.Tensor))
}

func TestParseAccessTransposeMatchesSpecExample(t *testing.T) {
	tbl := sym.NewTable()
	src := "(access (access-transpose t (list 1 0)) 1)"
	term, err := grammar.Parse(src, tbl)
	require.NoError(t, err)

	a := tbl.Intern("t")
	want := ir.Access(ir.AccessTranspose(ir.Tensor(a), ir.List(1, 0)), 1)
	assert.True(t, want.Equal(term))
}

func TestParsePrintRoundTrip(t *testing.T) {
	cases := []string{
		"A",
		"0",
		"(shape 1 2 3)",
		"(list 1 0)",
		"(access A 0)",
		"(access-transpose (access A 0) (list 1 0))",
		"(compute relu (access A 0))",
		"(systolic-array 16 32 (access A 1) (access B 0))",
		"(access-cartesian-product (access A 1) (access B 0))",
	}
	for _, src := range cases {
		tbl := sym.NewTable()
		term, err := grammar.Parse(src, tbl)
		require.NoError(t, err, src)
		assert.Equal(t, src, grammar.Print(term, tbl), src)
	}
}

func TestParseLowersDotProductLoweringExample(t *testing.T) {
	tbl := sym.NewTable()
	src := "(compute dot-product (access-cartesian-product (access A 1) (access B 0)))"
	term, err := grammar.Parse(src, tbl)
	require.NoError(t, err)

	a, b := tbl.Intern("A"), tbl.Intern("B")
	pair := ir.AccessCartesianProduct(ir.Access(ir.Tensor(a), 1), ir.Access(ir.Tensor(b), 0))
	want := ir.Compute(ir.DotProduct, pair)
	assert.True(t, want.Equal(term))
}

func TestParseRejectsUnknownComputeOp(t *testing.T) {
	tbl := sym.NewTable()
	_, err := grammar.Parse("(compute frobnicate (access A 0))", tbl)
	assert.Error(t, err)
}

func TestParseRejectsArityMismatch(t *testing.T) {
	tbl := sym.NewTable()
	_, err := grammar.Parse("(access A 0 1)", tbl)
	assert.Error(t, err)
}

func TestParseRejectsUnknownHead(t *testing.T) {
	tbl := sym.NewTable()
	_, err := grammar.Parse("(not-a-real-op A)", tbl)
	assert.Error(t, err)
}

func TestParseIgnoresLineComments(t *testing.T) {
	tbl := sym.NewTable()
	term, err := grammar.Parse("// a tensor reference\nA", tbl)
	require.NoError(t, err)
	assert.Equal(t, ir.KindTensor, term.Head.Kind)
}
