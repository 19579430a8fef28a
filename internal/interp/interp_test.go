package interp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glenside/internal/ir"
	"glenside/internal/sym"
)

func TestInterpretAccessTranspose(t *testing.T) {
	tbl := sym.NewTable()
	env := NewEnv()
	a := tbl.Intern("A")
	require.NoError(t, env.Bind(a, []int64{2, 3}, []float32{1, 2, 3, 4, 5, 6}))

	term := ir.AccessTranspose(ir.Access(ir.Tensor(a), 0), ir.List(1, 0))
	v, err := Interpret(term, env)
	require.NoError(t, err)

	assert.Equal(t, []int{3, 2}, v.shape())
	assert.Equal(t, []float32{1, 4, 2, 5, 3, 6}, v.data())
}

func TestInterpretReshapePreservesFlatOrder(t *testing.T) {
	tbl := sym.NewTable()
	env := NewEnv()
	a := tbl.Intern("A")
	require.NoError(t, env.Bind(a, []int64{2, 3}, []float32{1, 2, 3, 4, 5, 6}))

	term := ir.AccessReshape(ir.Access(ir.Tensor(a), 0), ir.Shape(3, 2))
	v, err := Interpret(term, env)
	require.NoError(t, err)

	assert.Equal(t, []int{3, 2}, v.shape())
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, v.data())
}

func TestInterpretAccessSlice(t *testing.T) {
	tbl := sym.NewTable()
	env := NewEnv()
	a := tbl.Intern("A")
	require.NoError(t, env.Bind(a, []int64{4}, []float32{10, 20, 30, 40}))

	term := ir.AccessSlice(ir.Access(ir.Tensor(a), 0), 0, 1, 3)
	v, err := Interpret(term, env)
	require.NoError(t, err)

	assert.Equal(t, []float32{20, 30}, v.data())
}

func TestInterpretAccessPad(t *testing.T) {
	tbl := sym.NewTable()
	env := NewEnv()
	a := tbl.Intern("A")
	require.NoError(t, env.Bind(a, []int64{2}, []float32{5, 7}))

	term := ir.AccessPad(ir.Access(ir.Tensor(a), 0), 0, 1, 1)
	v, err := Interpret(term, env)
	require.NoError(t, err)

	assert.Equal(t, []float32{0, 5, 7, 0}, v.data())
}

func TestInterpretComputeDotProduct(t *testing.T) {
	tbl := sym.NewTable()
	env := NewEnv()
	a := tbl.Intern("A")
	b := tbl.Intern("B")
	require.NoError(t, env.Bind(a, []int64{2, 2}, []float32{1, 2, 3, 4}))
	require.NoError(t, env.Bind(b, []int64{2, 2}, []float32{5, 6, 7, 8}))

	pair := ir.AccessCartesianProduct(ir.Access(ir.Tensor(a), 0), ir.Access(ir.Tensor(b), 0))
	term := ir.Compute(ir.DotProduct, pair)
	v, err := Interpret(term, env)
	require.NoError(t, err)

	assert.Equal(t, []int{2, 2}, v.shape())
	assert.Equal(t, []float32{19, 22, 43, 50}, v.data())
}

func TestInterpretComputeElementwiseAdd(t *testing.T) {
	tbl := sym.NewTable()
	env := NewEnv()
	a := tbl.Intern("A")
	b := tbl.Intern("B")
	require.NoError(t, env.Bind(a, []int64{2}, []float32{1, 2}))
	require.NoError(t, env.Bind(b, []int64{2}, []float32{10, 20}))

	pair := ir.AccessCartesianProduct(ir.Access(ir.Tensor(a), 0), ir.Access(ir.Tensor(b), 0))
	term := ir.Compute(ir.ElementwiseAdd, pair)
	v, err := Interpret(term, env)
	require.NoError(t, err)

	assert.Equal(t, []float32{11, 22}, v.data())
}

func TestInterpretComputeReduceSum(t *testing.T) {
	tbl := sym.NewTable()
	env := NewEnv()
	a := tbl.Intern("A")
	require.NoError(t, env.Bind(a, []int64{2, 3}, []float32{1, 2, 3, 4, 5, 6}))

	term := ir.Compute(ir.ReduceSum, ir.Access(ir.Tensor(a), 1))
	v, err := Interpret(term, env)
	require.NoError(t, err)

	assert.Equal(t, []float32{6, 15}, v.data())
}

func TestInterpretSystolicArrayMatchesDotProduct(t *testing.T) {
	tbl := sym.NewTable()
	env := NewEnv()
	a := tbl.Intern("A")
	w := tbl.Intern("W")
	require.NoError(t, env.Bind(a, []int64{2, 2}, []float32{1, 2, 3, 4}))
	require.NoError(t, env.Bind(w, []int64{2, 2}, []float32{5, 6, 7, 8}))

	term := ir.SystolicArray(2, 2, ir.Access(ir.Tensor(a), 1), ir.Access(ir.Tensor(w), 0))
	v, err := Interpret(term, env)
	require.NoError(t, err)

	assert.Equal(t, []float32{19, 22, 43, 50}, v.data())
}

func TestInterpretRejectsUnboundTensor(t *testing.T) {
	tbl := sym.NewTable()
	env := NewEnv()
	a := tbl.Intern("A")

	_, err := Interpret(ir.Access(ir.Tensor(a), 0), env)
	assert.Error(t, err)
}
