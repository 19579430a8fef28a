package shape

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"glenside/internal/ir"
	"glenside/internal/sym"
)

func num(v int64) Value { return scalarInt(v) }

func dimList(dims ...int64) Value {
	items := make([]Type, len(dims))
	for i := range items {
		items[i] = Type{Kind: ScalarKind, Scalar: I32}
	}
	return Value{Type: Type{Kind: ListKind, Items: items}, ConstShape: dims}
}

func tensorEnv(t *testing.T, shapes map[string][]int64) (*Env, map[string]sym.Symbol) {
	t.Helper()
	tbl := sym.NewTable()
	env := NewEnv()
	names := make(map[string]sym.Symbol, len(shapes))
	for name, dims := range shapes {
		s := tbl.Intern(name)
		env.Declare(s, dims, F32)
		names[name] = s
	}
	return env, names
}

func TestMakeNum(t *testing.T) {
	v, err := Make(NewEnv(), ir.Head{Kind: ir.KindNum, Num: 7}, nil)
	assert.NoError(t, err)
	assert.Equal(t, ScalarKind, v.Type.Kind)
	assert.Equal(t, int64(7), *v.ConstInt)
}

func TestMakeShapeLiteral(t *testing.T) {
	v, err := Make(NewEnv(), ir.Head{Kind: ir.KindShape}, []Value{num(4), num(16)})
	assert.NoError(t, err)
	assert.Equal(t, []int64{4, 16}, v.ConstShape)
}

func TestMakeTensorLooksUpEnv(t *testing.T) {
	env, names := tensorEnv(t, map[string][]int64{"A": {4, 16}})
	v, err := Make(env, ir.Head{Kind: ir.KindTensor, Tensor: names["A"]}, nil)
	assert.NoError(t, err)
	assert.Equal(t, ShapeType, v.Type.Kind)
	assert.Equal(t, []int64{4, 16}, v.Type.Dims)
	assert.Equal(t, 0, v.Type.AccessAxis)
}

func TestMakeTensorUndeclaredErrors(t *testing.T) {
	tbl := sym.NewTable()
	_, err := Make(NewEnv(), ir.Head{Kind: ir.KindTensor, Tensor: tbl.Intern("ghost")}, nil)
	assert.Error(t, err)
}

func TestMakeAccessSetsAxis(t *testing.T) {
	env, names := tensorEnv(t, map[string][]int64{"A": {4, 16}})
	tensorVal, err := Make(env, ir.Head{Kind: ir.KindTensor, Tensor: names["A"]}, nil)
	assert.NoError(t, err)

	accessVal, err := Make(env, ir.Head{Kind: ir.KindAccess}, []Value{tensorVal, num(1)})
	assert.NoError(t, err)
	assert.Equal(t, 1, accessVal.Type.AccessAxis)
	assert.Equal(t, []int64{4}, accessVal.Type.BatchDims())
	assert.Equal(t, []int64{16}, accessVal.Type.ItemDims())
}

func TestMakeAccessAxisOutOfRangeErrors(t *testing.T) {
	env, names := tensorEnv(t, map[string][]int64{"A": {4, 16}})
	tensorVal, _ := Make(env, ir.Head{Kind: ir.KindTensor, Tensor: names["A"]}, nil)
	_, err := Make(env, ir.Head{Kind: ir.KindAccess}, []Value{tensorVal, num(5)})
	assert.Error(t, err)
}

func TestMakeAccessTransposePermutesDims(t *testing.T) {
	env, names := tensorEnv(t, map[string][]int64{"A": {4, 16}})
	tensorVal, _ := Make(env, ir.Head{Kind: ir.KindTensor, Tensor: names["A"]}, nil)
	transposed, err := Make(env, ir.Head{Kind: ir.KindAccessTranspose}, []Value{tensorVal, dimList(1, 0)})
	assert.NoError(t, err)
	assert.Equal(t, []int64{16, 4}, transposed.Type.Dims)
}

func TestMakeAccessTransposeBadPermutationErrors(t *testing.T) {
	env, names := tensorEnv(t, map[string][]int64{"A": {4, 16}})
	tensorVal, _ := Make(env, ir.Head{Kind: ir.KindTensor, Tensor: names["A"]}, nil)
	_, err := Make(env, ir.Head{Kind: ir.KindAccessTranspose}, []Value{tensorVal, dimList(1, 1)})
	assert.Error(t, err)
}

func TestMakeAccessReshapePreservesBothSides(t *testing.T) {
	env, names := tensorEnv(t, map[string][]int64{"A": {4, 16}})
	tensorVal, _ := Make(env, ir.Head{Kind: ir.KindTensor, Tensor: names["A"]}, nil)
	accessVal, _ := Make(env, ir.Head{Kind: ir.KindAccess}, []Value{tensorVal, num(1)})

	reshaped, err := Make(env, ir.Head{Kind: ir.KindAccessReshape}, []Value{accessVal, dimList(4, 4, 4)})
	assert.NoError(t, err)
	assert.Equal(t, []int64{4, 4, 4}, reshaped.Type.Dims)
	assert.Equal(t, 1, reshaped.Type.AccessAxis)
}

func TestMakeAccessReshapeRejectsCrossSideMix(t *testing.T) {
	env, names := tensorEnv(t, map[string][]int64{"A": {4, 16}})
	tensorVal, _ := Make(env, ir.Head{Kind: ir.KindTensor, Tensor: names["A"]}, nil)
	accessVal, _ := Make(env, ir.Head{Kind: ir.KindAccess}, []Value{tensorVal, num(1)})

	// Same total element count (64), but moves an element from the batch
	// side to the item side: the stricter rule must reject this even
	// though a naive product-of-all-dims check would accept it.
	_, err := Make(env, ir.Head{Kind: ir.KindAccessReshape}, []Value{accessVal, dimList(2, 32)})
	assert.Error(t, err)
}

func TestMakeCartesianProductAndDotProduct(t *testing.T) {
	env, names := tensorEnv(t, map[string][]int64{"A": {4, 16}, "B": {16, 32}})
	aTensor, _ := Make(env, ir.Head{Kind: ir.KindTensor, Tensor: names["A"]}, nil)
	bTensor, _ := Make(env, ir.Head{Kind: ir.KindTensor, Tensor: names["B"]}, nil)
	aAccess, _ := Make(env, ir.Head{Kind: ir.KindAccess}, []Value{aTensor, num(1)})
	bAccess, _ := Make(env, ir.Head{Kind: ir.KindAccess}, []Value{bTensor, num(0)})

	paired, err := Make(env, ir.Head{Kind: ir.KindAccessCartesianProduct}, []Value{aAccess, bAccess})
	assert.NoError(t, err)

	result, err := Make(env, ir.Head{Kind: ir.KindCompute, Op: ir.DotProduct}, []Value{paired})
	assert.NoError(t, err)
	assert.Equal(t, []int64{4, 32}, result.Type.Dims)
}

func TestMakeSystolicArray(t *testing.T) {
	env, names := tensorEnv(t, map[string][]int64{"A": {4, 16}, "B": {16, 32}})
	aTensor, _ := Make(env, ir.Head{Kind: ir.KindTensor, Tensor: names["A"]}, nil)
	bTensor, _ := Make(env, ir.Head{Kind: ir.KindTensor, Tensor: names["B"]}, nil)
	aAccess, _ := Make(env, ir.Head{Kind: ir.KindAccess}, []Value{aTensor, num(1)})
	bAccess, _ := Make(env, ir.Head{Kind: ir.KindAccess}, []Value{bTensor, num(0)})

	result, err := Make(env, ir.Head{Kind: ir.KindSystolicArray, R: 16, C: 32}, []Value{aAccess, bAccess})
	assert.NoError(t, err)
	assert.Equal(t, []int64{4, 32}, result.Type.Dims)
	assert.Equal(t, 1, result.Type.AccessAxis)
}

func TestMakeSystolicArrayRejectsMismatchedR(t *testing.T) {
	env, names := tensorEnv(t, map[string][]int64{"A": {4, 16}, "B": {16, 32}})
	aTensor, _ := Make(env, ir.Head{Kind: ir.KindTensor, Tensor: names["A"]}, nil)
	bTensor, _ := Make(env, ir.Head{Kind: ir.KindTensor, Tensor: names["B"]}, nil)
	aAccess, _ := Make(env, ir.Head{Kind: ir.KindAccess}, []Value{aTensor, num(1)})
	bAccess, _ := Make(env, ir.Head{Kind: ir.KindAccess}, []Value{bTensor, num(0)})

	_, err := Make(env, ir.Head{Kind: ir.KindSystolicArray, R: 8, C: 32}, []Value{aAccess, bAccess})
	assert.Error(t, err)
}

func TestMakeAccessWindowsSplitsBatchAndItem(t *testing.T) {
	env, names := tensorEnv(t, map[string][]int64{"A": {8, 8}})
	tensorVal, _ := Make(env, ir.Head{Kind: ir.KindTensor, Tensor: names["A"]}, nil)

	windowed, err := Make(env, ir.Head{Kind: ir.KindAccessWindows}, []Value{tensorVal, dimList(4, 4), dimList(4, 4)})
	assert.NoError(t, err)
	assert.Equal(t, []int64{2, 2, 4, 4}, windowed.Type.Dims)
	assert.Equal(t, 2, windowed.Type.AccessAxis)
}

func TestMakeComputeReduceSum(t *testing.T) {
	env, names := tensorEnv(t, map[string][]int64{"A": {4, 16}})
	tensorVal, _ := Make(env, ir.Head{Kind: ir.KindTensor, Tensor: names["A"]}, nil)
	accessVal, _ := Make(env, ir.Head{Kind: ir.KindAccess}, []Value{tensorVal, num(1)})

	reduced, err := Make(env, ir.Head{Kind: ir.KindCompute, Op: ir.ReduceSum}, []Value{accessVal})
	assert.NoError(t, err)
	assert.Equal(t, []int64{4}, reduced.Type.Dims)
}

func TestMakeUnaryElementwisePreservesShape(t *testing.T) {
	env, names := tensorEnv(t, map[string][]int64{"A": {4, 16}})
	tensorVal, _ := Make(env, ir.Head{Kind: ir.KindTensor, Tensor: names["A"]}, nil)
	accessVal, _ := Make(env, ir.Head{Kind: ir.KindAccess}, []Value{tensorVal, num(1)})

	relu, err := Make(env, ir.Head{Kind: ir.KindCompute, Op: ir.Relu}, []Value{accessVal})
	assert.NoError(t, err)
	assert.Equal(t, accessVal.Type.Dims, relu.Type.Dims)
}

func TestMakeArityMismatchErrors(t *testing.T) {
	_, err := Make(NewEnv(), ir.Head{Kind: ir.KindAccess}, []Value{num(1)})
	assert.Error(t, err)
}

func TestMergeAgreesIsStableAndNotStrict(t *testing.T) {
	v := Value{Type: Type{Kind: ShapeType, Dims: []int64{4, 16}, AccessAxis: 1}}
	merged, strict := Merge(v, v)
	assert.False(t, strict)
	assert.True(t, merged.Equal(v))
}

func TestMergeConflictingShapesFoldsToNotAType(t *testing.T) {
	a := Value{Type: Type{Kind: ShapeType, Dims: []int64{4, 16}, AccessAxis: 1}}
	b := Value{Type: Type{Kind: ShapeType, Dims: []int64{4, 32}, AccessAxis: 1}}
	merged, strict := Merge(a, b)
	assert.True(t, strict)
	assert.Equal(t, NotAType, merged.Type.Kind)
}

func TestMergeConflictingConstantsFoldsToNotAType(t *testing.T) {
	a := num(3)
	b := num(4)
	merged, strict := Merge(a, b)
	assert.True(t, strict)
	assert.Equal(t, NotAType, merged.Type.Kind)
}

func TestMergeNotATypeIsAbsorbing(t *testing.T) {
	a := Value{Type: Type{Kind: NotAType}}
	b := num(3)
	merged, strict := Merge(a, b)
	assert.True(t, strict)
	assert.Equal(t, NotAType, merged.Type.Kind)
}
