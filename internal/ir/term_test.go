package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeOpRoundTripsByName(t *testing.T) {
	for op := DotProduct; op <= Softmax; op++ {
		name := op.String()
		got, ok := ComputeOpByName(name)
		assert.True(t, ok, "op %d", op)
		assert.Equal(t, op, got)
	}
	_, ok := ComputeOpByName("not-a-real-op")
	assert.False(t, ok)
}

func TestArityTable(t *testing.T) {
	assert.Equal(t, 0, Head{Kind: KindNum}.Arity())
	assert.Equal(t, -1, Head{Kind: KindShape}.Arity())
	assert.Equal(t, 2, Head{Kind: KindAccess}.Arity())
	assert.Equal(t, 1, Head{Kind: KindCompute}.Arity())
	assert.Equal(t, 4, Head{Kind: KindAccessSlice}.Arity())
	assert.Equal(t, 3, Head{Kind: KindAccessConcatenate}.Arity())
}

func TestCheckArity(t *testing.T) {
	assert.NoError(t, CheckArity(Head{Kind: KindAccess}, 2))
	assert.Error(t, CheckArity(Head{Kind: KindAccess}, 1))
	assert.NoError(t, CheckArity(Head{Kind: KindShape}, 0))
	assert.NoError(t, CheckArity(Head{Kind: KindShape}, 5))
}

func TestTermEqual(t *testing.T) {
	a := AccessTranspose(Access(Tensor(1), 1), List(1, 0))
	b := AccessTranspose(Access(Tensor(1), 1), List(1, 0))
	c := AccessTranspose(Access(Tensor(1), 1), List(0, 1))

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestConstructors(t *testing.T) {
	term := SystolicArray(16, 32, Access(Tensor(1), 1), Access(Tensor(2), 0))
	assert.Equal(t, KindSystolicArray, term.Head.Kind)
	assert.Equal(t, 16, term.Head.R)
	assert.Equal(t, 32, term.Head.C)
	assert.Len(t, term.Children, 2)
}
