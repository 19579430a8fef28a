package interp

import (
	"fmt"

	"glenside/internal/ir"
)

func interpretCompute(t *ir.Term, env *Env) (Value, error) {
	operand, err := Interpret(t.Children[0], env)
	if err != nil {
		return Value{}, err
	}

	switch t.Head.Op {
	case ir.DotProduct:
		return computeDotProduct(operand)
	case ir.ElementwiseAdd:
		return computeElementwise(operand, func(a, b float32) float32 { return a + b })
	case ir.ElementwiseMul:
		return computeElementwise(operand, func(a, b float32) float32 { return a * b })
	case ir.ElementwiseDiv:
		return computeElementwise(operand, func(a, b float32) float32 { return a / b })
	case ir.ReduceSum:
		return computeReduce(operand, 0, func(acc, v float32) float32 { return acc + v }, func(acc float32, n int) float32 { return acc })
	case ir.ReduceMax:
		return computeReduceMax(operand)
	case ir.ReduceMean:
		return computeReduce(operand, 0, func(acc, v float32) float32 { return acc + v }, func(acc float32, n int) float32 { return acc / float32(n) })
	case ir.Negative:
		return computeUnary(operand, func(v float32) float32 { return -v })
	case ir.Relu:
		return computeUnary(operand, relu)
	case ir.Sqrt:
		return computeUnary(operand, sqrtf)
	case ir.Softmax:
		return computeSoftmax(operand)
	}
	return Value{}, fmt.Errorf("interp: compute %s is not implemented", t.Head.Op)
}

func requirePaired(v Value, what string) error {
	if !v.paired() {
		return fmt.Errorf("interp: %s expects an access-cartesian-product operand", what)
	}
	return nil
}

func requireUnpaired(v Value, what string) error {
	if v.paired() {
		return fmt.Errorf("interp: %s expects a plain access operand, not a cartesian product", what)
	}
	return nil
}

func computeDotProduct(operand Value) (Value, error) {
	if err := requirePaired(operand, "dot-product"); err != nil {
		return Value{}, err
	}
	left, right := *operand.Left, *operand.Right
	leftItem, rightItem := left.itemDims(), right.itemDims()
	k := leftItem[len(leftItem)-1]
	leftBatch := product(left.batchDims())
	rightBatch := product(right.batchDims())
	rows := product(leftItem[:len(leftItem)-1])
	cols := product(rightItem[1:])
	out := batchedMatMul(left.data(), leftBatch, rows, k, right.data(), rightBatch, cols)
	outDims := append(append([]int(nil), left.batchDims()...), right.batchDims()...)
	outDims = append(outDims, leftItem[:len(leftItem)-1]...)
	outDims = append(outDims, rightItem[1:]...)
	return Value{Dense: newDense(outDims, out), AccessAxis: len(left.batchDims()) + len(right.batchDims())}, nil
}

func computeElementwise(operand Value, op func(a, b float32) float32) (Value, error) {
	if err := requirePaired(operand, "elementwise compute"); err != nil {
		return Value{}, err
	}
	left, right := *operand.Left, *operand.Right
	leftBatch := product(left.batchDims())
	rightBatch := product(right.batchDims())
	itemSize := product(left.itemDims())
	out := batchedElementwise(left.data(), leftBatch, right.data(), rightBatch, itemSize, op)
	outDims := append(append(append([]int(nil), left.batchDims()...), right.batchDims()...), left.itemDims()...)
	return Value{Dense: newDense(outDims, out), AccessAxis: len(left.batchDims()) + len(right.batchDims())}, nil
}

func computeReduce(operand Value, init float32, combine func(acc, v float32) float32, finish func(acc float32, n int) float32) (Value, error) {
	if err := requireUnpaired(operand, "reduce"); err != nil {
		return Value{}, err
	}
	item := operand.itemDims()
	lastDim := item[len(item)-1]
	out := reduceLastDim(operand.data(), lastDim, init, combine, finish)
	outDims := append(append([]int(nil), operand.batchDims()...), item[:len(item)-1]...)
	return Value{Dense: newDense(outDims, out), AccessAxis: len(operand.batchDims())}, nil
}

func computeReduceMax(operand Value) (Value, error) {
	if err := requireUnpaired(operand, "reduce-max"); err != nil {
		return Value{}, err
	}
	item := operand.itemDims()
	lastDim := item[len(item)-1]
	out := maxLastDim(operand.data(), lastDim)
	outDims := append(append([]int(nil), operand.batchDims()...), item[:len(item)-1]...)
	return Value{Dense: newDense(outDims, out), AccessAxis: len(operand.batchDims())}, nil
}

func computeUnary(operand Value, f func(float32) float32) (Value, error) {
	if err := requireUnpaired(operand, "unary compute"); err != nil {
		return Value{}, err
	}
	out := mapUnary(operand.data(), f)
	return Value{Dense: newDense(operand.shape(), out), AccessAxis: operand.AccessAxis}, nil
}

func computeSoftmax(operand Value) (Value, error) {
	if err := requireUnpaired(operand, "softmax"); err != nil {
		return Value{}, err
	}
	item := operand.itemDims()
	lastDim := item[len(item)-1]
	out := softmaxLastDim(operand.data(), lastDim)
	return Value{Dense: newDense(operand.shape(), out), AccessAxis: operand.AccessAxis}, nil
}
