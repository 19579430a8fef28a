package shape

import (
	"fmt"

	"glenside/internal/ir"
)

// Make computes an e-node's analysis value from its head and the already-
// computed analysis values of its children (spec §3 "Make(node, child
// values) computes a value for a new e-node from its children's values").
//
// Make returns an error only for a structural violation that can be
// detected the instant the node is built — wrong arity, a non-constant
// shape argument, an out-of-range axis. Those are reported to the caller
// immediately as a construction-time TypeError (spec §7). Everything a
// node's children might later turn out to disagree about is instead
// handled by Merge, which never errors and folds silently to NotAType.
func Make(env *Env, head ir.Head, children []Value) (Value, error) {
	if err := ir.CheckArity(head, len(children)); err != nil {
		return Value{}, err
	}

	switch head.Kind {
	case ir.KindNum:
		return scalarInt(head.Num), nil

	case ir.KindShape, ir.KindList:
		return makeDimList(children)

	case ir.KindTensor:
		sig, ok := env.Lookup(head.Tensor)
		if !ok {
			return Value{}, fmt.Errorf("undeclared tensor %d", head.Tensor)
		}
		return Value{Type: Type{Kind: ShapeType, AccessAxis: 0, Dims: sig.Shape, DType: sig.DType}}, nil

	case ir.KindAccess:
		return makeAccess(children[0], children[1])
	case ir.KindAccessTranspose:
		return makeAccessTranspose(children[0], children[1])
	case ir.KindAccessReshape:
		return makeAccessReshape(children[0], children[1])
	case ir.KindAccessFlatten:
		return makeAccessFlatten(children[0])
	case ir.KindAccessSlice:
		return makeAccessSlice(children[0], children[1], children[2], children[3])
	case ir.KindAccessConcatenate:
		return makeAccessConcatenate(children[0], children[1], children[2])
	case ir.KindAccessBroadcast:
		return makeAccessBroadcast(children[0], children[1])
	case ir.KindAccessInsertAxis:
		return makeAccessInsertAxis(children[0], children[1])
	case ir.KindAccessSqueeze:
		return makeAccessSqueeze(children[0], children[1])
	case ir.KindAccessPad:
		return makeAccessPad(children[0], children[1], children[2], children[3])
	case ir.KindAccessWindows:
		return makeAccessWindows(children[0], children[1], children[2])
	case ir.KindAccessCartesianProduct:
		return makeCartesianProduct(children[0], children[1])

	case ir.KindCompute:
		return makeCompute(head.Op, children[0])

	case ir.KindSystolicArray:
		return makeSystolicArray(head.R, head.C, children[0], children[1])

	case ir.KindGetAccessShape:
		return makeGetAccessShape(children[0])
	case ir.KindConstructTuple:
		return Value{Type: Type{Kind: TupleKind, Items: itemTypes(children)}}, nil
	case ir.KindTupleGetItem:
		return makeTupleGetItem(children[0], children[1])
	}

	return Value{}, fmt.Errorf("unhandled head kind %d", head.Kind)
}

func requireShape(v Value, what string) (Type, error) {
	if v.Type.Kind != ShapeType {
		return Type{}, fmt.Errorf("%s: expected an access term, got %v", what, v.Type.Kind)
	}
	return v.Type, nil
}

func requireConstInt(v Value, what string) (int64, error) {
	if v.Type.Kind != ScalarKind || v.ConstInt == nil {
		return 0, fmt.Errorf("%s: expected a constant integer", what)
	}
	return *v.ConstInt, nil
}

func requireConstDims(v Value, what string) ([]int64, error) {
	if v.Type.Kind != ListKind || v.ConstShape == nil {
		return nil, fmt.Errorf("%s: expected a constant dim list", what)
	}
	return v.ConstShape, nil
}

func makeDimList(children []Value) (Value, error) {
	dims := make([]int64, len(children))
	items := make([]Type, len(children))
	for i, c := range children {
		n, err := requireConstInt(c, "shape/list element")
		if err != nil {
			return Value{}, err
		}
		dims[i] = n
		items[i] = Type{Kind: ScalarKind, Scalar: I32}
	}
	return Value{Type: Type{Kind: ListKind, Items: items}, ConstShape: dims}, nil
}

func itemTypes(children []Value) []Type {
	items := make([]Type, len(children))
	for i, c := range children {
		items[i] = c.Type
	}
	return items
}

// makeAccess implements "access operand k": shape = shape(operand),
// access_axis = k (spec §4.D).
func makeAccess(operand, axis Value) (Value, error) {
	t, err := requireShape(operand, "access")
	if err != nil {
		return Value{}, err
	}
	k, err := requireConstInt(axis, "access axis")
	if err != nil {
		return Value{}, err
	}
	if k < 0 || k > int64(len(t.Dims)) {
		return Value{}, fmt.Errorf("access axis %d out of range for rank %d", k, len(t.Dims))
	}
	t.AccessAxis = int(k)
	t.PairSplit = 0
	return Value{Type: t}, nil
}

// makeAccessTranspose implements "access-transpose operand (list ...)":
// the dims are permuted; the axis split point is preserved positionally.
func makeAccessTranspose(operand, axes Value) (Value, error) {
	t, err := requireShape(operand, "access-transpose")
	if err != nil {
		return Value{}, err
	}
	perm, err := requireConstDims(axes, "access-transpose permutation")
	if err != nil {
		return Value{}, err
	}
	if len(perm) != len(t.Dims) {
		return Value{}, fmt.Errorf("access-transpose: permutation length %d does not match rank %d", len(perm), len(t.Dims))
	}
	seen := make([]bool, len(perm))
	newDims := make([]int64, len(perm))
	for i, p := range perm {
		if p < 0 || p >= int64(len(perm)) || seen[p] {
			return Value{}, fmt.Errorf("access-transpose: %v is not a permutation of 0..%d", perm, len(perm)-1)
		}
		seen[p] = true
		newDims[i] = t.Dims[p]
	}
	t.Dims = newDims
	t.PairSplit = 0
	return Value{Type: t}, nil
}

// makeAccessReshape implements the stricter access-reshape rule: the new
// shape must preserve the product of the batch dims AND the product of
// the item dims independently, rather than only the overall element
// count. The new shape's access axis is taken to sit at the same
// positional index as the operand's.
func makeAccessReshape(operand, newShape Value) (Value, error) {
	t, err := requireShape(operand, "access-reshape")
	if err != nil {
		return Value{}, err
	}
	dims, err := requireConstDims(newShape, "access-reshape target shape")
	if err != nil {
		return Value{}, err
	}
	if t.AccessAxis > len(dims) {
		return Value{}, fmt.Errorf("access-reshape: target shape %v too short for access axis %d", dims, t.AccessAxis)
	}
	if product(dims[:t.AccessAxis]) != product(t.BatchDims()) {
		return Value{}, fmt.Errorf("access-reshape: batch dims product changed (%v -> %v)", t.BatchDims(), dims[:t.AccessAxis])
	}
	if product(dims[t.AccessAxis:]) != product(t.ItemDims()) {
		return Value{}, fmt.Errorf("access-reshape: item dims product changed (%v -> %v)", t.ItemDims(), dims[t.AccessAxis:])
	}
	t.Dims = append([]int64(nil), dims...)
	t.PairSplit = 0
	return Value{Type: t}, nil
}

// makeAccessFlatten implements "access-flatten operand": the item dims
// collapse into a single dim, batch dims are untouched.
func makeAccessFlatten(operand Value) (Value, error) {
	t, err := requireShape(operand, "access-flatten")
	if err != nil {
		return Value{}, err
	}
	flat := append(append([]int64(nil), t.BatchDims()...), product(t.ItemDims()))
	t.Dims = flat
	t.PairSplit = 0
	return Value{Type: t}, nil
}

func makeAccessSlice(operand, axisV, lowV, highV Value) (Value, error) {
	t, err := requireShape(operand, "access-slice")
	if err != nil {
		return Value{}, err
	}
	axis, err := requireConstInt(axisV, "access-slice axis")
	if err != nil {
		return Value{}, err
	}
	low, err := requireConstInt(lowV, "access-slice low")
	if err != nil {
		return Value{}, err
	}
	high, err := requireConstInt(highV, "access-slice high")
	if err != nil {
		return Value{}, err
	}
	if axis < 0 || axis >= int64(len(t.Dims)) {
		return Value{}, fmt.Errorf("access-slice: axis %d out of range", axis)
	}
	if low < 0 || high < low || high > t.Dims[axis] {
		return Value{}, fmt.Errorf("access-slice: bad bounds [%d,%d) for dim %d", low, high, t.Dims[axis])
	}
	dims := append([]int64(nil), t.Dims...)
	dims[axis] = high - low
	t.Dims = dims
	t.PairSplit = 0
	return Value{Type: t}, nil
}

func makeAccessConcatenate(a, b, axisV Value) (Value, error) {
	ta, err := requireShape(a, "access-concatenate")
	if err != nil {
		return Value{}, err
	}
	tb, err := requireShape(b, "access-concatenate")
	if err != nil {
		return Value{}, err
	}
	axis, err := requireConstInt(axisV, "access-concatenate axis")
	if err != nil {
		return Value{}, err
	}
	if ta.AccessAxis != tb.AccessAxis || len(ta.Dims) != len(tb.Dims) {
		return Value{}, fmt.Errorf("access-concatenate: operands have incompatible access shapes")
	}
	if axis < 0 || axis >= int64(len(ta.Dims)) {
		return Value{}, fmt.Errorf("access-concatenate: axis %d out of range", axis)
	}
	dims := append([]int64(nil), ta.Dims...)
	for i := range dims {
		if int64(i) == axis {
			continue
		}
		if dims[i] != tb.Dims[i] {
			return Value{}, fmt.Errorf("access-concatenate: dims differ at non-concatenated axis %d", i)
		}
	}
	dims[axis] = ta.Dims[axis] + tb.Dims[axis]
	ta.Dims = dims
	ta.DType = promote(ta.DType, tb.DType)
	ta.PairSplit = 0
	return Value{Type: ta}, nil
}

func makeAccessBroadcast(operand, newShape Value) (Value, error) {
	t, err := requireShape(operand, "access-broadcast")
	if err != nil {
		return Value{}, err
	}
	dims, err := requireConstDims(newShape, "access-broadcast target shape")
	if err != nil {
		return Value{}, err
	}
	if len(dims) != len(t.Dims) {
		return Value{}, fmt.Errorf("access-broadcast: rank mismatch %d vs %d", len(dims), len(t.Dims))
	}
	for i, d := range dims {
		if t.Dims[i] != d && t.Dims[i] != 1 {
			return Value{}, fmt.Errorf("access-broadcast: dim %d (%d) cannot broadcast to %d", i, t.Dims[i], d)
		}
	}
	t.Dims = append([]int64(nil), dims...)
	t.PairSplit = 0
	return Value{Type: t}, nil
}

func makeAccessInsertAxis(operand, axisV Value) (Value, error) {
	t, err := requireShape(operand, "access-insert-axis")
	if err != nil {
		return Value{}, err
	}
	axis, err := requireConstInt(axisV, "access-insert-axis axis")
	if err != nil {
		return Value{}, err
	}
	if axis < 0 || axis > int64(len(t.Dims)) {
		return Value{}, fmt.Errorf("access-insert-axis: axis %d out of range", axis)
	}
	dims := make([]int64, 0, len(t.Dims)+1)
	dims = append(dims, t.Dims[:axis]...)
	dims = append(dims, 1)
	dims = append(dims, t.Dims[axis:]...)
	t.Dims = dims
	if axis <= int64(t.AccessAxis) {
		t.AccessAxis++
	}
	t.PairSplit = 0
	return Value{Type: t}, nil
}

func makeAccessSqueeze(operand, axisV Value) (Value, error) {
	t, err := requireShape(operand, "access-squeeze")
	if err != nil {
		return Value{}, err
	}
	axis, err := requireConstInt(axisV, "access-squeeze axis")
	if err != nil {
		return Value{}, err
	}
	if axis < 0 || axis >= int64(len(t.Dims)) {
		return Value{}, fmt.Errorf("access-squeeze: axis %d out of range", axis)
	}
	if t.Dims[axis] != 1 {
		return Value{}, fmt.Errorf("access-squeeze: dim %d is %d, not 1", axis, t.Dims[axis])
	}
	dims := append([]int64(nil), t.Dims[:axis]...)
	dims = append(dims, t.Dims[axis+1:]...)
	t.Dims = dims
	if axis < int64(t.AccessAxis) {
		t.AccessAxis--
	}
	t.PairSplit = 0
	return Value{Type: t}, nil
}

func makeAccessPad(operand, axisV, beforeV, afterV Value) (Value, error) {
	t, err := requireShape(operand, "access-pad")
	if err != nil {
		return Value{}, err
	}
	axis, err := requireConstInt(axisV, "access-pad axis")
	if err != nil {
		return Value{}, err
	}
	before, err := requireConstInt(beforeV, "access-pad before")
	if err != nil {
		return Value{}, err
	}
	after, err := requireConstInt(afterV, "access-pad after")
	if err != nil {
		return Value{}, err
	}
	if axis < 0 || axis >= int64(len(t.Dims)) {
		return Value{}, fmt.Errorf("access-pad: axis %d out of range", axis)
	}
	if before < 0 || after < 0 {
		return Value{}, fmt.Errorf("access-pad: padding amounts must be non-negative")
	}
	dims := append([]int64(nil), t.Dims...)
	dims[axis] += before + after
	t.Dims = dims
	t.PairSplit = 0
	return Value{Type: t}, nil
}

// makeAccessWindows implements "access-windows operand window stride": a
// sliding window over every dim. The window positions become the new
// batch dims and the window contents become the new item dims, which is
// what the tiling/blocking rewrites (spec §4.E) pivot on.
func makeAccessWindows(operand, windowV, strideV Value) (Value, error) {
	t, err := requireShape(operand, "access-windows")
	if err != nil {
		return Value{}, err
	}
	window, err := requireConstDims(windowV, "access-windows window shape")
	if err != nil {
		return Value{}, err
	}
	stride, err := requireConstDims(strideV, "access-windows stride shape")
	if err != nil {
		return Value{}, err
	}
	rank := len(t.Dims)
	if len(window) != rank || len(stride) != rank {
		return Value{}, fmt.Errorf("access-windows: window/stride rank must match operand rank %d", rank)
	}
	counts := make([]int64, rank)
	for i := 0; i < rank; i++ {
		if stride[i] <= 0 {
			return Value{}, fmt.Errorf("access-windows: stride[%d] must be positive", i)
		}
		if window[i] <= 0 || window[i] > t.Dims[i] {
			return Value{}, fmt.Errorf("access-windows: window[%d]=%d does not fit dim %d", i, window[i], t.Dims[i])
		}
		counts[i] = (t.Dims[i]-window[i])/stride[i] + 1
	}
	dims := append(append([]int64(nil), counts...), window...)
	return Value{Type: Type{Kind: ShapeType, AccessAxis: rank, Dims: dims, DType: t.DType}}, nil
}

// makeCartesianProduct implements "access-cartesian-product a b": pairs
// the two operands' batch dims by cartesian product and keeps both item
// shapes available (via PairSplit) for a consuming compute node.
func makeCartesianProduct(a, b Value) (Value, error) {
	ta, err := requireShape(a, "access-cartesian-product")
	if err != nil {
		return Value{}, err
	}
	tb, err := requireShape(b, "access-cartesian-product")
	if err != nil {
		return Value{}, err
	}
	batch := append(append([]int64(nil), ta.BatchDims()...), tb.BatchDims()...)
	items := append(append([]int64(nil), ta.ItemDims()...), tb.ItemDims()...)
	dims := append(batch, items...)
	return Value{Type: Type{
		Kind:       ShapeType,
		AccessAxis: len(batch),
		Dims:       dims,
		DType:      promote(ta.DType, tb.DType),
		PairSplit:  len(ta.ItemDims()),
	}}, nil
}

// makeCompute implements every compute op's output-shape rule (spec
// §4.D's dot-product example generalises to the rest of the family).
func makeCompute(op ir.ComputeOp, operand Value) (Value, error) {
	t, err := requireShape(operand, "compute")
	if err != nil {
		return Value{}, err
	}

	switch op {
	case ir.DotProduct:
		if t.PairSplit == 0 {
			return Value{}, fmt.Errorf("compute dot-product: operand is not an access-cartesian-product")
		}
		left := t.Dims[t.AccessAxis : t.AccessAxis+t.PairSplit]
		right := t.Dims[t.AccessAxis+t.PairSplit:]
		if len(left) == 0 || len(right) == 0 || left[len(left)-1] != right[0] {
			return Value{}, fmt.Errorf("compute dot-product: contraction dims %v / %v do not agree", left, right)
		}
		dims := append(append(append([]int64(nil), t.BatchDims()...), left[:len(left)-1]...), right[1:]...)
		return Value{Type: Type{Kind: ShapeType, AccessAxis: len(t.BatchDims()), Dims: dims, DType: t.DType}}, nil

	case ir.ElementwiseAdd, ir.ElementwiseMul, ir.ElementwiseDiv:
		if t.PairSplit == 0 {
			return Value{}, fmt.Errorf("compute %s: operand is not an access-cartesian-product", op)
		}
		left := t.Dims[t.AccessAxis : t.AccessAxis+t.PairSplit]
		right := t.Dims[t.AccessAxis+t.PairSplit:]
		if !dimsEqual(left, right) {
			return Value{}, fmt.Errorf("compute %s: item shapes %v / %v differ", op, left, right)
		}
		dims := append(append([]int64(nil), t.BatchDims()...), left...)
		return Value{Type: Type{Kind: ShapeType, AccessAxis: len(t.BatchDims()), Dims: dims, DType: t.DType}}, nil

	case ir.ReduceSum, ir.ReduceMax, ir.ReduceMean:
		item := t.ItemDims()
		if len(item) == 0 {
			return Value{}, fmt.Errorf("compute %s: operand has no item dims to reduce", op)
		}
		dims := append(append([]int64(nil), t.BatchDims()...), item[:len(item)-1]...)
		return Value{Type: Type{Kind: ShapeType, AccessAxis: len(t.BatchDims()), Dims: dims, DType: t.DType}}, nil

	case ir.Negative, ir.Relu, ir.Sqrt, ir.Softmax:
		return Value{Type: t}, nil
	}

	return Value{}, fmt.Errorf("compute: unhandled op %s", op)
}

// makeSystolicArray implements "systolic-array R C activations weights":
// activations must reduce to [..., R] and weights to [R, C]; the output
// is the activations' batch dims extended with [C] (spec §4.D).
func makeSystolicArray(r, c int, activations, weights Value) (Value, error) {
	ta, err := requireShape(activations, "systolic-array")
	if err != nil {
		return Value{}, err
	}
	tw, err := requireShape(weights, "systolic-array")
	if err != nil {
		return Value{}, err
	}
	aItem := ta.ItemDims()
	if len(aItem) == 0 || aItem[len(aItem)-1] != int64(r) {
		return Value{}, fmt.Errorf("systolic-array: activations item dims %v do not end in R=%d", aItem, r)
	}
	wItem := tw.ItemDims()
	if len(wItem) != 2 || wItem[0] != int64(r) || wItem[1] != int64(c) {
		return Value{}, fmt.Errorf("systolic-array: weights item dims %v are not [R=%d, C=%d]", wItem, r, c)
	}
	dims := append(append([]int64(nil), ta.BatchDims()...), int64(c))
	return Value{Type: Type{
		Kind:       ShapeType,
		AccessAxis: len(ta.BatchDims()),
		Dims:       dims,
		DType:      promote(ta.DType, tw.DType),
	}}, nil
}

func makeGetAccessShape(operand Value) (Value, error) {
	t, err := requireShape(operand, "get-access-shape")
	if err != nil {
		return Value{}, err
	}
	items := make([]Type, len(t.Dims))
	for i := range items {
		items[i] = Type{Kind: ScalarKind, Scalar: I32}
	}
	return Value{Type: Type{Kind: ListKind, Items: items}, ConstShape: append([]int64(nil), t.Dims...)}, nil
}

func makeTupleGetItem(tuple, indexV Value) (Value, error) {
	if tuple.Type.Kind != TupleKind {
		return Value{}, fmt.Errorf("tuple-get-item: expected a tuple")
	}
	idx, err := requireConstInt(indexV, "tuple-get-item index")
	if err != nil {
		return Value{}, err
	}
	if idx < 0 || idx >= int64(len(tuple.Type.Items)) {
		return Value{}, fmt.Errorf("tuple-get-item: index %d out of range for %d-tuple", idx, len(tuple.Type.Items))
	}
	return Value{Type: tuple.Type.Items[idx]}, nil
}
