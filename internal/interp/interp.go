package interp

import (
	"fmt"

	"glenside/internal/ir"
)

// Interpret walks a boxed term and evaluates it against env's tensor
// bindings, returning the concrete array (or, for an
// access-cartesian-product, the pair of arrays) it denotes.
//
// Interpret operates on the ir.Term tree built before insertion into an
// e-graph, or one returned by extract.Extractor.Extract — it never reads
// an e-graph directly. This is deliberately the same boundary
// shape.Make sits on for static analysis: one function per concern,
// walking the same tree shape, neither depending on the other.
func Interpret(t *ir.Term, env *Env) (Value, error) {
	switch t.Head.Kind {
	case ir.KindTensor:
		d, ok := env.lookup(t.Head.Tensor)
		if !ok {
			return Value{}, fmt.Errorf("interp: tensor %d has no binding in this environment", t.Head.Tensor)
		}
		return Value{Dense: d, AccessAxis: 0}, nil

	case ir.KindAccess:
		operand, err := Interpret(t.Children[0], env)
		if err != nil {
			return Value{}, err
		}
		k, err := evalInt(t.Children[1])
		if err != nil {
			return Value{}, err
		}
		operand.AccessAxis = int(k)
		return operand, nil

	case ir.KindAccessTranspose:
		return interpretTranspose(t, env)
	case ir.KindAccessReshape:
		return interpretReshape(t, env)
	case ir.KindAccessFlatten:
		return interpretFlatten(t, env)
	case ir.KindAccessSlice:
		return interpretSlice(t, env)
	case ir.KindAccessConcatenate:
		return interpretConcatenate(t, env)
	case ir.KindAccessBroadcast:
		return interpretBroadcast(t, env)
	case ir.KindAccessInsertAxis:
		return interpretInsertAxis(t, env)
	case ir.KindAccessSqueeze:
		return interpretSqueeze(t, env)
	case ir.KindAccessPad:
		return interpretPad(t, env)
	case ir.KindAccessWindows:
		return interpretWindows(t, env)
	case ir.KindAccessCartesianProduct:
		return interpretCartesianProduct(t, env)

	case ir.KindCompute:
		return interpretCompute(t, env)
	case ir.KindSystolicArray:
		return interpretSystolicArray(t, env)

	case ir.KindNum, ir.KindShape, ir.KindList, ir.KindGetAccessShape,
		ir.KindConstructTuple, ir.KindTupleGetItem:
		return Value{}, fmt.Errorf("interp: %s is a shape/control construct, not a tensor-data computation", t.Head.Name())
	}
	return Value{}, fmt.Errorf("interp: unhandled head kind %d", t.Head.Kind)
}

func evalInt(t *ir.Term) (int64, error) {
	if t.Head.Kind != ir.KindNum {
		return 0, fmt.Errorf("interp: expected a numeric literal, got %s", t.Head.Name())
	}
	return t.Head.Num, nil
}

func evalInts(t *ir.Term) ([]int64, error) {
	if t.Head.Kind != ir.KindShape && t.Head.Kind != ir.KindList {
		return nil, fmt.Errorf("interp: expected a shape/list literal, got %s", t.Head.Name())
	}
	out := make([]int64, len(t.Children))
	for i, c := range t.Children {
		n, err := evalInt(c)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

func toInts(xs []int64) []int {
	out := make([]int, len(xs))
	for i, x := range xs {
		out[i] = int(x)
	}
	return out
}

func interpretTranspose(t *ir.Term, env *Env) (Value, error) {
	operand, err := Interpret(t.Children[0], env)
	if err != nil {
		return Value{}, err
	}
	perm, err := evalInts(t.Children[1])
	if err != nil {
		return Value{}, err
	}
	dims := operand.shape()
	out := transposeData(operand.data(), dims, toInts(perm))
	newDims := make([]int, len(dims))
	for i, p := range perm {
		newDims[i] = dims[p]
	}
	return Value{Dense: newDense(newDims, out), AccessAxis: operand.AccessAxis}, nil
}

func interpretReshape(t *ir.Term, env *Env) (Value, error) {
	operand, err := Interpret(t.Children[0], env)
	if err != nil {
		return Value{}, err
	}
	dims, err := evalInts(t.Children[1])
	if err != nil {
		return Value{}, err
	}
	// Row-major reshape never reorders elements, so the backing data is
	// reused as-is; only the shape metadata changes.
	return Value{Dense: newDense(toInts(dims), operand.data()), AccessAxis: operand.AccessAxis}, nil
}

func interpretFlatten(t *ir.Term, env *Env) (Value, error) {
	operand, err := Interpret(t.Children[0], env)
	if err != nil {
		return Value{}, err
	}
	flat := append(append([]int(nil), operand.batchDims()...), product(operand.itemDims()))
	return Value{Dense: newDense(flat, operand.data()), AccessAxis: operand.AccessAxis}, nil
}

func interpretSlice(t *ir.Term, env *Env) (Value, error) {
	operand, err := Interpret(t.Children[0], env)
	if err != nil {
		return Value{}, err
	}
	axis, err := evalInt(t.Children[1])
	if err != nil {
		return Value{}, err
	}
	low, err := evalInt(t.Children[2])
	if err != nil {
		return Value{}, err
	}
	high, err := evalInt(t.Children[3])
	if err != nil {
		return Value{}, err
	}
	dims := operand.shape()
	out := sliceData(operand.data(), dims, int(axis), int(low), int(high))
	newDims := append([]int(nil), dims...)
	newDims[axis] = int(high - low)
	return Value{Dense: newDense(newDims, out), AccessAxis: operand.AccessAxis}, nil
}

func interpretConcatenate(t *ir.Term, env *Env) (Value, error) {
	a, err := Interpret(t.Children[0], env)
	if err != nil {
		return Value{}, err
	}
	b, err := Interpret(t.Children[1], env)
	if err != nil {
		return Value{}, err
	}
	axis, err := evalInt(t.Children[2])
	if err != nil {
		return Value{}, err
	}
	aDims, bDims := a.shape(), b.shape()
	out := concatenateData(a.data(), aDims, b.data(), bDims, int(axis))
	newDims := append([]int(nil), aDims...)
	newDims[axis] = aDims[axis] + bDims[axis]
	return Value{Dense: newDense(newDims, out), AccessAxis: a.AccessAxis}, nil
}

func interpretBroadcast(t *ir.Term, env *Env) (Value, error) {
	operand, err := Interpret(t.Children[0], env)
	if err != nil {
		return Value{}, err
	}
	dims, err := evalInts(t.Children[1])
	if err != nil {
		return Value{}, err
	}
	newDims := toInts(dims)
	out := broadcastData(operand.data(), operand.shape(), newDims)
	return Value{Dense: newDense(newDims, out), AccessAxis: operand.AccessAxis}, nil
}

func interpretInsertAxis(t *ir.Term, env *Env) (Value, error) {
	operand, err := Interpret(t.Children[0], env)
	if err != nil {
		return Value{}, err
	}
	axis, err := evalInt(t.Children[1])
	if err != nil {
		return Value{}, err
	}
	dims := operand.shape()
	newDims := make([]int, 0, len(dims)+1)
	newDims = append(newDims, dims[:axis]...)
	newDims = append(newDims, 1)
	newDims = append(newDims, dims[axis:]...)
	accessAxis := operand.AccessAxis
	if int(axis) <= accessAxis {
		accessAxis++
	}
	return Value{Dense: newDense(newDims, operand.data()), AccessAxis: accessAxis}, nil
}

func interpretSqueeze(t *ir.Term, env *Env) (Value, error) {
	operand, err := Interpret(t.Children[0], env)
	if err != nil {
		return Value{}, err
	}
	axis, err := evalInt(t.Children[1])
	if err != nil {
		return Value{}, err
	}
	dims := operand.shape()
	newDims := append(append([]int(nil), dims[:axis]...), dims[axis+1:]...)
	accessAxis := operand.AccessAxis
	if int(axis) < accessAxis {
		accessAxis--
	}
	return Value{Dense: newDense(newDims, operand.data()), AccessAxis: accessAxis}, nil
}

func interpretPad(t *ir.Term, env *Env) (Value, error) {
	operand, err := Interpret(t.Children[0], env)
	if err != nil {
		return Value{}, err
	}
	axis, err := evalInt(t.Children[1])
	if err != nil {
		return Value{}, err
	}
	before, err := evalInt(t.Children[2])
	if err != nil {
		return Value{}, err
	}
	after, err := evalInt(t.Children[3])
	if err != nil {
		return Value{}, err
	}
	dims := operand.shape()
	out := padData(operand.data(), dims, int(axis), int(before), int(after))
	newDims := append([]int(nil), dims...)
	newDims[axis] += int(before + after)
	return Value{Dense: newDense(newDims, out), AccessAxis: operand.AccessAxis}, nil
}

func interpretWindows(t *ir.Term, env *Env) (Value, error) {
	operand, err := Interpret(t.Children[0], env)
	if err != nil {
		return Value{}, err
	}
	window, err := evalInts(t.Children[1])
	if err != nil {
		return Value{}, err
	}
	stride, err := evalInts(t.Children[2])
	if err != nil {
		return Value{}, err
	}
	dims := operand.shape()
	w, s := toInts(window), toInts(stride)
	counts := make([]int, len(dims))
	for i := range dims {
		counts[i] = (dims[i]-w[i])/s[i] + 1
	}
	out := windowsData(operand.data(), dims, w, s, counts)
	newDims := append(append([]int(nil), counts...), w...)
	return Value{Dense: newDense(newDims, out), AccessAxis: len(dims)}, nil
}

func interpretCartesianProduct(t *ir.Term, env *Env) (Value, error) {
	a, err := Interpret(t.Children[0], env)
	if err != nil {
		return Value{}, err
	}
	b, err := Interpret(t.Children[1], env)
	if err != nil {
		return Value{}, err
	}
	return Value{AccessAxis: len(a.batchDims()) + len(b.batchDims()), Left: &a, Right: &b}, nil
}

func interpretSystolicArray(t *ir.Term, env *Env) (Value, error) {
	act, err := Interpret(t.Children[0], env)
	if err != nil {
		return Value{}, err
	}
	w, err := Interpret(t.Children[1], env)
	if err != nil {
		return Value{}, err
	}
	rightBatch := product(w.batchDims())
	if rightBatch != 1 {
		return Value{}, fmt.Errorf("interp: systolic-array weights must carry no batch dims, got %v", w.batchDims())
	}
	leftBatch := product(act.batchDims())
	aItem := act.itemDims()
	rows := product(aItem[:len(aItem)-1])
	r := t.Head.R
	c := t.Head.C
	out := batchedMatMul(act.data(), leftBatch, rows, r, w.data(), rightBatch, c)
	outDims := append(append([]int(nil), act.batchDims()...), c)
	return Value{Dense: newDense(outDims, out), AccessAxis: len(act.batchDims())}, nil
}
