package interp

import gtensor "gorgonia.org/tensor"

// Value is the runtime counterpart of shape.Value: a concrete array plus
// the access-axis split, and — for the result of an
// access-cartesian-product — the two paired operands kept apart rather
// than materialized into one array. This mirrors shape.Type.PairSplit:
// the interpreter never actually forms the cartesian product as a dense
// tensor, since the only things that consume it (compute dot-product and
// the elementwise family) need the two sides separately.
type Value struct {
	Dense      *gtensor.Dense
	AccessAxis int

	Left, Right *Value // non-nil only for an access-cartesian-product result
}

func (v Value) paired() bool { return v.Left != nil && v.Right != nil }

func (v Value) shape() []int {
	if v.Dense == nil {
		return nil
	}
	return append([]int(nil), []int(v.Dense.Shape())...)
}

func (v Value) batchDims() []int { return v.shape()[:v.AccessAxis] }
func (v Value) itemDims() []int  { return v.shape()[v.AccessAxis:] }

func (v Value) data() []float32 {
	return v.Dense.Data().([]float32)
}

func newDense(dims []int, data []float32) *gtensor.Dense {
	if len(dims) == 0 {
		dims = []int{1}
	}
	return gtensor.New(gtensor.WithShape(dims...), gtensor.WithBacking(data))
}

func product(dims []int) int {
	p := 1
	for _, d := range dims {
		p *= d
	}
	return p
}
