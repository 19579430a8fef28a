// Package ir defines glenside's tensor intermediate representation: the
// closed set of operator heads of spec §3, their arities, and the boxed
// Term tree used to build programs before they are inserted into an
// e-graph and to hold terms extracted back out of one.
package ir

import "glenside/internal/sym"

// Kind is the tag of a tensor IR node, spanning every operator-head
// family in spec §3.
type Kind uint8

const (
	// Shape/access literals
	KindNum Kind = iota
	KindShape // "(shape 1 2 3)": a tuple of dims
	KindList  // "(list 1 0)": an axis/permutation list; structurally identical to KindShape

	// Tensor literals
	KindTensor // a symbolic tensor reference; shape/dtype come from the e-graph's ShapeEnv

	// Structural
	KindAccess
	KindAccessTranspose
	KindAccessReshape
	KindAccessFlatten
	KindAccessSlice
	KindAccessConcatenate
	KindAccessBroadcast
	KindAccessInsertAxis
	KindAccessSqueeze
	KindAccessPad
	KindAccessWindows
	KindAccessCartesianProduct

	// Compute
	KindCompute

	// Atoms
	KindSystolicArray

	// Control
	KindGetAccessShape
	KindConstructTuple
	KindTupleGetItem
)

// ComputeOp is the closed enumeration of compute operators (spec §3).
type ComputeOp uint8

const (
	DotProduct ComputeOp = iota
	ReduceSum
	ReduceMax
	ReduceMean
	ElementwiseAdd
	ElementwiseMul
	ElementwiseDiv
	Negative
	Relu
	Sqrt
	Softmax
)

func (op ComputeOp) String() string {
	switch op {
	case DotProduct:
		return "dot-product"
	case ReduceSum:
		return "reduce-sum"
	case ReduceMax:
		return "reduce-max"
	case ReduceMean:
		return "reduce-mean"
	case ElementwiseAdd:
		return "elementwise-add"
	case ElementwiseMul:
		return "elementwise-mul"
	case ElementwiseDiv:
		return "elementwise-div"
	case Negative:
		return "negative"
	case Relu:
		return "relu"
	case Sqrt:
		return "sqrt"
	case Softmax:
		return "softmax"
	default:
		return "<unknown-compute-op>"
	}
}

// ComputeOpByName resolves a compute op by its textual IR spelling.
func ComputeOpByName(name string) (ComputeOp, bool) {
	for op := DotProduct; op <= Softmax; op++ {
		if op.String() == name {
			return op, true
		}
	}
	return 0, false
}

// Head identifies an operator and any scalar parameters embedded directly
// in the node rather than carried as children: a NumLit's value, a tensor
// reference's symbol, a compute node's op, or a systolic array's fixed
// R x C dimensions (spec §3: "Atoms: systolic-array <R> <C>, parameterised
// by two positive integer literals"). Two nodes with equal Head and
// pairwise-equal children are the same e-node (spec §3 "E-node").
type Head struct {
	Kind   Kind
	Num    int64      // KindNum
	Tensor sym.Symbol // KindTensor
	Op     ComputeOp  // KindCompute
	R, C   int        // KindSystolicArray
}

// Name returns the textual IR head name used by the printer and grammar.
func (h Head) Name() string {
	switch h.Kind {
	case KindShape:
		return "shape"
	case KindList:
		return "list"
	case KindAccess:
		return "access"
	case KindAccessTranspose:
		return "access-transpose"
	case KindAccessReshape:
		return "access-reshape"
	case KindAccessFlatten:
		return "access-flatten"
	case KindAccessSlice:
		return "access-slice"
	case KindAccessConcatenate:
		return "access-concatenate"
	case KindAccessBroadcast:
		return "access-broadcast"
	case KindAccessInsertAxis:
		return "access-insert-axis"
	case KindAccessSqueeze:
		return "access-squeeze"
	case KindAccessPad:
		return "access-pad"
	case KindAccessWindows:
		return "access-windows"
	case KindAccessCartesianProduct:
		return "access-cartesian-product"
	case KindCompute:
		return "compute"
	case KindSystolicArray:
		return "systolic-array"
	case KindGetAccessShape:
		return "get-access-shape"
	case KindConstructTuple:
		return "construct-tuple"
	case KindTupleGetItem:
		return "tuple-get-item"
	default:
		return "<unknown>"
	}
}

// Arity returns the fixed number of children a head requires, or -1 for
// the handful of variadic heads (shape/list literals, construct-tuple).
func (h Head) Arity() int {
	switch h.Kind {
	case KindNum, KindTensor:
		return 0
	case KindShape, KindList, KindConstructTuple:
		return -1
	case KindAccessFlatten, KindCompute, KindGetAccessShape:
		return 1
	case KindAccess, KindAccessTranspose, KindAccessReshape,
		KindAccessBroadcast, KindAccessInsertAxis, KindAccessSqueeze,
		KindAccessCartesianProduct, KindSystolicArray, KindTupleGetItem:
		return 2
	case KindAccessConcatenate, KindAccessWindows:
		return 3
	case KindAccessSlice, KindAccessPad:
		return 4
	default:
		return -1
	}
}
