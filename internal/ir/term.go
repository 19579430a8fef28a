package ir

import (
	"glenside/internal/sym"
)

// EClassId identifies an e-class. Defined in ir rather than egraph so
// that Node (an e-graph-resident node) can reference it without an
// import cycle; egraph.EGraph is free to use it as a unionfind.Id.
type EClassId int

// Term is a boxed tensor IR tree, used outside the e-graph: building a
// program before insertion, printing, interpreting, and holding the
// result of extraction (spec §3 "boxed child nodes, outside the e-graph").
type Term struct {
	Head     Head
	Children []*Term
}

// Node is the hash-consed, e-graph-resident counterpart of Term: its
// children are canonical e-class ids rather than boxed subterms
// (spec §3 "E-node").
type Node struct {
	Head     Head
	Children []EClassId
}

// Num builds a numeric literal term.
func Num(v int64) *Term {
	return &Term{Head: Head{Kind: KindNum, Num: v}}
}

// Shape builds a "(shape d0 d1 ...)" literal term.
func Shape(dims ...int64) *Term {
	children := make([]*Term, len(dims))
	for i, d := range dims {
		children[i] = Num(d)
	}
	return &Term{Head: Head{Kind: KindShape}, Children: children}
}

// List builds a "(list i0 i1 ...)" literal term, used for axis
// permutations and similar integer sequences.
func List(items ...int64) *Term {
	children := make([]*Term, len(items))
	for i, v := range items {
		children[i] = Num(v)
	}
	return &Term{Head: Head{Kind: KindList}, Children: children}
}

// Tensor builds a symbolic tensor reference term.
func Tensor(name sym.Symbol) *Term {
	return &Term{Head: Head{Kind: KindTensor, Tensor: name}}
}

// Access builds "(access operand k)".
func Access(operand *Term, k int64) *Term {
	return &Term{Head: Head{Kind: KindAccess}, Children: []*Term{operand, Num(k)}}
}

// AccessTranspose builds "(access-transpose operand (list ...))".
func AccessTranspose(operand *Term, axes *Term) *Term {
	return &Term{Head: Head{Kind: KindAccessTranspose}, Children: []*Term{operand, axes}}
}

// AccessReshape builds "(access-reshape operand (shape ...))".
func AccessReshape(operand *Term, newShape *Term) *Term {
	return &Term{Head: Head{Kind: KindAccessReshape}, Children: []*Term{operand, newShape}}
}

// AccessFlatten builds "(access-flatten operand)".
func AccessFlatten(operand *Term) *Term {
	return &Term{Head: Head{Kind: KindAccessFlatten}, Children: []*Term{operand}}
}

// AccessSlice builds "(access-slice operand axis low high)".
func AccessSlice(operand *Term, axis, low, high int64) *Term {
	return &Term{Head: Head{Kind: KindAccessSlice}, Children: []*Term{operand, Num(axis), Num(low), Num(high)}}
}

// AccessConcatenate builds "(access-concatenate a b axis)".
func AccessConcatenate(a, b *Term, axis int64) *Term {
	return &Term{Head: Head{Kind: KindAccessConcatenate}, Children: []*Term{a, b, Num(axis)}}
}

// AccessBroadcast builds "(access-broadcast operand (shape ...))".
func AccessBroadcast(operand *Term, newShape *Term) *Term {
	return &Term{Head: Head{Kind: KindAccessBroadcast}, Children: []*Term{operand, newShape}}
}

// AccessInsertAxis builds "(access-insert-axis operand axis)".
func AccessInsertAxis(operand *Term, axis int64) *Term {
	return &Term{Head: Head{Kind: KindAccessInsertAxis}, Children: []*Term{operand, Num(axis)}}
}

// AccessSqueeze builds "(access-squeeze operand axis)".
func AccessSqueeze(operand *Term, axis int64) *Term {
	return &Term{Head: Head{Kind: KindAccessSqueeze}, Children: []*Term{operand, Num(axis)}}
}

// AccessPad builds "(access-pad operand axis before after)".
func AccessPad(operand *Term, axis, before, after int64) *Term {
	return &Term{Head: Head{Kind: KindAccessPad}, Children: []*Term{operand, Num(axis), Num(before), Num(after)}}
}

// AccessWindows builds "(access-windows operand (shape ...) (shape ...))".
func AccessWindows(operand, windowShape, stride *Term) *Term {
	return &Term{Head: Head{Kind: KindAccessWindows}, Children: []*Term{operand, windowShape, stride}}
}

// AccessCartesianProduct builds "(access-cartesian-product a b)".
func AccessCartesianProduct(a, b *Term) *Term {
	return &Term{Head: Head{Kind: KindAccessCartesianProduct}, Children: []*Term{a, b}}
}

// Compute builds "(compute <op> operand)".
func Compute(op ComputeOp, operand *Term) *Term {
	return &Term{Head: Head{Kind: KindCompute, Op: op}, Children: []*Term{operand}}
}

// SystolicArray builds "(systolic-array R C activations weights)".
func SystolicArray(r, c int, activations, weights *Term) *Term {
	return &Term{Head: Head{Kind: KindSystolicArray, R: r, C: c}, Children: []*Term{activations, weights}}
}

// GetAccessShape builds "(get-access-shape operand)".
func GetAccessShape(operand *Term) *Term {
	return &Term{Head: Head{Kind: KindGetAccessShape}, Children: []*Term{operand}}
}

// ConstructTuple builds "(construct-tuple t0 t1 ...)".
func ConstructTuple(items ...*Term) *Term {
	return &Term{Head: Head{Kind: KindConstructTuple}, Children: items}
}

// TupleGetItem builds "(tuple-get-item tuple index)".
func TupleGetItem(tuple *Term, index int64) *Term {
	return &Term{Head: Head{Kind: KindTupleGetItem}, Children: []*Term{tuple, Num(index)}}
}

// Equal performs a structural comparison, ignoring nothing: two terms are
// equal iff their heads and children are recursively equal. This is used
// by tests that need "structurally equal" rather than "prints the same".
func (t *Term) Equal(other *Term) bool {
	if t == nil || other == nil {
		return t == other
	}
	if t.Head != other.Head {
		return false
	}
	if len(t.Children) != len(other.Children) {
		return false
	}
	for i := range t.Children {
		if !t.Children[i].Equal(other.Children[i]) {
			return false
		}
	}
	return true
}
