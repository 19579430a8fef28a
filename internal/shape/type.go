package shape

// Kind distinguishes the variants of the analysis's Type component
// (spec §3 "Analysis value").
type Kind uint8

const (
	// NotAType marks an e-class whose e-nodes disagree irreconcilably, or
	// whose well-formedness could not be established. Classes with this
	// type are excluded from extraction but never deleted (spec §3, §4.D).
	NotAType Kind = iota
	ShapeType
	ListKind
	TupleKind
	ScalarKind
)

// Type is the shape/dtype half of an e-class's analysis value.
type Type struct {
	Kind Kind

	// ShapeType
	AccessAxis int
	Dims       []int64
	DType      DType

	// PairSplit marks a ShapeType produced by access-cartesian-product:
	// Dims[AccessAxis:PairEnd] is the left operand's item shape and
	// Dims[PairEnd:] is the right operand's, where PairEnd = AccessAxis +
	// PairSplit. Zero means "not a paired access term" — the ordinary
	// case for every other structural node. This lets compute rules
	// recover the two item shapes a cartesian product joined without
	// inventing a separate tuple-of-accesses type (spec §4.D only
	// specifies dot-product's *resulting* shape, not the intermediate
	// representation; this is the bookkeeping needed to get there).
	PairSplit int

	// ScalarKind
	Scalar DType

	// ListKind / TupleKind
	Items []Type
}

// Rank returns the number of dimensions of a ShapeType, or -1 otherwise.
func (t Type) Rank() int {
	if t.Kind != ShapeType {
		return -1
	}
	return len(t.Dims)
}

// BatchDims returns the dims before the access axis.
func (t Type) BatchDims() []int64 {
	if t.Kind != ShapeType {
		return nil
	}
	return t.Dims[:t.AccessAxis]
}

// ItemDims returns the dims at and after the access axis.
func (t Type) ItemDims() []int64 {
	if t.Kind != ShapeType {
		return nil
	}
	return t.Dims[t.AccessAxis:]
}

// equalShape compares two Type values structurally, used by the meet
// operation to detect whether two e-nodes' independently inferred types
// actually agree.
func equalShape(a, b Type) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case ShapeType:
		if a.AccessAxis != b.AccessAxis || a.DType != b.DType || len(a.Dims) != len(b.Dims) {
			return false
		}
		for i := range a.Dims {
			if a.Dims[i] != b.Dims[i] {
				return false
			}
		}
		return true
	case ScalarKind:
		return a.Scalar == b.Scalar
	case ListKind, TupleKind:
		if len(a.Items) != len(b.Items) {
			return false
		}
		for i := range a.Items {
			if !equalShape(a.Items[i], b.Items[i]) {
				return false
			}
		}
		return true
	case NotAType:
		return true
	default:
		return false
	}
}

func dimsEqual(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func product(dims []int64) int64 {
	p := int64(1)
	for _, d := range dims {
		p *= d
	}
	return p
}
