// Package shape implements glenside's e-class analysis (spec §3, §4.D):
// a bounded semilattice of tensor shape, dtype, and access-layout facts
// that is computed bottom-up by Make and joined on e-class merges by
// Merge. It is the "Type/shape analysis" component of the system table
// in spec §2.
package shape

// DType enumerates the element types glenside reasons about (spec §3).
type DType uint8

const (
	F32 DType = iota
	U8
	I8
	I32
)

func (d DType) String() string {
	switch d {
	case F32:
		return "f32"
	case U8:
		return "u8"
	case I8:
		return "i8"
	case I32:
		return "i32"
	default:
		return "<unknown-dtype>"
	}
}

// promote returns the dtype two operands of a binary compute op share
// after promotion: f32 dominates every integer dtype, and mismatched
// integer dtypes promote to i32 (this mirrors the "shared element type"
// language of spec §4.D without inventing a numeric-promotion lattice
// deeper than the spec asks for).
func promote(a, b DType) DType {
	if a == F32 || b == F32 {
		return F32
	}
	if a == b {
		return a
	}
	return I32
}
