package shape

// Merge computes the lattice meet of two analysis values: a value that is
// "less than or equal to" both, plus whether either input was strictly
// greater than the result (spec §3 "merge(a, b) operation returns a new
// value ≤ both and sets a flag indicating whether either was strict").
//
// egraph.Union calls Merge whenever two e-classes are unioned and stores
// the merged value. It discards the strict flag: neither Union nor
// egraph.Rebuild re-runs Make on the merged class's parents, so a parent's
// stored value is not recomputed when a child class's value changes.
func Merge(a, b Value) (merged Value, strict bool) {
	if a.Type.Kind == NotAType && b.Type.Kind == NotAType {
		return NotATypeValue(), false
	}
	if a.Type.Kind == NotAType || b.Type.Kind == NotAType {
		return NotATypeValue(), true
	}
	if !equalShape(a.Type, b.Type) {
		return NotATypeValue(), true
	}

	merged.Type = a.Type
	merged.ConstInt = mergeConstInt(a.ConstInt, b.ConstInt)
	merged.ConstShape = mergeConstShape(a.ConstShape, b.ConstShape)

	if merged.ConstInt == nil && (a.ConstInt != nil || b.ConstInt != nil) {
		// a and b disagreed on the constant; conflicting facts about the
		// same e-class make it ill-typed rather than silently dropping
		// the constant (constant folding must stay sound).
		return NotATypeValue(), true
	}
	if merged.ConstShape == nil && (a.ConstShape != nil || b.ConstShape != nil) {
		return NotATypeValue(), true
	}

	strict = !merged.Equal(a) || !merged.Equal(b)
	return merged, strict
}

func mergeConstInt(a, b *int64) *int64 {
	switch {
	case a == nil && b == nil:
		return nil
	case a == nil:
		return b
	case b == nil:
		return a
	case *a == *b:
		return a
	default:
		return nil
	}
}

func mergeConstShape(a, b []int64) []int64 {
	switch {
	case a == nil && b == nil:
		return nil
	case a == nil:
		return b
	case b == nil:
		return a
	case dimsEqual(a, b):
		return a
	default:
		return nil
	}
}
