package shape

// Value is the full per-e-class analysis value: a Type plus, when the
// e-class denotes a compile-time constant, its folded value
// (spec §3 "Analysis value").
type Value struct {
	Type Type

	// ConstInt holds the folded integer value of a KindNum class.
	ConstInt *int64

	// ConstShape holds the folded dims of a KindShape/KindList class all
	// of whose elements are themselves constant.
	ConstShape []int64
}

// NotATypeValue is the bottom-ish "ill-typed" marker value.
func NotATypeValue() Value {
	return Value{Type: Type{Kind: NotAType}}
}

// Equal reports whether two values carry the same type and constant facts.
func (v Value) Equal(other Value) bool {
	if !equalShape(v.Type, other.Type) {
		return false
	}
	if (v.ConstInt == nil) != (other.ConstInt == nil) {
		return false
	}
	if v.ConstInt != nil && *v.ConstInt != *other.ConstInt {
		return false
	}
	return dimsEqual(v.ConstShape, other.ConstShape)
}

func scalarInt(v int64) Value {
	return Value{Type: Type{Kind: ScalarKind, Scalar: I32}, ConstInt: &v}
}
