// Package errors defines glenside's diagnostic taxonomy and its
// caret-style renderer.
//
// Error code ranges:
// E0001-E0099: textual IR parse errors
// E0100-E0199: well-formedness / type errors raised by EGraph.Add
// E0200-E0299: extraction failures
// E0900-E0999: internal invariant violations
package errors

const (
	// ErrorUnexpectedToken: the scanner or grammar rejected a token.
	ErrorUnexpectedToken = "E0001"

	// ErrorUnterminatedList: a "(" was never closed.
	ErrorUnterminatedList = "E0002"

	// ErrorBadLiteral: a numeric or shape literal could not be parsed.
	ErrorBadLiteral = "E0003"

	// ErrorArityMismatch: a node's head requires a fixed arity that its
	// argument list does not satisfy.
	ErrorArityMismatch = "E0100"

	// ErrorBadAccessIndex: an `access k` index is out of [0, rank].
	ErrorBadAccessIndex = "E0101"

	// ErrorBadPermutation: an `access-transpose` axis list is not a
	// permutation of [0, rank).
	ErrorBadPermutation = "E0102"

	// ErrorElementCountMismatch: an `access-reshape` changes the element
	// count of one side of the access-axis split.
	ErrorElementCountMismatch = "E0103"

	// ErrorShapeMismatch: an operator's operand shapes are incompatible
	// (e.g. systolic-array operand shapes not reducible to [*, R] / [R, C]).
	ErrorShapeMismatch = "E0104"

	// ErrorUnknownHead: an operator head is not in the closed enumeration
	// for its family (e.g. an unrecognized compute op).
	ErrorUnknownHead = "E0105"

	// ErrorNoTypedRepresentative: extraction found no finite-cost e-node
	// in a required class.
	ErrorNoTypedRepresentative = "E0200"

	// ErrorInternalInvariantViolation: a bug, not a user-facing mistake.
	ErrorInternalInvariantViolation = "E0900"
)

// Description returns a human-readable description of a diagnostic code,
// used by the reporter when no more specific message is available.
func Description(code string) string {
	switch code {
	case ErrorUnexpectedToken:
		return "the textual IR scanner found a character or token it could not classify"
	case ErrorUnterminatedList:
		return "a parenthesized term was never closed"
	case ErrorBadLiteral:
		return "a numeric or shape literal is malformed"
	case ErrorArityMismatch:
		return "an operator was applied to the wrong number of operands"
	case ErrorBadAccessIndex:
		return "an access axis index is out of range for its operand's rank"
	case ErrorBadPermutation:
		return "a transpose axis list is not a permutation of the operand's rank"
	case ErrorElementCountMismatch:
		return "a reshape changes the element count on one side of the access axis"
	case ErrorShapeMismatch:
		return "operand shapes are not compatible with this operator"
	case ErrorUnknownHead:
		return "operator head is not a member of its family's closed enumeration"
	case ErrorNoTypedRepresentative:
		return "no e-node with finite cost and a valid type exists in this e-class"
	case ErrorInternalInvariantViolation:
		return "an internal invariant was violated; this indicates a bug in glenside itself"
	default:
		return "unknown diagnostic code"
	}
}

// Category groups a code into the coarse bucket used by the reporter's
// gutter label.
func Category(code string) string {
	switch {
	case code >= "E0001" && code < "E0100":
		return "parse"
	case code >= "E0100" && code < "E0200":
		return "type"
	case code >= "E0200" && code < "E0300":
		return "extract"
	case code >= "E0900":
		return "internal"
	default:
		return "unknown"
	}
}
