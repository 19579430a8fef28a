package errors

import (
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// ParseError reports malformed textual IR. Surfaced to the caller at
// parse time (spec §7).
type ParseError struct {
	Position Position
	Expected string
	cause    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %d:%d: expected %s", e.Position.Line, e.Position.Column, e.Expected)
}

func (e *ParseError) Unwrap() error { return e.cause }

// NewParseError wraps a scan/grammar failure with a stack trace.
func NewParseError(pos Position, expected string, cause error) *ParseError {
	return &ParseError{Position: pos, Expected: expected, cause: pkgerrors.WithStack(cause)}
}

// TypeError reports a well-formedness violation discovered while adding a
// node to the e-graph (spec §3, §7).
type TypeError struct {
	Node   string // textual form of the offending node
	Reason string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("type error in %s: %s", e.Node, e.Reason)
}

// NewTypeError constructs a TypeError, the companion CompilerError for
// diagnostic rendering, and attaches a stack trace via pkg/errors.
func NewTypeError(node, reason, code string, pos Position) (*TypeError, error) {
	te := &TypeError{Node: node, Reason: reason}
	return te, pkgerrors.WithStack(NewSemanticError(code, te.Error(), pos).Build())
}

// BudgetKind enumerates why a saturation run stopped short of Saturated.
type BudgetKind string

const (
	NodeLimit BudgetKind = "NodeLimit"
	TimeLimit BudgetKind = "TimeLimit"
	IterLimit BudgetKind = "IterLimit"
	Cancelled BudgetKind = "Cancelled"
)

// BudgetExceeded is not fatal: the caller inspects it and decides (spec §7).
type BudgetExceeded struct {
	Kind BudgetKind
}

func (e *BudgetExceeded) Error() string {
	return fmt.Sprintf("budget exceeded: %s", e.Kind)
}

// ExtractFailure reports that no finite-cost, well-typed e-node exists in
// a class the extractor needed to walk through.
type ExtractFailure struct {
	Class  int
	Reason string
}

func (e *ExtractFailure) Error() string {
	return fmt.Sprintf("extraction failed at class %d: %s", e.Class, e.Reason)
}

// NewExtractFailure builds an ExtractFailure wrapped with a stack trace.
func NewExtractFailure(class int) error {
	return pkgerrors.WithStack(&ExtractFailure{Class: class, Reason: "no typed representative"})
}

// InternalInvariantViolation indicates a bug in glenside itself: a hash-cons
// that is not a bijection after rebuild, a congruence violation, an
// analysis that regressed. Panics in debug builds; callers that catch it
// should treat the e-graph as corrupted.
type InternalInvariantViolation struct {
	Invariant string
	Detail    string
}

func (e *InternalInvariantViolation) Error() string {
	return fmt.Sprintf("internal invariant violated (%s): %s", e.Invariant, e.Detail)
}

// Panic raises an InternalInvariantViolation. Call sites use this instead
// of a bare panic so the message is structured and greppable by code.
func Panic(invariant, detail string) {
	panic(pkgerrors.WithStack(&InternalInvariantViolation{Invariant: invariant, Detail: detail}))
}
