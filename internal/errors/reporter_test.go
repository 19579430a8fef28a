package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorReporterFormatsShapeMismatch(t *testing.T) {
	source := `(systolic-array 16 32
  (access A 1)
  (access B 0))`

	reporter := NewErrorReporter("term.glen", source)

	err := NewSemanticError(ErrorShapeMismatch, "operand B has last dim 7, expected 16", Position{Line: 3, Column: 3}).
		WithSuggestion("introduce an access-reshape to align the contraction dimension").
		WithNote("systolic-array 16 32 requires shapes reducible to [..., 16] and [16, 32]").
		Build()

	formatted := reporter.FormatError(err)

	assert.Contains(t, formatted, "error["+ErrorShapeMismatch+"]")
	assert.Contains(t, formatted, "term.glen:3:3")
	assert.Contains(t, formatted, "help")
	assert.Contains(t, formatted, "note:")
}

func TestBudgetExceededIsNotFatal(t *testing.T) {
	err := &BudgetExceeded{Kind: NodeLimit}
	assert.Equal(t, "budget exceeded: NodeLimit", err.Error())
}

func TestExtractFailureMessage(t *testing.T) {
	err := NewExtractFailure(42)
	assert.Contains(t, err.Error(), "class 42")
	assert.Contains(t, err.Error(), "no typed representative")
}

func TestCategoryRanges(t *testing.T) {
	assert.Equal(t, "parse", Category(ErrorUnexpectedToken))
	assert.Equal(t, "type", Category(ErrorShapeMismatch))
	assert.Equal(t, "extract", Category(ErrorNoTypedRepresentative))
	assert.Equal(t, "internal", Category(ErrorInternalInvariantViolation))
}
