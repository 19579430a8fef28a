package sym

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInternIsStable(t *testing.T) {
	tbl := NewTable()

	a := tbl.Intern("A")
	b := tbl.Intern("B")
	a2 := tbl.Intern("A")

	assert.Equal(t, a, a2)
	assert.NotEqual(t, a, b)
	assert.Equal(t, "A", tbl.Name(a))
	assert.Equal(t, "B", tbl.Name(b))
}

func TestZeroSymbolReserved(t *testing.T) {
	tbl := NewTable()
	assert.Equal(t, "", tbl.Name(0))
	assert.NotEqual(t, Symbol(0), tbl.Intern("x"))
}

func TestLenCountsReservedEntry(t *testing.T) {
	tbl := NewTable()
	assert.Equal(t, 1, tbl.Len())
	tbl.Intern("x")
	tbl.Intern("y")
	assert.Equal(t, 3, tbl.Len())
}
