package grammar

import (
	"strconv"
	"strings"

	"glenside/internal/ir"
	"glenside/internal/sym"
)

// Print implements spec §6's "print(Term) -> str": round-tripping a
// parsed term back to the textual IR exactly up to whitespace, the same
// guarantee Kanso's own module printer gave its pretty-printed source.
func Print(t *ir.Term, tbl *sym.Table) string {
	var b strings.Builder
	writeTerm(&b, t, tbl)
	return b.String()
}

func writeTerm(b *strings.Builder, t *ir.Term, tbl *sym.Table) {
	switch t.Head.Kind {
	case ir.KindNum:
		b.WriteString(strconv.FormatInt(t.Head.Num, 10))
	case ir.KindTensor:
		b.WriteString(tbl.Name(t.Head.Tensor))
	case ir.KindCompute:
		b.WriteString("(compute ")
		b.WriteString(t.Head.Op.String())
		b.WriteByte(' ')
		writeTerm(b, t.Children[0], tbl)
		b.WriteByte(')')
	case ir.KindSystolicArray:
		b.WriteString("(systolic-array ")
		b.WriteString(strconv.Itoa(t.Head.R))
		b.WriteByte(' ')
		b.WriteString(strconv.Itoa(t.Head.C))
		b.WriteByte(' ')
		writeTerm(b, t.Children[0], tbl)
		b.WriteByte(' ')
		writeTerm(b, t.Children[1], tbl)
		b.WriteByte(')')
	default:
		b.WriteByte('(')
		b.WriteString(t.Head.Name())
		for _, c := range t.Children {
			b.WriteByte(' ')
			writeTerm(b, c, tbl)
		}
		b.WriteByte(')')
	}
}
