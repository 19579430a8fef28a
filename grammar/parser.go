package grammar

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/fatih/color"

	"glenside/internal/errors"
	"glenside/internal/ir"
	"glenside/internal/sym"
)

var termParser = participle.MustBuild[Program](
	participle.Lexer(TermLexer),
	participle.Elide("Whitespace", "Comment"),
)

// Parse implements spec §6's "parse(str) -> Term": it parses a single
// textual tensor IR term and resolves its symbol references against tbl.
func Parse(src string, tbl *sym.Table) (*ir.Term, error) {
	prog, err := termParser.ParseString("", src)
	if err != nil {
		return nil, wrapParseError(src, err)
	}
	return Lower(prog, tbl)
}

// ParseFile reads path and parses its contents the same way as Parse.
func ParseFile(path string, tbl *sym.Table) (*ir.Term, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	prog, err := termParser.ParseString(path, string(source))
	if err != nil {
		return nil, wrapParseError(string(source), err)
	}
	return Lower(prog, tbl)
}

// wrapParseError adapts a participle grammar failure into glenside's own
// ParseError, then prints the teacher's caret-style rendering to stderr
// before returning the structured error to the caller (spec §7).
func wrapParseError(src string, err error) error {
	pe, ok := err.(participle.Error)
	if !ok {
		return errors.NewParseError(errors.Position{}, "a well-formed textual IR term", err)
	}
	reportParseError(src, pe)
	pos := pe.Position()
	return errors.NewParseError(errors.Position{Line: pos.Line, Column: pos.Column, Offset: pos.Offset}, pe.Message(), err)
}

// reportParseError prints a friendly caret-style parse error message, the
// same rendering Kanso's own parser used for its module/function grammar.
func reportParseError(src string, pe participle.Error) {
	pos := pe.Position()
	lines := strings.Split(src, "\n")
	if pos.Line <= 0 || pos.Line > len(lines) {
		color.Red("syntax error at unknown location: %s", pe)
		return
	}

	line := lines[pos.Line-1]
	caret := strings.Repeat(" ", pos.Column-1) + "^"

	color.Red("syntax error at line %d, column %d:", pos.Line, pos.Column)
	fmt.Fprintln(os.Stderr, line)
	color.HiRed(caret)
	fmt.Fprintf(os.Stderr, "-> %s\n", pe.Message())
}
