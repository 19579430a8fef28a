// Package grammar parses and prints glenside's textual tensor IR: the
// parenthesized prefix s-expression surface syntax of spec §6, built with
// a participle grammar in the style of Kanso's own module/function
// grammar (stateful lexer, struct-tag productions, caret-style error
// reporting via fatih/color).
package grammar

import "github.com/alecthomas/participle/v2/lexer"

// Program is the parse result: a single top-level term.
type Program struct {
	Pos  lexer.Position
	Term *Node `@@`
}

// Node is one position in the surface grammar: a number, a bare
// identifier (a tensor or symbol reference), or a parenthesized form.
type Node struct {
	Pos    lexer.Position
	Number *string `  @Integer`
	Ident  *string `| @Ident`
	Form   *Form   `| "(" @@ ")"`
}

// Form is a parenthesized s-expression: a head identifier followed by
// zero or more argument nodes, e.g. "(access-transpose A (list 1 0))".
type Form struct {
	Pos  lexer.Position
	Head string  `@Ident`
	Args []*Node `@@*`
}
