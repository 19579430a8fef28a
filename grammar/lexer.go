package grammar

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// TermLexer tokenizes the textual tensor IR (spec §6): parenthesized
// prefix s-expressions of hyphenated operator names such as
// "access-transpose" and "dot-product", bare identifiers for tensor
// references, and decimal integer literals.
var TermLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{"Comment", `//[^\n]*`, nil},
		{"Ident", `[a-zA-Z_][a-zA-Z0-9_-]*`, nil},
		{"Integer", `[0-9]+`, nil},
		{"Punctuation", `[()]`, nil},
		{"Whitespace", `[ \t\r\n]+`, nil},
	},
})
