package syntax

import "ablac/report"

// Token represents a single lexical token.
type Token struct {
	// The kind of the token.  This must be one of the enumerated token kinds.
	Kind int

	// The string value of the token.  The value of a string token is its raw
	// content: the quotes are trimmed off but escapes and interpolations are
	// left untouched for the parser to process.
	Value string

	// The text span over which the token exists.
	Span *report.TextSpan
}

// Enumeration of token kinds.
const (
	TOK_FUN = iota
	TOK_CLASS
	TOK_EXTERN
	TOK_COMPILER
	TOK_RETURN

	TOK_PLUS
	TOK_MINUS
	TOK_STAR
	TOK_DIV

	TOK_EQ
	TOK_NEQ
	TOK_LT
	TOK_GT
	TOK_LTEQ
	TOK_GTEQ

	TOK_ASSIGN
	TOK_ARROW

	TOK_LPAREN
	TOK_RPAREN
	TOK_LBRACE
	TOK_RBRACE
	TOK_COMMA
	TOK_COLON
	TOK_SEMI
	TOK_HASH

	TOK_IDENT
	TOK_INTLIT
	TOK_STRINGLIT

	TOK_NEWLINE
	TOK_EOF
)

// tokenNames is used to produce readable parse errors.
var tokenNames = map[int]string{
	TOK_FUN:       "`fun`",
	TOK_CLASS:     "`class`",
	TOK_EXTERN:    "`extern`",
	TOK_COMPILER:  "`compiler`",
	TOK_RETURN:    "`return`",
	TOK_ASSIGN:    "`=`",
	TOK_ARROW:     "`->`",
	TOK_LPAREN:    "`(`",
	TOK_RPAREN:    "`)`",
	TOK_LBRACE:    "`{`",
	TOK_RBRACE:    "`}`",
	TOK_COMMA:     "`,`",
	TOK_COLON:     "`:`",
	TOK_IDENT:     "identifier",
	TOK_INTLIT:    "integer literal",
	TOK_STRINGLIT: "string literal",
	TOK_NEWLINE:   "newline",
	TOK_EOF:       "end of file",
}
