package syntax

import (
	"ablac/ast"
	"ablac/report"
	"bufio"
	"fmt"
	"io"
)

// NOTE: All parsing functions (that are not utility/API functions) are
// commented with the EBNF notation of the grammar they parse.

// Parser is the parser for an Abla source file.  It is a recursive descent
// parser: all parsing functions assume that they begin with the parser
// centered on the first token of their production and must consume all tokens
// (including the last) of their production, leaving the parser on the next
// token.  Parsing errors are raised as panics and caught at the top of Parse.
// Parsers are created once per file.
type Parser struct {
	// ids is the source of node IDs for the created AST.
	ids *ast.IDSource

	// lexer is the Lexer this parser is using to lex the source file.
	lexer *Lexer

	// tok is the current token the parser is positioned on.
	tok *Token
}

// NewParser creates a new parser for the given source reader.
func NewParser(ids *ast.IDSource, r io.Reader) *Parser {
	return &Parser{
		ids:   ids,
		lexer: NewLexer(bufio.NewReader(r)),
	}
}

// Parse parses a whole file.  The name is the unit name recorded in the file
// and in any errors.
func (p *Parser) Parse(name string) (file *ast.File, err error) {
	defer report.CatchErrors(name, &err)

	// move the parser onto the first token
	p.next()

	// file = {decl}
	startSpan := p.tok.Span
	var decls []ast.Decl
	for p.newlines(); !p.got(TOK_EOF); p.newlines() {
		decls = append(decls, p.parseDecl())

		if !p.gotOneOf(TOK_NEWLINE, TOK_SEMI, TOK_EOF) {
			p.reject()
		}

		if p.got(TOK_SEMI) {
			p.next()
		}
	}

	return &ast.File{
		ASTBase: ast.NewASTBaseOver(p.ids, startSpan, p.tok.Span),
		Name:    name,
		Decls:   decls,
	}, nil
}

// FileParser adapts the parser to the compile service's parser interface.
type FileParser struct {
	ids *ast.IDSource
}

// NewFileParser creates a file parser allocating node IDs from ids.
func NewFileParser(ids *ast.IDSource) *FileParser {
	return &FileParser{ids: ids}
}

// Parse parses the source read from r as the unit named name.
func (fp *FileParser) Parse(name string, r io.Reader) (*ast.File, error) {
	return NewParser(fp.ids, r).Parse(name)
}

// -----------------------------------------------------------------------------

// next moves the parser forward one token.
func (p *Parser) next() {
	tok, err := p.lexer.NextToken()
	if err != nil {
		panic(err)
	}

	p.tok = tok
}

// got returns true if the parser is on a token of a given kind.
func (p *Parser) got(kind int) bool {
	return p.tok.Kind == kind
}

// gotOneOf returns if the parser's current token kind is one of given kinds.
func (p *Parser) gotOneOf(kinds ...int) bool {
	for _, kind := range kinds {
		if p.tok.Kind == kind {
			return true
		}
	}

	return false
}

// want asserts that the parser is on a token of the given kind, moves the
// parser forward and returns the asserted token.
func (p *Parser) want(kind int) *Token {
	if !p.got(kind) {
		p.rejectWant(kind)
	}

	tok := p.tok
	p.next()
	return tok
}

// newlines moves the parser forward until a non-newline token is encountered.
func (p *Parser) newlines() {
	for p.got(TOK_NEWLINE) {
		p.next()
	}
}

// -----------------------------------------------------------------------------

// reject raises an unexpected token error on the current token.
func (p *Parser) reject() {
	var msg string
	switch p.tok.Kind {
	case TOK_NEWLINE:
		msg = "unexpected newline"
	case TOK_EOF:
		msg = "unexpected end of file"
	default:
		msg = fmt.Sprintf("unexpected token: `%s`", p.tok.Value)
	}

	panic(report.Raise(report.KindParse, p.tok.Span, msg))
}

// rejectWant raises an error indicating that a token of a given kind was
// expected.
func (p *Parser) rejectWant(kind int) {
	found := tokenNames[p.tok.Kind]
	if found == "" {
		found = fmt.Sprintf("`%s`", p.tok.Value)
	}

	panic(report.Raise(report.KindParse, p.tok.Span, "expected %s but found %s", tokenNames[kind], found))
}

// rejectWithMsg raises an error on the current token with a specific message.
func (p *Parser) rejectWithMsg(msg string, a ...interface{}) {
	panic(report.Raise(report.KindParse, p.tok.Span, msg, a...))
}
