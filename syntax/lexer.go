package syntax

import (
	"ablac/report"
	"bufio"
	"io"
	"strings"
	"unicode"
)

// Lexer is responsible for tokenizing a source file.
type Lexer struct {
	file    *bufio.Reader
	tokBuff *strings.Builder

	line, col           int
	startLine, startCol int
}

// NewLexer creates a new lexer for the given source file.
func NewLexer(file *bufio.Reader) *Lexer {
	return newLexerAt(file, 0, 0)
}

// newLexerAt creates a lexer whose positions start at the given line and
// column.  It is used to lex interpolated expressions inside string literals.
func newLexerAt(file *bufio.Reader, line, col int) *Lexer {
	return &Lexer{
		file:    file,
		tokBuff: &strings.Builder{},
		line:    line,
		col:     col,
	}
}

// NextToken retrieves the next token from the input file. If the file has
// ended, this will be an EOF token.
func (l *Lexer) NextToken() (*Token, error) {
	for {
		c, err := l.peek()
		if err != nil {
			return nil, err
		} else if c == -1 {
			break
		}

		switch c {
		case '\t', ' ', '\r', '\v', '\f':
			l.skip()
		case '\n':
			l.mark()
			l.eat()
			return l.makeToken(TOK_NEWLINE), nil
		case '/':
			if tok, err := l.lexCommentOrDiv(); tok != nil || err != nil {
				return tok, err
			}
		case '"':
			return l.lexStringLit()
		default:
			if isDecimalDigit(c) {
				return l.lexIntLit()
			} else if isFirstIdentChar(c) {
				return l.lexIdentOrKeyword()
			} else {
				return l.lexPunctOrOper()
			}
		}
	}

	l.mark()
	return l.makeToken(TOK_EOF), nil
}

// -----------------------------------------------------------------------------

// symbolPatterns maps symbol strings (patterns) to their punctuation/operator
// token kind.
var symbolPatterns = map[string]int{
	"+": TOK_PLUS,
	"-": TOK_MINUS,
	"*": TOK_STAR,
	// Division operator is handled with comment logic.

	"==": TOK_EQ,
	"!=": TOK_NEQ,
	"<":  TOK_LT,
	"<=": TOK_LTEQ,
	">":  TOK_GT,
	">=": TOK_GTEQ,

	"=":  TOK_ASSIGN,
	"->": TOK_ARROW,

	"(": TOK_LPAREN,
	")": TOK_RPAREN,
	"{": TOK_LBRACE,
	"}": TOK_RBRACE,
	",": TOK_COMMA,
	":": TOK_COLON,
	";": TOK_SEMI,
	"#": TOK_HASH,
}

// lexPunctOrOper lexes a punctuation or operator symbol.
func (l *Lexer) lexPunctOrOper() (*Token, error) {
	l.mark()
	l.eat()

	// `!` is only valid as the start of `!=`.
	kind, ok := symbolPatterns[l.tokBuff.String()]
	if !ok && l.tokBuff.String() != "!" {
		return nil, report.Raise(report.KindParse, l.getSpan(), "unknown rune")
	}

	for {
		c, err := l.peek()
		if err != nil {
			return nil, err
		}

		if c == -1 {
			break
		}

		if _kind, ok := symbolPatterns[l.tokBuff.String()+string(c)]; ok {
			l.eat()
			kind = _kind
		} else {
			break
		}
	}

	if l.tokBuff.String() == "!" {
		return nil, report.Raise(report.KindParse, l.getSpan(), "unknown rune")
	}

	return l.makeToken(kind), nil
}

// lexCommentOrDiv lexes a line comment or a division operator.  It returns
// nil for comments: they produce no tokens.
func (l *Lexer) lexCommentOrDiv() (*Token, error) {
	l.mark()
	l.eat()

	c, err := l.peek()
	if err != nil {
		return nil, err
	}

	if c != '/' {
		return l.makeToken(TOK_DIV), nil
	}

	// Skip to the end of the line but leave the newline: it is significant.
	for {
		c, err := l.peek()
		if err != nil {
			return nil, err
		} else if c == -1 || c == '\n' {
			break
		}

		l.skip()
	}

	l.tokBuff.Reset()
	return nil, nil
}

// -----------------------------------------------------------------------------

// keywordPatterns maps keyword strings (patterns) to their keyword token kind.
var keywordPatterns = map[string]int{
	"fun":      TOK_FUN,
	"class":    TOK_CLASS,
	"extern":   TOK_EXTERN,
	"compiler": TOK_COMPILER,
	"return":   TOK_RETURN,
}

// lexIdentOrKeyword lexes an identifier or a keyword.
func (l *Lexer) lexIdentOrKeyword() (*Token, error) {
	l.mark()
	l.eat()

	for {
		c, err := l.peek()
		if err != nil {
			return nil, err
		} else if !isFirstIdentChar(c) && !isDecimalDigit(c) {
			break
		}

		l.eat()
	}

	kind := TOK_IDENT
	if _kind, ok := keywordPatterns[l.tokBuff.String()]; ok {
		kind = _kind
	}

	return l.makeToken(kind), nil
}

// lexIntLit lexes a decimal integer literal.  Underscores are permitted as
// digit separators and are kept: strconv handles them.
func (l *Lexer) lexIntLit() (*Token, error) {
	l.mark()
	l.eat()

	for {
		c, err := l.peek()
		if err != nil {
			return nil, err
		} else if !isDecimalDigit(c) && c != '_' {
			break
		}

		l.eat()
	}

	if strings.HasSuffix(l.tokBuff.String(), "_") {
		return nil, report.Raise(report.KindParse, l.getSpan(), "integer literal cannot end with `_`")
	}

	return l.makeToken(TOK_INTLIT), nil
}

// lexStringLit lexes a string literal.  Interpolations are tracked only so
// that a `"` or `}` inside of them does not end the literal early.
func (l *Lexer) lexStringLit() (*Token, error) {
	l.mark()

	// Skip the opening quote.
	l.skip()

	interpDepth := 0
	for {
		c, err := l.peek()
		if err != nil {
			return nil, err
		}

		switch c {
		case -1, '\n':
			return nil, report.Raise(report.KindParse, l.getSpan(), "unclosed string literal")
		case '\\':
			l.eat()
			if c, err = l.peek(); err != nil {
				return nil, err
			} else if c == -1 {
				return nil, report.Raise(report.KindParse, l.getSpan(), "unclosed string literal")
			}
			l.eat()
			continue
		case '$':
			l.eat()
			if next, err := l.peek(); err != nil {
				return nil, err
			} else if next == '{' {
				l.eat()
				interpDepth++
			}
			continue
		case '{':
			if interpDepth > 0 {
				interpDepth++
			}
		case '}':
			if interpDepth > 0 {
				interpDepth--
			}
		case '"':
			if interpDepth == 0 {
				// Skip the closing quote but include it in the span.
				l.skip()
				return l.makeToken(TOK_STRINGLIT), nil
			}
		}

		l.eat()
	}
}

// -----------------------------------------------------------------------------

// mark marks the beginning of a token.
func (l *Lexer) mark() {
	l.startLine = l.line
	l.startCol = l.col
}

// getSpan returns the span from the marked start to the current position.
func (l *Lexer) getSpan() *report.TextSpan {
	return &report.TextSpan{
		StartLine: l.startLine,
		StartCol:  l.startCol,
		EndLine:   l.line,
		EndCol:    l.col,
	}
}

// makeToken creates a new token from the contents of the token buffer and
// resets the buffer.
func (l *Lexer) makeToken(kind int) *Token {
	tok := &Token{Kind: kind, Value: l.tokBuff.String(), Span: l.getSpan()}
	l.tokBuff.Reset()
	return tok
}

// peek returns the next rune in the file without consuming it.  It returns -1
// at the end of the file.
func (l *Lexer) peek() (rune, error) {
	c, _, err := l.file.ReadRune()
	if err == io.EOF {
		return -1, nil
	} else if err != nil {
		return 0, err
	}

	if err := l.file.UnreadRune(); err != nil {
		return 0, err
	}

	return c, nil
}

// eat consumes the next rune and writes it to the token buffer.
func (l *Lexer) eat() (rune, bool) {
	c, ok := l.read()
	if ok {
		l.tokBuff.WriteRune(c)
	}

	return c, ok
}

// skip consumes the next rune without writing it to the token buffer.
func (l *Lexer) skip() {
	l.read()
}

// read consumes the next rune and updates the lexer's position.
func (l *Lexer) read() (rune, bool) {
	c, _, err := l.file.ReadRune()
	if err != nil {
		return 0, false
	}

	if c == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}

	return c, true
}

// -----------------------------------------------------------------------------

func isDecimalDigit(c rune) bool {
	return '0' <= c && c <= '9'
}

func isFirstIdentChar(c rune) bool {
	return c == '_' || unicode.IsLetter(c)
}
