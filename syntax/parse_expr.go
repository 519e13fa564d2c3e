package syntax

import (
	"ablac/ast"
	"ablac/report"
	"bufio"
	"strings"
)

// block = '{' {stmt} '}'
func (p *Parser) parseBlock() *ast.Block {
	startSpan := p.want(TOK_LBRACE).Span

	var stmts []ast.Stmt
	for p.newlines(); !p.got(TOK_RBRACE); p.newlines() {
		stmts = append(stmts, p.parseStmt())

		if p.got(TOK_SEMI) {
			p.next()
		} else if !p.gotOneOf(TOK_NEWLINE, TOK_RBRACE) {
			p.reject()
		}
	}

	endSpan := p.want(TOK_RBRACE).Span

	return &ast.Block{
		ASTBase: ast.NewASTBaseOver(p.ids, startSpan, endSpan),
		Stmts:   stmts,
	}
}

// stmt = 'return' [expr] | expr
func (p *Parser) parseStmt() ast.Stmt {
	if p.got(TOK_RETURN) {
		retTok := p.want(TOK_RETURN)

		if p.gotOneOf(TOK_NEWLINE, TOK_SEMI, TOK_RBRACE, TOK_EOF) {
			return &ast.ReturnStmt{ASTBase: ast.NewASTBaseOn(p.ids, retTok.Span)}
		}

		value := p.parseExpr()
		return &ast.ReturnStmt{
			ASTBase: ast.NewASTBaseOver(p.ids, retTok.Span, value.Span()),
			Value:   value,
		}
	}

	expr := p.parseExpr()
	return &ast.ExprStmt{
		ASTBase: ast.NewASTBaseOn(p.ids, expr.Span()),
		Expr:    expr,
	}
}

// -----------------------------------------------------------------------------

// expr = '#' expr | binary
func (p *Parser) parseExpr() ast.Expr {
	if p.got(TOK_HASH) {
		hashTok := p.want(TOK_HASH)
		expr := p.parseExpr()

		return &ast.CompilerExec{
			ASTBase: ast.NewASTBaseOver(p.ids, hashTok.Span, expr.Span()),
			Expr:    expr,
		}
	}

	return p.parseBinaryOp(0)
}

// binaryOpLevels lists the binary operators by precedence level from lowest to
// highest.
var binaryOpLevels = []map[int]ast.BinaryOperator{
	{TOK_EQ: ast.OpEq, TOK_NEQ: ast.OpNeq},
	{TOK_GT: ast.OpGt, TOK_LT: ast.OpLt, TOK_GTEQ: ast.OpGtEq, TOK_LTEQ: ast.OpLtEq},
	{TOK_PLUS: ast.OpAdd, TOK_MINUS: ast.OpSub},
	{TOK_STAR: ast.OpMul, TOK_DIV: ast.OpDiv},
}

// binary = postfix {binary_op postfix}
func (p *Parser) parseBinaryOp(level int) ast.Expr {
	if level == len(binaryOpLevels) {
		return p.parsePostfix()
	}

	lhs := p.parseBinaryOp(level + 1)

	for {
		op, ok := binaryOpLevels[level][p.tok.Kind]
		if !ok {
			return lhs
		}

		p.next()
		p.newlines()

		rhs := p.parseBinaryOp(level + 1)
		lhs = &ast.BinaryOp{
			ASTBase: ast.NewASTBaseOver(p.ids, lhs.Span(), rhs.Span()),
			Op:      op,
			Lhs:     lhs,
			Rhs:     rhs,
		}
	}
}

// postfix = primary {call_suffix}
func (p *Parser) parsePostfix() ast.Expr {
	return p.parseCallSuffixes(p.parsePrimary())
}

// parseCallSuffixes parses call suffixes applied to root.  Call suffixes must
// begin on the same line as the expression they apply to.
func (p *Parser) parseCallSuffixes(root ast.Expr) ast.Expr {
	for {
		switch p.tok.Kind {
		case TOK_LPAREN:
			root = p.parseCallSuffix(root)
		case TOK_LBRACE:
			lit := p.parseFuncLit()
			root = &ast.Call{
				ASTBase: ast.NewASTBaseOver(p.ids, root.Span(), lit.Span()),
				Func:    root,
				Args:    []ast.Expr{lit},
			}
		default:
			return root
		}
	}
}

// call_suffix = '(' [expr {',' expr}] ')' [func_literal]
func (p *Parser) parseCallSuffix(fn ast.Expr) ast.Expr {
	p.want(TOK_LPAREN)
	p.newlines()

	var args []ast.Expr
	for !p.got(TOK_RPAREN) {
		args = append(args, p.parseExpr())
		p.newlines()

		if p.got(TOK_COMMA) {
			p.next()
			p.newlines()
		} else if !p.got(TOK_RPAREN) {
			p.rejectWant(TOK_RPAREN)
		}
	}

	endSpan := p.want(TOK_RPAREN).Span

	// trailing function literal
	if p.got(TOK_LBRACE) {
		lit := p.parseFuncLit()
		args = append(args, lit)
		endSpan = lit.Span()
	}

	return &ast.Call{
		ASTBase: ast.NewASTBaseOver(p.ids, fn.Span(), endSpan),
		Func:    fn,
		Args:    args,
	}
}

// primary = IDENT | INT | STRING | func_literal | '(' expr ')'
func (p *Parser) parsePrimary() ast.Expr {
	switch p.tok.Kind {
	case TOK_IDENT:
		return p.parseIdentifier()
	case TOK_INTLIT:
		tok := p.want(TOK_INTLIT)
		return &ast.IntLit{ASTBase: ast.NewASTBaseOn(p.ids, tok.Span), Value: tok.Value}
	case TOK_STRINGLIT:
		return p.parseStringLit()
	case TOK_LBRACE:
		return p.parseFuncLit()
	case TOK_LPAREN:
		p.next()
		p.newlines()

		expr := p.parseExpr()

		p.newlines()
		p.want(TOK_RPAREN)
		return expr
	}

	p.reject()
	return nil
}

func (p *Parser) parseIdentifier() *ast.Identifier {
	tok := p.want(TOK_IDENT)
	return &ast.Identifier{ASTBase: ast.NewASTBaseOn(p.ids, tok.Span), Name: tok.Value}
}

// func_literal = '{' {stmt} '}'
func (p *Parser) parseFuncLit() *ast.FuncLit {
	body := p.parseBlock()
	return &ast.FuncLit{ASTBase: ast.NewASTBaseOn(p.ids, body.Span()), Body: body}
}

// -----------------------------------------------------------------------------

// parseStringLit parses a string literal token into its constant and
// interpolated parts.
func (p *Parser) parseStringLit() *ast.StringLit {
	tok := p.want(TOK_STRINGLIT)
	raw := []rune(tok.Value)

	// content begins one column after the opening quote
	line, col := tok.Span.StartLine, tok.Span.StartCol+1

	var parts []ast.StringPart
	var sb strings.Builder
	flush := func() {
		if sb.Len() > 0 {
			parts = append(parts, &ast.StringConst{Value: sb.String()})
			sb.Reset()
		}
	}

	for i := 0; i < len(raw); i++ {
		switch c := raw[i]; {
		case c == '\\':
			i++
			esc, ok := escapeSequences[raw[i]]
			if !ok {
				panic(report.Raise(report.KindParse, &report.TextSpan{
					StartLine: line, StartCol: col + i - 1,
					EndLine: line, EndCol: col + i + 1,
				}, "unknown escape sequence: `\\%c`", raw[i]))
			}

			sb.WriteRune(esc)
		case c == '$' && i+1 < len(raw) && raw[i+1] == '{':
			flush()

			exprStart := i + 2
			end := exprStart
			for depth := 1; end < len(raw); end++ {
				if raw[end] == '{' {
					depth++
				} else if raw[end] == '}' {
					depth--
					if depth == 0 {
						break
					}
				}
			}

			parts = append(parts, &ast.StringInterp{
				Expr: p.parseInterpExpr(string(raw[exprStart:end]), line, col+exprStart),
			})
			i = end
		default:
			sb.WriteRune(c)
		}
	}

	flush()

	return &ast.StringLit{ASTBase: ast.NewASTBaseOn(p.ids, tok.Span), Parts: parts}
}

// parseInterpExpr parses the expression text of an interpolation which begins
// at the given position in the enclosing file.
func (p *Parser) parseInterpExpr(text string, line, col int) ast.Expr {
	sub := &Parser{
		ids:   p.ids,
		lexer: newLexerAt(bufio.NewReader(strings.NewReader(text)), line, col),
	}
	sub.next()

	if sub.got(TOK_EOF) {
		sub.rejectWithMsg("empty interpolation")
	}

	expr := sub.parseExpr()
	if !sub.got(TOK_EOF) {
		sub.reject()
	}

	return expr
}

// escapeSequences maps escape codes to the runes they denote.
var escapeSequences = map[rune]rune{
	'n':  '\n',
	't':  '\t',
	'r':  '\r',
	'0':  0,
	'\\': '\\',
	'"':  '"',
	'\'': '\'',
	'$':  '$',
}
