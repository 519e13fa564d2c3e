package syntax

import (
	"ablac/ast"
	"ablac/report"
)

// decl = func_decl | class_decl | compiler_call
func (p *Parser) parseDecl() ast.Decl {
	if p.got(TOK_HASH) {
		return p.parseCompilerCall()
	}

	startSpan := p.tok.Span
	mods := p.parseModifiers()

	switch p.tok.Kind {
	case TOK_FUN:
		return p.parseFuncDecl(startSpan, mods)
	case TOK_CLASS:
		return p.parseClassDecl(startSpan, mods)
	}

	p.reject()
	return nil
}

// modifiers = {'extern' ['(' string ')'] | 'compiler'}
func (p *Parser) parseModifiers() []ast.Modifier {
	var mods []ast.Modifier

	for {
		switch p.tok.Kind {
		case TOK_EXTERN:
			ext := &ast.Extern{Pos: p.tok.Span}
			p.next()

			if p.got(TOK_LPAREN) {
				p.next()
				ext.LibName = p.parseStringLit()
				ext.Pos = report.NewSpanOver(ext.Pos, p.want(TOK_RPAREN).Span)
			}

			mods = append(mods, ext)
		case TOK_COMPILER:
			mods = append(mods, &ast.ModCompiler{Pos: p.tok.Span})
			p.next()
		default:
			return mods
		}
	}
}

// func_decl = modifiers 'fun' IDENT '(' [param {',' param}] ')' [':' type] [func_body]
// func_body = block | '=' expr
func (p *Parser) parseFuncDecl(startSpan *report.TextSpan, mods []ast.Modifier) *ast.FuncDecl {
	p.want(TOK_FUN)
	nameTok := p.want(TOK_IDENT)

	p.want(TOK_LPAREN)
	p.newlines()

	var params []*ast.Param
	for !p.got(TOK_RPAREN) {
		params = append(params, p.parseParam())
		p.newlines()

		if p.got(TOK_COMMA) {
			p.next()
			p.newlines()
		} else if !p.got(TOK_RPAREN) {
			p.rejectWant(TOK_RPAREN)
		}
	}

	endSpan := p.want(TOK_RPAREN).Span

	var rtType ast.TypeExpr
	if p.got(TOK_COLON) {
		p.next()
		rtType = p.parseTypeExpr()
		endSpan = rtType.Span()
	}

	var body *ast.Block
	switch p.tok.Kind {
	case TOK_LBRACE:
		body = p.parseBlock()
		endSpan = body.Span()
	case TOK_ASSIGN:
		p.next()
		p.newlines()

		expr := p.parseExpr()
		body = &ast.Block{
			ASTBase: ast.NewASTBaseOn(p.ids, expr.Span()),
			Stmts: []ast.Stmt{&ast.ExprStmt{
				ASTBase: ast.NewASTBaseOn(p.ids, expr.Span()),
				Expr:    expr,
			}},
		}
		endSpan = expr.Span()
	}

	return &ast.FuncDecl{
		ASTBase:    ast.NewASTBaseOver(p.ids, startSpan, endSpan),
		Name:       nameTok.Value,
		NameSpan:   nameTok.Span,
		Params:     params,
		Modifiers:  mods,
		ReturnType: rtType,
		Body:       body,
	}
}

// param = IDENT ':' type
func (p *Parser) parseParam() *ast.Param {
	nameTok := p.want(TOK_IDENT)
	p.want(TOK_COLON)
	typ := p.parseTypeExpr()

	return &ast.Param{
		ASTBase: ast.NewASTBaseOver(p.ids, nameTok.Span, typ.Span()),
		Name:    nameTok.Value,
		Type:    typ,
	}
}

// class_decl = modifiers 'class' IDENT ['{' {func_decl | class_decl} '}']
func (p *Parser) parseClassDecl(startSpan *report.TextSpan, mods []ast.Modifier) *ast.ClassDecl {
	p.want(TOK_CLASS)
	nameTok := p.want(TOK_IDENT)
	endSpan := nameTok.Span

	var members []ast.Decl
	if p.got(TOK_LBRACE) {
		p.next()

		for p.newlines(); !p.got(TOK_RBRACE); p.newlines() {
			memberStart := p.tok.Span
			memberMods := p.parseModifiers()

			switch p.tok.Kind {
			case TOK_FUN:
				members = append(members, p.parseFuncDecl(memberStart, memberMods))
			case TOK_CLASS:
				members = append(members, p.parseClassDecl(memberStart, memberMods))
			default:
				p.reject()
			}

			if p.got(TOK_SEMI) {
				p.next()
			} else if !p.gotOneOf(TOK_NEWLINE, TOK_RBRACE) {
				p.reject()
			}
		}

		endSpan = p.want(TOK_RBRACE).Span
	}

	return &ast.ClassDecl{
		ASTBase:   ast.NewASTBaseOver(p.ids, startSpan, endSpan),
		Name:      nameTok.Value,
		Modifiers: mods,
		Members:   members,
	}
}

// compiler_call = '#' (IDENT | func_literal) call_suffix {call_suffix}
func (p *Parser) parseCompilerCall() *ast.CompilerCall {
	hashTok := p.want(TOK_HASH)

	var root ast.Expr
	switch p.tok.Kind {
	case TOK_IDENT:
		root = p.parseIdentifier()
	case TOK_LBRACE:
		root = p.parseFuncLit()
	default:
		p.reject()
	}

	if !p.gotOneOf(TOK_LPAREN, TOK_LBRACE) {
		p.rejectWithMsg("compiler call must call a function")
	}

	call := p.parseCallSuffixes(root)

	return &ast.CompilerCall{
		ASTBase: ast.NewASTBaseOver(p.ids, hashTok.Span, call.Span()),
		Call:    call,
	}
}

// -----------------------------------------------------------------------------

// type = IDENT ['<' type {',' type} '>'] | '(' [type {',' type}] ')' '->' type
func (p *Parser) parseTypeExpr() ast.TypeExpr {
	switch p.tok.Kind {
	case TOK_IDENT:
		nameTok := p.want(TOK_IDENT)
		nte := &ast.NamedTypeExpr{Name: nameTok.Value, Pos: nameTok.Span}

		if p.got(TOK_LT) {
			p.next()

			for {
				nte.Params = append(nte.Params, p.parseTypeExpr())

				if p.got(TOK_COMMA) {
					p.next()
				} else {
					break
				}
			}

			nte.Pos = report.NewSpanOver(nte.Pos, p.want(TOK_GT).Span)
		}

		return nte
	case TOK_LPAREN:
		startSpan := p.tok.Span
		p.next()

		fte := &ast.FuncTypeExpr{}
		for !p.got(TOK_RPAREN) {
			fte.Params = append(fte.Params, p.parseTypeExpr())

			if p.got(TOK_COMMA) {
				p.next()
			} else if !p.got(TOK_RPAREN) {
				p.rejectWant(TOK_RPAREN)
			}
		}

		p.next()
		p.want(TOK_ARROW)
		fte.ReturnType = p.parseTypeExpr()
		fte.Pos = report.NewSpanOver(startSpan, fte.ReturnType.Span())
		return fte
	}

	p.rejectWithMsg("expected a type")
	return nil
}
