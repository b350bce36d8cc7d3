package parser

// parseStmts parses statements until the cursor is exhausted.
func (p *Parser) parseStmts() ([]Stmt, error) {
	stmts := []Stmt{}
	for {
		if err := p.skipBookkeeping(); err != nil {
			return nil, err
		}
		if p.check(TokenEOF) {
			return stmts, nil
		}
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
}

// skipBookkeeping drops declarations like "int i, j;" that only introduce
// loop counters.
func (p *Parser) skipBookkeeping() error {
	for p.check(TokenInt) && isIdentifierLike(p.peekN(1)) {
		p.advance()
		for {
			if _, err := p.expectIdentifier("identifier"); err != nil {
				return err
			}
			if !p.check(TokenComma) {
				break
			}
			p.advance()
		}
		if _, err := p.expect(TokenSemicolon); err != nil {
			return err
		}
	}
	return nil
}

func (p *Parser) parseStmt() (Stmt, error) {
	tok := p.peek()
	switch {
	case tok.Kind == TokenIf:
		return p.parseIf()
	case tok.Kind == TokenFor:
		return p.parseFor()
	case isDeclStart(tok):
		decl, err := p.parseVarDecl()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenSemicolon); err != nil {
			return nil, err
		}
		if err := p.parseAnnotation(decl); err != nil {
			return nil, err
		}
		return decl, nil
	}
	return nil, p.errorf(SyntaxError, tok, "unexpected token %s", tok)
}

// parseBlock parses a brace-delimited statement list.
func (p *Parser) parseBlock() ([]Stmt, Span, error) {
	inner, span, err := p.group(TokenLBrace)
	if err != nil {
		return nil, Span{}, err
	}
	stmts, err := inner.parseStmts()
	if err != nil {
		return nil, Span{}, err
	}
	return stmts, span, nil
}

// parseCondition parses the parenthesized condition of an if.
func (p *Parser) parseCondition() (Expr, error) {
	inner, _, err := p.group(TokenLParen)
	if err != nil {
		return nil, err
	}
	return inner.ParseExpr()
}

func (p *Parser) parseIf() (*If, error) {
	start := p.advance().Span.Start
	cond, err := p.parseCondition()
	if err != nil {
		return nil, err
	}
	then, _, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	s := &If{Cond: cond, Then: then, Else: []Stmt{}}

	for p.check(TokenElse) {
		elseTok := p.advance()
		if p.check(TokenIf) {
			p.advance()
			cond, err := p.parseCondition()
			if err != nil {
				return nil, err
			}
			body, _, err := p.parseBlock()
			if err != nil {
				return nil, err
			}
			s.ElseIf = append(s.ElseIf, &ElseIf{
				Cond: cond,
				Body: body,
				Loc:  p.spanFrom(elseTok.Span.Start),
			})
			continue
		}
		if !p.check(TokenLBrace) {
			tok := p.peek()
			return nil, p.errorf(SyntaxError, tok, "expected `if` or `{`, found %s", tok)
		}
		body, _, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		s.Else = body
		break
	}

	s.Loc = p.spanFrom(start)
	return s, nil
}

// parseFor parses the restricted loop
//
//	for ( [int] v = N ; [ v (< | <=) Expr ] ; v ++ ) { Stmts }
func (p *Parser) parseFor() (*For, error) {
	start := p.advance().Span.Start
	inner, _, err := p.group(TokenLParen)
	if err != nil {
		return nil, err
	}

	if inner.check(TokenInt) {
		inner.advance()
	}
	v, err := inner.expectIdentifier("loop variable")
	if err != nil {
		return nil, err
	}
	s := &For{Var: v.Literal}

	if _, err := inner.expect(TokenAssign); err != nil {
		return nil, err
	}
	init, err := inner.parseExpr()
	if err != nil {
		return nil, err
	}
	if s.Start, err = LiteralInt(init); err != nil {
		return nil, err
	}
	if _, err := inner.expect(TokenSemicolon); err != nil {
		return nil, err
	}

	if !inner.check(TokenSemicolon) {
		if err := inner.expectLoopVar(s.Var); err != nil {
			return nil, err
		}
		opTok := inner.peek()
		switch opTok.Kind {
		case TokenLT:
			s.Op = OpLT
		case TokenLE:
			s.Op = OpLE
		default:
			if _, ok := binOpTokens[opTok.Kind]; ok {
				return nil, inner.errorf(UnsupportedOperatorError, opTok, "unsupported operator %s", opTok)
			}
			return nil, inner.errorf(SyntaxError, opTok, "expected `<` or `<=`, found %s", opTok)
		}
		inner.advance()
		if s.Limit, err = inner.parseExpr(); err != nil {
			return nil, err
		}
	}
	if _, err := inner.expect(TokenSemicolon); err != nil {
		return nil, err
	}

	if err := inner.expectLoopVar(s.Var); err != nil {
		return nil, err
	}
	if !inner.check(TokenPlus) || inner.peekN(1).Kind != TokenPlus {
		return nil, inner.errorf(SyntaxError, inner.peek(), "expected `++`")
	}
	inner.advance()
	inner.advance()
	if tok := inner.peek(); tok.Kind != TokenEOF {
		return nil, inner.errorf(SyntaxError, tok, "expected `)`")
	}

	body, _, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	s.Body = body
	s.Loc = p.spanFrom(start)
	return s, nil
}

func (p *Parser) expectLoopVar(name string) error {
	tok := p.peek()
	if !isIdentifierLike(tok) || tok.Literal != name {
		return p.errorf(SyntaxError, tok, "expected `%s`", name)
	}
	p.advance()
	return nil
}
