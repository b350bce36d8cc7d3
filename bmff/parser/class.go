package parser

import "math"

// ParseClass parses the tokens of the parser as exactly one class
// definition.
func (p *Parser) ParseClass() (*Class, error) {
	header, err := p.parseClassHeader()
	if err != nil {
		return nil, err
	}
	if !p.check(TokenLBrace) {
		tok := p.peek()
		return nil, p.errorf(SyntaxError, tok, "expected `{`, found %s", tok)
	}
	stmts, span, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	if err := p.done(); err != nil {
		return nil, err
	}
	p.log.Debugf("parsed class %s with %d statements", header.Name, len(stmts))
	return &Class{
		Header: *header,
		Body:   ClassBody{Stmts: stmts, Loc: span},
	}, nil
}

func (p *Parser) parseClassHeader() (*ClassHeader, error) {
	h := &ClassHeader{}

	if p.check(TokenAligned) {
		aligned, err := p.parseAligned()
		if err != nil {
			return nil, err
		}
		h.Aligned = aligned
	}

	if p.check(TokenAbstract) {
		p.advance()
		h.Abstract = true
	}

	if _, err := p.expect(TokenClass); err != nil {
		return nil, err
	}
	name, err := p.expectIdentifier("class name")
	if err != nil {
		return nil, err
	}
	h.Name = name.Literal
	h.NameSpan = name.Span

	if p.check(TokenLParen) {
		params, err := p.parseParams()
		if err != nil {
			return nil, err
		}
		h.Params = params
	}

	if p.check(TokenExtends) {
		ext, err := p.parseExtends()
		if err != nil {
			return nil, err
		}
		h.Extends = ext
	}
	return h, nil
}

// parseAligned parses "aligned(n)" with a positive literal n.
func (p *Parser) parseAligned() (*Aligned, error) {
	start := p.advance().Span.Start
	inner, _, err := p.group(TokenLParen)
	if err != nil {
		return nil, err
	}
	e, err := inner.ParseExpr()
	if err != nil {
		return nil, err
	}
	n, err := LiteralInt(e)
	if err != nil {
		return nil, err
	}
	if n == 0 || n > math.MaxUint32 {
		return nil, newError(SyntaxError, e.Span(), "invalid alignment %d", n)
	}
	return &Aligned{Value: uint32(n), Loc: p.spanFrom(start)}, nil
}

// parseParams parses the constructor parameter list of a class header.
func (p *Parser) parseParams() ([]*VarDecl, error) {
	inner, _, err := p.group(TokenLParen)
	if err != nil {
		return nil, err
	}
	params := []*VarDecl{}
	for !inner.check(TokenEOF) {
		d, err := inner.parseVarDecl()
		if err != nil {
			return nil, err
		}
		params = append(params, d)
		if inner.check(TokenComma) {
			inner.advance()
			continue
		}
		if err := inner.done(); err != nil {
			return nil, err
		}
	}
	return params, nil
}
