package parser

// parseExtends parses "extends Base(args...)".
func (p *Parser) parseExtends() (*Extends, error) {
	start := p.advance().Span.Start
	base, err := p.expectIdentifier("base class name")
	if err != nil {
		return nil, err
	}
	ext := &Extends{Class: base.Literal, Args: []ExtendsArg{}}

	inner, _, err := p.group(TokenLParen)
	if err != nil {
		return nil, err
	}
	for !inner.check(TokenEOF) {
		arg, err := inner.parseExtendsArg()
		if err != nil {
			return nil, err
		}
		ext.Args = append(ext.Args, arg)
		if inner.check(TokenComma) {
			inner.advance()
		}
	}

	ext.Loc = p.spanFrom(start)
	return ext, nil
}

func (p *Parser) parseExtendsArg() (ExtendsArg, error) {
	var arg ExtendsArg
	left, err := p.parseExpr()
	if err != nil {
		return arg, err
	}
	arg.Loc = left.Span()

	switch x := left.(type) {
	case *IntLit, *StringLit:
		arg.Value = x
	case *Variable:
		arg.Name = x.Name
		if p.check(TokenAssign) {
			p.advance()
			right, err := p.parseExpr()
			if err != nil {
				return arg, err
			}
			switch right.(type) {
			case *IntLit, *StringLit, *Variable:
				arg.Value = right
			default:
				return arg, newError(TypeError, right.Span(), "expected literal or variable")
			}
			arg.Loc = Span{Start: left.Span().Start, End: right.Span().End}
		}
	default:
		return arg, newError(TypeError, left.Span(), "expected literal or variable")
	}

	if tok := p.peek(); tok.Kind != TokenComma && tok.Kind != TokenEOF {
		return arg, p.errorf(SyntaxError, tok, "unexpected token %s", tok)
	}
	return arg, nil
}
