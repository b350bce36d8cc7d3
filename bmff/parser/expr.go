package parser

import (
	"strconv"
	"strings"
)

// parseExpr parses an atom optionally followed by an operator and another
// full expression. There is no precedence: every chain nests to the right.
func (p *Parser) parseExpr() (Expr, error) {
	left, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	op, ok := binOpTokens[p.peek().Kind]
	if !ok {
		return left, nil
	}
	p.advance()
	right, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &Binary{
		Left:  left,
		Op:    op,
		Right: right,
		Loc:   Span{Start: left.Span().Start, End: right.Span().End},
	}, nil
}

func (p *Parser) parseAtom() (Expr, error) {
	tok := p.peek()
	switch {
	case tok.Kind == TokenLParen:
		inner, span, err := p.group(TokenLParen)
		if err != nil {
			return nil, err
		}
		x, err := inner.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := inner.done(); err != nil {
			return nil, err
		}
		return &Paren{X: x, Loc: span}, nil

	case tok.Kind == TokenStringLiteral:
		p.advance()
		value, err := strconv.Unquote(tok.Literal)
		if err != nil {
			return nil, p.errorf(SyntaxError, tok, "invalid string literal %s", tok.Literal)
		}
		return &StringLit{Value: value, Raw: tok.Literal, Loc: tok.Span}, nil

	case tok.Kind == TokenIntLiteral:
		p.advance()
		value, err := parseUint(tok.Literal)
		if err != nil {
			return nil, p.errorf(SyntaxError, tok, "invalid integer literal %s", tok.Literal)
		}
		return &IntLit{Value: value, Raw: tok.Literal, Loc: tok.Span}, nil

	case isIdentifierLike(tok):
		p.advance()
		return &Variable{Name: tok.Literal, Loc: tok.Span}, nil
	}
	return nil, p.errorf(SyntaxError, tok, "expected expression, found %s", tok)
}

// parseUint reads decimal, 0x, 0o and 0b literals. A leading zero alone
// does not make a literal octal.
func parseUint(lit string) (uint64, error) {
	if len(lit) > 1 && lit[0] == '0' && strings.ContainsRune("xXoObB", rune(lit[1])) {
		return strconv.ParseUint(lit, 0, 64)
	}
	return strconv.ParseUint(strings.ReplaceAll(lit, "_", ""), 10, 64)
}

// LiteralInt returns the value of e if it is exactly an integer literal.
// Parenthesized integers and every other shape are a TypeError.
func LiteralInt(e Expr) (uint64, error) {
	if lit, ok := e.(*IntLit); ok {
		return lit.Value, nil
	}
	return 0, newError(TypeError, e.Span(), "expected number")
}

// ExprTokens renders e back to the tokens it is parsed from. Spans of the
// returned tokens are those of the originating nodes where present.
//
// Parsing the result yields e again for every tree the parser can
// produce, where the left operand of a Binary is never itself a Binary.
// A hand-built left-nested Binary renders without parentheses and so
// parses back right-nested; wrap its left operand in a Paren to keep the
// grouping.
func ExprTokens(e Expr) []Token {
	var out []Token
	appendExprTokens(&out, e)
	return out
}

func appendExprTokens(out *[]Token, e Expr) {
	switch x := e.(type) {
	case *StringLit:
		raw := x.Raw
		if raw == "" {
			raw = strconv.Quote(x.Value)
		}
		*out = append(*out, Token{Kind: TokenStringLiteral, Span: x.Loc, Literal: raw})
	case *IntLit:
		raw := x.Raw
		if raw == "" {
			raw = strconv.FormatUint(x.Value, 10)
		}
		*out = append(*out, Token{Kind: TokenIntLiteral, Span: x.Loc, Literal: raw})
	case *Variable:
		*out = append(*out, Token{Kind: LookupKeyword(x.Name), Span: x.Loc, Literal: x.Name})
	case *Paren:
		*out = append(*out, Token{Kind: TokenLParen, Literal: "("})
		appendExprTokens(out, x.X)
		*out = append(*out, Token{Kind: TokenRParen, Literal: ")"})
	case *Binary:
		appendExprTokens(out, x.Left)
		kind := x.Op.TokenKind()
		*out = append(*out, Token{Kind: kind, Literal: kind.String()})
		appendExprTokens(out, x.Right)
	}
}

// FormatExpr renders e as source text.
func FormatExpr(e Expr) string {
	var sb strings.Builder
	for i, tok := range ExprTokens(e) {
		if i > 0 && needsSpace(tok, sb.String()) {
			sb.WriteByte(' ')
		}
		sb.WriteString(tok.Literal)
	}
	return sb.String()
}

func needsSpace(tok Token, before string) bool {
	if tok.Kind == TokenRParen {
		return false
	}
	return !strings.HasSuffix(before, "(")
}
