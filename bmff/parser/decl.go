package parser

import (
	"fmt"
	"strings"
)

// Unsized type keywords that map straight to a host string type.
var primitiveTypes = map[string]bool{
	"string":     true,
	"utf8string": true,
	"utfstring":  true,
	"utf8list":   true,
}

// ResolveWidth maps a sized base kind and its literal width to the native
// scalar that holds it.
func ResolveWidth(kind BaseKind, width uint64) (NativeType, error) {
	if t, ok := resolveWidth(kind, width); ok {
		return t, nil
	}
	name := "int"
	if kind == BaseBit {
		name = "bit"
	}
	return NativeNone, newError(UnsupportedWidthError, Span{}, "unsupported %s(%d)", name, width)
}

func resolveWidth(kind BaseKind, width uint64) (NativeType, bool) {
	switch kind {
	case BaseSignedInt:
		switch {
		case width >= 1 && width <= 8:
			return NativeInt8, true
		case width >= 9 && width <= 16:
			return NativeInt16, true
		case width >= 17 && width <= 32:
			return NativeInt32, true
		case width >= 33 && width <= 64:
			return NativeInt64, true
		}
	case BaseUnsignedInt:
		switch {
		case width >= 1 && width <= 8:
			return NativeUint8, true
		case width >= 9 && width <= 16:
			return NativeUint16, true
		case width >= 17 && width <= 32:
			return NativeUint32, true
		case width >= 33 && width <= 64:
			return NativeUint64, true
		}
	case BaseBit:
		switch {
		case width == 1:
			return NativeBool, true
		case width >= 2 && width <= 8:
			return NativeUint8, true
		case width >= 9 && width <= 16:
			return NativeUint16, true
		case width >= 17 && width <= 23:
			return NativeUint32, true
		case width == 24:
			return NativeFlags, true
		case width >= 25 && width <= 32:
			return NativeUint32, true
		case width >= 33 && width <= 64:
			return NativeUint64, true
		}
	}
	return NativeNone, false
}

// parseVarDecl parses
//
//	[mods] BaseType ["(" Expr ")"] ["[" [Expr] "]"] IDENT ["[" [Expr] "]"] ["=" (Expr | "{" ... "}")]
//
// without the terminating semicolon.
func (p *Parser) parseVarDecl() (*VarDecl, error) {
	start := p.peek().Span.Start
	d := &VarDecl{}
	var signed, unsigned bool

modifiers:
	for {
		tok := p.peek()
		switch {
		case tok.Kind == TokenTemplate:
			d.Template = true
		case tok.Kind == TokenConst:
			d.Const = true
		case tok.Kind == TokenSigned:
			signed = true
		case tok.Kind == TokenUnsigned:
			unsigned = true
		case tok.Kind == TokenIdent && tok.Literal == "optional" && isIdentifierLike(p.peekN(1)):
			d.Optional = true
		default:
			break modifiers
		}
		p.advance()
	}

	typeTok := p.peek()
	if signed || unsigned {
		switch typeTok.Kind {
		case TokenInt:
		case TokenBit:
			return nil, p.errorf(SyntaxError, typeTok, "`bit` cannot be signed or unsigned")
		default:
			return nil, p.errorf(SyntaxError, typeTok, "expected `int`, found %s", typeTok)
		}
	}

	typeName := typeTok.Literal
	switch {
	case typeTok.Kind == TokenInt && signed:
		d.Kind = BaseSignedInt
	case typeTok.Kind == TokenInt, typeTok.Kind == TokenUint:
		d.Kind = BaseUnsignedInt
	case typeTok.Kind == TokenBit:
		d.Kind = BaseBit
	case typeTok.Kind == TokenClass:
		p.advance()
		typeTok = p.peek()
		if !isIdentifierLike(typeTok) {
			return nil, p.errorf(SyntaxError, typeTok, "expected class name, found %s", typeTok)
		}
		typeName = typeTok.Literal
		d.Kind = BaseClassRef
		d.TypeName = typeName
	case typeTok.Kind == TokenIdent:
		if primitiveTypes[typeTok.Literal] {
			d.Kind = BasePrimitive
		} else {
			d.Kind = BaseClassRef
		}
		d.TypeName = typeName
	default:
		return nil, p.errorf(SyntaxError, typeTok, "expected type, found %s", typeTok)
	}
	p.advance()
	d.ISOType = isoType(d, signed, unsigned, typeName)

	if d.Kind.Sized() {
		if err := p.parseWidth(d); err != nil {
			return nil, err
		}
	} else {
		d.NativeName = d.TypeName
		if d.Kind == BasePrimitive {
			d.NativeName = "string"
		}
		if p.check(TokenLParen) {
			args, err := p.parseClassArgs()
			if err != nil {
				return nil, err
			}
			d.ClassArgs = args
		}
	}

	if p.check(TokenLBracket) {
		arr, err := p.parseArray()
		if err != nil {
			return nil, err
		}
		d.Array = arr
	}

	// Nameless declarations embed an instance of the type: "SampleEntry();"
	if p.match(TokenSemicolon, TokenComma, TokenEOF) {
		d.Name = d.ISOType
		d.NameSpan = typeTok.Span
		d.Anonymous = true
		d.Loc = p.spanFrom(start)
		return d, nil
	}

	nameTok, err := p.expectIdentifier("field name")
	if err != nil {
		return nil, err
	}
	d.Name = nameTok.Literal
	d.NameSpan = nameTok.Span

	if p.check(TokenLBracket) {
		arr, err := p.parseArray()
		if err != nil {
			return nil, err
		}
		d.Array = arr
	}

	if p.check(TokenAssign) {
		p.advance()
		if p.check(TokenLBrace) {
			_, span, err := p.group(TokenLBrace)
			if err != nil {
				return nil, err
			}
			p.warn(span, "ignoring default { ... } block")
			if err := p.skipTo(TokenSemicolon); err != nil {
				return nil, err
			}
		} else {
			def, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			d.Default = def
		}
	}

	d.Loc = p.spanFrom(start)
	return d, nil
}

func isoType(d *VarDecl, signed, unsigned bool, typeName string) string {
	var parts []string
	if d.Optional {
		parts = append(parts, "optional")
	}
	if d.Const {
		parts = append(parts, "const")
	}
	if d.Template {
		parts = append(parts, "template")
	}
	if signed {
		parts = append(parts, "signed")
	}
	if unsigned {
		parts = append(parts, "unsigned")
	}
	parts = append(parts, typeName)
	return strings.Join(parts, " ")
}

func (p *Parser) parseWidth(d *VarDecl) error {
	if !p.check(TokenLParen) {
		tok := p.peek()
		return p.errorf(SyntaxError, tok, "expected `(` with the width of `%s`, found %s", d.ISOType, tok)
	}
	inner, _, err := p.group(TokenLParen)
	if err != nil {
		return err
	}
	name := "int"
	if d.Kind == BaseBit {
		name = "bit"
	}
	// A literal too large for uint64 is still a width, just an unsupported one.
	if tok := inner.peek(); tok.Kind == TokenIntLiteral && inner.peekN(1).Kind == TokenEOF {
		if _, err := parseUint(tok.Literal); err != nil {
			return newError(UnsupportedWidthError, tok.Span, "unsupported %s(%s)", name, tok.Literal)
		}
	}
	e, err := inner.parseExpr()
	if err != nil {
		return err
	}
	if err := inner.done(); err != nil {
		return err
	}
	width, err := LiteralInt(e)
	if err != nil {
		return err
	}
	native, ok := resolveWidth(d.Kind, width)
	if !ok {
		return newError(UnsupportedWidthError, e.Span(), "unsupported %s(%d)", name, width)
	}
	d.Width = uint32(width)
	d.Native = native
	d.NativeName = native.String()
	return nil
}

// parseClassArgs parses the constructor arguments after a class name. An
// empty group means no arguments.
func (p *Parser) parseClassArgs() ([]Expr, error) {
	inner, _, err := p.group(TokenLParen)
	if err != nil {
		return nil, err
	}
	var args []Expr
	for !inner.check(TokenEOF) {
		arg, err := inner.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if !inner.check(TokenComma) {
			break
		}
		inner.advance()
	}
	if err := inner.done(); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *Parser) parseArray() (*Array, error) {
	inner, span, err := p.group(TokenLBracket)
	if err != nil {
		return nil, err
	}
	if inner.check(TokenEOF) {
		return &Array{ToEnd: true, Loc: span}, nil
	}
	n, err := inner.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := inner.done(); err != nil {
		return nil, err
	}
	return &Array{Len: n, Loc: span}, nil
}

// parseAnnotation applies an optional "# optional; rust_type: T" clause
// following a declaration's semicolon.
func (p *Parser) parseAnnotation(d *VarDecl) error {
	if !p.check(TokenHash) {
		return nil
	}
	p.advance()
	for {
		tok := p.peek()
		switch {
		case tok.Kind == TokenIdent && tok.Literal == "optional":
			p.advance()
			d.Optional = true
			if !strings.Contains(d.ISOType, "optional") {
				d.ISOType = "optional " + d.ISOType
			}
		case tok.Kind == TokenIdent && (tok.Literal == "rust_type" || tok.Literal == "go_type"):
			p.advance()
			if _, err := p.expect(TokenColon); err != nil {
				return err
			}
			typ := p.peek()
			if typ.Kind != TokenIdent {
				return p.errorf(SyntaxError, typ, "expected simple type name, found %s", typ)
			}
			p.advance()
			d.NativeName = typ.Literal
		default:
			return p.errorf(SyntaxError, tok, "expected `optional` or `rust_type`, found %s", tok)
		}
		if !p.check(TokenSemicolon) {
			return nil
		}
		p.advance()
		// A trailing semicolon ends the clause.
		if !isAnnotationClause(p.peek()) {
			return nil
		}
	}
}

func isAnnotationClause(tok Token) bool {
	if tok.Kind != TokenIdent {
		return false
	}
	switch tok.Literal {
	case "optional", "rust_type", "go_type":
		return true
	}
	return false
}

func (d *VarDecl) String() string {
	var sb strings.Builder
	sb.WriteString(d.ISOType)
	if d.Kind.Sized() {
		fmt.Fprintf(&sb, "(%d)", d.Width)
	}
	if !d.Anonymous {
		sb.WriteByte(' ')
		sb.WriteString(d.Name)
	}
	return sb.String()
}
