package parser

import (
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("boxdef.parser")

type Option func(*Parser)

// WithFile sets the file name recorded in the positions of lexed tokens.
func WithFile(path string) Option {
	return func(p *Parser) {
		p.file = path
	}
}

func WithLogger(logger commonlog.Logger) Option {
	return func(p *Parser) {
		p.log = logger
	}
}

// Parser is a recursive-descent parser over the tokens of one class
// definition. A Parser is not safe for concurrent use; separate
// definitions are parsed with separate parsers.
type Parser struct {
	file   string
	log    commonlog.Logger
	tokens []Token
	pos    int
	// end stands in for every read past the last token. Inside a
	// delimiter group it carries the closing delimiter.
	end   Token
	diags *[]Diagnostic
}

// NewParser returns a parser over tokens. A trailing TokenEOF is optional.
func NewParser(tokens []Token, opts ...Option) *Parser {
	p := &Parser{log: log}
	for _, opt := range opts {
		opt(p)
	}
	p.load(tokens)
	return p
}

func (p *Parser) load(tokens []Token) {
	n := len(tokens)
	switch {
	case n > 0 && tokens[n-1].Kind == TokenEOF:
		p.end = tokens[n-1]
		tokens = tokens[:n-1]
	case n > 0:
		last := tokens[n-1].Span.End
		p.end = Token{Kind: TokenEOF, Span: Span{Start: last, End: last}}
	default:
		pos := Position{File: p.file, Line: 1, Column: 1}
		p.end = Token{Kind: TokenEOF, Span: Span{Start: pos, End: pos}}
	}
	p.tokens = tokens
	p.pos = 0
	p.diags = &[]Diagnostic{}
}

// Parse lexes src and parses it as a single class definition. Warnings
// are returned even when parsing fails; the class is nil on failure.
func Parse(src []byte, opts ...Option) (*Class, []Diagnostic, error) {
	p := NewParser(nil, opts...)
	tokens, err := Tokenize(src, p.file)
	if err != nil {
		return nil, nil, err
	}
	p.load(tokens)
	class, err := p.ParseClass()
	if err != nil {
		return nil, p.Diagnostics(), err
	}
	return class, p.Diagnostics(), nil
}

// ParseExpression lexes src and parses it as one expression.
func ParseExpression(src []byte, opts ...Option) (Expr, error) {
	p := NewParser(nil, opts...)
	tokens, err := Tokenize(src, p.file)
	if err != nil {
		return nil, err
	}
	p.load(tokens)
	return p.ParseExpr()
}

// ParseExprTokens parses tokens as exactly one expression.
func ParseExprTokens(tokens []Token, opts ...Option) (Expr, error) {
	return NewParser(tokens, opts...).ParseExpr()
}

// ParseExpr parses the remaining tokens as one expression.
func (p *Parser) ParseExpr() (Expr, error) {
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.done(); err != nil {
		return nil, err
	}
	return e, nil
}

// Diagnostics returns the warnings recorded so far.
func (p *Parser) Diagnostics() []Diagnostic {
	return *p.diags
}

func (p *Parser) warn(span Span, msg string) {
	*p.diags = append(*p.diags, Diagnostic{
		Severity: SeverityWarning,
		Span:     span,
		Message:  msg,
	})
	p.log.Warningf("%s: %s", span.Start, msg)
}

func (p *Parser) peek() Token {
	if p.pos >= len(p.tokens) {
		return p.end
	}
	return p.tokens[p.pos]
}

func (p *Parser) peekN(n int) Token {
	if p.pos+n >= len(p.tokens) {
		return p.end
	}
	return p.tokens[p.pos+n]
}

func (p *Parser) advance() Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) check(kind TokenKind) bool {
	return p.peek().Kind == kind
}

func (p *Parser) match(kinds ...TokenKind) bool {
	for _, kind := range kinds {
		if p.check(kind) {
			return true
		}
	}
	return false
}

func (p *Parser) expect(kind TokenKind) (Token, error) {
	tok := p.peek()
	if tok.Kind != kind {
		return tok, p.errorf(SyntaxError, tok, "expected `%s`, found %s", kind, tok)
	}
	p.advance()
	return tok, nil
}

// Keywords of the pseudocode are valid identifiers wherever a name is
// expected, e.g. a field called "class".
func isIdentifierLike(tok Token) bool {
	return tok.Kind == TokenIdent || tok.Kind.IsKeyword()
}

// isDeclStart reports whether tok can begin a declaration: an identifier,
// a modifier or a type keyword. Other keywords such as `else` cannot.
func isDeclStart(tok Token) bool {
	switch tok.Kind {
	case TokenIdent, TokenInt, TokenUint, TokenBit, TokenClass,
		TokenConst, TokenTemplate, TokenSigned, TokenUnsigned:
		return true
	}
	return false
}

func (p *Parser) expectIdentifier(what string) (Token, error) {
	tok := p.peek()
	if !isIdentifierLike(tok) {
		return tok, p.errorf(SyntaxError, tok, "expected %s, found %s", what, tok)
	}
	p.advance()
	return tok, nil
}

// lastEnd is the end position of the most recently consumed token.
func (p *Parser) lastEnd() Position {
	if p.pos > 0 && p.pos <= len(p.tokens) {
		return p.tokens[p.pos-1].Span.End
	}
	return p.peek().Span.Start
}

func (p *Parser) spanFrom(start Position) Span {
	return Span{Start: start, End: p.lastEnd()}
}

// done fails unless every token of the cursor has been consumed.
func (p *Parser) done() error {
	if tok := p.peek(); tok.Kind != TokenEOF {
		return p.errorf(SyntaxError, tok, "unexpected token %s", tok)
	}
	return nil
}

func (p *Parser) errorf(kind ErrorKind, tok Token, format string, args ...any) *Error {
	return newError(kind, tok.Span, format, args...)
}

func closerOf(open TokenKind) TokenKind {
	switch open {
	case TokenLParen:
		return TokenRParen
	case TokenLBracket:
		return TokenRBracket
	case TokenLBrace:
		return TokenRBrace
	}
	return TokenEOF
}

// group consumes a delimited group starting at the current token and
// returns a parser over its contents together with the span of the whole
// group, delimiters included.
func (p *Parser) group(open TokenKind) (*Parser, Span, error) {
	openTok := p.peek()
	if openTok.Kind != open {
		return nil, Span{}, p.errorf(SyntaxError, openTok, "expected `%s`, found %s", open, openTok)
	}
	var stack []TokenKind
	for i := p.pos + 1; i < len(p.tokens); i++ {
		tok := p.tokens[i]
		switch tok.Kind {
		case TokenLParen, TokenLBracket, TokenLBrace:
			stack = append(stack, closerOf(tok.Kind))
		case TokenRParen, TokenRBracket, TokenRBrace:
			want := closerOf(open)
			if len(stack) > 0 {
				want = stack[len(stack)-1]
			}
			if tok.Kind != want {
				return nil, Span{}, p.errorf(SyntaxError, tok, "mismatched delimiter: expected `%s`, found `%s`", want, tok.Kind)
			}
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
				continue
			}
			sub := &Parser{
				file:   p.file,
				log:    p.log,
				tokens: p.tokens[p.pos+1 : i],
				end:    Token{Kind: TokenEOF, Span: tok.Span, Literal: tok.Literal},
				diags:  p.diags,
			}
			p.pos = i + 1
			return sub, Span{Start: openTok.Span.Start, End: tok.Span.End}, nil
		}
	}
	return nil, Span{}, p.errorf(SyntaxError, openTok, "unclosed `%s`", open)
}

// skipTo advances to the next token of the given kind outside of any
// nested group, or to the end of the cursor.
func (p *Parser) skipTo(kind TokenKind) error {
	for !p.check(kind) && !p.check(TokenEOF) {
		if p.match(TokenLParen, TokenLBracket, TokenLBrace) {
			if _, _, err := p.group(p.peek().Kind); err != nil {
				return err
			}
			continue
		}
		p.advance()
	}
	return nil
}
