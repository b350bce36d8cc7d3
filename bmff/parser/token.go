package parser

import "fmt"

type Position struct {
	File   string
	Offset int
	Line   int
	Column int
}

func (p Position) String() string {
	if p.File != "" {
		return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

type Span struct {
	Start Position
	End   Position
}

type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenError
	TokenWhitespace
	TokenComment
	TokenLineComment

	// Literals
	TokenIdent
	TokenIntLiteral
	TokenStringLiteral

	// Keywords
	TokenAbstract
	TokenAligned
	TokenBit
	TokenClass
	TokenConst
	TokenElse
	TokenExtends
	TokenFor
	TokenIf
	TokenInt
	TokenUint
	TokenSigned
	TokenUnsigned
	TokenTemplate

	// Punctuation
	TokenLParen
	TokenRParen
	TokenLBrace
	TokenRBrace
	TokenLBracket
	TokenRBracket
	TokenSemicolon
	TokenComma
	TokenDot
	TokenHash
	TokenColon
	TokenAssign

	// Operators
	TokenPlus
	TokenMinus
	TokenStar
	TokenSlash
	TokenAnd
	TokenOr
	TokenNot
	TokenBitAnd
	TokenBitOr
	TokenEQ
	TokenNE
	TokenLT
	TokenLE
	TokenGT
	TokenGE
	TokenShl
	TokenShr
)

var tokenKindNames = map[TokenKind]string{
	TokenEOF:           "EOF",
	TokenError:         "Error",
	TokenWhitespace:    "Whitespace",
	TokenComment:       "Comment",
	TokenLineComment:   "LineComment",
	TokenIdent:         "Identifier",
	TokenIntLiteral:    "IntLiteral",
	TokenStringLiteral: "StringLiteral",
	TokenAbstract:      "abstract",
	TokenAligned:       "aligned",
	TokenBit:           "bit",
	TokenClass:         "class",
	TokenConst:         "const",
	TokenElse:          "else",
	TokenExtends:       "extends",
	TokenFor:           "for",
	TokenIf:            "if",
	TokenInt:           "int",
	TokenUint:          "uint",
	TokenSigned:        "signed",
	TokenUnsigned:      "unsigned",
	TokenTemplate:      "template",
	TokenLParen:        "(",
	TokenRParen:        ")",
	TokenLBrace:        "{",
	TokenRBrace:        "}",
	TokenLBracket:      "[",
	TokenRBracket:      "]",
	TokenSemicolon:     ";",
	TokenComma:         ",",
	TokenDot:           ".",
	TokenHash:          "#",
	TokenColon:         ":",
	TokenAssign:        "=",
	TokenPlus:          "+",
	TokenMinus:         "-",
	TokenStar:          "*",
	TokenSlash:         "/",
	TokenAnd:           "&&",
	TokenOr:            "||",
	TokenNot:           "!",
	TokenBitAnd:        "&",
	TokenBitOr:         "|",
	TokenEQ:            "==",
	TokenNE:            "!=",
	TokenLT:            "<",
	TokenLE:            "<=",
	TokenGT:            ">",
	TokenGE:            ">=",
	TokenShl:           "<<",
	TokenShr:           ">>",
}

func (k TokenKind) String() string {
	if name, ok := tokenKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// IsKeyword reports whether k is one of the reserved words of the
// pseudocode grammar.
func (k TokenKind) IsKeyword() bool {
	return k >= TokenAbstract && k <= TokenTemplate
}

type Token struct {
	Kind    TokenKind
	Span    Span
	Literal string
}

func (t Token) String() string {
	if t.Kind == TokenEOF && t.Literal == "" {
		return "end of input"
	}
	return fmt.Sprintf("`%s`", t.Literal)
}

var keywords = map[string]TokenKind{
	"abstract": TokenAbstract,
	"aligned":  TokenAligned,
	"bit":      TokenBit,
	"class":    TokenClass,
	"const":    TokenConst,
	"else":     TokenElse,
	"extends":  TokenExtends,
	"for":      TokenFor,
	"if":       TokenIf,
	"int":      TokenInt,
	"uint":     TokenUint,
	"signed":   TokenSigned,
	"unsigned": TokenUnsigned,
	"template": TokenTemplate,
}

func LookupKeyword(ident string) TokenKind {
	if kind, ok := keywords[ident]; ok {
		return kind
	}
	return TokenIdent
}
