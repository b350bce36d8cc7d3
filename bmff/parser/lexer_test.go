package parser

import (
	"testing"
)

func TestLexer(t *testing.T) {
	tests := []struct {
		input    string
		expected []TokenKind
	}{
		{"", []TokenKind{TokenEOF}},
		{"class", []TokenKind{TokenClass, TokenEOF}},
		{"aligned(8) class Foo {}", []TokenKind{TokenAligned, TokenLParen, TokenIntLiteral, TokenRParen, TokenClass, TokenIdent, TokenLBrace, TokenRBrace, TokenEOF}},
		{"unsigned int(32) x;", []TokenKind{TokenUnsigned, TokenInt, TokenLParen, TokenIntLiteral, TokenRParen, TokenIdent, TokenSemicolon, TokenEOF}},
		{"0x0100 0b101 0o17 1_000", []TokenKind{TokenIntLiteral, TokenIntLiteral, TokenIntLiteral, TokenIntLiteral, TokenEOF}},
		{`"mvhd"`, []TokenKind{TokenStringLiteral, TokenEOF}},
		{"// comment\nbit", []TokenKind{TokenBit, TokenEOF}},
		{"/* block */ template", []TokenKind{TokenTemplate, TokenEOF}},
		{"+ - * /", []TokenKind{TokenPlus, TokenMinus, TokenStar, TokenSlash, TokenEOF}},
		{"== != < <= > >=", []TokenKind{TokenEQ, TokenNE, TokenLT, TokenLE, TokenGT, TokenGE, TokenEOF}},
		{"&& || ! & |", []TokenKind{TokenAnd, TokenOr, TokenNot, TokenBitAnd, TokenBitOr, TokenEOF}},
		{"<< >>", []TokenKind{TokenShl, TokenShr, TokenEOF}},
		{"i++", []TokenKind{TokenIdent, TokenPlus, TokenPlus, TokenEOF}},
		{"# optional; rust_type: Uuid", []TokenKind{TokenHash, TokenIdent, TokenSemicolon, TokenIdent, TokenColon, TokenIdent, TokenEOF}},
		{"[] , . =", []TokenKind{TokenLBracket, TokenRBracket, TokenComma, TokenDot, TokenAssign, TokenEOF}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			lexer := NewLexer([]byte(tt.input), "test.box")
			var got []TokenKind
			for {
				tok := lexer.NextToken()
				if tok.Kind != TokenWhitespace && tok.Kind != TokenComment && tok.Kind != TokenLineComment {
					got = append(got, tok.Kind)
				}
				if tok.Kind == TokenEOF {
					break
				}
			}
			if len(got) != len(tt.expected) {
				t.Errorf("got %d tokens %v, want %d", len(got), got, len(tt.expected))
				return
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("token %d: got %v, want %v", i, got[i], tt.expected[i])
				}
			}
		})
	}
}

func TestLexerPositions(t *testing.T) {
	tokens, err := Tokenize([]byte("class Foo\n  {\n}"), "a.box")
	if err != nil {
		t.Fatal(err)
	}
	want := []Position{
		{File: "a.box", Offset: 0, Line: 1, Column: 1},
		{File: "a.box", Offset: 6, Line: 1, Column: 7},
		{File: "a.box", Offset: 12, Line: 2, Column: 3},
		{File: "a.box", Offset: 14, Line: 3, Column: 1},
	}
	for i, pos := range want {
		if got := tokens[i].Span.Start; got != pos {
			t.Errorf("token %d (%s): got %v, want %v", i, tokens[i], got, pos)
		}
	}
}

func TestTokenizeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unknown character", "class Foo { @ }"},
		{"unterminated string", `"abc`},
		{"newline in string", "\"ab\nc\""},
		{"unterminated comment", "/* never closed"},
		{"malformed number", "12ab"},
		{"non-ascii", "clåss"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Tokenize([]byte(tt.input), "")
			if err == nil {
				t.Fatal("expected error")
			}
			if !IsKind(err, SyntaxError) {
				t.Errorf("got %v, want a syntax error", err)
			}
		})
	}
}
