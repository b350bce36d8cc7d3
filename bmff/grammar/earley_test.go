package grammar

import (
	"errors"
	"os"
	"strings"
	"testing"

	"golang.org/x/exp/ebnf"

	"github.com/dhamidi/boxdef/bmff/parser"
)

func TestAcceptCorpus(t *testing.T) {
	src, err := os.ReadFile("../../testdata/isobmff.box")
	if err != nil {
		t.Fatal(err)
	}
	errs, err := AcceptSource("isobmff.box", src)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range errs {
		t.Error(e)
	}
}

func TestAccept(t *testing.T) {
	r, err := NewDefault()
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name string
		src  string
	}{
		{"empty", "class A {}"},
		{"header", `aligned(8) abstract class A(unsigned int(32) t, c,) extends B("x", f = 1, c,) {}`},
		{"bookkeeping", "class A { int i, j; bit(1) a; }"},
		{"opaque default", "class A { template int(16) v = {if a 0x0100 else 0} << 16; }"},
		{"annotation", "class A { Box() b[]; # optional; rust_type: Foo;\n bit(8) c[size - 2]; }"},
		{"anonymous", "class A { Box (); unsigned int(8)[3]; }"},
		{"control flow", `class A {
			if ((version == 1) || (version == 2)) { bit(1) a; } else if (b) { } else { string s; }
			for (int i = 1; ; i++) { utf8string name; }
			for (i = 0; i < n * 2; i++) { }
		}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := parser.Tokenize([]byte(tt.src), "")
			if err != nil {
				t.Fatal(err)
			}
			if err := r.Accept(tokens); err != nil {
				t.Errorf("rejected: %v", err)
			}
		})
	}
}

func TestReject(t *testing.T) {
	r, err := NewDefault()
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name    string
		src     string
		line    int
		column  int
		message string
	}{
		{"missing semicolon", "class A { bit(1) a }", 1, 20, "grammar does not allow `}` here"},
		{"decrement", "class A { for (i = 0; i < 2; i--) {} }", 1, 31, "grammar does not allow `-` here"},
		{"no class keyword", "struct A {}", 1, 1, "grammar does not allow `struct` here"},
		{"unterminated", "class A {\n", 2, 1, "unexpected end of input"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := parser.Tokenize([]byte(tt.src), "")
			if err != nil {
				t.Fatal(err)
			}
			err = r.Accept(tokens)
			var perr *parser.Error
			if !errors.As(err, &perr) {
				t.Fatalf("got %v, want a *parser.Error", err)
			}
			if perr.Message != tt.message {
				t.Errorf("got message %q, want %q", perr.Message, tt.message)
			}
			if pos := perr.Span.Start; pos.Line != tt.line || pos.Column != tt.column {
				t.Errorf("got position %d:%d, want %d:%d", pos.Line, pos.Column, tt.line, tt.column)
			}
		})
	}
}

func TestRecognizerRules(t *testing.T) {
	g, err := ebnf.Parse("small.ebnf", strings.NewReader(`S = "a" { "," "a" } [ ";" ] .`))
	if err != nil {
		t.Fatal(err)
	}
	r, err := NewRecognizer(g, "S")
	if err != nil {
		t.Fatal(err)
	}
	if !r.nullable["S#1"] || !r.nullable["S#2"] || r.nullable["S"] {
		t.Errorf("nullable: got %v", r.nullable)
	}

	tests := []struct {
		src  string
		want bool
	}{
		{"a", true},
		{"a, a, a;", true},
		{"a;;", false},
		{"", false},
	}
	for _, tt := range tests {
		tokens, err := parser.Tokenize([]byte(tt.src), "")
		if err != nil {
			t.Fatal(err)
		}
		if got := r.Accept(tokens) == nil; got != tt.want {
			t.Errorf("Accept(%q) = %v, want %v", tt.src, got, tt.want)
		}
	}

	if _, err := NewRecognizer(g, "T"); err == nil {
		t.Error("want an error for a missing start production")
	}
	bad, err := ebnf.Parse("bad.ebnf", strings.NewReader(`S = digit . digit = "0" … "9" .`))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewRecognizer(bad, "S"); err == nil {
		t.Error("want an error for a lexical production without a token class")
	}
}
