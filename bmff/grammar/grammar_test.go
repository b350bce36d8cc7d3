package grammar

import (
	"strings"
	"testing"

	"golang.org/x/exp/ebnf"

	"github.com/dhamidi/boxdef/bmff/parser"
)

func TestVerify(t *testing.T) {
	if err := Verify(); err != nil {
		for _, e := range Errors(err) {
			t.Error(e)
		}
	}
}

func TestProductions(t *testing.T) {
	g, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	names := Productions(g)
	for _, want := range []string{"Class", "ClassHeader", "Extends", "VarDecl", "If", "For", "Expr", "ident", "int_lit"} {
		if _, ok := g[want]; !ok {
			t.Errorf("missing production %s in %v", want, names)
		}
	}
}

// Every literal token of the grammar must lex as exactly one parser token.
func TestKeywordsMatchLexer(t *testing.T) {
	g, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	keywords := Keywords(g)
	if len(keywords) == 0 {
		t.Fatal("no keywords found")
	}
	for _, kw := range keywords {
		tokens, err := parser.Tokenize([]byte(kw), "")
		if err != nil {
			t.Errorf("%q: %v", kw, err)
			continue
		}
		if len(tokens) != 2 || tokens[0].Literal != kw {
			t.Errorf("%q lexes as %v", kw, tokens)
		}
	}
}

func TestErrors(t *testing.T) {
	g, err := ebnf.Parse("broken.ebnf", strings.NewReader("A = B C .\nD = \"d\" ."))
	if err != nil {
		t.Fatal(err)
	}
	errs := Errors(ebnf.Verify(g, "A"))
	// B and C are undefined, D is unused.
	if len(errs) != 3 {
		t.Errorf("got %d errors, want 3: %v", len(errs), errs)
	}
	if Errors(nil) != nil {
		t.Error("Errors(nil) should be nil")
	}
}

func TestSource(t *testing.T) {
	if !strings.Contains(Source(), "Class       = ClassHeader ClassBody .") {
		t.Error("source does not start with the Class production")
	}
}
