// Package grammar holds the EBNF of the box definition language, checks it
// with golang.org/x/exp/ebnf and matches parser tokens against it.
package grammar

import (
	_ "embed"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"golang.org/x/exp/ebnf"
)

// Start is the start production of the grammar.
const Start = "Class"

const filename = "boxdef.ebnf"

//go:embed boxdef.ebnf
var source string

// Source returns the grammar text.
func Source() string {
	return source
}

// Load parses the embedded grammar.
func Load() (ebnf.Grammar, error) {
	g, err := ebnf.Parse(filename, strings.NewReader(source))
	if err != nil {
		return nil, fmt.Errorf("parse grammar: %w", err)
	}
	return g, nil
}

// Verify parses the embedded grammar and checks that every production is
// defined and reachable from Start.
func Verify() error {
	g, err := Load()
	if err != nil {
		return err
	}
	return ebnf.Verify(g, Start)
}

// Productions returns the names of all productions, sorted.
func Productions(g ebnf.Grammar) []string {
	names := make([]string, 0, len(g))
	for name := range g {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Keywords returns the literal tokens used by the non-lexical productions
// of g, sorted.
func Keywords(g ebnf.Grammar) []string {
	seen := make(map[string]bool)
	for name, prod := range g {
		if isLexical(name) {
			continue
		}
		collectTokens(prod.Expr, seen)
	}
	out := make([]string, 0, len(seen))
	for tok := range seen {
		out = append(out, tok)
	}
	sort.Strings(out)
	return out
}

func collectTokens(expr ebnf.Expression, seen map[string]bool) {
	switch x := expr.(type) {
	case ebnf.Alternative:
		for _, e := range x {
			collectTokens(e, seen)
		}
	case ebnf.Sequence:
		for _, e := range x {
			collectTokens(e, seen)
		}
	case *ebnf.Group:
		collectTokens(x.Body, seen)
	case *ebnf.Option:
		collectTokens(x.Body, seen)
	case *ebnf.Repetition:
		collectTokens(x.Body, seen)
	case *ebnf.Token:
		seen[x.String] = true
	}
}

func isLexical(name string) bool {
	return name != "" && name[0] >= 'a' && name[0] <= 'z'
}

// Errors flattens the error list returned by ebnf.Parse and ebnf.Verify.
func Errors(err error) []error {
	if err == nil {
		return nil
	}
	v := reflect.ValueOf(err)
	for v.Kind() != reflect.Slice {
		inner := errors.Unwrap(v.Interface().(error))
		if inner == nil {
			return []error{err}
		}
		v = reflect.ValueOf(inner)
	}
	out := make([]error, 0, v.Len())
	for i := 0; i < v.Len(); i++ {
		if e, ok := v.Index(i).Interface().(error); ok {
			out = append(out, e)
		}
	}
	return out
}
