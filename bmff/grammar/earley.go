package grammar

import (
	"fmt"

	"golang.org/x/exp/ebnf"

	"github.com/dhamidi/boxdef/bmff/parser"
)

// Recognizer decides whether a token sequence of the parser is a sentence
// of the grammar, using Earley's algorithm over a BNF form of the EBNF.
//
// Groups, options and repetitions become fresh nonterminals named after
// the production they appear in. Lexical productions are not expanded;
// the ones referenced from syntax productions match parser token kinds.
type Recognizer struct {
	start    string
	rules    map[string][]*rule
	nullable map[string]bool
}

type rule struct {
	lhs string
	rhs []symbol
}

// symbol is a nonterminal when name is set, otherwise a terminal that
// matches a literal or a lexical class.
type symbol struct {
	name    string
	literal string
	lexical string
}

func (s symbol) terminal() bool {
	return s.name == ""
}

func (s symbol) String() string {
	switch {
	case s.name != "":
		return s.name
	case s.lexical != "":
		return s.lexical
	}
	return fmt.Sprintf("%q", s.literal)
}

// tokenClasses maps the lexical productions usable from syntax productions
// to the tokens they match.
var tokenClasses = map[string]func(parser.Token) bool{
	"ident": func(tok parser.Token) bool {
		return tok.Kind == parser.TokenIdent || tok.Kind.IsKeyword()
	},
	"int_lit": func(tok parser.Token) bool {
		return tok.Kind == parser.TokenIntLiteral
	},
	"string_lit": func(tok parser.Token) bool {
		return tok.Kind == parser.TokenStringLiteral
	},
}

// NewRecognizer converts g to rules for the start production.
func NewRecognizer(g ebnf.Grammar, start string) (*Recognizer, error) {
	if _, ok := g[start]; !ok {
		return nil, fmt.Errorf("no start production %s", start)
	}
	b := &builder{
		r: &Recognizer{
			start: start,
			rules: make(map[string][]*rule),
		},
		counts: make(map[string]int),
	}
	for _, name := range Productions(g) {
		if isLexical(name) {
			continue
		}
		b.prod = name
		alts, err := b.alternatives(g[name].Expr)
		if err != nil {
			return nil, fmt.Errorf("production %s: %w", name, err)
		}
		for _, rhs := range alts {
			b.add(name, rhs)
		}
	}
	b.r.nullable = nullable(b.r.rules)
	return b.r, nil
}

// NewDefault returns a recognizer for the embedded grammar.
func NewDefault() (*Recognizer, error) {
	g, err := Load()
	if err != nil {
		return nil, err
	}
	return NewRecognizer(g, Start)
}

type builder struct {
	r      *Recognizer
	prod   string
	counts map[string]int
}

func (b *builder) add(lhs string, rhs []symbol) {
	b.r.rules[lhs] = append(b.r.rules[lhs], &rule{lhs: lhs, rhs: rhs})
}

func (b *builder) fresh() string {
	b.counts[b.prod]++
	return fmt.Sprintf("%s#%d", b.prod, b.counts[b.prod])
}

func (b *builder) alternatives(expr ebnf.Expression) ([][]symbol, error) {
	switch x := expr.(type) {
	case nil:
		return [][]symbol{{}}, nil
	case ebnf.Alternative:
		var out [][]symbol
		for _, e := range x {
			alts, err := b.alternatives(e)
			if err != nil {
				return nil, err
			}
			out = append(out, alts...)
		}
		return out, nil
	case ebnf.Sequence:
		seq := make([]symbol, 0, len(x))
		for _, e := range x {
			sym, err := b.symbol(e)
			if err != nil {
				return nil, err
			}
			seq = append(seq, sym)
		}
		return [][]symbol{seq}, nil
	}
	sym, err := b.symbol(expr)
	if err != nil {
		return nil, err
	}
	return [][]symbol{{sym}}, nil
}

func (b *builder) symbol(expr ebnf.Expression) (symbol, error) {
	switch x := expr.(type) {
	case *ebnf.Token:
		return symbol{literal: x.String}, nil
	case *ebnf.Name:
		if !isLexical(x.String) {
			return symbol{name: x.String}, nil
		}
		if _, ok := tokenClasses[x.String]; !ok {
			return symbol{}, fmt.Errorf("lexical production %s has no token class", x.String)
		}
		return symbol{lexical: x.String}, nil
	case *ebnf.Group:
		name := b.fresh()
		alts, err := b.alternatives(x.Body)
		if err != nil {
			return symbol{}, err
		}
		for _, rhs := range alts {
			b.add(name, rhs)
		}
		return symbol{name: name}, nil
	case *ebnf.Option:
		name := b.fresh()
		alts, err := b.alternatives(x.Body)
		if err != nil {
			return symbol{}, err
		}
		b.add(name, nil)
		for _, rhs := range alts {
			b.add(name, rhs)
		}
		return symbol{name: name}, nil
	case *ebnf.Repetition:
		name := b.fresh()
		alts, err := b.alternatives(x.Body)
		if err != nil {
			return symbol{}, err
		}
		b.add(name, nil)
		for _, rhs := range alts {
			b.add(name, append(rhs[:len(rhs):len(rhs)], symbol{name: name}))
		}
		return symbol{name: name}, nil
	case ebnf.Alternative, ebnf.Sequence:
		name := b.fresh()
		alts, err := b.alternatives(x)
		if err != nil {
			return symbol{}, err
		}
		for _, rhs := range alts {
			b.add(name, rhs)
		}
		return symbol{name: name}, nil
	case *ebnf.Range:
		return symbol{}, fmt.Errorf("range %s … %s outside a lexical production", x.Begin.String, x.End.String)
	}
	return symbol{}, fmt.Errorf("unexpected expression %T", expr)
}

// nullable computes the nonterminals that derive the empty sequence.
func nullable(rules map[string][]*rule) map[string]bool {
	out := make(map[string]bool)
	for changed := true; changed; {
		changed = false
		for lhs, rs := range rules {
			if out[lhs] {
				continue
			}
			for _, r := range rs {
				empty := true
				for _, sym := range r.rhs {
					if sym.terminal() || !out[sym.name] {
						empty = false
						break
					}
				}
				if empty {
					out[lhs] = true
					changed = true
					break
				}
			}
		}
	}
	return out
}

// Item is an Earley item: a rule with a dot position and the chart
// position where it started.
type Item struct {
	rule   *rule
	Dot    int
	Origin int
}

func (item Item) complete() bool {
	return item.Dot == len(item.rule.rhs)
}

func (item Item) next() symbol {
	return item.rule.rhs[item.Dot]
}

func (item Item) advance() Item {
	return Item{rule: item.rule, Dot: item.Dot + 1, Origin: item.Origin}
}

func (item Item) String() string {
	s := item.rule.lhs + " →"
	for i, sym := range item.rule.rhs {
		if i == item.Dot {
			s += " •"
		}
		s += " " + sym.String()
	}
	if item.complete() {
		s += " •"
	}
	return fmt.Sprintf("[%s, %d]", s, item.Origin)
}

// ItemSet is the set of items at one chart position.
type ItemSet struct {
	items []Item
	seen  map[Item]bool
}

func newItemSet() *ItemSet {
	return &ItemSet{seen: make(map[Item]bool)}
}

func (s *ItemSet) Add(item Item) bool {
	if s.seen[item] {
		return false
	}
	s.seen[item] = true
	s.items = append(s.items, item)
	return true
}

func (s *ItemSet) Len() int {
	return len(s.items)
}

// Accept reports whether tokens form a sentence of the start production.
// A trailing EOF token is ignored. The error is a *parser.Error at the
// first token no item could scan.
func (r *Recognizer) Accept(tokens []parser.Token) error {
	var eof *parser.Token
	if n := len(tokens); n > 0 && tokens[n-1].Kind == parser.TokenEOF {
		eof = &tokens[n-1]
		tokens = tokens[:n-1]
	}
	n := len(tokens)
	chart := make([]*ItemSet, n+1)
	for i := range chart {
		chart[i] = newItemSet()
	}
	for _, rl := range r.rules[r.start] {
		chart[0].Add(Item{rule: rl})
	}

	last := 0
	for pos := 0; pos <= n; pos++ {
		set := chart[pos]
		if set.Len() > 0 {
			last = pos
		}
		// The set grows while it is processed.
		for i := 0; i < len(set.items); i++ {
			item := set.items[i]
			switch {
			case item.complete():
				r.complete(chart, pos, item)
			case item.next().terminal():
				if pos < n && matches(item.next(), tokens[pos]) {
					chart[pos+1].Add(item.advance())
				}
			default:
				r.predict(set, pos, item)
			}
		}
	}

	for _, item := range chart[n].items {
		if item.complete() && item.Origin == 0 && item.rule.lhs == r.start {
			return nil
		}
	}
	if last < n {
		tok := tokens[last]
		return &parser.Error{
			Kind:    parser.SyntaxError,
			Span:    tok.Span,
			Message: fmt.Sprintf("grammar does not allow %s here", tok),
		}
	}
	err := &parser.Error{Kind: parser.SyntaxError, Message: "unexpected end of input"}
	switch {
	case eof != nil:
		err.Span = eof.Span
	case n > 0:
		err.Span = parser.Span{Start: tokens[n-1].Span.End, End: tokens[n-1].Span.End}
	}
	return err
}

// predict adds the rules of the nonterminal after the dot. A nullable
// nonterminal is also stepped over right away, since its empty
// completion would otherwise be missed.
func (r *Recognizer) predict(set *ItemSet, pos int, item Item) {
	name := item.next().name
	for _, rl := range r.rules[name] {
		set.Add(Item{rule: rl, Origin: pos})
	}
	if r.nullable[name] {
		set.Add(item.advance())
	}
}

func (r *Recognizer) complete(chart []*ItemSet, pos int, done Item) {
	origin := chart[done.Origin]
	for i := 0; i < len(origin.items); i++ {
		waiting := origin.items[i]
		if waiting.complete() {
			continue
		}
		if sym := waiting.next(); !sym.terminal() && sym.name == done.rule.lhs {
			chart[pos].Add(waiting.advance())
		}
	}
}

func matches(sym symbol, tok parser.Token) bool {
	if sym.lexical != "" {
		return tokenClasses[sym.lexical](tok)
	}
	return tok.Literal == sym.literal
}

// AcceptSource tokenizes src and checks every class definition in it
// against the embedded grammar. It returns one error per rejected
// definition.
func AcceptSource(file string, src []byte) ([]error, error) {
	r, err := NewDefault()
	if err != nil {
		return nil, err
	}
	tokens, err := parser.Tokenize(src, file)
	if err != nil {
		return nil, err
	}
	var errs []error
	for _, def := range parser.SplitDefinitions(tokens) {
		if err := r.Accept(def); err != nil {
			errs = append(errs, err)
		}
	}
	return errs, nil
}
