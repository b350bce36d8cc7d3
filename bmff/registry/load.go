package registry

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/tliron/commonlog"
	"golang.org/x/sync/errgroup"

	"github.com/dhamidi/boxdef/bmff/parser"
)

var log = commonlog.GetLogger("boxdef.registry")

type Options struct {
	// Workers bounds the number of definitions parsed at once. Zero means
	// one per CPU.
	Workers int
}

// DefinitionError is the parse failure of one definition in a file.
type DefinitionError struct {
	// Index is the position of the definition in its file, from zero.
	Index int
	// Name is the class name if the header got far enough to have one.
	Name string
	// Span locates the failure: the span of the parse error, or the class
	// name of a duplicate.
	Span parser.Span
	Err  error
}

func (e *DefinitionError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("class %s: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("definition %d: %v", e.Index+1, e.Err)
}

func (e *DefinitionError) Unwrap() error {
	return e.Err
}

// Result is everything learned from one file.
type Result struct {
	File string
	// Classes holds the definitions that parsed, in file order.
	Classes     []*parser.Class
	Diagnostics []parser.Diagnostic
	Errors      []*DefinitionError

	// indexes[i] is the position of Classes[i] in the file.
	indexes []int
}

// Err joins the definition errors of the result, or returns nil.
func (r *Result) Err() error {
	errs := make([]error, len(r.Errors))
	for i, err := range r.Errors {
		errs[i] = err
	}
	return errors.Join(errs...)
}

type parsed struct {
	class *parser.Class
	diags []parser.Diagnostic
	err   error
}

// Load splits src into class definitions and parses them concurrently.
// A definition that fails to parse is reported in Result.Errors and does
// not affect the others. The returned error is non-nil only when src
// cannot be tokenized or ctx is done.
func Load(ctx context.Context, file string, src []byte, opts Options) (*Result, error) {
	tokens, err := parser.Tokenize(src, file)
	if err != nil {
		return nil, fmt.Errorf("tokenize %s: %w", file, err)
	}
	defs := parser.SplitDefinitions(tokens)

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]parsed, len(defs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, def := range defs {
		if gctx.Err() != nil {
			break
		}
		i, def := i, def
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p := parser.NewParser(def, parser.WithFile(file))
			class, err := p.ParseClass()
			results[i] = parsed{class: class, diags: p.Diagnostics(), err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{File: file}
	for i, r := range results {
		res.Diagnostics = append(res.Diagnostics, r.diags...)
		if r.err != nil {
			derr := &DefinitionError{Index: i, Name: definitionName(defs[i]), Span: errorSpan(r.err), Err: r.err}
			log.Debugf("%s: %v", file, derr)
			res.Errors = append(res.Errors, derr)
			continue
		}
		res.Classes = append(res.Classes, r.class)
		res.indexes = append(res.indexes, i)
	}
	log.Infof("%s: loaded %d of %d definitions", file, len(res.Classes), len(defs))
	return res, nil
}

// LoadInto loads src and adds every parsed class to reg. Duplicate names
// are reported as definition errors.
func LoadInto(ctx context.Context, reg *Registry, file string, src []byte, opts Options) (*Result, error) {
	res, err := Load(ctx, file, src, opts)
	if err != nil {
		return nil, err
	}
	var kept []*parser.Class
	var indexes []int
	for i, c := range res.Classes {
		if err := reg.Add(c); err != nil {
			res.Errors = append(res.Errors, duplicate(res.indexes[i], c, err))
			continue
		}
		kept = append(kept, c)
		indexes = append(indexes, res.indexes[i])
	}
	res.Classes, res.indexes = kept, indexes
	return res, nil
}

// definitionName finds the class name in the header tokens of a
// definition.
func definitionName(tokens []parser.Token) string {
	for i, tok := range tokens {
		if tok.Kind == parser.TokenLBrace {
			break
		}
		if tok.Kind == parser.TokenClass && i+1 < len(tokens) && tokens[i+1].Kind == parser.TokenIdent {
			return tokens[i+1].Literal
		}
	}
	return ""
}

func duplicate(index int, c *parser.Class, err error) *DefinitionError {
	return &DefinitionError{Index: index, Name: c.Name(), Span: c.Header.NameSpan, Err: err}
}

func errorSpan(err error) parser.Span {
	var perr *parser.Error
	if errors.As(err, &perr) {
		return perr.Span
	}
	return parser.Span{}
}
