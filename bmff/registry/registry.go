package registry

import (
	"errors"
	"fmt"
	"sync"

	"github.com/agnivade/levenshtein"

	"github.com/dhamidi/boxdef/bmff/parser"
)

var (
	ErrDuplicateClass = errors.New("duplicate class")
	ErrUnknownClass   = errors.New("unknown class")
	ErrCycle          = errors.New("inheritance cycle")
)

// Registry holds parsed classes by name and resolves the references
// between them that the parser leaves open.
type Registry struct {
	mu      sync.RWMutex
	classes map[string]*parser.Class
	order   []string
}

func New() *Registry {
	return &Registry{
		classes: make(map[string]*parser.Class),
	}
}

// Add registers c. A second class with the same name is rejected.
func (r *Registry) Add(c *parser.Class) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := c.Name()
	if _, ok := r.classes[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateClass, name)
	}
	r.classes[name] = c
	r.order = append(r.order, name)
	return nil
}

func (r *Registry) Lookup(name string) (*parser.Class, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.classes[name]
	return c, ok
}

// Classes returns the registered classes in the order they were added.
func (r *Registry) Classes() []*parser.Class {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*parser.Class, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.classes[name])
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Ancestors returns the extends chain of name, nearest base first. The
// chain stops at the first base that is not registered.
func (r *Registry) Ancestors(name string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.classes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownClass, name)
	}
	seen := map[string]bool{name: true}
	var chain []string
	for c.Header.Extends != nil {
		base := c.Header.Extends.Class
		if seen[base] {
			return nil, fmt.Errorf("%w: %s extends %s", ErrCycle, c.Name(), base)
		}
		seen[base] = true
		chain = append(chain, base)
		if c, ok = r.classes[base]; !ok {
			break
		}
	}
	return chain, nil
}

type RefKind int

const (
	RefExtends RefKind = iota + 1
	RefField
)

func (k RefKind) String() string {
	switch k {
	case RefExtends:
		return "base class"
	case RefField:
		return "field type"
	}
	return "reference"
}

// Unresolved is a class name used by a definition but not registered.
// Suggestion is the closest known name, if any is close enough.
type Unresolved struct {
	Class      string
	Name       string
	Kind       RefKind
	Span       parser.Span
	Suggestion string
}

func (u Unresolved) String() string {
	return fmt.Sprintf("%s: class %s: %s", u.Span.Start, u.Class, u.Message())
}

// Message describes the reference without its position.
func (u Unresolved) Message() string {
	msg := fmt.Sprintf("unresolved %s %s", u.Kind, u.Name)
	if u.Suggestion != "" {
		msg += fmt.Sprintf(" (did you mean %s?)", u.Suggestion)
	}
	return msg
}

// Link reports every base class and class-typed field that does not name
// a registered class. Names in known are treated as registered.
func (r *Registry) Link(known ...string) []Unresolved {
	r.mu.RLock()
	defer r.mu.RUnlock()

	extra := make(map[string]bool, len(known))
	for _, name := range known {
		extra[name] = true
	}
	resolved := func(name string) bool {
		_, ok := r.classes[name]
		return ok || extra[name]
	}

	candidates := append(r.order[:len(r.order):len(r.order)], known...)

	var out []Unresolved
	for _, name := range r.order {
		c := r.classes[name]
		if ext := c.Header.Extends; ext != nil && !resolved(ext.Class) {
			out = append(out, Unresolved{
				Class:      name,
				Name:       ext.Class,
				Kind:       RefExtends,
				Span:       ext.Loc,
				Suggestion: closest(ext.Class, candidates),
			})
		}
		walkDecls(c.Body.Stmts, func(d *parser.VarDecl) {
			if d.Kind == parser.BaseClassRef && !resolved(d.TypeName) {
				out = append(out, Unresolved{
					Class:      name,
					Name:       d.TypeName,
					Kind:       RefField,
					Span:       d.NameSpan,
					Suggestion: closest(d.TypeName, candidates),
				})
			}
		})
	}
	return out
}

// closest returns the candidate with the smallest edit distance to name,
// or "" if none is within a third of the name's length. Ties go to the
// earlier candidate.
func closest(name string, candidates []string) string {
	limit := min(max(len(name)/3, 1), 3)
	best, bestDist := "", limit+1
	for _, c := range candidates {
		if d := levenshtein.ComputeDistance(name, c); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

// walkDecls calls fn for every declaration in stmts, including those
// nested in conditionals and loops.
func walkDecls(stmts []parser.Stmt, fn func(*parser.VarDecl)) {
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *parser.VarDecl:
			fn(s)
		case *parser.If:
			walkDecls(s.Then, fn)
			for _, branch := range s.ElseIf {
				walkDecls(branch.Body, fn)
			}
			walkDecls(s.Else, fn)
		case *parser.For:
			walkDecls(s.Body, fn)
		}
	}
}
