package registry

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/dhamidi/boxdef/bmff/parser"
)

// Ext is the file extension of box definition files.
const Ext = ".box"

// Workspace tracks the definition files below a root directory and keeps a
// registry over all of them.
type Workspace struct {
	mu      sync.RWMutex
	rootDir string
	opts    Options
	files   map[string]*FileInfo
	reg     *Registry
	// dups holds the duplicate definitions found while rebuilding reg.
	dups map[string][]*DefinitionError
}

type FileInfo struct {
	Path    string
	Content []byte
	Result  *Result
	// LoadErr is set when the file could not be tokenized at all.
	LoadErr error
}

func NewWorkspace(rootDir string, opts Options) *Workspace {
	return &Workspace{
		rootDir: rootDir,
		opts:    opts,
		files:   make(map[string]*FileInfo),
		reg:     New(),
		dups:    make(map[string][]*DefinitionError),
	}
}

func (w *Workspace) RootDir() string {
	return w.rootDir
}

func (w *Workspace) ScanAll(ctx context.Context) error {
	return filepath.Walk(w.rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			return nil
		}
		if filepath.Ext(path) == Ext {
			w.ScanFile(ctx, path)
		}
		return nil
	})
}

func (w *Workspace) ScanFile(ctx context.Context, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return w.UpdateFile(ctx, path, content)
}

// UpdateFile reparses path from content and rebuilds the registry. The
// returned error is that of the context; parse failures are kept in the
// file's FileInfo.
func (w *Workspace) UpdateFile(ctx context.Context, path string, content []byte) error {
	res, err := Load(ctx, path, content, w.opts)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.files[path] = &FileInfo{
		Path:    path,
		Content: content,
		Result:  res,
		LoadErr: err,
	}
	w.rebuildLocked()
	return nil
}

func (w *Workspace) RemoveFile(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.files, path)
	w.rebuildLocked()
}

// rebuildLocked registers the classes of all files, in path order so that
// the first definition of a duplicated name wins deterministically.
func (w *Workspace) rebuildLocked() {
	paths := make([]string, 0, len(w.files))
	for path := range w.files {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	reg := New()
	dups := make(map[string][]*DefinitionError)
	for _, path := range paths {
		res := w.files[path].Result
		if res == nil {
			continue
		}
		for i, c := range res.Classes {
			if err := reg.Add(c); err != nil {
				dups[path] = append(dups[path], duplicate(res.indexes[i], c, err))
			}
		}
	}
	w.reg = reg
	w.dups = dups
}

func (w *Workspace) GetFile(path string) *FileInfo {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.files[path]
}

// Paths returns the tracked files in sorted order.
func (w *Workspace) Paths() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	paths := make([]string, 0, len(w.files))
	for path := range w.files {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// Registry returns the registry over all tracked files. It is replaced,
// not modified, when a file changes.
func (w *Workspace) Registry() *Registry {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.reg
}

func (w *Workspace) FindClass(name string) *parser.Class {
	c, _ := w.Registry().Lookup(name)
	return c
}

// Errors returns the definition errors of path, duplicates across files
// included.
func (w *Workspace) Errors(path string) []*DefinitionError {
	w.mu.RLock()
	defer w.mu.RUnlock()
	var out []*DefinitionError
	if f := w.files[path]; f != nil && f.Result != nil {
		out = append(out, f.Result.Errors...)
	}
	return append(out, w.dups[path]...)
}

// Unresolved returns the unresolved references made by classes defined in
// path.
func (w *Workspace) Unresolved(path string, known ...string) []Unresolved {
	w.mu.RLock()
	f := w.files[path]
	reg := w.reg
	w.mu.RUnlock()
	if f == nil || f.Result == nil {
		return nil
	}
	mine := make(map[*parser.Class]bool, len(f.Result.Classes))
	for _, c := range f.Result.Classes {
		mine[c] = true
	}
	var out []Unresolved
	for _, u := range reg.Link(known...) {
		if c, ok := reg.Lookup(u.Class); ok && mine[c] {
			out = append(out, u)
		}
	}
	return out
}
