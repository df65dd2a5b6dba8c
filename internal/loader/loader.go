// Package loader implements the Module Loader (ML) of spec.md §4.1: it
// resolves import paths to source files, parses each file through an
// external Parser, and produces a leaves-first topologically ordered module
// list, detecting cyclic imports.
//
// Lexing and parsing are out of scope for this module (spec.md §1); Parser
// is the seam a real lexer/parser plugs into. Tests in this package and in
// internal/compiler supply a fake that builds *ast.File values directly.
package loader

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pawlang-project/pawc/internal/ast"
	"github.com/pawlang-project/pawc/internal/diag"
)

// Parser parses a single source file already resolved to a filesystem path.
type Parser interface {
	Parse(path string) (*ast.File, error)
}

// SourceExt is the file extension searched for when resolving imports.
const SourceExt = ".paw"

// Loader resolves import paths against a standard-library root searched
// first, then a project-local base directory searched second (spec.md §6).
type Loader struct {
	parser  Parser
	stdRoot string
	baseDir string

	loaded    map[string]*ast.File // path -> parsed file
	loading   map[string]bool      // cycle detection: currently being loaded
	order     []string             // discovery order of paths, for DFS below
	importsOf map[string][]string  // path -> imported paths, top-level only
}

// New returns a Loader that searches stdRoot before baseDir.
func New(parser Parser, stdRoot, baseDir string) *Loader {
	return &Loader{
		parser:    parser,
		stdRoot:   stdRoot,
		baseDir:   baseDir,
		loaded:    make(map[string]*ast.File),
		loading:   make(map[string]bool),
		importsOf: make(map[string][]string),
	}
}

// resolve maps an import path "a::b::c" to a/b/c<SourceExt>, preferring the
// standard-library root and falling back to the project base directory.
func (l *Loader) resolve(importPath string) (string, error) {
	rel := filepath.Join(strings.Split(importPath, "::")...) + SourceExt
	if l.stdRoot != "" {
		candidate := filepath.Join(l.stdRoot, rel)
		if fileExists(candidate) {
			return candidate, nil
		}
	}
	candidate := filepath.Join(l.baseDir, rel)
	if fileExists(candidate) {
		return candidate, nil
	}
	return "", diag.SymbolNotFound(importPath)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// ShortName derives a module's canonical short name: the filename stem with
// any "::" remnant stripped (spec.md §6).
func ShortName(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if idx := strings.LastIndex(base, "::"); idx >= 0 {
		base = base[idx+2:]
	}
	return base
}

// Load resolves rootPath and every transitive import reachable from it,
// returning modules in leaves-first topological order together with their
// parsed ASTs, keyed by module short name.
func (l *Loader) Load(rootPath string) ([]string, map[string]*ast.File, error) {
	if err := l.loadFile(rootPath, nil); err != nil {
		return nil, nil, err
	}

	order := l.topoSort(rootPath)
	byName := make(map[string]*ast.File, len(l.loaded))
	names := make([]string, 0, len(order))
	for _, path := range order {
		name := ShortName(path)
		byName[name] = l.loaded[path]
		names = append(names, name)
	}
	return names, byName, nil
}

// loadFile depth-first loads path and every module it imports. stack is the
// chain of paths currently being loaded, used to report the exact cycle.
func (l *Loader) loadFile(path string, stack []string) error {
	if l.loading[path] {
		cycle := append(append([]string{}, stack...), path)
		return diag.CyclicImport(cycle)
	}
	if _, done := l.loaded[path]; done {
		return nil
	}

	l.loading[path] = true
	stack = append(stack, path)
	defer func() {
		l.loading[path] = false
	}()

	file, err := l.parser.Parse(path)
	if err != nil {
		return err
	}
	file.Name = ShortName(path)
	l.loaded[path] = file
	l.order = append(l.order, path)

	var imports []string
	for _, imp := range file.Imports {
		importPath, err := l.resolve(imp.Path)
		if err != nil {
			return err
		}
		imports = append(imports, importPath)
	}
	l.importsOf[path] = imports

	for _, importPath := range imports {
		if err := l.loadFile(importPath, stack); err != nil {
			return err
		}
	}
	return nil
}

// topoSort produces a leaves-first (dependencies before dependents) order
// over every module reachable from root, via a post-order DFS.
func (l *Loader) topoSort(root string) []string {
	visited := make(map[string]bool)
	var order []string
	var visit func(path string)
	visit = func(path string) {
		if visited[path] {
			return
		}
		visited[path] = true
		for _, dep := range l.importsOf[path] {
			visit(dep)
		}
		order = append(order, path)
	}
	visit(root)
	// Any module discovered but not reachable by this particular DFS root
	// walk (shouldn't happen given loadFile already walked every import)
	// is appended defensively in discovery order.
	for _, path := range l.order {
		if !visited[path] {
			visit(path)
		}
	}
	return order
}
