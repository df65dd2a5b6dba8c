package loader_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawlang-project/pawc/internal/ast"
	"github.com/pawlang-project/pawc/internal/loader"
)

// fakeParser builds *ast.File values directly instead of parsing source
// text, the seam spec.md §6 leaves for a real lexer/parser (mirrored from
// internal/compiler's own test fakes).
type fakeParser struct {
	imports map[string][]string // path -> import paths ("a::b")
}

func (p *fakeParser) Parse(path string) (*ast.File, error) {
	var imps []*ast.ImportDecl
	for _, imp := range p.imports[path] {
		imps = append(imps, &ast.ImportDecl{Path: imp})
	}
	return &ast.File{Imports: imps}, nil
}

func touch(t *testing.T, dir, rel string) {
	t.Helper()
	full := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(""), 0o644))
}

func TestLoadLeavesFirstOrder(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "main.paw")
	touch(t, dir, "math.paw")
	touch(t, dir, "util.paw")

	p := &fakeParser{imports: map[string][]string{
		filepath.Join(dir, "main.paw"): {"math", "util"},
		filepath.Join(dir, "math.paw"): {"util"},
	}}
	l := loader.New(p, "", dir)

	order, files, err := l.Load(filepath.Join(dir, "main.paw"))
	require.NoError(t, err)
	require.Len(t, order, 3)

	pos := func(name string) int {
		for i, n := range order {
			if n == name {
				return i
			}
		}
		return -1
	}
	assert.Less(t, pos("util"), pos("math"))
	assert.Less(t, pos("math"), pos("main"))
	assert.Contains(t, files, "main")
}

func TestLoadDetectsCycle(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.paw")
	touch(t, dir, "b.paw")

	p := &fakeParser{imports: map[string][]string{
		filepath.Join(dir, "a.paw"): {"b"},
		filepath.Join(dir, "b.paw"): {"a"},
	}}
	l := loader.New(p, "", dir)

	_, _, err := l.Load(filepath.Join(dir, "a.paw"))
	require.Error(t, err)
}

func TestShortNameStripsExtAndQualifier(t *testing.T) {
	assert.Equal(t, "math", loader.ShortName("/root/math.paw"))
	assert.Equal(t, "math", loader.ShortName("/root/std::math.paw"))
}

func TestResolveSearchesStdRootThenBaseDir(t *testing.T) {
	stdDir := t.TempDir()
	baseDir := t.TempDir()
	touch(t, baseDir, "main.paw")
	touch(t, stdDir, "io.paw") // only present under stdRoot

	p := &fakeParser{imports: map[string][]string{
		filepath.Join(baseDir, "main.paw"): {"io"},
	}}
	l := loader.New(p, stdDir, baseDir)

	order, _, err := l.Load(filepath.Join(baseDir, "main.paw"))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"io", "main"}, order)
}
