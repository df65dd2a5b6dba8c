package symtab_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawlang-project/pawc/internal/ast"
	"github.com/pawlang-project/pawc/internal/symtab"
)

func TestDeclareAndLookupSameModule(t *testing.T) {
	tbl := symtab.New()
	decl := &ast.FuncDecl{Name: "add", Public: false}
	require.NoError(t, tbl.Declare("math", &symtab.Function{Decl: decl, PubFlg: false}))

	sym, ok := tbl.Lookup("add", "math")
	require.True(t, ok)
	assert.Equal(t, "add", sym.Name())
}

func TestDuplicateDeclareFails(t *testing.T) {
	tbl := symtab.New()
	decl := &ast.FuncDecl{Name: "add"}
	require.NoError(t, tbl.Declare("math", &symtab.Function{Decl: decl}))
	err := tbl.Declare("math", &symtab.Function{Decl: decl})
	require.Error(t, err)
}

func TestLookupHidesPrivateCrossModule(t *testing.T) {
	tbl := symtab.New()
	decl := &ast.FuncDecl{Name: "helper", Public: false}
	require.NoError(t, tbl.Declare("math", &symtab.Function{Decl: decl, PubFlg: false}))

	_, ok := tbl.Lookup("helper", "other")
	assert.False(t, ok)
}

func TestLookupFindsPublicCrossModule(t *testing.T) {
	tbl := symtab.New()
	decl := &ast.FuncDecl{Name: "helper", Public: true}
	require.NoError(t, tbl.Declare("math", &symtab.Function{Decl: decl, PubFlg: true}))

	sym, ok := tbl.Lookup("helper", "other")
	require.True(t, ok)
	assert.True(t, sym.Public())
}

func TestIsAccessible(t *testing.T) {
	pub := &symtab.Function{Decl: &ast.FuncDecl{Name: "f"}, PubFlg: true}
	priv := &symtab.Function{Decl: &ast.FuncDecl{Name: "g"}, PubFlg: false}

	assert.True(t, symtab.IsAccessible(pub, "math", "other"))
	assert.True(t, symtab.IsAccessible(priv, "math", "math"))
	assert.False(t, symtab.IsAccessible(priv, "math", "other"))
}

func TestGenericTypeTemplateHasNilIR(t *testing.T) {
	tsym := &symtab.Type{Decl: &ast.StructDecl{Name: "List", Generics: []string{"T"}}}
	assert.True(t, tsym.IsGenericTemplate())
}

func TestReplaceOverwritesExistingEntry(t *testing.T) {
	tbl := symtab.New()
	decl := &ast.StructDecl{Name: "List", Generics: []string{"T"}}
	require.NoError(t, tbl.Declare("coll", &symtab.Type{Decl: decl}))
	tbl.Replace("coll", &symtab.Type{Decl: decl, IR: nil, PubFlg: true})

	sym, ok := tbl.LookupInModule("coll", "List")
	require.True(t, ok)
	assert.True(t, sym.Public())
}
