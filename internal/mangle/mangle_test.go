package mangle_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pawlang-project/pawc/internal/ast"
	"github.com/pawlang-project/pawc/internal/mangle"
)

func prim(k ast.PrimKind) ast.Type { return &ast.PrimitiveType{Kind: k} }

func TestMangleNoArgs(t *testing.T) {
	assert.Equal(t, "List", mangle.Mangle("List", nil))
}

func TestMangleScalarArgs(t *testing.T) {
	got := mangle.Mangle("List", []ast.Type{prim(ast.I32)})
	assert.Equal(t, "List_i32", got)
}

func TestMangleNestedGeneric(t *testing.T) {
	inner := &ast.NamedType{Name: "Box", Args: []ast.Type{prim(ast.Bool)}}
	got := mangle.Mangle("List", []ast.Type{inner})
	assert.Equal(t, "List_Box_bool", got)
}

func TestTypeNameVariants(t *testing.T) {
	assert.Equal(t, "i64", mangle.TypeName(prim(ast.I64)))
	assert.Equal(t, "Self", mangle.TypeName(&ast.SelfType{}))
	assert.Equal(t, "T", mangle.TypeName(&ast.GenericType{Param: "T"}))
	assert.Equal(t, "i32", mangle.TypeName(&ast.ArrayType{Elem: prim(ast.I32), Size: 4}))
	assert.Equal(t, "i32_opt", mangle.TypeName(&ast.OptionalType{Inner: prim(ast.I32)}))
}

func TestStructSuffixAndMethodName(t *testing.T) {
	assert.Equal(t, "", mangle.StructSuffix("List", "List"))
	assert.Equal(t, "i32", mangle.StructSuffix("List", "List_i32"))

	assert.Equal(t, "push", mangle.MethodName("push", ""))
	assert.Equal(t, "push_i32", mangle.MethodName("push", "i32"))
}

func TestMangleIsDeterministic(t *testing.T) {
	args := []ast.Type{prim(ast.I32), prim(ast.Bool)}
	a := mangle.Mangle("Pair", args)
	b := mangle.Mangle("Pair", args)
	assert.Equal(t, a, b)
}
