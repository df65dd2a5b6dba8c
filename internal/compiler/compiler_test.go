package compiler_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawlang-project/pawc/internal/ast"
	"github.com/pawlang-project/pawc/internal/compiler"
	"github.com/pawlang-project/pawc/internal/loader"
)

// fakeParser serves *ast.File values built by hand, the same seam
// internal/loader's own tests use in place of a real lexer/parser (spec.md
// §6 "Parser interface").
type fakeParser struct {
	files map[string]*ast.File
}

func (p *fakeParser) Parse(path string) (*ast.File, error) {
	f, ok := p.files[path]
	if !ok {
		return nil, fmt.Errorf("fakeParser: no file registered for %s", path)
	}
	return f, nil
}

func i32() ast.Type { return &ast.PrimitiveType{Kind: ast.I32} }

func ret(e ast.Expr) ast.Stmt { return &ast.ReturnStmt{Value: e} }
func block(stmts ...ast.Stmt) *ast.BlockStmt { return &ast.BlockStmt{List: stmts} }

func newCompiler(files map[string]*ast.File) *compiler.ModuleCompiler {
	l := loader.New(&fakeParser{files: files}, "", "")
	return compiler.New(l, nil)
}

// 1. Arithmetic function: add(a, b) lowers to an IR add instruction, and a
// caller folding add(2, 3) produces the IR for returning that result.
func TestArithmeticFunction(t *testing.T) {
	addDecl := &ast.FuncDecl{
		Name: "add",
		Params: []*ast.Param{
			{Name: "a", Type: i32()},
			{Name: "b", Type: i32()},
		},
		Ret: i32(),
		Body: block(ret(&ast.BinaryExpr{
			Op:    "+",
			Left:  &ast.IdentExpr{Name: "a"},
			Right: &ast.IdentExpr{Name: "b"},
		})),
		Public: true,
	}
	mainDecl := &ast.FuncDecl{
		Name: "main",
		Ret:  i32(),
		Body: block(ret(&ast.CallExpr{
			Fun:  &ast.IdentExpr{Name: "add"},
			Args: []ast.Expr{&ast.IntLit{Value: 2}, &ast.IntLit{Value: 3}},
		})),
	}
	mc := newCompiler(map[string]*ast.File{
		"main.paw": {Name: "main", Items: []ast.Item{addDecl, mainDecl}},
	})

	res, err := mc.CompileProgram("main.paw")
	require.NoError(t, err)

	text := res.Module.String()
	assert.Contains(t, text, "define i32 @add(i32 %a, i32 %b)")
	assert.Contains(t, text, "add i32 %a, %b")
	assert.Contains(t, text, "call i32 @add(i32 2, i32 3)")
}

// 2. Generic monomorphization: calling util::id<i32>(7) from main emits
// exactly one concrete function, mangled id_i32.
func TestGenericMonomorphization(t *testing.T) {
	idDecl := &ast.FuncDecl{
		Name:     "id",
		Generics: []string{"T"},
		Params:   []*ast.Param{{Name: "x", Type: &ast.GenericType{Param: "T"}}},
		Ret:      &ast.GenericType{Param: "T"},
		Body:     block(ret(&ast.IdentExpr{Name: "x"})),
		Public:   true,
	}
	mainDecl := &ast.FuncDecl{
		Name: "main",
		Ret:  i32(),
		Body: block(ret(&ast.CallExpr{
			Fun:      &ast.ModuleRefExpr{Module: "util", Name: "id"},
			TypeArgs: []ast.Type{i32()},
			Args:     []ast.Expr{&ast.IntLit{Value: 7}},
		})),
	}
	mc := newCompiler(map[string]*ast.File{
		"main.paw": {
			Name:    "main",
			Imports: []*ast.ImportDecl{{Path: "util"}},
			Items:   []ast.Item{mainDecl},
		},
		"util.paw": {Name: "util", Items: []ast.Item{idDecl}},
	})

	res, err := mc.CompileProgram("main.paw")
	require.NoError(t, err)

	count := 0
	for _, f := range res.Module.Funcs {
		if f.Name() == "id_i32" {
			count++
		}
	}
	assert.Equal(t, 1, count, "exactly one id_i32 should be emitted")
	assert.Contains(t, res.Module.String(), "call i32 @id_i32(i32 7)")
}

// 3. Optional/try: half(n) returns ok(n/2) or err("odd"); run() uses `?` to
// short-circuit half(8) into ok(q + 1).
func buildHalfAndRun() (*ast.FuncDecl, *ast.FuncDecl) {
	half := &ast.FuncDecl{
		Name:   "half",
		Params: []*ast.Param{{Name: "n", Type: i32()}},
		Ret:    &ast.OptionalType{Inner: i32()},
		Body: block(&ast.IfStmt{
			Cond: &ast.BinaryExpr{
				Op:    "==",
				Left:  &ast.BinaryExpr{Op: "%", Left: &ast.IdentExpr{Name: "n"}, Right: &ast.IntLit{Value: 2}},
				Right: &ast.IntLit{Value: 0},
			},
			Then: block(ret(&ast.OkExpr{X: &ast.BinaryExpr{
				Op: "/", Left: &ast.IdentExpr{Name: "n"}, Right: &ast.IntLit{Value: 2},
			}})),
			Else: block(ret(&ast.ErrExpr{X: &ast.StringLit{Value: "odd"}})),
		}),
	}
	run := &ast.FuncDecl{
		Name: "run",
		Ret:  &ast.OptionalType{Inner: i32()},
		Body: block(
			&ast.LetStmt{Name: "q", Init: &ast.TryExpr{X: &ast.CallExpr{
				Fun: &ast.IdentExpr{Name: "half"}, Args: []ast.Expr{&ast.IntLit{Value: 8}},
			}}},
			ret(&ast.OkExpr{X: &ast.BinaryExpr{
				Op: "+", Left: &ast.IdentExpr{Name: "q"}, Right: &ast.IntLit{Value: 1},
			}}),
		),
	}
	return half, run
}

func TestOptionalTry(t *testing.T) {
	half, run := buildHalfAndRun()
	mc := newCompiler(map[string]*ast.File{
		"main.paw": {Name: "main", Items: []ast.Item{half, run}},
	})

	res, err := mc.CompileProgram("main.paw")
	require.NoError(t, err)

	text := res.Module.String()
	assert.Contains(t, text, "define")
	assert.Contains(t, text, "@half")
	assert.Contains(t, text, "@run")
	// The Optional<i32> tagged struct (tag, value, error pointer) backs both
	// half's and run's return type.
	assert.Contains(t, text, "i32, i32, i8*")
}

// 4. Cross-module struct: geom::Point.sum() is called from main on a
// heap-allocated struct literal.
func TestCrossModuleStructMethod(t *testing.T) {
	point := &ast.StructDecl{
		Name: "Point",
		Fields: []*ast.FieldDecl{
			{Name: "x", Type: i32()},
			{Name: "y", Type: i32()},
		},
		Methods: []*ast.FuncDecl{{
			Name: "sum",
			Ret:  i32(),
			Body: block(ret(&ast.BinaryExpr{
				Op:    "+",
				Left:  &ast.MemberAccessExpr{X: &ast.IdentExpr{Name: "self"}, Name: "x"},
				Right: &ast.MemberAccessExpr{X: &ast.IdentExpr{Name: "self"}, Name: "y"},
			})),
			Public: true,
		}},
		Public: true,
	}
	mainDecl := &ast.FuncDecl{
		Name: "main",
		Ret:  i32(),
		Body: block(ret(&ast.CallExpr{
			Fun: &ast.MemberAccessExpr{
				X: &ast.StructLitExpr{
					Name: "Point",
					Fields: []*ast.FieldInit{
						{Name: "x", Value: &ast.IntLit{Value: 10}},
						{Name: "y", Value: &ast.IntLit{Value: 20}},
					},
				},
				Name: "sum",
			},
		})),
	}
	mc := newCompiler(map[string]*ast.File{
		"main.paw": {
			Name:    "main",
			Imports: []*ast.ImportDecl{{Path: "geom"}},
			Items:   []ast.Item{mainDecl},
		},
		"geom.paw": {Name: "geom", Items: []ast.Item{point}},
	})

	res, err := mc.CompileProgram("main.paw")
	require.NoError(t, err)

	text := res.Module.String()
	assert.Contains(t, text, "call i8* @malloc")
	assert.Contains(t, text, "call i32 @sum(")
}

// 5. Iterator loop: summing a 4-element array via `loop x in arr`.
func TestIteratorLoopSum(t *testing.T) {
	mainDecl := &ast.FuncDecl{
		Name: "main",
		Ret:  i32(),
		Body: block(
			&ast.LetStmt{
				Name: "arr",
				Type: &ast.ArrayType{Elem: i32(), Size: 4},
				Init: &ast.ArrayLitExpr{Elems: []ast.Expr{
					&ast.IntLit{Value: 1}, &ast.IntLit{Value: 2}, &ast.IntLit{Value: 3}, &ast.IntLit{Value: 4},
				}},
			},
			&ast.LetStmt{Name: "s", Type: i32(), Init: &ast.IntLit{Value: 0}},
			&ast.LoopStmt{
				Kind:  ast.LoopIter,
				Var:   "x",
				Array: &ast.IdentExpr{Name: "arr"},
				Body: block(&ast.ExprStmt{X: &ast.AssignExpr{
					Target: &ast.IdentExpr{Name: "s"},
					Value: &ast.BinaryExpr{
						Op: "+", Left: &ast.IdentExpr{Name: "s"}, Right: &ast.IdentExpr{Name: "x"},
					},
				}}),
			},
			ret(&ast.IdentExpr{Name: "s"}),
		),
	}
	mc := newCompiler(map[string]*ast.File{
		"main.paw": {Name: "main", Items: []ast.Item{mainDecl}},
	})

	res, err := mc.CompileProgram("main.paw")
	require.NoError(t, err)
	assert.Contains(t, res.Module.String(), "[4 x i32]")
}

// 6. `is`-binding inside `if`: the Value(v) binding from `r is Value(v)`
// must be visible inside the `if`'s `then` branch.
func TestIsBindingInsideIf(t *testing.T) {
	option := &ast.EnumDecl{
		Name: "Option",
		Variants: []*ast.VariantDecl{
			{Name: "Value", Types: []ast.Type{i32()}},
			{Name: "Error", Types: []ast.Type{&ast.PrimitiveType{Kind: ast.String}}},
		},
		Public: true,
	}
	mainDecl := &ast.FuncDecl{
		Name: "main",
		Ret:  i32(),
		Body: block(
			&ast.LetStmt{Name: "r", Init: &ast.EnumVariantExpr{
				EnumName: "Option", Variant: "Value", Args: []ast.Expr{&ast.IntLit{Value: 6}},
			}},
			&ast.IfStmt{
				Cond: &ast.IsExpr{
					X:       &ast.IdentExpr{Name: "r"},
					Pattern: &ast.VariantPattern{EnumName: "Option", Variant: "Value", Binding: "v"},
				},
				Then: block(ret(&ast.IdentExpr{Name: "v"})),
				Else: block(ret(&ast.UnaryExpr{Op: "-", X: &ast.IntLit{Value: 1}})),
			},
		),
	}
	mc := newCompiler(map[string]*ast.File{
		"main.paw": {Name: "main", Items: []ast.Item{option, mainDecl}},
	})

	res, err := mc.CompileProgram("main.paw")
	require.NoError(t, err)

	text := res.Module.String()
	assert.Contains(t, text, "extractvalue")
	assert.Contains(t, text, "icmp eq i32")
}
