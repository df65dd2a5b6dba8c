// Generic Instantiator (GI, spec.md §4.4): demand-driven monomorphization of
// generic functions, structs, and enums, keyed by the deterministic mangled
// name from internal/mangle. Grounded on mewspring-toy's newASTType /
// irASTTypeDef split (type.go): a self-referential type is forward-declared
// as an opaque struct, registered, and only then has its body filled in, so
// a field that refers back to the same instantiation resolves instead of
// recursing forever.
package lower

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"

	"github.com/pawlang-project/pawc/internal/ast"
	"github.com/pawlang-project/pawc/internal/diag"
	"github.com/pawlang-project/pawc/internal/mangle"
	"github.com/pawlang-project/pawc/internal/symtab"
)

// instantiateNamed resolves a parameterized named type (e.g. `List<i32>`)
// to a concrete, monomorphized IR struct or enum type.
func (c *Context) instantiateNamed(t *ast.NamedType) (types.Type, error) {
	sym, ok := c.Sym.Lookup(t.Name, c.CurrentModule)
	if !ok {
		return nil, diag.TypeNotFound(t.Name)
	}
	tsym, ok := sym.(*symtab.Type)
	if !ok {
		return nil, diag.TypeNotFound(t.Name)
	}

	switch decl := tsym.Decl.(type) {
	case *ast.StructDecl:
		st, err := c.instantiateStruct(decl, t.Args)
		if err != nil {
			return nil, err
		}
		// Struct-by-reference rule (spec.md §3): every struct-typed value is
		// represented as a pointer to its body, generic instances included.
		return types.NewPointer(st), nil
	case *ast.EnumDecl:
		return c.instantiateEnum(decl, t.Args)
	default:
		return nil, diag.TypeNotFound(t.Name)
	}
}

func bindGenerics(params []string, args []ast.Type) map[string]ast.Type {
	m := make(map[string]ast.Type, len(params))
	for i, p := range params {
		m[p] = args[i]
	}
	return m
}

// instantiateStruct builds (or returns the cached) monomorphized struct type
// for decl<args...>.
func (c *Context) instantiateStruct(decl *ast.StructDecl, args []ast.Type) (types.Type, error) {
	if len(args) != len(decl.Generics) {
		return nil, diag.GenericArityMismatch(decl.Name, len(decl.Generics), len(args))
	}
	mangled := mangle.Mangle(decl.Name, args)

	if cached, ok := c.typeCache[mangled]; ok {
		return cached, nil
	}
	if pending, ok := c.pendingInstances[mangled]; ok {
		return pending, nil
	}

	opaque := types.NewStruct()
	opaque.TypeName = mangled
	opaque.Opaque = true
	c.pendingInstances[mangled] = opaque
	c.structDecls[mangled] = decl

	sub := c.withSubst(bindGenerics(decl.Generics, args))
	fields := make([]types.Type, len(decl.Fields))
	for i, f := range decl.Fields {
		ft, err := sub.ResolveType(f.Type)
		if err != nil {
			return nil, err
		}
		fields[i] = ft
	}
	opaque.Fields = fields
	opaque.Opaque = false

	delete(c.pendingInstances, mangled)
	c.typeCache[mangled] = opaque
	c.Sym.Declare(c.CurrentModule, &symtab.GenericStructInstance{
		Mangled: mangled,
		Decl:    decl,
		IR:      opaque,
		PubFlg:  decl.Public,
	})

	suffix := mangle.StructSuffix(decl.Name, mangled)
	for _, method := range decl.Methods {
		if _, err := c.instantiateMethod(method, decl.Name, suffix, opaque, sub); err != nil {
			return nil, err
		}
	}
	return opaque, nil
}

// instantiateEnum builds (or returns the cached) monomorphized enum type:
// the fixed {i32 tag, i64 data} tagged-union layout (spec.md §3); the
// payload width is pinned at 64 bits regardless of the largest variant's
// true size (Open Question, resolved in SPEC_FULL.md §9 toward simplicity
// over maximal packing).
func (c *Context) instantiateEnum(decl *ast.EnumDecl, args []ast.Type) (types.Type, error) {
	if len(args) != len(decl.Generics) {
		return nil, diag.GenericArityMismatch(decl.Name, len(decl.Generics), len(args))
	}
	mangled := mangle.Mangle(decl.Name, args)
	if cached, ok := c.typeCache[mangled]; ok {
		return cached, nil
	}

	st := types.NewStruct(types.I32, types.I64)
	st.TypeName = mangled
	c.typeCache[mangled] = st
	c.enumDecls[mangled] = decl

	c.Sym.Declare(c.CurrentModule, &symtab.GenericStructInstance{
		Mangled: mangled,
		Decl:    nil,
		IR:      st,
		PubFlg:  decl.Public,
	})
	return st, nil
}

// instantiateMethod builds (or returns the already-declared) mangled
// function for one method of a (possibly generic) struct instance, e.g.
// `push_i32` for `List<i32>::push`.
func (c *Context) instantiateMethod(method *ast.FuncDecl, structBase, suffix string, selfIR types.Type, sub *Context) (*ir.Func, error) {
	mangled := mangle.MethodName(method.Name, suffix)
	if existing, ok := c.Sym.LookupInModule(c.CurrentModule, mangled); ok {
		if fn, ok := existing.(*symtab.Function); ok {
			return fn.IR, nil
		}
	}
	return sub.withSelf(types.NewPointer(selfIR)).lowerFuncBody(mangled, method, method.Public)
}

// InstantiateFunction returns the mangled, concrete *ir.Func for calling a
// generic function template with the given type arguments, building it (and
// caching it by mangled name) on first demand.
func (c *Context) InstantiateFunction(decl *ast.FuncDecl, args []ast.Type) (*ir.Func, error) {
	if len(args) != len(decl.Generics) {
		return nil, diag.GenericArityMismatch(decl.Name, len(decl.Generics), len(args))
	}
	mangled := mangle.Mangle(decl.Name, args)
	if existing, ok := c.Sym.LookupInModule(c.CurrentModule, mangled); ok {
		if fn, ok := existing.(*symtab.Function); ok {
			return fn.IR, nil
		}
	}
	sub := c.withSubst(bindGenerics(decl.Generics, args))
	return sub.lowerFuncBody(mangled, decl, decl.Public)
}
