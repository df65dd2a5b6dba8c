// Package lower's module-level driver: registers every item a module
// declares (so forward references across the file resolve) and then lowers
// function and method bodies, mirroring mewspring-toy's own
// resolveTypeDefs -> indexPackage -> compilePackage two-pass shape
// (lower.go) adapted from a single Go package to one Paw module at a time.
package lower

import (
	"github.com/llir/llvm/ir/types"
	"github.com/rickypai/natsort"

	"github.com/pawlang-project/pawc/internal/ast"
	"github.com/pawlang-project/pawc/internal/symtab"
)

// LowerModule registers and lowers every item of file into the Context's
// module, which must already be positioned at file.Name via EnterModule.
//
// Pass 1 declares every struct/enum/function/extern signature so that
// mutually-recursive and out-of-order references within the module resolve.
// Pass 2 lowers function and method bodies (spec.md §4.1 "two-pass").
func (c *Context) LowerModule(file *ast.File) error {
	if err := c.registerItems(file); err != nil {
		return err
	}
	if err := c.lowerItems(file); err != nil {
		return err
	}
	return nil
}

// registerItems is pass 1: every top-level item gets a symbol-table entry.
// Non-generic structs/enums also get their concrete IR type built now, since
// later field/parameter resolution may reference them before their own
// declaration is lowered.
func (c *Context) registerItems(file *ast.File) error {
	for _, item := range file.Items {
		switch d := item.(type) {
		case *ast.StructDecl:
			if err := c.registerStruct(d); err != nil {
				return err
			}
		case *ast.EnumDecl:
			if err := c.registerEnum(d); err != nil {
				return err
			}
		case *ast.FuncDecl:
			if err := c.registerFunc(d); err != nil {
				return err
			}
		case *ast.ExternDecl:
			if err := c.registerExtern(d); err != nil {
				return err
			}
		case *ast.TypeAliasDecl, *ast.ImplDecl, *ast.ImportDecl:
			// TypeAliasDecl is not registered or lowered, so a reference to
			// an alias name does not resolve to its underlying type;
			// ImplDecl's methods are registered in pass 2 once their
			// target's concrete type exists; imports were already consumed
			// by the Module Loader.
		}
	}
	return nil
}

func (c *Context) registerStruct(d *ast.StructDecl) error {
	if len(d.Generics) > 0 {
		return c.Sym.Declare(c.CurrentModule, &symtab.Type{Decl: d, IR: nil, PubFlg: d.Public})
	}
	st := types.NewStruct()
	st.TypeName = d.Name
	c.structDecls[d.Name] = d
	c.typeCache[d.Name] = st
	if err := c.Sym.Declare(c.CurrentModule, &symtab.Type{Decl: d, IR: st, PubFlg: d.Public}); err != nil {
		return err
	}
	fields := make([]types.Type, len(d.Fields))
	for i, f := range d.Fields {
		ft, err := c.ResolveType(f.Type)
		if err != nil {
			return err
		}
		fields[i] = ft
	}
	st.Fields = fields
	return nil
}

func (c *Context) registerEnum(d *ast.EnumDecl) error {
	if len(d.Generics) > 0 {
		return c.Sym.Declare(c.CurrentModule, &symtab.Type{Decl: d, IR: nil, PubFlg: d.Public})
	}
	st := types.NewStruct(types.I32, types.I64)
	st.TypeName = d.Name
	c.enumDecls[d.Name] = d
	c.typeCache[d.Name] = st
	return c.Sym.Declare(c.CurrentModule, &symtab.Type{Decl: d, IR: st, PubFlg: d.Public})
}

func (c *Context) registerFunc(d *ast.FuncDecl) error {
	if len(d.Generics) > 0 {
		return c.Sym.Declare(c.CurrentModule, &symtab.GenericFunction{Decl: d, PubFlg: d.Public})
	}
	// Signature only; lowerItems (pass 2) fills in the body, so that a
	// function may call another declared later in the same file.
	_, err := c.declareFunc(d.Name, d, d.Public, nil)
	return err
}

func (c *Context) registerExtern(d *ast.ExternDecl) error {
	_, err := c.declareFunc(d.Name, &ast.FuncDecl{Name: d.Name, Params: d.Params, Ret: d.Ret, Body: nil, Public: false}, false, nil)
	return err
}

// lowerItems is pass 2: struct/enum methods (including ImplDecl blocks) are
// lowered now that every type in the module has a concrete IR shape.
func (c *Context) lowerItems(file *ast.File) error {
	for _, item := range file.Items {
		switch d := item.(type) {
		case *ast.FuncDecl:
			if len(d.Generics) > 0 {
				continue // instantiated on demand by call sites
			}
			sym, _ := c.Sym.LookupInModule(c.CurrentModule, d.Name)
			fn := sym.(*symtab.Function)
			if err := c.lowerBodyInto(fn.IR, d, nil); err != nil {
				return err
			}
		case *ast.ExternDecl:
			// no body.
		case *ast.StructDecl:
			if len(d.Generics) > 0 {
				continue // lowered lazily on first instantiation (GI)
			}
			if err := c.lowerMethods(d.Name, d.Methods); err != nil {
				return err
			}
		case *ast.ImplDecl:
			if err := c.lowerMethods(d.Target, d.Methods); err != nil {
				return err
			}
		}
	}
	return nil
}

// lowerMethods declares and lowers every non-generic method of a struct,
// binding the receiver as a pointer-to-struct `self` before the signature is
// built: declareFunc's Self-typed params/return and the leading `self` IR
// parameter both depend on selfIR already being bound on the context that
// declares the function, not just the one that lowers its body.
func (c *Context) lowerMethods(targetName string, methods []*ast.FuncDecl) error {
	sym, ok := c.Sym.LookupInModule(c.CurrentModule, targetName)
	if !ok {
		return nil
	}
	tsym, ok := sym.(*symtab.Type)
	if !ok {
		return nil
	}
	selfIR := types.NewPointer(tsym.IR)
	mc := c.withSelf(selfIR)
	for _, m := range methods {
		if len(m.Generics) > 0 {
			continue // instantiated on demand by call sites
		}
		mangled := m.Name
		fn, err := mc.declareFunc(mangled, m, m.Public, selfIR)
		if err != nil {
			return err
		}
		if err := mc.lowerBodyInto(fn, m, selfIR); err != nil {
			return err
		}
	}
	return nil
}

// EmitTypeDefs writes a `%name = type {...}` definition for every concrete
// struct/enum type built so far, in deterministic natural-sort order
// (mewspring-toy's lower.go sorts the same way before calling NewTypeDef, so
// output is stable across runs regardless of map iteration order).
func (c *Context) EmitTypeDefs() {
	var names []string
	for name := range c.typeCache {
		names = append(names, name)
	}
	natsort.Strings(names)
	for _, name := range names {
		c.Module.NewTypeDef(name, c.typeCache[name])
	}
}
