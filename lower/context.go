// Package lower implements the Type Resolver, Generic Instantiator,
// Expression Lowering, and Statement Lowering stages of spec.md §4.3-§4.7 as
// one cohesive package, the way mewspring-toy keeps its own TR/EL/SL split
// across files of a single `lower` package rather than as separate Go
// packages: the stages are mutually recursive (resolving a named generic
// type demands instantiating it, which demands lowering its method bodies,
// which demands resolving more types) and splitting them into importable
// packages would force an import cycle.
package lower

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/pawlang-project/pawc/internal/ast"
	"github.com/pawlang-project/pawc/internal/diag"
	"github.com/pawlang-project/pawc/internal/runtime"
	"github.com/pawlang-project/pawc/internal/symtab"
)

// irValue is a short alias for the IR value interface, used throughout
// Expression Lowering.
type irValue = value.Value

// Context is the per-compilation state threaded through every lowering
// function: the destination IR module, the shared symbol table, the runtime
// declarations, and the current module's diagnostic reporter.
//
// One Context is created per overall compilation (spec.md keeps the Symbol
// Table alive across every module of a program), but CurrentModule and
// Reporter are swapped as the Module Compiler walks the leaves-first module
// order.
type Context struct {
	Module  *ir.Module
	Sym     *symtab.Table
	Runtime *runtime.Decls

	CurrentModule string
	Reporter      *diag.Reporter

	// typeCache memoizes struct/enum IR types already built (concrete ones
	// under their own name, generic instances under their mangled name) and
	// Optional<T> layouts, so repeated references share one
	// *types.StructType (spec.md §4.3 "idempotent").
	typeCache map[string]types.Type

	// subst holds the active generic-parameter substitution map while
	// lowering inside one instantiation of a generic function/struct/enum
	// (spec.md §4.4). Empty when lowering non-generic code.
	subst map[string]ast.Type

	// pendingInstances tracks mangled names currently being built, so a
	// self-referential generic struct (e.g. a tree node holding
	// Optional<Node<T>>) resolves to the same opaque-then-filled type
	// instead of looping forever (grounded on mewspring-toy's
	// newASTType/irASTTypeDef forward-declare pattern, type.go).
	pendingInstances map[string]*types.StructType

	// selfIR is the IR type `Self` resolves to while lowering one method
	// body; nil outside of method lowering.
	selfIR types.Type

	// structDecls maps a struct IR type's name (simple or mangled) back to
	// its declaration, so member access can look up a field's index and
	// source type by name (spec.md §4.6 "member access").
	structDecls map[string]*ast.StructDecl

	// enumDecls maps an enum IR type's name (simple or mangled) back to its
	// declaration, so match/is can look up a variant's tag index and payload
	// type by name.
	enumDecls map[string]*ast.EnumDecl

	strCount int // source of unique names for interned string-literal globals
}

// NewContext creates a fresh lowering context bound to module m and symbol
// table sym; runtime primitives are declared once, up front, into m.
func NewContext(m *ir.Module, sym *symtab.Table) *Context {
	return &Context{
		Module:           m,
		Sym:              sym,
		Runtime:          runtime.Declare(m),
		typeCache:        make(map[string]types.Type),
		pendingInstances: make(map[string]*types.StructType),
		structDecls:      make(map[string]*ast.StructDecl),
		enumDecls:        make(map[string]*ast.EnumDecl),
	}
}

// EnterModule switches the context to lowering moduleName, installing a
// fresh Reporter for it (spec.md §7: diagnostics accumulate per module).
func (c *Context) EnterModule(moduleName string) {
	c.CurrentModule = moduleName
	c.Reporter = diag.NewReporter(moduleName)
}

// withSubst returns a child context sharing every field except subst, which
// is replaced for the duration of one generic instantiation.
func (c *Context) withSubst(subst map[string]ast.Type) *Context {
	child := *c
	child.subst = subst
	return &child
}

// substOf resolves a generic parameter name against the active substitution
// map, if any.
func (c *Context) substOf(param string) (ast.Type, bool) {
	t, ok := c.subst[param]
	return t, ok
}
