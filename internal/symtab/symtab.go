// Package symtab implements the process-lifetime Symbol Table (ST) of
// spec.md §4.2: a thread-unaware, in-memory map module -> name -> Symbol,
// owned explicitly by the Module Compiler rather than kept as a package-level
// singleton (spec.md §9 "Global mutable state").
package symtab

import (
	"fmt"
	"sort"

	"github.com/kr/pretty"
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"

	"github.com/pawlang-project/pawc/internal/ast"
	"github.com/pawlang-project/pawc/internal/diag"
)

// Symbol is the tagged sum of entries the table can hold (spec.md §4.2).
// Each kind implements a private marker method; dispatch on lookup is by
// type switch in callers, never by virtual call.
type Symbol interface {
	symbol()
	// Name returns the symbol's declared (unqualified) name.
	Name() string
	// Public reports whether the symbol is visible from other modules.
	Public() bool
}

// Function is a fully lowered, concrete function.
type Function struct {
	Decl   *ast.FuncDecl
	IR     *ir.Func
	PubFlg bool
}

func (*Function) symbol()      {}
func (f *Function) Name() string { return f.Decl.Name }
func (f *Function) Public() bool { return f.PubFlg }

// GenericFunction is a registered, not-yet-instantiated generic function
// template (the AST node is kept; instantiation is demand-driven).
type GenericFunction struct {
	Decl   *ast.FuncDecl
	PubFlg bool
}

func (*GenericFunction) symbol()        {}
func (g *GenericFunction) Name() string { return g.Decl.Name }
func (g *GenericFunction) Public() bool { return g.PubFlg }

// Type is a concrete struct/enum type, or a generic struct/enum template
// registration (IR == nil in the template case; spec.md §4.2).
type Type struct {
	Decl   ast.Item // *ast.StructDecl or *ast.EnumDecl
	IR     types.Type
	PubFlg bool
}

func (*Type) symbol()      {}
func (t *Type) Name() string {
	switch d := t.Decl.(type) {
	case *ast.StructDecl:
		return d.Name
	case *ast.EnumDecl:
		return d.Name
	default:
		return ""
	}
}
func (t *Type) Public() bool { return t.PubFlg }

// IsGenericTemplate reports whether this Type registration is a template
// (IR is nil until an instantiation creates a concrete IR type for it).
func (t *Type) IsGenericTemplate() bool { return t.IR == nil }

// GenericStructInstance is one monomorphized struct instance, keyed in the
// table by its mangled name (spec.md §4.4).
type GenericStructInstance struct {
	Mangled string
	Decl    *ast.StructDecl
	IR      *types.StructType
	PubFlg  bool
}

func (*GenericStructInstance) symbol()        {}
func (g *GenericStructInstance) Name() string { return g.Mangled }
func (g *GenericStructInstance) Public() bool { return g.PubFlg }

// Variable is a module-level (global) variable.
type Variable struct {
	NameStr string
	IR      ir.Constant
	PubFlg  bool
}

func (*Variable) symbol()        {}
func (v *Variable) Name() string { return v.NameStr }
func (v *Variable) Public() bool { return v.PubFlg }

// Table is the Symbol Table itself: module -> name -> Symbol.
//
// loadOrder records the order modules were first touched in, so that
// lookup's "first match across modules" rule (spec.md §4.2) is deterministic
// and matches the Module Loader's leaves-first order.
type Table struct {
	modules   map[string]map[string]Symbol
	loadOrder []string
}

// New returns an empty Symbol Table.
func New() *Table {
	return &Table{modules: make(map[string]map[string]Symbol)}
}

func (t *Table) ensureModule(module string) map[string]Symbol {
	m, ok := t.modules[module]
	if !ok {
		m = make(map[string]Symbol)
		t.modules[module] = m
		t.loadOrder = append(t.loadOrder, module)
	}
	return m
}

// Declare registers sym under (module, sym.Name()). Redeclaration within a
// module is a fatal error (spec.md §4.2 "Uniqueness").
func (t *Table) Declare(module string, sym Symbol) error {
	m := t.ensureModule(module)
	if _, exists := m[sym.Name()]; exists {
		return diag.DuplicateSymbol(module, sym.Name())
	}
	m[sym.Name()] = sym
	return nil
}

// Replace overwrites any existing entry for (module, sym.Name()) without the
// uniqueness check Declare applies. lower's declareFunc falls back to it when
// Declare reports the function name as already declared in the module, so
// the newer signature replaces the earlier entry.
func (t *Table) Replace(module string, sym Symbol) {
	m := t.ensureModule(module)
	m[sym.Name()] = sym
}

// lookupModule returns the symbol with the given name directly in module,
// without any visibility check.
func (t *Table) lookupModule(module, name string) (Symbol, bool) {
	m, ok := t.modules[module]
	if !ok {
		return nil, false
	}
	s, ok := m[name]
	return s, ok
}

// LookupInModule bypasses visibility; used once the caller has already
// validated a qualified name `module::name` (spec.md §4.2).
func (t *Table) LookupInModule(module, name string) (Symbol, bool) {
	return t.lookupModule(module, name)
}

// Lookup returns the symbol visible to `current` under `name`: same-module
// symbols unconditionally, symbols in other modules only if public. Ties
// across modules are broken by load order (spec.md §4.2 "deterministic").
func (t *Table) Lookup(name, current string) (Symbol, bool) {
	if s, ok := t.lookupModule(current, name); ok {
		return s, true
	}
	for _, module := range t.loadOrder {
		if module == current {
			continue
		}
		if s, ok := t.lookupModule(module, name); ok && s.Public() {
			return s, true
		}
	}
	return nil, false
}

// IsAccessible reports whether sym, declared in declModule, can be
// referenced from fromModule.
func IsAccessible(sym Symbol, declModule, fromModule string) bool {
	return declModule == fromModule || sym.Public()
}

// Dump renders the table for diagnostics, in deterministic module/name
// order, using github.com/kr/pretty the way the example corpus dumps
// internal indices for debugging (mewspring-toy's type.go uses
// pretty.Println on its own type-def index).
func (t *Table) Dump() string {
	var modules []string
	for module := range t.modules {
		modules = append(modules, module)
	}
	sort.Strings(modules)

	out := ""
	for _, module := range modules {
		names := make([]string, 0, len(t.modules[module]))
		for name := range t.modules[module] {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			out += fmt.Sprintf("%s::%s = %s\n", module, name, pretty.Sprint(t.modules[module][name]))
		}
	}
	return out
}
