// Type Resolver (TR, spec.md §4.3): converts ast.Type source type
// expressions into github.com/llir/llvm/ir/types.Type values, the same IR
// entity model mewspring-toy's own type.go builds against, rather than a
// second hand-rolled type representation.
package lower

import (
	"github.com/llir/llvm/ir/types"

	"github.com/pawlang-project/pawc/internal/ast"
	"github.com/pawlang-project/pawc/internal/diag"
	"github.com/pawlang-project/pawc/internal/mangle"
	"github.com/pawlang-project/pawc/internal/symtab"
)

// withSelf returns a child context with selfIR bound for the duration of
// lowering one method body (spec.md §4.3 "Self resolved contextually").
func (c *Context) withSelf(self types.Type) *Context {
	child := *c
	child.selfIR = self
	return &child
}

// ResolveType implements the Type Resolver: it maps a single ast.Type to its
// IR counterpart, delegating to the Generic Instantiator for parameterized
// named types (spec.md §4.3, §4.4).
func (c *Context) ResolveType(t ast.Type) (types.Type, error) {
	switch t := t.(type) {
	case *ast.PrimitiveType:
		return resolvePrimitive(t.Kind), nil

	case *ast.NamedType:
		return c.resolveNamed(t)

	case *ast.ArrayType:
		elem, err := c.ResolveType(t.Elem)
		if err != nil {
			return nil, err
		}
		size := t.Size
		if size == ast.DeferredSize {
			// Fixed by the initializer at the let-binding site (spec.md
			// §4.7); the Type Resolver alone has no better answer than a
			// zero-length placeholder, which lowerLet replaces with the
			// initializer's sized array type once the initializer is known.
			size = 0
		}
		return types.NewArray(uint64(size), elem), nil

	case *ast.OptionalType:
		return c.resolveOptional(t)

	case *ast.GenericType:
		if bound, ok := c.substOf(t.Param); ok {
			return c.ResolveType(bound)
		}
		return nil, diag.UnresolvedGeneric(t.Param)

	case *ast.SelfType:
		if c.selfIR == nil {
			return nil, diag.TypeNotFound("Self")
		}
		return c.selfIR, nil

	default:
		return nil, diag.TypeNotFound("<unknown type node>")
	}
}

func resolvePrimitive(k ast.PrimKind) types.Type {
	switch k {
	case ast.I8, ast.U8:
		return types.I8
	case ast.I16, ast.U16:
		return types.I16
	case ast.I32, ast.U32:
		return types.I32
	case ast.I64, ast.U64:
		return types.I64
	case ast.I128, ast.U128:
		return types.I128
	case ast.F32:
		return types.Float
	case ast.F64:
		return types.Double
	case ast.Bool:
		return types.I1
	case ast.Char:
		return types.I32
	case ast.String:
		return cstring
	case ast.Void:
		return types.Void
	default:
		return types.Void
	}
}

// cstring mirrors runtime.CString; kept local to avoid an import cycle for
// the (very common) case where only the pointer shape is needed.
var cstring = types.NewPointer(types.I8)

// resolveNamed handles both plain named types (a concrete struct/enum
// already registered in the symbol table) and parameterized ones, which are
// routed through the Generic Instantiator (spec.md §4.3, §4.4).
func (c *Context) resolveNamed(t *ast.NamedType) (types.Type, error) {
	if len(t.Args) > 0 {
		return c.instantiateNamed(t)
	}

	sym, ok := c.Sym.Lookup(t.Name, c.CurrentModule)
	if !ok {
		return nil, diag.TypeNotFound(t.Name)
	}
	switch s := sym.(type) {
	case *symtab.Type:
		if s.IsGenericTemplate() {
			return nil, diag.GenericArityMismatch(t.Name, declArity(s.Decl), 0)
		}
		if _, isStruct := s.Decl.(*ast.StructDecl); isStruct {
			// Struct-by-reference rule (spec.md §3).
			return types.NewPointer(s.IR), nil
		}
		return s.IR, nil
	case *symtab.GenericStructInstance:
		if s.Decl != nil {
			return types.NewPointer(s.IR), nil
		}
		return s.IR, nil
	default:
		return nil, diag.TypeNotFound(t.Name)
	}
}

// declArity returns the number of generic parameters a struct/enum
// declaration takes.
func declArity(item ast.Item) int {
	switch d := item.(type) {
	case *ast.StructDecl:
		return len(d.Generics)
	case *ast.EnumDecl:
		return len(d.Generics)
	default:
		return 0
	}
}

// resolveOptional builds (or fetches from cache) the fixed 3-field
// Optional<T> layout: {i32 tag, T value, i8* error_message} (spec.md §3).
func (c *Context) resolveOptional(t *ast.OptionalType) (types.Type, error) {
	inner, err := c.ResolveType(t.Inner)
	if err != nil {
		return nil, err
	}
	name := "Optional_" + mangle.TypeName(t.Inner)
	if cached, ok := c.typeCache[name]; ok {
		return cached, nil
	}
	st := types.NewStruct(types.I32, inner, cstring)
	st.TypeName = name
	c.typeCache[name] = st
	return st, nil
}
