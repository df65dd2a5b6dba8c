// Package mangle implements the deterministic, collision-free name mangling
// scheme of spec.md §4.4/§6. Mangling is a pure function of its inputs: the
// same (base, type-argument) pair always produces the same mangled name,
// independent of which module or instantiation order produced it.
package mangle

import (
	"strings"

	"github.com/pawlang-project/pawc/internal/ast"
)

// TypeName returns the canonical mangled spelling of a single source type:
// a primitive's lowercase canonical name, or a named type's source name
// (recursively mangled through its own type arguments for nested generics).
func TypeName(t ast.Type) string {
	switch t := t.(type) {
	case *ast.PrimitiveType:
		return t.Kind.String()
	case *ast.NamedType:
		if len(t.Args) == 0 {
			return t.Name
		}
		return Mangle(t.Name, t.Args)
	case *ast.ArrayType:
		return TypeName(t.Elem)
	case *ast.OptionalType:
		return TypeName(t.Inner) + "_opt"
	case *ast.SelfType:
		return "Self"
	case *ast.GenericType:
		return t.Param
	default:
		return "unknown"
	}
}

// Mangle computes base + "_" + join(TypeName(arg), "_") for each type
// argument, in order (spec.md §4.4, §6).
func Mangle(base string, args []ast.Type) string {
	if len(args) == 0 {
		return base
	}
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, base)
	for _, a := range args {
		parts = append(parts, TypeName(a))
	}
	return strings.Join(parts, "_")
}

// StructSuffix returns whatever follows the struct's base name in its
// mangled name, i.e. the part mangled methods are keyed by
// (`method_<suffix>`, spec.md §4.4).
func StructSuffix(structBase, mangledStructName string) string {
	if mangledStructName == structBase {
		return ""
	}
	return strings.TrimPrefix(mangledStructName, structBase+"_")
}

// MethodName returns the mangled name of a method belonging to a generic
// struct instance: `<method>_<suffix>` if suffix is non-empty, else
// `<method>` for a non-generic struct (spec.md §4.4).
func MethodName(method, suffix string) string {
	if suffix == "" {
		return method
	}
	return method + "_" + suffix
}
