package ast

// Type is the sum of source-level type expressions (spec §3: Primitive,
// Named, Array, Optional, Generic, Self).
type Type interface {
	Node
	typ()
}

// PrimKind enumerates the fixed set of primitive kinds.
type PrimKind int

const (
	I8 PrimKind = iota
	I16
	I32
	I64
	I128
	U8
	U16
	U32
	U64
	U128
	F32
	F64
	Bool
	Char
	String
	Void
)

// String implements fmt.Stringer with the canonical lowercase spelling used
// both in source and in mangled names (spec §6).
func (k PrimKind) String() string {
	switch k {
	case I8:
		return "i8"
	case I16:
		return "i16"
	case I32:
		return "i32"
	case I64:
		return "i64"
	case I128:
		return "i128"
	case U8:
		return "u8"
	case U16:
		return "u16"
	case U32:
		return "u32"
	case U64:
		return "u64"
	case U128:
		return "u128"
	case F32:
		return "f32"
	case F64:
		return "f64"
	case Bool:
		return "bool"
	case Char:
		return "char"
	case String:
		return "string"
	case Void:
		return "void"
	default:
		return "unknown"
	}
}

// PrimitiveType is a built-in scalar type.
type PrimitiveType struct {
	node
	Kind PrimKind
}

func (*PrimitiveType) typ() {}

// NamedType is a reference to a struct or enum, optionally parameterized by
// generic-type arguments (e.g. `List<i32>`).
type NamedType struct {
	node
	Name string
	Args []Type
}

func (*NamedType) typ() {}

// DeferredSize marks an ArrayType whose length is not yet known; it is fixed
// by the initializer at the let-binding site (spec §4.7).
const DeferredSize = -1

// ArrayType is `[Elem; Size]`, with Size == DeferredSize for `[Elem; _]`.
type ArrayType struct {
	node
	Elem Type
	Size int
}

func (*ArrayType) typ() {}

// OptionalType is `Inner?`, the built-in Optional<T> error-carrying type.
type OptionalType struct {
	node
	Inner Type
}

func (*OptionalType) typ() {}

// GenericType is a reference to a generic type parameter (`T`) inside the
// body of a generic function/struct/enum template.
type GenericType struct {
	node
	Param string
}

func (*GenericType) typ() {}

// SelfType is the `Self` type, resolved contextually (pointer in instance
// methods, value type in associated functions).
type SelfType struct {
	node
}

func (*SelfType) typ() {}
