package ast

// Pattern is the sum of patterns usable in `match` arms and `is` tests
// (spec §3).
type Pattern interface {
	Node
	pattern()
}

// WildcardPattern is `_`, always matches.
type WildcardPattern struct{ node }

func (*WildcardPattern) pattern() {}

// IdentPattern binds the scrutinee to Name unconditionally.
type IdentPattern struct {
	node
	Name string
}

func (*IdentPattern) pattern() {}

// LiteralPattern matches a literal value. Reserved: unsupported at this
// iteration (spec §4.6 "Match" — emits PatternNotSupported).
type LiteralPattern struct {
	node
	Value Expr
}

func (*LiteralPattern) pattern() {}

// VariantPattern matches a specific enum variant tag, optionally binding its
// single payload value to Binding ("" if no binding is requested).
type VariantPattern struct {
	node
	EnumName string
	Variant  string
	Binding  string
}

func (*VariantPattern) pattern() {}

// StructPattern destructures a struct by field. Reserved: unsupported at
// this iteration (spec §4.6).
type StructPattern struct {
	node
	Name   string
	Fields map[string]Pattern
}

func (*StructPattern) pattern() {}
