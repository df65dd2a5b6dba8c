package ast

// Expr is the sum of source-level expressions (spec §3).
type Expr interface {
	Node
	expr()
}

// --- Literals ---------------------------------------------------------

type IntLit struct {
	node
	Value int64
}

type FloatLit struct {
	node
	Value float64
}

type BoolLit struct {
	node
	Value bool
}

type StringLit struct {
	node
	Value string
}

type CharLit struct {
	node
	Value byte
}

func (*IntLit) expr()    {}
func (*FloatLit) expr()  {}
func (*BoolLit) expr()   {}
func (*StringLit) expr() {}
func (*CharLit) expr()   {}

// IdentExpr references a local binding, parameter, or module-level symbol.
type IdentExpr struct {
	node
	Name string
}

func (*IdentExpr) expr() {}

// ModuleRefExpr references `module::name` (spec §4.5 / §4.6 call case 3).
type ModuleRefExpr struct {
	node
	Module string
	Name   string
}

func (*ModuleRefExpr) expr() {}

// StaticRefExpr references `Type::name`, a static/associated member of a
// (possibly generic) struct (spec §4.6 call case 2).
type StaticRefExpr struct {
	node
	TypeName string
	Name     string
}

func (*StaticRefExpr) expr() {}

// BinaryExpr is a binary operator application.
type BinaryExpr struct {
	node
	Op    string
	Left  Expr
	Right Expr
}

func (*BinaryExpr) expr() {}

// UnaryExpr is `-x`, `!x`.
type UnaryExpr struct {
	node
	Op string
	X  Expr
}

func (*UnaryExpr) expr() {}

// CallExpr applies Fun to Args, optionally with explicit generic TypeArgs.
// Fun is one of IdentExpr (local call), ModuleRefExpr (cross-module call),
// StaticRefExpr (generic-struct static call), or MemberAccessExpr (method
// call, spec §4.6 case 1).
type CallExpr struct {
	node
	Fun      Expr
	TypeArgs []Type
	Args     []Expr
}

func (*CallExpr) expr() {}

// MemberAccessExpr is `x.field` (also used as the Fun of a CallExpr for
// method calls: `x.method(...)`).
type MemberAccessExpr struct {
	node
	X    Expr
	Name string
}

func (*MemberAccessExpr) expr() {}

// AssignExpr assigns Value to Target, where Target is an IdentExpr,
// IndexExpr, or MemberAccessExpr (spec §4.6 "Assign").
type AssignExpr struct {
	node
	Target Expr
	Value  Expr
}

func (*AssignExpr) expr() {}

// FieldInit is one `name: value` pair inside a struct literal.
type FieldInit struct {
	Name  string
	Value Expr
}

// StructLitExpr is `Name { field: value, ... }`, optionally generic.
type StructLitExpr struct {
	node
	Name     string
	TypeArgs []Type
	Fields   []*FieldInit
}

func (*StructLitExpr) expr() {}

// EnumVariantExpr constructs a tagged-union value: `Enum::Variant(args...)`.
type EnumVariantExpr struct {
	node
	EnumName string
	TypeArgs []Type
	Variant  string
	Args     []Expr
}

func (*EnumVariantExpr) expr() {}

// ArrayLitExpr is `[a, b, c]`.
type ArrayLitExpr struct {
	node
	Elems []Expr
}

func (*ArrayLitExpr) expr() {}

// IndexExpr is `x[i]`.
type IndexExpr struct {
	node
	X     Expr
	Index Expr
}

func (*IndexExpr) expr() {}

// MatchArm is one arm of a `match` expression.
type MatchArm struct {
	Pattern Pattern
	Body    Expr
}

// MatchExpr is `match scrutinee { arm, ... }`.
type MatchExpr struct {
	node
	Scrutinee Expr
	Arms      []*MatchArm
}

func (*MatchExpr) expr() {}

// IsExpr is `scrutinee is Pattern`, a boolean pattern test with optional
// payload binding visible in the surrounding `if` (spec §4.6/§4.7).
type IsExpr struct {
	node
	X       Expr
	Pattern Pattern
}

func (*IsExpr) expr() {}

// IfExpr is the expression form of `if`: both branches must yield the same
// IR type, joined by a phi (spec §4.6).
type IfExpr struct {
	node
	Cond Expr
	Then Expr
	Else Expr
}

func (*IfExpr) expr() {}

// AsExpr is `x as T`.
type AsExpr struct {
	node
	X      Expr
	Target Type
}

func (*AsExpr) expr() {}

// TryExpr is the postfix `?` operator applied to an Optional<T> value.
type TryExpr struct {
	node
	X Expr
}

func (*TryExpr) expr() {}

// OkExpr constructs `ok(v)`.
type OkExpr struct {
	node
	X Expr
}

func (*OkExpr) expr() {}

// ErrExpr constructs `err(msg)`.
type ErrExpr struct {
	node
	X Expr
}

func (*ErrExpr) expr() {}
