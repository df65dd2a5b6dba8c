package ast

// Stmt is the sum of source-level statements (spec §3). Note that several
// Item kinds (FuncDecl, StructDecl, EnumDecl, ImplDecl, TypeAliasDecl,
// ExternDecl, ImportDecl) additionally implement Stmt, since the grammar
// allows declarations to appear in statement position; their stmt() markers
// live alongside their item() markers in ast.go.
type Stmt interface {
	Node
	stmt()
}

// LetStmt is a local binding, with an optional type annotation and/or
// initializer (spec §4.7).
type LetStmt struct {
	node
	Name    string
	Mutable bool
	Type    Type // nil if inferred from Init
	Init    Expr // nil if uninitialized
}

func (*LetStmt) stmt() {}

// ReturnStmt is `return expr;` or bare `return;`.
type ReturnStmt struct {
	node
	Value Expr // nil for bare return
}

func (*ReturnStmt) stmt() {}

// IfStmt is the statement form of `if`; Else is nil, a *BlockStmt, or a
// nested *IfStmt (else-if chain).
type IfStmt struct {
	node
	Cond Expr
	Then *BlockStmt
	Else Stmt
}

func (*IfStmt) stmt() {}

// LoopKind distinguishes the four loop forms of spec §4.7.
type LoopKind int

const (
	LoopInfinite LoopKind = iota
	LoopWhile
	LoopRange
	LoopIter
)

// LoopStmt is one of the four loop forms. Which fields are populated
// depends on Kind:
//   - LoopInfinite: only Body.
//   - LoopWhile: Cond, Body.
//   - LoopRange: Var, Lo, Hi, Body (half-open, ascending `i in a..b`).
//   - LoopIter: Var, Array, Body (`item in arr`).
type LoopStmt struct {
	node
	Kind  LoopKind
	Var   string
	Cond  Expr
	Lo    Expr
	Hi    Expr
	Array Expr
	Body  *BlockStmt
}

func (*LoopStmt) stmt() {}

// BreakStmt is `break;`.
type BreakStmt struct{ node }

func (*BreakStmt) stmt() {}

// ContinueStmt is `continue;`.
type ContinueStmt struct{ node }

func (*ContinueStmt) stmt() {}

// BlockStmt is a `{ ... }` statement list.
type BlockStmt struct {
	node
	List []Stmt
}

func (*BlockStmt) stmt() {}

// ExprStmt is a stand-alone expression used for its effect.
type ExprStmt struct {
	node
	X Expr
}

func (*ExprStmt) stmt() {}
