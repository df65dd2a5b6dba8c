// Statement Lowering (SL, spec.md §4.7): one lower<Kind> method per
// ast.Stmt case, dispatched by an exhaustive type switch exactly like
// mewspring-toy's lowerStmt (stmt.go) — never a Visitor.
package lower

import (
	"fmt"

	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"

	"github.com/pawlang-project/pawc/internal/ast"
	"github.com/pawlang-project/pawc/internal/diag"
)

// lowerBlock lowers every statement of b in order, stopping early if a
// terminator (return/break/continue) has already closed the current block so
// that no dead instructions are appended after it.
func (fs *funcState) lowerBlock(b *ast.BlockStmt) error {
	for _, s := range b.List {
		if fs.terminated() {
			break
		}
		if err := fs.lowerStmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (fs *funcState) lowerStmt(s ast.Stmt) error {
	switch s := s.(type) {
	case *ast.LetStmt:
		return fs.lowerLet(s)
	case *ast.ReturnStmt:
		return fs.lowerReturn(s)
	case *ast.IfStmt:
		return fs.lowerIfStmt(s)
	case *ast.LoopStmt:
		return fs.lowerLoop(s)
	case *ast.BreakStmt:
		return fs.lowerBreak()
	case *ast.ContinueStmt:
		return fs.lowerContinue()
	case *ast.BlockStmt:
		return fs.lowerBlock(s)
	case *ast.ExprStmt:
		_, _, err := fs.lowerExpr(s.X)
		return err
	case *ast.FuncDecl, *ast.StructDecl, *ast.EnumDecl, *ast.ImplDecl,
		*ast.TypeAliasDecl, *ast.ExternDecl, *ast.ImportDecl:
		// Nested item declarations reachable as statements are already
		// registered at file scope (spec.md §4.1); nothing left to lower
		// here.
		return nil
	default:
		return diag.PatternNotSupported(fmt.Sprintf("%T", s))
	}
}

// lowerLet lowers `let [mut] name[: Type] [= init];`. When Type is an array
// with a deferred size, the true size is taken from the initializer's
// element count (spec.md §4.7).
func (fs *funcState) lowerLet(s *ast.LetStmt) error {
	var (
		val irValue
		typ types.Type
		err error
	)
	if s.Init != nil {
		val, typ, err = fs.lowerExpr(s.Init)
		if err != nil {
			return err
		}
	}
	if s.Type != nil {
		declType, err := fs.ctx.ResolveType(s.Type)
		if err != nil {
			return err
		}
		if arr, ok := s.Type.(*ast.ArrayType); ok && arr.Size == ast.DeferredSize && typ != nil {
			declType = typ
		}
		typ = declType
	}
	if typ == nil {
		return diag.TypeNotFound(s.Name)
	}

	l := fs.declareLocal(s.Name, typ)
	if val != nil {
		fs.cur.NewStore(val, l.Ptr)
	}
	return nil
}

// lowerReturn lowers `return [expr];`.
func (fs *funcState) lowerReturn(s *ast.ReturnStmt) error {
	if s.Value == nil {
		fs.cur.NewRet(nil)
		return nil
	}
	val, _, err := fs.lowerExpr(s.Value)
	if err != nil {
		return err
	}
	fs.cur.NewRet(val)
	return nil
}

// lowerIfStmt lowers the statement form of `if`, following mewspring-toy's
// condition-block/true-block/false-block/follow-block shape (stmt.go).
func (fs *funcState) lowerIfStmt(s *ast.IfStmt) error {
	cond, bind, err := fs.lowerCond(s.Cond)
	if err != nil {
		return err
	}
	condBlock := fs.cur
	follow := fs.newBlock()

	trueBlock := fs.newBlock()
	fs.cur = trueBlock
	bind()
	if err := fs.lowerBlock(s.Then); err != nil {
		return err
	}
	if !fs.terminated() {
		fs.cur.NewBr(follow)
	}

	falseBlock := follow
	if s.Else != nil {
		falseBlock = fs.newBlock()
		fs.cur = falseBlock
		if err := fs.lowerStmt(s.Else); err != nil {
			return err
		}
		if !fs.terminated() {
			fs.cur.NewBr(follow)
		}
	}

	condBlock.NewCondBr(cond, trueBlock, falseBlock)
	fs.cur = follow
	return nil
}

// lowerLoop dispatches the four loop forms onto a header/body/latch/exit
// skeleton, pushing break/continue targets for the body's duration.
func (fs *funcState) lowerLoop(s *ast.LoopStmt) error {
	switch s.Kind {
	case ast.LoopInfinite:
		return fs.lowerInfiniteLoop(s)
	case ast.LoopWhile:
		return fs.lowerWhileLoop(s)
	case ast.LoopRange:
		return fs.lowerRangeLoop(s)
	case ast.LoopIter:
		return fs.lowerIterLoop(s)
	default:
		return diag.PatternNotSupported("loop kind")
	}
}

func (fs *funcState) lowerInfiniteLoop(s *ast.LoopStmt) error {
	header := fs.newBlock()
	exit := fs.newBlock()
	fs.cur.NewBr(header)

	fs.cur = header
	fs.pushLoop(exit, header)
	if err := fs.lowerBlock(s.Body); err != nil {
		return err
	}
	fs.popLoop()
	if !fs.terminated() {
		fs.cur.NewBr(header)
	}
	fs.cur = exit
	return nil
}

func (fs *funcState) lowerWhileLoop(s *ast.LoopStmt) error {
	header := fs.newBlock()
	body := fs.newBlock()
	exit := fs.newBlock()
	fs.cur.NewBr(header)

	fs.cur = header
	cond, _, err := fs.lowerExpr(s.Cond)
	if err != nil {
		return err
	}
	fs.cur.NewCondBr(cond, body, exit)

	fs.cur = body
	fs.pushLoop(exit, header)
	if err := fs.lowerBlock(s.Body); err != nil {
		return err
	}
	fs.popLoop()
	if !fs.terminated() {
		fs.cur.NewBr(header)
	}
	fs.cur = exit
	return nil
}

// lowerRangeLoop lowers `for i in lo..hi { ... }`: half-open, ascending,
// i64-counted (spec.md §4.7).
func (fs *funcState) lowerRangeLoop(s *ast.LoopStmt) error {
	lo, _, err := fs.lowerExpr(s.Lo)
	if err != nil {
		return err
	}
	hi, _, err := fs.lowerExpr(s.Hi)
	if err != nil {
		return err
	}

	ivar := fs.declareLocal(s.Var, types.I64)
	fs.cur.NewStore(lo, ivar.Ptr)

	header := fs.newBlock()
	body := fs.newBlock()
	latch := fs.newBlock()
	exit := fs.newBlock()
	fs.cur.NewBr(header)

	fs.cur = header
	cur := fs.cur.NewLoad(types.I64, ivar.Ptr)
	cond := fs.cur.NewICmp(enum.IPredSLT, cur, hi)
	fs.cur.NewCondBr(cond, body, exit)

	fs.cur = body
	fs.pushLoop(exit, latch)
	if err := fs.lowerBlock(s.Body); err != nil {
		return err
	}
	fs.popLoop()
	if !fs.terminated() {
		fs.cur.NewBr(latch)
	}

	fs.cur = latch
	next := fs.cur.NewAdd(cur, constant.NewInt(types.I64, 1))
	fs.cur.NewStore(next, ivar.Ptr)
	fs.cur.NewBr(header)

	fs.cur = exit
	return nil
}

// lowerIterLoop lowers `for item in array { ... }` over a fixed-size array
// value by iterating its GEP-addressed elements index by index.
func (fs *funcState) lowerIterLoop(s *ast.LoopStmt) error {
	arrPtr, arrTy, err := fs.lowerExprAddr(s.Array)
	if err != nil {
		return err
	}
	arrType, ok := arrTy.(*types.ArrayType)
	if !ok {
		return diag.TypeNotFound("array")
	}

	idx := fs.declareLocal("__iter_idx", types.I64)
	fs.cur.NewStore(constant.NewInt(types.I64, 0), idx.Ptr)
	limit := constant.NewInt(types.I64, int64(arrType.Len))

	header := fs.newBlock()
	body := fs.newBlock()
	latch := fs.newBlock()
	exit := fs.newBlock()
	fs.cur.NewBr(header)

	fs.cur = header
	cur := fs.cur.NewLoad(types.I64, idx.Ptr)
	cond := fs.cur.NewICmp(enum.IPredSLT, cur, limit)
	fs.cur.NewCondBr(cond, body, exit)

	fs.cur = body
	elemPtr := fs.cur.NewGetElementPtr(arrType, arrPtr,
		constant.NewInt(types.I64, 0), cur)
	elem := fs.cur.NewLoad(arrType.ElemType, elemPtr)
	itemLocal := fs.declareLocal(s.Var, arrType.ElemType)
	fs.cur.NewStore(elem, itemLocal.Ptr)

	fs.pushLoop(exit, latch)
	if err := fs.lowerBlock(s.Body); err != nil {
		return err
	}
	fs.popLoop()
	if !fs.terminated() {
		fs.cur.NewBr(latch)
	}

	fs.cur = latch
	next := fs.cur.NewAdd(cur, constant.NewInt(types.I64, 1))
	fs.cur.NewStore(next, idx.Ptr)
	fs.cur.NewBr(header)

	fs.cur = exit
	return nil
}

func (fs *funcState) lowerBreak() error {
	loop, ok := fs.currentLoop()
	if !ok {
		return diag.BreakOutsideLoop()
	}
	fs.cur.NewBr(loop.BreakBlock)
	return nil
}

func (fs *funcState) lowerContinue() error {
	loop, ok := fs.currentLoop()
	if !ok {
		return diag.ContinueOutsideLoop()
	}
	fs.cur.NewBr(loop.ContinueBlock)
	return nil
}
