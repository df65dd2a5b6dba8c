package lower

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/pawlang-project/pawc/internal/ast"
	"github.com/pawlang-project/pawc/internal/symtab"
)

// local is one stack-allocated binding visible inside a function body: every
// let-bound name and parameter gets an alloca, following mewspring-toy's
// load/store-through-alloca treatment of locals rather than tracking SSA
// values directly.
type local struct {
	Ptr value.Value
	Typ types.Type
}

// loopFrame records the two blocks `break`/`continue` jump to for the loop
// currently being lowered.
type loopFrame struct {
	BreakBlock    *ir.Block
	ContinueBlock *ir.Block
}

// funcState is the Statement/Expression Lowering state for one function
// body: the function being built, the block currently being appended to,
// and the local-variable and loop-nesting stacks.
type funcState struct {
	ctx    *Context
	f      *ir.Func
	cur    *ir.Block
	locals map[string]*local
	loops  []loopFrame
}

func (fs *funcState) pushLoop(brk, cont *ir.Block) {
	fs.loops = append(fs.loops, loopFrame{BreakBlock: brk, ContinueBlock: cont})
}

func (fs *funcState) popLoop() {
	fs.loops = fs.loops[:len(fs.loops)-1]
}

func (fs *funcState) currentLoop() (loopFrame, bool) {
	if len(fs.loops) == 0 {
		return loopFrame{}, false
	}
	return fs.loops[len(fs.loops)-1], true
}

// newBlock appends a fresh, unreachable-by-default block to the function
// under construction.
func (fs *funcState) newBlock() *ir.Block {
	return fs.f.NewBlock("")
}

// terminated reports whether the current block already has a terminator, so
// callers avoid appending a second one (spec.md §4.7 "falls through").
func (fs *funcState) terminated() bool {
	return fs.cur.Term != nil
}

// declareLocal allocates stack storage for name and records it, following
// the struct-by-reference rule: struct-typed locals still get a pointer
// alloca, same as scalars, so member access is always a GEP off one pointer
// (spec.md §3, §4.6).
func (fs *funcState) declareLocal(name string, typ types.Type) *local {
	ptr := fs.cur.NewAlloca(typ)
	l := &local{Ptr: ptr, Typ: typ}
	fs.locals[name] = l
	return l
}

// declareFunc builds the bare *ir.Func signature (no blocks) for decl under
// the given mangled name and registers it in the symbol table, so that
// other items in the same module can reference it before its body is
// lowered (spec.md §4.1 pass 1). selfIR is non-nil when decl is an instance
// method: the receiver becomes a leading `self` IR parameter, pointer to the
// (possibly monomorphized) struct type, ahead of decl's own parameters.
// Callers lowering a method must already have selfIR bound via withSelf
// before calling this, so that a `Self`-typed parameter or return resolves.
func (c *Context) declareFunc(mangled string, decl *ast.FuncDecl, public bool, selfIR types.Type) (*ir.Func, error) {
	retType := types.Type(types.Void)
	if decl.Ret != nil {
		rt, err := c.ResolveType(decl.Ret)
		if err != nil {
			return nil, err
		}
		retType = rt
	}

	var irParams []*ir.Param
	if selfIR != nil {
		irParams = append(irParams, ir.NewParam("self", selfIR))
	}
	for _, p := range decl.Params {
		pt, err := c.ResolveType(p.Type)
		if err != nil {
			return nil, err
		}
		irParams = append(irParams, ir.NewParam(p.Name, pt))
	}

	fn := c.Module.NewFunc(mangled, retType, irParams...)

	if err := c.Sym.Declare(c.CurrentModule, &symtab.Function{Decl: decl, IR: fn, PubFlg: public}); err != nil {
		c.Sym.Replace(c.CurrentModule, &symtab.Function{Decl: decl, IR: fn, PubFlg: public})
	}
	return fn, nil
}

// lowerBodyInto lowers decl's statements into the already-declared fn
// (spec.md §4.1 pass 2). selfIR is non-nil when lowering a method body, in
// which case fn's leading IR parameter is the receiver (declareFunc
// prepended it) and is bound to a `self` local before decl's own parameters.
func (c *Context) lowerBodyInto(fn *ir.Func, decl *ast.FuncDecl, selfIR types.Type) error {
	if decl.Body == nil {
		return nil
	}
	lc := c
	if selfIR != nil {
		lc = c.withSelf(selfIR)
	}

	entry := fn.NewBlock("entry")
	fs := &funcState{ctx: lc, f: fn, cur: entry, locals: make(map[string]*local)}

	offset := 0
	if selfIR != nil {
		sp := fn.Params[0]
		l := fs.declareLocal("self", sp.Typ)
		fs.cur.NewStore(sp, l.Ptr)
		offset = 1
	}
	for i, p := range decl.Params {
		fp := fn.Params[i+offset]
		l := fs.declareLocal(p.Name, fp.Typ)
		fs.cur.NewStore(fp, l.Ptr)
	}

	if err := fs.lowerBlock(decl.Body); err != nil {
		return err
	}
	if !fs.terminated() {
		if fn.Sig.RetType == types.Void {
			fs.cur.NewRet(nil)
		} else {
			fs.cur.NewRet(constZero(fn.Sig.RetType))
		}
	}
	return nil
}

// lowerFuncBody declares decl's signature and immediately lowers its body in
// one step, used by the Generic Instantiator where forward-reference
// ordering within a single module pass does not apply: an instantiation is
// always demand-driven from a call site that already resolved. c.selfIR,
// when already bound by a prior withSelf (generic method instantiation),
// flows into both the signature and the body.
func (c *Context) lowerFuncBody(mangled string, decl *ast.FuncDecl, public bool) (*ir.Func, error) {
	fn, err := c.declareFunc(mangled, decl, public, c.selfIR)
	if err != nil {
		return nil, err
	}
	if err := c.lowerBodyInto(fn, decl, c.selfIR); err != nil {
		return nil, err
	}
	return fn, nil
}
