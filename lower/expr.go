// Expression Lowering (EL, spec.md §4.6): one lower<Kind> method per
// ast.Expr case, the same exhaustive-type-switch dispatch mewspring-toy uses
// in its own lowerExpr (expr.go), adapted from Go expressions to Paw's
// struct-by-reference, Optional-carrying expression grammar.
package lower

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"

	"github.com/pawlang-project/pawc/internal/ast"
	"github.com/pawlang-project/pawc/internal/diag"
	"github.com/pawlang-project/pawc/internal/mangle"
	"github.com/pawlang-project/pawc/internal/symtab"
)

// lowerExpr lowers e to an IR value ready for use (an rvalue), returning its
// IR type alongside it.
func (fs *funcState) lowerExpr(e ast.Expr) (irValue, types.Type, error) {
	switch e := e.(type) {
	case *ast.IntLit:
		return constant.NewInt(types.I32, e.Value), types.I32, nil
	case *ast.FloatLit:
		return constant.NewFloat(types.Double, e.Value), types.Double, nil
	case *ast.BoolLit:
		return constant.NewBool(e.Value), types.I1, nil
	case *ast.CharLit:
		return constant.NewInt(types.I32, int64(e.Value)), types.I32, nil
	case *ast.StringLit:
		return fs.ctx.internString(e.Value), cstring, nil

	case *ast.IdentExpr:
		return fs.lowerIdent(e.Name)
	case *ast.ModuleRefExpr:
		return fs.lowerModuleRefValue(e)
	case *ast.StaticRefExpr:
		return nil, nil, diag.PatternNotSupported("standalone static reference")

	case *ast.BinaryExpr:
		return fs.lowerBinary(e)
	case *ast.UnaryExpr:
		return fs.lowerUnary(e)
	case *ast.CallExpr:
		return fs.lowerCall(e)
	case *ast.MemberAccessExpr:
		return fs.lowerMemberAccessValue(e)
	case *ast.AssignExpr:
		return fs.lowerAssign(e)
	case *ast.StructLitExpr:
		return fs.lowerStructLit(e)
	case *ast.EnumVariantExpr:
		return fs.lowerEnumVariant(e)
	case *ast.ArrayLitExpr:
		return fs.lowerArrayLit(e)
	case *ast.IndexExpr:
		return fs.lowerIndexValue(e)
	case *ast.MatchExpr:
		return fs.lowerMatch(e)
	case *ast.IsExpr:
		cond, _, _, _, err := fs.lowerIsExpr(e)
		return cond, types.I1, err
	case *ast.IfExpr:
		return fs.lowerIfExpr(e)
	case *ast.AsExpr:
		return fs.lowerAs(e)
	case *ast.TryExpr:
		return fs.lowerTry(e)
	case *ast.OkExpr:
		return fs.lowerOk(e)
	case *ast.ErrExpr:
		return fs.lowerErr(e)

	default:
		return nil, nil, diag.PatternNotSupported(fmt.Sprintf("%T", e))
	}
}

// lowerExprAddr lowers e to its address (an lvalue): a pointer plus the type
// of the value stored there. Used by assignment targets and by iteration
// over array locals.
func (fs *funcState) lowerExprAddr(e ast.Expr) (irValue, types.Type, error) {
	switch e := e.(type) {
	case *ast.IdentExpr:
		l, ok := fs.locals[e.Name]
		if !ok {
			return nil, nil, diag.SymbolNotFound(e.Name)
		}
		return l.Ptr, l.Typ, nil

	case *ast.MemberAccessExpr:
		base, baseTy, err := fs.lowerExpr(e.X)
		if err != nil {
			return nil, nil, err
		}
		st, err := structTypeOf(baseTy)
		if err != nil {
			return nil, nil, err
		}
		idx, fieldTy, err := fs.ctx.fieldIndex(st, e.Name)
		if err != nil {
			return nil, nil, err
		}
		addr := fs.cur.NewGetElementPtr(st, base,
			constant.NewInt(types.I32, 0), constant.NewInt(types.I32, int64(idx)))
		return addr, fieldTy, nil

	case *ast.IndexExpr:
		arrPtr, arrTy, err := fs.lowerExprAddr(e.X)
		if err != nil {
			return nil, nil, err
		}
		arrType, ok := arrTy.(*types.ArrayType)
		if !ok {
			return nil, nil, diag.TypeNotFound("array")
		}
		idx, _, err := fs.lowerExpr(e.Index)
		if err != nil {
			return nil, nil, err
		}
		addr := fs.cur.NewGetElementPtr(arrType, arrPtr, constant.NewInt(types.I64, 0), idx)
		return addr, arrType.ElemType, nil

	default:
		return nil, nil, diag.PatternNotSupported("address of " + fmt.Sprintf("%T", e))
	}
}

// structTypeOf unwraps the pointer-to-struct representation every struct
// value carries (spec.md §3 "struct-by-reference").
func structTypeOf(t types.Type) (*types.StructType, error) {
	ptr, ok := t.(*types.PointerType)
	if !ok {
		return nil, diag.TypeNotFound("struct pointer")
	}
	st, ok := ptr.ElemType.(*types.StructType)
	if !ok {
		return nil, diag.TypeNotFound("struct")
	}
	return st, nil
}

func (fs *funcState) lowerIdent(name string) (irValue, types.Type, error) {
	if l, ok := fs.locals[name]; ok {
		return fs.cur.NewLoad(l.Typ, l.Ptr), l.Typ, nil
	}
	sym, ok := fs.ctx.Sym.Lookup(name, fs.ctx.CurrentModule)
	if !ok {
		return nil, nil, diag.SymbolNotFound(name)
	}
	return symbolValue(sym)
}

func symbolValue(sym symtab.Symbol) (irValue, types.Type, error) {
	switch s := sym.(type) {
	case *symtab.Function:
		return s.IR, s.IR.Type(), nil
	case *symtab.Variable:
		return s.IR, s.IR.Type(), nil
	default:
		return nil, nil, diag.SymbolNotFound(sym.Name())
	}
}

func (fs *funcState) lowerModuleRefValue(e *ast.ModuleRefExpr) (irValue, types.Type, error) {
	sym, ok := fs.ctx.Sym.LookupInModule(e.Module, e.Name)
	if !ok {
		return nil, nil, diag.SymbolNotFound(e.Module + "::" + e.Name)
	}
	if !symtab.IsAccessible(sym, e.Module, fs.ctx.CurrentModule) {
		return nil, nil, diag.SymbolNotAccessible(e.Module+"::"+e.Name, fs.ctx.CurrentModule)
	}
	return symbolValue(sym)
}

// lowerBinary lowers arithmetic, bitwise, logical, and relational binary
// operators, plus the pointer `+` string-concatenation special case (spec.md
// §4.6), grounded on mewspring-toy's own token-switch shape in
// lowerBinaryExpr (expr.go) adapted from go/token kinds to Paw's string
// operators.
func (fs *funcState) lowerBinary(e *ast.BinaryExpr) (irValue, types.Type, error) {
	x, xt, err := fs.lowerExpr(e.Left)
	if err != nil {
		return nil, nil, err
	}
	y, _, err := fs.lowerExpr(e.Right)
	if err != nil {
		return nil, nil, err
	}

	if e.Op == "+" {
		if _, ok := xt.(*types.PointerType); ok {
			v, err := fs.lowerStringConcat(x, y)
			return v, cstring, err
		}
	}

	switch e.Op {
	case "+":
		if types.IsFloat(xt) {
			return fs.cur.NewFAdd(x, y), xt, nil
		}
		return fs.cur.NewAdd(x, y), xt, nil
	case "-":
		if types.IsFloat(xt) {
			return fs.cur.NewFSub(x, y), xt, nil
		}
		return fs.cur.NewSub(x, y), xt, nil
	case "*":
		if types.IsFloat(xt) {
			return fs.cur.NewFMul(x, y), xt, nil
		}
		return fs.cur.NewMul(x, y), xt, nil
	case "/":
		if types.IsFloat(xt) {
			return fs.cur.NewFDiv(x, y), xt, nil
		}
		return fs.cur.NewSDiv(x, y), xt, nil
	case "%":
		if types.IsFloat(xt) {
			return fs.cur.NewFRem(x, y), xt, nil
		}
		return fs.cur.NewSRem(x, y), xt, nil
	case "&":
		return fs.cur.NewAnd(x, y), xt, nil
	case "|":
		return fs.cur.NewOr(x, y), xt, nil
	case "^":
		return fs.cur.NewXor(x, y), xt, nil
	case "<<":
		return fs.cur.NewShl(x, y), xt, nil
	case ">>":
		return fs.cur.NewAShr(x, y), xt, nil
	case "&&":
		return fs.cur.NewAnd(x, y), types.I1, nil
	case "||":
		return fs.cur.NewOr(x, y), types.I1, nil
	case "==":
		return fs.cmp(x, y, xt, enum.IPredEQ, enum.FPredOEQ), types.I1, nil
	case "!=":
		return fs.cmp(x, y, xt, enum.IPredNE, enum.FPredONE), types.I1, nil
	case "<":
		return fs.cmp(x, y, xt, enum.IPredSLT, enum.FPredOLT), types.I1, nil
	case "<=":
		return fs.cmp(x, y, xt, enum.IPredSLE, enum.FPredOLE), types.I1, nil
	case ">":
		return fs.cmp(x, y, xt, enum.IPredSGT, enum.FPredOGT), types.I1, nil
	case ">=":
		return fs.cmp(x, y, xt, enum.IPredSGE, enum.FPredOGE), types.I1, nil
	default:
		return nil, nil, diag.PatternNotSupported("binary operator " + e.Op)
	}
}

func (fs *funcState) cmp(x, y irValue, t types.Type, ip enum.IPred, fp enum.FPred) irValue {
	if types.IsFloat(t) {
		return fs.cur.NewFCmp(fp, x, y)
	}
	return fs.cur.NewICmp(ip, x, y)
}

// lowerStringConcat implements `a + b` for two C strings: malloc a buffer
// sized for both (plus the terminator), then strcpy/strcat into it (spec.md
// §4.6, §6 runtime primitives).
func (fs *funcState) lowerStringConcat(x, y irValue) (irValue, error) {
	rt := fs.ctx.Runtime
	lenX := fs.cur.NewCall(rt.Strlen, x)
	lenY := fs.cur.NewCall(rt.Strlen, y)
	total := fs.cur.NewAdd(fs.cur.NewAdd(lenX, lenY), constant.NewInt(types.I64, 1))
	buf := fs.cur.NewCall(rt.Malloc, total)
	fs.cur.NewCall(rt.Strcpy, buf, x)
	fs.cur.NewCall(rt.Strcat, buf, y)
	return buf, nil
}

func (fs *funcState) lowerUnary(e *ast.UnaryExpr) (irValue, types.Type, error) {
	x, xt, err := fs.lowerExpr(e.X)
	if err != nil {
		return nil, nil, err
	}
	switch e.Op {
	case "-":
		if types.IsFloat(xt) {
			return fs.cur.NewFNeg(x), xt, nil
		}
		return fs.cur.NewSub(constant.NewInt(xt.(*types.IntType), 0), x), xt, nil
	case "!":
		return fs.cur.NewXor(x, constant.True), types.I1, nil
	default:
		return nil, nil, diag.PatternNotSupported("unary operator " + e.Op)
	}
}

// lowerMemberAccessValue lowers `x.field` used as a value (spec.md §4.6).
func (fs *funcState) lowerMemberAccessValue(e *ast.MemberAccessExpr) (irValue, types.Type, error) {
	addr, ty, err := fs.lowerExprAddr(e)
	if err != nil {
		return nil, nil, err
	}
	return fs.cur.NewLoad(ty, addr), ty, nil
}

// lowerIndexValue lowers `x[i]` used as a value.
func (fs *funcState) lowerIndexValue(e *ast.IndexExpr) (irValue, types.Type, error) {
	addr, ty, err := fs.lowerExprAddr(e)
	if err != nil {
		return nil, nil, err
	}
	return fs.cur.NewLoad(ty, addr), ty, nil
}

// lowerAssign lowers `target = value`, storing through the target's address
// and yielding the stored value (spec.md §4.6).
func (fs *funcState) lowerAssign(e *ast.AssignExpr) (irValue, types.Type, error) {
	addr, ty, err := fs.lowerExprAddr(e.Target)
	if err != nil {
		return nil, nil, err
	}
	val, _, err := fs.lowerExpr(e.Value)
	if err != nil {
		return nil, nil, err
	}
	fs.cur.NewStore(val, addr)
	return val, ty, nil
}

// sizeOf computes sizeof(t) as an i64 via the classical null-pointer-GEP
// trick, used ahead of every heap allocation (spec.md §4.6 "struct
// construction").
func sizeOf(t types.Type) irValue {
	ptrT := types.NewPointer(t)
	null := constant.NewNull(ptrT)
	gep := constant.NewGetElementPtr(t, null, constant.NewInt(types.I64, 1))
	return constant.NewPtrToInt(gep, types.I64)
}

// lowerStructLit lowers `Name { field: value, ... }`: a heap allocation
// followed by one GEP+store per field (spec.md §3 "struct-by-reference",
// §4.6).
func (fs *funcState) lowerStructLit(e *ast.StructLitExpr) (irValue, types.Type, error) {
	namedType := &ast.NamedType{Name: e.Name, Args: e.TypeArgs}
	ptrTy, err := fs.ctx.ResolveType(namedType)
	if err != nil {
		return nil, nil, err
	}
	ptrType := ptrTy.(*types.PointerType)
	st := ptrType.ElemType.(*types.StructType)

	raw := fs.cur.NewCall(fs.ctx.Runtime.Malloc, sizeOf(st))
	self := fs.cur.NewBitCast(raw, ptrType)

	for _, fi := range e.Fields {
		idx, _, err := fs.ctx.fieldIndex(st, fi.Name)
		if err != nil {
			return nil, nil, err
		}
		val, _, err := fs.lowerExpr(fi.Value)
		if err != nil {
			return nil, nil, err
		}
		addr := fs.cur.NewGetElementPtr(st, self,
			constant.NewInt(types.I32, 0), constant.NewInt(types.I32, int64(idx)))
		fs.cur.NewStore(val, addr)
	}
	return self, ptrType, nil
}

// indexOfVariant returns decl's declared index for variant, or -1.
func indexOfVariant(decl *ast.EnumDecl, variant string) int {
	for i, v := range decl.Variants {
		if v.Name == variant {
			return i
		}
	}
	return -1
}

// lowerEnumVariant lowers `Enum::Variant(args...)` to the fixed {i32 tag,
// i64 data} tagged-union value (spec.md §3, §4.6). Only a single scalar
// payload value is supported, matching ast.VariantPattern's single Binding.
func (fs *funcState) lowerEnumVariant(e *ast.EnumVariantExpr) (irValue, types.Type, error) {
	namedType := &ast.NamedType{Name: e.EnumName, Args: e.TypeArgs}
	enumTy, err := fs.ctx.ResolveType(namedType)
	if err != nil {
		return nil, nil, err
	}
	st := enumTy.(*types.StructType)

	decl, ok := fs.ctx.enumDecls[st.TypeName]
	if !ok {
		return nil, nil, diag.TypeNotFound(e.EnumName)
	}
	tag := indexOfVariant(decl, e.Variant)
	if tag < 0 {
		return nil, nil, diag.SymbolNotFound(e.EnumName + "::" + e.Variant)
	}

	var payload irValue = constant.NewInt(types.I64, 0)
	if len(e.Args) > 0 {
		v, vt, err := fs.lowerExpr(e.Args[0])
		if err != nil {
			return nil, nil, err
		}
		payload = fs.toI64(v, vt)
	}

	slot := fs.cur.NewAlloca(st)
	tagAddr := fs.cur.NewGetElementPtr(st, slot, constant.NewInt(types.I32, 0), constant.NewInt(types.I32, 0))
	fs.cur.NewStore(constant.NewInt(types.I32, int64(tag)), tagAddr)
	dataAddr := fs.cur.NewGetElementPtr(st, slot, constant.NewInt(types.I32, 0), constant.NewInt(types.I32, 1))
	fs.cur.NewStore(payload, dataAddr)
	return fs.cur.NewLoad(st, slot), st, nil
}

// toI64 widens/narrows/reinterprets v (of type vt) to fit the enum payload's
// fixed 64-bit slot.
func (fs *funcState) toI64(v irValue, vt types.Type) irValue {
	switch t := vt.(type) {
	case *types.IntType:
		if t.BitSize == 64 {
			return v
		}
		if t.BitSize < 64 {
			return fs.cur.NewSExt(v, types.I64)
		}
		return fs.cur.NewTrunc(v, types.I64)
	case *types.PointerType:
		return fs.cur.NewPtrToInt(v, types.I64)
	default:
		return fs.cur.NewBitCast(v, types.I64)
	}
}

// fromI64 is toI64's inverse, used when a match/is arm binds an enum
// variant's payload back to its declared type.
func (fs *funcState) fromI64(v irValue, target types.Type) irValue {
	switch t := target.(type) {
	case *types.IntType:
		if t.BitSize == 64 {
			return v
		}
		return fs.cur.NewTrunc(v, t)
	case *types.PointerType:
		return fs.cur.NewIntToPtr(v, t)
	default:
		return fs.cur.NewBitCast(v, target)
	}
}

// lowerArrayLit lowers `[a, b, c]` into a stack-allocated, element-by-element
// initialized array value.
func (fs *funcState) lowerArrayLit(e *ast.ArrayLitExpr) (irValue, types.Type, error) {
	if len(e.Elems) == 0 {
		return nil, nil, diag.TypeNotFound("empty array literal")
	}
	first, elemTy, err := fs.lowerExpr(e.Elems[0])
	if err != nil {
		return nil, nil, err
	}
	arrType := types.NewArray(uint64(len(e.Elems)), elemTy)
	slot := fs.cur.NewAlloca(arrType)

	store := func(i int, v irValue) {
		addr := fs.cur.NewGetElementPtr(arrType, slot,
			constant.NewInt(types.I64, 0), constant.NewInt(types.I64, int64(i)))
		fs.cur.NewStore(v, addr)
	}
	store(0, first)
	for i := 1; i < len(e.Elems); i++ {
		v, _, err := fs.lowerExpr(e.Elems[i])
		if err != nil {
			return nil, nil, err
		}
		store(i, v)
	}
	return fs.cur.NewLoad(arrType, slot), arrType, nil
}

// lowerAs lowers `x as T`: integer widen/narrow, int/float conversion, or
// pointer bitcast (spec.md §4.6).
func (fs *funcState) lowerAs(e *ast.AsExpr) (irValue, types.Type, error) {
	v, vt, err := fs.lowerExpr(e.X)
	if err != nil {
		return nil, nil, err
	}
	target, err := fs.ctx.ResolveType(e.Target)
	if err != nil {
		return nil, nil, err
	}
	switch tt := target.(type) {
	case *types.IntType:
		if types.IsFloat(vt) {
			return fs.cur.NewFPToSI(v, tt), target, nil
		}
		srcInt, ok := vt.(*types.IntType)
		if !ok {
			return nil, nil, diag.PatternNotSupported("as-cast from non-integer")
		}
		switch {
		case srcInt.BitSize == tt.BitSize:
			return v, target, nil
		case srcInt.BitSize < tt.BitSize:
			return fs.cur.NewSExt(v, tt), target, nil
		default:
			return fs.cur.NewTrunc(v, tt), target, nil
		}
	case *types.FloatType:
		if types.IsInt(vt) {
			return fs.cur.NewSIToFP(v, tt), target, nil
		}
		return fs.cur.NewFPTrunc(v, tt), target, nil
	case *types.PointerType:
		return fs.cur.NewBitCast(v, tt), target, nil
	default:
		return nil, nil, diag.PatternNotSupported("as-cast target")
	}
}

// --- Calls --------------------------------------------------------------

// lowerCall dispatches the four call shapes of spec.md §4.6: a local
// function/identifier call, a cross-module call, a static/associated
// generic-struct call, and an instance method call.
func (fs *funcState) lowerCall(e *ast.CallExpr) (irValue, types.Type, error) {
	switch fun := e.Fun.(type) {
	case *ast.IdentExpr:
		return fs.lowerLocalCall(fun.Name, e.TypeArgs, e.Args)
	case *ast.ModuleRefExpr:
		return fs.lowerModuleCall(fun, e.TypeArgs, e.Args)
	case *ast.StaticRefExpr:
		return fs.lowerStaticCall(fun, e.TypeArgs, e.Args)
	case *ast.MemberAccessExpr:
		return fs.lowerMethodCall(fun, e.Args)
	default:
		return nil, nil, diag.PatternNotSupported("call target")
	}
}

func (fs *funcState) emitCall(fn *ir.Func, args []ast.Expr, selfVal irValue) (irValue, types.Type, error) {
	vals := make([]irValue, 0, len(args)+1)
	if selfVal != nil {
		vals = append(vals, selfVal)
	}
	for _, a := range args {
		v, _, err := fs.lowerExpr(a)
		if err != nil {
			return nil, nil, err
		}
		vals = append(vals, v)
	}
	call := fs.cur.NewCall(fn, vals...)
	return call, fn.Sig.RetType, nil
}

func (fs *funcState) lowerLocalCall(name string, typeArgs []ast.Type, args []ast.Expr) (irValue, types.Type, error) {
	sym, ok := fs.ctx.Sym.Lookup(name, fs.ctx.CurrentModule)
	if !ok {
		return nil, nil, diag.SymbolNotFound(name)
	}
	fn, err := fs.ctx.resolveCallableFunc(sym, typeArgs)
	if err != nil {
		return nil, nil, err
	}
	return fs.emitCall(fn, args, nil)
}

func (fs *funcState) lowerModuleCall(fun *ast.ModuleRefExpr, typeArgs []ast.Type, args []ast.Expr) (irValue, types.Type, error) {
	sym, ok := fs.ctx.Sym.LookupInModule(fun.Module, fun.Name)
	if !ok {
		return nil, nil, diag.SymbolNotFound(fun.Module + "::" + fun.Name)
	}
	if !symtab.IsAccessible(sym, fun.Module, fs.ctx.CurrentModule) {
		return nil, nil, diag.SymbolNotAccessible(fun.Module+"::"+fun.Name, fs.ctx.CurrentModule)
	}
	fn, err := fs.ctx.resolveCallableFunc(sym, typeArgs)
	if err != nil {
		return nil, nil, err
	}
	return fs.emitCall(fn, args, nil)
}

// resolveCallableFunc returns sym's concrete *ir.Func, instantiating it on
// demand if sym is still a generic template (spec.md §4.4).
func (c *Context) resolveCallableFunc(sym symtab.Symbol, typeArgs []ast.Type) (*ir.Func, error) {
	switch s := sym.(type) {
	case *symtab.Function:
		return s.IR, nil
	case *symtab.GenericFunction:
		return c.InstantiateFunction(s.Decl, typeArgs)
	default:
		return nil, diag.SymbolNotFound(sym.Name())
	}
}

// lowerStaticCall lowers `Type::name(args...)`, the generic-struct
// associated-function call (e.g. `List::new::<i32>()`), where typeArgs are
// the struct's own type arguments (spec.md §4.6 call case 2).
func (fs *funcState) lowerStaticCall(fun *ast.StaticRefExpr, typeArgs []ast.Type, args []ast.Expr) (irValue, types.Type, error) {
	if len(typeArgs) == 0 {
		sym, ok := fs.ctx.Sym.LookupInModule(fs.ctx.CurrentModule, fun.Name)
		if !ok {
			return nil, nil, diag.SymbolNotFound(fun.Name)
		}
		fnsym, ok := sym.(*symtab.Function)
		if !ok {
			return nil, nil, diag.SymbolNotFound(fun.Name)
		}
		return fs.emitCall(fnsym.IR, args, nil)
	}

	if _, err := fs.ctx.instantiateNamed(&ast.NamedType{Name: fun.TypeName, Args: typeArgs}); err != nil {
		return nil, nil, err
	}
	mangled := mangle.Mangle(fun.TypeName, typeArgs)
	suffix := mangle.StructSuffix(fun.TypeName, mangled)
	methodName := mangle.MethodName(fun.Name, suffix)
	sym, ok := fs.ctx.Sym.LookupInModule(fs.ctx.CurrentModule, methodName)
	if !ok {
		return nil, nil, diag.SymbolNotFound(methodName)
	}
	fnsym, ok := sym.(*symtab.Function)
	if !ok {
		return nil, nil, diag.SymbolNotFound(methodName)
	}
	return fs.emitCall(fnsym.IR, args, nil)
}

// lowerMethodCall lowers `receiver.method(args...)`, passing receiver as the
// implicit first (`self`) argument (spec.md §4.6 call case 1). The method is
// resolved by name across every module's method table, not just the calling
// module's: a struct's methods are declared under the module that defines
// the struct, which is frequently not the caller's own module.
func (fs *funcState) lowerMethodCall(fun *ast.MemberAccessExpr, args []ast.Expr) (irValue, types.Type, error) {
	selfVal, selfTy, err := fs.lowerExpr(fun.X)
	if err != nil {
		return nil, nil, err
	}
	ptr, ok := selfTy.(*types.PointerType)
	if !ok {
		return nil, nil, diag.TypeNotFound("struct receiver")
	}
	st, ok := ptr.ElemType.(*types.StructType)
	if !ok {
		return nil, nil, diag.TypeNotFound("struct receiver")
	}

	methodName := fun.Name
	if decl, ok := fs.ctx.structDecls[st.TypeName]; ok && decl.Name != st.TypeName {
		suffix := mangle.StructSuffix(decl.Name, st.TypeName)
		methodName = mangle.MethodName(fun.Name, suffix)
	}

	sym, ok := fs.ctx.Sym.Lookup(methodName, fs.ctx.CurrentModule)
	if !ok {
		return nil, nil, diag.SymbolNotFound(methodName)
	}
	fnsym, ok := sym.(*symtab.Function)
	if !ok {
		return nil, nil, diag.SymbolNotFound(methodName)
	}
	return fs.emitCall(fnsym.IR, args, selfVal)
}

// --- match / is ----------------------------------------------------------

// lowerIsExpr lowers the boolean test of `scrutinee is Pattern`, additionally
// reporting the binding name/value/type the pattern wants to expose (empty
// name if the pattern binds nothing). lowerCond uses this to make the
// binding visible inside the `then` branch of an enclosing `if` (spec.md
// §4.6/§4.7).
func (fs *funcState) lowerIsExpr(e *ast.IsExpr) (irValue, string, irValue, types.Type, error) {
	val, ty, err := fs.lowerExpr(e.X)
	if err != nil {
		return nil, "", nil, nil, err
	}

	switch p := e.Pattern.(type) {
	case *ast.WildcardPattern:
		return constant.True, "", nil, nil, nil

	case *ast.IdentPattern:
		return constant.True, p.Name, val, ty, nil

	case *ast.VariantPattern:
		st, ok := ty.(*types.StructType)
		if !ok {
			return nil, "", nil, nil, diag.TypeNotFound("enum")
		}
		decl, ok := fs.ctx.enumDecls[st.TypeName]
		if !ok {
			return nil, "", nil, nil, diag.TypeNotFound(st.TypeName)
		}
		idx := indexOfVariant(decl, p.Variant)
		if idx < 0 {
			return nil, "", nil, nil, diag.SymbolNotFound(p.EnumName + "::" + p.Variant)
		}
		tagVal := fs.cur.NewExtractValue(val, 0)
		cond := fs.cur.NewICmp(enum.IPredEQ, tagVal, constant.NewInt(types.I32, int64(idx)))
		if p.Binding == "" {
			return cond, "", nil, nil, nil
		}
		payloadTy, err := fs.ctx.ResolveType(decl.Variants[idx].Types[0])
		if err != nil {
			payloadTy = types.I64
		}
		raw := fs.cur.NewExtractValue(val, 1)
		bindVal := fs.fromI64(raw, payloadTy)
		return cond, p.Binding, bindVal, payloadTy, nil

	default:
		return nil, "", nil, nil, diag.PatternNotSupported("is-pattern")
	}
}

// lowerCond lowers a condition expression, returning an extra bind closure
// that must be invoked once fs.cur has switched to the `then` block, so that
// an `is`-pattern binding in the condition is visible to the branch it
// guards (spec.md §4.7).
func (fs *funcState) lowerCond(e ast.Expr) (irValue, func(), error) {
	if ie, ok := e.(*ast.IsExpr); ok {
		cond, bindName, bindVal, bindTy, err := fs.lowerIsExpr(ie)
		if err != nil {
			return nil, nil, err
		}
		bind := func() {
			if bindName == "" {
				return
			}
			l := fs.declareLocal(bindName, bindTy)
			fs.cur.NewStore(bindVal, l.Ptr)
		}
		return cond, bind, nil
	}
	cond, _, err := fs.lowerExpr(e)
	return cond, func() {}, err
}

// lowerMatch lowers `match scrutinee { arm, ... }` as a chain of
// tag-comparison blocks joined by a phi in a common follow block. Wildcard
// and bare-identifier arms always match and terminate the chain.
func (fs *funcState) lowerMatch(e *ast.MatchExpr) (irValue, types.Type, error) {
	val, ty, err := fs.lowerExpr(e.Scrutinee)
	if err != nil {
		return nil, nil, err
	}
	st, ok := ty.(*types.StructType)
	if !ok {
		return nil, nil, diag.TypeNotFound("enum")
	}
	decl, ok := fs.ctx.enumDecls[st.TypeName]
	if !ok {
		return nil, nil, diag.TypeNotFound(st.TypeName)
	}
	tag := fs.cur.NewExtractValue(val, 0)

	follow := fs.newBlock()
	type incoming struct {
		val   irValue
		block *ir.Block
	}
	var incomings []incoming
	cur := fs.cur
	exhaustive := false

	for _, arm := range e.Arms {
		armBlock := fs.newBlock()
		var nextBlock *ir.Block

		switch p := arm.Pattern.(type) {
		case *ast.WildcardPattern:
			cur.NewBr(armBlock)
		case *ast.IdentPattern:
			cur.NewBr(armBlock)
		case *ast.VariantPattern:
			idx := indexOfVariant(decl, p.Variant)
			if idx < 0 {
				return nil, nil, diag.SymbolNotFound(p.EnumName + "::" + p.Variant)
			}
			cond := cur.NewICmp(enum.IPredEQ, tag, constant.NewInt(types.I32, int64(idx)))
			nextBlock = fs.newBlock()
			cur.NewCondBr(cond, armBlock, nextBlock)
		default:
			return nil, nil, diag.PatternNotSupported("match pattern")
		}

		fs.cur = armBlock
		switch p := arm.Pattern.(type) {
		case *ast.IdentPattern:
			l := fs.declareLocal(p.Name, st)
			fs.cur.NewStore(val, l.Ptr)
		case *ast.VariantPattern:
			if p.Binding != "" {
				idx := indexOfVariant(decl, p.Variant)
				payloadTy, err := fs.ctx.ResolveType(decl.Variants[idx].Types[0])
				if err != nil {
					payloadTy = types.I64
				}
				raw := fs.cur.NewExtractValue(val, 1)
				bv := fs.fromI64(raw, payloadTy)
				l := fs.declareLocal(p.Binding, payloadTy)
				fs.cur.NewStore(bv, l.Ptr)
			}
		}

		armVal, _, err := fs.lowerExpr(arm.Body)
		if err != nil {
			return nil, nil, err
		}
		if !fs.terminated() {
			armEnd := fs.cur
			fs.cur.NewBr(follow)
			incomings = append(incomings, incoming{armVal, armEnd})
		}

		if nextBlock == nil {
			exhaustive = true
			break
		}
		cur = nextBlock
		fs.cur = cur
	}
	// A non-exhaustive arm set (no wildcard/ident catch-all) falls through to
	// a zero value of the inferred result type, rather than requiring a proof
	// of exhaustiveness.
	if !exhaustive {
		if len(incomings) > 0 {
			tailEnd := cur
			zero := constZero(incomings[0].val.Type())
			cur.NewBr(follow)
			incomings = append(incomings, incoming{zero, tailEnd})
		} else {
			cur.NewUnreachable()
		}
	}

	fs.cur = follow
	if len(incomings) == 0 {
		return nil, nil, diag.PatternNotSupported("match with no reachable arm")
	}
	incs := make([]*ir.Incoming, len(incomings))
	for i, inc := range incomings {
		incs[i] = ir.NewIncoming(inc.val, inc.block)
	}
	phi := follow.NewPhi(incs...)
	return phi, incomings[0].val.Type(), nil
}

// lowerIfExpr lowers the expression form of `if`: both branches are lowered
// into their own blocks and joined by a phi in a common follow block
// (spec.md §4.6).
func (fs *funcState) lowerIfExpr(e *ast.IfExpr) (irValue, types.Type, error) {
	cond, bind, err := fs.lowerCond(e.Cond)
	if err != nil {
		return nil, nil, err
	}
	condBlock := fs.cur
	thenBlock := fs.newBlock()
	elseBlock := fs.newBlock()
	follow := fs.newBlock()
	condBlock.NewCondBr(cond, thenBlock, elseBlock)

	fs.cur = thenBlock
	bind()
	thenVal, thenTy, err := fs.lowerExpr(e.Then)
	if err != nil {
		return nil, nil, err
	}
	thenEnd := fs.cur
	if !fs.terminated() {
		fs.cur.NewBr(follow)
	}

	fs.cur = elseBlock
	elseVal, _, err := fs.lowerExpr(e.Else)
	if err != nil {
		return nil, nil, err
	}
	elseEnd := fs.cur
	if !fs.terminated() {
		fs.cur.NewBr(follow)
	}

	fs.cur = follow
	phi := follow.NewPhi(
		ir.NewIncoming(thenVal, thenEnd),
		ir.NewIncoming(elseVal, elseEnd),
	)
	return phi, thenTy, nil
}

// --- Optional<T> protocol --------------------------------------------------

// irTypeKey derives a short, stable name fragment for t, used to key a
// freshly synthesized Optional<T> struct when the enclosing function's
// return type isn't itself an Optional (spec.md §3).
func irTypeKey(t types.Type) string {
	switch t := t.(type) {
	case *types.IntType:
		return fmt.Sprintf("i%d", t.BitSize)
	case *types.FloatType:
		if t == types.Double {
			return "f64"
		}
		return "f32"
	case *types.PointerType:
		if st, ok := t.ElemType.(*types.StructType); ok && st.TypeName != "" {
			return st.TypeName
		}
		return "string"
	case *types.StructType:
		return t.TypeName
	default:
		return "unknown"
	}
}

// optionalType returns the {i32 tag, T value, i8* error_message} struct to
// build an ok()/err() result in: the enclosing function's own return type
// when it already has that shape (the common case, `return ok(v)`), else a
// freshly synthesized and cached one.
func (fs *funcState) optionalType(valTy types.Type) *types.StructType {
	if st, ok := fs.f.Sig.RetType.(*types.StructType); ok && len(st.Fields) == 3 {
		return st
	}
	name := "Optional_" + irTypeKey(valTy)
	if cached, ok := fs.ctx.typeCache[name]; ok {
		return cached.(*types.StructType)
	}
	st := types.NewStruct(types.I32, valTy, cstring)
	st.TypeName = name
	fs.ctx.typeCache[name] = st
	return st
}

func (fs *funcState) lowerOk(e *ast.OkExpr) (irValue, types.Type, error) {
	val, valTy, err := fs.lowerExpr(e.X)
	if err != nil {
		return nil, nil, err
	}
	st := fs.optionalType(valTy)
	slot := fs.cur.NewAlloca(st)
	fs.storeOptional(slot, st, constant.NewInt(types.I32, 0), val, constant.NewNull(cstring))
	return fs.cur.NewLoad(st, slot), st, nil
}

func (fs *funcState) lowerErr(e *ast.ErrExpr) (irValue, types.Type, error) {
	msg, _, err := fs.lowerExpr(e.X)
	if err != nil {
		return nil, nil, err
	}
	st := fs.optionalType(types.I32) // value arm unused on the error path
	slot := fs.cur.NewAlloca(st)
	fs.storeOptional(slot, st, constant.NewInt(types.I32, 1), constZero(st.Fields[1]), msg)
	return fs.cur.NewLoad(st, slot), st, nil
}

func (fs *funcState) storeOptional(slot irValue, st *types.StructType, tag, val, errMsg irValue) {
	tagAddr := fs.cur.NewGetElementPtr(st, slot, constant.NewInt(types.I32, 0), constant.NewInt(types.I32, 0))
	fs.cur.NewStore(tag, tagAddr)
	valAddr := fs.cur.NewGetElementPtr(st, slot, constant.NewInt(types.I32, 0), constant.NewInt(types.I32, 1))
	fs.cur.NewStore(val, valAddr)
	errAddr := fs.cur.NewGetElementPtr(st, slot, constant.NewInt(types.I32, 0), constant.NewInt(types.I32, 2))
	fs.cur.NewStore(errMsg, errAddr)
}

// lowerTry lowers the postfix `?` operator: on tag==0 (ok) the wrapped value
// continues evaluation; on tag==1 (err) the enclosing function returns
// immediately with the same error propagated into its own Optional-shaped
// return type (spec.md §3 "short-circuit").
func (fs *funcState) lowerTry(e *ast.TryExpr) (irValue, types.Type, error) {
	val, ty, err := fs.lowerExpr(e.X)
	if err != nil {
		return nil, nil, err
	}
	st, ok := ty.(*types.StructType)
	if !ok || len(st.Fields) != 3 {
		return nil, nil, diag.InvalidTryTarget()
	}

	tag := fs.cur.NewExtractValue(val, 0)
	cond := fs.cur.NewICmp(enum.IPredEQ, tag, constant.NewInt(types.I32, 0))
	okBlock := fs.newBlock()
	errBlock := fs.newBlock()
	fs.cur.NewCondBr(cond, okBlock, errBlock)

	fs.cur = errBlock
	errMsg := fs.cur.NewExtractValue(val, 2)
	if retSt, ok := fs.f.Sig.RetType.(*types.StructType); ok && len(retSt.Fields) == 3 {
		slot := fs.cur.NewAlloca(retSt)
		fs.storeOptional(slot, retSt, constant.NewInt(types.I32, 1), constZero(retSt.Fields[1]), errMsg)
		fs.cur.NewRet(fs.cur.NewLoad(retSt, slot))
	} else if fs.f.Sig.RetType == types.Void {
		fs.cur.NewRet(nil)
	} else {
		fs.cur.NewRet(constZero(fs.f.Sig.RetType))
	}

	fs.cur = okBlock
	inner := fs.cur.NewExtractValue(val, 1)
	return inner, st.Fields[1], nil
}

// internString interns s as a freshly named global char array and returns an
// i8* pointing at its first byte, following mewspring-toy's own STRING
// literal lowering via constant.NewCharArrayFromString (expr.go), extended
// here with the null terminator and GEP-to-pointer step C-ABI calls expect.
func (c *Context) internString(s string) irValue {
	name := fmt.Sprintf("__str%d", c.strCount)
	c.strCount++
	data := constant.NewCharArrayFromString(s + "\x00")
	g := c.Module.NewGlobalDef(name, data)
	zero := constant.NewInt(types.I64, 0)
	return constant.NewGetElementPtr(data.Typ, g, zero, zero)
}
