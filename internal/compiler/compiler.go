// Package compiler implements the Module Compiler (MC, spec.md §4.8): the
// driver that walks the Module Loader's leaves-first module order, lowers
// each one through the shared internal/lower.Context, and hands the
// finished program to the Codegen/Link driver. Grounded on mewspring-toy's
// own compiler struct (cmd/toyc/compiler.go) and its pre/post package-graph
// walk; here the walk is the Loader's already-ordered module list instead of
// packages.Visit's pre/post callbacks. Compilation stops at the first module
// whose lowering returns an error: lowering errors are returned directly
// rather than collected in the module's Reporter.
package compiler

import (
	"github.com/llir/llvm/ir"
	"github.com/pkg/errors"

	"github.com/pawlang-project/pawc/internal/ast"
	"github.com/pawlang-project/pawc/internal/codegen"
	"github.com/pawlang-project/pawc/internal/loader"
	"github.com/pawlang-project/pawc/internal/symtab"
	"github.com/pawlang-project/pawc/lower"
)

// ModuleCompiler drives loading, lowering, and codegen/link for one whole
// program (spec.md §4.8).
//
// Every Paw module of the program is lowered into a single shared
// *ir.Module: mangled names are not module-qualified (spec.md §4.4/§6), so a
// caller in one module needs the callee's *ir.Func from the very same
// llir/llvm module object, not a cross-module reference a second compilation
// unit can't express without a textual re-declaration step. One shared IR
// module keeps call resolution direct and matches the Symbol Table's own
// process-lifetime scope; §6's "object file per module" contract is honored
// at arity one, by treating the whole program as a single compiled unit.
type ModuleCompiler struct {
	Loader    *loader.Loader
	Toolchain codegen.Toolchain
}

// New returns a ModuleCompiler that loads through l and compiles/links
// through tc.
func New(l *loader.Loader, tc codegen.Toolchain) *ModuleCompiler {
	return &ModuleCompiler{Loader: l, Toolchain: tc}
}

// Result is the outcome of compiling one program: the finished IR module
// plus the order modules were lowered in, for diagnostics/tests.
type Result struct {
	Module      *ir.Module
	ModuleOrder []string
}

// CompileProgram loads rootPath and every module it transitively imports,
// lowers them in leaves-first order into one shared IR module, and returns
// the first lowering error, or the Reporter error of the first module whose
// Reporter accumulated any diagnostic; both are checked after each module,
// not deferred to the end.
func (mc *ModuleCompiler) CompileProgram(rootPath string) (*Result, error) {
	order, files, err := mc.Loader.Load(rootPath)
	if err != nil {
		return nil, err
	}

	m := ir.NewModule()
	sym := symtab.New()
	ctx := lower.NewContext(m, sym)

	for _, name := range order {
		ctx.EnterModule(name)
		if err := mc.lowerOne(ctx, files[name]); err != nil {
			return nil, err
		}
		if ctx.Reporter.Failed() {
			return nil, ctx.Reporter.Error()
		}
	}
	ctx.EmitTypeDefs()

	return &Result{Module: m, ModuleOrder: order}, nil
}

// lowerOne wraps LowerModule so a panic-free, ordinary Go error (as opposed
// to a diagnostic already recorded on the Reporter) still aborts the whole
// program instead of silently compiling a partial module.
func (mc *ModuleCompiler) lowerOne(ctx *lower.Context, file *ast.File) error {
	if file == nil {
		return errors.New("module compiler: nil file from loader")
	}
	return ctx.LowerModule(file)
}

// CompileAndLink runs CompileProgram, then renders the resulting module to
// an object file and links it into an executable at outPath (spec.md §6).
func (mc *ModuleCompiler) CompileAndLink(rootPath, objDir, outPath string) (*Result, error) {
	res, err := mc.CompileProgram(rootPath)
	if err != nil {
		return nil, err
	}
	rootName := loader.ShortName(rootPath)
	objPath := codegen.ObjectPath(objDir, rootName)
	if err := mc.Toolchain.CompileModuleToObject(res.Module, objPath); err != nil {
		return res, err
	}
	if err := mc.Toolchain.Link([]string{objPath}, outPath); err != nil {
		return res, err
	}
	return res, nil
}
