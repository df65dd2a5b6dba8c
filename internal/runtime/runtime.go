// Package runtime declares (but does not define) the small C-ABI runtime
// that backs string/heap operations emitted by lowering: malloc, memcpy,
// and a handful of demo I/O primitives (spec.md §1, §6). The runtime itself
// is an external collaborator, built and linked in separately; this package
// only emits the matching `declare` entries so calls to it verify.
package runtime

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"
)

// CString is the classical C `char*` representation used throughout.
var CString = types.NewPointer(types.I8)

// Decls holds one *ir.Func handle per runtime primitive, all declared (no
// body) in the owning IR module.
type Decls struct {
	Malloc       *ir.Func // void* malloc(i64 size)
	Memcpy       *ir.Func // void* memcpy(void* dst, void* src, i64 size)
	Strlen       *ir.Func // i64 strlen(char* s)
	Strcpy       *ir.Func // char* strcpy(char* dst, char* src)
	Strcat       *ir.Func // char* strcat(char* dst, char* src)
	PrintCStr    *ir.Func // void paw_print_cstr(char* s)
	ReadFileCStr *ir.Func // char* paw_read_file_cstr(char* path)
	Exit         *ir.Func // void paw_exit(i32 code)
}

// Declare emits external declarations for every runtime primitive into m and
// returns the handles lowering calls through.
func Declare(m *ir.Module) *Decls {
	d := &Decls{}
	d.Malloc = m.NewFunc("malloc", CString, ir.NewParam("size", types.I64))
	d.Memcpy = m.NewFunc("memcpy", CString,
		ir.NewParam("dst", CString),
		ir.NewParam("src", CString),
		ir.NewParam("size", types.I64))
	d.Strlen = m.NewFunc("strlen", types.I64, ir.NewParam("s", CString))
	d.Strcpy = m.NewFunc("strcpy", CString,
		ir.NewParam("dst", CString), ir.NewParam("src", CString))
	d.Strcat = m.NewFunc("strcat", CString,
		ir.NewParam("dst", CString), ir.NewParam("src", CString))
	d.PrintCStr = m.NewFunc("paw_print_cstr", types.Void, ir.NewParam("s", CString))
	d.ReadFileCStr = m.NewFunc("paw_read_file_cstr", CString, ir.NewParam("path", CString))
	d.Exit = m.NewFunc("paw_exit", types.Void, ir.NewParam("code", types.I32))
	return d
}
