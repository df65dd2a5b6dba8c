// Package codegen implements the opaque downstream interface of spec.md §6:
// compile_module_to_object(ir_module, out_path) -> bool, plus a system
// linker invocation `clang <objs> -o <out> [platform-sdk-flags]`. Both are
// genuine subprocess boundaries (not reimplemented here) so the IR this
// module produces is the only contract with the real codegen.
package codegen

import (
	"os"
	"os/exec"
	"path/filepath"

	"github.com/llir/llvm/ir"
	"github.com/pkg/errors"

	"github.com/pawlang-project/pawc/internal/diag"
)

// Toolchain is the seam between the Module Compiler and the downstream
// object-code compiler and system linker.
type Toolchain interface {
	// CompileModuleToObject renders m and compiles it to an object file at
	// outPath, returning a ToolFailure diagnostic on non-zero exit.
	CompileModuleToObject(m *ir.Module, outPath string) error
	// Link combines objPaths into a single executable at outPath via the
	// system linker.
	Link(objPaths []string, outPath string, extraArgs ...string) error
}

// Clang is the default Toolchain: it shells out to `clang` both to compile
// LLVM IR text to an object file and, a second time, to link objects into an
// executable (spec.md §6).
type Clang struct {
	// Path to the clang binary; defaults to "clang" when empty.
	Path string
}

func (c *Clang) binary() string {
	if c.Path == "" {
		return "clang"
	}
	return c.Path
}

func (c *Clang) CompileModuleToObject(m *ir.Module, outPath string) error {
	tmp, err := os.CreateTemp("", "paw-*.ll")
	if err != nil {
		return errors.WithStack(err)
	}
	llPath := tmp.Name()
	defer os.Remove(llPath)

	if _, err := tmp.WriteString(m.String()); err != nil {
		tmp.Close()
		return errors.WithStack(err)
	}
	if err := tmp.Close(); err != nil {
		return errors.WithStack(err)
	}

	cmd := exec.Command(c.binary(), "-c", llPath, "-o", outPath)
	out, runErr := cmd.CombinedOutput()
	if runErr != nil {
		exitCode := -1
		if ee, ok := runErr.(*exec.ExitError); ok {
			exitCode = ee.ExitCode()
		}
		d := diag.ToolFailure("clang -c", exitCode)
		return errors.Wrap(d, string(out))
	}
	return nil
}

func (c *Clang) Link(objPaths []string, outPath string, extraArgs ...string) error {
	args := append([]string{}, objPaths...)
	args = append(args, "-o", outPath)
	args = append(args, extraArgs...)

	cmd := exec.Command(c.binary(), args...)
	out, runErr := cmd.CombinedOutput()
	if runErr != nil {
		exitCode := -1
		if ee, ok := runErr.(*exec.ExitError); ok {
			exitCode = ee.ExitCode()
		}
		d := diag.ToolFailure("clang (link)", exitCode)
		return errors.Wrap(d, string(out))
	}
	return nil
}

// ObjectPath derives "<dir>/<moduleName>.o" from an output directory and a
// module's short name.
func ObjectPath(dir, moduleName string) string {
	return filepath.Join(dir, moduleName+".o")
}
