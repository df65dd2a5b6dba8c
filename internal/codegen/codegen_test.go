package codegen_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pawlang-project/pawc/internal/codegen"
)

func TestObjectPathJoinsDirAndModuleName(t *testing.T) {
	assert.Equal(t, "build/math.o", codegen.ObjectPath("build", "math"))
}

func TestClangImplementsToolchain(t *testing.T) {
	// A zero-value Clang (empty Path, which runs "clang" from the PATH)
	// satisfies Toolchain. Its subprocess calls are not run by any test:
	// internal/compiler's tests build the compiler with a nil Toolchain and
	// call only CompileProgram.
	c := &codegen.Clang{}
	assert.Implements(t, (*codegen.Toolchain)(nil), c)
}
