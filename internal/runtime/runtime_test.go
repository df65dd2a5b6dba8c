package runtime_test

import (
	"testing"

	"github.com/llir/llvm/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawlang-project/pawc/internal/runtime"
)

func TestDeclareRegistersEveryPrimitive(t *testing.T) {
	m := ir.NewModule()
	d := runtime.Declare(m)

	require.NotNil(t, d.Malloc)
	require.NotNil(t, d.Memcpy)
	require.NotNil(t, d.Strlen)
	require.NotNil(t, d.Strcpy)
	require.NotNil(t, d.Strcat)
	require.NotNil(t, d.PrintCStr)
	require.NotNil(t, d.ReadFileCStr)
	require.NotNil(t, d.Exit)

	assert.Len(t, m.Funcs, 8)
	for _, f := range m.Funcs {
		assert.Empty(t, f.Blocks, "runtime primitives must be declarations, not definitions")
	}
}

func TestDeclareSignatures(t *testing.T) {
	m := ir.NewModule()
	d := runtime.Declare(m)

	assert.Equal(t, runtime.CString, d.Malloc.Sig.RetType)
	assert.Len(t, d.Malloc.Params, 1)
	assert.Len(t, d.Strcat.Params, 2)
}
