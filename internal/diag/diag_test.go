package diag_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawlang-project/pawc/internal/diag"
)

func TestKindsSurviveWrapping(t *testing.T) {
	d := diag.SymbolNotFound("foo::bar")
	assert.Equal(t, diag.KindSymbolNotFound, d.Kind)
	assert.Contains(t, d.Error(), "foo::bar")
}

func TestReporterAccumulatesInOrder(t *testing.T) {
	r := diag.NewReporter("math")
	require.False(t, r.Failed())

	r.Report(diag.TypeNotFound("Foo"))
	r.Report(diag.BreakOutsideLoop())

	require.True(t, r.Failed())
	diags := r.Diagnostics()
	require.Len(t, diags, 2)
	assert.Equal(t, diag.KindTypeNotFound, diags[0].Kind)
	assert.Equal(t, diag.KindBreakOutsideLoop, diags[1].Kind)
	assert.Contains(t, r.Error().Error(), "2 diagnostic(s) in module math")
}

func TestReporterErrorNilWhenClean(t *testing.T) {
	r := diag.NewReporter("math")
	assert.Nil(t, r.Error())
}

func TestGenericArityMismatchMessage(t *testing.T) {
	d := diag.GenericArityMismatch("List", 1, 2)
	assert.Contains(t, d.Error(), "expected 1 type argument(s), got 2")
}
