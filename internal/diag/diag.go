// Package diag implements the error taxonomy of spec.md §7: one concrete
// kind per failure mode, each wrapped with github.com/pkg/errors so every
// diagnostic carries a stack trace, plus a per-module Reporter that
// accumulates diagnostics the way the teacher's compiler accumulates
// *compiler.errs.
package diag

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind names one of the fixed diagnostic kinds from spec.md §7.
type Kind string

const (
	KindParseError            Kind = "ParseError"
	KindCyclicImport          Kind = "CyclicImport"
	KindSymbolNotFound        Kind = "SymbolNotFound"
	KindSymbolNotAccessible   Kind = "SymbolNotAccessible"
	KindTypeNotFound          Kind = "TypeNotFound"
	KindAmbiguousType         Kind = "AmbiguousType"
	KindGenericArityMismatch  Kind = "GenericArityMismatch"
	KindUnresolvedGeneric     Kind = "UnresolvedGeneric"
	KindPatternNotSupported   Kind = "PatternNotSupported"
	KindInvalidTryTarget      Kind = "InvalidTryTarget"
	KindMismatchedIfBranches  Kind = "MismatchedIfBranches"
	KindBreakOutsideLoop      Kind = "BreakOutsideLoop"
	KindContinueOutsideLoop   Kind = "ContinueOutsideLoop"
	KindIRVerificationFailed  Kind = "IRVerificationFailed"
	KindToolFailure           Kind = "ToolFailure"
	KindDuplicateSymbol       Kind = "DuplicateSymbol"
)

// Diagnostic is one reported error, tagged with its Kind so callers (tests,
// the CLI) can match on it without parsing the message.
type Diagnostic struct {
	Kind Kind
	err  error
}

func (d *Diagnostic) Error() string { return d.err.Error() }

// Unwrap lets errors.Is/errors.As see through to the wrapped cause.
func (d *Diagnostic) Unwrap() error { return d.err }

func newf(kind Kind, format string, args ...interface{}) *Diagnostic {
	return &Diagnostic{Kind: kind, err: errors.Errorf(format, args...)}
}

func ParseError(loc fmt.Stringer, msg string) *Diagnostic {
	return newf(KindParseError, "%s: parse error: %s", loc, msg)
}

func CyclicImport(cycle []string) *Diagnostic {
	return newf(KindCyclicImport, "cyclic import: %v", cycle)
}

func SymbolNotFound(qualified string) *Diagnostic {
	return newf(KindSymbolNotFound, "symbol not found: %s", qualified)
}

func SymbolNotAccessible(qualified, from string) *Diagnostic {
	return newf(KindSymbolNotAccessible, "symbol %s not accessible from module %s", qualified, from)
}

func TypeNotFound(name string) *Diagnostic {
	return newf(KindTypeNotFound, "type not found: %s", name)
}

func AmbiguousType(name string) *Diagnostic {
	return newf(KindAmbiguousType, "ambiguous type: %s", name)
}

func GenericArityMismatch(name string, expected, got int) *Diagnostic {
	return newf(KindGenericArityMismatch, "%s: expected %d type argument(s), got %d", name, expected, got)
}

func UnresolvedGeneric(param string) *Diagnostic {
	return newf(KindUnresolvedGeneric, "unresolved generic parameter %q survived to IR", param)
}

func PatternNotSupported(kind string) *Diagnostic {
	return newf(KindPatternNotSupported, "unsupported pattern: %s", kind)
}

func InvalidTryTarget() *Diagnostic {
	return newf(KindInvalidTryTarget, "'?' applied to a non-Optional value")
}

func MismatchedIfBranches(then, els string) *Diagnostic {
	return newf(KindMismatchedIfBranches, "if-expression branches disagree: then=%s else=%s", then, els)
}

func BreakOutsideLoop() *Diagnostic {
	return newf(KindBreakOutsideLoop, "'break' outside of a loop")
}

func ContinueOutsideLoop() *Diagnostic {
	return newf(KindContinueOutsideLoop, "'continue' outside of a loop")
}

func IRVerificationFailed(module, detail string) *Diagnostic {
	return newf(KindIRVerificationFailed, "module %s failed IR verification: %s", module, detail)
}

func ToolFailure(stage string, exitCode int) *Diagnostic {
	return newf(KindToolFailure, "%s exited with status %d", stage, exitCode)
}

func DuplicateSymbol(module, name string) *Diagnostic {
	return newf(KindDuplicateSymbol, "%s::%s already declared", module, name)
}

// Reporter accumulates diagnostics for a single module's compilation, per
// spec.md §7's propagation policy: a lowering step reports at most one
// diagnostic and either returns a sentinel/nil value or stops lowering the
// enclosing function; the reporter is consulted after each pass.
type Reporter struct {
	module string
	diags  []*Diagnostic
}

func NewReporter(module string) *Reporter {
	return &Reporter{module: module}
}

// Report records d, wrapped with the module name for context.
func (r *Reporter) Report(d *Diagnostic) {
	r.diags = append(r.diags, &Diagnostic{
		Kind: d.Kind,
		err:  errors.WithStack(errors.Wrapf(d.err, "module %s", r.module)),
	})
}

// Diagnostics returns every diagnostic reported so far, in report order.
func (r *Reporter) Diagnostics() []*Diagnostic { return r.diags }

// Failed reports whether any diagnostic has been recorded.
func (r *Reporter) Failed() bool { return len(r.diags) > 0 }

// Error joins every accumulated diagnostic into a single error, or nil if
// none were recorded.
func (r *Reporter) Error() error {
	if len(r.diags) == 0 {
		return nil
	}
	msgs := make([]error, len(r.diags))
	for i, d := range r.diags {
		msgs[i] = d
	}
	return errors.Errorf("%d diagnostic(s) in module %s: %v", len(msgs), r.module, msgs)
}
