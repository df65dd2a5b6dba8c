package main

import (
	"github.com/pawlang-project/pawc/internal/ast"
	"github.com/pawlang-project/pawc/internal/diag"
)

// externalParser is the loader.Parser seam this repository leaves for a real
// Paw lexer/parser (spec.md §1 "Lexing/parsing... out of scope"). It exists
// so `pawc` is a runnable binary; wiring in an actual parser only requires
// satisfying loader.Parser and passing that value to loader.New here instead.
type externalParser struct{}

func (externalParser) Parse(path string) (*ast.File, error) {
	return nil, diag.ParseError(pathStringer(path), "no Paw lexer/parser is wired into this build")
}

// pathStringer adapts a bare path string to fmt.Stringer for diag.ParseError.
type pathStringer string

func (p pathStringer) String() string { return string(p) }
