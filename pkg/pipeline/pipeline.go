// Package pipeline wires the front end's four stages — parse, build,
// cross-reference, type-check — into one entry point, and defines the
// consumer contract that an out-of-scope code generator implements to
// receive the result (spec.md's own scope explicitly ends before code
// generation; this package is where that boundary lives in code).
package pipeline

import (
	"github.com/aaalang/aaac/pkg/ast"
	"github.com/aaalang/aaac/pkg/build"
	"github.com/aaalang/aaac/pkg/diag"
	"github.com/aaalang/aaac/pkg/parser"
	"github.com/aaalang/aaac/pkg/sourcemap"
	"github.com/aaalang/aaac/pkg/types"
	"github.com/aaalang/aaac/pkg/typecheck"
	"github.com/aaalang/aaac/pkg/xref"
)

// Result is everything a caller (the CLI, a test, or a CodeGenerator's
// caller) needs after running the front end to completion: the resolved
// program, the symbol table the type checker validated, and every
// diagnostic collected across all four stages, in stage order.
type Result struct {
	Program *ast.Program
	Table   *types.Table
	Diags   diag.List
}

// OK reports whether the program is free of any stage's errors.
func (r Result) OK() bool {
	return !r.Diags.HasErrors()
}

// Run drives entrypoint and builtinsPath through parse+build, then
// cross-reference, then type-check. It returns early only when no file
// could be loaded; otherwise cross-referencing and type-checking both run
// over whatever the earlier stages produced, even when those stages
// reported errors, and all diagnostics are returned in stage order.
func Run(entrypoint, builtinsPath string, mode parser.Mode) Result {
	driver := build.New(mode)
	program, diags := driver.Load(entrypoint, builtinsPath)

	if len(program.Files) == 0 {
		return Result{Program: program, Diags: diags}
	}

	xr := xref.Run(program)
	diags = append(diags, xr.Diags...)

	tc := typecheck.Run(xr.Table, builtinsPath)
	diags = append(diags, tc.Diags...)

	return Result{Program: program, Table: xr.Table, Diags: diags}
}

// EmitInput is everything a CodeGenerator needs to turn a validated
// Result into output: the resolved program and symbol table the front
// end produced, plus a source map generator already seeded with the
// entry file's path so the generator only has to call AddMapping as it
// walks the program.
type EmitInput struct {
	Program   *ast.Program
	Table     *types.Table
	SourceMap *sourcemap.Generator
}

// CodeGenerator is the contract an external backend implements to turn a
// type-checked program into runnable output. Nothing in this module
// implements it; per spec.md §1, code generation is a collaborator this
// front end hands validated input to, not a responsibility it carries.
type CodeGenerator interface {
	// Emit turns a validated program into generated output bytes plus
	// whatever source map entries the generator chose to record.
	Emit(input EmitInput) ([]byte, error)
}
